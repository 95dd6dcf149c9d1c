package engine

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLToText(t *testing.T) {
	doc := `<!DOCTYPE html>
<html>
<head><title>Contact</title><style>.a{color:red}</style></head>
<body>
  <script>var hidden = "bot@example.com";</script>
  <noscript>js@example.com</noscript>
  <h1>Contact   us</h1>
  <p>Write to <a href="mailto:info@example.com">info@example.com</a> today.</p>
  <div>Sales<br>sales@example.com</div>
  <!-- comment@example.com -->
</body>
</html>`

	got, err := HTMLToText(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, "Contact us\nWrite to info@example.com today.\nSales\nsales@example.com", got)
	assert.NotContains(t, got, "bot@example.com")
	assert.NotContains(t, got, "js@example.com")
	assert.NotContains(t, got, "comment@example.com")
}

func TestSelectionTextSeparatesElements(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<p><span>info</span><span>@example.com</span></p><li>a</li><li>b</li>`))
	require.NoError(t, err)

	got := SelectionText(doc.Selection)
	assert.Equal(t, "info @example.com\na\nb", got)
}

func TestHTMLToTextKeepsMailtoAddresses(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "address only in href",
			doc:  `<h1>Contact</h1><a href="mailto:hr@example.com">Email our HR team</a>`,
			want: "Contact\nEmail our HR team hr@example.com",
		},
		{
			name: "query dropped",
			doc:  `<a href="MAILTO:jobs@example.com?subject=Hello%20there">Apply</a>`,
			want: "Apply jobs@example.com",
		},
		{
			name: "escaped and multiple recipients",
			doc:  `<a href="mailto:a%40example.com,b@example.com">Write</a>`,
			want: "Write a@example.com b@example.com",
		},
		{
			name: "address already visible",
			doc:  `<a href="mailto:Info@Example.com">info@example.com</a>`,
			want: "info@example.com",
		},
		{
			name: "other links untouched",
			doc:  `<a href="/contact">Contact</a>`,
			want: "Contact",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HTMLToText(strings.NewReader(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractLinks(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
<a href="/contact">c</a>
<a href="team">t</a>
<a href="https://other.net/about">o</a>
<a href="/contact">dup</a>
<a href="#top">frag</a>
<a href="javascript:void(0)">js</a>
<a href="mailto:x@example.com">m</a>
<a>no href</a>`))
	require.NoError(t, err)

	base, _ := url.Parse("https://example.com/about/")
	links := ExtractLinks(doc.Selection, base)

	assert.Equal(t, []string{
		"https://example.com/contact",
		"https://example.com/about/team",
		"https://other.net/about",
	}, links)
}

func TestResolveLink(t *testing.T) {
	base, _ := url.Parse("https://example.com/a/b")

	tests := []struct {
		href string
		want string
	}{
		{"/contact", "https://example.com/contact"},
		{"c", "https://example.com/a/c"},
		{"  https://x.io/y  ", "https://x.io/y"},
		{"//cdn.example.com/p", "https://cdn.example.com/p"},
		{"", ""},
		{"#section", ""},
		{"JavaScript:alert(1)", ""},
		{"tel:+123", ""},
		{"data:text/plain,hi", ""},
		{"ftp://example.com/file", ""},
	}

	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveLink(base, tt.href))
		})
	}

	assert.Equal(t, "", ResolveLink(nil, "/relative"))
}

func TestPathOf(t *testing.T) {
	assert.Equal(t, "/contact", PathOf("https://example.com/contact?x=1"))
	assert.Equal(t, "/", PathOf("https://example.com"))
	assert.Equal(t, "/", PathOf("%zz"))
}

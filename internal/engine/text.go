package engine

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// skippedElements never contribute visible text
var skippedElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true, "head": true,
}

// blockElements end a line of text
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "br": true,
	"dd": true, "div": true, "dl": true, "dt": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true, "ol": true,
	"p": true, "pre": true, "section": true, "table": true, "td": true, "th": true,
	"tr": true, "ul": true,
}

// HTMLToText parses an HTML document and returns its visible text
func HTMLToText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}
	return SelectionText(doc.Selection), nil
}

// SelectionText returns the visible text under sel. Every element boundary
// becomes whitespace, so text split across tags is never glued together.
func SelectionText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		writeText(&b, n)
	}
	return tidy(b.String())
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		if skippedElements[n.Data] {
			return
		}
	}

	sep := " "
	if n.Type == html.ElementNode && blockElements[n.Data] {
		sep = "\n"
	}

	b.WriteString(sep)
	start := b.Len()
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	// Addresses published only as mailto targets still belong to the text
	if n.Type == html.ElementNode && n.Data == "a" {
		if addr := mailtoAddress(attr(n, "href")); addr != "" &&
			!strings.Contains(strings.ToLower(b.String()[start:]), strings.ToLower(addr)) {
			b.WriteString(" " + addr)
		}
	}
	b.WriteString(sep)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// mailtoAddress returns the recipients of a mailto: href, "" otherwise
func mailtoAddress(href string) string {
	href = strings.TrimSpace(href)
	if len(href) < len("mailto:") || !strings.EqualFold(href[:len("mailto:")], "mailto:") {
		return ""
	}

	addr := href[len("mailto:"):]
	if i := strings.IndexByte(addr, '?'); i >= 0 {
		addr = addr[:i]
	}
	if unescaped, err := url.PathUnescape(addr); err == nil {
		addr = unescaped
	}
	return strings.Join(strings.Fields(strings.ReplaceAll(addr, ",", " ")), " ")
}

// tidy collapses runs of blanks and drops empty lines
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// ExtractLinks returns the absolute http(s) targets of every a[href] under
// sel, resolved against base, without duplicates and in document order.
func ExtractLinks(sel *goquery.Selection, base *url.URL) []string {
	seen := make(map[string]bool)
	var links []string

	sel.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if link := ResolveLink(base, href); link != "" && !seen[link] {
			seen[link] = true
			links = append(links, link)
		}
	})

	return links
}

// ResolveLink makes href absolute against base. Returns "" for anything
// that is not an http(s) page link.
func ResolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}

	lower := strings.ToLower(href)
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, prefix) {
			return ""
		}
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return ""
	}
	return ref.String()
}

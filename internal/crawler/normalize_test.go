package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com", "https://example.com/"},
		{"HTTPS://Example.COM/Contact", "https://example.com/Contact"},
		{"https://example.com/contact#form", "https://example.com/contact"},
		{"http://example.com:80/a", "http://example.com/a"},
		{"https://example.com:443/a", "https://example.com/a"},
		{"https://example.com:8443/a", "https://example.com:8443/a"},
		{"http://example.com:443/a", "http://example.com:443/a"},
		{"https://example.com/a/../b/./c", "https://example.com/b/c"},
		{"https://example.com/team/", "https://example.com/team/"},
		{"https://example.com/a?utm_source=x&utm_campaign=y", "https://example.com/a"},
		{"https://example.com/a?gclid=1&page=2", "https://example.com/a?page=2"},
		{"https://example.com/a?b=2&a=1", "https://example.com/a?a=1&b=2"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeURL(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeURLRejectsRelative(t *testing.T) {
	for _, in := range []string{"", "/contact", "example.com/contact", "http://", "%zz"} {
		_, err := NormalizeURL(in)
		assert.Error(t, err, in)
	}
}

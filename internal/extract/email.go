// Package extract finds email addresses in rendered page text.
package extract

import (
	"regexp"
	"strings"
)

// emailPattern runs on RE2, so matching stays linear in the input size.
var emailPattern = regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9\-]+(?:\.[a-z0-9\-]+)*\.[a-z]{2,}`)

// Asset extensions that look like a TLD in names such as logo@2x.png
var assetSuffixes = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true, "svg": true,
	"webp": true, "avif": true, "bmp": true, "ico": true, "tif": true,
	"tiff": true, "css": true, "js": true, "mjs": true, "map": true,
	"woff": true, "woff2": true, "ttf": true,
}

// Extractor finds email-shaped tokens in text
type Extractor struct {
	pattern *regexp.Regexp
}

// New creates an Extractor
func New() *Extractor {
	return &Extractor{pattern: emailPattern}
}

// Extract returns the lowercased addresses found in text, deduplicated and
// in order of first appearance. It never fails; unreadable bytes are
// replaced before matching.
func (e *Extractor) Extract(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ToValidUTF8(text, " ")

	seen := make(map[string]bool)
	var emails []string

	for _, match := range e.pattern.FindAllString(text, -1) {
		email := strings.ToLower(match)
		if seen[email] || isAsset(email) {
			continue
		}
		seen[email] = true
		emails = append(emails, email)
	}

	return emails
}

func isAsset(email string) bool {
	tld := email[strings.LastIndexByte(email, '.')+1:]
	return assetSuffixes[tld]
}

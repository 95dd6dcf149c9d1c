// Package output renders an email index for people or for machines.
package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alvmarrod/find-emails/internal/index"
)

// Mode selects the rendering
type Mode int

const (
	Human Mode = iota
	JSON
)

// Document is the JSON shape of a run's results
type Document struct {
	Emails map[string][]string `json:"emails"`
}

// Format renders idx in the given mode. quiet drops the human header.
func Format(idx *index.EmailIndex, mode Mode, quiet bool) (string, error) {
	switch mode {
	case JSON:
		return FormatJSON(idx)
	case Human:
		return FormatHuman(idx, quiet), nil
	default:
		return "", fmt.Errorf("unknown output mode %d", mode)
	}
}

// FormatHuman writes a count header and one "email - path, path" line per
// email. Emails are sorted; paths keep capture order.
func FormatHuman(idx *index.EmailIndex, quiet bool) string {
	var lines []string
	if !quiet {
		lines = append(lines, fmt.Sprintf("%d emails found:", idx.Len()))
	}
	for _, email := range idx.Sorted() {
		lines = append(lines, email+" - "+strings.Join(idx.Paths(email), ", "))
	}
	return strings.Join(lines, "\n")
}

// FormatJSON renders {"emails": {email: [paths]}} indented by two spaces
func FormatJSON(idx *index.EmailIndex) (string, error) {
	doc := Document{Emails: idx.ToMap()}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal results: %w", err)
	}
	return string(data), nil
}

// ParseJSON rebuilds an index from FormatJSON output
func ParseJSON(data []byte) (*index.EmailIndex, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse results JSON: %w", err)
	}
	if doc.Emails == nil {
		return nil, fmt.Errorf("results JSON has no emails object")
	}
	return index.FromMap(doc.Emails), nil
}

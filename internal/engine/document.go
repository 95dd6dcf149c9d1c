package engine

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadDocument loads a pre-fetched document from disk. HTML files are
// reduced to their visible text; anything else is used as is. The page
// path is the file's base name.
func ReadDocument(path string) (*Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	text := string(data)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		converted, err := HTMLToText(bytes.NewReader(data))
		if err == nil {
			text = converted
		}
	}

	return &Page{
		Path: filepath.Base(path),
		Text: text,
	}, nil
}

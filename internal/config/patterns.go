package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PatternsFileName is looked up beside the executable when no path is given
const PatternsFileName = "url_patterns.json"

// ErrPatternsFallback marks a pattern file that could not be used
var ErrPatternsFallback = errors.New("using default url patterns")

var defaultURLPatterns = []string{
	"*contact*", "*support*", "*about*", "*team*",
	"*email*", "*reach*", "*staff*", "*inquiry*", "*enquir*",
	"*get-in-touch*", "*contact-us*", "*about-us*",
}

type patternsFile struct {
	URLPatterns []string `json:"url_patterns"`
}

// DefaultPatterns returns a fresh copy of the built-in URL patterns
func DefaultPatterns() []string {
	return append([]string(nil), defaultURLPatterns...)
}

// DefaultPatternsPath returns url_patterns.json next to the running binary
func DefaultPatternsPath() string {
	exe, err := os.Executable()
	if err != nil {
		return PatternsFileName
	}
	return filepath.Join(filepath.Dir(exe), PatternsFileName)
}

// LoadPatterns reads the url_patterns key from a JSON file.
// Blank entries are dropped; a file without usable patterns is an error.
func LoadPatterns(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open patterns file: %w", err)
	}
	defer file.Close()

	var pf patternsFile
	if err := json.NewDecoder(file).Decode(&pf); err != nil {
		return nil, fmt.Errorf("failed to parse patterns JSON: %w", err)
	}

	patterns := make([]string, 0, len(pf.URLPatterns))
	for _, p := range pf.URLPatterns {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("no url_patterns in %s", path)
	}

	return patterns, nil
}

// ResolvePatterns returns the patterns from path, or the defaults when the
// file is missing or unusable. The second value is a warning for the caller,
// never a reason to stop. An empty path means the file beside the binary,
// whose absence is not worth a warning.
func ResolvePatterns(path string) ([]string, error) {
	implicit := path == ""
	if implicit {
		path = DefaultPatternsPath()
	}

	patterns, err := LoadPatterns(path)
	if err != nil {
		if implicit && errors.Is(err, os.ErrNotExist) {
			return DefaultPatterns(), nil
		}
		return DefaultPatterns(), fmt.Errorf("%w: %v", ErrPatternsFallback, err)
	}

	return patterns, nil
}

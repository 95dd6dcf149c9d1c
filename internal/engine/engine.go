// Package engine fetches pages for the crawler and turns them into text
// plus outbound links. It knows nothing about which links are worth following.
package engine

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"
)

var (
	// ErrRobotsDisallowed is returned when robots.txt forbids a URL
	ErrRobotsDisallowed = errors.New("disallowed by robots.txt")
	// ErrEmptyPage is returned when a page rendered no text at all
	ErrEmptyPage = errors.New("empty page")
)

// Page is one fetched (or locally read) document
type Page struct {
	URL   string   // final URL after redirects, empty for local files
	Path  string   // location identifier recorded in the index
	Text  string   // rendered text content
	Links []string // absolute outbound links in document order
}

// Engine retrieves and renders a single page
type Engine interface {
	Fetch(ctx context.Context, rawURL string) (*Page, error)
}

// Options configures the network engines
type Options struct {
	Timeout       time.Duration
	UserAgent     string
	RespectRobots bool
}

// FetchError wraps any failure to retrieve or render one page
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// PathOf returns the path component of rawURL, "/" when empty
func PathOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

package engine

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

// CollyEngine fetches pages over plain HTTP with a colly collector
type CollyEngine struct {
	collector *colly.Collector
}

// NewCollyEngine creates an engine whose collector is configured once and
// cloned for every fetch
func NewCollyEngine(opts Options) *CollyEngine {
	c := colly.NewCollector(
		colly.UserAgent(opts.UserAgent),
		colly.AllowURLRevisit(), // Revisits are prevented by the crawler frontier
		colly.MaxDepth(0),
	)
	c.IgnoreRobotsTxt = !opts.RespectRobots

	if opts.Timeout > 0 {
		c.SetRequestTimeout(opts.Timeout)
	}

	return &CollyEngine{collector: c}
}

// Fetch visits rawURL synchronously and returns its text and links
func (e *CollyEngine) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	c := e.collector.Clone()
	c.Context = ctx

	page := &Page{}
	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		page.URL = r.Request.URL.String()
		page.Path = PathOf(page.URL)

		contentType := r.Headers.Get("Content-Type")
		if contentType == "" {
			contentType = http.DetectContentType(r.Body)
		}
		if !isHTML(contentType) {
			page.Text = string(r.Body)
		}
		logrus.Debugf("Fetched %s (status=%d, %d bytes)", page.URL, r.StatusCode, len(r.Body))
	})

	c.OnHTML("html", func(e *colly.HTMLElement) {
		page.Text = SelectionText(e.DOM)
		page.Links = ExtractLinks(e.DOM, e.Request.URL)
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	if err := c.Visit(rawURL); err != nil {
		if errors.Is(err, colly.ErrRobotsTxtBlocked) {
			err = ErrRobotsDisallowed
		}
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	if fetchErr != nil {
		return nil, &FetchError{URL: rawURL, Err: fetchErr}
	}
	if page.URL == "" {
		return nil, &FetchError{URL: rawURL, Err: ErrEmptyPage}
	}

	return page, nil
}

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(contentType, "html")
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

func dedupe(links []string) []string {
	seen := make(map[string]bool, len(links))
	out := links[:0]
	for _, link := range links {
		if !seen[link] {
			seen[link] = true
			out = append(out, link)
		}
	}
	return out
}

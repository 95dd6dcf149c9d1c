package engine

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

const linksJS = `
(() => Array.from(document.querySelectorAll('a[href]'))
	.map(a => a.href)
	.filter(href => href && (href.startsWith('http://') || href.startsWith('https://'))))()`

// textJS returns the visible text followed by the recipients of mailto
// links, which innerText leaves out
const textJS = `
(() => {
	if (!document.body) return "";
	const decode = s => { try { return decodeURIComponent(s); } catch (e) { return s; } };
	const mailto = Array.from(document.querySelectorAll('a[href^="mailto:" i]'))
		.map(a => decode(a.getAttribute('href').slice(7).split('?')[0]).replace(/,/g, ' '));
	return [document.body.innerText, ...mailto].join("\n");
})()`

// BrowserEngine renders pages in headless Chrome so script-built content
// is visible to extraction
type BrowserEngine struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	timeout       time.Duration
	robots        *RobotsGuard
}

// NewBrowserEngine starts a headless browser. It fails when Chrome cannot
// be launched.
func NewBrowserEngine(opts Options) (*BrowserEngine, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser now so a missing Chrome is reported before crawling
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	b := &BrowserEngine{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		timeout:       opts.Timeout,
	}
	if opts.RespectRobots {
		b.robots = NewRobotsGuard(nil, opts.UserAgent)
	}
	return b, nil
}

// Fetch renders rawURL in a new tab and returns its visible text and links
func (b *BrowserEngine) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	if !b.robots.Allowed(ctx, u) {
		return nil, &FetchError{URL: rawURL, Err: ErrRobotsDisallowed}
	}

	tabCtx, cancel := chromedp.NewContext(b.browserCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if b.timeout > 0 {
		var timeoutCancel context.CancelFunc
		tabCtx, timeoutCancel = context.WithTimeout(tabCtx, b.timeout)
		defer timeoutCancel()
	}

	var (
		location string
		text     string
		links    []string
	)
	err = chromedp.Run(tabCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body"),
		chromedp.Location(&location),
		chromedp.Evaluate(textJS, &text),
		chromedp.Evaluate(linksJS, &links),
	)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	logrus.Debugf("Rendered %s (%d chars, %d links)", location, len(text), len(links))

	return &Page{
		URL:   location,
		Path:  PathOf(location),
		Text:  text,
		Links: dedupe(links),
	}, nil
}

// Close shuts the browser down
func (b *BrowserEngine) Close() {
	b.browserCancel()
	b.allocCancel()
}

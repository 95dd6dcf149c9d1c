package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alvmarrod/find-emails/internal/config"
	"github.com/alvmarrod/find-emails/internal/engine"
	"github.com/alvmarrod/find-emails/internal/extract"
	"github.com/alvmarrod/find-emails/internal/index"
	"github.com/alvmarrod/find-emails/internal/metrics"
	"github.com/sirupsen/logrus"
)

// ErrNoInput is returned when there is nothing to crawl
var ErrNoInput = errors.New("no URLs or input file given")

// Termination reasons reported in Result.Reason
const (
	ReasonFrontierEmpty = "frontier_empty"
	ReasonMaxPages      = "max_pages"
	ReasonCanceled      = "canceled"
)

// Result is the outcome of one traversal
type Result struct {
	Index   *index.EmailIndex
	Visited int // pages handed to the engine, failures included
	Failed  int
	Reason  string
}

// ProgressFunc is called before each page is fetched
type ProgressFunc func(visited, maxPages int, url string)

// Option configures a Crawler
type Option func(*Crawler)

// WithTracker reports counters to t
func WithTracker(t *metrics.Tracker) Option {
	return func(c *Crawler) {
		c.tracker = t
	}
}

// WithProgress registers a callback invoked before every fetch
func WithProgress(fn ProgressFunc) Option {
	return func(c *Crawler) {
		c.progress = fn
	}
}

// Crawler runs a bounded breadth-first traversal and indexes every email
// found along the way. One fetch is in flight at a time.
type Crawler struct {
	budget          config.Budget
	includeExternal bool
	fullURLs        bool
	engine          engine.Engine
	matcher         *Matcher
	extractor       *extract.Extractor
	tracker         *metrics.Tracker
	progress        ProgressFunc
}

// New creates a crawler. A nil matcher follows no links.
func New(cfg *config.Config, eng engine.Engine, matcher *Matcher, opts ...Option) *Crawler {
	c := &Crawler{
		budget:          cfg.Budget(),
		includeExternal: cfg.IncludeExternal,
		fullURLs:        cfg.FullURLs,
		engine:          eng,
		matcher:         matcher,
		extractor:       extract.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tracker == nil {
		c.tracker = metrics.NewTracker()
	}
	return c
}

// Run crawls from seeds, all at depth 0, sharing one page budget and one
// index. A failed page is logged and skipped. Cancelling ctx stops the
// traversal and returns what was indexed so far.
func (c *Crawler) Run(ctx context.Context, seeds []string) (*Result, error) {
	if len(seeds) == 0 {
		return nil, ErrNoInput
	}
	if err := c.budget.Validate(); err != nil {
		return nil, fmt.Errorf("invalid crawl budget: %w", err)
	}

	frontier := NewFrontier()
	var accepted []string
	for _, seed := range seeds {
		normalized, err := NormalizeURL(withScheme(seed))
		if err != nil {
			logrus.Warnf("Skipping seed %q: %v", seed, err)
			continue
		}
		if frontier.Push(Entry{URL: normalized, Depth: 0}) {
			accepted = append(accepted, normalized)
		}
	}
	if len(accepted) == 0 {
		return nil, fmt.Errorf("%w: no valid seed URL", ErrNoInput)
	}

	scope := NewScope(accepted, c.includeExternal)
	c.tracker.SetSeeds(len(accepted))

	logrus.Infof("Crawling %d seed(s): max_depth=%d, max_pages=%d, patterns=%d",
		len(accepted), c.budget.MaxDepth, c.budget.MaxPages, c.matcher.Len())

	res := &Result{Index: index.New(), Reason: ReasonFrontierEmpty}
	capped := false

	for {
		if err := ctx.Err(); err != nil {
			res.Reason = ReasonCanceled
			logrus.Warnf("Crawl canceled after %d pages: %v", res.Visited, err)
			return res, nil
		}
		if res.Visited >= c.budget.MaxPages {
			if capped || !frontier.IsEmpty() {
				res.Reason = ReasonMaxPages
				logrus.Infof("Page budget reached, abandoning %d queued URLs", frontier.Size())
			}
			break
		}

		entry, ok := frontier.Pop()
		if !ok {
			break
		}

		res.Visited++
		c.tracker.IncrementPagesVisited()
		if c.progress != nil {
			c.progress(res.Visited, c.budget.MaxPages, entry.URL)
		}

		start := time.Now()
		page, err := c.engine.Fetch(ctx, entry.URL)
		c.tracker.RecordFetchTime(time.Since(start))
		if err != nil {
			res.Failed++
			c.tracker.IncrementPagesFailed()
			logrus.Warnf("Skipping %s (depth=%d): %v", entry.URL, entry.Depth, err)
			continue
		}
		c.tracker.IncrementPagesFetched()

		if page.URL != "" {
			if final, err := NormalizeURL(page.URL); err == nil {
				frontier.MarkSeen(final)
			}
		}

		location := c.locationOf(entry, page)
		emails := c.extractor.Extract(page.Text)
		added := res.Index.AddAll(emails, location)
		c.tracker.AddEmailsFound(added)

		logrus.Infof("Visited %s (depth=%d): %d emails, %d new, %d links",
			entry.URL, entry.Depth, len(emails), added, len(page.Links))

		if entry.Depth >= c.budget.MaxDepth {
			continue
		}
		if res.Visited >= c.budget.MaxPages {
			if c.hasFollowable(frontier, scope, page.Links) {
				capped = true
			}
			continue
		}
		c.enqueueLinks(frontier, scope, page.Links, entry.Depth+1)
	}

	logrus.Infof("Crawl finished (%s): %d pages visited, %d failed, %d emails",
		res.Reason, res.Visited, res.Failed, res.Index.Len())
	return res, nil
}

// linkVerdict says why a discovered link is or is not followed
type linkVerdict int

const (
	linkFollow linkVerdict = iota
	linkInvalid
	linkSeen
	linkOutOfScope
	linkNoMatch
)

// judge normalizes link and decides whether it should be followed.
// It has no side effects.
func (c *Crawler) judge(frontier *Frontier, scope *Scope, link string) (string, linkVerdict) {
	normalized, err := NormalizeURL(link)
	if err != nil {
		return "", linkInvalid
	}
	switch {
	case frontier.Seen(normalized):
		return normalized, linkSeen
	case !scope.Allows(normalized):
		return normalized, linkOutOfScope
	case !c.matcher.Match(normalized):
		return normalized, linkNoMatch
	}
	return normalized, linkFollow
}

// hasFollowable reports whether any of links would be enqueued
func (c *Crawler) hasFollowable(frontier *Frontier, scope *Scope, links []string) bool {
	for _, link := range links {
		if _, verdict := c.judge(frontier, scope, link); verdict == linkFollow {
			return true
		}
	}
	return false
}

// enqueueLinks pushes the links worth following, in discovery order
func (c *Crawler) enqueueLinks(frontier *Frontier, scope *Scope, links []string, depth int) {
	for _, link := range links {
		c.tracker.IncrementLinksDiscovered()

		normalized, verdict := c.judge(frontier, scope, link)
		switch verdict {
		case linkSeen:
			continue
		case linkInvalid:
			c.tracker.IncrementLinksFiltered()
			continue
		case linkOutOfScope:
			logrus.Debugf("Out of scope: %s", normalized)
			c.tracker.IncrementLinksFiltered()
			continue
		case linkNoMatch:
			logrus.Debugf("No pattern match: %s", normalized)
			c.tracker.IncrementLinksFiltered()
			continue
		}

		if frontier.Push(Entry{URL: normalized, Depth: depth}) {
			logrus.Debugf("Enqueued %s (depth=%d)", normalized, depth)
			c.tracker.IncrementLinksEnqueued()
		}
	}
}

// locationOf names the place a page's emails are recorded under
func (c *Crawler) locationOf(entry Entry, page *engine.Page) string {
	if c.fullURLs {
		target := page.URL
		if target == "" {
			target = entry.URL
		}
		if normalized, err := NormalizeURL(target); err == nil {
			return normalized
		}
		return target
	}
	if page.Path != "" {
		return page.Path
	}
	return engine.PathOf(entry.URL)
}

// ExtractDocument indexes a single local document under its path.
// No links are followed.
func ExtractDocument(page *engine.Page) *index.EmailIndex {
	idx := index.New()
	idx.AddAll(extract.New().Extract(page.Text), page.Path)
	return idx
}

// withScheme defaults bare host names to https
func withScheme(seed string) string {
	seed = strings.TrimSpace(seed)
	if seed != "" && !strings.Contains(seed, "://") {
		return "https://" + seed
	}
	return seed
}

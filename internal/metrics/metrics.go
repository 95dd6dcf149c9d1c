package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/alvmarrod/find-emails/internal/storage"
)

// Tracker holds and manages crawl metrics
type Tracker struct {
	mu               sync.Mutex
	data             storage.Metrics
	totalFetchTimeMs int64
	fetchCount       int
}

// NewTracker creates a new metrics tracker
func NewTracker() *Tracker {
	return &Tracker{
		data: storage.Metrics{
			StartTime: time.Now(),
		},
	}
}

// SetSeeds records how many seed URLs the run started from
func (t *Tracker) SetSeeds(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.Seeds = n
}

// IncrementPagesVisited counts a page handed to the engine
func (t *Tracker) IncrementPagesVisited() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.PagesVisited++
}

// IncrementPagesFetched increments the successful fetch counter
func (t *Tracker) IncrementPagesFetched() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.PagesFetched++
}

// IncrementPagesFailed increments the failed fetch counter
func (t *Tracker) IncrementPagesFailed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.PagesFailed++
}

// IncrementLinksDiscovered counts an outbound link seen on a page
func (t *Tracker) IncrementLinksDiscovered() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.LinksDiscovered++
}

// IncrementLinksFiltered counts a link dropped by scope or patterns
func (t *Tracker) IncrementLinksFiltered() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.LinksFiltered++
}

// IncrementLinksEnqueued counts a link added to the frontier
func (t *Tracker) IncrementLinksEnqueued() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.LinksEnqueued++
}

// AddEmailsFound adds newly indexed addresses
func (t *Tracker) AddEmailsFound(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.EmailsFound += n
}

// RecordFetchTime records a page fetch duration
func (t *Tracker) RecordFetchTime(duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totalFetchTimeMs += duration.Milliseconds()
	t.fetchCount++
}

// GetSnapshot returns a copy of current metrics
func (t *Tracker) GetSnapshot() storage.Metrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := t.data
	snapshot.TotalFetchTimeMs = t.totalFetchTimeMs

	if t.fetchCount > 0 {
		snapshot.AvgFetchTimeMs = t.totalFetchTimeMs / int64(t.fetchCount)
	}

	return snapshot
}

// Finish stamps the end time and termination reason and returns the
// final metrics
func (t *Tracker) Finish(reason string) storage.Metrics {
	t.mu.Lock()
	t.data.EndTime = time.Now()
	t.data.TerminationReason = reason
	t.mu.Unlock()

	return t.GetSnapshot()
}

// WriteToFile exports metrics to a JSON file
func (t *Tracker) WriteToFile(path, reason string) error {
	final := t.Finish(reason)

	jsonData, err := json.MarshalIndent(final, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}

	return nil
}

// LogProgress returns a one-line summary of the current counters
func (t *Tracker) LogProgress() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return fmt.Sprintf("Pages: %d visited, %d fetched, %d failed | Links: %d discovered, %d enqueued | Emails: %d",
		t.data.PagesVisited,
		t.data.PagesFetched,
		t.data.PagesFailed,
		t.data.LinksDiscovered,
		t.data.LinksEnqueued,
		t.data.EmailsFound,
	)
}

package storage

import "time"

// Email is a normalized address recorded by any run
type Email struct {
	EmailID   int64
	Address   string
	CreatedAt time.Time
}

// Location is a page path where an email was seen
type Location struct {
	LocationID int64
	Address    string
	Path       string
	FirstRunID int64
	LastRunID  int64
	Hits       int
}

// Run describes one invocation of the tool
type Run struct {
	RunID             int64
	Mode              string
	Seeds             string
	StartedAt         time.Time
	PagesVisited      int
	PagesFailed       int
	EmailsFound       int
	TerminationReason string
}

// Metrics tracks crawl statistics for export on exit
type Metrics struct {
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	Seeds             int       `json:"seeds"`
	PagesVisited      int       `json:"pages_visited"`
	PagesFetched      int       `json:"pages_fetched"`
	PagesFailed       int       `json:"pages_failed"`
	LinksDiscovered   int       `json:"links_discovered"`
	LinksFiltered     int       `json:"links_filtered"`
	LinksEnqueued     int       `json:"links_enqueued"`
	EmailsFound       int       `json:"emails_found"`
	TotalFetchTimeMs  int64     `json:"total_fetch_time_ms"`
	AvgFetchTimeMs    int64     `json:"avg_fetch_time_ms"`
	TerminationReason string    `json:"termination_reason"`
}

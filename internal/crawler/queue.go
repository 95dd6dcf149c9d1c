package crawler

// Entry is one pending visit
type Entry struct {
	URL   string
	Depth int
}

// Frontier is a BFS queue with deduplication. A URL is accepted at most
// once per traversal, whether it is still pending or already visited.
// It is owned by a single traversal and not safe for concurrent use.
type Frontier struct {
	items []Entry
	seen  map[string]bool
}

// NewFrontier creates an empty frontier
func NewFrontier() *Frontier {
	return &Frontier{
		items: make([]Entry, 0),
		seen:  make(map[string]bool),
	}
}

// Push adds an entry unless its URL was seen before.
// Returns true if added, false if duplicate.
func (f *Frontier) Push(entry Entry) bool {
	if f.seen[entry.URL] {
		return false
	}
	f.seen[entry.URL] = true
	f.items = append(f.items, entry)
	return true
}

// Pop removes and returns the first entry.
// Returns (empty, false) when the frontier is empty.
func (f *Frontier) Pop() (Entry, bool) {
	if len(f.items) == 0 {
		return Entry{}, false
	}
	entry := f.items[0]
	f.items[0] = Entry{}
	f.items = f.items[1:]
	return entry, true
}

// MarkSeen records url as visited without queueing it, used for the
// final URL of a redirected fetch
func (f *Frontier) MarkSeen(url string) {
	f.seen[url] = true
}

// Seen reports whether url was pushed or marked before
func (f *Frontier) Seen(url string) bool {
	return f.seen[url]
}

// IsEmpty returns true if nothing is pending
func (f *Frontier) IsEmpty() bool {
	return len(f.items) == 0
}

// Size returns the number of pending entries
func (f *Frontier) Size() int {
	return len(f.items)
}

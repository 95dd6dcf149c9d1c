// Package index keeps the email -> locations mapping built during a run.
package index

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/alvmarrod/find-emails/internal/storage"
	"github.com/sirupsen/logrus"
)

// EmailIndex maps normalized addresses to the page paths they were found on.
// Entries are only ever added. Emails and paths keep first-seen order.
type EmailIndex struct {
	order []string            // emails, first-seen
	paths map[string][]string // email -> paths, first-seen
	seen  map[string]map[string]struct{}
	mu    sync.RWMutex
}

// New creates an empty index
func New() *EmailIndex {
	return &EmailIndex{
		paths: make(map[string][]string),
		seen:  make(map[string]map[string]struct{}),
	}
}

// FromMap builds an index from a decoded mapping. Keys are visited in
// lexicographic order since map order carries no meaning.
func FromMap(m map[string][]string) *EmailIndex {
	idx := New()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, email := range keys {
		for _, path := range m[email] {
			idx.Add(email, path)
		}
	}
	return idx
}

// Add records that email was found at path.
// Returns true if the (email, path) pair is new.
func (ix *EmailIndex) Add(email, path string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	set, exists := ix.seen[email]
	if !exists {
		set = make(map[string]struct{})
		ix.seen[email] = set
		ix.order = append(ix.order, email)
	}

	if _, dup := set[path]; dup {
		return false
	}
	set[path] = struct{}{}
	ix.paths[email] = append(ix.paths[email], path)
	return true
}

// AddAll records every email at the same path and returns how many
// addresses were not in the index before.
func (ix *EmailIndex) AddAll(emails []string, path string) int {
	added := 0
	for _, email := range emails {
		known := ix.Has(email)
		ix.Add(email, path)
		if !known {
			added++
		}
	}
	return added
}

// Has reports whether email is indexed
func (ix *EmailIndex) Has(email string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	_, ok := ix.seen[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// Len returns the number of distinct emails
func (ix *EmailIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.order)
}

// Emails returns the addresses in first-seen order
func (ix *EmailIndex) Emails() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return slices.Clone(ix.order)
}

// Sorted returns the addresses in lexicographic order
func (ix *EmailIndex) Sorted() []string {
	emails := ix.Emails()
	slices.Sort(emails)
	return emails
}

// Paths returns the locations of email in capture order
func (ix *EmailIndex) Paths(email string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return slices.Clone(ix.paths[strings.ToLower(email)])
}

// ToMap returns a copy of the index as a plain mapping
func (ix *EmailIndex) ToMap() map[string][]string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	m := make(map[string][]string, len(ix.paths))
	for email, paths := range ix.paths {
		m[email] = slices.Clone(paths)
	}
	return m
}

// Merge adds every entry of other into ix
func (ix *EmailIndex) Merge(other *EmailIndex) {
	for _, email := range other.Emails() {
		for _, path := range other.Paths(email) {
			ix.Add(email, path)
		}
	}
}

// Equal compares two indexes as mappings of sets, ignoring order
func (ix *EmailIndex) Equal(other *EmailIndex) bool {
	if ix.Len() != other.Len() {
		return false
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	other.mu.RLock()
	defer other.mu.RUnlock()

	for email, set := range ix.seen {
		otherSet, ok := other.seen[email]
		if !ok || len(otherSet) != len(set) {
			return false
		}
		for path := range set {
			if _, ok := otherSet[path]; !ok {
				return false
			}
		}
	}
	return true
}

// Flush writes every email and location to storage under runID
func (ix *EmailIndex) Flush(store *storage.Storage, runID int64) error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	startTime := time.Now()
	logrus.Debug("Starting flush to database...")

	emailsWritten := 0
	locationsWritten := 0
	var firstErr error

	for _, email := range ix.order {
		emailID, err := store.UpsertEmail(email)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			logrus.Warnf("Failed to flush email %s: %v", email, err)
			continue
		}
		emailsWritten++

		for _, path := range ix.paths[email] {
			if err := store.UpsertLocation(emailID, path, runID); err != nil {
				if firstErr == nil {
					firstErr = err
				}
				logrus.Warnf("Failed to flush location %s for %s: %v", path, email, err)
				continue
			}
			locationsWritten++
		}
	}

	logrus.Infof("Flush complete: %d emails, %d locations written in %v",
		emailsWritten, locationsWritten, time.Since(startTime))

	if firstErr != nil {
		return fmt.Errorf("flush index: %w", firstErr)
	}
	return nil
}

// Load rebuilds an index from every location stored by earlier runs
func Load(store *storage.Storage) (*EmailIndex, error) {
	locations, err := store.ListLocations()
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}

	idx := New()
	for _, loc := range locations {
		idx.Add(loc.Address, loc.Path)
	}
	logrus.Debugf("Loaded %d emails from %d stored locations", idx.Len(), len(locations))
	return idx, nil
}

package metrics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alvmarrod/find-emails/internal/storage"
)

func TestTrackerCounters(t *testing.T) {
	tr := NewTracker()
	tr.SetSeeds(2)
	tr.IncrementPagesVisited()
	tr.IncrementPagesVisited()
	tr.IncrementPagesFetched()
	tr.IncrementPagesFailed()
	tr.IncrementLinksDiscovered()
	tr.IncrementLinksDiscovered()
	tr.IncrementLinksFiltered()
	tr.IncrementLinksEnqueued()
	tr.AddEmailsFound(3)
	tr.RecordFetchTime(100 * time.Millisecond)
	tr.RecordFetchTime(300 * time.Millisecond)

	snap := tr.GetSnapshot()
	assert.Equal(t, 2, snap.Seeds)
	assert.Equal(t, 2, snap.PagesVisited)
	assert.Equal(t, 1, snap.PagesFetched)
	assert.Equal(t, 1, snap.PagesFailed)
	assert.Equal(t, 2, snap.LinksDiscovered)
	assert.Equal(t, 1, snap.LinksFiltered)
	assert.Equal(t, 1, snap.LinksEnqueued)
	assert.Equal(t, 3, snap.EmailsFound)
	assert.Equal(t, int64(400), snap.TotalFetchTimeMs)
	assert.Equal(t, int64(200), snap.AvgFetchTimeMs)
	assert.True(t, snap.EndTime.IsZero())

	assert.Equal(t, "Pages: 2 visited, 1 fetched, 1 failed | Links: 2 discovered, 1 enqueued | Emails: 3", tr.LogProgress())
}

func TestWriteToFile(t *testing.T) {
	tr := NewTracker()
	tr.IncrementPagesVisited()

	path := filepath.Join(t.TempDir(), "metrics.json")
	require.NoError(t, tr.WriteToFile(path, "frontier_empty"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got storage.Metrics
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "frontier_empty", got.TerminationReason)
	assert.Equal(t, 1, got.PagesVisited)
	assert.False(t, got.EndTime.IsZero())
	assert.False(t, got.EndTime.Before(got.StartTime))
}

func TestWriteToFileBadPath(t *testing.T) {
	tr := NewTracker()
	err := tr.WriteToFile(filepath.Join(t.TempDir(), "missing", "metrics.json"), "max_pages")
	assert.Error(t, err)
}

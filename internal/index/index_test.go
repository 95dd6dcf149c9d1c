package index_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alvmarrod/find-emails/internal/index"
	"github.com/alvmarrod/find-emails/internal/storage"
)

func TestAddKeepsFirstSeenOrder(t *testing.T) {
	idx := index.New()

	assert.True(t, idx.Add("zed@x.io", "/contact"))
	assert.True(t, idx.Add("amy@x.io", "/about"))
	assert.True(t, idx.Add("zed@x.io", "/team"))

	assert.Equal(t, []string{"zed@x.io", "amy@x.io"}, idx.Emails())
	assert.Equal(t, []string{"amy@x.io", "zed@x.io"}, idx.Sorted())
	assert.Equal(t, []string{"/contact", "/team"}, idx.Paths("zed@x.io"))
}

func TestAddIsIdempotent(t *testing.T) {
	idx := index.New()

	assert.True(t, idx.Add("info@x.io", "/contact"))
	assert.False(t, idx.Add("info@x.io", "/contact"))
	assert.False(t, idx.Add("INFO@X.io", "/contact"))
	assert.False(t, idx.Add("  ", "/contact"))

	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, []string{"/contact"}, idx.Paths("info@x.io"))
}

func TestAddAllCountsNewEmails(t *testing.T) {
	idx := index.New()
	idx.Add("a@x.io", "/")

	added := idx.AddAll([]string{"a@x.io", "b@x.io", "c@x.io"}, "/contact")

	assert.Equal(t, 2, added)
	assert.Equal(t, []string{"/", "/contact"}, idx.Paths("a@x.io"))
	assert.True(t, idx.Has("C@X.IO"))
}

func TestMergeAndEqual(t *testing.T) {
	a := index.New()
	a.Add("info@x.io", "/contact")

	b := index.New()
	b.Add("info@x.io", "/about")
	b.Add("info@x.io", "/contact")
	b.Add("hr@x.io", "/jobs")

	a.Merge(b)

	want := index.FromMap(map[string][]string{
		"hr@x.io":   {"/jobs"},
		"info@x.io": {"/about", "/contact"},
	})
	assert.True(t, a.Equal(want))
	assert.Equal(t, []string{"/contact", "/about"}, a.Paths("info@x.io"))

	b.Add("new@x.io", "/")
	assert.False(t, a.Equal(b))
}

func TestToMapIsACopy(t *testing.T) {
	idx := index.New()
	idx.Add("info@x.io", "/contact")

	m := idx.ToMap()
	m["info@x.io"][0] = "/changed"

	assert.Equal(t, []string{"/contact"}, idx.Paths("info@x.io"))
}

func TestFlush(t *testing.T) {
	store, err := storage.NewStorage(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	runID, err := store.StartRun("crawl", []string{"https://x.io"})
	require.NoError(t, err)

	idx := index.New()
	idx.Add("info@x.io", "/contact")
	idx.Add("info@x.io", "/about")
	idx.Add("hr@x.io", "/jobs")

	require.NoError(t, idx.Flush(store, runID))

	locations, err := store.ListLocations()
	require.NoError(t, err)
	require.Len(t, locations, 3)
	assert.Equal(t, "hr@x.io", locations[0].Address)
	assert.Equal(t, "info@x.io", locations[1].Address)
	assert.Equal(t, "/contact", locations[1].Path)
	assert.Equal(t, "/about", locations[2].Path)
}

func TestLoadRebuildsStoredIndex(t *testing.T) {
	store, err := storage.NewStorage(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	first, err := store.StartRun("crawl", []string{"https://x.io"})
	require.NoError(t, err)
	a := index.New()
	a.Add("info@x.io", "/contact")
	require.NoError(t, a.Flush(store, first))

	second, err := store.StartRun("crawl", []string{"https://x.io"})
	require.NoError(t, err)
	b := index.New()
	b.Add("info@x.io", "/contact")
	b.Add("info@x.io", "/team")
	b.Add("hr@x.io", "/jobs")
	require.NoError(t, b.Flush(store, second))

	loaded, err := index.Load(store)
	require.NoError(t, err)

	assert.Equal(t, []string{"hr@x.io", "info@x.io"}, loaded.Emails())
	assert.Equal(t, []string{"/contact", "/team"}, loaded.Paths("info@x.io"))
}

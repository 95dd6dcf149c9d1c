package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrontierFIFO(t *testing.T) {
	f := NewFrontier()
	assert.True(t, f.IsEmpty())

	assert.True(t, f.Push(Entry{URL: "a", Depth: 0}))
	assert.True(t, f.Push(Entry{URL: "b", Depth: 1}))
	assert.Equal(t, 2, f.Size())

	e, ok := f.Pop()
	assert.True(t, ok)
	assert.Equal(t, Entry{URL: "a", Depth: 0}, e)

	e, ok = f.Pop()
	assert.True(t, ok)
	assert.Equal(t, "b", e.URL)

	_, ok = f.Pop()
	assert.False(t, ok)
}

func TestFrontierRejectsSeenURLs(t *testing.T) {
	f := NewFrontier()

	assert.True(t, f.Push(Entry{URL: "a", Depth: 0}))
	assert.False(t, f.Push(Entry{URL: "a", Depth: 1}))

	// Still rejected after it was popped
	f.Pop()
	assert.False(t, f.Push(Entry{URL: "a", Depth: 2}))

	f.MarkSeen("b")
	assert.True(t, f.Seen("b"))
	assert.False(t, f.Push(Entry{URL: "b"}))
	assert.True(t, f.IsEmpty())
}

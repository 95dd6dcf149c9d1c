package output_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alvmarrod/find-emails/internal/index"
	"github.com/alvmarrod/find-emails/internal/output"
)

func sampleIndex() *index.EmailIndex {
	idx := index.New()
	idx.Add("zoe@acme.dev", "/team")
	idx.Add("info@acme.dev", "/contact")
	idx.Add("info@acme.dev", "/")
	return idx
}

func TestFormatHuman(t *testing.T) {
	got := output.FormatHuman(sampleIndex(), false)

	want := "2 emails found:\n" +
		"info@acme.dev - /contact, /\n" +
		"zoe@acme.dev - /team"
	assert.Equal(t, want, got)
}

func TestFormatHumanQuiet(t *testing.T) {
	got := output.FormatHuman(sampleIndex(), true)

	assert.Equal(t, "info@acme.dev - /contact, /\nzoe@acme.dev - /team", got)
}

func TestFormatHumanEmpty(t *testing.T) {
	assert.Equal(t, "0 emails found:", output.FormatHuman(index.New(), false))
	assert.Equal(t, "", output.FormatHuman(index.New(), true))
}

func TestFormatJSON(t *testing.T) {
	got, err := output.FormatJSON(sampleIndex())
	require.NoError(t, err)

	assert.JSONEq(t, `{"emails": {"info@acme.dev": ["/contact", "/"], "zoe@acme.dev": ["/team"]}}`, got)
}

func TestFormatJSONEmpty(t *testing.T) {
	got, err := output.FormatJSON(index.New())
	require.NoError(t, err)

	assert.JSONEq(t, `{"emails": {}}`, got)
}

func TestJSONRoundTrip(t *testing.T) {
	idx := sampleIndex()

	text, err := output.Format(idx, output.JSON, false)
	require.NoError(t, err)

	parsed, err := output.ParseJSON([]byte(text))
	require.NoError(t, err)
	assert.True(t, idx.Equal(parsed))
	assert.Equal(t, idx.Paths("info@acme.dev"), parsed.Paths("info@acme.dev"))
}

func TestParseJSONErrors(t *testing.T) {
	_, err := output.ParseJSON([]byte(`{"emails": [`))
	assert.Error(t, err)

	_, err = output.ParseJSON([]byte(`{"other": {}}`))
	assert.Error(t, err)
}

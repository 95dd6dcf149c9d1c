package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestRobotsGuardAllowed(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		fmt.Fprint(w, "User-agent: *\nDisallow: /private\n\nUser-agent: find-emails\nDisallow: /team\n")
	}))
	defer srv.Close()

	guard := NewRobotsGuard(srv.Client(), "find-emails")
	ctx := context.Background()

	assert.True(t, guard.Allowed(ctx, mustParse(t, srv.URL+"/contact")))
	assert.False(t, guard.Allowed(ctx, mustParse(t, srv.URL+"/team")))
	assert.True(t, guard.Allowed(ctx, mustParse(t, srv.URL+"/private")))

	other := NewRobotsGuard(srv.Client(), "someone-else")
	assert.False(t, other.Allowed(ctx, mustParse(t, srv.URL+"/private")))

	// Rules are fetched once per host and guard
	assert.Equal(t, int32(2), hits.Load())
}

func TestRobotsGuardFailsOpen(t *testing.T) {
	t.Run("missing robots.txt", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		guard := NewRobotsGuard(srv.Client(), "find-emails")
		assert.True(t, guard.Allowed(context.Background(), mustParse(t, srv.URL+"/anything")))
	})

	t.Run("unreachable host", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		target := srv.URL
		srv.Close()

		guard := NewRobotsGuard(nil, "find-emails")
		assert.True(t, guard.Allowed(context.Background(), mustParse(t, target+"/contact")))
	})

	t.Run("nil guard", func(t *testing.T) {
		var guard *RobotsGuard
		assert.True(t, guard.Allowed(context.Background(), mustParse(t, "https://example.com/")))
	})
}

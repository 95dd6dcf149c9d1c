package engine

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/temoto/robotstxt"
)

// maxRobotsBodyBytes limits the size of robots.txt responses we will read
const maxRobotsBodyBytes = 512 * 1024

// RobotsGuard caches robots.txt rules per host. Any failure to obtain the
// rules allows everything.
type RobotsGuard struct {
	client *http.Client
	agent  string
	mu     sync.Mutex
	rules  map[string]*robotstxt.RobotsData // nil entry = allow all
}

// NewRobotsGuard creates a guard that fetches robots.txt with client
func NewRobotsGuard(client *http.Client, agent string) *RobotsGuard {
	if client == nil {
		client = http.DefaultClient
	}
	return &RobotsGuard{
		client: client,
		agent:  agent,
		rules:  make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether the guard's agent may fetch u
func (rg *RobotsGuard) Allowed(ctx context.Context, u *url.URL) bool {
	if rg == nil || u == nil {
		return true
	}

	data := rg.rulesFor(ctx, u)
	if data == nil {
		return true
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return data.TestAgent(path, rg.agent)
}

func (rg *RobotsGuard) rulesFor(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	host := strings.ToLower(u.Host)

	rg.mu.Lock()
	defer rg.mu.Unlock()

	if data, ok := rg.rules[host]; ok {
		return data
	}

	data := rg.fetch(ctx, u.Scheme, host)
	rg.rules[host] = data
	return data
}

func (rg *RobotsGuard) fetch(ctx context.Context, scheme, host string) *robotstxt.RobotsData {
	robotsURL := (&url.URL{Scheme: scheme, Host: host, Path: "/robots.txt"}).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", rg.agent)

	resp, err := rg.client.Do(req)
	if err != nil {
		logrus.Debugf("robots.txt unavailable for %s: %v", host, err)
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBodyBytes))
	if err != nil {
		return nil
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		logrus.Debugf("robots.txt for %s did not parse: %v", host, err)
		return nil
	}
	return data
}

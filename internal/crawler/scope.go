package crawler

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Scope keeps a crawl on the sites it was seeded with
type Scope struct {
	includeExternal bool
	// registrable domains of the seeds
	roots map[string]bool
}

// NewScope creates a scope rooted at the registrable domain of every
// seed. Seeds that do not parse are ignored.
func NewScope(seeds []string, includeExternal bool) *Scope {
	s := &Scope{
		includeExternal: includeExternal,
		roots:           make(map[string]bool),
	}
	for _, seed := range seeds {
		u, err := url.Parse(seed)
		if err != nil || u.Hostname() == "" {
			continue
		}
		s.roots[RootDomain(u.Hostname())] = true
	}
	return s
}

// Allows reports whether rawURL may be enqueued. Only http(s) URLs
// qualify; other sites only when external links are included.
func (s *Scope) Allows(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if s.includeExternal {
		return true
	}
	return s.roots[RootDomain(u.Hostname())]
}

// RootDomain returns the registrable domain of host.
// Example: blog.example.co.uk -> example.co.uk
func RootDomain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if net.ParseIP(host) != nil {
		return host
	}
	root, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		// localhost and bare suffixes
		return host
	}
	return root
}

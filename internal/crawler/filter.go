package crawler

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
	"github.com/sirupsen/logrus"
)

// patternScope selects the part of a URL a pattern is matched against
type patternScope int

const (
	scopeLocal patternScope = iota // path and query
	scopeHost                      // host, path and query
	scopeFull                      // the whole URL, scheme included
)

// compiledPattern is one URL pattern ready for matching
type compiledPattern struct {
	source string
	g      glob.Glob
	scope  patternScope
}

// Matcher decides which discovered links are worth following.
// Patterns use '*' as the only wildcard and match case-insensitively.
type Matcher struct {
	patterns []compiledPattern
}

// NewMatcher compiles patterns. Blank patterns are ignored; an empty set
// matches nothing.
func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		g, err := compilePattern(p)
		if err != nil {
			return nil, fmt.Errorf("invalid url pattern %q: %w", p, err)
		}
		scope := scopeOf(p)
		if scope == scopeHost {
			logrus.Debugf("URL pattern %q names a host, matching it against host and path", p)
		}
		m.patterns = append(m.patterns, compiledPattern{source: p, g: g, scope: scope})
	}
	return m, nil
}

// scopeOf classifies a pattern. A pattern with a scheme is matched against
// the whole URL. One whose first segment looks like a host name, such as
// "*example.com/contact*", is matched against host and path. Anything else
// is matched against path and query only.
func scopeOf(p string) patternScope {
	if strings.Contains(p, "://") {
		return scopeFull
	}
	first, _, hasSlash := strings.Cut(p, "/")
	if !hasSlash {
		return scopeLocal
	}
	if host := strings.Trim(first, "*"); strings.Contains(host, ".") {
		return scopeHost
	}
	return scopeLocal
}

// compilePattern quotes everything except '*' so gobwas metacharacters
// like '?', '[' and '{' match literally
func compilePattern(p string) (glob.Glob, error) {
	parts := strings.Split(strings.ToLower(p), "*")
	for i, part := range parts {
		parts[i] = glob.QuoteMeta(part)
	}
	return glob.Compile(strings.Join(parts, "*"))
}

// Match reports whether rawURL satisfies at least one pattern. Patterns
// without a scheme or host segment are matched against the path and query
// only, so a host name alone never causes a match.
func (m *Matcher) Match(rawURL string) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}

	full := strings.ToLower(rawURL)
	local, host := full, full
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		local = strings.ToLower(u.EscapedPath())
		if local == "" {
			local = "/"
		}
		if u.RawQuery != "" {
			local += "?" + strings.ToLower(u.RawQuery)
		}
		host = strings.ToLower(u.Host) + local
	}

	for _, p := range m.patterns {
		var candidate string
		switch p.scope {
		case scopeFull:
			candidate = full
		case scopeHost:
			candidate = host
		default:
			candidate = local
		}
		if p.g.Match(candidate) {
			return true
		}
	}
	return false
}

// Len returns the number of active patterns
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.patterns)
}

// Matches is the one-shot form of NewMatcher(patterns).Match(rawURL).
// Uncompilable pattern sets match nothing.
func Matches(rawURL string, patterns []string) bool {
	m, err := NewMatcher(patterns)
	if err != nil {
		return false
	}
	return m.Match(rawURL)
}

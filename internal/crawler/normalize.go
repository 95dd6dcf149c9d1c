package crawler

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// trackingParams never change page content
var trackingParams = map[string]struct{}{
	"gclid": {}, "fbclid": {}, "mc_cid": {}, "mc_eid": {},
}

// NormalizeURL returns the canonical form used to detect revisits: no
// fragment, lowercase scheme and host, no default port, no tracking
// parameters, and "/" for an empty path.
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid url %q: not absolute", raw)
	}

	u.Fragment = ""
	u.RawFragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	switch port := u.Port(); {
	case u.Scheme == "http" && port == "80", u.Scheme == "https" && port == "443":
		u.Host = u.Hostname()
	}

	if u.Path == "" {
		u.Path = "/"
		u.RawPath = ""
	} else if cleaned := path.Clean(u.Path); cleaned != u.Path {
		// Keep a trailing slash, some sites serve different pages for it
		if strings.HasSuffix(u.Path, "/") && cleaned != "/" {
			cleaned += "/"
		}
		u.Path = cleaned
		u.RawPath = ""
	}

	if u.RawQuery != "" {
		vals := u.Query()
		for k := range vals {
			lk := strings.ToLower(k)
			if _, ok := trackingParams[lk]; ok || strings.HasPrefix(lk, "utm_") {
				vals.Del(k)
			}
		}
		u.RawQuery = vals.Encode()
	}

	return u.String(), nil
}

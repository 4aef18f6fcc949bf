package authserver

import (
	"net/url"
	"strings"
)

// RedirectAllowList holds the addresses confirmation links may send the
// browser to. A candidate is allowed when its scheme and host match an
// entry and its path is the entry's path or below it.
type RedirectAllowList struct {
	allowed []*url.URL
}

// NewRedirectAllowList parses urls, skipping empty and unparsable entries
func NewRedirectAllowList(urls ...string) RedirectAllowList {
	var l RedirectAllowList
	for _, raw := range urls {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" {
			continue
		}
		l.allowed = append(l.allowed, u)
	}
	return l
}

// Allows reports whether raw may be used as a redirect target
func (l RedirectAllowList) Allows(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.User != nil {
		return false
	}
	for _, a := range l.allowed {
		if !strings.EqualFold(a.Scheme, u.Scheme) || !strings.EqualFold(a.Host, u.Host) {
			continue
		}
		base := strings.TrimSuffix(a.Path, "/")
		if base == "" || u.Path == base || strings.HasPrefix(u.Path, base+"/") {
			return true
		}
	}
	return false
}

// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package cookie implements the Cookie layer's in-memory jar (§4.11): a
// store keyed by (domain, path, name) that attaches matching cookies to
// outgoing requests and learns new ones from Set-Cookie response headers.
// Persistence across process restarts is explicitly out of scope
// (spec.md §1's Non-goals), so Jar's state lives only as long as the
// caller holds a reference to it, matching the teacher's convention of
// plain, caller-owned state rather than a hidden global store.
package cookie

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

type entry struct {
	name, value string
	domain      string
	path        string
	secure      bool
	httpOnly    bool
	hostOnly    bool
	expires     time.Time // zero means a session cookie: never expires on its own
}

// A Jar is the Cookie layer's cookie store. The zero value is not usable;
// construct one with NewJar. Jar is safe for concurrent use by multiple
// goroutines, since the engine may be invoked from many of them sharing
// one Client (§5).
type Jar struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewJar constructs an empty Jar.
func NewJar() *Jar {
	return &Jar{entries: make(map[string]*entry)}
}

func entryKey(domain, path, name string) string {
	return domain + "\x00" + path + "\x00" + name
}

// CookieHeader returns the Cookie header value to send with a request to
// u: every stored cookie whose domain, path, Secure attribute, and
// expiration all permit it, joined as "name=value; name2=value2". The order
// of the cookies in the header is not defined. It returns "" if no
// cookie matches, or if j is nil (a nil Jar behaves as an empty one so
// Client can treat "no cookie support configured" and "empty jar"
// identically).
func (j *Jar) CookieHeader(u *url.URL) string {
	if j == nil {
		return ""
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	now := time.Now()
	host := strings.ToLower(u.Hostname())
	var parts []string
	for k, e := range j.entries {
		if !e.expires.IsZero() && e.expires.Before(now) {
			delete(j.entries, k)
			continue
		}
		if e.secure && !strings.EqualFold(u.Scheme, "https") {
			continue
		}
		if !domainMatch(host, e.domain, e.hostOnly) {
			continue
		}
		if !pathMatch(u.EscapedPath(), e.path) {
			continue
		}
		parts = append(parts, e.name+"="+e.value)
	}
	return strings.Join(parts, "; ")
}

// SetCookies parses every Set-Cookie field in header and updates the jar
// accordingly: a cookie whose Domain attribute fails the public-suffix
// guard in match.go is rejected outright (§4.11, "respecting domain
// match"); one with MaxAge<0, or an Expires time in the past, deletes any
// existing matching entry instead of storing a new one, per RFC 6265
// §5.3. A nil Jar silently discards Set-Cookie headers.
func (j *Jar) SetCookies(u *url.URL, header http.Header) {
	if j == nil {
		return
	}
	cookies := readSetCookies(header)
	if len(cookies) == 0 {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	for _, c := range cookies {
		domain, hostOnly, ok := domainForCookie(u, c)
		if !ok {
			continue
		}
		path := c.Path
		if path == "" {
			path = defaultPath(u.EscapedPath())
		}
		key := entryKey(domain, path, c.Name)

		if c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(time.Now())) {
			delete(j.entries, key)
			continue
		}

		e := &entry{
			name:     c.Name,
			value:    c.Value,
			domain:   domain,
			path:     path,
			secure:   c.Secure,
			httpOnly: c.HttpOnly,
			hostOnly: hostOnly,
		}
		switch {
		case c.MaxAge > 0:
			e.expires = time.Now().Add(time.Duration(c.MaxAge) * time.Second)
		case !c.Expires.IsZero():
			e.expires = c.Expires
		}
		j.entries[key] = e
	}
}

// readSetCookies parses every Set-Cookie field in header using net/http's
// own cookie-parsing logic (via the Cookies method of a throwaway
// Response), rather than hand-rolling RFC 6265 attribute parsing: low-
// level wire syntax is exactly the kind of thing this engine treats as an
// external collaborator's job (§6).
func readSetCookies(header http.Header) []*http.Cookie {
	resp := &http.Response{Header: header}
	return resp.Cookies()
}

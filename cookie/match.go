// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cookie

import (
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// domainForCookie computes the (domain, hostOnly) pair a Set-Cookie
// response should be stored under, rejecting it if its Domain attribute
// does not pass the checks net/http/cookiejar itself applies: the domain
// must be a suffix of (or equal to) the request host, and it must not be
// a bare entry on the public suffix list (accepting "Domain=com" would let
// any *.com site read cookies meant for one origin).
func domainForCookie(u *url.URL, c *http.Cookie) (domain string, hostOnly bool, ok bool) {
	host := strings.ToLower(u.Hostname())
	if c.Domain == "" {
		return host, true, true
	}

	d := strings.ToLower(strings.TrimPrefix(c.Domain, "."))
	if d != host && !strings.HasSuffix(host, "."+d) {
		return "", false, false
	}
	if suffix, icann := publicsuffix.PublicSuffix(d); icann && d == suffix {
		return "", false, false
	}
	return d, false, true
}

// domainMatch reports whether host matches a stored cookie's domain,
// respecting the host-only flag a cookie with no explicit Domain
// attribute is tagged with (RFC 6265 §5.1.3).
func domainMatch(host, domain string, hostOnly bool) bool {
	if hostOnly {
		return host == domain
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// pathMatch implements RFC 6265 §5.1.4's path-match algorithm.
func pathMatch(reqPath, cookiePath string) bool {
	if reqPath == cookiePath {
		return true
	}
	if !strings.HasPrefix(reqPath, cookiePath) {
		return false
	}
	if strings.HasSuffix(cookiePath, "/") {
		return true
	}
	return len(reqPath) > len(cookiePath) && reqPath[len(cookiePath)] == '/'
}

// defaultPath implements RFC 6265 §5.1.4's default-path algorithm for a
// Set-Cookie response with no explicit Path attribute.
func defaultPath(uriPath string) string {
	if uriPath == "" || uriPath[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(uriPath, "/")
	if i <= 0 {
		return "/"
	}
	return uriPath[:i]
}

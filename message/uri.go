// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package message

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// URI parsing and joining are treated as an external collaborator per §6 of
// the engine specification; this file wraps the standard library's net/url
// rather than reimplementing RFC 3986. The wrapper's job is the small set of
// operations the layers actually need: computing the (scheme, host, port)
// Origin used as the connection pool key, stripping userinfo, and resolving
// a redirect Location header against the current request URL.

// DefaultPort returns the scheme's default port, or 0 if the scheme has no
// well-known default.
func DefaultPort(scheme string) int {
	switch strings.ToLower(scheme) {
	case "http":
		return 80
	case "https":
		return 443
	default:
		return 0
	}
}

// Origin is the (scheme, host, port) triple that keys a pooled Connection.
type Origin struct {
	Scheme string
	Host   string
	Port   int
}

func (o Origin) String() string {
	return fmt.Sprintf("%s://%s:%d", o.Scheme, o.Host, o.Port)
}

// OriginOf computes the Origin of u, applying the scheme's default port if
// u.Host does not specify one explicitly.
func OriginOf(u *url.URL) Origin {
	host := u.Hostname()
	port := u.Port()
	p := DefaultPort(u.Scheme)
	if port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			p = n
		}
	}
	return Origin{Scheme: strings.ToLower(u.Scheme), Host: strings.ToLower(host), Port: p}
}

// SameOrigin reports whether a and b share the same Origin.
func SameOrigin(a, b *url.URL) bool {
	return OriginOf(a) == OriginOf(b)
}

// StripUserinfo returns a shallow copy of u with any userinfo (user:pass)
// removed, for use once the BasicAuth layer has consumed it into an
// Authorization header and the request line must not leak credentials.
func StripUserinfo(u *url.URL) *url.URL {
	if u.User == nil {
		return u
	}
	u2 := *u
	u2.User = nil
	return &u2
}

// ResolveLocation resolves a Location header value against base, as required
// by the Redirect layer (§4.2). Relative and absolute locations are both
// accepted, matching net/url.URL.ResolveReference's semantics.
func ResolveLocation(base *url.URL, location string) (*url.URL, error) {
	ref, err := url.Parse(location)
	if err != nil {
		return nil, err
	}
	return base.ResolveReference(ref), nil
}

// RequestTarget renders the request-target used on the request line: for an
// origin-form request (the common case) this is path?query, defaulting to
// "/" when the path is empty; CONNECT/proxy requests use the absolute form
// and are out of scope for this engine's Message layer, which always emits
// origin-form.
func RequestTarget(u *url.URL) string {
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		return path + "?" + u.RawQuery
	}
	return path
}

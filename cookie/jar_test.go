// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cookie_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kesh-dev/transact/cookie"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestJar_SetThenSend(t *testing.T) {
	j := cookie.NewJar()
	u := mustURL(t, "http://example.test/a")

	h := make(http.Header)
	h.Add("Set-Cookie", "sid=abc123; Path=/")
	j.SetCookies(u, h)

	assert.Equal(t, "sid=abc123", j.CookieHeader(u))
}

func TestJar_SecureCookieNotSentOverPlainHTTP(t *testing.T) {
	j := cookie.NewJar()
	u := mustURL(t, "https://example.test/a")

	h := make(http.Header)
	h.Add("Set-Cookie", "sid=abc123; Secure")
	j.SetCookies(u, h)

	assert.Equal(t, "sid=abc123", j.CookieHeader(u))
	assert.Equal(t, "", j.CookieHeader(mustURL(t, "http://example.test/a")))
}

func TestJar_PathScoping(t *testing.T) {
	j := cookie.NewJar()
	u := mustURL(t, "http://example.test/account/login")

	h := make(http.Header)
	h.Add("Set-Cookie", "sid=abc123; Path=/account")
	j.SetCookies(u, h)

	assert.Equal(t, "sid=abc123", j.CookieHeader(mustURL(t, "http://example.test/account/settings")))
	assert.Equal(t, "", j.CookieHeader(mustURL(t, "http://example.test/other")))
}

func TestJar_DomainRejectsBarePublicSuffix(t *testing.T) {
	j := cookie.NewJar()
	u := mustURL(t, "http://example.com/a")

	h := make(http.Header)
	h.Add("Set-Cookie", "sid=abc123; Domain=com")
	j.SetCookies(u, h)

	assert.Equal(t, "", j.CookieHeader(u))
}

func TestJar_DomainAttributeAllowsSubdomain(t *testing.T) {
	j := cookie.NewJar()
	u := mustURL(t, "http://www.example.test/a")

	h := make(http.Header)
	h.Add("Set-Cookie", "sid=abc123; Domain=example.test")
	j.SetCookies(u, h)

	assert.Equal(t, "sid=abc123", j.CookieHeader(mustURL(t, "http://other.example.test/b")))
}

func TestJar_MaxAgeNegativeDeletesCookie(t *testing.T) {
	j := cookie.NewJar()
	u := mustURL(t, "http://example.test/a")

	h := make(http.Header)
	h.Add("Set-Cookie", "sid=abc123; Path=/")
	j.SetCookies(u, h)
	require.Equal(t, "sid=abc123", j.CookieHeader(u))

	del := make(http.Header)
	del.Add("Set-Cookie", "sid=abc123; Path=/; Max-Age=-1")
	j.SetCookies(u, del)

	assert.Equal(t, "", j.CookieHeader(u))
}

func TestJar_NilJarIsNoOp(t *testing.T) {
	var j *cookie.Jar
	u := mustURL(t, "http://example.test/a")
	assert.Equal(t, "", j.CookieHeader(u))
	assert.NotPanics(t, func() {
		h := make(http.Header)
		h.Add("Set-Cookie", "sid=abc123")
		j.SetCookies(u, h)
	})
}

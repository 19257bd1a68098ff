// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package auth implements the BasicAuth and AWS4Auth layers (§4.10): both
// inject an Authorization header before the request reaches the
// ConnectionPool layer, but differ in what they sign over, so each gets
// its own file grounded on the collaborator it wraps.
package auth

import (
	"encoding/base64"
	"net/http"
	"net/url"

	"github.com/kesh-dev/transact/message"
)

// ApplyBasic implements the BasicAuth layer's injection rule: if u carries
// userinfo and header has no Authorization set yet, it adds
// "Basic <base64(user:pass)>" and returns a copy of u with the userinfo
// stripped, so the credentials never leak onto the request line. It is a
// no-op, returning u unchanged, if there is no userinfo or Authorization
// is already set.
func ApplyBasic(u *url.URL, header http.Header) *url.URL {
	if u.User == nil || header.Get("Authorization") != "" {
		return u
	}
	user := u.User.Username()
	pass, _ := u.User.Password()
	token := base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
	header.Set("Authorization", "Basic "+token)
	return message.StripUserinfo(u)
}

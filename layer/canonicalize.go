// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package layer

import (
	"context"
	"net/http"
	"net/textproto"

	"golang.org/x/net/http/httpguts"

	"github.com/kesh-dev/transact/message"
)

// canonicalizeMiddleware implements the Canonicalize layer: it normalizes
// header field name casing to the MIME-style canonical form, so a caller
// who built its header map with e.g. "content-type" or "CONTENT-TYPE"
// still produces the same wire bytes every other layer expects to find
// under "Content-Type". Field names that are not valid HTTP tokens are
// left untouched rather than silently dropped.
func canonicalizeMiddleware(cfg *Config) Middleware {
	if !cfg.CanonicalizeHeaders {
		return passthrough
	}
	return func(next Handler) Handler {
		return func(ctx context.Context, c *Ctx) (*message.Response, error) {
			c.Header = canonicalizeHeader(c.Header)
			return next(ctx, c)
		}
	}
}

func canonicalizeHeader(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, vs := range h {
		key := k
		if httpguts.ValidHeaderFieldName(k) {
			key = textproto.CanonicalMIMEHeaderKey(k)
		}
		out[key] = append(out[key], vs...)
	}
	return out
}

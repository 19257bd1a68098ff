// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package layer

import (
	"context"

	"github.com/kesh-dev/transact/message"
)

// cookieMiddleware implements the Cookie layer (§4.11): before each
// request it attaches matching cookies from cfg.Jar, and after the
// response it learns any Set-Cookie lines back into the same jar.
func cookieMiddleware(cfg *Config) Middleware {
	if cfg.Jar == nil {
		return passthrough
	}
	return func(next Handler) Handler {
		return func(ctx context.Context, c *Ctx) (*message.Response, error) {
			if v := cfg.Jar.CookieHeader(c.URI); v != "" {
				c.Header.Set("Cookie", v)
			} else {
				c.Header.Del("Cookie")
			}
			resp, err := next(ctx, c)
			if resp != nil {
				cfg.Jar.SetCookies(c.URI, resp.Header)
			}
			return resp, err
		}
	}
}

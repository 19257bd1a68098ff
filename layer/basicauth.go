// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package layer

import (
	"context"

	"github.com/kesh-dev/transact/auth"
	"github.com/kesh-dev/transact/message"
)

// basicAuthMiddleware implements the BasicAuth layer (§4.10): it injects a
// Basic Authorization header derived from the target URL's userinfo and
// strips the userinfo from the URI so it never reaches the request line.
func basicAuthMiddleware(cfg *Config) Middleware {
	if !cfg.BasicAuth {
		return passthrough
	}
	return func(next Handler) Handler {
		return func(ctx context.Context, c *Ctx) (*message.Response, error) {
			c.URI = auth.ApplyBasic(c.URI, c.Header)
			return next(ctx, c)
		}
	}
}

// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package layer

import (
	"context"
	"strconv"
	"strings"

	"github.com/kesh-dev/transact/message"
)

// poolMiddleware implements the ConnectionPool layer (§4.6): it acquires a
// Transaction for the target's Origin, exposes it to the nested Debug/
// Timeout/Stream layers as Ctx.Transport, and releases it once they
// return — keeping it if the exchange succeeded and the response
// permitted reuse, discarding it otherwise.
func poolMiddleware(cfg *Config) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, c *Ctx) (*message.Response, error) {
			key := message.OriginOf(c.URI)
			useTLS := strings.EqualFold(c.URI.Scheme, "https")
			addr := c.URI.Hostname() + ":" + strconv.Itoa(key.Port)

			tx, err := cfg.Pool.Acquire(ctx, key, addr, useTLS)
			if err != nil {
				return nil, err
			}

			c.Transport = tx
			resp, err := next(ctx, c)
			if err != nil {
				tx.Abort()
				return resp, err
			}
			tx.Release(c.KeepAlive)
			return resp, nil
		}
	}
}

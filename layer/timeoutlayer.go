// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package layer

import (
	"context"

	"github.com/kesh-dev/transact/message"
	"github.com/kesh-dev/transact/stream"
)

// timeoutMiddleware implements the Timeout layer (§4.8): it wraps the
// acquired Transport in stream.DeadlineConn so an idle read aborts after
// cfg.ReadTimeout. A zero ReadTimeout disables it, per the readtimeout=0
// default (§6) — see stream.DeadlineConn's doc comment for why that is
// the corrected behavior rather than the original source's known bug
// (§9).
func timeoutMiddleware(cfg *Config) Middleware {
	if cfg.ReadTimeout <= 0 {
		return passthrough
	}
	return func(next Handler) Handler {
		return func(ctx context.Context, c *Ctx) (*message.Response, error) {
			dt, ok := c.Transport.(stream.DeadlineTransport)
			if !ok {
				return next(ctx, c)
			}
			c.Transport = stream.NewDeadlineConn(dt, cfg.ReadTimeout, func() {
				cfg.Logger.Debug().Dur("timeout", cfg.ReadTimeout).Msg("transact: read timeout")
			})
			return next(ctx, c)
		}
	}
}

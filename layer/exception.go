// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package layer

import (
	"context"

	"github.com/kesh-dev/transact/message"
	"github.com/kesh-dev/transact/xerr"
)

// exceptionMiddleware implements the Exception layer (§4.5). It must be
// the layer immediately outside Retry (see DESIGN.md's resolution of the
// Exception-vs-Retry ordering question): it only inspects the final
// response once Retry has exhausted every attempt it is willing to make,
// so a 5xx that later succeeds on retry never becomes a raised error.
func exceptionMiddleware(cfg *Config) Middleware {
	if !cfg.StatusException {
		return passthrough
	}
	return func(next Handler) Handler {
		return func(ctx context.Context, c *Ctx) (*message.Response, error) {
			resp, err := next(ctx, c)
			if err != nil {
				return resp, err
			}
			if resp.Status >= 400 {
				return resp, &xerr.StatusError{
					Status:     resp.Status,
					Reason:     resp.Reason,
					MethodPath: c.Req.Method + " " + c.Req.RequestTarget(),
					Response:   resp,
				}
			}
			return resp, nil
		}
	}
}

// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package layer

import (
	"context"

	"github.com/kesh-dev/transact/message"
)

// aws4Middleware implements the AWS4Auth layer (§4.10). It runs after the
// Message layer, once headers are finalized, and before Exception/Retry/
// ConnectionPool, since signing needs no transport state. Per §4.1's
// ordering rationale it signs the request once per logical call, covering
// every retry attempt made from the same signature — AWS4Auth sits outside
// the Retry layer in the fixed stack order.
func aws4Middleware(cfg *Config) Middleware {
	if cfg.AWS4Signer == nil {
		return passthrough
	}
	return func(next Handler) Handler {
		return func(ctx context.Context, c *Ctx) (*message.Response, error) {
			if err := cfg.AWS4Signer.Sign(c.Req); err != nil {
				return nil, err
			}
			return next(ctx, c)
		}
	}
}

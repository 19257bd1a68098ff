// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package layer

import (
	"context"
	"time"

	"github.com/kesh-dev/transact/message"
	"github.com/kesh-dev/transact/retry"
)

// retryMiddleware implements the Retry layer (§4.4): it re-invokes next
// (Exception is outside it, so next here is ConnectionPool/Debug/Timeout/
// Stream) once per attempt, resetting to a fresh Request/Response pair via
// req.Retry() between attempts, until cfg.RetryPolicy says to stop.
func retryMiddleware(cfg *Config) Middleware {
	policy := cfg.RetryPolicy
	if policy == nil {
		policy = retry.DefaultPolicy
	}
	return func(next Handler) Handler {
		return func(ctx context.Context, c *Ctx) (*message.Response, error) {
			start := time.Now()
			req := c.Req

			for num := 0; ; num++ {
				c.Req = req
				resp, err := next(ctx, c)

				handedOff := resp != nil && resp.Body.IsConsumed()
				a := &retry.Attempt{
					Num:                num,
					Start:              start,
					Method:             req.Method,
					Response:           resp,
					Err:                err,
					BodyReplayable:     req.Body.Replayable(),
					ResponseHandedOff:  handedOff,
					RetryNonIdempotent: cfg.RetryNonIdempotent,
				}

				if !policy.Decide(a) {
					if cfg.RetryMetrics != nil {
						cfg.RetryMetrics.ObserveAttempt(num, false)
					}
					return resp, err
				}

				wait := policy.Wait(a)
				if cfg.RetryMetrics != nil {
					cfg.RetryMetrics.ObserveAttempt(num, true)
					cfg.RetryMetrics.ObserveBackoff(wait)
				}
				cfg.Logger.Debug().
					Int("attempt", num).
					Dur("backoff", wait).
					AnErr("err", err).
					Msg("transact: retrying request")

				timer := time.NewTimer(wait)
				select {
				case <-timer.C:
				case <-ctx.Done():
					timer.Stop()
					return resp, err
				}

				req = req.Retry()
			}
		}
	}
}

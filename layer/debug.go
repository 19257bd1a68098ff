// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package layer

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/kesh-dev/transact/message"
	"github.com/kesh-dev/transact/pool"
	"github.com/kesh-dev/transact/stream"
)

// debugMiddleware implements the Debug layer (§4.9): when cfg.Verbose is
// at least 1 it tees every byte read and written on the acquired
// Transport to cfg.Logger, without altering them. It never changes
// behavior on error.
func debugMiddleware(cfg *Config) Middleware {
	if cfg.Verbose <= 0 {
		return passthrough
	}
	return func(next Handler) Handler {
		return func(ctx context.Context, c *Ctx) (*message.Response, error) {
			c.Transport = newDebugTransport(c.Transport, cfg, c.Req)
			return next(ctx, c)
		}
	}
}

// debugTransport tees bytes crossing a stream.Transport to a zerolog
// sink. It always implements SetReadDeadline (delegating to the inner
// transport when available, and no-oping otherwise) so the Timeout layer
// can wrap it regardless of where Debug falls relative to Timeout in the
// stack.
type debugTransport struct {
	inner stream.Transport
	cfg   *Config
	req   *message.Request
}

func newDebugTransport(inner stream.Transport, cfg *Config, req *message.Request) *debugTransport {
	return &debugTransport{inner: inner, cfg: cfg, req: req}
}

func (d *debugTransport) Read(p []byte) (int, error) {
	n, err := d.inner.Read(p)
	if n > 0 {
		d.tee("read", p[:n])
	}
	return n, err
}

func (d *debugTransport) Write(p []byte) (int, error) {
	n, err := d.inner.Write(p)
	if n > 0 {
		d.tee("write", p[:n])
	}
	return n, err
}

func (d *debugTransport) CloseWrite() error {
	return d.inner.CloseWrite()
}

func (d *debugTransport) SetReadDeadline(t time.Time) error {
	if dt, ok := d.inner.(interface{ SetReadDeadline(time.Time) error }); ok {
		return dt.SetReadDeadline(t)
	}
	return nil
}

func (d *debugTransport) tee(dir string, b []byte) {
	ev := d.cfg.Logger.Debug().Str("dir", dir).Int("bytes", len(b))
	if d.cfg.Verbose >= 3 {
		ev = ev.Str("hex", hex.EncodeToString(b))
	}
	if d.req != nil {
		ev = ev.Str("method", d.req.Method).Str("target", d.req.RequestTarget())
	}
	if tx, ok := d.inner.(*pool.Transaction); ok {
		ev = ev.Str("conn", tx.Connection().ID.String()).Uint64("seq", tx.Seq())
	}
	ev.Msg("transact: wire")
}

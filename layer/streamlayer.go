// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package layer

import (
	"context"

	"github.com/kesh-dev/transact/message"
	"github.com/kesh-dev/transact/stream"
)

// streamHandler is the leaf of the stack: it drives the Stream layer
// (§4.7) over the fully-decorated Transport and records whether the
// connection is eligible for reuse into Ctx.KeepAlive, for the
// ConnectionPool layer above to read once this Handler returns.
func streamHandler(cfg *Config) Handler {
	return func(ctx context.Context, c *Ctx) (*message.Response, error) {
		s := stream.New(c.Transport)
		resp, keepAlive, err := s.Do(ctx, c.Req, stream.Options{
			ExpectTimeout: cfg.ExpectTimeout,
			ResponseSink:  cfg.ResponseSink,
		})
		c.KeepAlive = keepAlive
		return resp, err
	}
}

// openHandler is the leaf Handler for the Open escape hatch (§6 "open"):
// instead of running the Stream layer's own reader/writer tasks, it hands
// the raw *stream.Stream and the Request to the caller-supplied function,
// suppressing the internal machinery exactly as "open" is documented to
// do.
func openHandler(cfg *Config, fn OpenFunc) Handler {
	return func(ctx context.Context, c *Ctx) (*message.Response, error) {
		s := stream.New(c.Transport)
		resp, keepAlive, err := fn(ctx, s, c.Req)
		c.KeepAlive = keepAlive
		return resp, err
	}
}

// OpenFunc is the caller-supplied callback driving a raw Stream for the
// Open escape hatch. It must report the same (Response, keepAlive, error)
// shape stream.Stream.Do does, since the ConnectionPool layer above relies
// on keepAlive to decide whether to recycle the connection.
type OpenFunc func(ctx context.Context, s *stream.Stream, req *message.Request) (*message.Response, bool, error)

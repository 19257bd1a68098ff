// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package layer implements the request pipeline's scaffolding (§4.1 of the
// engine specification) and the layer constructors that are not already
// standalone packages: Redirect, BasicAuth, ContentTypeDetection, Cookie,
// Canonicalize, Message, AWS4Auth, Exception, ConnectionPool, Debug, and
// Timeout. Retry and Stream are driven from here too, but their decision
// logic lives in the retry and stream packages respectively.
//
// A layer is a Middleware: a function from the next Handler in the stack to
// a new Handler that wraps it. Build assembles the fixed layer order from
// §2's table by selectively wrapping a Config's enabled layers around the
// Stream layer's leaf Handler, so a disabled layer costs nothing at
// runtime — it is simply never wrapped in.
package layer

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kesh-dev/transact/message"
	"github.com/kesh-dev/transact/stream"
)

// A Handler executes one request descent through some suffix of the layer
// stack and returns the resulting Response (or the first unrecovered
// error).
type Handler func(ctx context.Context, c *Ctx) (*message.Response, error)

// A Middleware wraps a Handler to build the next Handler out from it,
// i.e. one layer of the stack.
type Middleware func(next Handler) Handler

// passthrough is the Middleware used when a layer is disabled by
// Config: it contributes nothing to the stack.
func passthrough(next Handler) Handler { return next }

// A Ctx is the mutable (target, request, body, options) tuple threaded
// through the layer stack (§4.1). Before the Message layer runs, Method,
// URI, Header, and Body are the tuple's live fields; Req is nil. The
// Message layer constructs Req from them; from that point on Req is the
// live value and Header/Body on Ctx are only read again by a Redirect hop
// building the next attempt's tuple from scratch. Transport and KeepAlive
// are set by the ConnectionPool layer and the layers nested inside it.
type Ctx struct {
	Method string
	URI    *url.URL
	Header http.Header
	Body   message.Body

	// Req is populated by the Message layer and shared by every layer
	// below it, including across Retry attempts (each attempt replaces
	// Req with req.Retry()).
	Req *message.Request

	// Transport is the byte stream the ConnectionPool layer acquires and
	// the Debug and Timeout layers decorate, in that order, before the
	// Stream layer drives it.
	Transport stream.Transport

	// KeepAlive is set by the Stream layer's leaf Handler and read by the
	// ConnectionPool layer after its next() call returns, since a
	// Handler's return shape has no room for a side channel otherwise.
	KeepAlive bool

	// Redirects counts completed redirect hops, enforced against
	// Config.RedirectLimit by the Redirect layer.
	Redirects int
}

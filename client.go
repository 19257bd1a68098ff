// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transact

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/kesh-dev/transact/layer"
	"github.com/kesh-dev/transact/message"
	"github.com/kesh-dev/transact/retry"
	"github.com/kesh-dev/transact/xerr"
)

// A Client executes requests through the layer stack (§4.1) against one
// Engine's shared connection pool. A Client itself holds no per-call
// state: every field it needs beyond the Engine comes from the Options
// passed to Do or Open, so one Client is safe to reuse concurrently
// across goroutines and across completely different destinations, the
// same way the teacher's Client wraps a single shared RoundTripper.
type Client struct {
	Engine *Engine
	Logger zerolog.Logger
}

// NewClient constructs a Client bound to engine. A nil engine uses
// DefaultEngine. The Client's Logger defaults to the Engine's own Logger;
// assign Client.Logger afterward to override it for this Client alone.
func NewClient(engine *Engine) *Client {
	if engine == nil {
		engine = DefaultEngine()
	}
	return &Client{Engine: engine, Logger: engine.Logger}
}

// Do executes one logical call (including any redirects and retries the
// resolved layer stack performs) for method against rawURL, and returns
// the final Response or the first unrecovered error.
func (c *Client) Do(ctx context.Context, method, rawURL string, header http.Header, body message.Body, opts Options) (*message.Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &xerr.ArgumentError{Msg: "invalid url: " + err.Error()}
	}
	if header == nil {
		header = make(http.Header)
	}
	cfg := c.buildConfig(opts)
	h := layer.Build(cfg)
	cc := &layer.Ctx{Method: method, URI: u, Header: header, Body: body}
	return h(ctx, cc)
}

// Open executes one logical call like Do, except the innermost Stream
// layer hands control of the raw connection to fn instead of driving the
// read/write tasks internally — the engine specification's "open" escape
// hatch (§6), for callers that need to negotiate a protocol upgrade or
// otherwise bypass the normal request/response framing.
func (c *Client) Open(ctx context.Context, method, rawURL string, header http.Header, opts Options, fn layer.OpenFunc) (*message.Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &xerr.ArgumentError{Msg: "invalid url: " + err.Error()}
	}
	if header == nil {
		header = make(http.Header)
	}
	cfg := c.buildConfig(opts)
	h := layer.BuildOpen(cfg, fn)
	cc := &layer.Ctx{Method: method, URI: u, Header: header, Body: message.Body{}}
	return h(ctx, cc)
}

func (c *Client) buildConfig(opts Options) *layer.Config {
	logger := c.Logger
	pol := retryPolicy(opts)

	return &layer.Config{
		Redirect:            opts.Redirect,
		RedirectLimit:       opts.RedirectLimit,
		BasicAuth:           opts.BasicAuthorization,
		DetectContentType:   opts.DetectContentType,
		Jar:                 opts.Cookies,
		CanonicalizeHeaders: opts.CanonicalizeHeaders,
		AWS4Signer:          opts.AWSSigner,
		RetryPolicy:         pol,
		RetryNonIdempotent:  opts.RetryNonIdempotent,
		StatusException:     opts.StatusException,
		Pool:                c.Engine.Pool,
		ReadTimeout:         opts.ReadTimeout,
		ResponseSink:        opts.ResponseStream,
		Verbose:             opts.Verbose,
		Logger:              logger,
		UserAgent:           defaultUserAgent,
		RetryMetrics:        c.Engine.RetryMetrics,
	}
}

// retryPolicy translates Options's flat retry fields into a retry.Policy,
// the same way the Message layer's framing choice is derived from the
// Body's kind rather than stored as a separate flag.
func retryPolicy(opts Options) retry.Policy {
	if !opts.Retry || opts.Retries <= 0 {
		return retry.Never
	}
	return retry.NewPolicy(
		retry.Times(opts.Retries).And(retry.Recoverable),
		retry.NewExpWaiter(time.Second, 10, 0),
	)
}

// defaultUserAgent is kept here, rather than in layer, so the root
// package owns every caller-visible default per §6.
const defaultUserAgent = "transact/1.0"

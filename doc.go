// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transact is a client-side HTTP/1.1 request execution engine: a
// fixed stack of composable layers (redirect following, authentication,
// cookies, retry with classified errors, connection pooling, and the
// wire-level request/response state machine) wrapped around a single
// logical call.
//
// A Client is the entry point. Do executes one call and returns its final
// Response or the first unrecovered error; Open does the same but hands
// the raw Stream to a caller-supplied function instead of driving the
// request/response exchange internally, for protocols layered on top of
// an HTTP/1.1 connection upgrade.
//
//	client := transact.NewClient(nil) // nil uses the package's DefaultEngine
//	resp, err := client.Do(ctx, "GET", "https://example.test/", nil, message.Body{}, transact.DefaultOptions())
//
// An Engine owns the state that must outlive one call — the connection
// pool, principally — so that keep-alive connections are actually reused
// across calls. Package-level functions (Get, Post, Do) operate against
// DefaultEngine, a lazily-constructed Engine good enough for programs that
// do not need more than one pool.
//
// Options configures a single call: which layers are enabled and how they
// behave. DefaultOptions returns the engine's documented defaults; most
// callers start there and override only the fields they need.
package transact

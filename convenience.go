// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transact

import (
	"context"
	"net/http"

	"github.com/kesh-dev/transact/message"
)

// Do executes method against rawURL using a Client bound to DefaultEngine
// and opts. It is a convenience for callers that do not need their own
// Engine or Client, mirroring the teacher's package-level Do/Get/Post
// helpers over its default RoundTripper.
func Do(ctx context.Context, method, rawURL string, header http.Header, body message.Body, opts Options) (*message.Response, error) {
	return NewClient(DefaultEngine()).Do(ctx, method, rawURL, header, body, opts)
}

// Get is shorthand for Do(ctx, http.MethodGet, rawURL, header, message.Body{}, opts).
func Get(ctx context.Context, rawURL string, header http.Header, opts Options) (*message.Response, error) {
	return Do(ctx, http.MethodGet, rawURL, header, message.Body{}, opts)
}

// Post is shorthand for Do(ctx, http.MethodPost, rawURL, header, body, opts).
func Post(ctx context.Context, rawURL string, header http.Header, body message.Body, opts Options) (*message.Response, error) {
	return Do(ctx, http.MethodPost, rawURL, header, body, opts)
}

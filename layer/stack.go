// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package layer

// Build assembles the full layer stack from cfg, in the fixed order of §2
// (outermost first): Redirect, BasicAuth, ContentTypeDetection, Cookie,
// Canonicalize, Message, AWS4Auth, Exception, Retry, ConnectionPool,
// Debug, Timeout, Stream. Exception wraps Retry rather than the reverse
// literal table order, per the ordering rationale recorded in DESIGN.md:
// a status error must only be raised once retries are exhausted.
//
// Each constructor returns passthrough when its layer is disabled by cfg,
// so a disabled layer costs one no-op function call, never a runtime
// branch inside a hot layer.
func Build(cfg *Config) Handler {
	h := streamHandler(cfg)
	h = timeoutMiddleware(cfg)(h)
	h = debugMiddleware(cfg)(h)
	h = poolMiddleware(cfg)(h)
	h = retryMiddleware(cfg)(h)
	h = exceptionMiddleware(cfg)(h)
	h = aws4Middleware(cfg)(h)
	h = messageMiddleware(cfg)(h)
	h = canonicalizeMiddleware(cfg)(h)
	h = cookieMiddleware(cfg)(h)
	h = contentTypeMiddleware(cfg)(h)
	h = basicAuthMiddleware(cfg)(h)
	h = redirectMiddleware(cfg)(h)
	return h
}

// BuildOpen assembles the same stack as Build, except the Stream layer's
// leaf is replaced by a Handler that hands the raw Stream to fn instead of
// driving it internally — the "open" escape hatch of §6.
func BuildOpen(cfg *Config, fn OpenFunc) Handler {
	h := openHandler(cfg, fn)
	h = timeoutMiddleware(cfg)(h)
	h = debugMiddleware(cfg)(h)
	h = poolMiddleware(cfg)(h)
	h = retryMiddleware(cfg)(h)
	h = exceptionMiddleware(cfg)(h)
	h = aws4Middleware(cfg)(h)
	h = messageMiddleware(cfg)(h)
	h = canonicalizeMiddleware(cfg)(h)
	h = cookieMiddleware(cfg)(h)
	h = contentTypeMiddleware(cfg)(h)
	h = basicAuthMiddleware(cfg)(h)
	h = redirectMiddleware(cfg)(h)
	return h
}

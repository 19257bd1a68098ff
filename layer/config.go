// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package layer

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/kesh-dev/transact/auth"
	"github.com/kesh-dev/transact/cookie"
	"github.com/kesh-dev/transact/pool"
	"github.com/kesh-dev/transact/retry"
)

// Config is the resolved, per-call configuration Build assembles a stack
// from. It is the layer package's internal counterpart to the root
// package's public Options: Client.Do translates one Options value (plus
// its Engine's shared Pool and retry metrics) into a Config once per call.
type Config struct {
	// Redirect enables the Redirect layer (§4.2).
	Redirect      bool
	RedirectLimit int

	// BasicAuth enables the BasicAuth layer (§4.10).
	BasicAuth bool

	// DetectContentType enables the ContentTypeDetection layer (§4.3/§6
	// detect_content_type).
	DetectContentType bool

	// Jar, if non-nil, enables the Cookie layer (§4.11) against this jar.
	Jar *cookie.Jar

	// CanonicalizeHeaders enables the Canonicalize layer (§4.1 table row
	// "Normalize header casing").
	CanonicalizeHeaders bool

	// AWS4Signer, if non-nil, enables the AWS4Auth layer (§4.10).
	AWS4Signer *auth.Signer

	// RetryPolicy drives the Retry layer (§4.4). Disabling retry entirely
	// is expressed by installing retry.Never.
	RetryPolicy        retry.Policy
	RetryNonIdempotent bool

	// StatusException enables the Exception layer (§4.5).
	StatusException bool

	// Pool backs the ConnectionPool layer (§4.6). Required.
	Pool *pool.Pool

	// ReadTimeout enables the Timeout layer (§4.8) when positive; zero
	// disables it, matching the readtimeout=0 default (§6) and the
	// corrected behavior noted in §9's open question about the original
	// source's timeout bug.
	ReadTimeout time.Duration

	// ExpectTimeout bounds the Stream layer's wait for a 100-continue
	// interim response (§4.3, §9). Zero means the stream package's own
	// 1s default.
	ExpectTimeout time.Duration

	// ResponseSink, if non-nil, is where the Stream layer copies the
	// response body instead of buffering it on message.Response (the
	// response_stream option, §6).
	ResponseSink io.Writer

	// Verbose gates the Debug layer's wire tee (§4.9): 0 disables it.
	Verbose int

	// Logger is the structured sink every layer logs through (§10.1 of
	// the expanded specification). The zero value is zerolog.Nop(),
	// matching the teacher's "empty handler group means no plug-ins"
	// convention for an opt-in, silent-by-default engine.
	Logger zerolog.Logger

	// UserAgent is the default User-Agent the Message layer sets when the
	// caller did not supply one (§4.3).
	UserAgent string

	// RetryMetrics, if non-nil, records attempt/backoff counters for the
	// Retry layer (domain-stack instrumentation, SPEC_FULL.md §11).
	RetryMetrics RetryMetrics
}

// RetryMetrics is the domain-stack counterpart of retry.Policy: an
// observer the Retry layer reports each attempt's outcome and backoff
// duration to. See package metrics for the Prometheus-backed
// implementation.
type RetryMetrics interface {
	ObserveAttempt(attempt int, retried bool)
	ObserveBackoff(d time.Duration)
}

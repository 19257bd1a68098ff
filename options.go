// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transact

import (
	"io"
	"time"

	"github.com/kesh-dev/transact/auth"
	"github.com/kesh-dev/transact/cookie"
)

// Options configures one call to Client.Do or Client.Open. It is
// deliberately scoped to a single call rather than being a persisted,
// file-loaded configuration: every tunable named in §6 of the engine
// specification lives here, the same way the teacher's Client fields and
// danielchurm-go-http-client's PoolSettings are scoped to one constructed
// value instead of a global.
//
// The zero Options is not a usable configuration — use DefaultOptions to
// obtain §6's documented defaults, then override individual fields.
type Options struct {
	// Redirect enables the Redirect layer. Default true.
	Redirect bool
	// RedirectLimit bounds the number of redirects followed. Default 3.
	RedirectLimit int

	// BasicAuthorization enables the BasicAuth layer. Default false.
	BasicAuthorization bool

	// AWSSigner, if non-nil, enables the AWS4Auth layer and is used to
	// compute the SigV4 signature (aws_authorization, §6).
	AWSSigner *auth.Signer

	// Cookies, if non-nil, enables the Cookie layer against this jar.
	// Passing a *cookie.Jar shared across calls is how the cookies:true
	// option's persistence-within-a-process semantics are expressed in
	// Go; there is no implicit default jar, and an Engine does not hold
	// one.
	Cookies *cookie.Jar

	// CanonicalizeHeaders enables the Canonicalize layer. Default false.
	CanonicalizeHeaders bool

	// Retry enables the Retry layer. Default true.
	Retry bool
	// Retries bounds the number of retry attempts when Retry is true.
	// Default 4. Retries=0 disables retry even if Retry is true.
	Retries int
	// RetryNonIdempotent allows retrying non-idempotent methods (POST,
	// PATCH, CONNECT) on a recoverable failure. Default false.
	RetryNonIdempotent bool

	// StatusException enables the Exception layer. Default true.
	StatusException bool

	// ReadTimeout bounds idle time between reads on the wire (§4.8).
	// Default 0 (disabled), matching §6 and §9's corrected behavior.
	ReadTimeout time.Duration

	// DetectContentType enables the ContentTypeDetection layer. Default
	// false.
	DetectContentType bool

	// ResponseStream, if non-nil, receives the response body directly
	// instead of it being buffered onto message.Response.
	ResponseStream io.Writer

	// Verbose gates the Debug layer's wire tee: 0 disables it, 1 and 2
	// log the direction and size of every read and write, and 3 or more
	// adds a hex dump of every byte.
	Verbose int
}

// ConnectTimeout and RequireSSLVerification are §6 call options, but in
// this implementation they govern the shared connection pool rather than
// one call, since a pool is dialed long before any one Options value
// exists for it to read. They are configured once, per Engine, via
// EngineConfig's ConnectTimeout and InsecureSkipVerify — see NewEngine.

// DefaultOptions returns the engine's documented default configuration
// (§6): redirects followed up to 3 hops, retry enabled for up to 4
// retries after the first attempt, status exceptions raised, no cookie jar, no auth layers, and
// no read timeout.
func DefaultOptions() Options {
	return Options{
		Redirect:        true,
		RedirectLimit:   3,
		Retry:           true,
		Retries:         4,
		StatusException: true,
	}
}

// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"time"

	"github.com/kesh-dev/transact/message"
)

// An Attempt describes the state of one request execution as seen by the
// Retry layer: which attempt number just finished, what it produced, and
// the flags needed to apply the recoverability guard from §4.4.
//
// Deciders and Waiters must treat Attempt as read-only.
type Attempt struct {
	// Num is the zero-based number of the attempt that just completed:
	// 0 for the first try, 1 after the first retry, and so on.
	Num int

	// Start is when the overall request execution began, used by
	// time-bounded deciders.
	Start time.Time

	// Method is the HTTP method of the request being executed.
	Method string

	// Response is the response produced by the most recent attempt, or
	// nil if that attempt ended in error.
	Response *message.Response

	// Err is the error produced by the most recent attempt, or nil if a
	// response was received (a non-2xx response is not itself an error
	// here; it only becomes one once the Exception layer raises
	// xerr.StatusError).
	Err error

	// BodyReplayable reports whether the request body can be resent:
	// true for a buffered body, false for any streaming body, which can
	// be read only once.
	BodyReplayable bool

	// ResponseHandedOff reports whether the response body has already
	// been delivered to the caller (e.g. copied into a response_stream
	// sink) and so cannot be silently discarded and retried.
	ResponseHandedOff bool

	// RetryNonIdempotent mirrors the retry_non_idempotent option: when
	// true, non-idempotent methods (POST, PATCH, CONNECT) are eligible
	// for retry on a recoverable failure, just like idempotent ones.
	RetryNonIdempotent bool
}

// Duration returns the time elapsed since the execution started.
func (a *Attempt) Duration() time.Duration {
	return time.Since(a.Start)
}

// StatusCode returns the status code of the most recent response, or 0 if
// the most recent attempt ended in error.
func (a *Attempt) StatusCode() int {
	if a.Response == nil {
		return 0
	}
	return a.Response.Status
}

var idempotentMethods = map[string]bool{
	"GET": true, "HEAD": true, "PUT": true, "DELETE": true,
	"OPTIONS": true, "TRACE": true,
}

// IdempotentMethod reports whether m is one of the idempotent methods named
// in the GLOSSARY: GET, HEAD, PUT, DELETE, OPTIONS, TRACE.
func IdempotentMethod(m string) bool {
	return idempotentMethods[m]
}

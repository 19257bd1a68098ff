// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package xerr defines the error taxonomy used throughout transact: IOError,
// ParsingError, StatusError, TooManyRedirects, and ArgumentError. Layers
// either resolve one of these (Retry consuming a recoverable IOError, or a
// recoverable raw response status, by re-invoking the next layer;
// Exception manufacturing a StatusError) or propagate it unchanged.
package xerr

import (
	"errors"
	"fmt"

	"github.com/kesh-dev/transact/message"
)

// An IOError wraps a transport-level failure: DNS, connect, TLS handshake,
// connection reset, EOF before a complete response, or a deadline firing.
// IOError is recoverable by the Retry layer (subject to idempotency and
// replay guards).
type IOError struct {
	Op    string // "package.function" where it failed, e.g. "pool.dial", "stream.writeBody"
	Cause error
}

func (e *IOError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("transact: i/o error: %v", e.Cause)
	}
	return fmt.Sprintf("transact: i/o error during %s: %v", e.Op, e.Cause)
}

func (e *IOError) Unwrap() error { return e.Cause }

// Timeout reports whether the underlying cause was a deadline expiry, so
// that IOError satisfies the same net.Error-like Timeout() contract the
// transient package looks for.
func (e *IOError) Timeout() bool {
	var t interface{ Timeout() bool }
	if errors.As(e.Cause, &t) {
		return t.Timeout()
	}
	return false
}

// NewIOError wraps cause as an IOError for the given operation name.
func NewIOError(op string, cause error) *IOError {
	return &IOError{Op: op, Cause: cause}
}

// A ParsingError indicates malformed bytes on the wire: an unparsable status
// line, header field, or chunk framing. ParsingError is never recoverable by
// Retry, since the server's bytes are assumed to be deterministic given the
// same request.
type ParsingError struct {
	Kind string // "status-line", "headers", "content-length"
	At   int    // byte offset within the current read buffer, -1 if unknown
	Msg  string
}

func (e *ParsingError) Error() string {
	if e.At >= 0 {
		return fmt.Sprintf("transact: parse error (%s) at byte %d: %s", e.Kind, e.At, e.Msg)
	}
	return fmt.Sprintf("transact: parse error (%s): %s", e.Kind, e.Msg)
}

// A StatusError is raised by the Exception layer when status_exception is
// enabled and a response carries a status code of 400 or greater.
// The Retry layer runs inside Exception and retries raw 403, 408, and 500+
// responses before any StatusError is built, so a StatusError that reaches
// the caller comes after those retries were exhausted or not allowed.
type StatusError struct {
	Status     int
	Reason     string
	MethodPath string // "METHOD path", for error message context only
	Response   *message.Response
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("transact: %s: status %d %s", e.MethodPath, e.Status, e.Reason)
}

// Recoverable reports whether this status is one of the codes the Retry
// layer treats as recoverable, per §4.4: 403, 408, or >= 500.
func (e *StatusError) Recoverable() bool {
	return e.Status == 403 || e.Status == 408 || e.Status >= 500
}

// TooManyRedirects is fatal: it is raised by the Redirect layer when a
// response chain exceeds the configured redirect_limit.
type TooManyRedirects struct {
	Limit   int
	History []string // URLs visited, in order, including the final one
}

func (e *TooManyRedirects) Error() string {
	return fmt.Sprintf("transact: stopped after %d redirects", e.Limit)
}

// An ArgumentError indicates invalid caller input (bad method, bad URL,
// nil required option). ArgumentError is fatal and is always raised before
// any I/O is attempted.
type ArgumentError struct {
	Msg string
}

func (e *ArgumentError) Error() string { return "transact: " + e.Msg }

// IsIOError reports whether err is, or wraps, an *IOError. The Retry layer
// sits inside the Exception layer (see the layer ordering rationale in §4.1)
// so it only ever observes raw transport errors and response status codes,
// never a *StatusError. IsIOError tells an I/O failure (recoverable) apart
// from a ParsingError or ArgumentError (not recoverable); the Retry layer's
// own decider makes the same check with errors.As directly.
func IsIOError(err error) bool {
	var ioErr *IOError
	return errors.As(err, &ioErr)
}

// IsRecoverable classifies err the way the Exception layer's caller would:
// true if err is an *IOError, or a *StatusError whose Recoverable method
// returns true. Every other error, including ParsingError, TooManyRedirects,
// and ArgumentError, is not recoverable.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	if IsIOError(err) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Recoverable()
	}
	return false
}

// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"errors"
	"time"

	"github.com/kesh-dev/transact/transient"
	"github.com/kesh-dev/transact/xerr"
)

// A Decider decides if a retry should be done.
//
// Implementations of Decider must be safe for concurrent use by multiple
// goroutines.
//
// Use the built-in constructors Times, Before, and StatusCode, and the
// built-in decider Recoverable; or implement your own. Use DeciderFunc to
// convert an ordinary function into a Decider, and to compose deciders
// logically using DeciderFunc.And and DeciderFunc.Or.
type Decider interface {
	Decide(a *Attempt) bool
}

// The DeciderFunc type is an adapter to allow the use of ordinary functions
// as retry deciders. It implements the Decider interface, and also provides
// the logical composition methods And and Or.
//
// Every DeciderFunc must be safe for concurrent use by multiple goroutines.
type DeciderFunc func(a *Attempt) bool

// Decide returns true if a retry should be done, and false otherwise, after
// examining the current attempt state.
func (f DeciderFunc) Decide(a *Attempt) bool {
	return f(a)
}

// And composes two retry deciders into a new decider which returns true if
// both sub-deciders return true, and false otherwise.
//
// Short-circuit logic is used, so g will not be evaluated if f returns
// false.
func (f DeciderFunc) And(g DeciderFunc) DeciderFunc {
	return func(a *Attempt) bool {
		return f(a) && g(a)
	}
}

// Or composes two retry deciders into a new decider which returns true if
// either of the two sub-deciders returns true, but false if they both
// return false.
//
// Short-circuit logic is used, so g will not be evaluated if f returns true.
func (f DeciderFunc) Or(g DeciderFunc) DeciderFunc {
	return func(a *Attempt) bool {
		return f(a) || g(a)
	}
}

// Times constructs a retry decider which allows up to n retries. The
// returned decider returns true while the completed attempt index a.Num is
// less than n, and false otherwise. Times(0) disables retry entirely, per
// §6's "retries: int=4 (0 disables retry)".
func Times(n int) DeciderFunc {
	return func(a *Attempt) bool {
		return a.Num < n
	}
}

// Before constructs a retry decider allowing retries until a certain amount
// of time has elapsed since the start of the request execution. The
// returned decider returns true while the execution duration is less than
// d, and false afterward.
func Before(d time.Duration) DeciderFunc {
	return func(a *Attempt) bool {
		return a.Duration() < d
	}
}

// StatusCode constructs a retry decider allowing retries based on the HTTP
// response status code. If the most recent attempt received a response and
// its status code is contained in ss, the decider returns true; otherwise
// it returns false.
func StatusCode(ss ...int) DeciderFunc {
	ss2 := make([]int, len(ss))
	copy(ss2, ss)
	return func(a *Attempt) bool {
		for _, s := range ss2 {
			if a.StatusCode() == s {
				return true
			}
		}
		return false
	}
}

// Recoverable is the Retry layer's core decider, implementing the full
// recoverability guard from §4.4:
//
//	(a) the most recent attempt failed with an I/O error, OR
//	(b) it received a response with status 403, 408, or >= 500, AND
//	    the request body has not been irrevocably streamed away, AND
//	    the response body has not been handed off to the caller, AND
//	    (the method is idempotent, OR retry_non_idempotent is set).
//
// Recoverable never looks at the attempt count; compose it with Times (as
// DefaultPolicy does) to bound the number of retries.
var Recoverable DeciderFunc = recoverable

func recoverable(a *Attempt) bool {
	// The Retry layer sits inside Exception (§4.1 ordering rationale), so
	// it only ever sees a raw transport error or a raw status code, never
	// a *xerr.StatusError.
	if a.Err != nil {
		var ioErr *xerr.IOError
		if !errors.As(a.Err, &ioErr) {
			return false
		}
		// transient.Categorize distinguishes a dial/reset/EOF failure
		// (worth retrying) from a TLS certificate verification failure
		// (transient.Not: it will fail identically on every attempt).
		if transient.Categorize(ioErr.Cause) == transient.Not {
			return false
		}
	} else if a.Response == nil || !recoverableStatus(a.Response.Status) {
		return false
	}

	if !a.BodyReplayable || a.ResponseHandedOff {
		return false
	}
	return IdempotentMethod(a.Method) || a.RetryNonIdempotent
}

func recoverableStatus(status int) bool {
	return status == 403 || status == 408 || status >= 500
}

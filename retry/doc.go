// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry implements the Retry layer's classified-error retry engine
// (§4.4 of the engine specification): a Decider decides whether a failed
// attempt should be retried, and a Waiter decides how long to sleep first.
// Both halves compose into a Policy, following the same Decider/Waiter split
// the teacher library uses, generalized from a flat status-code/transient
// check to the specification's full recoverability guard: an attempt is
// only retried if it is an I/O error, or a 403/408/5xx status where the
// request body was never irrevocably streamed away, the response body was
// never handed to the caller, and either the method is idempotent or
// retry_non_idempotent is set.
//
//	decider := retry.Times(4).And(retry.Recoverable)
//	waiter := retry.NewExpWaiter(time.Second, 10, 0)
//	policy := retry.NewPolicy(decider, waiter)
package retry

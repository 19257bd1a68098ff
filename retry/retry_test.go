// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry_test

import (
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kesh-dev/transact/message"
	"github.com/kesh-dev/transact/retry"
	"github.com/kesh-dev/transact/xerr"
)

func TestTimes(t *testing.T) {
	d := retry.Times(2)
	assert.True(t, d.Decide(&retry.Attempt{Num: 0}))
	assert.True(t, d.Decide(&retry.Attempt{Num: 1}))
	assert.False(t, d.Decide(&retry.Attempt{Num: 2}))
}

func TestRecoverable_IOErrorIdempotent(t *testing.T) {
	a := &retry.Attempt{
		Method:         "GET",
		Err:            xerr.NewIOError("read", syscall.ECONNRESET),
		BodyReplayable: true,
	}
	assert.True(t, retry.Recoverable.Decide(a))
}

func TestRecoverable_TLSCertFailureNotRecoverable(t *testing.T) {
	a := &retry.Attempt{
		Method:         "GET",
		Err:            xerr.NewIOError("tls", errors.New("x509: certificate signed by unknown authority")),
		BodyReplayable: true,
	}
	assert.False(t, retry.Recoverable.Decide(a))
}

func TestRecoverable_ParsingErrorNotRecoverable(t *testing.T) {
	a := &retry.Attempt{
		Method:         "GET",
		Err:            &xerr.ParsingError{Kind: "status-line", At: -1, Msg: "bad"},
		BodyReplayable: true,
	}
	assert.False(t, retry.Recoverable.Decide(a))
}

func TestRecoverable_StatusCodes(t *testing.T) {
	for _, status := range []int{403, 408, 500, 503} {
		a := &retry.Attempt{
			Method:         "GET",
			Response:       &message.Response{Status: status},
			BodyReplayable: true,
		}
		assert.Truef(t, retry.Recoverable.Decide(a), "status %d should be recoverable", status)
	}
	a := &retry.Attempt{Method: "GET", Response: &message.Response{Status: 404}, BodyReplayable: true}
	assert.False(t, retry.Recoverable.Decide(a))
}

func TestRecoverable_NonIdempotentRequiresFlag(t *testing.T) {
	a := &retry.Attempt{
		Method:         "POST",
		Response:       &message.Response{Status: 500},
		BodyReplayable: true,
	}
	assert.False(t, retry.Recoverable.Decide(a))
	a.RetryNonIdempotent = true
	assert.True(t, retry.Recoverable.Decide(a))
}

func TestRecoverable_UnreplayableBodyBlocksRetry(t *testing.T) {
	a := &retry.Attempt{
		Method:         "POST",
		Response:       &message.Response{Status: 500},
		BodyReplayable: false,
	}
	assert.False(t, retry.Recoverable.Decide(a))
}

func TestRecoverable_ResponseHandedOffBlocksRetry(t *testing.T) {
	a := &retry.Attempt{
		Method:            "GET",
		Response:          &message.Response{Status: 500},
		BodyReplayable:    true,
		ResponseHandedOff: true,
	}
	assert.False(t, retry.Recoverable.Decide(a))
}

func TestExpWaiter_Schedule(t *testing.T) {
	w := retry.NewExpWaiter(time.Second, 10, 0)
	assert.Equal(t, time.Second, w.Wait(&retry.Attempt{Num: 0}))
	assert.Equal(t, 10*time.Second, w.Wait(&retry.Attempt{Num: 1}))
	assert.Equal(t, 100*time.Second, w.Wait(&retry.Attempt{Num: 2}))
}

func TestExpWaiter_Cap(t *testing.T) {
	w := retry.NewExpWaiter(time.Second, 10, 5*time.Second)
	assert.Equal(t, 5*time.Second, w.Wait(&retry.Attempt{Num: 3}))
}

func TestNever(t *testing.T) {
	a := &retry.Attempt{Method: "GET", Err: xerr.NewIOError("read", errors.New("x")), BodyReplayable: true}
	assert.False(t, retry.Never.Decide(a))
}

// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package stream

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/kesh-dev/transact/xerr"
)

// Transport is the minimal transport surface the Stream layer drives: the
// bidirectional byte stream a pool.Transaction behaves as (§3), plus the
// half-close a chunked or Content-Length request body needs to signal its
// end without tearing down the connection.
type Transport interface {
	io.Reader
	io.Writer
	CloseWrite() error
}

// DeadlineTransport is a Transport that also exposes a read deadline, the
// shape pool.Transaction and *DeadlineConn both satisfy.
type DeadlineTransport interface {
	Transport
	SetReadDeadline(time.Time) error
}

// DeadlineConn implements the Timeout layer (§4.8): it wraps a
// DeadlineTransport and resets a read deadline before every read. If no
// byte arrives within the configured timeout, onTimeout fires and Read
// returns an *xerr.IOError classified as a timeout; a pool.Connection
// underneath marks itself broken on that read error, so it is never
// pooled. A zero timeout disables the
// deadline, matching the readtimeout=0 default (§6) — the original
// source's equivalent path was a known bug (§9's open question #341); here
// zero simply means "no deadline", which is the correct, intentional
// behavior.
//
// The write side is never timed, per §4.8.
type DeadlineConn struct {
	inner     DeadlineTransport
	timeout   time.Duration
	onTimeout func()
	once      sync.Once
}

// NewDeadlineConn constructs a DeadlineConn. onTimeout is called at most
// once, the first time a read deadline expires.
func NewDeadlineConn(inner DeadlineTransport, timeout time.Duration, onTimeout func()) *DeadlineConn {
	return &DeadlineConn{inner: inner, timeout: timeout, onTimeout: onTimeout}
}

func (d *DeadlineConn) Read(p []byte) (int, error) {
	if d.timeout > 0 {
		d.inner.SetReadDeadline(time.Now().Add(d.timeout))
	}
	n, err := d.inner.Read(p)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			if d.onTimeout != nil {
				d.once.Do(d.onTimeout)
			}
			return n, xerr.NewIOError("stream.Read", err)
		}
	}
	return n, err
}

func (d *DeadlineConn) Write(p []byte) (int, error) {
	return d.inner.Write(p)
}

func (d *DeadlineConn) CloseWrite() error {
	return d.inner.CloseWrite()
}

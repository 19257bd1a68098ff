// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package pool implements the ConnectionPool layer (§4.6): keyed reuse of
// idle keep-alive connections bounded by per-host and global concurrency
// limits, with idle eviction and TLS handshake on first use. The pooling
// strategy is grounded in hexinfra-gorox's client-side HTTP/1 node
// (fetchConn/storeConn: reuse an idle connection if healthy, otherwise dial
// and track it against the node's limits) and danielchurm-go-http-client's
// PoolSettings (the per-pool tunables, generalized from net/http.Transport's
// flat fields into the spec's explicit Key-scoped limits).
package pool

import (
	"fmt"

	"github.com/kesh-dev/transact/message"
)

// A Key identifies the pool of connections usable for one origin. It is an
// alias for message.Origin so the ConnectionPool layer and the Message
// layer agree on how a target URL maps to a pooled connection without a
// conversion step.
type Key = message.Origin

func keyString(k Key) string {
	return fmt.Sprintf("%s|%s|%d", k.Scheme, k.Host, k.Port)
}

// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pool

import (
	"sync"
	"time"
)

// A Transaction is a scoped lease on a Connection for exactly one
// request/response exchange (§3). It behaves as a bidirectional byte
// stream to the Stream layer above, and must be released exactly once via
// Release or Abort.
type Transaction struct {
	pool *Pool
	conn *Connection
	seq  uint64

	once sync.Once
}

func newTransaction(p *Pool, c *Connection) *Transaction {
	return &Transaction{pool: p, conn: c, seq: c.nextSeq()}
}

// Connection returns the underlying pooled Connection, for layers (Debug,
// metrics) that need its identity or TLS state without taking part in its
// lifecycle.
func (t *Transaction) Connection() *Connection {
	return t.conn
}

// Seq is this Transaction's sequence number on its Connection: 1 for the
// first exchange, 2 for the second after reuse, and so on.
func (t *Transaction) Seq() uint64 {
	return t.seq
}

// Read implements io.Reader over the leased Connection.
func (t *Transaction) Read(p []byte) (int, error) {
	return t.conn.Read(p)
}

// Write implements io.Writer over the leased Connection.
func (t *Transaction) Write(p []byte) (int, error) {
	return t.conn.Write(p)
}

// CloseWrite half-closes the write side, signaling end of request body.
func (t *Transaction) CloseWrite() error {
	return t.conn.CloseWrite()
}

// SetReadDeadline implements the Timeout layer's idle-read-deadline reset.
func (t *Transaction) SetReadDeadline(deadline time.Time) error {
	return t.conn.SetReadDeadline(deadline)
}

// Release returns the Connection to the pool. keepAlive should reflect
// whether the response permitted connection reuse (§4.9's KeepAlive
// determination) and whether the exchange completed cleanly; Release is a
// no-op on the second and subsequent calls so defer-based cleanup paired
// with an explicit success-path release is always safe.
func (t *Transaction) Release(keepAlive bool) {
	t.once.Do(func() {
		t.pool.release(t.conn, keepAlive)
	})
}

// Abort marks the Connection broken and releases it, per §4.7's
// cancellation semantics: an aborted Transaction's Connection is never
// recycled.
func (t *Transaction) Abort() {
	t.conn.MarkBroken()
	t.Release(false)
}

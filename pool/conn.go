// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pool

import (
	"crypto/tls"
	"net"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// halfCloser is implemented by both *net.TCPConn and *tls.Conn: it lets the
// Stream layer signal end-of-request-body without tearing down the whole
// connection, which chunked and Content-Length-less request bodies need for
// §4.7's early-response-abort handling.
type halfCloser interface {
	CloseWrite() error
}

// A Connection is one pooled, possibly TLS-wrapped, TCP socket to a single
// Key's origin. It is leased to exactly one caller at a time; the lease
// itself is represented by a *Transaction.
//
// Connection's shape (raw socket, sequence number, idle timestamp, broken
// flag) mirrors hexinfra-gorox's poolH1Conn: an identity, a last-use clock
// for the idle sweeper, and a broken latch so a connection that failed
// mid-use is never handed back out.
type Connection struct {
	ID  uuid.UUID
	Key Key

	conn net.Conn
	seq  uint64

	lastUse        time.Time
	requestsServed int

	broken atomic.Bool
}

func newConnection(key Key, conn net.Conn) *Connection {
	return &Connection{
		ID:      uuid.New(),
		Key:     key,
		conn:    conn,
		lastUse: time.Now(),
	}
}

// Read implements io.Reader.
func (c *Connection) Read(p []byte) (int, error) {
	n, err := c.conn.Read(p)
	if err != nil {
		c.MarkBroken()
	}
	return n, err
}

// Write implements io.Writer.
func (c *Connection) Write(p []byte) (int, error) {
	n, err := c.conn.Write(p)
	if err != nil {
		c.MarkBroken()
	}
	return n, err
}

// CloseWrite half-closes the write side of the connection, if the
// underlying socket supports it. Connections that cannot half-close (rare,
// e.g. some non-TCP net.Conn implementations) report it so the Stream layer
// can fall back to closing the connection outright after the response is
// read.
func (c *Connection) CloseWrite() error {
	if hc, ok := c.conn.(halfCloser); ok {
		return hc.CloseWrite()
	}
	return ErrHalfCloseUnsupported
}

// SetReadDeadline implements the deadline reset the Timeout layer applies
// after every successful read (§4.8).
func (c *Connection) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

// Close tears down the socket unconditionally. Used when a connection is
// evicted rather than recycled.
func (c *Connection) Close() error {
	return c.conn.Close()
}

// MarkBroken latches the connection as unusable for reuse. It is idempotent
// and safe to call from either the reader or writer goroutine driving the
// Stream layer's concurrent I/O (§4.7).
func (c *Connection) MarkBroken() {
	c.broken.Store(true)
}

// Broken reports whether the connection has been marked unusable.
func (c *Connection) Broken() bool {
	return c.broken.Load()
}

// TLS reports whether the connection is carried over a TLS session.
func (c *Connection) TLS() bool {
	_, ok := c.conn.(*tls.Conn)
	return ok
}

// nextSeq returns a monotonically increasing sequence number for requests
// issued on this connection, used by the Debug layer to correlate tee'd
// bytes with a specific request/response pair when a connection is reused.
func (c *Connection) nextSeq() uint64 {
	return atomic.AddUint64(&c.seq, 1)
}

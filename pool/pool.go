// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pool

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kesh-dev/transact/xerr"
)

// ErrHalfCloseUnsupported is returned by Connection.CloseWrite (and so by
// Transaction.CloseWrite) when the underlying net.Conn cannot half-close
// its write side. The Stream layer tolerates this, relying on the peer's
// own response framing to detect the end of the request body.
var ErrHalfCloseUnsupported = errors.New("pool: connection does not support half-close")

// Dialer opens the raw transport for a Key. The zero Config installs a
// *net.Dialer-backed Dialer; tests substitute a fake to avoid real sockets,
// the same seam danielchurm-go-http-client's pooling harness uses.
type Dialer func(ctx context.Context, network, addr string) (net.Conn, error)

// Config holds the ConnectionPool layer's tunables (§6). Every field except
// RequireSSLVerification has a documented zero-value default applied by New.
type Config struct {
	// PerHostLimit bounds concurrently open connections (idle + leased) to
	// a single Key. Default 8 (connection_limit_per_host).
	PerHostLimit int

	// TotalLimit bounds concurrently open connections across every Key.
	// Default 64 (connection_limit).
	TotalLimit int

	// IdleTimeout is how long an idle connection may sit in the pool
	// before the sweeper closes it. Default 30s.
	IdleTimeout time.Duration

	// MaxRequests caps how many requests may be served by one connection
	// before it is retired instead of recycled. Default 1000.
	MaxRequests int

	// ConnectTimeout bounds both dialing a new socket and waiting for a
	// free slot in a saturated pool. Default 10s.
	ConnectTimeout time.Duration

	// Dial opens a new transport-layer connection. Defaults to a
	// *net.Dialer with Timeout set to ConnectTimeout.
	Dial Dialer

	// TLSClientConfig is cloned and used to wrap connections for https
	// Keys. RequireSSLVerification=false, the zero value, sets
	// InsecureSkipVerify and so skips certificate verification; NewEngine
	// sets it to true unless EngineConfig.InsecureSkipVerify is set.
	TLSClientConfig       *tls.Config
	RequireSSLVerification bool
}

func (c *Config) setDefaults() {
	if c.PerHostLimit <= 0 {
		c.PerHostLimit = 8
	}
	if c.TotalLimit <= 0 {
		c.TotalLimit = 64
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 30 * time.Second
	}
	if c.MaxRequests <= 0 {
		c.MaxRequests = 1000
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if c.Dial == nil {
		d := &net.Dialer{Timeout: c.ConnectTimeout}
		c.Dial = d.DialContext
	}
}

// A Pool manages keep-alive connections grouped by Key, enforcing the
// per-host and global concurrency limits and evicting idle connections
// past their timeout. The acquire/release/wait-queue shape follows
// hexinfra-gorox's client-side http1 node: try an idle connection first,
// dial if under limit, otherwise queue FIFO for the next release.
type Pool struct {
	mu    sync.Mutex
	cfg   Config
	hosts map[Key]*hostState
	total int

	closed   bool
	sweepC   chan struct{}
	metrics  *metricsSet
}

type hostState struct {
	count   int // open connections (idle + busy) for this key
	idle    []*Connection
	waiters []chan acquireResult
}

type acquireResult struct {
	conn *Connection
	err  error
}

// New constructs a Pool. A nil or zero-value cfg uses every documented
// default.
func New(cfg Config, reg prometheus.Registerer) *Pool {
	cfg.setDefaults()
	p := &Pool{
		cfg:     cfg,
		hosts:   make(map[Key]*hostState),
		sweepC:  make(chan struct{}),
		metrics: newMetricsSet(reg),
	}
	go p.sweepLoop()
	return p
}

func (p *Pool) hostStateLocked(k Key) *hostState {
	hs, ok := p.hosts[k]
	if !ok {
		hs = &hostState{}
		p.hosts[k] = hs
	}
	return hs
}

// Acquire returns a Transaction leasing a Connection for key: a reused idle
// connection if a healthy candidate is available, a freshly dialed one if
// the host and global limits allow it, or the result of waiting in the
// key's FIFO queue until a slot frees up. Acquire respects ctx's deadline
// in addition to Config.ConnectTimeout.
func (p *Pool) Acquire(ctx context.Context, key Key, dialAddr string, useTLS bool) (*Transaction, error) {
	c, err := p.acquireConn(ctx, key, dialAddr, useTLS)
	if err != nil {
		return nil, err
	}
	return newTransaction(p, c), nil
}

func (p *Pool) acquireConn(ctx context.Context, key Key, dialAddr string, useTLS bool) (*Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.ConnectTimeout)
	defer cancel()

	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, xerr.NewIOError("pool.Acquire", errors.New("pool: closed"))
		}
		hs := p.hostStateLocked(key)

		// 1. Reuse a healthy idle connection if one exists.
		for len(hs.idle) > 0 {
			c := hs.idle[len(hs.idle)-1]
			hs.idle = hs.idle[:len(hs.idle)-1]
			p.metrics.idle.WithLabelValues(keyString(key)).Dec()
			if c.Broken() || !probeHealthy(c) {
				p.closeAndAccountLocked(hs, key, c)
				continue
			}
			p.metrics.inFlight.WithLabelValues(keyString(key)).Inc()
			p.mu.Unlock()
			return c, nil
		}

		// 2. Dial a new connection if under both limits.
		if hs.count < p.cfg.PerHostLimit && p.total < p.cfg.TotalLimit {
			hs.count++
			p.total++
			p.mu.Unlock()
			c, err := p.dial(ctx, key, dialAddr, useTLS)
			if err != nil {
				p.mu.Lock()
				hs.count--
				p.total--
				p.mu.Unlock()
				return nil, err
			}
			p.metrics.inFlight.WithLabelValues(keyString(key)).Inc()
			return c, nil
		}

		// 3. Queue FIFO for the next release of this key.
		ch := make(chan acquireResult, 1)
		hs.waiters = append(hs.waiters, ch)
		p.metrics.waiters.WithLabelValues(keyString(key)).Inc()
		p.mu.Unlock()

		select {
		case res := <-ch:
			p.metrics.waiters.WithLabelValues(keyString(key)).Dec()
			if res.err != nil {
				return nil, res.err
			}
			if res.conn == nil {
				// Woken to retry (a slot freed, not a direct handoff).
				continue
			}
			p.metrics.inFlight.WithLabelValues(keyString(key)).Inc()
			return res.conn, nil
		case <-ctx.Done():
			p.metrics.waiters.WithLabelValues(keyString(key)).Dec()
			return nil, xerr.NewIOError("pool.Acquire", ctx.Err())
		}
	}
}

func (p *Pool) dial(ctx context.Context, key Key, addr string, useTLS bool) (*Connection, error) {
	conn, err := p.cfg.Dial(ctx, "tcp", addr)
	if err != nil {
		return nil, xerr.NewIOError("pool.dial", err)
	}
	if useTLS {
		cfg := p.cfg.TLSClientConfig.Clone()
		if cfg == nil {
			cfg = &tls.Config{}
		}
		cfg.ServerName = key.Host
		if !p.cfg.RequireSSLVerification {
			cfg.InsecureSkipVerify = true
		}
		cfg.NextProtos = []string{"http/1.1"}
		tc := tls.Client(conn, cfg)
		if err := tc.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, xerr.NewIOError("pool.dial", err)
		}
		conn = tc
	}
	return newConnection(key, conn), nil
}

// probeHealthy does a one-byte read with a 1ms deadline to detect a peer that
// closed the connection while it sat idle, the same check
// danielchurm-go-http-client's pooling code performs before handing an idle
// connection back out.
func probeHealthy(c *Connection) bool {
	c.conn.SetReadDeadline(time.Now().Add(time.Millisecond))
	one := make([]byte, 1)
	n, err := c.conn.Read(one)
	c.conn.SetReadDeadline(time.Time{})
	if n > 0 {
		// Unexpected data on an idle connection; do not trust it.
		return false
	}
	if err == nil {
		return false
	}
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}

// Release returns a leased Connection to the pool. If keepAlive is false,
// the connection is broken, or it has served MaxRequests, the connection
// is closed and its slot freed for the Key's wait queue. Otherwise it is
// handed directly to the longest-waiting caller for the same Key, or
// pushed onto the idle list. Called by Transaction.Release/Abort, not
// directly by layers above the pool.
func (p *Pool) release(c *Connection, keepAlive bool) {
	c.requestsServed++
	c.lastUse = time.Now()
	p.metrics.inFlight.WithLabelValues(keyString(c.Key)).Dec()

	p.mu.Lock()
	defer p.mu.Unlock()
	hs := p.hostStateLocked(c.Key)

	if !keepAlive || c.Broken() || c.requestsServed >= p.cfg.MaxRequests {
		p.closeAndAccountLocked(hs, c.Key, c)
		return
	}

	if len(hs.waiters) > 0 {
		ch := hs.waiters[0]
		hs.waiters = hs.waiters[1:]
		ch <- acquireResult{conn: c}
		return
	}

	hs.idle = append(hs.idle, c)
	p.metrics.idle.WithLabelValues(keyString(c.Key)).Inc()
}

// closeAndAccountLocked closes c, frees its slot, and wakes one waiter (for
// this key, if any, otherwise any key blocked on the global limit) so it
// can retry dialing now that a slot is free. Callers must hold p.mu.
func (p *Pool) closeAndAccountLocked(hs *hostState, key Key, c *Connection) {
	c.Close()
	hs.count--
	p.total--

	if len(hs.waiters) > 0 {
		ch := hs.waiters[0]
		hs.waiters = hs.waiters[1:]
		ch <- acquireResult{}
		return
	}
	for k, other := range p.hosts {
		if k == key {
			continue
		}
		if len(other.waiters) > 0 {
			ch := other.waiters[0]
			other.waiters = other.waiters[1:]
			ch <- acquireResult{}
			return
		}
	}
}

// CloseIdle closes every idle connection across every Key without
// disturbing leased connections or waiters.
func (p *Pool) CloseIdle() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key, hs := range p.hosts {
		for _, c := range hs.idle {
			c.Close()
			hs.count--
			p.total--
		}
		p.metrics.idle.WithLabelValues(keyString(key)).Set(0)
		hs.idle = nil
	}
}

// Close stops the idle sweeper and closes every idle connection. Leased
// connections are left alone; Release will close them as they come back
// since p.closed rejects new Acquire calls.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	close(p.sweepC)
	p.CloseIdle()
	return nil
}

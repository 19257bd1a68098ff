// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pool_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kesh-dev/transact/pool"
)

// pipeDialer hands out one side of an in-memory net.Pipe per dial, keeping
// the peer side reachable through conns so a test can close it to simulate
// a server hanging up on an idle connection.
type pipeDialer struct {
	conns []net.Conn
}

func (d *pipeDialer) dial(_ context.Context, _, _ string) (net.Conn, error) {
	client, server := net.Pipe()
	d.conns = append(d.conns, server)
	return client, nil
}

func testKey() pool.Key {
	return pool.Key{Scheme: "http", Host: "example.test", Port: 80}
}

func newTestPool(t *testing.T, d *pipeDialer, perHost, total int) *pool.Pool {
	t.Helper()
	p := pool.New(pool.Config{
		PerHostLimit:   perHost,
		TotalLimit:     total,
		IdleTimeout:    time.Minute,
		ConnectTimeout: time.Second,
		Dial:           d.dial,
	}, nil)
	t.Cleanup(func() { p.Close() })
	return p
}

func TestAcquire_DialsNewConnectionUnderLimit(t *testing.T) {
	d := &pipeDialer{}
	p := newTestPool(t, d, 8, 64)

	tx, err := p.Acquire(context.Background(), testKey(), "example.test:80", false)
	require.NoError(t, err)
	assert.NotNil(t, tx)
	assert.False(t, tx.Connection().TLS())
}

func TestRelease_ReusesIdleConnection(t *testing.T) {
	d := &pipeDialer{}
	p := newTestPool(t, d, 8, 64)
	key := testKey()

	tx1, err := p.Acquire(context.Background(), key, "example.test:80", false)
	require.NoError(t, err)
	id := tx1.Connection().ID
	tx1.Release(true)

	tx2, err := p.Acquire(context.Background(), key, "example.test:80", false)
	require.NoError(t, err)
	assert.Equal(t, id, tx2.Connection().ID, "expected the idle connection to be reused")
	assert.Len(t, d.conns, 1, "expected no second dial")
}

func TestRelease_DropsBrokenConnection(t *testing.T) {
	d := &pipeDialer{}
	p := newTestPool(t, d, 8, 64)
	key := testKey()

	tx1, err := p.Acquire(context.Background(), key, "example.test:80", false)
	require.NoError(t, err)
	id1 := tx1.Connection().ID
	tx1.Abort()

	tx2, err := p.Acquire(context.Background(), key, "example.test:80", false)
	require.NoError(t, err)
	assert.NotEqual(t, id1, tx2.Connection().ID)
	assert.Len(t, d.conns, 2, "broken connection must not be reused")
}

func TestAcquire_WaitsForPerHostLimit(t *testing.T) {
	d := &pipeDialer{}
	p := newTestPool(t, d, 1, 64)
	key := testKey()

	tx1, err := p.Acquire(context.Background(), key, "example.test:80", false)
	require.NoError(t, err)

	done := make(chan *pool.Transaction, 1)
	go func() {
		tx, err := p.Acquire(context.Background(), key, "example.test:80", false)
		require.NoError(t, err)
		done <- tx
	}()

	select {
	case <-done:
		t.Fatal("second acquire should have blocked at the per-host limit")
	case <-time.After(50 * time.Millisecond):
	}

	tx1.Release(true)

	select {
	case tx2 := <-done:
		assert.Equal(t, tx1.Connection().ID, tx2.Connection().ID, "waiter should receive the released connection directly")
	case <-time.After(time.Second):
		t.Fatal("waiter was never woken after release")
	}
}

func TestAcquire_TimesOutWhenSaturated(t *testing.T) {
	d := &pipeDialer{}
	p := newTestPool(t, d, 1, 64)
	key := testKey()

	_, err := p.Acquire(context.Background(), key, "example.test:80", false)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = p.Acquire(ctx, key, "example.test:80", false)
	assert.Error(t, err)
}

func TestCloseIdle(t *testing.T) {
	d := &pipeDialer{}
	p := newTestPool(t, d, 8, 64)
	key := testKey()

	tx, err := p.Acquire(context.Background(), key, "example.test:80", false)
	require.NoError(t, err)
	id := tx.Connection().ID
	tx.Release(true)

	p.CloseIdle()

	tx2, err := p.Acquire(context.Background(), key, "example.test:80", false)
	require.NoError(t, err)
	assert.NotEqual(t, id, tx2.Connection().ID)
}

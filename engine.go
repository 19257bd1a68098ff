// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transact

import (
	"crypto/tls"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/kesh-dev/transact/metrics"
	"github.com/kesh-dev/transact/pool"
)

// An Engine owns the long-lived state a Client's calls share: the
// connection pool (so keep-alive connections survive across calls) and the
// Retry layer's Prometheus instrumentation. A cookie jar is deliberately
// not owned here — per-call Options.Cookies makes jar sharing an explicit
// choice by the caller, rather than an implicit global.
//
// An Engine must be closed with Close once it is no longer needed, to stop
// its pool's idle sweeper goroutine and release idle connections.
type Engine struct {
	Pool         *pool.Pool
	RetryMetrics *metrics.Retry
	Logger       zerolog.Logger
}

// EngineConfig configures NewEngine. The zero EngineConfig yields the
// documented defaults for every field.
type EngineConfig struct {
	// PerHostConnections bounds concurrently open connections to one
	// origin. Default 8.
	PerHostConnections int
	// TotalConnections bounds concurrently open connections across every
	// origin. Default 64.
	TotalConnections int
	// IdleTimeout is how long an idle connection may sit in the pool
	// before being closed. Default 30s.
	IdleTimeout time.Duration
	// ConnectTimeout bounds dialing (including TLS handshake) and
	// waiting for a free pool slot. Default 10s. This is the engine-wide
	// counterpart of §6's call-scoped connect_timeout option — see
	// Options.
	ConnectTimeout time.Duration
	// InsecureSkipVerify disables TLS certificate verification. Default
	// false: the zero EngineConfig verifies certificates, matching §6's
	// require_ssl_verification=true default. Set true only for a trusted
	// test origin presenting a self-signed certificate.
	InsecureSkipVerify bool
	// TLSClientConfig, if non-nil, seeds the pool's TLS configuration
	// (cloned per dial). Mutually refined by InsecureSkipVerify.
	TLSClientConfig *tls.Config

	// Registerer, if non-nil, registers the pool's and Retry layer's
	// Prometheus metrics. A nil Registerer still collects counters
	// in-process, just without exposing them to a scrape endpoint.
	Registerer prometheus.Registerer

	// Logger is the structured sink passed to every Client built from
	// this Engine by default; assigning Client.Logger overrides it for
	// one Client.
	Logger zerolog.Logger
}

// NewEngine constructs an Engine: its own connection pool and Retry
// metrics, ready for use by one or more Clients.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	poolCfg := pool.Config{
		PerHostLimit:           cfg.PerHostConnections,
		TotalLimit:             cfg.TotalConnections,
		IdleTimeout:            cfg.IdleTimeout,
		ConnectTimeout:         cfg.ConnectTimeout,
		TLSClientConfig:        cfg.TLSClientConfig,
		RequireSSLVerification: !cfg.InsecureSkipVerify,
	}
	return &Engine{
		Pool:         pool.New(poolCfg, cfg.Registerer),
		RetryMetrics: metrics.NewRetry(cfg.Registerer),
		Logger:       cfg.Logger,
	}
}

// Close stops the Engine's pool sweeper and closes its idle connections.
// Calls in flight on leased connections are unaffected.
func (e *Engine) Close() error {
	return e.Pool.Close()
}

var (
	defaultEngineOnce sync.Once
	defaultEngine     *Engine
)

// DefaultEngine returns the process-wide Engine used by the package-level
// convenience functions (Get, Post, Do, ...), constructing it on first use
// with EngineConfig's zero-value defaults and no Prometheus registration.
func DefaultEngine() *Engine {
	defaultEngineOnce.Do(func() {
		defaultEngine = NewEngine(EngineConfig{})
	})
	return defaultEngine
}

// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package metrics provides the domain-stack Prometheus instrumentation
// described in SPEC_FULL.md §11: counters and a histogram for the Retry
// layer's attempt/backoff behavior, complementing the per-origin gauges
// the pool package already exposes for the ConnectionPool layer.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Retry observes the Retry layer's behavior (§4.4): how many attempts end
// in a retry versus a final outcome, and how long each scheduled backoff
// was. A nil *Retry is valid and simply does not record anything, the
// same "nil means disabled" convention layer.Config uses throughout.
type Retry struct {
	attempts *prometheus.CounterVec
	backoff  prometheus.Histogram
}

// NewRetry constructs a Retry metrics set and registers it with reg. A
// nil reg yields a Retry that tracks counts internally but is never
// exposed to a scrape endpoint, matching pool.New's registration
// convention.
func NewRetry(reg prometheus.Registerer) *Retry {
	m := &Retry{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "transact",
			Subsystem: "retry",
			Name:      "attempts_total",
			Help:      "Request attempts, labeled by whether a retry followed.",
		}, []string{"outcome"}),
		backoff: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "transact",
			Subsystem: "retry",
			Name:      "backoff_seconds",
			Help:      "Scheduled backoff duration before a retried attempt.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 100},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.attempts, m.backoff)
	}
	return m
}

// ObserveAttempt records one completed attempt. retried reports whether
// the Retry layer decided to make another attempt afterward.
func (m *Retry) ObserveAttempt(_ int, retried bool) {
	if m == nil {
		return
	}
	if retried {
		m.attempts.WithLabelValues("retried").Inc()
	} else {
		m.attempts.WithLabelValues("final").Inc()
	}
}

// ObserveBackoff records the wait duration scheduled before a retried
// attempt.
func (m *Retry) ObserveBackoff(d time.Duration) {
	if m == nil {
		return
	}
	m.backoff.Observe(d.Seconds())
}

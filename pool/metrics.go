// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pool

import "github.com/prometheus/client_golang/prometheus"

// metricsSet holds the pool's Prometheus instrumentation, labeled by Key so
// an operator can see which origin is saturated. A nil Registerer (the
// common case in tests) yields metrics that are tracked but never exposed.
type metricsSet struct {
	idle     *prometheus.GaugeVec
	inFlight *prometheus.GaugeVec
	waiters  *prometheus.GaugeVec
}

func newMetricsSet(reg prometheus.Registerer) *metricsSet {
	m := &metricsSet{
		idle: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "transact",
			Subsystem: "pool",
			Name:      "idle_connections",
			Help:      "Idle connections currently held open per origin.",
		}, []string{"key"}),
		inFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "transact",
			Subsystem: "pool",
			Name:      "in_flight_connections",
			Help:      "Connections currently leased to a request per origin.",
		}, []string{"key"}),
		waiters: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "transact",
			Subsystem: "pool",
			Name:      "waiters",
			Help:      "Callers currently queued waiting for a connection per origin.",
		}, []string{"key"}),
	}
	if reg != nil {
		reg.MustRegister(m.idle, m.inFlight, m.waiters)
	}
	return m
}

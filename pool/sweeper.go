// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pool

import "time"

// sweepLoop periodically evicts idle connections that have sat past
// Config.IdleTimeout. It runs for the lifetime of the Pool, stopping when
// Close closes sweepC.
func (p *Pool) sweepLoop() {
	interval := p.cfg.IdleTimeout / 2
	if interval <= 0 {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			p.sweepOnce()
		case <-p.sweepC:
			return
		}
	}
}

func (p *Pool) sweepOnce() {
	cutoff := time.Now().Add(-p.cfg.IdleTimeout)

	p.mu.Lock()
	defer p.mu.Unlock()
	for key, hs := range p.hosts {
		kept := hs.idle[:0]
		for _, c := range hs.idle {
			if c.lastUse.Before(cutoff) {
				c.Close()
				hs.count--
				p.total--
				p.metrics.idle.WithLabelValues(keyString(key)).Dec()
				continue
			}
			kept = append(kept, c)
		}
		hs.idle = kept
	}
}

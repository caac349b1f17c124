// SPDX-License-Identifier: MIT

package report

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle forwards at most one record per interval (plus burst) to the
// wrapped sink and keeps the latest dropped record so Flush can emit it.
type Throttle struct {
	next    Sink
	limiter *rate.Limiter

	mu      sync.Mutex
	pending *Record
}

// NewThrottle limits next to one record every interval. interval <= 0
// disables limiting.
func NewThrottle(next Sink, interval time.Duration, burst int) *Throttle {
	if burst < 1 {
		burst = 1
	}
	lim := rate.NewLimiter(rate.Inf, burst)
	if interval > 0 {
		lim = rate.NewLimiter(rate.Every(interval), burst)
	}
	return &Throttle{next: next, limiter: lim}
}

// Record implements Sink.
func (t *Throttle) Record(r Record) error {
	t.mu.Lock()
	if !t.limiter.Allow() {
		t.pending = &r
		t.mu.Unlock()
		return nil
	}
	t.pending = nil
	t.mu.Unlock()
	return t.next.Record(r)
}

// Flush forwards the last dropped record, if any.
func (t *Throttle) Flush() error {
	t.mu.Lock()
	p := t.pending
	t.pending = nil
	t.mu.Unlock()
	if p == nil {
		return nil
	}
	return t.next.Record(*p)
}

// Package ratelimit implements a per-key sliding-window request throttle.
// State is process-local; running several replicas multiplies the effective
// limit accordingly.
package ratelimit

import (
	"sync"
	"time"
)

// Window allows at most limit requests per key within a trailing interval.
type Window struct {
	mu      sync.Mutex
	entries map[string][]time.Time
	limit   int
	window  time.Duration
	now     func() time.Time
}

// NewWindow creates a sliding-window limiter and starts its stale-key reaper.
func NewWindow(limit int, window time.Duration) *Window {
	w := &Window{
		entries: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
	go w.cleanup()
	return w
}

// Allow records a request for key and reports whether it is within the
// limit. Requests older than the window are evicted first; a rejected
// request is not recorded.
func (w *Window) Allow(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	cutoff := now.Add(-w.window)
	recent := w.entries[key][:0]
	for _, ts := range w.entries[key] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}
	if len(recent) >= w.limit {
		w.entries[key] = recent
		return false
	}
	w.entries[key] = append(recent, now)
	return true
}

// cleanup removes keys whose every entry has aged out, every 5 minutes.
func (w *Window) cleanup() {
	for {
		time.Sleep(5 * time.Minute)
		w.mu.Lock()
		cutoff := w.now().Add(-w.window)
		for key, times := range w.entries {
			stale := true
			for _, ts := range times {
				if ts.After(cutoff) {
					stale = false
					break
				}
			}
			if stale {
				delete(w.entries, key)
			}
		}
		w.mu.Unlock()
	}
}

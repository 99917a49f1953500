// Package attempts implements a per-key bounded attempt counter used as
// brute-force protection on OTP verification. The counter is process-local;
// horizontally scaled deployments get proportionally looser bounds.
package attempts

import (
	"sync"
	"time"
)

type counter struct {
	n        int
	lastSeen time.Time
}

// Guard bounds verification attempts per key. Once the bound is reached,
// Consume rejects until Reset is called (on successful verification or on
// a fresh issuance).
type Guard struct {
	mu       sync.Mutex
	counters map[string]*counter
	max      int
}

// NewGuard creates a Guard allowing max attempts per key and starts its
// stale-entry reaper.
func NewGuard(max int) *Guard {
	g := &Guard{
		counters: make(map[string]*counter),
		max:      max,
	}
	go g.cleanup()
	return g
}

// Consume records an attempt for key and reports whether it was within the
// bound. A rejected attempt stays rejected until Reset.
func (g *Guard) Consume(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.counters[key]
	if !ok {
		c = &counter{}
		g.counters[key] = c
	}
	c.lastSeen = time.Now()
	if c.n >= g.max {
		return false
	}
	c.n++
	return true
}

// Reset zeroes the counter for key.
func (g *Guard) Reset(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.counters, key)
}

// cleanup removes counters untouched for 10 minutes, every 5 minutes.
// A counter can only matter while its challenge is alive (5 minutes).
func (g *Guard) cleanup() {
	for {
		time.Sleep(5 * time.Minute)
		g.mu.Lock()
		for key, c := range g.counters {
			if time.Since(c.lastSeen) > 10*time.Minute {
				delete(g.counters, key)
			}
		}
		g.mu.Unlock()
	}
}

// Package testutil provides deterministic helpers for exercising the
// action layer: a resettable sequence clock, fixed run tokens, and a
// scripted physical backend with per-operation call counting.
package testutil

import "sync"

// DeterministicClock is a resettable monotonic sequence clock.
//
// Unlike ledger.Clock it can be reset, so the same scenario can run
// repeatedly with identical seq values - the property golden ledger
// snapshots depend on.
//
// Thread-safety: all methods safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu  sync.Mutex
	seq int64
}

// NewDeterministicClock creates a clock starting at 0.
// The first call to Next returns 1.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// Next increments and returns the next sequence number.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the current sequence number without incrementing.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset resets the clock to 0.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}

package ledger

import "sync/atomic"

// SeqClock supplies monotonic sequence numbers for ledger entries.
//
// Deterministic test runs substitute testutil.DeterministicClock; the
// production clock below is the default.
type SeqClock interface {
	// Next returns the next sequence number. Values strictly increase;
	// the first call returns 1.
	Next() int64
}

// Clock is the default monotonic sequence source.
//
// Logical sequence numbers, not wall time, order ledger entries: ordering
// must be stable under replay and free of wall-clock races.
//
// Thread-safety: atomic operations, safe for concurrent use, though the
// one-writer-per-run design means a single goroutine typically calls Next.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0. The first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

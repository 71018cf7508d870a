package ledger

import (
	"errors"
	"fmt"
	"sync"
)

// State tracks the ledger lifecycle.
type State int

const (
	// StateEmpty: created but not yet bound to a run. Only reachable
	// through the zero value; NewLedger binds and enters Recording.
	StateEmpty State = iota

	// StateRecording: the run is in progress and appends are accepted.
	StateRecording

	// StateClosed: the run ended. Report and FirstFailure only.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateRecording:
		return "recording"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ErrClosed is returned by Append after Close.
var ErrClosed = errors.New("ledger is closed")

// Ledger is the append-only verification record for one test run.
//
// One instance per run, created at run start, discarded at run end. The
// mutex is a guard rail, not a concurrency feature: the execution model
// is one writer per run, and the lock exists so a misuse fails loudly on
// the state check instead of racing.
type Ledger struct {
	mu       sync.Mutex
	runToken string
	clock    SeqClock
	state    State
	entries  []Entry
}

// NewLedger creates a ledger for the given run and enters Recording.
// Passing a nil clock installs the default monotonic Clock.
func NewLedger(runToken string, clock SeqClock) *Ledger {
	if clock == nil {
		clock = NewClock()
	}
	return &Ledger{
		runToken: runToken,
		clock:    clock,
		state:    StateRecording,
	}
}

// RunToken returns the run this ledger belongs to.
func (l *Ledger) RunToken() string {
	return l.runToken
}

// State returns the current lifecycle state.
func (l *Ledger) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Append records one atomic action invocation and returns the sealed
// entry. Fails with ErrClosed after Close; fails if the entry's fields
// cannot be canonically serialized for identity.
func (l *Ledger) Append(actionName string, outcome Outcome, claim string, detail *FailureDetail) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == StateClosed {
		return Entry{}, fmt.Errorf("append %q: %w", actionName, ErrClosed)
	}

	seq := l.clock.Next()
	id, err := EntryID(l.runToken, actionName, outcome, claim, detail, seq)
	if err != nil {
		return Entry{}, fmt.Errorf("append %q: %w", actionName, err)
	}

	entry := Entry{
		ID:         id,
		RunToken:   l.runToken,
		Seq:        seq,
		ActionName: actionName,
		Outcome:    outcome,
		Claim:      claim,
		Detail:     detail,
	}
	l.entries = append(l.entries, entry)
	return entry, nil
}

// Close ends the run. Idempotent; entries remain readable.
func (l *Ledger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = StateClosed
}

// Report returns all entries in append order. The returned slice is a
// copy; the ledger's own record cannot be mutated through it.
func (l *Ledger) Report() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// FirstFailure returns the earliest non-success entry, or nil if the run
// is clean so far.
func (l *Ledger) FirstFailure() *Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.entries {
		if l.entries[i].Failed() {
			e := l.entries[i]
			return &e
		}
	}
	return nil
}

// Len returns the number of entries recorded.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

package action

import (
	"fmt"

	"github.com/roach88/daa/internal/ledger"
	"github.com/roach88/daa/internal/physical"
)

// Context is the per-invocation bag threading run-scoped collaborators
// through a call graph of actions.
//
// It borrows the adapter and ledger - it owns neither - and carries
// shared run state such as entity IDs produced by earlier atomic actions.
// Composites pass it down to children unchanged. One context per run;
// discarded at run end; never shared across concurrent runs.
type Context struct {
	// RunToken identifies the test run.
	RunToken string

	// Adapter is the physical backend for this run.
	Adapter physical.Adapter

	// Ledger is the verification record for this run.
	Ledger *ledger.Ledger

	state map[string]any
}

// NewContext creates a context for one run.
func NewContext(runToken string, adapter physical.Adapter, led *ledger.Ledger) *Context {
	return &Context{
		RunToken: runToken,
		Adapter:  adapter,
		Ledger:   led,
		state:    make(map[string]any),
	}
}

// Put stores a run-state value (e.g. an entity ID a later step needs).
func (c *Context) Put(key string, value any) {
	c.state[key] = value
}

// Get returns a run-state value.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.state[key]
	return v, ok
}

// StringVar returns a run-state value rendered as a string.
// ok is false if the key is absent.
func (c *Context) StringVar(key string) (string, bool) {
	v, ok := c.state[key]
	if !ok {
		return "", false
	}
	if s, isStr := v.(string); isStr {
		return s, true
	}
	return fmt.Sprintf("%v", v), true
}

package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/daa/internal/physical"
)

// ScriptedAdapter is an in-memory physical backend.
//
// It plays back stubbed observations (or faults) keyed by operation
// name and records every call, which makes it both the stand-in browser
// backend and the counting stub the short-circuit property tests need:
// after a run, CallCount proves which operations executed and which were
// never reached.
//
// Resolution order per call: one-shot queue for the op name first, then
// the op's standing stub, then a protocol fault for unscripted ops.
type ScriptedAdapter struct {
	mu       sync.Mutex
	queued   map[string][]stub
	standing map[string]stub
	calls    []physical.Op
}

type stub struct {
	values map[string]any
	fault  *physical.Fault
}

// NewScriptedAdapter creates an empty scripted backend.
func NewScriptedAdapter() *ScriptedAdapter {
	return &ScriptedAdapter{
		queued:   make(map[string][]stub),
		standing: make(map[string]stub),
	}
}

// Name implements physical.Adapter.
func (a *ScriptedAdapter) Name() string { return "scripted" }

// Stub installs a standing observation for every call to opName.
func (a *ScriptedAdapter) Stub(opName string, values map[string]any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.standing[opName] = stub{values: values}
}

// StubFault installs a standing fault for every call to opName.
func (a *ScriptedAdapter) StubFault(opName string, kind physical.FaultKind, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.standing[opName] = stub{fault: &physical.Fault{Kind: kind, Op: opName, Err: fmt.Errorf("%s", message)}}
}

// Enqueue installs a one-shot observation consumed before any standing
// stub for opName.
func (a *ScriptedAdapter) Enqueue(opName string, values map[string]any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.queued[opName] = append(a.queued[opName], stub{values: values})
}

// EnqueueFault installs a one-shot fault for opName.
func (a *ScriptedAdapter) EnqueueFault(opName string, kind physical.FaultKind, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.queued[opName] = append(a.queued[opName], stub{fault: &physical.Fault{Kind: kind, Op: opName, Err: fmt.Errorf("%s", message)}})
}

// Perform implements physical.Adapter.
func (a *ScriptedAdapter) Perform(ctx context.Context, op physical.Op) (*physical.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, physical.NewFault(physical.KindCanceled, op, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, op)

	if queue := a.queued[op.Name]; len(queue) > 0 {
		next := queue[0]
		a.queued[op.Name] = queue[1:]
		return next.play(op)
	}
	if st, ok := a.standing[op.Name]; ok {
		return st.play(op)
	}
	return nil, physical.NewFault(physical.KindProtocol, op, fmt.Errorf("unscripted operation %q", op.Name))
}

func (s stub) play(op physical.Op) (*physical.Observation, error) {
	if s.fault != nil {
		// Fill in the target from the actual call for diagnostics.
		f := *s.fault
		if f.Target == "" {
			f.Target = op.Target()
		}
		return nil, &f
	}
	values := make(map[string]any, len(s.values))
	for k, v := range s.values {
		values[k] = v
	}
	return &physical.Observation{Values: values}, nil
}

// Calls returns every performed op in order.
func (a *ScriptedAdapter) Calls() []physical.Op {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]physical.Op(nil), a.calls...)
}

// CallCount returns how many times opName was performed.
func (a *ScriptedAdapter) CallCount(opName string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, op := range a.calls {
		if op.Name == opName {
			n++
		}
	}
	return n
}

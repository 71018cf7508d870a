package action

import "context"

// Action is the polymorphic unit the test layer invokes.
//
// Both variants - Atomic and Composite - assert their own success as part
// of Execute; the returned Result carries the verification outcome and
// the test layer never writes an assert of its own.
//
// Identity is a stable name used for failure attribution; actions are
// immutable once constructed and invoked many times across runs.
type Action interface {
	// Name returns the stable attribution label.
	Name() string

	// Execute performs the action. ctx is the run's cancellation scope;
	// rc is the per-invocation context carrying the adapter, ledger, and
	// shared run state. Execute never panics on SUT misbehavior - every
	// outcome is a Result.
	Execute(ctx context.Context, rc *Context) *Result
}

// DescendantCounter lets custom Action implementations participate in
// construction-time composition validation. Atomic and Composite
// implement it; a foreign Action that doesn't is treated as verifying
// nothing and rejected as a composite child.
type DescendantCounter interface {
	// AtomicDescendants returns how many atomic actions are reachable.
	AtomicDescendants() int
}

// atomicDescendants counts reachable atomics for composition validation.
func atomicDescendants(a Action) int {
	if dc, ok := a.(DescendantCounter); ok {
		return dc.AtomicDescendants()
	}
	return 0
}

package action

import (
	"context"

	"github.com/roach88/daa/internal/ledger"
	"github.com/roach88/daa/internal/physical"
)

// OpFunc resolves the single physical operation an atomic performs.
// It may read run state (e.g. an entity ID created by an earlier step)
// but must not touch the backend itself.
type OpFunc func(rc *Context) physical.Op

// Mismatch describes a false verification predicate.
type Mismatch struct {
	Expected string
	Actual   string
}

// Check is the single verification predicate of an atomic action.
type Check struct {
	// Claim is the human-readable description of what is checked,
	// e.g. "status==200".
	Claim string

	// Eval inspects the observation (or a directly-observable
	// post-condition exposed through it) and returns nil when the claim
	// holds. Eval must be side-effect free toward the SUT.
	Eval func(rc *Context, obs *physical.Observation) *Mismatch
}

// ProduceFunc extracts the produced value from a verified observation
// and may thread state (entity IDs) into the context for later steps.
type ProduceFunc func(rc *Context, obs *physical.Observation) any

// Atomic is the unit of truth: one physical call, one predicate, one
// ledger entry, one result - in that order, every invocation.
type Atomic struct {
	name    string
	op      OpFunc
	check   Check
	produce ProduceFunc
}

// AtomicOption configures an Atomic.
type AtomicOption func(*Atomic)

// WithProduce installs the produced-value extractor. Without it the
// atomic's value is the raw observation.
func WithProduce(fn ProduceFunc) AtomicOption {
	return func(a *Atomic) { a.produce = fn }
}

// NewAtomic constructs a self-verifying atomic action.
//
// Construction fails with a CompositionError when the action is
// malformed: missing name, missing operation, or - the invariant that
// makes the whole discipline hold - a missing verification predicate.
func NewAtomic(name string, op OpFunc, check Check, opts ...AtomicOption) (*Atomic, error) {
	if name == "" {
		return nil, NewCompositionError(ErrCodeUnresolvedChild, name, "", "atomic action requires a name")
	}
	if op == nil {
		return nil, NewCompositionError(ErrCodeUnverifiedAction, name, "", "atomic action requires an operation")
	}
	if check.Eval == nil {
		return nil, NewCompositionError(ErrCodeUnverifiedAction, name, "", "atomic action requires a verification predicate")
	}
	if check.Claim == "" {
		return nil, NewCompositionError(ErrCodeUnverifiedAction, name, "", "verification predicate requires a claim")
	}
	a := &Atomic{name: name, op: op, check: check}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// MustAtomic is like NewAtomic but panics on a composition error.
// Use for statically-declared catalogs where a defect means the binary
// must not start.
func MustAtomic(name string, op OpFunc, check Check, opts ...AtomicOption) *Atomic {
	a, err := NewAtomic(name, op, check, opts...)
	if err != nil {
		panic(err)
	}
	return a
}

// Name implements Action.
func (a *Atomic) Name() string { return a.name }

// AtomicDescendants implements DescendantCounter.
func (a *Atomic) AtomicDescendants() int { return 1 }

// Execute implements Action. Steps, in order:
//  1. one physical adapter call
//  2. one predicate evaluation
//  3. one ledger append - exactly one, success or failure, which is the
//     property that makes attribution exact
//  4. one result
//
// A transport fault is wrapped as a failure result, never swallowed and
// never re-raised. Cancellation mid-call is recorded as an aborted entry
// so an interrupted run is diagnosable rather than silently truncated.
func (a *Atomic) Execute(ctx context.Context, rc *Context) *Result {
	op := a.op(rc)

	obs, err := rc.Adapter.Perform(ctx, op)
	if err != nil {
		outcome := ledger.OutcomeFailure
		kind := ledger.FailTransport
		if physical.IsCanceled(err) {
			outcome = ledger.OutcomeAborted
			kind = ledger.FailAborted
		}
		detail := &ledger.FailureDetail{Kind: kind, Fault: err.Error()}
		a.record(rc, outcome, detail)
		return failure(a.name, a.check.Claim, outcome, detail)
	}

	if mismatch := a.check.Eval(rc, obs); mismatch != nil {
		detail := &ledger.FailureDetail{
			Kind:     ledger.FailVerification,
			Expected: mismatch.Expected,
			Actual:   mismatch.Actual,
		}
		a.record(rc, ledger.OutcomeFailure, detail)
		return failure(a.name, a.check.Claim, ledger.OutcomeFailure, detail)
	}

	a.record(rc, ledger.OutcomeSuccess, nil)

	var value any = obs
	if a.produce != nil {
		value = a.produce(rc, obs)
	}
	return success(a.check.Claim, value)
}

// record appends the invocation's single ledger entry. An append error
// means the ledger was closed under a running action - a harness defect,
// not a SUT outcome - and attribution must survive it, so the entry is
// the only thing lost, never the result.
func (a *Atomic) record(rc *Context, outcome ledger.Outcome, detail *ledger.FailureDetail) {
	if rc.Ledger == nil {
		return
	}
	_, _ = rc.Ledger.Append(a.name, outcome, a.check.Claim, detail)
}

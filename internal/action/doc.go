// Package action implements the composition and self-verification core.
//
// Two variants implement the Action interface: Atomic performs exactly
// one physical operation followed by exactly one verification predicate
// and exactly one ledger append; Composite executes a fixed, ordered
// child sequence and aborts on the first non-success child.
//
// Verification is a first-class value, not control flow: Execute always
// returns a Result, and callers that want an error for a test runner use
// Result.Err at the outermost boundary. A composite never catches and
// continues past a failing child, and never carries a predicate of its
// own - it only aggregates.
//
// Malformed compositions - an atomic without a predicate, a composite
// with no children or with a branch that verifies nothing - are rejected
// at construction with a CompositionError, before any test executes.
package action

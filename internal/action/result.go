package action

import (
	"fmt"
	"strings"

	"github.com/roach88/daa/internal/ledger"
)

// Result is the first-class outcome of one action invocation.
// Created once per invocation, never mutated after creation.
type Result struct {
	// Outcome mirrors the ledger outcome vocabulary.
	Outcome ledger.Outcome

	// Value is the opaque produced payload (a response observation, a
	// created entity, an aggregate a composite defines). Nil on failure.
	Value any

	// Claim describes what was verified, e.g. "status==200". For a
	// successful composite this is the conjunction of children's claims.
	Claim string

	// Detail is the structured cause for non-success outcomes.
	Detail *ledger.FailureDetail

	// Path is the attribution chain from outermost composite to the
	// failing atomic. Empty on success.
	Path []string
}

// OK reports whether the invocation verified successfully.
func (r *Result) OK() bool {
	return r.Outcome == ledger.OutcomeSuccess
}

// FailurePath renders the attribution chain,
// e.g. "perform_device_upgrade -> activate_device".
func (r *Result) FailurePath() string {
	return strings.Join(r.Path, " -> ")
}

// Err converts a failed result into an error for integration with
// test runners that expect error-based control flow. Returns nil on
// success. The message carries the full chain, the claim, and the
// observed cause, sufficient to localize the failure without re-running.
func (r *Result) Err() error {
	if r.OK() {
		return nil
	}
	return &FailureError{Result: r}
}

// FailureError is the error form of a failed Result.
type FailureError struct {
	Result *Result
}

// Error implements the error interface.
func (e *FailureError) Error() string {
	r := e.Result
	var b strings.Builder
	fmt.Fprintf(&b, "action failed: %s", r.FailurePath())
	if r.Claim != "" {
		fmt.Fprintf(&b, "\n  claim: %s", r.Claim)
	}
	if r.Detail != nil {
		fmt.Fprintf(&b, "\n  cause: %s", r.Detail.String())
	}
	return b.String()
}

func success(claim string, value any) *Result {
	return &Result{Outcome: ledger.OutcomeSuccess, Claim: claim, Value: value}
}

func failure(name, claim string, outcome ledger.Outcome, detail *ledger.FailureDetail) *Result {
	return &Result{
		Outcome: outcome,
		Claim:   claim,
		Detail:  detail,
		Path:    []string{name},
	}
}

package ledger

import "fmt"

// Outcome is the recorded result of one atomic action invocation.
type Outcome string

const (
	// OutcomeSuccess means the action's verification predicate held.
	OutcomeSuccess Outcome = "success"

	// OutcomeFailure means the predicate was false or the adapter call
	// raised a transport fault.
	OutcomeFailure Outcome = "failure"

	// OutcomeAborted means the run was canceled while this action's
	// adapter call was in flight. Recorded so an aborted run is
	// distinguishable from a truncated one.
	OutcomeAborted Outcome = "aborted"
)

// FailureKind categorizes a failure detail.
type FailureKind string

const (
	// FailVerification: the predicate evaluated false (expected business
	// outcome did not hold).
	FailVerification FailureKind = "verification"

	// FailTransport: the physical backend faulted (connection, timeout,
	// element not found).
	FailTransport FailureKind = "transport"

	// FailAborted: run cancellation interrupted the adapter call.
	FailAborted FailureKind = "aborted"
)

// FailureDetail is the structured cause attached to a non-success entry.
type FailureDetail struct {
	Kind FailureKind `json:"kind"`

	// Expected and Actual describe a verification mismatch.
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`

	// Fault is the rendered transport fault for transport/aborted kinds.
	Fault string `json:"fault,omitempty"`
}

// String renders the detail for diagnostics.
func (d *FailureDetail) String() string {
	if d == nil {
		return ""
	}
	switch d.Kind {
	case FailVerification:
		return fmt.Sprintf("expected %s, got %s", d.Expected, d.Actual)
	case FailTransport, FailAborted:
		return d.Fault
	}
	return string(d.Kind)
}

// Entry is one append-only ledger record.
// Entries are immutable after Append returns them.
type Entry struct {
	// ID is the content-addressed identity of this entry.
	ID string `json:"id"`

	// RunToken identifies the test run this entry belongs to.
	RunToken string `json:"run_token"`

	// Seq is the monotonic position within the run. First entry is 1.
	Seq int64 `json:"seq"`

	// ActionName is the atomic action that produced this entry.
	ActionName string `json:"action"`

	// Outcome is the recorded result.
	Outcome Outcome `json:"outcome"`

	// Claim is the human-readable description of what was checked,
	// e.g. "status==200" or "count>0".
	Claim string `json:"claim"`

	// Detail is the structured cause for non-success outcomes.
	Detail *FailureDetail `json:"detail,omitempty"`
}

// Failed reports whether the entry records a non-success outcome.
func (e Entry) Failed() bool {
	return e.Outcome != OutcomeSuccess
}

package physical

import (
	"errors"
	"fmt"
)

// FaultKind categorizes transport-level failures.
type FaultKind string

const (
	// KindConnection indicates the backend could not be reached.
	KindConnection FaultKind = "CONNECTION"

	// KindTimeout indicates the backend call exceeded its deadline.
	KindTimeout FaultKind = "TIMEOUT"

	// KindNotFound indicates a UI element or resource handle was absent
	// at the transport level (element-not-found, not HTTP 404).
	KindNotFound FaultKind = "NOT_FOUND"

	// KindCanceled indicates the run's context was canceled mid-call.
	KindCanceled FaultKind = "CANCELED"

	// KindProtocol indicates the adapter was asked for an operation it
	// does not serve, or the backend answered in an unreadable shape.
	KindProtocol FaultKind = "PROTOCOL"
)

// Fault is a transport-level failure propagated verbatim from a backend.
//
// Faults are never assertions: a 500 response is an observation, a
// refused connection is a Fault. The atomic action above wraps faults
// into failure results so attribution is preserved, but the adapter
// itself reports them raw.
type Fault struct {
	// Kind identifies the failure category.
	Kind FaultKind

	// Op is the operation name that failed.
	Op string

	// Target is the url or selector involved, if any.
	Target string

	// Err is the underlying backend error, if any.
	Err error
}

// Error implements the error interface.
func (f *Fault) Error() string {
	msg := fmt.Sprintf("transport fault %s: %s", f.Kind, f.Op)
	if f.Target != "" {
		msg = fmt.Sprintf("%s %s", msg, f.Target)
	}
	if f.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, f.Err)
	}
	return msg
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// NewFault creates a Fault for the given op.
func NewFault(kind FaultKind, op Op, err error) *Fault {
	return &Fault{Kind: kind, Op: op.Name, Target: op.Target(), Err: err}
}

// AsFault extracts a *Fault from err. Uses errors.As to handle wrapping.
func AsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// IsTimeout reports whether err is a timeout fault.
func IsTimeout(err error) bool {
	f, ok := AsFault(err)
	return ok && f.Kind == KindTimeout
}

// IsCanceled reports whether err is a cancellation fault.
func IsCanceled(err error) bool {
	f, ok := AsFault(err)
	return ok && f.Kind == KindCanceled
}

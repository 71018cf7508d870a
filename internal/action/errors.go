package action

import (
	"errors"
	"fmt"
)

// CompositionError reports a broken action definition.
//
// These are construction-time faults: a malformed action must fail before
// any test executes, never during a run. A CompositionError is not
// recoverable.
type CompositionError struct {
	// Code identifies the defect category.
	Code CompositionErrorCode

	// Action is the action being defined.
	Action string

	// Child is the offending child reference, if any.
	Child string

	// Message is a human-readable description.
	Message string
}

// CompositionErrorCode categorizes composition defects.
type CompositionErrorCode string

const (
	// ErrCodeUnverifiedAction: an atomic declared without a verification
	// predicate. An action that only performs a physical call without
	// checking its effect is malformed.
	ErrCodeUnverifiedAction CompositionErrorCode = "UNVERIFIED_ACTION"

	// ErrCodeEmptyComposite: a composite declared with no children.
	ErrCodeEmptyComposite CompositionErrorCode = "EMPTY_COMPOSITE"

	// ErrCodeUnverifiedChain: a composite child resolves to zero atomic
	// descendants, so part of the chain would execute unverified.
	ErrCodeUnverifiedChain CompositionErrorCode = "UNVERIFIED_CHAIN"

	// ErrCodeUnresolvedChild: a child reference that cannot be resolved.
	ErrCodeUnresolvedChild CompositionErrorCode = "UNRESOLVED_CHILD"

	// ErrCodeDuplicateAction: two actions registered under one name.
	ErrCodeDuplicateAction CompositionErrorCode = "DUPLICATE_ACTION"

	// ErrCodeMissingAction: a referenced action doesn't exist in the
	// registry.
	ErrCodeMissingAction CompositionErrorCode = "MISSING_ACTION"

	// ErrCodeCycleDetected: composite definitions reference each other
	// cyclically.
	ErrCodeCycleDetected CompositionErrorCode = "CYCLE_DETECTED"
)

// Error implements the error interface.
func (e *CompositionError) Error() string {
	if e.Child != "" {
		return fmt.Sprintf("%s: %s (action=%s, child=%s)", e.Code, e.Message, e.Action, e.Child)
	}
	if e.Action != "" {
		return fmt.Sprintf("%s: %s (action=%s)", e.Code, e.Message, e.Action)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsCompositionError reports whether err is a CompositionError.
// Uses errors.As to handle wrapped errors.
func IsCompositionError(err error) bool {
	var ce *CompositionError
	return errors.As(err, &ce)
}

// NewCompositionError creates a CompositionError.
func NewCompositionError(code CompositionErrorCode, action, child, message string) *CompositionError {
	return &CompositionError{Code: code, Action: action, Child: child, Message: message}
}

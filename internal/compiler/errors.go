package compiler

import (
	"fmt"

	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError reports a defect in an action-pack definition.
// Compile errors are startup faults: a broken pack must fail before any
// scenario runs.
type CompileError struct {
	// Field is the pack path of the offending definition,
	// e.g. "atomics.activate_device.expect".
	Field string

	// Message is a human-readable description.
	Message string

	// Pos is the CUE source position, if available.
	Pos token.Pos
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// formatCUEError converts a CUE evaluation error into a CompileError,
// preserving the source position when the CUE SDK provides one.
func formatCUEError(err error) *CompileError {
	ce := &CompileError{Message: err.Error()}
	if positions := cueerrors.Positions(err); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}

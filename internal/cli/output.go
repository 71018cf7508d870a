package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Process exit codes. A failing scenario or pack is a verdict (1), not a
// command error (2): scripts distinguish "the SUT failed" from "the daa
// invocation itself was broken".
const (
	ExitSuccess      = 0
	ExitFailure      = 1
	ExitCommandError = 2
)

// ExitError carries a process exit code out of a command RunE.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError attaches an exit code to an underlying error.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from err, unwrapping as needed.
// Anything that is not an ExitError maps to ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// CLIResponse is the JSON envelope every command emits with --format
// json. Status is "ok" or "error"; exactly one of Data and Error is set.
type CLIResponse struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError renders a composition or command failure inside the envelope.
// Code is a CompositionErrorCode, a CompileError marker, or an E_*
// command code.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// OutputFormatter routes command output: the envelope (or plain text) to
// Writer, diagnostics to ErrWriter so JSON stays machine-parseable.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// Success emits data as an "ok" envelope, or prints it directly in text
// mode.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.emit(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error emits an "error" envelope, or a one-line text rendering.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.emit(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog writes a diagnostic line, verbose mode only.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.diagnostics(), format+"\n", args...)
}

func (f *OutputFormatter) emit(resp CLIResponse) error {
	return json.NewEncoder(f.Writer).Encode(resp)
}

func (f *OutputFormatter) diagnostics() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

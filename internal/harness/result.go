package harness

import (
	"strings"

	"github.com/roach88/daa/internal/ledger"
)

// Result is the outcome of one scenario execution.
type Result struct {
	// Scenario is the scenario name.
	Scenario string `json:"scenario"`

	// RunToken identifies the run.
	RunToken string `json:"run_token"`

	// Pass is true when every step verified and every assertion held.
	Pass bool `json:"pass"`

	// Entries is the run's full verification ledger in append order.
	Entries []ledger.Entry `json:"entries"`

	// FailurePath is the attribution chain of the failing step, from
	// outermost composite to the failing atomic. Empty when Pass.
	FailurePath []string `json:"failure_path,omitempty"`

	// Errors contains step failures and assertion violations.
	// Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result; execution marks it failed.
func NewResult(scenarioName, runToken string) *Result {
	return &Result{
		Scenario: scenarioName,
		RunToken: runToken,
		Pass:     true,
	}
}

// AddError records a failure and marks the result failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// FailurePathString renders the attribution chain.
func (r *Result) FailurePathString() string {
	return strings.Join(r.FailurePath, " -> ")
}

package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/daa/internal/action"
	"github.com/roach88/daa/internal/actions"
	"github.com/roach88/daa/internal/compiler"
)

// ValidationIssue is one problem found in a pack.
type ValidationIssue struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Action  string `json:"action,omitempty"`
	Message string `json:"message"`
}

// ValidationResult holds validation results for a set of packs.
type ValidationResult struct {
	Valid   bool              `json:"valid"`
	Actions []string          `json:"actions,omitempty"`
	Issues  []ValidationIssue `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <pack-file>...",
		Short: "Compile and link action packs without running anything",
		Long: `Compile CUE action packs and link their composites.

Catches composition faults before any scenario runs: atomics without a
verification clause, empty composites, steps naming unknown actions,
and definition cycles. Fail fast at build time, not mid-run.

Examples:
  daa validate packs/devices.cue
  daa validate packs/*.cue --verbose`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, packFiles []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	for _, file := range packFiles {
		if _, err := os.Stat(file); os.IsNotExist(err) {
			return outputValidateError(formatter, "E_PACK_NOT_FOUND",
				fmt.Sprintf("pack file not found: %s", file))
		}
	}

	pack, err := compiler.CompilePackFiles(packFiles)
	if err != nil {
		return outputValidateFailure(formatter, toIssue(err))
	}
	formatter.VerboseLog("compiled %d atomic(s), %d composite(s) from %d file(s)",
		len(pack.Atomics), len(pack.Composites), len(packFiles))

	registry, err := compiler.Link(pack, actions.Catalog())
	if err != nil {
		return outputValidateFailure(formatter, toIssue(err))
	}

	result := ValidationResult{Valid: true}
	if opts.Verbose {
		result.Actions = registry.Names()
		for _, line := range compiler.Describe(pack) {
			formatter.VerboseLog("%s", line)
		}
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ %d pack(s) valid: %d action(s) linked\n",
		len(packFiles), registry.Len())
	return nil
}

// toIssue renders a compile or composition error as a ValidationIssue.
func toIssue(err error) ValidationIssue {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return ValidationIssue{
			Code:    "E_COMPILE",
			Field:   compileErr.Field,
			Message: compileErr.Message,
		}
	}
	var compErr *action.CompositionError
	if errors.As(err, &compErr) {
		return ValidationIssue{
			Code:    string(compErr.Code),
			Action:  compErr.Action,
			Message: compErr.Message,
		}
	}
	return ValidationIssue{Code: "E_VALIDATE", Message: err.Error()}
}

func outputValidateError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

func outputValidateFailure(formatter *OutputFormatter, issue ValidationIssue) error {
	if formatter.Format == "json" {
		_ = formatter.Error(issue.Code, issue.Message, ValidationResult{
			Valid:  false,
			Issues: []ValidationIssue{issue},
		})
	} else {
		fmt.Fprintln(formatter.Writer, "✗ Validation failed")
		if issue.Action != "" {
			fmt.Fprintf(formatter.Writer, "  %s (%s): %s\n", issue.Code, issue.Action, issue.Message)
		} else {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n", issue.Code, issue.Message)
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed: %s", issue.Message))
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/daa/internal/actions"
	"github.com/roach88/daa/internal/harness"
	"github.com/roach88/daa/internal/scenario"
	"github.com/roach88/daa/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Archive string // optional SQLite archive path
	Filter  string // scenario name filter (glob pattern)
	Timeout time.Duration
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name        string   `json:"name"`
	RunToken    string   `json:"run_token,omitempty"`
	Pass        bool     `json:"pass"`
	FailurePath string   `json:"failure_path,omitempty"`
	Errors      []string `json:"errors,omitempty"`
}

// RunResult holds the overall run result.
type RunResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenarios-dir>",
		Short: "Execute scenarios and report the verification ledger verdicts",
		Long: `Execute every scenario in a directory.

Each scenario gets a fresh ledger, action context, and backend. Steps
run strictly in order; the first failing step short-circuits the rest
and its attribution chain names the exact atomic that failed. Ledger
assertions are then evaluated against the closed ledger.

Exit codes:
  0 - all scenarios passed
  1 - one or more scenarios failed
  2 - command error (bad paths, broken packs)

Examples:
  daa run ./scenarios
  daa run ./scenarios --filter "device-*"
  daa run ./scenarios --archive ./runs.db
  daa run ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Archive, "archive", "", "path to SQLite run archive (created if absent)")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "per-scenario deadline (0 disables)")

	return cmd
}

func runScenarios(opts *RunOptions, scenariosDir string, cmd *cobra.Command) error {
	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	files, err := findScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}
	if len(files) == 0 {
		if opts.Format == "json" {
			return outputRunJSON(cmd, RunResult{Scenarios: []ScenarioResult{}})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	logLevel := slog.LevelWarn
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))

	harnessOpts := []harness.Option{
		harness.WithBaseRegistry(actions.Catalog()),
		harness.WithLogger(logger),
		harness.WithTimeout(opts.Timeout),
	}
	if opts.Archive != "" {
		st, err := store.Open(opts.Archive)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open run archive", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing run archive", "error", closeErr)
			}
		}()
		harnessOpts = append(harnessOpts, harness.WithArchive(st))
	}
	h := harness.New(harnessOpts...)

	result := RunResult{
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
	}
	for _, file := range files {
		scenResult := runOneScenario(cmd.Context(), h, file, opts, cmd)
		result.Scenarios = append(result.Scenarios, scenResult)
		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputRunJSON(cmd, result)
	}
	return outputRunText(cmd, result)
}

// findScenarioFiles finds all YAML scenario files in a directory.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})

	return files, err
}

// runOneScenario loads and executes a single scenario file.
func runOneScenario(ctx context.Context, h *harness.Harness, file string, opts *RunOptions, cmd *cobra.Command) ScenarioResult {
	w := cmd.OutOrStdout()
	if ctx == nil {
		ctx = context.Background()
	}

	sc, err := scenario.Load(file)
	if err != nil {
		if opts.Format != "json" {
			fmt.Fprintf(w, "✗ %s\n", filepath.Base(file))
			fmt.Fprintf(w, "  Load error: %v\n", err)
		}
		return ScenarioResult{
			Name:   filepath.Base(file),
			Pass:   false,
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}
	}

	result, err := h.Run(ctx, sc)
	if err != nil {
		if opts.Format != "json" {
			fmt.Fprintf(w, "✗ %s\n", sc.Name)
			fmt.Fprintf(w, "  Execution error: %v\n", err)
		}
		return ScenarioResult{
			Name:   sc.Name,
			Pass:   false,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
		}
	}

	if result.Pass {
		if opts.Format != "json" {
			fmt.Fprintf(w, "✓ %s\n", sc.Name)
		}
		return ScenarioResult{
			Name:     sc.Name,
			RunToken: result.RunToken,
			Pass:     true,
		}
	}

	if opts.Format != "json" {
		fmt.Fprintf(w, "✗ %s\n", sc.Name)
		if len(result.FailurePath) > 0 {
			fmt.Fprintf(w, "  failed at: %s\n", result.FailurePathString())
		}
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  %s\n", indentLines(e))
		}
	}
	return ScenarioResult{
		Name:        sc.Name,
		RunToken:    result.RunToken,
		Pass:        false,
		FailurePath: result.FailurePathString(),
		Errors:      result.Errors,
	}
}

// indentLines keeps multi-line error messages aligned under their bullet.
func indentLines(s string) string {
	return strings.ReplaceAll(s, "\n", "\n  ")
}

// outputRunJSON outputs the run result as JSON.
func outputRunJSON(cmd *cobra.Command, result RunResult) error {
	status := "ok"
	if result.Failed > 0 {
		status = "error"
	}

	response := CLIResponse{
		Status: status,
		Data:   result,
	}
	if result.Failed > 0 {
		response.Error = &CLIError{
			Code:    "E_SCENARIO_FAILED",
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputRunText outputs the run result as text.
func outputRunText(cmd *cobra.Command, result RunResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Run Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}

package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/daa/internal/ledger"
	"github.com/roach88/daa/internal/store"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	Database string
	RunToken string
	Limit    int
}

// RunReport is the full report for one archived run.
type RunReport struct {
	Run     store.RunRecord `json:"run"`
	Entries []ledger.Entry  `json:"entries"`
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Inspect archived runs and their verification ledgers",
		Long: `Read the run archive written by daa run --archive.

Without --run, lists archived runs newest first. With --run, prints the
run's full verification ledger: every atomic invocation in flow order
with its outcome, claim, and failure detail.

Examples:
  daa report --db ./runs.db
  daa report --db ./runs.db --run 0190a6f2-...
  daa report --db ./runs.db --run 0190a6f2-... --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite run archive (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunToken, "run", "", "run token to report on")
	cmd.Flags().IntVar(&opts.Limit, "limit", 50, "maximum runs to list")

	return cmd
}

func runReport(opts *ReportOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := os.Stat(opts.Database); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("run archive not found: %s", opts.Database))
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open run archive", err)
	}
	defer st.Close()

	if opts.RunToken == "" {
		return listRuns(ctx, opts, st, cmd)
	}
	return reportRun(ctx, opts, st, cmd)
}

func listRuns(ctx context.Context, opts *ReportOptions, st *store.Store, cmd *cobra.Command) error {
	runs, err := st.ListRuns(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if opts.Format == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(CLIResponse{Status: "ok", Data: runs})
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No archived runs.")
		return nil
	}
	for _, run := range runs {
		verdict := "PASS"
		if !run.Pass {
			verdict = "FAIL"
		}
		fmt.Fprintf(w, "%s  %s  %-30s %s", run.Token, verdict, run.Scenario, run.Backend)
		if run.FailurePath != "" {
			fmt.Fprintf(w, "  %s", run.FailurePath)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func reportRun(ctx context.Context, opts *ReportOptions, st *store.Store, cmd *cobra.Command) error {
	run, err := st.GetRun(ctx, opts.RunToken)
	if errors.Is(err, sql.ErrNoRows) {
		return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", opts.RunToken))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	entries, err := st.ReadLedger(ctx, opts.RunToken)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read ledger", err)
	}

	if opts.Format == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(CLIResponse{Status: "ok", Data: RunReport{Run: run, Entries: entries}})
	}

	w := cmd.OutOrStdout()
	verdict := "PASS"
	if !run.Pass {
		verdict = "FAIL"
	}
	fmt.Fprintf(w, "Run:      %s\n", run.Token)
	fmt.Fprintf(w, "Scenario: %s\n", run.Scenario)
	fmt.Fprintf(w, "Backend:  %s\n", run.Backend)
	fmt.Fprintf(w, "Verdict:  %s\n", verdict)
	if run.FailurePath != "" {
		fmt.Fprintf(w, "Failed:   %s\n", run.FailurePath)
	}
	fmt.Fprintln(w)
	for _, e := range entries {
		mark := "✓"
		if e.Failed() {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s [%d] %-32s %-8s %s", mark, e.Seq, e.ActionName, e.Outcome, e.Claim)
		if e.Detail != nil {
			fmt.Fprintf(w, "  (%s)", e.Detail.String())
		}
		fmt.Fprintln(w)
	}
	return nil
}

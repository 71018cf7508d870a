package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/daa/internal/ledger"
)

// RunRecord describes one archived test run.
type RunRecord struct {
	Token       string
	Scenario    string
	Backend     string
	Pass        bool
	FailurePath string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// ArchiveRun persists a finished run and its full ledger in one
// transaction. Re-archiving the same run token is a silent no-op
// (entries are content-addressed; the run row wins on first write).
func (s *Store) ArchiveRun(ctx context.Context, run RunRecord, entries []ledger.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("archive run: %w", err)
	}
	defer tx.Rollback()

	pass := 0
	if run.Pass {
		pass = 1
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (token, scenario, backend, pass, failure_path, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`,
		run.Token,
		run.Scenario,
		run.Backend,
		pass,
		run.FailurePath,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("archive run %s: %w", run.Token, err)
	}

	for _, e := range entries {
		detailJSON, err := marshalDetail(e.Detail)
		if err != nil {
			return fmt.Errorf("archive run %s: entry %d: %w", run.Token, e.Seq, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO ledger_entries (id, run_token, seq, action, outcome, claim, detail)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`,
			e.ID, e.RunToken, e.Seq, e.ActionName, string(e.Outcome), e.Claim, detailJSON,
		)
		if err != nil {
			return fmt.Errorf("archive run %s: entry %d: %w", run.Token, e.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("archive run %s: %w", run.Token, err)
	}
	return nil
}

// marshalDetail serializes a failure detail, nil-safe.
func marshalDetail(d *ledger.FailureDetail) (any, error) {
	if d == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal detail: %w", err)
	}
	return string(encoded), nil
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/daa/internal/ledger"
)

// ListRuns returns archived runs, newest token first (run tokens are
// UUIDv7, so token order is creation order).
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, scenario, backend, pass, failure_path, started_at, finished_at
		FROM runs
		ORDER BY token DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns one archived run by token.
func (s *Store) GetRun(ctx context.Context, token string) (RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT token, scenario, backend, pass, failure_path, started_at, finished_at
		FROM runs
		WHERE token = ?
	`, token)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("run %s not found: %w", token, sql.ErrNoRows)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %s: %w", token, err)
	}
	return run, nil
}

// ReadLedger returns a run's archived entries in seq order.
func (s *Store) ReadLedger(ctx context.Context, runToken string) ([]ledger.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_token, seq, action, outcome, claim, detail
		FROM ledger_entries
		WHERE run_token = ?
		ORDER BY seq ASC
	`, runToken)
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", runToken, err)
	}
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		var e ledger.Entry
		var outcome string
		var detailJSON sql.NullString
		if err := rows.Scan(&e.ID, &e.RunToken, &e.Seq, &e.ActionName, &outcome, &e.Claim, &detailJSON); err != nil {
			return nil, fmt.Errorf("read ledger %s: %w", runToken, err)
		}
		e.Outcome = ledger.Outcome(outcome)
		if detailJSON.Valid && detailJSON.String != "" {
			var d ledger.FailureDetail
			if err := json.Unmarshal([]byte(detailJSON.String), &d); err != nil {
				return nil, fmt.Errorf("read ledger %s: seq %d: %w", runToken, e.Seq, err)
			}
			e.Detail = &d
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunRecord, error) {
	var run RunRecord
	var pass int
	var started, finished string
	if err := row.Scan(&run.Token, &run.Scenario, &run.Backend, &pass, &run.FailurePath, &started, &finished); err != nil {
		return RunRecord{}, err
	}
	run.Pass = pass != 0
	var err error
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return RunRecord{}, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return RunRecord{}, fmt.Errorf("parse finished_at: %w", err)
	}
	return run, nil
}

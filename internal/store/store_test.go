package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/daa/internal/ledger"
	"github.com/roach88/daa/internal/testutil"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// recordedRun builds a run through the ledger so archived entries carry
// real content-addressed IDs.
func recordedRun(t *testing.T, token string) (RunRecord, []ledger.Entry) {
	t.Helper()
	led := ledger.NewLedger(token, testutil.NewDeterministicClock())
	_, err := led.Append("create_device", ledger.OutcomeSuccess, "status==201", nil)
	require.NoError(t, err)
	_, err = led.Append("activate_device", ledger.OutcomeFailure, "status==200", &ledger.FailureDetail{
		Kind:  ledger.FailTransport,
		Fault: "transport fault TIMEOUT: post http://sut/devices/d-1/activate : deadline exceeded",
	})
	require.NoError(t, err)
	led.Close()

	started := time.Date(2025, 11, 3, 9, 30, 0, 0, time.UTC)
	run := RunRecord{
		Token:       token,
		Scenario:    "device_upgrade_timeout",
		Backend:     "scripted",
		Pass:        false,
		FailurePath: "perform_device_upgrade -> activate_device",
		StartedAt:   started,
		FinishedAt:  started.Add(250 * time.Millisecond),
	}
	return run, led.Report()
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestArchiveAndReadBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run, entries := recordedRun(t, "run-0001")
	require.NoError(t, s.ArchiveRun(ctx, run, entries))

	got, err := s.GetRun(ctx, "run-0001")
	require.NoError(t, err)
	assert.Equal(t, run.Token, got.Token)
	assert.Equal(t, run.Scenario, got.Scenario)
	assert.Equal(t, run.Backend, got.Backend)
	assert.False(t, got.Pass)
	assert.Equal(t, run.FailurePath, got.FailurePath)
	assert.True(t, run.StartedAt.Equal(got.StartedAt))
	assert.True(t, run.FinishedAt.Equal(got.FinishedAt))

	read, err := s.ReadLedger(ctx, "run-0001")
	require.NoError(t, err)
	require.Len(t, read, 2)
	assert.Equal(t, entries[0], read[0])
	assert.Equal(t, entries[1], read[1])
	require.NotNil(t, read[1].Detail)
	assert.Equal(t, ledger.FailTransport, read[1].Detail.Kind)
}

func TestArchiveRunIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run, entries := recordedRun(t, "run-0001")
	require.NoError(t, s.ArchiveRun(ctx, run, entries))
	require.NoError(t, s.ArchiveRun(ctx, run, entries))

	read, err := s.ReadLedger(ctx, "run-0001")
	require.NoError(t, err)
	assert.Len(t, read, 2)
}

func TestListRunsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Tokens are UUIDv7 in production, so lexicographic order is
	// creation order.
	for _, token := range []string{"run-0001", "run-0002", "run-0003"} {
		run, entries := recordedRun(t, token)
		require.NoError(t, s.ArchiveRun(ctx, run, entries))
	}

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run-0003", runs[0].Token)
	assert.Equal(t, "run-0002", runs[1].Token)
	assert.Equal(t, "run-0001", runs[2].Token)

	limited, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestGetRunNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetRun(context.Background(), "run-missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestReadLedgerEmptyRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run, _ := recordedRun(t, "run-0001")
	require.NoError(t, s.ArchiveRun(ctx, run, nil))

	entries, err := s.ReadLedger(ctx, "run-0001")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

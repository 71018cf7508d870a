package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/daa/internal/ledger"
	"github.com/roach88/daa/internal/scenario"
)

// LedgerSnapshot captures the full verification ledger of one run for
// golden comparison. Canonical JSON keeps the byte form deterministic.
type LedgerSnapshot struct {
	Scenario string
	RunToken string
	Entries  []ledger.Entry
}

// toCanonicalMap converts the snapshot to plain maps so canonical
// marshaling controls key order and string normalization.
func (s *LedgerSnapshot) toCanonicalMap() map[string]any {
	entryList := make([]any, len(s.Entries))
	for i, e := range s.Entries {
		entryMap := map[string]any{
			"id":      e.ID,
			"seq":     e.Seq,
			"action":  e.ActionName,
			"outcome": string(e.Outcome),
			"claim":   e.Claim,
		}
		if e.Detail != nil {
			detail := map[string]any{
				"kind": string(e.Detail.Kind),
			}
			if e.Detail.Expected != "" {
				detail["expected"] = e.Detail.Expected
			}
			if e.Detail.Actual != "" {
				detail["actual"] = e.Detail.Actual
			}
			if e.Detail.Fault != "" {
				detail["fault"] = e.Detail.Fault
			}
			entryMap["detail"] = detail
		}
		entryList[i] = entryMap
	}

	return map[string]any{
		"scenario":  s.Scenario,
		"run_token": s.RunToken,
		"entries":   entryList,
	}
}

// AssertGolden compares a run's ledger against the golden file at
// testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
//
// Golden files pin the exact ledger a scenario must produce: one entry
// per atomic invocation, in flow order, with claims and failure details.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	snapshot := LedgerSnapshot{
		Scenario: result.Scenario,
		RunToken: result.RunToken,
		Entries:  result.Entries,
	}
	data, err := ledger.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}

// RunWithGolden executes a scenario through the harness and compares
// the resulting ledger against its golden file. The scenario's name is
// the golden file name, so deterministic scenarios should fix run_token.
func RunWithGolden(t *testing.T, h *Harness, sc *scenario.Scenario) (*Result, error) {
	t.Helper()

	result, err := h.Run(context.Background(), sc)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, sc.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

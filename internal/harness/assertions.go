package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/daa/internal/ledger"
	"github.com/roach88/daa/internal/scenario"
)

// EvaluateAssertions checks every declarative assertion against the
// completed run and returns one rendered message per violation.
func EvaluateAssertions(result *Result, assertions []scenario.Assertion) []string {
	var violations []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case scenario.AssertLedgerContains:
			err = assertLedgerContains(result, &a)
		case scenario.AssertLedgerOrder:
			err = assertLedgerOrder(result, &a)
		case scenario.AssertLedgerCount:
			err = assertLedgerCount(result, &a)
		case scenario.AssertFirstFailure:
			err = assertFirstFailure(result, &a)
		case scenario.AssertFailurePath:
			err = assertFailurePath(result, &a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			violations = append(violations, fmt.Sprintf("assertion[%d] %s: %v", i, a.Type, err))
		}
	}
	return violations
}

func assertLedgerContains(result *Result, a *scenario.Assertion) error {
	for i := range result.Entries {
		if entryMatches(&result.Entries[i], a) {
			return nil
		}
	}
	return fmt.Errorf("no entry matches %s\n%s", describeMatch(a), dumpLedger(result.Entries))
}

func entryMatches(e *ledger.Entry, a *scenario.Assertion) bool {
	if e.ActionName != a.Action {
		return false
	}
	if a.Outcome != "" && string(e.Outcome) != a.Outcome {
		return false
	}
	if a.Claim != "" && e.Claim != a.Claim {
		return false
	}
	return true
}

func describeMatch(a *scenario.Assertion) string {
	parts := []string{fmt.Sprintf("action=%q", a.Action)}
	if a.Outcome != "" {
		parts = append(parts, fmt.Sprintf("outcome=%q", a.Outcome))
	}
	if a.Claim != "" {
		parts = append(parts, fmt.Sprintf("claim=%q", a.Claim))
	}
	return strings.Join(parts, " ")
}

// assertLedgerOrder checks that the named actions appear as a
// subsequence of the ledger, in the given relative order.
func assertLedgerOrder(result *Result, a *scenario.Assertion) error {
	next := 0
	for i := range result.Entries {
		if next < len(a.Actions) && result.Entries[i].ActionName == a.Actions[next] {
			next++
		}
	}
	if next == len(a.Actions) {
		return nil
	}
	return fmt.Errorf("expected order [%s], stuck at %q\n%s",
		strings.Join(a.Actions, ", "), a.Actions[next], dumpLedger(result.Entries))
}

func assertLedgerCount(result *Result, a *scenario.Assertion) error {
	got := 0
	for i := range result.Entries {
		if a.Action == "" || result.Entries[i].ActionName == a.Action {
			got++
		}
	}
	if got == a.Count {
		return nil
	}
	scope := "entries"
	if a.Action != "" {
		scope = fmt.Sprintf("entries for %q", a.Action)
	}
	return fmt.Errorf("expected %d %s, got %d\n%s", a.Count, scope, got, dumpLedger(result.Entries))
}

func assertFirstFailure(result *Result, a *scenario.Assertion) error {
	var first *ledger.Entry
	for i := range result.Entries {
		if result.Entries[i].Failed() {
			first = &result.Entries[i]
			break
		}
	}
	if first == nil {
		return fmt.Errorf("expected a failed entry, ledger has none\n%s", dumpLedger(result.Entries))
	}
	if a.Action != "" && first.ActionName != a.Action {
		return fmt.Errorf("expected first failure at %q, got %q\n%s",
			a.Action, first.ActionName, dumpLedger(result.Entries))
	}
	if a.Outcome != "" && string(first.Outcome) != a.Outcome {
		return fmt.Errorf("expected first failure outcome %q, got %q\n%s",
			a.Outcome, first.Outcome, dumpLedger(result.Entries))
	}
	if a.DetailKind != "" {
		got := ""
		if first.Detail != nil {
			got = string(first.Detail.Kind)
		}
		if got != a.DetailKind {
			return fmt.Errorf("expected first failure detail kind %q, got %q\n%s",
				a.DetailKind, got, dumpLedger(result.Entries))
		}
	}
	return nil
}

func assertFailurePath(result *Result, a *scenario.Assertion) error {
	if pathsEqual(result.FailurePath, a.Path) {
		return nil
	}
	return fmt.Errorf("expected failure path %q, got %q",
		strings.Join(a.Path, " -> "), result.FailurePathString())
}

func pathsEqual(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// dumpLedger renders the ledger for assertion failure messages.
func dumpLedger(entries []ledger.Entry) string {
	if len(entries) == 0 {
		return "  ledger is empty"
	}
	var b strings.Builder
	b.WriteString("  ledger:\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "    [%d] %s %s claim=%q", e.Seq, e.ActionName, e.Outcome, e.Claim)
		if e.Detail != nil {
			fmt.Fprintf(&b, " detail=%s", e.Detail.String())
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

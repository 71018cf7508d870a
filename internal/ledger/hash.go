package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainEntry is the domain prefix for entry identity.
// Version suffix enables future algorithm migration.
const DomainEntry = "daa/ledger-entry/v1"

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// EntryID computes the content-addressed ID for a ledger entry.
// Stable across runs given identical fields, which makes two invocations
// of the same action with the same outcome distinguishable only by seq -
// exactly the idempotence property the ledger needs.
func EntryID(runToken, actionName string, outcome Outcome, claim string, detail *FailureDetail, seq int64) (string, error) {
	obj := map[string]any{
		"run_token": runToken,
		"action":    actionName,
		"outcome":   string(outcome),
		"claim":     claim,
		"seq":       seq,
	}
	if detail != nil {
		d := map[string]any{"kind": string(detail.Kind)}
		if detail.Expected != "" {
			d["expected"] = detail.Expected
		}
		if detail.Actual != "" {
			d["actual"] = detail.Actual
		}
		if detail.Fault != "" {
			d["fault"] = detail.Fault
		}
		obj["detail"] = d
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("EntryID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainEntry, canonical), nil
}

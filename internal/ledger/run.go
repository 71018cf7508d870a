package ledger

import "github.com/google/uuid"

// RunTokenGenerator produces the token identifying one test run.
type RunTokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run tokens.
//
// UUIDv7 embeds a timestamp in the most significant bits, so archived
// runs sort by creation time, which keeps `daa report` output and the
// runs table naturally ordered.
//
// Thread-safety: stateless, safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

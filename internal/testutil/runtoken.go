package testutil

// FixedRunTokenGenerator always returns the same run token.
//
// A fixed token plus a deterministic clock makes a run's ledger - and
// the content-addressed entry IDs inside it - byte-identical across
// executions, enabling golden file comparison.
//
// Thread-safety: stateless after construction, safe for concurrent use.
type FixedRunTokenGenerator struct {
	token string
}

// NewFixedRunTokenGenerator creates a generator for token. An empty
// token defaults to "test-run-default".
func NewFixedRunTokenGenerator(token string) *FixedRunTokenGenerator {
	if token == "" {
		token = "test-run-default"
	}
	return &FixedRunTokenGenerator{token: token}
}

// Generate implements ledger.RunTokenGenerator.
func (g *FixedRunTokenGenerator) Generate() string {
	return g.token
}

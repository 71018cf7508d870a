// Package ledger records verification outcomes for one test run.
//
// The ledger is the source of failure attribution: every atomic action
// appends exactly one entry per invocation - success, failure, or abort -
// and nothing else writes to it. Composite actions are an aggregation
// view and never append.
//
// # State Machine
//
// A ledger moves Empty -> Recording -> Closed. Construction binds it to a
// run token and enters Recording; Close is called at run end (pass or
// fail), after which Report and FirstFailure are the only permitted
// operations and Append returns ErrClosed.
//
// # Identity
//
// Entries are content-addressed: the entry ID is a domain-separated
// SHA-256 over the RFC 8785 canonical JSON of the entry's fields. With a
// deterministic clock and a fixed run token the same execution produces
// byte-identical ledgers, which is what golden snapshot comparison
// relies on.
//
// One ledger instance per run; no concurrent writers within a run.
package ledger

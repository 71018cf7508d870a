// Package harness executes declarative scenarios against the action
// layer and validates the resulting verification ledger.
//
// Each scenario runs in full isolation: a fresh ledger, a fresh action
// context, and a fresh physical adapter per run, so concurrent runs
// cannot interfere. With a fixed run token the deterministic sequence
// clock makes a run's ledger byte-identical across executions, which is
// what golden snapshot comparison relies on.
package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/daa/internal/action"
	"github.com/roach88/daa/internal/compiler"
	"github.com/roach88/daa/internal/ledger"
	"github.com/roach88/daa/internal/physical"
	"github.com/roach88/daa/internal/scenario"
	"github.com/roach88/daa/internal/store"
	"github.com/roach88/daa/internal/testutil"
)

// Harness runs scenarios.
type Harness struct {
	base    *action.Registry
	logger  *slog.Logger
	archive *store.Store
	tokens  ledger.RunTokenGenerator
	timeout time.Duration
}

// Option configures a Harness.
type Option func(*Harness)

// WithBaseRegistry supplies programmatic actions that scenario packs can
// reference by name (the built-in catalog, typically).
func WithBaseRegistry(r *action.Registry) Option {
	return func(h *Harness) { h.base = r }
}

// WithLogger installs a logger. Default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) { h.logger = logger }
}

// WithArchive persists finished runs and their ledgers to the store.
func WithArchive(s *store.Store) Option {
	return func(h *Harness) { h.archive = s }
}

// WithRunTokens overrides run token generation (tests use fixed tokens).
func WithRunTokens(g ledger.RunTokenGenerator) Option {
	return func(h *Harness) { h.tokens = g }
}

// WithTimeout bounds each run. Zero means no harness-imposed deadline.
func WithTimeout(d time.Duration) Option {
	return func(h *Harness) { h.timeout = d }
}

// New creates a harness.
func New(opts ...Option) *Harness {
	h := &Harness{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		tokens: ledger.UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes one scenario and returns its result.
//
// Execution: compile and link action packs, build the backend, seed step
// args into run state, invoke each step strictly in order. The first
// failing step aborts the remainder - the test layer sequences, it never
// branches. Assertions are evaluated against the closed ledger.
//
// A returned error means the scenario could not execute (broken pack,
// unknown action); a failing SUT outcome is a non-passing Result, not an
// error.
func (h *Harness) Run(ctx context.Context, sc *scenario.Scenario) (*Result, error) {
	pack := &compiler.Pack{}
	if len(sc.Packs) > 0 {
		var err error
		pack, err = compiler.CompilePackFiles(sc.Packs)
		if err != nil {
			return nil, fmt.Errorf("failed to compile packs: %w", err)
		}
	}
	registry, err := compiler.Link(pack, h.base)
	if err != nil {
		return nil, fmt.Errorf("failed to link packs: %w", err)
	}

	runToken := sc.RunToken
	if runToken == "" {
		runToken = h.tokens.Generate()
	}

	adapter, err := buildAdapter(sc.Backend)
	if err != nil {
		return nil, err
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	// A fresh per-run clock: seq starts at 1 every run, so a fixed run
	// token yields a byte-identical ledger across executions.
	led := ledger.NewLedger(runToken, ledger.NewClock())
	rc := action.NewContext(runToken, adapter, led)
	if sc.Backend.BaseURL != "" {
		rc.Put("base_url", sc.Backend.BaseURL)
	}

	result := NewResult(sc.Name, runToken)
	started := time.Now()

	for i, step := range sc.Steps {
		act, err := registry.Resolve(step.Invoke)
		if err != nil {
			led.Close()
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}

		for k, v := range step.Args {
			rc.Put(k, v)
		}

		r := act.Execute(ctx, rc)
		h.logger.Info("step executed",
			"step", i,
			"action", step.Invoke,
			"outcome", r.Outcome,
		)
		if !r.OK() {
			result.Pass = false
			result.FailurePath = r.Path
			result.AddError(r.Err().Error())
			break
		}
	}

	led.Close()
	result.Entries = led.Report()

	for _, errMsg := range EvaluateAssertions(result, sc.Assertions) {
		result.AddError(errMsg)
	}

	if h.archive != nil {
		record := store.RunRecord{
			Token:       runToken,
			Scenario:    sc.Name,
			Backend:     adapter.Name(),
			Pass:        result.Pass,
			FailurePath: result.FailurePathString(),
			StartedAt:   started,
			FinishedAt:  time.Now(),
		}
		if err := h.archive.ArchiveRun(ctx, record, result.Entries); err != nil {
			return nil, fmt.Errorf("failed to archive run %s: %w", runToken, err)
		}
	}

	return result, nil
}

// buildAdapter constructs the run's physical backend from scenario
// configuration. Scripted backends replay the declared script entries
// in order per operation, then fall back to standing stubs.
func buildAdapter(b scenario.Backend) (physical.Adapter, error) {
	switch b.Kind {
	case scenario.BackendScripted:
		adapter := testutil.NewScriptedAdapter()
		for _, entry := range b.Script {
			if entry.Fault != nil {
				adapter.EnqueueFault(entry.Op, physical.FaultKind(entry.Fault.Kind), entry.Fault.Message)
				continue
			}
			adapter.Enqueue(entry.Op, entry.Observe)
		}
		for op, values := range b.Stubs {
			adapter.Stub(op, values)
		}
		return adapter, nil
	case scenario.BackendHTTP:
		return physical.NewHTTPAdapter(), nil
	default:
		return nil, fmt.Errorf("unknown backend kind %q", b.Kind)
	}
}

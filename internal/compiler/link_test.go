package compiler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/daa/internal/action"
	"github.com/roach88/daa/internal/ledger"
	"github.com/roach88/daa/internal/physical"
	"github.com/roach88/daa/internal/testutil"
)

func TestLinkBuildsRunnableActions(t *testing.T) {
	pack, err := compileSource(t, devicePack)
	require.NoError(t, err)

	registry, err := Link(pack, nil)
	require.NoError(t, err)

	upgrade, err := registry.Resolve("perform_device_upgrade")
	require.NoError(t, err)

	adapter := testutil.NewScriptedAdapter()
	adapter.Enqueue(physical.OpPost, map[string]any{
		"status": int64(201),
		"json":   map[string]any{"id": "d-1"},
	})
	adapter.Enqueue(physical.OpPost, map[string]any{"status": int64(200)})
	adapter.Enqueue(physical.OpGet, map[string]any{
		"status": int64(200),
		"json":   map[string]any{"status": "active"},
	})

	led := ledger.NewLedger("test-run", testutil.NewDeterministicClock())
	rc := action.NewContext("test-run", adapter, led)
	rc.Put("base_url", "http://sut")
	rc.Put("device_id", "d-1")
	rc.Put("new_device_name", "iPhone 15")

	r := upgrade.Execute(context.Background(), rc)
	require.True(t, r.OK(), "linked upgrade flow: %v", r.Err())

	calls := adapter.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "http://sut/devices", calls[0].Target(), "templates resolve from run state")
	assert.Equal(t, "http://sut/devices/d-1/activate", calls[1].Target())
	assert.Equal(t, "http://sut/devices/d-1", calls[2].Target())

	assert.Equal(t, 3, led.Len())
}

func TestLinkTemplateBodySubstitution(t *testing.T) {
	pack, err := compileSource(t, devicePack)
	require.NoError(t, err)

	registry, err := Link(pack, nil)
	require.NoError(t, err)

	create, err := registry.Resolve("create_device")
	require.NoError(t, err)

	adapter := testutil.NewScriptedAdapter()
	adapter.Stub(physical.OpPost, map[string]any{
		"status": int64(201),
		"json":   map[string]any{"id": "d-9"},
	})
	led := ledger.NewLedger("test-run", testutil.NewDeterministicClock())
	rc := action.NewContext("test-run", adapter, led)
	rc.Put("base_url", "http://sut")
	rc.Put("new_device_name", "iPhone 15")

	r := create.Execute(context.Background(), rc)
	require.True(t, r.OK())

	body, ok := adapter.Calls()[0].Args["body"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "iPhone 15", body["name"], "nested templates resolve too")
}

func TestLinkResolvesStepsFromBaseRegistry(t *testing.T) {
	src := `
pack: composites: health_and_upgrade: {
	steps: ["programmatic_health_check"]
}
`
	pack, err := compileSource(t, src)
	require.NoError(t, err)

	base := action.NewRegistry()
	base.MustRegister(action.MustAtomic("programmatic_health_check",
		func(_ *action.Context) physical.Op {
			return physical.Op{Name: physical.OpGet, Args: map[string]any{"url": "http://sut/health"}}
		},
		action.StatusIs(200)))

	registry, err := Link(pack, base)
	require.NoError(t, err)

	_, err = registry.Resolve("health_and_upgrade")
	assert.NoError(t, err)
}

func TestLinkMergesBaseRegistry(t *testing.T) {
	pack, err := compileSource(t, devicePack)
	require.NoError(t, err)

	base := action.NewRegistry()
	base.MustRegister(action.MustAtomic("programmatic_health_check",
		func(_ *action.Context) physical.Op {
			return physical.Op{Name: physical.OpGet, Args: map[string]any{"url": "http://sut/health"}}
		},
		action.StatusIs(200)))

	registry, err := Link(pack, base)
	require.NoError(t, err)

	// Scenario steps resolve against the linked registry alone, so base
	// actions must be reachable from it even when never referenced by a
	// pack composite.
	_, err = registry.Resolve("programmatic_health_check")
	assert.NoError(t, err)
	_, err = registry.Resolve("perform_device_upgrade")
	assert.NoError(t, err)
}

func TestLinkPackDefinitionShadowsBase(t *testing.T) {
	pack, err := compileSource(t, devicePack)
	require.NoError(t, err)

	// A built-in under the same name as the pack's composite, with a
	// different shape (one atomic vs the pack's three-step flow).
	base := action.NewRegistry()
	base.MustRegister(action.MustAtomic("perform_device_upgrade",
		func(_ *action.Context) physical.Op {
			return physical.Op{Name: physical.OpGet, Args: map[string]any{"url": "http://sut/legacy"}}
		},
		action.StatusIs(200)))

	registry, err := Link(pack, base)
	require.NoError(t, err)

	upgrade, err := registry.Resolve("perform_device_upgrade")
	require.NoError(t, err)

	counter, ok := upgrade.(action.DescendantCounter)
	require.True(t, ok)
	assert.Equal(t, 3, counter.AtomicDescendants(), "the pack definition wins, not the built-in")
}

func TestLinkShadowedCompositeStepsStillLinked(t *testing.T) {
	// Redefining a built-in must not exempt the pack definition from
	// step resolution: a broken step inside it is still a link error.
	src := `
pack: composites: perform_device_upgrade: {
	steps: ["no_such_action"]
}
`
	pack, err := compileSource(t, src)
	require.NoError(t, err)

	base := action.NewRegistry()
	base.MustRegister(action.MustAtomic("perform_device_upgrade",
		func(_ *action.Context) physical.Op {
			return physical.Op{Name: physical.OpGet, Args: map[string]any{"url": "http://sut/legacy"}}
		},
		action.StatusIs(200)))

	_, err = Link(pack, base)
	require.Error(t, err)

	var ce *action.CompositionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, action.ErrCodeUnresolvedChild, ce.Code)
	assert.Equal(t, "no_such_action", ce.Child)
}

func TestLinkUnknownStep(t *testing.T) {
	src := `
pack: composites: flow: {
	steps: ["no_such_action"]
}
`
	pack, err := compileSource(t, src)
	require.NoError(t, err)

	_, err = Link(pack, nil)
	require.Error(t, err)

	var ce *action.CompositionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, action.ErrCodeUnresolvedChild, ce.Code)
	assert.Equal(t, "no_such_action", ce.Child)
}

func TestLinkDetectsCompositeCycle(t *testing.T) {
	src := `
pack: composites: {
	a: {steps: ["b"]}
	b: {steps: ["a"]}
}
`
	pack, err := compileSource(t, src)
	require.NoError(t, err)

	_, err = Link(pack, nil)
	require.Error(t, err)

	var ce *action.CompositionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, action.ErrCodeCycleDetected, ce.Code)
}

func TestLinkCompositeOfComposites(t *testing.T) {
	src := `
pack: {
	atomics: ping: {
		op: "get"
		args: {url: "http://sut/health"}
		expect: {status: 200}
	}
	composites: {
		outer: {steps: ["inner", "ping"]}
		inner: {steps: ["ping"]}
	}
}
`
	pack, err := compileSource(t, src)
	require.NoError(t, err)

	registry, err := Link(pack, nil)
	require.NoError(t, err)

	outer, err := registry.Resolve("outer")
	require.NoError(t, err)

	counter, ok := outer.(action.DescendantCounter)
	require.True(t, ok)
	assert.Equal(t, 2, counter.AtomicDescendants())
}

func TestLinkUnresolvedTemplateBecomesEmpty(t *testing.T) {
	pack, err := compileSource(t, devicePack)
	require.NoError(t, err)

	registry, err := Link(pack, nil)
	require.NoError(t, err)

	activate, err := registry.Resolve("activate_device")
	require.NoError(t, err)

	adapter := testutil.NewScriptedAdapter()
	adapter.Stub(physical.OpPost, map[string]any{"status": int64(200)})
	led := ledger.NewLedger("test-run", testutil.NewDeterministicClock())
	rc := action.NewContext("test-run", adapter, led)
	// base_url and device_id deliberately unset

	r := activate.Execute(context.Background(), rc)
	require.True(t, r.OK())
	assert.Equal(t, "/devices//activate", adapter.Calls()[0].Target(),
		"unknown keys resolve empty and fail at the backend, not silently")
}

package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/daa/internal/physical"
)

func TestDeterministicClock(t *testing.T) {
	clock := NewDeterministicClock()
	assert.Equal(t, int64(0), clock.Current())
	assert.Equal(t, int64(1), clock.Next())
	assert.Equal(t, int64(2), clock.Next())
	assert.Equal(t, int64(2), clock.Current())

	clock.Reset()
	assert.Equal(t, int64(0), clock.Current())
	assert.Equal(t, int64(1), clock.Next())
}

func TestFixedRunTokenGenerator(t *testing.T) {
	gen := NewFixedRunTokenGenerator("run-abc")
	assert.Equal(t, "run-abc", gen.Generate())
	assert.Equal(t, "run-abc", gen.Generate())

	assert.Equal(t, "test-run-default", NewFixedRunTokenGenerator("").Generate())
}

func TestScriptedAdapterQueueBeforeStanding(t *testing.T) {
	adapter := NewScriptedAdapter()
	adapter.Stub(physical.OpGet, map[string]any{"status": int64(200)})
	adapter.Enqueue(physical.OpGet, map[string]any{"status": int64(503)})
	adapter.Enqueue(physical.OpGet, map[string]any{"status": int64(500)})

	ctx := context.Background()
	op := physical.Op{Name: physical.OpGet, Args: map[string]any{"url": "http://sut/health"}}

	// One-shot entries drain in order, then the standing stub answers.
	for _, want := range []int64{503, 500, 200, 200} {
		obs, err := adapter.Perform(ctx, op)
		require.NoError(t, err)
		status, ok := obs.Int("status")
		require.True(t, ok)
		assert.Equal(t, want, status)
	}
}

func TestScriptedAdapterFaults(t *testing.T) {
	adapter := NewScriptedAdapter()
	adapter.EnqueueFault(physical.OpPost, physical.KindTimeout, "deadline exceeded")
	adapter.Stub(physical.OpPost, map[string]any{"status": int64(200)})

	ctx := context.Background()
	op := physical.Op{Name: physical.OpPost, Args: map[string]any{"url": "http://sut/devices"}}

	_, err := adapter.Perform(ctx, op)
	require.Error(t, err)
	fault, ok := physical.AsFault(err)
	require.True(t, ok)
	assert.Equal(t, physical.KindTimeout, fault.Kind)
	assert.Equal(t, physical.OpPost, fault.Op)
	assert.Equal(t, "http://sut/devices", fault.Target, "fault target filled from the actual call")

	// The queue entry is consumed; the standing stub takes over.
	obs, err := adapter.Perform(ctx, op)
	require.NoError(t, err)
	status, _ := obs.Int("status")
	assert.Equal(t, int64(200), status)
}

func TestScriptedAdapterUnscriptedOp(t *testing.T) {
	adapter := NewScriptedAdapter()

	_, err := adapter.Perform(context.Background(), physical.Op{Name: physical.OpClick})
	require.Error(t, err)
	fault, ok := physical.AsFault(err)
	require.True(t, ok)
	assert.Equal(t, physical.KindProtocol, fault.Kind)
	assert.Contains(t, fault.Error(), "unscripted operation")
}

func TestScriptedAdapterCanceledContext(t *testing.T) {
	adapter := NewScriptedAdapter()
	adapter.Stub(physical.OpGet, map[string]any{"status": int64(200)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := adapter.Perform(ctx, physical.Op{Name: physical.OpGet})
	require.True(t, physical.IsCanceled(err))
	assert.Equal(t, 0, adapter.CallCount(physical.OpGet),
		"canceled calls are not recorded as performed")
}

func TestScriptedAdapterRecordsCalls(t *testing.T) {
	adapter := NewScriptedAdapter()
	adapter.Stub(physical.OpGet, map[string]any{"status": int64(200)})
	adapter.Stub(physical.OpDelete, map[string]any{"status": int64(204)})

	ctx := context.Background()
	_, err := adapter.Perform(ctx, physical.Op{Name: physical.OpGet, Args: map[string]any{"url": "http://sut/a"}})
	require.NoError(t, err)
	_, err = adapter.Perform(ctx, physical.Op{Name: physical.OpGet, Args: map[string]any{"url": "http://sut/b"}})
	require.NoError(t, err)
	_, err = adapter.Perform(ctx, physical.Op{Name: physical.OpDelete, Args: map[string]any{"url": "http://sut/a"}})
	require.NoError(t, err)

	calls := adapter.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "http://sut/a", calls[0].Target())
	assert.Equal(t, "http://sut/b", calls[1].Target())
	assert.Equal(t, physical.OpDelete, calls[2].Name)

	assert.Equal(t, 2, adapter.CallCount(physical.OpGet))
	assert.Equal(t, 1, adapter.CallCount(physical.OpDelete))
	assert.Equal(t, 0, adapter.CallCount(physical.OpPost))
}

func TestScriptedAdapterName(t *testing.T) {
	assert.Equal(t, "scripted", NewScriptedAdapter().Name())
}

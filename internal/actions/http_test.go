package actions

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

func newRun(adapter physical.Adapter) *action.Context {
	led := ledger.NewLedger("test-run", testutil.NewDeterministicClock())
	return action.NewContext("test-run", adapter, led)
}

func TestRequestByGetAndSuccess(t *testing.T) {
	adapter := testutil.NewScriptedAdapter()
	adapter.Stub(physical.OpGet, map[string]any{"status": int64(200)})
	rc := newRun(adapter)

	r := RequestByGetAndSuccess("http://sut/health").Execute(context.Background(), rc)

	require.True(t, r.OK())
	entries := rc.Ledger.Report()
	require.Len(t, entries, 1)
	assert.Equal(t, "request_by_get_and_success", entries[0].ActionName)
	assert.Equal(t, ledger.OutcomeSuccess, entries[0].Outcome)
	assert.Equal(t, "status==200", entries[0].Claim)
}

func TestRequestByGetAndSuccessAgainstServerError(t *testing.T) {
	adapter := testutil.NewScriptedAdapter()
	adapter.Stub(physical.OpGet, map[string]any{"status": int64(500)})
	rc := newRun(adapter)

	r := RequestByGetAndSuccess("http://sut/health").Execute(context.Background(), rc)

	require.False(t, r.OK())
	assert.Equal(t, "expected 200, got 500", r.Detail.String())

	first := rc.Ledger.FirstFailure()
	require.NotNil(t, first)
	assert.Equal(t, "request_by_get_and_success", first.ActionName)
}

func TestRequestByGetAndFailure(t *testing.T) {
	adapter := testutil.NewScriptedAdapter()
	adapter.Stub(physical.OpGet, map[string]any{"status": int64(404)})
	rc := newRun(adapter)

	r := RequestByGetAndFailure("http://sut/missing").Execute(context.Background(), rc)

	require.True(t, r.OK(), "a non-200 is exactly what this action claims")
	assert.Equal(t, "status!=200", r.Claim)
}

func TestCreateObjectAndVerifyThreadsID(t *testing.T) {
	adapter := testutil.NewScriptedAdapter()
	adapter.Stub(physical.OpPost, map[string]any{
		"status": int64(201),
		"json":   map[string]any{"id": "obj-42", "name": "widget", "data": map[string]any{"color": "red"}},
	})
	rc := newRun(adapter)

	r := CreateObjectAndVerify("http://sut/objects", "widget", map[string]any{"color": "red"}).
		Execute(context.Background(), rc)

	require.True(t, r.OK())
	id, ok := rc.StringVar(KeyCreatedObjectID)
	require.True(t, ok)
	assert.Equal(t, "obj-42", id)
}

func TestCreateObjectAndVerifyRejectsWrongEcho(t *testing.T) {
	adapter := testutil.NewScriptedAdapter()
	adapter.Stub(physical.OpPost, map[string]any{
		"status": int64(201),
		"json":   map[string]any{"id": "obj-42", "name": "gadget"},
	})
	rc := newRun(adapter)

	r := CreateObjectAndVerify("http://sut/objects", "widget", nil).
		Execute(context.Background(), rc)

	require.False(t, r.OK())
	assert.Equal(t, ledger.FailVerification, r.Detail.Kind)
	assert.Equal(t, "gadget", r.Detail.Actual)
}

func TestGetObjectAndExpectNotFound(t *testing.T) {
	adapter := testutil.NewScriptedAdapter()
	adapter.Stub(physical.OpGet, map[string]any{"status": int64(404)})
	rc := newRun(adapter)

	r := GetObjectAndExpectNotFound("http://sut/objects", "obj-42").
		Execute(context.Background(), rc)

	require.True(t, r.OK())
	assert.Equal(t, "status==404", r.Claim)
}

func TestPerformDeviceUpgradeHappyPath(t *testing.T) {
	adapter := testutil.NewScriptedAdapter()
	// read old device
	adapter.Enqueue(physical.OpGet, map[string]any{
		"status": int64(200),
		"json":   map[string]any{"id": "d-0", "name": "iPhone 14", "data": map[string]any{"lang": "en"}},
	})
	// create upgraded device
	adapter.Enqueue(physical.OpPost, map[string]any{
		"status": int64(201),
		"json":   map[string]any{"id": "d-1", "name": "iPhone 15", "data": map[string]any{"lang": "en"}},
	})
	// recycle old device
	adapter.Enqueue(physical.OpDelete, map[string]any{"status": int64(204)})
	// old device gone
	adapter.Enqueue(physical.OpGet, map[string]any{"status": int64(404)})
	// migrated device readable
	adapter.Enqueue(physical.OpGet, map[string]any{
		"status": int64(200),
		"json":   map[string]any{"id": "d-1", "name": "iPhone 15", "data": map[string]any{"lang": "en"}},
	})
	rc := newRun(adapter)

	upgrade := PerformDeviceUpgrade("http://sut/devices", "d-0", "iPhone 15")
	r := upgrade.Execute(context.Background(), rc)

	require.True(t, r.OK(), "upgrade flow: %v", r.Err())

	entries := rc.Ledger.Report()
	require.Len(t, entries, 5, "five atomics, five entries, zero composite entries")
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.ActionName
	}
	assert.Equal(t, []string{
		"read_old_device",
		"create_upgraded_device",
		"recycle_old_device",
		"verify_old_device_gone",
		"verify_migrated_device",
	}, names)

	newID, ok := rc.StringVar(KeyNewDeviceID)
	require.True(t, ok)
	assert.Equal(t, "d-1", newID)
}

func TestPerformDeviceUpgradeTimeoutAttribution(t *testing.T) {
	adapter := testutil.NewScriptedAdapter()
	adapter.Enqueue(physical.OpGet, map[string]any{
		"status": int64(200),
		"json":   map[string]any{"id": "d-0", "name": "iPhone 14", "data": map[string]any{}},
	})
	adapter.EnqueueFault(physical.OpPost, physical.KindTimeout, "deadline exceeded")
	rc := newRun(adapter)

	upgrade := PerformDeviceUpgrade("http://sut/devices", "d-0", "iPhone 15")
	r := upgrade.Execute(context.Background(), rc)

	require.False(t, r.OK())
	assert.Equal(t, "perform_device_upgrade -> create_upgraded_device", r.FailurePath())
	assert.Equal(t, ledger.FailTransport, r.Detail.Kind)
	assert.Contains(t, r.Detail.Fault, "TIMEOUT")

	// The flow stopped at the fault: nothing was deleted or re-read.
	assert.Equal(t, 0, adapter.CallCount(physical.OpDelete))
	assert.Equal(t, 1, adapter.CallCount(physical.OpGet))
	assert.Equal(t, 2, rc.Ledger.Len())
}

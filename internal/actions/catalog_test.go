package actions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/daa/internal/physical"
	"github.com/roach88/daa/internal/testutil"
)

func TestCatalogRegistersEveryBuiltin(t *testing.T) {
	r := Catalog()

	for _, name := range []string{
		"request_by_get_and_success",
		"request_by_get_and_failure",
		"request_by_post_and_success",
		"request_by_delete_and_success",
		"create_object_and_verify",
		"get_object_and_verify",
		"delete_object_and_verify",
		"get_object_and_expect_not_found",
		"perform_device_upgrade",
		"navigate_to_home_and_verify_title",
		"search_for_product_and_verify_result_list_not_empty",
		"search_for_product_and_expect_no_results",
	} {
		_, err := r.Resolve(name)
		assert.NoError(t, err, "catalog action %s", name)
	}
}

func TestCatalogActionReadsArgsFromRunState(t *testing.T) {
	adapter := testutil.NewScriptedAdapter()
	adapter.Stub(physical.OpGet, map[string]any{"status": int64(200)})
	rc := newRun(adapter)
	rc.Put("url", "http://sut/health")

	act, err := Catalog().Resolve("request_by_get_and_success")
	require.NoError(t, err)

	r := act.Execute(context.Background(), rc)
	require.True(t, r.OK())

	calls := adapter.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "http://sut/health", calls[0].Target())
}

func TestCatalogDeviceUpgradeEndToEnd(t *testing.T) {
	adapter := testutil.NewScriptedAdapter()
	adapter.Enqueue(physical.OpGet, map[string]any{
		"status": int64(200),
		"json":   map[string]any{"id": "d-0", "name": "iPhone 14", "data": map[string]any{"lang": "en"}},
	})
	adapter.Enqueue(physical.OpPost, map[string]any{
		"status": int64(201),
		"json":   map[string]any{"id": "d-1", "name": "iPhone 15", "data": map[string]any{"lang": "en"}},
	})
	adapter.Enqueue(physical.OpDelete, map[string]any{"status": int64(204)})
	adapter.Enqueue(physical.OpGet, map[string]any{"status": int64(404)})
	adapter.Enqueue(physical.OpGet, map[string]any{
		"status": int64(200),
		"json":   map[string]any{"id": "d-1", "name": "iPhone 15"},
	})
	rc := newRun(adapter)
	rc.Put("url", "http://sut/devices")
	rc.Put("device_id", "d-0")
	rc.Put("new_device_name", "iPhone 15")

	act, err := Catalog().Resolve("perform_device_upgrade")
	require.NoError(t, err)

	r := act.Execute(context.Background(), rc)
	require.True(t, r.OK(), "catalog upgrade flow: %v", r.Err())
	assert.Equal(t, 5, rc.Ledger.Len())
}

func TestCatalogObjectIDFallsBackToCreatedID(t *testing.T) {
	adapter := testutil.NewScriptedAdapter()
	adapter.Stub(physical.OpPost, map[string]any{
		"status": int64(201),
		"json":   map[string]any{"id": "obj-9", "name": "widget"},
	})
	adapter.Stub(physical.OpGet, map[string]any{
		"status": int64(200),
		"json":   map[string]any{"id": "obj-9", "name": "widget"},
	})
	rc := newRun(adapter)
	rc.Put("url", "http://sut/objects")
	rc.Put("name", "widget")

	catalog := Catalog()
	create, err := catalog.Resolve("create_object_and_verify")
	require.NoError(t, err)
	require.True(t, create.Execute(context.Background(), rc).OK())

	read, err := catalog.Resolve("get_object_and_verify")
	require.NoError(t, err)
	require.True(t, read.Execute(context.Background(), rc).OK())

	calls := adapter.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "http://sut/objects/obj-9", calls[1].Target(),
		"the created id threads into the follow-up read")
}

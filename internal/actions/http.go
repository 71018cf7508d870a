package actions

import (
	"fmt"
	"strings"

	"github.com/roach88/daa/internal/action"
	"github.com/roach88/daa/internal/physical"
)

// RequestByGetAndSuccess verifies a GET answers 200.
func RequestByGetAndSuccess(url string) *action.Atomic {
	return action.MustAtomic(
		"request_by_get_and_success",
		staticOp(physical.OpGet, map[string]any{"url": url}),
		action.StatusIs(200),
	)
}

// RequestByGetAndFailure verifies a GET answers anything but 200.
func RequestByGetAndFailure(url string) *action.Atomic {
	return action.MustAtomic(
		"request_by_get_and_failure",
		staticOp(physical.OpGet, map[string]any{"url": url}),
		action.StatusNot(200),
	)
}

// RequestByPostAndSuccess verifies a POST answers 200 or 201.
func RequestByPostAndSuccess(url string, body map[string]any) *action.Atomic {
	return action.MustAtomic(
		"request_by_post_and_success",
		staticOp(physical.OpPost, map[string]any{"url": url, "body": body}),
		action.StatusIn(200, 201),
	)
}

// RequestByDeleteAndSuccess verifies a DELETE answers 200 or 204.
func RequestByDeleteAndSuccess(url string) *action.Atomic {
	return action.MustAtomic(
		"request_by_delete_and_success",
		staticOp(physical.OpDelete, map[string]any{"url": url}),
		action.StatusIn(200, 204),
	)
}

// CreateObjectAndVerify creates an object and verifies the echo: the
// response must carry the requested name and a server-assigned id. The
// id is threaded into run state under KeyCreatedObjectID for later steps.
func CreateObjectAndVerify(url, name string, data map[string]any) *action.Atomic {
	return action.MustAtomic(
		"create_object_and_verify",
		staticOp(physical.OpPost, map[string]any{
			"url":  url,
			"body": map[string]any{"name": name, "data": data},
		}),
		action.And(
			action.StatusIn(200, 201),
			action.JSONFieldEquals("name", name),
			action.JSONHasField("id"),
		),
		action.WithProduce(func(rc *action.Context, obs *physical.Observation) any {
			body, _ := obs.Map("json")
			rc.Put(KeyCreatedObjectID, fmt.Sprintf("%v", body["id"]))
			return body
		}),
	)
}

// GetObjectAndVerify fetches an object by id and verifies the identity
// round-trips. expectedName may be empty to skip the name check.
func GetObjectAndVerify(url, objID, expectedName string) *action.Atomic {
	checks := []action.Check{
		action.StatusIs(200),
		action.JSONFieldEquals("id", objID),
	}
	if expectedName != "" {
		checks = append(checks, action.JSONFieldEquals("name", expectedName))
	}
	return action.MustAtomic(
		"get_object_and_verify",
		staticOp(physical.OpGet, map[string]any{"url": joinURL(url, objID)}),
		action.And(checks...),
		action.WithProduce(func(_ *action.Context, obs *physical.Observation) any {
			body, _ := obs.Map("json")
			return body
		}),
	)
}

// DeleteObjectAndVerify deletes an object and verifies the SUT accepted.
func DeleteObjectAndVerify(url, objID string) *action.Atomic {
	return action.MustAtomic(
		"delete_object_and_verify",
		staticOp(physical.OpDelete, map[string]any{"url": joinURL(url, objID)}),
		action.StatusIn(200, 204),
	)
}

// GetObjectAndExpectNotFound verifies an object is gone.
func GetObjectAndExpectNotFound(url, objID string) *action.Atomic {
	return action.MustAtomic(
		"get_object_and_expect_not_found",
		staticOp(physical.OpGet, map[string]any{"url": joinURL(url, objID)}),
		action.StatusIs(404),
	)
}

// PerformDeviceUpgrade is the device upgrade business flow:
// read the old device's preferences, migrate them into a newly created
// device, recycle the old one, verify it is gone, and verify the new
// device carries the migrated identity.
//
// The migrated data payload and the new device's id flow between steps
// through run state, not through hidden globals.
func PerformDeviceUpgrade(url, oldDeviceID, newDeviceName string) *action.Composite {
	readOld := action.MustAtomic(
		"read_old_device",
		staticOp(physical.OpGet, map[string]any{"url": joinURL(url, oldDeviceID)}),
		action.And(action.StatusIs(200), action.JSONFieldEquals("id", oldDeviceID)),
		action.WithProduce(func(rc *action.Context, obs *physical.Observation) any {
			body, _ := obs.Map("json")
			rc.Put(KeyMigratedData, body["data"])
			return body
		}),
	)

	createNew := action.MustAtomic(
		"create_upgraded_device",
		func(rc *action.Context) physical.Op {
			data, _ := rc.Get(KeyMigratedData)
			body := map[string]any{"name": newDeviceName}
			if data != nil {
				body["data"] = data
			}
			return physical.Op{Name: physical.OpPost, Args: map[string]any{"url": url, "body": body}}
		},
		action.And(
			action.StatusIn(200, 201),
			action.JSONFieldEquals("name", newDeviceName),
			action.JSONHasField("id"),
		),
		action.WithProduce(func(rc *action.Context, obs *physical.Observation) any {
			body, _ := obs.Map("json")
			rc.Put(KeyNewDeviceID, fmt.Sprintf("%v", body["id"]))
			return body
		}),
	)

	recycleOld := action.MustAtomic(
		"recycle_old_device",
		staticOp(physical.OpDelete, map[string]any{"url": joinURL(url, oldDeviceID)}),
		action.StatusIn(200, 204),
	)

	verifyGone := action.MustAtomic(
		"verify_old_device_gone",
		staticOp(physical.OpGet, map[string]any{"url": joinURL(url, oldDeviceID)}),
		action.StatusIs(404),
	)

	verifyMigrated := action.MustAtomic(
		"verify_migrated_device",
		func(rc *action.Context) physical.Op {
			newID, _ := rc.StringVar(KeyNewDeviceID)
			return physical.Op{Name: physical.OpGet, Args: map[string]any{"url": joinURL(url, newID)}}
		},
		action.And(action.StatusIs(200), action.JSONFieldEquals("name", newDeviceName)),
		action.WithProduce(func(_ *action.Context, obs *physical.Observation) any {
			body, _ := obs.Map("json")
			return body
		}),
	)

	return action.MustComposite("perform_device_upgrade", []action.Action{
		readOld, createNew, recycleOld, verifyGone, verifyMigrated,
	})
}

// staticOp builds an OpFunc for operations fully resolved at
// construction time.
func staticOp(name string, args map[string]any) action.OpFunc {
	return func(_ *action.Context) physical.Op {
		return physical.Op{Name: name, Args: args}
	}
}

// joinURL appends a path segment to a base URL.
func joinURL(base, segment string) string {
	return strings.TrimRight(base, "/") + "/" + segment
}

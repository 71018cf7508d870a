package actions

import (
	"fmt"
	"strings"

	"github.com/roach88/daa/internal/action"
	"github.com/roach88/daa/internal/physical"
)

// Catalog returns the built-in action catalog as a registry. Scenario
// steps invoke these by name, with parameters supplied as step args and
// read from run state at execution time. The programmatic constructors
// in this package bind the same behavior at construction time instead.
func Catalog() *action.Registry {
	r := action.NewRegistry()

	r.MustRegister(action.MustAtomic(
		"request_by_get_and_success",
		stateOp(physical.OpGet, map[string]string{"url": "url"}),
		action.StatusIs(200),
	))

	r.MustRegister(action.MustAtomic(
		"request_by_get_and_failure",
		stateOp(physical.OpGet, map[string]string{"url": "url"}),
		action.StatusNot(200),
	))

	r.MustRegister(action.MustAtomic(
		"request_by_post_and_success",
		func(rc *action.Context) physical.Op {
			url, _ := rc.StringVar("url")
			body, _ := rc.Get("body")
			return physical.Op{Name: physical.OpPost, Args: map[string]any{"url": url, "body": body}}
		},
		action.StatusIn(200, 201),
	))

	r.MustRegister(action.MustAtomic(
		"request_by_delete_and_success",
		stateOp(physical.OpDelete, map[string]string{"url": "url"}),
		action.StatusIn(200, 204),
	))

	r.MustRegister(action.MustAtomic(
		"create_object_and_verify",
		func(rc *action.Context) physical.Op {
			url, _ := rc.StringVar("url")
			name, _ := rc.StringVar("name")
			body := map[string]any{"name": name}
			if data, ok := rc.Get("data"); ok {
				body["data"] = data
			}
			return physical.Op{Name: physical.OpPost, Args: map[string]any{"url": url, "body": body}}
		},
		action.And(
			action.StatusIn(200, 201),
			jsonFieldMatchesState("name", "name"),
			action.JSONHasField("id"),
		),
		action.WithProduce(func(rc *action.Context, obs *physical.Observation) any {
			body, _ := obs.Map("json")
			rc.Put(KeyCreatedObjectID, fmt.Sprintf("%v", body["id"]))
			return body
		}),
	))

	r.MustRegister(action.MustAtomic(
		"get_object_and_verify",
		func(rc *action.Context) physical.Op {
			url, _ := rc.StringVar("url")
			return physical.Op{Name: physical.OpGet, Args: map[string]any{"url": joinURL(url, objectID(rc))}}
		},
		action.And(action.StatusIs(200), action.JSONHasField("id")),
		action.WithProduce(func(_ *action.Context, obs *physical.Observation) any {
			body, _ := obs.Map("json")
			return body
		}),
	))

	r.MustRegister(action.MustAtomic(
		"delete_object_and_verify",
		func(rc *action.Context) physical.Op {
			url, _ := rc.StringVar("url")
			return physical.Op{Name: physical.OpDelete, Args: map[string]any{"url": joinURL(url, objectID(rc))}}
		},
		action.StatusIn(200, 204),
	))

	r.MustRegister(action.MustAtomic(
		"get_object_and_expect_not_found",
		func(rc *action.Context) physical.Op {
			url, _ := rc.StringVar("url")
			return physical.Op{Name: physical.OpGet, Args: map[string]any{"url": joinURL(url, objectID(rc))}}
		},
		action.StatusIs(404),
	))

	r.MustRegister(catalogDeviceUpgrade())

	r.MustRegister(action.MustAtomic(
		"navigate_to_home_and_verify_title",
		stateOp(physical.OpGoto, map[string]string{"url": "url"}),
		textContainsState("title", "title"),
	))

	r.MustRegister(action.MustComposite(
		"search_for_product_and_verify_result_list_not_empty",
		[]action.Action{
			catalogFillSearchBox(),
			catalogSubmitSearch(),
			action.MustAtomic(
				"wait_for_result_slot",
				staticOp(physical.OpWaitFor, map[string]any{"selector": SelectorSearchResultSlot}),
				action.VisibleIs(true),
			),
			action.MustAtomic(
				"verify_result_count",
				staticOp(physical.OpGetCount, map[string]any{"selector": SelectorSearchResultItem}),
				action.CountGreaterThan(0),
				action.WithProduce(func(_ *action.Context, obs *physical.Observation) any {
					n, _ := obs.Int("count")
					return n
				}),
			),
		},
	))

	r.MustRegister(action.MustComposite(
		"search_for_product_and_expect_no_results",
		[]action.Action{
			catalogFillSearchBox(),
			catalogSubmitSearch(),
			action.MustAtomic(
				"verify_no_results_message",
				staticOp(physical.OpIsVisible, map[string]any{"selector": SelectorNoResultsText}),
				action.VisibleIs(true),
			),
		},
	))

	return r
}

func catalogDeviceUpgrade() *action.Composite {
	readOld := action.MustAtomic(
		"read_old_device",
		func(rc *action.Context) physical.Op {
			url, _ := rc.StringVar("url")
			oldID, _ := rc.StringVar("device_id")
			return physical.Op{Name: physical.OpGet, Args: map[string]any{"url": joinURL(url, oldID)}}
		},
		action.And(action.StatusIs(200), jsonFieldMatchesState("id", "device_id")),
		action.WithProduce(func(rc *action.Context, obs *physical.Observation) any {
			body, _ := obs.Map("json")
			rc.Put(KeyMigratedData, body["data"])
			return body
		}),
	)

	createNew := action.MustAtomic(
		"create_upgraded_device",
		func(rc *action.Context) physical.Op {
			url, _ := rc.StringVar("url")
			name, _ := rc.StringVar("new_device_name")
			body := map[string]any{"name": name}
			if data, ok := rc.Get(KeyMigratedData); ok && data != nil {
				body["data"] = data
			}
			return physical.Op{Name: physical.OpPost, Args: map[string]any{"url": url, "body": body}}
		},
		action.And(
			action.StatusIn(200, 201),
			jsonFieldMatchesState("name", "new_device_name"),
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
		func(rc *action.Context) physical.Op {
			url, _ := rc.StringVar("url")
			oldID, _ := rc.StringVar("device_id")
			return physical.Op{Name: physical.OpDelete, Args: map[string]any{"url": joinURL(url, oldID)}}
		},
		action.StatusIn(200, 204),
	)

	verifyGone := action.MustAtomic(
		"verify_old_device_gone",
		func(rc *action.Context) physical.Op {
			url, _ := rc.StringVar("url")
			oldID, _ := rc.StringVar("device_id")
			return physical.Op{Name: physical.OpGet, Args: map[string]any{"url": joinURL(url, oldID)}}
		},
		action.StatusIs(404),
	)

	verifyMigrated := action.MustAtomic(
		"verify_migrated_device",
		func(rc *action.Context) physical.Op {
			url, _ := rc.StringVar("url")
			newID, _ := rc.StringVar(KeyNewDeviceID)
			return physical.Op{Name: physical.OpGet, Args: map[string]any{"url": joinURL(url, newID)}}
		},
		action.And(action.StatusIs(200), jsonFieldMatchesState("name", "new_device_name")),
	)

	return action.MustComposite("perform_device_upgrade", []action.Action{
		readOld, createNew, recycleOld, verifyGone, verifyMigrated,
	})
}

func catalogFillSearchBox() *action.Atomic {
	return action.MustAtomic(
		"fill_search_box",
		func(rc *action.Context) physical.Op {
			keyword, _ := rc.StringVar("keyword")
			return physical.Op{Name: physical.OpFill, Args: map[string]any{
				"selector": SelectorSearchInput,
				"text":     keyword,
			}}
		},
		textContainsState("value", "keyword"),
	)
}

func catalogSubmitSearch() *action.Atomic {
	return action.MustAtomic(
		"submit_search",
		staticOp(physical.OpClick, map[string]any{"selector": SelectorSearchSubmitButton}),
		action.FlagIs("clicked", true),
	)
}

// stateOp builds an OpFunc whose args are read from run state. keys maps
// op arg name to state key.
func stateOp(name string, keys map[string]string) action.OpFunc {
	return func(rc *action.Context) physical.Op {
		args := make(map[string]any, len(keys))
		for arg, key := range keys {
			v, _ := rc.StringVar(key)
			args[arg] = v
		}
		return physical.Op{Name: name, Args: args}
	}
}

// objectID resolves the target object id: an explicit object_id arg
// wins, otherwise the id threaded by the last create.
func objectID(rc *action.Context) string {
	if id, ok := rc.StringVar("object_id"); ok && id != "" {
		return id
	}
	id, _ := rc.StringVar(KeyCreatedObjectID)
	return id
}

// jsonFieldMatchesState checks a JSON body field against a run-state
// value resolved at execution time. The claim uses the ${key} template
// form so it stays stable across runs with different arguments.
func jsonFieldMatchesState(field, key string) action.Check {
	return action.Check{
		Claim: fmt.Sprintf("json.%s==${%s}", field, key),
		Eval: func(rc *action.Context, obs *physical.Observation) *action.Mismatch {
			want, _ := rc.StringVar(key)
			body, ok := obs.Map("json")
			if !ok {
				return &action.Mismatch{Expected: want, Actual: "no json body observed"}
			}
			got, present := body[field]
			if !present {
				return &action.Mismatch{Expected: want, Actual: fmt.Sprintf("field %q absent", field)}
			}
			if fmt.Sprintf("%v", got) != want {
				return &action.Mismatch{Expected: want, Actual: fmt.Sprintf("%v", got)}
			}
			return nil
		},
	}
}

// textContainsState checks an observed string contains a run-state value.
func textContainsState(obsKey, stateKey string) action.Check {
	return action.Check{
		Claim: fmt.Sprintf("%s contains ${%s}", obsKey, stateKey),
		Eval: func(rc *action.Context, obs *physical.Observation) *action.Mismatch {
			want, _ := rc.StringVar(stateKey)
			got, ok := obs.String(obsKey)
			if !ok {
				return &action.Mismatch{Expected: want, Actual: fmt.Sprintf("no %s observed", obsKey)}
			}
			if !strings.Contains(got, want) {
				return &action.Mismatch{Expected: fmt.Sprintf("%s containing %q", obsKey, want), Actual: fmt.Sprintf("%q", got)}
			}
			return nil
		},
	}
}

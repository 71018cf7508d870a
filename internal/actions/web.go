package actions

import (
	"github.com/roach88/daa/internal/action"
	"github.com/roach88/daa/internal/physical"
)

// NavigateToHomeAndVerifyTitle navigates to the storefront and verifies
// the page title. The navigation observation carries the landed page's
// title, so this stays one physical call.
func NavigateToHomeAndVerifyTitle(baseURL, wantTitle string) *action.Atomic {
	return action.MustAtomic(
		"navigate_to_home_and_verify_title",
		staticOp(physical.OpGoto, map[string]any{"url": baseURL}),
		action.TextContains("title", wantTitle),
	)
}

// SearchForProductAndVerifyResultListNotEmpty runs the storefront search
// flow: fill the search box, submit, wait for the result slot, then
// verify at least one result rendered. The produced value is the final
// count observation.
func SearchForProductAndVerifyResultListNotEmpty(keyword string) *action.Composite {
	fill := action.MustAtomic(
		"fill_search_box",
		staticOp(physical.OpFill, map[string]any{"selector": SelectorSearchInput, "text": keyword}),
		action.TextContains("value", keyword),
	)

	submit := action.MustAtomic(
		"submit_search",
		staticOp(physical.OpClick, map[string]any{"selector": SelectorSearchSubmitButton}),
		action.FlagIs("clicked", true),
	)

	wait := action.MustAtomic(
		"wait_for_result_slot",
		staticOp(physical.OpWaitFor, map[string]any{"selector": SelectorSearchResultSlot}),
		action.VisibleIs(true),
	)

	count := action.MustAtomic(
		"verify_result_count",
		staticOp(physical.OpGetCount, map[string]any{"selector": SelectorSearchResultItem}),
		action.CountGreaterThan(0),
		action.WithProduce(func(_ *action.Context, obs *physical.Observation) any {
			n, _ := obs.Int("count")
			return n
		}),
	)

	return action.MustComposite("search_for_product_and_verify_result_list_not_empty",
		[]action.Action{fill, submit, wait, count})
}

// SearchForProductAndExpectNoResults verifies the storefront's empty
// state for a nonsense query.
func SearchForProductAndExpectNoResults(keyword string) *action.Composite {
	fill := action.MustAtomic(
		"fill_search_box",
		staticOp(physical.OpFill, map[string]any{"selector": SelectorSearchInput, "text": keyword}),
		action.TextContains("value", keyword),
	)

	submit := action.MustAtomic(
		"submit_search",
		staticOp(physical.OpClick, map[string]any{"selector": SelectorSearchSubmitButton}),
		action.FlagIs("clicked", true),
	)

	noResults := action.MustAtomic(
		"verify_no_results_message",
		staticOp(physical.OpIsVisible, map[string]any{"selector": SelectorNoResultsText}),
		action.VisibleIs(true),
	)

	return action.MustComposite("search_for_product_and_expect_no_results",
		[]action.Action{fill, submit, noResults})
}

package actions

// Run-state keys threaded through the action context.
const (
	// KeyCreatedObjectID holds the ID returned by the most recent
	// create_object_and_verify.
	KeyCreatedObjectID = "created_object_id"

	// KeyMigratedData holds the old device's data payload during a
	// device upgrade.
	KeyMigratedData = "migrated_device_data"

	// KeyNewDeviceID holds the upgraded device's ID.
	KeyNewDeviceID = "new_device_id"
)

// Storefront selectors. Kept in one place so UI churn touches exactly
// one file.
const (
	SelectorSearchInput        = "#twotabsearchtextbox"
	SelectorSearchSubmitButton = "#nav-search-submit-button"
	SelectorSearchResultSlot   = ".s-main-slot"
	SelectorSearchResultItem   = ".s-result-item[data-component-type='s-search-result']"
	SelectorNoResultsText      = "text=No results for"
)

// Package actions is the built-in catalog of atomic and composite
// actions for the demo SUTs: a RESTful object API and a storefront UI.
//
// Every factory takes only domain-meaningful arguments - URLs, entity
// identifiers, search terms - never raw request objects or backend
// handles, so the test layer stays declarative. Selectors live here, in
// the action layer, and never leak upward.
package actions

// Package physical defines the capability boundary between the action
// layer and the system under test.
//
// A physical backend performs exactly one raw interaction per call and
// returns an unmodified observation of the result. It never asserts,
// never retries, and never converts a SUT-level outcome (a 500, an empty
// result list) into an error: only transport-level problems - connection
// refused, timeout, element not found, cancellation - surface as a Fault.
//
// # Operation Vocabulary
//
// Backends are interchangeable behind one interface keyed by operation
// name. The HTTP backend serves get/post/put/delete; a browser backend
// serves goto/fill/click/press/get_text/get_count/is_visible/
// get_attribute/wait_for/get_title. Explicit waits are named operations
// (wait_for), never hidden polling.
//
// # Per-Run Construction
//
// Adapters hold per-run resources (one HTTP client, one page). Construct
// a fresh adapter per test run; never share one across concurrent runs.
package physical

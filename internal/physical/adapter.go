package physical

import (
	"context"
	"fmt"
)

// Operation names understood by backends. An adapter serves the subset
// matching its medium; unknown names produce a protocol Fault.
const (
	OpGet    = "get"
	OpPost   = "post"
	OpPut    = "put"
	OpDelete = "delete"

	OpGoto         = "goto"
	OpFill         = "fill"
	OpClick        = "click"
	OpPress        = "press"
	OpGetText      = "get_text"
	OpGetCount     = "get_count"
	OpIsVisible    = "is_visible"
	OpGetAttribute = "get_attribute"
	OpWaitFor      = "wait_for"
	OpGetTitle     = "get_title"
)

// Op is one fully-resolved primitive interaction request.
// Args carry already-validated values (URLs, payloads, selectors, keys);
// nothing downstream resolves or defaults them.
type Op struct {
	Name string
	Args map[string]any
}

// Target returns the op's primary argument (url or selector) for
// diagnostics. Empty if neither is set.
func (o Op) Target() string {
	if url, ok := o.Args["url"].(string); ok {
		return url
	}
	if sel, ok := o.Args["selector"].(string); ok {
		return sel
	}
	return ""
}

func (o Op) String() string {
	if t := o.Target(); t != "" {
		return fmt.Sprintf("%s %s", o.Name, t)
	}
	return o.Name
}

// Observation is the raw result of one backend interaction.
// Values are backend-shaped: the HTTP adapter sets "status", "body" and
// optionally "json"; a browser backend sets "text", "count", "visible",
// "title", or "value" depending on the operation. The action layer reads
// them through the typed accessors and asserts on them; the adapter
// itself attaches no meaning.
type Observation struct {
	Values map[string]any
}

// Int returns the named value as int64. ok is false if absent or not an
// integer kind.
func (ob *Observation) Int(key string) (int64, bool) {
	switch v := ob.Values[key].(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
	}
	return 0, false
}

// String returns the named value as a string.
func (ob *Observation) String(key string) (string, bool) {
	s, ok := ob.Values[key].(string)
	return s, ok
}

// Bool returns the named value as a bool.
func (ob *Observation) Bool(key string) (bool, bool) {
	b, ok := ob.Values[key].(bool)
	return b, ok
}

// Map returns the named value as a JSON-style object.
func (ob *Observation) Map(key string) (map[string]any, bool) {
	m, ok := ob.Values[key].(map[string]any)
	return m, ok
}

// Adapter is the capability interface the action layer consumes.
//
// Perform executes exactly the one interaction described by op and
// returns the backend's raw observation, or a *Fault for transport-level
// problems. It must not retry, wait beyond the backend call's own
// semantics, or interpret the SUT's answer.
type Adapter interface {
	// Name identifies the backend kind for diagnostics ("http", "scripted").
	Name() string

	// Perform executes one raw operation. ctx is the run's cancellation
	// scope; a canceled context surfaces as a Fault with KindCanceled.
	Perform(ctx context.Context, op Op) (*Observation, error)
}

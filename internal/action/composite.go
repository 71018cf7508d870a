package action

import (
	"context"
	"fmt"
	"strings"
)

// AggregateFunc builds a composite's produced value from its children's
// results. Installed with WithAggregate; the default is the last child's
// value.
type AggregateFunc func(rc *Context, children []*Result) any

// Composite is a business-flow action built from a fixed, statically
// declared, ordered child sequence.
//
// No conditional branching or looping driven by SUT response content
// happens inside a composite - any branching is expressed as which
// composite the test layer calls. Verification is inherited transitively
// from atomic descendants; a composite carries no predicate of its own.
type Composite struct {
	name      string
	children  []Action
	aggregate AggregateFunc
}

// CompositeOption configures a Composite.
type CompositeOption func(*Composite)

// WithAggregate installs an explicit produced-value aggregate.
func WithAggregate(fn AggregateFunc) CompositeOption {
	return func(c *Composite) { c.aggregate = fn }
}

// NewComposite constructs a composite over the given ordered children.
//
// Construction fails with a CompositionError when the declaration is
// broken: no children, a nil child reference, or a child through which
// no atomic action is reachable - composition must never produce
// unverified chains.
func NewComposite(name string, children []Action, opts ...CompositeOption) (*Composite, error) {
	if name == "" {
		return nil, NewCompositionError(ErrCodeUnresolvedChild, name, "", "composite action requires a name")
	}
	if len(children) == 0 {
		return nil, NewCompositionError(ErrCodeEmptyComposite, name, "", "composite action requires at least one child")
	}
	for i, child := range children {
		if child == nil {
			return nil, NewCompositionError(ErrCodeUnresolvedChild, name, "",
				fmt.Sprintf("child %d is unresolved", i))
		}
		if atomicDescendants(child) == 0 {
			return nil, NewCompositionError(ErrCodeUnverifiedChain, name, child.Name(),
				"child resolves to zero atomic actions")
		}
	}

	c := &Composite{name: name, children: append([]Action(nil), children...)}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// MustComposite is like NewComposite but panics on a composition error.
func MustComposite(name string, children []Action, opts ...CompositeOption) *Composite {
	c, err := NewComposite(name, children, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Name implements Action.
func (c *Composite) Name() string { return c.name }

// Children returns the declared child sequence.
func (c *Composite) Children() []Action {
	return append([]Action(nil), c.children...)
}

// AtomicDescendants implements DescendantCounter.
func (c *Composite) AtomicDescendants() int {
	n := 0
	for _, child := range c.children {
		n += atomicDescendants(child)
	}
	return n
}

// Execute implements Action. Children run strictly sequentially; the
// first non-success child aborts the remainder immediately and the
// composite adopts its failure, prefixed with the composite's own name
// for attribution. Composites append nothing to the ledger - entries
// belong to atomics alone.
func (c *Composite) Execute(ctx context.Context, rc *Context) *Result {
	results := make([]*Result, 0, len(c.children))
	claims := make([]string, 0, len(c.children))

	for _, child := range c.children {
		r := child.Execute(ctx, rc)
		if !r.OK() {
			return &Result{
				Outcome: r.Outcome,
				Claim:   r.Claim,
				Detail:  r.Detail,
				Path:    append([]string{c.name}, r.Path...),
			}
		}
		results = append(results, r)
		claims = append(claims, r.Claim)
	}

	var value any
	if c.aggregate != nil {
		value = c.aggregate(rc, results)
	} else {
		value = results[len(results)-1].Value
	}
	return success(strings.Join(claims, " AND "), value)
}

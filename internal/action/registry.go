package action

import "sort"

// Registry resolves action names to definitions.
//
// The registry is assembled once at startup (from the built-in catalog
// and compiled action packs) and read-only afterwards; registration
// conflicts fail fast as composition errors.
type Registry struct {
	actions map[string]Action
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]Action)}
}

// Register adds an action under its name.
func (r *Registry) Register(a Action) error {
	if a == nil {
		return NewCompositionError(ErrCodeUnresolvedChild, "", "", "cannot register nil action")
	}
	name := a.Name()
	if _, exists := r.actions[name]; exists {
		return NewCompositionError(ErrCodeDuplicateAction, name, "", "action already registered")
	}
	r.actions[name] = a
	return nil
}

// MustRegister is like Register but panics on conflict.
func (r *Registry) MustRegister(a Action) {
	if err := r.Register(a); err != nil {
		panic(err)
	}
}

// Resolve returns the action registered under name.
func (r *Registry) Resolve(name string) (Action, error) {
	a, ok := r.actions[name]
	if !ok {
		return nil, NewCompositionError(ErrCodeMissingAction, name, "", "action not registered")
	}
	return a, nil
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered actions.
func (r *Registry) Len() int {
	return len(r.actions)
}

package compiler

import (
	"fmt"
	"regexp"

	"github.com/roach88/daa/internal/action"
	"github.com/roach88/daa/internal/physical"
)

var templateRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_.]*)\}`)

// Link resolves a compiled pack into an action registry.
//
// base may be nil or a registry of programmatic actions (the built-in
// catalog, typically). The returned registry holds the pack's actions
// plus every base action, so scenario steps can invoke either; a pack
// definition shadows a base action of the same name. Resolution
// failures - missing steps, cyclic composite references - surface as
// composition errors before any scenario runs; Link never defers a
// definition defect to run time.
func Link(pack *Pack, base *action.Registry) (*action.Registry, error) {
	registry := action.NewRegistry()

	for _, def := range pack.Atomics {
		atomic, err := buildAtomic(def)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(atomic); err != nil {
			return nil, err
		}
	}

	// Composites can reference each other in any declaration order;
	// resolve depth-first with an in-progress set for cycle detection.
	defs := make(map[string]CompositeDef, len(pack.Composites))
	for _, def := range pack.Composites {
		defs[def.Name] = def
	}

	state := &linkState{
		registry: registry,
		base:     base,
		defs:     defs,
		visiting: make(map[string]bool),
	}
	for _, def := range pack.Composites {
		if _, err := state.resolve(def.Name, def.Name); err != nil {
			return nil, err
		}
	}

	if base != nil {
		for _, name := range base.Names() {
			if _, err := registry.Resolve(name); err == nil {
				continue // pack definition shadows the built-in
			}
			a, err := base.Resolve(name)
			if err != nil {
				return nil, err
			}
			if err := registry.Register(a); err != nil {
				return nil, err
			}
		}
	}
	return registry, nil
}

type linkState struct {
	registry *action.Registry
	base     *action.Registry
	defs     map[string]CompositeDef
	visiting map[string]bool
}

// resolve returns the action registered under name, linking composite
// definitions on demand. Pack definitions take precedence over base
// actions, so redefining a built-in in a pack overrides it rather than
// leaving the pack version unreachable. parent is the composite being
// linked, for attribution in errors.
func (s *linkState) resolve(parent, name string) (action.Action, error) {
	if a, err := s.registry.Resolve(name); err == nil {
		return a, nil
	}

	def, ok := s.defs[name]
	if !ok {
		if s.base != nil {
			if a, err := s.base.Resolve(name); err == nil {
				return a, nil
			}
		}
		return nil, action.NewCompositionError(action.ErrCodeUnresolvedChild, parent, name,
			"step references an unknown action")
	}
	if s.visiting[name] {
		return nil, action.NewCompositionError(action.ErrCodeCycleDetected, name, parent,
			"composite definitions reference each other cyclically")
	}

	s.visiting[name] = true
	defer delete(s.visiting, name)

	children := make([]action.Action, 0, len(def.Steps))
	for _, step := range def.Steps {
		child, err := s.resolve(name, step)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	composite, err := action.NewComposite(name, children)
	if err != nil {
		return nil, err
	}
	if err := s.registry.Register(composite); err != nil {
		return nil, err
	}
	return composite, nil
}

// buildAtomic turns a definition into an executable atomic whose string
// arguments resolve ${key} references from run state at invocation time.
func buildAtomic(def AtomicDef) (*action.Atomic, error) {
	check, ok := def.Expect.Check()
	if !ok {
		return nil, action.NewCompositionError(action.ErrCodeUnverifiedAction, def.Name, "",
			"expect clause declares no checks")
	}

	op := func(rc *action.Context) physical.Op {
		return physical.Op{Name: def.Op, Args: resolveArgs(rc, def.Args)}
	}
	return action.NewAtomic(def.Name, op, check)
}

// resolveArgs deep-copies args, substituting ${key} template references
// in strings from run state. Unknown keys resolve to the empty string;
// the resulting malformed operation fails loudly at the backend rather
// than silently reusing a stale literal.
func resolveArgs(rc *action.Context, args map[string]any) map[string]any {
	if args == nil {
		return nil
	}
	resolved := make(map[string]any, len(args))
	for k, v := range args {
		resolved[k] = resolveValue(rc, v)
	}
	return resolved
}

func resolveValue(rc *action.Context, v any) any {
	switch val := v.(type) {
	case string:
		return templateRef.ReplaceAllStringFunc(val, func(match string) string {
			key := templateRef.FindStringSubmatch(match)[1]
			if s, ok := rc.StringVar(key); ok {
				return s
			}
			return ""
		})
	case map[string]any:
		return resolveArgs(rc, val)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = resolveValue(rc, elem)
		}
		return out
	default:
		return v
	}
}

// Describe renders a one-line summary per definition, used by
// `daa validate --verbose`.
func Describe(pack *Pack) []string {
	lines := make([]string, 0, len(pack.Atomics)+len(pack.Composites))
	for _, a := range pack.Atomics {
		check, _ := a.Expect.Check()
		lines = append(lines, fmt.Sprintf("atomic %s: %s (%s)", a.Name, a.Op, check.Claim))
	}
	for _, c := range pack.Composites {
		lines = append(lines, fmt.Sprintf("composite %s: %d steps", c.Name, len(c.Steps)))
	}
	return lines
}

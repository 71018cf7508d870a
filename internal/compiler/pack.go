package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Pack is a compiled set of action definitions.
type Pack struct {
	Atomics    []AtomicDef
	Composites []CompositeDef
}

// AtomicDef is a data-driven atomic action definition.
type AtomicDef struct {
	Name   string
	Op     string
	Args   map[string]any
	Expect ExpectClause
}

// CompositeDef is a declared composite: an ordered list of step names
// resolved at link time.
type CompositeDef struct {
	Name  string
	Steps []string
}

// CompilePackFile reads and compiles one CUE action-pack file.
func CompilePackFile(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pack file: %w", err)
	}
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompilePack(v)
}

// CompilePackFiles compiles and merges several pack files.
// Duplicate action names across files are a compile error.
func CompilePackFiles(paths []string) (*Pack, error) {
	merged := &Pack{}
	seen := make(map[string]string) // action name -> file
	for _, path := range paths {
		pack, err := CompilePackFile(path)
		if err != nil {
			return nil, err
		}
		for _, a := range pack.Atomics {
			if prev, dup := seen[a.Name]; dup {
				return nil, &CompileError{
					Field:   "atomics." + a.Name,
					Message: fmt.Sprintf("already defined in %s", prev),
				}
			}
			seen[a.Name] = path
			merged.Atomics = append(merged.Atomics, a)
		}
		for _, c := range pack.Composites {
			if prev, dup := seen[c.Name]; dup {
				return nil, &CompileError{
					Field:   "composites." + c.Name,
					Message: fmt.Sprintf("already defined in %s", prev),
				}
			}
			seen[c.Name] = path
			merged.Composites = append(merged.Composites, c)
		}
	}
	return merged, nil
}

// CompilePack parses a CUE value holding a `pack` struct.
// Uses the CUE SDK's Go API directly (not CLI subprocess).
func CompilePack(v cue.Value) (*Pack, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	packVal := v.LookupPath(cue.ParsePath("pack"))
	if !packVal.Exists() {
		return nil, &CompileError{Field: "pack", Message: "pack struct is required", Pos: v.Pos()}
	}

	pack := &Pack{}

	atomicsVal := packVal.LookupPath(cue.ParsePath("atomics"))
	if atomicsVal.Exists() {
		iter, err := atomicsVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			def, err := parseAtomic(iter.Selector().Unquoted(), iter.Value())
			if err != nil {
				return nil, err
			}
			pack.Atomics = append(pack.Atomics, def)
		}
	}

	compositesVal := packVal.LookupPath(cue.ParsePath("composites"))
	if compositesVal.Exists() {
		iter, err := compositesVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			def, err := parseComposite(iter.Selector().Unquoted(), iter.Value())
			if err != nil {
				return nil, err
			}
			pack.Composites = append(pack.Composites, def)
		}
	}

	if len(pack.Atomics) == 0 && len(pack.Composites) == 0 {
		return nil, &CompileError{Field: "pack", Message: "pack declares no actions", Pos: packVal.Pos()}
	}
	return pack, nil
}

// parseAtomic parses one data-driven atomic definition.
func parseAtomic(name string, v cue.Value) (AtomicDef, error) {
	def := AtomicDef{Name: name}

	opVal := v.LookupPath(cue.ParsePath("op"))
	if !opVal.Exists() {
		return def, &CompileError{Field: "atomics." + name, Message: "op is required", Pos: v.Pos()}
	}
	op, err := opVal.String()
	if err != nil {
		return def, formatCUEError(err)
	}
	def.Op = op

	argsVal := v.LookupPath(cue.ParsePath("args"))
	if argsVal.Exists() {
		if err := argsVal.Decode(&def.Args); err != nil {
			return def, &CompileError{
				Field:   "atomics." + name + ".args",
				Message: err.Error(),
				Pos:     argsVal.Pos(),
			}
		}
	}

	expectVal := v.LookupPath(cue.ParsePath("expect"))
	if !expectVal.Exists() {
		// An atomic that performs a call without checking its effect is
		// malformed; reject it here, not at run time.
		return def, &CompileError{
			Field:   "atomics." + name,
			Message: "expect clause is required (unverified atomics are malformed)",
			Pos:     v.Pos(),
		}
	}
	expect, err := parseExpect(name, expectVal)
	if err != nil {
		return def, err
	}
	def.Expect = expect
	return def, nil
}

// parseComposite parses one composite definition.
func parseComposite(name string, v cue.Value) (CompositeDef, error) {
	def := CompositeDef{Name: name}

	stepsVal := v.LookupPath(cue.ParsePath("steps"))
	if !stepsVal.Exists() {
		return def, &CompileError{Field: "composites." + name, Message: "steps list is required", Pos: v.Pos()}
	}
	iter, err := stepsVal.List()
	if err != nil {
		return def, formatCUEError(err)
	}
	for iter.Next() {
		step, err := iter.Value().String()
		if err != nil {
			return def, formatCUEError(err)
		}
		def.Steps = append(def.Steps, step)
	}
	if len(def.Steps) == 0 {
		return def, &CompileError{Field: "composites." + name, Message: "steps list must be non-empty", Pos: stepsVal.Pos()}
	}
	return def, nil
}

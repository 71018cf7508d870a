package compiler

import (
	"cuelang.org/go/cue"

	"github.com/roach88/daa/internal/action"
)

// ExpectClause is a parsed verification declaration. Present fields are
// conjoined into the atomic's single predicate.
type ExpectClause struct {
	Status     []int64
	NotStatus  *int64
	CountOver  *int64
	Contains   *KeyText
	Flag       *KeyFlag
	JSONEquals *FieldValue
	JSONHas    string
}

// KeyText is a substring expectation over an observation key.
type KeyText struct {
	Key   string
	Value string
}

// KeyFlag is a boolean expectation over an observation key.
type KeyFlag struct {
	Key   string
	Value bool
}

// FieldValue is an equality expectation over a JSON body field.
type FieldValue struct {
	Field string
	Value any
}

// Check compiles the clause into one verification predicate.
func (e *ExpectClause) Check() (action.Check, bool) {
	var checks []action.Check
	switch len(e.Status) {
	case 0:
	case 1:
		checks = append(checks, action.StatusIs(e.Status[0]))
	default:
		checks = append(checks, action.StatusIn(e.Status...))
	}
	if e.NotStatus != nil {
		checks = append(checks, action.StatusNot(*e.NotStatus))
	}
	if e.CountOver != nil {
		checks = append(checks, action.CountGreaterThan(*e.CountOver))
	}
	if e.Contains != nil {
		checks = append(checks, action.TextContains(e.Contains.Key, e.Contains.Value))
	}
	if e.Flag != nil {
		checks = append(checks, action.FlagIs(e.Flag.Key, e.Flag.Value))
	}
	if e.JSONEquals != nil {
		checks = append(checks, action.JSONFieldEquals(e.JSONEquals.Field, e.JSONEquals.Value))
	}
	if e.JSONHas != "" {
		checks = append(checks, action.JSONHasField(e.JSONHas))
	}

	switch len(checks) {
	case 0:
		return action.Check{}, false
	case 1:
		return checks[0], true
	default:
		return action.And(checks...), true
	}
}

// parseExpect parses an expect struct for an atomic definition.
func parseExpect(name string, v cue.Value) (ExpectClause, error) {
	var e ExpectClause
	field := "atomics." + name + ".expect"

	if sv := v.LookupPath(cue.ParsePath("status")); sv.Exists() {
		if code, err := sv.Int64(); err == nil {
			e.Status = []int64{code}
		} else {
			iter, err := sv.List()
			if err != nil {
				return e, &CompileError{Field: field + ".status", Message: "must be an int or list of ints", Pos: sv.Pos()}
			}
			for iter.Next() {
				code, err := iter.Value().Int64()
				if err != nil {
					return e, formatCUEError(err)
				}
				e.Status = append(e.Status, code)
			}
		}
	}

	if sv := v.LookupPath(cue.ParsePath("not_status")); sv.Exists() {
		code, err := sv.Int64()
		if err != nil {
			return e, formatCUEError(err)
		}
		e.NotStatus = &code
	}

	if sv := v.LookupPath(cue.ParsePath("count_over")); sv.Exists() {
		floor, err := sv.Int64()
		if err != nil {
			return e, formatCUEError(err)
		}
		e.CountOver = &floor
	}

	if sv := v.LookupPath(cue.ParsePath("contains")); sv.Exists() {
		var kt KeyText
		if err := sv.Decode(&kt); err != nil {
			return e, &CompileError{Field: field + ".contains", Message: err.Error(), Pos: sv.Pos()}
		}
		e.Contains = &kt
	}

	if sv := v.LookupPath(cue.ParsePath("flag")); sv.Exists() {
		var kf KeyFlag
		if err := sv.Decode(&kf); err != nil {
			return e, &CompileError{Field: field + ".flag", Message: err.Error(), Pos: sv.Pos()}
		}
		e.Flag = &kf
	}

	if sv := v.LookupPath(cue.ParsePath("json_equals")); sv.Exists() {
		var fv FieldValue
		if err := sv.Decode(&fv); err != nil {
			return e, &CompileError{Field: field + ".json_equals", Message: err.Error(), Pos: sv.Pos()}
		}
		e.JSONEquals = &fv
	}

	if sv := v.LookupPath(cue.ParsePath("json_has")); sv.Exists() {
		fieldName, err := sv.String()
		if err != nil {
			return e, formatCUEError(err)
		}
		e.JSONHas = fieldName
	}

	if _, ok := e.Check(); !ok {
		return e, &CompileError{Field: field, Message: "expect clause declares no checks", Pos: v.Pos()}
	}
	return e, nil
}

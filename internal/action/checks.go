package action

import (
	"fmt"
	"strings"

	"github.com/roach88/daa/internal/physical"
)

// Reusable verification predicates over backend observations. Claims are
// stable strings - they appear verbatim in ledger entries, failure
// reports, and golden files.

// StatusIs checks the observed HTTP status equals want.
func StatusIs(want int64) Check {
	return Check{
		Claim: fmt.Sprintf("status==%d", want),
		Eval: func(_ *Context, obs *physical.Observation) *Mismatch {
			got, ok := obs.Int("status")
			if !ok {
				return &Mismatch{Expected: fmt.Sprintf("%d", want), Actual: "no status observed"}
			}
			if got != want {
				return &Mismatch{Expected: fmt.Sprintf("%d", want), Actual: fmt.Sprintf("%d", got)}
			}
			return nil
		},
	}
}

// StatusIn checks the observed status is one of want.
func StatusIn(want ...int64) Check {
	rendered := make([]string, len(want))
	for i, w := range want {
		rendered[i] = fmt.Sprintf("%d", w)
	}
	expected := strings.Join(rendered, "|")
	return Check{
		Claim: fmt.Sprintf("status in {%s}", strings.Join(rendered, ",")),
		Eval: func(_ *Context, obs *physical.Observation) *Mismatch {
			got, ok := obs.Int("status")
			if !ok {
				return &Mismatch{Expected: expected, Actual: "no status observed"}
			}
			for _, w := range want {
				if got == w {
					return nil
				}
			}
			return &Mismatch{Expected: expected, Actual: fmt.Sprintf("%d", got)}
		},
	}
}

// StatusNot checks the observed status differs from reject.
func StatusNot(reject int64) Check {
	return Check{
		Claim: fmt.Sprintf("status!=%d", reject),
		Eval: func(_ *Context, obs *physical.Observation) *Mismatch {
			got, ok := obs.Int("status")
			if !ok {
				return &Mismatch{Expected: fmt.Sprintf("not %d", reject), Actual: "no status observed"}
			}
			if got == reject {
				return &Mismatch{Expected: fmt.Sprintf("not %d", reject), Actual: fmt.Sprintf("%d", got)}
			}
			return nil
		},
	}
}

// CountGreaterThan checks the observed element count exceeds floor.
func CountGreaterThan(floor int64) Check {
	return Check{
		Claim: fmt.Sprintf("count>%d", floor),
		Eval: func(_ *Context, obs *physical.Observation) *Mismatch {
			got, ok := obs.Int("count")
			if !ok {
				return &Mismatch{Expected: fmt.Sprintf(">%d", floor), Actual: "no count observed"}
			}
			if got <= floor {
				return &Mismatch{Expected: fmt.Sprintf(">%d", floor), Actual: fmt.Sprintf("%d", got)}
			}
			return nil
		},
	}
}

// TextContains checks the observed value under key contains want.
// key is typically "title", "text", or "body".
func TextContains(key, want string) Check {
	return Check{
		Claim: fmt.Sprintf("%s contains %q", key, want),
		Eval: func(_ *Context, obs *physical.Observation) *Mismatch {
			got, ok := obs.String(key)
			if !ok {
				return &Mismatch{Expected: fmt.Sprintf("%s containing %q", key, want), Actual: fmt.Sprintf("no %s observed", key)}
			}
			if !strings.Contains(got, want) {
				return &Mismatch{Expected: fmt.Sprintf("%s containing %q", key, want), Actual: fmt.Sprintf("%q", got)}
			}
			return nil
		},
	}
}

// FlagIs checks a boolean observation value under key.
func FlagIs(key string, want bool) Check {
	return Check{
		Claim: fmt.Sprintf("%s==%t", key, want),
		Eval: func(_ *Context, obs *physical.Observation) *Mismatch {
			got, ok := obs.Bool(key)
			if !ok {
				return &Mismatch{Expected: fmt.Sprintf("%t", want), Actual: fmt.Sprintf("no %s observed", key)}
			}
			if got != want {
				return &Mismatch{Expected: fmt.Sprintf("%t", want), Actual: fmt.Sprintf("%t", got)}
			}
			return nil
		},
	}
}

// VisibleIs checks the observed element visibility.
func VisibleIs(want bool) Check {
	return FlagIs("visible", want)
}

// JSONFieldEquals checks a field of the observed JSON body.
func JSONFieldEquals(field string, want any) Check {
	return Check{
		Claim: fmt.Sprintf("json.%s==%v", field, want),
		Eval: func(_ *Context, obs *physical.Observation) *Mismatch {
			body, ok := obs.Map("json")
			if !ok {
				return &Mismatch{Expected: fmt.Sprintf("%v", want), Actual: "no json body observed"}
			}
			got, present := body[field]
			if !present {
				return &Mismatch{Expected: fmt.Sprintf("%v", want), Actual: fmt.Sprintf("field %q absent", field)}
			}
			if fmt.Sprintf("%v", got) != fmt.Sprintf("%v", want) {
				return &Mismatch{Expected: fmt.Sprintf("%v", want), Actual: fmt.Sprintf("%v", got)}
			}
			return nil
		},
	}
}

// JSONHasField checks a field exists in the observed JSON body.
func JSONHasField(field string) Check {
	return Check{
		Claim: fmt.Sprintf("json has %q", field),
		Eval: func(_ *Context, obs *physical.Observation) *Mismatch {
			body, ok := obs.Map("json")
			if !ok {
				return &Mismatch{Expected: fmt.Sprintf("field %q present", field), Actual: "no json body observed"}
			}
			if _, present := body[field]; !present {
				return &Mismatch{Expected: fmt.Sprintf("field %q present", field), Actual: "absent"}
			}
			return nil
		},
	}
}

// And conjoins checks into one predicate with a combined claim. It still
// counts as the atomic's single verification point: one predicate, one
// ledger entry.
func And(checks ...Check) Check {
	claims := make([]string, len(checks))
	for i, c := range checks {
		claims[i] = c.Claim
	}
	return Check{
		Claim: strings.Join(claims, " AND "),
		Eval: func(rc *Context, obs *physical.Observation) *Mismatch {
			for _, c := range checks {
				if m := c.Eval(rc, obs); m != nil {
					return m
				}
			}
			return nil
		},
	}
}

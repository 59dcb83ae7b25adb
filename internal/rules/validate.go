// internal/rules/validate.go
package rules

import (
	"github.com/solatis/changegate/internal/types"
)

/*
 * Validation orchestration.
 *
 * Feeds every concrete change through every rule and partitions the change
 * set into permitted and violating locations. Permission is a pure OR
 * across rules and across each rule's allowedChanges patterns: adding a
 * rule can only widen the permitted set.
 */

// Result partitions one diff run into permitted and violating changes.
// Changes holds the full diff in deterministic pre-order; Permitted and
// Violations preserve that order.
type Result struct {
	Changes    []types.Change
	Permitted  []types.Change
	Violations []types.Change
}

// Clean reports whether the validation found no violations.
func (r Result) Clean() bool {
	return len(r.Violations) == 0
}

// Validate diffs base against head and classifies every concrete change.
// A change is permitted iff at least one rule permits it; everything else
// is a violation.
func Validate(rules []types.Rule, base, head types.Value) Result {
	changes := Diff(base, head)
	res := Result{Changes: changes}

	for _, change := range changes {
		permitted := false
		for _, rule := range rules {
			if Permits(rule, change, head) {
				permitted = true
				break
			}
		}
		if permitted {
			res.Permitted = append(res.Permitted, change)
		} else {
			res.Violations = append(res.Violations, change)
		}
	}
	return res
}

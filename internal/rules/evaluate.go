// internal/rules/evaluate.go
package rules

import (
	"github.com/solatis/changegate/internal/types"
)

/*
 * Rule evaluation.
 *
 * Decides whether one rule permits one concrete change within the head
 * snapshot. Evaluation is a pure function of (rule, change, document);
 * wildcard correlation travels through an explicit Binding value, never
 * shared matching state.
 *
 * Evaluation flow:
 *   1. Wildcard-free match conditions gate the whole rule (independent of
 *      the change; empty binding)
 *   2. Each allowedChanges pattern is unified against the change path;
 *      non-unifying patterns are skipped
 *   3. On unification, wildcard-bearing match conditions and all when
 *      conditions are re-checked under the discovered binding, so they are
 *      enforced against the same array element / map key being changed
 *   4. First pattern passing all checks permits the change
 *
 * Binding prefix rule: a condition with fewer wildcards than the binding
 * consumes the positional prefix; a condition with more wildcards than the
 * binding cannot be correlated and evaluates false.
 */

// Applies reports whether the rule's wildcard-free match conditions all
// hold in doc. A rule that does not apply permits nothing in the document,
// regardless of the change.
func Applies(rule types.Rule, doc types.Value) bool {
	for _, cond := range rule.Match {
		if cond.Path.Wildcards() > 0 {
			continue
		}
		ok, err := EvaluateCondition(cond, doc, nil)
		if err != nil || !ok {
			return false
		}
	}
	return true
}

// Permits reports whether rule allows the given change within head.
func Permits(rule types.Rule, change types.Change, head types.Value) bool {
	if !Applies(rule, head) {
		return false
	}

	for _, pattern := range rule.AllowedChanges {
		binding, ok := Unify(pattern, change.Path)
		if !ok {
			continue
		}
		if !boundConditionsHold(rule, binding, head) {
			continue
		}
		return true
	}
	return false
}

// boundConditionsHold re-checks wildcard-bearing match conditions and all
// when conditions under the binding discovered from an allowedChanges
// pattern.
func boundConditionsHold(rule types.Rule, binding types.Binding, head types.Value) bool {
	for _, cond := range rule.Match {
		if cond.Path.Wildcards() == 0 {
			continue // already checked by Applies
		}
		if !conditionHoldsWith(cond, binding, head) {
			return false
		}
	}
	for _, cond := range rule.When {
		if !conditionHoldsWith(cond, binding, head) {
			return false
		}
	}
	return true
}

// conditionHoldsWith evaluates cond under the positional prefix of binding
// matching the condition's wildcard count.
func conditionHoldsWith(cond types.Condition, binding types.Binding, head types.Value) bool {
	n := cond.Path.Wildcards()
	if n > len(binding) {
		// More wildcards than the allowed-change pattern bound: the
		// condition cannot be correlated with this change.
		return false
	}
	ok, err := EvaluateCondition(cond, head, binding[:n])
	return err == nil && ok
}

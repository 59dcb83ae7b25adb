// internal/rules/unify.go
package rules

import (
	"strconv"

	"github.com/solatis/changegate/internal/types"
)

/*
 * Path pattern unification.
 *
 * Unify binds a policy pattern against one concrete changed location;
 * Instantiate projects a discovered binding onto another pattern in the
 * same rule. Together they make "the same array element" enforceable
 * across a rule's match/allowedChanges/when clauses.
 *
 * Key functions:
 *   - Unify: pattern x concrete path -> wildcard binding (or no match)
 *   - Instantiate: pattern x binding -> concrete path
 *
 * Inverse invariant: Unify(p, Instantiate(p, b)) always yields b. This is
 * a required correctness property, not a convenience; evaluate.go relies
 * on it when projecting bindings onto when-conditions.
 */

// Unify matches pattern against a concrete path position by position.
// A literal segment must equal the concrete segment in its authored form
// (sequence indices compare against the literal's text); a wildcard matches
// any single segment and captures it. Returns the accumulated binding and
// true only when lengths match and every position matches.
func Unify(pattern types.Pattern, path types.ConcretePath) (types.Binding, bool) {
	if len(pattern) != len(path) {
		return nil, false
	}

	binding := make(types.Binding, 0, pattern.Wildcards())
	for i, seg := range pattern {
		step := path[i]
		if seg.Wildcard {
			binding = append(binding, step)
			continue
		}
		if !literalMatches(seg, step) {
			return nil, false
		}
	}
	return binding, true
}

// Instantiate replaces the i-th wildcard in pattern with the i-th binding
// step. Returns ErrBindingArity when the binding length differs from the
// pattern's wildcard count; callers treat that as a programming defect,
// not a policy outcome.
func Instantiate(pattern types.Pattern, binding types.Binding) (types.ConcretePath, error) {
	if pattern.Wildcards() != len(binding) {
		return nil, types.ErrBindingArity
	}

	path := make(types.ConcretePath, 0, len(pattern))
	next := 0
	for _, seg := range pattern {
		if seg.Wildcard {
			path = append(path, binding[next])
			next++
			continue
		}
		path = append(path, types.KeyStep(seg.Key))
	}
	return path, nil
}

// literalMatches compares a literal pattern segment against one concrete
// step. Mapping keys compare as strings; sequence indices compare against
// the literal's numeric text form, whichever the pattern author used.
func literalMatches(seg types.PatternSegment, step types.Step) bool {
	if step.IsIndex {
		return seg.Key == strconv.Itoa(step.Index)
	}
	return seg.Key == step.Key
}

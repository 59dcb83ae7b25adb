// internal/rules/condition.go
package rules

import (
	"strconv"

	"github.com/solatis/changegate/internal/types"
)

/*
 * Condition evaluation.
 *
 * Checks a (possibly wildcard-bound) path pattern's value against the
 * condition's expected scalar within one document snapshot.
 *
 * Semantics: instantiate the pattern with the binding, resolve the concrete
 * path by literal traversal, then compare with strict type-and-value
 * equality. Resolution failure (missing key, out-of-range index, traversal
 * into a scalar) evaluates to false, never an error: conditions ask "does
 * this hold", not "must this path exist". A path resolving to a sequence or
 * mapping also evaluates false, as the expected value is always scalar.
 */

// EvaluateCondition reports whether the condition holds in doc under the
// given binding. The binding length must equal the condition pattern's
// wildcard count; a mismatch is an internal invariant breach surfaced as
// an error, distinct from the condition simply not holding.
func EvaluateCondition(cond types.Condition, doc types.Value, binding types.Binding) (bool, error) {
	path, err := Instantiate(cond.Path, binding)
	if err != nil {
		return false, err
	}

	resolved, ok := resolve(doc, path)
	if !ok {
		return false, nil
	}
	return resolved.Equal(cond.Value), nil
}

// resolve walks doc along a concrete path: mapping key lookup and sequence
// index lookup only. A key step whose text parses as an integer doubles as
// a sequence index, matching the literal index form pattern authors write.
func resolve(doc types.Value, path types.ConcretePath) (types.Value, bool) {
	cur := doc
	for _, st := range path {
		switch cur.Kind {
		case types.KindMapping:
			if st.IsIndex {
				return types.Value{}, false
			}
			v, ok := cur.Lookup(st.Key)
			if !ok {
				return types.Value{}, false
			}
			cur = v

		case types.KindSequence:
			idx := st.Index
			if !st.IsIndex {
				n, err := strconv.Atoi(st.Key)
				if err != nil {
					return types.Value{}, false
				}
				idx = n
			}
			v, ok := cur.At(idx)
			if !ok {
				return types.Value{}, false
			}
			cur = v

		default:
			// Scalar reached while path continues.
			return types.Value{}, false
		}
	}
	return cur, true
}

// internal/rules/diff.go
package rules

import (
	"github.com/solatis/changegate/internal/types"
)

/*
 * Structural differ over Value trees.
 *
 * Reduces two document snapshots to the minimal set of concrete changed
 * locations. Minimal-diff policy: a wholly added, removed or kind-changed
 * subtree is reported once at its root; the differ never descends into it.
 * Consequently no emitted path is a proper prefix of another.
 *
 * Ordering: deterministic pre-order. Mapping keys follow head's encounter
 * order (shared and head-only keys), then base-only keys in base order.
 * Sequence indices ascend. Diff is a pure function of its inputs and is
 * restartable.
 */

// Diff computes the ordered minimal change set between two snapshots.
// Diff(x, x) is empty for any tree x.
func Diff(base, head types.Value) []types.Change {
	var changes []types.Change
	diffValue(nil, base, head, &changes)
	return changes
}

// diffValue recurses jointly on base/head at the same path prefix.
func diffValue(path types.ConcretePath, base, head types.Value, out *[]types.Change) {
	if base.Kind != head.Kind {
		// Kind change: single change at the divergence root, no descent.
		emit(path, &base, &head, out)
		return
	}

	switch base.Kind {
	case types.KindMapping:
		diffMapping(path, base, head, out)
	case types.KindSequence:
		diffSequence(path, base, head, out)
	default:
		if !base.Equal(head) {
			emit(path, &base, &head, out)
		}
	}
}

func diffMapping(path types.ConcretePath, base, head types.Value, out *[]types.Change) {
	// Head's keys first, in head encounter order: recurse into shared keys,
	// report head-only keys as single additions at their root.
	for _, e := range head.Map {
		child := append(path, types.KeyStep(e.Key))
		if bv, ok := base.Lookup(e.Key); ok {
			diffValue(child, bv, e.Value, out)
			continue
		}
		nv := e.Value
		emit(child, nil, &nv, out)
	}

	// Base-only keys, in base encounter order: single removals.
	for _, e := range base.Map {
		if _, ok := head.Lookup(e.Key); ok {
			continue
		}
		ov := e.Value
		emit(append(path, types.KeyStep(e.Key)), &ov, nil, out)
	}
}

func diffSequence(path types.ConcretePath, base, head types.Value, out *[]types.Change) {
	shared := len(base.Seq)
	if len(head.Seq) < shared {
		shared = len(head.Seq)
	}

	for i := 0; i < shared; i++ {
		diffValue(append(path, types.IndexStep(i)), base.Seq[i], head.Seq[i], out)
	}

	for i := shared; i < len(head.Seq); i++ {
		nv := head.Seq[i]
		emit(append(path, types.IndexStep(i)), nil, &nv, out)
	}

	for i := shared; i < len(base.Seq); i++ {
		ov := base.Seq[i]
		emit(append(path, types.IndexStep(i)), &ov, nil, out)
	}
}

// emit appends one change with a defensive copy of the path; the recursion
// reuses the backing array across siblings.
func emit(path types.ConcretePath, old, new *types.Value, out *[]types.Change) {
	p := make(types.ConcretePath, len(path))
	copy(p, path)
	*out = append(*out, types.Change{Path: p, Old: old, New: new})
}

package types

/*
 * Domain types for policy evaluation.
 *
 * Provides Rule, Condition and Change structures consumed by internal/rules
 * for diffing and rule evaluation. These types are wire-format agnostic;
 * YAML-to-types conversion happens in internal/policy.
 *
 * Key types:
 *   - Condition: path pattern plus expected scalar value
 *   - Rule: match gate, allowed change locations, conditional gates
 *   - Change: one minimal location where two snapshots differ
 *   - FileStatus: whole-file change classification from the document source
 *
 * Wildcard positions are positionally comparable only within one rule
 * instance; bindings never correlate across rules.
 */

// Condition pairs a path pattern with an expected scalar value.
// The expected value is restricted to Null/Bool/Number/String at policy
// load time.
type Condition struct {
	Path  Pattern
	Value Value
}

// Rule is one policy unit: applicability conditions, permitted change
// locations, and conditional gates on those permissions. Name is optional
// and used only in reports and audit records.
type Rule struct {
	Name           string
	Match          []Condition
	AllowedChanges []Pattern
	When           []Condition
}

// Change is one minimal location where the base and head snapshots differ.
// Old is nil when the location is absent in base (addition), New is nil when
// absent in head (removal). Both nil never occurs; both set with equal values
// is never emitted.
type Change struct {
	Path ConcretePath
	Old  *Value
	New  *Value
}

// FileStatus classifies a changed file between two revisions.
type FileStatus int

const (
	FileAdded FileStatus = iota
	FileModified
	FileDeleted
)

// String returns the status name used in reports.
func (s FileStatus) String() string {
	switch s {
	case FileAdded:
		return "added"
	case FileModified:
		return "modified"
	case FileDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

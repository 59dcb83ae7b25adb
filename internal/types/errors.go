package types

import "errors"

// Sentinel errors for changegate operations.
var (
	// ErrInvalidPointer indicates malformed JSON Pointer syntax in a policy
	// path (empty segment, bad escape).
	ErrInvalidPointer = errors.New("invalid JSON pointer")

	// ErrPatternTooDeep indicates a path pattern exceeds MaxPatternDepth.
	ErrPatternTooDeep = errors.New("path pattern exceeds maximum depth")

	// ErrTooManyWildcards indicates a path pattern exceeds MaxPatternWildcards.
	ErrTooManyWildcards = errors.New("path pattern has too many wildcards")

	// ErrExpectedScalar indicates a condition value is a sequence or mapping.
	ErrExpectedScalar = errors.New("condition value must be a scalar")

	// ErrBindingArity indicates Instantiate was called with a binding whose
	// length differs from the pattern's wildcard count. This is an internal
	// invariant breach, never a policy verdict.
	ErrBindingArity = errors.New("binding length does not match pattern wildcard count")

	// ErrNoPolicy indicates a policy document with no rules list.
	ErrNoPolicy = errors.New("policy has no rules")

	// ErrMigrationsPending indicates the audit database schema is not
	// current; run "changegate migrate" first.
	ErrMigrationsPending = errors.New("audit database migrations pending")
)

// Package types provides domain models shared across changegate components.
//
// Zero-dependency design: types.go, paths.go, rules.go and errors.go use only
// the standard library so the core engine stays free of transport and storage
// concerns. ID utilities in ids.go import uuid but are isolated for selective
// inclusion.
package types

import (
	"strconv"
	"strings"
)

// Kind identifies the shape of a Value node.
// Closed set: every consumer switches exhaustively over these six kinds
// instead of probing runtime types.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
)

// String returns the lowercase kind name used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is one node of a parsed configuration document.
// Only the field selected by Kind is meaningful. Values are immutable once
// constructed; a snapshot (base or head) owns its tree exclusively and no
// consumer mutates it.
type Value struct {
	Kind Kind
	Bool bool
	Num  float64
	Str  string
	Seq  []Value
	Map  []MapEntry // ordered, keys unique
}

// MapEntry is one key/value pair of a Mapping.
// Slice-of-entries representation preserves document encounter order, which
// the differ relies on for deterministic output.
type MapEntry struct {
	Key   string
	Value Value
}

// Null returns the null Value.
func Null() Value {
	return Value{Kind: KindNull}
}

// Boolean returns a boolean Value.
func Boolean(b bool) Value {
	return Value{Kind: KindBool, Bool: b}
}

// Number returns a numeric Value. Integers and floats share one kind;
// 1 and 1.0 compare equal.
func Number(f float64) Value {
	return Value{Kind: KindNumber, Num: f}
}

// String returns a string Value.
func String(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// Sequence returns a sequence Value over the given elements.
func Sequence(elems ...Value) Value {
	return Value{Kind: KindSequence, Seq: elems}
}

// Mapping returns a mapping Value over the given entries, preserving order.
func Mapping(entries ...MapEntry) Value {
	return Value{Kind: KindMapping, Map: entries}
}

// Entry builds one mapping entry.
func Entry(key string, value Value) MapEntry {
	return MapEntry{Key: key, Value: value}
}

// IsScalar reports whether the value is Null, Bool, Number or String.
// Conditions may only carry scalar expected values.
func (v Value) IsScalar() bool {
	switch v.Kind {
	case KindNull, KindBool, KindNumber, KindString:
		return true
	default:
		return false
	}
}

// Lookup returns the value stored under key in a Mapping.
// Returns false for missing keys and for non-mapping receivers.
func (v Value) Lookup(key string) (Value, bool) {
	if v.Kind != KindMapping {
		return Value{}, false
	}
	for _, e := range v.Map {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// At returns the i-th element of a Sequence.
// Returns false for out-of-range indices and for non-sequence receivers.
func (v Value) At(i int) (Value, bool) {
	if v.Kind != KindSequence || i < 0 || i >= len(v.Seq) {
		return Value{}, false
	}
	return v.Seq[i], true
}

// Equal reports structural equality by type and value.
// No coercion: a Number never equals a String, Sequences compare element-wise
// in order, Mappings compare entry-wise in order (order is part of the
// document identity the differ preserves).
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindBool:
		return v.Bool == o.Bool
	case KindNumber:
		return v.Num == o.Num
	case KindString:
		return v.Str == o.Str
	case KindSequence:
		if len(v.Seq) != len(o.Seq) {
			return false
		}
		for i := range v.Seq {
			if !v.Seq[i].Equal(o.Seq[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if len(v.Map) != len(o.Map) {
			return false
		}
		for i := range v.Map {
			if v.Map[i].Key != o.Map[i].Key || !v.Map[i].Value.Equal(o.Map[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Render returns a compact JSON-style rendering for reports and logs.
func (v Value) Render() string {
	var b strings.Builder
	v.render(&b)
	return b.String()
}

func (v Value) render(b *strings.Builder) {
	switch v.Kind {
	case KindNull:
		b.WriteString("null")
	case KindBool:
		b.WriteString(strconv.FormatBool(v.Bool))
	case KindNumber:
		b.WriteString(strconv.FormatFloat(v.Num, 'f', -1, 64))
	case KindString:
		b.WriteString(strconv.Quote(v.Str))
	case KindSequence:
		b.WriteByte('[')
		for i, e := range v.Seq {
			if i > 0 {
				b.WriteByte(',')
			}
			e.render(b)
		}
		b.WriteByte(']')
	case KindMapping:
		b.WriteByte('{')
		for i, e := range v.Map {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(e.Key))
			b.WriteByte(':')
			e.Value.render(b)
		}
		b.WriteByte('}')
	}
}

// Resource limits enforced at policy load time to keep evaluation bounded.
const (
	// MaxPatternDepth caps path pattern length. 16 levels covers deeply
	// nested configuration documents without unbounded recursion.
	MaxPatternDepth = 16

	// MaxPatternWildcards caps wildcard segments per pattern. Unification is
	// linear regardless, but a pattern with more wildcards than this is
	// almost certainly an authoring mistake.
	MaxPatternWildcards = 4
)

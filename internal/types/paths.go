package types

import (
	"fmt"
	"strconv"
	"strings"
)

/*
 * Path model for policy patterns and concrete document locations.
 *
 * Patterns are policy-authored RFC 6901 JSON Pointers with one extension:
 * a bare "*" segment is a wildcard matching exactly one concrete key or
 * index. Concrete paths are produced by the differ and never contain
 * wildcards.
 *
 * Key types:
 *   - PatternSegment / Pattern: policy-authored pointer, may contain wildcards
 *   - Step / ConcretePath: concrete location inside one document snapshot
 *   - Binding: concrete segments captured by a pattern's wildcards, in order
 *
 * Literal index form: the differ records sequence positions as integer
 * steps, while pattern authors write them as literal text ("0"). Matching
 * compares the authored form against the concrete form, so "/a/0" unifies
 * with a sequence index 0 and with a mapping key "0" alike.
 */

// PatternSegment is one segment of a policy-authored path pattern.
// Either a literal key/index in its authored text form, or a wildcard.
type PatternSegment struct {
	Key      string // literal segment text (unescaped); unused for wildcards
	Wildcard bool
}

// Pattern is an ordered sequence of pattern segments.
type Pattern []PatternSegment

// Step is one concrete segment of a resolved document location:
// a mapping key or a sequence index.
type Step struct {
	Key     string // mapping key (mutually exclusive with Index)
	Index   int    // sequence index
	IsIndex bool   // disambiguates Index=0 from unset
}

// ConcretePath is an ordered sequence of concrete steps. The empty path
// addresses the document root.
type ConcretePath []Step

// Binding holds the concrete steps captured by a pattern's wildcards,
// in pattern order. Bindings correlate patterns within one rule; they are
// never shared across rules.
type Binding []Step

// KeyStep returns a mapping-key step.
func KeyStep(key string) Step {
	return Step{Key: key}
}

// IndexStep returns a sequence-index step.
func IndexStep(i int) Step {
	return Step{Index: i, IsIndex: true}
}

// ParsePattern parses an RFC 6901 pointer with the "*" wildcard extension.
// A missing leading "/" is tolerated for non-empty pointers ("kind" means
// "/kind", matching how policies are commonly written). Empty segments are
// rejected: "a//b" has no meaningful key at the empty position.
func ParsePattern(s string) (Pattern, error) {
	if s == "" {
		return Pattern{}, nil
	}
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}

	raw := strings.Split(s[1:], "/")
	if len(raw) > MaxPatternDepth {
		return nil, fmt.Errorf("%w: %q has %d segments", ErrPatternTooDeep, s, len(raw))
	}

	pattern := make(Pattern, 0, len(raw))
	wildcards := 0
	for _, seg := range raw {
		if seg == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", ErrInvalidPointer, s)
		}
		if seg == "*" {
			pattern = append(pattern, PatternSegment{Wildcard: true})
			wildcards++
			continue
		}
		key, err := unescapePointerSegment(seg)
		if err != nil {
			return nil, fmt.Errorf("%w: segment %q in %q", ErrInvalidPointer, seg, s)
		}
		pattern = append(pattern, PatternSegment{Key: key})
	}

	if wildcards > MaxPatternWildcards {
		return nil, fmt.Errorf("%w: %q has %d wildcards", ErrTooManyWildcards, s, wildcards)
	}

	return pattern, nil
}

// Wildcards returns the number of wildcard segments in the pattern.
func (p Pattern) Wildcards() int {
	n := 0
	for _, seg := range p {
		if seg.Wildcard {
			n++
		}
	}
	return n
}

// String renders the pattern back to pointer syntax with "*" wildcards.
func (p Pattern) String() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for _, seg := range p {
		b.WriteByte('/')
		if seg.Wildcard {
			b.WriteByte('*')
			continue
		}
		b.WriteString(escapePointerSegment(seg.Key))
	}
	return b.String()
}

// String renders the step in its pointer segment form.
func (s Step) String() string {
	if s.IsIndex {
		return strconv.Itoa(s.Index)
	}
	return escapePointerSegment(s.Key)
}

// Equal reports step identity. A key step "0" and an index step 0 are
// distinct: they address different node shapes.
func (s Step) Equal(o Step) bool {
	if s.IsIndex != o.IsIndex {
		return false
	}
	if s.IsIndex {
		return s.Index == o.Index
	}
	return s.Key == o.Key
}

// String renders the concrete path as an RFC 6901 pointer.
// The empty path renders as "" (the whole-document pointer).
func (c ConcretePath) String() string {
	if len(c) == 0 {
		return ""
	}
	var b strings.Builder
	for _, st := range c {
		b.WriteByte('/')
		b.WriteString(st.String())
	}
	return b.String()
}

// Equal reports step-wise path equality.
func (c ConcretePath) Equal(o ConcretePath) bool {
	if len(c) != len(o) {
		return false
	}
	for i := range c {
		if !c[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is a (not necessarily proper) prefix of c.
func (c ConcretePath) HasPrefix(prefix ConcretePath) bool {
	if len(prefix) > len(c) {
		return false
	}
	for i := range prefix {
		if !c[i].Equal(prefix[i]) {
			return false
		}
	}
	return true
}

// escapePointerSegment applies RFC 6901 escaping: "~" -> "~0", "/" -> "~1".
func escapePointerSegment(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}

// unescapePointerSegment reverses RFC 6901 escaping. A "~" not followed by
// '0' or '1' is invalid pointer syntax.
func unescapePointerSegment(s string) (string, error) {
	if !strings.ContainsRune(s, '~') {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '~' {
			b.WriteByte(s[i])
			continue
		}
		if i+1 >= len(s) {
			return "", fmt.Errorf("dangling escape")
		}
		switch s[i+1] {
		case '0':
			b.WriteByte('~')
		case '1':
			b.WriteByte('/')
		default:
			return "", fmt.Errorf("invalid escape ~%c", s[i+1])
		}
		i++
	}
	return b.String(), nil
}

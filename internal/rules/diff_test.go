package rules

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/solatis/changegate/internal/document"
	"github.com/solatis/changegate/internal/types"
)

func mustParse(t *testing.T, doc string) types.Value {
	t.Helper()
	v, err := document.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", doc, err)
	}
	return v
}

func changePaths(changes []types.Change) []string {
	paths := make([]string, len(changes))
	for i, c := range changes {
		paths[i] = c.Path.String()
	}
	return paths
}

func TestDiff_Normal(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		head     string
		expected []string
	}{
		{
			name:     "identical documents",
			base:     `{"a": 1, "b": [1, 2]}`,
			head:     `{"a": 1, "b": [1, 2]}`,
			expected: nil,
		},
		{
			name:     "scalar modified",
			base:     `{"spec": {"replicas": 3}}`,
			head:     `{"spec": {"replicas": 5}}`,
			expected: []string{"/spec/replicas"},
		},
		{
			name:     "key added",
			base:     `{"a": 1}`,
			head:     `{"a": 1, "b": 2}`,
			expected: []string{"/b"},
		},
		{
			name:     "key removed",
			base:     `{"a": 1, "b": 2}`,
			head:     `{"a": 1}`,
			expected: []string{"/b"},
		},
		{
			name:     "added subtree reported once at its root",
			base:     `{"a": 1}`,
			head:     `{"a": 1, "b": {"c": {"d": 2}}}`,
			expected: []string{"/b"},
		},
		{
			name:     "kind change reported once no descent",
			base:     `{"a": {"b": 1, "c": 2}}`,
			head:     `{"a": [1, 2, 3]}`,
			expected: []string{"/a"},
		},
		{
			name:     "sequence element modified",
			base:     `{"xs": [1, 2, 3]}`,
			head:     `{"xs": [1, 9, 3]}`,
			expected: []string{"/xs/1"},
		},
		{
			name:     "sequence grown",
			base:     `{"xs": [1]}`,
			head:     `{"xs": [1, 2, 3]}`,
			expected: []string{"/xs/1", "/xs/2"},
		},
		{
			name:     "sequence shrunk",
			base:     `{"xs": [1, 2, 3]}`,
			head:     `{"xs": [1]}`,
			expected: []string{"/xs/1", "/xs/2"},
		},
		{
			name:     "root kind change",
			base:     `[1]`,
			head:     `{"a": 1}`,
			expected: []string{""},
		},
		{
			name:     "integer and float forms are the same number",
			base:     `{"a": 1}`,
			head:     `{"a": 1.0}`,
			expected: nil,
		},
		{
			name:     "head order drives shared and added keys then base-only",
			base:     `{"a": 1, "z": 9, "m": 5}`,
			head:     `{"m": 6, "b": 2, "a": 1}`,
			expected: []string{"/m", "/b", "/z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changes := Diff(mustParse(t, tt.base), mustParse(t, tt.head))
			got := changePaths(changes)
			if len(got) != len(tt.expected) {
				t.Fatalf("Diff() paths = %v, expected %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("path %d = %q, expected %q", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestDiff_Sides(t *testing.T) {
	changes := Diff(
		mustParse(t, `{"a": 1, "b": 2}`),
		mustParse(t, `{"a": 3, "c": 4}`),
	)
	if len(changes) != 3 {
		t.Fatalf("Diff() = %v changes, expected 3", len(changes))
	}

	// /a modified: both sides present.
	if changes[0].Old == nil || changes[0].New == nil {
		t.Errorf("/a should carry both sides")
	}
	if !changes[0].Old.Equal(types.Number(1)) || !changes[0].New.Equal(types.Number(3)) {
		t.Errorf("/a sides = %v -> %v", changes[0].Old.Render(), changes[0].New.Render())
	}

	// /c added: no old side.
	if changes[1].Old != nil || changes[1].New == nil {
		t.Errorf("/c should be an addition")
	}

	// /b removed: no new side.
	if changes[2].Old == nil || changes[2].New != nil {
		t.Errorf("/b should be a removal")
	}
}

// genValue builds arbitrary Value trees up to 3 levels deep.
func genValue() gopter.Gen {
	scalar := gen.OneGenOf(
		gen.Const(types.Null()),
		gen.Bool().Map(types.Boolean),
		gen.IntRange(-5, 5).Map(func(n int) types.Value { return types.Number(float64(n)) }),
		gen.OneConstOf("a", "b", "c").Map(types.String),
	)

	node := func(child gopter.Gen) gopter.Gen {
		return gen.OneGenOf(
			scalar,
			gen.SliceOfN(2, child).Map(func(elems []types.Value) types.Value {
				return types.Sequence(elems...)
			}),
			gen.SliceOfN(2, child).Map(func(elems []types.Value) types.Value {
				entries := make([]types.MapEntry, len(elems))
				for i, e := range elems {
					entries[i] = types.Entry(string(rune('a'+i)), e)
				}
				return types.Mapping(entries...)
			}),
		)
	}

	return node(node(node(scalar)))
}

func TestDiff_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("diff of a tree with itself is empty", prop.ForAll(
		func(v types.Value) bool {
			return len(Diff(v, v)) == 0
		},
		genValue(),
	))

	properties.Property("no emitted path is a proper prefix of another", prop.ForAll(
		func(base, head types.Value) bool {
			changes := Diff(base, head)
			for i := range changes {
				for j := range changes {
					if i == j {
						continue
					}
					if len(changes[i].Path) < len(changes[j].Path) &&
						changes[j].Path.HasPrefix(changes[i].Path) {
						return false
					}
				}
			}
			return true
		},
		genValue(),
		genValue(),
	))

	properties.Property("every change disagrees between its sides", prop.ForAll(
		func(base, head types.Value) bool {
			for _, c := range Diff(base, head) {
				if c.Old == nil && c.New == nil {
					return false
				}
				if c.Old != nil && c.New != nil && c.Old.Equal(*c.New) {
					return false
				}
			}
			return true
		},
		genValue(),
		genValue(),
	))

	properties.TestingRun(t)
}

package rules

import (
	"testing"

	"github.com/solatis/changegate/internal/types"
)

func TestEvaluateCondition(t *testing.T) {
	doc := mustParse(t, `{
		"kind": "Deployment",
		"spec": {
			"replicas": 3,
			"paused": false,
			"sources": [
				{"repoURL": "https://a", "targetRevision": "v1"},
				{"repoURL": "https://b", "targetRevision": "v2"}
			]
		}
	}`)

	tests := []struct {
		name     string
		path     string
		value    types.Value
		binding  types.Binding
		expected bool
	}{
		{
			name:     "string equality",
			path:     "/kind",
			value:    types.String("Deployment"),
			expected: true,
		},
		{
			name:     "string inequality",
			path:     "/kind",
			value:    types.String("StatefulSet"),
			expected: false,
		},
		{
			name:     "number equality across forms",
			path:     "/spec/replicas",
			value:    types.Number(3),
			expected: true,
		},
		{
			name:     "no coercion number vs string",
			path:     "/spec/replicas",
			value:    types.String("3"),
			expected: false,
		},
		{
			name:     "bool false is a real value",
			path:     "/spec/paused",
			value:    types.Boolean(false),
			expected: true,
		},
		{
			name:     "missing key resolves to false",
			path:     "/spec/missing",
			value:    types.String("x"),
			expected: false,
		},
		{
			name:     "traversal into scalar resolves to false",
			path:     "/kind/deeper",
			value:    types.String("x"),
			expected: false,
		},
		{
			name:     "literal index into sequence",
			path:     "/spec/sources/1/repoURL",
			value:    types.String("https://b"),
			expected: true,
		},
		{
			name:     "out of range index resolves to false",
			path:     "/spec/sources/9/repoURL",
			value:    types.String("https://a"),
			expected: false,
		},
		{
			name:     "wildcard instantiated from binding",
			path:     "/spec/sources/*/repoURL",
			value:    types.String("https://a"),
			binding:  types.Binding{types.IndexStep(0)},
			expected: true,
		},
		{
			name:     "same condition other binding",
			path:     "/spec/sources/*/repoURL",
			value:    types.String("https://a"),
			binding:  types.Binding{types.IndexStep(1)},
			expected: false,
		},
		{
			name:     "path resolving to non-scalar is false",
			path:     "/spec/sources",
			value:    types.String("x"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := types.Condition{Path: mustPattern(t, tt.path), Value: tt.value}
			got, err := EvaluateCondition(cond, doc, tt.binding)
			if err != nil {
				t.Fatalf("EvaluateCondition() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("EvaluateCondition() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestApplies(t *testing.T) {
	doc := mustParse(t, `{"kind": "Deployment", "env": "prod"}`)

	rule := types.Rule{
		Match: []types.Condition{
			{Path: mustPattern(t, "/kind"), Value: types.String("Deployment")},
		},
		AllowedChanges: []types.Pattern{mustPattern(t, "/spec/replicas")},
	}
	if !Applies(rule, doc) {
		t.Error("rule with satisfied match should apply")
	}

	rule.Match = append(rule.Match, types.Condition{
		Path: mustPattern(t, "/env"), Value: types.String("staging"),
	})
	if Applies(rule, doc) {
		t.Error("rule with one failing match condition must not apply")
	}

	// Wildcard-bearing match conditions are deferred to unification and do
	// not gate applicability.
	deferred := types.Rule{
		Match: []types.Condition{
			{Path: mustPattern(t, "/sources/*/kind"), Value: types.String("git")},
		},
		AllowedChanges: []types.Pattern{mustPattern(t, "/sources/*/rev")},
	}
	if !Applies(deferred, doc) {
		t.Error("wildcard-only match must not gate applicability")
	}

	// Empty match applies to every document.
	if !Applies(types.Rule{AllowedChanges: deferred.AllowedChanges}, doc) {
		t.Error("rule without match conditions should apply everywhere")
	}
}

// Wildcard bindings must correlate allowedChanges with match and when
// conditions: permitting a change to element N requires the conditions to
// hold for element N itself, not for any element.
func TestPermits_BindingCorrelation(t *testing.T) {
	head := mustParse(t, `{
		"sources": [
			{"kind": "git", "rev": "v2"},
			{"kind": "helm", "rev": "v9"}
		]
	}`)

	rule := types.Rule{
		Match: []types.Condition{
			{Path: mustPattern(t, "/sources/*/kind"), Value: types.String("git")},
		},
		AllowedChanges: []types.Pattern{mustPattern(t, "/sources/*/rev")},
	}

	old := types.String("v1")
	gitChange := types.Change{
		Path: types.ConcretePath{types.KeyStep("sources"), types.IndexStep(0), types.KeyStep("rev")},
		Old:  &old, New: valuePtr(types.String("v2")),
	}
	helmChange := types.Change{
		Path: types.ConcretePath{types.KeyStep("sources"), types.IndexStep(1), types.KeyStep("rev")},
		Old:  valuePtr(types.String("v8")), New: valuePtr(types.String("v9")),
	}

	if !Permits(rule, gitChange, head) {
		t.Error("change under the git element should be permitted")
	}
	if Permits(rule, helmChange, head) {
		t.Error("change under the helm element must not be permitted")
	}
}

func TestPermits_WhenConditions(t *testing.T) {
	head := mustParse(t, `{"kind": "Deployment", "spec": {"replicas": 5, "frozen": true}}`)

	change := types.Change{
		Path: types.ConcretePath{types.KeyStep("spec"), types.KeyStep("replicas")},
		Old:  valuePtr(types.Number(3)), New: valuePtr(types.Number(5)),
	}

	rule := types.Rule{
		Match: []types.Condition{
			{Path: mustPattern(t, "/kind"), Value: types.String("Deployment")},
		},
		AllowedChanges: []types.Pattern{mustPattern(t, "/spec/replicas")},
		When: []types.Condition{
			{Path: mustPattern(t, "/spec/frozen"), Value: types.Boolean(false)},
		},
	}
	if Permits(rule, change, head) {
		t.Error("failing when condition must withhold permission")
	}

	rule.When[0].Value = types.Boolean(true)
	if !Permits(rule, change, head) {
		t.Error("satisfied when condition should grant permission")
	}
}

// A wildcard-bearing when condition is evaluated under the binding from
// the allowed-change pattern: the condition must hold for the element
// being changed, not for some other element.
func TestPermits_WildcardWhenCorrelation(t *testing.T) {
	head := mustParse(t, `{
		"a": [
			{"b": "new", "c": "x"},
			{"b": "new", "c": "y"}
		]
	}`)

	rule := types.Rule{
		AllowedChanges: []types.Pattern{mustPattern(t, "/a/*/b")},
		When: []types.Condition{
			{Path: mustPattern(t, "/a/*/c"), Value: types.String("x")},
		},
	}

	changeAt := func(i int) types.Change {
		return types.Change{
			Path: types.ConcretePath{types.KeyStep("a"), types.IndexStep(i), types.KeyStep("b")},
			Old:  valuePtr(types.String("old")), New: valuePtr(types.String("new")),
		}
	}

	if !Permits(rule, changeAt(0), head) {
		t.Error("change under the element satisfying when should be permitted")
	}
	if Permits(rule, changeAt(1), head) {
		t.Error("change under the other element must not be permitted")
	}
}

func TestPermits_NonUnifyingPattern(t *testing.T) {
	head := mustParse(t, `{"kind": "Deployment", "spec": {"image": "app:2"}}`)

	rule := types.Rule{
		AllowedChanges: []types.Pattern{mustPattern(t, "/spec/replicas")},
	}
	change := types.Change{
		Path: types.ConcretePath{types.KeyStep("spec"), types.KeyStep("image")},
		Old:  valuePtr(types.String("app:1")), New: valuePtr(types.String("app:2")),
	}

	if Permits(rule, change, head) {
		t.Error("change outside every allowed pattern must not be permitted")
	}
}

// A condition with more wildcards than the permitting pattern bound cannot
// be correlated and evaluates false.
func TestPermits_ExcessWildcardCondition(t *testing.T) {
	head := mustParse(t, `{"a": {"b": {"kind": "git"}}, "top": 1}`)

	rule := types.Rule{
		Match: []types.Condition{
			{Path: mustPattern(t, "/a/*/kind"), Value: types.String("git")},
		},
		AllowedChanges: []types.Pattern{mustPattern(t, "/top")},
	}
	change := types.Change{
		Path: types.ConcretePath{types.KeyStep("top")},
		Old:  valuePtr(types.Number(0)), New: valuePtr(types.Number(1)),
	}

	if Permits(rule, change, head) {
		t.Error("uncorrelatable wildcard condition must withhold permission")
	}
}

func valuePtr(v types.Value) *types.Value {
	return &v
}

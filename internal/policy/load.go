// Package policy loads and validates declarative change policies.
//
// A policy is a YAML document with a top-level rules list. Every path
// pattern is parsed and bounds-checked at load time so the validator
// operates on structurally sound rules only; a malformed policy is a
// fatal load error, never a silently skipped rule.
package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/solatis/changegate/internal/document"
	"github.com/solatis/changegate/internal/types"
)

// Raw wire shape of a policy file. Expected condition values stay as
// yaml nodes until decoded through the shared document decoder, so the
// policy and the documents it governs share one scalar model.
type policyFile struct {
	Rules []ruleSpec `yaml:"rules"`
}

type ruleSpec struct {
	Name           string          `yaml:"name"`
	Match          []conditionSpec `yaml:"match"`
	AllowedChanges []string        `yaml:"allowedChanges"`
	When           []conditionSpec `yaml:"when"`
}

type conditionSpec struct {
	Path  string    `yaml:"path"`
	Value yaml.Node `yaml:"value"`
}

// Load reads and compiles the policy file at path.
func Load(path string) ([]types.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy: %w", err)
	}
	rules, err := LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("policy %s: %w", path, err)
	}
	return rules, nil
}

// LoadBytes compiles a policy document. A policy with no rules is an
// error: it would classify every change as a violation, which is never
// what the author meant.
func LoadBytes(data []byte) ([]types.Rule, error) {
	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}
	if len(file.Rules) == 0 {
		return nil, types.ErrNoPolicy
	}

	rules := make([]types.Rule, 0, len(file.Rules))
	for i, spec := range file.Rules {
		rule, err := compileRule(spec)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, ruleName(spec), err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func ruleName(spec ruleSpec) string {
	if spec.Name == "" {
		return "unnamed"
	}
	return spec.Name
}

func compileRule(spec ruleSpec) (types.Rule, error) {
	rule := types.Rule{Name: spec.Name}

	for _, c := range spec.Match {
		cond, err := compileCondition(c)
		if err != nil {
			return types.Rule{}, fmt.Errorf("match %s: %w", c.Path, err)
		}
		rule.Match = append(rule.Match, cond)
	}

	if len(spec.AllowedChanges) == 0 {
		return types.Rule{}, fmt.Errorf("allowedChanges must not be empty")
	}
	for _, p := range spec.AllowedChanges {
		pattern, err := types.ParsePattern(p)
		if err != nil {
			return types.Rule{}, fmt.Errorf("allowedChanges %s: %w", p, err)
		}
		rule.AllowedChanges = append(rule.AllowedChanges, pattern)
	}

	for _, c := range spec.When {
		cond, err := compileCondition(c)
		if err != nil {
			return types.Rule{}, fmt.Errorf("when %s: %w", c.Path, err)
		}
		rule.When = append(rule.When, cond)
	}

	return rule, nil
}

func compileCondition(spec conditionSpec) (types.Condition, error) {
	pattern, err := types.ParsePattern(spec.Path)
	if err != nil {
		return types.Condition{}, err
	}

	if spec.Value.Kind == 0 {
		return types.Condition{}, fmt.Errorf("missing expected value")
	}
	value, err := document.DecodeNode(&spec.Value)
	if err != nil {
		return types.Condition{}, err
	}
	if !value.IsScalar() {
		return types.Condition{}, fmt.Errorf("%w, got %s", types.ErrExpectedScalar, value.Kind)
	}

	return types.Condition{Path: pattern, Value: value}, nil
}

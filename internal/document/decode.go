// Package document parses JSON and YAML text into Value trees.
//
// One decoder serves both formats: YAML is a superset of JSON, and
// yaml.v3's node API preserves mapping key order, which the differ's
// deterministic ordering depends on. Only the first document of a
// multi-document stream is decoded.
package document

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/solatis/changegate/internal/types"
)

// Parse decodes one JSON or YAML document into a Value tree.
// An empty input decodes to Null.
func Parse(data []byte) (types.Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return types.Value{}, fmt.Errorf("parse document: %w", err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return types.Null(), nil
	}
	return DecodeNode(root.Content[0])
}

// DecodeNode converts one yaml.v3 node into a Value.
// Exported for the policy loader, which decodes expected condition values
// from raw nodes embedded in the policy document.
func DecodeNode(node *yaml.Node) (types.Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return types.Null(), nil
		}
		return DecodeNode(node.Content[0])

	case yaml.AliasNode:
		return DecodeNode(node.Alias)

	case yaml.ScalarNode:
		return decodeScalar(node)

	case yaml.SequenceNode:
		elems := make([]types.Value, 0, len(node.Content))
		for _, c := range node.Content {
			v, err := DecodeNode(c)
			if err != nil {
				return types.Value{}, err
			}
			elems = append(elems, v)
		}
		return types.Sequence(elems...), nil

	case yaml.MappingNode:
		entries := make([]types.MapEntry, 0, len(node.Content)/2)
		seen := make(map[string]bool, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			if keyNode.Kind != yaml.ScalarNode {
				return types.Value{}, fmt.Errorf("line %d: non-scalar mapping key", keyNode.Line)
			}
			key := keyNode.Value
			if seen[key] {
				return types.Value{}, fmt.Errorf("line %d: duplicate mapping key %q", keyNode.Line, key)
			}
			seen[key] = true

			v, err := DecodeNode(node.Content[i+1])
			if err != nil {
				return types.Value{}, err
			}
			entries = append(entries, types.Entry(key, v))
		}
		return types.Mapping(entries...), nil

	default:
		return types.Value{}, fmt.Errorf("line %d: unsupported node kind %d", node.Line, node.Kind)
	}
}

// decodeScalar maps a YAML scalar to the closed Value kinds by resolved tag.
// Unrecognized tags (timestamps, binary) fall back to their string form.
func decodeScalar(node *yaml.Node) (types.Value, error) {
	switch node.Tag {
	case "!!null":
		return types.Null(), nil

	case "!!bool":
		b, err := strconv.ParseBool(strings.ToLower(node.Value))
		if err != nil {
			return types.Value{}, fmt.Errorf("line %d: invalid bool %q", node.Line, node.Value)
		}
		return types.Boolean(b), nil

	case "!!int":
		// Base 0 accepts decimal, hex (0x) and octal (0o) forms.
		if n, err := strconv.ParseInt(node.Value, 0, 64); err == nil {
			return types.Number(float64(n)), nil
		}
		if n, err := strconv.ParseUint(node.Value, 0, 64); err == nil {
			return types.Number(float64(n)), nil
		}
		return types.Value{}, fmt.Errorf("line %d: invalid integer %q", node.Line, node.Value)

	case "!!float":
		f, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return types.Value{}, fmt.Errorf("line %d: invalid float %q", node.Line, node.Value)
		}
		return types.Number(f), nil

	default:
		return types.String(node.Value), nil
	}
}

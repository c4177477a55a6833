// SPDX-License-Identifier: AGPL-3.0-or-later
package pkgspec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
	"gopkg.in/yaml.v3"
)

// tomlToNode converts a TOML document into a YAML mapping node, keeping the
// order in which keys and tables appear in the source.
func tomlToNode(data []byte) (*yaml.Node, error) {
	// The decoder catches what the raw parser does not: duplicate keys,
	// redefined tables, invalid numbers.
	var check map[string]any
	if err := toml.Unmarshal(data, &check); err != nil {
		return nil, err
	}

	root := newMapping()
	current := root

	var p unstable.Parser
	p.Reset(data)
	for p.NextExpression() {
		expr := p.Expression()
		switch expr.Kind {
		case unstable.Table:
			table, err := descend(root, keyParts(expr.Key()))
			if err != nil {
				return nil, err
			}
			current = table
		case unstable.ArrayTable:
			parts := keyParts(expr.Key())
			parent, err := descend(root, parts[:len(parts)-1])
			if err != nil {
				return nil, err
			}
			last := parts[len(parts)-1]
			seq := mappingValue(parent, last)
			if seq == nil {
				seq = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
				setValue(parent, last, seq)
			}
			if seq.Kind != yaml.SequenceNode {
				return nil, fmt.Errorf("key %s is not an array of tables", strings.Join(parts, "."))
			}
			item := newMapping()
			seq.Content = append(seq.Content, item)
			current = item
		case unstable.KeyValue:
			if err := assign(current, expr); err != nil {
				return nil, err
			}
		}
	}
	if err := p.Error(); err != nil {
		return nil, err
	}
	return root, nil
}

// assign stores a key/value expression, creating tables for dotted keys.
func assign(table *yaml.Node, kv *unstable.Node) error {
	parts := keyParts(kv.Key())
	parent, err := descend(table, parts[:len(parts)-1])
	if err != nil {
		return err
	}
	value, err := tomlValue(kv.Value())
	if err != nil {
		return fmt.Errorf("%s: %w", strings.Join(parts, "."), err)
	}
	setValue(parent, parts[len(parts)-1], value)
	return nil
}

// descend walks a dotted key path from table, creating missing tables. An
// array of tables along the way resolves to its last element.
func descend(table *yaml.Node, parts []string) (*yaml.Node, error) {
	for i, part := range parts {
		next := mappingValue(table, part)
		if next == nil {
			next = newMapping()
			setValue(table, part, next)
		}
		if next.Kind == yaml.SequenceNode && len(next.Content) > 0 {
			next = next.Content[len(next.Content)-1]
		}
		if next.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("key %s is not a table", strings.Join(parts[:i+1], "."))
		}
		table = next
	}
	return table, nil
}

func tomlValue(v *unstable.Node) (*yaml.Node, error) {
	switch v.Kind {
	case unstable.String:
		return scalar("!!str", string(v.Data)), nil
	case unstable.Bool:
		return scalar("!!bool", string(v.Data)), nil
	case unstable.Integer:
		n, err := strconv.ParseInt(string(v.Data), 0, 64)
		if err != nil {
			return nil, err
		}
		return scalar("!!int", strconv.FormatInt(n, 10)), nil
	case unstable.Float:
		return scalar("!!float", tomlFloat(string(v.Data))), nil
	case unstable.LocalDate, unstable.LocalTime, unstable.LocalDateTime, unstable.DateTime:
		return scalar("!!str", string(v.Data)), nil
	case unstable.Array:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		it := v.Children()
		for it.Next() {
			item, err := tomlValue(it.Node())
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, item)
		}
		return seq, nil
	case unstable.InlineTable:
		table := newMapping()
		it := v.Children()
		for it.Next() {
			if err := assign(table, it.Node()); err != nil {
				return nil, err
			}
		}
		return table, nil
	default:
		return nil, fmt.Errorf("unsupported value kind %s", v.Kind)
	}
}

// tomlFloat rewrites TOML float spellings into YAML ones.
func tomlFloat(raw string) string {
	raw = strings.ReplaceAll(raw, "_", "")
	switch raw {
	case "inf", "+inf":
		return ".inf"
	case "-inf":
		return "-.inf"
	case "nan", "+nan", "-nan":
		return ".nan"
	}
	return raw
}

func keyParts(it unstable.Iterator) []string {
	var parts []string
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}

func newMapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func setValue(table *yaml.Node, key string, value *yaml.Node) {
	table.Content = append(table.Content, scalar("!!str", key), value)
}

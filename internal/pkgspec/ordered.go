// SPDX-License-Identifier: AGPL-3.0-or-later
package pkgspec

import (
	"fmt"
	"iter"

	"gopkg.in/yaml.v3"
)

// Ordered is a string-keyed mapping that remembers declaration order.
// Iteration order is the order keys appeared in the spec file.
type Ordered[V any] struct {
	keys   []string
	values map[string]V
}

// Set adds or replaces key. New keys are appended to the iteration order.
func (m *Ordered[V]) Set(key string, value V) {
	if m.values == nil {
		m.values = make(map[string]V)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m Ordered[V]) Get(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Len returns the number of entries.
func (m Ordered[V]) Len() int { return len(m.keys) }

// Keys returns the keys in declaration order.
func (m Ordered[V]) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// All iterates over the entries in declaration order.
func (m Ordered[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// UnmarshalYAML decodes a mapping node, keeping key order and rejecting duplicates.
func (m *Ordered[V]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected a table, got %s", kindName(node))
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if _, dup := m.values[key]; dup {
			return fmt.Errorf("duplicate key %q", key)
		}
		var v V
		if err := node.Content[i+1].Decode(&v); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		m.Set(key, v)
	}
	return nil
}

// stringSet decodes a sequence of strings as a set: duplicates collapse and
// first-seen order is kept.
type stringSet []string

func (s *stringSet) UnmarshalYAML(node *yaml.Node) error {
	var items []string
	if err := node.Decode(&items); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		*s = append(*s, item)
	}
	return nil
}

func kindName(node *yaml.Node) string {
	switch node.Kind {
	case yaml.MappingNode:
		return "table"
	case yaml.SequenceNode:
		return "array"
	case yaml.ScalarNode:
		return "value " + node.Value
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}

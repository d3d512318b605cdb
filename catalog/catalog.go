// Package catalog implements reading and writing of YAML locale catalogs.
//
// A catalog is a Rails-style YAML document with exactly one top-level key
// (the language code) whose value is a nested mapping of string keys to
// text leaves:
//
//	en:
//	  greeting: Hello
//	  nav:
//	    home: Home
//	    about: About
//
// Key order is preserved on round-trip so translated files stay diffable
// against their sources. Empty and null leaves are normalized to "".
package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Mapping
// ---------------------------------------------------------------------------

// Mapping is an ordered mapping of string keys to values. A value is either
// a leaf string or a nested *Mapping.
type Mapping struct {
	keys   []string
	values map[string]any
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{values: make(map[string]any)}
}

// Set stores a value under key, appending the key if it is new.
// Accepted value types are string and *Mapping.
func (m *Mapping) Set(key string, value any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *Mapping) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *Mapping) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Len returns the number of keys.
func (m *Mapping) Len() int {
	return len(m.keys)
}

// Clone returns a deep copy of the mapping.
func (m *Mapping) Clone() *Mapping {
	out := NewMapping()
	for _, key := range m.keys {
		switch v := m.values[key].(type) {
		case *Mapping:
			out.Set(key, v.Clone())
		case string:
			out.Set(key, v)
		default:
			out.Set(key, fmt.Sprintf("%v", v))
		}
	}
	return out
}

// Equal reports whether two mappings hold the same keys in the same order
// with equal values.
func (m *Mapping) Equal(other *Mapping) bool {
	if m == nil || other == nil {
		return m == other
	}
	if len(m.keys) != len(other.keys) {
		return false
	}
	for i, key := range m.keys {
		if other.keys[i] != key {
			return false
		}
		av := m.values[key]
		bv := other.values[key]
		switch a := av.(type) {
		case *Mapping:
			b, ok := bv.(*Mapping)
			if !ok || !a.Equal(b) {
				return false
			}
		default:
			if av != bv {
				return false
			}
		}
	}
	return true
}

// MapLeaves returns a new mapping with every leaf passed through fn.
// The receiver is not modified.
func (m *Mapping) MapLeaves(fn func(string) string) *Mapping {
	out := NewMapping()
	for _, key := range m.keys {
		switch v := m.values[key].(type) {
		case *Mapping:
			out.Set(key, v.MapLeaves(fn))
		case string:
			out.Set(key, fn(v))
		}
	}
	return out
}

// Walk visits every leaf in document order. The path is the dot-joined key
// path (e.g. "nav.home").
func (m *Mapping) Walk(fn func(path, value string)) {
	m.walk("", fn)
}

func (m *Mapping) walk(prefix string, fn func(path, value string)) {
	for _, key := range m.keys {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		switch v := m.values[key].(type) {
		case *Mapping:
			v.walk(path, fn)
		case string:
			fn(path, v)
		}
	}
}

// Flatten returns all leaves as a path → value map.
func (m *Mapping) Flatten() map[string]string {
	out := make(map[string]string)
	m.Walk(func(path, value string) {
		out[path] = value
	})
	return out
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

// Catalog is one language's set of translated strings: the top-level
// language code plus the nested mapping below it.
type Catalog struct {
	// Lang is the top-level language code (e.g. "en").
	Lang string
	// Root is the nested mapping of translation keys.
	Root *Mapping
}

// ParseFile reads and parses a YAML catalog file.
func ParseFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cat, nil
}

// Parse parses YAML data into a Catalog. The document must have exactly one
// top-level key whose value is a mapping.
func Parse(data []byte) (*Catalog, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty catalog document")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("catalog root must be a mapping, got kind %d", root.Kind)
	}
	if len(root.Content) != 2 {
		return nil, fmt.Errorf("catalog must have exactly one top-level language key, got %d", len(root.Content)/2)
	}

	keyNode := root.Content[0]
	valNode := root.Content[1]
	if keyNode.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("top-level language key must be a scalar")
	}
	if valNode.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("value under language key %q must be a mapping", keyNode.Value)
	}

	return &Catalog{
		Lang: keyNode.Value,
		Root: mappingFromNode(valNode),
	}, nil
}

// mappingFromNode converts a yaml mapping node into a Mapping.
// Scalar values become leaves (null → ""), nested mappings recurse.
// Sequences and other node kinds are flattened to their scalar rendering;
// catalogs are not expected to contain them.
func mappingFromNode(node *yaml.Node) *Mapping {
	m := NewMapping()
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]

		switch valNode.Kind {
		case yaml.MappingNode:
			m.Set(keyNode.Value, mappingFromNode(valNode))
		case yaml.ScalarNode:
			if valNode.Tag == "!!null" {
				m.Set(keyNode.Value, "")
				continue
			}
			m.Set(keyNode.Value, valNode.Value)
		default:
			m.Set(keyNode.Value, "")
		}
	}
	return m
}

// Marshal serialises the catalog back to YAML, preserving key order.
func (c *Catalog) Marshal() ([]byte, error) {
	root := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
		Content: []*yaml.Node{
			scalarNode(c.Lang),
			nodeFromMapping(c.Root),
		},
	}
	doc := &yaml.Node{
		Kind:    yaml.DocumentNode,
		Content: []*yaml.Node{root},
	}
	return yaml.Marshal(doc)
}

func scalarNode(value string) *yaml.Node {
	n := &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!str",
		Value: value,
	}
	if value == "" {
		n.Style = yaml.DoubleQuotedStyle
	}
	return n
}

func nodeFromMapping(m *Mapping) *yaml.Node {
	node := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}
	for _, key := range m.Keys() {
		v, _ := m.Get(key)
		node.Content = append(node.Content, scalarNode(key))
		switch val := v.(type) {
		case *Mapping:
			node.Content = append(node.Content, nodeFromMapping(val))
		case string:
			node.Content = append(node.Content, scalarNode(val))
		default:
			node.Content = append(node.Content, scalarNode(fmt.Sprintf("%v", val)))
		}
	}
	return node
}

// WriteFile serialises the catalog and writes it to path (mode 0644).
func (c *Catalog) WriteFile(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return fmt.Errorf("marshaling catalog: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

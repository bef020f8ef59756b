package configdoc

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// EntityTag marks a YAML mapping holding an Entity:
//
//	!entity
//	value: Vendor\Factory
//	attributes: {class: Vendor\Handler}
const EntityTag = "!entity"

// YAML encodes documents with gopkg.in/yaml.v3.
type YAML struct{}

// Decode parses a single YAML document. An empty input decodes to an empty
// mapping.
func (YAML) Decode(src []byte) (Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(src, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 {
		return &Mapping{}, nil
	}
	return fromYAML(&root)
}

func fromYAML(n *yaml.Node) (Node, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return &Mapping{}, nil
		}
		return fromYAML(n.Content[0])

	case yaml.AliasNode:
		return fromYAML(n.Alias)

	case yaml.SequenceNode:
		seq := &Sequence{}
		for _, c := range n.Content {
			item, err := fromYAML(c)
			if err != nil {
				return nil, err
			}
			seq.Items = append(seq.Items, item)
		}
		return seq, nil

	case yaml.MappingNode:
		m := &Mapping{}
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := fromYAML(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.Entries = append(m.Entries, &Entry{Key: n.Content[i].Value, Value: v})
		}
		if n.Tag == EntityTag {
			return entityFromMapping(m, n.Line)
		}
		return m, nil

	case yaml.ScalarNode:
		if isLocalTag(n.Tag) {
			return &Scalar{Value: n.Value, Tag: n.Tag}, nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return &Scalar{Value: v}, nil
	}
	return nil, fmt.Errorf("line %d: unsupported yaml node kind %d", n.Line, n.Kind)
}

func entityFromMapping(m *Mapping, line int) (Node, error) {
	e := &Entity{}
	for _, entry := range m.Entries {
		switch entry.Key {
		case "value":
			e.Value = entry.Value
		case "attributes":
			e.Attributes = entry.Value
		default:
			return nil, fmt.Errorf("line %d: unexpected key %q in %s", line, entry.Key, EntityTag)
		}
	}
	return e, nil
}

// Encode writes doc in block style with two-space indentation.
func (YAML) Encode(doc Node) ([]byte, error) {
	n, err := toYAML(doc)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toYAML(doc Node) (*yaml.Node, error) {
	switch d := doc.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil

	case *Scalar:
		if d.Tag != "" {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: d.Tag, Value: fmt.Sprint(d.Value)}, nil
		}
		var n yaml.Node
		if err := n.Encode(d.Value); err != nil {
			return nil, err
		}
		return &n, nil

	case *Sequence:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range d.Items {
			c, err := toYAML(item)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, c)
		}
		return n, nil

	case *Mapping:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range d.Entries {
			v, err := toYAML(e.Value)
			if err != nil {
				return nil, err
			}
			k := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key}
			n.Content = append(n.Content, k, v)
		}
		return n, nil

	case *Entity:
		m := &Mapping{Entries: []*Entry{{Key: "value", Value: d.Value}}}
		if d.Attributes != nil {
			m.Entries = append(m.Entries, &Entry{Key: "attributes", Value: d.Attributes})
		}
		n, err := toYAML(m)
		if err != nil {
			return nil, err
		}
		n.Tag = EntityTag
		return n, nil
	}
	return nil, fmt.Errorf("unsupported node %T", doc)
}

// isLocalTag reports a "!name" tag, as opposed to core "!!" tags.
func isLocalTag(tag string) bool {
	return strings.HasPrefix(tag, "!") && !strings.HasPrefix(tag, "!!")
}

package configdoc

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
)

// TOML encodes documents with github.com/BurntSushi/toml. TOML has no tagged
// values, so Entity nodes never come out of Decode and are rejected by
// Encode. Tables are re-emitted with sorted keys.
type TOML struct{}

// Decode parses a TOML document into a Mapping.
func (TOML) Decode(src []byte) (Node, error) {
	var data map[string]any
	if _, err := toml.Decode(string(src), &data); err != nil {
		return nil, err
	}
	return fromTOML(data), nil
}

func fromTOML(v any) Node {
	switch v := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := &Mapping{}
		for _, k := range keys {
			m.Entries = append(m.Entries, &Entry{Key: k, Value: fromTOML(v[k])})
		}
		return m
	case []map[string]any:
		seq := &Sequence{}
		for _, item := range v {
			seq.Items = append(seq.Items, fromTOML(item))
		}
		return seq
	case []any:
		seq := &Sequence{}
		for _, item := range v {
			seq.Items = append(seq.Items, fromTOML(item))
		}
		return seq
	default:
		return &Scalar{Value: v}
	}
}

// Encode writes doc, which must be a Mapping, as a TOML document.
func (TOML) Encode(doc Node) ([]byte, error) {
	if _, ok := doc.(*Mapping); !ok {
		return nil, fmt.Errorf("toml document root must be a table, got %T", doc)
	}
	v, err := toTOML(doc)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toTOML(n Node) (any, error) {
	switch n := n.(type) {
	case *Scalar:
		return n.Value, nil
	case *Mapping:
		m := make(map[string]any, len(n.Entries))
		for _, e := range n.Entries {
			v, err := toTOML(e.Value)
			if err != nil {
				return nil, err
			}
			m[e.Key] = v
		}
		return m, nil
	case *Sequence:
		items := make([]any, 0, len(n.Items))
		tables := true
		for _, item := range n.Items {
			v, err := toTOML(item)
			if err != nil {
				return nil, err
			}
			if _, ok := v.(map[string]any); !ok {
				tables = false
			}
			items = append(items, v)
		}
		if tables && len(items) > 0 {
			out := make([]map[string]any, len(items))
			for i, v := range items {
				out[i] = v.(map[string]any)
			}
			return out, nil
		}
		return items, nil
	}
	return nil, fmt.Errorf("toml cannot hold %T", n)
}

// Package configdoc rewrites class references held in structured
// configuration documents (YAML and TOML service definitions).
//
// A document is decoded into a small tagged tree (Scalar, Sequence, Mapping
// and Entity), walked by Rewriter and encoded back in block style.
package configdoc

// Node is one value of a decoded document.
type Node interface {
	node()
}

// Scalar is a leaf value. Value holds the decoded Go value (string, int64,
// float64, bool, time.Time or nil). Tag keeps a YAML local tag such as
// "!env" so it survives the round trip.
type Scalar struct {
	Value any
	Tag   string
}

// Sequence is an ordered list.
type Sequence struct {
	Items []Node
}

// Entry is one key/value pair of a Mapping.
type Entry struct {
	Key   string
	Value Node
}

// Mapping keeps its entries in document order.
type Mapping struct {
	Entries []*Entry
}

// Entity is a tagged compound value: a primary payload with an attribute
// collection, e.g. a service factory with its arguments.
type Entity struct {
	Value      Node
	Attributes Node
}

func (*Scalar) node()   {}
func (*Sequence) node() {}
func (*Mapping) node()  {}
func (*Entity) node()   {}

// Get returns the value stored under key.
func (m *Mapping) Get(key string) (Node, bool) {
	for _, e := range m.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// String returns the value of a string scalar.
func String(n Node) (string, bool) {
	s, ok := n.(*Scalar)
	if !ok {
		return "", false
	}
	v, ok := s.Value.(string)
	return v, ok
}

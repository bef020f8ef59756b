package configdoc

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"nsprefix/internal/errors"
	"nsprefix/internal/policy"
)

// DefaultTypeKeys are the mapping keys whose string value names a class.
var DefaultTypeKeys = []string{"type", "class"}

// DefaultSigil starts a service or type reference such as "@Foo\Bar::baz".
const DefaultSigil = "@"

// Rewriter relocates class references inside documents. It is safe for
// concurrent use.
type Rewriter struct {
	policy   *policy.Policy
	typeKeys map[string]bool
	sigil    string
	ref      *regexp.Regexp
}

// Result describes one rewritten document.
type Result struct {
	Path      string
	Original  []byte
	Rewritten []byte
	Changed   bool
}

// NewRewriter creates a Rewriter. Empty typeKeys or sigil select the
// defaults.
func NewRewriter(pol *policy.Policy, typeKeys []string, sigil string) *Rewriter {
	if len(typeKeys) == 0 {
		typeKeys = DefaultTypeKeys
	}
	if sigil == "" {
		sigil = DefaultSigil
	}
	keys := make(map[string]bool, len(typeKeys))
	for _, k := range typeKeys {
		keys[k] = true
	}
	return &Rewriter{
		policy:   pol,
		typeKeys: keys,
		sigil:    sigil,
		ref:      regexp.MustCompile(`^` + regexp.QuoteMeta(sigil) + `([^:\s]+)((?s:.*))$`),
	}
}

// Rewrite walks n in place and reports whether anything changed.
func (r *Rewriter) Rewrite(n Node) bool {
	switch n := n.(type) {
	case *Mapping:
		changed := false
		for _, e := range n.Entries {
			if key, ok := r.reference(e.Key); ok {
				e.Key = key
				changed = true
			}
			if r.typeKeys[e.Key] {
				if s, ok := e.Value.(*Scalar); ok {
					if v, ok := s.Value.(string); ok {
						if name, ok := r.typeName(v); ok {
							s.Value = name
							changed = true
						}
						continue
					}
				}
			}
			if r.Rewrite(e.Value) {
				changed = true
			}
		}
		return changed

	case *Sequence:
		changed := false
		for _, item := range n.Items {
			if r.Rewrite(item) {
				changed = true
			}
		}
		return changed

	case *Entity:
		a := r.Rewrite(n.Value)
		b := r.Rewrite(n.Attributes)
		return a || b

	case *Scalar:
		v, ok := n.Value.(string)
		if !ok {
			return false
		}
		if ref, ok := r.reference(v); ok {
			n.Value = ref
			return true
		}
	}
	return false
}

// typeName relocates the value of a type key when it names a dependency
// class. The value is always taken as absolute.
func (r *Rewriter) typeName(v string) (string, bool) {
	name := strings.TrimLeft(v, `\`)
	if !r.policy.Member(name) {
		return "", false
	}
	return r.policy.Prefixed(name), true
}

// reference relocates a sigil reference, keeping everything after the name.
func (r *Rewriter) reference(v string) (string, bool) {
	m := r.ref.FindStringSubmatch(v)
	if m == nil {
		return "", false
	}
	name, ok := r.typeName(m[1])
	if !ok {
		return "", false
	}
	return r.sigil + name + m[2], true
}

// RewriteBytes decodes src with codec, rewrites it and encodes it again.
// When nothing was relocated src is returned as is.
func (r *Rewriter) RewriteBytes(codec Codec, src []byte) ([]byte, bool, error) {
	doc, err := codec.Decode(src)
	if err != nil {
		return nil, false, err
	}
	if !r.Rewrite(doc) {
		return src, false, nil
	}
	out, err := codec.Encode(doc)
	if err != nil {
		return nil, false, err
	}
	return out, !bytes.Equal(src, out), nil
}

// RewriteFile reads and rewrites a document without writing it back. The
// codec is chosen by file extension.
func (r *Rewriter) RewriteFile(path string) (*Result, error) {
	codec, ok := ForPath(path)
	if !ok {
		return nil, errors.New(errors.DecodeError, fmt.Sprintf("no codec for %s", filepath.Ext(path)), nil).
			WithDetails(map[string]string{"path": path})
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out, changed, err := r.RewriteBytes(codec, src)
	if err != nil {
		return nil, errors.New(errors.DecodeError, fmt.Sprintf("document %s cannot be decoded", path), err).
			WithDetails(map[string]string{"path": path})
	}
	return &Result{Path: path, Original: src, Rewritten: out, Changed: changed}, nil
}

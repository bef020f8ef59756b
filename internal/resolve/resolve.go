// Package resolve turns the names written in PHP source into fully-qualified
// names using the enclosing namespace and the active imports.
package resolve

import "strings"

// Separator is the namespace separator.
const Separator = `\`

// DefaultBuiltins are the type words that never name a class.
var DefaultBuiltins = []string{
	"parent", "self", "static",
	"string", "int", "float", "bool", "array", "callable", "iterable",
	"void", "mixed", "object", "null", "false", "true", "never",
}

// Builtins is a case-insensitive set of built-in type names.
type Builtins map[string]bool

// NewBuiltins builds a set from names.
func NewBuiltins(names ...string) Builtins {
	b := make(Builtins, len(names))
	for _, n := range names {
		b[strings.ToLower(n)] = true
	}
	return b
}

// Contains reports whether name is a built-in type.
func (b Builtins) Contains(name string) bool {
	return b[strings.ToLower(name)]
}

// ImportTable maps lower-cased aliases to fully-qualified names. It always
// holds the empty alias.
type ImportTable map[string]string

// NewImportTable returns a table holding only the identity entry.
func NewImportTable() ImportTable {
	return ImportTable{"": ""}
}

// Resolver tracks the namespace and imports of one file.
type Resolver struct {
	namespace string
	imports   ImportTable
	builtins  Builtins
}

// New creates a resolver in the global namespace. A nil builtins set uses
// DefaultBuiltins.
func New(builtins Builtins) *Resolver {
	if builtins == nil {
		builtins = NewBuiltins(DefaultBuiltins...)
	}
	return &Resolver{imports: NewImportTable(), builtins: builtins}
}

// Namespace returns the current namespace without a leading separator.
func (r *Resolver) Namespace() string { return r.namespace }

// SetNamespace enters namespace ns. The import table is kept.
func (r *Resolver) SetNamespace(ns string) {
	r.namespace = strings.TrimLeft(ns, Separator)
}

// Import merges aliases into the table. Keys are lower-cased.
func (r *Resolver) Import(aliases map[string]string) {
	for alias, target := range aliases {
		r.imports[strings.ToLower(alias)] = target
	}
}

// Imports returns the live import table.
func (r *Resolver) Imports() ImportTable { return r.imports }

// IsBuiltin reports whether name is a built-in type word.
func (r *Resolver) IsBuiltin(name string) bool {
	return r.builtins.Contains(name)
}

// Resolve returns the fully-qualified form of name with exactly one leading
// separator. Built-in type words come back unchanged.
func (r *Resolver) Resolve(name string) string {
	if r.builtins.Contains(name) {
		return name
	}
	if strings.HasPrefix(name, Separator) {
		return name
	}

	segment, rest := name, ""
	if i := strings.Index(name, Separator); i >= 0 {
		segment, rest = name[:i], name[i:]
	}

	var full string
	if target, ok := r.imports[strings.ToLower(segment)]; ok {
		full = target + rest
	} else {
		full = r.namespace + Separator + name
	}
	return Separator + strings.TrimLeft(full, Separator)
}

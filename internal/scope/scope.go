// Package scope tracks brace depth and the type and function bodies that
// enclose the rewriter's cursor.
package scope

// Kind is the kind of a tracked scope.
type Kind uint8

const (
	Type Kind = iota
	Function
)

func (k Kind) String() string {
	if k == Type {
		return "type"
	}
	return "function"
}

type entry struct {
	kind  Kind
	name  string
	depth int
}

// Tracker is a brace-depth counter plus a stack of declared scopes. A
// declaration seen at depth d registers its entry at d+1; the entry is
// pending until the body's opening brace brings the depth to d+1 and is
// popped by the brace that closes that body.
type Tracker struct {
	depth int
	stack []entry
}

// New returns a tracker at depth zero.
func New() *Tracker {
	return &Tracker{}
}

// Depth returns the current brace depth.
func (t *Tracker) Depth() int { return t.depth }

// Open records an opening brace.
func (t *Tracker) Open() { t.depth++ }

// Close records a closing brace. Headers still pending inside the closing
// block are discarded and the entry whose body ends here is popped.
func (t *Tracker) Close() {
	t.dropAbove(t.depth)
	if n := len(t.stack); n > 0 && t.stack[n-1].depth == t.depth {
		t.stack = t.stack[:n-1]
	}
	if t.depth > 0 {
		t.depth--
	}
}

// Terminate records a statement terminator; a header that ended without a
// body (abstract or interface methods) stops being pending.
func (t *Tracker) Terminate() {
	t.dropAbove(t.depth)
}

// DeclareType registers a class, interface, trait or enum header. Anonymous
// classes use an empty name.
func (t *Tracker) DeclareType(name string) {
	t.stack = append(t.stack, entry{kind: Type, name: name, depth: t.depth + 1})
}

// DeclareFunction registers a function, method or closure header.
func (t *Tracker) DeclareFunction(name string) {
	t.stack = append(t.stack, entry{kind: Function, name: name, depth: t.depth + 1})
}

// CurrentType returns the innermost type body enclosing the cursor.
func (t *Tracker) CurrentType() (string, bool) {
	return t.current(Type)
}

// CurrentFunction returns the innermost function body enclosing the cursor.
func (t *Tracker) CurrentFunction() (string, bool) {
	return t.current(Function)
}

// InFunction reports whether the cursor is inside a function body or its
// header.
func (t *Tracker) InFunction() bool {
	for _, e := range t.stack {
		if e.kind == Function {
			return true
		}
	}
	return false
}

// PendingFunction reports whether the innermost function entry is a header
// whose body has not been opened yet.
func (t *Tracker) PendingFunction() bool {
	for i := len(t.stack) - 1; i >= 0; i-- {
		if t.stack[i].kind == Function {
			return t.stack[i].depth == t.depth+1
		}
	}
	return false
}

func (t *Tracker) current(kind Kind) (string, bool) {
	for i := len(t.stack) - 1; i >= 0; i-- {
		e := t.stack[i]
		if e.kind == kind && e.depth <= t.depth {
			return e.name, true
		}
	}
	return "", false
}

func (t *Tracker) dropAbove(depth int) {
	n := len(t.stack)
	for n > 0 && t.stack[n-1].depth > depth {
		n--
	}
	t.stack = t.stack[:n]
}

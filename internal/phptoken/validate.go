//go:build cgo

package phptoken

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/php"
)

// Validator checks PHP source with the tree-sitter PHP grammar. The lexer
// only catches lexical damage; the grammar also rejects malformed
// statements.
type Validator struct {
	parser *sitter.Parser
}

// NewValidator creates a validator. A Validator is not safe for concurrent
// use; create one per worker.
func NewValidator() *Validator {
	p := sitter.NewParser()
	p.SetLanguage(php.GetLanguage())
	return &Validator{parser: p}
}

// IsAvailable reports whether grammar validation is compiled in.
func IsAvailable() bool {
	return true
}

// Validate returns a *SyntaxError describing the first error node in src.
func (v *Validator) Validate(ctx context.Context, src []byte) error {
	if v == nil {
		return nil
	}
	tree, err := v.parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil
	}
	node := firstError(root)
	if node == nil {
		node = root
	}
	msg := fmt.Sprintf("unexpected '%s'", snippet(node.Content(src)))
	if node.IsMissing() {
		msg = fmt.Sprintf("missing '%s'", node.Type())
	}
	return &SyntaxError{Line: int(node.StartPoint().Row) + 1, Msg: msg}
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		if found := firstError(child); found != nil {
			return found
		}
	}
	return nil
}

func snippet(s string) string {
	const max = 20
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			s = s[:i]
			break
		}
	}
	if len(s) > max {
		return s[:max]
	}
	return s
}

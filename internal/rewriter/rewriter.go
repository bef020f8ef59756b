// Package rewriter relocates the class references of PHP source under a
// vendor prefix.
//
// A file is rewritten in two passes over one token stream. The first pass
// tracks namespace, imports and scopes and replaces every recognised name
// with a synthesized token carrying its fully-qualified form. The second
// pass asks the policy about each synthesized token and sets its final
// text.
package rewriter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"nsprefix/internal/errors"
	"nsprefix/internal/phptoken"
	"nsprefix/internal/policy"
	"nsprefix/internal/resolve"
	"nsprefix/internal/scope"
	"nsprefix/internal/tokenstream"
)

// Validator performs a full syntax check before rewriting.
type Validator interface {
	Validate(ctx context.Context, src []byte) error
}

// Options configures a Rewriter. Values are not modified after New.
type Options struct {
	Policy *policy.Policy

	// Builtins overrides resolve.DefaultBuiltins.
	Builtins resolve.Builtins

	// RewriteComments also relocates class names written in comments.
	RewriteComments bool

	// Validator is optional.
	Validator Validator
}

// Rewriter rewrites PHP files. It keeps no per-file state but its
// Validator may not be safe for concurrent use.
type Rewriter struct {
	opts Options
}

// Result describes one rewritten file.
type Result struct {
	Path      string
	Original  []byte
	Rewritten []byte
	Changed   bool
}

// New creates a Rewriter.
func New(opts Options) *Rewriter {
	if opts.Builtins == nil {
		opts.Builtins = resolve.NewBuiltins(resolve.DefaultBuiltins...)
	}
	if opts.Policy == nil {
		opts.Policy = policy.New("", "", nil, nil, nil)
	}
	return &Rewriter{opts: opts}
}

// Policy returns the policy the rewriter applies.
func (r *Rewriter) Policy() *policy.Policy { return r.opts.Policy }

// WithPolicy returns a rewriter sharing everything but the policy.
func (r *Rewriter) WithPolicy(p *policy.Policy) *Rewriter {
	opts := r.opts
	opts.Policy = p
	return &Rewriter{opts: opts}
}

// Rewrite returns the rewritten source. A *phptoken.SyntaxError is returned
// when src is not well-formed.
func (r *Rewriter) Rewrite(ctx context.Context, src []byte) ([]byte, error) {
	tokens, err := phptoken.Tokenize(string(src))
	if err != nil {
		return nil, err
	}
	if r.opts.Validator != nil {
		if err := r.opts.Validator.Validate(ctx, src); err != nil {
			return nil, err
		}
	}

	p := newPass(&r.opts, tokens)
	p.annotate()
	p.apply()
	return []byte(p.s.String()), nil
}

// RewriteFile reads and rewrites path without writing it back. Syntax
// errors are wrapped with the path; I/O errors are returned unchanged.
func (r *Rewriter) RewriteFile(ctx context.Context, path string) (*Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out, err := r.Rewrite(ctx, src)
	if err != nil {
		return nil, errors.New(errors.SyntaxError, fmt.Sprintf("file %s cannot be parsed", path), err).
			WithDetails(map[string]string{"path": path})
	}
	return &Result{
		Path:      path,
		Original:  src,
		Rewritten: out,
		Changed:   !bytes.Equal(src, out),
	}, nil
}

// pass holds the state of one file.
type pass struct {
	opts     *Options
	s        *tokenstream.Stream
	resolver *resolve.Resolver
	scope    *scope.Tracker
}

func newPass(opts *Options, tokens []phptoken.Token) *pass {
	return &pass{
		opts:     opts,
		s:        tokenstream.New(tokens, phptoken.KindWhitespace),
		resolver: resolve.New(opts.Builtins),
		scope:    scope.New(),
	}
}

// apply turns the synthesized tokens into their final text.
func (p *pass) apply() {
	pol := p.opts.Policy
	p.s.Reset()
	for {
		tok, ok := p.s.Next()
		if !ok {
			break
		}
		switch tok.Kind {
		case phptoken.KindImport:
			if p.keepImport(tok) {
				continue
			}
			p.s.DropCurrent()
			p.dropLineTerminator()

		case phptoken.KindNamespaceName:
			if ns, ok := pol.PrefixNamespace(tok.Text); ok {
				p.s.ReplaceCurrentText(ns)
			}

		case phptoken.KindTypeReference:
			p.s.ReplaceCurrentText(p.referenceText(tok))
		}
	}
}

// keepImport reports whether an import statement survives: it does when
// one of its targets is reserved.
func (p *pass) keepImport(tok phptoken.Token) bool {
	if tok.Meta == nil || len(tok.Meta.Imports) == 0 {
		return true
	}
	for _, target := range tok.Meta.Imports {
		if p.opts.Policy.Reserved(target) {
			return true
		}
	}
	return false
}

// dropLineTerminator removes one line break after a dropped statement.
func (p *pass) dropLineTerminator() {
	next, ok := p.s.Peek(1)
	if !ok || next.Kind != phptoken.KindWhitespace {
		return
	}
	var text string
	switch {
	case strings.HasPrefix(next.Text, "\r\n"):
		text = next.Text[2:]
	case strings.HasPrefix(next.Text, "\n"):
		text = next.Text[1:]
	default:
		return
	}
	p.s.Next()
	if text == "" {
		p.s.DropCurrent()
		return
	}
	p.s.ReplaceCurrentText(text)
}

// referenceText is the final text of a type reference: its absolute form,
// relocated when the policy says so. References to reserved names keep
// their text; their namespace and imports are left in place so the written
// form still resolves.
func (p *pass) referenceText(tok phptoken.Token) string {
	pol := p.opts.Policy
	full := strings.TrimLeft(tok.Meta.FullName, resolve.Separator)
	if full == "" || pol.Reserved(full) {
		return tok.Text
	}
	text := resolve.Separator + full
	if pol.ShouldPrefix(full) {
		text = pol.Prefixed(full)
	}
	return escape(text, tok.Text)
}

// escape doubles separators when the original text used doubled ones.
func escape(text, original string) string {
	if strings.Contains(original, `\\`) {
		return strings.ReplaceAll(text, `\`, `\\`)
	}
	return text
}

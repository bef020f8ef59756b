package rewriter

import (
	"strings"

	"nsprefix/internal/phptoken"
	"nsprefix/internal/resolve"
	"nsprefix/internal/strscan"
	"nsprefix/internal/tokenstream"
)

// annotate walks the stream once, replacing recognised names with
// synthesized tokens.
func (p *pass) annotate() {
	s := p.s
	sc := p.scope
	for {
		tok, ok := s.Next()
		if !ok {
			return
		}
		switch tok.Kind {
		case phptoken.KindOpenBrace, phptoken.KindCurlyOpen, phptoken.KindDollarOpenCurly:
			sc.Open()

		case phptoken.KindCloseBrace:
			sc.Close()

		case phptoken.KindSemicolon:
			sc.Terminate()

		case phptoken.KindClass, phptoken.KindInterface, phptoken.KindTrait:
			sc.DeclareType(p.declaredName())

		case phptoken.KindFunction:
			s.NextAll(phptoken.KindWhitespace)
			s.NextWhere(tokenstream.Texts("&"))
			sc.DeclareFunction(s.NextText(phptoken.KindString))

		case phptoken.KindDeclare:
			p.skipParens()

		case phptoken.KindNamespace:
			p.namespace()

		case phptoken.KindUse:
			if sc.InFunction() {
				continue
			}
			if _, inType := sc.CurrentType(); inType {
				p.typeList(true)
			} else {
				p.imports()
			}

		case phptoken.KindExtends, phptoken.KindImplements, phptoken.KindInsteadof:
			p.typeList(true)

		case phptoken.KindNew, phptoken.KindInstanceof:
			p.typeList(false)

		case phptoken.KindString, phptoken.KindNsSeparator:
			if p.isEnumDeclaration(tok) {
				sc.DeclareType(p.declaredName())
				continue
			}
			p.bareName(tok)

		case phptoken.KindColon:
			if s.IsPrev(phptoken.KindCloseParen) && (sc.PendingFunction() || p.arrowHeader()) {
				p.returnType()
			}

		case phptoken.KindComment, phptoken.KindDocComment:
			if p.opts.RewriteComments {
				p.comment(tok)
			}

		case phptoken.KindConstantString, phptoken.KindEncapsed:
			p.stringLiteral(tok)
		}
	}
}

// declaredName consumes the name after a type keyword and returns its
// fully-qualified form, or "" for an anonymous class.
func (p *pass) declaredName() string {
	p.s.NextAll(phptoken.KindWhitespace)
	name := p.s.JoinAll(phptoken.KindString, phptoken.KindNsSeparator)
	if name == "" {
		return ""
	}
	return p.resolver.Resolve(name)
}

func (p *pass) isEnumDeclaration(tok phptoken.Token) bool {
	if !strings.EqualFold(tok.Text, "enum") {
		return false
	}
	next, ok := p.s.Peek(1)
	return ok && next.Kind == phptoken.KindWhitespace && p.s.IsNext(phptoken.KindString) &&
		!p.s.IsPrev(phptoken.KindObjectOperator, phptoken.KindDoubleColon)
}

// skipParens consumes a parenthesized group following the cursor.
func (p *pass) skipParens() {
	if _, ok := p.s.Next(phptoken.KindOpenParen); !ok {
		return
	}
	for depth := 1; depth > 0; {
		tok, ok := p.s.Next()
		if !ok {
			return
		}
		switch tok.Kind {
		case phptoken.KindOpenParen:
			depth++
		case phptoken.KindCloseParen:
			depth--
		}
	}
}

// namespace handles a namespace declaration and the namespace-relative
// name form "namespace\Foo".
func (p *pass) namespace() {
	s := p.s
	begin := s.Position()
	if next, ok := s.Peek(1); ok && next.Kind == phptoken.KindNsSeparator {
		rel := s.JoinAll(phptoken.KindNsSeparator, phptoken.KindString)
		if p.typeFollows() {
			line, _ := s.CurrentLine()
			full := resolve.Separator + strings.TrimLeft(p.resolver.Namespace()+rel, resolve.Separator)
			s.ReplaceFrom(begin, []phptoken.Token{p.typeRefResolved("namespace"+rel, line, full)})
		}
		return
	}

	if !s.IsNext(phptoken.KindString, phptoken.KindNsSeparator) {
		// "namespace {" opens the global namespace
		p.resolver.SetNamespace("")
		return
	}
	s.NextAll(phptoken.KindWhitespace)
	start := s.Position() + 1
	name := s.JoinAll(phptoken.KindString, phptoken.KindNsSeparator)
	line, _ := s.CurrentLine()
	s.ApplyEdit(tokenstream.Edit{
		Consumed: s.Position() - start + 1,
		Tokens:   []phptoken.Token{{Kind: phptoken.KindNamespaceName, Text: name, Line: line}},
	})
	p.resolver.SetNamespace(name)
}

// imports replaces a file-scope use statement with one import token and
// merges its aliases into the resolver. Function and constant imports are
// left alone.
func (p *pass) imports() {
	s := p.s
	begin := s.Position()
	line, _ := s.CurrentLine()
	if s.IsNext(phptoken.KindFunction, phptoken.KindConst) {
		p.finishStatement()
		return
	}

	aliases := map[string]string{}
	for {
		name := strings.TrimLeft(s.JoinAll(phptoken.KindString, phptoken.KindNsSeparator), resolve.Separator)
		if name == "" {
			break
		}
		if _, group := s.Next(phptoken.KindOpenBrace); group {
			p.groupImports(name, aliases)
			s.Next(phptoken.KindCloseBrace)
		} else {
			aliases[strings.ToLower(p.alias(name))] = name
		}
		if _, more := s.Next(phptoken.KindComma); !more {
			break
		}
	}
	p.finishStatement()

	tok := phptoken.Token{
		Kind: phptoken.KindImport,
		Text: s.JoinRange(begin, s.Position()+1),
		Line: line,
		Meta: &phptoken.Meta{Imports: aliases},
	}
	s.ReplaceFrom(begin, []phptoken.Token{tok})
	p.resolver.Import(aliases)
}

// groupImports parses the members of "use Prefix\{A, B as C}".
func (p *pass) groupImports(prefix string, aliases map[string]string) {
	s := p.s
	for {
		if _, skip := s.Next(phptoken.KindFunction, phptoken.KindConst); skip {
			s.JoinAll(phptoken.KindString, phptoken.KindNsSeparator)
			if _, ok := s.Next(phptoken.KindAs); ok {
				s.Next(phptoken.KindString)
			}
		} else {
			suffix := s.JoinAll(phptoken.KindString, phptoken.KindNsSeparator)
			if suffix == "" {
				return
			}
			aliases[strings.ToLower(p.alias(suffix))] = prefix + suffix
		}
		if _, more := s.Next(phptoken.KindComma); !more {
			return
		}
	}
}

// alias consumes an optional "as Alias" clause; without one the alias is
// the last segment of name.
func (p *pass) alias(name string) string {
	if _, ok := p.s.Next(phptoken.KindAs); ok {
		if a := p.s.NextText(phptoken.KindString); a != "" {
			return a
		}
	}
	if i := strings.LastIndex(name, resolve.Separator); i >= 0 {
		return name[i+1:]
	}
	return name
}

// finishStatement consumes the rest of the statement including its
// terminator.
func (p *pass) finishStatement() {
	p.s.JoinUntil(phptoken.KindSemicolon, phptoken.KindCloseTag)
	p.s.Next(phptoken.KindSemicolon)
}

// typeList replaces the names following extends, implements, insteadof,
// new, instanceof and trait use. With more set, comma-separated names are
// replaced too.
func (p *pass) typeList(more bool) {
	for p.s.IsNext(phptoken.KindString, phptoken.KindNsSeparator) {
		p.replaceName()
		if !more {
			return
		}
		if _, ok := p.s.Next(phptoken.KindComma); !ok {
			return
		}
	}
}

// replaceName consumes the name after the cursor and replaces it with a
// type reference.
func (p *pass) replaceName() {
	s := p.s
	s.NextAll(phptoken.KindWhitespace)
	begin := s.Position() + 1
	name := s.JoinAll(phptoken.KindString, phptoken.KindNsSeparator)
	if name == "" {
		return
	}
	line, _ := s.CurrentLine()
	s.ApplyEdit(tokenstream.Edit{
		Consumed: s.Position() - begin + 1,
		Tokens:   []phptoken.Token{p.typeRef(name, line)},
	})
}

// bareName replaces a name used as a type: one followed by "::", a
// parameter variable or a variadic marker.
func (p *pass) bareName(tok phptoken.Token) {
	s := p.s
	if s.IsPrev(phptoken.KindObjectOperator, phptoken.KindDoubleColon) {
		return
	}
	begin := s.Position()
	name := tok.Text + s.JoinAll(phptoken.KindString, phptoken.KindNsSeparator)
	if !p.typeFollows() {
		return
	}
	line, _ := s.CurrentLine()
	s.ReplaceFrom(begin, []phptoken.Token{p.typeRef(name, line)})
}

// typeFollows reports whether the tokens after the cursor make the name at
// the cursor a type.
func (p *pass) typeFollows() bool {
	s := p.s
	if s.IsNext(phptoken.KindDoubleColon, phptoken.KindVariable, phptoken.KindEllipsis) {
		return true
	}
	if p.unionFollows() {
		return true
	}
	// by-reference parameter "Foo &$x"; outside a header "&" is bitwise and
	if !p.scope.PendingFunction() {
		return false
	}
	pos := s.Position()
	defer s.Seek(pos)
	if _, ok := s.NextWhere(tokenstream.Texts("&")); !ok {
		return false
	}
	return s.IsNext(phptoken.KindVariable, phptoken.KindEllipsis)
}

// unionFollows reports whether the name at the cursor is a member of a
// union type ending in a variable, as in "A|B $x" or "catch (A | B $e)".
func (p *pass) unionFollows() bool {
	s := p.s
	pos := s.Position()
	defer s.Seek(pos)
	for {
		if _, ok := s.NextWhere(tokenstream.Texts("|")); !ok {
			return false
		}
		if s.JoinAll(phptoken.KindString, phptoken.KindNsSeparator) == "" {
			return false
		}
		if s.IsNext(phptoken.KindVariable, phptoken.KindEllipsis) {
			return true
		}
	}
}

// arrowHeader reports whether the ")" before the cursor closes the parameter
// list of an arrow function.
func (p *pass) arrowHeader() bool {
	toks := p.s.Tokens()
	depth := 0
	i := p.s.Position() - 1
	for ; i >= 0; i-- {
		switch toks[i].Kind {
		case phptoken.KindCloseParen:
			depth++
		case phptoken.KindOpenParen:
			depth--
		}
		if depth == 0 && toks[i].Kind == phptoken.KindOpenParen {
			break
		}
	}
	for i--; i >= 0; i-- {
		switch {
		case toks[i].Kind == phptoken.KindWhitespace, toks[i].Text == "&":
			continue
		case toks[i].Kind == phptoken.KindKeyword:
			return strings.EqualFold(toks[i].Text, "fn")
		default:
			return false
		}
	}
	return false
}

// returnType replaces the types after the colon of a function header, each
// member of a union included.
func (p *pass) returnType() {
	s := p.s
	for {
		s.Next(phptoken.KindQuestion)
		s.NextWhere(tokenstream.Texts("static"))
		if s.IsNext(phptoken.KindString, phptoken.KindNsSeparator) {
			p.replaceName()
		}
		if _, ok := s.NextWhere(tokenstream.Texts("|")); !ok {
			return
		}
	}
}

// stringLiteral splits a literal around the embedded names that look like
// known classes.
func (p *pass) stringLiteral(tok phptoken.Token) {
	var (
		out   []phptoken.Token
		lit   strings.Builder
		found bool
	)
	flush := func() {
		if lit.Len() > 0 {
			out = append(out, phptoken.Token{Kind: tok.Kind, Text: lit.String(), Line: tok.Line})
			lit.Reset()
		}
	}
	for _, sub := range strscan.Scan(tok.Kind, tok.Text) {
		if sub.Kind == strscan.TypeName {
			name := strings.TrimLeft(strings.ReplaceAll(sub.Text, `\\`, `\`), resolve.Separator)
			if p.resolver.IsBuiltin(name) || p.opts.Policy.Known(name) {
				flush()
				out = append(out, p.typeRefResolved(sub.Text, tok.Line, name))
				found = true
				continue
			}
		}
		lit.WriteString(sub.Text)
	}
	flush()
	if found {
		p.s.Replace(p.s.Position(), 1, out)
	}
}

// typeRef builds a type reference for a name written in code.
func (p *pass) typeRef(name string, line int) phptoken.Token {
	return p.typeRefResolved(name, line, p.resolver.Resolve(name))
}

func (p *pass) typeRefResolved(text string, line int, full string) phptoken.Token {
	kind := phptoken.KindTypeReference
	if p.resolver.IsBuiltin(full) {
		kind = phptoken.KindScalarTypeReference
	}
	return phptoken.Token{Kind: kind, Text: text, Line: line, Meta: &phptoken.Meta{FullName: full}}
}

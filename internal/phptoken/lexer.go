package phptoken

import (
	"fmt"
	"strings"
)

// SyntaxError reports input the lexer cannot split into tokens.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error, %s on line %d", e.Msg, e.Line)
}

// Tokenize splits src into tokens. It fails on unterminated strings,
// comments and heredocs and on unbalanced braces or parentheses.
func Tokenize(src string) ([]Token, error) {
	l := &lexer{src: src, line: 1}
	if err := l.run(); err != nil {
		return nil, err
	}
	if err := checkBalance(l.tokens); err != nil {
		return nil, err
	}
	return l.tokens, nil
}

type lexer struct {
	src    string
	pos    int
	line   int
	tokens []Token
	halted bool
}

func (l *lexer) emit(kind Kind, text string) {
	l.tokens = append(l.tokens, Token{Kind: kind, Text: text, Line: l.line})
	l.line += strings.Count(text, "\n")
	l.pos += len(text)
}

func (l *lexer) fail(format string, args ...any) error {
	return &SyntaxError{Line: l.line, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) rest() string { return l.src[l.pos:] }

func (l *lexer) peek(offset int) byte {
	if l.pos+offset < len(l.src) {
		return l.src[l.pos+offset]
	}
	return 0
}

func (l *lexer) run() error {
	for l.pos < len(l.src) {
		open, html := findOpenTag(l.rest())
		if html > 0 {
			l.emit(KindInlineHTML, l.rest()[:html])
		}
		if open == "" {
			return nil
		}
		if open == "<?=" {
			l.emit(KindOpenTagWithEcho, open)
		} else {
			l.emit(KindOpenTag, open)
		}
		done, err := l.lexCode(false)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	return nil
}

// findOpenTag returns the open tag text (with the single whitespace
// character that belongs to it) and the offset where it starts.
func findOpenTag(s string) (string, int) {
	for i := 0; i+1 < len(s); i++ {
		if s[i] != '<' || s[i+1] != '?' {
			continue
		}
		if strings.HasPrefix(s[i:], "<?=") {
			return "<?=", i
		}
		if len(s) >= i+5 && strings.EqualFold(s[i+2:i+5], "php") {
			end := i + 5
			switch {
			case end == len(s):
				return s[i:end], i
			case strings.HasPrefix(s[end:], "\r\n"):
				return s[i : end+2], i
			case s[end] == ' ' || s[end] == '\t' || s[end] == '\n' || s[end] == '\r':
				return s[i : end+1], i
			}
		}
	}
	return "", len(s)
}

// lexCode lexes PHP code until a close tag or the end of input. When nested
// is set it lexes an expression embedded in a string and stops after the
// brace closing it. done reports that the rest of the input was consumed.
func (l *lexer) lexCode(nested bool) (done bool, err error) {
	depth := 0
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		s := l.rest()
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			n := 1
			for n < len(s) && (s[n] == ' ' || s[n] == '\t' || s[n] == '\n' || s[n] == '\r') {
				n++
			}
			l.emit(KindWhitespace, s[:n])

		case !nested && strings.HasPrefix(s, "?>"):
			n := 2
			if strings.HasPrefix(s[2:], "\r\n") {
				n = 4
			} else if len(s) > 2 && s[2] == '\n' {
				n = 3
			}
			l.emit(KindCloseTag, s[:n])
			if l.halted {
				l.haltRest()
				return true, nil
			}
			return false, nil

		case c == '#' && l.peek(1) == '[':
			l.emit(KindChar, "#[")

		case c == '#' || strings.HasPrefix(s, "//"):
			l.emit(KindComment, s[:lineCommentEnd(s)])

		case strings.HasPrefix(s, "/*"):
			end := strings.Index(s[2:], "*/")
			if end < 0 {
				return false, l.fail("unterminated comment starting")
			}
			text := s[:end+4]
			kind := KindComment
			if len(text) > 4 && text[2] == '*' && isSpace(text[3]) {
				kind = KindDocComment
			}
			l.emit(kind, text)

		case c == '$' && isIdentStart(l.peek(1)):
			l.emit(KindVariable, s[:1+identLen(s[1:])])

		case isIdentStart(c):
			if (c == 'b' || c == 'B') && (l.peek(1) == '\'' || l.peek(1) == '"') {
				if err := l.lexQuoted(1); err != nil {
					return false, err
				}
				continue
			}
			l.lexIdentifier(s[:identLen(s)])

		case isDigit(c) || (c == '.' && isDigit(l.peek(1))):
			l.emit(KindNumber, s[:numberLen(s)])

		case c == '\'' || c == '"' || c == '`':
			if err := l.lexQuoted(0); err != nil {
				return false, err
			}

		case strings.HasPrefix(s, "<<<") && heredocLabelAhead(s[3:]):
			if err := l.lexHeredoc(); err != nil {
				return false, err
			}

		case c == '\\':
			l.emit(KindNsSeparator, `\`)

		case c == '{':
			depth++
			l.emit(KindOpenBrace, "{")

		case c == '}':
			l.emit(KindCloseBrace, "}")
			if nested && depth == 0 {
				return false, nil
			}
			depth--

		case c == ';':
			l.emit(KindSemicolon, ";")
			if l.halted {
				l.haltRest()
				return true, nil
			}

		default:
			l.lexPunct(s)
		}
	}
	if nested {
		return true, l.fail("unterminated string interpolation")
	}
	return true, nil
}

func (l *lexer) haltRest() {
	if l.pos < len(l.src) {
		l.emit(KindInlineHTML, l.rest())
	}
}

var punctuation = []struct {
	text string
	kind Kind
}{
	{"...", KindEllipsis},
	{"?->", KindObjectOperator},
	{"<<=", KindOperator},
	{">>=", KindOperator},
	{"**=", KindOperator},
	{"<=>", KindOperator},
	{"===", KindOperator},
	{"!==", KindOperator},
	{"??=", KindOperator},
	{"->", KindObjectOperator},
	{"=>", KindDoubleArrow},
	{"::", KindDoubleColon},
	{"++", KindOperator},
	{"--", KindOperator},
	{"+=", KindOperator},
	{"-=", KindOperator},
	{"*=", KindOperator},
	{"/=", KindOperator},
	{".=", KindOperator},
	{"%=", KindOperator},
	{"&=", KindOperator},
	{"|=", KindOperator},
	{"^=", KindOperator},
	{"==", KindOperator},
	{"!=", KindOperator},
	{"<>", KindOperator},
	{"<=", KindOperator},
	{">=", KindOperator},
	{"&&", KindOperator},
	{"||", KindOperator},
	{"??", KindOperator},
	{"<<", KindOperator},
	{">>", KindOperator},
	{"**", KindOperator},
}

var singles = map[byte]Kind{
	'(': KindOpenParen,
	')': KindCloseParen,
	'[': KindOpenBracket,
	']': KindCloseBracket,
	',': KindComma,
	':': KindColon,
	'?': KindQuestion,
	'+': KindOperator,
	'-': KindOperator,
	'*': KindOperator,
	'/': KindOperator,
	'%': KindOperator,
	'=': KindOperator,
	'<': KindOperator,
	'>': KindOperator,
	'!': KindOperator,
	'.': KindOperator,
	'&': KindOperator,
	'|': KindOperator,
	'^': KindOperator,
	'~': KindOperator,
	'@': KindOperator,
}

func (l *lexer) lexPunct(s string) {
	for _, p := range punctuation {
		if strings.HasPrefix(s, p.text) {
			l.emit(p.kind, p.text)
			return
		}
	}
	if kind, ok := singles[s[0]]; ok {
		l.emit(kind, s[:1])
		return
	}
	l.emit(KindChar, s[:1])
}

// lexIdentifier emits a keyword or a name. Reserved words used as member,
// method or constant names are emitted as names.
func (l *lexer) lexIdentifier(word string) {
	kind, ok := KeywordKind(word)
	if !ok && strings.EqualFold(word, "from") {
		if prev, _ := l.lastSignificant(); strings.EqualFold(prev.Text, "yield") {
			kind, ok = KindKeyword, true
		}
	}
	if !ok || l.nameContext() {
		l.emit(KindString, word)
		return
	}
	l.emit(kind, word)
	if strings.EqualFold(word, "__halt_compiler") {
		l.halted = true
	}
}

func (l *lexer) nameContext() bool {
	prev, before := l.lastSignificant()
	switch prev.Kind {
	case KindObjectOperator, KindDoubleColon, KindFunction, KindConst:
		return true
	case KindOperator:
		return prev.Text == "&" && before.Kind == KindFunction
	}
	return false
}

func (l *lexer) lastSignificant() (Token, Token) {
	var found []Token
	for i := len(l.tokens) - 1; i >= 0 && len(found) < 2; i-- {
		switch l.tokens[i].Kind {
		case KindWhitespace, KindComment, KindDocComment:
			continue
		}
		found = append(found, l.tokens[i])
	}
	for len(found) < 2 {
		found = append(found, Token{Kind: KindChar})
	}
	return found[0], found[1]
}

// lexQuoted lexes a quoted literal starting after prefix bytes (the binary
// string marker). Literals without interpolation become one
// KindConstantString token.
func (l *lexer) lexQuoted(prefix int) error {
	s := l.rest()
	quote := s[prefix]
	end, interpolated := quotedEnd(s[prefix:], quote)
	if end < 0 {
		return l.fail("unterminated string")
	}
	if !interpolated && quote != '`' {
		l.emit(KindConstantString, s[:prefix+end])
		return nil
	}
	l.emit(KindQuote, s[:prefix+1])
	if err := l.lexInterpolated(string(quote)); err != nil {
		return err
	}
	l.emit(KindQuote, string(quote))
	return nil
}

// quotedEnd returns the length of the literal at the start of s including
// both quotes, and whether it contains interpolation.
func quotedEnd(s string, quote byte) (int, bool) {
	interpolated := false
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case quote:
			return i + 1, interpolated
		case '$':
			if quote != '\'' && i+1 < len(s) && (isIdentStart(s[i+1]) || s[i+1] == '{') {
				interpolated = true
			}
		case '{':
			if quote != '\'' && i+1 < len(s) && s[i+1] == '$' {
				interpolated = true
			}
		}
	}
	return -1, false
}

// lexInterpolated lexes the body of a double-quoted string, backtick string
// or heredoc. For quoted strings term is the closing quote; for heredocs it
// is empty and the body ends at the closing label line.
func (l *lexer) lexInterpolated(term string) error {
	label := ""
	if strings.HasPrefix(term, "\n") {
		label = term[1:]
	}
	start := l.pos
	flush := func() {
		if l.pos > start {
			text := l.src[start:l.pos]
			l.pos = start
			l.emit(KindEncapsed, text)
		}
	}
	for {
		if l.pos >= len(l.src) {
			return l.fail("unterminated string")
		}
		s := l.rest()
		if label == "" && strings.HasPrefix(s, term) {
			flush()
			return nil
		}
		if label != "" && l.atHeredocEnd(label) {
			flush()
			return nil
		}
		switch {
		case s[0] == '\\' && len(s) > 1:
			l.pos += 2
		case s[0] == '$' && len(s) > 1 && isIdentStart(s[1]):
			flush()
			l.lexSimpleInterpolation()
			start = l.pos
		case strings.HasPrefix(s, "{$"):
			flush()
			l.emit(KindCurlyOpen, "{")
			if _, err := l.lexCode(true); err != nil {
				return err
			}
			start = l.pos
		case strings.HasPrefix(s, "${"):
			flush()
			l.emit(KindDollarOpenCurly, "${")
			if n := identLen(l.rest()); n > 0 && (l.peek(n) == '}' || l.peek(n) == '[') {
				l.emit(KindStringVarname, l.rest()[:n])
			}
			if _, err := l.lexCode(true); err != nil {
				return err
			}
			start = l.pos
		default:
			l.pos++
		}
	}
}

// lexSimpleInterpolation lexes "$var", "$var[key]" and "$var->prop".
func (l *lexer) lexSimpleInterpolation() {
	s := l.rest()
	l.emit(KindVariable, s[:1+identLen(s[1:])])
	s = l.rest()
	switch {
	case strings.HasPrefix(s, "[") && strings.Contains(s, "]"):
		l.emit(KindOpenBracket, "[")
		s = l.rest()
		switch {
		case s[0] == '$' && isIdentStart(l.peek(1)):
			l.emit(KindVariable, s[:1+identLen(s[1:])])
		case s[0] == '-' && isDigit(l.peek(1)):
			l.emit(KindOperator, "-")
			l.emit(KindNumber, l.rest()[:digitsLen(l.rest())])
		case isDigit(s[0]):
			l.emit(KindNumber, s[:digitsLen(s)])
		case isIdentStart(s[0]):
			l.emit(KindString, s[:identLen(s)])
		}
		if l.peek(0) == ']' {
			l.emit(KindCloseBracket, "]")
		}
	case strings.HasPrefix(s, "->") && isIdentStart(l.peek(2)):
		l.emit(KindObjectOperator, "->")
		l.emit(KindString, l.rest()[:identLen(l.rest())])
	case strings.HasPrefix(s, "?->") && isIdentStart(l.peek(3)):
		l.emit(KindObjectOperator, "?->")
		l.emit(KindString, l.rest()[:identLen(l.rest())])
	}
}

func heredocLabelAhead(s string) bool {
	s = strings.TrimLeft(s, " \t")
	if s != "" && (s[0] == '\'' || s[0] == '"') {
		s = s[1:]
	}
	return s != "" && isIdentStart(s[0])
}

func (l *lexer) lexHeredoc() error {
	s := l.rest()
	i := 3
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	nowdoc := s[i] == '\''
	quoted := s[i] == '\'' || s[i] == '"'
	if quoted {
		i++
	}
	n := identLen(s[i:])
	label := s[i : i+n]
	i += n
	if quoted {
		if i >= len(s) || s[i] != s[i-n-1] {
			return l.fail("invalid heredoc label")
		}
		i++
	}
	switch {
	case strings.HasPrefix(s[i:], "\r\n"):
		i += 2
	case i < len(s) && s[i] == '\n':
		i++
	default:
		return l.fail("unexpected '<<<'")
	}
	l.emit(KindStartHeredoc, s[:i])

	if l.atHeredocEnd(label) {
		l.emitHeredocEnd(label)
		return nil
	}
	if nowdoc {
		start := l.pos
		for l.pos < len(l.src) && !l.atHeredocEnd(label) {
			next := strings.IndexByte(l.rest(), '\n')
			if next < 0 {
				return l.fail("unterminated heredoc")
			}
			l.pos += next + 1
		}
		if l.pos >= len(l.src) {
			return l.fail("unterminated heredoc")
		}
		text := l.src[start:l.pos]
		l.pos = start
		l.emit(KindEncapsed, text)
	} else if err := l.lexInterpolated("\n" + label); err != nil {
		return err
	}
	l.emitHeredocEnd(label)
	return nil
}

// atHeredocEnd reports whether the cursor is at the start of a line that
// closes the heredoc labelled label.
func (l *lexer) atHeredocEnd(label string) bool {
	if l.pos > 0 && l.src[l.pos-1] != '\n' {
		return false
	}
	s := strings.TrimLeft(l.rest(), " \t")
	if !strings.HasPrefix(s, label) {
		return false
	}
	return len(s) == len(label) || !isIdentChar(s[len(label)])
}

func (l *lexer) emitHeredocEnd(label string) {
	s := l.rest()
	indent := len(s) - len(strings.TrimLeft(s, " \t"))
	l.emit(KindEndHeredoc, s[:indent+len(label)])
}

func lineCommentEnd(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' || s[i] == '\r' {
			return i
		}
		if s[i] == '?' && i+1 < len(s) && s[i+1] == '>' {
			return i
		}
	}
	return len(s)
}

func numberLen(s string) int {
	if len(s) > 2 && s[0] == '0' && strings.ContainsRune("xXbBoO", rune(s[1])) {
		n := 2
		for n < len(s) && (isIdentChar(s[n])) {
			n++
		}
		return n
	}
	n := digitsLen(s)
	if n < len(s) && s[n] == '.' && !(n+1 < len(s) && s[n+1] == '.') {
		n++
		n += digitsLen(s[n:])
	}
	if n < len(s) && (s[n] == 'e' || s[n] == 'E') {
		m := n + 1
		if m < len(s) && (s[m] == '+' || s[m] == '-') {
			m++
		}
		if m < len(s) && isDigit(s[m]) {
			n = m + digitsLen(s[m:])
		}
	}
	return n
}

func digitsLen(s string) int {
	n := 0
	for n < len(s) && (isDigit(s[n]) || s[n] == '_') {
		n++
	}
	return n
}

func identLen(s string) int {
	if s == "" || !isIdentStart(s[0]) {
		return 0
	}
	n := 1
	for n < len(s) && isIdentChar(s[n]) {
		n++
	}
	return n
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentChar(c byte) bool { return isIdentStart(c) || isDigit(c) }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

// checkBalance verifies that braces and parentheses pair up.
func checkBalance(tokens []Token) error {
	type open struct {
		closer Kind
		line   int
		text   string
	}
	var stack []open
	for _, t := range tokens {
		switch t.Kind {
		case KindOpenBrace, KindCurlyOpen, KindDollarOpenCurly:
			stack = append(stack, open{KindCloseBrace, t.Line, t.Text})
		case KindOpenParen:
			stack = append(stack, open{KindCloseParen, t.Line, t.Text})
		case KindCloseBrace, KindCloseParen:
			if len(stack) == 0 || stack[len(stack)-1].closer != t.Kind {
				return &SyntaxError{Line: t.Line, Msg: fmt.Sprintf("unexpected '%s'", t.Text)}
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return &SyntaxError{Line: top.line, Msg: fmt.Sprintf("unclosed '%s'", top.text)}
	}
	return nil
}

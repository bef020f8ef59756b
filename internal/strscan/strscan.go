// Package strscan re-lexes the raw text of a PHP string literal into
// sub-tokens so qualified names embedded in it can be found.
package strscan

import "nsprefix/internal/phptoken"

// Kind classifies a sub-token.
type Kind uint8

const (
	EscapedQuote Kind = iota
	Quote
	Whitespace
	TypeName
	Word
	Other
)

func (k Kind) String() string {
	switch k {
	case EscapedQuote:
		return "escaped_quote"
	case Quote:
		return "quote"
	case Whitespace:
		return "whitespace"
	case TypeName:
		return "type_name"
	case Word:
		return "word"
	default:
		return "other"
	}
}

// Sub is one piece of a literal.
type Sub struct {
	Kind Kind
	Text string
}

// Scan splits text, the raw text of a token of the given kind, into
// sub-tokens. The delimiter is taken from the first byte: a single quote
// selects single-quote rules, anything else double-quote rules. Single-quoted
// constant strings separate name segments with exactly one backslash; all
// other literals accept one or two (the doubled-escape convention).
func Scan(kind phptoken.Kind, text string) []Sub {
	if text == "" {
		return nil
	}
	quote := byte('"')
	if text[0] == '\'' {
		quote = '\''
	}
	maxSep := 2
	if kind == phptoken.KindConstantString && quote == '\'' {
		maxSep = 1
	}

	var subs []Sub
	for i := 0; i < len(text); {
		s := text[i:]
		var sub Sub
		switch {
		case len(s) > 1 && s[0] == '\\' && s[1] == quote:
			sub = Sub{EscapedQuote, s[:2]}
		case s[0] == quote:
			sub = Sub{Quote, s[:1]}
		case isSpace(s[0]):
			n := 1
			for n < len(s) && isSpace(s[n]) {
				n++
			}
			sub = Sub{Whitespace, s[:n]}
		default:
			if n := typeNameLen(s, maxSep); n > 0 {
				sub = Sub{TypeName, s[:n]}
			} else if n := wordLen(s); n > 0 {
				sub = Sub{Word, s[:n]}
			} else {
				sub = Sub{Other, s[:1]}
			}
		}
		subs = append(subs, sub)
		i += len(sub.Text)
	}
	return subs
}

// typeNameLen matches an optional leading separator followed by at least
// two identifiers joined by separators, where a separator is a run of 1 to
// maxSep backslashes.
func typeNameLen(s string, maxSep int) int {
	i := 0
	if n := sepLen(s, maxSep); n > 0 {
		i = n
	}
	n := identLen(s[i:])
	if n == 0 {
		return 0
	}
	i += n
	segments := 1
	for {
		sep := sepLen(s[i:], maxSep)
		if sep == 0 {
			break
		}
		n := identLen(s[i+sep:])
		if n == 0 {
			break
		}
		i += sep + n
		segments++
	}
	if segments < 2 {
		return 0
	}
	return i
}

func sepLen(s string, maxSep int) int {
	n := 0
	for n < len(s) && s[n] == '\\' {
		n++
	}
	if n > maxSep {
		return 0
	}
	return n
}

func identLen(s string) int {
	if s == "" || !isIdentStart(s[0]) {
		return 0
	}
	n := 1
	for n < len(s) && (isIdentStart(s[n]) || isDigit(s[n])) {
		n++
	}
	return n
}

func wordLen(s string) int {
	n := 0
	for n < len(s) && (isWord(s[n])) {
		n++
	}
	return n
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x7f
}

func isWord(c byte) bool {
	return c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

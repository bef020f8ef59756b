package rewriter

import (
	"regexp"
	"strings"

	"nsprefix/internal/phptoken"
)

// commentName finds class names in comments: after a doc tag, before "::"
// or containing a separator.
var commentName = regexp.MustCompile(`((?:@var(?:\s+array of)?|returns?|param|throws|@link|property[\w-]*|@package)\s+)?(\\?[A-Z][\w\\|]+)(::)?`)

var hasLower = regexp.MustCompile(`[a-z]`)

// comment splits a comment around the class names it mentions. Each
// alternative of a "A|B" union that contains a lower-case letter becomes a
// type reference; @package values and bare capitalised words are kept.
func (p *pass) comment(tok phptoken.Token) {
	text := tok.Text
	var (
		out   []phptoken.Token
		found bool
		last  int
	)
	emitText := func(upTo int) {
		if upTo > last {
			out = append(out, phptoken.Token{Kind: tok.Kind, Text: text[last:upTo], Line: tok.Line})
		}
		last = upTo
	}

	for i := 0; i < len(text); {
		m := commentName.FindStringSubmatchIndex(text[i:])
		if m == nil {
			break
		}
		for j := range m {
			if m[j] >= 0 {
				m[j] += i
			}
		}
		nameStart, nameEnd := m[4], m[5]
		if nameStart == 0 || isWordByte(text[nameStart-1]) {
			i = m[0] + 1
			continue
		}
		i = m[1]

		tag := ""
		if m[2] >= 0 {
			tag = text[m[2]:m[3]]
		}
		if strings.HasPrefix(tag, "@package") || (tag == "" && m[6] < 0 && !strings.Contains(text[nameStart:nameEnd], `\`)) {
			continue
		}

		pos := nameStart
		for _, part := range strings.Split(text[nameStart:nameEnd], "|") {
			if hasLower.MatchString(part) {
				emitText(pos)
				out = append(out, p.typeRef(part, tok.Line+strings.Count(text[:pos], "\n")))
				last = pos + len(part)
				found = true
			}
			pos += len(part) + 1
		}
	}
	if !found {
		return
	}
	emitText(len(text))
	p.s.Replace(p.s.Position(), 1, out)
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

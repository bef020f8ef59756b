// Package classmap reads composer's class-to-file map and derives the set of
// classes that belong to vendored dependencies.
package classmap

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"nsprefix/internal/errors"
	"nsprefix/internal/phptoken"
	"nsprefix/internal/tokenstream"
)

// DefaultFile is composer's classmap, relative to the project root.
const DefaultFile = "vendor/composer/autoload_classmap.php"

// Classmap maps fully-qualified class names (no leading separator) to file
// paths relative to the project root, slash separated.
type Classmap map[string]string

// Load reads a classmap file. Files ending in .json hold a plain object;
// anything else is taken as composer's PHP classmap.
func Load(file string) (Classmap, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var cm Classmap
	if strings.EqualFold(filepath.Ext(file), ".json") {
		cm, err = ParseJSON(src)
	} else {
		cm, err = ParsePHP(src)
	}
	if err != nil {
		return nil, errors.New(errors.ClassmapInvalid, fmt.Sprintf("classmap %s cannot be read", file), err).
			WithDetails(map[string]string{"path": file})
	}
	return cm, nil
}

// ParseJSON reads {"Class\\Name": "vendor/pkg/File.php", ...}.
func ParseJSON(src []byte) (Classmap, error) {
	var raw map[string]string
	if err := json.Unmarshal(src, &raw); err != nil {
		return nil, err
	}
	cm := make(Classmap, len(raw))
	for class, file := range raw {
		cm[strings.TrimLeft(class, `\`)] = filepath.ToSlash(file)
	}
	return cm, nil
}

// ParsePHP reads the array returned by a composer classmap:
//
//	return array(
//	    'Vendor\\Pkg\\Foo' => $vendorDir . '/vendor/pkg/src/Foo.php',
//	);
//
// $vendorDir expands to "vendor" and $baseDir to the project root.
func ParsePHP(src []byte) (Classmap, error) {
	tokens, err := phptoken.Tokenize(string(src))
	if err != nil {
		return nil, err
	}
	s := tokenstream.New(tokens, phptoken.KindWhitespace, phptoken.KindComment, phptoken.KindDocComment)

	for {
		tok, ok := s.Next()
		if !ok {
			return nil, fmt.Errorf("no return statement")
		}
		if isReturn(tok) {
			break
		}
	}
	var end phptoken.Kind
	switch {
	case s.IsNextWhere(isArray):
		s.NextWhere(isArray)
		if _, ok := s.Next(phptoken.KindOpenParen); !ok {
			return nil, unexpected(s)
		}
		end = phptoken.KindCloseParen
	case s.IsNext(phptoken.KindOpenBracket):
		s.Next(phptoken.KindOpenBracket)
		end = phptoken.KindCloseBracket
	default:
		return nil, unexpected(s)
	}

	cm := Classmap{}
	for {
		if _, ok := s.Next(end); ok {
			return cm, nil
		}
		key, ok := s.Next(phptoken.KindConstantString)
		if !ok {
			return nil, unexpected(s)
		}
		if _, ok := s.Next(phptoken.KindDoubleArrow); !ok {
			return nil, unexpected(s)
		}
		file, err := pathExpr(s, end)
		if err != nil {
			return nil, err
		}
		cm[strings.TrimLeft(unquote(key.Text), `\`)] = file
		s.Next(phptoken.KindComma)
	}
}

// pathExpr evaluates a concatenation of directory variables and string
// literals up to the next comma or end token.
func pathExpr(s *tokenstream.Stream, end phptoken.Kind) (string, error) {
	var b strings.Builder
	for !s.IsNext(phptoken.KindComma, end) {
		tok, ok := s.NextWhere(significant)
		if !ok {
			return "", fmt.Errorf("unexpected end of classmap")
		}
		switch {
		case tok.Kind == phptoken.KindVariable && tok.Text == "$vendorDir":
			b.WriteString("vendor")
		case tok.Kind == phptoken.KindVariable && tok.Text == "$baseDir":
		case tok.Kind == phptoken.KindConstantString:
			b.WriteString(unquote(tok.Text))
		case tok.Kind == phptoken.KindOperator && tok.Text == ".":
		default:
			return "", fmt.Errorf("line %d: unsupported expression %q", tok.Line, tok.Text)
		}
	}
	return strings.TrimPrefix(path.Clean("/"+b.String()), "/"), nil
}

// Membership returns the classes whose file lies in vendor/<dep>/ for one
// of deps.
func (cm Classmap) Membership(deps []string) map[string]bool {
	dirs := make([]string, 0, len(deps))
	for _, dep := range deps {
		dirs = append(dirs, "vendor/"+strings.Trim(dep, "/")+"/")
	}
	members := map[string]bool{}
	for class, file := range cm {
		for _, dir := range dirs {
			if strings.Contains(file, dir) {
				members[class] = true
				break
			}
		}
	}
	return members
}

// Classes returns the class names in sorted order.
func (cm Classmap) Classes() []string {
	names := make([]string, 0, len(cm))
	for name := range cm {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func isReturn(t phptoken.Token) bool {
	return t.Kind == phptoken.KindKeyword && strings.EqualFold(t.Text, "return")
}

func isArray(t phptoken.Token) bool {
	return t.Kind == phptoken.KindString && strings.EqualFold(t.Text, "array")
}

func significant(t phptoken.Token) bool {
	switch t.Kind {
	case phptoken.KindWhitespace, phptoken.KindComment, phptoken.KindDocComment:
		return false
	}
	return true
}

func unexpected(s *tokenstream.Stream) error {
	if tok, ok := s.NextWhere(significant); ok {
		return fmt.Errorf("line %d: unexpected %q", tok.Line, tok.Text)
	}
	return fmt.Errorf("unexpected end of classmap")
}

// unquote decodes a single- or double-quoted literal without
// interpolation.
func unquote(lit string) string {
	if len(lit) < 2 {
		return lit
	}
	q := lit[0]
	body := lit[1 : len(lit)-1]
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+1 < len(body) {
			next := body[i+1]
			if next == '\\' || next == q || (q == '"' && next == '$') {
				b.WriteByte(next)
				i++
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

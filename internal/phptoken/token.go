// Package phptoken splits PHP source into the flat token sequence walked by
// the rewriter. Concatenating the text of every token reproduces the input
// byte for byte.
package phptoken

import "strings"

// Kind identifies the lexical category of a token.
type Kind uint8

const (
	KindChar Kind = iota // punctuation without a dedicated kind
	KindInlineHTML
	KindOpenTag
	KindOpenTagWithEcho
	KindCloseTag
	KindWhitespace
	KindComment
	KindDocComment
	KindVariable
	KindString      // identifier
	KindNsSeparator // \
	KindNumber
	KindConstantString // quoted literal without interpolation
	KindEncapsed       // literal part of an interpolated string or heredoc
	KindQuote          // " or ` around an interpolated string
	KindStartHeredoc
	KindEndHeredoc
	KindCurlyOpen       // { opening "{$expr}" inside a string
	KindDollarOpenCurly // ${ inside a string
	KindStringVarname
	KindObjectOperator // -> and ?->
	KindDoubleColon
	KindEllipsis
	KindDoubleArrow
	KindOperator
	KindOpenBrace
	KindCloseBrace
	KindOpenParen
	KindCloseParen
	KindOpenBracket
	KindCloseBracket
	KindSemicolon
	KindComma
	KindColon
	KindQuestion

	KindKeyword // reserved word without a dedicated kind
	KindNamespace
	KindUse
	KindClass
	KindInterface
	KindTrait
	KindFunction
	KindExtends
	KindImplements
	KindNew
	KindInstanceof
	KindInsteadof
	KindAs
	KindDeclare
	KindConst

	// Kinds manufactured by the rewriter, never produced by Tokenize.
	KindImport
	KindTypeReference
	KindScalarTypeReference
	KindNamespaceName
)

var kindNames = map[Kind]string{
	KindChar:                "T_CHAR",
	KindInlineHTML:          "T_INLINE_HTML",
	KindOpenTag:             "T_OPEN_TAG",
	KindOpenTagWithEcho:     "T_OPEN_TAG_WITH_ECHO",
	KindCloseTag:            "T_CLOSE_TAG",
	KindWhitespace:          "T_WHITESPACE",
	KindComment:             "T_COMMENT",
	KindDocComment:          "T_DOC_COMMENT",
	KindVariable:            "T_VARIABLE",
	KindString:              "T_STRING",
	KindNsSeparator:         "T_NS_SEPARATOR",
	KindNumber:              "T_NUMBER",
	KindConstantString:      "T_CONSTANT_ENCAPSED_STRING",
	KindEncapsed:            "T_ENCAPSED_AND_WHITESPACE",
	KindQuote:               "T_QUOTE",
	KindStartHeredoc:        "T_START_HEREDOC",
	KindEndHeredoc:          "T_END_HEREDOC",
	KindCurlyOpen:           "T_CURLY_OPEN",
	KindDollarOpenCurly:     "T_DOLLAR_OPEN_CURLY_BRACES",
	KindStringVarname:       "T_STRING_VARNAME",
	KindObjectOperator:      "T_OBJECT_OPERATOR",
	KindDoubleColon:         "T_DOUBLE_COLON",
	KindEllipsis:            "T_ELLIPSIS",
	KindDoubleArrow:         "T_DOUBLE_ARROW",
	KindOperator:            "T_OPERATOR",
	KindOpenBrace:           "{",
	KindCloseBrace:          "}",
	KindOpenParen:           "(",
	KindCloseParen:          ")",
	KindOpenBracket:         "[",
	KindCloseBracket:        "]",
	KindSemicolon:           ";",
	KindComma:               ",",
	KindColon:               ":",
	KindQuestion:            "?",
	KindKeyword:             "T_KEYWORD",
	KindNamespace:           "T_NAMESPACE",
	KindUse:                 "T_USE",
	KindClass:               "T_CLASS",
	KindInterface:           "T_INTERFACE",
	KindTrait:               "T_TRAIT",
	KindFunction:            "T_FUNCTION",
	KindExtends:             "T_EXTENDS",
	KindImplements:          "T_IMPLEMENTS",
	KindNew:                 "T_NEW",
	KindInstanceof:          "T_INSTANCEOF",
	KindInsteadof:           "T_INSTEADOF",
	KindAs:                  "T_AS",
	KindDeclare:             "T_DECLARE",
	KindConst:               "T_CONST",
	KindImport:              "T_IMPORT",
	KindTypeReference:       "T_TYPE_REFERENCE",
	KindScalarTypeReference: "T_SCALAR_TYPE_REFERENCE",
	KindNamespaceName:       "T_NAMESPACE_NAME",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "T_UNKNOWN"
}

// Meta carries the data the rewriter attaches to the tokens it manufactures.
type Meta struct {
	// Imports is the alias table of an import statement (lower-cased alias
	// to fully-qualified name).
	Imports map[string]string

	// FullName is the resolved fully-qualified name of a type reference.
	FullName string
}

// Token is one lexical unit. Line is 1-based.
type Token struct {
	Kind Kind
	Text string
	Line int
	Meta *Meta
}

// Join concatenates the text of tokens.
func Join(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Text)
	}
	return b.String()
}

// keywords maps lower-cased reserved words to their kind. Type-like words
// (array, callable, self, ...) are deliberately absent: they lex as
// KindString so type annotations using them look like any other name.
var keywords = map[string]Kind{
	"namespace":  KindNamespace,
	"use":        KindUse,
	"class":      KindClass,
	"interface":  KindInterface,
	"trait":      KindTrait,
	"function":   KindFunction,
	"extends":    KindExtends,
	"implements": KindImplements,
	"new":        KindNew,
	"instanceof": KindInstanceof,
	"insteadof":  KindInsteadof,
	"as":         KindAs,
	"declare":    KindDeclare,
	"const":      KindConst,

	"__halt_compiler": KindKeyword,
	"abstract":        KindKeyword,
	"and":             KindKeyword,
	"break":           KindKeyword,
	"case":            KindKeyword,
	"catch":           KindKeyword,
	"clone":           KindKeyword,
	"continue":        KindKeyword,
	"default":         KindKeyword,
	"die":             KindKeyword,
	"do":              KindKeyword,
	"echo":            KindKeyword,
	"else":            KindKeyword,
	"elseif":          KindKeyword,
	"empty":           KindKeyword,
	"enddeclare":      KindKeyword,
	"endfor":          KindKeyword,
	"endforeach":      KindKeyword,
	"endif":           KindKeyword,
	"endswitch":       KindKeyword,
	"endwhile":        KindKeyword,
	"eval":            KindKeyword,
	"exit":            KindKeyword,
	"final":           KindKeyword,
	"finally":         KindKeyword,
	"fn":              KindKeyword,
	"for":             KindKeyword,
	"foreach":         KindKeyword,
	"global":          KindKeyword,
	"goto":            KindKeyword,
	"if":              KindKeyword,
	"include":         KindKeyword,
	"include_once":    KindKeyword,
	"isset":           KindKeyword,
	"list":            KindKeyword,
	"or":              KindKeyword,
	"print":           KindKeyword,
	"private":         KindKeyword,
	"protected":       KindKeyword,
	"public":          KindKeyword,
	"readonly":        KindKeyword,
	"require":         KindKeyword,
	"require_once":    KindKeyword,
	"return":          KindKeyword,
	"static":          KindKeyword,
	"switch":          KindKeyword,
	"throw":           KindKeyword,
	"try":             KindKeyword,
	"unset":           KindKeyword,
	"var":             KindKeyword,
	"while":           KindKeyword,
	"xor":             KindKeyword,
	"yield":           KindKeyword,
}

// KeywordKind reports the kind of a reserved word, if word is one.
func KeywordKind(word string) (Kind, bool) {
	k, ok := keywords[strings.ToLower(word)]
	return k, ok
}

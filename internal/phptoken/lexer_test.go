package phptoken

import (
	"errors"
	"strings"
	"testing"
)

func TestTokenize_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"html only", "<html>\n<body></body>\n"},
		{"class", "<?php\nnamespace Acme\\Tools;\n\nuse Vendor\\Logger as Log;\n\nfinal class X extends Log implements \\Countable\n{\n\tpublic function count(): int { return 0; }\n}\n"},
		{"template", "<p><?= $title ?></p>\n<?php if ($x) { ?>\n<b>yes</b>\n<?php } ?>\n"},
		{"strings", "<?php $a = 'It\\'s'; $b = \"x {$y->z} ${w} $v[1] $u->p\"; $c = `ls $dir`;"},
		{"heredoc", "<?php\n$a = <<<EOT\n  Hello $name\n  EOT;\n$b = <<<'RAW'\nApp\\Foo $x\nRAW;\n"},
		{"comments", "<?php\n// line ?> out\n<?php # hash\n/* block */ /** doc */\n#[Attr(Foo::class)]\nfunction f() {}\n"},
		{"numbers", "<?php $x = 0x1F + 0b101 + 1_000 + 1.5e-3 + .5 + 7;"},
		{"halt", "<?php echo 1; __halt_compiler(); raw { data"},
		{"crlf", "<?php\r\nclass A\r\n{\r\n}\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.src)
			if err != nil {
				t.Fatalf("Tokenize() error = %v", err)
			}
			if got := Join(tokens); got != tt.src {
				t.Errorf("Join(Tokenize()) = %q, want %q", got, tt.src)
			}
		})
	}
}

func TestTokenize_Kinds(t *testing.T) {
	tokens, err := Tokenize("<?php use Foo\\Bar; $x = new Bar(); Bar::class;")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}

	var got []string
	for _, tok := range tokens {
		if tok.Kind == KindWhitespace {
			continue
		}
		got = append(got, tok.Kind.String()+":"+tok.Text)
	}
	want := []string{
		"T_OPEN_TAG:<?php ",
		"T_USE:use",
		"T_STRING:Foo",
		"T_NS_SEPARATOR:\\",
		"T_STRING:Bar",
		";:;",
		"T_VARIABLE:$x",
		"T_OPERATOR:=",
		"T_NEW:new",
		"T_STRING:Bar",
		"(:(",
		"):)",
		";:;",
		"T_STRING:Bar",
		"T_DOUBLE_COLON:::",
		"T_STRING:class",
		";:;",
	}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("kinds =\n%v\nwant\n%v", got, want)
	}
}

func TestTokenize_KeywordsAsNames(t *testing.T) {
	tests := []struct {
		name string
		src  string
		word string
		want Kind
	}{
		{"method named list", "<?php class A { function list() {} }", "list", KindString},
		{"by-ref method", "<?php class A { function &new() {} }", "new", KindString},
		{"member access", "<?php $a->class;", "class", KindString},
		{"nullsafe access", "<?php $a?->use;", "use", KindString},
		{"class constant", "<?php class A { const FUNCTION = 1; }", "FUNCTION", KindString},
		{"keyword", "<?php return 1;", "return", KindKeyword},
		{"insteadof", "<?php class A { use T { T::a insteadof U; } }", "insteadof", KindInsteadof},
		{"type word", "<?php function f(array $a) {}", "array", KindString},
		{"enum", "<?php enum Suit {}", "enum", KindString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.src)
			if err != nil {
				t.Fatalf("Tokenize() error = %v", err)
			}
			for _, tok := range tokens {
				if tok.Text == tt.word {
					if tok.Kind != tt.want {
						t.Errorf("kind of %q = %v, want %v", tt.word, tok.Kind, tt.want)
					}
					return
				}
			}
			t.Fatalf("token %q not found", tt.word)
		})
	}
}

func TestTokenize_Strings(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		kinds []Kind
	}{
		{
			name:  "single quoted",
			src:   `<?php 'App\Foo';`,
			kinds: []Kind{KindOpenTag, KindConstantString, KindSemicolon},
		},
		{
			name:  "double quoted without variables",
			src:   `<?php "App\\Foo $";`,
			kinds: []Kind{KindOpenTag, KindConstantString, KindSemicolon},
		},
		{
			name:  "interpolated",
			src:   `<?php "new $cls()";`,
			kinds: []Kind{KindOpenTag, KindQuote, KindEncapsed, KindVariable, KindEncapsed, KindQuote, KindSemicolon},
		},
		{
			name: "curly",
			src:  `<?php "a{$b['c']}d";`,
			kinds: []Kind{
				KindOpenTag, KindQuote, KindEncapsed, KindCurlyOpen, KindVariable, KindOpenBracket,
				KindConstantString, KindCloseBracket, KindCloseBrace, KindEncapsed, KindQuote, KindSemicolon,
			},
		},
		{
			name:  "nowdoc",
			src:   "<?php <<<'X'\nraw $v\nX;",
			kinds: []Kind{KindOpenTag, KindStartHeredoc, KindEncapsed, KindEndHeredoc, KindSemicolon},
		},
		{
			name:  "empty heredoc",
			src:   "<?php <<<X\nX;",
			kinds: []Kind{KindOpenTag, KindStartHeredoc, KindEndHeredoc, KindSemicolon},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.src)
			if err != nil {
				t.Fatalf("Tokenize() error = %v", err)
			}
			if len(tokens) != len(tt.kinds) {
				t.Fatalf("got %d tokens %v, want %d", len(tokens), tokens, len(tt.kinds))
			}
			for i, k := range tt.kinds {
				if tokens[i].Kind != k {
					t.Errorf("token %d (%q) kind = %v, want %v", i, tokens[i].Text, tokens[i].Kind, k)
				}
			}
		})
	}
}

func TestTokenize_Lines(t *testing.T) {
	tokens, err := Tokenize("<?php\n/* a\nb */\nclass A {}\n")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	for _, tok := range tokens {
		if tok.Kind == KindClass && tok.Line != 4 {
			t.Errorf("class on line %d, want 4", tok.Line)
		}
	}
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"unterminated string", "<?php\n$a = 'abc;\n", 2},
		{"unterminated comment", "<?php\n\n/* never closed", 3},
		{"unterminated heredoc", "<?php\n$a = <<<EOT\nbody\n", 3},
		{"unexpected brace", "<?php\nfunction f() {}\n}\n", 3},
		{"unclosed brace", "<?php\nclass A {\n", 2},
		{"mismatched", "<?php\nf(];\n", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.src)
			if err == nil {
				t.Fatal("Tokenize() expected error")
			}
			var syntaxErr *SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Fatalf("error %T is not *SyntaxError", err)
			}
			if tt.name == "mismatched" {
				return
			}
			if syntaxErr.Line != tt.line {
				t.Errorf("line = %d, want %d (%v)", syntaxErr.Line, tt.line, err)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	if got := KindTypeReference.String(); got != "T_TYPE_REFERENCE" {
		t.Errorf("String() = %q", got)
	}
	if got := Kind(255).String(); got != "T_UNKNOWN" {
		t.Errorf("String() = %q", got)
	}
}

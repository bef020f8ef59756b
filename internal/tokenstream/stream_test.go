package tokenstream

import (
	"testing"

	"nsprefix/internal/phptoken"
)

func mustStream(t *testing.T, src string) *Stream {
	t.Helper()
	tokens, err := phptoken.Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize(%q) error = %v", src, err)
	}
	return New(tokens, phptoken.KindWhitespace)
}

func tok(kind phptoken.Kind, text string) phptoken.Token {
	return phptoken.Token{Kind: kind, Text: text, Line: 1}
}

func TestStream_NextSkipsIgnored(t *testing.T) {
	s := mustStream(t, "<?php use Foo \\ Bar;")

	if _, ok := s.Next(phptoken.KindOpenTag); !ok {
		t.Fatal("Next(open tag) failed")
	}
	if got := s.NextText(phptoken.KindUse); got != "use" {
		t.Fatalf("NextText(use) = %q", got)
	}
	if got := s.JoinAll(phptoken.KindString, phptoken.KindNsSeparator); got != `Foo\Bar` {
		t.Errorf("JoinAll() = %q, want Foo\\Bar", got)
	}
	if !s.IsCurrent(phptoken.KindString) || s.CurrentText() != "Bar" {
		t.Errorf("cursor on %q, want Bar", s.CurrentText())
	}
	if !s.IsNext(phptoken.KindSemicolon) {
		t.Error("IsNext(;) = false")
	}
	if !s.IsPrev(phptoken.KindNsSeparator) {
		t.Error("IsPrev(\\) = false")
	}
}

func TestStream_NextStopsAtOtherKinds(t *testing.T) {
	s := mustStream(t, "<?php $a = 1;")
	s.Next()

	if _, ok := s.Next(phptoken.KindNumber); ok {
		t.Error("Next(number) matched across a variable")
	}
	if s.Position() != 0 {
		t.Errorf("failed Next moved cursor to %d", s.Position())
	}
	if got := s.JoinUntil(phptoken.KindSemicolon); got != "$a = 1" {
		t.Errorf("JoinUntil(;) = %q", got)
	}
	if !s.IsNext(phptoken.KindSemicolon) {
		t.Error("JoinUntil consumed its terminator")
	}
}

func TestStream_Exhaustion(t *testing.T) {
	s := New([]phptoken.Token{tok(phptoken.KindString, "a")})

	if _, ok := s.CurrentLine(); ok {
		t.Error("CurrentLine() ok before first Next")
	}
	if _, ok := s.Next(); !ok {
		t.Fatal("Next() = false on first token")
	}
	if _, ok := s.Next(); ok {
		t.Error("Next() past end returned a token")
	}
	if s.Position() != s.Len() {
		t.Errorf("Position() = %d, want %d", s.Position(), s.Len())
	}
	if _, ok := s.CurrentKind(); ok {
		t.Error("CurrentKind() ok when exhausted")
	}
	if _, ok := s.Next(); ok || s.Position() != s.Len() {
		t.Error("Next() moved beyond the exhausted position")
	}
}

func TestStream_ReplaceCursorDelta(t *testing.T) {
	a, b, c, d := tok(phptoken.KindString, "a"), tok(phptoken.KindString, "b"), tok(phptoken.KindString, "c"), tok(phptoken.KindString, "d")

	tests := []struct {
		name    string
		pos     int
		offset  int
		length  int
		repl    []phptoken.Token
		want    string
		wantPos int
	}{
		{"shrink", 2, 1, 2, []phptoken.Token{d}, "add", 1},
		{"grow", 1, 1, 1, []phptoken.Token{d, d, d}, "adddcd", 3},
		{"same length", 2, 0, 1, []phptoken.Token{d}, "dbcd", 2},
		{"delete", 2, 1, 2, nil, "ad", 0},
		{"insert", 1, 1, 0, []phptoken.Token{d}, "adbcd", 2},
		{"clamped", 3, 2, 10, nil, "ab", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New([]phptoken.Token{a, b, c, d})
			s.Seek(tt.pos)
			s.Replace(tt.offset, tt.length, tt.repl)
			if got := s.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if s.Position() != tt.wantPos {
				t.Errorf("Position() = %d, want %d", s.Position(), tt.wantPos)
			}
		})
	}
}

func TestStream_ApplyEdit(t *testing.T) {
	s := mustStream(t, `<?php new Foo\Bar;`)
	s.Next(phptoken.KindOpenTag)
	s.Next(phptoken.KindNew)
	s.NextAll(phptoken.KindWhitespace)
	begin := s.Position() + 1
	name := s.JoinAll(phptoken.KindString, phptoken.KindNsSeparator)

	s.ApplyEdit(Edit{
		Consumed: s.Position() - begin + 1,
		Tokens:   []phptoken.Token{tok(phptoken.KindTypeReference, `\`+name)},
	})

	if got := s.String(); got != `<?php new \Foo\Bar;` {
		t.Errorf("String() = %q", got)
	}
	if !s.IsCurrent(phptoken.KindTypeReference) {
		t.Errorf("cursor not on the replacement")
	}
	if !s.IsNext(phptoken.KindSemicolon) {
		t.Errorf("scan does not resume after the replacement")
	}
}

func TestStream_DropAndInsert(t *testing.T) {
	s := New([]phptoken.Token{tok(phptoken.KindString, "a"), tok(phptoken.KindString, "b"), tok(phptoken.KindString, "c")})
	s.Next()
	s.Next()

	s.DropCurrent()
	if got := s.NextText(); got != "c" {
		t.Errorf("after DropCurrent Next = %q, want c", got)
	}

	s.InsertBeforeCurrent(tok(phptoken.KindString, "x"))
	if s.CurrentText() != "c" || s.String() != "axc" {
		t.Errorf("InsertBeforeCurrent: current %q, text %q", s.CurrentText(), s.String())
	}

	s.ReplaceCurrentText("z")
	if s.String() != "axz" {
		t.Errorf("ReplaceCurrentText: %q", s.String())
	}
}

func TestStream_Backward(t *testing.T) {
	s := mustStream(t, "<?php f($a) : int")
	for s.CurrentText() != ":" {
		if _, ok := s.Next(); !ok {
			t.Fatal("colon not found")
		}
	}

	if !s.IsPrev(phptoken.KindCloseParen) {
		t.Error("IsPrev()) = false across whitespace")
	}
	prev, ok := s.Prev()
	if !ok || prev.Kind != phptoken.KindWhitespace {
		t.Errorf("Prev() = %v, want the whitespace token", prev)
	}
	if got := len(s.PrevAll(phptoken.KindCloseParen, phptoken.KindVariable, phptoken.KindOpenParen)); got != 3 {
		t.Errorf("PrevAll() returned %d tokens, want 3", got)
	}
}

func TestTexts(t *testing.T) {
	s := mustStream(t, "<?php function &f() {}")
	s.Next(phptoken.KindOpenTag)
	s.Next(phptoken.KindFunction)

	if !s.IsNextWhere(Texts("&")) {
		t.Fatal("IsNextWhere(&) = false")
	}
	if _, ok := s.NextWhere(Texts("&")); !ok {
		t.Fatal("NextWhere(&) failed")
	}
	if got := s.NextText(phptoken.KindString); got != "f" {
		t.Errorf("NextText() = %q, want f", got)
	}
}

func TestJoinRange(t *testing.T) {
	s := mustStream(t, "<?php a;")
	if got := s.JoinRange(1, 99); got != "a;" {
		t.Errorf("JoinRange() = %q", got)
	}
	if got := s.JoinRange(3, 1); got != "" {
		t.Errorf("JoinRange(empty) = %q", got)
	}
}

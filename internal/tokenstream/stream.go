// Package tokenstream wraps a token slice with a cursor, predicate scans in
// both directions and an in-place splice primitive.
//
// The cursor starts before the first token (position -1). Scans that are not
// looking for an ignored kind step over ignored tokens (whitespace, for the
// rewriter) between matches.
package tokenstream

import (
	"nsprefix/internal/phptoken"
)

// Predicate selects tokens.
type Predicate func(phptoken.Token) bool

// Kinds matches tokens of any of the given kinds. With no kinds it matches
// every token.
func Kinds(kinds ...phptoken.Kind) Predicate {
	if len(kinds) == 0 {
		return nil
	}
	return func(t phptoken.Token) bool {
		for _, k := range kinds {
			if t.Kind == k {
				return true
			}
		}
		return false
	}
}

// Texts matches tokens whose text equals one of texts.
func Texts(texts ...string) Predicate {
	return func(t phptoken.Token) bool {
		for _, s := range texts {
			if t.Text == s {
				return true
			}
		}
		return false
	}
}

// Edit is a replacement instruction: the last Consumed tokens up to and
// including the cursor are replaced by Tokens.
type Edit struct {
	Consumed int
	Tokens   []phptoken.Token
}

// Stream is a cursor over a mutable token sequence. It is not safe for
// concurrent use.
type Stream struct {
	tokens  []phptoken.Token
	pos     int
	ignored map[phptoken.Kind]bool
}

// New creates a stream positioned before the first token. Tokens of the
// ignored kinds are skipped by scans that do not ask for them.
func New(tokens []phptoken.Token, ignored ...phptoken.Kind) *Stream {
	s := &Stream{tokens: tokens, pos: -1, ignored: make(map[phptoken.Kind]bool, len(ignored))}
	for _, k := range ignored {
		s.ignored[k] = true
	}
	return s
}

// Position returns the cursor index. It is -1 before the first Next and
// Len() once the stream is exhausted.
func (s *Stream) Position() int { return s.pos }

// Seek moves the cursor to pos.
func (s *Stream) Seek(pos int) { s.pos = pos }

// Reset moves the cursor before the first token.
func (s *Stream) Reset() { s.pos = -1 }

// Len returns the number of tokens.
func (s *Stream) Len() int { return len(s.tokens) }

// Tokens returns the underlying sequence.
func (s *Stream) Tokens() []phptoken.Token { return s.tokens }

// String joins the text of every token.
func (s *Stream) String() string { return phptoken.Join(s.tokens) }

// JoinRange joins the text of tokens[from:to].
func (s *Stream) JoinRange(from, to int) string {
	from, to = max(from, 0), min(to, len(s.tokens))
	if from >= to {
		return ""
	}
	return phptoken.Join(s.tokens[from:to])
}

// Current returns the token under the cursor.
func (s *Stream) Current() (phptoken.Token, bool) {
	if s.pos < 0 || s.pos >= len(s.tokens) {
		return phptoken.Token{}, false
	}
	return s.tokens[s.pos], true
}

// CurrentText returns the text under the cursor or "" when exhausted.
func (s *Stream) CurrentText() string {
	t, _ := s.Current()
	return t.Text
}

// CurrentLine returns the line of the token under the cursor; ok is false
// when the cursor is outside the sequence.
func (s *Stream) CurrentLine() (line int, ok bool) {
	t, ok := s.Current()
	return t.Line, ok
}

// CurrentKind returns the kind of the token under the cursor; ok is false
// when the cursor is outside the sequence.
func (s *Stream) CurrentKind() (kind phptoken.Kind, ok bool) {
	t, ok := s.Current()
	return t.Kind, ok
}

// Peek returns the token offset positions away from the cursor without
// skipping anything.
func (s *Stream) Peek(offset int) (phptoken.Token, bool) {
	i := s.pos + offset
	if i < 0 || i >= len(s.tokens) {
		return phptoken.Token{}, false
	}
	return s.tokens[i], true
}

// IsCurrent reports whether the current token is one of kinds.
func (s *Stream) IsCurrent(kinds ...phptoken.Kind) bool {
	return s.IsCurrentWhere(Kinds(kinds...))
}

// IsCurrentWhere reports whether the current token satisfies p.
func (s *Stream) IsCurrentWhere(p Predicate) bool {
	t, ok := s.Current()
	return ok && (p == nil || p(t))
}

// Next advances to the next token of one of kinds, stepping over ignored
// tokens. With no kinds it advances by exactly one token.
func (s *Stream) Next(kinds ...phptoken.Kind) (phptoken.Token, bool) {
	return s.NextWhere(Kinds(kinds...))
}

// NextWhere is Next with an arbitrary predicate.
func (s *Stream) NextWhere(p Predicate) (phptoken.Token, bool) {
	res := s.scan(p, scanFirst|scanAdvance)
	if len(res) == 0 {
		return phptoken.Token{}, false
	}
	return res[0], true
}

// NextText is Next returning only the token text ("" when nothing matched).
func (s *Stream) NextText(kinds ...phptoken.Kind) string {
	t, _ := s.Next(kinds...)
	return t.Text
}

// NextAll consumes the run of following tokens of kinds.
func (s *Stream) NextAll(kinds ...phptoken.Kind) []phptoken.Token {
	return s.scan(Kinds(kinds...), scanAdvance)
}

// JoinAll consumes the run of following tokens of kinds and joins their
// text.
func (s *Stream) JoinAll(kinds ...phptoken.Kind) string {
	return phptoken.Join(s.NextAll(kinds...))
}

// JoinUntil consumes tokens up to, not including, the next token of kinds
// and joins their text.
func (s *Stream) JoinUntil(kinds ...phptoken.Kind) string {
	return phptoken.Join(s.scan(Kinds(kinds...), scanAdvance|scanUntil))
}

// IsNext reports whether the next non-ignored token is one of kinds.
func (s *Stream) IsNext(kinds ...phptoken.Kind) bool {
	return s.IsNextWhere(Kinds(kinds...))
}

// IsNextWhere is IsNext with an arbitrary predicate.
func (s *Stream) IsNextWhere(p Predicate) bool {
	return len(s.scan(p, scanFirst)) > 0
}

// IsPrev reports whether the previous non-ignored token is one of kinds.
func (s *Stream) IsPrev(kinds ...phptoken.Kind) bool {
	return len(s.scan(Kinds(kinds...), scanFirst|scanBackward)) > 0
}

// Prev returns the previous token of kinds without moving the cursor.
func (s *Stream) Prev(kinds ...phptoken.Kind) (phptoken.Token, bool) {
	res := s.scan(Kinds(kinds...), scanFirst|scanBackward)
	if len(res) == 0 {
		return phptoken.Token{}, false
	}
	return res[0], true
}

// PrevAll returns the run of preceding tokens of kinds, nearest first,
// without moving the cursor.
func (s *Stream) PrevAll(kinds ...phptoken.Kind) []phptoken.Token {
	return s.scan(Kinds(kinds...), scanBackward)
}

type scanMode uint8

const (
	scanFirst scanMode = 1 << iota
	scanAdvance
	scanUntil
	scanBackward
)

// scan walks from the token after (or before) the cursor. In normal mode it
// collects tokens matching want, stepping over ignored ones, and stops at
// the first other token. In until mode it collects everything up to the
// first match. Advancing scans move the cursor onto the last collected
// token.
func (s *Stream) scan(want Predicate, mode scanMode) []phptoken.Token {
	var res []phptoken.Token
	step := 1
	if mode&scanBackward != 0 {
		step = -1
	}
	advance := mode&scanAdvance != 0 && step > 0
	for i := s.pos + step; ; i += step {
		if i < 0 || i >= len(s.tokens) {
			if want == nil && advance && i <= len(s.tokens) {
				s.pos = i
			}
			return res
		}
		t := s.tokens[i]
		matched := want == nil || want(t)
		if mode&scanUntil != 0 {
			matched = want != nil && !matched
		}
		switch {
		case matched:
			if advance {
				s.pos = i
			}
			res = append(res, t)
			if mode&scanFirst != 0 {
				return res
			}
		case mode&scanUntil != 0 || !s.ignored[t.Kind]:
			return res
		}
	}
}

// Replace splices tokens[offset:offset+length] with repl and moves the
// cursor by len(repl)-length. A nil repl deletes the range. Bounds are
// clamped to the sequence.
func (s *Stream) Replace(offset, length int, repl []phptoken.Token) {
	offset = min(max(offset, 0), len(s.tokens))
	length = min(max(length, 0), len(s.tokens)-offset)

	out := make([]phptoken.Token, 0, len(s.tokens)-length+len(repl))
	out = append(out, s.tokens[:offset]...)
	out = append(out, repl...)
	out = append(out, s.tokens[offset+length:]...)
	s.tokens = out
	s.pos += len(repl) - length
}

// ReplaceFrom replaces the tokens from begin through the cursor.
func (s *Stream) ReplaceFrom(begin int, repl []phptoken.Token) {
	s.Replace(begin, s.pos-begin+1, repl)
}

// ApplyEdit replaces the edit's consumed tokens, which end at the cursor.
func (s *Stream) ApplyEdit(e Edit) {
	s.Replace(s.pos-e.Consumed+1, e.Consumed, e.Tokens)
}

// InsertBeforeCurrent inserts tokens in front of the cursor, leaving the
// cursor on the same token.
func (s *Stream) InsertBeforeCurrent(tokens ...phptoken.Token) {
	s.Replace(max(s.pos, 0), 0, tokens)
}

// DropCurrent deletes the current token; the cursor moves back one so the
// following Next lands on the token after the deleted one.
func (s *Stream) DropCurrent() {
	if s.pos < 0 || s.pos >= len(s.tokens) {
		return
	}
	s.Replace(s.pos, 1, nil)
}

// ReplaceCurrentText rewrites the text of the current token in place.
func (s *Stream) ReplaceCurrentText(text string) {
	if s.pos < 0 || s.pos >= len(s.tokens) {
		return
	}
	s.tokens[s.pos].Text = text
}

// SetCurrent overwrites the current token.
func (s *Stream) SetCurrent(t phptoken.Token) {
	if s.pos < 0 || s.pos >= len(s.tokens) {
		return
	}
	s.tokens[s.pos] = t
}

package asm

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNewline
	tokValue  // %name
	tokIdent  // complex.add, f32, true
	tokNumber // 1.5, -0.0, 2e-3, 0x7FF8000000000000
	tokPunct  // , : = < > [ ] { }
	tokIllegal
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokNewline:
		return "end of line"
	case tokValue:
		return "value"
	case tokIdent:
		return "identifier"
	case tokNumber:
		return "number"
	case tokPunct:
		return "punctuation"
	default:
		return "illegal token"
	}
}

type token struct {
	kind   tokenKind
	text   string
	offset int
	line   int
	column int
}

// describe renders the token for "found ..." diagnostics.
func (t token) describe() string {
	switch t.kind {
	case tokEOF, tokNewline:
		return t.kind.String()
	default:
		return fmt.Sprintf("%q", t.text)
	}
}

// lexer splits assembly text into tokens. Newlines are significant: each
// op occupies one line. "//" starts a comment that runs to end of line.
type lexer struct {
	src    string
	pos    int
	line   int
	column int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, column: 1}
}

func (l *lexer) advance(n int) {
	for i := 0; i < n; i++ {
		if l.src[l.pos] == '\n' {
			l.line++
			l.column = 1
		} else {
			l.column++
		}
		l.pos++
	}
}

func (l *lexer) next() token {
	l.skipSpaceAndComments()

	tok := token{offset: l.pos, line: l.line, column: l.column}
	if l.pos >= len(l.src) {
		tok.kind = tokEOF
		return tok
	}

	c := l.src[l.pos]
	n := 1
	switch {
	case c == '\n':
		tok.kind = tokNewline
	case c == '%':
		n = 1 + l.span(l.pos+1, isNameChar)
		tok.kind = tokValue
		if n == 1 {
			tok.kind = tokIllegal
		}
	case isIdentStart(c):
		n = l.span(l.pos, isIdentChar)
		tok.kind = tokIdent
	case isDigit(c) || ((c == '-' || c == '+') && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1])):
		n = l.numberLen()
		tok.kind = tokNumber
	case strings.IndexByte(",:=<>[]{}", c) >= 0:
		tok.kind = tokPunct
	default:
		tok.kind = tokIllegal
	}

	tok.text = l.src[l.pos : l.pos+n]
	l.advance(n)
	return tok
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			l.advance(1)
		case c == '/' && strings.HasPrefix(l.src[l.pos:], "//"):
			end := strings.IndexByte(l.src[l.pos:], '\n')
			if end < 0 {
				end = len(l.src) - l.pos
			}
			l.advance(end)
		default:
			return
		}
	}
}

func (l *lexer) span(from int, ok func(byte) bool) int {
	i := from
	for i < len(l.src) && ok(l.src[i]) {
		i++
	}
	return i - from
}

// numberLen measures a decimal or 0x-prefixed hexadecimal literal.
func (l *lexer) numberLen() int {
	s := l.src[l.pos:]
	i := 0
	if s[i] == '-' || s[i] == '+' {
		i++
	}
	if strings.HasPrefix(s[i:], "0x") || strings.HasPrefix(s[i:], "0X") {
		i += 2
		for i < len(s) && isHexDigit(s[i]) {
			i++
		}
		return i
	}
	for i < len(s) {
		c := s[i]
		switch {
		case isDigit(c) || c == '.':
			i++
		case (c == 'e' || c == 'E') && i+1 < len(s):
			i++
			if s[i] == '-' || s[i] == '+' {
				i++
			}
		default:
			return i
		}
	}
	return i
}

func isDigit(c byte) bool    { return c >= '0' && c <= '9' }
func isHexDigit(c byte) bool { return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') }
func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
func isIdentChar(c byte) bool { return isIdentStart(c) || isDigit(c) || c == '.' }
func isNameChar(c byte) bool  { return isIdentStart(c) || isDigit(c) || c == '.' || c == '$' }

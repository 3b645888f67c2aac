package parser

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dhamidi/markup/dom"
)

func (p *Parser) eof() bool {
	return p.pos >= len(p.input)
}

// peek returns the code point at the cursor, or 0 at end of input.
func (p *Parser) peek() rune {
	if p.pos >= len(p.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(p.input[p.pos:])
	return r
}

// advance consumes one code point. Callers check eof first; at end of input
// advance is a no-op returning 0.
func (p *Parser) advance() rune {
	if p.pos >= len(p.input) {
		return 0
	}
	r, size := utf8.DecodeRuneInString(p.input[p.pos:])
	p.pos += size
	if r == '\n' {
		p.line++
		p.column = 1
	} else {
		p.column++
	}
	return r
}

// advanceTo moves the cursor forward to byte offset end.
func (p *Parser) advanceTo(end int) {
	for p.pos < end && p.pos < len(p.input) {
		p.advance()
	}
}

// match reports whether the remaining input starts with s.
func (p *Parser) match(s string) bool {
	return strings.HasPrefix(p.input[p.pos:], s)
}

// expect consumes the literal s. A missing literal is InvalidTag, unless
// the input ends before s could be completed.
func (p *Parser) expect(s string) error {
	if p.match(s) {
		p.advanceTo(p.pos + len(s))
		return nil
	}
	rest := p.input[p.pos:]
	if strings.HasPrefix(s, rest) {
		return p.errorf(KindUnexpectedEOF, strconv.Quote(s), "")
	}
	return p.errorf(KindInvalidTag, strconv.Quote(s), strconv.QuoteRune(p.peek()))
}

func (p *Parser) readWhile(pred func(rune) bool) string {
	start := p.pos
	for !p.eof() && pred(p.peek()) {
		p.advance()
	}
	return p.input[start:p.pos]
}

// readUntil consumes input until the remaining text starts with marker or
// the input ends. The marker itself is not consumed.
func (p *Parser) readUntil(marker string) string {
	start := p.pos
	for !p.eof() && !p.match(marker) {
		p.advance()
	}
	return p.input[start:p.pos]
}

func (p *Parser) skipWhitespace() {
	p.readWhile(unicode.IsSpace)
}

// whitespaceEnd returns the byte offset just past the whitespace run at the cursor.
func (p *Parser) whitespaceEnd() int {
	end := p.pos
	for end < len(p.input) {
		r, size := utf8.DecodeRuneInString(p.input[end:])
		if !unicode.IsSpace(r) {
			break
		}
		end += size
	}
	return end
}

// skipSeparator skips whitespace that only separates nodes: a run followed
// by a tag or by end of input. Whitespace in front of text belongs to the text.
func (p *Parser) skipSeparator() {
	if p.preserveWhitespace && p.depth > 0 {
		return
	}
	end := p.whitespaceEnd()
	if end == len(p.input) || p.input[end] == '<' {
		p.advanceTo(end)
	}
}

// Position returns the cursor location.
func (p *Parser) Position() dom.Position {
	return dom.Position{Offset: p.pos, Line: p.line, Column: p.column}
}

// Remaining returns the unconsumed input.
func (p *Parser) Remaining() string {
	return p.input[p.pos:]
}

func (p *Parser) span(start dom.Position) dom.Span {
	if !p.includePositions {
		return dom.Span{}
	}
	return dom.Span{Start: start, End: p.Position()}
}

func (p *Parser) errorf(kind ErrorKind, expected, got string) *Error {
	return p.errorAt(p.Position(), kind, expected, got)
}

func (p *Parser) errorAt(pos dom.Position, kind ErrorKind, expected, got string) *Error {
	return &Error{
		Kind:     kind,
		File:     p.file,
		Pos:      pos,
		Expected: expected,
		Got:      got,
	}
}

func isNameChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

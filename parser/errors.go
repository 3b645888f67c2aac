package parser

import (
	"fmt"
	"strings"

	"github.com/dhamidi/markup/dom"
)

type ErrorKind int

const (
	KindInvalidTag ErrorKind = iota + 1
	KindUnexpectedEOF
	KindMismatchedClosingTag
	KindInvalidAttributeValue
	KindDepthExceeded
)

var errorKindNames = map[ErrorKind]string{
	KindInvalidTag:            "InvalidTag",
	KindUnexpectedEOF:         "UnexpectedEOF",
	KindMismatchedClosingTag:  "MismatchedClosingTag",
	KindInvalidAttributeValue: "InvalidAttributeValue",
	KindDepthExceeded:         "DepthExceeded",
}

var errorKindMessages = map[ErrorKind]string{
	KindInvalidTag:            "invalid tag",
	KindUnexpectedEOF:         "unexpected end of input",
	KindMismatchedClosingTag:  "mismatched closing tag",
	KindInvalidAttributeValue: "invalid attribute value",
	KindDepthExceeded:         "nesting too deep",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrInvalidTag            = &Error{Kind: KindInvalidTag}
	ErrUnexpectedEOF         = &Error{Kind: KindUnexpectedEOF}
	ErrMismatchedClosingTag  = &Error{Kind: KindMismatchedClosingTag}
	ErrInvalidAttributeValue = &Error{Kind: KindInvalidAttributeValue}
	ErrDepthExceeded         = &Error{Kind: KindDepthExceeded}
)

// Error is returned for every malformed input. The first error aborts the parse.
type Error struct {
	Kind     ErrorKind
	File     string
	Pos      dom.Position
	Expected string
	Got      string
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
		b.WriteString(":")
	}
	if !e.Pos.IsZero() {
		fmt.Fprintf(&b, "%d:%d: ", e.Pos.Line, e.Pos.Column)
	} else if e.File != "" {
		b.WriteString(" ")
	}
	b.WriteString(e.Detail())
	return b.String()
}

// Detail is the message with the expected and actual input, without the
// location prefix.
func (e *Error) Detail() string {
	var b strings.Builder
	b.WriteString(e.Message())
	if e.Expected != "" {
		fmt.Fprintf(&b, " (expected: %s)", e.Expected)
	}
	if e.Got != "" {
		fmt.Fprintf(&b, " (got: %s)", e.Got)
	}
	return b.String()
}

// Message is the human-readable description of the error kind.
func (e *Error) Message() string {
	if msg, ok := errorKindMessages[e.Kind]; ok {
		return msg
	}
	return e.Kind.String()
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

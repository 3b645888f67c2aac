package parser

import (
	"io"
	"strconv"

	"github.com/dhamidi/markup/dom"
)

const DefaultMaxDepth = 256

type Option func(*Parser)

// WithFile names the input in error messages.
func WithFile(path string) Option {
	return func(p *Parser) {
		p.file = path
	}
}

// WithPositions records a source span on every node.
func WithPositions() Option {
	return func(p *Parser) {
		p.includePositions = true
	}
}

// WithMaxDepth limits element nesting. n <= 0 removes the limit.
func WithMaxDepth(n int) Option {
	return func(p *Parser) {
		p.maxDepth = n
	}
}

// WithPreserveWhitespace keeps whitespace-only runs inside elements as Text
// nodes instead of treating them as separators.
func WithPreserveWhitespace() Option {
	return func(p *Parser) {
		p.preserveWhitespace = true
	}
}

// Parser is a single-pass recursive-descent parser over an in-memory string.
// A Parser is not safe for concurrent use; use one per input.
type Parser struct {
	file               string
	includePositions   bool
	preserveWhitespace bool
	maxDepth           int

	input  string
	pos    int
	line   int
	column int
	depth  int
}

func New(input string, opts ...Option) *Parser {
	p := &Parser{
		maxDepth: DefaultMaxDepth,
		input:    input,
		line:     1,
		column:   1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses a single node from input.
func Parse(input string, opts ...Option) (dom.Node, error) {
	return New(input, opts...).Parse()
}

// ParseAll parses every top-level node in input.
func ParseAll(input string, opts ...Option) ([]dom.Node, error) {
	return New(input, opts...).ParseAll()
}

// ReadAll reads r to the end and parses every top-level node.
func ReadAll(r io.Reader, opts ...Option) ([]dom.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseAll(string(data), opts...)
}

// Parse consumes one complete node starting at the cursor. Whitespace in
// front of a tag is skipped; whitespace in front of text is kept.
func (p *Parser) Parse() (dom.Node, error) {
	return p.parseNode()
}

// ParseAll parses nodes until only whitespace remains. Empty input is an
// UnexpectedEOF error.
func (p *Parser) ParseAll() ([]dom.Node, error) {
	var nodes []dom.Node
	for {
		if len(nodes) > 0 && p.whitespaceEnd() == len(p.input) {
			p.skipWhitespace()
			return nodes, nil
		}
		node, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
}

func (p *Parser) parseNode() (dom.Node, error) {
	p.skipSeparator()

	if p.eof() {
		return nil, p.errorf(KindUnexpectedEOF, "node", "")
	}
	if p.match("<!--") {
		return p.parseComment()
	}
	if p.match("<") {
		return p.parseElement()
	}
	return p.parseText(), nil
}

func (p *Parser) parseComment() (dom.Node, error) {
	start := p.Position()
	if err := p.expect("<!--"); err != nil {
		return nil, err
	}
	data := p.readUntil("-->")
	if err := p.expect("-->"); err != nil {
		return nil, err
	}
	return dom.Comment{Data: data, Span: p.span(start)}, nil
}

func (p *Parser) parseElement() (dom.Node, error) {
	start := p.Position()

	p.depth++
	defer func() { p.depth-- }()
	if p.maxDepth > 0 && p.depth > p.maxDepth {
		return nil, p.errorAt(start, KindDepthExceeded, "at most "+strconv.Itoa(p.maxDepth)+" levels", "")
	}

	if err := p.expect("<"); err != nil {
		return nil, err
	}
	tagName := p.readWhile(isNameChar)

	attrs, err := p.parseAttributes()
	if err != nil {
		return nil, err
	}

	if p.match("/>") {
		p.advanceTo(p.pos + 2)
		return dom.Element{
			TagName:     tagName,
			Attributes:  attrs,
			SelfClosing: true,
			Span:        p.span(start),
		}, nil
	}
	if err := p.expect(">"); err != nil {
		return nil, err
	}

	var children []dom.Node
	for {
		p.skipSeparator()
		if p.match("</") {
			break
		}
		if p.eof() {
			return nil, p.errorf(KindUnexpectedEOF, "</"+tagName+">", "")
		}
		child, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	closeStart := p.Position()
	p.advanceTo(p.pos + 2)
	closingName := p.readWhile(isNameChar)
	if closingName != tagName {
		return nil, p.errorAt(closeStart, KindMismatchedClosingTag, "</"+tagName+">", "</"+closingName+">")
	}
	if err := p.expect(">"); err != nil {
		return nil, err
	}

	return dom.Element{
		TagName:    tagName,
		Attributes: attrs,
		Children:   children,
		Span:       p.span(start),
	}, nil
}

func (p *Parser) parseAttributes() ([]dom.Attribute, error) {
	var attrs []dom.Attribute
	for {
		p.skipWhitespace()
		if p.eof() {
			return nil, p.errorf(KindUnexpectedEOF, "\">\"", "")
		}
		if ch := p.peek(); ch == '>' || ch == '/' {
			return attrs, nil
		}

		name := p.readWhile(isNameChar)
		if err := p.expect("="); err != nil {
			return nil, err
		}
		value, err := p.parseAttributeValue()
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, dom.Attribute{Name: name, Value: value})
	}
}

func (p *Parser) parseAttributeValue() (string, error) {
	if p.eof() {
		return "", p.errorf(KindUnexpectedEOF, "quoted value", "")
	}
	quoteAt := p.Position()
	quote := p.advance()
	if quote != '"' && quote != '\'' {
		return "", p.errorAt(quoteAt, KindInvalidAttributeValue, "'\"' or \"'\"", strconv.QuoteRune(quote))
	}
	value := p.readWhile(func(r rune) bool { return r != quote })
	if p.eof() {
		return "", p.errorf(KindUnexpectedEOF, "closing "+strconv.QuoteRune(quote), "")
	}
	p.advance()
	return value, nil
}

func (p *Parser) parseText() dom.Node {
	start := p.Position()
	data := p.readWhile(func(r rune) bool { return r != '<' })
	return dom.Text{Data: data, Span: p.span(start)}
}

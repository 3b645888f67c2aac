package format

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/markup/dom"
)

// ErrUnrepresentable is returned for trees the parser could never have
// produced, such as an attribute value holding both quote characters.
var ErrUnrepresentable = errors.New("tree cannot be written as markup")

// MarkupEncoder writes nodes back as markup. Parsing the output yields a
// tree with the same shape.
type MarkupEncoder struct {
	w     io.Writer
	nodes []dom.Node
}

func NewMarkupEncoder(w io.Writer) *MarkupEncoder {
	return &MarkupEncoder{w: w}
}

func (e *MarkupEncoder) Encode(nodes ...dom.Node) error {
	e.nodes = nodes
	return write(e.w, e)
}

func (e *MarkupEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	for _, n := range e.nodes {
		if err := e.writeNode(&sb, n); err != nil {
			return nil, err
		}
	}
	return []byte(sb.String()), nil
}

func (e *MarkupEncoder) writeNode(sb *strings.Builder, n dom.Node) error {
	switch v := n.(type) {
	case dom.Element:
		return e.writeElement(sb, v)
	case dom.Text:
		if strings.Contains(v.Data, "<") {
			return fmt.Errorf("%w: text contains '<'", ErrUnrepresentable)
		}
		sb.WriteString(v.Data)
	case dom.Comment:
		if strings.Contains(v.Data, "-->") {
			return fmt.Errorf("%w: comment contains '-->'", ErrUnrepresentable)
		}
		sb.WriteString("<!--")
		sb.WriteString(v.Data)
		sb.WriteString("-->")
	default:
		return fmt.Errorf("%w: unknown node %T", ErrUnrepresentable, n)
	}
	return nil
}

func (e *MarkupEncoder) writeElement(sb *strings.Builder, el dom.Element) error {
	if el.SelfClosing && len(el.Children) > 0 {
		return fmt.Errorf("%w: self-closing <%s> has children", ErrUnrepresentable, el.TagName)
	}

	sb.WriteString("<")
	sb.WriteString(el.TagName)
	for _, a := range el.Attributes {
		quote, err := quoteFor(a.Value)
		if err != nil {
			return fmt.Errorf("attribute %s of <%s>: %w", a.Name, el.TagName, err)
		}
		sb.WriteString(" ")
		sb.WriteString(a.Name)
		sb.WriteString("=")
		sb.WriteByte(quote)
		sb.WriteString(a.Value)
		sb.WriteByte(quote)
	}

	if el.SelfClosing {
		sb.WriteString("/>")
		return nil
	}
	sb.WriteString(">")
	for _, child := range el.Children {
		if err := e.writeNode(sb, child); err != nil {
			return err
		}
	}
	sb.WriteString("</")
	sb.WriteString(el.TagName)
	sb.WriteString(">")
	return nil
}

func quoteFor(value string) (byte, error) {
	hasDouble := strings.Contains(value, `"`)
	hasSingle := strings.Contains(value, "'")
	switch {
	case hasDouble && hasSingle:
		return 0, fmt.Errorf("%w: value holds both quote characters", ErrUnrepresentable)
	case hasDouble:
		return '\'', nil
	default:
		return '"', nil
	}
}

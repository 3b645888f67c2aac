// Package dom defines the tree produced by the markup parser.
package dom

// Node is the interface implemented by Element, Text and Comment.
// The set of variants is closed; consumers switch on the concrete type.
type Node interface {
	node()
	// NodeSpan returns the source range of the node. It is the zero Span
	// unless the parser was asked to record positions.
	NodeSpan() Span
}

// Element is a tagged container with attributes and children.
type Element struct {
	TagName    string
	Attributes []Attribute
	Children   []Node

	// SelfClosing is set when the element was written as <tag ... />.
	// A self-closing element never has children.
	SelfClosing bool

	Span Span
}

func (Element) node() {}

func (e Element) NodeSpan() Span { return e.Span }

// Attribute is a single name/value pair in document order.
type Attribute struct {
	Name  string
	Value string
}

// Text is raw character data between tags.
type Text struct {
	Data string
	Span Span
}

func (Text) node() {}

func (t Text) NodeSpan() Span { return t.Span }

// Comment holds the exact content between <!-- and -->.
type Comment struct {
	Data string
	Span Span
}

func (Comment) node() {}

func (c Comment) NodeSpan() Span { return c.Span }

// NewElement returns an element with no attributes and no children.
func NewElement(tagName string) Element {
	return Element{TagName: tagName}
}

// WithAttributes returns an element with the given attributes and no children.
func WithAttributes(tagName string, attrs []Attribute) Element {
	return Element{TagName: tagName, Attributes: attrs}
}

// Attr returns the value of the first attribute called name.
// Duplicate attributes are kept by the parser; later ones do not override.
func (e Element) Attr(name string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Walk visits n and its descendants in document order. If fn returns false
// for an element, its children are skipped.
func Walk(n Node, fn func(n Node, depth int) bool) {
	walk(n, 0, fn)
}

func walk(n Node, depth int, fn func(Node, int) bool) {
	if !fn(n, depth) {
		return
	}
	if el, ok := n.(Element); ok {
		for _, child := range el.Children {
			walk(child, depth+1, fn)
		}
	}
}

package format

import (
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/dhamidi/markup/dom"
)

var (
	colorTag     = lipgloss.Color("#7C3AED")
	colorAttr    = lipgloss.Color("#F59E0B")
	colorValue   = lipgloss.Color("#10B981")
	colorMuted   = lipgloss.Color("#6B7280")
	colorConnect = lipgloss.Color("#374151")
)

type treeStyles struct {
	tag       lipgloss.Style
	attrName  lipgloss.Style
	attrValue lipgloss.Style
	text      lipgloss.Style
	comment   lipgloss.Style
	connector lipgloss.Style
}

func newTreeStyles(color bool) treeStyles {
	if !color {
		plain := lipgloss.NewStyle()
		return treeStyles{plain, plain, plain, plain, plain, plain.PaddingRight(1)}
	}
	return treeStyles{
		tag:       lipgloss.NewStyle().Foreground(colorTag).Bold(true),
		attrName:  lipgloss.NewStyle().Foreground(colorAttr),
		attrValue: lipgloss.NewStyle().Foreground(colorValue),
		text:      lipgloss.NewStyle(),
		comment:   lipgloss.NewStyle().Foreground(colorMuted).Italic(true),
		connector: lipgloss.NewStyle().Foreground(colorConnect).PaddingRight(1),
	}
}

// TreeEncoder renders an indented outline with box-drawing connectors.
type TreeEncoder struct {
	w      io.Writer
	styles treeStyles
	nodes  []dom.Node
}

func NewTreeEncoder(w io.Writer, color bool) *TreeEncoder {
	return &TreeEncoder{w: w, styles: newTreeStyles(color)}
}

func (e *TreeEncoder) Encode(nodes ...dom.Node) error {
	e.nodes = nodes
	return write(e.w, e)
}

func (e *TreeEncoder) MarshalText() ([]byte, error) {
	var out string
	if len(e.nodes) == 1 {
		if el, ok := e.nodes[0].(dom.Element); ok {
			out = e.element(el).String()
		} else {
			out = e.label(e.nodes[0])
		}
	} else {
		t := tree.New()
		for _, n := range e.nodes {
			e.addChild(t, n)
		}
		out = t.String()
	}
	return []byte(out + "\n"), nil
}

func (e *TreeEncoder) element(el dom.Element) *tree.Tree {
	t := tree.Root(e.label(el)).EnumeratorStyle(e.styles.connector)
	for _, child := range el.Children {
		e.addChild(t, child)
	}
	return t
}

func (e *TreeEncoder) addChild(t *tree.Tree, n dom.Node) {
	if el, ok := n.(dom.Element); ok && len(el.Children) > 0 {
		t.Child(e.element(el))
		return
	}
	t.Child(e.label(n))
}

func (e *TreeEncoder) label(n dom.Node) string {
	s := e.styles
	switch v := n.(type) {
	case dom.Element:
		var b strings.Builder
		b.WriteString(s.tag.Render("<" + v.TagName))
		for _, a := range v.Attributes {
			b.WriteString(" ")
			b.WriteString(s.attrName.Render(a.Name))
			b.WriteString("=")
			b.WriteString(s.attrValue.Render(strconv.Quote(a.Value)))
		}
		if v.SelfClosing {
			b.WriteString(s.tag.Render("/>"))
		} else {
			b.WriteString(s.tag.Render(">"))
		}
		return b.String()
	case dom.Text:
		return s.text.Render(strconv.Quote(v.Data))
	case dom.Comment:
		return s.comment.Render("<!--" + v.Data + "-->")
	}
	return ""
}

package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dhamidi/markup/dom"
)

// LineEncoder writes one tab-separated line per node:
//
//	depth	kind	name-or-data	attributes	position
type LineEncoder struct {
	w     io.Writer
	nodes []dom.Node
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(nodes ...dom.Node) error {
	e.nodes = nodes
	return write(e.w, e)
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	for _, root := range e.nodes {
		dom.Walk(root, func(n dom.Node, depth int) bool {
			switch v := n.(type) {
			case dom.Element:
				fmt.Fprintf(&sb, "%d\telement\t%s\t%s\t%s\n", depth, v.TagName, e.attributesStr(v.Attributes), e.positionStr(n))
			case dom.Text:
				fmt.Fprintf(&sb, "%d\ttext\t%s\t\t%s\n", depth, strconv.Quote(v.Data), e.positionStr(n))
			case dom.Comment:
				fmt.Fprintf(&sb, "%d\tcomment\t%s\t\t%s\n", depth, strconv.Quote(v.Data), e.positionStr(n))
			}
			return true
		})
	}
	return []byte(sb.String()), nil
}

func (e *LineEncoder) attributesStr(attrs []dom.Attribute) string {
	parts := make([]string, len(attrs))
	for i, a := range attrs {
		parts[i] = a.Name + "=" + strconv.Quote(a.Value)
	}
	return strings.Join(parts, " ")
}

func (e *LineEncoder) positionStr(n dom.Node) string {
	span := n.NodeSpan()
	if span.IsZero() {
		return ""
	}
	return span.Start.String()
}

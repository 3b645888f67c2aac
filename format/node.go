package format

import "github.com/dhamidi/markup/dom"

// treeNode is the document shape shared by the JSON and YAML encoders.
type treeNode struct {
	Kind        string          `json:"kind" yaml:"kind"`
	Tag         string          `json:"tag,omitempty" yaml:"tag,omitempty"`
	Attributes  []treeAttribute `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	SelfClosing bool            `json:"selfClosing,omitempty" yaml:"selfClosing,omitempty"`
	Data        string          `json:"data,omitempty" yaml:"data,omitempty"`
	Span        *treeSpan       `json:"span,omitempty" yaml:"span,omitempty"`
	Children    []*treeNode     `json:"children,omitempty" yaml:"children,omitempty"`
}

type treeAttribute struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

type treeSpan struct {
	Start treePosition `json:"start" yaml:"start"`
	End   treePosition `json:"end" yaml:"end"`
}

type treePosition struct {
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

func toTree(n dom.Node) *treeNode {
	tn := &treeNode{}
	if span := n.NodeSpan(); !span.IsZero() {
		tn.Span = &treeSpan{
			Start: treePosition{Line: span.Start.Line, Column: span.Start.Column},
			End:   treePosition{Line: span.End.Line, Column: span.End.Column},
		}
	}

	switch v := n.(type) {
	case dom.Element:
		tn.Kind = "element"
		tn.Tag = v.TagName
		tn.SelfClosing = v.SelfClosing
		for _, a := range v.Attributes {
			tn.Attributes = append(tn.Attributes, treeAttribute{Name: a.Name, Value: a.Value})
		}
		for _, child := range v.Children {
			tn.Children = append(tn.Children, toTree(child))
		}
	case dom.Text:
		tn.Kind = "text"
		tn.Data = v.Data
	case dom.Comment:
		tn.Kind = "comment"
		tn.Data = v.Data
	}
	return tn
}

// toDocument returns a single tree for one node and a list otherwise.
func toDocument(nodes []dom.Node) any {
	if len(nodes) == 1 {
		return toTree(nodes[0])
	}
	list := make([]*treeNode, len(nodes))
	for i, n := range nodes {
		list[i] = toTree(n)
	}
	return list
}

package format

import (
	"bytes"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dhamidi/markup/dom"
)

type YAMLEncoder struct {
	w      io.Writer
	indent int
	nodes  []dom.Node
}

func NewYAMLEncoder(w io.Writer, indent int) *YAMLEncoder {
	if indent <= 0 {
		indent = 2
	}
	return &YAMLEncoder{w: w, indent: indent}
}

func (e *YAMLEncoder) Encode(nodes ...dom.Node) error {
	e.nodes = nodes
	return write(e.w, e)
}

func (e *YAMLEncoder) MarshalText() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(e.indent)
	if err := enc.Encode(toDocument(e.nodes)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

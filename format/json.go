package format

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/dhamidi/markup/dom"
)

type JSONEncoder struct {
	w      io.Writer
	indent int
	nodes  []dom.Node
}

func NewJSONEncoder(w io.Writer, indent int) *JSONEncoder {
	if indent <= 0 {
		indent = 2
	}
	return &JSONEncoder{w: w, indent: indent}
}

func (e *JSONEncoder) Encode(nodes ...dom.Node) error {
	e.nodes = nodes
	return write(e.w, e)
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	data, err := json.MarshalIndent(toDocument(e.nodes), "", strings.Repeat(" ", e.indent))
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

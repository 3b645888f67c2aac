// Package format writes dom trees as JSON, YAML, a terminal outline,
// tab-separated lines, or markup text.
package format

import (
	"encoding"
	"fmt"
	"io"
	"sort"

	"github.com/dhamidi/markup/dom"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(nodes ...dom.Node) error
}

// Options tune encoders that support them; the zero value is valid.
type Options struct {
	Color  bool // TreeEncoder: style output with colours
	Indent int  // JSONEncoder, YAMLEncoder: spaces per level, default 2
}

var encoders = map[string]func(io.Writer, Options) Encoder{
	"json":   func(w io.Writer, o Options) Encoder { return NewJSONEncoder(w, o.Indent) },
	"yaml":   func(w io.Writer, o Options) Encoder { return NewYAMLEncoder(w, o.Indent) },
	"tree":   func(w io.Writer, o Options) Encoder { return NewTreeEncoder(w, o.Color) },
	"line":   func(w io.Writer, o Options) Encoder { return NewLineEncoder(w) },
	"markup": func(w io.Writer, o Options) Encoder { return NewMarkupEncoder(w) },
}

// Names lists the supported format names in sorted order.
func Names() []string {
	names := make([]string, 0, len(encoders))
	for name := range encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewEncoder returns the encoder registered under name.
func NewEncoder(name string, w io.Writer, opts Options) (Encoder, error) {
	mk, ok := encoders[name]
	if !ok {
		return nil, fmt.Errorf("unknown format: %s", name)
	}
	return mk(w, opts), nil
}

func write(w io.Writer, m encoding.TextMarshaler) error {
	text, err := m.MarshalText()
	if err != nil {
		return err
	}
	_, err = w.Write(text)
	return err
}

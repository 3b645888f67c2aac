package lsp

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/markup/dom"
	"github.com/dhamidi/markup/parser"
)

const diagnosticSource = "markup"

// toProtocolPosition converts a parser position into a zero-based LSP
// position whose character counts UTF-16 code units.
func toProtocolPosition(content []byte, pos dom.Position) protocol.Position {
	if pos.IsZero() {
		return protocol.Position{}
	}
	offset := min(pos.Offset, len(content))
	lineStart := bytes.LastIndexByte(content[:offset], '\n') + 1
	return protocol.Position{
		Line:      protocol.UInteger(pos.Line - 1),
		Character: protocol.UInteger(utf16Len(content[lineStart:offset])),
	}
}

// fromProtocolPosition converts an LSP position into a one-based line and
// code point column.
func fromProtocolPosition(content []byte, pos protocol.Position) dom.Position {
	line := content
	for i := protocol.UInteger(0); i < pos.Line; i++ {
		idx := bytes.IndexByte(line, '\n')
		if idx < 0 {
			line = nil
			break
		}
		line = line[idx+1:]
	}
	if idx := bytes.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}

	column := 1
	units := protocol.UInteger(0)
	for len(line) > 0 && units < pos.Character {
		r, size := utf8.DecodeRune(line)
		units += protocol.UInteger(utf16.RuneLen(r))
		line = line[size:]
		column++
	}
	return dom.Position{Line: int(pos.Line) + 1, Column: column}
}

func utf16Len(b []byte) int {
	n := 0
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
		b = b[size:]
	}
	return n
}

func toProtocolRange(content []byte, span dom.Span) protocol.Range {
	return protocol.Range{
		Start: toProtocolPosition(content, span.Start),
		End:   toProtocolPosition(content, span.End),
	}
}

// diagnosticsFor returns the diagnostics for a parse result. A parse stops
// at the first error, so there is at most one.
func diagnosticsFor(content []byte, err error) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}
	if err == nil {
		return diagnostics
	}

	severity := protocol.DiagnosticSeverityError
	source := diagnosticSource
	diag := protocol.Diagnostic{
		Severity: &severity,
		Source:   &source,
		Message:  err.Error(),
	}

	var perr *parser.Error
	if errors.As(err, &perr) {
		start := toProtocolPosition(content, perr.Pos)
		end := start
		if perr.Pos.Offset < len(content) && content[perr.Pos.Offset] != '\n' {
			r, _ := utf8.DecodeRune(content[perr.Pos.Offset:])
			end.Character += protocol.UInteger(max(utf16.RuneLen(r), 1))
		}
		diag.Range = protocol.Range{Start: start, End: end}
		diag.Code = &protocol.IntegerOrString{Value: perr.Kind.String()}
		diag.Message = perr.Detail()
	}
	return append(diagnostics, diag)
}

// documentSymbols builds an outline of the elements in nodes.
func documentSymbols(content []byte, nodes []dom.Node) []protocol.DocumentSymbol {
	symbols := []protocol.DocumentSymbol{}
	for _, n := range nodes {
		el, ok := n.(dom.Element)
		if !ok {
			continue
		}
		symbols = append(symbols, elementSymbol(content, el))
	}
	return symbols
}

func elementSymbol(content []byte, el dom.Element) protocol.DocumentSymbol {
	rng := toProtocolRange(content, el.Span)
	selection := protocol.Range{Start: rng.Start, End: rng.Start}
	selection.End.Character += protocol.UInteger(1 + utf16Len([]byte(el.TagName)))

	sym := protocol.DocumentSymbol{
		Name:           el.TagName,
		Kind:           protocol.SymbolKindClass,
		Range:          rng,
		SelectionRange: selection,
	}
	if detail := attributeSummary(el.Attributes); detail != "" {
		sym.Detail = &detail
	}
	for _, child := range el.Children {
		if c, ok := child.(dom.Element); ok {
			sym.Children = append(sym.Children, elementSymbol(content, c))
		}
	}
	return sym
}

func attributeSummary(attrs []dom.Attribute) string {
	parts := make([]string, len(attrs))
	for i, a := range attrs {
		parts[i] = a.Name + `="` + a.Value + `"`
	}
	return strings.Join(parts, " ")
}

package lsp

import (
	"reflect"
	"testing"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/markup/dom"
	"github.com/dhamidi/markup/parser"
)

const testURI = "file:///workspace/page.html"

type published struct {
	method string
	params protocol.PublishDiagnosticsParams
}

func newContext(out *[]published) *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {
			*out = append(*out, published{method, params.(protocol.PublishDiagnosticsParams)})
		},
	}
}

func open(t *testing.T, ls *Server, ctx *glsp.Context, text string) {
	t.Helper()
	err := ls.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: testURI, LanguageID: "html", Text: text},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestDiagnosticsLifecycle(t *testing.T) {
	var out []published
	ctx := newContext(&out)
	ls := NewServer("test")

	open(t, ls, ctx, "<a><b></a>")
	if len(out) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(out))
	}
	if out[0].method != protocol.ServerTextDocumentPublishDiagnostics {
		t.Errorf("expected publishDiagnostics, got %s", out[0].method)
	}
	diags := out[0].params.Diagnostics
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	d := diags[0]
	if d.Code == nil || d.Code.Value != "MismatchedClosingTag" {
		t.Errorf("expected code MismatchedClosingTag, got %+v", d.Code)
	}
	if d.Source == nil || *d.Source != "markup" {
		t.Errorf("expected source markup, got %v", d.Source)
	}
	if d.Message != "mismatched closing tag (expected: </b>) (got: </a>)" {
		t.Errorf("unexpected message %q", d.Message)
	}
	wantRange := protocol.Range{
		Start: protocol.Position{Line: 0, Character: 6},
		End:   protocol.Position{Line: 0, Character: 7},
	}
	if d.Range != wantRange {
		t.Errorf("expected range %+v, got %+v", wantRange, d.Range)
	}

	err := ls.textDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument:   protocol.VersionedTextDocumentIdentifier{TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: testURI}, Version: 2},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "<a><b></b></a>"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || len(out[1].params.Diagnostics) != 0 {
		t.Fatalf("expected cleared diagnostics after fix, got %+v", out)
	}

	text := "<a>"
	if err := ls.textDocumentDidSave(ctx, &protocol.DidSaveTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
		Text:         &text,
	}); err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 || len(out[2].params.Diagnostics) != 1 {
		t.Fatalf("expected one diagnostic after save, got %+v", out)
	}
	if out[2].params.Diagnostics[0].Code.Value != "UnexpectedEOF" {
		t.Errorf("expected UnexpectedEOF, got %v", out[2].params.Diagnostics[0].Code.Value)
	}

	if err := ls.textDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	}); err != nil {
		t.Fatal(err)
	}
	if len(out) != 4 || out[3].params.Diagnostics == nil || len(out[3].params.Diagnostics) != 0 {
		t.Errorf("expected empty diagnostics on close, got %+v", out)
	}
}

func TestDocumentSymbol(t *testing.T) {
	var out []published
	ctx := newContext(&out)
	ls := NewServer("test")
	open(t, ls, ctx, "<html>\n  <body id=\"b\"><p>x</p></body>\n</html>")

	result, err := ls.textDocumentDocumentSymbol(ctx, &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	})
	if err != nil {
		t.Fatal(err)
	}
	symbols := result.([]protocol.DocumentSymbol)
	if len(symbols) != 1 || symbols[0].Name != "html" {
		t.Fatalf("expected html root, got %+v", symbols)
	}
	body := symbols[0].Children[0]
	if body.Name != "body" || body.Detail == nil || *body.Detail != `id="b"` {
		t.Errorf("expected body with detail, got %+v", body)
	}
	if body.Range.Start != (protocol.Position{Line: 1, Character: 2}) {
		t.Errorf("expected body at 1:2, got %+v", body.Range.Start)
	}
	if body.SelectionRange.End != (protocol.Position{Line: 1, Character: 7}) {
		t.Errorf("expected selection to end after tag name, got %+v", body.SelectionRange.End)
	}
	if len(body.Children) != 1 || body.Children[0].Name != "p" {
		t.Errorf("expected p child, got %+v", body.Children)
	}
}

func TestDocumentSymbolBrokenFile(t *testing.T) {
	var out []published
	ctx := newContext(&out)
	ls := NewServer("test")
	open(t, ls, ctx, "<html>")

	result, err := ls.textDocumentDocumentSymbol(ctx, &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	})
	if err != nil {
		t.Fatal(err)
	}
	if symbols := result.([]protocol.DocumentSymbol); len(symbols) != 0 {
		t.Errorf("expected no symbols, got %+v", symbols)
	}
}

func TestHover(t *testing.T) {
	var out []published
	ctx := newContext(&out)
	ls := NewServer("test")
	open(t, ls, ctx, "<html>\n  <body id=\"b\"><p>x</p></body>\n</html>")

	hover := func(line, char protocol.UInteger) *protocol.Hover {
		h, err := ls.textDocumentHover(ctx, &protocol.HoverParams{
			TextDocumentPositionParams: protocol.TextDocumentPositionParams{
				TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
				Position:     protocol.Position{Line: line, Character: char},
			},
		})
		if err != nil {
			t.Fatal(err)
		}
		return h
	}

	h := hover(1, 18)
	if h == nil {
		t.Fatal("expected hover")
	}
	content := h.Contents.(protocol.MarkupContent)
	if content.Value != "`html > body > p`" {
		t.Errorf("expected element path, got %q", content.Value)
	}
	if h.Range.Start != (protocol.Position{Line: 1, Character: 15}) {
		t.Errorf("expected range at p, got %+v", h.Range.Start)
	}

	if h := hover(5, 0); h != nil {
		t.Errorf("expected no hover outside elements, got %+v", h)
	}
}

func TestPositionConversion(t *testing.T) {
	content := []byte("a\n<x>é😀</x>")
	tests := []struct {
		pos      dom.Position
		expected protocol.Position
	}{
		{dom.Position{Offset: 0, Line: 1, Column: 1}, protocol.Position{Line: 0, Character: 0}},
		{dom.Position{Offset: 2, Line: 2, Column: 1}, protocol.Position{Line: 1, Character: 0}},
		{dom.Position{Offset: 11, Line: 2, Column: 6}, protocol.Position{Line: 1, Character: 6}},
	}

	for _, tt := range tests {
		got := toProtocolPosition(content, tt.pos)
		if got != tt.expected {
			t.Errorf("%s: expected %+v, got %+v", tt.pos, tt.expected, got)
		}
		back := fromProtocolPosition(content, got)
		if back.Line != tt.pos.Line || back.Column != tt.pos.Column {
			t.Errorf("%s: expected round trip, got %s", tt.pos, back)
		}
	}
}

func TestURIToPath(t *testing.T) {
	tests := map[string]string{
		"file:///tmp/a%20b.html": "/tmp/a b.html",
		"inmemory://model/1":     "inmemory://model/1",
	}
	for uri, want := range tests {
		got, err := uriToPath(uri)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	}
}

func TestDiagnosticsForNil(t *testing.T) {
	got := diagnosticsFor(nil, nil)
	if got == nil || !reflect.DeepEqual(got, []protocol.Diagnostic{}) {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestDiagnosticRangeCoversRune(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected protocol.Range
	}{
		{"ascii", "<a x=1>", protocol.Range{Start: protocol.Position{Character: 5}, End: protocol.Position{Character: 6}}},
		{"surrogate pair", "<a x=😀>", protocol.Range{Start: protocol.Position{Character: 5}, End: protocol.Position{Character: 7}}},
		{"end of input", "<a", protocol.Range{Start: protocol.Position{Character: 2}, End: protocol.Position{Character: 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ParseAll(tt.input, parser.WithPositions())
			if err == nil {
				t.Fatal("expected parse error")
			}
			got := diagnosticsFor([]byte(tt.input), err)
			if len(got) != 1 {
				t.Fatalf("expected 1 diagnostic, got %d", len(got))
			}
			if got[0].Range != tt.expected {
				t.Errorf("expected %+v, got %+v", tt.expected, got[0].Range)
			}
		})
	}
}

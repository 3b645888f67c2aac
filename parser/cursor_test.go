package parser

import "testing"

func TestAdvanceMultiByte(t *testing.T) {
	p := New("é☃\nx")

	if r := p.advance(); r != 'é' {
		t.Fatalf("expected 'é', got %q", r)
	}
	if p.pos != 2 || p.column != 2 {
		t.Errorf("expected offset 2 column 2, got offset %d column %d", p.pos, p.column)
	}

	if r := p.advance(); r != '☃' {
		t.Fatalf("expected '☃', got %q", r)
	}
	if p.pos != 5 {
		t.Errorf("expected offset 5, got %d", p.pos)
	}

	p.advance()
	if p.line != 2 || p.column != 1 {
		t.Errorf("expected 2:1 after newline, got %d:%d", p.line, p.column)
	}

	p.advance()
	if !p.eof() {
		t.Fatal("expected eof")
	}
	if r := p.advance(); r != 0 {
		t.Errorf("expected 0 past end, got %q", r)
	}
	if p.peek() != 0 {
		t.Errorf("expected peek 0 at end, got %q", p.peek())
	}
}

func TestMatchDoesNotConsume(t *testing.T) {
	p := New("<!-- c -->")
	if !p.match("<!--") {
		t.Fatal("expected match")
	}
	if p.match("<!---->") {
		t.Error("did not expect longer literal to match")
	}
	if p.pos != 0 {
		t.Errorf("expected cursor unchanged, got %d", p.pos)
	}
}

func TestExpect(t *testing.T) {
	tests := []struct {
		input   string
		literal string
		kind    ErrorKind
	}{
		{"-->", "-->", 0},
		{"--", "-->", KindUnexpectedEOF},
		{"", ">", KindUnexpectedEOF},
		{"x", ">", KindInvalidTag},
		{"-x>", "-->", KindInvalidTag},
	}

	for _, tt := range tests {
		t.Run(tt.input+"/"+tt.literal, func(t *testing.T) {
			p := New(tt.input)
			err := p.expect(tt.literal)
			if tt.kind == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !p.eof() {
					t.Errorf("expected literal to be consumed, remaining %q", p.Remaining())
				}
				return
			}
			perr, ok := err.(*Error)
			if !ok {
				t.Fatalf("expected *Error, got %v", err)
			}
			if perr.Kind != tt.kind {
				t.Errorf("expected %v, got %v", tt.kind, perr.Kind)
			}
		})
	}
}

func TestSkipSeparator(t *testing.T) {
	tests := []struct {
		input string
		rest  string
	}{
		{"   <a>", "<a>"},
		{"  \n", ""},
		{"  text", "  text"},
		{"text", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := New(tt.input)
			p.skipSeparator()
			if p.Remaining() != tt.rest {
				t.Errorf("expected %q, got %q", tt.rest, p.Remaining())
			}
		})
	}
}

func TestErrorKindString(t *testing.T) {
	if KindMismatchedClosingTag.String() != "MismatchedClosingTag" {
		t.Errorf("unexpected name %q", KindMismatchedClosingTag.String())
	}
	if ErrorKind(99).String() != "ErrorKind(99)" {
		t.Errorf("unexpected name %q", ErrorKind(99).String())
	}
}

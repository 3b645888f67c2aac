// Package parser turns a markup fragment into a dom tree.
//
// # Overview
//
// The parser is a hand-written recursive-descent scanner. There is no
// separate tokenizer: a cursor walks the input once, left to right, one code
// point at a time, and each routine decides what to build from the text at
// the cursor.
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│   Input     │────▶│   Cursor    │────▶│  dom.Node   │
//	│  (string)   │     │ (code pts)  │     │   (tree)    │
//	└─────────────┘     └─────────────┘     └─────────────┘
//
// # Grammar
//
//	node      = comment | element | text
//	comment   = "<!--" { any } "-->"
//	element   = "<" name { attribute } ( "/>" | ">" { node } "</" name ">" )
//	attribute = name "=" ( '"' { not '"' } '"' | "'" { not "'" } "'" )
//	text      = { not "<" }
//	name      = { letter | digit }
//
// Whitespace between attributes is ignored. Whitespace between nodes is a
// separator when it is followed by a tag or by the end of input; whitespace
// in front of text is part of the text. So by default whitespace-only runs
// between tags are dropped, and <a> <b/> </a> has a single child.
// WithPreserveWhitespace turns every whitespace run inside an element into
// a Text node, giving <a> <b/> </a> three children.
//
// # Errors
//
// Parsing stops at the first problem and returns an *Error. Its Kind is one of
//
//   - KindUnexpectedEOF: input ended inside a comment, tag, attribute value
//     or child list
//   - KindInvalidTag: a required literal ("<", "=", ">", "-->") was missing
//   - KindMismatchedClosingTag: the closing name differs from the opening
//     name (compared byte for byte)
//   - KindInvalidAttributeValue: the value did not start with a quote
//   - KindDepthExceeded: nesting went past the WithMaxDepth limit
//
// The sentinels ErrUnexpectedEOF and friends match with errors.Is.
//
// # Usage
//
//	node, err := parser.Parse(`<div class="box"><p>hi</p></div>`)
//	if errors.Is(err, parser.ErrMismatchedClosingTag) {
//	    ...
//	}
package parser

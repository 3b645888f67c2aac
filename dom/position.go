package dom

import "fmt"

// Position is a location in the parsed input.
type Position struct {
	Offset int // byte offset from the start of input
	Line   int // 1-based
	Column int // 1-based, counted in code points
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsZero reports whether the position was never set.
func (p Position) IsZero() bool {
	return p.Line == 0
}

// Before reports whether p comes strictly before q.
func (p Position) Before(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Column < q.Column
}

type Span struct {
	Start Position
	End   Position
}

func (s Span) IsZero() bool {
	return s.Start.IsZero() && s.End.IsZero()
}

// Contains reports whether pos lies in [Start, End).
func (s Span) Contains(pos Position) bool {
	if s.IsZero() {
		return false
	}
	return !pos.Before(s.Start) && pos.Before(s.End)
}

// Package ast defines the YAML document tree produced by the parser and
// rewritten by the semantic analyzer.
package ast

import (
	"fmt"

	shapeast "github.com/shapestone/shape-core/pkg/ast"
)

// Position is a location in the source text.
// Line and Column are 1-based, Offset is a 0-based byte offset.
type Position struct {
	Line   int
	Column int
	Offset int
}

// StartPosition is the position of the first character of any input.
func StartPosition() Position {
	return Position{Line: 1, Column: 1}
}

// IsValid reports whether the position points into a source text.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Before reports whether p is strictly before q in the source.
func (p Position) Before(q Position) bool {
	return p.Offset < q.Offset
}

// String renders the position the way error messages print it.
func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// SchemaPosition converts p to the shape-core position type.
func (p Position) SchemaPosition() shapeast.Position {
	return shapeast.NewPosition(p.Offset, p.Line, p.Column)
}

// Span is a half-open region [Start, End) of the source text.
type Span struct {
	Start Position
	End   Position
}

// NewSpan returns the span between start and end, swapping them if needed.
func NewSpan(start, end Position) Span {
	if end.Before(start) {
		start, end = end, start
	}
	return Span{Start: start, End: end}
}

// Len is the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End.Offset - s.Start.Offset
}

// IsEmpty reports whether the span covers no bytes.
func (s Span) IsEmpty() bool {
	return s.Len() <= 0
}

// Contains reports whether p falls inside the span.
func (s Span) Contains(p Position) bool {
	return s.Start.Offset <= p.Offset && p.Offset < s.End.Offset
}

// Overlaps reports whether the two spans share at least one byte.
func (s Span) Overlaps(o Span) bool {
	return s.Start.Offset < o.End.Offset && o.Start.Offset < s.End.Offset
}

// Merge returns the smallest span covering both s and o.
func (s Span) Merge(o Span) Span {
	out := s
	if o.Start.Before(out.Start) {
		out.Start = o.Start
	}
	if out.End.Before(o.End) {
		out.End = o.End
	}
	return out
}

// String renders the span as "start-end".
func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

package token

import "unicode/utf8"

// Source is a named piece of program text. Every Position derived from it
// points back to the same Source.
type Source struct {
	Name string
	Text string
}

// NewSource returns a Source for text labelled with name.
func NewSource(name, text string) *Source {
	return &Source{Name: name, Text: text}
}

// Start returns the position of the first rune of the source.
func (s *Source) Start() Position {
	return Position{Source: s}
}

// Position represents a location in the source code.
// Line and Column are 0-based; Offset is a byte offset into Source.Text.
type Position struct {
	Offset int
	Line   int
	Column int
	Source *Source
}

// Advance returns the position one rune past p. ch is the rune at p.
// Crossing a newline moves to column 0 of the next line.
func (p Position) Advance(ch rune) Position {
	n := utf8.RuneLen(ch)
	if n < 0 {
		n = 1
	}
	p.Offset += n
	if ch == '\n' {
		p.Line++
		p.Column = 0
	} else {
		p.Column++
	}
	return p
}

// AtEnd reports whether p is the end-of-input sentinel.
func (p Position) AtEnd() bool {
	return p.Source == nil || p.Offset >= len(p.Source.Text)
}

// Name returns the label of the source p belongs to.
func (p Position) Name() string {
	if p.Source == nil {
		return ""
	}
	return p.Source.Name
}

// Span represents a range in source code. End is exclusive.
type Span struct {
	Start Position
	End   Position
}

// Join returns the smallest span enclosing both a and b.
func Join(a, b Span) Span {
	s := a
	if b.Start.Offset < s.Start.Offset {
		s.Start = b.Start
	}
	if b.End.Offset > s.End.Offset {
		s.End = b.End
	}
	return s
}

// Contains returns true if the span contains the given offset.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start.Offset && offset < s.End.Offset
}

// Encloses reports whether s fully covers other.
func (s Span) Encloses(other Span) bool {
	return s.Start.Offset <= other.Start.Offset && other.End.Offset <= s.End.Offset
}

// Text returns the slice of source text covered by the span.
func (s Span) Text() string {
	src := s.Start.Source
	if src == nil {
		return ""
	}
	end := min(s.End.Offset, len(src.Text))
	start := min(s.Start.Offset, end)
	return src.Text[start:end]
}

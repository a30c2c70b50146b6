package ir

import (
	"fmt"
	"go/token"
)

// Positioner allows finding the location in the original source file.
// The easiest way to be a Positioner is to embed a Span
type Positioner interface {
	Pos() token.Pos // position of first character belonging to the node
	End() token.Pos // position of first character immediately after the node
}

// Span is the source range of the node that produced a type or constraint.
// It is opaque to inference and only carried through to diagnostics.
type Span struct {
	Lo token.Pos
	Hi token.Pos
}

var _ Positioner = Span{}

func (s Span) Pos() token.Pos { return s.Lo }
func (s Span) End() token.Pos { return s.Hi }
func (s Span) String() string {
	if s.Lo == s.Hi {
		return fmt.Sprintf("%v", s.Lo)
	}
	return fmt.Sprintf("%v-%v", s.Lo, s.Hi)
}

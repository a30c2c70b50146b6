package types

import (
	"fmt"

	"github.com/cottand/qtc/frontend/ir"
)

// Constraint is an obligation the Solver must discharge:
// ClassConstraint, EqConstraint or SupersetConstraint
type Constraint interface {
	fmt.Stringer
	isConstraint()
}

var (
	_ Constraint = ClassConstraint{}
	_ Constraint = EqConstraint{}
	_ Constraint = SupersetConstraint{}
)

// ClassConstraint requires the operands of Class to satisfy it
type ClassConstraint struct {
	Class Class
	Span  ir.Span
}

// EqConstraint requires Expected and Actual to unify
type EqConstraint struct {
	Expected ir.Ty
	Actual   ir.Ty
	Span     ir.Span
}

// SupersetConstraint requires Actual to support at least the functors in Expected
type SupersetConstraint struct {
	Expected ir.FunctorSetValue
	Actual   ir.FunctorSet
	Span     ir.Span
}

func (ClassConstraint) isConstraint()    {}
func (EqConstraint) isConstraint()       {}
func (SupersetConstraint) isConstraint() {}

func (c ClassConstraint) String() string {
	return fmt.Sprintf("class %s @ %s", c.Class, c.Span)
}

func (c EqConstraint) String() string {
	return fmt.Sprintf("%s == %s @ %s", c.Expected, c.Actual, c.Span)
}

func (c SupersetConstraint) String() string {
	return fmt.Sprintf("%s ⊑ %s @ %s", c.Expected, c.Actual, c.Span)
}

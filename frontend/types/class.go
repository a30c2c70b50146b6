package types

import (
	"fmt"

	"github.com/cottand/qtc/frontend/ilerr"
	"github.com/cottand/qtc/frontend/ir"
)

// Udts maps resolved user-defined type items to their declarations
type Udts map[ir.ItemId]*ir.UdtDecl

// Class is an ad-hoc polymorphism predicate over one or more types
type Class interface {
	// Name is the predicate name used in diagnostics, such as Add or HasField
	Name() string
	String() string

	// dependencies are the operands that must be known before the class can be checked
	dependencies() []ir.Ty
	mapTys(f func(ir.Ty) ir.Ty) Class
	check(udts Udts, span ir.Span) ([]Constraint, []ilerr.IleError)
}

var (
	_ Class = Add{}
	_ Class = Adj{}
	_ Class = Call{}
	_ Class = Ctl{}
	_ Class = Eq{}
	_ Class = Exp{}
	_ Class = HasField{}
	_ Class = HasIndex{}
	_ Class = Integral{}
	_ Class = Iterable{}
	_ Class = Num{}
	_ Class = Ord{}
	_ Class = Signed{}
	_ Class = Show{}
	_ Class = Unwrap{}
	_ Class = Sub{}
	_ Class = Mul{}
	_ Class = Div{}
	_ Class = Mod{}
	_ Class = Struct{}
)

// Add is satisfied by types supporting `+`
type Add struct{ Ty ir.Ty }

// Adj is satisfied by callables that have an Adjoint specialization
type Adj struct{ Ty ir.Ty }

// Call is satisfied when Callee can be called with Input, producing Output.
// When Input has holes, Output is the partially applied callable.
type Call struct {
	Callee ir.Ty
	Input  ArgTy
	Output ir.Ty
}

// Ctl is satisfied when Op has a Controlled specialization of type WithCtls
type Ctl struct {
	Op       ir.Ty
	WithCtls ir.Ty
}

// Eq is satisfied by types supporting `==`
type Eq struct{ Ty ir.Ty }

// Exp is satisfied when Base can be raised to Power
type Exp struct {
	Base  ir.Ty
	Power ir.Ty
}

type HasField struct {
	Record ir.Ty
	Field  string
	Item   ir.Ty
}

type HasIndex struct {
	Container ir.Ty
	Index     ir.Ty
	Item      ir.Ty
}

type Integral struct{ Ty ir.Ty }

type Iterable struct {
	Container ir.Ty
	Item      ir.Ty
}

type Num struct{ Ty ir.Ty }

// Ord is satisfied by types supporting `<` and friends
type Ord struct{ Ty ir.Ty }

// Signed is satisfied by types supporting unary negation
type Signed struct{ Ty ir.Ty }

// Show is satisfied by types that can be interpolated into strings
type Show struct{ Ty ir.Ty }

// Unwrap is satisfied when Wrapper is a UDT whose underlying type is Base
type Unwrap struct {
	Wrapper ir.Ty
	Base    ir.Ty
}

// Sub, Mul, Div and Mod are satisfied by the numeric types
type (
	Sub struct{ Ty ir.Ty }
	Mul struct{ Ty ir.Ty }
	Div struct{ Ty ir.Ty }
	Mod struct{ Ty ir.Ty }
)

// Struct is satisfied by UDTs whose items are all named fields
type Struct struct{ Record ir.Ty }

func (Add) Name() string      { return "Add" }
func (Adj) Name() string      { return "Adj" }
func (Call) Name() string     { return "Call" }
func (Ctl) Name() string      { return "Ctl" }
func (Eq) Name() string       { return "Eq" }
func (Exp) Name() string      { return "Exp" }
func (HasField) Name() string { return "HasField" }
func (HasIndex) Name() string { return "HasIndex" }
func (Integral) Name() string { return "Integral" }
func (Iterable) Name() string { return "Iterable" }
func (Num) Name() string      { return "Num" }
func (Ord) Name() string      { return "Ord" }
func (Signed) Name() string   { return "Signed" }
func (Show) Name() string     { return "Show" }
func (Unwrap) Name() string   { return "Unwrap" }
func (Sub) Name() string      { return "Sub" }
func (Mul) Name() string      { return "Mul" }
func (Div) Name() string      { return "Div" }
func (Mod) Name() string      { return "Mod" }
func (Struct) Name() string   { return "Struct" }

func (c Add) String() string      { return fmt.Sprintf("Add(%s)", c.Ty) }
func (c Adj) String() string      { return fmt.Sprintf("Adj(%s)", c.Ty) }
func (c Call) String() string     { return fmt.Sprintf("Call(%s, %s, %s)", c.Callee, c.Input, c.Output) }
func (c Ctl) String() string      { return fmt.Sprintf("Ctl(%s, %s)", c.Op, c.WithCtls) }
func (c Eq) String() string       { return fmt.Sprintf("Eq(%s)", c.Ty) }
func (c Exp) String() string      { return fmt.Sprintf("Exp(%s, %s)", c.Base, c.Power) }
func (c HasField) String() string { return fmt.Sprintf("HasField(%s, %s, %s)", c.Record, c.Field, c.Item) }
func (c HasIndex) String() string {
	return fmt.Sprintf("HasIndex(%s, %s, %s)", c.Container, c.Index, c.Item)
}
func (c Integral) String() string { return fmt.Sprintf("Integral(%s)", c.Ty) }
func (c Iterable) String() string { return fmt.Sprintf("Iterable(%s, %s)", c.Container, c.Item) }
func (c Num) String() string      { return fmt.Sprintf("Num(%s)", c.Ty) }
func (c Ord) String() string      { return fmt.Sprintf("Ord(%s)", c.Ty) }
func (c Signed) String() string   { return fmt.Sprintf("Signed(%s)", c.Ty) }
func (c Show) String() string     { return fmt.Sprintf("Show(%s)", c.Ty) }
func (c Unwrap) String() string   { return fmt.Sprintf("Unwrap(%s, %s)", c.Wrapper, c.Base) }
func (c Sub) String() string      { return fmt.Sprintf("Sub(%s)", c.Ty) }
func (c Mul) String() string      { return fmt.Sprintf("Mul(%s)", c.Ty) }
func (c Div) String() string      { return fmt.Sprintf("Div(%s)", c.Ty) }
func (c Mod) String() string      { return fmt.Sprintf("Mod(%s)", c.Ty) }
func (c Struct) String() string   { return fmt.Sprintf("Struct(%s)", c.Record) }

func (c Add) dependencies() []ir.Ty      { return []ir.Ty{c.Ty} }
func (c Adj) dependencies() []ir.Ty      { return []ir.Ty{c.Ty} }
func (c Call) dependencies() []ir.Ty     { return []ir.Ty{c.Callee} }
func (c Ctl) dependencies() []ir.Ty      { return []ir.Ty{c.Op} }
func (c Eq) dependencies() []ir.Ty       { return []ir.Ty{c.Ty} }
func (c Exp) dependencies() []ir.Ty      { return []ir.Ty{c.Base} }
func (c HasField) dependencies() []ir.Ty { return []ir.Ty{c.Record} }
func (c HasIndex) dependencies() []ir.Ty { return []ir.Ty{c.Container, c.Index} }
func (c Integral) dependencies() []ir.Ty { return []ir.Ty{c.Ty} }
func (c Iterable) dependencies() []ir.Ty { return []ir.Ty{c.Container} }
func (c Num) dependencies() []ir.Ty      { return []ir.Ty{c.Ty} }
func (c Ord) dependencies() []ir.Ty      { return []ir.Ty{c.Ty} }
func (c Signed) dependencies() []ir.Ty   { return []ir.Ty{c.Ty} }
func (c Show) dependencies() []ir.Ty     { return []ir.Ty{c.Ty} }
func (c Unwrap) dependencies() []ir.Ty   { return []ir.Ty{c.Wrapper} }
func (c Sub) dependencies() []ir.Ty      { return []ir.Ty{c.Ty} }
func (c Mul) dependencies() []ir.Ty      { return []ir.Ty{c.Ty} }
func (c Div) dependencies() []ir.Ty      { return []ir.Ty{c.Ty} }
func (c Mod) dependencies() []ir.Ty      { return []ir.Ty{c.Ty} }
func (c Struct) dependencies() []ir.Ty   { return []ir.Ty{c.Record} }

func (c Add) mapTys(f func(ir.Ty) ir.Ty) Class { return Add{f(c.Ty)} }
func (c Adj) mapTys(f func(ir.Ty) ir.Ty) Class { return Adj{f(c.Ty)} }
func (c Call) mapTys(f func(ir.Ty) ir.Ty) Class {
	return Call{Callee: f(c.Callee), Input: mapArg(c.Input, f), Output: f(c.Output)}
}
func (c Ctl) mapTys(f func(ir.Ty) ir.Ty) Class { return Ctl{Op: f(c.Op), WithCtls: f(c.WithCtls)} }
func (c Eq) mapTys(f func(ir.Ty) ir.Ty) Class  { return Eq{f(c.Ty)} }
func (c Exp) mapTys(f func(ir.Ty) ir.Ty) Class { return Exp{Base: f(c.Base), Power: f(c.Power)} }
func (c HasField) mapTys(f func(ir.Ty) ir.Ty) Class {
	return HasField{Record: f(c.Record), Field: c.Field, Item: f(c.Item)}
}
func (c HasIndex) mapTys(f func(ir.Ty) ir.Ty) Class {
	return HasIndex{Container: f(c.Container), Index: f(c.Index), Item: f(c.Item)}
}
func (c Integral) mapTys(f func(ir.Ty) ir.Ty) Class { return Integral{f(c.Ty)} }
func (c Iterable) mapTys(f func(ir.Ty) ir.Ty) Class {
	return Iterable{Container: f(c.Container), Item: f(c.Item)}
}
func (c Num) mapTys(f func(ir.Ty) ir.Ty) Class    { return Num{f(c.Ty)} }
func (c Ord) mapTys(f func(ir.Ty) ir.Ty) Class    { return Ord{f(c.Ty)} }
func (c Signed) mapTys(f func(ir.Ty) ir.Ty) Class { return Signed{f(c.Ty)} }
func (c Show) mapTys(f func(ir.Ty) ir.Ty) Class   { return Show{f(c.Ty)} }
func (c Unwrap) mapTys(f func(ir.Ty) ir.Ty) Class {
	return Unwrap{Wrapper: f(c.Wrapper), Base: f(c.Base)}
}
func (c Sub) mapTys(f func(ir.Ty) ir.Ty) Class    { return Sub{f(c.Ty)} }
func (c Mul) mapTys(f func(ir.Ty) ir.Ty) Class    { return Mul{f(c.Ty)} }
func (c Div) mapTys(f func(ir.Ty) ir.Ty) Class    { return Div{f(c.Ty)} }
func (c Mod) mapTys(f func(ir.Ty) ir.Ty) Class    { return Mod{f(c.Ty)} }
func (c Struct) mapTys(f func(ir.Ty) ir.Ty) Class { return Struct{f(c.Record)} }

func missingClass(class Class, ty ir.Ty, span ir.Span) []ilerr.IleError {
	return []ilerr.IleError{ilerr.New(ilerr.NewMissingClass{
		Positioner: span,
		Class:      class.Name(),
		Ty:         ty,
	})}
}

func eq(expected, actual ir.Ty, span ir.Span) Constraint {
	return EqConstraint{Expected: expected, Actual: actual, Span: span}
}

// isNumeric holds for the built-in numeric types, and for parameters declaring bound
func isNumeric(ty ir.Ty, bound ir.BoundKind) bool {
	switch ty := ty.(type) {
	case ir.Prim:
		return ty == ir.PrimBigInt || ty == ir.PrimDouble || ty == ir.PrimInt
	case ir.Param:
		_, ok := ty.HasBound(bound)
		return ok
	}
	return false
}

// checkPredicate reports a missing class unless ok
func checkPredicate(class Class, ty ir.Ty, ok bool, span ir.Span) ([]Constraint, []ilerr.IleError) {
	if ok {
		return nil, nil
	}
	return nil, missingClass(class, ty, span)
}

func (c Add) check(_ Udts, span ir.Span) ([]Constraint, []ilerr.IleError) {
	switch ty := c.Ty.(type) {
	case ir.Prim:
		return checkPredicate(c, ty, ty == ir.PrimString || isNumeric(ty, ir.BoundAdd), span)
	case ir.Array:
		return nil, nil
	}
	return checkPredicate(c, c.Ty, isNumeric(c.Ty, ir.BoundAdd), span)
}

func (c Adj) check(_ Udts, span ir.Span) ([]Constraint, []ilerr.IleError) {
	arrow, ok := c.Ty.(ir.Arrow)
	if !ok {
		return nil, missingClass(c, c.Ty, span)
	}
	return []Constraint{SupersetConstraint{Expected: ir.FunctorsAdj, Actual: arrow.Functors, Span: span}}, nil
}

func (c Call) check(_ Udts, span ir.Span) ([]Constraint, []ilerr.IleError) {
	arrow, ok := c.Callee.(ir.Arrow)
	if !ok {
		return nil, missingClass(c, c.Callee, span)
	}
	app := applyArg(c.Input, arrow.Input, span)
	var expected ir.Ty
	switch len(app.holes) {
	case 0:
		expected = arrow.Output
	case 1:
		expected = ir.Arrow{Kind: arrow.Kind, Input: app.holes[0], Output: arrow.Output, Functors: arrow.Functors}
	default:
		expected = ir.Arrow{Kind: arrow.Kind, Input: ir.Tuple{Items: app.holes}, Output: arrow.Output, Functors: arrow.Functors}
	}
	return append(app.constraints, eq(expected, c.Output, span)), app.errors
}

func (c Ctl) check(_ Udts, span ir.Span) ([]Constraint, []ilerr.IleError) {
	arrow, ok := c.Op.(ir.Arrow)
	if !ok {
		return nil, missingClass(c, c.Op, span)
	}
	controlled := ir.Arrow{
		Kind:     arrow.Kind,
		Input:    ir.Tuple{Items: []ir.Ty{ir.Array{Item: ir.PrimQubit}, arrow.Input}},
		Output:   arrow.Output,
		Functors: arrow.Functors,
	}
	return []Constraint{
		SupersetConstraint{Expected: ir.FunctorsCtl, Actual: arrow.Functors, Span: span},
		eq(controlled, c.WithCtls, span),
	}, nil
}

func (c Eq) check(_ Udts, span ir.Span) ([]Constraint, []ilerr.IleError) {
	switch ty := c.Ty.(type) {
	case ir.Prim:
		switch ty {
		case ir.PrimBigInt, ir.PrimBool, ir.PrimDouble, ir.PrimInt, ir.PrimQubit,
			ir.PrimRange, ir.PrimResult, ir.PrimString, ir.PrimPauli:
			return nil, nil
		}
	case ir.Array:
		return []Constraint{ClassConstraint{Class: Eq{ty.Item}, Span: span}}, nil
	case ir.Tuple:
		constraints := make([]Constraint, len(ty.Items))
		for i, item := range ty.Items {
			constraints[i] = ClassConstraint{Class: Eq{item}, Span: span}
		}
		return constraints, nil
	case ir.Param:
		_, ok := ty.HasBound(ir.BoundEq)
		return checkPredicate(c, ty, ok, span)
	}
	return nil, missingClass(c, c.Ty, span)
}

func (c Exp) check(_ Udts, span ir.Span) ([]Constraint, []ilerr.IleError) {
	switch base := c.Base.(type) {
	case ir.Prim:
		switch base {
		case ir.PrimBigInt:
			return []Constraint{eq(ir.PrimInt, c.Power, span)}, nil
		case ir.PrimDouble, ir.PrimInt:
			return []Constraint{eq(base, c.Power, span)}, nil
		}
	case ir.Param:
		if bound, ok := base.HasBound(ir.BoundExp); ok && bound.Arg != nil {
			return []Constraint{eq(bound.Arg, c.Power, span)}, nil
		}
	}
	return nil, missingClass(c, c.Base, span)
}

// range fields and the range types that have them
var rangeFields = map[string][]ir.Prim{
	"Start": {ir.PrimRange, ir.PrimRangeFrom},
	"Step":  {ir.PrimRange, ir.PrimRangeFrom, ir.PrimRangeTo, ir.PrimRangeFull},
	"End":   {ir.PrimRange, ir.PrimRangeTo},
}

func (c HasField) check(udts Udts, span ir.Span) ([]Constraint, []ilerr.IleError) {
	switch record := c.Record.(type) {
	case ir.Prim:
		for _, p := range rangeFields[c.Field] {
			if p == record {
				return []Constraint{eq(c.Item, ir.PrimInt, span)}, nil
			}
		}
	case ir.Udt:
		if id, ok := record.Res.Item(); ok {
			if udt, ok := udts[id]; ok {
				if fieldTy, ok := udt.FieldTy(c.Field); ok {
					return []Constraint{eq(fieldTy, c.Item, span)}, nil
				}
			}
		}
	}
	return nil, []ilerr.IleError{ilerr.New(ilerr.NewMissingClass{
		Positioner: span,
		Class:      c.Name(),
		Ty:         c.Record,
		Detail:     "no field " + c.Field,
	})}
}

func (c HasIndex) check(_ Udts, span ir.Span) ([]Constraint, []ilerr.IleError) {
	if array, ok := c.Container.(ir.Array); ok {
		if index, ok := c.Index.(ir.Prim); ok {
			if index == ir.PrimInt {
				return []Constraint{eq(array.Item, c.Item, span)}, nil
			}
			if index.IsRange() {
				return []Constraint{eq(array, c.Item, span)}, nil
			}
		}
	}
	return nil, []ilerr.IleError{ilerr.New(ilerr.NewMissingClass{
		Positioner: span,
		Class:      c.Name(),
		Ty:         c.Container,
		Detail:     "index of type " + ir.Display(c.Index),
	})}
}

func (c Integral) check(_ Udts, span ir.Span) ([]Constraint, []ilerr.IleError) {
	switch ty := c.Ty.(type) {
	case ir.Prim:
		return checkPredicate(c, ty, ty == ir.PrimBigInt || ty == ir.PrimInt, span)
	case ir.Param:
		_, ok := ty.HasBound(ir.BoundIntegral)
		return checkPredicate(c, ty, ok, span)
	}
	return nil, missingClass(c, c.Ty, span)
}

func (c Iterable) check(_ Udts, span ir.Span) ([]Constraint, []ilerr.IleError) {
	switch container := c.Container.(type) {
	case ir.Prim:
		if container == ir.PrimRange {
			return []Constraint{eq(ir.PrimInt, c.Item, span)}, nil
		}
	case ir.Array:
		return []Constraint{eq(container.Item, c.Item, span)}, nil
	case ir.Param:
		if bound, ok := container.HasBound(ir.BoundIterable); ok && bound.Arg != nil {
			return []Constraint{eq(bound.Arg, c.Item, span)}, nil
		}
	}
	return nil, missingClass(c, c.Container, span)
}

func (c Num) check(_ Udts, span ir.Span) ([]Constraint, []ilerr.IleError) {
	return checkPredicate(c, c.Ty, isNumeric(c.Ty, ir.BoundNum), span)
}

func (c Ord) check(_ Udts, span ir.Span) ([]Constraint, []ilerr.IleError) {
	return checkPredicate(c, c.Ty, isNumeric(c.Ty, ir.BoundOrd), span)
}

func (c Signed) check(_ Udts, span ir.Span) ([]Constraint, []ilerr.IleError) {
	return checkPredicate(c, c.Ty, isNumeric(c.Ty, ir.BoundSigned), span)
}

func (c Show) check(_ Udts, span ir.Span) ([]Constraint, []ilerr.IleError) {
	switch ty := c.Ty.(type) {
	case ir.Prim:
		return nil, nil
	case ir.Array:
		return []Constraint{ClassConstraint{Class: Show{ty.Item}, Span: span}}, nil
	case ir.Tuple:
		constraints := make([]Constraint, len(ty.Items))
		for i, item := range ty.Items {
			constraints[i] = ClassConstraint{Class: Show{item}, Span: span}
		}
		return constraints, nil
	case ir.Param:
		_, ok := ty.HasBound(ir.BoundShow)
		return checkPredicate(c, ty, ok, span)
	}
	return nil, missingClass(c, c.Ty, span)
}

func (c Unwrap) check(udts Udts, span ir.Span) ([]Constraint, []ilerr.IleError) {
	if wrapper, ok := c.Wrapper.(ir.Udt); ok {
		if id, ok := wrapper.Res.Item(); ok {
			if udt, ok := udts[id]; ok {
				return []Constraint{eq(c.Base, udt.PureTy(), span)}, nil
			}
		}
	}
	return nil, missingClass(c, c.Wrapper, span)
}

func (c Sub) check(_ Udts, span ir.Span) ([]Constraint, []ilerr.IleError) {
	return checkPredicate(c, c.Ty, isNumeric(c.Ty, ir.BoundSub), span)
}

func (c Mul) check(_ Udts, span ir.Span) ([]Constraint, []ilerr.IleError) {
	return checkPredicate(c, c.Ty, isNumeric(c.Ty, ir.BoundMul), span)
}

func (c Div) check(_ Udts, span ir.Span) ([]Constraint, []ilerr.IleError) {
	return checkPredicate(c, c.Ty, isNumeric(c.Ty, ir.BoundDiv), span)
}

func (c Mod) check(_ Udts, span ir.Span) ([]Constraint, []ilerr.IleError) {
	return checkPredicate(c, c.Ty, isNumeric(c.Ty, ir.BoundMod), span)
}

func (c Struct) check(udts Udts, span ir.Span) ([]Constraint, []ilerr.IleError) {
	if record, ok := c.Record.(ir.Udt); ok {
		if id, ok := record.Res.Item(); ok {
			if udt, ok := udts[id]; ok && udt.IsStruct() {
				return nil, nil
			}
		}
	}
	return nil, missingClass(c, c.Record, span)
}

// boundClass is the class a parameter bound stands for when the parameter is instantiated to ty
func boundClass(ty ir.Ty, bound ir.ClassBound) Class {
	switch bound.Kind {
	case ir.BoundAdd:
		return Add{ty}
	case ir.BoundEq:
		return Eq{ty}
	case ir.BoundExp:
		return Exp{Base: ty, Power: bound.Arg}
	case ir.BoundIntegral:
		return Integral{ty}
	case ir.BoundIterable:
		return Iterable{Container: ty, Item: bound.Arg}
	case ir.BoundNum:
		return Num{ty}
	case ir.BoundOrd:
		return Ord{ty}
	case ir.BoundShow:
		return Show{ty}
	case ir.BoundSigned:
		return Signed{ty}
	case ir.BoundSub:
		return Sub{ty}
	case ir.BoundMul:
		return Mul{ty}
	case ir.BoundDiv:
		return Div{ty}
	case ir.BoundMod:
		return Mod{ty}
	}
	panic(fmt.Sprintf("unreachable: unknown bound kind %d", bound.Kind))
}

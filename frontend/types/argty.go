package types

import (
	"strings"

	"github.com/cottand/qtc/frontend/ilerr"
	"github.com/cottand/qtc/frontend/ir"
)

// ArgTy is the type of the argument at a call site, shaped after the call
// syntax rather than after the type of the argument expression.
// `Foo(1, _)` is a TupleArg of a GivenArg and a HoleArg.
type ArgTy interface {
	String() string
	isArgTy()
}

// HoleArg is a missing argument, which makes the call a partial application
type HoleArg struct{ Ty ir.Ty }

type GivenArg struct{ Ty ir.Ty }

// TupleArg corresponds to tuple syntax at the call site
type TupleArg struct{ Items []ArgTy }

func (HoleArg) isArgTy()  {}
func (GivenArg) isArgTy() {}
func (TupleArg) isArgTy() {}

func (a HoleArg) String() string  { return "_: " + a.Ty.String() }
func (a GivenArg) String() string { return a.Ty.String() }
func (a TupleArg) String() string {
	items := make([]string, len(a.Items))
	for i, item := range a.Items {
		items[i] = item.String()
	}
	return "(" + strings.Join(items, ", ") + ")"
}

// ArgToTy is the type of the whole argument, holes included
func ArgToTy(arg ArgTy) ir.Ty {
	switch arg := arg.(type) {
	case HoleArg:
		return arg.Ty
	case GivenArg:
		return arg.Ty
	case TupleArg:
		items := make([]ir.Ty, len(arg.Items))
		for i, item := range arg.Items {
			items[i] = ArgToTy(item)
		}
		return ir.Tuple{Items: items}
	}
	panic("unreachable: unknown ArgTy")
}

func mapArg(arg ArgTy, f func(ir.Ty) ir.Ty) ArgTy {
	switch arg := arg.(type) {
	case HoleArg:
		return HoleArg{Ty: f(arg.Ty)}
	case GivenArg:
		return GivenArg{Ty: f(arg.Ty)}
	case TupleArg:
		items := make([]ArgTy, len(arg.Items))
		for i, item := range arg.Items {
			items[i] = mapArg(item, f)
		}
		return TupleArg{Items: items}
	}
	panic("unreachable: unknown ArgTy")
}

// application is the result of applying an argument to a parameter type
type application struct {
	// holes are the types of the missing arguments, in order, keeping their tuple nesting
	holes       []ir.Ty
	constraints []Constraint
	errors      []ilerr.IleError
}

func applyArg(arg ArgTy, param ir.Ty, span ir.Span) application {
	switch arg := arg.(type) {
	case HoleArg:
		return application{
			holes:       []ir.Ty{param},
			constraints: []Constraint{EqConstraint{Expected: param, Actual: arg.Ty, Span: span}},
		}
	case GivenArg:
		return application{
			constraints: []Constraint{EqConstraint{Expected: param, Actual: arg.Ty, Span: span}},
		}
	case TupleArg:
		switch param := param.(type) {
		case ir.Tuple:
			app := application{}
			if len(arg.Items) != len(param.Items) {
				app.errors = append(app.errors, ilerr.New(ilerr.NewTyMismatch{
					Positioner: span,
					Expected:   param,
					Actual:     ArgToTy(arg),
				}))
			}
			for i := 0; i < min(len(arg.Items), len(param.Items)); i++ {
				item := applyArg(arg.Items[i], param.Items[i], span)
				app.constraints = append(app.constraints, item.constraints...)
				app.errors = append(app.errors, item.errors...)
				if len(item.holes) > 1 {
					app.holes = append(app.holes, ir.Tuple{Items: item.holes})
				} else {
					app.holes = append(app.holes, item.holes...)
				}
			}
			return app
		case ir.Infer:
			return application{
				constraints: []Constraint{EqConstraint{Expected: param, Actual: ArgToTy(arg), Span: span}},
			}
		default:
			return application{
				errors: []ilerr.IleError{ilerr.New(ilerr.NewTyMismatch{
					Positioner: span,
					Expected:   param,
					Actual:     ArgToTy(arg),
				})},
			}
		}
	}
	panic("unreachable: unknown ArgTy")
}

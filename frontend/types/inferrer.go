package types

import (
	"log/slog"

	"github.com/cottand/qtc/frontend/ilerr"
	"github.com/cottand/qtc/frontend/ir"
	"github.com/cottand/qtc/internal/log"
	"github.com/cottand/qtc/util"
)

var logger = slog.New(ir.IRSlogHandler(log.DefaultLogger.Handler())).With("section", "typeck")

// TySource records where an inference variable came from.
// A variable that comes from a divergent expression (such as a return) may be
// left unconstrained, and is then silently defaulted to Unit.
// Any other unconstrained variable is reported as ambiguous at Span.
type TySource struct {
	divergent bool
	span      ir.Span
}

func Divergent() TySource { return TySource{divergent: true} }

func NotDivergent(span ir.Span) TySource { return TySource{span: span} }

func (s TySource) IsDivergent() bool { return s.divergent }
func (s TySource) Span() ir.Span     { return s.span }

// Inferrer collects the constraints of one callable specialization and solves them.
// It is not safe for concurrent use, and is meant to be discarded after Solve.
type Inferrer struct {
	solver      *Solver
	constraints []Constraint
	tySources   map[ir.InferTyId]TySource
	nextTy      ir.InferTyId
	nextFunctor ir.InferFunctorId
}

func NewInferrer() *Inferrer {
	return &Inferrer{
		solver:    newSolver(),
		tySources: make(map[ir.InferTyId]TySource),
	}
}

// FreshTy returns a new unconstrained type variable
func (i *Inferrer) FreshTy(source TySource) ir.Infer {
	fresh := i.nextTy
	i.nextTy = fresh.Successor()
	i.tySources[fresh] = source
	return ir.Infer{ID: fresh}
}

// FreshFunctor returns a new unconstrained functor variable
func (i *Inferrer) FreshFunctor() ir.FunctorSet {
	fresh := i.nextFunctor
	i.nextFunctor = fresh.Successor()
	return ir.FunctorInfer(fresh)
}

// Eq requires expected and actual to be the same type
func (i *Inferrer) Eq(span ir.Span, expected, actual ir.Ty) {
	i.constraints = append(i.constraints, EqConstraint{Expected: expected, Actual: actual, Span: span})
}

// Class requires the operands of class to satisfy it
func (i *Inferrer) Class(span ir.Span, class Class) {
	i.constraints = append(i.constraints, ClassConstraint{Class: class, Span: span})
}

// Superset requires actual to support at least the functors in expected
func (i *Inferrer) Superset(span ir.Span, expected ir.FunctorSetValue, actual ir.FunctorSet) {
	i.constraints = append(i.constraints, SupersetConstraint{Expected: expected, Actual: actual, Span: span})
}

// Instantiate replaces the generic parameters of scheme by fresh variables.
//
// Type parameters become fresh non-divergent type variables, constrained by
// the parameter's bounds. Functor parameters become fresh functor variables
// which must support at least the parameter's minimum.
func (i *Inferrer) Instantiate(scheme *ir.Scheme, span ir.Span) (ir.Arrow, []ir.GenericArg) {
	args := make([]ir.GenericArg, len(scheme.Params))
	for idx, param := range scheme.Params {
		switch param.(type) {
		case ir.TyParam:
			args[idx] = ir.TyArg{Ty: i.FreshTy(NotDivergent(span))}
		case ir.FunctorParam:
			args[idx] = ir.FunctorArg{Functors: i.FreshFunctor()}
		}
	}
	// bounds may mention other parameters, so they are queued once every argument exists
	for idx, param := range scheme.Params {
		switch param := param.(type) {
		case ir.TyParam:
			fresh := args[idx].(ir.TyArg).Ty
			for _, bound := range param.Bounds {
				if bound.Arg != nil {
					arg, err := scheme.InstantiateTy(args, bound.Arg)
					if err != nil {
						panic("bound should instantiate with fresh arguments: " + err.Error())
					}
					bound.Arg = arg
				}
				i.Class(span, boundClass(fresh, bound))
			}
		case ir.FunctorParam:
			i.Superset(span, param.Min, args[idx].(ir.FunctorArg).Functors)
		}
	}
	arrow, err := scheme.Instantiate(args)
	if err != nil {
		panic("scheme should instantiate with fresh arguments: " + err.Error())
	}
	return arrow, args
}

// ReportError adds an error found outside the solver to the errors returned by Solve
func (i *Inferrer) ReportError(err ilerr.IleError) {
	i.solver.report(err)
}

// Solve discharges every queued constraint, then defaults what is left unsolved.
//
// Constraints produced while solving are processed before older ones.
// Unsolved divergent variables become Unit, other unsolved variables are
// reported as ambiguous, and unsolved functor variables take their
// accumulated lower bound.
func (i *Inferrer) Solve(udts Udts) *ilerr.Errors {
	queue := util.Stack[Constraint]{}
	for c := range util.Reverse(i.constraints) {
		queue.Push(c)
	}
	processed := 0
	for {
		constraint, ok := queue.Pop()
		if !ok {
			break
		}
		processed++
		logger.Debug("solve: constrain", "constraint", constraint)
		for produced := range util.Reverse(i.solver.constrain(udts, constraint)) {
			queue.Push(produced)
		}
	}
	i.constraints = nil

	ambiguous := i.findUnresolvedTys()
	i.solver.defaultFunctors(i.nextFunctor)

	errs := i.solver.errors
	i.solver.errors = nil
	errs = errs.With(ambiguous...)
	logger.Debug("solve: done", "constraints", processed, "errors", len(errs.Errors()))
	return errs
}

func (i *Inferrer) findUnresolvedTys() []ilerr.IleError {
	var errs []ilerr.IleError
	for id := ir.InferTyId(0); id < i.nextTy; id = id.Successor() {
		source, ok := i.tySources[id]
		if !ok {
			continue
		}
		delete(i.tySources, id)
		if _, ok := i.solver.solution.Ty(id); ok {
			continue
		}
		if source.IsDivergent() {
			i.solver.solution.bindTy(id, ir.Unit)
			continue
		}
		errs = append(errs, ilerr.New(ilerr.NewAmbiguousTy{Positioner: source.Span()}))
	}
	return errs
}

// SubstituteTy rewrites ty through the current solution
func (i *Inferrer) SubstituteTy(ty ir.Ty) ir.Ty {
	ty, _ = SubstituteTy(i.solver.solution, ty)
	return ty
}

func (i *Inferrer) SubstituteFunctor(functors ir.FunctorSet) ir.FunctorSet {
	return SubstituteFunctor(i.solver.solution, functors)
}

// Solution is a snapshot of the bindings found so far
func (i *Inferrer) Solution() Solution {
	return i.solver.solution
}

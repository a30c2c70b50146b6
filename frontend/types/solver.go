package types

import (
	"github.com/cottand/qtc/frontend/ilerr"
	"github.com/cottand/qtc/frontend/ir"
)

type pendingClass struct {
	class Class
	span  ir.Span
}

// Solver narrows constraints into bindings of the Solution,
// accumulating errors rather than stopping at the first one
type Solver struct {
	solution Solution
	// pendingTys are class constraints waiting for a variable to be bound
	pendingTys map[ir.InferTyId][]pendingClass
	// pendingFunctors are the lower bounds accumulated for unbound functor variables
	pendingFunctors map[ir.InferFunctorId]ir.FunctorSetValue
	errors          *ilerr.Errors
}

func newSolver() *Solver {
	return &Solver{
		solution:        NewSolution(),
		pendingTys:      make(map[ir.InferTyId][]pendingClass),
		pendingFunctors: make(map[ir.InferFunctorId]ir.FunctorSetValue),
	}
}

func (s *Solver) report(errs ...ilerr.IleError) {
	if len(errs) == 0 {
		return
	}
	s.errors = s.errors.With(errs...)
}

// constrain narrows a constraint, returning the more specific constraints it produces
func (s *Solver) constrain(udts Udts, constraint Constraint) []Constraint {
	switch c := constraint.(type) {
	case ClassConstraint:
		return s.class(udts, c.Class, c.Span)
	case EqConstraint:
		return s.eq(c.Expected, c.Actual, c.Span)
	case SupersetConstraint:
		s.superset(c.Expected, c.Actual, c.Span)
		return nil
	}
	panic("unreachable: unknown constraint")
}

func (s *Solver) class(udts Udts, class Class, span ir.Span) []Constraint {
	for _, dep := range class.dependencies() {
		if ir.IsPoison(dep) {
			return nil
		}
		if id, ok := unknownTy(s.solution, dep); ok {
			logger.Debug("class: deferred", "class", class, "on", id)
			s.pendingTys[id] = append(s.pendingTys[id], pendingClass{class: class, span: span})
			return nil
		}
	}
	substituted := class.mapTys(func(ty ir.Ty) ir.Ty {
		ty, _ = SubstituteTy(s.solution, ty)
		return ty
	})
	for _, dep := range substituted.dependencies() {
		if ir.IsPoison(dep) {
			return nil
		}
	}
	constraints, errs := substituted.check(udts, span)
	s.report(errs...)
	return constraints
}

func (s *Solver) eq(expected, actual ir.Ty, span ir.Span) []Constraint {
	// types that cannot be fully substituted come from a recursive binding,
	// unifying them would loop forever
	expected, okExpected := SubstituteTy(s.solution, expected)
	actual, okActual := SubstituteTy(s.solution, actual)
	if !okExpected || !okActual {
		logger.Debug("eq: dropped, not fully substituted", "expected", expected, "actual", actual)
		return nil
	}
	return s.unify(expected, actual, span)
}

func (s *Solver) superset(expected ir.FunctorSetValue, actual ir.FunctorSet, span ir.Span) {
	actual = SubstituteFunctor(s.solution, actual)
	if expected == ir.FunctorsEmpty {
		return
	}
	if id, ok := actual.Infer(); ok {
		s.pendingFunctors[id] = s.pendingFunctors[id].Union(expected)
		return
	}
	value, _ := actual.Value()
	if !ir.Superset(expected, value) {
		s.report(ilerr.New(ilerr.NewMissingFunctor{
			Positioner: span,
			Expected:   expected,
			Actual:     value,
		}))
	}
}

func (s *Solver) unify(ty1, ty2 ir.Ty, span ir.Span) []Constraint {
	logger.Debug("unify", "ty1", ty1, "ty2", ty2)
	if _, ok := ty1.(ir.Err); ok {
		return nil
	}
	if _, ok := ty2.(ir.Err); ok {
		return nil
	}
	udt1, isUdt1 := ty1.(ir.Udt)
	udt2, isUdt2 := ty2.(ir.Udt)
	if isUdt1 && isUdt2 && (udt1.IsErr() || udt2.IsErr()) {
		return nil
	}

	switch t1 := ty1.(type) {
	case ir.Array:
		if t2, ok := ty2.(ir.Array); ok {
			return s.unify(t1.Item, t2.Item, span)
		}
	case ir.Arrow:
		if t2, ok := ty2.(ir.Arrow); ok {
			return s.unifyArrows(t1, t2, span)
		}
	}

	infer1, isInfer1 := ty1.(ir.Infer)
	infer2, isInfer2 := ty2.(ir.Infer)
	switch {
	case isInfer1 && isInfer2 && infer1.ID == infer2.ID:
		return nil
	case isInfer1:
		return s.unifyInfer(infer1.ID, ty2, span, false)
	case isInfer2:
		return s.unifyInfer(infer2.ID, ty1, span, true)
	}

	switch t1 := ty1.(type) {
	case ir.Param:
		if t2, ok := ty2.(ir.Param); ok && t1.ID == t2.ID && t1.Name == t2.Name {
			return nil
		}
	case ir.Prim:
		if t2, ok := ty2.(ir.Prim); ok && t1 == t2 {
			return nil
		}
	case ir.Udt:
		if isUdt2 && t1.Res == udt2.Res {
			return nil
		}
	case ir.Tuple:
		if t2, ok := ty2.(ir.Tuple); ok {
			return s.unifyTuples(t1, t2, span)
		}
	}

	s.report(ilerr.New(ilerr.NewTyMismatch{Positioner: span, Expected: ty1, Actual: ty2}))
	return nil
}

func (s *Solver) unifyArrows(a1, a2 ir.Arrow, span ir.Span) []Constraint {
	if a1.Kind != a2.Kind {
		s.report(ilerr.New(ilerr.NewCallableMismatch{Positioner: span, Expected: a1.Kind, Actual: a2.Kind}))
	}
	constraints := s.unify(a1.Input, a2.Input, span)
	constraints = append(constraints, s.unify(a1.Output, a2.Output, span)...)

	f1 := SubstituteFunctor(s.solution, a1.Functors)
	f2 := SubstituteFunctor(s.solution, a2.Functors)
	v1, known1 := f1.Value()
	v2, known2 := f2.Value()
	infer1, isInfer1 := f1.Infer()
	infer2, isInfer2 := f2.Infer()
	switch {
	case f1 == f2:
	case known1 && known2 && v2.Satisfies(v1):
	case isInfer1:
		constraints = append(constraints, s.bindFunctor(infer1, f2, span)...)
	case isInfer2:
		constraints = append(constraints, s.bindFunctor(infer2, f1, span)...)
	default:
		s.report(ilerr.New(ilerr.NewFunctorMismatch{Positioner: span, Expected: f1, Actual: f2}))
	}
	return constraints
}

func (s *Solver) unifyTuples(t1, t2 ir.Tuple, span ir.Span) []Constraint {
	if len(t1.Items) != len(t2.Items) {
		s.report(ilerr.New(ilerr.NewTyMismatch{Positioner: span, Expected: t1, Actual: t2}))
	}
	var constraints []Constraint
	for i := 0; i < min(len(t1.Items), len(t2.Items)); i++ {
		constraints = append(constraints, s.unify(t1.Items[i], t2.Items[i], span)...)
	}
	return constraints
}

// unifyInfer binds id to ty. flipped records that id came from the right-hand side,
// so that a deferred equality keeps the original orientation.
func (s *Solver) unifyInfer(id ir.InferTyId, ty ir.Ty, span ir.Span, flipped bool) []Constraint {
	// id may have been bound by an earlier sibling of the same tuple or arrow
	if bound, ok := s.solution.Ty(id); ok {
		if flipped {
			return []Constraint{eq(ty, bound, span)}
		}
		return []Constraint{eq(bound, ty, span)}
	}
	// ty may be a chain of variables leading back to id
	if other, ok := unknownTy(s.solution, ty); ok && other == id {
		return nil
	}
	return s.bindTy(id, ty, span)
}

// bindTy binds id to ty and releases the class constraints that were waiting on id
func (s *Solver) bindTy(id ir.InferTyId, ty ir.Ty, span ir.Span) []Constraint {
	if size := ir.Size(ty); size > maxTySize {
		s.report(ilerr.New(ilerr.NewTySizeLimitExceeded{Positioner: span, Ty: ty, Limit: maxTySize}))
		return nil
	}
	if linksToInferTy(s.solution, id, ty) {
		s.report(ilerr.New(ilerr.NewRecursiveTypeConstraint{Positioner: span}))
		return nil
	}
	logger.Debug("bind", "id", id, "ty", ty)
	s.solution.bindTy(id, ty)

	pending := s.pendingTys[id]
	delete(s.pendingTys, id)
	constraints := make([]Constraint, len(pending))
	for i, p := range pending {
		constraints[i] = ClassConstraint{Class: p.class, Span: p.span}
	}
	return constraints
}

// bindFunctor binds id and re-checks any lower bound accumulated for it
func (s *Solver) bindFunctor(id ir.InferFunctorId, functors ir.FunctorSet, span ir.Span) []Constraint {
	logger.Debug("bind functor", "id", id, "functors", functors)
	s.solution.bindFunctor(id, functors)
	expected, ok := s.pendingFunctors[id]
	if !ok {
		return nil
	}
	delete(s.pendingFunctors, id)
	return []Constraint{SupersetConstraint{Expected: expected, Actual: functors, Span: span}}
}

// defaultFunctors binds every functor variable below end that is still unbound
// to its accumulated lower bound, or to the empty set
func (s *Solver) defaultFunctors(end ir.InferFunctorId) {
	for id := ir.InferFunctorId(0); id < end; id = id.Successor() {
		if _, ok := s.solution.Functor(id); ok {
			continue
		}
		value := s.pendingFunctors[id]
		delete(s.pendingFunctors, id)
		s.solution.bindFunctor(id, ir.FunctorValue(value))
	}
}

package types_test

import (
	"go/token"
	"testing"

	"github.com/cottand/qtc/frontend/ilerr"
	"github.com/cottand/qtc/frontend/ir"
	"github.com/cottand/qtc/frontend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func span(lo, hi int) ir.Span {
	return ir.Span{Lo: token.Pos(lo), Hi: token.Pos(hi)}
}

func codes(errs *ilerr.Errors) []ilerr.ErrCode {
	var ret []ilerr.ErrCode
	for _, err := range errs.Errors() {
		ret = append(ret, err.Code())
	}
	return ret
}

func assertTy(t *testing.T, expected ir.Ty, actual ir.Ty) {
	t.Helper()
	assert.Truef(t, ir.Equal(expected, actual), "expected %s, got %s", expected, actual)
}

func function(input, output ir.Ty) ir.Arrow {
	return ir.Arrow{Kind: ir.Function, Input: input, Output: output, Functors: ir.FunctorValue(ir.FunctorsEmpty)}
}

func operation(input, output ir.Ty, functors ir.FunctorSetValue) ir.Arrow {
	return ir.Arrow{Kind: ir.Operation, Input: input, Output: output, Functors: ir.FunctorValue(functors)}
}

func tuple(items ...ir.Ty) ir.Tuple { return ir.Tuple{Items: items} }

func TestArrayAddMismatch(t *testing.T) {
	// 1 + [2]
	inf := types.NewInferrer()
	inf.Eq(span(0, 7), ir.PrimInt, ir.Array{Item: ir.PrimInt})

	errs := inf.Solve(nil)
	require.Equal(t, []ilerr.ErrCode{ilerr.TyMismatch}, codes(errs))
	mismatch, ok := errs.Errors()[0].(ilerr.NewTyMismatch)
	require.True(t, ok)
	assertTy(t, ir.PrimInt, mismatch.Expected)
	assertTy(t, ir.Array{Item: ir.PrimInt}, mismatch.Actual)
	assert.Equal(t, token.Pos(0), mismatch.Pos())
	assert.Equal(t, token.Pos(7), mismatch.End())
}

func TestGenericIdentityInstantiation(t *testing.T) {
	// function Identity<'T>(x : 'T) : 'T { x }
	// Identity(4)
	paramT := ir.Param{Name: "T", ID: 0}
	identity := &ir.Scheme{
		Params: []ir.GenericParam{ir.TyParam{Name: "T"}},
		Ty:     function(paramT, paramT),
	}

	inf := types.NewInferrer()
	callee, args := inf.Instantiate(identity, span(0, 8))
	require.Len(t, args, 1)
	result := inf.FreshTy(types.NotDivergent(span(0, 11)))
	inf.Class(span(0, 11), types.Call{Callee: callee, Input: types.GivenArg{Ty: ir.PrimInt}, Output: result})

	errs := inf.Solve(nil)
	assert.Empty(t, codes(errs))

	tyArg, ok := args[0].(ir.TyArg)
	require.True(t, ok)
	fresh, ok := tyArg.Ty.(ir.Infer)
	require.True(t, ok)
	bound, ok := inf.Solution().Ty(fresh.ID)
	require.True(t, ok)
	assertTy(t, ir.PrimInt, bound)
	assertTy(t, ir.PrimInt, inf.SubstituteTy(result))
}

func TestTupleArityMismatch(t *testing.T) {
	// let (x, y, z) = (0, 1);
	inf := types.NewInferrer()
	x := inf.FreshTy(types.NotDivergent(span(5, 6)))
	y := inf.FreshTy(types.NotDivergent(span(8, 9)))
	z := inf.FreshTy(types.NotDivergent(span(11, 12)))
	inf.Eq(span(4, 21), tuple(ir.PrimInt, ir.PrimInt), tuple(x, y, z))

	errs := inf.Solve(nil)
	require.Equal(t, []ilerr.ErrCode{ilerr.TyMismatch, ilerr.AmbiguousTy}, codes(errs))
	mismatch := errs.Errors()[0].(ilerr.NewTyMismatch)
	assertTy(t, tuple(ir.PrimInt, ir.PrimInt), mismatch.Expected)
	assertTy(t, tuple(x, y, z), mismatch.Actual)
	assert.Equal(t, token.Pos(11), errs.Errors()[1].Pos())

	assertTy(t, ir.PrimInt, inf.SubstituteTy(x))
	assertTy(t, ir.PrimInt, inf.SubstituteTy(y))
}

func TestAdjointOfNonAdjointOperation(t *testing.T) {
	inf := types.NewInferrer()
	op := operation(ir.PrimQubit, ir.Unit, ir.FunctorsEmpty)
	inf.Class(span(0, 10), types.Adj{Ty: op})

	errs := inf.Solve(nil)
	require.Equal(t, []ilerr.ErrCode{ilerr.MissingFunctor}, codes(errs))
	missing := errs.Errors()[0].(ilerr.NewMissingFunctor)
	assert.Equal(t, ir.FunctorsAdj, missing.Expected)
	assert.Equal(t, ir.FunctorsEmpty, missing.Actual)
}

func TestAdjointOfNonCallable(t *testing.T) {
	inf := types.NewInferrer()
	inf.Class(span(0, 10), types.Adj{Ty: ir.PrimInt})

	errs := inf.Solve(nil)
	assert.Equal(t, []ilerr.ErrCode{ilerr.MissingClassAdj}, codes(errs))
}

func TestPartialApplication(t *testing.T) {
	// f(_, 1) where f : (Int, Int) -> Int
	f := function(tuple(ir.PrimInt, ir.PrimInt), ir.PrimInt)

	inf := types.NewInferrer()
	hole := inf.FreshTy(types.NotDivergent(span(2, 3)))
	result := inf.FreshTy(types.NotDivergent(span(0, 8)))
	input := types.TupleArg{Items: []types.ArgTy{types.HoleArg{Ty: hole}, types.GivenArg{Ty: ir.PrimInt}}}
	inf.Class(span(0, 8), types.Call{Callee: f, Input: input, Output: result})

	errs := inf.Solve(nil)
	assert.Empty(t, codes(errs))
	assertTy(t, function(ir.PrimInt, ir.PrimInt), inf.SubstituteTy(result))
	assertTy(t, ir.PrimInt, inf.SubstituteTy(hole))
}

func TestPartialApplicationManyHoles(t *testing.T) {
	// f(_, 1, _) where f : (Int, Int, Bool) -> Int
	f := function(tuple(ir.PrimInt, ir.PrimInt, ir.PrimBool), ir.PrimInt)

	inf := types.NewInferrer()
	hole1 := inf.FreshTy(types.NotDivergent(span(2, 3)))
	hole2 := inf.FreshTy(types.NotDivergent(span(8, 9)))
	result := inf.FreshTy(types.NotDivergent(span(0, 10)))
	input := types.TupleArg{Items: []types.ArgTy{
		types.HoleArg{Ty: hole1},
		types.GivenArg{Ty: ir.PrimInt},
		types.HoleArg{Ty: hole2},
	}}
	inf.Class(span(0, 10), types.Call{Callee: f, Input: input, Output: result})

	errs := inf.Solve(nil)
	assert.Empty(t, codes(errs))
	assertTy(t, function(tuple(ir.PrimInt, ir.PrimBool), ir.PrimInt), inf.SubstituteTy(result))
}

func TestCallArgumentShapeMismatch(t *testing.T) {
	inf := types.NewInferrer()
	result := inf.FreshTy(types.NotDivergent(span(0, 8)))
	f := function(ir.PrimInt, ir.PrimInt)
	input := types.TupleArg{Items: []types.ArgTy{types.GivenArg{Ty: ir.PrimInt}, types.GivenArg{Ty: ir.PrimInt}}}
	inf.Class(span(0, 8), types.Call{Callee: f, Input: input, Output: result})

	errs := inf.Solve(nil)
	assert.Equal(t, []ilerr.ErrCode{ilerr.TyMismatch}, codes(errs))
	assertTy(t, ir.PrimInt, inf.SubstituteTy(result))
}

func TestBitwiseNotOnBool(t *testing.T) {
	// ~~~false
	inf := types.NewInferrer()
	inf.Class(span(0, 8), types.Num{Ty: ir.PrimBool})

	errs := inf.Solve(nil)
	require.Equal(t, []ilerr.ErrCode{ilerr.MissingClassNum}, codes(errs))
	missing := errs.Errors()[0].(ilerr.NewMissingClass)
	assertTy(t, ir.PrimBool, missing.Ty)
}

func TestBindingsAreWrittenOnce(t *testing.T) {
	inf := types.NewInferrer()
	x := inf.FreshTy(types.NotDivergent(span(0, 1)))
	inf.Eq(span(0, 1), x, ir.PrimInt)
	inf.Eq(span(2, 3), x, ir.PrimBool)
	inf.Eq(span(4, 5), tuple(x, x), tuple(ir.PrimDouble, ir.PrimString))

	errs := inf.Solve(nil)
	assert.Equal(t, []ilerr.ErrCode{ilerr.TyMismatch, ilerr.TyMismatch, ilerr.TyMismatch}, codes(errs))
	bound, ok := inf.Solution().Ty(x.ID)
	require.True(t, ok)
	assertTy(t, ir.PrimInt, bound)
}

func TestOccursCheck(t *testing.T) {
	inf := types.NewInferrer()
	x := inf.FreshTy(types.NotDivergent(span(0, 1)))
	y := inf.FreshTy(types.NotDivergent(span(2, 3)))
	inf.Eq(span(0, 5), x, ir.Array{Item: x})
	inf.Eq(span(6, 9), y, tuple(ir.PrimInt, function(y, ir.PrimInt)))

	errs := inf.Solve(nil)
	assert.Equal(t, []ilerr.ErrCode{
		ilerr.RecursiveTypeConstraint,
		ilerr.RecursiveTypeConstraint,
		ilerr.AmbiguousTy,
		ilerr.AmbiguousTy,
	}, codes(errs))
	_, ok := inf.Solution().Ty(x.ID)
	assert.False(t, ok)
}

func TestOccursCheckThroughChain(t *testing.T) {
	inf := types.NewInferrer()
	x := inf.FreshTy(types.NotDivergent(span(0, 1)))
	y := inf.FreshTy(types.NotDivergent(span(2, 3)))
	inf.Eq(span(0, 3), x, y)
	inf.Eq(span(4, 9), y, ir.Array{Item: x})

	errs := inf.Solve(nil)
	assert.Contains(t, codes(errs), ilerr.RecursiveTypeConstraint)
}

func TestSwappedVariablesUnify(t *testing.T) {
	inf := types.NewInferrer()
	a := inf.FreshTy(types.NotDivergent(span(0, 1)))
	b := inf.FreshTy(types.NotDivergent(span(2, 3)))
	inf.Eq(span(0, 3), tuple(a, b), tuple(b, a))
	inf.Eq(span(4, 5), a, ir.PrimInt)

	assert.Empty(t, codes(inf.Solve(nil)))
	assertTy(t, ir.PrimInt, inf.SubstituteTy(a))
	assertTy(t, ir.PrimInt, inf.SubstituteTy(b))
}

func TestFunctorMismatchShowsBoundValue(t *testing.T) {
	inf := types.NewInferrer()
	f := inf.FreshFunctor()
	op := ir.Arrow{Kind: ir.Operation, Input: ir.PrimQubit, Output: ir.Unit, Functors: f}
	inf.Eq(span(0, 1), op, operation(ir.PrimQubit, ir.Unit, ir.FunctorsCtl))
	inf.Eq(span(2, 3), operation(ir.PrimQubit, ir.Unit, ir.FunctorsAdj), op)

	errs := inf.Solve(nil)
	require.Equal(t, []ilerr.ErrCode{ilerr.FunctorMismatch}, codes(errs))
	mismatch, ok := errs.Errors()[0].(ilerr.NewFunctorMismatch)
	require.True(t, ok)
	assert.Equal(t, ir.FunctorValue(ir.FunctorsAdj), mismatch.Expected)
	assert.Equal(t, ir.FunctorValue(ir.FunctorsCtl), mismatch.Actual)
	assert.Equal(t, "functor mismatch: expected Adj, found Ctl", mismatch.Error())
}

func TestTySizeLimit(t *testing.T) {
	big := ir.Tuple{}
	for range 100 {
		big.Items = append(big.Items, ir.PrimInt)
	}
	inf := types.NewInferrer()
	x := inf.FreshTy(types.Divergent())
	inf.Eq(span(0, 1), x, big)

	errs := inf.Solve(nil)
	assert.Equal(t, []ilerr.ErrCode{ilerr.TySizeLimitExceeded}, codes(errs))
}

func TestSubstitutionIsIdempotent(t *testing.T) {
	inf := types.NewInferrer()
	x := inf.FreshTy(types.NotDivergent(span(0, 1)))
	y := inf.FreshTy(types.NotDivergent(span(2, 3)))
	z := inf.FreshTy(types.NotDivergent(span(4, 5)))
	f := inf.FreshFunctor()
	inf.Eq(span(0, 1), x, ir.Array{Item: y})
	inf.Eq(span(2, 3), y, tuple(z, ir.PrimBool))
	inf.Eq(span(4, 5), z, ir.PrimInt)
	inf.Eq(span(6, 7),
		ir.Arrow{Kind: ir.Operation, Input: x, Output: ir.Unit, Functors: f},
		operation(ir.Array{Item: tuple(ir.PrimInt, ir.PrimBool)}, ir.Unit, ir.FunctorsAdj),
	)
	errs := inf.Solve(nil)
	require.Empty(t, codes(errs))

	tys := []ir.Ty{
		x, y, z,
		ir.Arrow{Kind: ir.Function, Input: x, Output: y, Functors: f},
		tuple(x, ir.Err{}, ir.Param{Name: "T"}),
	}
	for _, ty := range tys {
		t.Run(ty.String(), func(t *testing.T) {
			once, ok := types.SubstituteTy(inf.Solution(), ty)
			require.True(t, ok)
			twice, ok := types.SubstituteTy(inf.Solution(), once)
			require.True(t, ok)
			assertTy(t, once, twice)
		})
	}
	assertTy(t, ir.Array{Item: tuple(ir.PrimInt, ir.PrimBool)}, inf.SubstituteTy(x))
}

func TestFunctorDefaulting(t *testing.T) {
	inf := types.NewInferrer()
	demanded := inf.FreshFunctor()
	both := inf.FreshFunctor()
	free := inf.FreshFunctor()
	inf.Class(span(0, 1), types.Adj{Ty: ir.Arrow{Kind: ir.Operation, Input: ir.PrimQubit, Output: ir.Unit, Functors: demanded}})
	inf.Class(span(2, 3), types.Adj{Ty: ir.Arrow{Kind: ir.Operation, Input: ir.PrimQubit, Output: ir.Unit, Functors: both}})
	ctlOut := inf.FreshTy(types.Divergent())
	inf.Class(span(4, 5), types.Ctl{Op: ir.Arrow{Kind: ir.Operation, Input: ir.PrimQubit, Output: ir.Unit, Functors: both}, WithCtls: ctlOut})

	errs := inf.Solve(nil)
	require.Empty(t, codes(errs))
	assert.Equal(t, ir.FunctorValue(ir.FunctorsAdj), inf.SubstituteFunctor(demanded))
	assert.Equal(t, ir.FunctorValue(ir.FunctorsCtlAdj), inf.SubstituteFunctor(both))
	assert.Equal(t, ir.FunctorValue(ir.FunctorsEmpty), inf.SubstituteFunctor(free))
}

func TestFunctorLowerBoundIsCheckedOnBind(t *testing.T) {
	// operation ApplyAdj<'T is Adj>(op : 'T) ... called with a non-adjointable operation
	scheme := &ir.Scheme{
		Params: []ir.GenericParam{ir.FunctorParam{Min: ir.FunctorsAdj}},
		Ty: ir.Arrow{
			Kind:     ir.Operation,
			Input:    ir.PrimQubit,
			Output:   ir.Unit,
			Functors: ir.FunctorSetParam(0, ir.FunctorsAdj),
		},
	}
	inf := types.NewInferrer()
	instantiated, args := inf.Instantiate(scheme, span(0, 5))
	require.Len(t, args, 1)
	functorArg, ok := args[0].(ir.FunctorArg)
	require.True(t, ok)
	assert.Equal(t, functorArg.Functors, instantiated.Functors)
	inf.Eq(span(6, 9), instantiated, operation(ir.PrimQubit, ir.Unit, ir.FunctorsEmpty))

	errs := inf.Solve(nil)
	require.Equal(t, []ilerr.ErrCode{ilerr.MissingFunctor}, codes(errs))
	missing := errs.Errors()[0].(ilerr.NewMissingFunctor)
	assert.Equal(t, ir.FunctorsAdj, missing.Expected)
	assert.Equal(t, ir.FunctorsEmpty, missing.Actual)
}

func TestArrowFunctorsMustSatisfyExpected(t *testing.T) {
	tests := []struct {
		name     string
		expected ir.FunctorSetValue
		actual   ir.FunctorSetValue
		codes    []ilerr.ErrCode
	}{
		{"equal", ir.FunctorsAdj, ir.FunctorsAdj, nil},
		{"more than needed", ir.FunctorsAdj, ir.FunctorsCtlAdj, nil},
		{"nothing needed", ir.FunctorsEmpty, ir.FunctorsCtl, nil},
		{"less than needed", ir.FunctorsCtlAdj, ir.FunctorsAdj, []ilerr.ErrCode{ilerr.FunctorMismatch}},
		{"unrelated", ir.FunctorsCtl, ir.FunctorsAdj, []ilerr.ErrCode{ilerr.FunctorMismatch}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			inf := types.NewInferrer()
			inf.Eq(span(0, 1),
				operation(ir.PrimQubit, ir.Unit, test.expected),
				operation(ir.PrimQubit, ir.Unit, test.actual),
			)
			assert.Equal(t, test.codes, codes(inf.Solve(nil)))
		})
	}
}

func TestCallableKindMismatch(t *testing.T) {
	inf := types.NewInferrer()
	inf.Eq(span(0, 1), function(ir.PrimInt, ir.PrimInt), operation(ir.PrimInt, ir.PrimBool, ir.FunctorsEmpty))

	assert.Equal(t, []ilerr.ErrCode{ilerr.CallableMismatch, ilerr.TyMismatch}, codes(inf.Solve(nil)))
}

func TestClassIsDeferredUntilBound(t *testing.T) {
	tests := []struct {
		name  string
		ty    ir.Ty
		codes []ilerr.ErrCode
	}{
		{"satisfied", ir.PrimInt, nil},
		{"violated", ir.PrimBool, []ilerr.ErrCode{ilerr.MissingClassAdd}},
		{"poisoned", ir.Err{}, nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			inf := types.NewInferrer()
			x := inf.FreshTy(types.NotDivergent(span(0, 1)))
			y := inf.FreshTy(types.NotDivergent(span(0, 1)))
			inf.Class(span(0, 5), types.Add{Ty: x})
			inf.Eq(span(0, 1), x, y)
			inf.Eq(span(2, 3), y, test.ty)

			errs := inf.Solve(nil)
			if _, isErr := test.ty.(ir.Err); isErr {
				// Err never binds, so y stays ambiguous
				assert.Equal(t, []ilerr.ErrCode{ilerr.AmbiguousTy}, codes(errs))
				return
			}
			assert.Equal(t, test.codes, codes(errs))
		})
	}
}

func TestPoisonTypes(t *testing.T) {
	errUdt := ir.Udt{Name: "Missing", Res: ir.ResErr}
	someUdt := ir.Udt{Name: "Pair", Res: ir.ResItem(ir.ItemId{Item: 1})}

	inf := types.NewInferrer()
	inf.Eq(span(0, 1), ir.Err{}, ir.PrimInt)
	inf.Eq(span(0, 1), ir.Array{Item: ir.PrimBool}, ir.Err{})
	inf.Eq(span(0, 1), errUdt, someUdt)
	inf.Eq(span(0, 1), someUdt, errUdt)
	inf.Class(span(0, 1), types.Add{Ty: ir.Err{}})
	inf.Class(span(0, 1), types.Call{Callee: errUdt, Input: types.GivenArg{Ty: ir.PrimInt}, Output: ir.Err{}})

	assert.Empty(t, codes(inf.Solve(nil)))
}

func TestDivergentDefaultsToUnit(t *testing.T) {
	inf := types.NewInferrer()
	divergent := inf.FreshTy(types.Divergent())
	ambiguous := inf.FreshTy(types.NotDivergent(span(3, 4)))

	errs := inf.Solve(nil)
	require.Equal(t, []ilerr.ErrCode{ilerr.AmbiguousTy}, codes(errs))
	assert.Equal(t, token.Pos(3), errs.Errors()[0].Pos())
	assertTy(t, ir.Unit, inf.SubstituteTy(divergent))
	assertTy(t, ambiguous, inf.SubstituteTy(ambiguous))
}

func TestAmbiguousErrorsComeLastInIdOrder(t *testing.T) {
	inf := types.NewInferrer()
	first := inf.FreshTy(types.NotDivergent(span(1, 2)))
	_ = inf.FreshTy(types.NotDivergent(span(3, 4)))
	inf.Eq(span(5, 6), ir.PrimInt, ir.PrimBool)
	inf.Class(span(7, 8), types.Show{Ty: first})

	errs := inf.Solve(nil).Errors()
	require.Len(t, errs, 3)
	assert.Equal(t, ilerr.TyMismatch, errs[0].Code())
	assert.Equal(t, ilerr.AmbiguousTy, errs[1].Code())
	assert.Equal(t, token.Pos(1), errs[1].Pos())
	assert.Equal(t, ilerr.AmbiguousTy, errs[2].Code())
	assert.Equal(t, token.Pos(3), errs[2].Pos())
}

func TestReportedErrorsComeFirst(t *testing.T) {
	inf := types.NewInferrer()
	inf.ReportError(ilerr.New(ilerr.NewMissingClass{Positioner: span(0, 1), Class: "Call", Ty: ir.PrimInt}))
	inf.Eq(span(2, 3), ir.PrimInt, ir.PrimString)

	assert.Equal(t, []ilerr.ErrCode{ilerr.MissingClassCall, ilerr.TyMismatch}, codes(inf.Solve(nil)))
}

func TestInstantiateBoundedParam(t *testing.T) {
	// function Sum<'T : Num>(xs : 'T[]) : 'T
	paramT := ir.Param{Name: "T", ID: 0, Bounds: []ir.ClassBound{{Kind: ir.BoundNum}}}
	scheme := &ir.Scheme{
		Params: []ir.GenericParam{ir.TyParam{Name: "T", Bounds: paramT.Bounds}},
		Ty:     function(ir.Array{Item: paramT}, paramT),
	}
	tests := []struct {
		name  string
		item  ir.Ty
		codes []ilerr.ErrCode
	}{
		{"Int", ir.PrimInt, nil},
		{"Bool", ir.PrimBool, []ilerr.ErrCode{ilerr.MissingClassNum}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			inf := types.NewInferrer()
			callee, _ := inf.Instantiate(scheme, span(0, 3))
			result := inf.FreshTy(types.NotDivergent(span(0, 10)))
			inf.Class(span(0, 10), types.Call{Callee: callee, Input: types.GivenArg{Ty: ir.Array{Item: test.item}}, Output: result})

			assert.Equal(t, test.codes, codes(inf.Solve(nil)))
			assertTy(t, test.item, inf.SubstituteTy(result))
		})
	}
}

func TestFreeVars(t *testing.T) {
	inf := types.NewInferrer()
	x := inf.FreshTy(types.NotDivergent(span(0, 1)))
	y := inf.FreshTy(types.NotDivergent(span(0, 1)))
	z := inf.FreshTy(types.NotDivergent(span(0, 1)))
	inf.Eq(span(0, 1), x, tuple(z, y, z))
	inf.Solve(nil)

	assert.Equal(t, []ir.InferTyId{y.ID, z.ID}, types.FreeVars(inf.Solution(), function(x, z)))
	assert.Empty(t, types.FreeVars(inf.Solution(), ir.PrimInt))
}

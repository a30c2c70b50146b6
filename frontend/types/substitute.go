package types

import (
	"cmp"
	"fmt"
	"iter"
	"sort"

	"github.com/benbjohnson/immutable"
	"github.com/cottand/qtc/frontend/ir"
	"github.com/hashicorp/go-set/v3"
	xset "github.com/xtgo/set"
)

const (
	maxTySize           = 100
	maxTyRecursionDepth = 100
)

type idComparer[K cmp.Ordered] struct{}

func (idComparer[K]) Compare(a, b K) int { return cmp.Compare(a, b) }

// Solution holds the bindings of inference variables.
// Every variable is bound at most once.
//
// Solution is backed by persistent maps, so copying a Solution value
// is a cheap snapshot that later bindings do not affect.
type Solution struct {
	tys      *immutable.SortedMap[ir.InferTyId, ir.Ty]
	functors *immutable.SortedMap[ir.InferFunctorId, ir.FunctorSet]
}

func NewSolution() Solution {
	return Solution{
		tys:      immutable.NewSortedMap[ir.InferTyId, ir.Ty](idComparer[ir.InferTyId]{}),
		functors: immutable.NewSortedMap[ir.InferFunctorId, ir.FunctorSet](idComparer[ir.InferFunctorId]{}),
	}
}

func (s Solution) Ty(id ir.InferTyId) (ir.Ty, bool) {
	return s.tys.Get(id)
}

func (s Solution) Functor(id ir.InferFunctorId) (ir.FunctorSet, bool) {
	return s.functors.Get(id)
}

func (s Solution) Len() int { return s.tys.Len() + s.functors.Len() }

// Tys iterates over the type bindings in ascending id order
func (s Solution) Tys() iter.Seq2[ir.InferTyId, ir.Ty] {
	return func(yield func(ir.InferTyId, ir.Ty) bool) {
		it := s.tys.Iterator()
		for !it.Done() {
			id, ty, _ := it.Next()
			if !yield(id, ty) {
				return
			}
		}
	}
}

// Functors iterates over the functor bindings in ascending id order
func (s Solution) Functors() iter.Seq2[ir.InferFunctorId, ir.FunctorSet] {
	return func(yield func(ir.InferFunctorId, ir.FunctorSet) bool) {
		it := s.functors.Iterator()
		for !it.Done() {
			id, functors, _ := it.Next()
			if !yield(id, functors) {
				return
			}
		}
	}
}

func (s *Solution) bindTy(id ir.InferTyId, ty ir.Ty) {
	if existing, ok := s.tys.Get(id); ok {
		panic(fmt.Sprintf("type variable %s is already bound to %s, cannot rebind to %s", id, existing, ty))
	}
	s.tys = s.tys.Set(id, ty)
}

func (s *Solution) bindFunctor(id ir.InferFunctorId, functors ir.FunctorSet) {
	if existing, ok := s.functors.Get(id); ok {
		panic(fmt.Sprintf("functor variable %s is already bound to %s, cannot rebind to %s", id, existing, functors))
	}
	s.functors = s.functors.Set(id, functors)
}

// SubstituteTy replaces every bound inference variable in ty by its binding,
// following chains of variables. The boolean is false when the recursion
// limit was hit, in which case the returned type may still mention bound variables.
func SubstituteTy(s Solution, ty ir.Ty) (ir.Ty, bool) {
	return substituteTy(s, ty, maxTyRecursionDepth)
}

func substituteTy(s Solution, ty ir.Ty, limit int) (ir.Ty, bool) {
	if limit == 0 {
		return ty, false
	}
	switch ty := ty.(type) {
	case ir.Array:
		item, ok := substituteTy(s, ty.Item, limit-1)
		return ir.Array{Item: item}, ok
	case ir.Arrow:
		input, okIn := substituteTy(s, ty.Input, limit-1)
		output, okOut := substituteTy(s, ty.Output, limit-1)
		return ir.Arrow{
			Kind:     ty.Kind,
			Input:    input,
			Output:   output,
			Functors: SubstituteFunctor(s, ty.Functors),
		}, okIn && okOut
	case ir.Tuple:
		allKnown := true
		items := make([]ir.Ty, len(ty.Items))
		for i, item := range ty.Items {
			var ok bool
			items[i], ok = substituteTy(s, item, limit-1)
			allKnown = allKnown && ok
		}
		return ir.Tuple{Items: items}, allKnown
	case ir.Infer:
		if bound, ok := s.Ty(ty.ID); ok {
			return substituteTy(s, bound, limit-1)
		}
		return ty, true
	default:
		return ty, true
	}
}

// SubstituteFunctor follows functor variable bindings to their end
func SubstituteFunctor(s Solution, functors ir.FunctorSet) ir.FunctorSet {
	for {
		id, ok := functors.Infer()
		if !ok {
			return functors
		}
		bound, ok := s.Functor(id)
		if !ok {
			return functors
		}
		functors = bound
	}
}

// unknownTy returns the unbound variable ty resolves to, if any
func unknownTy(s Solution, ty ir.Ty) (ir.InferTyId, bool) {
	for {
		infer, ok := ty.(ir.Infer)
		if !ok {
			return 0, false
		}
		bound, ok := s.Ty(infer.ID)
		if !ok {
			return infer.ID, true
		}
		ty = bound
	}
}

// linksToInferTy reports whether ty mentions id, directly or through bound variables
func linksToInferTy(s Solution, id ir.InferTyId, ty ir.Ty) bool {
	return linksToInferTyVisited(s, id, ty, set.New[ir.InferTyId](0))
}

func linksToInferTyVisited(s Solution, id ir.InferTyId, ty ir.Ty, visited *set.Set[ir.InferTyId]) bool {
	switch ty := ty.(type) {
	case ir.Array:
		return linksToInferTyVisited(s, id, ty.Item, visited)
	case ir.Arrow:
		return linksToInferTyVisited(s, id, ty.Input, visited) ||
			linksToInferTyVisited(s, id, ty.Output, visited)
	case ir.Tuple:
		for _, item := range ty.Items {
			if linksToInferTyVisited(s, id, item, visited) {
				return true
			}
		}
		return false
	case ir.Infer:
		if ty.ID == id {
			return true
		}
		if !visited.Insert(ty.ID) {
			return false
		}
		bound, ok := s.Ty(ty.ID)
		return ok && linksToInferTyVisited(s, id, bound, visited)
	default:
		return false
	}
}

type inferTyIds []ir.InferTyId

func (ids inferTyIds) Len() int           { return len(ids) }
func (ids inferTyIds) Less(i, j int) bool { return ids[i] < ids[j] }
func (ids inferTyIds) Swap(i, j int)      { ids[i], ids[j] = ids[j], ids[i] }

// FreeVars lists, in ascending order and without duplicates, the unbound
// variables that remain in ty once it is substituted through s
func FreeVars(s Solution, ty ir.Ty) []ir.InferTyId {
	substituted, _ := SubstituteTy(s, ty)
	var ids inferTyIds
	collectInferIds(substituted, &ids)
	sort.Sort(ids)
	return ids[:xset.Uniq(ids)]
}

func collectInferIds(ty ir.Ty, into *inferTyIds) {
	switch ty := ty.(type) {
	case ir.Array:
		collectInferIds(ty.Item, into)
	case ir.Arrow:
		collectInferIds(ty.Input, into)
		collectInferIds(ty.Output, into)
	case ir.Tuple:
		for _, item := range ty.Items {
			collectInferIds(item, into)
		}
	case ir.Infer:
		*into = append(*into, ty.ID)
	}
}

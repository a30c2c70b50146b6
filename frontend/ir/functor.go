package ir

import "fmt"

// FunctorSetValue is a point in the four-element functor lattice
//
//	Empty ⊑ Adj ⊑ CtlAdj
//	Empty ⊑ Ctl ⊑ CtlAdj
//
// Values are encoded as bit sets (Adj = 1, Ctl = 2) so that join and meet are
// bitwise or/and.
type FunctorSetValue uint8

const (
	FunctorsEmpty FunctorSetValue = 0
	FunctorsAdj   FunctorSetValue = 1 << 0
	FunctorsCtl   FunctorSetValue = 1 << 1
	FunctorsCtlAdj                = FunctorsAdj | FunctorsCtl
)

// Functor is a single functor that a callable may support.
type Functor uint8

const (
	FunctorAdj Functor = iota
	FunctorCtl
)

func (f Functor) String() string {
	if f == FunctorAdj {
		return "Adj"
	}
	return "Ctl"
}

func (v FunctorSetValue) Contains(f Functor) bool {
	switch f {
	case FunctorAdj:
		return v&FunctorsAdj != 0
	case FunctorCtl:
		return v&FunctorsCtl != 0
	}
	return false
}

// Union is the lattice join
func (v FunctorSetValue) Union(other FunctorSetValue) FunctorSetValue {
	return v | other
}

// Satisfies reports whether a callable supporting v can be used where other is demanded,
// that is, whether other ⊑ v.
func (v FunctorSetValue) Satisfies(other FunctorSetValue) bool {
	return v&other == other
}

// Superset reports whether actual supports at least the functors in expected.
func Superset(expected, actual FunctorSetValue) bool {
	return actual.Satisfies(expected)
}

func (v FunctorSetValue) String() string {
	switch v {
	case FunctorsEmpty:
		return "empty set"
	case FunctorsAdj:
		return "Adj"
	case FunctorsCtl:
		return "Ctl"
	case FunctorsCtlAdj:
		return "Adj + Ctl"
	}
	return fmt.Sprintf("FunctorSetValue(%d)", uint8(v))
}

type functorSetKind uint8

const (
	functorSetValue functorSetKind = iota
	functorSetInfer
	functorSetParam
)

// FunctorSet is the functor annotation of an Arrow: either a known value,
// an inference variable, or (only inside a Scheme body) a reference to a
// functor generic parameter together with its declared minimum.
//
// FunctorSet is comparable with ==.
type FunctorSet struct {
	kind  functorSetKind
	value FunctorSetValue
	infer InferFunctorId
	param ParamId
}

func FunctorValue(v FunctorSetValue) FunctorSet { return FunctorSet{kind: functorSetValue, value: v} }
func FunctorInfer(id InferFunctorId) FunctorSet { return FunctorSet{kind: functorSetInfer, infer: id} }
func FunctorSetParam(id ParamId, min FunctorSetValue) FunctorSet {
	return FunctorSet{kind: functorSetParam, param: id, value: min}
}

// Value returns the known value of the set. For a parameter it is the declared minimum.
func (f FunctorSet) Value() (FunctorSetValue, bool) {
	return f.value, f.kind != functorSetInfer
}

func (f FunctorSet) Infer() (InferFunctorId, bool) {
	return f.infer, f.kind == functorSetInfer
}

func (f FunctorSet) Param() (ParamId, bool) {
	return f.param, f.kind == functorSetParam
}

func (f FunctorSet) IsInfer() bool { return f.kind == functorSetInfer }

func (f FunctorSet) String() string {
	switch f.kind {
	case functorSetInfer:
		return f.infer.String()
	case functorSetParam:
		return fmt.Sprintf("Param<%s>", f.param)
	default:
		return f.value.String()
	}
}

package ir

import (
	"strings"

	"github.com/pkg/errors"
)

type BoundKind uint8

const (
	BoundAdd BoundKind = iota
	BoundEq
	BoundExp
	BoundIntegral
	BoundIterable
	BoundNum
	BoundOrd
	BoundShow
	BoundSigned
	BoundSub
	BoundMul
	BoundDiv
	BoundMod
)

var boundNames = [...]string{
	BoundAdd:      "Add",
	BoundEq:       "Eq",
	BoundExp:      "Exp",
	BoundIntegral: "Integral",
	BoundIterable: "Iterable",
	BoundNum:      "Num",
	BoundOrd:      "Ord",
	BoundShow:     "Show",
	BoundSigned:   "Signed",
	BoundSub:      "Sub",
	BoundMul:      "Mul",
	BoundDiv:      "Div",
	BoundMod:      "Mod",
}

func (k BoundKind) String() string { return boundNames[k] }

func BoundKindFromName(name string) (BoundKind, bool) {
	for k, n := range boundNames {
		if n == name {
			return BoundKind(k), true
		}
	}
	return 0, false
}

// ClassBound is a class constraint declared on a generic type parameter,
// as in `'T : Eq + Exp[Int]`.
type ClassBound struct {
	Kind BoundKind
	// Arg is the power type of an Exp bound and the item type of an Iterable bound.
	// It is nil for every other kind.
	Arg Ty
}

func (b ClassBound) String() string {
	if b.Arg != nil {
		return b.Kind.String() + "[" + b.Arg.String() + "]"
	}
	return b.Kind.String()
}

// HasBound reports whether the parameter declares a bound of the given kind
func (t Param) HasBound(kind BoundKind) (ClassBound, bool) {
	for _, b := range t.Bounds {
		if b.Kind == kind {
			return b, true
		}
	}
	return ClassBound{}, false
}

// GenericParam is one generic parameter of a Scheme: TyParam or FunctorParam.
type GenericParam interface {
	isGenericParam()
}

type TyParam struct {
	Name   string
	Bounds []ClassBound
}

// FunctorParam is a functor-set parameter; Min is the least set the callable must support.
type FunctorParam struct {
	Min FunctorSetValue
}

func (TyParam) isGenericParam()      {}
func (FunctorParam) isGenericParam() {}

// GenericArg is the argument substituted for a GenericParam: TyArg or FunctorArg.
type GenericArg interface {
	isGenericArg()
}

type TyArg struct{ Ty Ty }
type FunctorArg struct{ Functors FunctorSet }

func (TyArg) isGenericArg()      {}
func (FunctorArg) isGenericArg() {}

// Scheme is the generic signature of a callable. Ty refers to its parameters
// through Param{ID} for types and FunctorSetParam(ID, _) for functor sets,
// where ID is the index into Params.
type Scheme struct {
	Params []GenericParam
	Ty     Arrow
}

var (
	ErrSchemeArity = errors.New("number of generic arguments does not match scheme")
	ErrSchemeKind  = errors.New("generic argument kind does not match parameter")
)

// Instantiate replaces every parameter of the scheme by its argument
func (s *Scheme) Instantiate(args []GenericArg) (Arrow, error) {
	if len(args) != len(s.Params) {
		return Arrow{}, errors.Wrapf(ErrSchemeArity, "expected %d, got %d", len(s.Params), len(args))
	}
	return instantiateArrow(argLookup(args), s.Ty)
}

// InstantiateTy replaces the parameters of the scheme mentioned by ty, such as
// the argument of a parameter bound
func (s *Scheme) InstantiateTy(args []GenericArg, ty Ty) (Ty, error) {
	if len(args) != len(s.Params) {
		return nil, errors.Wrapf(ErrSchemeArity, "expected %d, got %d", len(s.Params), len(args))
	}
	return instantiateTy(argLookup(args), ty)
}

func argLookup(args []GenericArg) func(ParamId) (GenericArg, bool) {
	return func(id ParamId) (GenericArg, bool) {
		if int(id) >= len(args) {
			return nil, false
		}
		return args[id], true
	}
}

func (s *Scheme) String() string {
	sb := strings.Builder{}
	if len(s.Params) > 0 {
		sb.WriteString("<")
		for i, p := range s.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			switch p := p.(type) {
			case TyParam:
				sb.WriteString("'" + p.Name)
			case FunctorParam:
				sb.WriteString("functor (" + p.Min.String() + ")")
			}
		}
		sb.WriteString("> ")
	}
	sb.WriteString(s.Ty.String())
	return sb.String()
}

func instantiateTy(arg func(ParamId) (GenericArg, bool), ty Ty) (Ty, error) {
	switch ty := ty.(type) {
	case Array:
		item, err := instantiateTy(arg, ty.Item)
		if err != nil {
			return nil, err
		}
		return Array{Item: item}, nil
	case Arrow:
		return instantiateArrow(arg, ty)
	case Param:
		a, ok := arg(ty.ID)
		if !ok {
			return ty, nil
		}
		tyArg, ok := a.(TyArg)
		if !ok {
			return nil, errors.Wrapf(ErrSchemeKind, "parameter %s", ty.ID)
		}
		return tyArg.Ty, nil
	case Tuple:
		items := make([]Ty, len(ty.Items))
		for i, item := range ty.Items {
			var err error
			if items[i], err = instantiateTy(arg, item); err != nil {
				return nil, err
			}
		}
		return Tuple{Items: items}, nil
	default:
		return ty, nil
	}
}

func instantiateArrow(arg func(ParamId) (GenericArg, bool), arrow Arrow) (Arrow, error) {
	input, err := instantiateTy(arg, arrow.Input)
	if err != nil {
		return Arrow{}, err
	}
	output, err := instantiateTy(arg, arrow.Output)
	if err != nil {
		return Arrow{}, err
	}
	functors := arrow.Functors
	if param, ok := functors.Param(); ok {
		if a, ok := arg(param); ok {
			functorArg, ok := a.(FunctorArg)
			if !ok {
				return Arrow{}, errors.Wrapf(ErrSchemeKind, "parameter %s", param)
			}
			functors = functorArg.Functors
		}
	}
	return Arrow{
		Kind:     arrow.Kind,
		Input:    input,
		Output:   output,
		Functors: functors,
	}, nil
}

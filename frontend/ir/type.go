package ir

import (
	"strings"
)

// Ty is a type as seen by inference.
//
// The concrete types are Err, Param, Prim, Array, Arrow, Tuple, Udt and Infer.
// All of them are immutable values: substitution builds new types rather than
// updating existing ones.
type Ty interface {
	// String shows the type including inference variable ids, for logs and tests
	String() string
	isTy()
}

var (
	_ Ty = Err{}
	_ Ty = Param{}
	_ Ty = Prim(0)
	_ Ty = Array{}
	_ Ty = Arrow{}
	_ Ty = Tuple{}
	_ Ty = Udt{}
	_ Ty = Infer{}
)

// Err is the poison type produced by earlier failures. It unifies with
// everything and satisfies every class.
type Err struct{}

// Param is a rigid generic type parameter of the callable being checked.
type Param struct {
	Name   string
	ID     ParamId
	Bounds []ClassBound
}

type Prim uint8

const (
	PrimBigInt Prim = iota
	PrimBool
	PrimDouble
	PrimInt
	PrimPauli
	PrimQubit
	PrimRange
	PrimRangeTo
	PrimRangeFrom
	PrimRangeFull
	PrimResult
	PrimString
)

var primNames = [...]string{
	PrimBigInt:    "BigInt",
	PrimBool:      "Bool",
	PrimDouble:    "Double",
	PrimInt:       "Int",
	PrimPauli:     "Pauli",
	PrimQubit:     "Qubit",
	PrimRange:     "Range",
	PrimRangeTo:   "RangeTo",
	PrimRangeFrom: "RangeFrom",
	PrimRangeFull: "RangeFull",
	PrimResult:    "Result",
	PrimString:    "String",
}

// PrimFromName is the inverse of Prim.String
func PrimFromName(name string) (Prim, bool) {
	for p, n := range primNames {
		if n == name {
			return Prim(p), true
		}
	}
	return 0, false
}

// IsRange is true for Range and its open-ended variants
func (p Prim) IsRange() bool {
	return p == PrimRange || p == PrimRangeTo || p == PrimRangeFrom || p == PrimRangeFull
}

type Array struct {
	Item Ty
}

type CallableKind uint8

const (
	Function CallableKind = iota
	Operation
)

func (k CallableKind) String() string {
	if k == Operation {
		return "Operation"
	}
	return "Function"
}

// Arrow is the type of a callable: `->` for functions and `=>` for operations.
type Arrow struct {
	Kind     CallableKind
	Input    Ty
	Output   Ty
	Functors FunctorSet
}

type Tuple struct {
	Items []Ty
}

// Unit is the empty tuple
var Unit = Tuple{}

// Udt is a reference to a user-defined type. A Udt whose Res is ResErr
// behaves like Err when compared to another Udt.
type Udt struct {
	Name string
	Res  Res
}

// IsErr is true when the reference could not be resolved
func (t Udt) IsErr() bool { return t.Res.IsErr() }

// Infer is an unsolved type placeholder.
type Infer struct {
	ID InferTyId
}

func (Err) isTy()   {}
func (Param) isTy() {}
func (Prim) isTy()  {}
func (Array) isTy() {}
func (Arrow) isTy() {}
func (Tuple) isTy() {}
func (Udt) isTy()   {}
func (Infer) isTy() {}

func (Err) String() string     { return "?" }
func (t Param) String() string { return "Param<\"" + t.Name + "\": " + t.ID.String() + ">" }
func (p Prim) String() string {
	if int(p) < len(primNames) {
		return primNames[p]
	}
	return "Prim(?)"
}
func (t Array) String() string { return t.Item.String() + "[]" }
func (t Arrow) String() string { return showArrow(t, Ty.String) }
func (t Tuple) String() string { return showTuple(t, Ty.String) }
func (t Udt) String() string   { return "UDT<\"" + t.Name + "\": " + t.Res.String() + ">" }
func (t Infer) String() string { return t.ID.String() }

func showArrow(t Arrow, show func(Ty) string) string {
	symbol := "->"
	if t.Kind == Operation {
		symbol = "=>"
	}
	sb := strings.Builder{}
	sb.WriteString("(")
	sb.WriteString(show(t.Input))
	sb.WriteString(" " + symbol + " ")
	sb.WriteString(show(t.Output))
	if t.Functors != FunctorValue(FunctorsEmpty) {
		sb.WriteString(" is ")
		sb.WriteString(t.Functors.String())
	}
	sb.WriteString(")")
	return sb.String()
}

func showTuple(t Tuple, show func(Ty) string) string {
	switch len(t.Items) {
	case 0:
		return "Unit"
	case 1:
		return "(" + show(t.Items[0]) + ",)"
	}
	items := make([]string, len(t.Items))
	for i, item := range t.Items {
		items[i] = show(item)
	}
	return "(" + strings.Join(items, ", ") + ")"
}

// Display shows a type the way a user should read it in a diagnostic:
// inference variables and errors show as `?`, parameters and UDTs by name.
func Display(t Ty) string {
	switch t := t.(type) {
	case Infer, Err:
		return "?"
	case Param:
		return t.Name
	case Udt:
		return t.Name
	case Array:
		return Display(t.Item) + "[]"
	case Arrow:
		return showArrow(t, Display)
	case Tuple:
		return showTuple(t, Display)
	}
	return t.String()
}

// Equal compares two types structurally.
// Parameter bounds are not part of a parameter's identity.
func Equal(a, b Ty) bool {
	switch a := a.(type) {
	case Err:
		_, ok := b.(Err)
		return ok
	case Param:
		b, ok := b.(Param)
		return ok && a.ID == b.ID && a.Name == b.Name
	case Prim:
		b, ok := b.(Prim)
		return ok && a == b
	case Array:
		b, ok := b.(Array)
		return ok && Equal(a.Item, b.Item)
	case Arrow:
		b, ok := b.(Arrow)
		return ok && a.Kind == b.Kind && a.Functors == b.Functors &&
			Equal(a.Input, b.Input) && Equal(a.Output, b.Output)
	case Tuple:
		b, ok := b.(Tuple)
		if !ok || len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !Equal(a.Items[i], b.Items[i]) {
				return false
			}
		}
		return true
	case Udt:
		b, ok := b.(Udt)
		return ok && a.Res == b.Res
	case Infer:
		b, ok := b.(Infer)
		return ok && a.ID == b.ID
	}
	return false
}

// Size is the structural complexity of a type, used to reject types that
// would make inference blow up.
func Size(t Ty) int {
	switch t := t.(type) {
	case Array:
		return Size(t.Item) + 1
	case Arrow:
		return Size(t.Input) + Size(t.Output) + 1
	case Tuple:
		size := 1
		for _, item := range t.Items {
			size += Size(item)
		}
		return size
	default:
		return 1
	}
}

// IsPoison is true for types that act as wildcards: Err and unresolved UDT references
func IsPoison(t Ty) bool {
	switch t := t.(type) {
	case Err:
		return true
	case Udt:
		return t.IsErr()
	}
	return false
}

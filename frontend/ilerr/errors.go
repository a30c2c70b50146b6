package ilerr

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/cottand/qtc/frontend/ir"
)

// enableDebugErrorPrinting makes errors include their stacktrace when printed
var enableDebugErrorPrinting = false

const enableDebugFullStacktrace bool = false

// SetDebugPrinting toggles whether FormatWithCode prefixes errors with the
// frame that created them
func SetDebugPrinting(enabled bool) {
	enableDebugErrorPrinting = enabled
}

type ErrCode int

const (
	None ErrCode = iota
	TyMismatch
	MissingClassAdd
	MissingClassAdj
	MissingClassCall
	MissingClassCtl
	MissingClassEq
	MissingClassExp
	MissingClassHasField
	MissingClassHasIndex
	MissingClassIntegral
	MissingClassIterable
	MissingClassNum
	MissingClassOrd
	MissingClassSigned
	MissingClassShow
	MissingClassUnwrap
	CallableMismatch
	FunctorMismatch
	MissingFunctor
	AmbiguousTy
	RecursiveTypeConstraint
	TySizeLimitExceeded
	MissingClassSub
	MissingClassMul
	MissingClassDiv
	MissingClassMod
	MissingClassStruct
)

var codeNames = [...]string{
	None:                    "None",
	TyMismatch:              "TyMismatch",
	MissingClassAdd:         "MissingClassAdd",
	MissingClassAdj:         "MissingClassAdj",
	MissingClassCall:        "MissingClassCall",
	MissingClassCtl:         "MissingClassCtl",
	MissingClassEq:          "MissingClassEq",
	MissingClassExp:         "MissingClassExp",
	MissingClassHasField:    "MissingClassHasField",
	MissingClassHasIndex:    "MissingClassHasIndex",
	MissingClassIntegral:    "MissingClassIntegral",
	MissingClassIterable:    "MissingClassIterable",
	MissingClassNum:         "MissingClassNum",
	MissingClassOrd:         "MissingClassOrd",
	MissingClassSigned:      "MissingClassSigned",
	MissingClassShow:        "MissingClassShow",
	MissingClassUnwrap:      "MissingClassUnwrap",
	CallableMismatch:        "CallableMismatch",
	FunctorMismatch:         "FunctorMismatch",
	MissingFunctor:          "MissingFunctor",
	AmbiguousTy:             "AmbiguousTy",
	RecursiveTypeConstraint: "RecursiveTypeConstraint",
	TySizeLimitExceeded:     "TySizeLimitExceeded",
	MissingClassSub:         "MissingClassSub",
	MissingClassMul:         "MissingClassMul",
	MissingClassDiv:         "MissingClassDiv",
	MissingClassMod:         "MissingClassMod",
	MissingClassStruct:      "MissingClassStruct",
}

func (c ErrCode) String() string {
	if c < 0 || int(c) >= len(codeNames) {
		return fmt.Sprintf("ErrCode(%d)", int(c))
	}
	return codeNames[c]
}

// CodeFromName is the inverse of ErrCode.String
func CodeFromName(name string) (ErrCode, bool) {
	for c, n := range codeNames {
		if n == name {
			return ErrCode(c), true
		}
	}
	return None, false
}

type IleError interface {
	Error() string
	Code() ErrCode
	ir.Positioner

	withStack([]byte) IleError
	getStack() []byte
}

func FormatWithCode(e IleError) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if !enableDebugFullStacktrace {
			if lines := strings.Split(stack, "\n"); len(lines) > 6 {
				stack = lines[6]
			}
		}
		return fmt.Sprintf("%s:(E%03d) %s", stack, e.Code(), e.Error())
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

func New[E IleError](err E) IleError {
	return err.withStack(debug.Stack())
}

type Unclassified struct {
	From error
	ir.Positioner
	stack []byte
}

func (e Unclassified) Error() string {
	return fmt.Sprintf("unclassified error: %v", e.From)
}
func (e Unclassified) Code() ErrCode    { return None }
func (e Unclassified) getStack() []byte { return e.stack }
func (e Unclassified) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewTyMismatch struct {
	ir.Positioner
	Expected ir.Ty
	Actual   ir.Ty
	stack    []byte
}

func (e NewTyMismatch) Error() string {
	return fmt.Sprintf("type mismatch: expected %s, found %s", ir.Display(e.Expected), ir.Display(e.Actual))
}
func (e NewTyMismatch) Code() ErrCode    { return TyMismatch }
func (e NewTyMismatch) getStack() []byte { return e.stack }
func (e NewTyMismatch) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

var missingClassCodes = map[string]ErrCode{
	"Add":      MissingClassAdd,
	"Adj":      MissingClassAdj,
	"Call":     MissingClassCall,
	"Ctl":      MissingClassCtl,
	"Eq":       MissingClassEq,
	"Exp":      MissingClassExp,
	"HasField": MissingClassHasField,
	"HasIndex": MissingClassHasIndex,
	"Integral": MissingClassIntegral,
	"Iterable": MissingClassIterable,
	"Num":      MissingClassNum,
	"Ord":      MissingClassOrd,
	"Signed":   MissingClassSigned,
	"Show":     MissingClassShow,
	"Unwrap":   MissingClassUnwrap,
	"Sub":      MissingClassSub,
	"Mul":      MissingClassMul,
	"Div":      MissingClassDiv,
	"Mod":      MissingClassMod,
	"Struct":   MissingClassStruct,
}

var missingClassMessages = map[string]string{
	"Add":      "type %s does not support plus",
	"Adj":      "type %s does not support Adjoint",
	"Call":     "type %s is not callable",
	"Ctl":      "type %s does not support Controlled",
	"Eq":       "type %s does not support equality",
	"Exp":      "type %s does not support exponentiation",
	"HasField": "type %s does not have a field",
	"HasIndex": "type %s cannot be indexed",
	"Integral": "type %s is not an integral type",
	"Iterable": "type %s is not iterable",
	"Num":      "type %s is not a numeric type",
	"Ord":      "type %s does not support comparison",
	"Signed":   "type %s does not support negation",
	"Show":     "type %s cannot be converted into a string",
	"Unwrap":   "type %s cannot be unwrapped",
	"Sub":      "type %s does not support minus",
	"Mul":      "type %s does not support multiplication",
	"Div":      "type %s does not support division",
	"Mod":      "type %s does not support modulus",
	"Struct":   "type %s is not a struct",
}

// NewMissingClass is reported when a type does not satisfy a class predicate.
// Class is the predicate name, such as Add or HasField.
type NewMissingClass struct {
	ir.Positioner
	Class string
	Ty    ir.Ty
	// Detail is appended to the message, such as the missing field name
	Detail string
	stack  []byte
}

func (e NewMissingClass) Error() string {
	msg, ok := missingClassMessages[e.Class]
	if !ok {
		msg = "type %s does not satisfy " + e.Class
	}
	msg = fmt.Sprintf(msg, ir.Display(e.Ty))
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}
func (e NewMissingClass) Code() ErrCode {
	if code, ok := missingClassCodes[e.Class]; ok {
		return code
	}
	return None
}
func (e NewMissingClass) getStack() []byte { return e.stack }
func (e NewMissingClass) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewCallableMismatch struct {
	ir.Positioner
	Expected ir.CallableKind
	Actual   ir.CallableKind
	stack    []byte
}

func (e NewCallableMismatch) Error() string {
	return fmt.Sprintf("callable kind mismatch: expected %s, found %s", e.Expected, e.Actual)
}
func (e NewCallableMismatch) Code() ErrCode    { return CallableMismatch }
func (e NewCallableMismatch) getStack() []byte { return e.stack }
func (e NewCallableMismatch) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewFunctorMismatch struct {
	ir.Positioner
	Expected ir.FunctorSet
	Actual   ir.FunctorSet
	stack    []byte
}

func (e NewFunctorMismatch) Error() string {
	return fmt.Sprintf("functor mismatch: expected %s, found %s", e.Expected, e.Actual)
}
func (e NewFunctorMismatch) Code() ErrCode    { return FunctorMismatch }
func (e NewFunctorMismatch) getStack() []byte { return e.stack }
func (e NewFunctorMismatch) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewMissingFunctor struct {
	ir.Positioner
	Expected ir.FunctorSetValue
	Actual   ir.FunctorSetValue
	stack    []byte
}

func (e NewMissingFunctor) Error() string {
	return fmt.Sprintf("missing functor: expected %s, found %s", e.Expected, e.Actual)
}
func (e NewMissingFunctor) Code() ErrCode    { return MissingFunctor }
func (e NewMissingFunctor) getStack() []byte { return e.stack }
func (e NewMissingFunctor) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewAmbiguousTy struct {
	ir.Positioner
	stack []byte
}

func (e NewAmbiguousTy) Error() string {
	return "insufficient type information to infer type"
}
func (e NewAmbiguousTy) Code() ErrCode    { return AmbiguousTy }
func (e NewAmbiguousTy) getStack() []byte { return e.stack }
func (e NewAmbiguousTy) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewRecursiveTypeConstraint struct {
	ir.Positioner
	stack []byte
}

func (e NewRecursiveTypeConstraint) Error() string {
	return "recursive type constraint: a type cannot contain itself"
}
func (e NewRecursiveTypeConstraint) Code() ErrCode    { return RecursiveTypeConstraint }
func (e NewRecursiveTypeConstraint) getStack() []byte { return e.stack }
func (e NewRecursiveTypeConstraint) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewTySizeLimitExceeded struct {
	ir.Positioner
	Ty    ir.Ty
	Limit int
	stack []byte
}

func (e NewTySizeLimitExceeded) Error() string {
	return fmt.Sprintf("type %s exceeds the size limit of %d", ir.Display(e.Ty), e.Limit)
}
func (e NewTySizeLimitExceeded) Code() ErrCode    { return TySizeLimitExceeded }
func (e NewTySizeLimitExceeded) getStack() []byte { return e.stack }
func (e NewTySizeLimitExceeded) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

package fixture

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/cottand/qtc/frontend/ilerr"
	"github.com/cottand/qtc/frontend/ir"
	"github.com/cottand/qtc/frontend/types"
	"github.com/cottand/qtc/internal/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var logger = slog.New(ir.IRSlogHandler(log.DefaultLogger.Handler())).With("section", "fixture")

// Binding is a named variable of a problem after solving
type Binding[T any] struct {
	Name  string
	Value T
	// Free are the type variables Value still mentions
	Free []ir.InferTyId
}

type Result struct {
	Problem     *Problem
	Diagnostics *ilerr.Errors
	Errors      []ilerr.IleError
	Solution    types.Solution
	// Tys holds the substituted type of every declared variable and alias, in declaration order
	Tys      []Binding[ir.Ty]
	Functors []Binding[ir.FunctorSet]

	env *env
	inf *types.Inferrer
}

// Run declares the problem's variables, queues its constraints and solves them
func Run(p *Problem) (*Result, error) {
	e := newEnv()
	inf := types.NewInferrer()
	var tyOrder, functorOrder []string

	for _, u := range p.Udts {
		e.udts[u.Name] = ir.Udt{Name: u.Name, Res: ir.ResItem(ir.ItemId{Item: u.Item})}
	}
	for _, u := range p.Udts {
		def, err := e.udtDef(u.Def)
		if err != nil {
			return nil, errors.Wrapf(err, "udt %s", u.Name)
		}
		decl := &ir.UdtDecl{Name: u.Name, Definition: def}
		e.decls[ir.ItemId{Item: u.Item}] = decl
		// a udt can be instantiated by name to get its constructor
		cons := decl.ConsScheme(ir.ItemId{Item: u.Item})
		e.schemes[u.Name] = &cons
	}
	for _, v := range p.Vars {
		source := types.NotDivergent(ir.Span(v.Span))
		if v.Divergent {
			source = types.Divergent()
		}
		e.tys[v.Name] = inf.FreshTy(source)
		tyOrder = append(tyOrder, v.Name)
	}
	for _, f := range p.Functors {
		e.functors[f] = inf.FreshFunctor()
		functorOrder = append(functorOrder, f)
	}
	for _, s := range p.Schemes {
		scheme, err := e.scheme(s)
		if err != nil {
			return nil, errors.Wrapf(err, "scheme %s", s.Name)
		}
		e.schemes[s.Name] = scheme
	}

	for i, c := range p.Constraints {
		span := ir.Span(c.Span)
		switch {
		case c.Eq != nil:
			expected, err := e.ty(c.Eq[0])
			if err != nil {
				return nil, errors.Wrapf(err, "constraint %d", i)
			}
			actual, err := e.ty(c.Eq[1])
			if err != nil {
				return nil, errors.Wrapf(err, "constraint %d", i)
			}
			inf.Eq(span, expected, actual)
		case c.Class != nil:
			class, err := e.class(*c.Class)
			if err != nil {
				return nil, errors.Wrapf(err, "constraint %d", i)
			}
			inf.Class(span, class)
		case c.Superset != nil:
			expected, err := functorValue(c.Superset.Expected.Value)
			if err != nil {
				return nil, errors.Wrapf(err, "constraint %d", i)
			}
			actual, err := e.functorSet(c.Superset.Actual)
			if err != nil {
				return nil, errors.Wrapf(err, "constraint %d", i)
			}
			inf.Superset(span, expected, actual)
		case c.Instantiate != nil:
			scheme := e.schemes[c.Instantiate.Scheme]
			if len(c.Instantiate.Args) > len(scheme.Params) {
				return nil, errors.Errorf("constraint %d: scheme %s has %d parameters", i, c.Instantiate.Scheme, len(scheme.Params))
			}
			arrow, args := inf.Instantiate(scheme, span)
			if c.Instantiate.As != "" {
				e.tys[c.Instantiate.As] = arrow
				tyOrder = append(tyOrder, c.Instantiate.As)
			}
			for idx, alias := range c.Instantiate.Args {
				if alias == "" {
					continue
				}
				switch arg := args[idx].(type) {
				case ir.TyArg:
					e.tys[alias] = arg.Ty
					tyOrder = append(tyOrder, alias)
				case ir.FunctorArg:
					e.functors[alias] = arg.Functors
					functorOrder = append(functorOrder, alias)
				}
			}
		}
	}

	errs := inf.Solve(e.decls)
	logger.Debug("solved problem", "name", p.Name, "errors", errs)

	result := &Result{
		Problem:     p,
		Diagnostics: errs,
		Errors:      errs.Errors(),
		Solution:    inf.Solution(),
		env:         e,
		inf:         inf,
	}
	for _, name := range tyOrder {
		result.Tys = append(result.Tys, Binding[ir.Ty]{
			Name:  name,
			Value: inf.SubstituteTy(e.tys[name]),
			Free:  types.FreeVars(result.Solution, e.tys[name]),
		})
	}
	for _, name := range functorOrder {
		result.Functors = append(result.Functors, Binding[ir.FunctorSet]{Name: name, Value: inf.SubstituteFunctor(e.functors[name])})
	}
	return result, nil
}

// class resolves the operands of a class constraint. Classes over a single
// type take that type as their operand, the others take a mapping.
func (e *env) class(spec ClassSpec) (types.Class, error) {
	switch spec.Name {
	case "Add", "Adj", "Div", "Eq", "Integral", "Mod", "Mul", "Num", "Ord", "Signed", "Show", "Struct", "Sub":
		ty, err := e.tyNode(spec.Operands)
		if err != nil {
			return nil, err
		}
		switch spec.Name {
		case "Add":
			return types.Add{Ty: ty}, nil
		case "Adj":
			return types.Adj{Ty: ty}, nil
		case "Div":
			return types.Div{Ty: ty}, nil
		case "Eq":
			return types.Eq{Ty: ty}, nil
		case "Integral":
			return types.Integral{Ty: ty}, nil
		case "Mod":
			return types.Mod{Ty: ty}, nil
		case "Mul":
			return types.Mul{Ty: ty}, nil
		case "Num":
			return types.Num{Ty: ty}, nil
		case "Ord":
			return types.Ord{Ty: ty}, nil
		case "Signed":
			return types.Signed{Ty: ty}, nil
		case "Struct":
			return types.Struct{Record: ty}, nil
		case "Sub":
			return types.Sub{Ty: ty}, nil
		default:
			return types.Show{Ty: ty}, nil
		}
	}

	switch spec.Name {
	case "Call", "Ctl", "Exp", "HasField", "HasIndex", "Iterable", "Unwrap":
	default:
		return nil, nodeErrorf(spec.Operands, "unknown class %s", spec.Name)
	}
	if spec.Operands.Kind != yaml.MappingNode {
		return nil, nodeErrorf(spec.Operands, "operands of %s must be a mapping", spec.Name)
	}
	operands := make(map[string]*yaml.Node, len(spec.Operands.Content)/2)
	for i := 0; i+1 < len(spec.Operands.Content); i += 2 {
		operands[spec.Operands.Content[i].Value] = spec.Operands.Content[i+1]
	}
	ty := func(key string) (ir.Ty, error) {
		node, ok := operands[key]
		if !ok {
			return nil, nodeErrorf(spec.Operands, "%s is missing %s", spec.Name, key)
		}
		return e.tyNode(node)
	}
	tys := func(keys ...string) ([]ir.Ty, error) {
		out := make([]ir.Ty, len(keys))
		for i, key := range keys {
			var err error
			if out[i], err = ty(key); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	switch spec.Name {
	case "Call":
		t, err := tys("callee", "output")
		if err != nil {
			return nil, err
		}
		input, ok := operands["input"]
		if !ok {
			return nil, nodeErrorf(spec.Operands, "Call is missing input")
		}
		arg, err := e.argTy(input)
		if err != nil {
			return nil, err
		}
		return types.Call{Callee: t[0], Input: arg, Output: t[1]}, nil
	case "Ctl":
		t, err := tys("op", "with_ctls")
		if err != nil {
			return nil, err
		}
		return types.Ctl{Op: t[0], WithCtls: t[1]}, nil
	case "Exp":
		t, err := tys("base", "power")
		if err != nil {
			return nil, err
		}
		return types.Exp{Base: t[0], Power: t[1]}, nil
	case "HasField":
		t, err := tys("record", "item")
		if err != nil {
			return nil, err
		}
		name, ok := operands["name"]
		if !ok || name.Kind != yaml.ScalarNode {
			return nil, nodeErrorf(spec.Operands, "HasField needs a field name")
		}
		return types.HasField{Record: t[0], Field: name.Value, Item: t[1]}, nil
	case "HasIndex":
		t, err := tys("container", "index", "item")
		if err != nil {
			return nil, err
		}
		return types.HasIndex{Container: t[0], Index: t[1], Item: t[2]}, nil
	case "Iterable":
		t, err := tys("container", "item")
		if err != nil {
			return nil, err
		}
		return types.Iterable{Container: t[0], Item: t[1]}, nil
	case "Unwrap":
		t, err := tys("wrapper", "base")
		if err != nil {
			return nil, err
		}
		return types.Unwrap{Wrapper: t[0], Base: t[1]}, nil
	}
	panic("unreachable: unknown class " + spec.Name)
}

// argTy resolves a call argument: a sequence is a tuple of arguments,
// {hole: T} is a missing argument of type T, anything else is a given type
func (e *env) argTy(node *yaml.Node) (types.ArgTy, error) {
	switch node.Kind {
	case yaml.SequenceNode:
		items := make([]types.ArgTy, len(node.Content))
		for i, item := range node.Content {
			var err error
			if items[i], err = e.argTy(item); err != nil {
				return nil, err
			}
		}
		return types.TupleArg{Items: items}, nil
	case yaml.MappingNode:
		if len(node.Content) == 2 && node.Content[0].Value == "hole" {
			ty, err := e.tyNode(node.Content[1])
			if err != nil {
				return nil, err
			}
			return types.HoleArg{Ty: ty}, nil
		}
	}
	ty, err := e.tyNode(node)
	if err != nil {
		return nil, err
	}
	return types.GivenArg{Ty: ty}, nil
}

// Check compares the result against the problem's expectations and returns
// one message per difference
func (r *Result) Check() []string {
	expect := r.Problem.Expect
	if expect == nil {
		return nil
	}
	var diffs []string

	if len(expect.Errors) != len(r.Errors) {
		diffs = append(diffs, fmt.Sprintf("expected %d errors, found %d: %v", len(expect.Errors), len(r.Errors), r.Diagnostics.Codes()))
	}
	for i := 0; i < min(len(expect.Errors), len(r.Errors)); i++ {
		want, got := expect.Errors[i], r.Errors[i]
		code, ok := ilerr.CodeFromName(want.Code)
		if !ok {
			diffs = append(diffs, fmt.Sprintf("error %d: unknown error code %s", i, want.Code))
			continue
		}
		if code != got.Code() {
			diffs = append(diffs, fmt.Sprintf("error %d: expected %s, found %s", i, code, ilerr.FormatWithCode(got)))
		}
		if want.Span != nil && (want.Span.Lo != got.Pos() || want.Span.Hi != got.End()) {
			diffs = append(diffs, fmt.Sprintf("error %d: expected span %s, found %s", i, ir.Span(*want.Span), ir.Span{Lo: got.Pos(), Hi: got.End()}))
		}
	}

	for _, b := range r.Tys {
		want, ok := expect.Tys[b.Name]
		if !ok {
			continue
		}
		wantTy, err := r.env.ty(want)
		if err != nil {
			diffs = append(diffs, fmt.Sprintf("$%s: %v", b.Name, err))
			continue
		}
		wantTy = r.inf.SubstituteTy(wantTy)
		if !ir.Equal(wantTy, b.Value) {
			diffs = append(diffs, fmt.Sprintf("$%s: expected %s, found %s", b.Name, wantTy, b.Value))
		}
	}
	for _, name := range slices.Sorted(maps.Keys(expect.Tys)) {
		if _, ok := r.env.tys[name]; !ok {
			diffs = append(diffs, fmt.Sprintf("$%s: not declared", name))
		}
	}

	for _, b := range r.Functors {
		want, ok := expect.Functors[b.Name]
		if !ok {
			continue
		}
		wantValue, err := functorValue(want)
		if err != nil {
			diffs = append(diffs, fmt.Sprintf("$%s: %v", b.Name, err))
			continue
		}
		if got, ok := b.Value.Value(); !ok || got != wantValue {
			diffs = append(diffs, fmt.Sprintf("$%s: expected functors %s, found %s", b.Name, wantValue, b.Value))
		}
	}
	for _, name := range slices.Sorted(maps.Keys(expect.Functors)) {
		if _, ok := r.env.functors[name]; !ok {
			diffs = append(diffs, fmt.Sprintf("$%s: not declared", name))
		}
	}
	return diffs
}

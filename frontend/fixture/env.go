package fixture

import (
	"go/token"
	"strings"

	"github.com/cottand/qtc/frontend/ir"
	"github.com/cottand/qtc/frontend/types"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

func toPos(i int) token.Pos { return token.Pos(i) }

// env resolves the names used by a problem
type env struct {
	udts     map[string]ir.Udt
	decls    types.Udts
	tys      map[string]ir.Ty
	functors map[string]ir.FunctorSet
	schemes  map[string]*ir.Scheme
	// params and functorParams are the parameters of the scheme being resolved, nil outside schemes
	params        map[string]ir.Param
	functorParams map[string]ir.FunctorSet
}

func newEnv() *env {
	return &env{
		udts:     make(map[string]ir.Udt),
		decls:    make(types.Udts),
		tys:      make(map[string]ir.Ty),
		functors: make(map[string]ir.FunctorSet),
		schemes:  make(map[string]*ir.Scheme),
	}
}

func (e *env) ty(expr TyExpr) (ir.Ty, error) {
	if expr.node == nil {
		return nil, errors.New("missing type")
	}
	return e.tyNode(expr.node)
}

func (e *env) tyNode(node *yaml.Node) (ir.Ty, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return e.tyName(node)
	case yaml.SequenceNode:
		items, err := e.tyNodes(node.Content)
		if err != nil {
			return nil, err
		}
		return ir.Tuple{Items: items}, nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return nil, nodeErrorf(node, "type mapping must have a single key")
		}
		key, value := node.Content[0].Value, node.Content[1]
		switch key {
		case "array":
			item, err := e.tyNode(value)
			if err != nil {
				return nil, err
			}
			return ir.Array{Item: item}, nil
		case "tuple":
			items, err := e.tyNodes(value.Content)
			if err != nil {
				return nil, err
			}
			return ir.Tuple{Items: items}, nil
		case "fn":
			return e.arrow(ir.Function, value)
		case "op":
			return e.arrow(ir.Operation, value)
		}
		return nil, nodeErrorf(node, "unknown type constructor %q", key)
	}
	return nil, nodeErrorf(node, "unexpected type")
}

func (e *env) tyNodes(nodes []*yaml.Node) ([]ir.Ty, error) {
	tys := make([]ir.Ty, len(nodes))
	for i, n := range nodes {
		var err error
		if tys[i], err = e.tyNode(n); err != nil {
			return nil, err
		}
	}
	return tys, nil
}

func (e *env) arrow(kind ir.CallableKind, node *yaml.Node) (ir.Arrow, error) {
	var spec struct {
		In       TyExpr    `yaml:"in"`
		Out      TyExpr    `yaml:"out"`
		Functors *Functors `yaml:"functors"`
	}
	if err := node.Decode(&spec); err != nil {
		return ir.Arrow{}, err
	}
	input, err := e.ty(spec.In)
	if err != nil {
		return ir.Arrow{}, errors.Wrap(err, "arrow input")
	}
	output, err := e.ty(spec.Out)
	if err != nil {
		return ir.Arrow{}, errors.Wrap(err, "arrow output")
	}
	functors := ir.FunctorValue(ir.FunctorsEmpty)
	if spec.Functors != nil {
		if functors, err = e.functorSet(*spec.Functors); err != nil {
			return ir.Arrow{}, err
		}
	}
	return ir.Arrow{Kind: kind, Input: input, Output: output, Functors: functors}, nil
}

func (e *env) tyName(node *yaml.Node) (ir.Ty, error) {
	name := node.Value
	switch {
	case name == "Unit":
		return ir.Unit, nil
	case name == "Err":
		return ir.Err{}, nil
	case strings.HasPrefix(name, "$"):
		if ty, ok := e.tys[name[1:]]; ok {
			return ty, nil
		}
		return nil, nodeErrorf(node, "undeclared variable %s", name)
	case strings.HasPrefix(name, "'"):
		if param, ok := e.params[name[1:]]; ok {
			return param, nil
		}
		return nil, nodeErrorf(node, "unknown type parameter %s", name)
	case strings.HasPrefix(name, "!"):
		return ir.Udt{Name: name[1:], Res: ir.ResErr}, nil
	}
	if prim, ok := ir.PrimFromName(name); ok {
		return prim, nil
	}
	if udt, ok := e.udts[name]; ok {
		return udt, nil
	}
	return nil, nodeErrorf(node, "unknown type %s", name)
}

var functorValues = map[string]ir.FunctorSetValue{
	"Empty":     ir.FunctorsEmpty,
	"Adj":       ir.FunctorsAdj,
	"Ctl":       ir.FunctorsCtl,
	"CtlAdj":    ir.FunctorsCtlAdj,
	"Adj + Ctl": ir.FunctorsCtlAdj,
}

func functorValue(name string) (ir.FunctorSetValue, error) {
	if v, ok := functorValues[name]; ok {
		return v, nil
	}
	return 0, errors.Errorf("unknown functor set %q", name)
}

func (e *env) functorSet(f Functors) (ir.FunctorSet, error) {
	if name, ok := strings.CutPrefix(f.Value, "'"); ok {
		if functors, ok := e.functorParams[name]; ok {
			return functors, nil
		}
		return ir.FunctorSet{}, errors.Errorf("unknown functor parameter %s", f.Value)
	}
	if name, ok := strings.CutPrefix(f.Value, "$"); ok {
		if functors, ok := e.functors[name]; ok {
			return functors, nil
		}
		return ir.FunctorSet{}, errors.Errorf("undeclared functor variable %s", f.Value)
	}
	v, err := functorValue(f.Value)
	if err != nil {
		return ir.FunctorSet{}, err
	}
	return ir.FunctorValue(v), nil
}

func (e *env) udtDef(tree UdtTree) (ir.UdtDef, error) {
	if tree.Ty != nil {
		ty, err := e.ty(*tree.Ty)
		if err != nil {
			return ir.UdtDef{}, err
		}
		return ir.UdtDef{Field: &ir.UdtField{Name: tree.Name, Ty: ty}}, nil
	}
	items := make([]ir.UdtDef, len(tree.Items))
	for i, item := range tree.Items {
		var err error
		if items[i], err = e.udtDef(item); err != nil {
			return ir.UdtDef{}, err
		}
	}
	return ir.UdtDef{Tuple: items}, nil
}

// bound resolves a parameter bound, written as `Eq` or `{Exp: Int}`
func (e *env) bound(expr TyExpr) (ir.ClassBound, error) {
	node := expr.node
	switch node.Kind {
	case yaml.ScalarNode:
		kind, ok := ir.BoundKindFromName(node.Value)
		if !ok {
			return ir.ClassBound{}, nodeErrorf(node, "unknown bound %s", node.Value)
		}
		if kind == ir.BoundExp || kind == ir.BoundIterable {
			return ir.ClassBound{}, nodeErrorf(node, "bound %s needs a type argument", node.Value)
		}
		return ir.ClassBound{Kind: kind}, nil
	case yaml.MappingNode:
		if len(node.Content) == 2 {
			kind, ok := ir.BoundKindFromName(node.Content[0].Value)
			if !ok {
				return ir.ClassBound{}, nodeErrorf(node, "unknown bound %s", node.Content[0].Value)
			}
			arg, err := e.tyNode(node.Content[1])
			if err != nil {
				return ir.ClassBound{}, err
			}
			return ir.ClassBound{Kind: kind, Arg: arg}, nil
		}
	}
	return ir.ClassBound{}, nodeErrorf(node, "bound must be a name or a single-key mapping")
}

func (e *env) scheme(spec SchemeSpec) (*ir.Scheme, error) {
	scheme := &ir.Scheme{}
	e.params = make(map[string]ir.Param)
	e.functorParams = make(map[string]ir.FunctorSet)
	defer func() { e.params, e.functorParams = nil, nil }()

	for i, p := range spec.Params {
		id := ir.ParamId(i)
		if p.Functor != nil {
			minimum, err := functorValue(p.Functor.Value)
			if err != nil {
				return nil, err
			}
			scheme.Params = append(scheme.Params, ir.FunctorParam{Min: minimum})
			e.functorParams[p.Name] = ir.FunctorSetParam(id, minimum)
			continue
		}
		param := ir.Param{Name: p.Name, ID: id}
		// bounds may mention earlier parameters
		for _, b := range p.Bounds {
			bound, err := e.bound(b)
			if err != nil {
				return nil, errors.Wrapf(err, "bounds of '%s", p.Name)
			}
			param.Bounds = append(param.Bounds, bound)
		}
		e.params[p.Name] = param
		scheme.Params = append(scheme.Params, ir.TyParam{Name: p.Name, Bounds: param.Bounds})
	}
	ty, err := e.ty(spec.Ty)
	if err != nil {
		return nil, err
	}
	arrow, ok := ty.(ir.Arrow)
	if !ok {
		return nil, errors.Errorf("scheme %s must be a callable, got %s", spec.Name, ty)
	}
	scheme.Ty = arrow
	return scheme, nil
}

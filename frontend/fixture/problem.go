// Package fixture describes inference problems in YAML and runs them through
// a types.Inferrer.
//
// A problem declares user-defined types, inference variables and schemes, then
// lists the constraints a walker would have produced. Types are written as
//
//	Int, Bool, Qubit, ...   primitive types, plus Unit and Err
//	$x                      a declared variable, or an alias bound by instantiate
//	'T                      a parameter of the scheme being declared
//	Pair                    a declared UDT, !Pair for an unresolved one
//	[Int, Bool]             a tuple
//	{array: Int}            an array
//	{fn: {in: Int, out: Int}}
//	{op: {in: Qubit, out: Unit, functors: Adj}}
//
// 'T and !Pair must be quoted, since YAML reads a leading ' or ! as syntax.
//
// A UDT name doubles as the scheme of its constructor, so `instantiate:
// {scheme: Pair}` yields the function from the UDT's pure type to Pair.
package fixture

import (
	"fmt"
	"os"

	"github.com/cottand/qtc/frontend/ir"
	"github.com/hashicorp/go-set/v3"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Problem struct {
	Name        string       `yaml:"name"`
	Udts        []UdtSpec    `yaml:"udts"`
	Vars        []VarSpec    `yaml:"vars"`
	Functors    []string     `yaml:"functors"`
	Schemes     []SchemeSpec `yaml:"schemes"`
	Constraints []Constraint `yaml:"constraints"`
	Expect      *Expectation `yaml:"expect"`
}

type UdtSpec struct {
	Name string  `yaml:"name"`
	Item uint32  `yaml:"item"`
	Def  UdtTree `yaml:"def"`
}

// UdtTree is a UDT definition: a mapping {name: N, ty: T} for a field
// (name is optional) or a sequence of nested definitions
type UdtTree struct {
	Name  string
	Ty    *TyExpr
	Items []UdtTree
}

type VarSpec struct {
	Name      string `yaml:"name"`
	Divergent bool   `yaml:"divergent"`
	Span      Span   `yaml:"span"`
}

type SchemeSpec struct {
	Name   string      `yaml:"name"`
	Params []ParamSpec `yaml:"params"`
	Ty     TyExpr      `yaml:"ty"`
}

// ParamSpec is either a type parameter `{name: T, bounds: [Eq, {Exp: Int}]}`
// or a functor parameter `{name: F, functor: Adj}`. Scheme bodies refer to
// both as 'T and 'F.
type ParamSpec struct {
	Name    string    `yaml:"name"`
	Bounds  []TyExpr  `yaml:"bounds"`
	Functor *Functors `yaml:"functor"`
}

// Constraint holds exactly one of Eq, Class, Superset or Instantiate
type Constraint struct {
	Span        Span             `yaml:"span"`
	Eq          []TyExpr         `yaml:"eq"`
	Class       *ClassSpec       `yaml:"class"`
	Superset    *SupersetSpec    `yaml:"superset"`
	Instantiate *InstantiateSpec `yaml:"instantiate"`
}

// ClassSpec is a single-key mapping from the class name to its operands,
// such as `{Add: Int}` or `{HasField: {record: Pair, name: First, item: $x}}`
type ClassSpec struct {
	Name     string
	Operands *yaml.Node
}

type SupersetSpec struct {
	Expected Functors `yaml:"expected"`
	Actual   Functors `yaml:"actual"`
}

// InstantiateSpec instantiates Scheme, binding the instantiated callable to
// the alias As and each generic argument to the matching alias in Args
type InstantiateSpec struct {
	Scheme string   `yaml:"scheme"`
	As     string   `yaml:"as"`
	Args   []string `yaml:"args"`
}

type Expectation struct {
	Errors   []ExpectedError   `yaml:"errors"`
	Tys      map[string]TyExpr `yaml:"tys"`
	Functors map[string]string `yaml:"functors"`
}

// ExpectedError is either an error code name or `{code: TyMismatch, span: [0, 4]}`
type ExpectedError struct {
	Code string
	Span *Span
}

// Span is written as [lo, hi]
type Span ir.Span

// TyExpr is a type as written in a problem. It is resolved against the
// problem's declarations when the problem is run.
type TyExpr struct {
	node *yaml.Node
}

// Functors is a functor set as written in a problem: a value or a $variable
type Functors struct {
	Value string
}

func (s *Span) UnmarshalYAML(value *yaml.Node) error {
	var bounds []int
	if err := value.Decode(&bounds); err != nil {
		return err
	}
	switch len(bounds) {
	case 1:
		bounds = append(bounds, bounds[0])
	case 2:
	default:
		return nodeErrorf(value, "span must be [lo, hi], got %d items", len(bounds))
	}
	*s = Span(ir.Span{Lo: toPos(bounds[0]), Hi: toPos(bounds[1])})
	return nil
}

func (t *TyExpr) UnmarshalYAML(value *yaml.Node) error {
	t.node = value
	return nil
}

func (t TyExpr) IsZero() bool { return t.node == nil }

func (t TyExpr) String() string {
	if t.node == nil {
		return "<nil>"
	}
	out, err := yaml.Marshal(t.node)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(out)
}

func (f *Functors) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return nodeErrorf(value, "functors must be a scalar")
	}
	f.Value = value.Value
	return nil
}

func (u *UdtTree) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		return value.Decode(&u.Items)
	case yaml.MappingNode:
		var field struct {
			Name string `yaml:"name"`
			Ty   TyExpr `yaml:"ty"`
		}
		if err := value.Decode(&field); err != nil {
			return err
		}
		if field.Ty.IsZero() {
			return nodeErrorf(value, "udt field %q has no type", field.Name)
		}
		u.Name, u.Ty = field.Name, &field.Ty
		return nil
	}
	return nodeErrorf(value, "udt definition must be a field mapping or a sequence")
}

func (c *ClassSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode || len(value.Content) != 2 {
		return nodeErrorf(value, "class must be a mapping with a single class name")
	}
	c.Name = value.Content[0].Value
	c.Operands = value.Content[1]
	return nil
}

func (e *ExpectedError) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		e.Code = value.Value
		return nil
	}
	var full struct {
		Code string `yaml:"code"`
		Span *Span  `yaml:"span"`
	}
	if err := value.Decode(&full); err != nil {
		return err
	}
	e.Code, e.Span = full.Code, full.Span
	return nil
}

func nodeErrorf(node *yaml.Node, format string, args ...any) error {
	return errors.Errorf("line %d: %s", node.Line, fmt.Sprintf(format, args...))
}

// Parse decodes and validates a problem
func Parse(data []byte) (*Problem, error) {
	problem := &Problem{}
	if err := yaml.Unmarshal(data, problem); err != nil {
		return nil, errors.Wrap(err, "failed to decode problem")
	}
	if err := problem.validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid problem %q", problem.Name)
	}
	return problem, nil
}

// Load reads and parses the problem at path
func Load(path string) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read problem")
	}
	problem, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	if problem.Name == "" {
		problem.Name = path
	}
	return problem, nil
}

func (p *Problem) validate() error {
	names := set.New[string](len(p.Vars) + len(p.Functors))
	for _, v := range p.Vars {
		if v.Name == "" {
			return errors.New("variable without a name")
		}
		if !names.Insert(v.Name) {
			return errors.Errorf("duplicate variable %q", v.Name)
		}
	}
	for _, f := range p.Functors {
		if !names.Insert(f) {
			return errors.Errorf("duplicate variable %q", f)
		}
	}
	for _, c := range p.Constraints {
		if c.Instantiate == nil {
			continue
		}
		for _, alias := range append([]string{c.Instantiate.As}, c.Instantiate.Args...) {
			if alias != "" && !names.Insert(alias) {
				return errors.Errorf("duplicate variable %q", alias)
			}
		}
	}

	udtNames := set.New[string](len(p.Udts))
	items := set.New[uint32](len(p.Udts))
	for _, u := range p.Udts {
		if !udtNames.Insert(u.Name) {
			return errors.Errorf("duplicate udt %q", u.Name)
		}
		if !items.Insert(u.Item) {
			return errors.Errorf("duplicate udt item %d", u.Item)
		}
	}

	// udts double as the schemes of their constructors
	schemes := udtNames.Copy()
	for _, s := range p.Schemes {
		if !schemes.Insert(s.Name) {
			return errors.Errorf("duplicate scheme %q", s.Name)
		}
	}

	for i, c := range p.Constraints {
		kinds := 0
		if c.Eq != nil {
			kinds++
			if len(c.Eq) != 2 {
				return errors.Errorf("constraint %d: eq takes [expected, actual]", i)
			}
		}
		if c.Class != nil {
			kinds++
		}
		if c.Superset != nil {
			kinds++
		}
		if c.Instantiate != nil {
			kinds++
			if !schemes.Contains(c.Instantiate.Scheme) {
				return errors.Errorf("constraint %d: unknown scheme %q", i, c.Instantiate.Scheme)
			}
		}
		if kinds != 1 {
			return errors.Errorf("constraint %d: expected exactly one of eq, class, superset or instantiate", i)
		}
	}
	return nil
}

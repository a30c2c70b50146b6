package ir

import "slices"

// UdtDecl is the definition of a user-defined type.
type UdtDecl struct {
	Span       Span
	Name       string
	Definition UdtDef
}

// UdtDef is either a single field (Field != nil) or a tuple of nested definitions.
type UdtDef struct {
	Span  Span
	Field *UdtField
	Tuple []UdtDef
}

type UdtField struct {
	NameSpan Span
	// Name is empty for anonymous items
	Name string
	Ty   Ty
}

// FieldPath is the sequence of tuple indices leading to a named field
type FieldPath []int

// PureTy is the underlying type that the UDT wraps, with the UDT structure erased
func (u *UdtDecl) PureTy() Ty {
	return pureTy(u.Definition)
}

func pureTy(def UdtDef) Ty {
	if def.Field != nil {
		return def.Field.Ty
	}
	items := make([]Ty, len(def.Tuple))
	for i, d := range def.Tuple {
		items[i] = pureTy(d)
	}
	return Tuple{Items: items}
}

// ConsScheme is the type scheme of the constructor of this UDT
func (u *UdtDecl) ConsScheme(id ItemId) Scheme {
	return Scheme{
		Ty: Arrow{
			Kind:     Function,
			Input:    u.PureTy(),
			Output:   Udt{Name: u.Name, Res: ResItem(id)},
			Functors: FunctorValue(FunctorsEmpty),
		},
	}
}

func (u *UdtDecl) FieldPath(name string) (FieldPath, bool) {
	return findFieldPath(u.Definition, name)
}

func findFieldPath(def UdtDef, name string) (FieldPath, bool) {
	if def.Field != nil {
		if def.Field.Name != "" && def.Field.Name == name {
			return FieldPath{}, true
		}
		return nil, false
	}
	for i, d := range def.Tuple {
		if path, ok := findFieldPath(d, name); ok {
			return slices.Insert(path, 0, i), true
		}
	}
	return nil, false
}

// FindField follows path into the definition
func (u *UdtDecl) FindField(path FieldPath) (*UdtField, bool) {
	def := u.Definition
	for _, i := range path {
		if def.Field != nil || i < 0 || i >= len(def.Tuple) {
			return nil, false
		}
		def = def.Tuple[i]
	}
	return def.Field, def.Field != nil
}

// FieldTy returns the type of the field with the given name
func (u *UdtDecl) FieldTy(name string) (Ty, bool) {
	path, ok := u.FieldPath(name)
	if !ok {
		return nil, false
	}
	field, ok := u.FindField(path)
	if !ok {
		return nil, false
	}
	return field.Ty, true
}

// IsStruct is true when the UDT is a tuple whose top-level items are all named fields
func (u *UdtDecl) IsStruct() bool {
	if u.Definition.Field != nil {
		return false
	}
	for _, d := range u.Definition.Tuple {
		if d.Field == nil || d.Field.Name == "" {
			return false
		}
	}
	return true
}

package gen

import (
	"errors"
	"fmt"
	"go/types"
	"reflect"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/syssam/sqlrecord/dialect"
)

// TagName is the struct tag read by the generator.
const TagName = "sqlrecord"

// Entity is a Go struct mapped to a table.
type Entity struct {
	Name    string // Go type name
	Table   string
	Package string // import path
	Fields  []*Field
}

// Field is one mapped struct field.
type Field struct {
	Name          string // Go field name, used as the property name
	Column        string // empty when the column matches the property
	Type          dialect.PortableType
	GoType        string
	Pointer       bool
	Primary       bool
	AutoIncrement bool
}

// Flags returns the schema flag identifiers for f, in declaration order.
func (f *Field) Flags() []string {
	var flags []string
	if f.Pointer {
		flags = append(flags, "Nullable")
	}
	if f.Primary {
		flags = append(flags, "Primary")
	}
	if f.AutoIncrement {
		flags = append(flags, "AutoIncrement")
	}
	return flags
}

// tagSpec is a parsed `sqlrecord:"column,pk,auto,type=name"` tag.
type tagSpec struct {
	skip     bool
	column   string
	primary  bool
	auto     bool
	nullable bool
	typ      string
}

func parseTag(tag string) (tagSpec, error) {
	if tag == "-" {
		return tagSpec{skip: true}, nil
	}
	parts := strings.Split(tag, ",")
	spec := tagSpec{column: strings.TrimSpace(parts[0])}
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		switch {
		case p == "pk":
			spec.primary = true
		case p == "auto":
			spec.auto = true
		case p == "nullable":
			spec.nullable = true
		case strings.HasPrefix(p, "type="):
			spec.typ = strings.TrimPrefix(p, "type=")
		case p == "":
		default:
			return tagSpec{}, fmt.Errorf("unknown tag option %q", p)
		}
	}
	return spec, nil
}

// hasTag reports whether any field of st carries the sqlrecord tag.
func hasTag(st *types.Struct) bool {
	for i := range st.NumFields() {
		if _, ok := reflect.StructTag(st.Tag(i)).Lookup(TagName); ok {
			return true
		}
	}
	return false
}

// NewEntity builds an Entity from a named struct type.
func NewEntity(obj *types.TypeName) (*Entity, error) {
	st, ok := obj.Type().Underlying().(*types.Struct)
	if !ok {
		return nil, NewEntityError(obj.Name(), "", "not a struct type", nil)
	}
	e := &Entity{
		Name:  obj.Name(),
		Table: inflect.Pluralize(obj.Name()),
	}
	if obj.Pkg() != nil {
		e.Package = obj.Pkg().Path()
	}
	var explicitPK bool
	for i := range st.NumFields() {
		v := st.Field(i)
		if !v.Exported() || v.Embedded() {
			continue
		}
		tag, _ := reflect.StructTag(st.Tag(i)).Lookup(TagName)
		spec, err := parseTag(tag)
		if err != nil {
			return nil, NewEntityError(e.Name, v.Name(), "", err)
		}
		if spec.skip {
			continue
		}
		f, err := newField(v, spec)
		if err != nil {
			return nil, NewEntityError(e.Name, v.Name(), "", err)
		}
		explicitPK = explicitPK || f.Primary
		e.Fields = append(e.Fields, f)
	}
	if len(e.Fields) == 0 {
		return nil, NewEntityError(e.Name, "", "no mappable fields", nil)
	}
	if !explicitPK {
		for _, f := range e.Fields {
			if f.Name == "ID" || f.Name == "Id" {
				f.Primary = true
				f.AutoIncrement = f.Type.Integer() && !f.Pointer
				break
			}
		}
	}
	return e, nil
}

func newField(v *types.Var, spec tagSpec) (*Field, error) {
	t := v.Type()
	f := &Field{Name: v.Name(), Primary: spec.primary, AutoIncrement: spec.auto}
	if p, ok := t.(*types.Pointer); ok {
		f.Pointer = true
		t = p.Elem()
	}
	if spec.column != "" && spec.column != f.Name {
		f.Column = spec.column
	}
	pt, goType, ok := portable(t)
	if !ok {
		return nil, fmt.Errorf("unsupported type %s", t)
	}
	f.GoType = goType
	f.Type = pt
	if spec.typ != "" {
		override, err := dialect.ParsePortableType(spec.typ)
		if err != nil {
			return nil, err
		}
		f.Type = override
	}
	if spec.nullable && !f.Pointer {
		return nil, errors.New("nullable requires a pointer field")
	}
	if f.AutoIncrement && !f.Type.Integer() {
		return nil, errors.New("auto requires an integer type")
	}
	return f, nil
}

// portable maps a Go type to its default portable type code.
func portable(t types.Type) (dialect.PortableType, string, bool) {
	switch u := t.(type) {
	case *types.Basic:
		switch u.Kind() {
		case types.Int, types.Int64:
			return dialect.TypeInt64, u.Name(), true
		case types.Int32:
			return dialect.TypeInt32, u.Name(), true
		case types.Int16:
			return dialect.TypeInt16, u.Name(), true
		case types.Uint8:
			return dialect.TypeByte, u.Name(), true
		case types.Float32:
			return dialect.TypeSingle, u.Name(), true
		case types.Float64:
			return dialect.TypeDouble, u.Name(), true
		case types.Bool:
			return dialect.TypeBoolean, u.Name(), true
		case types.String:
			return dialect.TypeString, u.Name(), true
		}
	case *types.Named:
		obj := u.Obj()
		if obj.Pkg() == nil {
			break
		}
		switch obj.Pkg().Path() + "." + obj.Name() {
		case "time.Time":
			return dialect.TypeDateTime, "time.Time", true
		case "github.com/google/uuid.UUID":
			return dialect.TypeGUID, "uuid.UUID", true
		}
	case *types.Slice:
		if b, ok := u.Elem().(*types.Basic); ok && b.Kind() == types.Uint8 {
			return dialect.TypeBinary, "[]byte", true
		}
	}
	return dialect.TypeUnknown, "", false
}

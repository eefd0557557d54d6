// Package mapper translates source type descriptors into TypeScript type
// expressions.
//
// Named types are resolved by an explicit precedence, most specific first:
//
//  1. the nil type maps to null
//  2. arrays are unwrapped and mapped item by item
//  3. a configured override for the declared type name
//  4. the primitive table, before any NewType is unwrapped
//  5. one NewType layer is unwrapped and resolution restarts on the base
//  6. structural dispatch on the remaining variant
//
// Anything that survives all six steps without a match is an UnsupportedTypeError.
package mapper

import (
	"strings"

	"github.com/conduit-lang/typegen/internal/typegen/helpers"
	"github.com/conduit-lang/typegen/internal/typegen/naming"
	"github.com/conduit-lang/typegen/internal/typegen/schema"
	"github.com/conduit-lang/typegen/internal/typegen/tsast"
)

// Direction is whether data flows to the client (output) or from it (input)
type Direction int

const (
	DirectionOutput Direction = iota
	DirectionInput
)

// String returns the string representation of the direction
func (d Direction) String() string {
	switch d {
	case DirectionOutput:
		return "output"
	case DirectionInput:
		return "input"
	default:
		return "unknown"
	}
}

// Metadata tag properties injected into output types
const (
	TagType            = "__type"
	TagPrimitiveFields = "__primitiveFields"
	TagArray           = "__array"
	TagResource        = "__resource"
	TagReturnType      = "__returnType"
	TagArgs            = "__args"
)

// Tag values of TagType
const (
	KindResource           = "Resource"
	KindRelationship       = "Relationship"
	KindTypedMap           = "TypedMap"
	KindUnion              = "Union"
	KindComplexCalculation = "ComplexCalculation"
)

// Config is the read-only configuration of a TypeMapper
type Config struct {
	// Oracle resolves resource references
	Oracle schema.Oracle

	// Namer renders record field and union member names. Defaults to the identity.
	Namer *naming.FieldNamer

	// Overrides maps a declared type name (primitive, NewType or custom) to the
	// target type name used verbatim
	Overrides map[string]string

	// UntypedPlaceholder is emitted for maps and structs without declared fields
	UntypedPlaceholder string
}

// TypeMapper maps source types to TypeScript types
type TypeMapper struct {
	oracle      schema.Oracle
	namer       *naming.FieldNamer
	overrides   map[string]string
	placeholder string
}

// New creates a TypeMapper
func New(cfg Config) *TypeMapper {
	m := &TypeMapper{
		oracle:      cfg.Oracle,
		namer:       cfg.Namer,
		overrides:   cfg.Overrides,
		placeholder: cfg.UntypedPlaceholder,
	}
	if m.namer == nil {
		m.namer = naming.NewFieldNamer(nil)
	}
	if m.placeholder == "" {
		m.placeholder = DefaultUntypedPlaceholder
	}
	if m.oracle == nil {
		m.oracle = schema.NewRegistry()
	}
	return m
}

// Placeholder returns the untyped placeholder type
func (m *TypeMapper) Placeholder() tsast.Type {
	return tsast.Ref(m.placeholder)
}

// MapType maps t, narrowed by c, for direction d
func (m *TypeMapper) MapType(t schema.Type, c schema.Constraints, d Direction) (tsast.Type, error) {
	variant := helpers.VariantResource
	if d == DirectionInput {
		variant = helpers.VariantInput
	}
	return m.mapType(t, c, mode{dir: d, refs: variant}, nil)
}

// MapAttributesOnly maps t for output, pointing every resource reference at the
// attributes-only schema of the resource
func (m *TypeMapper) MapAttributesOnly(t schema.Type, c schema.Constraints) (tsast.Type, error) {
	return m.mapType(t, c, mode{dir: DirectionOutput, refs: helpers.VariantAttributesOnly}, nil)
}

// ResourceReference returns the reference to the schema of the resource t names
// (a ResourceRef, or a struct whose identity is a resource)
func (m *TypeMapper) ResourceReference(t schema.Type, c schema.Constraints, v helpers.Variant) (tsast.Type, bool) {
	res, ok := helpers.IsResourceInstance(m.oracle, t, c)
	if !ok {
		return nil, false
	}
	return tsast.Ref(helpers.SchemaName(res, v)), true
}

type mode struct {
	dir  Direction
	refs helpers.Variant
}

func (m *TypeMapper) mapType(t schema.Type, c schema.Constraints, md mode, path []string) (tsast.Type, error) {
	if t == nil {
		return tsast.Null, nil
	}

	if arr, ok := t.(*schema.Array); ok {
		elem, err := m.mapType(arr.Of, c.ItemConstraints(), md, append(path, "[]"))
		if err != nil {
			return nil, err
		}
		return &tsast.Array{Elem: elem}, nil
	}

	if ts, ok := m.lookupNamed(t, c); ok {
		return ts, nil
	}

	if nt, ok := t.(*schema.NewType); ok {
		return m.mapType(nt.Of, c.Merge(nt.Constraints), md, path)
	}

	return m.mapStructural(t, c, md, path)
}

// Overridden reports whether t maps to a configured override, on any NewType
// layer or through arrays. Such a type is rendered as the bare override name.
func (m *TypeMapper) Overridden(t schema.Type) bool {
	for t != nil {
		if _, ok := m.overrides[declaredName(t)]; ok {
			return true
		}
		switch v := t.(type) {
		case *schema.NewType:
			t = v.Of
		case *schema.Array:
			t = v.Of
		default:
			return false
		}
	}
	return false
}

func declaredName(t schema.Type) string {
	switch v := t.(type) {
	case *schema.Primitive:
		return v.Name
	case *schema.NewType:
		return v.Name
	case *schema.Custom:
		return v.Name
	case *schema.Enum:
		return v.Name
	}
	return ""
}

// lookupNamed resolves overrides and primitive table entries on the declared type
func (m *TypeMapper) lookupNamed(t schema.Type, c schema.Constraints) (tsast.Type, bool) {
	name := declaredName(t)
	if name == "" {
		return nil, false
	}

	if override, ok := m.overrides[name]; ok {
		return tsast.Ref(override), true
	}
	if untypedPrimitives[name] {
		return m.Placeholder(), true
	}
	ts, ok := primitiveTable[name]
	if !ok {
		return nil, false
	}
	if ts == tsast.String && len(c.OneOf) > 0 {
		return &tsast.LiteralUnion{Values: c.OneOf}, true
	}
	return ts, true
}

func (m *TypeMapper) mapStructural(t schema.Type, c schema.Constraints, md mode, path []string) (tsast.Type, error) {
	switch v := t.(type) {
	case *schema.ResourceRef:
		res, ok := m.oracle.Resource(v.Resource)
		if !ok {
			return nil, &schema.UnknownResourceError{Name: v.Resource, From: strings.Join(path, ".")}
		}
		return tsast.Ref(helpers.SchemaName(res, md.refs)), nil

	case *schema.Struct:
		if name := schema.InstanceOf(v, c); name != "" {
			if res, ok := m.oracle.Resource(name); ok {
				return tsast.Ref(helpers.SchemaName(res, md.refs)), nil
			}
		}
		return m.mapFields(t, schema.RecordFields(v, c), md, path)

	case *schema.Record:
		return m.mapFields(t, schema.RecordFields(v, c), md, path)

	case *schema.Union:
		if len(v.Members) == 0 {
			return nil, unsupported(t, path, "union has no members")
		}
		if md.dir == DirectionInput {
			return m.inputUnion(v, md, path)
		}
		return m.outputUnion(v, md, path)

	case *schema.Enum:
		return &tsast.LiteralUnion{Values: v.Values}, nil

	case *schema.Custom:
		if v.DisplayName != "" {
			return tsast.Ref(v.DisplayName), nil
		}
		return nil, unsupported(t, path, "custom type declares no display name")

	case *schema.Primitive:
		return nil, unsupported(t, path, "unknown primitive")
	}
	return nil, unsupported(t, path, "no mapping for %s", t.Kind())
}

func (m *TypeMapper) mapFields(t schema.Type, fields []schema.RecordField, md mode, path []string) (tsast.Type, error) {
	if len(fields) == 0 {
		return m.Placeholder(), nil
	}

	obj := &tsast.Object{}
	var primitives []string
	for _, f := range fields {
		name := m.namer.Format(f.Name)
		ft, err := m.mapType(f.Type, f.Constraints, md, append(path, f.Name))
		if err != nil {
			return nil, err
		}
		if f.AllowNil {
			ft = tsast.Nullable(ft)
		}
		obj.Props = append(obj.Props, &tsast.Property{
			Name:        name,
			Type:        ft,
			Optional:    md.dir == DirectionInput && f.AllowNil,
			Description: f.Description,
		})
		if !helpers.IsComplexType(m.oracle, f.Type, f.Constraints) {
			primitives = append(primitives, name)
		}
	}

	if md.dir == DirectionOutput {
		m.tag(obj, KindTypedMap, primitives)
	}
	return obj, nil
}

func (m *TypeMapper) outputUnion(u *schema.Union, md mode, path []string) (tsast.Type, error) {
	obj := &tsast.Object{}
	var primitives []string
	for _, member := range u.Members {
		name := m.namer.Format(member.Name)
		mt, err := m.mapType(member.Type, member.Constraints, md, append(path, member.Name))
		if err != nil {
			return nil, err
		}
		obj.OptionalProp(name, mt)
		if !helpers.IsComplexType(m.oracle, member.Type, member.Constraints) {
			primitives = append(primitives, name)
		}
	}
	m.tag(obj, KindUnion, primitives)
	return obj, nil
}

func (m *TypeMapper) inputUnion(u *schema.Union, md mode, path []string) (tsast.Type, error) {
	union := &tsast.Union{Types: make([]tsast.Type, 0, len(u.Members))}
	for _, member := range u.Members {
		mt, err := m.mapType(member.Type, member.Constraints, md, append(path, member.Name))
		if err != nil {
			return nil, err
		}
		union.Types = append(union.Types, (&tsast.Object{}).Prop(m.namer.Format(member.Name), mt))
	}
	if len(union.Types) == 1 {
		return union.Types[0], nil
	}
	return union, nil
}

// tag prepends the __type and __primitiveFields properties
func (m *TypeMapper) tag(obj *tsast.Object, kind string, primitives []string) {
	tags := []*tsast.Property{
		{Name: TagType, Type: tsast.StringLiteral(kind)},
		{Name: TagPrimitiveFields, Type: &tsast.LiteralUnion{Values: primitives}},
	}
	obj.Props = append(tags, obj.Props...)
}

// IsPlaceholder reports whether ts is the untyped placeholder
func (m *TypeMapper) IsPlaceholder(ts tsast.Type) bool {
	ref, ok := ts.(*tsast.Reference)
	return ok && ref.Name == m.placeholder
}

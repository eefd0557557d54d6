package resource

import (
	"errors"
	"fmt"

	"github.com/conduit-lang/typegen/internal/typegen/helpers"
	"github.com/conduit-lang/typegen/internal/typegen/mapper"
	"github.com/conduit-lang/typegen/internal/typegen/naming"
	"github.com/conduit-lang/typegen/internal/typegen/schema"
	"github.com/conduit-lang/typegen/internal/typegen/tsast"
)

// Schema is one generated schema type
type Schema struct {
	Name        string
	Resource    string
	Variant     helpers.Variant
	Description string
	Body        *tsast.Object
}

// Declaration returns the top-level declaration of the schema
func (s *Schema) Declaration() *tsast.Declaration {
	return &tsast.Declaration{Name: s.Name, Type: s.Body, Description: s.Description}
}

// FieldInfo records how one field was emitted into one schema
type FieldInfo struct {
	Schema   string
	Resource string
	Field    string
	Property string
	Category Category
}

// Schemas holds every schema generated for one resource. Input is nil for
// resources that need no input schema.
type Schemas struct {
	Resource       *Schema
	AttributesOnly *Schema
	Input          *Schema
	Fields         []FieldInfo
}

// All returns the schemas in emission order
func (s *Schemas) All() []*Schema {
	out := []*Schema{s.Resource, s.AttributesOnly}
	if s.Input != nil {
		out = append(out, s.Input)
	}
	return out
}

// Builder builds the schemas of resources
type Builder struct {
	oracle schema.Oracle
	mapper *mapper.TypeMapper
	namer  *naming.FieldNamer
}

// NewBuilder creates a Builder. The mapper must share the oracle.
func NewBuilder(oracle schema.Oracle, m *mapper.TypeMapper, namer *naming.FieldNamer) *Builder {
	if namer == nil {
		namer = naming.NewFieldNamer(nil)
	}
	return &Builder{oracle: oracle, mapper: m, namer: namer}
}

// Build generates the schemas of r. The input schema is built only when withInput
// is set.
func (b *Builder) Build(r *schema.Resource, withInput bool) (*Schemas, error) {
	full, fields, err := b.outputSchema(r, helpers.VariantResource)
	if err != nil {
		return nil, err
	}
	attrs, attrFields, err := b.outputSchema(r, helpers.VariantAttributesOnly)
	if err != nil {
		return nil, err
	}

	out := &Schemas{
		Resource:       full,
		AttributesOnly: attrs,
		Fields:         append(fields, attrFields...),
	}
	if withInput {
		input, inputFields, err := b.inputSchema(r)
		if err != nil {
			return nil, err
		}
		out.Input = input
		out.Fields = append(out.Fields, inputFields...)
	}
	return out, nil
}

// outputSchema builds the full or attributes-only schema of r
func (b *Builder) outputSchema(r *schema.Resource, variant helpers.Variant) (*Schema, []FieldInfo, error) {
	s := &Schema{
		Name:        helpers.SchemaName(r, variant),
		Resource:    r.Name,
		Variant:     variant,
		Description: r.Description,
		Body:        &tsast.Object{},
	}

	var primitives []string
	var infos []FieldInfo
	for _, f := range r.Fields {
		if variant == helpers.VariantAttributesOnly && f.Origin != schema.OriginAttribute {
			continue
		}

		cat := b.Classify(r, f)
		prop := b.namer.Name(r.Name, f.Name)
		ts, err := b.outputField(r, f, cat, variant)
		if err != nil {
			return nil, nil, fieldError(r, f, err)
		}

		s.Body.Props = append(s.Body.Props, &tsast.Property{Name: prop, Type: ts, Description: f.Description})
		if cat == CategoryPrimitive {
			primitives = append(primitives, prop)
		}
		infos = append(infos, FieldInfo{Schema: s.Name, Resource: r.Name, Field: f.Name, Property: prop, Category: cat})
	}

	tags := []*tsast.Property{
		{Name: mapper.TagType, Type: tsast.StringLiteral(mapper.KindResource)},
		{Name: mapper.TagPrimitiveFields, Type: &tsast.LiteralUnion{Values: primitives}},
	}
	s.Body.Props = append(tags, s.Body.Props...)
	return s, infos, nil
}

func (b *Builder) outputField(r *schema.Resource, f *schema.Field, cat Category, variant helpers.Variant) (tsast.Type, error) {
	t, c := f.Type, f.Constraints
	attrsOnly := variant == helpers.VariantAttributesOnly
	if f.Origin == schema.OriginAggregate {
		var err error
		if t, c, err = helpers.AggregateType(b.oracle, r, f); err != nil {
			return nil, err
		}
		// nothing past the aggregate boundary can be loaded
		attrsOnly = attrsOnly || f.Aggregate.Kind.TraversesField()
	}
	many := isMany(f, t, c)

	switch cat {
	case CategoryPrimitive:
		ts, err := b.mapOutput(t, c, attrsOnly)
		if err != nil {
			return nil, err
		}
		if f.AllowNil {
			ts = tsast.Nullable(ts)
		}
		return ts, nil

	case CategoryRelationship:
		dest, ok := b.oracle.Resource(f.Relationship.Destination)
		if !ok {
			return nil, &schema.UnknownResourceError{Name: f.Relationship.Destination, From: r.Name + "." + f.Name}
		}
		return b.relationshipWrapper(dest, helpers.VariantResource, many, f.AllowNil), nil

	case CategoryEmbedded:
		base, bc := schema.UnwrapNewType(t, c)
		if inner, ic, ok := schema.UnwrapArray(base, bc); ok {
			base, bc = inner, ic
		}
		res, ok := helpers.IsResourceInstance(b.oracle, base, bc)
		if !ok {
			return nil, fmt.Errorf("embedded field does not name a resource: %s", schema.TypeString(t))
		}
		refs := helpers.VariantResource
		if attrsOnly {
			refs = helpers.VariantAttributesOnly
		}
		return b.relationshipWrapper(res, refs, many, f.AllowNil), nil

	case CategoryUnion, CategoryTypedMap, CategoryTypedStruct:
		ts, err := b.mapOutput(t, c, attrsOnly)
		if err != nil {
			return nil, err
		}
		return spliceArray(ts, f.AllowNil), nil

	case CategoryCalculation:
		return b.calculation(r, f)
	}
	return nil, fmt.Errorf("unknown field category %s", cat)
}

func (b *Builder) mapOutput(t schema.Type, c schema.Constraints, attrsOnly bool) (tsast.Type, error) {
	if attrsOnly {
		return b.mapper.MapAttributesOnly(t, c)
	}
	return b.mapper.MapType(t, c, mapper.DirectionOutput)
}

// relationshipWrapper builds { __type: "Relationship"; __array?: true; __resource: S }
func (b *Builder) relationshipWrapper(dest *schema.Resource, refs helpers.Variant, many, allowNil bool) tsast.Type {
	obj := (&tsast.Object{}).Prop(mapper.TagType, tsast.StringLiteral(mapper.KindRelationship))
	if many {
		obj.Prop(mapper.TagArray, tsast.True)
	}
	obj.Prop(mapper.TagResource, tsast.Ref(helpers.SchemaName(dest, refs)))
	if allowNil && !many {
		return tsast.Nullable(obj)
	}
	return obj
}

// spliceArray moves the array flag of a list of tagged objects inside the object
// literal, so the __type tag sits at the same depth for both cardinalities.
// A nil-able field stays nil-able whichever shape it ends up with.
func spliceArray(ts tsast.Type, allowNil bool) tsast.Type {
	if v, ok := ts.(*tsast.Array); ok {
		if obj, ok := v.Elem.(*tsast.Object); ok {
			if _, tagged := obj.Lookup(mapper.TagType); tagged {
				obj.InsertAfter(mapper.TagType, &tsast.Property{Name: mapper.TagArray, Type: tsast.True})
				ts = obj
			}
		}
	}
	if allowNil {
		return tsast.Nullable(ts)
	}
	return ts
}

// calculation builds { __type: "ComplexCalculation"; __returnType: T; __args?: {...} }
func (b *Builder) calculation(r *schema.Resource, f *schema.Field) (tsast.Type, error) {
	ret, err := b.mapper.MapType(f.Type, f.Constraints, mapper.DirectionOutput)
	if err != nil {
		return nil, err
	}
	if f.AllowNil {
		ret = tsast.Nullable(ret)
	}

	obj := (&tsast.Object{}).
		Prop(mapper.TagType, tsast.StringLiteral(mapper.KindComplexCalculation)).
		Prop(mapper.TagReturnType, ret)

	if len(f.Arguments) == 0 {
		return obj, nil
	}

	args := &tsast.Object{}
	for _, arg := range f.Arguments {
		at, err := b.mapper.MapType(arg.Type, arg.Constraints, mapper.DirectionInput)
		if err != nil {
			var unsupported *mapper.UnsupportedTypeError
			if errors.As(err, &unsupported) {
				return nil, unsupported.At("args", arg.Name)
			}
			return nil, fmt.Errorf("argument %s: %w", arg.Name, err)
		}
		if arg.AllowNil {
			at = tsast.Nullable(at)
		}
		args.Props = append(args.Props, &tsast.Property{
			Name:     b.namer.Format(arg.Name),
			Type:     at,
			Optional: arg.HasDefault,
		})
	}
	return obj.Prop(mapper.TagArgs, args), nil
}

// inputSchema builds the input schema of r: attributes only, no metadata tags
func (b *Builder) inputSchema(r *schema.Resource) (*Schema, []FieldInfo, error) {
	s := &Schema{
		Name:        helpers.SchemaName(r, helpers.VariantInput),
		Resource:    r.Name,
		Variant:     helpers.VariantInput,
		Description: r.Description,
		Body:        &tsast.Object{},
	}

	var infos []FieldInfo
	for _, f := range r.FieldsOf(schema.OriginAttribute) {
		ts, err := b.mapper.MapType(f.Type, f.Constraints, mapper.DirectionInput)
		if err != nil {
			return nil, nil, fieldError(r, f, err)
		}
		if f.AllowNil {
			ts = tsast.Nullable(ts)
		}
		prop := b.namer.Name(r.Name, f.Name)
		s.Body.Props = append(s.Body.Props, &tsast.Property{
			Name:        prop,
			Type:        ts,
			Optional:    f.AllowNil || f.HasDefault,
			Description: f.Description,
		})
		infos = append(infos, FieldInfo{
			Schema:   s.Name,
			Resource: r.Name,
			Field:    f.Name,
			Property: prop,
			Category: b.Classify(r, f),
		})
	}
	return s, infos, nil
}

func fieldError(r *schema.Resource, f *schema.Field, err error) error {
	var unsupported *mapper.UnsupportedTypeError
	if errors.As(err, &unsupported) {
		return unsupported.At(r.Name, f.Name)
	}
	return fmt.Errorf("%s.%s: %w", r.Name, f.Name, err)
}

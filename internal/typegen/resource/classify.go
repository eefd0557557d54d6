// Package resource classifies resource fields and builds the schema types of a
// resource: the full output schema, the attributes-only schema and the input schema.
package resource

import (
	"github.com/conduit-lang/typegen/internal/typegen/helpers"
	"github.com/conduit-lang/typegen/internal/typegen/schema"
)

// Category decides how a field is emitted
type Category int

const (
	CategoryPrimitive Category = iota
	CategoryRelationship
	CategoryCalculation
	CategoryEmbedded
	CategoryUnion
	CategoryTypedMap
	CategoryTypedStruct
)

// Categories lists every category
var Categories = []Category{
	CategoryPrimitive,
	CategoryRelationship,
	CategoryCalculation,
	CategoryEmbedded,
	CategoryUnion,
	CategoryTypedMap,
	CategoryTypedStruct,
}

// String returns the string representation of the category
func (c Category) String() string {
	switch c {
	case CategoryPrimitive:
		return "primitive"
	case CategoryRelationship:
		return "relationship"
	case CategoryCalculation:
		return "calculation"
	case CategoryEmbedded:
		return "embedded"
	case CategoryUnion:
		return "union"
	case CategoryTypedMap:
		return "typed_map"
	case CategoryTypedStruct:
		return "typed_struct"
	default:
		return "unknown"
	}
}

// IsNested reports whether the category needs a nested selection
func (c Category) IsNested() bool {
	return c != CategoryPrimitive
}

// Classify returns the category of f on r. Every field has exactly one category.
func (b *Builder) Classify(r *schema.Resource, f *schema.Field) Category {
	switch f.Origin {
	case schema.OriginRelationship:
		return CategoryRelationship
	case schema.OriginCalculation:
		if !helpers.IsSimpleCalculation(b.oracle, f) {
			return CategoryCalculation
		}
	case schema.OriginAggregate:
		t, c, err := helpers.AggregateType(b.oracle, r, f)
		if err != nil {
			// surfaced when the field is emitted
			return CategoryPrimitive
		}
		return b.ClassifyType(t, c)
	}
	return b.ClassifyType(f.Type, f.Constraints)
}

// ClassifyType classifies a field type as a plain attribute would be classified.
// NewType layers and one array layer are looked through. An overridden type is
// opaque to the client and always primitive.
func (b *Builder) ClassifyType(t schema.Type, c schema.Constraints) Category {
	if b.mapper != nil && b.mapper.Overridden(t) {
		return CategoryPrimitive
	}
	t, c = schema.UnwrapNewType(t, c)
	if inner, ic, ok := schema.UnwrapArray(t, c); ok {
		t, c = schema.UnwrapNewType(inner, ic)
	}

	switch v := t.(type) {
	case *schema.Union:
		return CategoryUnion
	case *schema.ResourceRef:
		if _, ok := b.oracle.Resource(v.Resource); ok {
			return CategoryEmbedded
		}
	case *schema.Struct:
		instance := schema.InstanceOf(v, c)
		if instance != "" {
			if _, ok := b.oracle.Resource(instance); ok {
				return CategoryEmbedded
			}
		}
		if len(schema.RecordFields(v, c)) > 0 {
			if instance != "" {
				return CategoryTypedStruct
			}
			return CategoryTypedMap
		}
	case *schema.Record:
		if len(schema.RecordFields(v, c)) > 0 {
			return CategoryTypedMap
		}
	}
	return CategoryPrimitive
}

// isMany reports whether the field holds a list
func isMany(f *schema.Field, t schema.Type, c schema.Constraints) bool {
	if f.Relationship != nil {
		return f.Relationship.Type.IsMany()
	}
	t, _ = schema.UnwrapNewType(t, c)
	_, ok := t.(*schema.Array)
	return ok
}

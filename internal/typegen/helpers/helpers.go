// Package helpers holds the naming and classification primitives shared by the
// mapper, the schema builder and discovery.
package helpers

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/typegen/internal/typegen/schema"
)

// Variant is one of the schemas generated for a resource
type Variant int

const (
	VariantResource Variant = iota
	VariantInput
	VariantAttributesOnly
)

// String returns the string representation of the variant
func (v Variant) String() string {
	switch v {
	case VariantResource:
		return "resource"
	case VariantInput:
		return "input"
	case VariantAttributesOnly:
		return "attributes_only"
	default:
		return "unknown"
	}
}

func (v Variant) suffix() string {
	switch v {
	case VariantInput:
		return "InputSchema"
	case VariantAttributesOnly:
		return "AttributesOnlySchema"
	default:
		return "ResourceSchema"
	}
}

// CanonicalName returns the display name of r, or the last segment of its qualified
// name when none is declared
func CanonicalName(r *schema.Resource) string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return r.ShortName()
}

// SchemaName returns the generated type name of r for the given variant
func SchemaName(r *schema.Resource, v Variant) string {
	return CanonicalName(r) + v.suffix()
}

// IsResourceInstance reports whether t (after NewType unwrapping) is a resource
// reference or a struct whose identity is a known resource. It returns the resource.
func IsResourceInstance(oracle schema.Oracle, t schema.Type, c schema.Constraints) (*schema.Resource, bool) {
	t, c = schema.UnwrapNewType(t, c)
	switch v := t.(type) {
	case *schema.ResourceRef:
		return oracle.Resource(v.Resource)
	case *schema.Struct:
		if name := schema.InstanceOf(v, c); name != "" {
			return oracle.Resource(name)
		}
	}
	return nil, false
}

// IsComplexType reports whether t needs a nested selection on the client: a struct
// or record with fields, a union, or a resource. NewType layers and one array layer
// are looked through.
func IsComplexType(oracle schema.Oracle, t schema.Type, c schema.Constraints) bool {
	t, c = schema.UnwrapNewType(t, c)
	if inner, ic, ok := schema.UnwrapArray(t, c); ok {
		t, c = schema.UnwrapNewType(inner, ic)
	}

	switch v := t.(type) {
	case *schema.Union, *schema.ResourceRef:
		return true
	case *schema.Struct:
		if _, ok := IsResourceInstance(oracle, v, c); ok {
			return true
		}
		return len(schema.RecordFields(v, c)) > 0
	case *schema.Record:
		return len(schema.RecordFields(v, c)) > 0
	}
	return false
}

// IsSimpleCalculation reports whether a calculation behaves like a plain attribute:
// no arguments and a non-complex return type
func IsSimpleCalculation(oracle schema.Oracle, f *schema.Field) bool {
	return len(f.Arguments) == 0 && !IsComplexType(oracle, f.Type, f.Constraints)
}

// ResolveAggregateType walks path hop by hop from r and returns the field named field
// on the last destination. The terminal field must be an attribute or calculation.
func ResolveAggregateType(oracle schema.Oracle, r *schema.Resource, path []string, field string) (*schema.Field, error) {
	current := r
	for i, hop := range path {
		rel, ok := current.Field(hop)
		if !ok {
			return nil, fmt.Errorf("aggregate path %s: %s has no field %s",
				strings.Join(path[:i+1], "."), current.Name, hop)
		}
		if rel.Relationship == nil {
			return nil, fmt.Errorf("aggregate path %s: %s.%s is not a relationship",
				strings.Join(path[:i+1], "."), current.Name, hop)
		}
		next, ok := oracle.Resource(rel.Relationship.Destination)
		if !ok {
			return nil, &schema.UnknownResourceError{Name: rel.Relationship.Destination, From: current.Name + "." + hop}
		}
		current = next
	}

	target, ok := current.Field(field)
	if !ok {
		return nil, fmt.Errorf("aggregate field %s not found on %s", field, current.Name)
	}
	if target.Origin != schema.OriginAttribute && target.Origin != schema.OriginCalculation {
		return nil, fmt.Errorf("aggregate field %s.%s must be an attribute or calculation, got %s",
			current.Name, field, target.Origin)
	}
	return target, nil
}

// AggregateType returns the value type of an aggregate field. count, exists and avg
// have fixed types; a declared type wins for every other kind; otherwise the type is
// taken from the far field (wrapped in an array for list).
func AggregateType(oracle schema.Oracle, r *schema.Resource, f *schema.Field) (schema.Type, schema.Constraints, error) {
	agg := f.Aggregate
	if agg == nil {
		return nil, schema.Constraints{}, fmt.Errorf("%s.%s is not an aggregate", r.Name, f.Name)
	}

	switch agg.Kind {
	case schema.AggregateCount:
		return &schema.Primitive{Name: "integer"}, schema.Constraints{}, nil
	case schema.AggregateExists:
		return &schema.Primitive{Name: "boolean"}, schema.Constraints{}, nil
	case schema.AggregateAvg:
		return &schema.Primitive{Name: "float"}, schema.Constraints{}, nil
	}

	if f.Type != nil {
		return f.Type, f.Constraints, nil
	}
	if agg.Field == "" {
		return nil, schema.Constraints{}, fmt.Errorf("%s aggregate %s.%s declares neither a field nor a type",
			agg.Kind, r.Name, f.Name)
	}

	target, err := ResolveAggregateType(oracle, r, agg.Path, agg.Field)
	if err != nil {
		return nil, schema.Constraints{}, fmt.Errorf("%s.%s: %w", r.Name, f.Name, err)
	}
	if agg.Kind == schema.AggregateList {
		items := target.Constraints
		return &schema.Array{Of: target.Type}, schema.Constraints{Items: &items}, nil
	}
	return target.Type, target.Constraints, nil
}

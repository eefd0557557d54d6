package discovery

import (
	"github.com/conduit-lang/typegen/internal/typegen/helpers"
	"github.com/conduit-lang/typegen/internal/typegen/schema"
)

// Embedded is the result of ScanEmbedded
type Embedded struct {
	// Resources are embedded resources referenced from attributes
	Resources []string
	// TypedStructs are the identities of named ad hoc composite types
	TypedStructs []string
}

type embeddedScanner struct {
	oracle  schema.Oracle
	out     *Embedded
	seenRes map[string]bool
	seenTS  map[string]bool
}

// ScanEmbedded finds the embedded resources and typed structs referenced from the
// attributes of resources. A reference counts when it is reached through NewType
// wrapping, arrays or union membership. Results are deduplicated and ordered by
// first sight.
func ScanEmbedded(oracle schema.Oracle, resources []string) (*Embedded, error) {
	s := &embeddedScanner{
		oracle:  oracle,
		out:     &Embedded{},
		seenRes: make(map[string]bool),
		seenTS:  make(map[string]bool),
	}

	for _, name := range resources {
		res, ok := oracle.Resource(name)
		if !ok {
			return nil, &schema.UnknownResourceError{Name: name}
		}
		for _, f := range res.FieldsOf(schema.OriginAttribute) {
			s.scan(f.Type, f.Constraints)
		}
	}
	return s.out, nil
}

func (s *embeddedScanner) scan(t schema.Type, c schema.Constraints) {
	switch v := t.(type) {
	case *schema.Array:
		s.scan(v.Of, c.ItemConstraints())

	case *schema.Union:
		for _, m := range v.Members {
			s.scan(m.Type, m.Constraints)
		}

	case *schema.NewType:
		base, bc := schema.UnwrapNewType(v, c)
		if isTypedStruct(s.oracle, base, bc) {
			s.addTypedStruct(v.Name)
			return
		}
		s.scan(base, bc)

	case *schema.ResourceRef, *schema.Struct:
		if res, ok := helpers.IsResourceInstance(s.oracle, t, c); ok {
			if res.Embedded {
				s.addResource(res.Name)
			}
			return
		}
		if st, ok := v.(*schema.Struct); ok && isTypedStruct(s.oracle, st, c) {
			s.addTypedStruct(schema.InstanceOf(st, c))
		}
	}
}

// isTypedStruct reports whether t is a struct with fields and a non-resource
// identity, or a record with fields
func isTypedStruct(oracle schema.Oracle, t schema.Type, c schema.Constraints) bool {
	switch v := t.(type) {
	case *schema.Struct:
		instance := schema.InstanceOf(v, c)
		if _, isResource := oracle.Resource(instance); isResource {
			return false
		}
		return instance != "" && len(schema.RecordFields(v, c)) > 0
	case *schema.Record:
		return len(schema.RecordFields(v, c)) > 0
	}
	return false
}

func (s *embeddedScanner) addResource(name string) {
	if !s.seenRes[name] {
		s.seenRes[name] = true
		s.out.Resources = append(s.out.Resources, name)
	}
}

func (s *embeddedScanner) addTypedStruct(name string) {
	if !s.seenTS[name] {
		s.seenTS[name] = true
		s.out.TypedStructs = append(s.out.TypedStructs, name)
	}
}

package discovery

import (
	"github.com/conduit-lang/typegen/internal/typegen/helpers"
	"github.com/conduit-lang/typegen/internal/typegen/schema"
)

// InputResources returns the discovered resources that need an input schema:
// embedded resources, resources used as calculation argument types, and every
// resource referenced from the attributes of those, transitively.
func InputResources(oracle schema.Oracle, result *Result) []string {
	needed := make(map[string]bool)
	var queue []string
	add := func(name string) {
		if !needed[name] {
			needed[name] = true
			queue = append(queue, name)
		}
	}

	for _, res := range result.resources {
		if res.Embedded {
			add(res.Name)
		}
		for _, f := range res.FieldsOf(schema.OriginCalculation) {
			for _, arg := range f.Arguments {
				eachResource(oracle, arg.Type, arg.Constraints, add)
			}
		}
	}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		res, ok := oracle.Resource(name)
		if !ok {
			continue
		}
		for _, f := range res.FieldsOf(schema.OriginAttribute) {
			eachResource(oracle, f.Type, f.Constraints, add)
		}
	}

	// keep discovery order
	var out []string
	for _, res := range result.resources {
		if needed[res.Name] {
			out = append(out, res.Name)
		}
	}
	return out
}

// eachResource calls fn for every resource t references
func eachResource(oracle schema.Oracle, t schema.Type, c schema.Constraints, fn func(string)) {
	switch v := t.(type) {
	case *schema.Array:
		eachResource(oracle, v.Of, c.ItemConstraints(), fn)
	case *schema.NewType:
		eachResource(oracle, v.Of, c.Merge(v.Constraints), fn)
	case *schema.Union:
		for _, m := range v.Members {
			eachResource(oracle, m.Type, m.Constraints, fn)
		}
	case *schema.ResourceRef, *schema.Struct, *schema.Record:
		if res, ok := helpers.IsResourceInstance(oracle, t, c); ok {
			fn(res.Name)
			return
		}
		for _, rf := range schema.RecordFields(t, c) {
			eachResource(oracle, rf.Type, rf.Constraints, fn)
		}
	}
}

// Package verify checks generated schemas for name collisions introduced by
// formatting, rename tables and display names.
package verify

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/typegen/internal/typegen/mapper"
	"github.com/conduit-lang/typegen/internal/typegen/resource"
	"github.com/conduit-lang/typegen/internal/typegen/tsast"
)

// Violation is one collision
type Violation struct {
	Message  string `json:"message"`
	Schema   string `json:"schema,omitempty"`
	Property string `json:"property,omitempty"`
}

// ValidationError lists every violation found in one pass
type ValidationError []*Violation

func (v *Violation) String() string {
	line := v.Message
	if v.Schema != "" {
		line += " (" + v.Schema
		if v.Property != "" {
			line += "." + v.Property
		}
		line += ")"
	}
	return line
}

func (e ValidationError) Error() string {
	msg := "violations found:\n"
	for _, v := range e {
		msg += "- " + v.String() + "\n"
	}
	return msg
}

// reserved are the tag properties a field must never be rendered as
var reserved = map[string]bool{
	mapper.TagType:            true,
	mapper.TagPrimitiveFields: true,
	mapper.TagArray:           true,
}

// Verify checks schemas for duplicate property names, fields rendered as reserved
// tags and resources sharing a schema name
func Verify(schemas []*resource.Schemas) error {
	var violations []*Violation

	owners := make(map[string]string)
	for _, s := range schemas {
		for _, gen := range s.All() {
			if owner, ok := owners[gen.Name]; ok && owner != gen.Resource {
				violations = append(violations, &Violation{
					Message: fmt.Sprintf("schema name %s is generated for both %s and %s", gen.Name, owner, gen.Resource),
					Schema:  gen.Name,
				})
				continue
			}
			owners[gen.Name] = gen.Resource
			violations = append(violations, duplicates(gen.Name, nil, gen.Body)...)
		}

		for _, f := range s.Fields {
			if reserved[f.Property] {
				violations = append(violations, &Violation{
					Message:  fmt.Sprintf("field %s of %s is rendered as reserved property %s", f.Field, f.Resource, f.Property),
					Schema:   f.Schema,
					Property: f.Property,
				})
			}
		}
	}

	if len(violations) > 0 {
		return ValidationError(violations)
	}
	return nil
}

// duplicates walks obj and every object nested in it
func duplicates(schemaName string, path []string, obj *tsast.Object) []*Violation {
	var out []*Violation
	seen := make(map[string]bool, len(obj.Props))
	for _, p := range obj.Props {
		if seen[p.Name] {
			out = append(out, &Violation{
				Message:  fmt.Sprintf("duplicate property %s", p.Name),
				Schema:   schemaName,
				Property: strings.Join(append(path, p.Name), "."),
			})
		}
		seen[p.Name] = true
		for _, nested := range objects(p.Type) {
			out = append(out, duplicates(schemaName, append(path, p.Name), nested)...)
		}
	}
	return out
}

func objects(t tsast.Type) []*tsast.Object {
	switch v := t.(type) {
	case *tsast.Object:
		return []*tsast.Object{v}
	case *tsast.Array:
		return objects(v.Elem)
	case *tsast.Union:
		var out []*tsast.Object
		for _, m := range v.Types {
			out = append(out, objects(m)...)
		}
		return out
	}
	return nil
}

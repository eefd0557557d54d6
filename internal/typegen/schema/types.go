// Package schema defines the source side of typegen: the type descriptors, fields and
// resources exported by the host resource framework, and the registry that serves them
// to the generator.
//
// Type is a closed sum type. Every variant implements the unexported isType marker, so
// a type switch over the variants listed here is exhaustive.
package schema

import (
	"fmt"
	"strings"
)

// Kind identifies the active variant of a Type
type Kind int

const (
	KindPrimitive Kind = iota
	KindArray
	KindStruct
	KindRecord
	KindUnion
	KindEnum
	KindNewType
	KindCustom
	KindResource
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	case KindRecord:
		return "record"
	case KindUnion:
		return "union"
	case KindEnum:
		return "enum"
	case KindNewType:
		return "new_type"
	case KindCustom:
		return "custom"
	case KindResource:
		return "resource"
	default:
		return "unknown"
	}
}

// ParseKind converts a string to a Kind
func ParseKind(s string) (Kind, error) {
	switch s {
	case "primitive":
		return KindPrimitive, nil
	case "array":
		return KindArray, nil
	case "struct":
		return KindStruct, nil
	case "record", "map", "keyword", "tuple":
		return KindRecord, nil
	case "union":
		return KindUnion, nil
	case "enum":
		return KindEnum, nil
	case "new_type":
		return KindNewType, nil
	case "custom":
		return KindCustom, nil
	case "resource":
		return KindResource, nil
	default:
		return 0, fmt.Errorf("unknown type kind: %s", s)
	}
}

// Type describes one source type. A nil Type is the "nil type".
type Type interface {
	Kind() Kind
	String() string
	isType()
}

// Primitive is a scalar type identified by name (string, uuid, utc_datetime, ...)
type Primitive struct {
	Name string
}

// Array is a list of Of
type Array struct {
	Of Type
}

// Struct is a structured value. InstanceOf names either a resource (the struct is
// that resource's value) or a plain named composite; Fields is its declared shape.
type Struct struct {
	InstanceOf string
	Fields     []RecordField
}

// ContainerKind is the flavour of an ad hoc record
type ContainerKind int

const (
	ContainerMap ContainerKind = iota
	ContainerKeyword
	ContainerTuple
)

// String returns the string representation of the container kind
func (c ContainerKind) String() string {
	switch c {
	case ContainerMap:
		return "map"
	case ContainerKeyword:
		return "keyword"
	case ContainerTuple:
		return "tuple"
	default:
		return "unknown"
	}
}

// ParseContainerKind converts a string to a ContainerKind. The empty string is a map.
func ParseContainerKind(s string) (ContainerKind, error) {
	switch s {
	case "", "map":
		return ContainerMap, nil
	case "keyword":
		return ContainerKeyword, nil
	case "tuple":
		return ContainerTuple, nil
	default:
		return 0, fmt.Errorf("unknown container kind: %s", s)
	}
}

// Record is an ad hoc record (map, keyword list or tuple) with an explicit field list
type Record struct {
	Container ContainerKind
	Fields    []RecordField
}

// Union is a tagged union; exactly one member is populated at runtime
type Union struct {
	Members []UnionMember
}

// UnionMember is one named alternative of a Union
type UnionMember struct {
	Name        string
	Type        Type
	Constraints Constraints
}

// Enum is a closed set of string values
type Enum struct {
	Name   string
	Values []string
}

// NewType renames or subtypes Of, optionally narrowing it with its own constraints
type NewType struct {
	Name        string
	Of          Type
	Constraints Constraints
}

// Custom is an opaque type. DisplayName is the target-side name it declares, if any.
type Custom struct {
	Name        string
	DisplayName string
}

// ResourceRef references a resource by qualified name
type ResourceRef struct {
	Resource string
}

// RecordField is one field of a Struct or Record
type RecordField struct {
	Name        string
	Type        Type
	Constraints Constraints
	AllowNil    bool
	Description string
}

// Constraints narrows a type. The zero value is the empty constraint set.
type Constraints struct {
	Items      *Constraints  // item-level constraints for arrays
	OneOf      []string      // allowed literal values
	Fields     []RecordField // field list declared through constraints
	InstanceOf string        // struct identity declared through constraints
}

// ItemConstraints returns the item-level constraints, or the empty set when missing
func (c Constraints) ItemConstraints() Constraints {
	if c.Items == nil {
		return Constraints{}
	}
	return *c.Items
}

// IsEmpty reports whether no constraint is set
func (c Constraints) IsEmpty() bool {
	return c.Items == nil && len(c.OneOf) == 0 && len(c.Fields) == 0 && c.InstanceOf == ""
}

// Merge overlays c on top of base: every constraint set in c wins, the rest comes
// from base.
func (c Constraints) Merge(base Constraints) Constraints {
	out := base
	if c.Items != nil {
		out.Items = c.Items
	}
	if len(c.OneOf) > 0 {
		out.OneOf = c.OneOf
	}
	if len(c.Fields) > 0 {
		out.Fields = c.Fields
	}
	if c.InstanceOf != "" {
		out.InstanceOf = c.InstanceOf
	}
	return out
}

func (*Primitive) Kind() Kind   { return KindPrimitive }
func (*Array) Kind() Kind       { return KindArray }
func (*Struct) Kind() Kind      { return KindStruct }
func (*Record) Kind() Kind      { return KindRecord }
func (*Union) Kind() Kind       { return KindUnion }
func (*Enum) Kind() Kind        { return KindEnum }
func (*NewType) Kind() Kind     { return KindNewType }
func (*Custom) Kind() Kind      { return KindCustom }
func (*ResourceRef) Kind() Kind { return KindResource }

func (*Primitive) isType()   {}
func (*Array) isType()       {}
func (*Struct) isType()      {}
func (*Record) isType()      {}
func (*Union) isType()       {}
func (*Enum) isType()        {}
func (*NewType) isType()     {}
func (*Custom) isType()      {}
func (*ResourceRef) isType() {}

func (t *Primitive) String() string { return t.Name }

func (t *Array) String() string {
	return fmt.Sprintf("array<%s>", TypeString(t.Of))
}

func (t *Struct) String() string {
	if t.InstanceOf != "" {
		return fmt.Sprintf("struct<%s>", t.InstanceOf)
	}
	return "struct" + fieldsString(t.Fields)
}

func (t *Record) String() string {
	return t.Container.String() + fieldsString(t.Fields)
}

func (t *Union) String() string {
	parts := make([]string, len(t.Members))
	for i, m := range t.Members {
		parts[i] = m.Name + ": " + TypeString(m.Type)
	}
	return "union{" + strings.Join(parts, ", ") + "}"
}

func (t *Enum) String() string {
	if t.Name != "" {
		return t.Name
	}
	return fmt.Sprintf("enum%v", t.Values)
}

func (t *NewType) String() string {
	return fmt.Sprintf("%s(%s)", t.Name, TypeString(t.Of))
}

func (t *Custom) String() string { return t.Name }

func (t *ResourceRef) String() string { return t.Resource }

// TypeString renders t for messages, including the nil type
func TypeString(t Type) string {
	if t == nil {
		return "nil"
	}
	return t.String()
}

func fieldsString(fields []RecordField) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return "{" + strings.Join(names, ", ") + "}"
}

// UnwrapNewType strips every NewType layer from t, merging each wrapper's constraints
// over the constraints of the type it wraps. Outer wrappers win.
func UnwrapNewType(t Type, c Constraints) (Type, Constraints) {
	for {
		nt, ok := t.(*NewType)
		if !ok {
			return t, c
		}
		c = c.Merge(nt.Constraints)
		t = nt.Of
	}
}

// UnwrapArray strips one array layer from t. The returned bool reports whether t was
// an array.
func UnwrapArray(t Type, c Constraints) (Type, Constraints, bool) {
	if arr, ok := t.(*Array); ok {
		return arr.Of, c.ItemConstraints(), true
	}
	return t, c, false
}

// RecordFields returns the field list of a Struct or Record, falling back to the
// fields declared through constraints.
func RecordFields(t Type, c Constraints) []RecordField {
	switch v := t.(type) {
	case *Struct:
		if len(v.Fields) > 0 {
			return v.Fields
		}
	case *Record:
		if len(v.Fields) > 0 {
			return v.Fields
		}
	}
	return c.Fields
}

// InstanceOf returns the struct identity of t, falling back to the constraints
func InstanceOf(t Type, c Constraints) string {
	if s, ok := t.(*Struct); ok && s.InstanceOf != "" {
		return s.InstanceOf
	}
	return c.InstanceOf
}

package schema

import (
	"fmt"
	"strings"
)

// Origin is where a field comes from on its resource
type Origin int

const (
	OriginAttribute Origin = iota
	OriginCalculation
	OriginAggregate
	OriginRelationship
)

// String returns the string representation of the origin
func (o Origin) String() string {
	switch o {
	case OriginAttribute:
		return "attribute"
	case OriginCalculation:
		return "calculation"
	case OriginAggregate:
		return "aggregate"
	case OriginRelationship:
		return "relationship"
	default:
		return "unknown"
	}
}

// ParseOrigin converts a string to an Origin
func ParseOrigin(s string) (Origin, error) {
	switch s {
	case "", "attribute":
		return OriginAttribute, nil
	case "calculation":
		return OriginCalculation, nil
	case "aggregate":
		return OriginAggregate, nil
	case "relationship":
		return OriginRelationship, nil
	default:
		return 0, fmt.Errorf("unknown field kind: %s", s)
	}
}

// RelationType represents the type of relationship
type RelationType int

const (
	RelationshipBelongsTo RelationType = iota
	RelationshipHasOne
	RelationshipHasMany
	RelationshipManyToMany
)

// String returns the string representation of the relationship type
func (r RelationType) String() string {
	switch r {
	case RelationshipBelongsTo:
		return "belongs_to"
	case RelationshipHasOne:
		return "has_one"
	case RelationshipHasMany:
		return "has_many"
	case RelationshipManyToMany:
		return "many_to_many"
	default:
		return "unknown"
	}
}

// ParseRelationType converts a string to a RelationType
func ParseRelationType(s string) (RelationType, error) {
	switch s {
	case "belongs_to":
		return RelationshipBelongsTo, nil
	case "has_one":
		return RelationshipHasOne, nil
	case "has_many":
		return RelationshipHasMany, nil
	case "many_to_many", "has_many_through":
		return RelationshipManyToMany, nil
	default:
		return 0, fmt.Errorf("unknown relationship type: %s", s)
	}
}

// IsMany reports whether the relationship yields a list
func (r RelationType) IsMany() bool {
	return r == RelationshipHasMany || r == RelationshipManyToMany
}

// Relationship describes a relationship field
type Relationship struct {
	Type        RelationType
	Destination string
}

// AggregateKind represents the kind of aggregate
type AggregateKind int

const (
	AggregateCount AggregateKind = iota
	AggregateExists
	AggregateSum
	AggregateAvg
	AggregateMin
	AggregateMax
	AggregateFirst
	AggregateList
	AggregateCustom
)

// String returns the string representation of the aggregate kind
func (a AggregateKind) String() string {
	switch a {
	case AggregateCount:
		return "count"
	case AggregateExists:
		return "exists"
	case AggregateSum:
		return "sum"
	case AggregateAvg:
		return "avg"
	case AggregateMin:
		return "min"
	case AggregateMax:
		return "max"
	case AggregateFirst:
		return "first"
	case AggregateList:
		return "list"
	case AggregateCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// ParseAggregateKind converts a string to an AggregateKind
func ParseAggregateKind(s string) (AggregateKind, error) {
	switch s {
	case "count":
		return AggregateCount, nil
	case "exists":
		return AggregateExists, nil
	case "sum":
		return AggregateSum, nil
	case "avg":
		return AggregateAvg, nil
	case "min":
		return AggregateMin, nil
	case "max":
		return AggregateMax, nil
	case "first":
		return AggregateFirst, nil
	case "list":
		return AggregateList, nil
	case "custom":
		return AggregateCustom, nil
	default:
		return 0, fmt.Errorf("unknown aggregate kind: %s", s)
	}
}

// TraversesField reports whether the aggregate's value is taken from a concrete field
// on the far side of its relationship path (as opposed to a count/sum/exists style
// result that is always a terminal primitive).
func (a AggregateKind) TraversesField() bool {
	switch a {
	case AggregateFirst, AggregateList, AggregateMin, AggregateMax, AggregateCustom:
		return true
	default:
		return false
	}
}

// Aggregate describes an aggregate field
type Aggregate struct {
	Kind  AggregateKind
	Path  []string // relationship names, hop by hop
	Field string   // field on the last hop's destination; empty for count/exists
}

// Argument is a calculation argument
type Argument struct {
	Name        string
	Type        Type
	Constraints Constraints
	AllowNil    bool
	HasDefault  bool
}

// Field is one public field of a resource
type Field struct {
	Name        string
	Origin      Origin
	Type        Type
	Constraints Constraints
	AllowNil    bool
	HasDefault  bool
	Description string

	Arguments    []*Argument   // calculations only
	Relationship *Relationship // relationships only
	Aggregate    *Aggregate    // aggregates only
}

// String returns a short description of the field for messages
func (f *Field) String() string {
	return fmt.Sprintf("%s %s: %s", f.Origin, f.Name, TypeString(f.Type))
}

// Resource is one resource of the host framework
type Resource struct {
	Name        string // qualified name, e.g. "MyApp.Blog.Post"
	DisplayName string
	Embedded    bool
	Description string
	Fields      []*Field
}

// NewResource creates a new standalone Resource
func NewResource(name string) *Resource {
	return &Resource{
		Name:   name,
		Fields: make([]*Field, 0),
	}
}

// Field returns the field with the given name
func (r *Resource) Field(name string) (*Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// FieldsOf returns the fields with the given origin, in declaration order
func (r *Resource) FieldsOf(origin Origin) []*Field {
	var out []*Field
	for _, f := range r.Fields {
		if f.Origin == origin {
			out = append(out, f)
		}
	}
	return out
}

// ShortName returns the last segment of the qualified name
func (r *Resource) ShortName() string {
	if i := strings.LastIndex(r.Name, "."); i >= 0 {
		return r.Name[i+1:]
	}
	return r.Name
}

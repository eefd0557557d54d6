package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the on-disk shape of a metadata export. JSON and YAML share it.
type Document struct {
	Version   string        `json:"version,omitempty" yaml:"version,omitempty"`
	Resources []ResourceDoc `json:"resources" yaml:"resources"`
}

// ResourceDoc is one resource in a metadata document
type ResourceDoc struct {
	Name          string     `json:"name" yaml:"name"`
	DisplayName   string     `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	Embedded      bool       `json:"embedded,omitempty" yaml:"embedded,omitempty"`
	Documentation string     `json:"documentation,omitempty" yaml:"documentation,omitempty"`
	Fields        []FieldDoc `json:"fields" yaml:"fields"`
}

// FieldDoc is one field in a metadata document
type FieldDoc struct {
	Name          string           `json:"name" yaml:"name"`
	Kind          string           `json:"kind,omitempty" yaml:"kind,omitempty"`
	Type          *TypeDoc         `json:"type,omitempty" yaml:"type,omitempty"`
	Constraints   *ConstraintsDoc  `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	AllowNil      bool             `json:"allow_nil,omitempty" yaml:"allow_nil,omitempty"`
	HasDefault    bool             `json:"has_default,omitempty" yaml:"has_default,omitempty"`
	Public        *bool            `json:"public,omitempty" yaml:"public,omitempty"`
	Documentation string           `json:"documentation,omitempty" yaml:"documentation,omitempty"`
	Arguments     []ArgumentDoc    `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	Relationship  *RelationshipDoc `json:"relationship,omitempty" yaml:"relationship,omitempty"`
	Aggregate     *AggregateDoc    `json:"aggregate,omitempty" yaml:"aggregate,omitempty"`
}

// ArgumentDoc is one calculation argument in a metadata document
type ArgumentDoc struct {
	Name        string          `json:"name" yaml:"name"`
	Type        *TypeDoc        `json:"type" yaml:"type"`
	Constraints *ConstraintsDoc `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	AllowNil    bool            `json:"allow_nil,omitempty" yaml:"allow_nil,omitempty"`
	HasDefault  bool            `json:"has_default,omitempty" yaml:"has_default,omitempty"`
}

// RelationshipDoc describes a relationship field in a metadata document
type RelationshipDoc struct {
	Kind        string `json:"kind" yaml:"kind"`
	Destination string `json:"destination" yaml:"destination"`
}

// AggregateDoc describes an aggregate field in a metadata document
type AggregateDoc struct {
	Kind  string   `json:"kind" yaml:"kind"`
	Path  []string `json:"path" yaml:"path"`
	Field string   `json:"field,omitempty" yaml:"field,omitempty"`
}

// TypeDoc is a type node in a metadata document
type TypeDoc struct {
	Kind        string           `json:"kind" yaml:"kind"`
	Name        string           `json:"name,omitempty" yaml:"name,omitempty"`
	Of          *TypeDoc         `json:"of,omitempty" yaml:"of,omitempty"`
	InstanceOf  string           `json:"instance_of,omitempty" yaml:"instance_of,omitempty"`
	Container   string           `json:"container,omitempty" yaml:"container,omitempty"`
	Fields      []RecordFieldDoc `json:"fields,omitempty" yaml:"fields,omitempty"`
	Members     []MemberDoc      `json:"members,omitempty" yaml:"members,omitempty"`
	Values      []string         `json:"values,omitempty" yaml:"values,omitempty"`
	DisplayName string           `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	Resource    string           `json:"resource,omitempty" yaml:"resource,omitempty"`
	Constraints *ConstraintsDoc  `json:"constraints,omitempty" yaml:"constraints,omitempty"`
}

// RecordFieldDoc is a field of a struct or record type node
type RecordFieldDoc struct {
	Name          string          `json:"name" yaml:"name"`
	Type          *TypeDoc        `json:"type" yaml:"type"`
	Constraints   *ConstraintsDoc `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	AllowNil      bool            `json:"allow_nil,omitempty" yaml:"allow_nil,omitempty"`
	Documentation string          `json:"documentation,omitempty" yaml:"documentation,omitempty"`
}

// MemberDoc is a member of a union type node
type MemberDoc struct {
	Name        string          `json:"name" yaml:"name"`
	Type        *TypeDoc        `json:"type" yaml:"type"`
	Constraints *ConstraintsDoc `json:"constraints,omitempty" yaml:"constraints,omitempty"`
}

// ConstraintsDoc is a constraint set in a metadata document
type ConstraintsDoc struct {
	Items      *ConstraintsDoc  `json:"items,omitempty" yaml:"items,omitempty"`
	OneOf      []string         `json:"one_of,omitempty" yaml:"one_of,omitempty"`
	Fields     []RecordFieldDoc `json:"fields,omitempty" yaml:"fields,omitempty"`
	InstanceOf string           `json:"instance_of,omitempty" yaml:"instance_of,omitempty"`
}

// LoadFile reads a metadata document from path. Files ending in .yml or .yaml are
// decoded as YAML, everything else as JSON.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}

	var doc *Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		doc, err = DecodeYAML(data)
	default:
		doc, err = DecodeJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc.Registry()
}

// DecodeJSON decodes a JSON metadata document, rejecting unknown keys
func DecodeJSON(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return &doc, nil
}

// DecodeYAML decodes a YAML metadata document, rejecting unknown keys
func DecodeYAML(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return &doc, nil
}

// Registry converts the document into a validated Registry. Fields marked
// public: false are dropped.
func (d *Document) Registry() (*Registry, error) {
	reg := NewRegistry()
	for i := range d.Resources {
		rd := &d.Resources[i]
		res, err := rd.resource()
		if err != nil {
			return nil, fmt.Errorf("resource %s: %w", rd.Name, err)
		}
		if err := reg.Register(res); err != nil {
			return nil, err
		}
	}
	if err := reg.ValidateReferences(); err != nil {
		return nil, err
	}
	return reg, nil
}

func (rd *ResourceDoc) resource() (*Resource, error) {
	res := NewResource(rd.Name)
	res.DisplayName = rd.DisplayName
	res.Embedded = rd.Embedded
	res.Description = rd.Documentation

	for i := range rd.Fields {
		fd := &rd.Fields[i]
		if fd.Public != nil && !*fd.Public {
			continue
		}
		f, err := fd.field()
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", fd.Name, err)
		}
		res.Fields = append(res.Fields, f)
	}
	return res, nil
}

func (fd *FieldDoc) field() (*Field, error) {
	origin, err := ParseOrigin(fd.Kind)
	if err != nil {
		return nil, err
	}

	f := &Field{
		Name:        fd.Name,
		Origin:      origin,
		AllowNil:    fd.AllowNil,
		HasDefault:  fd.HasDefault,
		Description: fd.Documentation,
	}
	if f.Constraints, err = fd.Constraints.constraints(); err != nil {
		return nil, err
	}

	switch origin {
	case OriginRelationship:
		if fd.Relationship == nil {
			return nil, fmt.Errorf("relationship field requires a relationship block")
		}
		kind, err := ParseRelationType(fd.Relationship.Kind)
		if err != nil {
			return nil, err
		}
		f.Relationship = &Relationship{Type: kind, Destination: fd.Relationship.Destination}
		var t Type = &ResourceRef{Resource: fd.Relationship.Destination}
		if kind.IsMany() {
			t = &Array{Of: t}
		}
		f.Type = t
		return f, nil

	case OriginAggregate:
		if fd.Aggregate == nil {
			return nil, fmt.Errorf("aggregate field requires an aggregate block")
		}
		kind, err := ParseAggregateKind(fd.Aggregate.Kind)
		if err != nil {
			return nil, err
		}
		f.Aggregate = &Aggregate{Kind: kind, Path: fd.Aggregate.Path, Field: fd.Aggregate.Field}
		if kind.TraversesField() && f.Aggregate.Field == "" && kind != AggregateCustom {
			return nil, fmt.Errorf("%s aggregate requires a field", kind)
		}

	case OriginCalculation:
		for i := range fd.Arguments {
			ad := &fd.Arguments[i]
			arg, err := ad.argument()
			if err != nil {
				return nil, fmt.Errorf("argument %s: %w", ad.Name, err)
			}
			f.Arguments = append(f.Arguments, arg)
		}
	}

	if fd.Type != nil {
		if f.Type, err = fd.Type.typ(); err != nil {
			return nil, err
		}
	} else if origin != OriginAggregate {
		return nil, fmt.Errorf("%s field requires a type", origin)
	}
	return f, nil
}

func (ad *ArgumentDoc) argument() (*Argument, error) {
	t, err := ad.Type.typ()
	if err != nil {
		return nil, err
	}
	c, err := ad.Constraints.constraints()
	if err != nil {
		return nil, err
	}
	return &Argument{
		Name:        ad.Name,
		Type:        t,
		Constraints: c,
		AllowNil:    ad.AllowNil,
		HasDefault:  ad.HasDefault,
	}, nil
}

// typ converts a type node. A nil node is the nil type.
func (td *TypeDoc) typ() (Type, error) {
	if td == nil {
		return nil, nil
	}
	kind, err := ParseKind(td.Kind)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindPrimitive:
		if td.Name == "" {
			return nil, fmt.Errorf("primitive type requires a name")
		}
		return &Primitive{Name: td.Name}, nil

	case KindArray:
		if td.Of == nil {
			return nil, fmt.Errorf("array type requires an item type")
		}
		of, err := td.Of.typ()
		if err != nil {
			return nil, fmt.Errorf("array item: %w", err)
		}
		return &Array{Of: of}, nil

	case KindStruct:
		fields, err := recordFields(td.Fields)
		if err != nil {
			return nil, err
		}
		return &Struct{InstanceOf: td.InstanceOf, Fields: fields}, nil

	case KindRecord:
		container := td.Container
		if container == "" && td.Kind != "record" {
			container = td.Kind
		}
		ck, err := ParseContainerKind(container)
		if err != nil {
			return nil, err
		}
		fields, err := recordFields(td.Fields)
		if err != nil {
			return nil, err
		}
		return &Record{Container: ck, Fields: fields}, nil

	case KindUnion:
		if len(td.Members) == 0 {
			return nil, fmt.Errorf("union type requires at least one member")
		}
		u := &Union{Members: make([]UnionMember, 0, len(td.Members))}
		for _, md := range td.Members {
			mt, err := md.Type.typ()
			if err != nil {
				return nil, fmt.Errorf("union member %s: %w", md.Name, err)
			}
			mc, err := md.Constraints.constraints()
			if err != nil {
				return nil, err
			}
			u.Members = append(u.Members, UnionMember{Name: md.Name, Type: mt, Constraints: mc})
		}
		return u, nil

	case KindEnum:
		if len(td.Values) == 0 {
			return nil, fmt.Errorf("enum type requires values")
		}
		return &Enum{Name: td.Name, Values: td.Values}, nil

	case KindNewType:
		if td.Name == "" {
			return nil, fmt.Errorf("new_type requires a name")
		}
		of, err := td.Of.typ()
		if err != nil {
			return nil, fmt.Errorf("new_type %s: %w", td.Name, err)
		}
		c, err := td.Constraints.constraints()
		if err != nil {
			return nil, err
		}
		return &NewType{Name: td.Name, Of: of, Constraints: c}, nil

	case KindCustom:
		if td.Name == "" {
			return nil, fmt.Errorf("custom type requires a name")
		}
		return &Custom{Name: td.Name, DisplayName: td.DisplayName}, nil

	case KindResource:
		name := td.Resource
		if name == "" {
			name = td.Name
		}
		if name == "" {
			return nil, fmt.Errorf("resource type requires a resource name")
		}
		return &ResourceRef{Resource: name}, nil
	}
	return nil, fmt.Errorf("unsupported type kind: %s", td.Kind)
}

func recordFields(docs []RecordFieldDoc) ([]RecordField, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	fields := make([]RecordField, 0, len(docs))
	for _, fd := range docs {
		t, err := fd.Type.typ()
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", fd.Name, err)
		}
		c, err := fd.Constraints.constraints()
		if err != nil {
			return nil, err
		}
		fields = append(fields, RecordField{
			Name:        fd.Name,
			Type:        t,
			Constraints: c,
			AllowNil:    fd.AllowNil,
			Description: fd.Documentation,
		})
	}
	return fields, nil
}

// constraints converts a constraint set. A nil set is the empty set.
func (cd *ConstraintsDoc) constraints() (Constraints, error) {
	if cd == nil {
		return Constraints{}, nil
	}
	c := Constraints{OneOf: cd.OneOf, InstanceOf: cd.InstanceOf}
	if cd.Items != nil {
		items, err := cd.Items.constraints()
		if err != nil {
			return Constraints{}, err
		}
		c.Items = &items
	}
	fields, err := recordFields(cd.Fields)
	if err != nil {
		return Constraints{}, err
	}
	c.Fields = fields
	return c, nil
}

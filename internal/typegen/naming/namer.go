package naming

// Rename maps one field of one resource to a fixed client-side name
type Rename struct {
	Resource string
	Field    string
	Name     string
}

// FieldNamer resolves client-side property names. Explicit renames win over the
// formatter.
type FieldNamer struct {
	formatter Formatter
	renames   map[string]map[string]string
}

// NewFieldNamer creates a namer. A nil formatter leaves names untouched.
func NewFieldNamer(formatter Formatter, renames ...Rename) *FieldNamer {
	if formatter == nil {
		formatter = NewFormatter(CaseNone)
	}
	n := &FieldNamer{
		formatter: formatter,
		renames:   make(map[string]map[string]string),
	}
	for _, r := range renames {
		byField, ok := n.renames[r.Resource]
		if !ok {
			byField = make(map[string]string)
			n.renames[r.Resource] = byField
		}
		byField[r.Field] = r.Name
	}
	return n
}

// Name returns the property name of field on resource
func (n *FieldNamer) Name(resource, field string) string {
	if byField, ok := n.renames[resource]; ok {
		if name, ok := byField[field]; ok {
			return name
		}
	}
	return n.formatter.Format(field)
}

// Format renders a name with no owning resource, such as a record field or union
// member
func (n *FieldNamer) Format(name string) string {
	return n.formatter.Format(name)
}

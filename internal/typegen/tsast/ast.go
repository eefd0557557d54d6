// Package tsast is a small TypeScript type-expression AST. The generator builds these
// nodes and a single Printer turns them into source text.
package tsast

// Type is a TypeScript type expression
type Type interface {
	tsType()
}

// Primitive is a keyword type such as string, number, boolean, null or never
type Primitive struct {
	Name string
}

// Literal is a single literal type. Text is emitted verbatim, so string literals
// must already be quoted; use StringLiteral for that.
type Literal struct {
	Text string
}

// LiteralUnion is a union of string literals. An empty union prints as never.
type LiteralUnion struct {
	Values []string
}

// Reference names a declared type
type Reference struct {
	Name string
}

// Array is Elem[]
type Array struct {
	Elem Type
}

// Union is A | B | ...
type Union struct {
	Types []Type
}

// Object is an object literal type
type Object struct {
	Props []*Property
}

// Property is one member of an Object
type Property struct {
	Name        string
	Type        Type
	Optional    bool
	Description string
}

// Declaration is a top-level `export type Name = Type;`
type Declaration struct {
	Name        string
	Type        Type
	Description string
}

func (*Primitive) tsType()    {}
func (*Literal) tsType()      {}
func (*LiteralUnion) tsType() {}
func (*Reference) tsType()    {}
func (*Array) tsType()        {}
func (*Union) tsType()        {}
func (*Object) tsType()       {}

var (
	String  = &Primitive{Name: "string"}
	Number  = &Primitive{Name: "number"}
	Boolean = &Primitive{Name: "boolean"}
	Null    = &Primitive{Name: "null"}
	Never   = &Primitive{Name: "never"}
	True    = &Literal{Text: "true"}
)

// StringLiteral returns the literal type for s
func StringLiteral(s string) *Literal {
	return &Literal{Text: quote(s)}
}

// Ref returns a reference to name
func Ref(name string) *Reference {
	return &Reference{Name: name}
}

// Nullable returns t | null. A type that is already nullable is returned as is.
func Nullable(t Type) Type {
	if u, ok := t.(*Union); ok {
		for _, m := range u.Types {
			if m == Null {
				return t
			}
		}
		types := make([]Type, 0, len(u.Types)+1)
		types = append(types, u.Types...)
		return &Union{Types: append(types, Null)}
	}
	if t == Null {
		return t
	}
	return &Union{Types: []Type{t, Null}}
}

// Prop appends a required property and returns the object
func (o *Object) Prop(name string, t Type) *Object {
	o.Props = append(o.Props, &Property{Name: name, Type: t})
	return o
}

// OptionalProp appends an optional property and returns the object
func (o *Object) OptionalProp(name string, t Type) *Object {
	o.Props = append(o.Props, &Property{Name: name, Type: t, Optional: true})
	return o
}

// Lookup returns the property with the given name
func (o *Object) Lookup(name string) (*Property, bool) {
	for _, p := range o.Props {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// InsertAfter inserts p directly after the property named after, or at the front
// when no such property exists.
func (o *Object) InsertAfter(after string, p *Property) {
	idx := 0
	for i, existing := range o.Props {
		if existing.Name == after {
			idx = i + 1
			break
		}
	}
	o.Props = append(o.Props, nil)
	copy(o.Props[idx+1:], o.Props[idx:])
	o.Props[idx] = p
}

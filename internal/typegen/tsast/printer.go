package tsast

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Printer renders AST nodes as TypeScript source
type Printer struct {
	Indent string
}

// NewPrinter creates a printer indenting with two spaces
func NewPrinter() *Printer {
	return &Printer{Indent: "  "}
}

// Print renders t at depth zero
func (p *Printer) Print(t Type) string {
	var sb strings.Builder
	p.writeType(&sb, t, 0)
	return sb.String()
}

// Declaration renders `export type Name = Type;` with a trailing newline
func (p *Printer) Declaration(d *Declaration) string {
	var sb strings.Builder
	if d.Description != "" {
		p.writeDoc(&sb, d.Description, 0)
	}
	sb.WriteString("export type ")
	sb.WriteString(d.Name)
	sb.WriteString(" = ")
	p.writeType(&sb, d.Type, 0)
	sb.WriteString(";\n")
	return sb.String()
}

// WriteDeclarations writes decls to w separated by blank lines
func (p *Printer) WriteDeclarations(w io.Writer, decls []*Declaration) error {
	for i, d := range decls {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, p.Declaration(d)); err != nil {
			return fmt.Errorf("failed to write %s: %w", d.Name, err)
		}
	}
	return nil
}

func (p *Printer) writeType(sb *strings.Builder, t Type, depth int) {
	switch v := t.(type) {
	case nil:
		sb.WriteString("null")
	case *Primitive:
		sb.WriteString(v.Name)
	case *Literal:
		sb.WriteString(v.Text)
	case *Reference:
		sb.WriteString(v.Name)
	case *LiteralUnion:
		if len(v.Values) == 0 {
			sb.WriteString("never")
			return
		}
		for i, val := range v.Values {
			if i > 0 {
				sb.WriteString(" | ")
			}
			sb.WriteString(quote(val))
		}
	case *Union:
		for i, m := range v.Types {
			if i > 0 {
				sb.WriteString(" | ")
			}
			p.writeType(sb, m, depth)
		}
	case *Array:
		if needsParens(v.Elem) {
			sb.WriteString("(")
			p.writeType(sb, v.Elem, depth)
			sb.WriteString(")[]")
			return
		}
		p.writeType(sb, v.Elem, depth)
		sb.WriteString("[]")
	case *Object:
		p.writeObject(sb, v, depth)
	default:
		panic(fmt.Sprintf("tsast: unknown node %T", t))
	}
}

func (p *Printer) writeObject(sb *strings.Builder, o *Object, depth int) {
	if len(o.Props) == 0 {
		sb.WriteString("{}")
		return
	}
	inner := strings.Repeat(p.Indent, depth+1)

	sb.WriteString("{\n")
	for _, prop := range o.Props {
		if prop.Description != "" {
			p.writeDoc(sb, prop.Description, depth+1)
		}
		sb.WriteString(inner)
		sb.WriteString(PropertyKey(prop.Name))
		if prop.Optional {
			sb.WriteString("?")
		}
		sb.WriteString(": ")
		p.writeType(sb, prop.Type, depth+1)
		sb.WriteString(";\n")
	}
	sb.WriteString(strings.Repeat(p.Indent, depth))
	sb.WriteString("}")
}

func (p *Printer) writeDoc(sb *strings.Builder, description string, depth int) {
	indent := strings.Repeat(p.Indent, depth)
	lines := strings.Split(strings.TrimSpace(description), "\n")
	if len(lines) == 1 {
		fmt.Fprintf(sb, "%s/** %s */\n", indent, lines[0])
		return
	}
	sb.WriteString(indent + "/**\n")
	for _, line := range lines {
		sb.WriteString(strings.TrimRight(indent+" * "+line, " ") + "\n")
	}
	sb.WriteString(indent + " */\n")
}

func needsParens(t Type) bool {
	switch v := t.(type) {
	case *Union:
		return len(v.Types) > 1
	case *LiteralUnion:
		return len(v.Values) > 1
	}
	return false
}

// PropertyKey returns name as an object key, quoted when it is not a valid
// identifier
func PropertyKey(name string) string {
	if len(name) == 0 {
		return `""`
	}
	for i, r := range name {
		if i == 0 {
			if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == '$') {
				return quote(name)
			}
		} else {
			if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '$') {
				return quote(name)
			}
		}
	}
	return name
}

func quote(s string) string {
	return strconv.Quote(s)
}

// Package naming renders source field names as client-side property names.
package naming

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Formatter renders one source name
type Formatter interface {
	Format(name string) string
}

// FormatterFunc adapts a function to Formatter
type FormatterFunc func(name string) string

// Format implements Formatter
func (f FormatterFunc) Format(name string) string { return f(name) }

// Case is a naming convention
type Case int

const (
	CaseCamel Case = iota
	CasePascal
	CaseSnake
	CaseNone
)

// String returns the string representation of the case
func (c Case) String() string {
	switch c {
	case CaseCamel:
		return "camel"
	case CasePascal:
		return "pascal"
	case CaseSnake:
		return "snake"
	case CaseNone:
		return "none"
	default:
		return "unknown"
	}
}

// ParseCase converts a string to a Case
func ParseCase(s string) (Case, error) {
	switch strings.ToLower(s) {
	case "camel", "camelcase", "camel_case":
		return CaseCamel, nil
	case "pascal", "pascalcase", "pascal_case":
		return CasePascal, nil
	case "snake", "snakecase", "snake_case":
		return CaseSnake, nil
	case "none", "":
		return CaseNone, nil
	default:
		return 0, fmt.Errorf("unknown field case: %s", s)
	}
}

// NewFormatter returns the formatter for c
func NewFormatter(c Case) Formatter {
	switch c {
	case CaseCamel:
		return FormatterFunc(ToCamelCase)
	case CasePascal:
		return FormatterFunc(ToPascalCase)
	case CaseSnake:
		return FormatterFunc(ToSnakeCase)
	default:
		return FormatterFunc(func(name string) string { return name })
	}
}

var title = cases.Title(language.Und, cases.NoLower)

// ToCamelCase converts snake_case or PascalCase to camelCase (author_id -> authorId).
// Leading underscores and trailing ?/! markers are kept.
func ToCamelCase(s string) string {
	return convert(s, func(i int, w string) string {
		if i == 0 {
			return strings.ToLower(w)
		}
		return title.String(strings.ToLower(w))
	}, "")
}

// ToPascalCase converts snake_case or camelCase to PascalCase (author_id -> AuthorId)
func ToPascalCase(s string) string {
	return convert(s, func(_ int, w string) string {
		return title.String(strings.ToLower(w))
	}, "")
}

// ToSnakeCase converts CamelCase to snake_case
// Handles acronyms properly (HTTPRequest -> http_request)
func ToSnakeCase(s string) string {
	return convert(s, func(_ int, w string) string {
		return strings.ToLower(w)
	}, "_")
}

func convert(s string, word func(i int, w string) string, sep string) string {
	body := strings.TrimLeft(s, "_")
	prefix := s[:len(s)-len(body)]
	trimmed := strings.TrimRight(body, "?!")
	suffix := body[len(trimmed):]

	parts := splitWords(trimmed)
	for i, w := range parts {
		parts[i] = word(i, w)
	}
	return prefix + strings.Join(parts, sep) + suffix
}

// splitWords breaks s on underscores, dashes and case boundaries
func splitWords(s string) []string {
	var words []string
	var current strings.Builder
	runes := []rune(s)

	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}

	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ':
			flush()
			continue
		case unicode.IsUpper(r) && i > 0:
			prev := runes[i-1]
			// Start a new word before an uppercase letter if:
			// 1. Previous char is lowercase or a digit
			// 2. Next char is lowercase (for acronyms like HTTPRequest -> http_request)
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				flush()
			} else if unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
				flush()
			}
		}
		current.WriteRune(r)
	}
	flush()
	return words
}

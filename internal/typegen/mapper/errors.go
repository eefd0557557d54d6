package mapper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/conduit-lang/typegen/internal/typegen/schema"
)

// ErrUnsupportedType is matched by every UnsupportedTypeError
var ErrUnsupportedType = errors.New("unsupported type")

// UnsupportedTypeError is returned for a descriptor with no precise target type.
// It aborts the generation pass.
type UnsupportedTypeError struct {
	Type   schema.Type
	Path   []string
	Reason string
}

func (e *UnsupportedTypeError) Error() string {
	var sb strings.Builder
	sb.WriteString("unsupported type ")
	sb.WriteString(schema.TypeString(e.Type))
	if len(e.Path) > 0 {
		sb.WriteString(" at ")
		sb.WriteString(strings.Join(e.Path, "."))
	}
	if e.Reason != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Reason)
	}
	return sb.String()
}

// Unwrap makes errors.Is(err, ErrUnsupportedType) hold
func (e *UnsupportedTypeError) Unwrap() error {
	return ErrUnsupportedType
}

// At returns a copy of e with segments prepended to its path
func (e *UnsupportedTypeError) At(segments ...string) *UnsupportedTypeError {
	path := make([]string, 0, len(segments)+len(e.Path))
	path = append(path, segments...)
	path = append(path, e.Path...)
	return &UnsupportedTypeError{Type: e.Type, Path: path, Reason: e.Reason}
}

func unsupported(t schema.Type, path []string, format string, args ...interface{}) error {
	var p []string
	if len(path) > 0 {
		p = make([]string, len(path))
		copy(p, path)
	}
	return &UnsupportedTypeError{Type: t, Path: p, Reason: fmt.Sprintf(format, args...)}
}

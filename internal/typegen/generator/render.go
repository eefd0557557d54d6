package generator

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/conduit-lang/typegen/internal/typegen/tsast"
)

// Header opens every generated file
const Header = "// Code generated by typegen. DO NOT EDIT.\n\n"

// Render writes the generated TypeScript of res to w
func Render(w io.Writer, res *Result) error {
	if _, err := io.WriteString(w, Header); err != nil {
		return err
	}
	return tsast.NewPrinter().WriteDeclarations(w, res.Declarations())
}

// RenderString returns the generated TypeScript of res
func RenderString(res *Result) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, res); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteFile renders res to path, creating parent directories. The file is written
// to a temporary sibling first and renamed into place.
func WriteFile(path string, res *Result) error {
	out, err := RenderString(res)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".typegen-*.ts")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(out); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

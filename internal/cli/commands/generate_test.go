package commands

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/typegen/internal/typegen/generator"
	"github.com/conduit-lang/typegen/internal/typegen/mapper"
	"github.com/conduit-lang/typegen/internal/typegen/schema"
)

func TestNewGenerateCommand(t *testing.T) {
	cmd := NewGenerateCommand()

	assert.Equal(t, "generate", cmd.Use)
	assert.Contains(t, cmd.Aliases, "g")
	assert.NotNil(t, cmd.Flags().Lookup("out"))
	assert.NotNil(t, cmd.Flags().Lookup("stdout"))
}

func TestGenerate_WritesOutput(t *testing.T) {
	p := setupProject(t, "MyApp.Blog.Post")

	stdout, stderr, err := run(t, "generate", "--config", p.config)
	require.NoError(t, err)

	assert.Contains(t, stdout, "✓ Generated 7 schemas for 3 resources in ")
	assert.Contains(t, stderr, "⚠️ resource MyApp.Accounts.Author is reachable but not exposed")
	assert.Contains(t, stderr, "via MyApp.Blog.Post -> author")

	out := readFile(t, filepath.Join(p.dir, "out", "typegen.ts"))
	assert.True(t, strings.HasPrefix(out, generator.Header))
	for _, decl := range []string{
		"export type PostResourceSchema = {",
		"export type PostAttributesOnlySchema = {",
		"export type SeoInputSchema = {",
		"export type AuthorResourceSchema = {",
	} {
		assert.Contains(t, out, decl)
	}
	assert.NotContains(t, out, "DraftResourceSchema")
}

func TestGenerate_OutFlagAndStdout(t *testing.T) {
	p := setupProject(t, "MyApp.Blog.Post")

	dest := filepath.Join(p.dir, "elsewhere.ts")
	_, _, err := run(t, "generate", "--config", p.config, "--out", dest)
	require.NoError(t, err)
	assert.Contains(t, readFile(t, dest), "export type PostResourceSchema")

	stdout, _, err := run(t, "generate", "--config", p.config, "--stdout")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, generator.Header))
	assert.NotContains(t, stdout, "✓")
}

func TestGenerate_UnknownRootSuggestsNames(t *testing.T) {
	p := setupProject(t, "MyApp.Blog.Pst")

	_, stderr, err := run(t, "generate", "--config", p.config)
	require.Error(t, err)

	var unknown *schema.UnknownResourceError
	assert.ErrorAs(t, err, &unknown)
	assert.Contains(t, stderr, "RESOURCE NOT FOUND")
	assert.Contains(t, stderr, "Did you mean: MyApp.Blog.Post?")
	assert.NoFileExists(t, filepath.Join(p.dir, "out", "typegen.ts"))
}

func TestGenerate_UnsupportedType(t *testing.T) {
	p := setupProject(t, "MyApp.Blog.Draft")
	writeMetadata(t, p, strings.Replace(readFile(t, p.metadata), "name: text}", "name: tsvector}", 1))

	_, stderr, err := run(t, "generate", "--config", p.config)
	require.Error(t, err)
	assert.ErrorIs(t, err, mapper.ErrUnsupportedType)
	assert.Contains(t, stderr, "UNSUPPORTED TYPE")
	assert.Contains(t, stderr, "MyApp.Blog.Draft.body")
}

func TestGenerate_ConfigError(t *testing.T) {
	p := setupProject(t)

	_, stderr, err := run(t, "generate", "--config", p.config)
	require.Error(t, err)
	assert.Contains(t, stderr, "CONFIGURATION ERROR")
	assert.Contains(t, stderr, "root resource is required")
}

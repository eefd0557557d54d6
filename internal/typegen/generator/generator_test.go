package generator

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"

	"github.com/conduit-lang/typegen/internal/typegen/mapper"
	"github.com/conduit-lang/typegen/internal/typegen/naming"
	"github.com/conduit-lang/typegen/internal/typegen/schema"
	"github.com/conduit-lang/typegen/internal/typegen/verify"
)

func setupTestSchemas() *schema.Registry {
	str := func() schema.Type { return &schema.Primitive{Name: "string"} }

	post := schema.NewResource("MyApp.Blog.Post")
	post.Fields = []*schema.Field{
		{Name: "id", Type: &schema.Primitive{Name: "uuid"}},
		{Name: "title", Type: str()},
		{Name: "category", Origin: schema.OriginRelationship,
			Relationship: &schema.Relationship{Type: schema.RelationshipBelongsTo, Destination: "MyApp.Catalog.Category"},
			Type:         &schema.ResourceRef{Resource: "MyApp.Catalog.Category"}},
		{Name: "seo", Type: &schema.ResourceRef{Resource: "MyApp.Blog.Seo"}},
	}

	seo := schema.NewResource("MyApp.Blog.Seo")
	seo.Embedded = true
	seo.Fields = []*schema.Field{{Name: "slug", Type: str()}}

	category := schema.NewResource("MyApp.Catalog.Category")
	category.Fields = []*schema.Field{
		{Name: "name", Type: str()},
		{Name: "parent", Origin: schema.OriginRelationship, AllowNil: true,
			Relationship: &schema.Relationship{Type: schema.RelationshipBelongsTo, Destination: "MyApp.Catalog.Category"},
			Type:         &schema.ResourceRef{Resource: "MyApp.Catalog.Category"}},
		{Name: "children", Origin: schema.OriginRelationship,
			Relationship: &schema.Relationship{Type: schema.RelationshipHasMany, Destination: "MyApp.Catalog.Category"},
			Type:         &schema.Array{Of: &schema.ResourceRef{Resource: "MyApp.Catalog.Category"}}},
		{Name: "posts", Origin: schema.OriginRelationship,
			Relationship: &schema.Relationship{Type: schema.RelationshipHasMany, Destination: "MyApp.Blog.Post"},
			Type:         &schema.Array{Of: &schema.ResourceRef{Resource: "MyApp.Blog.Post"}}},
	}

	return schema.NewRegistry().MustRegister(post, seo, category)
}

func TestRun_SchemaOrderAndDedup(t *testing.T) {
	reg := setupTestSchemas()
	g := New(reg, Config{Roots: []string{"MyApp.Blog.Post", "MyApp.Catalog.Category"}})

	res, err := g.Run()
	require.NoError(t, err)
	assert.NotEmpty(t, res.PassID)
	assert.Empty(t, res.Warnings)

	var names []string
	for _, s := range res.Schemas() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"PostResourceSchema", "PostAttributesOnlySchema",
		"CategoryResourceSchema", "CategoryAttributesOnlySchema",
		"SeoResourceSchema", "SeoAttributesOnlySchema", "SeoInputSchema",
	}, names)
}

func TestRun_CategorySelfReferenceRendersOnce(t *testing.T) {
	reg := setupTestSchemas()
	g := New(reg, Config{
		Roots: []string{"MyApp.Catalog.Category", "MyApp.Blog.Post"},
		Namer: naming.NewFieldNamer(naming.NewFormatter(naming.CaseCamel)),
	})

	res, err := g.Run()
	require.NoError(t, err)

	out, err := RenderString(res)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, Header))
	assert.Equal(t, 1, strings.Count(out, "export type CategoryResourceSchema = {"))
	assert.Contains(t, out, `  children: {
    __type: "Relationship";
    __array: true;
    __resource: CategoryResourceSchema;
  };`)
	assert.Contains(t, out, "export type UUID = string;")
	assert.Contains(t, out, "  id: UUID;")
}

func TestRun_Warnings(t *testing.T) {
	reg := setupTestSchemas()
	core, logs := observer.New(zapcore.WarnLevel)
	g := New(reg, Config{Roots: []string{"MyApp.Blog.Post"}}, WithLogger(zap.New(core)))

	res, err := g.Run()
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "MyApp.Catalog.Category", res.Warnings[0].Resource)
	assert.Equal(t, "resource MyApp.Catalog.Category is reachable but not exposed (via MyApp.Blog.Post -> category)",
		res.Warnings[0].String())

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "resource MyApp.Catalog.Category is reachable but not exposed", entry.Message)
	assert.Contains(t, entry.ContextMap(), "pass")
}

func TestRun_Errors(t *testing.T) {
	t.Run("no roots", func(t *testing.T) {
		_, err := New(setupTestSchemas(), Config{}).Run()
		assert.ErrorContains(t, err, "no root resources configured")
	})

	t.Run("unknown root", func(t *testing.T) {
		_, err := New(setupTestSchemas(), Config{Roots: []string{"MyApp.Nope"}}).Run()
		var unknown *schema.UnknownResourceError
		assert.ErrorAs(t, err, &unknown)
	})

	t.Run("unsupported type aborts the pass", func(t *testing.T) {
		reg := setupTestSchemas()
		seo, _ := reg.Resource("MyApp.Blog.Seo")
		seo.Fields = append(seo.Fields, &schema.Field{Name: "vector", Type: &schema.Primitive{Name: "tsvector"}})

		_, err := New(reg, Config{Roots: []string{"MyApp.Blog.Post"}}).Run()
		assert.True(t, errors.Is(err, mapper.ErrUnsupportedType))
		assert.ErrorContains(t, err, "MyApp.Blog.Seo.vector")
	})

	t.Run("collision", func(t *testing.T) {
		reg := setupTestSchemas()
		namer := naming.NewFieldNamer(nil, naming.Rename{Resource: "MyApp.Blog.Post", Field: "title", Name: "id"})

		_, err := New(reg, Config{Roots: []string{"MyApp.Blog.Post"}, Namer: namer}).Run()
		var verr verify.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestRun_Overrides(t *testing.T) {
	reg := setupTestSchemas()
	g := New(reg, Config{
		Roots:     []string{"MyApp.Blog.Post"},
		Overrides: map[string]string{"uuid": "PostId"},
	})

	res, err := g.Run()
	require.NoError(t, err)

	id, ok := res.Resources[0].Resource.Body.Lookup("id")
	require.True(t, ok)
	out, err := RenderString(res)
	require.NoError(t, err)
	assert.Contains(t, out, "  id: PostId;")
	assert.NotNil(t, id)
}

func TestWriteFile(t *testing.T) {
	res, err := New(setupTestSchemas(), Config{Roots: []string{"MyApp.Blog.Post"}}).Run()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "assets", "js", "typegen.ts")
	require.NoError(t, WriteFile(path, res))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want, err := RenderString(res)
	require.NoError(t, err)
	assert.Equal(t, want, string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file is cleaned up")
}

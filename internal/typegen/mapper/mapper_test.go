package mapper

import (
	"errors"
	"testing"

	"github.com/conduit-lang/typegen/internal/typegen/naming"
	"github.com/conduit-lang/typegen/internal/typegen/schema"
	"github.com/conduit-lang/typegen/internal/typegen/tsast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestMapper(t *testing.T) *TypeMapper {
	t.Helper()

	metadata := schema.NewResource("MyApp.Blog.PostMetadata")
	metadata.Embedded = true
	metadata.Fields = []*schema.Field{
		{Name: "category", Type: &schema.Primitive{Name: "string"}},
	}

	author := schema.NewResource("MyApp.Accounts.User")
	author.DisplayName = "Author"

	reg := schema.NewRegistry().MustRegister(metadata, author)

	return New(Config{
		Oracle:    reg,
		Namer:     naming.NewFieldNamer(naming.NewFormatter(naming.CaseCamel)),
		Overrides: map[string]string{"money": "Money", "MyApp.Types.Point": "GeoPoint"},
	})
}

func render(t *testing.T, ts tsast.Type) string {
	t.Helper()
	return tsast.NewPrinter().Print(ts)
}

func TestMapType_Scalars(t *testing.T) {
	m := setupTestMapper(t)

	tests := []struct {
		name string
		typ  schema.Type
		c    schema.Constraints
		want string
	}{
		{"nil", nil, schema.Constraints{}, "null"},
		{"string", &schema.Primitive{Name: "string"}, schema.Constraints{}, "string"},
		{"ci_string", &schema.Primitive{Name: "ci_string"}, schema.Constraints{}, "string"},
		{"integer", &schema.Primitive{Name: "integer"}, schema.Constraints{}, "number"},
		{"boolean", &schema.Primitive{Name: "boolean"}, schema.Constraints{}, "boolean"},
		{"uuid", &schema.Primitive{Name: "uuid"}, schema.Constraints{}, "UUID"},
		{"decimal", &schema.Primitive{Name: "decimal"}, schema.Constraints{}, "Decimal"},
		{"date", &schema.Primitive{Name: "date"}, schema.Constraints{}, "ISODate"},
		{"json is untyped", &schema.Primitive{Name: "json"}, schema.Constraints{}, "Record<string, any>"},
		{"atom with one_of", &schema.Primitive{Name: "atom"}, schema.Constraints{OneOf: []string{"draft", "published"}},
			`"draft" | "published"`},
		{"enum", &schema.Enum{Name: "MyApp.Status", Values: []string{"active", "archived"}}, schema.Constraints{},
			`"active" | "archived"`},
		{"custom with display name", &schema.Custom{Name: "MyApp.Types.Color", DisplayName: "HexColor"}, schema.Constraints{},
			"HexColor"},
		{"override by primitive name", &schema.Primitive{Name: "money"}, schema.Constraints{}, "Money"},
		{"override by new type name", &schema.NewType{Name: "MyApp.Types.Point", Of: &schema.Record{}}, schema.Constraints{},
			"GeoPoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.MapType(tt.typ, tt.c, DirectionOutput)
			require.NoError(t, err)
			assert.Equal(t, tt.want, render(t, got))
		})
	}
}

func TestMapType_MostSpecificNameWins(t *testing.T) {
	m := setupTestMapper(t)

	usec := &schema.NewType{Name: "utc_datetime_usec", Of: &schema.Primitive{Name: "utc_datetime"}}
	got, err := m.MapType(usec, schema.Constraints{}, DirectionOutput)
	require.NoError(t, err)
	assert.Equal(t, "UtcDateTimeUsec", render(t, got))

	// an opaque rename falls through to its base
	slug := &schema.NewType{Name: "MyApp.Types.Slug", Of: &schema.Primitive{Name: "ci_string"}}
	got, err = m.MapType(slug, schema.Constraints{}, DirectionOutput)
	require.NoError(t, err)
	assert.Equal(t, "string", render(t, got))

	// the wrapper's own constraints narrow the base
	status := &schema.NewType{
		Name:        "MyApp.Types.Status",
		Of:          &schema.Primitive{Name: "atom"},
		Constraints: schema.Constraints{OneOf: []string{"on", "off"}},
	}
	got, err = m.MapType(status, schema.Constraints{}, DirectionOutput)
	require.NoError(t, err)
	assert.Equal(t, `"on" | "off"`, render(t, got))
}

func TestMapType_Arrays(t *testing.T) {
	m := setupTestMapper(t)

	items := schema.Constraints{OneOf: []string{"a", "b"}}
	got, err := m.MapType(&schema.Array{Of: &schema.Primitive{Name: "atom"}}, schema.Constraints{Items: &items}, DirectionOutput)
	require.NoError(t, err)
	assert.Equal(t, `("a" | "b")[]`, render(t, got))

	// arrays of embedded resources reach the resource check
	got, err = m.MapType(&schema.Array{Of: &schema.ResourceRef{Resource: "MyApp.Blog.PostMetadata"}}, schema.Constraints{}, DirectionOutput)
	require.NoError(t, err)
	assert.Equal(t, "PostMetadataResourceSchema[]", render(t, got))

	// missing item constraints degrade to the empty set
	got, err = m.MapType(&schema.Array{Of: &schema.Primitive{Name: "string"}}, schema.Constraints{}, DirectionOutput)
	require.NoError(t, err)
	assert.Equal(t, "string[]", render(t, got))
}

func TestOverridden(t *testing.T) {
	m := setupTestMapper(t)
	point := &schema.NewType{Name: "MyApp.Types.Point", Of: &schema.Record{Fields: []schema.RecordField{
		{Name: "lat", Type: &schema.Primitive{Name: "float"}},
	}}}

	tests := []struct {
		name string
		typ  schema.Type
		want bool
	}{
		{"overridden primitive", &schema.Primitive{Name: "money"}, true},
		{"overridden record new type", point, true},
		{"array of overridden new type", &schema.Array{Of: point}, true},
		{"wrapper around overridden new type", &schema.NewType{Name: "MyApp.Types.Location", Of: point}, true},
		{"plain primitive", &schema.Primitive{Name: "string"}, false},
		{"record", point.Of, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Overridden(tt.typ))
		})
	}

	got, err := m.MapType(&schema.Array{Of: point}, schema.Constraints{}, DirectionOutput)
	require.NoError(t, err)
	assert.Equal(t, "GeoPoint[]", render(t, got))
}

func TestMapType_DirectionSensitivity(t *testing.T) {
	m := setupTestMapper(t)
	ref := &schema.ResourceRef{Resource: "MyApp.Blog.PostMetadata"}

	out, err := m.MapType(ref, schema.Constraints{}, DirectionOutput)
	require.NoError(t, err)
	in, err := m.MapType(ref, schema.Constraints{}, DirectionInput)
	require.NoError(t, err)

	assert.Equal(t, "PostMetadataResourceSchema", render(t, out))
	assert.Equal(t, "PostMetadataInputSchema", render(t, in))
	assert.NotEqual(t, render(t, out), render(t, in))

	attrs, err := m.MapAttributesOnly(ref, schema.Constraints{})
	require.NoError(t, err)
	assert.Equal(t, "PostMetadataAttributesOnlySchema", render(t, attrs))
}

func TestMapType_StructOfResourceUsesDisplayName(t *testing.T) {
	m := setupTestMapper(t)

	got, err := m.MapType(&schema.Struct{}, schema.Constraints{InstanceOf: "MyApp.Accounts.User"}, DirectionOutput)
	require.NoError(t, err)
	assert.Equal(t, "AuthorResourceSchema", render(t, got))
}

func TestMapType_TypedMap(t *testing.T) {
	m := setupTestMapper(t)
	record := &schema.Record{Fields: []schema.RecordField{
		{Name: "url", Type: &schema.Primitive{Name: "string"}},
		{Name: "alt_text", Type: &schema.Primitive{Name: "string"}, AllowNil: true},
		{Name: "size", Type: &schema.Record{Fields: []schema.RecordField{
			{Name: "width", Type: &schema.Primitive{Name: "integer"}},
		}}},
	}}

	out, err := m.MapType(record, schema.Constraints{}, DirectionOutput)
	require.NoError(t, err)
	assert.Equal(t, `{
  __type: "TypedMap";
  __primitiveFields: "url" | "altText";
  url: string;
  altText: string | null;
  size: {
    __type: "TypedMap";
    __primitiveFields: "width";
    width: number;
  };
}`, render(t, out))

	in, err := m.MapType(record, schema.Constraints{}, DirectionInput)
	require.NoError(t, err)
	assert.Equal(t, `{
  url: string;
  altText?: string | null;
  size: {
    width: number;
  };
}`, render(t, in))
}

func TestMapType_ConstraintFields(t *testing.T) {
	m := setupTestMapper(t)

	c := schema.Constraints{Fields: []schema.RecordField{{Name: "lat", Type: &schema.Primitive{Name: "float"}}}}
	got, err := m.MapType(&schema.Record{}, c, DirectionOutput)
	require.NoError(t, err)

	obj, ok := got.(*tsast.Object)
	require.True(t, ok)
	prop, ok := obj.Lookup("lat")
	require.True(t, ok)
	assert.Equal(t, tsast.Number, prop.Type)
}

func TestMapType_Union(t *testing.T) {
	m := setupTestMapper(t)
	union := &schema.Union{Members: []schema.UnionMember{
		{Name: "text", Type: &schema.Primitive{Name: "string"}},
		{Name: "image", Type: &schema.Record{Fields: []schema.RecordField{
			{Name: "url", Type: &schema.Primitive{Name: "string"}},
		}}},
	}}

	out, err := m.MapType(union, schema.Constraints{}, DirectionOutput)
	require.NoError(t, err)
	assert.Equal(t, `{
  __type: "Union";
  __primitiveFields: "text";
  text?: string;
  image?: {
    __type: "TypedMap";
    __primitiveFields: "url";
    url: string;
  };
}`, render(t, out))

	in, err := m.MapType(union, schema.Constraints{}, DirectionInput)
	require.NoError(t, err)
	assert.Equal(t, `{
  text: string;
} | {
  image: {
    url: string;
  };
}`, render(t, in))
}

func TestMapType_UntypedPlaceholder(t *testing.T) {
	m := New(Config{UntypedPlaceholder: "Record<string, unknown>"})

	for _, typ := range []schema.Type{
		&schema.Record{},
		&schema.Struct{},
		&schema.Struct{InstanceOf: "MyApp.Money"},
		&schema.Primitive{Name: "map"},
	} {
		got, err := m.MapType(typ, schema.Constraints{}, DirectionOutput)
		require.NoError(t, err)
		assert.Equal(t, "Record<string, unknown>", render(t, got), schema.TypeString(typ))
		assert.True(t, m.IsPlaceholder(got))
	}
}

func TestMapType_Unsupported(t *testing.T) {
	m := setupTestMapper(t)

	tests := []struct {
		name     string
		typ      schema.Type
		wantPath []string
	}{
		{"unknown primitive", &schema.Primitive{Name: "tsvector"}, nil},
		{"custom without display name", &schema.Custom{Name: "MyApp.Opaque"}, nil},
		{"empty union", &schema.Union{}, nil},
		{"nested in a record", &schema.Record{Fields: []schema.RecordField{
			{Name: "tags", Type: &schema.Array{Of: &schema.Primitive{Name: "tsvector"}}},
		}}, []string{"tags", "[]"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.MapType(tt.typ, schema.Constraints{}, DirectionOutput)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnsupportedType))

			var unsupported *UnsupportedTypeError
			require.ErrorAs(t, err, &unsupported)
			assert.Equal(t, tt.wantPath, unsupported.Path)
		})
	}
}

func TestMapType_UnknownResource(t *testing.T) {
	m := setupTestMapper(t)

	_, err := m.MapType(&schema.ResourceRef{Resource: "MyApp.Missing"}, schema.Constraints{}, DirectionOutput)
	var unknown *schema.UnknownResourceError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "MyApp.Missing", unknown.Name)
}

func TestUnsupportedTypeError_At(t *testing.T) {
	err := &UnsupportedTypeError{Type: &schema.Primitive{Name: "tsvector"}, Path: []string{"[]"}, Reason: "unknown primitive"}

	moved := err.At("MyApp.Post", "search")
	assert.Equal(t, "unsupported type tsvector at MyApp.Post.search.[]: unknown primitive", moved.Error())
	assert.Equal(t, []string{"[]"}, err.Path)
}

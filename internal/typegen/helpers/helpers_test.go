package helpers

import (
	"testing"

	"github.com/conduit-lang/typegen/internal/typegen/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRegistry() *schema.Registry {
	post := schema.NewResource("MyApp.Blog.Post")
	post.Fields = []*schema.Field{
		{Name: "title", Type: &schema.Primitive{Name: "string"}},
		{Name: "author", Origin: schema.OriginRelationship,
			Relationship: &schema.Relationship{Type: schema.RelationshipBelongsTo, Destination: "MyApp.Accounts.User"},
			Type:         &schema.ResourceRef{Resource: "MyApp.Accounts.User"}},
		{Name: "comments", Origin: schema.OriginRelationship,
			Relationship: &schema.Relationship{Type: schema.RelationshipHasMany, Destination: "MyApp.Blog.Comment"},
			Type:         &schema.Array{Of: &schema.ResourceRef{Resource: "MyApp.Blog.Comment"}}},
	}

	user := schema.NewResource("MyApp.Accounts.User")
	user.DisplayName = "Author"
	user.Fields = []*schema.Field{
		{Name: "email", Type: &schema.Primitive{Name: "ci_string"},
			Constraints: schema.Constraints{OneOf: []string{"x"}}},
		{Name: "profile", Type: &schema.ResourceRef{Resource: "MyApp.Accounts.Profile"}},
		{Name: "posts_count", Origin: schema.OriginAggregate,
			Aggregate: &schema.Aggregate{Kind: schema.AggregateCount, Path: []string{"posts"}}},
	}

	profile := schema.NewResource("MyApp.Accounts.Profile")
	profile.Embedded = true

	comment := schema.NewResource("MyApp.Blog.Comment")
	comment.Fields = []*schema.Field{
		{Name: "score", Type: &schema.Primitive{Name: "integer"}},
	}

	return schema.NewRegistry().MustRegister(post, user, profile, comment)
}

func TestCanonicalName(t *testing.T) {
	reg := setupTestRegistry()

	post, _ := reg.Resource("MyApp.Blog.Post")
	user, _ := reg.Resource("MyApp.Accounts.User")

	assert.Equal(t, "Post", CanonicalName(post))
	assert.Equal(t, "Author", CanonicalName(user))

	assert.Equal(t, "PostResourceSchema", SchemaName(post, VariantResource))
	assert.Equal(t, "PostInputSchema", SchemaName(post, VariantInput))
	assert.Equal(t, "AuthorAttributesOnlySchema", SchemaName(user, VariantAttributesOnly))
}

func TestIsComplexType(t *testing.T) {
	reg := setupTestRegistry()

	tests := []struct {
		name string
		typ  schema.Type
		c    schema.Constraints
		want bool
	}{
		{"nil", nil, schema.Constraints{}, false},
		{"primitive", &schema.Primitive{Name: "string"}, schema.Constraints{}, false},
		{"enum", &schema.Enum{Values: []string{"a"}}, schema.Constraints{}, false},
		{"union", &schema.Union{Members: []schema.UnionMember{{Name: "a"}}}, schema.Constraints{}, true},
		{"resource", &schema.ResourceRef{Resource: "MyApp.Blog.Post"}, schema.Constraints{}, true},
		{"fieldless map", &schema.Record{}, schema.Constraints{}, false},
		{"map with fields", &schema.Record{Fields: []schema.RecordField{{Name: "x"}}}, schema.Constraints{}, true},
		{"map with constraint fields", &schema.Record{}, schema.Constraints{Fields: []schema.RecordField{{Name: "x"}}}, true},
		{"struct of resource", &schema.Struct{InstanceOf: "MyApp.Accounts.Profile"}, schema.Constraints{}, true},
		{"bare named struct", &schema.Struct{InstanceOf: "MyApp.Money"}, schema.Constraints{}, false},
		{"array of union", &schema.Array{Of: &schema.Union{}}, schema.Constraints{}, true},
		{"new type over map", &schema.NewType{Name: "point", Of: &schema.Record{},
			Constraints: schema.Constraints{Fields: []schema.RecordField{{Name: "x"}}}}, schema.Constraints{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsComplexType(reg, tt.typ, tt.c))
		})
	}
}

func TestIsSimpleCalculation(t *testing.T) {
	reg := setupTestRegistry()

	simple := &schema.Field{Name: "slug", Origin: schema.OriginCalculation, Type: &schema.Primitive{Name: "string"}}
	withArgs := &schema.Field{Name: "excerpt", Origin: schema.OriginCalculation, Type: &schema.Primitive{Name: "string"},
		Arguments: []*schema.Argument{{Name: "length", Type: &schema.Primitive{Name: "integer"}}}}
	complexReturn := &schema.Field{Name: "summary", Origin: schema.OriginCalculation,
		Type: &schema.Record{Fields: []schema.RecordField{{Name: "words"}}}}

	assert.True(t, IsSimpleCalculation(reg, simple))
	assert.False(t, IsSimpleCalculation(reg, withArgs))
	assert.False(t, IsSimpleCalculation(reg, complexReturn))
}

func TestResolveAggregateType(t *testing.T) {
	reg := setupTestRegistry()
	post, _ := reg.Resource("MyApp.Blog.Post")

	f, err := ResolveAggregateType(reg, post, []string{"author"}, "email")
	require.NoError(t, err)
	assert.Equal(t, "ci_string", f.Type.String())

	_, err = ResolveAggregateType(reg, post, []string{"title"}, "email")
	assert.ErrorContains(t, err, "is not a relationship")

	_, err = ResolveAggregateType(reg, post, []string{"editor"}, "email")
	assert.ErrorContains(t, err, "has no field editor")

	_, err = ResolveAggregateType(reg, post, []string{"author"}, "missing")
	assert.ErrorContains(t, err, "not found")

	_, err = ResolveAggregateType(reg, post, []string{"author"}, "posts_count")
	assert.ErrorContains(t, err, "must be an attribute or calculation")
}

func TestAggregateType(t *testing.T) {
	reg := setupTestRegistry()
	post, _ := reg.Resource("MyApp.Blog.Post")

	tests := []struct {
		name string
		agg  schema.Aggregate
		want string
	}{
		{"count", schema.Aggregate{Kind: schema.AggregateCount, Path: []string{"comments"}}, "integer"},
		{"exists", schema.Aggregate{Kind: schema.AggregateExists, Path: []string{"comments"}}, "boolean"},
		{"avg", schema.Aggregate{Kind: schema.AggregateAvg, Path: []string{"comments"}, Field: "score"}, "float"},
		{"sum", schema.Aggregate{Kind: schema.AggregateSum, Path: []string{"comments"}, Field: "score"}, "integer"},
		{"max", schema.Aggregate{Kind: schema.AggregateMax, Path: []string{"comments"}, Field: "score"}, "integer"},
		{"list", schema.Aggregate{Kind: schema.AggregateList, Path: []string{"comments"}, Field: "score"}, "array<integer>"},
		{"first of a resource-typed field", schema.Aggregate{Kind: schema.AggregateFirst, Path: []string{"author"}, Field: "profile"},
			"MyApp.Accounts.Profile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := tt.agg
			f := &schema.Field{Name: tt.name, Origin: schema.OriginAggregate, Aggregate: &agg}
			typ, _, err := AggregateType(reg, post, f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, schema.TypeString(typ))
		})
	}
}

func TestAggregateType_ListCarriesItemConstraints(t *testing.T) {
	reg := setupTestRegistry()
	post, _ := reg.Resource("MyApp.Blog.Post")

	f := &schema.Field{Name: "emails", Origin: schema.OriginAggregate,
		Aggregate: &schema.Aggregate{Kind: schema.AggregateList, Path: []string{"author"}, Field: "email"}}

	_, c, err := AggregateType(reg, post, f)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, c.ItemConstraints().OneOf)
}

func TestAggregateType_DeclaredTypeWins(t *testing.T) {
	reg := setupTestRegistry()
	post, _ := reg.Resource("MyApp.Blog.Post")

	f := &schema.Field{Name: "custom", Origin: schema.OriginAggregate, Type: &schema.Primitive{Name: "decimal"},
		Aggregate: &schema.Aggregate{Kind: schema.AggregateCustom, Path: []string{"comments"}}}
	typ, _, err := AggregateType(reg, post, f)
	require.NoError(t, err)
	assert.Equal(t, "decimal", schema.TypeString(typ))

	f.Type = nil
	_, _, err = AggregateType(reg, post, f)
	assert.ErrorContains(t, err, "declares neither a field nor a type")
}

package edm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
namespace: Shop
enums:
  - {name: Size, underlying: Edm.Int16, members: [S, M, L]}
complexes:
  - name: Dim
    properties:
      - {name: Width, type: Edm.Double}
entities:
  - name: Item
    key: [SKU]
    open: true
    properties:
      - {name: SKU, type: Edm.String, nullable: false}
      - {name: Size, type: Size}
      - {name: Dims, type: Collection(Shop.Dim)}
    navigations:
      - {name: Related, type: Collection(Item)}
      - {name: Parent, type: Item, nullable: false}
    customAggregates:
      - {name: Stock, type: Edm.Int64}
  - name: Special
    base: Item
    hasStream: true
functions:
  - name: Similar
    bound: true
    composable: true
    parameters:
      - {name: item, type: Item}
      - {name: limit, type: Edm.Int32}
    returns: Collection(Item)
actions:
  - name: Restock
entitySets:
  - {name: Items, type: Item}
singletons:
  - {name: Featured, type: Shop.Special}
actionImports:
  - {name: Restock, action: Restock}
`

func TestLoadYAML(t *testing.T) {
	t.Parallel()
	a := assert.New(t)
	r := require.New(t)

	s, err := LoadYAML(strings.NewReader(testYAML))
	r.NoError(err)
	a.Equal("Container", s.Name())

	size := s.EnumType(FullQualifiedName{"Shop", "Size"})
	r.NotNil(size)
	a.Equal(Int16, size.Underlying())

	item := s.StructuredType(FullQualifiedName{"Shop", "Item"})
	r.NotNil(item)
	a.True(item.IsOpen())
	a.Equal([]string{"SKU", "Size", "Dims", "Related", "Parent"}, item.PropertyNames())
	sku := item.Property("SKU")
	a.False(sku.Nullable)
	a.Equal(Primitive(String), sku.Type)
	a.Same(size, item.Property("Size").Type)
	dims := item.Property("Dims")
	a.True(dims.Collection)
	a.Equal("Shop.Dim", dims.Type.String())
	a.True(item.NavigationProperty("Related").Collection)
	a.False(item.NavigationProperty("Parent").Nullable)
	stock, ok := item.CustomAggregate("Stock")
	a.True(ok)
	a.Equal(Primitive(Int64), stock)

	special := s.Singleton("Featured").Type
	a.Same(item, special.BaseType())
	a.True(special.HasStream())
	a.Equal("SKU", special.KeyProperties()[0].Name)

	op := s.BoundFunction(FullQualifiedName{"Shop", "Similar"}, special.FullQualifiedName(), false, []string{"limit"})
	r.NotNil(op)
	a.True(op.Return.Collection)
	a.Same(item, op.Return.Type)
	a.NotNil(s.EntityContainer().ActionImport("Restock"))
}

func TestLoadYAMLErrors(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		test string
		yaml string
		err  string
	}{
		{
			test: "no_namespace",
			yaml: "container: X",
			err:  "edm: schema namespace is required",
		},
		{
			test: "unknown_field",
			yaml: "namespace: X\nwhatever: 1",
			err:  "field whatever not found",
		},
		{
			test: "unknown_type",
			yaml: "namespace: X\nentities: [{name: A, properties: [{name: B, type: Nope}]}]",
			err:  `edm: unknown type "Nope"`,
		},
		{
			test: "bad_underlying",
			yaml: "namespace: X\nenums: [{name: E, underlying: Edm.String}]",
			err:  `edm: invalid underlying type "Edm.String" for enum E`,
		},
		{
			test: "bad_base",
			yaml: "namespace: X\nentities: [{name: A, base: B}]",
			err:  `edm: unknown base type "B" for X.A`,
		},
		{
			test: "nav_to_complex",
			yaml: "namespace: X\ncomplexes: [{name: C}]\nentities: [{name: A, navigations: [{name: N, type: C}]}]",
			err:  "edm: navigation X.A/N must target an entity type",
		},
		{
			test: "bad_entity_set",
			yaml: "namespace: X\nentitySets: [{name: S, type: Y}]",
			err:  `edm: entity set "S" has unknown entity type "Y"`,
		},
		{
			test: "bad_singleton",
			yaml: "namespace: X\nsingletons: [{name: S, type: Y}]",
			err:  `edm: singleton "S" has unknown entity type "Y"`,
		},
		{
			test: "bad_action_import",
			yaml: "namespace: X\nactionImports: [{name: S, action: Y}]",
			err:  `edm: action import "S" has unknown action "Y"`,
		},
		{
			test: "bad_function_import",
			yaml: "namespace: X\nfunctionImports: [{name: S, function: Y}]",
			err:  `edm: function import "S" has unknown function "Y"`,
		},
		{
			test: "duplicate_type",
			yaml: "namespace: X\nentities: [{name: A}]\ncomplexes: [{name: A}]",
			err:  `edm: duplicate type "X.A"`,
		},
	} {
		t.Run(tc.test, func(t *testing.T) {
			t.Parallel()
			s, err := LoadYAML(strings.NewReader(tc.yaml))
			require.ErrorContains(t, err, tc.err)
			require.ErrorIs(t, err, ErrEDM)
			assert.Nil(t, s)
		})
	}
}

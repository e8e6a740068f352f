package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/theory/odatauri/internal/fixture"
	"github.com/theory/odatauri/uri/edm"
)

func TestInfo(t *testing.T) {
	t.Parallel()

	schema := fixture.Demo()
	person := schema.StructuredType(edm.FullQualifiedName{Namespace: "Demo", Name: "Person"})
	people := &EntitySet{Set: schema.EntitySet("People")}
	name := NewMember(false, nil, &Property{Property: person.Property("Name")})
	ten, three, zero := 10, 3, 0
	no := false

	for _, tc := range []struct {
		test string
		info *Info
		path string
		str  string
	}{
		{
			test: "service",
			info: &Info{Kind: KindService},
			str:  "",
		},
		{
			test: "metadata",
			info: &Info{Kind: KindMetadata, Format: "xml"},
			path: "$metadata",
			str:  "$metadata?$format=xml",
		},
		{
			test: "batch",
			info: &Info{Kind: KindBatch},
			path: "$batch",
			str:  "$batch",
		},
		{
			test: "all",
			info: &Info{Kind: KindAll, Search: &SearchOption{Expression: &SearchTerm{Text: "x"}}},
			path: "$all",
			str:  "$all?$search=x",
		},
		{
			test: "entity",
			info: &Info{Kind: KindEntity, EntityType: person, ID: "People(1)"},
			path: "$entity/Demo.Person",
			str:  "$entity/Demo.Person?$id=People(1)",
		},
		{
			test: "entity_no_type",
			info: &Info{Kind: KindEntity, ID: "x"},
			path: "$entity",
			str:  "$entity?$id=x",
		},
		{
			test: "crossjoin",
			info: &Info{Kind: KindCrossjoin, EntitySets: []string{"People", "Orders"}},
			path: "$crossjoin(People,Orders)",
			str:  "$crossjoin(People,Orders)",
		},
		{
			test: "resource_all_options",
			info: &Info{
				Kind:       KindResource,
				Resources:  []Resource{people},
				Filter:     &FilterOption{Expression: NewBinary(BinaryEq, name, NewAlias("n", nil, false))},
				OrderBy:    &OrderByOption{Items: []*OrderByItem{{Expression: name, Descending: true}}},
				Select:     &SelectOption{Items: []*SelectItem{{Path: []Resource{&Property{Property: person.Property("Name")}}}}},
				Top:        &ten,
				Skip:       &three,
				Index:      &zero,
				Count:      &no,
				Format:     "json",
				SkipToken:  "abc",
				DeltaToken: "def",
				Aliases: map[string]Expression{
					"n": NewLiteral("'Bob'", prim(edm.String), "Bob"),
					"a": NewNull(),
				},
				CustomOptions: map[string]string{"zeta": "1", "alpha": ""},
			},
			path: "People",
			str: "People?$filter=Name eq @n&$orderby=Name desc&$skip=3&$top=10&$index=0&$count=false" +
				"&$select=Name&$format=json&$skiptoken=abc&$deltatoken=def&@a=null&@n='Bob'&alpha=&zeta=1",
		},
	} {
		t.Run(tc.test, func(t *testing.T) {
			t.Parallel()
			a := assert.New(t)
			a.Equal(tc.path, tc.info.Path())
			a.Equal(tc.str, tc.info.String())
		})
	}
}

func TestInfoLast(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	info := &Info{Kind: KindResource}
	a.Nil(info.Last())
	info.Resources = []Resource{&Count{}}
	a.Equal(&Count{}, info.Last())
	a.Equal("$crossjoin", KindCrossjoin.String())
	a.Equal("unknown", Kind(42).String())
}

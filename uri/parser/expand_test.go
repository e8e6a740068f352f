package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theory/odatauri/internal/fixture"
	"github.com/theory/odatauri/uri/ast"
)

func TestParseExpand(t *testing.T) {
	t.Parallel()
	schema := fixture.Demo()
	person := demoType(t, schema, "Person")

	for _, tc := range []struct {
		test string
		text string
		exp  string
	}{
		{test: "navigation", text: "Orders"},
		{test: "two_navigations", text: "Orders,BestFriend"},
		{test: "nested_options", text: "Orders($top=5;$select=ID)"},
		{
			test: "canonical_option_order",
			text: "Orders($select=ID;$top=5;$filter=Amount gt 1;$orderby=Amount desc)",
			exp:  "Orders($filter=Amount gt 1;$orderby=Amount desc;$top=5;$select=ID)",
		},
		{test: "nested_expand", text: "Orders($expand=Products($select=Name))"},
		{test: "nested_count", text: "Orders($count=true;$skip=1)", exp: "Orders($skip=1;$count=true)"},
		{test: "nested_search", text: "Orders($search=blue)"},
		{test: "nested_apply", text: "Orders($apply=aggregate(Amount with sum as Total))"},
		{test: "nested_compute", text: "Orders($compute=Amount mul 2 as Twice;$select=Twice)"},
		{test: "levels", text: "Friends($levels=2)"},
		{test: "levels_max", text: "Friends($levels=max)"},
		{test: "ref", text: "Orders/$ref"},
		{test: "ref_options", text: "Orders/$ref($filter=Amount gt 1;$top=2)"},
		{test: "count", text: "Orders/$count"},
		{test: "count_filter", text: "Orders/$count($filter=Amount gt 1)"},
		{test: "star", text: "*"},
		{test: "star_ref", text: "*/$ref"},
		{test: "star_levels", text: "*($levels=3)"},
		{test: "navigation_cast", text: "Friends/Demo.Employee"},
		{test: "navigation_cast_options", text: "Friends/Demo.Employee($select=Salary)"},
		{test: "leading_cast", text: "Demo.Employee/Reports"},
		{test: "complex_path", text: "HomeAddress/Resident"},
		{test: "complex_cast_path", text: "HomeAddress/Demo.WorkAddress/Resident"},
		{test: "stream", text: "Photo"},
		{test: "quoted_parens", text: "Orders($filter=Customer/Name eq ')(;')"},
		{test: "phrase_semicolon", text: `Orders($search="a;b")`},
		{test: "phrase_paren", text: `Orders($search="a)b";$top=1)`},
		{test: "phrase_apostrophe", text: `Orders($search="it's")`},
		{test: "phrase_escapes", text: `Orders($search="say \"a;b)\"")`},
		{test: "phrase_doubled_quote", text: `Orders($search="a""b")`, exp: `Orders($search="a\"b")`},
	} {
		t.Run(tc.test, func(t *testing.T) {
			t.Parallel()
			a := assert.New(t)
			r := require.New(t)

			opt, err := New(schema).ParseExpand(tc.text, person)
			r.NoError(err)
			exp := tc.exp
			if exp == "" {
				exp = tc.text
			}
			a.Equal(exp, opt.String())

			again, err := New(schema).ParseExpand(opt.String(), person)
			r.NoError(err)
			a.Equal(exp, again.String())
		})
	}
}

func TestParseExpandItem(t *testing.T) {
	t.Parallel()
	a := assert.New(t)
	r := require.New(t)
	schema := fixture.Demo()
	person := demoType(t, schema, "Person")

	opt, err := New(schema).ParseExpand("Orders($top=5;$select=ID),Orders/$ref,*($levels=max)", person)
	r.NoError(err)
	r.Len(opt.Items, 3)

	item := opt.Items[0]
	r.Len(item.Path, 1)
	nav, ok := item.Path[0].(*ast.Navigation)
	r.True(ok)
	a.Equal("Orders", nav.Property.Name)
	a.Equal("Demo.Order", typeName(item.Type()))
	r.NotNil(item.Top)
	a.Equal(5, *item.Top)
	r.NotNil(item.Select)
	a.Equal("ID", item.Select.String())
	a.Nil(item.Filter)
	a.False(item.IsRef)

	item = opt.Items[1]
	a.True(item.IsRef)
	a.False(item.IsCount)

	item = opt.Items[2]
	a.True(item.Star)
	a.Equal(&ast.Levels{Max: true}, item.Levels)
	a.Nil(item.Type())

	opt, err = New(schema).ParseExpand("Orders($apply=aggregate(Amount with sum as Total);$filter=Total gt 1)", person)
	r.NoError(err)
	item = opt.Items[0]
	r.NotNil(item.Apply)
	a.Equal("Demo.Order", typeName(item.Type()))
	a.NotNil(item.Apply.Type.Property("Total"))
}

func TestParseExpandErrors(t *testing.T) {
	t.Parallel()
	schema := fixture.Demo()
	person := demoType(t, schema, "Person")

	for _, tc := range []struct {
		test  string
		text  string
		key   Key
		pos   int
		param string
	}{
		{"empty", "", KeyExpected, 0, "identifier"},
		{"unknown_property", "Nope", KeyUnknownProperty, 0, "Nope"},
		{"primitive", "Name", KeyTypeMismatch, 0, "$expand"},
		{"complex_needs_path", "HomeAddress", KeyExpected, 11, `"/"`},
		{"count_single", "BestFriend/$count", KeyNotCollection, 10, "BestFriend"},
		{"unknown_cast", "Demo.Nope/Orders", KeyUnknownType, 0, "Demo.Nope"},
		{"incompatible_cast", "Friends/Demo.Order", KeyIncompatibleType, 8, "Demo.Order"},
		{"unclosed_options", "Orders($top=5", KeyExpected, 13, `")"`},
		{"empty_options", "Orders()", KeyExpected, 7, "system query option"},
		{"bad_nested_value", "Orders($top=x)", KeyInvalidOptionValue, 12, "$top"},
		{"nested_filter_error", "Orders($filter=Nope eq 1)", KeyUnknownProperty, 15, "Nope"},
		{"nested_not_allowed", "Orders($format=json)", KeyOptionNotAllowed, 15, "$format"},
		{"ref_select", "Orders/$ref($select=ID)", KeyOptionNotAllowed, 20, "$select"},
		{"count_top", "Orders/$count($top=1)", KeyOptionNotAllowed, 19, "$top"},
		{"star_filter", "*($filter=true)", KeyOptionNotAllowed, 10, "$filter"},
		{"levels_and_expand", "Friends($levels=2;$expand=Orders)", KeyLevelsWithExpand, 16, "Demo.Person"},
		{"bad_levels", "Friends($levels=-1)", KeyInvalidOptionValue, 16, "$levels"},
		{"duplicate_nested", "Orders($top=1;$top=2)", KeyDuplicateOption, 19, "$top"},
		{"trailing", "Orders)", KeyUnexpected, 6, ")"},
	} {
		t.Run(tc.test, func(t *testing.T) {
			t.Parallel()

			_, err := New(schema).ParseExpand(tc.text, person)
			e := requireKey(t, err, tc.key, tc.pos)
			assert.Equal(t, tc.param, e.Params[0])
		})
	}

	t.Run("untyped", func(t *testing.T) {
		t.Parallel()
		_, err := New(schema).ParseExpand("Orders", nil)
		requireKey(t, err, KeyNotStructured, 0)
	})
}

func TestNestedText(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		test   string
		src    string
		exp    string
		offset int
		rest   string
	}{
		{"simple", "($top=1),x", "$top=1", 1, ",x"},
		{"nested", "($expand=A($top=1)))", "$expand=A($top=1)", 1, ")"},
		{"quoted", "($filter=Name eq ')')", "$filter=Name eq ')'", 1, ""},
		{"empty", "()", "", 1, ""},
		{"phrase", `($search="a)b"),x`, `$search="a)b"`, 1, ",x"},
		{"escaped_phrase", `($search="a\")"),x`, `$search="a\")"`, 1, ",x"},
		{"apostrophe_in_phrase", `($search="it's"))`, `$search="it's"`, 1, ")"},
		{"json_string", `($filter=hassubset(Emails,["a)"])),x`, `$filter=hassubset(Emails,["a)"])`, 1, ",x"},
	} {
		t.Run(tc.test, func(t *testing.T) {
			t.Parallel()
			a := assert.New(t)

			p := New(fixture.Demo()).session().newParser(tc.src, 0, nil)
			text, offset, err := p.nestedText()
			require.NoError(t, err)
			a.Equal(tc.exp, text)
			a.Equal(tc.offset, offset)
			a.Equal(tc.rest, p.rest())
		})
	}

	t.Run("unclosed", func(t *testing.T) {
		t.Parallel()
		p := New(fixture.Demo()).session().newParser("(a(b)", 3, nil)
		_, _, err := p.nestedText()
		requireKey(t, err, KeyExpected, 8)
	})
}

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theory/odatauri/internal/fixture"
	"github.com/theory/odatauri/uri/ast"
	"github.com/theory/odatauri/uri/edm"
)

func TestParseExpression(t *testing.T) {
	t.Parallel()
	schema := fixture.Demo()
	person := demoType(t, schema, "Person")

	for _, tc := range []struct {
		test string
		expr string
		exp  string
		typ  string
		coll bool
	}{
		{
			test: "and_of_comparisons",
			expr: "Name eq 'Foo' and Age gt 10",
			typ:  "Edm.Boolean",
		},
		{
			test: "or_binds_looser_than_and",
			expr: "Age lt 1 or Age gt 5 and Name ne null",
			typ:  "Edm.Boolean",
		},
		{
			test: "arithmetic_precedence",
			expr: "Age add 1 mul 2",
			typ:  "Edm.Int32",
		},
		{
			test: "grouping_kept",
			expr: "(Age add 1) mul 2",
			typ:  "Edm.Int32",
		},
		{
			test: "redundant_parens_dropped",
			expr: "(Age gt 1)",
			exp:  "Age gt 1",
			typ:  "Edm.Boolean",
		},
		{
			test: "divby_is_decimal",
			expr: "Age divby 2",
			typ:  "Edm.Decimal",
		},
		{
			test: "not",
			expr: "not (Age gt 3)",
			typ:  "Edm.Boolean",
		},
		{
			test: "not_without_space",
			expr: "not(Age gt 3)",
			exp:  "not (Age gt 3)",
			typ:  "Edm.Boolean",
		},
		{
			test: "negation",
			expr: "-Age",
			typ:  "Edm.Int32",
		},
		{
			test: "negative_literal",
			expr: "-5",
			typ:  "Edm.SByte",
		},
		{
			test: "byte_literal",
			expr: "200",
			typ:  "Edm.Byte",
		},
		{
			test: "int16_literal",
			expr: "300",
			typ:  "Edm.Int16",
		},
		{
			test: "int64_literal",
			expr: "3000000000",
			typ:  "Edm.Int64",
		},
		{
			test: "huge_integer_is_decimal",
			expr: "99999999999999999999",
			typ:  "Edm.Decimal",
		},
		{
			test: "decimal_literal",
			expr: "1.50",
			typ:  "Edm.Decimal",
		},
		{
			test: "double_literal",
			expr: "1.5e3",
			typ:  "Edm.Double",
		},
		{
			test: "string_literal",
			expr: "'It''s'",
			typ:  "Edm.String",
		},
		{
			test: "guid_literal",
			expr: "01234567-89ab-cdef-0123-456789abcdef",
			typ:  "Edm.Guid",
		},
		{
			test: "date_arithmetic",
			expr: "BirthDate add duration'P1D' gt 2024-01-01",
			typ:  "Edm.Boolean",
		},
		{
			test: "date_difference",
			expr: "Created sub 2024-01-01T00:00:00Z",
			typ:  "Edm.Duration",
		},
		{
			test: "time_of_day",
			expr: "WakeUp lt 07:30",
			typ:  "Edm.Boolean",
		},
		{
			test: "complex_path",
			expr: "HomeAddress/City eq 'Paris'",
			typ:  "Edm.Boolean",
		},
		{
			test: "collection_property",
			expr: "Emails",
			typ:  "Edm.String",
			coll: true,
		},
		{
			test: "navigation_collection",
			expr: "Orders",
			typ:  "Demo.Order",
			coll: true,
		},
		{
			test: "single_navigation_path",
			expr: "BestFriend/Name",
			typ:  "Edm.String",
		},
		{
			test: "count",
			expr: "Orders/$count gt 2",
			typ:  "Edm.Boolean",
		},
		{
			test: "any",
			expr: "Orders/any(o:o/Amount gt 100)",
			typ:  "Edm.Boolean",
		},
		{
			test: "any_spaces",
			expr: "Orders/any( o : o/Amount gt 100)",
			exp:  "Orders/any(o:o/Amount gt 100)",
			typ:  "Edm.Boolean",
		},
		{
			test: "any_empty",
			expr: "Orders/any()",
			typ:  "Edm.Boolean",
		},
		{
			test: "all_primitive_collection",
			expr: "Emails/all(e:endswith(e,'.org'))",
			typ:  "Edm.Boolean",
		},
		{
			test: "nested_lambda_outer_variable",
			expr: "Friends/any(f:f/Orders/all(o:o/Amount gt 1 and f/Age gt 2))",
			typ:  "Edm.Boolean",
		},
		{
			test: "enum_eq",
			expr: "FavoriteColor eq Demo.Color'Red'",
			typ:  "Edm.Boolean",
		},
		{
			test: "has_flags",
			expr: "Permissions has Demo.Access'Read,Write'",
			typ:  "Edm.Boolean",
		},
		{
			test: "in_list",
			expr: "Name in ('a','b')",
			typ:  "Edm.Boolean",
		},
		{
			test: "in_list_spaces",
			expr: "Age in ( 1 , 2 )",
			exp:  "Age in (1,2)",
			typ:  "Edm.Boolean",
		},
		{
			test: "in_json_array",
			expr: `Name in ["a","b"]`,
			typ:  "Edm.Boolean",
		},
		{
			test: "method",
			expr: "contains(Name,'x')",
			typ:  "Edm.Boolean",
		},
		{
			test: "method_spaces",
			expr: "substring( Name , 1 , 2 )",
			exp:  "substring(Name,1,2)",
			typ:  "Edm.String",
		},
		{
			test: "method_comparison",
			expr: "length(Name) gt 3",
			typ:  "Edm.Boolean",
		},
		{
			test: "no_arg_method",
			expr: "Created lt now()",
			typ:  "Edm.Boolean",
		},
		{
			test: "round_decimal",
			expr: "round(1.5)",
			typ:  "Edm.Decimal",
		},
		{
			test: "isof_type",
			expr: "isof(Demo.Employee)",
			typ:  "Edm.Boolean",
		},
		{
			test: "cast_expression",
			expr: "cast(Age,Edm.Int64)",
			typ:  "Edm.Int64",
		},
		{
			test: "geo_distance",
			expr: "geo.distance(HomeAddress/Location,geography'SRID=4326;Point(1 2)') lt 10",
			typ:  "Edm.Boolean",
		},
		{
			test: "leading_cast",
			expr: "Demo.Employee/Salary gt 10",
			typ:  "Edm.Boolean",
		},
		{
			test: "navigation_cast",
			expr: "BestFriend/Demo.Employee/Salary",
			typ:  "Edm.Decimal",
		},
		{
			test: "complex_cast",
			expr: "HomeAddress/Demo.WorkAddress/Company",
			typ:  "Edm.String",
		},
		{
			test: "it",
			expr: "$it/Name eq 'x'",
			typ:  "Edm.Boolean",
		},
		{
			test: "root",
			expr: "$root/People(1)/Name eq Name",
			typ:  "Edm.Boolean",
		},
		{
			test: "root_singleton",
			expr: "$root/Me/Age",
			typ:  "Edm.Int32",
		},
		{
			test: "bound_function",
			expr: "Demo.GetFriendsCount() gt 1",
			typ:  "Edm.Boolean",
		},
		{
			test: "composable_bound_function",
			expr: "Demo.GetFriends()/$count",
			typ:  "Edm.Int64",
		},
		{
			test: "unbound_function",
			expr: "Demo.MostExpensive()/Price",
			typ:  "Edm.Decimal",
		},
		{
			test: "null",
			expr: "null",
		},
		{
			test: "untyped_alias",
			expr: "Age eq @x",
			typ:  "Edm.Boolean",
		},
	} {
		t.Run(tc.test, func(t *testing.T) {
			t.Parallel()
			a := assert.New(t)
			r := require.New(t)

			expr, err := New(schema).ParseExpression(tc.expr, person)
			r.NoError(err)
			exp := tc.exp
			if exp == "" {
				exp = tc.expr
			}
			a.Equal(exp, expr.String())
			if tc.typ == "" {
				a.Nil(expr.Type())
			} else {
				a.Equal(tc.typ, typeName(expr.Type()))
			}
			a.Equal(tc.coll, expr.IsCollection())

			// The canonical form parses to the same tree.
			again, err := New(schema).ParseExpression(expr.String(), person)
			r.NoError(err)
			a.Equal(expr.String(), again.String())
		})
	}
}

func TestParseExpressionErrors(t *testing.T) {
	t.Parallel()
	schema := fixture.Demo()
	person := demoType(t, schema, "Person")

	for _, tc := range []struct {
		test  string
		expr  string
		key   Key
		pos   int
		param string
	}{
		{"empty", "", KeyExpected, 0, "expression"},
		{"missing_operand", "Name eq ", KeyExpected, 8, "expression"},
		{"dangling_operator", "Name eq", KeyUnexpected, 4, " eq"},
		{"unknown_property", "UnknownProp eq 1", KeyUnknownProperty, 0, "UnknownProp"},
		{"unknown_nested_property", "HomeAddress/Zip", KeyUnknownProperty, 12, "Zip"},
		{"string_vs_int", "Name eq 1", KeyTypeMismatch, 5, "eq"},
		{"and_non_boolean", "Age and true", KeyTypeMismatch, 4, "and"},
		{"not_non_boolean", "not Age", KeyTypeMismatch, 0, "not"},
		{"negate_string", "-Name", KeyTypeMismatch, 0, "-"},
		{"add_strings", "Name add 'x'", KeyTypeMismatch, 5, "add"},
		{"compare_collection", "Emails eq 'x'", KeyTypeMismatch, 7, "eq"},
		{"collection_path", "Orders/Amount", KeyCollectionPath, 7, "Orders"},
		{"count_single", "Name/$count", KeyNotCollection, 5, "Name"},
		{"path_after_primitive", "Name/Length", KeyNotStructured, 5, "Edm.String"},
		{"unclosed_paren", "(Age gt 1", KeyExpected, 9, `")"`},
		{"trailing_text", "Age gt 1 x", KeyUnexpected, 8, " x"},
		{"wrong_arity", "contains(Name)", KeyWrongArity, 0, "contains"},
		{"wrong_arity_range", "substring(Name)", KeyWrongArity, 0, "substring"},
		{"method_type", "length(Age)", KeyTypeMismatch, 0, "length"},
		{"unknown_method", "frobnicate(Name)", KeyUnknownFunction, 0, "frobnicate"},
		{"lambda_non_boolean", "Orders/any(o:o/Amount)", KeyTypeMismatch, 7, "any"},
		{"lambda_dangling_operator", "Orders/any(o:o/Amount gt)", KeyExpected, 21, `")"`},
		{"lambda_duplicate_variable", "Orders/any(o:o/Customer/Orders/any(o:true))", KeyDuplicateVariable, 35, "o"},
		{"lambda_variable_out_of_scope", "Orders/any(o:true) and o/Amount gt 1", KeyUnknownProperty, 23, "o"},
		{"all_requires_variable", "Orders/all()", KeyExpected, 11, "identifier"},
		{"enum_multiple_members", "FavoriteColor eq Demo.Color'Red,Blue'", KeyInvalidLiteral, 17, "Demo.Color"},
		{"enum_unknown_member", "FavoriteColor eq Demo.Color'Pink'", KeyUnknownEnumMember, 27, "Pink"},
		{"enum_unknown_type", "FavoriteColor eq Demo.Shade'Pink'", KeyUnknownType, 17, "Demo.Shade"},
		{"enum_vs_string", "FavoriteColor eq 'Red'", KeyTypeMismatch, 14, "eq"},
		{"has_non_enum", "Name has Demo.Access'Read'", KeyTypeMismatch, 5, "has"},
		{"has_other_enum", "Permissions has Demo.Color'Red'", KeyTypeMismatch, 12, "has"},
		{"in_scalar", "Name in 'a'", KeyTypeMismatch, 5, "in"},
		{"in_list_type", "Name in ('a',1)", KeyTypeMismatch, 5, "in"},
		{"incompatible_cast", "Demo.Order/ID eq 1", KeyIncompatibleType, 0, "Demo.Order"},
		{"unknown_cast", "Demo.Nope/ID", KeyUnknownType, 0, "Demo.Nope"},
		{"double_cast", "BestFriend/Demo.Employee/Demo.Employee", KeyDuplicateTypeFilter, 25, "BestFriend/Demo.Employee"},
		{"unknown_function", "Demo.Nope()", KeyUnknownFunction, 0, "Demo.Nope"},
		{"function_params", "Demo.GetFriendsCount(x=1)", KeyUnknownFunction, 0, "Demo.GetFriendsCount"},
		{"not_composable", "Demo.GetFriendsCount()/Name", KeyNotComposable, 23, "Demo.GetFriendsCount"},
		{"cast_requires_type", "cast(Age,Name)", KeyTypeMismatch, 0, "cast"},
		{"cast_unknown_type", "cast(Age,Demo.Nope)", KeyUnknownType, 9, "Demo.Nope"},
		{"root_unknown", "$root/Nope", KeyUnknownResource, 6, "Nope"},
		{"root_requires_slash", "$root", KeyExpected, 5, `"/"`},
	} {
		t.Run(tc.test, func(t *testing.T) {
			t.Parallel()
			a := assert.New(t)

			_, err := New(schema).ParseExpression(tc.expr, person)
			e := requireKey(t, err, tc.key, tc.pos)
			a.Equal(tc.param, e.Params[0])
		})
	}
}

func TestParseExpressionUntyped(t *testing.T) {
	t.Parallel()
	a := assert.New(t)
	r := require.New(t)
	schema := fixture.Demo()

	expr, err := New(schema).ParseExpression("1 add 2.5 eq 3.5", nil)
	r.NoError(err)
	a.Equal("Edm.Boolean", typeName(expr.Type()))

	_, err = New(schema).ParseExpression("Name eq 'x'", nil)
	e := requireKey(t, err, KeyUnknownProperty, 0)
	a.Equal([]string{"Name", "untyped"}, e.Params)

	_, err = New(schema).ParseExpression("Name", edm.Primitive(edm.String))
	requireKey(t, err, KeyNotStructured, 0)
}

func TestParseExpressionCrossjoin(t *testing.T) {
	t.Parallel()
	a := assert.New(t)
	r := require.New(t)
	schema := fixture.Demo()

	p := New(schema, WithCrossjoin("People", "Orders"))
	expr, err := p.ParseExpression("People/ID eq Orders/ID", nil)
	r.NoError(err)
	a.Equal("People/ID eq Orders/ID", expr.String())

	bin, ok := expr.(*ast.Binary)
	r.True(ok)
	left, ok := bin.Left().(*ast.Member)
	r.True(ok)
	set, ok := left.Parts()[0].(*ast.EntitySet)
	r.True(ok)
	a.Equal("People", set.Set.Name)

	_, err = p.ParseExpression("Products/ID eq 1", nil)
	requireKey(t, err, KeyUnknownProperty, 0)
}

func TestParseExpressionTree(t *testing.T) {
	t.Parallel()
	a := assert.New(t)
	r := require.New(t)
	schema := fixture.Demo()
	person := demoType(t, schema, "Person")

	expr, err := New(schema).ParseExpression("Name eq 'Foo' and Age gt 10", person)
	r.NoError(err)

	and, ok := expr.(*ast.Binary)
	r.True(ok)
	a.Equal(ast.BinaryAnd, and.Operator())

	eq, ok := and.Left().(*ast.Binary)
	r.True(ok)
	a.Equal(ast.BinaryEq, eq.Operator())
	name, ok := eq.Left().(*ast.Member)
	r.True(ok)
	prop, ok := name.Last().(*ast.Property)
	r.True(ok)
	a.Same(person.Property("Name"), prop.Property)
	foo, ok := eq.Right().(*ast.Literal)
	r.True(ok)
	a.Equal("Foo", foo.Value())

	gt, ok := and.Right().(*ast.Binary)
	r.True(ok)
	a.Equal(ast.BinaryGt, gt.Operator())
	ten, ok := gt.Right().(*ast.Literal)
	r.True(ok)
	a.Equal(int64(10), ten.Value())
	a.Equal("Edm.Byte", typeName(ten.Type()))
}

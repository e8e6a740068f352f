package parser

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theory/odatauri/internal/fixture"
	"github.com/theory/odatauri/uri/ast"
)

func TestNewLiteral(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		test string
		kind tokenKind
		text string
		typ  string
		coll bool
	}{
		{"null", tokNull, "null", "untyped", false},
		{"true", tokBoolean, "true", "Edm.Boolean", false},
		{"false_upper", tokBoolean, "FALSE", "Edm.Boolean", false},
		{"guid", tokGuid, "01234567-89ab-cdef-0123-456789abcdef", "Edm.Guid", false},
		{"date", tokDate, "2024-02-29", "Edm.Date", false},
		{"time_of_day", tokTimeOfDay, "13:20:00.5", "Edm.TimeOfDay", false},
		{"date_time_offset", tokDateTimeOffset, "2024-02-29T13:20:00Z", "Edm.DateTimeOffset", false},
		{"double", tokDouble, "1.5e3", "Edm.Double", false},
		{"double_inf", tokDouble, "INF", "Edm.Double", false},
		{"decimal", tokDecimal, "3.14", "Edm.Decimal", false},
		{"string", tokString, "'it''s'", "Edm.String", false},
		{"duration", tokDuration, "duration'P1DT2H'", "Edm.Duration", false},
		{"binary", tokBinary, "binary'T0RhdGE='", "Edm.Binary", false},
		{"geography", tokGeography, "geography'SRID=4326;Point(1 2)'", "Edm.GeographyPoint", false},
		{"geometry_line", tokGeometry, "geometry'SRID=0;LineString(1 2,3 4)'", "Edm.GeometryLineString", false},
		{"json_array", tokJSON, `[1,2]`, "untyped", true},
		{"json_object", tokJSON, `{"a":1}`, "untyped", false},
	} {
		t.Run(tc.test, func(t *testing.T) {
			t.Parallel()
			a := assert.New(t)

			expr, err := newLiteral(tc.kind, tc.text)
			require.NoError(t, err)
			a.Equal(tc.typ, typeName(expr.Type()))
			a.Equal(tc.coll, expr.IsCollection())
			a.Equal(tc.text, expr.String())
		})
	}
}

func TestLiteralValues(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	value := func(kind tokenKind, text string) any {
		t.Helper()
		expr, err := newLiteral(kind, text)
		require.NoError(t, err)
		lit, ok := expr.(*ast.Literal)
		require.True(t, ok)
		return lit.Value()
	}

	a.Equal(true, value(tokBoolean, "true"))
	a.Equal(false, value(tokBoolean, "false"))
	a.Equal("it's", value(tokString, "'it''s'"))
	a.Equal(1500.0, value(tokDouble, "1.5e3"))
	a.Equal(decimal.RequireFromString("3.14"), value(tokDecimal, "3.14"))
	a.Equal(json.RawMessage(`[1,2]`), value(tokJSON, `[1,2]`))

	null, err := newLiteral(tokNull, "null")
	require.NoError(t, err)
	lit, ok := null.(*ast.Literal)
	require.True(t, ok)
	a.True(lit.IsNull())
}

func TestIntegerLiteral(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		text string
		typ  string
	}{
		{"0", "Edm.Byte"},
		{"255", "Edm.Byte"},
		{"-1", "Edm.SByte"},
		{"-128", "Edm.SByte"},
		{"256", "Edm.Int16"},
		{"-129", "Edm.Int16"},
		{"32768", "Edm.Int32"},
		{"-2147483648", "Edm.Int32"},
		{"2147483648", "Edm.Int64"},
		{"9223372036854775807", "Edm.Int64"},
		{"9223372036854775808", "Edm.Decimal"},
	} {
		t.Run(tc.text, func(t *testing.T) {
			t.Parallel()
			expr, err := integerLiteral(tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.typ, typeName(expr.Type()))
		})
	}
}

func TestInvalidLiteral(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		test string
		kind tokenKind
		text string
	}{
		{"duration", tokDuration, "duration'PX'"},
		{"binary", tokBinary, "binary'!!'"},
		{"geography", tokGeography, "geography'SRID=4326;Blob(1 2)'"},
	} {
		t.Run(tc.test, func(t *testing.T) {
			t.Parallel()
			_, err := newLiteral(tc.kind, tc.text)
			require.Error(t, err)
		})
	}

	t.Run("unknown_kind", func(t *testing.T) {
		t.Parallel()
		_, err := newLiteral(tokComma, ",")
		requireKey(t, err, KeyInvalidLiteral, 0)
	})
}

func TestQuoting(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	a.Equal("", unquote("''"))
	a.Equal("a'b", unquote("'a''b'"))
	a.Equal("P1D", quotedBody("duration'P1D'"))
	a.Equal("SRID=0;Point(1 2)", quotedBody("geometry'SRID=0;Point(1 2)'"))
}

func TestParseKeyValue(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		test string
		src  string
		typ  string
	}{
		{"integer", "42", "Edm.Byte"},
		{"string", "'x'", "Edm.String"},
		{"enum", "Demo.Color'Red'", "Demo.Color"},
		{"flags", "Demo.Access'Read,Write'", "Demo.Access"},
		{"alias", "@k", "untyped"},
	} {
		t.Run(tc.test, func(t *testing.T) {
			t.Parallel()
			a := assert.New(t)

			p := New(fixture.Demo()).session().newParser(tc.src, 0, nil)
			expr, err := p.parseKeyValue()
			require.NoError(t, err)
			a.Equal(tc.typ, typeName(expr.Type()))
			a.Equal(tc.src, expr.String())
			a.True(p.done())
		})
	}

	for _, tc := range []struct {
		test  string
		src   string
		key   Key
		pos   int
		param string
	}{
		{"empty", "", KeyExpected, 0, "key value"},
		{"unknown_enum", "Demo.Nope'Red'", KeyUnknownType, 0, "Demo.Nope"},
		{"unknown_member", "Demo.Color'Pink'", KeyUnknownEnumMember, 10, "Pink"},
		{"not_flags", "Demo.Color'Red,Blue'", KeyInvalidLiteral, 0, "Demo.Color"},
	} {
		t.Run(tc.test, func(t *testing.T) {
			t.Parallel()
			p := New(fixture.Demo()).session().newParser(tc.src, 0, nil)
			_, err := p.parseKeyValue()
			e := requireKey(t, err, tc.key, tc.pos)
			assert.Equal(t, tc.param, e.Params[0])
		})
	}
}

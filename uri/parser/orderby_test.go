package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theory/odatauri/internal/fixture"
)

func TestParseOrderBy(t *testing.T) {
	t.Parallel()
	schema := fixture.Demo()
	person := demoType(t, schema, "Person")

	for _, tc := range []struct {
		test string
		text string
		exp  string
		desc []bool
	}{
		{
			test: "single",
			text: "Name",
			desc: []bool{false},
		},
		{
			test: "asc_is_default",
			text: "Name asc",
			exp:  "Name",
			desc: []bool{false},
		},
		{
			test: "desc",
			text: "Name desc",
			desc: []bool{true},
		},
		{
			test: "extra_blanks",
			text: "Name  desc",
			exp:  "Name desc",
			desc: []bool{true},
		},
		{
			test: "order_kept",
			text: "Name desc, Age asc,BirthDate",
			exp:  "Name desc,Age,BirthDate",
			desc: []bool{true, false, false},
		},
		{
			test: "expression",
			text: "length(Name) desc",
			desc: []bool{true},
		},
		{
			test: "count",
			text: "Orders/$count desc",
			desc: []bool{true},
		},
		{
			test: "complex_path",
			text: "HomeAddress/City",
			desc: []bool{false},
		},
	} {
		t.Run(tc.test, func(t *testing.T) {
			t.Parallel()
			a := assert.New(t)
			r := require.New(t)

			opt, err := New(schema).ParseOrderBy(tc.text, person)
			r.NoError(err)
			exp := tc.exp
			if exp == "" {
				exp = tc.text
			}
			a.Equal(exp, opt.String())
			r.Len(opt.Items, len(tc.desc))
			for i, desc := range tc.desc {
				a.Equal(desc, opt.Items[i].Descending, i)
			}
		})
	}
}

func TestParseOrderByErrors(t *testing.T) {
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
		{"empty", "", KeyExpected, 0, "expression"},
		{"dangling_comma", "Name,", KeyExpected, 5, "expression"},
		{"collection", "Emails", KeyTypeMismatch, 0, "$orderby"},
		{"unknown_direction", "Name sideways", KeyUnexpected, 4, " sideways"},
		{"direction_prefix", "Name descending", KeyUnexpected, 4, " descending"},
		{"unknown_property", "Nope desc", KeyUnknownProperty, 0, "Nope"},
	} {
		t.Run(tc.test, func(t *testing.T) {
			t.Parallel()

			_, err := New(schema).ParseOrderBy(tc.text, person)
			e := requireKey(t, err, tc.key, tc.pos)
			assert.Equal(t, tc.param, e.Params[0])
		})
	}
}

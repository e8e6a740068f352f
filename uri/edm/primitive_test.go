package edm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrimitive(t *testing.T) {
	t.Parallel()

	for k := Binary; k < primitiveKindCount; k++ {
		t.Run(k.String(), func(t *testing.T) {
			t.Parallel()
			a := assert.New(t)
			p := Primitive(k)
			a.Same(p, Primitive(k))
			a.Equal(KindPrimitive, p.Kind())
			a.Equal(k, p.PrimitiveKind())
			a.Equal("Edm."+k.String(), p.String())
			a.Equal(FullQualifiedName{"Edm", k.String()}, p.FullQualifiedName())

			byName, ok := PrimitiveByName(p.String())
			a.True(ok)
			a.Same(p, byName)
			byName, ok = PrimitiveByName(k.String())
			a.True(ok)
			a.Same(p, byName)
		})
	}

	_, ok := PrimitiveByName("Edm.Nope")
	assert.False(t, ok)
	_, ok = PrimitiveByName("Demo.Int32")
	assert.False(t, ok)
	assert.Equal(t, "Unknown", PrimitiveKind(-1).String())
}

func TestPrimitiveKindClasses(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	for _, k := range []PrimitiveKind{Byte, SByte, Int16, Int32, Int64} {
		a.True(k.IsInteger(), k)
		a.True(k.IsNumeric(), k)
	}
	for _, k := range []PrimitiveKind{Decimal, Double, Single} {
		a.False(k.IsInteger(), k)
		a.True(k.IsNumeric(), k)
	}
	for _, k := range []PrimitiveKind{String, Boolean, Date, Duration, Guid} {
		a.False(k.IsNumeric(), k)
		a.False(k.IsSpatial(), k)
	}
	a.True(GeographyPoint.IsGeography())
	a.False(GeographyPoint.IsGeometry())
	a.True(GeometryPolygon.IsGeometry())
	a.True(GeometryPolygon.IsSpatial())
}

func TestIsAssignable(t *testing.T) {
	t.Parallel()

	person := NewEntityType(FullQualifiedName{"Demo", "Person"}, nil)
	employee := NewEntityType(FullQualifiedName{"Demo", "Employee"}, person)
	color := NewEnumType(FullQualifiedName{"Demo", "Color"}, false, "Red")

	for _, tc := range []struct {
		test string
		to   Type
		from Type
		exp  bool
	}{
		{"same", Primitive(Int32), Primitive(Int32), true},
		{"widen_int", Primitive(Int64), Primitive(Int16), true},
		{"narrow_int", Primitive(Int16), Primitive(Int64), false},
		{"byte_sbyte", Primitive(SByte), Primitive(Byte), true},
		{"int_to_decimal", Primitive(Decimal), Primitive(Int32), true},
		{"double_to_decimal", Primitive(Decimal), Primitive(Double), false},
		{"decimal_to_double", Primitive(Double), Primitive(Decimal), true},
		{"decimal_to_single", Primitive(Single), Primitive(Decimal), true},
		{"string_int", Primitive(String), Primitive(Int32), false},
		{"geo_family", Primitive(Geography), Primitive(GeographyPoint), true},
		{"geo_mixed", Primitive(Geography), Primitive(GeometryPoint), false},
		{"derived", person, employee, true},
		{"base", employee, person, false},
		{"enum", color, color, true},
		{"enum_int", color, Primitive(Int32), false},
		{"nil_to", nil, Primitive(Int32), true},
		{"nil_from", Primitive(Int32), nil, true},
		{"struct_prim", person, Primitive(String), false},
	} {
		t.Run(tc.test, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.exp, IsAssignable(tc.to, tc.from))
		})
	}
}

func TestPromote(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		test string
		a    Type
		b    Type
		exp  Type
	}{
		{"int32", Primitive(Int32), Primitive(Int32), Primitive(Int32)},
		{"int16_int64", Primitive(Int16), Primitive(Int64), Primitive(Int64)},
		{"byte_sbyte", Primitive(Byte), Primitive(SByte), Primitive(Int16)},
		{"sbyte_int32", Primitive(SByte), Primitive(Int32), Primitive(Int32)},
		{"int_decimal", Primitive(Int32), Primitive(Decimal), Primitive(Decimal)},
		{"single_double", Primitive(Single), Primitive(Double), Primitive(Double)},
		{"int_single", Primitive(Int64), Primitive(Single), Primitive(Single)},
		{"string", Primitive(String), Primitive(Int32), nil},
		{"nil", nil, Primitive(Int32), nil},
	} {
		t.Run(tc.test, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.exp, Promote(tc.a, tc.b))
		})
	}
}

func TestComparable(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	a.True(Comparable(Primitive(Int32), Primitive(Double)))
	a.True(Comparable(Primitive(String), Primitive(String)))
	a.True(Comparable(nil, Primitive(String)))
	a.False(Comparable(Primitive(String), Primitive(Int32)))
	a.False(Comparable(Primitive(Date), Primitive(DateTimeOffset)))
	a.True(Comparable(Primitive(GeographyPoint), Primitive(GeographyPolygon)))
	a.False(Comparable(Primitive(GeographyPoint), Primitive(GeometryPoint)))
}

func TestIsPrimitive(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	a.True(IsPrimitive(Primitive(String)))
	a.True(IsPrimitive(Primitive(String), String, Int32))
	a.False(IsPrimitive(Primitive(Boolean), String, Int32))
	a.False(IsPrimitive(nil))
	a.False(IsPrimitive(NewComplexType(FullQualifiedName{"Demo", "X"}, nil)))
	a.True(IsNumeric(Primitive(Single)))
	a.False(IsNumeric(Primitive(Guid)))
}

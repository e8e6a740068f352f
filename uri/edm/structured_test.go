package edm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredType(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	address := NewComplexType(FullQualifiedName{"Demo", "Address"}, nil).
		AddProperty("City", Primitive(String), true)
	person := NewEntityType(FullQualifiedName{"Demo", "Person"}, nil).
		SetKey("ID").
		AddProperty("ID", Primitive(Int32), false).
		AddProperty("Name", Primitive(String), true).
		AddCollectionProperty("Emails", Primitive(String)).
		AddProperty("HomeAddress", address, true)
	person.AddNavigation("Friends", person, true)
	employee := NewEntityType(FullQualifiedName{"Demo", "Employee"}, person).
		AddProperty("Salary", Primitive(Decimal), true).
		SetHasStream(true).
		AddCustomAggregate("Payroll", Primitive(Decimal))

	a.Equal(KindEntity, person.Kind())
	a.True(person.IsEntity())
	a.False(person.IsComplex())
	a.True(address.IsComplex())
	a.Equal("Demo.Employee", employee.String())
	a.Same(person, employee.BaseType())

	// Inherited lookups.
	a.NotNil(employee.Property("Name"))
	a.NotNil(employee.Property("Salary"))
	a.Nil(person.Property("Salary"))
	a.NotNil(employee.NavigationProperty("Friends"))
	a.True(employee.Property("Emails").Collection)
	a.True(employee.HasMember("Friends"))
	a.False(employee.HasMember("Nope"))

	a.Equal([]string{"ID", "Name", "Emails", "HomeAddress", "Friends", "Salary"}, employee.PropertyNames())
	keys := employee.KeyProperties()
	a.Len(keys, 1)
	a.Equal("ID", keys[0].Name)

	a.True(employee.HasStream())
	a.False(person.HasStream())
	a.False(person.IsOpen())
	a.True(person.SetOpen(true).IsOpen())
	a.True(employee.IsOpen())
	person.SetAbstract(true)
	a.True(person.IsAbstract())

	typ, ok := employee.CustomAggregate("Payroll")
	a.True(ok)
	a.Equal(Primitive(Decimal), typ)
	_, ok = person.CustomAggregate("Payroll")
	a.False(ok)

	a.True(employee.CompatibleTo(person))
	a.True(person.CompatibleTo(person))
	a.False(person.CompatibleTo(employee))
	a.False(person.CompatibleTo(address))
	a.False(person.CompatibleTo(Primitive(String)))
}

func TestDynamicType(t *testing.T) {
	t.Parallel()
	a := assert.New(t)
	r := require.New(t)

	product := NewEntityType(FullQualifiedName{"Demo", "Product"}, nil).
		AddProperty("Category", Primitive(String), true).
		AddProperty("Price", Primitive(Decimal), true)

	_, err := product.AddDynamicProperty("Total", Primitive(Decimal))
	r.EqualError(err, "edm: type Demo.Product is not dynamic")
	r.ErrorIs(err, ErrEDM)

	dyn := NewDynamic(product)
	a.True(dyn.IsDynamic())
	a.Equal(product.FullQualifiedName(), dyn.FullQualifiedName())
	a.Equal(KindEntity, dyn.Kind())
	a.True(dyn.CompatibleTo(product))

	p, err := dyn.AddDynamicProperty("Total", Primitive(Decimal))
	r.NoError(err)
	a.Equal("Total", p.Name)
	a.Same(p, dyn.Property("Total"))
	a.Nil(product.Property("Total"))

	_, err = dyn.AddDynamicProperty("Price", Primitive(Decimal))
	r.EqualError(err, `edm: property "Price" already defined on Demo.Product`)
	_, err = dyn.AddDynamicProperty("Total", Primitive(Decimal))
	r.Error(err)

	child := NewDynamic(dyn)
	_, err = child.AddDynamicProperty("Avg", Primitive(Decimal))
	r.NoError(err)
	a.Len(child.DeclaredProperties(), 1)
	props := child.DynamicProperties()
	r.Len(props, 2)
	a.Equal("Total", props[0].Name)
	a.Equal("Avg", props[1].Name)
	a.Nil(dyn.Property("Avg"))

	empty := NewDynamic(nil)
	a.Equal(KindComplex, empty.Kind())
}

func TestEnumType(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	color := NewEnumType(FullQualifiedName{"Demo", "Color"}, false, "Red", "Green")
	a.Equal(KindEnum, color.Kind())
	a.Equal("Demo.Color", color.String())
	a.Equal(Int32, color.Underlying())
	a.False(color.IsFlags())
	a.Equal([]EnumMember{{"Red", 0}, {"Green", 1}}, color.Members())

	m, ok := color.Member("Green")
	a.True(ok)
	a.Equal(int64(1), m.Value)
	m, ok = color.Member("0")
	a.True(ok)
	a.Equal("Red", m.Name)
	_, ok = color.Member("Blue")
	a.False(ok)

	access := NewEnumType(FullQualifiedName{"Demo", "Access"}, true, "Read", "Write", "Delete").
		SetUnderlying(Int64).
		AddMember("All", 7)
	a.True(access.IsFlags())
	a.Equal(Int64, access.Underlying())
	m, ok = access.Member("4")
	a.True(ok)
	a.Equal("Delete", m.Name)
	m, ok = access.Member("All")
	a.True(ok)
	a.Equal(int64(7), m.Value)
}

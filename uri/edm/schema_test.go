package edm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema(t *testing.T) (*Schema, *StructuredType, *StructuredType) {
	t.Helper()
	r := require.New(t)

	s := NewSchema("Container")
	person := NewEntityType(FullQualifiedName{"Demo", "Person"}, nil).
		SetKey("ID").
		AddProperty("ID", Primitive(Int32), false)
	employee := NewEntityType(FullQualifiedName{"Demo", "Employee"}, person)
	r.NoError(s.AddType(person))
	r.NoError(s.AddType(employee))
	r.NoError(s.AddType(NewEnumType(FullQualifiedName{"Demo", "Color"}, false, "Red")))

	r.NoError(s.AddOperation(&Operation{
		Kind:       FunctionKind,
		Name:       FullQualifiedName{"Demo", "Friends"},
		Bound:      true,
		Composable: true,
		Parameters: []*Parameter{{Name: "p", Type: person}},
		Return:     &ReturnType{Type: person, Collection: true},
	}))
	r.NoError(s.AddOperation(&Operation{
		Kind:       FunctionKind,
		Name:       FullQualifiedName{"Demo", "Friends"},
		Bound:      true,
		Parameters: []*Parameter{{Name: "p", Type: person}, {Name: "max", Type: Primitive(Int32)}},
		Return:     &ReturnType{Type: person, Collection: true},
	}))
	r.NoError(s.AddOperation(&Operation{
		Kind:       ActionKind,
		Name:       FullQualifiedName{"Demo", "Promote"},
		Bound:      true,
		Parameters: []*Parameter{{Name: "p", Type: person}},
	}))
	r.NoError(s.AddOperation(&Operation{
		Kind: ActionKind,
		Name: FullQualifiedName{"Demo", "Reset"},
	}))
	r.NoError(s.AddOperation(&Operation{
		Kind:       FunctionKind,
		Name:       FullQualifiedName{"Demo", "Near"},
		Parameters: []*Parameter{{Name: "lat", Type: Primitive(Double)}, {Name: "lon", Type: Primitive(Double)}},
		Return:     &ReturnType{Type: person, Collection: true},
	}))

	s.AddEntitySet("People", person)
	s.AddEntitySet("Employees", employee)
	s.AddSingleton("Me", person)
	s.AddActionImport("Reset", s.UnboundAction(FullQualifiedName{"Demo", "Reset"}))
	s.AddFunctionImport("Near", FullQualifiedName{"Demo", "Near"})
	return s, person, employee
}

func TestSchemaContainer(t *testing.T) {
	t.Parallel()
	a := assert.New(t)
	s, person, employee := testSchema(t)

	var m Model = s
	c := m.EntityContainer()
	a.Equal("Container", c.Name())
	a.Same(person, c.EntitySet("People").Type)
	a.Same(employee, c.EntitySet("Employees").Type)
	a.Nil(c.EntitySet("Nope"))
	a.Same(person, c.Singleton("Me").Type)
	a.Nil(c.Singleton("People"))
	a.Equal("Reset", c.ActionImport("Reset").Action.Name.Name)
	a.Equal(FullQualifiedName{"Demo", "Near"}, c.FunctionImport("Near").Function)
	a.Nil(c.FunctionImport("Reset"))

	a.Equal([]string{"Employees", "People"}, s.EntitySetNames())
	a.Equal([]string{"Demo"}, s.Namespaces())
	a.True(s.HasNamespace("Demo"))
	a.False(s.HasNamespace("Edm"))
}

func TestSchemaTypes(t *testing.T) {
	t.Parallel()
	a := assert.New(t)
	s, person, _ := testSchema(t)

	a.Same(person, s.Type(FullQualifiedName{"Demo", "Person"}))
	a.Same(person, s.StructuredType(FullQualifiedName{"Demo", "Person"}))
	a.Equal(Primitive(String), s.Type(FullQualifiedName{"Edm", "String"}))
	a.Nil(s.Type(FullQualifiedName{"Edm", "Nope"}))
	a.Nil(s.StructuredType(FullQualifiedName{"Demo", "Color"}))
	a.NotNil(s.EnumType(FullQualifiedName{"Demo", "Color"}))
	a.Nil(s.EnumType(FullQualifiedName{"Demo", "Person"}))

	r := require.New(t)
	err := s.AddType(NewComplexType(FullQualifiedName{"Demo", "Person"}, nil))
	r.EqualError(err, `edm: duplicate type "Demo.Person"`)
	r.ErrorIs(err, ErrEDM)
	err = s.AddType(NewComplexType(FullQualifiedName{"Edm", "Thing"}, nil))
	r.EqualError(err, `edm: invalid namespace for type "Edm.Thing"`)
	err = s.AddOperation(&Operation{Name: FullQualifiedName{Name: "x"}})
	r.EqualError(err, `edm: operation "x" must be namespace-qualified`)
	err = s.AddOperation(&Operation{Name: FullQualifiedName{"Demo", "x"}, Bound: true})
	r.EqualError(err, `edm: bound operation "Demo.x" has no binding parameter`)
}

func TestSchemaOperations(t *testing.T) {
	t.Parallel()
	a := assert.New(t)
	s, person, employee := testSchema(t)
	friends := FullQualifiedName{"Demo", "Friends"}
	promote := FullQualifiedName{"Demo", "Promote"}

	// Bound lookups follow the binding type's base chain.
	for _, binding := range []*StructuredType{person, employee} {
		a.NotNil(s.BoundAction(promote, binding.FullQualifiedName(), false), binding)
		a.Len(s.BoundFunctions(friends, binding.FullQualifiedName(), false), 2)
		op := s.BoundFunction(friends, binding.FullQualifiedName(), false, []string{})
		a.NotNil(op)
		a.True(op.Composable)
		op = s.BoundFunction(friends, binding.FullQualifiedName(), false, []string{"max"})
		a.NotNil(op)
		a.False(op.Composable)
		a.Equal([]string{"max"}, op.ParameterNames())
		a.NotNil(op.Parameter("max"))
		a.Nil(op.Parameter("p"))
		a.Equal("p", op.BindingParameter().Name)
	}

	a.Nil(s.BoundAction(promote, person.FullQualifiedName(), true))
	a.Nil(s.BoundFunction(friends, person.FullQualifiedName(), false, []string{"min"}))
	a.Nil(s.UnboundAction(promote))
	a.NotNil(s.UnboundAction(FullQualifiedName{"Demo", "Reset"}))

	near := FullQualifiedName{"Demo", "Near"}
	a.Len(s.UnboundFunctions(near), 1)
	op := s.UnboundFunction(near, []string{"lon", "lat"})
	a.NotNil(op)
	a.True(op.IsFunction())
	a.False(op.IsAction())
	a.Nil(op.BindingParameter())
	a.Nil(s.UnboundFunction(near, []string{"lat"}))
	a.Empty(s.UnboundFunctions(friends))
}

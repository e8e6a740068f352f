package fixture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theory/odatauri/uri/edm"
)

func TestDemo(t *testing.T) {
	t.Parallel()
	a := assert.New(t)
	r := require.New(t)

	s := Demo()
	r.NotNil(s)
	a.NotSame(s, Demo())
	a.Equal(
		[]string{"Documents", "Employees", "OrderLines", "Orders", "People", "Products"},
		s.EntitySetNames(),
	)
	a.NotNil(s.Singleton("Me"))

	person := s.StructuredType(edm.FullQualifiedName{Namespace: "Demo", Name: "Person"})
	r.NotNil(person)
	a.Len(person.KeyProperties(), 1)
	a.Len(s.UnboundFunctions(edm.FullQualifiedName{Namespace: "Demo", Name: "Nearest"}), 2)
	a.NotEmpty(DemoYAML())
}

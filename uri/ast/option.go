package ast

import (
	"strings"

	"github.com/theory/odatauri/uri/edm"
)

// FilterOption is the parsed value of $filter. Its expression is typed
// Edm.Boolean or untyped.
type FilterOption struct {
	Expression Expression
}

// String returns the canonical filter expression.
func (o *FilterOption) String() string { return o.Expression.String() }

// OrderByItem is one sort key.
type OrderByItem struct {
	Expression Expression
	Descending bool
}

// String returns the expression with " desc" for descending order.
func (i *OrderByItem) String() string {
	if i.Descending {
		return i.Expression.String() + " desc"
	}
	return i.Expression.String()
}

// OrderByOption is the parsed value of $orderby.
type OrderByOption struct {
	Items []*OrderByItem
}

// String returns the comma-separated sort keys.
func (o *OrderByOption) String() string {
	b := new(strings.Builder)
	joinNodes(b, o.Items, ",")
	return b.String()
}

// SelectItem is one $select item: "*", "Namespace.*", a type filter, a
// property path, or a bound operation. TypeFilter, when set, precedes Path.
type SelectItem struct {
	Star                  bool
	AllOperationsInSchema string
	TypeFilter            *edm.StructuredType
	Path                  []Resource
}

// String returns the canonical item.
func (i *SelectItem) String() string {
	switch {
	case i.Star:
		return "*"
	case i.AllOperationsInSchema != "":
		return i.AllOperationsInSchema + ".*"
	}
	b := new(strings.Builder)
	if i.TypeFilter != nil {
		b.WriteString(i.TypeFilter.String())
		if len(i.Path) > 0 {
			b.WriteByte('/')
		}
	}
	joinNodes(b, i.Path, "/")
	return b.String()
}

// SelectOption is the parsed value of $select.
type SelectOption struct {
	Items []*SelectItem
}

// String returns the comma-separated items.
func (o *SelectOption) String() string {
	b := new(strings.Builder)
	joinNodes(b, o.Items, ",")
	return b.String()
}

// ComputeItem defines one computed property.
type ComputeItem struct {
	Expression Expression
	Alias      string
}

// String returns "expression as Alias".
func (i *ComputeItem) String() string {
	return i.Expression.String() + " as " + i.Alias
}

// ComputeOption is the parsed value of $compute.
type ComputeOption struct {
	Items []*ComputeItem
}

// String returns the comma-separated items.
func (o *ComputeOption) String() string {
	b := new(strings.Builder)
	joinNodes(b, o.Items, ",")
	return b.String()
}

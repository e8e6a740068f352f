package ast

import (
	"strconv"
	"strings"

	"github.com/theory/odatauri/uri/edm"
)

// Levels is the value of $levels: a depth or max.
type Levels struct {
	Max   bool
	Value int
}

// String returns "max" or the depth.
func (l *Levels) String() string {
	if l.Max {
		return "max"
	}
	return strconv.Itoa(l.Value)
}

// ExpandItem is one $expand item with its nested options. IsRef and IsCount
// record a trailing /$ref or /$count. Count holds the nested $count option.
type ExpandItem struct {
	Star       bool
	TypeFilter *edm.StructuredType
	Path       []Resource
	IsRef      bool
	IsCount    bool

	Apply   *ApplyOption
	Compute *ComputeOption
	Filter  *FilterOption
	Search  *SearchOption
	OrderBy *OrderByOption
	Skip    *int
	Top     *int
	Count   *bool
	Select  *SelectOption
	Expand  *ExpandOption
	Levels  *Levels
}

// Type returns the type nested options resolve against: the type of the
// last path segment, or the result type of a nested $apply.
func (i *ExpandItem) Type() edm.Type {
	if i.Apply != nil && i.Apply.Type != nil {
		return i.Apply.Type
	}
	if len(i.Path) == 0 {
		return nil
	}
	return i.Path[len(i.Path)-1].Type()
}

// String returns the canonical item with nested options in a fixed order.
func (i *ExpandItem) String() string {
	b := new(strings.Builder)
	if i.Star {
		b.WriteByte('*')
	} else {
		if i.TypeFilter != nil {
			b.WriteString(i.TypeFilter.String())
			b.WriteByte('/')
		}
		joinNodes(b, i.Path, "/")
	}
	switch {
	case i.IsRef:
		b.WriteString("/$ref")
	case i.IsCount:
		b.WriteString("/$count")
	}

	var opts []string
	add := func(name string, n Node) {
		opts = append(opts, name+"="+n.String())
	}
	if i.Apply != nil {
		add("$apply", i.Apply)
	}
	if i.Compute != nil {
		add("$compute", i.Compute)
	}
	if i.Filter != nil {
		add("$filter", i.Filter)
	}
	if i.Search != nil {
		add("$search", i.Search)
	}
	if i.OrderBy != nil {
		add("$orderby", i.OrderBy)
	}
	if i.Skip != nil {
		opts = append(opts, "$skip="+strconv.Itoa(*i.Skip))
	}
	if i.Top != nil {
		opts = append(opts, "$top="+strconv.Itoa(*i.Top))
	}
	if i.Count != nil {
		opts = append(opts, "$count="+strconv.FormatBool(*i.Count))
	}
	if i.Select != nil {
		add("$select", i.Select)
	}
	if i.Expand != nil {
		add("$expand", i.Expand)
	}
	if i.Levels != nil {
		add("$levels", i.Levels)
	}
	if len(opts) > 0 {
		b.WriteByte('(')
		b.WriteString(strings.Join(opts, ";"))
		b.WriteByte(')')
	}
	return b.String()
}

// ExpandOption is the parsed value of $expand.
type ExpandOption struct {
	Items []*ExpandItem
}

// String returns the comma-separated items.
func (o *ExpandOption) String() string {
	b := new(strings.Builder)
	joinNodes(b, o.Items, ",")
	return b.String()
}

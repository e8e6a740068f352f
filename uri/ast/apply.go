package ast

import (
	"strings"

	"github.com/theory/odatauri/uri/edm"
)

// ApplyItem is one transformation of an $apply pipeline. The variants are
// *Aggregate, *GroupBy, *Compute, *Concat, *ApplyExpand, *ApplyFilter,
// *ApplySearch, *BottomTop, *Identity and *CustomFunction.
type ApplyItem interface {
	Node
	applyItem()
}

// ApplyOption is a parsed $apply pipeline. Type is the structured type the
// pipeline produces: the input type extended with every alias introduced by
// its transformations.
type ApplyOption struct {
	Items []ApplyItem
	Type  *edm.StructuredType
}

// String returns the slash-separated transformations.
func (o *ApplyOption) String() string {
	b := new(strings.Builder)
	joinNodes(b, o.Items, "/")
	return b.String()
}

// AggregateMethod is a standard or custom aggregation method.
type AggregateMethod int

//revive:disable:exported
const (
	AggregateSum           AggregateMethod = iota // sum
	AggregateMin                                  // min
	AggregateMax                                  // max
	AggregateAverage                              // average
	AggregateCountDistinct                        // countdistinct
	AggregateCustom                               // custom
)

//nolint:gochecknoglobals
var aggregateNames = [...]string{"sum", "min", "max", "average", "countdistinct", "custom"}

// String returns the method keyword.
func (m AggregateMethod) String() string {
	if m < 0 || int(m) >= len(aggregateNames) {
		return "unknown"
	}
	return aggregateNames[m]
}

// LookupAggregateMethod returns the standard method named name.
func LookupAggregateMethod(name string) (AggregateMethod, bool) {
	for i, n := range aggregateNames[:AggregateCustom] {
		if n == name {
			return AggregateMethod(i), true
		}
	}
	return 0, false
}

// AggregateWith is a standard method or a qualified custom method.
type AggregateWith struct {
	Method       AggregateMethod
	CustomMethod edm.FullQualifiedName
}

// String returns the method keyword or qualified name.
func (w AggregateWith) String() string {
	if w.Method == AggregateCustom {
		return w.CustomMethod.String()
	}
	return w.Method.String()
}

// AggregateFrom is one "from" clause: aggregate per grouping property, then
// aggregate the results with With.
type AggregateFrom struct {
	Expression Expression
	With       *AggregateWith
}

// AggregateExpression is one item of aggregate(). Exactly one form is set:
// Count for "$count as Alias"; CustomAggregate for a custom aggregate name;
// Path with Inline for "Path(inline)"; or Expression with With. Result is
// the type of the introduced property.
type AggregateExpression struct {
	Count           bool
	CustomAggregate string
	Path            []Resource
	Inline          *AggregateExpression
	Expression      Expression
	With            AggregateWith
	From            []*AggregateFrom
	Alias           string
	Result          edm.Type
}

// String returns the canonical aggregate expression.
func (e *AggregateExpression) String() string {
	b := new(strings.Builder)
	switch {
	case e.Count:
		b.WriteString("$count as ")
		b.WriteString(e.Alias)
	case e.Inline != nil:
		b.WriteString(pathString(e.Path))
		b.WriteByte('(')
		b.WriteString(e.Inline.String())
		b.WriteByte(')')
	case e.CustomAggregate != "":
		if len(e.Path) > 0 {
			b.WriteString(pathString(e.Path))
			b.WriteByte('/')
		}
		b.WriteString(e.CustomAggregate)
		if e.Alias != "" && e.Alias != e.CustomAggregate {
			b.WriteString(" as ")
			b.WriteString(e.Alias)
		}
	default:
		b.WriteString(e.Expression.String())
		b.WriteString(" with ")
		b.WriteString(e.With.String())
		for _, f := range e.From {
			b.WriteString(" from ")
			b.WriteString(f.Expression.String())
			if f.With != nil {
				b.WriteString(" with ")
				b.WriteString(f.With.String())
			}
		}
		b.WriteString(" as ")
		b.WriteString(e.Alias)
	}
	return b.String()
}

// Aggregate is the aggregate() transformation.
type Aggregate struct {
	Items []*AggregateExpression
}

func (*Aggregate) applyItem() {}

// String returns "aggregate(item,item)".
func (t *Aggregate) String() string {
	b := new(strings.Builder)
	b.WriteString("aggregate(")
	joinNodes(b, t.Items, ",")
	b.WriteByte(')')
	return b.String()
}

// GroupingItem is a grouping property path or a rollup() of paths.
type GroupingItem struct {
	Path      []Resource
	Rollup    []*GroupingItem
	RollupAll bool
}

// String returns the path or the rollup.
func (g *GroupingItem) String() string {
	if g.Rollup == nil {
		return pathString(g.Path)
	}
	b := new(strings.Builder)
	b.WriteString("rollup(")
	if g.RollupAll {
		b.WriteString("$all,")
	}
	joinNodes(b, g.Rollup, ",")
	b.WriteByte(')')
	return b.String()
}

// GroupBy is the groupby() transformation with an optional nested
// pipeline applied to each group.
type GroupBy struct {
	Items []*GroupingItem
	Apply *ApplyOption
}

func (*GroupBy) applyItem() {}

// String returns "groupby((item,item),apply)".
func (t *GroupBy) String() string {
	b := new(strings.Builder)
	b.WriteString("groupby((")
	joinNodes(b, t.Items, ",")
	b.WriteByte(')')
	if t.Apply != nil {
		b.WriteByte(',')
		b.WriteString(t.Apply.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Compute is the compute() transformation.
type Compute struct {
	Items []*ComputeItem
}

func (*Compute) applyItem() {}

// String returns "compute(expr as Alias,...)".
func (t *Compute) String() string {
	b := new(strings.Builder)
	b.WriteString("compute(")
	joinNodes(b, t.Items, ",")
	b.WriteByte(')')
	return b.String()
}

// Concat is the concat() transformation: parallel pipelines over the same
// input.
type Concat struct {
	Branches []*ApplyOption
}

func (*Concat) applyItem() {}

// String returns "concat(pipeline,pipeline)".
func (t *Concat) String() string {
	b := new(strings.Builder)
	b.WriteString("concat(")
	joinNodes(b, t.Branches, ",")
	b.WriteByte(')')
	return b.String()
}

// ApplyExpand is the expand() transformation.
type ApplyExpand struct {
	Path    []Resource
	Filter  Expression
	Expands []*ApplyExpand
}

func (*ApplyExpand) applyItem() {}

// String returns "expand(Path,filter(...),expand(...))".
func (t *ApplyExpand) String() string {
	b := new(strings.Builder)
	b.WriteString("expand(")
	b.WriteString(pathString(t.Path))
	if t.Filter != nil {
		b.WriteString(",filter(")
		b.WriteString(t.Filter.String())
		b.WriteByte(')')
	}
	for _, e := range t.Expands {
		b.WriteByte(',')
		b.WriteString(e.String())
	}
	b.WriteByte(')')
	return b.String()
}

// ApplyFilter is the filter() transformation.
type ApplyFilter struct {
	Expression Expression
}

func (*ApplyFilter) applyItem() {}

// String returns "filter(expr)".
func (t *ApplyFilter) String() string {
	return "filter(" + t.Expression.String() + ")"
}

// ApplySearch is the search() transformation.
type ApplySearch struct {
	Expression Search
}

func (*ApplySearch) applyItem() {}

// String returns "search(expr)".
func (t *ApplySearch) String() string {
	return "search(" + t.Expression.String() + ")"
}

// BottomTopMethod selects a bottom or top transformation.
type BottomTopMethod int

//revive:disable:exported
const (
	BottomCount   BottomTopMethod = iota // bottomcount
	BottomPercent                        // bottompercent
	BottomSum                            // bottomsum
	TopCount                             // topcount
	TopPercent                           // toppercent
	TopSum                               // topsum
)

//nolint:gochecknoglobals
var bottomTopNames = [...]string{
	"bottomcount", "bottompercent", "bottomsum", "topcount", "toppercent", "topsum",
}

// String returns the transformation keyword.
func (m BottomTopMethod) String() string {
	if m < 0 || int(m) >= len(bottomTopNames) {
		return "unknown"
	}
	return bottomTopNames[m]
}

// LookupBottomTop returns the method named name.
func LookupBottomTop(name string) (BottomTopMethod, bool) {
	for i, n := range bottomTopNames {
		if n == name {
			return BottomTopMethod(i), true
		}
	}
	return 0, false
}

// BottomTop is one of the bottomcount, bottompercent, bottomsum, topcount,
// toppercent and topsum transformations.
type BottomTop struct {
	Method BottomTopMethod
	N      Expression
	Value  Expression
}

func (*BottomTop) applyItem() {}

// String returns "method(N,Value)".
func (t *BottomTop) String() string {
	return t.Method.String() + "(" + t.N.String() + "," + t.Value.String() + ")"
}

// Identity is the identity transformation.
type Identity struct{}

func (*Identity) applyItem() {}

// String returns "identity".
func (*Identity) String() string { return "identity" }

// CustomFunction applies a bound function to the input collection.
type CustomFunction struct {
	Function   *edm.Operation
	Parameters []*Parameter
}

func (*CustomFunction) applyItem() {}

// String returns "Namespace.Function(params)".
func (t *CustomFunction) String() string {
	b := new(strings.Builder)
	b.WriteString(t.Function.Name.String())
	b.WriteByte('(')
	joinNodes(b, t.Parameters, ",")
	b.WriteByte(')')
	return b.String()
}

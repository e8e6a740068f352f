package ast

import (
	"strings"

	"github.com/theory/odatauri/uri/edm"
)

// Expression is a node of the common expression grammar used by $filter,
// $orderby, $compute, $apply and function parameters. The variants are
// *Literal, *Enum, *Alias, *Member, *Unary, *Binary, *List, *Method and
// *TypeLiteral.
type Expression interface {
	Node

	// Type returns the resolved EDM type of the expression, or nil when the
	// type is unknown, as for null and untyped aliases.
	Type() edm.Type

	// IsCollection reports whether the expression yields a collection.
	IsCollection() bool

	// priority returns the binding strength used to parenthesize the
	// canonical form.
	priority() int
}

const (
	priorityOr = iota + 1
	priorityAnd
	priorityEquality
	priorityRelational
	priorityAdditive
	priorityMultiplicative
	priorityUnary
	priorityPostfix
	priorityPrimary
)

// Literal is a typed primitive literal, null, or a JSON value passed to a
// function parameter. It keeps its source text.
type Literal struct {
	text       string
	typ        edm.Type
	value      any
	collection bool
}

// NewLiteral returns a literal with source text, resolved type and Go value.
// The value is one of nil, bool, string, int64, float64, decimal.Decimal,
// uuid.UUID, types.Binary, *types.Date, *types.TimeOfDay,
// *types.DateTimeOffset, *types.Duration, *types.Geo or json.RawMessage.
func NewLiteral(text string, typ edm.Type, value any) *Literal {
	return &Literal{text: text, typ: typ, value: value}
}

// NewNull returns the null literal.
func NewNull() *Literal {
	return &Literal{text: "null"}
}

// NewJSONLiteral returns a literal holding a JSON array or object passed
// to a parameter of type typ.
func NewJSONLiteral(text string, typ edm.Type, collection bool, value any) *Literal {
	return &Literal{text: text, typ: typ, value: value, collection: collection}
}

// Text returns the literal's source text.
func (n *Literal) Text() string { return n.text }

// Value returns the Go value of the literal.
func (n *Literal) Value() any { return n.value }

// IsNull reports whether n is the null literal.
func (n *Literal) IsNull() bool { return n.text == "null" && n.typ == nil }

// Type returns the literal's type, or nil for null.
func (n *Literal) Type() edm.Type { return n.typ }

// IsCollection reports whether n is a JSON array.
func (n *Literal) IsCollection() bool { return n.collection }

// String returns the source text.
func (n *Literal) String() string { return n.text }

func (*Literal) priority() int { return priorityPrimary }

// Enum is an enumeration literal such as Demo.Color'Red' or, for flags
// types, Demo.Access'Read,Write'.
type Enum struct {
	typ     *edm.EnumType
	members []edm.EnumMember
}

// NewEnum returns an enumeration literal of type typ with members.
func NewEnum(typ *edm.EnumType, members ...edm.EnumMember) *Enum {
	return &Enum{typ: typ, members: members}
}

// Members returns the literal's members.
func (n *Enum) Members() []edm.EnumMember { return n.members }

// Value returns the combined value of the members.
func (n *Enum) Value() int64 {
	var v int64
	for _, m := range n.members {
		if n.typ.IsFlags() {
			v |= m.Value
		} else {
			v += m.Value
		}
	}
	return v
}

// Type returns the enumeration type.
func (n *Enum) Type() edm.Type { return n.typ }

// IsCollection returns false.
func (*Enum) IsCollection() bool { return false }

// String returns the qualified literal form.
func (n *Enum) String() string {
	b := new(strings.Builder)
	b.WriteString(n.typ.String())
	b.WriteByte('\'')
	for i, m := range n.members {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(m.Name)
	}
	b.WriteByte('\'')
	return b.String()
}

func (*Enum) priority() int { return priorityPrimary }

// Alias refers to a parameter alias such as @p. Its type is the type of the
// alias value, when known.
type Alias struct {
	name       string
	typ        edm.Type
	collection bool
}

// NewAlias returns a reference to the alias named name, without the @.
func NewAlias(name string, typ edm.Type, collection bool) *Alias {
	return &Alias{name: name, typ: typ, collection: collection}
}

// Name returns the alias name without the @.
func (n *Alias) Name() string { return n.name }

// Type returns the type of the alias value, or nil.
func (n *Alias) Type() edm.Type { return n.typ }

// IsCollection reports whether the alias value is a collection.
func (n *Alias) IsCollection() bool { return n.collection }

// String returns "@name".
func (n *Alias) String() string { return "@" + n.name }

func (*Alias) priority() int { return priorityPrimary }

// Member is a path expression, resolved against the instance being
// evaluated, a lambda variable, $it, or $root. A leading type filter narrows
// the instance before the first segment.
type Member struct {
	root       bool
	typeFilter *edm.StructuredType
	parts      []Resource
}

// NewMember returns a member path. When root is true the path starts at
// $root and its first part is an entity set or singleton.
func NewMember(root bool, typeFilter *edm.StructuredType, parts ...Resource) *Member {
	return &Member{root: root, typeFilter: typeFilter, parts: parts}
}

// IsRoot reports whether the path starts at $root.
func (n *Member) IsRoot() bool { return n.root }

// TypeFilter returns the leading type filter, or nil.
func (n *Member) TypeFilter() *edm.StructuredType { return n.typeFilter }

// Parts returns the path segments.
func (n *Member) Parts() []Resource { return n.parts }

// Last returns the final segment, or nil.
func (n *Member) Last() Resource {
	if len(n.parts) == 0 {
		return nil
	}
	return n.parts[len(n.parts)-1]
}

// Type returns the type of the final segment.
func (n *Member) Type() edm.Type {
	if last := n.Last(); last != nil {
		return last.Type()
	}
	return structured(n.typeFilter)
}

// IsCollection reports whether the final segment is a collection.
func (n *Member) IsCollection() bool {
	if last := n.Last(); last != nil {
		return last.IsCollection()
	}
	return false
}

// String returns the slash-separated path.
func (n *Member) String() string {
	b := new(strings.Builder)
	if n.root {
		b.WriteString("$root")
	}
	if n.typeFilter != nil {
		if b.Len() > 0 {
			b.WriteByte('/')
		}
		b.WriteString(n.typeFilter.String())
	}
	if len(n.parts) > 0 {
		if b.Len() > 0 {
			b.WriteByte('/')
		}
		joinNodes(b, n.parts, "/")
	}
	return b.String()
}

func (*Member) priority() int { return priorityPrimary }

// UnaryOperator represents a unary operator.
type UnaryOperator int

//revive:disable:exported
const (
	UnaryNot   UnaryOperator = iota // not
	UnaryMinus                      // -
)

// String returns the operator keyword.
func (op UnaryOperator) String() string {
	if op == UnaryNot {
		return "not"
	}
	return "-"
}

// Unary represents a unary operation.
type Unary struct {
	op      UnaryOperator
	operand Expression
}

// NewUnary returns a new Unary applying op to operand.
func NewUnary(op UnaryOperator, operand Expression) *Unary {
	return &Unary{op: op, operand: operand}
}

// Operator returns the unary operator.
func (n *Unary) Operator() UnaryOperator { return n.op }

// Operand returns the operand.
func (n *Unary) Operand() Expression { return n.operand }

// Type returns Edm.Boolean for not and the operand type for negation.
func (n *Unary) Type() edm.Type {
	if n.op == UnaryNot {
		return edm.Primitive(edm.Boolean)
	}
	return n.operand.Type()
}

// IsCollection returns false.
func (*Unary) IsCollection() bool { return false }

// String returns the canonical unary expression.
func (n *Unary) String() string {
	operand := n.operand.String()
	if n.op == UnaryNot {
		if n.operand.priority() < priorityUnary {
			operand = "(" + operand + ")"
		}
		return "not " + operand
	}
	switch n.operand.(type) {
	case *Member, *Method, *Alias:
		return "-" + operand
	default:
		// Keep negated literals and nested operations from reading as a
		// signed literal.
		return "-(" + operand + ")"
	}
}

func (*Unary) priority() int { return priorityUnary }

// BinaryOperator represents a binary operator.
type BinaryOperator int

//revive:disable:exported
const (
	BinaryOr    BinaryOperator = iota // or
	BinaryAnd                         // and
	BinaryEq                          // eq
	BinaryNe                          // ne
	BinaryGt                          // gt
	BinaryGe                          // ge
	BinaryLt                          // lt
	BinaryLe                          // le
	BinaryHas                         // has
	BinaryIn                          // in
	BinaryAdd                         // add
	BinarySub                         // sub
	BinaryMul                         // mul
	BinaryDiv                         // div
	BinaryDivBy                       // divby
	BinaryMod                         // mod
	binaryCount
)

//nolint:gochecknoglobals
var binaryNames = [binaryCount]string{
	"or", "and", "eq", "ne", "gt", "ge", "lt", "le", "has", "in",
	"add", "sub", "mul", "div", "divby", "mod",
}

// String returns the operator keyword.
func (op BinaryOperator) String() string {
	if op < 0 || op >= binaryCount {
		return "unknown"
	}
	return binaryNames[op]
}

// LookupBinary returns the operator for keyword.
func LookupBinary(keyword string) (BinaryOperator, bool) {
	for i, n := range binaryNames {
		if n == keyword {
			return BinaryOperator(i), true
		}
	}
	return 0, false
}

// IsComparison reports whether op is an equality or relational operator.
func (op BinaryOperator) IsComparison() bool {
	return op >= BinaryEq && op <= BinaryLe
}

// IsArithmetic reports whether op is an additive or multiplicative
// operator.
func (op BinaryOperator) IsArithmetic() bool {
	return op >= BinaryAdd && op <= BinaryMod
}

func (op BinaryOperator) priority() int {
	switch op {
	case BinaryOr:
		return priorityOr
	case BinaryAnd:
		return priorityAnd
	case BinaryEq, BinaryNe:
		return priorityEquality
	case BinaryGt, BinaryGe, BinaryLt, BinaryLe:
		return priorityRelational
	case BinaryAdd, BinarySub:
		return priorityAdditive
	case BinaryHas, BinaryIn:
		return priorityPostfix
	default:
		return priorityMultiplicative
	}
}

// Binary represents a binary operation.
type Binary struct {
	op    BinaryOperator
	left  Expression
	right Expression
}

// NewBinary returns a new Binary where op represents the binary operator
// and left and right the operands.
func NewBinary(op BinaryOperator, left, right Expression) *Binary {
	return &Binary{op: op, left: left, right: right}
}

// Operator returns the binary operator.
func (n *Binary) Operator() BinaryOperator { return n.op }

// Left returns the left operand.
func (n *Binary) Left() Expression { return n.left }

// Right returns the right operand.
func (n *Binary) Right() Expression { return n.right }

// Type returns Edm.Boolean for logical, comparison, has and in operators,
// and the promoted operand type for arithmetic.
func (n *Binary) Type() edm.Type {
	switch {
	case n.op.IsArithmetic():
		return arithmeticType(n.op, n.left.Type(), n.right.Type())
	default:
		return edm.Primitive(edm.Boolean)
	}
}

// IsCollection returns false.
func (*Binary) IsCollection() bool { return false }

// String returns the canonical infix form, parenthesizing operands that
// bind more loosely than op.
func (n *Binary) String() string {
	p := n.op.priority()
	left := n.left.String()
	if n.left.priority() < p {
		left = "(" + left + ")"
	}
	right := n.right.String()
	if n.right.priority() <= p {
		right = "(" + right + ")"
	}
	return left + " " + n.op.String() + " " + right
}

func (n *Binary) priority() int { return n.op.priority() }

// arithmeticType derives the result type of an arithmetic operation. An
// untyped operand takes the type of the other.
func arithmeticType(op BinaryOperator, left, right edm.Type) edm.Type {
	if op == BinaryDivBy {
		return edm.Primitive(edm.Decimal)
	}
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}
	lk, lok := edm.PrimitiveKindOf(left)
	rk, rok := edm.PrimitiveKindOf(right)
	if lok && rok && (op == BinaryAdd || op == BinarySub) {
		switch {
		case (lk == edm.DateTimeOffset || lk == edm.Date) && rk == edm.Duration:
			return left
		case lk == edm.Duration && rk == edm.Duration:
			return left
		case op == BinaryAdd && lk == edm.Duration && (rk == edm.DateTimeOffset || rk == edm.Date):
			return right
		case op == BinarySub && lk == rk && (lk == edm.DateTimeOffset || lk == edm.Date):
			return edm.Primitive(edm.Duration)
		}
	}
	return edm.Promote(left, right)
}

// List is a parenthesized list of expressions, the right operand of in.
type List struct {
	items []Expression
}

// NewList returns a list of items.
func NewList(items ...Expression) *List {
	return &List{items: items}
}

// Items returns the list items.
func (n *List) Items() []Expression { return n.items }

// Type returns the type of the first typed item.
func (n *List) Type() edm.Type {
	for _, item := range n.items {
		if t := item.Type(); t != nil {
			return t
		}
	}
	return nil
}

// IsCollection returns true.
func (*List) IsCollection() bool { return true }

// String returns "(item,item)".
func (n *List) String() string {
	b := new(strings.Builder)
	b.WriteByte('(')
	joinNodes(b, n.items, ",")
	b.WriteByte(')')
	return b.String()
}

func (*List) priority() int { return priorityPrimary }

// Method is a call to a built-in function.
type Method struct {
	kind   MethodKind
	params []Expression
}

// NewMethod returns a call of kind with params.
func NewMethod(kind MethodKind, params ...Expression) *Method {
	return &Method{kind: kind, params: params}
}

// Kind returns the method kind.
func (n *Method) Kind() MethodKind { return n.kind }

// Params returns the arguments.
func (n *Method) Params() []Expression { return n.params }

// Type returns the method's result type. round, floor and ceiling return
// Edm.Decimal for a Decimal argument and Edm.Double otherwise; cast returns
// its target type.
func (n *Method) Type() edm.Type {
	switch n.kind {
	case MethodContains, MethodStartsWith, MethodEndsWith, MethodMatchesPattern,
		MethodHasSubset, MethodHasSubsequence, MethodGeoIntersects, MethodIsOf:
		return edm.Primitive(edm.Boolean)
	case MethodLength, MethodIndexOf, MethodYear, MethodMonth, MethodDay,
		MethodHour, MethodMinute, MethodSecond, MethodTotalOffsetMinutes:
		return edm.Primitive(edm.Int32)
	case MethodSubstring, MethodToLower, MethodToUpper, MethodTrim, MethodConcat:
		return edm.Primitive(edm.String)
	case MethodFractionalSeconds, MethodTotalSeconds:
		return edm.Primitive(edm.Decimal)
	case MethodDate:
		return edm.Primitive(edm.Date)
	case MethodTime:
		return edm.Primitive(edm.TimeOfDay)
	case MethodNow, MethodMinDateTime, MethodMaxDateTime:
		return edm.Primitive(edm.DateTimeOffset)
	case MethodRound, MethodFloor, MethodCeiling:
		if len(n.params) > 0 && edm.IsPrimitive(n.params[0].Type(), edm.Decimal) {
			return edm.Primitive(edm.Decimal)
		}
		return edm.Primitive(edm.Double)
	case MethodGeoDistance, MethodGeoLength:
		return edm.Primitive(edm.Double)
	case MethodCast:
		if len(n.params) > 0 {
			return n.params[len(n.params)-1].Type()
		}
	}
	return nil
}

// IsCollection returns false.
func (*Method) IsCollection() bool { return false }

// String returns "name(arg,arg)".
func (n *Method) String() string {
	b := new(strings.Builder)
	b.WriteString(n.kind.String())
	b.WriteByte('(')
	joinNodes(b, n.params, ",")
	b.WriteByte(')')
	return b.String()
}

func (*Method) priority() int { return priorityPrimary }

// TypeLiteral names a type, the last argument of cast and isof.
type TypeLiteral struct {
	typ edm.Type
}

// NewTypeLiteral returns a type literal naming typ.
func NewTypeLiteral(typ edm.Type) *TypeLiteral {
	return &TypeLiteral{typ: typ}
}

// Type returns the named type.
func (n *TypeLiteral) Type() edm.Type { return n.typ }

// IsCollection returns false.
func (*TypeLiteral) IsCollection() bool { return false }

// String returns the qualified type name.
func (n *TypeLiteral) String() string { return n.typ.String() }

func (*TypeLiteral) priority() int { return priorityPrimary }

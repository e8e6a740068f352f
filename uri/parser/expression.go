package parser

import (
	"slices"
	"strings"

	"github.com/theory/odatauri/uri/ast"
	"github.com/theory/odatauri/uri/edm"
)

// parseExpression parses a common expression.
func (p *parser) parseExpression() (ast.Expression, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (ast.Expression, error) {
	return p.binaryLevel(p.parseAnd, ast.BinaryOr)
}

func (p *parser) parseAnd() (ast.Expression, error) {
	return p.binaryLevel(p.parseEquality, ast.BinaryAnd)
}

func (p *parser) parseEquality() (ast.Expression, error) {
	return p.binaryLevel(p.parseRelational, ast.BinaryEq, ast.BinaryNe)
}

func (p *parser) parseRelational() (ast.Expression, error) {
	return p.binaryLevel(p.parseAdditive, ast.BinaryGt, ast.BinaryGe, ast.BinaryLt, ast.BinaryLe)
}

func (p *parser) parseAdditive() (ast.Expression, error) {
	return p.binaryLevel(p.parseMultiplicative, ast.BinaryAdd, ast.BinarySub)
}

func (p *parser) parseMultiplicative() (ast.Expression, error) {
	return p.binaryLevel(p.parseUnary, ast.BinaryMul, ast.BinaryDivBy, ast.BinaryDiv, ast.BinaryMod)
}

// binaryLevel parses a left-associative chain of next separated by any of
// ops.
func (p *parser) binaryLevel(next func() (ast.Expression, error), ops ...ast.BinaryOperator) (ast.Expression, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		op, pos, ok := p.attemptOperator(ops...)
		if !ok {
			return left, nil
		}
		right, err := next()
		if err != nil {
			return nil, err
		}
		if left, err = checkBinary(op, left, right, pos); err != nil {
			return nil, err
		}
	}
}

// attemptOperator matches whitespace, one of the keywords of ops, and
// whitespace or an opening parenthesis. It returns the operator and the
// position of its keyword.
func (p *parser) attemptOperator(ops ...ast.BinaryOperator) (ast.BinaryOperator, int, bool) {
	mark := p.mark()
	if !p.attempt(tokWS) {
		return 0, 0, false
	}
	pos := p.position()
	for _, op := range ops {
		if p.attemptKeyword(op.String()) {
			if p.attempt(tokWS) || p.peek() == '(' {
				return op, pos, true
			}
			break
		}
	}
	p.reset(mark)
	return 0, 0, false
}

// isBoolean reports whether typ is Edm.Boolean or unknown.
func isBoolean(typ edm.Type) bool {
	return typ == nil || edm.IsPrimitive(typ, edm.Boolean)
}

// isArithmetic reports whether typ may be an operand of an arithmetic
// operator.
func isArithmetic(typ edm.Type) bool {
	return typ == nil || edm.IsNumeric(typ) ||
		edm.IsPrimitive(typ, edm.Date, edm.DateTimeOffset, edm.Duration, edm.TimeOfDay)
}

// checkBinary type checks an operation and returns its node.
func checkBinary(op ast.BinaryOperator, left, right ast.Expression, pos int) (ast.Expression, error) {
	lt, rt := left.Type(), right.Type()
	switch {
	case op == ast.BinaryOr || op == ast.BinaryAnd:
		for _, t := range []edm.Type{lt, rt} {
			if !isBoolean(t) {
				return nil, newError(KeyTypeMismatch, pos, op.String(), "Edm.Boolean", typeName(t))
			}
		}
	case op.IsComparison():
		if left.IsCollection() || right.IsCollection() {
			return nil, newError(KeyTypeMismatch, pos, op.String(), "a single value", "a collection")
		}
		if !edm.Comparable(lt, rt) {
			return nil, newError(KeyTypeMismatch, pos, op.String(), typeName(lt), typeName(rt))
		}
	case op.IsArithmetic():
		for _, t := range []edm.Type{lt, rt} {
			if !isArithmetic(t) {
				return nil, newError(KeyTypeMismatch, pos, op.String(), "a numeric or temporal type", typeName(t))
			}
		}
		expr := ast.NewBinary(op, left, right)
		if lt != nil && rt != nil && expr.Type() == nil {
			return nil, newError(KeyTypeMismatch, pos, op.String(), typeName(lt), typeName(rt))
		}
		return expr, nil
	}
	return ast.NewBinary(op, left, right), nil
}

// parseUnary parses not, negation, or a postfix expression.
func (p *parser) parseUnary() (ast.Expression, error) {
	pos := p.position()
	if p.peek() == '-' && !isDigit(p.peekAt(1)) && !strings.HasPrefix(p.rest(), "-INF") {
		p.attemptText("-")
		p.bws()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if t := operand.Type(); t != nil && !edm.IsNumeric(t) && !edm.IsPrimitive(t, edm.Duration) {
			return nil, newError(KeyTypeMismatch, pos, "-", "a numeric type or Edm.Duration", typeName(t))
		}
		return ast.NewUnary(ast.UnaryMinus, operand), nil
	}

	mark := p.mark()
	if p.attemptKeyword("not") {
		if p.attempt(tokWS) || p.peek() == '(' {
			operand, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			if !isBoolean(operand.Type()) {
				return nil, newError(KeyTypeMismatch, pos, "not", "Edm.Boolean", typeName(operand.Type()))
			}
			return ast.NewUnary(ast.UnaryNot, operand), nil
		}
		p.reset(mark)
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary expression followed by any number of has
// and in operations.
func (p *parser) parsePostfix() (ast.Expression, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		op, pos, ok := p.attemptOperator(ast.BinaryHas, ast.BinaryIn)
		if !ok {
			return left, nil
		}
		if op == ast.BinaryHas {
			left, err = p.parseHas(left, pos)
		} else {
			left, err = p.parseIn(left, pos)
		}
		if err != nil {
			return nil, err
		}
	}
}

// parseHas parses the enumeration operand of has.
func (p *parser) parseHas(left ast.Expression, pos int) (ast.Expression, error) {
	right, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	lt, _ := left.Type().(*edm.EnumType)
	if left.Type() != nil && lt == nil {
		return nil, newError(KeyTypeMismatch, pos, "has", "an enumeration type", typeName(left.Type()))
	}
	switch r := right.(type) {
	case *ast.Alias:
	case *ast.Enum:
		if lt != nil && lt.FullQualifiedName() != r.Type().FullQualifiedName() {
			return nil, newError(KeyTypeMismatch, pos, "has", lt.String(), r.Type().String())
		}
	default:
		return nil, newError(KeyTypeMismatch, pos, "has", "an enumeration literal", typeName(right.Type()))
	}
	return ast.NewBinary(ast.BinaryHas, left, right), nil
}

// parseIn parses the collection operand of in: a parenthesized list, or a
// collection-valued alias, member or JSON array.
func (p *parser) parseIn(left ast.Expression, pos int) (ast.Expression, error) {
	if left.IsCollection() {
		return nil, newError(KeyTypeMismatch, pos, "in", "a single value", "a collection")
	}
	var right ast.Expression
	if p.peek() == '(' {
		list, err := p.parseList()
		if err != nil {
			return nil, err
		}
		for _, item := range list.Items() {
			if !edm.Comparable(left.Type(), item.Type()) {
				return nil, newError(KeyTypeMismatch, pos, "in", typeName(left.Type()), typeName(item.Type()))
			}
		}
		right = list
	} else {
		var err error
		if right, err = p.parsePrimary(); err != nil {
			return nil, err
		}
		_, isAlias := right.(*ast.Alias)
		if !right.IsCollection() && !(isAlias && right.Type() == nil) {
			return nil, newError(KeyTypeMismatch, pos, "in", "a collection", typeName(right.Type()))
		}
		if !edm.Comparable(left.Type(), right.Type()) {
			return nil, newError(KeyTypeMismatch, pos, "in", typeName(left.Type()), typeName(right.Type()))
		}
	}
	return ast.NewBinary(ast.BinaryIn, left, right), nil
}

// parseList parses a parenthesized, comma-separated list of expressions.
func (p *parser) parseList() (*ast.List, error) {
	if err := p.require(tokOpen); err != nil {
		return nil, err
	}
	p.bws()
	var items []ast.Expression
	for {
		item, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if !p.attemptComma() {
			break
		}
	}
	if err := p.requireClose(); err != nil {
		return nil, err
	}
	return ast.NewList(items...), nil
}

// parsePrimary parses a parenthesized expression, an alias, a literal, a
// method call, or a member path.
func (p *parser) parsePrimary() (ast.Expression, error) {
	switch p.peek() {
	case '(':
		p.attempt(tokOpen)
		p.bws()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.requireClose(); err != nil {
			return nil, err
		}
		return expr, nil
	case '@':
		return p.parseAlias()
	}

	lit, ok, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	if ok {
		return lit, nil
	}

	pos := p.position()
	switch {
	case p.attemptKeyword("$it"):
		it := &ast.It{Target: p.it}
		return p.parseMemberPath(false, nil, []ast.Resource{it}, p.it, false)
	case p.attemptKeyword("$root"):
		return p.parseRoot()
	case p.attempt(tokQualifiedName):
		return p.parseQualifiedPrimary(p.text(), pos)
	case p.attempt(tokIdentifier):
		return p.parseIdentifier(p.text(), pos)
	}
	return nil, p.expected("expression")
}

// parseRoot parses the path following $root: an entity set with key
// predicates or a singleton, then any member segments.
func (p *parser) parseRoot() (ast.Expression, error) {
	if err := p.require(tokSlash); err != nil {
		return nil, err
	}
	if err := p.require(tokIdentifier); err != nil {
		return nil, err
	}
	name, pos := p.text(), p.tokenPos()
	c := p.model.EntityContainer()
	var first ast.Resource
	switch {
	case c.EntitySet(name) != nil:
		set := c.EntitySet(name)
		keys, err := p.parseKeys(set.Type)
		if err != nil {
			return nil, err
		}
		first = &ast.EntitySet{Set: set, Keys: keys}
	case c.Singleton(name) != nil:
		first = &ast.Singleton{Singleton: c.Singleton(name)}
	default:
		return nil, newError(KeyUnknownResource, pos, name)
	}
	return p.parseMemberPath(true, nil, []ast.Resource{first}, first.Type(), first.IsCollection())
}

// parseQualifiedPrimary parses an enumeration literal, a geo method, a
// bound or unbound function call, or a type cast of $it.
func (p *parser) parseQualifiedPrimary(name string, pos int) (ast.Expression, error) {
	switch p.peek() {
	case '\'':
		return p.parseEnumLiteral(name, pos)
	case '(':
		if kind, ok := ast.LookupMethod(name); ok {
			return p.parseMethod(kind, pos)
		}
		fn, err := p.parseFunctionCall(name, pos, p.it, false)
		if err != nil {
			return nil, err
		}
		if fn == nil {
			return nil, newError(KeyUnknownFunction, pos, name, "")
		}
		return p.parseMemberPath(false, nil, []ast.Resource{fn}, fn.Type(), fn.IsCollection())
	}

	st := p.model.StructuredType(edm.NewFullQualifiedName(name))
	if st == nil {
		return nil, newError(KeyUnknownType, pos, name)
	}
	if err := castTo(st, p.it, pos); err != nil {
		return nil, err
	}
	return p.parseMemberPath(false, st, nil, st, false)
}

// parseFunctionCall parses the parameters of a function named name bound
// to typ, falling back to unbound functions. It returns nil when no
// function of that name exists.
func (p *parser) parseFunctionCall(name string, pos int, typ edm.Type, coll bool) (*ast.Function, error) {
	fqn := edm.NewFullQualifiedName(name)
	var bound bool
	if typ != nil {
		bound = len(p.model.BoundFunctions(fqn, typ.FullQualifiedName(), coll)) > 0
	}
	if !bound && len(p.model.UnboundFunctions(fqn)) == 0 {
		return nil, nil
	}

	params, err := p.parseParameters()
	if err != nil {
		return nil, err
	}
	names := parameterNames(params)
	var op *edm.Operation
	if bound {
		op = p.model.BoundFunction(fqn, typ.FullQualifiedName(), coll, names)
	} else {
		op = p.model.UnboundFunction(fqn, names)
	}
	if op == nil {
		return nil, newError(KeyUnknownFunction, pos, name, strings.Join(names, ","))
	}
	if err := p.bindParameters(op, params, pos); err != nil {
		return nil, err
	}
	return &ast.Function{Function: op, Parameters: params}, nil
}

// parseIdentifier parses a method call, or a member path starting at a
// lambda variable, a crossjoin entity set, or a member of $it.
func (p *parser) parseIdentifier(name string, pos int) (ast.Expression, error) {
	if p.peek() == '(' {
		kind, ok := ast.LookupMethod(name)
		if !ok {
			return nil, newError(KeyUnknownFunction, pos, name, "")
		}
		return p.parseMethod(kind, pos)
	}

	for i := len(p.lambdas) - 1; i >= 0; i-- {
		if v := p.lambdas[i]; v.name == name {
			res := &ast.LambdaVariable{Name: name, Target: v.typ}
			return p.parseMemberPath(false, nil, []ast.Resource{res}, v.typ, false)
		}
	}

	if slices.Contains(p.crossjoin, name) {
		if set := p.model.EntityContainer().EntitySet(name); set != nil {
			res := &ast.EntitySet{Set: set}
			return p.parseMemberPath(false, nil, []ast.Resource{res}, typeOf(set.Type), false)
		}
	}

	res, typ, coll, err := p.parseMember(name, pos, p.it)
	if err != nil {
		return nil, err
	}
	return p.parseMemberPath(false, nil, []ast.Resource{res}, typ, coll)
}

// parseMember resolves name as a navigation or structural property of typ.
func (p *parser) parseMember(name string, pos int, typ edm.Type) (ast.Resource, edm.Type, bool, error) {
	st := structuredOf(typ)
	if st == nil {
		if typ == nil {
			return nil, nil, false, newError(KeyUnknownProperty, pos, name, typeName(typ))
		}
		return nil, nil, false, newError(KeyNotStructured, pos, typ.String())
	}
	if nav := st.NavigationProperty(name); nav != nil {
		return &ast.Navigation{Property: nav}, typeOf(nav.Target), nav.Collection, nil
	}
	if prop := st.Property(name); prop != nil {
		return &ast.Property{Property: prop}, prop.Type, prop.Collection, nil
	}
	return nil, nil, false, newError(KeyUnknownProperty, pos, name, st.String())
}

// parseMemberPath parses slash-separated segments following parts. typ and
// coll describe the value reached so far.
func (p *parser) parseMemberPath(
	root bool, filter *edm.StructuredType, parts []ast.Resource, typ edm.Type, coll bool,
) (ast.Expression, error) {
	for p.peek() == '/' {
		mark := p.mark()
		p.attempt(tokSlash)
		pos := p.position()
		var last ast.Resource
		if len(parts) > 0 {
			last = parts[len(parts)-1]
			if fn, ok := last.(*ast.Function); ok && !fn.Function.Composable {
				return nil, newError(KeyNotComposable, pos, fn.Function.Name.String())
			}
		}

		switch {
		case p.attemptKeyword("$count"):
			if !coll {
				return nil, newError(KeyNotCollection, pos, pathText(filter, parts))
			}
			return ast.NewMember(root, filter, append(parts, &ast.Count{})...), nil

		case p.attempt(tokQualifiedName):
			name := p.text()
			if p.peek() == '(' {
				fn, err := p.parseFunctionCall(name, pos, typ, coll)
				if err != nil {
					return nil, err
				}
				if fn == nil || !fn.Function.Bound {
					return nil, newError(KeyUnknownFunction, pos, name, "")
				}
				parts = append(parts, fn)
				typ, coll = fn.Type(), fn.IsCollection()
				continue
			}
			st := p.model.StructuredType(edm.NewFullQualifiedName(name))
			if st == nil {
				return nil, newError(KeyUnknownType, pos, name)
			}
			if err := castTo(st, typ, pos); err != nil {
				return nil, err
			}
			if last == nil {
				if filter != nil {
					return nil, newError(KeyDuplicateTypeFilter, pos, filter.String(), st.String())
				}
				filter = st
			} else {
				if prev := typeFilterOf(last); prev != nil {
					return nil, newError(KeyDuplicateTypeFilter, pos, last.String(), st.String())
				}
				res, ok := withTypeFilter(last, st)
				if !ok {
					return nil, newError(KeyNotStructured, pos, typeName(typ))
				}
				parts[len(parts)-1] = res
			}
			typ = st

		case p.attempt(tokIdentifier):
			name := p.text()
			if coll && (name == "any" || name == "all") && p.peek() == '(' {
				lambda, err := p.parseLambda(name == "all", typ, pos)
				if err != nil {
					return nil, err
				}
				return ast.NewMember(root, filter, append(parts, lambda)...), nil
			}
			if coll {
				return nil, newError(KeyCollectionPath, pos, pathText(filter, parts), name)
			}
			res, t, c, err := p.parseMember(name, pos, typ)
			if err != nil {
				return nil, err
			}
			parts = append(parts, res)
			typ, coll = t, c

		default:
			p.reset(mark)
			return nil, newError(KeyUnexpected, pos, p.rest())
		}
	}
	return ast.NewMember(root, filter, parts...), nil
}

// pathText renders a partial member path for error messages.
func pathText(filter *edm.StructuredType, parts []ast.Resource) string {
	return ast.NewMember(false, filter, parts...).String()
}

// parseLambda parses the parenthesized variable and predicate of any or
// all over elements of type typ.
func (p *parser) parseLambda(all bool, typ edm.Type, pos int) (*ast.Lambda, error) {
	p.attempt(tokOpen)
	p.bws()
	lambda := &ast.Lambda{All: all}
	if !all && p.attempt(tokClose) {
		return lambda, nil
	}

	if err := p.require(tokIdentifier); err != nil {
		return nil, err
	}
	name := p.text()
	for _, v := range p.lambdas {
		if v.name == name {
			return nil, newError(KeyDuplicateVariable, p.tokenPos(), name)
		}
	}
	p.bws()
	if err := p.require(tokColon); err != nil {
		return nil, err
	}
	p.bws()

	p.lambdas = append(p.lambdas, lambdaVariable{name: name, typ: typ})
	predicate, err := p.parseExpression()
	p.lambdas = p.lambdas[:len(p.lambdas)-1]
	if err != nil {
		return nil, err
	}
	if err := p.requireClose(); err != nil {
		return nil, err
	}
	if !isBoolean(predicate.Type()) {
		method := "any"
		if all {
			method = "all"
		}
		return nil, newError(KeyTypeMismatch, pos, method, "Edm.Boolean", typeName(predicate.Type()))
	}
	lambda.Variable = name
	lambda.Predicate = predicate
	return lambda, nil
}

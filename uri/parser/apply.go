package parser

import (
	"strconv"
	"strings"

	"github.com/theory/odatauri/uri/ast"
	"github.com/theory/odatauri/uri/edm"
)

// parseApply parses an $apply value against input. Each transformation
// sees the type produced by the one before it, starting with a dynamic
// extension of input.
func (p *parser) parseApply(input *edm.StructuredType) (*ast.ApplyOption, error) {
	if input == nil {
		return nil, newError(KeyNotStructured, p.position(), typeName(nil))
	}
	opt, err := p.parseApplySequence(edm.NewDynamic(input))
	if err != nil {
		return nil, err
	}
	if err := p.requireEnd(); err != nil {
		return nil, err
	}
	return opt, nil
}

// parseCompute parses a $compute value against st and returns the dynamic
// type carrying the computed properties.
func (p *parser) parseCompute(st *edm.StructuredType) (*ast.ComputeOption, *edm.StructuredType, error) {
	if st == nil {
		return nil, nil, newError(KeyNotStructured, p.position(), typeName(nil))
	}
	scope := edm.NewDynamic(st)
	defer p.within(scope)()
	items, err := p.parseComputeItems(scope)
	if err != nil {
		return nil, nil, err
	}
	if err := p.requireEnd(); err != nil {
		return nil, nil, err
	}
	return &ast.ComputeOption{Items: items}, scope, nil
}

// within sets the type $it and member paths resolve against and returns a
// function that restores the previous one.
func (p *parser) within(typ *edm.StructuredType) func() {
	saved := p.it
	p.it = typeOf(typ)
	return func() { p.it = saved }
}

// parseApplySequence parses slash-separated transformations.
func (p *parser) parseApplySequence(scope *edm.StructuredType) (*ast.ApplyOption, error) {
	opt := &ast.ApplyOption{}
	for {
		item, next, err := p.parseTransformation(scope)
		if err != nil {
			return nil, err
		}
		opt.Items = append(opt.Items, item)
		scope = next
		if !p.attempt(tokSlash) {
			break
		}
	}
	opt.Type = scope
	return opt, nil
}

// parseTransformation parses one transformation applied to scope and
// returns it with the type it produces.
func (p *parser) parseTransformation(scope *edm.StructuredType) (ast.ApplyItem, *edm.StructuredType, error) {
	defer p.within(scope)()
	pos := p.position()
	if p.attempt(tokQualifiedName) {
		return p.parseCustomFunction(scope, pos)
	}
	if !p.attempt(tokIdentifier) {
		return nil, nil, p.expected("transformation")
	}
	name := p.text()
	if name == "identity" {
		return &ast.Identity{}, scope, nil
	}
	if err := p.require(tokOpen); err != nil {
		return nil, nil, err
	}
	p.bws()

	var (
		item ast.ApplyItem
		err  error
	)
	if method, ok := ast.LookupBottomTop(name); ok {
		item, err = p.parseBottomTop(method)
		return item, scope, err
	}
	switch name {
	case "aggregate":
		item, err = p.parseAggregate(scope)
	case "groupby":
		var gb *ast.GroupBy
		if gb, err = p.parseGroupBy(scope); err == nil && gb.Apply != nil {
			scope = gb.Apply.Type
		}
		item = gb
	case "compute":
		var items []*ast.ComputeItem
		if items, err = p.parseComputeItems(scope); err == nil {
			item, err = &ast.Compute{Items: items}, p.requireClose()
		}
	case "concat":
		item, err = p.parseConcat(scope, pos)
	case "expand":
		item, err = p.parseApplyExpand(scope)
	case "filter":
		var expr ast.Expression
		if expr, err = p.parseBooleanExpression("filter", p.requireClose); err == nil {
			item = &ast.ApplyFilter{Expression: expr}
		}
	case "search":
		var expr ast.Search
		if expr, err = p.parseSearchOr(); err == nil {
			item, err = &ast.ApplySearch{Expression: expr}, p.requireClose()
		}
	default:
		return nil, nil, newError(KeyExpected, pos, "transformation")
	}
	if err != nil {
		return nil, nil, err
	}
	return item, scope, nil
}

// addAlias adds a property named alias to scope.
func addAlias(scope *edm.StructuredType, alias string, typ edm.Type, pos int) error {
	if _, err := scope.AddDynamicProperty(alias, typ); err != nil {
		return newError(KeyAliasExists, pos, alias, scope.String())
	}
	return nil
}

// parseAggregate parses the items of aggregate().
func (p *parser) parseAggregate(scope *edm.StructuredType) (*ast.Aggregate, error) {
	agg := &ast.Aggregate{}
	for {
		expr, err := p.parseAggregateExpression(scope, scope)
		if err != nil {
			return nil, err
		}
		agg.Items = append(agg.Items, expr)
		if !p.attemptComma() {
			break
		}
	}
	if err := p.requireClose(); err != nil {
		return nil, err
	}
	return agg, nil
}

// parseAggregateExpression parses one aggregate expression resolved
// against typ. Aliases are added to scope.
func (p *parser) parseAggregateExpression(scope, typ *edm.StructuredType) (*ast.AggregateExpression, error) {
	if p.attemptKeyword("$count") {
		if err := p.requireSpacedKeyword("as"); err != nil {
			return nil, err
		}
		return p.aggregateAlias(scope, &ast.AggregateExpression{Count: true, Result: edm.Primitive(edm.Decimal)})
	}

	if path, name, result, ok := p.attemptCustomAggregate(typ); ok {
		agg := &ast.AggregateExpression{Path: path, CustomAggregate: name, Alias: name, Result: result}
		pos := p.tokenPos()
		if p.attemptSpacedKeyword("as") {
			return p.aggregateAlias(scope, agg)
		}
		return agg, addAlias(scope, name, result, pos)
	}

	if path, target, ok := p.attemptInlinePath(typ); ok {
		p.attempt(tokOpen)
		p.bws()
		restore := p.within(target)
		inner, err := p.parseAggregateExpression(edm.NewDynamic(target), target)
		restore()
		if err != nil {
			return nil, err
		}
		if err := p.requireClose(); err != nil {
			return nil, err
		}
		return &ast.AggregateExpression{Path: path, Inline: inner}, nil
	}

	pos := p.position()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.requireSpacedKeyword("with"); err != nil {
		return nil, err
	}
	with, err := p.parseAggregateWith()
	if err != nil {
		return nil, err
	}
	agg := &ast.AggregateExpression{Expression: expr, With: with}
	for p.attemptSpacedKeyword("from") {
		from := &ast.AggregateFrom{}
		if from.Expression, err = p.parseExpression(); err != nil {
			return nil, err
		}
		if p.attemptSpacedKeyword("with") {
			w, err := p.parseAggregateWith()
			if err != nil {
				return nil, err
			}
			from.With = &w
		}
		agg.From = append(agg.From, from)
	}
	if err := p.requireSpacedKeyword("as"); err != nil {
		return nil, err
	}

	operand := expr.Type()
	switch with.Method {
	case ast.AggregateSum, ast.AggregateAverage:
		if operand != nil && !edm.IsNumeric(operand) || expr.IsCollection() {
			return nil, newError(KeyTypeMismatch, pos, with.Method.String(), "a numeric value", typeName(operand))
		}
		agg.Result = edm.Primitive(edm.Decimal)
	case ast.AggregateCountDistinct:
		agg.Result = edm.Primitive(edm.Decimal)
	case ast.AggregateMin, ast.AggregateMax:
		agg.Result = operand
	case ast.AggregateCustom:
	}
	return p.aggregateAlias(scope, agg)
}

// aggregateAlias parses the alias following "as", records it on agg, and
// adds it to scope.
func (p *parser) aggregateAlias(scope *edm.StructuredType, agg *ast.AggregateExpression) (*ast.AggregateExpression, error) {
	if err := p.require(tokIdentifier); err != nil {
		return nil, err
	}
	agg.Alias = p.text()
	if err := addAlias(scope, agg.Alias, agg.Result, p.tokenPos()); err != nil {
		return nil, err
	}
	return agg, nil
}

// parseAggregateWith parses a standard or qualified custom aggregation
// method.
func (p *parser) parseAggregateWith() (ast.AggregateWith, error) {
	if p.attempt(tokQualifiedName) {
		return ast.AggregateWith{
			Method:       ast.AggregateCustom,
			CustomMethod: edm.NewFullQualifiedName(p.text()),
		}, nil
	}
	if !p.attempt(tokIdentifier) {
		return ast.AggregateWith{}, p.expected("aggregation method")
	}
	method, ok := ast.LookupAggregateMethod(p.text())
	if !ok {
		return ast.AggregateWith{}, newError(KeyUnknownAggregate, p.tokenPos(), p.text())
	}
	return ast.AggregateWith{Method: method}, nil
}

// attemptCustomAggregate matches an optional navigation or complex path
// followed by the name of a custom aggregate. On failure the position is
// untouched.
func (p *parser) attemptCustomAggregate(typ *edm.StructuredType) ([]ast.Resource, string, edm.Type, bool) {
	mark := p.mark()
	var path []ast.Resource
	for cur := typ; cur != nil && p.attempt(tokIdentifier); {
		name := p.text()
		if result, ok := cur.CustomAggregate(name); ok && p.peek() != '/' && p.peek() != '(' {
			if !p.followedBySpacedKeyword("with") {
				return path, name, result, true
			}
			break
		}
		var res ast.Resource
		res, cur = memberStep(cur, name)
		if res == nil || !p.attempt(tokSlash) {
			break
		}
		path = append(path, res)
	}
	p.reset(mark)
	return nil, "", nil, false
}

// attemptInlinePath matches a navigation or complex path followed by an
// opening parenthesis, leaving the parenthesis unconsumed. On failure the
// position is untouched.
func (p *parser) attemptInlinePath(typ *edm.StructuredType) ([]ast.Resource, *edm.StructuredType, bool) {
	mark := p.mark()
	var path []ast.Resource
	for cur := typ; cur != nil && p.attempt(tokIdentifier); {
		var res ast.Resource
		res, cur = memberStep(cur, p.text())
		if res == nil {
			break
		}
		path = append(path, res)
		if p.peek() == '(' {
			return path, cur, true
		}
		if !p.attempt(tokSlash) {
			break
		}
	}
	p.reset(mark)
	return nil, nil, false
}

// followedBySpacedKeyword reports whether " kw " follows without consuming
// it.
func (p *parser) followedBySpacedKeyword(kw string) bool {
	mark := p.mark()
	ok := p.attemptSpacedKeyword(kw)
	p.reset(mark)
	return ok
}

// memberStep resolves a navigation or complex property of st and returns
// it with its structured type, or nil if name is neither.
func memberStep(st *edm.StructuredType, name string) (ast.Resource, *edm.StructuredType) {
	if nav := st.NavigationProperty(name); nav != nil {
		return &ast.Navigation{Property: nav}, nav.Target
	}
	if prop := st.Property(name); prop != nil {
		if complexType := structuredOf(prop.Type); complexType != nil {
			return &ast.Property{Property: prop}, complexType
		}
	}
	return nil, nil
}

// parseGroupBy parses the grouping items of groupby() and its optional
// nested transformations.
func (p *parser) parseGroupBy(scope *edm.StructuredType) (*ast.GroupBy, error) {
	if err := p.require(tokOpen); err != nil {
		return nil, err
	}
	p.bws()
	gb := &ast.GroupBy{}
	for {
		item, err := p.parseGroupingItem(scope)
		if err != nil {
			return nil, err
		}
		gb.Items = append(gb.Items, item)
		if !p.attemptComma() {
			break
		}
	}
	if err := p.requireClose(); err != nil {
		return nil, err
	}
	if p.attemptComma() {
		nested, err := p.parseApplySequence(scope)
		if err != nil {
			return nil, err
		}
		gb.Apply = nested
	}
	if err := p.requireClose(); err != nil {
		return nil, err
	}
	return gb, nil
}

// parseGroupingItem parses a grouping path or rollup().
func (p *parser) parseGroupingItem(scope *edm.StructuredType) (*ast.GroupingItem, error) {
	mark := p.mark()
	if !p.attemptKeyword("rollup") || !p.attempt(tokOpen) {
		p.reset(mark)
		path, err := p.parseGroupingPath(scope)
		if err != nil {
			return nil, err
		}
		return &ast.GroupingItem{Path: path}, nil
	}

	p.bws()
	item := &ast.GroupingItem{Rollup: []*ast.GroupingItem{}}
	if p.attemptKeyword("$all") {
		item.RollupAll = true
		if err := p.requireComma(); err != nil {
			return nil, err
		}
	}
	for {
		path, err := p.parseGroupingPath(scope)
		if err != nil {
			return nil, err
		}
		item.Rollup = append(item.Rollup, &ast.GroupingItem{Path: path})
		if !p.attemptComma() {
			break
		}
	}
	if err := p.requireClose(); err != nil {
		return nil, err
	}
	return item, nil
}

// parseGroupingPath parses a property path through navigation and complex
// properties, optionally cast, ending at any property.
func (p *parser) parseGroupingPath(st *edm.StructuredType) ([]ast.Resource, error) {
	var path []ast.Resource
	for {
		if err := p.require(tokIdentifier); err != nil {
			return nil, err
		}
		name, pos := p.text(), p.tokenPos()
		res, next := memberStep(st, name)
		if res == nil {
			prop := st.Property(name)
			if prop == nil {
				return nil, newError(KeyUnknownProperty, pos, name, st.String())
			}
			return append(path, &ast.Property{Property: prop}), nil
		}
		res, err := p.attemptPathCast(res, next)
		if err != nil {
			return nil, err
		}
		path = append(path, res)
		if !p.attempt(tokSlash) {
			return path, nil
		}
		st = structuredOf(res.Type())
	}
}

// parseComputeItems parses comma-separated "expression as Alias" items and
// adds each alias to scope.
func (p *parser) parseComputeItems(scope *edm.StructuredType) ([]*ast.ComputeItem, error) {
	var items []*ast.ComputeItem
	for {
		pos := p.position()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		typ := expr.Type()
		if typ != nil && typ.Kind() != edm.KindPrimitive && typ.Kind() != edm.KindEnum {
			return nil, newError(KeyTypeMismatch, pos, "compute", "a primitive value", typ.String())
		}
		if err := p.requireSpacedKeyword("as"); err != nil {
			return nil, err
		}
		if err := p.require(tokIdentifier); err != nil {
			return nil, err
		}
		item := &ast.ComputeItem{Expression: expr, Alias: p.text()}
		if err := addAlias(scope, item.Alias, typ, p.tokenPos()); err != nil {
			return nil, err
		}
		items = append(items, item)
		if !p.attemptComma() {
			return items, nil
		}
	}
}

// parseConcat parses two or more comma-separated pipelines, each applied
// to scope. Properties introduced by any branch are added to scope.
func (p *parser) parseConcat(scope *edm.StructuredType, pos int) (*ast.Concat, error) {
	concat := &ast.Concat{}
	for {
		branch, err := p.parseApplySequence(edm.NewDynamic(scope))
		if err != nil {
			return nil, err
		}
		concat.Branches = append(concat.Branches, branch)
		if !p.attemptComma() {
			break
		}
	}
	if err := p.requireClose(); err != nil {
		return nil, err
	}
	if len(concat.Branches) < 2 {
		return nil, newError(KeyWrongArity, pos, "concat", "at least 2", strconv.Itoa(len(concat.Branches)))
	}
	for _, branch := range concat.Branches {
		for _, prop := range branch.Type.DynamicProperties() {
			if !scope.HasMember(prop.Name) {
				if _, err := scope.AddDynamicProperty(prop.Name, prop.Type); err != nil {
					return nil, newError(KeyAliasExists, pos, prop.Name, scope.String())
				}
			}
		}
	}
	return concat, nil
}

// parseApplyExpand parses the path, optional filter and nested expands of
// expand().
func (p *parser) parseApplyExpand(st *edm.StructuredType) (*ast.ApplyExpand, error) {
	path, target, err := p.parseNavigationPath(st)
	if err != nil {
		return nil, err
	}
	expand := &ast.ApplyExpand{Path: path}
	for p.attemptComma() {
		pos := p.position()
		switch kw := p.nestedKeyword("filter", "expand"); kw {
		case "filter":
			if expand.Filter != nil {
				return nil, newError(KeyDuplicateOption, pos, "filter")
			}
			p.bws()
			restore := p.within(target)
			expand.Filter, err = p.parseBooleanExpression("filter", p.requireClose)
			restore()
			if err != nil {
				return nil, err
			}
		case "expand":
			p.bws()
			nested, err := p.parseApplyExpand(target)
			if err != nil {
				return nil, err
			}
			expand.Expands = append(expand.Expands, nested)
		default:
			return nil, p.expected("filter or expand")
		}
	}
	if err := p.requireClose(); err != nil {
		return nil, err
	}
	return expand, nil
}

// nestedKeyword consumes the first of kws followed by an opening
// parenthesis and returns it, or returns "" with the position untouched.
func (p *parser) nestedKeyword(kws ...string) string {
	for _, kw := range kws {
		mark := p.mark()
		if p.attemptKeyword(kw) && p.attempt(tokOpen) {
			return kw
		}
		p.reset(mark)
	}
	return ""
}

// parseNavigationPath parses complex properties ending in a navigation
// property, each optionally cast.
func (p *parser) parseNavigationPath(st *edm.StructuredType) ([]ast.Resource, *edm.StructuredType, error) {
	var path []ast.Resource
	for {
		if err := p.require(tokIdentifier); err != nil {
			return nil, nil, err
		}
		name, pos := p.text(), p.tokenPos()
		res, next := memberStep(st, name)
		if res == nil {
			if st.Property(name) == nil {
				return nil, nil, newError(KeyUnknownProperty, pos, name, st.String())
			}
			return nil, nil, newError(KeyTypeMismatch, pos, "expand", "a navigation property", name)
		}
		res, err := p.attemptPathCast(res, next)
		if err != nil {
			return nil, nil, err
		}
		path = append(path, res)
		next = structuredOf(res.Type())
		if _, ok := res.(*ast.Navigation); ok {
			return path, next, nil
		}
		if err := p.require(tokSlash); err != nil {
			return nil, nil, err
		}
		st = next
	}
}

// parseBottomTop parses the count or percentage and the value expression
// of a bottom or top transformation.
func (p *parser) parseBottomTop(method ast.BottomTopMethod) (*ast.BottomTop, error) {
	pos := p.position()
	n, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if typ := n.Type(); typ != nil && !edm.IsPrimitive(typ, integerKinds...) {
		return nil, newError(KeyTypeMismatch, pos, method.String(), kindNames(integerKinds), typ.String())
	}
	if err := p.requireComma(); err != nil {
		return nil, err
	}
	pos = p.position()
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if typ := value.Type(); typ != nil && !edm.IsNumeric(typ) {
		return nil, newError(KeyTypeMismatch, pos, method.String(), "a numeric value", typ.String())
	}
	if err := p.requireClose(); err != nil {
		return nil, err
	}
	return &ast.BottomTop{Method: method, N: n, Value: value}, nil
}

// parseCustomFunction parses a bound function applied to the collection
// of scope. The function must return a structured collection, whose type
// the following transformations see.
func (p *parser) parseCustomFunction(scope *edm.StructuredType, pos int) (ast.ApplyItem, *edm.StructuredType, error) {
	name := p.text()
	fqn := edm.NewFullQualifiedName(name)
	if len(p.model.BoundFunctions(fqn, scope.FullQualifiedName(), true)) == 0 {
		return nil, nil, newError(KeyUnknownFunction, pos, name, "")
	}
	params, err := p.parseParameters()
	if err != nil {
		return nil, nil, err
	}
	op := p.model.BoundFunction(fqn, scope.FullQualifiedName(), true, parameterNames(params))
	if op == nil {
		return nil, nil, newError(KeyUnknownFunction, pos, name, strings.Join(parameterNames(params), ","))
	}
	if err := p.bindParameters(op, params, pos); err != nil {
		return nil, nil, err
	}
	binding := op.BindingParameter()
	if binding == nil || !binding.Collection || structuredOf(binding.Type) == nil ||
		op.Return == nil || !op.Return.Collection || structuredOf(op.Return.Type) == nil {
		return nil, nil, newError(KeyInvalidBinding, pos, name)
	}
	return &ast.CustomFunction{Function: op, Parameters: params},
		edm.NewDynamic(structuredOf(op.Return.Type)), nil
}

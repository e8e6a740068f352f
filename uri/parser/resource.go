package parser

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/theory/odatauri/uri/ast"
	"github.com/theory/odatauri/uri/edm"
)

// parseResourcePath parses percent-decoded resource path segments. Error
// positions count bytes in the segments joined by slashes.
func (s *session) parseResourcePath(segments []string) ([]ast.Resource, error) {
	path := make([]ast.Resource, 0, len(segments))
	offset := 0
	for _, seg := range segments {
		if seg == "" {
			return nil, newError(KeyEmptySegment, offset)
		}
		var prev ast.Resource
		if len(path) > 0 {
			prev = path[len(path)-1]
		}
		res, replace, err := s.parseSegment(seg, offset, prev)
		if err != nil {
			return nil, err
		}
		if replace {
			path[len(path)-1] = res
		} else {
			path = append(path, res)
		}
		offset += len(seg) + 1
	}
	return path, nil
}

// parseSegment parses one segment following prev, which is nil for the
// first segment. When replace is true, res is a copy of prev narrowed by a
// type cast and replaces it.
func (s *session) parseSegment(text string, offset int, prev ast.Resource) (ast.Resource, bool, error) {
	p := s.newParser(text, offset, nil)
	if prev == nil {
		res, err := p.parseFirstSegment()
		if err == nil {
			err = p.requireEnd()
		}
		return res, false, err
	}

	if err := terminal(prev, offset); err != nil {
		return nil, false, err
	}
	res, replace, err := p.parseNextSegment(prev)
	if err == nil {
		err = p.requireEnd()
	}
	return res, replace, err
}

// terminal returns an error if no segment may follow prev.
func terminal(prev ast.Resource, pos int) error {
	switch prev := prev.(type) {
	case *ast.Count, *ast.Ref, *ast.Value, *ast.Action:
		return newError(KeyMustBeLast, pos, prev.String())
	case *ast.Function:
		if !prev.Function.Composable {
			return newError(KeyNotComposable, pos, prev.Function.Name.String())
		}
	}
	return nil
}

// parseFirstSegment parses an entity set, singleton, action import or
// function import.
func (p *parser) parseFirstSegment() (ast.Resource, error) {
	if p.attempt(tokQualifiedName) {
		return nil, newError(KeyQualifiedFirstSegment, p.tokenPos(), p.text())
	}
	if !p.attempt(tokIdentifier) {
		return nil, newError(KeyUnknownResource, p.position(), p.rest())
	}
	name, pos := p.text(), p.tokenPos()
	c := p.model.EntityContainer()

	if set := c.EntitySet(name); set != nil {
		res := &ast.EntitySet{Set: set}
		keys, err := p.parseKeys(set.Type)
		res.Keys = keys
		return res, err
	}
	if single := c.Singleton(name); single != nil {
		return &ast.Singleton{Singleton: single}, nil
	}
	if imp := c.ActionImport(name); imp != nil {
		return &ast.Action{Action: imp.Action, Import: imp}, nil
	}
	if imp := c.FunctionImport(name); imp != nil {
		params, err := p.parseParameters()
		if err != nil {
			return nil, err
		}
		op := p.model.UnboundFunction(imp.Function, parameterNames(params))
		if op == nil {
			return nil, newError(KeyUnknownFunction, pos, name, strings.Join(parameterNames(params), ","))
		}
		if err := p.bindParameters(op, params, pos); err != nil {
			return nil, err
		}
		res := &ast.Function{Function: op, Import: imp, Parameters: params}
		res.Keys, err = p.parseFunctionKeys(op)
		return res, err
	}
	return nil, newError(KeyUnknownResource, pos, name)
}

// parseNextSegment parses a segment following prev.
func (p *parser) parseNextSegment(prev ast.Resource) (ast.Resource, bool, error) {
	pos := p.position()
	typ, coll := prev.Type(), prev.IsCollection()

	if p.attempt(tokSystemName) {
		res, err := p.parseSystemSegment(prev, typ, coll)
		return res, false, err
	}

	if p.attempt(tokQualifiedName) {
		return p.parseQualifiedSegment(prev, typ, coll)
	}

	if !p.attempt(tokIdentifier) {
		return nil, false, newError(KeyUnexpected, pos, p.rest())
	}
	name := p.text()
	if coll {
		return nil, false, newError(KeyCollectionPath, pos, prev.String(), name)
	}
	st := structuredOf(typ)
	if st == nil {
		return nil, false, newError(KeyNotStructured, pos, typeName(typ))
	}
	if nav := st.NavigationProperty(name); nav != nil {
		res := &ast.Navigation{Property: nav}
		if nav.Collection {
			keys, err := p.parseKeys(nav.Target)
			if err != nil {
				return nil, false, err
			}
			res.Keys = keys
		}
		return res, false, nil
	}
	if prop := st.Property(name); prop != nil {
		return &ast.Property{Property: prop}, false, nil
	}
	return nil, false, newError(KeyUnknownProperty, pos, name, st.String())
}

// parseSystemSegment parses $ref, $value or $count following prev.
func (p *parser) parseSystemSegment(prev ast.Resource, typ edm.Type, coll bool) (ast.Resource, error) {
	pos := p.tokenPos()
	switch p.text() {
	case "$ref":
		if !isEntity(typ) {
			return nil, newError(KeyTypeMismatch, pos, "$ref", "an entity type", typeName(typ))
		}
		return &ast.Ref{Target: typ, Collection: coll}, nil
	case "$value":
		if coll {
			return nil, newError(KeyValueNotAllowed, pos, prev.String())
		}
		switch t := typ.(type) {
		case *edm.PrimitiveType, *edm.EnumType:
			return &ast.Value{Target: t}, nil
		case *edm.StructuredType:
			if t.IsEntity() && t.HasStream() {
				return &ast.Value{Target: edm.Primitive(edm.Stream)}, nil
			}
		}
		return nil, newError(KeyValueNotAllowed, pos, prev.String())
	case "$count":
		if !coll {
			return nil, newError(KeyNotCollection, pos, prev.String())
		}
		return &ast.Count{}, nil
	default:
		return nil, newError(KeyUnexpected, pos, p.text())
	}
}

// parseQualifiedSegment resolves a qualified name following prev as a
// bound action, then as a type cast, then as a bound function.
func (p *parser) parseQualifiedSegment(prev ast.Resource, typ edm.Type, coll bool) (ast.Resource, bool, error) {
	text, pos := p.text(), p.tokenPos()
	name := edm.NewFullQualifiedName(text)
	if typ == nil {
		return nil, false, newError(KeyUnknownResource, pos, text)
	}
	binding := typ.FullQualifiedName()

	if op := p.model.BoundAction(name, binding, coll); op != nil {
		return &ast.Action{Action: op}, false, nil
	}

	if st := p.model.StructuredType(name); st != nil {
		if filter := typeFilterOf(prev); filter != nil {
			return nil, false, newError(KeyDuplicateTypeFilter, pos, prev.String(), st.String())
		}
		if err := castTo(st, typ, pos); err != nil {
			return nil, false, err
		}
		res, ok := withTypeFilter(prev, st)
		if !ok {
			return nil, false, newError(KeyNotStructured, pos, typeName(typ))
		}
		if coll && p.peek() == '(' && !hasKeys(res) {
			keys, err := p.parseKeys(st)
			if err != nil {
				return nil, false, err
			}
			if res, ok = withKeys(res, keys); !ok {
				return nil, false, newError(KeyUnexpected, pos, p.rest())
			}
		}
		return res, true, nil
	}

	if ops := p.model.BoundFunctions(name, binding, coll); len(ops) > 0 {
		params, err := p.parseParameters()
		if err != nil {
			return nil, false, err
		}
		names := parameterNames(params)
		op := p.model.BoundFunction(name, binding, coll, names)
		if op == nil {
			return nil, false, newError(KeyUnknownFunction, pos, text, strings.Join(names, ","))
		}
		if err := p.bindParameters(op, params, pos); err != nil {
			return nil, false, err
		}
		res := &ast.Function{Function: op, Parameters: params}
		res.Keys, err = p.parseFunctionKeys(op)
		return res, false, err
	}

	return nil, false, newError(KeyUnknownResource, pos, text)
}

// parseFunctionKeys parses key predicates following a function that
// returns a collection of entities.
func (p *parser) parseFunctionKeys(op *edm.Operation) ([]*ast.KeyPredicate, error) {
	if op.Return == nil || !op.Return.Collection {
		return nil, nil
	}
	st := structuredOf(op.Return.Type)
	if st == nil || !st.IsEntity() {
		return nil, nil
	}
	return p.parseKeys(st)
}

// parseKeys parses optional key predicates for entity type st: a single
// unnamed value or a list of Name=value pairs.
func (p *parser) parseKeys(st *edm.StructuredType) ([]*ast.KeyPredicate, error) {
	if !p.attempt(tokOpen) {
		return nil, nil
	}
	open := p.tokenPos()
	props := st.KeyProperties()

	mark := p.mark()
	if !p.attempt(tokIdentifier) || !p.attempt(tokEqual) {
		p.reset(mark)
		value, err := p.parseKeyValue()
		if err != nil {
			return nil, err
		}
		if err := p.require(tokClose); err != nil {
			return nil, err
		}
		if len(props) != 1 {
			return nil, newError(KeyKeyCount, open, st.String(), strconv.Itoa(len(props)), "1")
		}
		key := &ast.KeyPredicate{Name: props[0].Name, Property: props[0], Value: value}
		if err := checkKey(key, open); err != nil {
			return nil, err
		}
		return []*ast.KeyPredicate{key}, nil
	}
	p.reset(mark)

	var keys []*ast.KeyPredicate
	seen := map[string]bool{}
	for {
		if err := p.require(tokIdentifier); err != nil {
			return nil, err
		}
		name, pos := p.text(), p.tokenPos()
		if seen[name] {
			return nil, newError(KeyDuplicateName, pos, name)
		}
		seen[name] = true
		prop := keyProperty(props, name)
		if prop == nil {
			return nil, newError(KeyUnknownKey, pos, name, st.String())
		}
		if err := p.require(tokEqual); err != nil {
			return nil, err
		}
		value, err := p.parseKeyValue()
		if err != nil {
			return nil, err
		}
		key := &ast.KeyPredicate{Name: name, Property: prop, Value: value}
		if err := checkKey(key, pos); err != nil {
			return nil, err
		}
		keys = append(keys, key)
		if !p.attempt(tokComma) {
			break
		}
	}
	if err := p.require(tokClose); err != nil {
		return nil, err
	}
	if len(keys) != len(props) {
		return nil, newError(KeyKeyCount, open, st.String(), strconv.Itoa(len(props)), strconv.Itoa(len(keys)))
	}
	return keys, nil
}

func keyProperty(props []*edm.Property, name string) *edm.Property {
	for _, prop := range props {
		if prop.Name == name {
			return prop
		}
	}
	return nil
}

// checkKey verifies that the key value fits the key property.
func checkKey(key *ast.KeyPredicate, pos int) error {
	if !edm.IsAssignable(key.Property.Type, key.Value.Type()) {
		return newError(KeyTypeMismatch, pos, key.Name, typeName(key.Property.Type), typeName(key.Value.Type()))
	}
	return nil
}

// parseParameters parses a parenthesized list of name=value function
// parameters.
func (p *parser) parseParameters() ([]*ast.Parameter, error) {
	if err := p.require(tokOpen); err != nil {
		return nil, err
	}
	p.bws()
	if p.attempt(tokClose) {
		return nil, nil
	}
	var params []*ast.Parameter
	seen := map[string]bool{}
	for {
		if err := p.require(tokIdentifier); err != nil {
			return nil, err
		}
		name := p.text()
		if seen[name] {
			return nil, newError(KeyDuplicateName, p.tokenPos(), name)
		}
		seen[name] = true
		p.bws()
		if err := p.require(tokEqual); err != nil {
			return nil, err
		}
		p.bws()
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		params = append(params, &ast.Parameter{Name: name, Value: value})
		if !p.attemptComma() {
			break
		}
	}
	if err := p.requireClose(); err != nil {
		return nil, err
	}
	return params, nil
}

func parameterNames(params []*ast.Parameter) []string {
	names := make([]string, len(params))
	for i, param := range params {
		names[i] = param.Name
	}
	return names
}

// bindParameters checks parameter values against the parameters of op and
// types JSON values with their parameter type.
func (p *parser) bindParameters(op *edm.Operation, params []*ast.Parameter, pos int) error {
	for _, param := range params {
		def := op.Parameter(param.Name)
		if def == nil {
			return newError(KeyUnknownFunction, pos, op.Name.String(), strings.Join(parameterNames(params), ","))
		}
		if lit, ok := param.Value.(*ast.Literal); ok {
			if raw, ok := lit.Value().(json.RawMessage); ok {
				if lit.IsCollection() != def.Collection {
					return newError(KeyTypeMismatch, pos, param.Name, parameterType(def), lit.Text())
				}
				param.Value = ast.NewJSONLiteral(lit.Text(), def.Type, def.Collection, raw)
				continue
			}
		}
		typ := param.Value.Type()
		if typ == nil {
			continue
		}
		if !edm.IsAssignable(def.Type, typ) || param.Value.IsCollection() != def.Collection {
			got := typ.String()
			if param.Value.IsCollection() {
				got = "Collection(" + got + ")"
			}
			return newError(KeyTypeMismatch, pos, param.Name, parameterType(def), got)
		}
	}
	return nil
}

// parameterType describes the type of def in error messages.
func parameterType(def *edm.Parameter) string {
	if def.Collection {
		return "Collection(" + typeName(def.Type) + ")"
	}
	return typeName(def.Type)
}

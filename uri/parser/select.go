package parser

import (
	"strings"

	"github.com/theory/odatauri/uri/ast"
	"github.com/theory/odatauri/uri/edm"
)

// parseSelect parses a $select value against st.
func (p *parser) parseSelect(st *edm.StructuredType) (*ast.SelectOption, error) {
	if st == nil {
		return nil, newError(KeyNotStructured, p.position(), typeName(nil))
	}
	opt := &ast.SelectOption{}
	for {
		item, err := p.parseSelectItem(st)
		if err != nil {
			return nil, err
		}
		opt.Items = append(opt.Items, item)
		if !p.attemptComma() {
			break
		}
	}
	if err := p.requireEnd(); err != nil {
		return nil, err
	}
	return opt, nil
}

// parseSelectItem parses *, Namespace.*, a type cast with an optional
// path, a bound operation, or a property path.
func (p *parser) parseSelectItem(st *edm.StructuredType) (*ast.SelectItem, error) {
	if p.attempt(tokStar) {
		return &ast.SelectItem{Star: true}, nil
	}

	mark := p.mark()
	if p.attempt(tokQualifiedName) || p.attempt(tokIdentifier) {
		ns, pos := p.text(), p.tokenPos()
		if p.attemptText(".*") {
			if !p.model.HasNamespace(ns) {
				return nil, newError(KeyUnknownNamespace, pos, ns)
			}
			return &ast.SelectItem{AllOperationsInSchema: ns}, nil
		}
	}
	p.reset(mark)

	if p.attempt(tokQualifiedName) {
		name, pos := p.text(), p.tokenPos()
		fqn := edm.NewFullQualifiedName(name)
		if op := p.model.BoundAction(fqn, st.FullQualifiedName(), false); op != nil {
			return &ast.SelectItem{Path: []ast.Resource{&ast.Action{Action: op}}}, nil
		}
		if ops := p.model.BoundFunctions(fqn, st.FullQualifiedName(), false); len(ops) > 0 {
			fn, err := p.parseSelectFunction(fqn, st, ops, pos)
			if err != nil {
				return nil, err
			}
			return &ast.SelectItem{Path: []ast.Resource{fn}}, nil
		}
		cast := p.model.StructuredType(fqn)
		if cast == nil {
			return nil, newError(KeyUnknownType, pos, name)
		}
		if err := castTo(cast, st, pos); err != nil {
			return nil, err
		}
		item := &ast.SelectItem{TypeFilter: cast}
		if p.attempt(tokSlash) {
			path, err := p.parseSelectPath(cast)
			if err != nil {
				return nil, err
			}
			item.Path = path
		}
		return item, nil
	}

	path, err := p.parseSelectPath(st)
	if err != nil {
		return nil, err
	}
	return &ast.SelectItem{Path: path}, nil
}

// parseSelectFunction parses the optional parenthesized parameter names
// that pick an overload of a bound function in $select. Without names, the
// overload without parameters is preferred.
func (p *parser) parseSelectFunction(
	fqn edm.FullQualifiedName, st *edm.StructuredType, ops []*edm.Operation, pos int,
) (*ast.Function, error) {
	var op *edm.Operation
	if p.attempt(tokOpen) {
		var names []string
		if !p.attempt(tokClose) {
			for {
				if err := p.require(tokIdentifier); err != nil {
					return nil, err
				}
				names = append(names, p.text())
				if !p.attempt(tokComma) {
					break
				}
			}
			if err := p.require(tokClose); err != nil {
				return nil, err
			}
		}
		if op = p.model.BoundFunction(fqn, st.FullQualifiedName(), false, names); op == nil {
			return nil, newError(KeyUnknownFunction, pos, fqn.String(), strings.Join(names, ","))
		}
	} else {
		op = ops[0]
		for _, o := range ops {
			if len(o.ParameterNames()) == 0 {
				op = o
				break
			}
		}
	}

	fn := &ast.Function{Function: op}
	for _, name := range op.ParameterNames() {
		fn.Parameters = append(fn.Parameters, &ast.Parameter{Name: name})
	}
	return fn, nil
}

// parseSelectPath parses a property path. Complex properties, optionally
// cast, continue the path; navigation and other properties end it.
func (p *parser) parseSelectPath(st *edm.StructuredType) ([]ast.Resource, error) {
	var path []ast.Resource
	for {
		if err := p.require(tokIdentifier); err != nil {
			return nil, err
		}
		name, pos := p.text(), p.tokenPos()
		if nav := st.NavigationProperty(name); nav != nil {
			return append(path, &ast.Navigation{Property: nav}), nil
		}
		prop := st.Property(name)
		if prop == nil {
			return nil, newError(KeyUnknownProperty, pos, name, st.String())
		}
		var res ast.Resource = &ast.Property{Property: prop}
		complexType := structuredOf(prop.Type)
		if complexType == nil || !p.attempt(tokSlash) {
			return append(path, res), nil
		}

		mark := p.mark()
		if p.attempt(tokQualifiedName) {
			cast := p.model.StructuredType(edm.NewFullQualifiedName(p.text()))
			if cast == nil {
				return nil, newError(KeyUnknownType, p.tokenPos(), p.text())
			}
			if err := castTo(cast, complexType, p.tokenPos()); err != nil {
				return nil, err
			}
			res, _ = withTypeFilter(res, cast)
			complexType = cast
			if !p.attempt(tokSlash) {
				return append(path, res), nil
			}
		} else {
			p.reset(mark)
		}
		path = append(path, res)
		st = complexType
	}
}

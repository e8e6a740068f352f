package parser

import (
	"github.com/theory/odatauri/uri/ast"
	"github.com/theory/odatauri/uri/edm"
)

// parseExpand parses an $expand value against st.
func (p *parser) parseExpand(st *edm.StructuredType) (*ast.ExpandOption, error) {
	if st == nil {
		return nil, newError(KeyNotStructured, p.position(), typeName(nil))
	}
	opt := &ast.ExpandOption{}
	for {
		item, err := p.parseExpandItem(st)
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

// parseExpandItem parses * or an expand path, then any nested options.
func (p *parser) parseExpandItem(st *edm.StructuredType) (*ast.ExpandItem, error) {
	if p.attempt(tokStar) {
		item := &ast.ExpandItem{Star: true}
		if p.attemptText("/$ref") {
			item.IsRef = true
			return item, nil
		}
		return item, p.parseNestedOptions(item, st, false, starScope)
	}

	item := &ast.ExpandItem{}
	typ := st
	mark := p.mark()
	if p.attempt(tokQualifiedName) {
		cast := p.model.StructuredType(edm.NewFullQualifiedName(p.text()))
		if cast == nil {
			return nil, newError(KeyUnknownType, p.tokenPos(), p.text())
		}
		if err := castTo(cast, st, p.tokenPos()); err != nil {
			return nil, err
		}
		if err := p.require(tokSlash); err != nil {
			return nil, err
		}
		item.TypeFilter = cast
		typ = cast
	} else {
		p.reset(mark)
	}

	for {
		if err := p.require(tokIdentifier); err != nil {
			return nil, err
		}
		name, pos := p.text(), p.tokenPos()

		if nav := typ.NavigationProperty(name); nav != nil {
			var res ast.Resource = &ast.Navigation{Property: nav}
			res, err := p.attemptPathCast(res, nav.Target)
			if err != nil {
				return nil, err
			}
			item.Path = append(item.Path, res)
			switch {
			case p.attemptText("/$ref"):
				item.IsRef = true
				return item, p.parseNestedOptions(item, res.Type(), res.IsCollection(), refScope)
			case p.attemptText("/$count"):
				if !nav.Collection {
					return nil, newError(KeyNotCollection, p.tokenPos(), nav.Name)
				}
				item.IsCount = true
				return item, p.parseNestedOptions(item, res.Type(), true, countScope)
			}
			return item, p.parseNestedOptions(item, res.Type(), res.IsCollection(), expandScope)
		}

		prop := typ.Property(name)
		if prop == nil {
			return nil, newError(KeyUnknownProperty, pos, name, typ.String())
		}
		if edm.IsPrimitive(prop.Type, edm.Stream) {
			item.Path = append(item.Path, &ast.Property{Property: prop})
			return item, nil
		}
		complexType := structuredOf(prop.Type)
		if complexType == nil {
			return nil, newError(KeyTypeMismatch, pos, "$expand", "a navigation or stream property", name)
		}
		var res ast.Resource = &ast.Property{Property: prop}
		res, err := p.attemptPathCast(res, complexType)
		if err != nil {
			return nil, err
		}
		item.Path = append(item.Path, res)
		if err := p.require(tokSlash); err != nil {
			return nil, err
		}
		typ = structuredOf(res.Type())
	}
}

// attemptPathCast parses an optional "/Namespace.Type" cast of res, whose
// type is st.
func (p *parser) attemptPathCast(res ast.Resource, st *edm.StructuredType) (ast.Resource, error) {
	mark := p.mark()
	if !p.attempt(tokSlash) || !p.attempt(tokQualifiedName) {
		p.reset(mark)
		return res, nil
	}
	cast := p.model.StructuredType(edm.NewFullQualifiedName(p.text()))
	if cast == nil {
		return nil, newError(KeyUnknownType, p.tokenPos(), p.text())
	}
	if err := castTo(cast, st, p.tokenPos()); err != nil {
		return nil, err
	}
	narrowed, _ := withTypeFilter(res, cast)
	return narrowed, nil
}

// parseNestedOptions parses parenthesized, semicolon-separated options
// applied to the expanded value of type typ, if present.
func (p *parser) parseNestedOptions(item *ast.ExpandItem, typ edm.Type, coll bool, scope optionScope) error {
	if p.peek() != '(' {
		return nil
	}
	text, offset, err := p.nestedText()
	if err != nil {
		return err
	}
	opts, err := splitNestedOptions(text, offset)
	if err != nil {
		return err
	}
	q, err := p.parseQueryOptions(opts, typ, coll, scope)
	if err != nil {
		return err
	}
	q.fillItem(item)
	return nil
}

// nestedText consumes a parenthesized group and returns its contents and
// their position. Parentheses within quotes do not count.
func (p *parser) nestedText() (string, int, error) {
	open := p.position()
	p.attempt(tokOpen)
	start := p.mark()
	rest := p.rest()
	depth := 1
	var quotes quoteState
	for i := range len(rest) {
		switch ch := rest[i]; {
		case quotes.quoted(ch):
		case ch == '(':
			depth++
		case ch == ')':
			depth--
			if depth == 0 {
				p.reset(start + i + 1)
				return rest[:i], open + 1, nil
			}
		}
	}
	return "", 0, newError(KeyExpected, p.offset+len(p.src), tokClose.String())
}

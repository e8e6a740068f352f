package parser

import (
	"github.com/theory/odatauri/uri/ast"
)

// parseOrderBy parses an $orderby value: comma-separated expressions, each
// optionally followed by asc or desc.
func (p *parser) parseOrderBy() (*ast.OrderByOption, error) {
	opt := &ast.OrderByOption{}
	for {
		pos := p.position()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if expr.IsCollection() {
			return nil, newError(KeyTypeMismatch, pos, "$orderby", "a single value", "a collection")
		}
		item := &ast.OrderByItem{Expression: expr}

		mark := p.mark()
		switch {
		case !p.attempt(tokWS):
		case p.attemptKeyword("desc"):
			item.Descending = true
		case p.attemptKeyword("asc"):
		default:
			p.reset(mark)
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

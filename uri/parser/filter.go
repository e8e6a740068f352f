package parser

import (
	"github.com/theory/odatauri/uri/ast"
)

// parseFilter parses a $filter value. The expression must be Boolean or
// untyped.
func (p *parser) parseFilter() (*ast.FilterOption, error) {
	expr, err := p.parseBooleanExpression("$filter", p.requireEnd)
	if err != nil {
		return nil, err
	}
	return &ast.FilterOption{Expression: expr}, nil
}

// parseBooleanExpression parses an expression followed by whatever end
// consumes, then checks that the expression is Boolean or untyped. what
// names the construct in errors.
func (p *parser) parseBooleanExpression(what string, end func() error) (ast.Expression, error) {
	pos := p.position()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := end(); err != nil {
		return nil, err
	}
	if !isBoolean(expr.Type()) || expr.IsCollection() {
		return nil, newError(KeyTypeMismatch, pos, what, "Edm.Boolean", typeName(expr.Type()))
	}
	return expr, nil
}

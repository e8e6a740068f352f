package parser

import (
	"strings"

	"github.com/theory/odatauri/uri/ast"
)

// parseSearch parses a $search value.
func (p *parser) parseSearch() (*ast.SearchOption, error) {
	p.bws()
	expr, err := p.parseSearchOr()
	if err != nil {
		return nil, err
	}
	p.bws()
	if err := p.requireEnd(); err != nil {
		return nil, err
	}
	return &ast.SearchOption{Expression: expr}, nil
}

func (p *parser) parseSearchOr() (ast.Search, error) {
	left, err := p.parseSearchAnd()
	if err != nil {
		return nil, err
	}
	for p.attemptSpacedKeyword("OR") {
		right, err := p.parseSearchAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.SearchBinary{Operator: ast.SearchOr, Left: left, Right: right}
	}
	return left, nil
}

// parseSearchAnd parses terms joined by AND or by whitespace alone.
func (p *parser) parseSearchAnd() (ast.Search, error) {
	left, err := p.parseSearchNot()
	if err != nil {
		return nil, err
	}
	for {
		mark := p.mark()
		if !p.attempt(tokWS) {
			return left, nil
		}
		switch {
		case p.attemptKeyword("AND"):
			if !p.attempt(tokWS) {
				p.reset(mark)
				return left, nil
			}
		case p.done(), p.peek() == ')', p.attemptKeyword("OR"):
			p.reset(mark)
			return left, nil
		}
		right, err := p.parseSearchNot()
		if err != nil {
			return nil, err
		}
		left = &ast.SearchBinary{Operator: ast.SearchAnd, Left: left, Right: right}
	}
}

func (p *parser) parseSearchNot() (ast.Search, error) {
	mark := p.mark()
	if p.attemptKeyword("NOT") {
		if p.attempt(tokWS) {
			operand, err := p.parseSearchNot()
			if err != nil {
				return nil, err
			}
			return &ast.SearchUnary{Operand: operand}, nil
		}
		p.reset(mark)
	}
	return p.parseSearchPrimary()
}

// parseSearchPrimary parses a parenthesized expression, a phrase or a
// word.
func (p *parser) parseSearchPrimary() (ast.Search, error) {
	if p.attempt(tokOpen) {
		p.bws()
		expr, err := p.parseSearchOr()
		if err != nil {
			return nil, err
		}
		if err := p.requireClose(); err != nil {
			return nil, err
		}
		return expr, nil
	}
	if p.attempt(tokSearchPhrase) {
		return &ast.SearchTerm{Text: unescapePhrase(p.text()), Phrase: true}, nil
	}
	if p.attempt(tokSearchWord) {
		return &ast.SearchTerm{Text: p.text()}, nil
	}
	return nil, p.expected("search term")
}

// unescapePhrase strips the quotes from a search phrase matched by the
// tokenizer and collapses its \", "" and \\ escapes.
func unescapePhrase(text string) string {
	body := text[1 : len(text)-1]
	if !strings.ContainsAny(body, `\"`) {
		return body
	}
	b := new(strings.Builder)
	for i := 0; i < len(body); i++ {
		if (body[i] == '\\' || body[i] == '"') && i+1 < len(body) {
			i++
		}
		b.WriteByte(body[i])
	}
	return b.String()
}

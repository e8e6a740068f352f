package parser

import (
	"strconv"
	"strings"

	"github.com/theory/odatauri/uri/ast"
	"github.com/theory/odatauri/uri/edm"
)

// expected returns a syntax error at the current position naming what was
// expected.
func (p *parser) expected(what string) *Error {
	return newError(KeyExpected, p.position(), what)
}

// require consumes a token of kind or returns a syntax error naming it.
func (p *parser) require(kind tokenKind) error {
	if !p.attempt(kind) {
		return p.expected(kind.String())
	}
	return nil
}

// requireText consumes s or returns a syntax error naming it.
func (p *parser) requireText(s string) error {
	if !p.attemptText(s) {
		return p.expected(strconv.Quote(s))
	}
	return nil
}

// requireEnd returns a syntax error unless all input has been consumed.
func (p *parser) requireEnd() error {
	if p.done() {
		return nil
	}
	return newError(KeyUnexpected, p.position(), p.rest())
}

// first attempts each kind in order and returns the first that matches.
func (p *parser) first(kinds ...tokenKind) (tokenKind, bool) {
	for _, kind := range kinds {
		if p.attempt(kind) {
			return kind, true
		}
	}
	return 0, false
}

// bws skips optional whitespace.
func (p *parser) bws() { p.attempt(tokWS) }

// attemptSpacedKeyword matches kw surrounded by required whitespace, as in
// " as " or " with ". On failure the position is untouched.
func (p *parser) attemptSpacedKeyword(kw string) bool {
	mark := p.mark()
	if p.attempt(tokWS) && p.attemptKeyword(kw) && p.attempt(tokWS) {
		return true
	}
	p.reset(mark)
	return false
}

// requireSpacedKeyword consumes " kw " or returns a syntax error naming kw.
func (p *parser) requireSpacedKeyword(kw string) error {
	if !p.attemptSpacedKeyword(kw) {
		return p.expected(strconv.Quote(kw))
	}
	return nil
}

// requireComma consumes a comma surrounded by optional whitespace.
func (p *parser) requireComma() error {
	p.bws()
	if err := p.require(tokComma); err != nil {
		return err
	}
	p.bws()
	return nil
}

// attemptComma consumes a comma surrounded by optional whitespace. On
// failure the position is untouched.
func (p *parser) attemptComma() bool {
	mark := p.mark()
	p.bws()
	if p.attempt(tokComma) {
		p.bws()
		return true
	}
	p.reset(mark)
	return false
}

// attemptClose consumes a closing parenthesis preceded by optional
// whitespace. On failure the position is untouched.
func (p *parser) attemptClose() bool {
	mark := p.mark()
	p.bws()
	if p.attempt(tokClose) {
		return true
	}
	p.reset(mark)
	return false
}

// requireClose consumes a closing parenthesis preceded by optional
// whitespace.
func (p *parser) requireClose() error {
	if !p.attemptClose() {
		return p.expected(tokClose.String())
	}
	return nil
}

// parseBounded parses text as an unsigned decimal integer no greater than
// maxValue. Signs are not allowed.
func parseBounded(text string, maxValue int64) (int64, bool) {
	if text == "" {
		return 0, false
	}
	for i := range len(text) {
		if !isDigit(text[i]) {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil || n > maxValue {
		return 0, false
	}
	return n, true
}

// parseSigned parses text as an optionally negative decimal integer within
// the Int32 range.
func parseSigned(text string) (int64, bool) {
	if n, ok := parseBounded(strings.TrimPrefix(text, "-"), 1<<31); ok {
		if strings.HasPrefix(text, "-") {
			return -n, true
		}
		if n < 1<<31 {
			return n, true
		}
	}
	return 0, false
}

// typeName describes typ in error messages.
func typeName(typ edm.Type) string {
	if typ == nil {
		return "untyped"
	}
	return typ.String()
}

// structuredOf returns typ as a structured type, or nil.
func structuredOf(typ edm.Type) *edm.StructuredType {
	st, _ := typ.(*edm.StructuredType)
	return st
}

// typeOf returns st as an edm.Type, mapping a nil pointer to a nil
// interface.
func typeOf(st *edm.StructuredType) edm.Type {
	if st == nil {
		return nil
	}
	return st
}

// isEntity reports whether typ is an entity type.
func isEntity(typ edm.Type) bool {
	st := structuredOf(typ)
	return st != nil && st.IsEntity()
}

// typeFilterOf returns the type filter of r, or nil if r has none or
// cannot carry one.
func typeFilterOf(r ast.Resource) *edm.StructuredType {
	switch r := r.(type) {
	case *ast.EntitySet:
		return r.TypeFilter
	case *ast.Singleton:
		return r.TypeFilter
	case *ast.Navigation:
		return r.TypeFilter
	case *ast.Property:
		return r.TypeFilter
	case *ast.Function:
		return r.TypeFilter
	case *ast.It:
		return r.TypeFilter
	case *ast.LambdaVariable:
		return r.TypeFilter
	default:
		return nil
	}
}

// withTypeFilter returns a copy of r narrowed to st, or false if r cannot
// carry a type filter.
func withTypeFilter(r ast.Resource, st *edm.StructuredType) (ast.Resource, bool) {
	switch r := r.(type) {
	case *ast.EntitySet:
		c := *r
		c.TypeFilter = st
		return &c, true
	case *ast.Singleton:
		c := *r
		c.TypeFilter = st
		return &c, true
	case *ast.Navigation:
		c := *r
		c.TypeFilter = st
		return &c, true
	case *ast.Property:
		if !r.IsComplex() {
			return nil, false
		}
		c := *r
		c.TypeFilter = st
		return &c, true
	case *ast.Function:
		c := *r
		c.TypeFilter = st
		return &c, true
	case *ast.It:
		c := *r
		c.TypeFilter = st
		return &c, true
	case *ast.LambdaVariable:
		c := *r
		c.TypeFilter = st
		return &c, true
	default:
		return nil, false
	}
}

// withKeys returns a copy of r with key predicates, or false if r cannot
// carry them.
func withKeys(r ast.Resource, keys []*ast.KeyPredicate) (ast.Resource, bool) {
	switch r := r.(type) {
	case *ast.EntitySet:
		c := *r
		c.Keys = keys
		return &c, true
	case *ast.Navigation:
		c := *r
		c.Keys = keys
		return &c, true
	case *ast.Function:
		c := *r
		c.Keys = keys
		return &c, true
	default:
		return nil, false
	}
}

// hasKeys reports whether r already carries key predicates.
func hasKeys(r ast.Resource) bool {
	switch r := r.(type) {
	case *ast.EntitySet:
		return len(r.Keys) > 0
	case *ast.Navigation:
		return len(r.Keys) > 0
	case *ast.Function:
		return len(r.Keys) > 0
	default:
		return false
	}
}

// castTo checks that st is a type filter that may narrow typ, the current
// type of a node without a filter.
func castTo(st *edm.StructuredType, typ edm.Type, pos int) error {
	cur := structuredOf(typ)
	if cur == nil {
		return newError(KeyNotStructured, pos, typeName(typ))
	}
	if !st.CompatibleTo(cur) {
		return newError(KeyIncompatibleType, pos, st.String(), cur.String())
	}
	return nil
}

// Package parser parses OData resource paths and system query options into
// the typed trees of package ast, validating them against an EDM model.
//
// The parser is hand-written recursive descent over a backtracking
// tokenizer. Each call creates its own parse state, so a single [Parser]
// may serve any number of goroutines as long as its model is not mutated.
// Parsing stops at the first error, which is always an [*Error] wrapping
// [ErrSyntax] or [ErrSemantic].
package parser

import (
	"io"
	"slices"

	"github.com/sirupsen/logrus"
	"github.com/theory/odatauri/uri/ast"
	"github.com/theory/odatauri/uri/edm"
	"golang.org/x/exp/maps"
)

// Parser parses requests against a model.
type Parser struct {
	model     edm.Model
	log       logrus.FieldLogger
	aliases   map[string]string
	crossjoin []string
}

// Option specifies a parser option.
type Option func(*Parser)

// WithLogger sends debug traces of request and option dispatch to log. The
// default logger discards everything.
func WithLogger(log logrus.FieldLogger) Option { return func(p *Parser) { p.log = log } }

// WithAliases pre-seeds parameter alias values, keyed by name without the
// @. Aliases in a request's query override them.
func WithAliases(aliases map[string]string) Option {
	return func(p *Parser) { p.aliases = aliases }
}

// WithCrossjoin names the entity sets that may start member paths when
// parsing options outside of a $crossjoin request.
func WithCrossjoin(sets ...string) Option {
	return func(p *Parser) { p.crossjoin = sets }
}

// New creates a parser for model.
func New(model edm.Model, opt ...Option) *Parser {
	p := &Parser{model: model}
	for _, o := range opt {
		o(p)
	}
	if p.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		p.log = l
	}
	return p
}

// QueryParam is one decoded name/value pair of a query string.
type QueryParam struct {
	Name  string
	Value string
}

// session holds the state of one top-level parse: the alias table and the
// crossjoin scope. It is never shared between parses.
type session struct {
	model     edm.Model
	log       logrus.FieldLogger
	aliasText map[string]string
	aliases   map[string]ast.Expression
	resolving map[string]bool
	aliasIt   edm.Type
	crossjoin []string
}

func (p *Parser) session() *session {
	s := &session{
		model:     p.model,
		log:       p.log,
		aliasText: map[string]string{},
		aliases:   map[string]ast.Expression{},
		resolving: map[string]bool{},
		crossjoin: p.crossjoin,
	}
	for name, text := range p.aliases {
		s.aliasText[name] = text
	}
	return s
}

// parser parses one string. it is the type of $it, the instance that
// member paths resolve against, and lambdas is the stack of range
// variables in scope.
type parser struct {
	*session
	*tokenizer
	it      edm.Type
	lambdas []lambdaVariable
}

// lambdaVariable is a range variable in scope.
type lambdaVariable struct {
	name string
	typ  edm.Type
}

// newParser creates a parser for text, which starts at offset in the text
// reported in errors, with $it of type it.
func (s *session) newParser(text string, offset int, it edm.Type) *parser {
	return &parser{session: s, tokenizer: newTokenizer(text, offset), it: it}
}

// resolveAlias parses the value of the alias named name on first use and
// caches it for the rest of the session. $it in the value refers to aliasIt,
// the type addressed by the resource path, wherever the alias is used; an
// alias first used in a key predicate sees an untyped $it. An alias without
// a value resolves to nil.
func (s *session) resolveAlias(name string, pos int) (ast.Expression, error) {
	if expr, ok := s.aliases[name]; ok {
		return expr, nil
	}
	text, ok := s.aliasText[name]
	if !ok {
		return nil, nil
	}
	if s.resolving[name] {
		return nil, newError(KeyAliasCycle, pos, name)
	}
	s.resolving[name] = true
	defer delete(s.resolving, name)

	p := s.newParser(text, 0, s.aliasIt)
	expr, err := p.parseExpression()
	if err == nil {
		err = p.requireEnd()
	}
	if err != nil {
		return nil, err
	}
	s.aliases[name] = expr
	return expr, nil
}

// Parse parses a request given as percent-decoded path segments, relative
// to the service root, and query parameters. Each parameter alias is parsed
// once, with $it referring to the type addressed by the path, including
// where the alias appears inside $expand or $apply.
func (p *Parser) Parse(segments []string, params []QueryParam) (*ast.Info, error) {
	s := p.session()
	custom, opts, err := s.collect(params)
	if err != nil {
		return nil, err
	}

	info := &ast.Info{}
	typ, coll, err := s.dispatch(info, segments)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"kind":     info.Kind.String(),
		"segments": len(segments),
		"options":  len(opts),
	}).Debug("dispatched request")

	s.aliasIt = typ
	names := maps.Keys(s.aliasText)
	slices.Sort(names)
	for _, name := range names {
		expr, err := s.resolveAlias(name, 0)
		if err != nil {
			return nil, err
		}
		if info.Aliases == nil {
			info.Aliases = map[string]ast.Expression{}
		}
		info.Aliases[name] = expr
	}
	if len(custom) > 0 {
		info.CustomOptions = custom
	}

	q, err := s.parseQueryOptions(opts, typ, coll, topLevel)
	if err != nil {
		return nil, err
	}
	q.fillInfo(info)

	if info.Kind == ast.KindEntity && info.ID == "" {
		return nil, newError(KeyMissingOption, 0, "$entity", "$id")
	}
	return info, nil
}

// collect sorts query parameters into custom options, alias values and
// system query options.
func (s *session) collect(params []QueryParam) (map[string]string, []rawOption, error) {
	custom := map[string]string{}
	seen := map[string]bool{}
	var opts []rawOption
	for _, param := range params {
		switch {
		case len(param.Name) > 1 && param.Name[0] == '@':
			name := param.Name[1:]
			if seen[param.Name] {
				return nil, nil, newError(KeyDuplicateAlias, 0, name)
			}
			seen[param.Name] = true
			s.aliasText[name] = param.Value
		case len(param.Name) > 0 && param.Name[0] == '$':
			opts = append(opts, rawOption{name: param.Name, value: param.Value})
		default:
			if _, ok := custom[param.Name]; !ok {
				custom[param.Name] = param.Value
			}
		}
	}
	return custom, opts, nil
}

// ParseResourcePath parses percent-decoded resource path segments.
func (p *Parser) ParseResourcePath(segments []string) ([]ast.Resource, error) {
	return p.session().parseResourcePath(segments)
}

// ParseExpression parses a common expression with $it of type typ.
func (p *Parser) ParseExpression(text string, typ edm.Type) (ast.Expression, error) {
	s := p.session()
	s.aliasIt = typ
	parser := s.newParser(text, 0, typ)
	expr, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := parser.requireEnd(); err != nil {
		return nil, err
	}
	return expr, nil
}

// ParseFilter parses a $filter value against typ.
func (p *Parser) ParseFilter(text string, typ edm.Type) (*ast.FilterOption, error) {
	s := p.session()
	s.aliasIt = typ
	return s.newParser(text, 0, typ).parseFilter()
}

// ParseOrderBy parses an $orderby value against typ.
func (p *Parser) ParseOrderBy(text string, typ edm.Type) (*ast.OrderByOption, error) {
	s := p.session()
	s.aliasIt = typ
	return s.newParser(text, 0, typ).parseOrderBy()
}

// ParseSelect parses a $select value against typ.
func (p *Parser) ParseSelect(text string, typ *edm.StructuredType) (*ast.SelectOption, error) {
	return p.session().newParser(text, 0, typeOf(typ)).parseSelect(typ)
}

// ParseExpand parses an $expand value against typ.
func (p *Parser) ParseExpand(text string, typ *edm.StructuredType) (*ast.ExpandOption, error) {
	s := p.session()
	s.aliasIt = typeOf(typ)
	return s.newParser(text, 0, typeOf(typ)).parseExpand(typ)
}

// ParseApply parses an $apply value against typ. The result's Type is a
// dynamic type extending typ with every alias the pipeline introduces.
func (p *Parser) ParseApply(text string, typ *edm.StructuredType) (*ast.ApplyOption, error) {
	s := p.session()
	s.aliasIt = typeOf(typ)
	return s.newParser(text, 0, typeOf(typ)).parseApply(typ)
}

// ParseCompute parses a $compute value against typ. It returns the option
// and a dynamic type extending typ with the computed properties.
func (p *Parser) ParseCompute(text string, typ *edm.StructuredType) (*ast.ComputeOption, *edm.StructuredType, error) {
	s := p.session()
	s.aliasIt = typeOf(typ)
	return s.newParser(text, 0, typeOf(typ)).parseCompute(typ)
}

// ParseSearch parses a $search value.
func (p *Parser) ParseSearch(text string) (*ast.SearchOption, error) {
	return p.session().newParser(text, 0, nil).parseSearch()
}

package parser

import (
	"math"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/theory/odatauri/uri/ast"
	"github.com/theory/odatauri/uri/edm"
)

// rawOption is an unparsed system query option. offset is the position of
// value in the text reported in errors.
type rawOption struct {
	name   string
	value  string
	offset int
}

// optionScope identifies where a set of system query options appears.
type optionScope int

const (
	topLevel    optionScope = iota // the request query
	expandScope                    // nested in an $expand item
	refScope                       // nested in an $expand item ending in /$ref
	countScope                     // nested in an $expand item ending in /$count
	starScope                      // nested in an $expand * item
)

// where describes s in errors.
func (s optionScope) where() string {
	switch s {
	case expandScope:
		return "in $expand"
	case refScope:
		return "with /$ref"
	case countScope:
		return "with /$count"
	case starScope:
		return "with *"
	default:
		return "here"
	}
}

// optionOrder lists the system query options in the order they are parsed.
// $apply and $compute come first because they change the type the others
// resolve against.
//
//nolint:gochecknoglobals
var optionOrder = []string{
	"$apply", "$compute", "$filter", "$search", "$orderby", "$skip", "$top",
	"$index", "$count", "$select", "$expand", "$format", "$id", "$skiptoken",
	"$deltatoken", "$levels",
}

// allowed reports whether the option named name may appear in s.
func (s optionScope) allowed(name string) bool {
	switch s {
	case topLevel:
		return name != "$levels"
	case expandScope:
		switch name {
		case "$index", "$format", "$id", "$skiptoken", "$deltatoken":
			return false
		}
		return true
	case refScope:
		switch name {
		case "$filter", "$search", "$orderby", "$skip", "$top", "$count":
			return true
		}
	case countScope:
		return name == "$filter" || name == "$search"
	case starScope:
		return name == "$levels"
	}
	return false
}

// queryOptions holds parsed system query options.
type queryOptions struct {
	apply      *ast.ApplyOption
	compute    *ast.ComputeOption
	filter     *ast.FilterOption
	search     *ast.SearchOption
	orderBy    *ast.OrderByOption
	selects    *ast.SelectOption
	expand     *ast.ExpandOption
	top        *int
	skip       *int
	index      *int
	count      *bool
	levels     *ast.Levels
	format     string
	id         string
	skipToken  string
	deltaToken string
}

// fillInfo copies the options to info.
func (q *queryOptions) fillInfo(info *ast.Info) {
	info.Apply = q.apply
	info.Compute = q.compute
	info.Filter = q.filter
	info.Search = q.search
	info.OrderBy = q.orderBy
	info.Select = q.selects
	info.Expand = q.expand
	info.Top = q.top
	info.Skip = q.skip
	info.Index = q.index
	info.Count = q.count
	info.Format = q.format
	info.ID = q.id
	info.SkipToken = q.skipToken
	info.DeltaToken = q.deltaToken
}

// fillItem copies the options to an expand item.
func (q *queryOptions) fillItem(item *ast.ExpandItem) {
	item.Apply = q.apply
	item.Compute = q.compute
	item.Filter = q.filter
	item.Search = q.search
	item.OrderBy = q.orderBy
	item.Select = q.selects
	item.Expand = q.expand
	item.Top = q.top
	item.Skip = q.skip
	item.Count = q.count
	item.Levels = q.levels
}

// checkOptions verifies that every option is known, allowed in scope, and
// given once, and indexes them by name.
func checkOptions(opts []rawOption, scope optionScope) (map[string]rawOption, error) {
	byName := make(map[string]rawOption, len(opts))
	for _, o := range opts {
		switch {
		case !isSystemOption(o.name):
			return nil, newError(KeyUnknownOption, o.offset, o.name)
		case o.name == "$levels" && scope == topLevel:
			return nil, newError(KeyLevelsOutsideExpand, o.offset)
		case !scope.allowed(o.name):
			return nil, newError(KeyOptionNotAllowed, o.offset, o.name, scope.where())
		}
		if _, dup := byName[o.name]; dup {
			return nil, newError(KeyDuplicateOption, o.offset, o.name)
		}
		byName[o.name] = o
	}
	return byName, nil
}

func isSystemOption(name string) bool {
	for _, n := range optionOrder {
		if n == name {
			return true
		}
	}
	return false
}

// parseQueryOptions parses system query options applied to a value of type
// typ. The type seen by options after $apply and $compute includes the
// properties they introduce.
func (s *session) parseQueryOptions(opts []rawOption, typ edm.Type, coll bool, scope optionScope) (*queryOptions, error) {
	byName, err := checkOptions(opts, scope)
	if err != nil {
		return nil, err
	}

	q := &queryOptions{}
	for _, name := range optionOrder {
		o, ok := byName[name]
		if !ok {
			continue
		}
		s.log.WithFields(logrus.Fields{
			"option":     name,
			"type":       typeName(typ),
			"collection": coll,
		}).Debug("parsing system query option")

		p := s.newParser(o.value, o.offset, typ)
		switch name {
		case "$apply":
			st, err := requireStructured(typ, o.offset)
			if err != nil {
				return nil, err
			}
			if q.apply, err = p.parseApply(st); err != nil {
				return nil, err
			}
			typ = q.apply.Type
		case "$compute":
			st, err := requireStructured(typ, o.offset)
			if err != nil {
				return nil, err
			}
			if q.compute, st, err = p.parseCompute(st); err != nil {
				return nil, err
			}
			typ = st
		case "$filter":
			q.filter, err = p.parseFilter()
		case "$search":
			q.search, err = p.parseSearch()
		case "$orderby":
			q.orderBy, err = p.parseOrderBy()
		case "$skip":
			q.skip, err = boundedOption(o, math.MaxInt32)
		case "$top":
			q.top, err = boundedOption(o, math.MaxInt32)
		case "$index":
			if n, ok := parseSigned(o.value); ok {
				i := int(n)
				q.index = &i
			} else {
				err = newError(KeyInvalidOptionValue, o.offset, name, o.value)
			}
		case "$count":
			q.count, err = boolOption(o)
		case "$select":
			st, e := requireStructured(typ, o.offset)
			if e != nil {
				return nil, e
			}
			q.selects, err = p.parseSelect(st)
		case "$expand":
			st, e := requireStructured(typ, o.offset)
			if e != nil {
				return nil, e
			}
			q.expand, err = p.parseExpand(st)
		case "$levels":
			q.levels, err = levelsOption(o)
		case "$format":
			q.format, err = formatOption(o)
		case "$id":
			q.id = o.value
		case "$skiptoken":
			q.skipToken = o.value
		case "$deltatoken":
			q.deltaToken = o.value
		}
		if err != nil {
			return nil, err
		}
	}

	if q.levels != nil && q.expand != nil {
		return nil, newError(KeyLevelsWithExpand, byName["$levels"].offset, typeName(typ))
	}
	return q, nil
}

// requireStructured returns typ as a structured type or a semantic error.
func requireStructured(typ edm.Type, pos int) (*edm.StructuredType, error) {
	st := structuredOf(typ)
	if st == nil {
		return nil, newError(KeyNotStructured, pos, typeName(typ))
	}
	return st, nil
}

// boundedOption parses a non-negative integer option no greater than
// maxValue.
func boundedOption(o rawOption, maxValue int64) (*int, error) {
	n, ok := parseBounded(o.value, maxValue)
	if !ok {
		return nil, newError(KeyInvalidOptionValue, o.offset, o.name, o.value)
	}
	i := int(n)
	return &i, nil
}

// boolOption parses true or false.
func boolOption(o rawOption) (*bool, error) {
	var b bool
	switch o.value {
	case "true":
		b = true
	case "false":
	default:
		return nil, newError(KeyInvalidOptionValue, o.offset, o.name, o.value)
	}
	return &b, nil
}

// levelsOption parses a non-negative integer or max.
func levelsOption(o rawOption) (*ast.Levels, error) {
	if o.value == "max" {
		return &ast.Levels{Max: true}, nil
	}
	n, ok := parseBounded(o.value, math.MaxInt32)
	if !ok {
		return nil, newError(KeyInvalidOptionValue, o.offset, o.name, o.value)
	}
	return &ast.Levels{Value: int(n)}, nil
}

// formatOption accepts json, xml, atom or a media type.
func formatOption(o rawOption) (string, error) {
	switch o.value {
	case "json", "xml", "atom":
		return o.value, nil
	}
	if i := strings.IndexByte(o.value, '/'); i > 0 && i < len(o.value)-1 {
		return o.value, nil
	}
	return "", newError(KeyInvalidOptionValue, o.offset, o.name, o.value)
}

// quoteState tracks whether a byte of nested option text lies within a
// single-quoted literal or a double-quoted string. A backslash escapes the
// next byte only within double quotes.
type quoteState struct {
	quote   byte
	escaped bool
}

// quoted feeds ch to q and reports whether it belongs to a quoted run,
// including its delimiters.
func (q *quoteState) quoted(ch byte) bool {
	switch {
	case q.escaped:
		q.escaped = false
	case q.quote == 0:
		if ch != '\'' && ch != '"' {
			return false
		}
		q.quote = ch
	case ch == q.quote:
		q.quote = 0
	case ch == '\\' && q.quote == '"':
		q.escaped = true
	}
	return true
}

// splitNestedOptions splits the semicolon-separated name=value options
// nested in an $expand item. Semicolons within parentheses or quotes do not
// split. offset is the position of text in the reported text.
func splitNestedOptions(text string, offset int) ([]rawOption, error) {
	var (
		opts   []rawOption
		quotes quoteState
	)
	start, depth := 0, 0
	for i := 0; i <= len(text); i++ {
		if i < len(text) {
			switch ch := text[i]; {
			case quotes.quoted(ch):
				continue
			case ch == '(':
				depth++
				continue
			case ch == ')':
				depth--
				continue
			case ch != ';' || depth > 0:
				continue
			}
		}
		part := text[start:i]
		eq := strings.IndexByte(part, '=')
		if eq <= 0 || part[0] != '$' {
			return nil, newError(KeyExpected, offset+start, "system query option")
		}
		opts = append(opts, rawOption{
			name:   part[:eq],
			value:  part[eq+1:],
			offset: offset + start + eq + 1,
		})
		start = i + 1
	}
	return opts, nil
}

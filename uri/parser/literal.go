package parser

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/theory/odatauri/uri/ast"
	"github.com/theory/odatauri/uri/edm"
	"github.com/theory/odatauri/uri/types"
)

// literalKinds lists the literal productions in the order they must be
// attempted: more specific shapes come before the shapes they overlap.
//
//nolint:gochecknoglobals
var literalKinds = []tokenKind{
	tokNull,
	tokBoolean,
	tokGuid,
	tokDateTimeOffset,
	tokDate,
	tokTimeOfDay,
	tokDouble,
	tokDecimal,
	tokInteger,
	tokString,
	tokDuration,
	tokBinary,
	tokGeography,
	tokGeometry,
	tokJSON,
}

// parseLiteral attempts a primitive, null or JSON literal. It returns false
// when no literal starts at the current position.
func (p *parser) parseLiteral() (ast.Expression, bool, error) {
	kind, ok := p.first(literalKinds...)
	if !ok {
		return nil, false, nil
	}
	lit, err := newLiteral(kind, p.text())
	if err != nil {
		return nil, true, newError(KeyInvalidLiteral, p.tokenPos(), kind.String(), p.text())
	}
	return lit, true, nil
}

// newLiteral converts the text of a literal token of kind to a typed
// literal.
func newLiteral(kind tokenKind, text string) (ast.Expression, error) {
	switch kind {
	case tokNull:
		return ast.NewNull(), nil
	case tokBoolean:
		return ast.NewLiteral(text, edm.Primitive(edm.Boolean), strings.EqualFold(text, "true")), nil
	case tokGuid:
		return typed(text, text, edm.Guid, types.ParseGuid)
	case tokDateTimeOffset:
		return typed(text, text, edm.DateTimeOffset, types.ParseDateTimeOffset)
	case tokDate:
		return typed(text, text, edm.Date, types.ParseDate)
	case tokTimeOfDay:
		return typed(text, text, edm.TimeOfDay, types.ParseTimeOfDay)
	case tokDouble:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil && !math.IsInf(f, 0) {
			return nil, err
		}
		return ast.NewLiteral(text, edm.Primitive(edm.Double), f), nil
	case tokDecimal:
		return typed(text, text, edm.Decimal, decimal.NewFromString)
	case tokInteger:
		return integerLiteral(text)
	case tokString:
		return ast.NewLiteral(text, edm.Primitive(edm.String), unquote(text)), nil
	case tokDuration:
		return typed(text, quotedBody(text), edm.Duration, types.ParseDuration)
	case tokBinary:
		return typed(text, quotedBody(text), edm.Binary, types.ParseBinary)
	case tokGeography, tokGeometry:
		return geoLiteral(text, kind == tokGeometry)
	case tokJSON:
		return ast.NewJSONLiteral(text, nil, text[0] == '[', json.RawMessage(text)), nil
	default:
		return nil, newError(KeyInvalidLiteral, 0, kind.String(), text)
	}
}

// typed parses src with parse and returns a literal of primitive kind with
// the source text.
func typed[T any](text, src string, kind edm.PrimitiveKind, parse func(string) (T, error)) (ast.Expression, error) {
	v, err := parse(src)
	if err != nil {
		return nil, err
	}
	return ast.NewLiteral(text, edm.Primitive(kind), v), nil
}

// integerLiteral types an integer with the narrowest kind that holds it.
// Values beyond Int64 become Edm.Decimal.
func integerLiteral(text string) (ast.Expression, error) {
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return typed(text, text, edm.Decimal, decimal.NewFromString)
	}
	var kind edm.PrimitiveKind
	switch {
	case n >= 0 && n <= math.MaxUint8:
		kind = edm.Byte
	case n >= math.MinInt8 && n < 0:
		kind = edm.SByte
	case n >= math.MinInt16 && n <= math.MaxInt16:
		kind = edm.Int16
	case n >= math.MinInt32 && n <= math.MaxInt32:
		kind = edm.Int32
	default:
		kind = edm.Int64
	}
	return ast.NewLiteral(text, edm.Primitive(kind), n), nil
}

// geoLiteral parses a geography or geometry literal and types it with the
// kind of its shape.
func geoLiteral(text string, geometry bool) (ast.Expression, error) {
	parse, base := types.ParseGeography, edm.GeographyPoint
	if geometry {
		parse, base = types.ParseGeometry, edm.GeometryPoint
	}
	geo, err := parse(quotedBody(text))
	if err != nil {
		return nil, err
	}
	kind := base + edm.PrimitiveKind(geo.Shape.Kind)
	return ast.NewLiteral(text, edm.Primitive(kind), geo), nil
}

// unquote strips the quotes from a string literal and collapses doubled
// quotes.
func unquote(text string) string {
	return strings.ReplaceAll(text[1:len(text)-1], "''", "'")
}

// quotedBody returns the text between the first quote and the final quote
// of a prefixed literal such as duration'P1D'.
func quotedBody(text string) string {
	return text[strings.IndexByte(text, '\'')+1 : len(text)-1]
}

// parseEnumLiteral parses the quoted member list following the qualified
// name of an enumeration type. name starts at pos.
func (p *parser) parseEnumLiteral(name string, pos int) (ast.Expression, error) {
	et := p.model.EnumType(edm.NewFullQualifiedName(name))
	if et == nil {
		return nil, newError(KeyUnknownType, pos, name)
	}
	if err := p.require(tokString); err != nil {
		return nil, err
	}
	body := unquote(p.text())
	parts := strings.Split(body, ",")
	if len(parts) > 1 && !et.IsFlags() {
		return nil, newError(KeyInvalidLiteral, pos, et.String(), name+p.text())
	}
	members := make([]edm.EnumMember, 0, len(parts))
	for _, part := range parts {
		m, ok := et.Member(part)
		if !ok {
			return nil, newError(KeyUnknownEnumMember, p.tokenPos(), part, et.String())
		}
		members = append(members, m)
	}
	return ast.NewEnum(et, members...), nil
}

// parseAlias parses a parameter alias reference and types it with the
// alias value.
func (p *parser) parseAlias() (ast.Expression, error) {
	if err := p.require(tokAlias); err != nil {
		return nil, err
	}
	name := p.text()[1:]
	expr, err := p.resolveAlias(name, p.tokenPos())
	if err != nil {
		return nil, err
	}
	if expr == nil {
		return ast.NewAlias(name, nil, false), nil
	}
	return ast.NewAlias(name, expr.Type(), expr.IsCollection()), nil
}

// parseKeyValue parses the value of a key predicate: a literal, an enum
// literal or a parameter alias.
func (p *parser) parseKeyValue() (ast.Expression, error) {
	if p.peek() == '@' {
		return p.parseAlias()
	}
	mark := p.mark()
	if p.attempt(tokQualifiedName) && p.peek() == '\'' {
		return p.parseEnumLiteral(p.text(), p.tokenPos())
	}
	p.reset(mark)
	lit, ok, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, p.expected("key value")
	}
	return lit, nil
}

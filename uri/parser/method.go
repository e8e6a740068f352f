package parser

import (
	"strconv"
	"strings"

	"github.com/theory/odatauri/uri/ast"
	"github.com/theory/odatauri/uri/edm"
)

// parseMethod parses the parenthesized arguments of a built-in function
// and checks their number and types.
func (p *parser) parseMethod(kind ast.MethodKind, pos int) (ast.Expression, error) {
	if err := p.require(tokOpen); err != nil {
		return nil, err
	}
	p.bws()
	var params []ast.Expression
	if !p.attempt(tokClose) {
		for {
			param, err := p.parseArgument(kind)
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if !p.attemptComma() {
				break
			}
		}
		if err := p.requireClose(); err != nil {
			return nil, err
		}
	}

	minArgs, maxArgs := kind.Arity()
	if len(params) < minArgs || len(params) > maxArgs {
		arity := strconv.Itoa(minArgs)
		if maxArgs != minArgs {
			arity += "-" + strconv.Itoa(maxArgs)
		}
		return nil, newError(KeyWrongArity, pos, kind.String(), arity, strconv.Itoa(len(params)))
	}
	if err := checkMethod(kind, params, pos); err != nil {
		return nil, err
	}
	return ast.NewMethod(kind, params...), nil
}

// parseArgument parses one method argument. The arguments of cast and isof
// may be qualified type names.
func (p *parser) parseArgument(kind ast.MethodKind) (ast.Expression, error) {
	if kind == ast.MethodCast || kind == ast.MethodIsOf {
		mark := p.mark()
		if p.attempt(tokQualifiedName) {
			name, pos := p.text(), p.tokenPos()
			end := p.mark()
			p.bws()
			if next := p.peek(); next == ',' || next == ')' {
				p.reset(end)
				typ := p.model.Type(edm.NewFullQualifiedName(name))
				if typ == nil {
					return nil, newError(KeyUnknownType, pos, name)
				}
				return ast.NewTypeLiteral(typ), nil
			}
		}
		p.reset(mark)
	}
	return p.parseExpression()
}

// Sets of primitive kinds accepted by methods.
//
//nolint:gochecknoglobals
var (
	stringKinds   = []edm.PrimitiveKind{edm.String}
	integerKinds  = []edm.PrimitiveKind{edm.Byte, edm.SByte, edm.Int16, edm.Int32, edm.Int64}
	numericKinds  = []edm.PrimitiveKind{edm.Byte, edm.SByte, edm.Int16, edm.Int32, edm.Int64, edm.Decimal, edm.Single, edm.Double}
	dateKinds     = []edm.PrimitiveKind{edm.Date, edm.DateTimeOffset}
	timeKinds     = []edm.PrimitiveKind{edm.TimeOfDay, edm.DateTimeOffset}
	offsetKinds   = []edm.PrimitiveKind{edm.DateTimeOffset}
	durationKinds = []edm.PrimitiveKind{edm.Duration}
)

// checkMethod checks the argument types of a method call whose arity is
// already known to be valid.
func checkMethod(kind ast.MethodKind, params []ast.Expression, pos int) error {
	want := func(i int, kinds ...edm.PrimitiveKind) error {
		typ := params[i].Type()
		if typ == nil || edm.IsPrimitive(typ, kinds...) && !params[i].IsCollection() {
			return nil
		}
		return newError(KeyTypeMismatch, pos, kind.String(), kindNames(kinds), typeName(typ))
	}
	spatial := func(i int) error {
		typ := params[i].Type()
		if k, ok := edm.PrimitiveKindOf(typ); typ == nil || ok && k.IsSpatial() {
			return nil
		}
		return newError(KeyTypeMismatch, pos, kind.String(), "a spatial type", typeName(typ))
	}
	collection := func(i int) error {
		if params[i].Type() == nil || params[i].IsCollection() {
			return nil
		}
		return newError(KeyTypeMismatch, pos, kind.String(), "a collection", typeName(params[i].Type()))
	}

	switch kind {
	case ast.MethodContains, ast.MethodStartsWith, ast.MethodEndsWith,
		ast.MethodIndexOf, ast.MethodConcat, ast.MethodMatchesPattern:
		return firstError(want(0, stringKinds...), want(1, stringKinds...))
	case ast.MethodLength, ast.MethodToLower, ast.MethodToUpper, ast.MethodTrim:
		return want(0, stringKinds...)
	case ast.MethodSubstring:
		errs := []error{want(0, stringKinds...), want(1, integerKinds...)}
		if len(params) == 3 {
			errs = append(errs, want(2, integerKinds...))
		}
		return firstError(errs...)
	case ast.MethodHasSubset, ast.MethodHasSubsequence:
		return firstError(collection(0), collection(1))
	case ast.MethodYear, ast.MethodMonth, ast.MethodDay:
		return want(0, dateKinds...)
	case ast.MethodHour, ast.MethodMinute, ast.MethodSecond, ast.MethodFractionalSeconds:
		return want(0, timeKinds...)
	case ast.MethodDate, ast.MethodTime, ast.MethodTotalOffsetMinutes:
		return want(0, offsetKinds...)
	case ast.MethodTotalSeconds:
		return want(0, durationKinds...)
	case ast.MethodRound, ast.MethodFloor, ast.MethodCeiling:
		return want(0, numericKinds...)
	case ast.MethodGeoDistance, ast.MethodGeoIntersects:
		return firstError(spatial(0), spatial(1))
	case ast.MethodGeoLength:
		return spatial(0)
	case ast.MethodCast, ast.MethodIsOf:
		last := params[len(params)-1]
		if _, ok := last.(*ast.TypeLiteral); !ok {
			return newError(KeyTypeMismatch, pos, kind.String(), "a type name", last.String())
		}
		for _, param := range params[:len(params)-1] {
			if _, ok := param.(*ast.TypeLiteral); ok {
				return newError(KeyTypeMismatch, pos, kind.String(), "an expression", param.String())
			}
		}
	}
	return nil
}

// firstError returns the first non-nil error in errs.
func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// kindNames joins the qualified names of kinds with " or ".
func kindNames(kinds []edm.PrimitiveKind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = edm.Primitive(k).String()
	}
	return strings.Join(names, " or ")
}

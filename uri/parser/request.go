package parser

import (
	"strings"

	"github.com/theory/odatauri/uri/ast"
	"github.com/theory/odatauri/uri/edm"
)

// dispatch recognizes the shape of the request, fills the resource part of
// info, and returns the type and collection flag the query options apply
// to.
func (s *session) dispatch(info *ast.Info, segments []string) (edm.Type, bool, error) {
	if len(segments) == 0 {
		info.Kind = ast.KindService
		return nil, false, nil
	}

	first := segments[0]
	switch {
	case first == "$batch", first == "$metadata":
		info.Kind = ast.KindBatch
		if first == "$metadata" {
			info.Kind = ast.KindMetadata
		}
		if len(segments) > 1 {
			return nil, false, newError(KeyMustBeLast, len(first)+1, first)
		}
		return nil, false, nil

	case first == "$all":
		info.Kind = ast.KindAll
		st, err := s.optionalCast(segments)
		if err != nil {
			return nil, false, err
		}
		info.EntityType = st
		return typeOf(st), true, nil

	case first == "$entity":
		info.Kind = ast.KindEntity
		st, err := s.optionalCast(segments)
		if err != nil {
			return nil, false, err
		}
		info.EntityType = st
		return typeOf(st), false, nil

	case strings.HasPrefix(first, "$crossjoin"):
		info.Kind = ast.KindCrossjoin
		sets, err := s.parseCrossjoin(first)
		if err != nil {
			return nil, false, err
		}
		if len(segments) > 1 {
			return nil, false, newError(KeyMustBeLast, len(first)+1, "$crossjoin")
		}
		info.EntitySets = sets
		s.crossjoin = sets
		return nil, true, nil
	}

	info.Kind = ast.KindResource
	path, err := s.parseResourcePath(segments)
	if err != nil {
		return nil, false, err
	}
	info.Resources = path

	target := path[len(path)-1]
	if _, ok := target.(*ast.Count); ok && len(path) > 1 {
		target = path[len(path)-2]
	}
	return target.Type(), target.IsCollection(), nil
}

// optionalCast parses the optional qualified entity type following $all or
// $entity.
func (s *session) optionalCast(segments []string) (*edm.StructuredType, error) {
	switch len(segments) {
	case 1:
		return nil, nil
	case 2:
		pos := len(segments[0]) + 1
		st := s.model.StructuredType(edm.NewFullQualifiedName(segments[1]))
		if st == nil || !strings.Contains(segments[1], ".") {
			return nil, newError(KeyUnknownType, pos, segments[1])
		}
		return st, nil
	default:
		return nil, newError(KeyMustBeLast, len(segments[0])+len(segments[1])+2, segments[1])
	}
}

// parseCrossjoin parses $crossjoin(Set,Set) and checks that each name is
// an entity set.
func (s *session) parseCrossjoin(text string) ([]string, error) {
	p := s.newParser(text, 0, nil)
	p.attemptText("$crossjoin")
	if err := p.require(tokOpen); err != nil {
		return nil, err
	}
	var sets []string
	c := s.model.EntityContainer()
	for {
		if err := p.require(tokIdentifier); err != nil {
			return nil, err
		}
		if c.EntitySet(p.text()) == nil {
			return nil, newError(KeyUnknownEntitySet, p.tokenPos(), p.text())
		}
		sets = append(sets, p.text())
		if !p.attempt(tokComma) {
			break
		}
	}
	if err := p.require(tokClose); err != nil {
		return nil, err
	}
	if err := p.requireEnd(); err != nil {
		return nil, err
	}
	return sets, nil
}

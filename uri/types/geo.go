package types

import (
	"fmt"
	"strconv"
	"strings"
)

// ShapeKind identifies the kind of a spatial shape.
type ShapeKind int

//revive:disable:exported
const (
	ShapePoint ShapeKind = iota
	ShapeLineString
	ShapePolygon
	ShapeMultiPoint
	ShapeMultiLineString
	ShapeMultiPolygon
	ShapeCollection
)

//nolint:gochecknoglobals
var shapeNames = [...]string{
	ShapePoint:           "Point",
	ShapeLineString:      "LineString",
	ShapePolygon:         "Polygon",
	ShapeMultiPoint:      "MultiPoint",
	ShapeMultiLineString: "MultiLineString",
	ShapeMultiPolygon:    "MultiPolygon",
	ShapeCollection:      "Collection",
}

// String returns the literal keyword of k.
func (k ShapeKind) String() string {
	if k < 0 || int(k) >= len(shapeNames) {
		return "Unknown"
	}
	return shapeNames[k]
}

// DefaultGeographySRID is the SRID of geography literals that omit one.
const DefaultGeographySRID = 4326

// Position is a longitude/latitude or x/y pair.
type Position struct {
	X float64
	Y float64
}

// Shape is one spatial value. Points holds the positions of a Point,
// LineString or MultiPoint; Rings holds the rings of a Polygon or the lines
// of a MultiLineString; Shapes holds the members of a MultiPolygon or
// Collection.
type Shape struct {
	Kind   ShapeKind
	Points []Position
	Rings  [][]Position
	Shapes []*Shape
}

// Geo is the value of a geography'…' or geometry'…' literal.
type Geo struct {
	Geometry bool
	SRID     int
	Shape    *Shape
}

// ParseGeography parses the body of a geography literal, e.g.
// "SRID=4326;Point(-122.1 47.6)".
func ParseGeography(src string) (*Geo, error) {
	return parseGeo(src, false)
}

// ParseGeometry parses the body of a geometry literal.
func ParseGeometry(src string) (*Geo, error) {
	return parseGeo(src, true)
}

func parseGeo(src string, geometry bool) (*Geo, error) {
	g := &Geo{Geometry: geometry}
	if !geometry {
		g.SRID = DefaultGeographySRID
	}
	p := newGeoParser(src)
	if p.keyword("SRID=") {
		const maxSRID = 5
		srid, ok := p.digits(1, maxSRID)
		if !ok || !p.expect(';') {
			return nil, fmt.Errorf(`%w: invalid SRID in "%v"`, ErrType, src)
		}
		g.SRID = srid
	}
	shape, ok := p.shape()
	if !ok || !p.done() {
		return nil, fmt.Errorf(`%w: invalid %v literal "%v"`, ErrType, g.family(), src)
	}
	g.Shape = shape
	return g, nil
}

func (g *Geo) family() string {
	if g.Geometry {
		return "geometry"
	}
	return "geography"
}

// String returns the literal form of g, e.g.
// "geography'SRID=4326;Point(1 2)'".
func (g *Geo) String() string {
	var b strings.Builder
	b.WriteString(g.family())
	b.WriteString("'SRID=")
	b.WriteString(strconv.Itoa(g.SRID))
	b.WriteByte(';')
	g.Shape.writeTo(&b)
	b.WriteByte('\'')
	return b.String()
}

// String returns the literal form of s, without SRID.
func (s *Shape) String() string {
	var b strings.Builder
	s.writeTo(&b)
	return b.String()
}

func (s *Shape) writeTo(b *strings.Builder) {
	b.WriteString(s.Kind.String())
	b.WriteByte('(')
	switch s.Kind {
	case ShapePoint:
		writePosition(b, s.Points[0])
	case ShapeLineString:
		writePositions(b, s.Points)
	case ShapeMultiPoint:
		for i, pos := range s.Points {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('(')
			writePosition(b, pos)
			b.WriteByte(')')
		}
	case ShapePolygon, ShapeMultiLineString:
		writeRings(b, s.Rings)
	case ShapeMultiPolygon:
		for i, poly := range s.Shapes {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('(')
			writeRings(b, poly.Rings)
			b.WriteByte(')')
		}
	case ShapeCollection:
		for i, member := range s.Shapes {
			if i > 0 {
				b.WriteByte(',')
			}
			member.writeTo(b)
		}
	}
	b.WriteByte(')')
}

func writePosition(b *strings.Builder, pos Position) {
	b.WriteString(strconv.FormatFloat(pos.X, 'g', -1, 64))
	b.WriteByte(' ')
	b.WriteString(strconv.FormatFloat(pos.Y, 'g', -1, 64))
}

func writePositions(b *strings.Builder, list []Position) {
	for i, pos := range list {
		if i > 0 {
			b.WriteByte(',')
		}
		writePosition(b, pos)
	}
}

func writeRings(b *strings.Builder, rings [][]Position) {
	for i, ring := range rings {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('(')
		writePositions(b, ring)
		b.WriteByte(')')
	}
}

// geoParser reads the well-known-text subset used by OData spatial
// literals.
type geoParser struct {
	scanner
}

func newGeoParser(src string) *geoParser { return &geoParser{scanner{src: src}} }

// keyword consumes kw, ignoring ASCII case.
func (p *geoParser) keyword(kw string) bool {
	end := p.pos + len(kw)
	if end <= len(p.src) && strings.EqualFold(p.src[p.pos:end], kw) {
		p.pos = end
		return true
	}
	return false
}

// shape reads one tagged shape.
func (p *geoParser) shape() (*Shape, bool) {
	for kind := ShapePoint; kind <= ShapeCollection; kind++ {
		save := p.pos
		if !p.keyword(kind.String()) || !p.expect('(') {
			p.pos = save
			continue
		}
		s := &Shape{Kind: kind}
		ok := false
		switch kind {
		case ShapePoint:
			var pos Position
			pos, ok = p.position()
			s.Points = []Position{pos}
		case ShapeLineString:
			s.Points, ok = p.positions(2)
		case ShapePolygon:
			s.Rings, ok = p.rings(true)
		case ShapeMultiPoint:
			s.Points, ok = p.multiPoint()
		case ShapeMultiLineString:
			s.Rings, ok = p.rings(false)
		case ShapeMultiPolygon:
			s.Shapes, ok = p.multiPolygon()
		case ShapeCollection:
			s.Shapes, ok = p.collection()
		}
		if !ok || !p.expect(')') {
			return nil, false
		}
		return s, true
	}
	return nil, false
}

// position reads two doubles separated by a single space.
func (p *geoParser) position() (Position, bool) {
	x, ok := p.double()
	if !ok || !p.expect(' ') {
		return Position{}, false
	}
	y, ok := p.double()
	if !ok {
		return Position{}, false
	}
	return Position{x, y}, true
}

// positions reads at least minCount comma-separated positions.
func (p *geoParser) positions(minCount int) ([]Position, bool) {
	var list []Position
	for {
		pos, ok := p.position()
		if !ok {
			return nil, false
		}
		list = append(list, pos)
		if !p.expect(',') {
			break
		}
	}
	return list, len(list) >= minCount
}

// rings reads parenthesized position lists. Polygon rings must be closed
// and have at least four positions.
func (p *geoParser) rings(closed bool) ([][]Position, bool) {
	var rings [][]Position
	if closed || p.peek() == '(' {
		for {
			minCount := 2
			if closed {
				minCount = 4
			}
			if !p.expect('(') {
				return nil, false
			}
			ring, ok := p.positions(minCount)
			if !ok || !p.expect(')') {
				return nil, false
			}
			if closed && ring[0] != ring[len(ring)-1] {
				return nil, false
			}
			rings = append(rings, ring)
			if !p.expect(',') {
				break
			}
		}
	}
	return rings, true
}

func (p *geoParser) multiPoint() ([]Position, bool) {
	var list []Position
	if p.peek() != '(' {
		return list, true
	}
	for {
		if !p.expect('(') {
			return nil, false
		}
		pos, ok := p.position()
		if !ok || !p.expect(')') {
			return nil, false
		}
		list = append(list, pos)
		if !p.expect(',') {
			return list, true
		}
	}
}

func (p *geoParser) multiPolygon() ([]*Shape, bool) {
	var list []*Shape
	if p.peek() != '(' {
		return list, true
	}
	for {
		if !p.expect('(') {
			return nil, false
		}
		rings, ok := p.rings(true)
		if !ok || !p.expect(')') {
			return nil, false
		}
		list = append(list, &Shape{Kind: ShapePolygon, Rings: rings})
		if !p.expect(',') {
			return list, true
		}
	}
}

func (p *geoParser) collection() ([]*Shape, bool) {
	var list []*Shape
	if p.peek() == ')' {
		return list, true
	}
	for {
		s, ok := p.shape()
		if !ok {
			return nil, false
		}
		list = append(list, s)
		if !p.expect(',') {
			return list, true
		}
	}
}

// double reads a signed decimal number with optional fraction and exponent.
func (p *geoParser) double() (float64, bool) {
	start := p.pos
	if p.peek() == '-' || p.peek() == '+' {
		p.pos++
	}
	digitsStart := p.pos
	for isDigit(p.peek()) {
		p.pos++
	}
	if p.pos == digitsStart {
		p.pos = start
		return 0, false
	}
	if p.peek() == '.' {
		p.pos++
		fracStart := p.pos
		for isDigit(p.peek()) {
			p.pos++
		}
		if p.pos == fracStart {
			p.pos = start
			return 0, false
		}
	}
	if p.peek() == 'e' || p.peek() == 'E' {
		save := p.pos
		p.pos++
		if p.peek() == '-' || p.peek() == '+' {
			p.pos++
		}
		expStart := p.pos
		for isDigit(p.peek()) {
			p.pos++
		}
		if p.pos == expStart {
			p.pos = save
		}
	}
	f, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		p.pos = start
		return 0, false
	}
	return f, true
}

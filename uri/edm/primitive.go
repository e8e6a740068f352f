package edm

// PrimitiveKind identifies one of the Edm primitive types.
type PrimitiveKind int

//revive:disable:exported
const (
	Binary PrimitiveKind = iota
	Boolean
	Byte
	Date
	DateTimeOffset
	Decimal
	Double
	Duration
	Guid
	Int16
	Int32
	Int64
	SByte
	Single
	Stream
	String
	TimeOfDay
	Geography
	GeographyPoint
	GeographyLineString
	GeographyPolygon
	GeographyMultiPoint
	GeographyMultiLineString
	GeographyMultiPolygon
	GeographyCollection
	Geometry
	GeometryPoint
	GeometryLineString
	GeometryPolygon
	GeometryMultiPoint
	GeometryMultiLineString
	GeometryMultiPolygon
	GeometryCollection
	primitiveKindCount
)

var primitiveNames = [primitiveKindCount]string{
	"Binary", "Boolean", "Byte", "Date", "DateTimeOffset", "Decimal", "Double",
	"Duration", "Guid", "Int16", "Int32", "Int64", "SByte", "Single", "Stream",
	"String", "TimeOfDay",
	"Geography", "GeographyPoint", "GeographyLineString", "GeographyPolygon",
	"GeographyMultiPoint", "GeographyMultiLineString", "GeographyMultiPolygon",
	"GeographyCollection",
	"Geometry", "GeometryPoint", "GeometryLineString", "GeometryPolygon",
	"GeometryMultiPoint", "GeometryMultiLineString", "GeometryMultiPolygon",
	"GeometryCollection",
}

// EdmNamespace is the namespace of the primitive types.
const EdmNamespace = "Edm"

// String returns the unqualified name of k, e.g. "Int32".
func (k PrimitiveKind) String() string {
	if k < 0 || k >= primitiveKindCount {
		return "Unknown"
	}
	return primitiveNames[k]
}

// IsInteger reports whether k is one of the integral kinds.
func (k PrimitiveKind) IsInteger() bool {
	switch k {
	case Byte, SByte, Int16, Int32, Int64:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether k is an integral or fractional number kind.
func (k PrimitiveKind) IsNumeric() bool {
	return k.IsInteger() || k == Decimal || k == Double || k == Single
}

// IsGeography reports whether k belongs to the geography family.
func (k PrimitiveKind) IsGeography() bool {
	return k >= Geography && k <= GeographyCollection
}

// IsGeometry reports whether k belongs to the geometry family.
func (k PrimitiveKind) IsGeometry() bool {
	return k >= Geometry && k <= GeometryCollection
}

// IsSpatial reports whether k is a geography or geometry kind.
func (k PrimitiveKind) IsSpatial() bool {
	return k.IsGeography() || k.IsGeometry()
}

// integerRank orders the integral kinds by width.
func (k PrimitiveKind) integerRank() int {
	switch k {
	case Byte, SByte:
		return 1
	case Int16:
		return 2
	case Int32:
		return 3
	case Int64:
		return 4
	default:
		return 0
	}
}

// PrimitiveType is the descriptor of an Edm primitive type. Descriptors are
// singletons, so they can be compared with ==.
type PrimitiveType struct {
	kind PrimitiveKind
}

//nolint:gochecknoglobals
var primitiveTypes = func() [primitiveKindCount]*PrimitiveType {
	var types [primitiveKindCount]*PrimitiveType
	for i := range types {
		types[i] = &PrimitiveType{kind: PrimitiveKind(i)}
	}
	return types
}()

// Primitive returns the descriptor for kind. Panics if kind is not a valid
// PrimitiveKind.
func Primitive(kind PrimitiveKind) *PrimitiveType {
	return primitiveTypes[kind]
}

// PrimitiveByName returns the primitive type for a name such as "Edm.Int32"
// or "Int32".
func PrimitiveByName(name string) (*PrimitiveType, bool) {
	fqn := NewFullQualifiedName(name)
	if fqn.Namespace != "" && fqn.Namespace != EdmNamespace {
		return nil, false
	}
	for i, n := range primitiveNames {
		if n == fqn.Name {
			return primitiveTypes[i], true
		}
	}
	return nil, false
}

// Kind returns KindPrimitive.
func (*PrimitiveType) Kind() Kind { return KindPrimitive }

// PrimitiveKind returns the primitive kind of t.
func (t *PrimitiveType) PrimitiveKind() PrimitiveKind { return t.kind }

// FullQualifiedName returns the Edm-qualified name of t.
func (t *PrimitiveType) FullQualifiedName() FullQualifiedName {
	return FullQualifiedName{Namespace: EdmNamespace, Name: t.kind.String()}
}

// String returns the qualified name of t, e.g. "Edm.Int32".
func (t *PrimitiveType) String() string {
	return EdmNamespace + "." + t.kind.String()
}

// PrimitiveKindOf returns the primitive kind of typ and true when typ is a
// primitive type.
func PrimitiveKindOf(typ Type) (PrimitiveKind, bool) {
	if p, ok := typ.(*PrimitiveType); ok && p != nil {
		return p.kind, true
	}
	return 0, false
}

// IsPrimitive reports whether typ is a primitive type of one of kinds, or of
// any kind when kinds is empty.
func IsPrimitive(typ Type, kinds ...PrimitiveKind) bool {
	k, ok := PrimitiveKindOf(typ)
	if !ok {
		return false
	}
	if len(kinds) == 0 {
		return true
	}
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// IsNumeric reports whether typ is a numeric primitive type.
func IsNumeric(typ Type) bool {
	k, ok := PrimitiveKindOf(typ)
	return ok && k.IsNumeric()
}

// IsAssignable reports whether a value of type from may be used where type
// to is expected: identical types, integral widening, integral or decimal to
// floating point, and concrete spatial kinds to their abstract family.
func IsAssignable(to, from Type) bool {
	if to == nil || from == nil {
		return true
	}
	if to == from {
		return true
	}
	if st, ok := to.(*StructuredType); ok {
		if sf, ok := from.(*StructuredType); ok {
			return sf.CompatibleTo(st)
		}
		return false
	}
	if et, ok := to.(*EnumType); ok {
		ef, ok := from.(*EnumType)
		return ok && et.FullQualifiedName() == ef.FullQualifiedName()
	}

	tk, ok := PrimitiveKindOf(to)
	if !ok {
		return false
	}
	fk, ok := PrimitiveKindOf(from)
	if !ok {
		return false
	}

	switch {
	case tk == fk:
		return true
	case tk.IsInteger() && fk.IsInteger():
		return fk.integerRank() <= tk.integerRank()
	case tk == Decimal:
		return fk.IsInteger()
	case tk == Single:
		return fk.IsInteger() || fk == Decimal
	case tk == Double:
		return fk.IsInteger() || fk == Decimal || fk == Single
	case tk == Geography:
		return fk.IsGeography()
	case tk == Geometry:
		return fk.IsGeometry()
	default:
		return false
	}
}

// Promote returns the primitive type that results from applying an
// arithmetic operator to operands of types a and b, or nil if either is not
// numeric.
func Promote(a, b Type) Type {
	ak, aok := PrimitiveKindOf(a)
	bk, bok := PrimitiveKindOf(b)
	if !aok || !bok || !ak.IsNumeric() || !bk.IsNumeric() {
		return nil
	}

	switch {
	case ak == Decimal || bk == Decimal:
		return Primitive(Decimal)
	case ak == Double || bk == Double:
		return Primitive(Double)
	case ak == Single || bk == Single:
		return Primitive(Single)
	case ak == bk:
		return Primitive(ak)
	}

	// Mixed integral kinds widen to the wider one; Byte with SByte needs
	// Int16 to hold both ranges.
	rank := max(ak.integerRank(), bk.integerRank())
	switch rank {
	case 1, 2:
		return Primitive(Int16)
	case 3:
		return Primitive(Int32)
	default:
		return Primitive(Int64)
	}
}

// Comparable reports whether values of types a and b can be compared with
// the relational and equality operators. Untyped operands compare with
// anything.
func Comparable(a, b Type) bool {
	if a == nil || b == nil {
		return true
	}
	if IsNumeric(a) && IsNumeric(b) {
		return true
	}
	if IsAssignable(a, b) || IsAssignable(b, a) {
		return true
	}
	ak, aok := PrimitiveKindOf(a)
	bk, bok := PrimitiveKindOf(b)
	return aok && bok && (ak.IsGeography() && bk.IsGeography() || ak.IsGeometry() && bk.IsGeometry())
}

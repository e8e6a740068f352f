package edm

import (
	"fmt"
)

// Property is a structural property of a structured type.
type Property struct {
	Name       string
	Type       Type
	Collection bool
	Nullable   bool
}

// NavigationProperty relates an entity or complex type to an entity type.
type NavigationProperty struct {
	Name           string
	Target         *StructuredType
	Collection     bool
	Nullable       bool
	Partner        string
	ContainsTarget bool
}

// StructuredType describes an entity or complex type, or a synthetic
// dynamic type produced by $apply and $compute.
//
// The Add* methods are for model construction; once a type is handed to a
// parser it must not be mutated, except for dynamic types created by
// [NewDynamic], which are owned by a single parse.
type StructuredType struct {
	kind        Kind
	name        FullQualifiedName
	base        *StructuredType
	abstract    bool
	open        bool
	hasStream   bool
	dynamic     bool
	keys        []string
	properties  []*Property
	navigations []*NavigationProperty
	aggregates  map[string]Type
}

// NewEntityType creates an entity type named name derived from base, which
// may be nil.
func NewEntityType(name FullQualifiedName, base *StructuredType) *StructuredType {
	return &StructuredType{kind: KindEntity, name: name, base: base}
}

// NewComplexType creates a complex type named name derived from base, which
// may be nil.
func NewComplexType(name FullQualifiedName, base *StructuredType) *StructuredType {
	return &StructuredType{kind: KindComplex, name: name, base: base}
}

// Kind returns KindEntity or KindComplex.
func (t *StructuredType) Kind() Kind { return t.kind }

// FullQualifiedName returns the qualified name of t.
func (t *StructuredType) FullQualifiedName() FullQualifiedName { return t.name }

// String returns the qualified name of t.
func (t *StructuredType) String() string { return t.name.String() }

// BaseType returns the type t derives from, or nil.
func (t *StructuredType) BaseType() *StructuredType { return t.base }

// IsEntity reports whether t is an entity type.
func (t *StructuredType) IsEntity() bool { return t.kind == KindEntity }

// IsComplex reports whether t is a complex type.
func (t *StructuredType) IsComplex() bool { return t.kind == KindComplex }

// IsAbstract reports whether t is abstract.
func (t *StructuredType) IsAbstract() bool { return t.abstract }

// IsOpen reports whether t or one of its base types is open.
func (t *StructuredType) IsOpen() bool {
	for c := t; c != nil; c = c.base {
		if c.open {
			return true
		}
	}
	return false
}

// HasStream reports whether t or one of its base types is a media entity.
func (t *StructuredType) HasStream() bool {
	for c := t; c != nil; c = c.base {
		if c.hasStream {
			return true
		}
	}
	return false
}

// IsDynamic reports whether t is a synthetic type created by [NewDynamic].
func (t *StructuredType) IsDynamic() bool { return t.dynamic }

// SetAbstract marks t as abstract and returns t.
func (t *StructuredType) SetAbstract(abstract bool) *StructuredType {
	t.abstract = abstract
	return t
}

// SetOpen marks t as open and returns t.
func (t *StructuredType) SetOpen(open bool) *StructuredType {
	t.open = open
	return t
}

// SetHasStream marks t as a media entity type and returns t.
func (t *StructuredType) SetHasStream(hasStream bool) *StructuredType {
	t.hasStream = hasStream
	return t
}

// SetKey sets the names of the key properties of t and returns t.
func (t *StructuredType) SetKey(names ...string) *StructuredType {
	t.keys = names
	return t
}

// AddProperty appends a single-valued structural property and returns t.
func (t *StructuredType) AddProperty(name string, typ Type, nullable bool) *StructuredType {
	t.properties = append(t.properties, &Property{Name: name, Type: typ, Nullable: nullable})
	return t
}

// AddCollectionProperty appends a collection-valued structural property and
// returns t.
func (t *StructuredType) AddCollectionProperty(name string, typ Type) *StructuredType {
	t.properties = append(t.properties, &Property{Name: name, Type: typ, Collection: true})
	return t
}

// AddNavigation appends a navigation property to target and returns t.
func (t *StructuredType) AddNavigation(name string, target *StructuredType, collection bool) *StructuredType {
	t.navigations = append(t.navigations, &NavigationProperty{
		Name:       name,
		Target:     target,
		Collection: collection,
		Nullable:   !collection,
	})
	return t
}

// AddNavigationProperty appends a fully described navigation property and
// returns t.
func (t *StructuredType) AddNavigationProperty(nav *NavigationProperty) *StructuredType {
	t.navigations = append(t.navigations, nav)
	return t
}

// AddCustomAggregate declares a custom aggregate named name whose values
// have type typ, and returns t.
func (t *StructuredType) AddCustomAggregate(name string, typ Type) *StructuredType {
	if t.aggregates == nil {
		t.aggregates = map[string]Type{}
	}
	t.aggregates[name] = typ
	return t
}

// Property returns the structural property named name declared on t or one
// of its base types, or nil.
func (t *StructuredType) Property(name string) *Property {
	for c := t; c != nil; c = c.base {
		for _, p := range c.properties {
			if p.Name == name {
				return p
			}
		}
	}
	return nil
}

// NavigationProperty returns the navigation property named name declared on
// t or one of its base types, or nil.
func (t *StructuredType) NavigationProperty(name string) *NavigationProperty {
	for c := t; c != nil; c = c.base {
		for _, n := range c.navigations {
			if n.Name == name {
				return n
			}
		}
	}
	return nil
}

// HasMember reports whether t has a structural or navigation property
// named name.
func (t *StructuredType) HasMember(name string) bool {
	return t.Property(name) != nil || t.NavigationProperty(name) != nil
}

// CustomAggregate returns the type of the custom aggregate named name
// declared on t or one of its base types.
func (t *StructuredType) CustomAggregate(name string) (Type, bool) {
	for c := t; c != nil; c = c.base {
		if typ, ok := c.aggregates[name]; ok {
			return typ, true
		}
	}
	return nil, false
}

// PropertyNames returns the names of all structural and navigation
// properties of t, base type members first.
func (t *StructuredType) PropertyNames() []string {
	var chain []*StructuredType
	for c := t; c != nil; c = c.base {
		chain = append(chain, c)
	}

	names := []string{}
	for i := len(chain) - 1; i >= 0; i-- {
		for _, p := range chain[i].properties {
			names = append(names, p.Name)
		}
		for _, n := range chain[i].navigations {
			names = append(names, n.Name)
		}
	}
	return names
}

// KeyProperties returns the key properties of t, inherited from the first
// type in its base chain that declares a key.
func (t *StructuredType) KeyProperties() []*Property {
	for c := t; c != nil; c = c.base {
		if len(c.keys) == 0 {
			continue
		}
		keys := make([]*Property, 0, len(c.keys))
		for _, name := range c.keys {
			if p := c.Property(name); p != nil {
				keys = append(keys, p)
			}
		}
		return keys
	}
	return nil
}

// CompatibleTo reports whether t is other or derives from other.
func (t *StructuredType) CompatibleTo(other Type) bool {
	st, ok := other.(*StructuredType)
	if !ok || st == nil {
		return false
	}
	for c := t; c != nil; c = c.base {
		if c == st || c.name == st.name && !c.dynamic && !st.dynamic && c.kind == st.kind {
			return true
		}
	}
	return false
}

// NewDynamic returns a synthetic type that exposes every member of base and
// accepts new properties through [StructuredType.AddDynamicProperty]. The
// result reports the name and kind of base and is compatible with it.
func NewDynamic(base *StructuredType) *StructuredType {
	kind := KindComplex
	var name FullQualifiedName
	if base != nil {
		kind = base.kind
		name = base.name
	}
	return &StructuredType{kind: kind, name: name, base: base, dynamic: true}
}

// AddDynamicProperty appends a computed property to a dynamic type. Returns
// an error if t is not dynamic or if a member named name already exists.
func (t *StructuredType) AddDynamicProperty(name string, typ Type) (*Property, error) {
	if !t.dynamic {
		return nil, fmt.Errorf("%w: type %v is not dynamic", ErrEDM, t)
	}
	if t.HasMember(name) {
		return nil, fmt.Errorf("%w: property %q already defined on %v", ErrEDM, name, t)
	}
	p := &Property{Name: name, Type: typ, Nullable: true}
	t.properties = append(t.properties, p)
	return p, nil
}

// DynamicProperties returns the properties added to t and any dynamic base
// types between t and the first non-dynamic type, oldest first.
func (t *StructuredType) DynamicProperties() []*Property {
	var chain []*StructuredType
	for c := t; c != nil && c.dynamic; c = c.base {
		chain = append(chain, c)
	}
	props := []*Property{}
	for i := len(chain) - 1; i >= 0; i-- {
		props = append(props, chain[i].properties...)
	}
	return props
}

// DeclaredProperties returns the structural properties declared directly on
// t, excluding those inherited from base types.
func (t *StructuredType) DeclaredProperties() []*Property {
	return append([]*Property(nil), t.properties...)
}

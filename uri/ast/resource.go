package ast

import (
	"strings"

	"github.com/theory/odatauri/uri/edm"
)

// Resource is one segment of a resource path or of a member expression.
// The variants are *EntitySet, *Singleton, *Navigation, *Property, *Count,
// *Ref, *Value, *Action, *Function, *It, *LambdaVariable and *Lambda.
type Resource interface {
	Node

	// Type returns the EDM type of the segment after any type filter, or
	// nil if the segment is untyped.
	Type() edm.Type

	// IsCollection reports whether the segment addresses a collection.
	IsCollection() bool

	resource()
}

// structured returns t as an edm.Type, mapping a nil pointer to a nil
// interface.
func structured(t *edm.StructuredType) edm.Type {
	if t == nil {
		return nil
	}
	return t
}

// writeSuffix writes key predicates and a type filter.
func writeSuffix(b *strings.Builder, keys []*KeyPredicate, filter *edm.StructuredType) {
	writeKeys(b, keys)
	if filter != nil {
		b.WriteByte('/')
		b.WriteString(filter.String())
	}
}

// EntitySet addresses an entity set, optionally narrowed by key predicates
// and a type filter.
type EntitySet struct {
	Set        *edm.EntitySet
	TypeFilter *edm.StructuredType
	Keys       []*KeyPredicate
}

func (*EntitySet) resource() {}

// Type returns the type filter or the entity type of the set.
func (r *EntitySet) Type() edm.Type {
	if r.TypeFilter != nil {
		return r.TypeFilter
	}
	return structured(r.Set.Type)
}

// IsCollection reports whether r has no key predicates.
func (r *EntitySet) IsCollection() bool { return len(r.Keys) == 0 }

// String returns the set name followed by keys and type filter.
func (r *EntitySet) String() string {
	b := new(strings.Builder)
	b.WriteString(r.Set.Name)
	writeSuffix(b, r.Keys, r.TypeFilter)
	return b.String()
}

// Singleton addresses a singleton.
type Singleton struct {
	Singleton  *edm.Singleton
	TypeFilter *edm.StructuredType
}

func (*Singleton) resource() {}

// Type returns the type filter or the entity type of the singleton.
func (r *Singleton) Type() edm.Type {
	if r.TypeFilter != nil {
		return r.TypeFilter
	}
	return structured(r.Singleton.Type)
}

// IsCollection returns false.
func (*Singleton) IsCollection() bool { return false }

// String returns the singleton name and type filter.
func (r *Singleton) String() string {
	b := new(strings.Builder)
	b.WriteString(r.Singleton.Name)
	writeSuffix(b, nil, r.TypeFilter)
	return b.String()
}

// Navigation follows a navigation property.
type Navigation struct {
	Property   *edm.NavigationProperty
	TypeFilter *edm.StructuredType
	Keys       []*KeyPredicate
}

func (*Navigation) resource() {}

// Type returns the type filter or the target type.
func (r *Navigation) Type() edm.Type {
	if r.TypeFilter != nil {
		return r.TypeFilter
	}
	return structured(r.Property.Target)
}

// IsCollection reports whether r navigates to a collection and has no key
// predicates.
func (r *Navigation) IsCollection() bool {
	return r.Property.Collection && len(r.Keys) == 0
}

// String returns the property name followed by keys and type filter.
func (r *Navigation) String() string {
	b := new(strings.Builder)
	b.WriteString(r.Property.Name)
	writeSuffix(b, r.Keys, r.TypeFilter)
	return b.String()
}

// Property addresses a primitive, enum or complex structural property. A
// type filter is only valid on complex properties.
type Property struct {
	Property   *edm.Property
	TypeFilter *edm.StructuredType
}

func (*Property) resource() {}

// Type returns the type filter or the property type.
func (r *Property) Type() edm.Type {
	if r.TypeFilter != nil {
		return r.TypeFilter
	}
	return r.Property.Type
}

// IsCollection reports whether the property is collection-valued.
func (r *Property) IsCollection() bool { return r.Property.Collection }

// IsComplex reports whether the property has a complex type.
func (r *Property) IsComplex() bool {
	st, ok := r.Property.Type.(*edm.StructuredType)
	return ok && st.IsComplex()
}

// String returns the property name and type filter.
func (r *Property) String() string {
	b := new(strings.Builder)
	b.WriteString(r.Property.Name)
	writeSuffix(b, nil, r.TypeFilter)
	return b.String()
}

// Count is the $count segment.
type Count struct{}

func (*Count) resource() {}

// Type returns Edm.Int64.
func (*Count) Type() edm.Type { return edm.Primitive(edm.Int64) }

// IsCollection returns false.
func (*Count) IsCollection() bool { return false }

// String returns "$count".
func (*Count) String() string { return "$count" }

// Ref is the $ref segment, addressing the entity references of the
// preceding segment.
type Ref struct {
	Target     edm.Type
	Collection bool
}

func (*Ref) resource() {}

// Type returns the type of the referenced entities.
func (r *Ref) Type() edm.Type { return r.Target }

// IsCollection reports whether r references a collection.
func (r *Ref) IsCollection() bool { return r.Collection }

// String returns "$ref".
func (*Ref) String() string { return "$ref" }

// Value is the $value segment, addressing the raw value of a primitive
// property or the media stream of an entity.
type Value struct {
	Target edm.Type
}

func (*Value) resource() {}

// Type returns the type of the raw value.
func (r *Value) Type() edm.Type { return r.Target }

// IsCollection returns false.
func (*Value) IsCollection() bool { return false }

// String returns "$value".
func (*Value) String() string { return "$value" }

// Action invokes a bound action or an action import.
type Action struct {
	Action *edm.Operation
	Import *edm.ActionImport
}

func (*Action) resource() {}

// Type returns the action's return type, or nil.
func (r *Action) Type() edm.Type {
	if r.Action.Return == nil {
		return nil
	}
	return r.Action.Return.Type
}

// IsCollection reports whether the action returns a collection.
func (r *Action) IsCollection() bool {
	return r.Action.Return != nil && r.Action.Return.Collection
}

// String returns the import name or the qualified action name.
func (r *Action) String() string {
	if r.Import != nil {
		return r.Import.Name
	}
	return r.Action.Name.String()
}

// Parameter is a named function parameter. In $select items Value is nil
// and the parameter only names an overload.
type Parameter struct {
	Name  string
	Value Expression
}

// String returns "name=value", or the name alone when Value is nil.
func (p *Parameter) String() string {
	if p.Value == nil {
		return p.Name
	}
	return p.Name + "=" + p.Value.String()
}

// Function invokes a bound function or a function import.
type Function struct {
	Function   *edm.Operation
	Import     *edm.FunctionImport
	Parameters []*Parameter
	TypeFilter *edm.StructuredType
	Keys       []*KeyPredicate
}

func (*Function) resource() {}

// Type returns the type filter or the function's return type.
func (r *Function) Type() edm.Type {
	if r.TypeFilter != nil {
		return r.TypeFilter
	}
	if r.Function.Return == nil {
		return nil
	}
	return r.Function.Return.Type
}

// IsCollection reports whether the function returns a collection and r has
// no key predicates.
func (r *Function) IsCollection() bool {
	return r.Function.Return != nil && r.Function.Return.Collection && len(r.Keys) == 0
}

// String returns the function name, parameters, keys and type filter.
func (r *Function) String() string {
	b := new(strings.Builder)
	if r.Import != nil {
		b.WriteString(r.Import.Name)
	} else {
		b.WriteString(r.Function.Name.String())
	}
	b.WriteByte('(')
	joinNodes(b, r.Parameters, ",")
	b.WriteByte(')')
	writeSuffix(b, r.Keys, r.TypeFilter)
	return b.String()
}

// It is the $it segment, the instance currently being evaluated.
type It struct {
	Target     edm.Type
	Collection bool
	TypeFilter *edm.StructuredType
}

func (*It) resource() {}

// Type returns the type filter or the type of the current instance.
func (r *It) Type() edm.Type {
	if r.TypeFilter != nil {
		return r.TypeFilter
	}
	return r.Target
}

// IsCollection reports whether the current instance is a collection.
func (r *It) IsCollection() bool { return r.Collection }

// String returns "$it" and the type filter.
func (r *It) String() string {
	b := new(strings.Builder)
	b.WriteString("$it")
	writeSuffix(b, nil, r.TypeFilter)
	return b.String()
}

// LambdaVariable refers to the range variable of an enclosing lambda.
type LambdaVariable struct {
	Name       string
	Target     edm.Type
	TypeFilter *edm.StructuredType
}

func (*LambdaVariable) resource() {}

// Type returns the type filter or the type of one element of the lambda's
// collection.
func (r *LambdaVariable) Type() edm.Type {
	if r.TypeFilter != nil {
		return r.TypeFilter
	}
	return r.Target
}

// IsCollection returns false.
func (*LambdaVariable) IsCollection() bool { return false }

// String returns the variable name and the type filter.
func (r *LambdaVariable) String() string {
	b := new(strings.Builder)
	b.WriteString(r.Name)
	writeSuffix(b, nil, r.TypeFilter)
	return b.String()
}

// Lambda is an any or all segment applied to a collection. Variable and
// Predicate are empty for the argument-less any().
type Lambda struct {
	All       bool
	Variable  string
	Predicate Expression
}

func (*Lambda) resource() {}

// Type returns Edm.Boolean.
func (*Lambda) Type() edm.Type { return edm.Primitive(edm.Boolean) }

// IsCollection returns false.
func (*Lambda) IsCollection() bool { return false }

// String returns "any(v:predicate)" or "all(v:predicate)".
func (r *Lambda) String() string {
	name := "any"
	if r.All {
		name = "all"
	}
	if r.Predicate == nil {
		return name + "()"
	}
	return name + "(" + r.Variable + ":" + r.Predicate.String() + ")"
}

// KeyPredicate binds one key property to a value.
type KeyPredicate struct {
	Name     string
	Property *edm.Property
	Value    Expression
}

// String returns "Name=value".
func (k *KeyPredicate) String() string {
	return k.Name + "=" + k.Value.String()
}

// writeKeys writes keys in parentheses, omitting the name of a single key.
func writeKeys(b *strings.Builder, keys []*KeyPredicate) {
	switch len(keys) {
	case 0:
		return
	case 1:
		b.WriteByte('(')
		b.WriteString(keys[0].Value.String())
		b.WriteByte(')')
	default:
		b.WriteByte('(')
		joinNodes(b, keys, ",")
		b.WriteByte(')')
	}
}

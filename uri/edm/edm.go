// Package edm describes the Entity Data Model consumed by the OData URI
// parser.
//
// The parser reads a model only through the [Model] and [Container]
// interfaces, so any schema source can back it. Type descriptors
// ([PrimitiveType], [EnumType], [StructuredType]) and operation descriptors
// ([Operation]) are concrete values shared read-only between parses. The
// [Schema] type is an in-memory implementation of both interfaces, built in
// code or loaded from a YAML fixture with [LoadYAML].
package edm

import (
	"errors"
	"strings"
)

// ErrEDM wraps errors returned by the edm package.
var ErrEDM = errors.New("edm")

// FullQualifiedName is a namespace-qualified name such as "Demo.Person".
type FullQualifiedName struct {
	Namespace string
	Name      string
}

// NewFullQualifiedName splits name at its last dot. A name without a dot
// has an empty namespace.
func NewFullQualifiedName(name string) FullQualifiedName {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return FullQualifiedName{Name: name}
	}
	return FullQualifiedName{Namespace: name[:idx], Name: name[idx+1:]}
}

// String returns the dotted form of n.
func (n FullQualifiedName) String() string {
	if n.Namespace == "" {
		return n.Name
	}
	return n.Namespace + "." + n.Name
}

// Kind classifies an EDM type.
type Kind int

//revive:disable:exported
const (
	KindPrimitive Kind = iota // primitive
	KindEnum                  // enum
	KindEntity                // entity
	KindComplex               // complex
)

// String returns the lowercase name of k.
func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindEnum:
		return "enum"
	case KindEntity:
		return "entity"
	case KindComplex:
		return "complex"
	default:
		return "unknown"
	}
}

// Type is implemented by every EDM type descriptor.
type Type interface {
	// Kind returns the kind of type.
	Kind() Kind

	// FullQualifiedName returns the qualified name of the type.
	FullQualifiedName() FullQualifiedName

	// String returns the qualified name of the type as a string.
	String() string
}

// Model is the read-only capability the parser needs from a schema.
// Implementations must be safe for concurrent use by multiple parses.
type Model interface {
	// EntityContainer returns the model's single entity container.
	EntityContainer() Container

	// Type returns the type named name, including the Edm primitive types,
	// or nil if the model has no such type.
	Type(name FullQualifiedName) Type

	// StructuredType returns the entity or complex type named name, or nil.
	StructuredType(name FullQualifiedName) *StructuredType

	// EnumType returns the enumeration type named name, or nil.
	EnumType(name FullQualifiedName) *EnumType

	// BoundAction returns the action named name bound to binding (or one of
	// its base types), or nil.
	BoundAction(name, binding FullQualifiedName, collection bool) *Operation

	// UnboundAction returns the unbound action named name, or nil.
	UnboundAction(name FullQualifiedName) *Operation

	// BoundFunction returns the overload of the function named name bound
	// to binding whose non-binding parameter names equal params, or nil.
	BoundFunction(name, binding FullQualifiedName, collection bool, params []string) *Operation

	// BoundFunctions returns all overloads of name bound to binding.
	BoundFunctions(name, binding FullQualifiedName, collection bool) []*Operation

	// UnboundFunction returns the unbound overload of name whose parameter
	// names equal params, or nil.
	UnboundFunction(name FullQualifiedName, params []string) *Operation

	// UnboundFunctions returns all unbound overloads of name.
	UnboundFunctions(name FullQualifiedName) []*Operation

	// HasNamespace reports whether the model defines schema namespace ns.
	HasNamespace(ns string) bool
}

// Container is the capability to look up entity container children by name.
type Container interface {
	// Name returns the container name.
	Name() string

	// EntitySet returns the entity set named name, or nil.
	EntitySet(name string) *EntitySet

	// Singleton returns the singleton named name, or nil.
	Singleton(name string) *Singleton

	// ActionImport returns the action import named name, or nil.
	ActionImport(name string) *ActionImport

	// FunctionImport returns the function import named name, or nil.
	FunctionImport(name string) *FunctionImport
}

// EntitySet is a named collection of entities in a container.
type EntitySet struct {
	Name string
	Type *StructuredType
}

// Singleton is a named single entity in a container.
type Singleton struct {
	Name string
	Type *StructuredType
}

// ActionImport exposes an unbound action at the service root.
type ActionImport struct {
	Name   string
	Action *Operation
}

// FunctionImport exposes the overloads of an unbound function at the
// service root.
type FunctionImport struct {
	Name     string
	Function FullQualifiedName
}

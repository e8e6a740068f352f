package edm

import (
	"fmt"
	"slices"

	"golang.org/x/exp/maps"
)

// Schema is an in-memory [Model] and [Container]. Build it with the Add*
// methods, then share it read-only between any number of concurrent parses.
type Schema struct {
	container       string
	namespaces      map[string]bool
	types           map[FullQualifiedName]Type
	actions         map[FullQualifiedName][]*Operation
	functions       map[FullQualifiedName][]*Operation
	entitySets      map[string]*EntitySet
	singletons      map[string]*Singleton
	actionImports   map[string]*ActionImport
	functionImports map[string]*FunctionImport
}

// NewSchema creates an empty schema whose entity container is named
// container.
func NewSchema(container string) *Schema {
	return &Schema{
		container:       container,
		namespaces:      map[string]bool{},
		types:           map[FullQualifiedName]Type{},
		actions:         map[FullQualifiedName][]*Operation{},
		functions:       map[FullQualifiedName][]*Operation{},
		entitySets:      map[string]*EntitySet{},
		singletons:      map[string]*Singleton{},
		actionImports:   map[string]*ActionImport{},
		functionImports: map[string]*FunctionImport{},
	}
}

// AddType registers an entity, complex, or enum type. Returns an error if a
// type with the same name already exists.
func (s *Schema) AddType(typ Type) error {
	name := typ.FullQualifiedName()
	if name.Namespace == "" || name.Namespace == EdmNamespace {
		return fmt.Errorf("%w: invalid namespace for type %q", ErrEDM, name)
	}
	if _, ok := s.types[name]; ok {
		return fmt.Errorf("%w: duplicate type %q", ErrEDM, name)
	}
	s.types[name] = typ
	s.namespaces[name.Namespace] = true
	return nil
}

// AddOperation registers an action or function overload.
func (s *Schema) AddOperation(op *Operation) error {
	if op.Name.Namespace == "" {
		return fmt.Errorf("%w: operation %q must be namespace-qualified", ErrEDM, op.Name)
	}
	if op.Bound && len(op.Parameters) == 0 {
		return fmt.Errorf("%w: bound operation %q has no binding parameter", ErrEDM, op.Name)
	}
	s.namespaces[op.Name.Namespace] = true
	if op.IsAction() {
		s.actions[op.Name] = append(s.actions[op.Name], op)
	} else {
		s.functions[op.Name] = append(s.functions[op.Name], op)
	}
	return nil
}

// AddEntitySet adds an entity set of type typ to the container.
func (s *Schema) AddEntitySet(name string, typ *StructuredType) *EntitySet {
	set := &EntitySet{Name: name, Type: typ}
	s.entitySets[name] = set
	return set
}

// AddSingleton adds a singleton of type typ to the container.
func (s *Schema) AddSingleton(name string, typ *StructuredType) *Singleton {
	single := &Singleton{Name: name, Type: typ}
	s.singletons[name] = single
	return single
}

// AddActionImport exposes the unbound action op at the service root.
func (s *Schema) AddActionImport(name string, op *Operation) *ActionImport {
	imp := &ActionImport{Name: name, Action: op}
	s.actionImports[name] = imp
	return imp
}

// AddFunctionImport exposes the unbound function overloads named fn at the
// service root.
func (s *Schema) AddFunctionImport(name string, fn FullQualifiedName) *FunctionImport {
	imp := &FunctionImport{Name: name, Function: fn}
	s.functionImports[name] = imp
	return imp
}

// EntityContainer returns s.
func (s *Schema) EntityContainer() Container { return s }

// Name returns the entity container name.
func (s *Schema) Name() string { return s.container }

// EntitySet returns the entity set named name, or nil.
func (s *Schema) EntitySet(name string) *EntitySet { return s.entitySets[name] }

// Singleton returns the singleton named name, or nil.
func (s *Schema) Singleton(name string) *Singleton { return s.singletons[name] }

// ActionImport returns the action import named name, or nil.
func (s *Schema) ActionImport(name string) *ActionImport { return s.actionImports[name] }

// FunctionImport returns the function import named name, or nil.
func (s *Schema) FunctionImport(name string) *FunctionImport { return s.functionImports[name] }

// EntitySetNames returns the names of all entity sets, sorted.
func (s *Schema) EntitySetNames() []string {
	names := maps.Keys(s.entitySets)
	slices.Sort(names)
	return names
}

// Namespaces returns the schema namespaces known to s, sorted.
func (s *Schema) Namespaces() []string {
	names := maps.Keys(s.namespaces)
	slices.Sort(names)
	return names
}

// HasNamespace reports whether s defines types or operations in ns.
func (s *Schema) HasNamespace(ns string) bool { return s.namespaces[ns] }

// Type returns the type named name, including primitive types.
func (s *Schema) Type(name FullQualifiedName) Type {
	if name.Namespace == EdmNamespace {
		if p, ok := PrimitiveByName(name.Name); ok {
			return p
		}
		return nil
	}
	return s.types[name]
}

// StructuredType returns the entity or complex type named name, or nil.
func (s *Schema) StructuredType(name FullQualifiedName) *StructuredType {
	st, _ := s.types[name].(*StructuredType)
	return st
}

// EnumType returns the enumeration type named name, or nil.
func (s *Schema) EnumType(name FullQualifiedName) *EnumType {
	et, _ := s.types[name].(*EnumType)
	return et
}

// bindingChain returns binding followed by the names of its base types.
func (s *Schema) bindingChain(binding FullQualifiedName) []FullQualifiedName {
	chain := []FullQualifiedName{binding}
	if st := s.StructuredType(binding); st != nil {
		for c := st.base; c != nil; c = c.base {
			chain = append(chain, c.name)
		}
	}
	return chain
}

// BoundAction returns the action named name bound to binding or one of its
// base types.
func (s *Schema) BoundAction(name, binding FullQualifiedName, collection bool) *Operation {
	for _, b := range s.bindingChain(binding) {
		for _, op := range s.actions[name] {
			if op.boundTo(b, collection) {
				return op
			}
		}
	}
	return nil
}

// UnboundAction returns the unbound action named name.
func (s *Schema) UnboundAction(name FullQualifiedName) *Operation {
	for _, op := range s.actions[name] {
		if !op.Bound {
			return op
		}
	}
	return nil
}

// BoundFunction returns the overload of name bound to binding or one of its
// base types whose parameter names equal params.
func (s *Schema) BoundFunction(name, binding FullQualifiedName, collection bool, params []string) *Operation {
	for _, op := range s.BoundFunctions(name, binding, collection) {
		if op.hasParameterNames(params) {
			return op
		}
	}
	return nil
}

// BoundFunctions returns the overloads of name bound to binding, most
// derived binding first.
func (s *Schema) BoundFunctions(name, binding FullQualifiedName, collection bool) []*Operation {
	var found []*Operation
	for _, b := range s.bindingChain(binding) {
		for _, op := range s.functions[name] {
			if op.boundTo(b, collection) {
				found = append(found, op)
			}
		}
	}
	return found
}

// UnboundFunction returns the unbound overload of name whose parameter names
// equal params.
func (s *Schema) UnboundFunction(name FullQualifiedName, params []string) *Operation {
	for _, op := range s.UnboundFunctions(name) {
		if op.hasParameterNames(params) {
			return op
		}
	}
	return nil
}

// UnboundFunctions returns the unbound overloads of name.
func (s *Schema) UnboundFunctions(name FullQualifiedName) []*Operation {
	var found []*Operation
	for _, op := range s.functions[name] {
		if !op.Bound {
			found = append(found, op)
		}
	}
	return found
}

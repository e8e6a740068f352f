package edm

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlSchema is the YAML fixture format read by LoadYAML. It is a compact
// description for tests and tools, not the CSDL wire format.
type yamlSchema struct {
	Namespace       string            `yaml:"namespace"`
	Container       string            `yaml:"container"`
	Enums           []yamlEnum        `yaml:"enums"`
	Entities        []yamlStructured  `yaml:"entities"`
	Complexes       []yamlStructured  `yaml:"complexes"`
	Actions         []yamlOperation   `yaml:"actions"`
	Functions       []yamlOperation   `yaml:"functions"`
	EntitySets      []yamlContainerEl `yaml:"entitySets"`
	Singletons      []yamlContainerEl `yaml:"singletons"`
	ActionImports   []yamlContainerEl `yaml:"actionImports"`
	FunctionImports []yamlContainerEl `yaml:"functionImports"`
}

type yamlEnum struct {
	Name       string   `yaml:"name"`
	Underlying string   `yaml:"underlying"`
	Flags      bool     `yaml:"flags"`
	Members    []string `yaml:"members"`
}

type yamlProperty struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Nullable *bool  `yaml:"nullable"`
	Partner  string `yaml:"partner"`
}

type yamlStructured struct {
	Name             string         `yaml:"name"`
	Base             string         `yaml:"base"`
	Key              []string       `yaml:"key"`
	Abstract         bool           `yaml:"abstract"`
	Open             bool           `yaml:"open"`
	HasStream        bool           `yaml:"hasStream"`
	Properties       []yamlProperty `yaml:"properties"`
	Navigations      []yamlProperty `yaml:"navigations"`
	CustomAggregates []yamlProperty `yaml:"customAggregates"`
}

type yamlOperation struct {
	Name       string         `yaml:"name"`
	Bound      bool           `yaml:"bound"`
	Composable bool           `yaml:"composable"`
	Parameters []yamlProperty `yaml:"parameters"`
	Returns    string         `yaml:"returns"`
}

type yamlContainerEl struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Action   string `yaml:"action"`
	Function string `yaml:"function"`
}

// LoadYAML reads a YAML schema fixture from r and builds a Schema from it.
// Type references use qualified names ("Edm.String", "Demo.Person") and
// "Collection(...)" for collection-valued members.
func LoadYAML(r io.Reader) (*Schema, error) {
	var doc yamlSchema
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode schema: %w", ErrEDM, err)
	}
	if doc.Namespace == "" {
		return nil, fmt.Errorf("%w: schema namespace is required", ErrEDM)
	}
	if doc.Container == "" {
		doc.Container = "Container"
	}

	l := &yamlLoader{doc: &doc, schema: NewSchema(doc.Container)}
	if err := l.load(); err != nil {
		return nil, err
	}
	return l.schema, nil
}

type yamlLoader struct {
	doc    *yamlSchema
	schema *Schema
}

func (l *yamlLoader) qualify(name string) FullQualifiedName {
	if strings.Contains(name, ".") {
		return NewFullQualifiedName(name)
	}
	return FullQualifiedName{Namespace: l.doc.Namespace, Name: name}
}

func (l *yamlLoader) load() error {
	for _, e := range l.doc.Enums {
		et := NewEnumType(l.qualify(e.Name), e.Flags, e.Members...)
		if e.Underlying != "" {
			p, ok := PrimitiveByName(e.Underlying)
			if !ok || !p.kind.IsInteger() {
				return fmt.Errorf("%w: invalid underlying type %q for enum %v", ErrEDM, e.Underlying, e.Name)
			}
			et.SetUnderlying(p.kind)
		}
		if err := l.schema.AddType(et); err != nil {
			return err
		}
	}

	// Declare every structured type before resolving references so members
	// may point forward.
	declare := func(list []yamlStructured, ctor func(FullQualifiedName, *StructuredType) *StructuredType) error {
		for _, st := range list {
			t := ctor(l.qualify(st.Name), nil).
				SetAbstract(st.Abstract).
				SetOpen(st.Open).
				SetHasStream(st.HasStream).
				SetKey(st.Key...)
			if err := l.schema.AddType(t); err != nil {
				return err
			}
		}
		return nil
	}
	if err := declare(l.doc.Entities, NewEntityType); err != nil {
		return err
	}
	if err := declare(l.doc.Complexes, NewComplexType); err != nil {
		return err
	}

	for _, list := range [][]yamlStructured{l.doc.Entities, l.doc.Complexes} {
		for _, st := range list {
			if err := l.fillStructured(st); err != nil {
				return err
			}
		}
	}

	if err := l.loadOperations(); err != nil {
		return err
	}
	return l.loadContainer()
}

func (l *yamlLoader) fillStructured(src yamlStructured) error {
	t := l.schema.StructuredType(l.qualify(src.Name))
	if src.Base != "" {
		base := l.schema.StructuredType(l.qualify(src.Base))
		if base == nil || base.kind != t.kind {
			return fmt.Errorf("%w: unknown base type %q for %v", ErrEDM, src.Base, t)
		}
		t.base = base
	}

	for _, p := range src.Properties {
		typ, coll, err := l.resolve(p.Type)
		if err != nil {
			return err
		}
		nullable := !coll
		if p.Nullable != nil {
			nullable = *p.Nullable
		}
		t.properties = append(t.properties, &Property{
			Name: p.Name, Type: typ, Collection: coll, Nullable: nullable,
		})
	}

	for _, n := range src.Navigations {
		typ, coll, err := l.resolve(n.Type)
		if err != nil {
			return err
		}
		target, ok := typ.(*StructuredType)
		if !ok || !target.IsEntity() {
			return fmt.Errorf("%w: navigation %v/%v must target an entity type", ErrEDM, t, n.Name)
		}
		nullable := !coll
		if n.Nullable != nil {
			nullable = *n.Nullable
		}
		t.navigations = append(t.navigations, &NavigationProperty{
			Name: n.Name, Target: target, Collection: coll, Nullable: nullable, Partner: n.Partner,
		})
	}

	for _, a := range src.CustomAggregates {
		typ, _, err := l.resolve(a.Type)
		if err != nil {
			return err
		}
		t.AddCustomAggregate(a.Name, typ)
	}
	return nil
}

func (l *yamlLoader) loadOperations() error {
	for kind, list := range map[OperationKind][]yamlOperation{
		ActionKind:   l.doc.Actions,
		FunctionKind: l.doc.Functions,
	} {
		for _, src := range list {
			op := &Operation{
				Kind:       kind,
				Name:       l.qualify(src.Name),
				Bound:      src.Bound,
				Composable: src.Composable,
			}
			for _, p := range src.Parameters {
				typ, coll, err := l.resolve(p.Type)
				if err != nil {
					return err
				}
				op.Parameters = append(op.Parameters, &Parameter{
					Name: p.Name, Type: typ, Collection: coll, Nullable: p.Nullable == nil || *p.Nullable,
				})
			}
			if src.Returns != "" {
				typ, coll, err := l.resolve(src.Returns)
				if err != nil {
					return err
				}
				op.Return = &ReturnType{Type: typ, Collection: coll, Nullable: true}
			}
			if err := l.schema.AddOperation(op); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *yamlLoader) loadContainer() error {
	for _, es := range l.doc.EntitySets {
		t := l.schema.StructuredType(l.qualify(es.Type))
		if t == nil || !t.IsEntity() {
			return fmt.Errorf("%w: entity set %q has unknown entity type %q", ErrEDM, es.Name, es.Type)
		}
		l.schema.AddEntitySet(es.Name, t)
	}
	for _, s := range l.doc.Singletons {
		t := l.schema.StructuredType(l.qualify(s.Type))
		if t == nil || !t.IsEntity() {
			return fmt.Errorf("%w: singleton %q has unknown entity type %q", ErrEDM, s.Name, s.Type)
		}
		l.schema.AddSingleton(s.Name, t)
	}
	for _, ai := range l.doc.ActionImports {
		op := l.schema.UnboundAction(l.qualify(ai.Action))
		if op == nil {
			return fmt.Errorf("%w: action import %q has unknown action %q", ErrEDM, ai.Name, ai.Action)
		}
		l.schema.AddActionImport(ai.Name, op)
	}
	for _, fi := range l.doc.FunctionImports {
		name := l.qualify(fi.Function)
		if len(l.schema.UnboundFunctions(name)) == 0 {
			return fmt.Errorf("%w: function import %q has unknown function %q", ErrEDM, fi.Name, fi.Function)
		}
		l.schema.AddFunctionImport(fi.Name, name)
	}
	return nil
}

// resolve maps a type reference to a type and collection flag.
func (l *yamlLoader) resolve(ref string) (Type, bool, error) {
	coll := false
	if strings.HasPrefix(ref, "Collection(") && strings.HasSuffix(ref, ")") {
		coll = true
		ref = ref[len("Collection(") : len(ref)-1]
	}
	if p, ok := PrimitiveByName(ref); ok && strings.HasPrefix(ref, EdmNamespace+".") {
		return p, coll, nil
	}
	if typ := l.schema.Type(l.qualify(ref)); typ != nil {
		return typ, coll, nil
	}
	return nil, false, fmt.Errorf("%w: unknown type %q", ErrEDM, ref)
}

package edm

import (
	"slices"
)

// OperationKind distinguishes actions from functions.
type OperationKind int

//revive:disable:exported
const (
	ActionKind   OperationKind = iota // action
	FunctionKind                      // function
)

// Parameter is an operation parameter.
type Parameter struct {
	Name       string
	Type       Type
	Collection bool
	Nullable   bool
}

// ReturnType is the result type of an operation.
type ReturnType struct {
	Type       Type
	Collection bool
	Nullable   bool
}

// Operation describes an action or function. For bound operations the first
// parameter is the binding parameter.
type Operation struct {
	Kind       OperationKind
	Name       FullQualifiedName
	Bound      bool
	Composable bool
	Parameters []*Parameter
	Return     *ReturnType
}

// IsFunction reports whether o is a function.
func (o *Operation) IsFunction() bool { return o.Kind == FunctionKind }

// IsAction reports whether o is an action.
func (o *Operation) IsAction() bool { return o.Kind == ActionKind }

// BindingParameter returns the binding parameter of a bound operation, or
// nil.
func (o *Operation) BindingParameter() *Parameter {
	if !o.Bound || len(o.Parameters) == 0 {
		return nil
	}
	return o.Parameters[0]
}

// Parameter returns the non-binding parameter named name, or nil.
func (o *Operation) Parameter(name string) *Parameter {
	for _, p := range o.nonBinding() {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// ParameterNames returns the names of the non-binding parameters.
func (o *Operation) ParameterNames() []string {
	params := o.nonBinding()
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}

func (o *Operation) nonBinding() []*Parameter {
	if o.Bound && len(o.Parameters) > 0 {
		return o.Parameters[1:]
	}
	return o.Parameters
}

// hasParameterNames reports whether the non-binding parameter names of o
// are exactly names, in any order.
func (o *Operation) hasParameterNames(names []string) bool {
	have := o.ParameterNames()
	if len(have) != len(names) {
		return false
	}
	want := slices.Clone(names)
	slices.Sort(have)
	slices.Sort(want)
	return slices.Equal(have, want)
}

// boundTo reports whether o is bound to a type with name binding and the
// given collection flag.
func (o *Operation) boundTo(binding FullQualifiedName, collection bool) bool {
	p := o.BindingParameter()
	return p != nil && p.Type != nil && p.Type.FullQualifiedName() == binding && p.Collection == collection
}

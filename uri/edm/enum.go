package edm

import "strconv"

// EnumMember is a named value of an enumeration type.
type EnumMember struct {
	Name  string
	Value int64
}

// EnumType describes an enumeration type.
type EnumType struct {
	name       FullQualifiedName
	underlying PrimitiveKind
	flags      bool
	members    []EnumMember
}

// NewEnumType creates an enumeration type with underlying type Int32 and
// members valued 0, 1, 2 and so on, or powers of two when flags is true.
func NewEnumType(name FullQualifiedName, flags bool, members ...string) *EnumType {
	t := &EnumType{name: name, underlying: Int32, flags: flags}
	for i, m := range members {
		v := int64(i)
		if flags {
			v = 1 << i
		}
		t.members = append(t.members, EnumMember{Name: m, Value: v})
	}
	return t
}

// SetUnderlying sets the underlying integral kind and returns t.
func (t *EnumType) SetUnderlying(kind PrimitiveKind) *EnumType {
	t.underlying = kind
	return t
}

// AddMember appends a member with an explicit value and returns t.
func (t *EnumType) AddMember(name string, value int64) *EnumType {
	t.members = append(t.members, EnumMember{Name: name, Value: value})
	return t
}

// Kind returns KindEnum.
func (*EnumType) Kind() Kind { return KindEnum }

// FullQualifiedName returns the qualified name of t.
func (t *EnumType) FullQualifiedName() FullQualifiedName { return t.name }

// String returns the qualified name of t.
func (t *EnumType) String() string { return t.name.String() }

// Underlying returns the underlying integral kind of t.
func (t *EnumType) Underlying() PrimitiveKind { return t.underlying }

// IsFlags reports whether t allows combined values.
func (t *EnumType) IsFlags() bool { return t.flags }

// Members returns the members of t in declaration order.
func (t *EnumType) Members() []EnumMember {
	return append([]EnumMember(nil), t.members...)
}

// Member resolves a member by name or by its integer value in text.
func (t *EnumType) Member(text string) (EnumMember, bool) {
	for _, m := range t.members {
		if m.Name == text {
			return m, true
		}
	}
	if v, err := strconv.ParseInt(text, 10, 64); err == nil {
		for _, m := range t.members {
			if m.Value == v {
				return m, true
			}
		}
	}
	return EnumMember{}, false
}

package decorator

import (
	"reflect"
	"sort"
)

// Table maps metadata keys to their values.
type Table map[string]any

// Keys returns the table keys in sorted order.
func (t Table) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (t Table) clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// MemberKey identifies a method by the qualified name of its receiver's
// base type and the method name.
type MemberKey struct {
	Type     string `json:"type"`
	Property string `json:"property"`
}

// String returns "Type.Property".
func (k MemberKey) String() string {
	if k.Type == "" {
		return k.Property
	}
	return k.Type + "." + k.Property
}

// memberID identifies a member by type identity. Distinct types that share
// a qualified name (function-local types) get distinct ids.
type memberID struct {
	base     reflect.Type
	property string
}

// Member is the installed definition of a method together with its metadata.
type Member struct {
	Key   MemberKey
	Owner reflect.Type

	// Func is the method expression: the receiver is the first argument.
	Func reflect.Value

	base  reflect.Type
	table Table
}

func (m *Member) id() memberID {
	return memberID{base: m.base, property: m.Key.Property}
}

// HasMetadata reports whether the member's table has been created.
func (m *Member) HasMetadata() bool {
	return m != nil && m.table != nil
}

func (m *Member) clone() *Member {
	c := *m
	c.table = m.table.clone()
	return &c
}

// typeName returns the qualified name used in a MemberKey.
func typeName(t reflect.Type) string {
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

// baseType unwraps a target into its named, non-pointer type.
func baseType(target any) (reflect.Type, bool) {
	if target == nil {
		return nil, false
	}

	t, ok := target.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(target)
	}
	if t == nil {
		return nil, false
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" || t.Kind() == reflect.Interface {
		return nil, false
	}
	return t, true
}

// resolve builds a Member for property on target by reflection. Methods
// declared on the pointer receiver are found as well as value-receiver ones.
func resolve(target any, property string) (*Member, error) {
	t, ok := baseType(target)
	if !ok {
		return nil, newError(ErrInvalidTarget, MemberKey{Property: property}, "")
	}

	key := MemberKey{Type: typeName(t), Property: property}
	if property == "" {
		return nil, newError(ErrPropertyNotFound, key, "")
	}

	for _, owner := range []reflect.Type{t, reflect.PointerTo(t)} {
		if method, found := owner.MethodByName(property); found {
			return &Member{Key: key, Owner: owner, Func: method.Func, base: t}, nil
		}
	}
	return nil, newError(ErrPropertyNotFound, key, "")
}

package xlsxreader

import (
	"fmt"
	"strconv"
)

// Integer is the set of underlying types an enumeration can use.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// EnumMember is one named value of an enumeration.
type EnumMember[T Integer] struct {
	Name  string
	Value T
}

// EnumType is a closed set of named integer values.
//
// Cell text matches a member when it equals the member name exactly
// (case-sensitive) or when it is the decimal form of a member's value.
type EnumType[T Integer] struct {
	name    string
	members []EnumMember[T]
	byName  map[string]T
	byValue map[T]string
}

// NewEnumType declares an enumeration. It panics when members is empty or
// when a name or value is repeated: both are mistakes in code, not in data.
func NewEnumType[T Integer](name string, members ...EnumMember[T]) *EnumType[T] {
	if len(members) == 0 {
		panic(fmt.Sprintf("xlsxreader: enum %s has no members", name))
	}
	e := &EnumType[T]{
		name:    name,
		members: make([]EnumMember[T], len(members)),
		byName:  make(map[string]T, len(members)),
		byValue: make(map[T]string, len(members)),
	}
	copy(e.members, members)
	for _, m := range members {
		if m.Name == "" {
			panic(fmt.Sprintf("xlsxreader: enum %s has a member with an empty name", name))
		}
		if _, dup := e.byName[m.Name]; dup {
			panic(fmt.Sprintf("xlsxreader: enum %s declares %q twice", name, m.Name))
		}
		if prev, dup := e.byValue[m.Value]; dup {
			panic(fmt.Sprintf("xlsxreader: enum %s gives %q and %q the same value", name, prev, m.Name))
		}
		e.byName[m.Name] = m.Value
		e.byValue[m.Value] = m.Name
	}
	return e
}

// String returns the type name given at declaration.
func (e *EnumType[T]) String() string { return e.name }

// Members returns the members in declaration order.
func (e *EnumType[T]) Members() []EnumMember[T] {
	out := make([]EnumMember[T], len(e.members))
	copy(out, e.members)
	return out
}

// Parse resolves text to a member value.
func (e *EnumType[T]) Parse(text string) (T, error) {
	if v, ok := e.byName[text]; ok {
		return v, nil
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		for _, m := range e.members {
			if int64(m.Value) == n {
				return m.Value, nil
			}
		}
	}
	var zero T
	return zero, fmt.Errorf("%q is not a member of %s", text, e.name)
}

// Name returns the member name for v.
func (e *EnumType[T]) Name(v T) (string, bool) {
	name, ok := e.byValue[v]
	return name, ok
}

// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package variant

import (
	"fmt"
	"sort"
)

// This file defines the members of builtin types: properties such as
// Vector2.x, methods such as String.length, and constants such as
// Vector2.ZERO.

var void PropertyInfo

func method(name string, ret PropertyInfo, args ...PropertyInfo) *MethodInfo {
	return &MethodInfo{Name: name, Args: args, Return: ret}
}

func withDefaults(m *MethodInfo, defaults ...Value) *MethodInfo {
	m.Defaults = defaults
	return m
}

func vararg(m *MethodInfo) *MethodInfo {
	m.Vararg = true
	return m
}

var (
	methods    = make(map[Type]map[string]*MethodInfo)
	properties = make(map[Type][]PropertyInfo)
	constants  = make(map[Type]map[string]Value)
)

func define(t Type, ms ...*MethodInfo) {
	table := methods[t]
	if table == nil {
		table = make(map[string]*MethodInfo)
		methods[t] = table
	}
	for _, m := range ms {
		table[m.Name] = m
	}
}

func init() {
	stringMethods := []*MethodInfo{
		method("length", Of(INT)),
		method("is_empty", Of(BOOL)),
		method("to_upper", Of(STRING)),
		method("to_lower", Of(STRING)),
		method("begins_with", Of(BOOL), Arg("text", STRING)),
		method("ends_with", Of(BOOL), Arg("text", STRING)),
		method("contains", Of(BOOL), Arg("what", STRING)),
		withDefaults(method("find", Of(INT), Arg("what", STRING), Arg("from", INT)), Int(0)),
		withDefaults(method("substr", Of(STRING), Arg("from", INT), Arg("len", INT)), Int(-1)),
		withDefaults(method("split", Of(PACKED_STRING_ARRAY), Arg("delimiter", STRING), Arg("allow_empty", BOOL)), String(""), Bool(true)),
		method("replace", Of(STRING), Arg("what", STRING), Arg("forwhat", STRING)),
		method("repeat", Of(STRING), Arg("count", INT)),
		withDefaults(method("strip_edges", Of(STRING), Arg("left", BOOL), Arg("right", BOOL)), Bool(true), Bool(true)),
		method("to_int", Of(INT)),
		method("to_float", Of(FLOAT)),
		method("is_valid_int", Of(BOOL)),
		withDefaults(method("format", Of(STRING), PropertyInfo{Name: "values", Variant: true}, Arg("placeholder", STRING)), String("{_}")),
	}
	define(STRING, stringMethods...)
	define(STRING_NAME, stringMethods...)

	define(NODE_PATH,
		method("is_empty", Of(BOOL)),
		method("is_absolute", Of(BOOL)),
		method("get_name_count", Of(INT)),
		method("get_name", Of(STRING_NAME), Arg("idx", INT)),
	)

	for _, t := range []Type{VECTOR2, VECTOR3} {
		define(t,
			method("length", Of(FLOAT)),
			method("length_squared", Of(FLOAT)),
			method("normalized", Of(t)),
			method("abs", Of(t)),
			method("dot", Of(FLOAT), Arg("with", t)),
			method("distance_to", Of(FLOAT), Arg("to", t)),
			method("lerp", Of(t), Arg("to", t), Arg("weight", FLOAT)),
			method("is_normalized", Of(BOOL)),
		)
	}
	define(VECTOR2, method("angle", Of(FLOAT)), method("rotated", Of(VECTOR2), Arg("angle", FLOAT)))
	define(VECTOR3, method("cross", Of(VECTOR3), Arg("with", VECTOR3)))
	for _, t := range []Type{VECTOR2I, VECTOR3I} {
		define(t,
			method("length", Of(FLOAT)),
			method("length_squared", Of(INT)),
			method("abs", Of(t)),
			method("sign", Of(t)),
		)
	}

	define(COLOR,
		method("lightened", Of(COLOR), Arg("amount", FLOAT)),
		method("darkened", Of(COLOR), Arg("amount", FLOAT)),
		method("inverted", Of(COLOR)),
		withDefaults(method("to_html", Of(STRING), Arg("with_alpha", BOOL)), Bool(true)),
		method("get_luminance", Of(FLOAT)),
	)

	define(ARRAY,
		method("size", Of(INT)),
		method("is_empty", Of(BOOL)),
		method("clear", void),
		method("append", void, Any),
		method("push_back", void, Any),
		method("push_front", void, Any),
		method("pop_back", Any),
		method("pop_front", Any),
		method("front", Any),
		method("back", Any),
		method("has", Of(BOOL), Any),
		method("erase", void, Any),
		method("insert", Of(INT), Arg("position", INT), Any),
		withDefaults(method("find", Of(INT), Any, Arg("from", INT)), Int(0)),
		method("count", Of(INT), Any),
		method("resize", Of(INT), Arg("size", INT)),
		method("sort", void),
		method("reverse", void),
		withDefaults(method("duplicate", Of(ARRAY), Arg("deep", BOOL)), Bool(false)),
		method("is_read_only", Of(BOOL)),
		method("is_typed", Of(BOOL)),
		method("filter", Of(ARRAY), Arg("method", CALLABLE)),
		method("map", Of(ARRAY), Arg("method", CALLABLE)),
		withDefaults(method("reduce", Any, Arg("method", CALLABLE), PropertyInfo{Name: "accum", Variant: true}), Null),
		method("any", Of(BOOL), Arg("method", CALLABLE)),
		method("all", Of(BOOL), Arg("method", CALLABLE)),
		method("max", Any),
		method("min", Any),
	)

	define(DICTIONARY,
		method("size", Of(INT)),
		method("is_empty", Of(BOOL)),
		method("clear", void),
		method("has", Of(BOOL), PropertyInfo{Name: "key", Variant: true}),
		method("has_all", Of(BOOL), Arg("keys", ARRAY)),
		method("erase", Of(BOOL), PropertyInfo{Name: "key", Variant: true}),
		method("keys", Of(ARRAY)),
		method("values", Of(ARRAY)),
		withDefaults(method("get", Any, PropertyInfo{Name: "key", Variant: true}, PropertyInfo{Name: "default", Variant: true}), Null),
		withDefaults(method("merge", void, Arg("dictionary", DICTIONARY), Arg("overwrite", BOOL)), Bool(false)),
		withDefaults(method("duplicate", Of(DICTIONARY), Arg("deep", BOOL)), Bool(false)),
		method("is_read_only", Of(BOOL)),
	)

	for t := PACKED_BYTE_ARRAY; t <= PACKED_STRING_ARRAY; t++ {
		elem := Arg("value", PackedElem(t))
		define(t,
			method("size", Of(INT)),
			method("is_empty", Of(BOOL)),
			method("clear", void),
			method("append", Of(BOOL), elem),
			method("push_back", Of(BOOL), elem),
			method("has", Of(BOOL), elem),
			method("resize", Of(INT), Arg("new_size", INT)),
			method("reverse", void),
			method("sort", void),
			method("duplicate", Of(t)),
		)
	}
	define(PACKED_STRING_ARRAY, withDefaults(method("join", Of(STRING), Arg("delimiter", STRING)), String("")))

	define(CALLABLE,
		vararg(method("call", Any)),
		vararg(method("call_deferred", void)),
		method("callv", Any, Arg("arguments", ARRAY)),
		vararg(method("bind", Of(CALLABLE))),
		method("is_valid", Of(BOOL)),
		method("is_null", Of(BOOL)),
		method("get_method", Of(STRING_NAME)),
		method("get_object", ObjectOf("Object")),
	)

	define(SIGNAL,
		vararg(method("emit", void)),
		withDefaults(method("connect", Of(INT), Arg("callable", CALLABLE), Arg("flags", INT)), Int(0)),
		method("disconnect", void, Arg("callable", CALLABLE)),
		method("is_connected", Of(BOOL), Arg("callable", CALLABLE)),
		method("get_name", Of(STRING_NAME)),
		method("get_object", ObjectOf("Object")),
	)

	for _, m := range methods {
		for _, mi := range m {
			mi.Const = true
		}
	}
	for _, name := range []string{"clear", "append", "push_back", "push_front", "pop_back", "pop_front",
		"erase", "insert", "resize", "sort", "reverse", "merge"} {
		for _, m := range methods {
			if mi, ok := m[name]; ok {
				mi.Const = false
			}
		}
	}

	properties[VECTOR2] = []PropertyInfo{Arg("x", FLOAT), Arg("y", FLOAT)}
	properties[VECTOR2I] = []PropertyInfo{Arg("x", INT), Arg("y", INT)}
	properties[VECTOR3] = []PropertyInfo{Arg("x", FLOAT), Arg("y", FLOAT), Arg("z", FLOAT)}
	properties[VECTOR3I] = []PropertyInfo{Arg("x", INT), Arg("y", INT), Arg("z", INT)}
	properties[COLOR] = []PropertyInfo{Arg("r", FLOAT), Arg("g", FLOAT), Arg("b", FLOAT), Arg("a", FLOAT)}

	constants[VECTOR2] = map[string]Value{
		"ZERO": Vector2{}, "ONE": Vector2{1, 1},
		"LEFT": Vector2{-1, 0}, "RIGHT": Vector2{1, 0}, "UP": Vector2{0, -1}, "DOWN": Vector2{0, 1},
	}
	constants[VECTOR2I] = map[string]Value{
		"ZERO": Vector2i{}, "ONE": Vector2i{1, 1},
		"LEFT": Vector2i{-1, 0}, "RIGHT": Vector2i{1, 0}, "UP": Vector2i{0, -1}, "DOWN": Vector2i{0, 1},
	}
	constants[VECTOR3] = map[string]Value{
		"ZERO": Vector3{}, "ONE": Vector3{1, 1, 1},
		"UP":   Vector3{0, 1, 0}, "DOWN": Vector3{0, -1, 0}, "FORWARD": Vector3{0, 0, -1}, "BACK": Vector3{0, 0, 1},
	}
	constants[VECTOR3I] = map[string]Value{"ZERO": Vector3i{}, "ONE": Vector3i{1, 1, 1}}
	constants[COLOR] = make(map[string]Value)
	for name, c := range namedColors {
		constants[COLOR][upper(name)] = c
	}
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'a' <= c && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

// Method returns the named method of builtin type t.
func Method(t Type, name string) (*MethodInfo, bool) {
	m, ok := methods[t][name]
	return m, ok
}

// Property returns the named property of builtin type t.
func Property(t Type, name string) (PropertyInfo, bool) {
	for _, p := range properties[t] {
		if p.Name == name {
			return p, true
		}
	}
	return PropertyInfo{}, false
}

// Constant returns the named constant of builtin type t, e.g. Vector2.ZERO.
func Constant(t Type, name string) (Value, bool) {
	v, ok := constants[t][name]
	return v, ok
}

// MemberNames returns the sorted names of the properties, methods and
// constants of builtin type t.
func MemberNames(t Type) []string {
	var names []string
	for name := range methods[t] {
		names = append(names, name)
	}
	for _, p := range properties[t] {
		names = append(names, p.Name)
	}
	for name := range constants[t] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetNamed returns the named property of a constant value.
func GetNamed(v Value, name string) (Value, error) {
	switch v := v.(type) {
	case Vector2:
		switch name {
		case "x":
			return Float(v.X), nil
		case "y":
			return Float(v.Y), nil
		}
	case Vector2i:
		switch name {
		case "x":
			return Int(v.X), nil
		case "y":
			return Int(v.Y), nil
		}
	case Vector3:
		switch name {
		case "x":
			return Float(v.X), nil
		case "y":
			return Float(v.Y), nil
		case "z":
			return Float(v.Z), nil
		}
	case Vector3i:
		switch name {
		case "x":
			return Int(v.X), nil
		case "y":
			return Int(v.Y), nil
		case "z":
			return Int(v.Z), nil
		}
	case Color:
		switch name {
		case "r":
			return Float(v.R), nil
		case "g":
			return Float(v.G), nil
		case "b":
			return Float(v.B), nil
		case "a":
			return Float(v.A), nil
		}
	case *Dictionary:
		if x, ok := v.Get(String(name)); ok {
			return x, nil
		}
	}
	return nil, fmt.Errorf("invalid access to property or key %q on a base object of type %s", name, v.Type())
}

// GetIndexed returns the element of a constant container or string at key.
func GetIndexed(v, key Value) (Value, error) {
	switch v := v.(type) {
	case *Array:
		i, ok := key.(Int)
		if !ok {
			return nil, fmt.Errorf("invalid index type %s for a base of type %s", key.Type(), v.Type())
		}
		n := Int(v.Len())
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			return nil, fmt.Errorf("index %d out of range (size %d)", key, n)
		}
		return v.Index(int(i)), nil
	case String:
		i, ok := key.(Int)
		if !ok {
			return nil, fmt.Errorf("invalid index type %s for a base of type String", key.Type())
		}
		r := []rune(string(v))
		n := Int(len(r))
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			return nil, fmt.Errorf("index %d out of range (size %d)", key, n)
		}
		return String(r[i]), nil
	case *Dictionary:
		if x, ok := v.Get(key); ok {
			return x, nil
		}
		return nil, fmt.Errorf("invalid key %s", Repr(key))
	}
	if s, ok := key.(String); ok {
		return GetNamed(v, string(s))
	}
	if s, ok := key.(StringName); ok {
		return GetNamed(v, string(s))
	}
	return nil, fmt.Errorf("cannot index a value of type %s", v.Type())
}

// IndexType returns the type of v[key] for a base of type t,
// given the statically known key type. It reports false if
// values of type t cannot be indexed by key.
func IndexType(t, key Type) (PropertyInfo, bool) {
	switch t {
	case STRING:
		if key == INT || key == FLOAT {
			return Of(STRING), true
		}
	case ARRAY:
		if key == INT || key == FLOAT {
			return Any, true
		}
	case DICTIONARY, OBJECT:
		return Any, true
	case VECTOR2, VECTOR2I, VECTOR3, VECTOR3I, COLOR:
		switch key {
		case INT:
			return properties[t][0], true
		case STRING, STRING_NAME:
			return properties[t][0], true
		}
	}
	if IsPackedArray(t) && (key == INT || key == FLOAT) {
		return Of(PackedElem(t)), true
	}
	return PropertyInfo{}, false
}

// IsKeyed reports whether values of type t are indexed by arbitrary keys,
// so that the index type cannot be checked statically.
func IsKeyed(t Type) bool { return t == DICTIONARY || t == OBJECT }

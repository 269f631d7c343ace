// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package variant defines the dynamic value model of the language:
// the builtin type tags, the values that may appear as compile-time
// constants, and the operator, conversion and constructor tables
// consulted by the analyzer for typing and constant folding.
//
// The package does not execute programs. Values here are those that
// can be computed statically; the interpreter that runs compiled code
// has its own representation.
package variant // import "go.gdlang.net/variant"

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// A Type is the tag of a builtin value type.
type Type uint8

const (
	NIL Type = iota
	BOOL
	INT
	FLOAT
	STRING
	VECTOR2
	VECTOR2I
	VECTOR3
	VECTOR3I
	COLOR
	STRING_NAME
	NODE_PATH
	OBJECT
	CALLABLE
	SIGNAL
	DICTIONARY
	ARRAY
	PACKED_BYTE_ARRAY
	PACKED_INT32_ARRAY
	PACKED_INT64_ARRAY
	PACKED_FLOAT32_ARRAY
	PACKED_FLOAT64_ARRAY
	PACKED_STRING_ARRAY

	VARIANT_MAX // not a type; the number of types
)

var typeNames = [...]string{
	NIL:                  "Nil",
	BOOL:                 "bool",
	INT:                  "int",
	FLOAT:                "float",
	STRING:               "String",
	VECTOR2:              "Vector2",
	VECTOR2I:             "Vector2i",
	VECTOR3:              "Vector3",
	VECTOR3I:             "Vector3i",
	COLOR:                "Color",
	STRING_NAME:          "StringName",
	NODE_PATH:            "NodePath",
	OBJECT:               "Object",
	CALLABLE:             "Callable",
	SIGNAL:               "Signal",
	DICTIONARY:           "Dictionary",
	ARRAY:                "Array",
	PACKED_BYTE_ARRAY:    "PackedByteArray",
	PACKED_INT32_ARRAY:   "PackedInt32Array",
	PACKED_INT64_ARRAY:   "PackedInt64Array",
	PACKED_FLOAT32_ARRAY: "PackedFloat32Array",
	PACKED_FLOAT64_ARRAY: "PackedFloat64Array",
	PACKED_STRING_ARRAY:  "PackedStringArray",
}

func (t Type) String() string {
	if t < VARIANT_MAX {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", t)
}

var typesByName = make(map[string]Type)

func init() {
	for t, name := range typeNames {
		typesByName[name] = Type(t)
	}
	// "null" is spelled as a keyword, never as a type name.
	delete(typesByName, "Nil")
}

// TypeByName returns the builtin type named name.
// It reports VARIANT_MAX, false if name is not a builtin type.
func TypeByName(name string) (Type, bool) {
	t, ok := typesByName[name]
	if !ok {
		return VARIANT_MAX, false
	}
	return t, true
}

// IsShared reports whether values of type t are shared by reference,
// so that mutating a copy mutates the original.
func IsShared(t Type) bool {
	switch t {
	case OBJECT, ARRAY, DICTIONARY:
		return true
	}
	return false
}

// IsPackedArray reports whether t is one of the packed array types.
func IsPackedArray(t Type) bool {
	return t >= PACKED_BYTE_ARRAY && t <= PACKED_STRING_ARRAY
}

// PackedElem returns the element type of a packed array type.
func PackedElem(t Type) Type {
	switch t {
	case PACKED_BYTE_ARRAY, PACKED_INT32_ARRAY, PACKED_INT64_ARRAY:
		return INT
	case PACKED_FLOAT32_ARRAY, PACKED_FLOAT64_ARRAY:
		return FLOAT
	case PACKED_STRING_ARRAY:
		return STRING
	}
	return NIL
}

// A Value is a statically known value.
type Value interface {
	// Type returns the builtin type tag of the value.
	Type() Type
	// String returns the value as converted by str().
	String() string
}

type (
	Nil        struct{}
	Bool       bool
	Int        int64
	Float      float64
	String     string
	StringName string
	NodePath   string
)

// Null is the nil value.
var Null Value = Nil{}

func (Nil) Type() Type        { return NIL }
func (Bool) Type() Type       { return BOOL }
func (Int) Type() Type        { return INT }
func (Float) Type() Type      { return FLOAT }
func (String) Type() Type     { return STRING }
func (StringName) Type() Type { return STRING_NAME }
func (NodePath) Type() Type   { return NODE_PATH }

func (Nil) String() string          { return "<null>" }
func (b Bool) String() string       { return strconv.FormatBool(bool(b)) }
func (i Int) String() string        { return strconv.FormatInt(int64(i), 10) }
func (f Float) String() string      { return formatFloat(float64(f)) }
func (s String) String() string     { return string(s) }
func (s StringName) String() string { return string(s) }
func (p NodePath) String() string   { return string(p) }

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

type Vector2 struct{ X, Y float64 }
type Vector2i struct{ X, Y int64 }
type Vector3 struct{ X, Y, Z float64 }
type Vector3i struct{ X, Y, Z int64 }
type Color struct{ R, G, B, A float64 }

func (Vector2) Type() Type  { return VECTOR2 }
func (Vector2i) Type() Type { return VECTOR2I }
func (Vector3) Type() Type  { return VECTOR3 }
func (Vector3i) Type() Type { return VECTOR3I }
func (Color) Type() Type    { return COLOR }

func (v Vector2) String() string {
	return fmt.Sprintf("(%s, %s)", formatFloat(v.X), formatFloat(v.Y))
}
func (v Vector2i) String() string { return fmt.Sprintf("(%d, %d)", v.X, v.Y) }
func (v Vector3) String() string {
	return fmt.Sprintf("(%s, %s, %s)", formatFloat(v.X), formatFloat(v.Y), formatFloat(v.Z))
}
func (v Vector3i) String() string { return fmt.Sprintf("(%d, %d, %d)", v.X, v.Y, v.Z) }
func (c Color) String() string {
	return fmt.Sprintf("(%s, %s, %s, %s)", formatFloat(c.R), formatFloat(c.G), formatFloat(c.B), formatFloat(c.A))
}

// An Array is an ordered sequence of values, optionally typed.
// Packed arrays are Arrays whose Kind is a packed array type.
type Array struct {
	Kind     Type // ARRAY or a packed array type
	Elem     Type // element type of a typed ARRAY; NIL if untyped
	ElemName string
	elems    []Value
	readonly bool
}

// NewArray returns an untyped Array holding elems.
func NewArray(elems []Value) *Array { return &Array{Kind: ARRAY, elems: elems} }

func (a *Array) Type() Type        { return a.Kind }
func (a *Array) Len() int          { return len(a.elems) }
func (a *Array) Index(i int) Value { return a.elems[i] }
func (a *Array) Elems() []Value    { return a.elems }
func (a *Array) MakeReadOnly()     { a.readonly = true }
func (a *Array) IsReadOnly() bool  { return a.readonly }
func (a *Array) Append(v Value) error {
	if a.readonly {
		return fmt.Errorf("array is read-only")
	}
	a.elems = append(a.elems, v)
	return nil
}

func (a *Array) String() string {
	var buf strings.Builder
	buf.WriteByte('[')
	for i, e := range a.elems {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(Repr(e))
	}
	buf.WriteByte(']')
	return buf.String()
}

// A Dictionary is an insertion-ordered mapping.
type Dictionary struct {
	keys     []Value
	values   []Value
	index    map[string]int
	readonly bool
}

func NewDictionary() *Dictionary { return &Dictionary{index: make(map[string]int)} }

func (d *Dictionary) Type() Type       { return DICTIONARY }
func (d *Dictionary) Len() int         { return len(d.keys) }
func (d *Dictionary) Keys() []Value    { return d.keys }
func (d *Dictionary) Values() []Value  { return d.values }
func (d *Dictionary) MakeReadOnly()    { d.readonly = true }
func (d *Dictionary) IsReadOnly() bool { return d.readonly }

// Get returns the value associated with key.
func (d *Dictionary) Get(key Value) (Value, bool) {
	if i, ok := d.index[hashKey(key)]; ok {
		return d.values[i], true
	}
	return nil, false
}

// Has reports whether the dictionary contains key.
func (d *Dictionary) Has(key Value) bool {
	_, ok := d.index[hashKey(key)]
	return ok
}

// Set associates key with value, preserving the position of an existing key.
func (d *Dictionary) Set(key, value Value) error {
	if d.readonly {
		return fmt.Errorf("dictionary is read-only")
	}
	h := hashKey(key)
	if i, ok := d.index[h]; ok {
		d.values[i] = value
		return nil
	}
	d.index[h] = len(d.keys)
	d.keys = append(d.keys, key)
	d.values = append(d.values, value)
	return nil
}

func (d *Dictionary) String() string {
	var buf strings.Builder
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(Repr(k))
		buf.WriteString(": ")
		buf.WriteString(Repr(d.values[i]))
	}
	buf.WriteByte('}')
	return buf.String()
}

// hashKey maps a key to a string such that keys that compare equal
// (including String and StringName with the same text) hash equally.
func hashKey(v Value) string {
	switch v := v.(type) {
	case String:
		return "s" + string(v)
	case StringName:
		return "s" + string(v)
	case Int:
		return "i" + v.String()
	}
	return v.Type().String() + ":" + Repr(v)
}

// An Object is a value of type OBJECT known at compile time,
// such as a script resource obtained by preload.
type Object interface {
	Value
	// ClassName returns the name of the object's native class.
	ClassName() string
}

// A Resource is a reference to a loadable resource by path.
type Resource struct {
	Path  string
	Class string // native class of the resource, e.g. "GDScript"
}

func (r *Resource) Type() Type        { return OBJECT }
func (r *Resource) String() string    { return fmt.Sprintf("<%s#%s>", r.Class, r.Path) }
func (r *Resource) ClassName() string { return r.Class }

// Repr returns a source-like representation of v, used in
// disassembly and diagnostics.
func Repr(v Value) string {
	switch v := v.(type) {
	case nil:
		return "<nil>"
	case Nil:
		return "null"
	case String:
		return strconv.Quote(string(v))
	case StringName:
		return "&" + strconv.Quote(string(v))
	case NodePath:
		return "^" + strconv.Quote(string(v))
	}
	return v.String()
}

// Zero returns the default value of type t.
func Zero(t Type) Value {
	switch t {
	case BOOL:
		return Bool(false)
	case INT:
		return Int(0)
	case FLOAT:
		return Float(0)
	case STRING:
		return String("")
	case STRING_NAME:
		return StringName("")
	case NODE_PATH:
		return NodePath("")
	case VECTOR2:
		return Vector2{}
	case VECTOR2I:
		return Vector2i{}
	case VECTOR3:
		return Vector3{}
	case VECTOR3I:
		return Vector3i{}
	case COLOR:
		return Color{0, 0, 0, 1}
	case ARRAY:
		return NewArray(nil)
	case DICTIONARY:
		return NewDictionary()
	}
	if IsPackedArray(t) {
		return &Array{Kind: t}
	}
	return Null
}

// Truth reports the truthiness of a value, as tested by if and while.
func Truth(v Value) bool {
	switch v := v.(type) {
	case Nil:
		return false
	case Bool:
		return bool(v)
	case Int:
		return v != 0
	case Float:
		return v != 0
	case String:
		return v != ""
	case StringName:
		return v != ""
	case NodePath:
		return v != ""
	case Vector2:
		return v != Vector2{}
	case Vector2i:
		return v != Vector2i{}
	case Vector3:
		return v != Vector3{}
	case Vector3i:
		return v != Vector3i{}
	case Color:
		return v != Color{}
	case *Array:
		return v.Len() > 0
	case *Dictionary:
		return v.Len() > 0
	}
	return true
}

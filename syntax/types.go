// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import (
	"strings"

	"go.gdlang.net/variant"
)

// A Kind classifies a DataType.
type Kind uint8

const (
	Unresolved Kind = iota
	Resolving       // resolution in progress; seeing it again means a cycle
	Variant         // any value
	Builtin         // a builtin value type such as int or Array
	Native          // a native class such as Node
	Script          // a compiled script known only by its interface
	Class           // a class declared in source
	Enum            // an enum; its instances are ints
)

var kindNames = [...]string{
	Unresolved: "unresolved",
	Resolving:  "resolving",
	Variant:    "variant",
	Builtin:    "builtin",
	Native:     "native",
	Script:     "script",
	Class:      "class",
	Enum:       "enum",
}

func (k Kind) String() string { return kindNames[k] }

// A TypeSource records how a type was determined, in increasing
// order of strictness.
type TypeSource uint8

const (
	Undetected        TypeSource = iota // no type information
	Inferred                            // inferred from usage; may change
	AnnotatedInferred                   // declared with := from an initializer
	AnnotatedExplicit                   // written in source
)

// A ScriptRef is a script available only in compiled form.
type ScriptRef interface {
	ScriptPath() string
	// ScriptBase returns the type the script extends.
	ScriptBase() DataType
	// NativeClass returns the native class at the root of the script's
	// inheritance chain.
	NativeClass() string
}

// An EnumEntry is one element of an enum type.
type EnumEntry struct {
	Name  string
	Value int64
}

// A DataType is a static type as computed by the resolver.
//
// DataTypes are values. The Class and Script fields refer to nodes
// and scripts owned elsewhere; copying a DataType never copies a class.
type DataType struct {
	Kind   Kind
	Source TypeSource

	Builtin variant.Type // for Builtin
	Native  string       // for Native; the native ancestor of Script and Class; the owner of a native Enum
	Class   *ClassDecl   // for Class
	Script  ScriptRef    // for Script

	EnumName   string // for Enum: "Name" or "Outer.Name"
	EnumValues []EnumEntry

	Element *DataType // element type of a typed Array, or nil

	IsConstant  bool // denotes a constant declaration rather than a value
	IsMeta      bool // denotes the type itself rather than an instance
	IsCoroutine bool // result of a call that must be awaited
}

// MakeVariantType returns the type of an unconstrained value.
func MakeVariantType() DataType { return DataType{Kind: Variant} }

// MakeBuiltinType returns the type of a builtin value.
func MakeBuiltinType(t variant.Type) DataType {
	return DataType{Kind: Builtin, Builtin: t, Source: AnnotatedExplicit}
}

// MakeNativeType returns the type of an instance of a native class.
func MakeNativeType(class string) DataType {
	return DataType{Kind: Native, Native: class, Source: AnnotatedExplicit}
}

// MakeEnumType returns the type of a value of the named enum.
func MakeEnumType(name, native string, values []EnumEntry) DataType {
	return DataType{Kind: Enum, Builtin: variant.INT, EnumName: name, Native: native, EnumValues: values, Source: AnnotatedExplicit}
}

// MakeTypeOf returns the type described by a builtin property or
// argument description.
func MakeTypeOf(p variant.PropertyInfo) DataType {
	switch {
	case p.Variant:
		return MakeVariantType()
	case p.Type == variant.OBJECT && p.ClassName != "":
		return MakeNativeType(p.ClassName)
	}
	return MakeBuiltinType(p.Type)
}

// IsSet reports whether t holds any type information.
func (t DataType) IsSet() bool { return t.Kind != Unresolved }

// IsVariant reports whether t places no constraint on values.
func (t DataType) IsVariant() bool { return t.Kind == Variant || t.Kind == Unresolved }

// IsHardType reports whether t was declared rather than inferred.
func (t DataType) IsHardType() bool { return t.IsSet() && t.Source > Inferred }

// IsVoid reports whether t is the type of a function that returns nothing.
func (t DataType) IsVoid() bool { return t.Kind == Builtin && t.Builtin == variant.NIL }

// IsBuiltin reports whether t is the builtin type b.
func (t DataType) IsBuiltin(b variant.Type) bool { return t.Kind == Builtin && t.Builtin == b }

// IsObject reports whether values of t are objects.
func (t DataType) IsObject() bool {
	switch t.Kind {
	case Native, Script, Class:
		return true
	case Builtin:
		return t.Builtin == variant.OBJECT
	}
	return false
}

// ElementType returns the element type of a typed array, or Variant.
func (t DataType) ElementType() DataType {
	if t.Element == nil {
		return MakeVariantType()
	}
	return *t.Element
}

// WithElement returns a copy of t whose container element type is elem.
func (t DataType) WithElement(elem DataType) DataType {
	t.Element = &elem
	return t
}

// WithSource returns a copy of t with the given source.
func (t DataType) WithSource(s TypeSource) DataType {
	t.Source = s
	return t
}

// Meta returns the type of t used as a value: the class rather than
// an instance of it.
func (t DataType) Meta() DataType {
	t.IsMeta = true
	return t
}

// Instance returns the type of an instance of the meta type t.
func (t DataType) Instance() DataType {
	t.IsMeta = false
	t.IsConstant = false
	return t
}

// VariantType returns the runtime type tag of values of type t,
// or NIL if values may have any type.
func (t DataType) VariantType() variant.Type {
	switch t.Kind {
	case Builtin:
		return t.Builtin
	case Native, Script, Class:
		return variant.OBJECT
	case Enum:
		if t.IsMeta {
			return variant.DICTIONARY
		}
		return variant.INT
	}
	return variant.NIL
}

// EnumValue returns the value of the named element of an enum type.
func (t DataType) EnumValue(name string) (int64, bool) {
	for _, e := range t.EnumValues {
		if e.Name == name {
			return e.Value, true
		}
	}
	return 0, false
}

// Equal reports whether t and u denote the same type. Types whose
// source is undetected or inferred are equal to any type.
func (t DataType) Equal(u DataType) bool {
	if t.Source <= Inferred || u.Source <= Inferred {
		return true
	}
	if t.Kind != u.Kind {
		return false
	}
	switch t.Kind {
	case Variant:
		return true
	case Builtin:
		if t.Builtin != u.Builtin {
			return false
		}
		if t.Element != nil && u.Element != nil {
			return t.Element.Equal(*u.Element)
		}
		return (t.Element == nil) == (u.Element == nil)
	case Native:
		return t.Native == u.Native
	case Enum:
		return t.Native == u.Native && t.EnumName == u.EnumName
	case Script:
		return t.Script == u.Script
	case Class:
		return t.Class == u.Class || t.Class.FQCN == u.Class.FQCN
	}
	return false
}

func (t DataType) String() string {
	switch t.Kind {
	case Variant:
		return "Variant"
	case Builtin:
		if t.Builtin == variant.NIL {
			return "null"
		}
		if t.Builtin == variant.ARRAY && t.Element != nil {
			return "Array[" + t.Element.String() + "]"
		}
		return t.Builtin.String()
	case Native:
		if t.IsMeta {
			return "GDScriptNativeClass"
		}
		return t.Native
	case Class:
		if t.IsMeta {
			return "GDScript"
		}
		if t.Class.Name != nil {
			return t.Class.Name.Name
		}
		return t.Class.FQCN
	case Script:
		if t.IsMeta {
			return "GDScript"
		}
		path := t.Script.ScriptPath()
		if i := strings.LastIndexByte(path, '/'); i >= 0 {
			path = path[i+1:]
		}
		return path
	case Enum:
		if t.IsMeta {
			return "Dictionary"
		}
		if t.Native != "" {
			return t.Native + "." + t.EnumName
		}
		return t.EnumName
	}
	return "<unresolved type>"
}

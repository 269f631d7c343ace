// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

// This file defines the relations between static types.

import (
	"strings"

	"go.gdlang.net/classdb"
	"go.gdlang.net/syntax"
	"go.gdlang.net/variant"
)

// IsTypeCompatible reports whether a value of type source may be
// stored in a location of type target. If allowImplicit is set, a
// builtin value may also be converted to the target type, as an int
// to a float.
//
// A Variant on either side is compatible; the operation is then
// checked at run time.
func IsTypeCompatible(cat classdb.Catalog, target, source syntax.DataType, allowImplicit bool) bool {
	if target.IsVariant() || source.IsVariant() {
		return true
	}

	if target.Kind == syntax.Builtin && target.Builtin != variant.OBJECT {
		if target.IsMeta != source.IsMeta && !source.IsBuiltin(variant.NIL) {
			return false
		}
		valid := false
		switch source.Kind {
		case syntax.Builtin:
			valid = target.Builtin == source.Builtin
			if !valid && allowImplicit {
				valid = variant.CanConvertStrict(source.Builtin, target.Builtin)
			}
		case syntax.Enum:
			// An enum value is an int; an enum type is a Dictionary.
			if source.IsMeta {
				valid = target.Builtin == variant.DICTIONARY
			} else {
				valid = target.Builtin == variant.INT ||
					allowImplicit && variant.CanConvertStrict(variant.INT, target.Builtin)
			}
		}
		if valid && target.Element != nil && source.Element != nil {
			valid = IsTypeCompatible(cat, *target.Element, *source.Element, false)
		}
		return valid
	}

	if target.Kind == syntax.Enum {
		switch source.Kind {
		case syntax.Builtin:
			// with a warning, by the analyzer
			return source.Builtin == variant.INT && !source.IsMeta
		case syntax.Enum:
			return source.Native == target.Native && source.EnumName == target.EnumName
		}
		return false
	}

	// The target is an object type.
	switch source.Kind {
	case syntax.Builtin:
		switch source.Builtin {
		case variant.NIL:
			return true // null is a valid object
		case variant.OBJECT:
			source = syntax.MakeNativeType("Object")
		default:
			return false
		}
	case syntax.Enum:
		return false
	}
	if target.IsMeta != source.IsMeta {
		return false
	}
	if target.Kind == syntax.Builtin {
		return true // any object
	}
	return inherits(cat, source, target)
}

// inherits reports whether the object type source is target or one
// of its descendants.
func inherits(cat classdb.Catalog, source, target syntax.DataType) bool {
	for {
		switch source.Kind {
		case syntax.Class:
			if target.Kind == syntax.Class && (source.Class == target.Class || source.Class.FQCN == target.Class.FQCN) {
				return true
			}
			if target.Kind == syntax.Native && !source.Class.BaseType.IsSet() {
				return classdb.IsSubclass(cat, source.Native, target.Native)
			}
			source = source.Class.BaseType
		case syntax.Script:
			if target.Kind == syntax.Script && source.Script.ScriptPath() == target.Script.ScriptPath() {
				return true
			}
			source = source.Script.ScriptBase()
		case syntax.Native:
			return target.Kind == syntax.Native && classdb.IsSubclass(cat, source.Native, target.Native)
		default:
			return false
		}
	}
}

// nativeOf returns the native class of values of type t, or "".
func nativeOf(t syntax.DataType) string {
	switch t.Kind {
	case syntax.Native:
		return t.Native
	case syntax.Class:
		if t.Native != "" {
			return t.Native
		}
		if t.Class.Type.Native != "" {
			return t.Class.Type.Native
		}
		if t.Class.BaseType.IsSet() && t.Class.BaseType.Kind != syntax.Resolving {
			return nativeOf(t.Class.BaseType)
		}
	case syntax.Script:
		return t.Script.NativeClass()
	case syntax.Builtin:
		if t.Builtin == variant.OBJECT {
			return "Object"
		}
	}
	return ""
}

// typeOfValue returns the type of a constant value.
func typeOfValue(v variant.Value) syntax.DataType {
	if r, ok := v.(*variant.Resource); ok {
		return syntax.MakeNativeType(r.Class)
	}
	return syntax.MakeBuiltinType(v.Type())
}

// typeOfProperty returns the type described by a native property,
// argument or return value.
func typeOfProperty(cat classdb.Catalog, p variant.PropertyInfo) syntax.DataType {
	if p.Type == variant.INT && p.Enum != "" && !p.Variant {
		if t, ok := enumType(cat, p.Enum); ok {
			return t
		}
	}
	return syntax.MakeTypeOf(p)
}

// enumType returns the type of a global enum ("Error", "Variant.Type")
// or a native enum ("Node.ProcessMode").
func enumType(cat classdb.Catalog, name string) (syntax.DataType, bool) {
	if values, ok := cat.GlobalEnum(name); ok {
		return syntax.MakeEnumType(name, "", enumEntries(values)), true
	}
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		class, enum := name[:i], name[i+1:]
		if values, ok := cat.Enum(class, enum); ok {
			return syntax.MakeEnumType(enum, class, enumEntries(values)), true
		}
	}
	return syntax.DataType{}, false
}

func enumEntries(values []classdb.EnumValue) []syntax.EnumEntry {
	entries := make([]syntax.EnumEntry, len(values))
	for i, v := range values {
		entries[i] = syntax.EnumEntry{Name: v.Name, Value: v.Value}
	}
	return entries
}

// enumDict returns the Dictionary value of an enum type: its names
// mapped to their values.
func enumDict(t syntax.DataType) *variant.Dictionary {
	d := variant.NewDictionary()
	for _, e := range t.EnumValues {
		d.Set(variant.String(e.Name), variant.Int(e.Value))
	}
	d.MakeReadOnly()
	return d
}

// builtinMeta returns the type of the name of a builtin type, such as
// Vector2 used as a value.
func builtinMeta(t variant.Type) syntax.DataType {
	dt := syntax.MakeBuiltinType(t).Meta()
	dt.IsConstant = true
	return dt
}

// nativeMeta returns the type of the name of a native class.
func nativeMeta(class string) syntax.DataType {
	dt := syntax.MakeNativeType(class).Meta()
	dt.IsConstant = true
	return dt
}

// classType returns the type of instances of a class declared in
// source, which may not have been resolved yet.
func classType(c *syntax.ClassDecl) syntax.DataType {
	if c.Type.IsSet() {
		return c.Type
	}
	return syntax.DataType{Kind: syntax.Class, Class: c, Source: syntax.AnnotatedExplicit}
}

// scriptType returns the type of instances of a compiled script.
func scriptType(s syntax.ScriptRef) syntax.DataType {
	return syntax.DataType{Kind: syntax.Script, Script: s, Native: s.NativeClass(), Source: syntax.AnnotatedExplicit}
}

// isNumeric reports whether values of t are ints or floats.
func isNumeric(t syntax.DataType) bool {
	return t.Kind == syntax.Builtin && (t.Builtin == variant.INT || t.Builtin == variant.FLOAT) ||
		t.Kind == syntax.Enum && !t.IsMeta
}

// builtinOf returns the builtin type of values of t. Enum values are
// ints, and objects are OBJECT. It returns false for Variant.
func builtinOf(t syntax.DataType) (variant.Type, bool) {
	switch t.Kind {
	case syntax.Builtin:
		if t.IsMeta {
			return variant.OBJECT, true
		}
		return t.Builtin, true
	case syntax.Enum:
		if t.IsMeta {
			return variant.DICTIONARY, true
		}
		return variant.INT, true
	case syntax.Native, syntax.Script, syntax.Class:
		return variant.OBJECT, true
	}
	return variant.NIL, false
}

// elementTypeOf returns the declared type of a builtin container's
// elements, for a typed array, or a packed array.
func elementTypeOf(t syntax.DataType) syntax.DataType {
	if t.Element != nil {
		return *t.Element
	}
	if t.Kind == syntax.Builtin && variant.IsPackedArray(t.Builtin) {
		return syntax.MakeBuiltinType(variant.PackedElem(t.Builtin))
	}
	return syntax.MakeVariantType()
}

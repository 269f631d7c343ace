// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package classdb

import (
	"fmt"
	"sort"

	"go.gdlang.net/variant"
)

// Language functions are the global functions defined by the script
// language itself rather than by the engine, such as len and range.
// Like engine utility functions (variant.Utility), those with a
// non-nil Eval may be folded when their arguments are constant.

var languageFunctions = make(map[string]*variant.Function)

func language(m *variant.MethodInfo, eval func([]variant.Value) (variant.Value, error)) {
	m.Const = eval != nil
	languageFunctions[m.Name] = &variant.Function{MethodInfo: *m, Eval: eval}
}

func init() {
	language(defaults(fn("Color8", of(variant.COLOR),
		arg("r8", variant.INT), arg("g8", variant.INT), arg("b8", variant.INT), arg("a8", variant.INT)),
		variant.Int(255)), color8)
	language(vararg(fn("print_debug", void)), nil)
	language(fn("print_stack", void), nil)
	language(fn("get_stack", of(variant.ARRAY)), nil)
	language(fn("inst_to_dict", of(variant.DICTIONARY), obj("instance", "Object")), nil)
	language(fn("dict_to_inst", obj("", "Object"), arg("dictionary", variant.DICTIONARY)), nil)
	language(fn("len", of(variant.INT), anyArg("var")), length)
	language(vararg(fn("range", of(variant.ARRAY))), rangeFunc)
	language(fn("load", obj("", "Resource"), arg("path", variant.STRING)), nil)
	language(fn("is_instance_of", of(variant.BOOL), anyArg("value"), anyArg("type")), nil)
	language(fn("type_exists", of(variant.BOOL), arg("type", variant.STRING_NAME)), nil)
	language(fn("char", of(variant.STRING), arg("char", variant.INT)), char)
	language(fn("convert", variant.Any, anyArg("what"), enumArg("type", "Variant.Type")), convert)
}

// LanguageFunction returns the named function of the script language.
func LanguageFunction(name string) (*variant.Function, bool) {
	f, ok := languageFunctions[name]
	return f, ok
}

// LanguageFunctionNames returns the sorted names of the language functions.
func LanguageFunctionNames() []string {
	names := make([]string, 0, len(languageFunctions))
	for name := range languageFunctions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func color8(args []variant.Value) (variant.Value, error) {
	var c [4]float64
	c[3] = 1
	for i, a := range args {
		x, ok := a.(variant.Int)
		if !ok {
			return nil, fmt.Errorf("Color8: argument %d: expected int, got %s", i+1, a.Type())
		}
		c[i] = float64(x) / 255
	}
	return variant.Color{R: c[0], G: c[1], B: c[2], A: c[3]}, nil
}

func length(args []variant.Value) (variant.Value, error) {
	switch x := args[0].(type) {
	case variant.String:
		return variant.Int(len([]rune(string(x)))), nil
	case variant.StringName:
		return variant.Int(len([]rune(string(x)))), nil
	case *variant.Array:
		return variant.Int(x.Len()), nil
	case *variant.Dictionary:
		return variant.Int(x.Len()), nil
	}
	return nil, fmt.Errorf("len: value of type '%s' can't provide a length", args[0].Type())
}

// rangeFunc implements range(n), range(b, n) and range(b, n, s).
func rangeFunc(args []variant.Value) (variant.Value, error) {
	var is [3]int64
	for i, a := range args {
		switch x := a.(type) {
		case variant.Int:
			is[i] = int64(x)
		case variant.Float:
			is[i] = int64(x)
		default:
			return nil, fmt.Errorf("range: argument %d: expected a number, got %s", i+1, a.Type())
		}
	}
	var from, to, step int64
	switch len(args) {
	case 1:
		from, to, step = 0, is[0], 1
	case 2:
		from, to, step = is[0], is[1], 1
	case 3:
		from, to, step = is[0], is[1], is[2]
	default:
		return nil, fmt.Errorf("range: expected 1 to 3 arguments, got %d", len(args))
	}
	if step == 0 {
		return nil, fmt.Errorf("range: step argument is zero")
	}
	var elems []variant.Value
	for i := from; (step > 0 && i < to) || (step < 0 && i > to); i += step {
		elems = append(elems, variant.Int(i))
	}
	return variant.NewArray(elems), nil
}

func char(args []variant.Value) (variant.Value, error) {
	x, ok := args[0].(variant.Int)
	if !ok {
		return nil, fmt.Errorf("char: expected int, got %s", args[0].Type())
	}
	return variant.String(string(rune(x))), nil
}

func convert(args []variant.Value) (variant.Value, error) {
	t, ok := args[1].(variant.Int)
	if !ok || t < 0 || variant.Type(t) >= variant.VARIANT_MAX {
		return nil, fmt.Errorf("convert: invalid type argument")
	}
	if !variant.CanConvert(args[0].Type(), variant.Type(t)) {
		return nil, fmt.Errorf("convert: cannot convert %s to %s", args[0].Type(), variant.Type(t))
	}
	if variant.Type(t) == variant.STRING {
		return variant.String(args[0].String()), nil
	}
	return variant.Convert(args[0], variant.Type(t))
}

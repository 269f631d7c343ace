// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package variant

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// A Function is a global function with a fixed signature.
// Eval is non-nil if calls with constant arguments may be folded.
type Function struct {
	MethodInfo
	Eval func(args []Value) (Value, error)
}

var utilities = make(map[string]*Function)

func utility(name string, ret PropertyInfo, eval func([]Value) (Value, error), args ...PropertyInfo) *Function {
	fn := &Function{MethodInfo: MethodInfo{Name: name, Args: args, Return: ret, Const: eval != nil}, Eval: eval}
	utilities[name] = fn
	return fn
}

func float1(f func(float64) float64) func([]Value) (Value, error) {
	return func(args []Value) (Value, error) {
		x, ok := AsFloat(args[0])
		if !ok {
			return nil, fmt.Errorf("expected a number, got %s", args[0].Type())
		}
		return Float(f(x)), nil
	}
}

func float2(f func(x, y float64) float64) func([]Value) (Value, error) {
	return func(args []Value) (Value, error) {
		x, ok1 := AsFloat(args[0])
		y, ok2 := AsFloat(args[1])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("expected numbers, got %s and %s", args[0].Type(), args[1].Type())
		}
		return Float(f(x, y)), nil
	}
}

func toInt(f func([]Value) (Value, error)) func([]Value) (Value, error) {
	return func(args []Value) (Value, error) {
		v, err := f(args)
		if err != nil {
			return nil, err
		}
		return floatToInt(float64(v.(Float))), nil
	}
}

func ints(args []Value) ([]int64, error) {
	is := make([]int64, len(args))
	for i, a := range args {
		x, ok := a.(Int)
		if !ok {
			return nil, fmt.Errorf("argument %d: expected int, got %s", i+1, a.Type())
		}
		is[i] = int64(x)
	}
	return is, nil
}

func init() {
	num := Arg("x", FLOAT)
	inum := Arg("x", INT)
	anyX := PropertyInfo{Name: "x", Variant: true}

	utility("sin", Of(FLOAT), float1(math.Sin), Arg("angle_rad", FLOAT))
	utility("cos", Of(FLOAT), float1(math.Cos), Arg("angle_rad", FLOAT))
	utility("tan", Of(FLOAT), float1(math.Tan), Arg("angle_rad", FLOAT))
	utility("asin", Of(FLOAT), float1(math.Asin), num)
	utility("acos", Of(FLOAT), float1(math.Acos), num)
	utility("atan", Of(FLOAT), float1(math.Atan), num)
	utility("atan2", Of(FLOAT), float2(math.Atan2), Arg("y", FLOAT), Arg("x", FLOAT))
	utility("sqrt", Of(FLOAT), float1(math.Sqrt), num)
	utility("exp", Of(FLOAT), float1(math.Exp), num)
	utility("log", Of(FLOAT), float1(math.Log), num)
	utility("pow", Of(FLOAT), float2(math.Pow), Arg("base", FLOAT), Arg("exp", FLOAT))
	utility("fmod", Of(FLOAT), float2(math.Mod), num, Arg("y", FLOAT))
	utility("fposmod", Of(FLOAT), float2(func(x, y float64) float64 {
		r := math.Mod(x, y)
		if (r < 0 && y > 0) || (r > 0 && y < 0) {
			r += y
		}
		return r
	}), num, Arg("y", FLOAT))
	utility("floorf", Of(FLOAT), float1(math.Floor), num)
	utility("ceilf", Of(FLOAT), float1(math.Ceil), num)
	utility("roundf", Of(FLOAT), float1(math.Round), num)
	utility("floori", Of(INT), toInt(float1(math.Floor)), num)
	utility("ceili", Of(INT), toInt(float1(math.Ceil)), num)
	utility("roundi", Of(INT), toInt(float1(math.Round)), num)
	utility("absf", Of(FLOAT), float1(math.Abs), num)
	utility("signf", Of(FLOAT), float1(sign), num)
	utility("deg_to_rad", Of(FLOAT), float1(func(x float64) float64 { return x * math.Pi / 180 }), Arg("deg", FLOAT))
	utility("rad_to_deg", Of(FLOAT), float1(func(x float64) float64 { return x * 180 / math.Pi }), Arg("rad", FLOAT))
	utility("lerpf", Of(FLOAT), func(args []Value) (Value, error) {
		fs, err := floatArgs(args)
		if err != nil {
			return nil, err
		}
		return Float(fs[0] + (fs[1]-fs[0])*fs[2]), nil
	}, Arg("from", FLOAT), Arg("to", FLOAT), Arg("weight", FLOAT))
	utility("clampf", Of(FLOAT), func(args []Value) (Value, error) {
		fs, err := floatArgs(args)
		if err != nil {
			return nil, err
		}
		return Float(math.Max(fs[1], math.Min(fs[2], fs[0]))), nil
	}, Arg("value", FLOAT), Arg("min", FLOAT), Arg("max", FLOAT))
	utility("minf", Of(FLOAT), float2(math.Min), Arg("a", FLOAT), Arg("b", FLOAT))
	utility("maxf", Of(FLOAT), float2(math.Max), Arg("a", FLOAT), Arg("b", FLOAT))
	utility("is_nan", Of(BOOL), func(args []Value) (Value, error) {
		f, _ := AsFloat(args[0])
		return Bool(math.IsNaN(f)), nil
	}, num)
	utility("is_inf", Of(BOOL), func(args []Value) (Value, error) {
		f, _ := AsFloat(args[0])
		return Bool(math.IsInf(f, 0)), nil
	}, num)

	utility("absi", Of(INT), func(args []Value) (Value, error) {
		is, err := ints(args)
		if err != nil {
			return nil, err
		}
		if is[0] < 0 {
			return Int(-is[0]), nil
		}
		return Int(is[0]), nil
	}, inum)
	utility("signi", Of(INT), func(args []Value) (Value, error) {
		is, err := ints(args)
		if err != nil {
			return nil, err
		}
		return Int(sign(float64(is[0]))), nil
	}, inum)
	utility("posmod", Of(INT), func(args []Value) (Value, error) {
		is, err := ints(args)
		if err != nil {
			return nil, err
		}
		if is[1] == 0 {
			return nil, fmt.Errorf("division by zero in posmod")
		}
		r := is[0] % is[1]
		if (r < 0 && is[1] > 0) || (r > 0 && is[1] < 0) {
			r += is[1]
		}
		return Int(r), nil
	}, inum, Arg("y", INT))
	utility("mini", Of(INT), func(args []Value) (Value, error) {
		is, err := ints(args)
		if err != nil {
			return nil, err
		}
		if is[1] < is[0] {
			return Int(is[1]), nil
		}
		return Int(is[0]), nil
	}, Arg("a", INT), Arg("b", INT))
	utility("maxi", Of(INT), func(args []Value) (Value, error) {
		is, err := ints(args)
		if err != nil {
			return nil, err
		}
		if is[1] > is[0] {
			return Int(is[1]), nil
		}
		return Int(is[0]), nil
	}, Arg("a", INT), Arg("b", INT))
	utility("clampi", Of(INT), func(args []Value) (Value, error) {
		is, err := ints(args)
		if err != nil {
			return nil, err
		}
		v := is[0]
		if v < is[1] {
			v = is[1]
		}
		if v > is[2] {
			v = is[2]
		}
		return Int(v), nil
	}, Arg("value", INT), Arg("min", INT), Arg("max", INT))

	// Variant-typed versions that preserve int arguments.
	utility("abs", Any, func(args []Value) (Value, error) {
		switch x := args[0].(type) {
		case Int:
			if x < 0 {
				return -x, nil
			}
			return x, nil
		case Float:
			return Float(math.Abs(float64(x))), nil
		}
		return nil, fmt.Errorf("abs: unsupported argument type %s", args[0].Type())
	}, anyX)
	utility("sign", Any, func(args []Value) (Value, error) {
		switch x := args[0].(type) {
		case Int:
			return Int(sign(float64(x))), nil
		case Float:
			return Float(sign(float64(x))), nil
		}
		return nil, fmt.Errorf("sign: unsupported argument type %s", args[0].Type())
	}, anyX)
	for _, name := range []string{"floor", "ceil", "round"} {
		name := name
		f := map[string]func(float64) float64{"floor": math.Floor, "ceil": math.Ceil, "round": math.Round}[name]
		utility(name, Any, func(args []Value) (Value, error) {
			switch x := args[0].(type) {
			case Int:
				return x, nil
			case Float:
				return Float(f(float64(x))), nil
			}
			return nil, fmt.Errorf("%s: unsupported argument type %s", name, args[0].Type())
		}, anyX)
	}
	minmax := func(name string, less bool) {
		fn := utility(name, Any, func(args []Value) (Value, error) {
			best := args[0]
			for _, a := range args[1:] {
				c, ok := compare(a, best)
				if !ok {
					return nil, fmt.Errorf("%s: cannot compare %s and %s", name, a.Type(), best.Type())
				}
				if (less && c < 0) || (!less && c > 0) {
					best = a
				}
			}
			return best, nil
		})
		fn.Vararg = true
	}
	minmax("min", true)
	minmax("max", false)
	utility("clamp", Any, func(args []Value) (Value, error) {
		v := args[0]
		if c, ok := compare(v, args[1]); ok && c < 0 {
			v = args[1]
		}
		if c, ok := compare(v, args[2]); ok && c > 0 {
			v = args[2]
		}
		return v, nil
	}, PropertyInfo{Name: "value", Variant: true}, PropertyInfo{Name: "min", Variant: true}, PropertyInfo{Name: "max", Variant: true})
	utility("lerp", Any, func(args []Value) (Value, error) {
		fs, err := floatArgs(args)
		if err != nil {
			return nil, err
		}
		return Float(fs[0] + (fs[1]-fs[0])*fs[2]), nil
	}, PropertyInfo{Name: "from", Variant: true}, PropertyInfo{Name: "to", Variant: true}, Arg("weight", FLOAT))

	utility("typeof", Of(INT), func(args []Value) (Value, error) {
		return Int(args[0].Type()), nil
	}, PropertyInfo{Name: "variable", Variant: true})
	utility("type_string", Of(STRING), func(args []Value) (Value, error) {
		i, ok := args[0].(Int)
		if !ok || i < 0 || Type(i) >= VARIANT_MAX {
			return String("<invalid type>"), nil
		}
		return String(Type(i).String()), nil
	}, Arg("type", INT))
	str := utility("str", Of(STRING), func(args []Value) (Value, error) {
		var buf strings.Builder
		for _, a := range args {
			buf.WriteString(a.String())
		}
		return String(buf.String()), nil
	})
	str.Vararg = true
	utility("var_to_str", Of(STRING), func(args []Value) (Value, error) {
		return String(Repr(args[0])), nil
	}, PropertyInfo{Name: "variable", Variant: true})
	utility("is_same", Of(BOOL), nil, PropertyInfo{Name: "a", Variant: true}, PropertyInfo{Name: "b", Variant: true})

	// Functions with side effects are never folded.
	for _, name := range []string{"print", "prints", "printt", "printerr", "print_rich", "push_error", "push_warning"} {
		utility(name, void, nil).Vararg = true
	}
	utility("randi", Of(INT), nil)
	utility("randf", Of(FLOAT), nil)
	utility("randomize", void, nil)
	utility("randi_range", Of(INT), nil, Arg("from", INT), Arg("to", INT))
	utility("randf_range", Of(FLOAT), nil, Arg("from", FLOAT), Arg("to", FLOAT))
	utility("instance_from_id", ObjectOf("Object"), nil, Arg("instance_id", INT))
	utility("is_instance_valid", Of(BOOL), nil, PropertyInfo{Name: "instance", Variant: true})
}

func floatArgs(args []Value) ([]float64, error) {
	fs := make([]float64, len(args))
	for i, a := range args {
		f, ok := AsFloat(a)
		if !ok {
			return nil, fmt.Errorf("argument %d: expected a number, got %s", i+1, a.Type())
		}
		fs[i] = f
	}
	return fs, nil
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// Utility returns the global utility function of the given name.
func Utility(name string) (*Function, bool) {
	fn, ok := utilities[name]
	return fn, ok
}

// UtilityNames returns the sorted names of all utility functions.
func UtilityNames() []string {
	names := make([]string, 0, len(utilities))
	for name := range utilities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

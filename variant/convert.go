// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package variant

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// A PropertyInfo describes the type of a property, argument or
// return value.
//
// Type NIL denotes void for a return value, unless Variant is set.
// For OBJECT, ClassName holds the native class. For INT, Enum may
// name an enum qualified by its class, as in "Node.ProcessMode".
type PropertyInfo struct {
	Name      string
	Type      Type
	ClassName string
	Enum      string
	Variant   bool
}

// Any is the PropertyInfo of an untyped value.
var Any = PropertyInfo{Variant: true}

// Of returns the PropertyInfo of a value of builtin type t.
func Of(t Type) PropertyInfo { return PropertyInfo{Type: t} }

// Arg returns a named PropertyInfo of builtin type t.
func Arg(name string, t Type) PropertyInfo { return PropertyInfo{Name: name, Type: t} }

// ObjectOf returns the PropertyInfo of an instance of the named native class.
func ObjectOf(class string) PropertyInfo { return PropertyInfo{Type: OBJECT, ClassName: class} }

// IsVoid reports whether p describes the absence of a return value.
func (p PropertyInfo) IsVoid() bool { return p.Type == NIL && !p.Variant }

func (p PropertyInfo) String() string {
	switch {
	case p.Variant:
		return "Variant"
	case p.IsVoid():
		return "void"
	case p.Type == OBJECT && p.ClassName != "":
		return p.ClassName
	case p.Type == INT && p.Enum != "":
		return p.Enum
	}
	return p.Type.String()
}

// A MethodInfo describes the signature of a method or function.
type MethodInfo struct {
	Name     string
	Args     []PropertyInfo
	Defaults []Value // values of the trailing optional arguments
	Return   PropertyInfo
	Vararg   bool
	Static   bool
	Const    bool // may be evaluated at compile time
	Virtual  bool
}

// MinArgs returns the number of required arguments.
func (m *MethodInfo) MinArgs() int { return len(m.Args) - len(m.Defaults) }

// Signature formats m as it would be declared, e.g. "f(a: int, b: float = 1.0) -> int".
func (m *MethodInfo) Signature() string {
	var buf strings.Builder
	buf.WriteString(m.Name)
	buf.WriteByte('(')
	defStart := m.MinArgs()
	for i, a := range m.Args {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(a.Name)
		buf.WriteString(": ")
		buf.WriteString(a.String())
		if i >= defStart {
			buf.WriteString(" = ")
			buf.WriteString(Repr(m.Defaults[i-defStart]))
		}
	}
	if m.Vararg {
		if len(m.Args) > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString("...")
	}
	buf.WriteString(") -> ")
	buf.WriteString(m.Return.String())
	return buf.String()
}

// CanConvertStrict reports whether values of type from can be
// converted implicitly to type to without loss of meaning.
func CanConvertStrict(from, to Type) bool {
	if from == to || from == NIL {
		return from == to || to == OBJECT
	}
	switch to {
	case BOOL:
		return from == INT || from == FLOAT
	case INT:
		return from == BOOL || from == FLOAT
	case FLOAT:
		return from == BOOL || from == INT
	case STRING:
		return from == STRING_NAME || from == NODE_PATH
	case STRING_NAME:
		return from == STRING
	case NODE_PATH:
		return from == STRING || from == STRING_NAME
	case VECTOR2:
		return from == VECTOR2I
	case VECTOR2I:
		return from == VECTOR2
	case VECTOR3:
		return from == VECTOR3I
	case VECTOR3I:
		return from == VECTOR3
	case ARRAY:
		return IsPackedArray(from)
	}
	if IsPackedArray(to) {
		return from == ARRAY
	}
	return false
}

// CanConvert reports whether values of type from can be converted
// to type to by an explicit cast.
func CanConvert(from, to Type) bool {
	if CanConvertStrict(from, to) {
		return true
	}
	switch to {
	case BOOL:
		return from == STRING || from == OBJECT
	case INT, FLOAT:
		return from == STRING
	case STRING:
		return true
	case COLOR:
		return from == STRING || from == INT
	}
	return false
}

// Convert converts v to type t as an implicit conversion would.
func Convert(v Value, t Type) (Value, error) {
	if v.Type() == t {
		return v, nil
	}
	switch t {
	case BOOL:
		return Bool(Truth(v)), nil
	case INT:
		switch v := v.(type) {
		case Bool:
			if v {
				return Int(1), nil
			}
			return Int(0), nil
		case Float:
			return floatToInt(float64(v)), nil
		case String:
			i, err := strconv.ParseInt(strings.TrimSpace(string(v)), 0, 64)
			if err != nil {
				return Int(0), nil
			}
			return Int(i), nil
		}
	case FLOAT:
		switch v := v.(type) {
		case Bool:
			if v {
				return Float(1), nil
			}
			return Float(0), nil
		case Int:
			return Float(v), nil
		case String:
			f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
			if err != nil {
				return Float(0), nil
			}
			return Float(f), nil
		}
	case STRING:
		return String(v.String()), nil
	case STRING_NAME:
		if _, ok := v.(String); ok {
			return StringName(v.String()), nil
		}
	case NODE_PATH:
		switch v.(type) {
		case String, StringName:
			return NodePath(v.String()), nil
		}
	case VECTOR2:
		if v, ok := v.(Vector2i); ok {
			return Vector2{float64(v.X), float64(v.Y)}, nil
		}
	case VECTOR2I:
		if v, ok := v.(Vector2); ok {
			return Vector2i{int64(floatToInt(v.X)), int64(floatToInt(v.Y))}, nil
		}
	case VECTOR3:
		if v, ok := v.(Vector3i); ok {
			return Vector3{float64(v.X), float64(v.Y), float64(v.Z)}, nil
		}
	case VECTOR3I:
		if v, ok := v.(Vector3); ok {
			return Vector3i{int64(floatToInt(v.X)), int64(floatToInt(v.Y)), int64(floatToInt(v.Z))}, nil
		}
	case ARRAY:
		if a, ok := v.(*Array); ok {
			return &Array{Kind: ARRAY, elems: append([]Value(nil), a.elems...)}, nil
		}
	}
	if IsPackedArray(t) {
		if a, ok := v.(*Array); ok {
			elem := PackedElem(t)
			out := &Array{Kind: t, elems: make([]Value, len(a.elems))}
			for i, e := range a.elems {
				ce, err := Convert(e, elem)
				if err != nil {
					return nil, err
				}
				out.elems[i] = ce
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("cannot convert %s to %s", v.Type(), t)
}

func floatToInt(f float64) Int {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return Int(f)
}

// Constructors returns the argument lists accepted by the
// constructors of builtin type t, the default constructor first.
func Constructors(t Type) [][]PropertyInfo {
	return constructors[t]
}

var constructors = map[Type][][]PropertyInfo{
	BOOL: {
		nil,
		{Arg("from", BOOL)},
		{Arg("from", INT)},
		{Arg("from", FLOAT)},
	},
	INT: {
		nil,
		{Arg("from", INT)},
		{Arg("from", BOOL)},
		{Arg("from", FLOAT)},
		{Arg("from", STRING)},
	},
	FLOAT: {
		nil,
		{Arg("from", FLOAT)},
		{Arg("from", BOOL)},
		{Arg("from", INT)},
		{Arg("from", STRING)},
	},
	STRING: {
		nil,
		{Arg("from", STRING)},
		{Arg("from", STRING_NAME)},
		{Arg("from", NODE_PATH)},
	},
	STRING_NAME: {
		nil,
		{Arg("from", STRING_NAME)},
		{Arg("from", STRING)},
	},
	NODE_PATH: {
		nil,
		{Arg("from", NODE_PATH)},
		{Arg("from", STRING)},
	},
	VECTOR2: {
		nil,
		{Arg("from", VECTOR2)},
		{Arg("from", VECTOR2I)},
		{Arg("x", FLOAT), Arg("y", FLOAT)},
	},
	VECTOR2I: {
		nil,
		{Arg("from", VECTOR2I)},
		{Arg("from", VECTOR2)},
		{Arg("x", INT), Arg("y", INT)},
	},
	VECTOR3: {
		nil,
		{Arg("from", VECTOR3)},
		{Arg("from", VECTOR3I)},
		{Arg("x", FLOAT), Arg("y", FLOAT), Arg("z", FLOAT)},
	},
	VECTOR3I: {
		nil,
		{Arg("from", VECTOR3I)},
		{Arg("from", VECTOR3)},
		{Arg("x", INT), Arg("y", INT), Arg("z", INT)},
	},
	COLOR: {
		nil,
		{Arg("from", COLOR)},
		{Arg("from", COLOR), Arg("alpha", FLOAT)},
		{Arg("r", FLOAT), Arg("g", FLOAT), Arg("b", FLOAT)},
		{Arg("r", FLOAT), Arg("g", FLOAT), Arg("b", FLOAT), Arg("a", FLOAT)},
		{Arg("code", STRING)},
	},
	CALLABLE: {
		nil,
		{Arg("from", CALLABLE)},
		{ObjectOf("Object"), Arg("method", STRING_NAME)},
	},
	SIGNAL: {
		nil,
		{Arg("from", SIGNAL)},
		{ObjectOf("Object"), Arg("signal", STRING_NAME)},
	},
	DICTIONARY: {
		nil,
		{Arg("from", DICTIONARY)},
	},
	ARRAY: {
		nil,
		{Arg("from", ARRAY)},
		{Arg("from", PACKED_BYTE_ARRAY)},
		{Arg("from", PACKED_INT32_ARRAY)},
		{Arg("from", PACKED_INT64_ARRAY)},
		{Arg("from", PACKED_FLOAT32_ARRAY)},
		{Arg("from", PACKED_FLOAT64_ARRAY)},
		{Arg("from", PACKED_STRING_ARRAY)},
	},
}

func init() {
	for t := PACKED_BYTE_ARRAY; t <= PACKED_STRING_ARRAY; t++ {
		constructors[t] = [][]PropertyInfo{nil, {Arg("from", t)}, {Arg("from", ARRAY)}}
	}
}

// Construct evaluates a call to the constructor of builtin type t.
func Construct(t Type, args []Value) (Value, error) {
	if len(args) == 0 {
		return Zero(t), nil
	}
	if len(args) == 1 {
		if args[0].Type() == t {
			switch a := args[0].(type) {
			case *Array:
				return &Array{Kind: a.Kind, Elem: a.Elem, ElemName: a.ElemName, elems: append([]Value(nil), a.elems...)}, nil
			case *Dictionary:
				d := NewDictionary()
				for i, k := range a.keys {
					d.Set(k, a.values[i])
				}
				return d, nil
			}
			return args[0], nil
		}
		if t == COLOR {
			if s, ok := args[0].(String); ok {
				return parseColor(string(s))
			}
		}
		if t == STRING {
			return String(args[0].String()), nil
		}
		if CanConvert(args[0].Type(), t) {
			return Convert(args[0], t)
		}
		return nil, fmt.Errorf("no constructor of %s accepts %s", t, args[0].Type())
	}
	floats := func() ([]float64, error) {
		fs := make([]float64, len(args))
		for i, a := range args {
			f, ok := AsFloat(a)
			if !ok {
				return nil, fmt.Errorf("invalid argument %d to %s constructor: %s is not a number", i+1, t, a.Type())
			}
			fs[i] = f
		}
		return fs, nil
	}
	switch t {
	case VECTOR2, VECTOR2I, VECTOR3, VECTOR3I:
		want := 2
		if t == VECTOR3 || t == VECTOR3I {
			want = 3
		}
		if len(args) != want {
			break
		}
		fs, err := floats()
		if err != nil {
			return nil, err
		}
		switch t {
		case VECTOR2:
			return Vector2{fs[0], fs[1]}, nil
		case VECTOR2I:
			return Vector2i{int64(floatToInt(fs[0])), int64(floatToInt(fs[1]))}, nil
		case VECTOR3:
			return Vector3{fs[0], fs[1], fs[2]}, nil
		default:
			return Vector3i{int64(floatToInt(fs[0])), int64(floatToInt(fs[1])), int64(floatToInt(fs[2]))}, nil
		}
	case COLOR:
		if c, ok := args[0].(Color); ok && len(args) == 2 {
			a, ok := AsFloat(args[1])
			if !ok {
				break
			}
			c.A = a
			return c, nil
		}
		if len(args) != 3 && len(args) != 4 {
			break
		}
		fs, err := floats()
		if err != nil {
			return nil, err
		}
		c := Color{fs[0], fs[1], fs[2], 1}
		if len(fs) == 4 {
			c.A = fs[3]
		}
		return c, nil
	}
	return nil, fmt.Errorf("no constructor of %s takes %d arguments", t, len(args))
}

var namedColors = map[string]Color{
	"black":   {0, 0, 0, 1},
	"white":   {1, 1, 1, 1},
	"red":     {1, 0, 0, 1},
	"green":   {0, 1, 0, 1},
	"blue":    {0, 0, 1, 1},
	"yellow":  {1, 1, 0, 1},
	"magenta": {1, 0, 1, 1},
	"cyan":    {0, 1, 1, 1},
}

func parseColor(s string) (Value, error) {
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return nil, fmt.Errorf("invalid color code: %q", s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid color code: %q", s)
	}
	if len(hex) == 6 {
		n = n<<8 | 0xff
	}
	return Color{
		R: float64(n>>24&0xff) / 255,
		G: float64(n>>16&0xff) / 255,
		B: float64(n>>8&0xff) / 255,
		A: float64(n&0xff) / 255,
	}, nil
}

// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package variant

import (
	"fmt"
	"math"
	"strings"
)

// An Operator is a unary or binary operator on values.
type Operator uint8

const (
	OpEqual Operator = iota
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNegate
	OpPositive
	OpModule
	OpPower
	OpShiftLeft
	OpShiftRight
	OpBitAnd
	OpBitOr
	OpBitXor
	OpBitNegate
	OpAnd
	OpOr
	OpXor
	OpNot
	OpIn

	OP_MAX // not an operator
)

var operatorNames = [...]string{
	OpEqual:        "==",
	OpNotEqual:     "!=",
	OpLess:         "<",
	OpLessEqual:    "<=",
	OpGreater:      ">",
	OpGreaterEqual: ">=",
	OpAdd:          "+",
	OpSubtract:     "-",
	OpMultiply:     "*",
	OpDivide:       "/",
	OpNegate:       "unary-",
	OpPositive:     "unary+",
	OpModule:       "%",
	OpPower:        "**",
	OpShiftLeft:    "<<",
	OpShiftRight:   ">>",
	OpBitAnd:       "&",
	OpBitOr:        "|",
	OpBitXor:       "^",
	OpBitNegate:    "~",
	OpAnd:          "and",
	OpOr:           "or",
	OpXor:          "xor",
	OpNot:          "not",
	OpIn:           "in",
}

func (op Operator) String() string {
	if op < OP_MAX {
		return operatorNames[op]
	}
	return fmt.Sprintf("Operator(%d)", op)
}

// IsUnary reports whether op takes a single operand.
func (op Operator) IsUnary() bool {
	switch op {
	case OpNegate, OpPositive, OpBitNegate, OpNot:
		return true
	}
	return false
}

func isNumeric(t Type) bool { return t == INT || t == FLOAT }

func isStringLike(t Type) bool { return t == STRING || t == STRING_NAME }

func isVector(t Type) bool {
	switch t {
	case VECTOR2, VECTOR2I, VECTOR3, VECTOR3I:
		return true
	}
	return false
}

// floatVector returns the floating-point counterpart of an integer vector type.
func floatVector(t Type) Type {
	switch t {
	case VECTOR2I:
		return VECTOR2
	case VECTOR3I:
		return VECTOR3
	}
	return t
}

// ReturnType reports the type of the result of applying op to operands
// of types a and b, and whether the operation is defined at all.
// For unary operators b is ignored.
func ReturnType(op Operator, a, b Type) (Type, bool) {
	switch op {
	case OpAnd, OpOr, OpXor, OpNot:
		return BOOL, true

	case OpEqual, OpNotEqual:
		if a == b || a == NIL || b == NIL ||
			(isNumeric(a) && isNumeric(b)) ||
			(isStringLike(a) && isStringLike(b)) {
			return BOOL, true
		}

	case OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		if isNumeric(a) && isNumeric(b) {
			return BOOL, true
		}
		if a == b {
			switch a {
			case BOOL, STRING, STRING_NAME, VECTOR2, VECTOR2I, VECTOR3, VECTOR3I, ARRAY:
				return BOOL, true
			}
		}

	case OpAdd:
		if isNumeric(a) && isNumeric(b) {
			return numericResult(a, b), true
		}
		if isStringLike(a) && isStringLike(b) {
			return STRING, true
		}
		if a == b && (isVector(a) || a == COLOR || a == ARRAY || IsPackedArray(a)) {
			return a, true
		}

	case OpSubtract:
		if isNumeric(a) && isNumeric(b) {
			return numericResult(a, b), true
		}
		if a == b && (isVector(a) || a == COLOR) {
			return a, true
		}

	case OpMultiply, OpDivide:
		if isNumeric(a) && isNumeric(b) {
			return numericResult(a, b), true
		}
		if a == b && (isVector(a) || a == COLOR) {
			return a, true
		}
		if (isVector(a) || a == COLOR) && isNumeric(b) {
			if b == FLOAT {
				return floatVector(a), true
			}
			return a, true
		}
		if op == OpMultiply && isNumeric(a) && (isVector(b) || b == COLOR) {
			if a == FLOAT {
				return floatVector(b), true
			}
			return b, true
		}

	case OpModule:
		if a == INT && b == INT {
			return INT, true
		}
		if a == STRING {
			return STRING, true // format
		}
		if (a == VECTOR2I || a == VECTOR3I) && (b == a || b == INT) {
			return a, true
		}

	case OpPower:
		if isNumeric(a) && isNumeric(b) {
			return numericResult(a, b), true
		}

	case OpShiftLeft, OpShiftRight, OpBitAnd, OpBitOr, OpBitXor:
		if a == INT && b == INT {
			return INT, true
		}

	case OpBitNegate:
		if a == INT {
			return INT, true
		}

	case OpNegate, OpPositive:
		if isNumeric(a) || isVector(a) || (op == OpNegate && a == COLOR) {
			return a, true
		}

	case OpIn:
		switch {
		case b == ARRAY, b == DICTIONARY, IsPackedArray(b):
			return BOOL, true
		case b == STRING && isStringLike(a):
			return BOOL, true
		case b == OBJECT && isStringLike(a):
			return BOOL, true
		}
	}
	return NIL, false
}

func numericResult(a, b Type) Type {
	if a == INT && b == INT {
		return INT
	}
	return FLOAT
}

func invalidOperands(op Operator, x, y Value) error {
	if op.IsUnary() {
		return fmt.Errorf("invalid operand '%s' for '%s' operator", x.Type(), op)
	}
	return fmt.Errorf("invalid operands '%s' and '%s' for '%s' operator", x.Type(), y.Type(), op)
}

// Unary applies a unary operator to x.
func Unary(op Operator, x Value) (Value, error) {
	switch op {
	case OpNot:
		return Bool(!Truth(x)), nil
	case OpNegate:
		switch x := x.(type) {
		case Int:
			return -x, nil
		case Float:
			return -x, nil
		case Vector2:
			return Vector2{-x.X, -x.Y}, nil
		case Vector2i:
			return Vector2i{-x.X, -x.Y}, nil
		case Vector3:
			return Vector3{-x.X, -x.Y, -x.Z}, nil
		case Vector3i:
			return Vector3i{-x.X, -x.Y, -x.Z}, nil
		case Color:
			return Color{1 - x.R, 1 - x.G, 1 - x.B, 1 - x.A}, nil
		}
	case OpPositive:
		switch x.(type) {
		case Int, Float, Vector2, Vector2i, Vector3, Vector3i:
			return x, nil
		}
	case OpBitNegate:
		if x, ok := x.(Int); ok {
			return ^x, nil
		}
	}
	return nil, invalidOperands(op, x, nil)
}

// Binary applies a binary operator to x and y.
func Binary(op Operator, x, y Value) (Value, error) {
	switch op {
	case OpAnd:
		return Bool(Truth(x) && Truth(y)), nil
	case OpOr:
		return Bool(Truth(x) || Truth(y)), nil
	case OpXor:
		return Bool(Truth(x) != Truth(y)), nil

	case OpEqual, OpNotEqual:
		if _, ok := ReturnType(op, x.Type(), y.Type()); !ok {
			break
		}
		eq := Equal(x, y)
		if op == OpNotEqual {
			eq = !eq
		}
		return Bool(eq), nil

	case OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		if r, ok := relateNumbers(op, x, y); ok {
			return Bool(r), nil
		}
		cmp, ok := compare(x, y)
		if !ok {
			break
		}
		switch op {
		case OpLess:
			return Bool(cmp < 0), nil
		case OpLessEqual:
			return Bool(cmp <= 0), nil
		case OpGreater:
			return Bool(cmp > 0), nil
		default:
			return Bool(cmp >= 0), nil
		}

	case OpAdd:
		switch x := x.(type) {
		case Int:
			switch y := y.(type) {
			case Int:
				return x + y, nil
			case Float:
				return Float(x) + y, nil
			}
		case Float:
			switch y := y.(type) {
			case Float:
				return x + y, nil
			case Int:
				return x + Float(y), nil
			}
		case String, StringName:
			switch y.(type) {
			case String, StringName:
				return String(x.String() + y.String()), nil
			}
		case Vector2:
			if y, ok := y.(Vector2); ok {
				return Vector2{x.X + y.X, x.Y + y.Y}, nil
			}
		case Vector2i:
			if y, ok := y.(Vector2i); ok {
				return Vector2i{x.X + y.X, x.Y + y.Y}, nil
			}
		case Vector3:
			if y, ok := y.(Vector3); ok {
				return Vector3{x.X + y.X, x.Y + y.Y, x.Z + y.Z}, nil
			}
		case Vector3i:
			if y, ok := y.(Vector3i); ok {
				return Vector3i{x.X + y.X, x.Y + y.Y, x.Z + y.Z}, nil
			}
		case Color:
			if y, ok := y.(Color); ok {
				return Color{x.R + y.R, x.G + y.G, x.B + y.B, x.A + y.A}, nil
			}
		case *Array:
			if y, ok := y.(*Array); ok && y.Kind == x.Kind {
				z := make([]Value, 0, x.Len()+y.Len())
				z = append(z, x.elems...)
				z = append(z, y.elems...)
				return &Array{Kind: x.Kind, elems: z}, nil
			}
		}

	case OpSubtract:
		switch x := x.(type) {
		case Int:
			switch y := y.(type) {
			case Int:
				return x - y, nil
			case Float:
				return Float(x) - y, nil
			}
		case Float:
			switch y := y.(type) {
			case Float:
				return x - y, nil
			case Int:
				return x - Float(y), nil
			}
		case Vector2:
			if y, ok := y.(Vector2); ok {
				return Vector2{x.X - y.X, x.Y - y.Y}, nil
			}
		case Vector2i:
			if y, ok := y.(Vector2i); ok {
				return Vector2i{x.X - y.X, x.Y - y.Y}, nil
			}
		case Vector3:
			if y, ok := y.(Vector3); ok {
				return Vector3{x.X - y.X, x.Y - y.Y, x.Z - y.Z}, nil
			}
		case Vector3i:
			if y, ok := y.(Vector3i); ok {
				return Vector3i{x.X - y.X, x.Y - y.Y, x.Z - y.Z}, nil
			}
		case Color:
			if y, ok := y.(Color); ok {
				return Color{x.R - y.R, x.G - y.G, x.B - y.B, x.A - y.A}, nil
			}
		}

	case OpMultiply:
		if v, ok := multiply(x, y); ok {
			return v, nil
		}
		if v, ok := multiply(y, x); ok && isNumeric(x.Type()) {
			return v, nil
		}

	case OpDivide:
		switch x := x.(type) {
		case Int:
			switch y := y.(type) {
			case Int:
				if y == 0 {
					return nil, fmt.Errorf("division by zero error in operator '/'")
				}
				if x == math.MinInt64 && y == -1 {
					return x, nil
				}
				return x / y, nil
			case Float:
				return Float(x) / y, nil
			}
		case Float:
			if f, ok := AsFloat(y); ok {
				return x / Float(f), nil
			}
		case Vector2:
			switch y := y.(type) {
			case Vector2:
				return Vector2{x.X / y.X, x.Y / y.Y}, nil
			case Int, Float:
				f, _ := AsFloat(y)
				return Vector2{x.X / f, x.Y / f}, nil
			}
		case Vector3:
			switch y := y.(type) {
			case Vector3:
				return Vector3{x.X / y.X, x.Y / y.Y, x.Z / y.Z}, nil
			case Int, Float:
				f, _ := AsFloat(y)
				return Vector3{x.X / f, x.Y / f, x.Z / f}, nil
			}
		case Vector2i:
			switch y := y.(type) {
			case Vector2i:
				if y.X == 0 || y.Y == 0 {
					return nil, fmt.Errorf("division by zero error in operator '/'")
				}
				return Vector2i{x.X / y.X, x.Y / y.Y}, nil
			case Int:
				if y == 0 {
					return nil, fmt.Errorf("division by zero error in operator '/'")
				}
				return Vector2i{x.X / int64(y), x.Y / int64(y)}, nil
			case Float:
				return Vector2{float64(x.X) / float64(y), float64(x.Y) / float64(y)}, nil
			}
		case Vector3i:
			switch y := y.(type) {
			case Vector3i:
				if y.X == 0 || y.Y == 0 || y.Z == 0 {
					return nil, fmt.Errorf("division by zero error in operator '/'")
				}
				return Vector3i{x.X / y.X, x.Y / y.Y, x.Z / y.Z}, nil
			case Int:
				if y == 0 {
					return nil, fmt.Errorf("division by zero error in operator '/'")
				}
				return Vector3i{x.X / int64(y), x.Y / int64(y), x.Z / int64(y)}, nil
			case Float:
				f := float64(y)
				return Vector3{float64(x.X) / f, float64(x.Y) / f, float64(x.Z) / f}, nil
			}
		case Color:
			switch y := y.(type) {
			case Color:
				return Color{x.R / y.R, x.G / y.G, x.B / y.B, x.A / y.A}, nil
			case Int, Float:
				f, _ := AsFloat(y)
				return Color{x.R / f, x.G / f, x.B / f, x.A / f}, nil
			}
		}

	case OpModule:
		switch x := x.(type) {
		case Int:
			if y, ok := y.(Int); ok {
				if y == 0 {
					return nil, fmt.Errorf("modulo by zero error in operator '%%'")
				}
				if y == -1 {
					return Int(0), nil
				}
				return x % y, nil
			}
		case String:
			return format(string(x), y)
		case Vector2i:
			switch y := y.(type) {
			case Vector2i:
				if y.X == 0 || y.Y == 0 {
					return nil, fmt.Errorf("modulo by zero error in operator '%%'")
				}
				return Vector2i{x.X % y.X, x.Y % y.Y}, nil
			case Int:
				if y == 0 {
					return nil, fmt.Errorf("modulo by zero error in operator '%%'")
				}
				return Vector2i{x.X % int64(y), x.Y % int64(y)}, nil
			}
		case Vector3i:
			switch y := y.(type) {
			case Vector3i:
				if y.X == 0 || y.Y == 0 || y.Z == 0 {
					return nil, fmt.Errorf("modulo by zero error in operator '%%'")
				}
				return Vector3i{x.X % y.X, x.Y % y.Y, x.Z % y.Z}, nil
			case Int:
				if y == 0 {
					return nil, fmt.Errorf("modulo by zero error in operator '%%'")
				}
				return Vector3i{x.X % int64(y), x.Y % int64(y), x.Z % int64(y)}, nil
			}
		}

	case OpPower:
		switch x := x.(type) {
		case Int:
			switch y := y.(type) {
			case Int:
				return intPow(x, y), nil
			case Float:
				return Float(math.Pow(float64(x), float64(y))), nil
			}
		case Float:
			if f, ok := AsFloat(y); ok {
				return Float(math.Pow(float64(x), f)), nil
			}
		}

	case OpShiftLeft, OpShiftRight, OpBitAnd, OpBitOr, OpBitXor:
		x, ok1 := x.(Int)
		y, ok2 := y.(Int)
		if !ok1 || !ok2 {
			break
		}
		switch op {
		case OpShiftLeft, OpShiftRight:
			if y < 0 {
				return nil, fmt.Errorf("invalid operands for bit shifting: negative shift count")
			}
			if op == OpShiftLeft {
				return x << uint64(y), nil
			}
			return x >> uint64(y), nil
		case OpBitAnd:
			return x & y, nil
		case OpBitOr:
			return x | y, nil
		default:
			return x ^ y, nil
		}

	case OpIn:
		switch y := y.(type) {
		case *Array:
			for _, e := range y.elems {
				if Equal(x, e) {
					return Bool(true), nil
				}
			}
			return Bool(false), nil
		case *Dictionary:
			return Bool(y.Has(x)), nil
		case String:
			switch x.(type) {
			case String, StringName:
				return Bool(strings.Contains(string(y), x.String())), nil
			}
		}
	}
	return nil, invalidOperands(op, x, y)
}

func multiply(x, y Value) (Value, bool) {
	switch x := x.(type) {
	case Int:
		switch y := y.(type) {
		case Int:
			return x * y, true
		case Float:
			return Float(x) * y, true
		}
	case Float:
		if f, ok := AsFloat(y); ok {
			return x * Float(f), true
		}
	case Vector2:
		switch y := y.(type) {
		case Vector2:
			return Vector2{x.X * y.X, x.Y * y.Y}, true
		case Int, Float:
			f, _ := AsFloat(y)
			return Vector2{x.X * f, x.Y * f}, true
		}
	case Vector3:
		switch y := y.(type) {
		case Vector3:
			return Vector3{x.X * y.X, x.Y * y.Y, x.Z * y.Z}, true
		case Int, Float:
			f, _ := AsFloat(y)
			return Vector3{x.X * f, x.Y * f, x.Z * f}, true
		}
	case Vector2i:
		switch y := y.(type) {
		case Vector2i:
			return Vector2i{x.X * y.X, x.Y * y.Y}, true
		case Int:
			return Vector2i{x.X * int64(y), x.Y * int64(y)}, true
		case Float:
			return Vector2{float64(x.X) * float64(y), float64(x.Y) * float64(y)}, true
		}
	case Vector3i:
		switch y := y.(type) {
		case Vector3i:
			return Vector3i{x.X * y.X, x.Y * y.Y, x.Z * y.Z}, true
		case Int:
			return Vector3i{x.X * int64(y), x.Y * int64(y), x.Z * int64(y)}, true
		case Float:
			f := float64(y)
			return Vector3{float64(x.X) * f, float64(x.Y) * f, float64(x.Z) * f}, true
		}
	case Color:
		switch y := y.(type) {
		case Color:
			return Color{x.R * y.R, x.G * y.G, x.B * y.B, x.A * y.A}, true
		case Int, Float:
			f, _ := AsFloat(y)
			return Color{x.R * f, x.G * f, x.B * f, x.A * f}, true
		}
	}
	return nil, false
}

func intPow(x, y Int) Value {
	if y < 0 {
		return Int(math.Pow(float64(x), float64(y)))
	}
	result := Int(1)
	for y > 0 {
		if y&1 == 1 {
			result *= x
		}
		x *= x
		y >>= 1
	}
	return result
}

// AsFloat returns the numeric value of an int or float.
func AsFloat(v Value) (float64, bool) {
	switch v := v.(type) {
	case Int:
		return float64(v), true
	case Float:
		return float64(v), true
	}
	return 0, false
}

// Equal reports whether x == y, comparing numbers by value across
// int and float, and String with StringName by content.
func Equal(x, y Value) bool {
	switch x := x.(type) {
	case Nil:
		_, ok := y.(Nil)
		return ok
	case Int, Float:
		fx, _ := AsFloat(x)
		if fy, ok := AsFloat(y); ok {
			if xi, ok := x.(Int); ok {
				if yi, ok := y.(Int); ok {
					return xi == yi
				}
			}
			return fx == fy
		}
		return false
	case String, StringName:
		switch y.(type) {
		case String, StringName:
			return x.String() == y.String()
		}
		return false
	case *Array:
		y, ok := y.(*Array)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for i := range x.elems {
			if !Equal(x.elems[i], y.elems[i]) {
				return false
			}
		}
		return true
	case *Dictionary:
		y, ok := y.(*Dictionary)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for i, k := range x.keys {
			v, ok := y.Get(k)
			if !ok || !Equal(x.values[i], v) {
				return false
			}
		}
		return true
	}
	return x == y
}

func compare(x, y Value) (int, bool) {
	if fx, ok := AsFloat(x); ok {
		fy, ok := AsFloat(y)
		if !ok {
			return 0, false
		}
		if xi, ok := x.(Int); ok {
			if yi, ok := y.(Int); ok {
				return threeway(xi < yi, xi > yi), true
			}
		}
		return threeway(fx < fy, fx > fy), true
	}
	switch x := x.(type) {
	case Bool:
		if y, ok := y.(Bool); ok {
			return threeway(!bool(x) && bool(y), bool(x) && !bool(y)), true
		}
	case String, StringName:
		if y.Type() == x.Type() {
			return strings.Compare(x.String(), y.String()), true
		}
	case Vector2:
		if y, ok := y.(Vector2); ok {
			if x.X != y.X {
				return threeway(x.X < y.X, true), true
			}
			return threeway(x.Y < y.Y, x.Y > y.Y), true
		}
	case Vector2i:
		if y, ok := y.(Vector2i); ok {
			if x.X != y.X {
				return threeway(x.X < y.X, true), true
			}
			return threeway(x.Y < y.Y, x.Y > y.Y), true
		}
	case Vector3:
		if y, ok := y.(Vector3); ok {
			switch {
			case x.X != y.X:
				return threeway(x.X < y.X, true), true
			case x.Y != y.Y:
				return threeway(x.Y < y.Y, true), true
			}
			return threeway(x.Z < y.Z, x.Z > y.Z), true
		}
	case Vector3i:
		if y, ok := y.(Vector3i); ok {
			switch {
			case x.X != y.X:
				return threeway(x.X < y.X, true), true
			case x.Y != y.Y:
				return threeway(x.Y < y.Y, true), true
			}
			return threeway(x.Z < y.Z, x.Z > y.Z), true
		}
	case *Array:
		if y, ok := y.(*Array); ok {
			for i := 0; i < x.Len() && i < y.Len(); i++ {
				if Equal(x.elems[i], y.elems[i]) {
					continue
				}
				c, ok := compare(x.elems[i], y.elems[i])
				return c, ok
			}
			return threeway(x.Len() < y.Len(), x.Len() > y.Len()), true
		}
	}
	return 0, false
}

// relateNumbers applies a relational operator to two numbers. Any
// comparison of a float NaN is false.
func relateNumbers(op Operator, x, y Value) (result, ok bool) {
	if xi, ok := x.(Int); ok {
		if yi, ok := y.(Int); ok {
			switch op {
			case OpLess:
				return xi < yi, true
			case OpLessEqual:
				return xi <= yi, true
			case OpGreater:
				return xi > yi, true
			}
			return xi >= yi, true
		}
	}
	fx, okx := AsFloat(x)
	fy, oky := AsFloat(y)
	if !okx || !oky {
		return false, false
	}
	switch op {
	case OpLess:
		return fx < fy, true
	case OpLessEqual:
		return fx <= fy, true
	case OpGreater:
		return fx > fy, true
	}
	return fx >= fy, true
}

func threeway(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return +1
	}
	return 0
}

// format implements the String % operator.
func format(f string, args Value) (Value, error) {
	var list []Value
	if a, ok := args.(*Array); ok && a.Kind == ARRAY {
		list = a.elems
	} else {
		list = []Value{args}
	}
	var buf strings.Builder
	n := 0
	for i := 0; i < len(f); i++ {
		c := f[i]
		if c != '%' {
			buf.WriteByte(c)
			continue
		}
		i++
		if i == len(f) {
			return nil, fmt.Errorf("incomplete format")
		}
		verb := f[i]
		if verb == '%' {
			buf.WriteByte('%')
			continue
		}
		if n >= len(list) {
			return nil, fmt.Errorf("not enough arguments for format string")
		}
		arg := list[n]
		n++
		switch verb {
		case 's':
			buf.WriteString(arg.String())
		case 'd':
			fl, ok := AsFloat(arg)
			if !ok {
				return nil, fmt.Errorf("a number is required")
			}
			fmt.Fprintf(&buf, "%d", int64(fl))
		case 'f':
			fl, ok := AsFloat(arg)
			if !ok {
				return nil, fmt.Errorf("a number is required")
			}
			fmt.Fprintf(&buf, "%f", fl)
		case 'x', 'X':
			iv, ok := arg.(Int)
			if !ok {
				return nil, fmt.Errorf("an integer is required")
			}
			fmt.Fprintf(&buf, "%"+string(verb), int64(iv))
		default:
			return nil, fmt.Errorf("unsupported format character '%c'", verb)
		}
	}
	if n < len(list) {
		return nil, fmt.Errorf("not all arguments converted during string formatting")
	}
	return String(buf.String()), nil
}

// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package variant_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.gdlang.net/variant"
)

func TestBinary(t *testing.T) {
	s := func(x string) variant.Value { return variant.String(x) }
	i := func(x int64) variant.Value { return variant.Int(x) }
	f := func(x float64) variant.Value { return variant.Float(x) }
	nan := f(math.NaN())
	for _, test := range []struct {
		op   variant.Operator
		x, y variant.Value
		want string // Repr of the result, or the error
	}{
		{variant.OpAdd, i(1), i(2), "3"},
		{variant.OpAdd, i(1), f(2), "3.0"},
		{variant.OpAdd, s("a"), variant.StringName("b"), `"ab"`},
		{variant.OpSubtract, f(1.5), i(1), "0.5"},
		{variant.OpMultiply, variant.Vector2{X: 1, Y: 2}, i(2), "(2.0, 4.0)"},
		{variant.OpMultiply, i(2), variant.Vector2i{X: 1, Y: 2}, "(2, 4)"},
		{variant.OpDivide, i(7), i(2), "3"},
		{variant.OpDivide, i(7), f(2), "3.5"},
		{variant.OpDivide, i(1), i(0), "division by zero error in operator '/'"},
		{variant.OpModule, i(7), i(3), "1"},
		{variant.OpModule, variant.Vector2i{X: 7, Y: 8}, i(4), "(3, 0)"},
		{variant.OpModule, variant.Vector3i{X: 7, Y: 8, Z: 9}, i(4), "(3, 0, 1)"},
		{variant.OpModule, variant.Vector3i{X: 7, Y: 8, Z: 9}, variant.Vector3i{X: 2, Y: 3, Z: 4}, "(1, 2, 1)"},
		{variant.OpModule, variant.Vector3i{X: 7, Y: 8, Z: 9}, i(0), "modulo by zero error in operator '%'"},
		{variant.OpModule, variant.Vector3i{X: 7, Y: 8, Z: 9}, variant.Vector3i{X: 1, Y: 0, Z: 1}, "modulo by zero error in operator '%'"},
		{variant.OpModule, s("%d apples"), i(3), `"3 apples"`},
		{variant.OpModule, s("%s-%s"), variant.NewArray([]variant.Value{i(1), s("x")}), `"1-x"`},
		{variant.OpPower, i(2), i(10), "1024"},
		{variant.OpShiftLeft, i(1), i(4), "16"},
		{variant.OpShiftLeft, i(1), i(-1), "invalid operands for bit shifting: negative shift count"},
		{variant.OpBitAnd, i(6), i(3), "2"},
		{variant.OpEqual, i(2), f(2), "true"},
		{variant.OpEqual, s("2"), i(2), "invalid operands 'String' and 'int' for '==' operator"},
		{variant.OpEqual, s("a"), variant.StringName("a"), "true"},
		{variant.OpEqual, variant.Null, i(0), "false"},
		{variant.OpLess, i(1), f(1.5), "true"},
		{variant.OpEqual, nan, nan, "false"},
		{variant.OpNotEqual, nan, nan, "true"},
		{variant.OpLessEqual, nan, f(1), "false"},
		{variant.OpGreaterEqual, nan, nan, "false"},
		{variant.OpLess, f(1), nan, "false"},
		{variant.OpGreater, i(1), nan, "false"},
		{variant.OpLessEqual, i(2), i(2), "true"},
		{variant.OpGreater, i(3), f(2.5), "true"},
		{variant.OpGreaterEqual, s("b"), s("a"), "true"},
		{variant.OpIn, i(2), variant.NewArray([]variant.Value{i(1), f(2)}), "true"},
		{variant.OpIn, s("ell"), s("hello"), "true"},
		{variant.OpAnd, i(1), s(""), "false"},
		{variant.OpAdd, s("a"), i(1), "invalid operands 'String' and 'int' for '+' operator"},
	} {
		var got string
		v, err := variant.Binary(test.op, test.x, test.y)
		if err != nil {
			got = err.Error()
		} else {
			got = variant.Repr(v)
		}
		if got != test.want {
			t.Errorf("%s %s %s = %s, want %s", variant.Repr(test.x), test.op, variant.Repr(test.y), got, test.want)
		}
	}
}

func TestUnary(t *testing.T) {
	for _, test := range []struct {
		op   variant.Operator
		x    variant.Value
		want string
	}{
		{variant.OpNegate, variant.Int(3), "-3"},
		{variant.OpNegate, variant.Vector2i{X: 1, Y: -2}, "(-1, 2)"},
		{variant.OpBitNegate, variant.Int(0), "-1"},
		{variant.OpNot, variant.String(""), "true"},
		{variant.OpPositive, variant.String("x"), "invalid operand 'String' for 'unary+' operator"},
	} {
		var got string
		v, err := variant.Unary(test.op, test.x)
		if err != nil {
			got = err.Error()
		} else {
			got = variant.Repr(v)
		}
		if got != test.want {
			t.Errorf("%s %s = %s, want %s", test.op, variant.Repr(test.x), got, test.want)
		}
	}
}

// TestReturnTypeAgreesWithBinary checks that the operator table used
// for static typing agrees with the type of each folded result.
func TestReturnTypeAgreesWithBinary(t *testing.T) {
	values := []variant.Value{
		variant.Bool(true),
		variant.Int(3),
		variant.Float(1.5),
		variant.String("s"),
		variant.StringName("n"),
		variant.Vector2{X: 1, Y: 2},
		variant.Vector2i{X: 1, Y: 2},
		variant.Vector3{X: 1, Y: 2, Z: 3},
		variant.Color{R: 1, G: 1, B: 1, A: 1},
		variant.NewArray([]variant.Value{variant.Int(1)}),
	}
	for op := variant.OpEqual; op < variant.OP_MAX; op++ {
		if op.IsUnary() || op == variant.OpModule {
			continue // % on strings formats, and may fail on arity
		}
		for _, x := range values {
			for _, y := range values {
				v, err := variant.Binary(op, x, y)
				if err != nil {
					continue
				}
				rt, ok := variant.ReturnType(op, x.Type(), y.Type())
				if !ok {
					t.Errorf("%s %s %s folds to %s, but the operator table rejects it", variant.Repr(x), op, variant.Repr(y), variant.Repr(v))
					continue
				}
				if rt != v.Type() {
					t.Errorf("%s %s %s: table says %s, result is %s", variant.Repr(x), op, variant.Repr(y), rt, v.Type())
				}
			}
		}
	}
}

func TestConvert(t *testing.T) {
	for _, test := range []struct {
		v    variant.Value
		t    variant.Type
		want string
	}{
		{variant.Float(2.9), variant.INT, "2"},
		{variant.Float(math.NaN()), variant.INT, "0"},
		{variant.Int(2), variant.FLOAT, "2.0"},
		{variant.Bool(true), variant.INT, "1"},
		{variant.String("x"), variant.STRING_NAME, `&"x"`},
		{variant.StringName("x"), variant.NODE_PATH, `^"x"`},
		{variant.Vector2{X: 1.5, Y: -1.5}, variant.VECTOR2I, "(1, -1)"},
		{variant.Int(1), variant.STRING, `"1"`},
		{variant.NewArray([]variant.Value{variant.Int(1), variant.Float(2)}), variant.PACKED_INT32_ARRAY, "[1, 2]"},
		{variant.Int(1), variant.VECTOR2, "cannot convert int to Vector2"},
	} {
		var got string
		v, err := variant.Convert(test.v, test.t)
		if err != nil {
			got = err.Error()
		} else {
			got = variant.Repr(v)
		}
		if got != test.want {
			t.Errorf("Convert(%s, %s) = %s, want %s", variant.Repr(test.v), test.t, got, test.want)
		}
	}
}

func TestCanConvert(t *testing.T) {
	for _, test := range []struct {
		from, to      variant.Type
		strict, loose bool
	}{
		{variant.INT, variant.FLOAT, true, true},
		{variant.FLOAT, variant.INT, true, true},
		{variant.STRING, variant.INT, false, true},
		{variant.INT, variant.STRING, false, true},
		{variant.STRING, variant.STRING_NAME, true, true},
		{variant.NIL, variant.OBJECT, true, true},
		{variant.NIL, variant.INT, false, false},
		{variant.ARRAY, variant.PACKED_STRING_ARRAY, true, true},
		{variant.VECTOR2, variant.VECTOR3, false, false},
	} {
		if got := variant.CanConvertStrict(test.from, test.to); got != test.strict {
			t.Errorf("CanConvertStrict(%s, %s) = %t, want %t", test.from, test.to, got, test.strict)
		}
		if got := variant.CanConvert(test.from, test.to); got != test.loose {
			t.Errorf("CanConvert(%s, %s) = %t, want %t", test.from, test.to, got, test.loose)
		}
	}
}

func TestConstruct(t *testing.T) {
	for _, test := range []struct {
		t    variant.Type
		args []variant.Value
		want string
	}{
		{variant.VECTOR2, nil, "(0.0, 0.0)"},
		{variant.VECTOR2, []variant.Value{variant.Int(1), variant.Float(2.5)}, "(1.0, 2.5)"},
		{variant.VECTOR3I, []variant.Value{variant.Int(1), variant.Int(2), variant.Int(3)}, "(1, 2, 3)"},
		{variant.COLOR, []variant.Value{variant.String("red")}, "(1.0, 0.0, 0.0, 1.0)"},
		{variant.COLOR, []variant.Value{variant.String("#00ff00")}, "(0.0, 1.0, 0.0, 1.0)"},
		{variant.INT, []variant.Value{variant.String("42")}, "42"},
		{variant.STRING, []variant.Value{variant.Vector2i{X: 1, Y: 2}}, `"(1, 2)"`},
		{variant.VECTOR2, []variant.Value{variant.String("a"), variant.Int(1)}, "invalid argument 1 to Vector2 constructor: String is not a number"},
		{variant.BOOL, []variant.Value{variant.Int(1), variant.Int(2)}, "no constructor of bool takes 2 arguments"},
	} {
		var got string
		v, err := variant.Construct(test.t, test.args)
		if err != nil {
			got = err.Error()
		} else {
			got = variant.Repr(v)
		}
		if got != test.want {
			t.Errorf("%s%v = %s, want %s", test.t, test.args, got, test.want)
		}
	}
}

func TestDictionaryKeys(t *testing.T) {
	d := variant.NewDictionary()
	d.Set(variant.String("a"), variant.Int(1))
	d.Set(variant.Int(2), variant.Int(2))
	d.Set(variant.StringName("a"), variant.Int(3)) // same key as "a"
	if got, want := d.String(), `{"a": 3, 2: 2}`; got != want {
		t.Errorf("dict = %s, want %s", got, want)
	}
	if !d.Has(variant.StringName("a")) {
		t.Errorf("dict lacks &\"a\"")
	}
	d.MakeReadOnly()
	if err := d.Set(variant.Int(5), variant.Null); err == nil {
		t.Errorf("Set on a read-only dictionary succeeded")
	}
}

func TestMembers(t *testing.T) {
	m, ok := variant.Method(variant.STRING, "find")
	if !ok {
		t.Fatal("String.find not found")
	}
	if got, want := m.Signature(), "find(what: String, from: int = 0) -> int"; got != want {
		t.Errorf("signature = %s, want %s", got, want)
	}
	if m.MinArgs() != 1 {
		t.Errorf("MinArgs = %d, want 1", m.MinArgs())
	}
	if p, ok := variant.Property(variant.VECTOR3I, "z"); !ok || p.Type != variant.INT {
		t.Errorf("Vector3i.z = %v, %t", p, ok)
	}
	if v, ok := variant.Constant(variant.VECTOR2, "UP"); !ok || v != (variant.Vector2{X: 0, Y: -1}) {
		t.Errorf("Vector2.UP = %v, %t", v, ok)
	}
	v, err := variant.GetIndexed(variant.NewArray([]variant.Value{variant.Int(1), variant.Int(2)}), variant.Int(-1))
	if err != nil || v != variant.Int(2) {
		t.Errorf("[1, 2][-1] = %v, %v", v, err)
	}
	if _, err := variant.GetNamed(variant.Vector2{}, "z"); err == nil {
		t.Errorf("Vector2.z succeeded")
	}
	if it, ok := variant.IndexType(variant.PACKED_FLOAT32_ARRAY, variant.INT); !ok || it.Type != variant.FLOAT {
		t.Errorf("PackedFloat32Array[int] = %v, %t", it, ok)
	}
}

func TestUtility(t *testing.T) {
	for _, test := range []struct {
		name string
		args []variant.Value
		want string
	}{
		{"absi", []variant.Value{variant.Int(-3)}, "3"},
		{"clampi", []variant.Value{variant.Int(12), variant.Int(0), variant.Int(10)}, "10"},
		{"floori", []variant.Value{variant.Float(-1.5)}, "-2"},
		{"sqrt", []variant.Value{variant.Int(16)}, "4.0"},
		{"str", []variant.Value{variant.Int(1), variant.String("a")}, `"1a"`},
	} {
		fn, ok := variant.Utility(test.name)
		if !ok || fn.Eval == nil {
			t.Errorf("%s: not a foldable utility function", test.name)
			continue
		}
		v, err := fn.Eval(test.args)
		if err != nil {
			t.Errorf("%s: %v", test.name, err)
			continue
		}
		if got := variant.Repr(v); got != test.want {
			t.Errorf("%s%v = %s, want %s", test.name, test.args, got, test.want)
		}
	}
	if fn, _ := variant.Utility("print"); fn.Eval != nil || !fn.Vararg {
		t.Errorf("print must be a non-foldable vararg function")
	}
}

func TestTypeNames(t *testing.T) {
	var got []string
	for _, name := range []string{"int", "Vector2i", "PackedStringArray", "Nil", "Node"} {
		if typ, ok := variant.TypeByName(name); ok {
			got = append(got, typ.String())
		}
	}
	want := []string{"int", "Vector2i", "PackedStringArray"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TypeByName (-want +got):\n%s", diff)
	}
}

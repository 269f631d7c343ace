// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package classdb_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"go.gdlang.net/classdb"
	"go.gdlang.net/variant"
)

func TestCoreHierarchy(t *testing.T) {
	db := classdb.Core()
	for _, test := range []struct {
		class, ancestor string
		want            bool
	}{
		{"Sprite2D", "Node2D", true},
		{"Sprite2D", "Object", true},
		{"Sprite2D", "Sprite2D", true},
		{"Node2D", "Sprite2D", false},
		{"Resource", "Node", false},
		{"GDScript", "RefCounted", true},
		{"NoSuchClass", "Object", false},
	} {
		if got := classdb.IsSubclass(db, test.class, test.ancestor); got != test.want {
			t.Errorf("IsSubclass(%s, %s) = %t, want %t", test.class, test.ancestor, got, test.want)
		}
	}
}

func TestInheritedMembers(t *testing.T) {
	db := classdb.Core()

	p, ok := db.Property("Sprite2D", "position")
	require.True(t, ok, "Sprite2D.position")
	if p.Type != variant.VECTOR2 {
		t.Errorf("Sprite2D.position: %s, want Vector2", p.Type)
	}

	m, ok := db.Method("Timer", "queue_free")
	require.True(t, ok, "Timer.queue_free")
	if !m.Return.IsVoid() {
		t.Errorf("queue_free returns %s, want void", m.Return)
	}

	if !classdb.HasSignal(db, "Timer", "ready") || !classdb.HasSignal(db, "Timer", "timeout") {
		t.Errorf("Timer lacks ready or timeout signals")
	}
	if classdb.HasSignal(db, "Node", "timeout") {
		t.Errorf("Node has a timeout signal")
	}

	if v, ok := db.IntegerConstant("Node2D", "NOTIFICATION_READY"); !ok || v != 13 {
		t.Errorf("Node2D.NOTIFICATION_READY = %d, %t", v, ok)
	}
	if e, ok := db.EnumOfConstant("Sprite2D", "PROCESS_MODE_ALWAYS"); !ok || e != "ProcessMode" {
		t.Errorf("enum of PROCESS_MODE_ALWAYS = %q, %t", e, ok)
	}
	values, ok := db.Enum("FileAccess", "ModeFlags")
	require.True(t, ok)
	want := []classdb.EnumValue{{"READ", 1}, {"WRITE", 2}, {"READ_WRITE", 3}, {"WRITE_READ", 7}}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Errorf("FileAccess.ModeFlags (-want +got):\n%s", diff)
	}

	open, ok := db.Method("FileAccess", "open")
	require.True(t, ok)
	if !open.Static {
		t.Errorf("FileAccess.open is not static")
	}
}

func TestSingletonsAndGlobals(t *testing.T) {
	db := classdb.Core()
	if class, ok := db.Singleton("Input"); !ok || class != "Input" {
		t.Errorf("Singleton(Input) = %q, %t", class, ok)
	}
	if _, ok := db.Singleton("Node"); ok {
		t.Errorf("Node is a singleton")
	}
	for _, test := range []struct {
		name string
		want string
	}{
		{"OK", "0"},
		{"ERR_BUSY", "44"},
		{"KEY_A", "65"},
		{"TYPE_VECTOR2I", "6"},
		{"TYPE_PACKED_INT32_ARRAY", "18"},
		{"TYPE_STRING_NAME", "10"},
		{"OP_ADD", "6"},
		{"TAU", "6.283185307179586"},
	} {
		v, ok := db.GlobalConstant(test.name)
		if !ok {
			t.Errorf("%s: not defined", test.name)
			continue
		}
		if got := variant.Repr(v); got != test.want {
			t.Errorf("%s = %s, want %s", test.name, got, test.want)
		}
	}
	if _, ok := db.GlobalEnum("Error"); !ok {
		t.Errorf("Error enum not defined")
	}
}

func TestAdd(t *testing.T) {
	db := classdb.New()
	require.NoError(t, db.Add(&classdb.Class{Name: "Base"}))
	if err := db.Add(&classdb.Class{Name: "Base"}); err == nil {
		t.Errorf("redefinition of Base succeeded")
	}
	if err := db.Add(&classdb.Class{Name: "Orphan", Parent: "Missing"}); err == nil {
		t.Errorf("class with unknown parent was added")
	}
	require.NoError(t, db.Add(&classdb.Class{
		Name:       "Derived",
		Parent:     "Base",
		Properties: []variant.PropertyInfo{variant.Arg("speed", variant.FLOAT)},
		Enums:      []classdb.Enum{{Name: "Mode", Values: []classdb.EnumValue{{"A", 0}, {"B", 1}}}},
	}))
	if got, want := db.MemberNames("Derived"), []string{"A", "B", "Mode", "speed"}; !cmp.Equal(got, want) {
		t.Errorf("MemberNames = %v, want %v", got, want)
	}
	if db.IsInstantiable("Derived") {
		t.Errorf("Derived is instantiable")
	}
}

func TestLanguageFunctions(t *testing.T) {
	for _, test := range []struct {
		name string
		args []variant.Value
		want string
	}{
		{"len", []variant.Value{variant.String("héllo")}, "5"},
		{"len", []variant.Value{variant.NewArray([]variant.Value{variant.Int(1)})}, "1"},
		{"len", []variant.Value{variant.Int(1)}, "len: value of type 'int' can't provide a length"},
		{"range", []variant.Value{variant.Int(3)}, "[0, 1, 2]"},
		{"range", []variant.Value{variant.Int(5), variant.Int(0), variant.Int(-2)}, "[5, 3, 1]"},
		{"range", []variant.Value{variant.Int(1), variant.Int(2), variant.Int(0)}, "range: step argument is zero"},
		{"char", []variant.Value{variant.Int(65)}, `"A"`},
		{"Color8", []variant.Value{variant.Int(255), variant.Int(0), variant.Int(0)}, "(1.0, 0.0, 0.0, 1.0)"},
		{"convert", []variant.Value{variant.Float(2.5), variant.Int(variant.INT)}, "2"},
	} {
		f, ok := classdb.LanguageFunction(test.name)
		require.True(t, ok, test.name)
		require.NotNil(t, f.Eval, test.name)
		var got string
		v, err := f.Eval(test.args)
		if err != nil {
			got = err.Error()
		} else {
			got = variant.Repr(v)
		}
		if got != test.want {
			t.Errorf("%s%v = %s, want %s", test.name, test.args, got, test.want)
		}
	}

	load, ok := classdb.LanguageFunction("load")
	require.True(t, ok)
	if load.Eval != nil || load.Const {
		t.Errorf("load must not be foldable")
	}
}

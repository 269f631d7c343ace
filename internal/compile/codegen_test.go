// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"go.gdlang.net/classdb"
	"go.gdlang.net/gdtest"
	"go.gdlang.net/resolve"
	"go.gdlang.net/syntax"
	"go.gdlang.net/variant"
)

const testPath = "res://test.gd"

// compileSource compiles src as the file res://test.gd of a project
// holding the files of the txtar archive project.
func compileSource(t *testing.T, src, project string) *Program {
	t.Helper()
	f, err := syntax.Parse(testPath, src)
	require.NoError(t, err)
	env := resolve.NewEnv(classdb.Core(), gdtest.ParseProject([]byte(project)).Load)
	prog, err := New(env).Compile(f)
	require.NoError(t, err)
	return prog
}

func method(t *testing.T, prog *Program, name string) *Function {
	t.Helper()
	fn := prog.Main.Method(name)
	require.NotNil(t, fn, "no method %s", name)
	return fn
}

var jumpTarget = regexp.MustCompile(`->(\d+)`)

// listing returns the instructions of fn separated by "; ". A jump
// target is shown as the index of the instruction it refers to, as
// in "jump ->@3".
func listing(t *testing.T, fn *Function) string {
	t.Helper()
	insns, err := fn.instructions()
	require.NoError(t, err)
	index := make(map[string]int)
	for i, in := range insns {
		index[fmt.Sprint(in.pc)] = i
	}
	index[fmt.Sprint(len(fn.Code))] = len(insns)

	var out []string
	for _, in := range insns {
		text := jumpTarget.ReplaceAllStringFunc(fn.format(in), func(s string) string {
			return "->@" + strconv.Itoa(index[s[2:]])
		})
		out = append(out, text)
	}
	return strings.Join(out, "; ")
}

func TestConstantInitializer(t *testing.T) {
	prog := compileSource(t, "extends Node\nvar x: int = 1 + 2\n", "")
	got := listing(t, prog.Main.Initializer)
	require.NotContains(t, got, "operator")
	require.Contains(t, got, "self.x, 3")
	require.Equal(t, "@implicit_new", prog.Main.Initializer.Name)
	require.Nil(t, prog.Main.ImplicitReady)

	require.Len(t, prog.Main.Members, 1)
	m := prog.Main.Members[0]
	require.Equal(t, "x", m.Name)
	require.Equal(t, "int", m.Type.String())
	require.Equal(t, "Node", prog.Main.Native)
}

func TestCodegen(t *testing.T) {
	for _, test := range []struct {
		name string
		src  string
		fn   string
		want string
	}{
		{
			name: "and",
			src:  "func f(a, b):\n\treturn a and b\n",
			fn:   "f",
			want: "jump_if_not a, ->@4; jump_if_not b, ->@4; assign %0, true; jump ->@5; assign %0, false; return %0",
		},
		{
			name: "or",
			src:  "func f(a, b):\n\treturn a or b\n",
			fn:   "f",
			want: "jump_if a, ->@4; jump_if b, ->@4; assign %0, false; jump ->@5; assign %0, true; return %0",
		},
		{
			name: "ternary",
			src:  "func f(a, b, c):\n\treturn b if a else c\n",
			fn:   "f",
			want: "jump_if_not a, ->@3; assign %0, b; jump ->@4; assign %0, c; return %0",
		},
		{
			name: "lambda",
			src:  "func f():\n\tvar a = 1\n\tvar g = func(): return a\n\treturn g\n",
			fn:   "f",
			want: "assign a, 1; create_lambda %0, func <anonymous lambda>, (a); assign g, %0; return g",
		},
		{
			name: "while",
			src:  "func f(n):\n\twhile n:\n\t\tn -= 1\n",
			fn:   "f",
			want: "jump_if_not n, ->@4; operator %0, -, n, 1; assign n, %0; jump ->@0; return null",
		},
		{
			name: "if",
			src:  "func f(a):\n\tif a:\n\t\treturn 1\n\telse:\n\t\treturn 2\n",
			fn:   "f",
			want: "jump_if_not a, ->@3; return 1; jump ->@4; return 2",
		},
		{
			name: "write back through variant element",
			src:  "var arr: Array = []\nfunc f():\n\tarr[0].x = 1.0\n",
			fn:   "f",
			want: "get_indexed %0, self.arr, 0; set_named %0, x, 1.0; jump_if_shared %0, ->@4; set_indexed self.arr, 0, %0; return null",
		},
		{
			name: "write back through value element",
			src:  "var arr: Array[Vector2]\nfunc f():\n\tarr[0].x = 1.0\n",
			fn:   "f",
			want: "get_indexed %0, self.arr, 0; set_named %0, x, 1.0; set_indexed self.arr, 0, %0; return null",
		},
		{
			name: "setter",
			src:  "var hp := 0:\n\tset(value):\n\t\thp = value\nfunc f():\n\thp = 3\n",
			fn:   "f",
			want: "call_self null, @hp_setter, (3); return null",
		},
		{
			name: "getter",
			src:  "var hp := 0:\n\tget:\n\t\treturn hp\nfunc f():\n\treturn hp\n",
			fn:   "f",
			want: "call_self %0, @hp_getter, (); return %0",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			prog := compileSource(t, test.src, "")
			if diff := cmp.Diff(test.want, listing(t, method(t, prog, test.fn))); diff != "" {
				t.Errorf("code mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// Script classes named as values are loaded, not pooled.
func TestClassReferences(t *testing.T) {
	const src = `extends Node
class Inner:
	var z = 1
func f():
	var c = Other
	var d = Inner
	return d
`
	p := gdtest.ParseProject([]byte("-- other.gd --\nclass_name Other\nextends Node\n"))
	env := resolve.NewEnv(classdb.Core(), p.Load)
	require.NoError(t, resolve.ScanGlobalClasses(env, p.Paths()))
	f, err := syntax.Parse(testPath, src)
	require.NoError(t, err)
	prog, err := New(env).Compile(f)
	require.NoError(t, err)

	got := listing(t, method(t, prog, "f"))
	require.Contains(t, got, "get_global %0, Other; assign c, %0")
	require.Contains(t, got, "get_named %0, class, Inner; assign d, %0")
	for _, c := range prog.Constants {
		_, isScript := c.(*variant.Resource)
		require.False(t, isScript, "constant %s", variant.Repr(c))
	}
}

func TestSetterBody(t *testing.T) {
	prog := compileSource(t, "var hp := 0:\n\tset(value):\n\t\thp = value\n", "")
	got := listing(t, method(t, prog, "@hp_setter"))
	require.Contains(t, got, "self.hp, value")
	require.NotContains(t, got, "call_self")
}

func TestLambdaCaptures(t *testing.T) {
	prog := compileSource(t, "func f():\n\tvar a = 1\n\tvar b = 2\n\tvar g = func(): return b + a\n\treturn g\n", "")
	var lambda *Function
	for _, fn := range prog.Functions {
		if fn.Name == "<anonymous lambda>" {
			lambda = fn
		}
	}
	require.NotNil(t, lambda)
	require.Equal(t, 2, lambda.NumCaptures)
	require.Equal(t, 0, lambda.MaxArgs)
	var names []string
	for _, p := range lambda.Params {
		names = append(names, p.Name)
	}
	require.Equal(t, []string{"b", "a"}, names)
	require.Equal(t, "operator %0, +, b, a; return %0", listing(t, lambda))
}

func TestNestedLambdaCaptures(t *testing.T) {
	const src = `var m = 1

func f():
	var a = 1
	var outer = func(b): return func(): return a + b + m + a
	return outer
`
	prog := compileSource(t, src, "")
	lambdas := make(map[int]*Function) // by number of captures
	for _, fn := range prog.Functions {
		if fn.Name == "<anonymous lambda>" {
			lambdas[fn.NumCaptures] = fn
		}
	}
	outer, inner := lambdas[1], lambdas[2]
	require.NotNil(t, outer)
	require.NotNil(t, inner)
	require.Len(t, lambdas, 2)

	params := func(fn *Function) []string {
		var names []string
		for _, p := range fn.Params {
			names = append(names, p.Name)
		}
		return names
	}
	require.Equal(t, []string{"a", "b"}, params(outer))
	require.Equal(t, []string{"a", "b"}, params(inner))
	require.Equal(t, 1, outer.MaxArgs)
	require.Equal(t, 0, inner.MaxArgs)

	require.Equal(t, "create_self_lambda %0, func <anonymous lambda>, (a, b); return %0", listing(t, outer))
	require.Contains(t, listing(t, method(t, prog, "f")), "create_self_lambda %0, func <anonymous lambda>, (a); assign outer, %0")
}

func TestDefaultArguments(t *testing.T) {
	prog := compileSource(t, "func f(a, b = 10):\n\treturn a + b\n", "")
	fn := method(t, prog, "f")
	require.Equal(t, 1, fn.MinArgs)
	require.Equal(t, 2, fn.MaxArgs)
	require.Equal(t, "jump_to_def_argument; assign b, 10; operator %0, +, a, b; return %0", listing(t, fn))

	insns, err := fn.instructions()
	require.NoError(t, err)
	require.Equal(t, []uint32{insns[1].pc, insns[2].pc}, fn.DefaultEntries)
}

// Every temporary is released, whatever the statement.
func TestTemporariesBalanced(t *testing.T) {
	const src = `extends Node
var items: Array = []
var table := {}
var pos := Vector2()

func f(x, y: int) -> int:
	var total := 0
	for i in range(y):
		total += i * y
	for item in items:
		if item and (x or y > 2):
			continue
		table[item] = [item, x if x else y]
	while total > 100:
		total -= y
	pos.x += 1.0
	items[0].a.b = x
	match x:
		1, 2:
			total += 1
		[var first, ..]:
			total += first
		{"k": var v}:
			total += v
		_:
			pass
	var g = func(n): return n + total
	g.call(1)
	assert(total >= 0, "negative")
	return total
`
	prog := compileSource(t, src, "")
	for _, fn := range prog.Functions {
		require.Equal(t, fn.allocs, fn.pops, fn.Name)
		require.True(t, fn.allocs == 0 || fn.MaxTemps > 0, fn.Name)
	}
}

func TestMatchCode(t *testing.T) {
	prog := compileSource(t, "func f(v):\n\tmatch v:\n\t\t1, 2:\n\t\t\treturn 1\n\treturn 0\n", "")
	got := listing(t, method(t, prog, "f"))
	require.Equal(t, 2, strings.Count(got, "match_type"), got)
	require.Equal(t, 2, strings.Count(got, "operator %"), got)
	require.Contains(t, got, "match_type %3, %0, int")
}

func TestGetterSelfError(t *testing.T) {
	f, err := syntax.Parse(testPath, "var x: int:\n\tget:\n\t\treturn self.x\n")
	require.NoError(t, err)
	env := resolve.NewEnv(classdb.Core(), gdtest.ParseProject(nil).Load)
	_, err = New(env).Compile(f)
	require.Error(t, err)
	cerr, ok := err.(Error)
	require.True(t, ok, "%T", err)
	require.Equal(t, "Must use 'x' instead of 'self.x' in getter/setter.", cerr.Msg)
	require.EqualValues(t, 3, cerr.Pos.Line)
}

func TestOnready(t *testing.T) {
	prog := compileSource(t, "extends Node\nvar a := 1\n@onready var b := 2\n", "")
	s := prog.Main
	require.NotNil(t, s.ImplicitReady)
	require.Equal(t, "assign self.a, 1; return null", listing(t, s.Initializer))
	require.Equal(t, "assign self.b, 2; return null", listing(t, s.ImplicitReady))
}

func TestScriptTables(t *testing.T) {
	const src = `extends Node
signal hit(amount, source)
enum Hue { RED, GREEN }
enum { A = 5 }
const LIMIT = 3
var hp := 10:
	get = get_hp
class Inner:
	var z = 0
func get_hp():
	return hp
`
	prog := compileSource(t, src, "")
	s := prog.Main
	require.Equal(t, testPath, s.FQCN)

	require.Len(t, s.Signals, 1)
	require.Equal(t, &Signal{Name: "hit", Params: []string{"amount", "source"}}, s.Signals[0])

	hp := s.Member("hp")
	require.NotNil(t, hp)
	require.Equal(t, "get_hp", hp.Getter)
	require.Empty(t, hp.Setter)

	for _, name := range []string{"Hue", "A", "LIMIT", "Inner"} {
		_, ok := s.Constant(name)
		require.True(t, ok, name)
	}
	a, _ := s.Constant("A")
	require.Equal(t, "5", a.String())

	require.Len(t, s.Subclasses, 1)
	inner := s.Subclasses[0]
	require.Equal(t, testPath+"::Inner", inner.FQCN)
	require.Equal(t, s, inner.Outer)
	require.True(t, inner.Valid)
	require.NotNil(t, inner.Member("z"))

	// Inside its own getter, hp is read directly.
	require.Equal(t, "return self.hp", listing(t, method(t, prog, "get_hp")))
}

// A true left operand of "or" jumps over the call of the right one.
func TestShortCircuit(t *testing.T) {
	prog := compileSource(t, "func f():\n\treturn true or g()\nfunc g():\n\treturn false\n", "")
	insns := strings.Split(listing(t, method(t, prog, "f")), "; ")
	require.True(t, strings.HasPrefix(insns[0], "jump_if true, ->@"), insns[0])
	target, err := strconv.Atoi(strings.TrimPrefix(insns[0], "jump_if true, ->@"))
	require.NoError(t, err)
	call := -1
	for i, in := range insns {
		if strings.HasPrefix(in, "call") {
			call = i
			break
		}
	}
	require.True(t, call > 0, "no call in %v", insns)
	require.Greater(t, target, call)
	require.Equal(t, "assign %0, true", insns[target])
}

// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"go.gdlang.net/classdb"
	"go.gdlang.net/gdtest"
	"go.gdlang.net/internal/chunkedfile"
	"go.gdlang.net/resolve"
	"go.gdlang.net/syntax"
	"go.gdlang.net/variant"
)

const testPath = "res://test.gd"

// newEnv returns an environment whose scripts are the files of the
// txtar archive src.
func newEnv(src string) (*resolve.Env, *gdtest.Project) {
	p := gdtest.ParseProject([]byte(src))
	return resolve.NewEnv(classdb.Core(), p.Load), p
}

// analyzeChunk parses and analyzes a chunk, reporting syntax errors
// through the chunk.
func analyzeChunk(t *testing.T, chunk *chunkedfile.Chunk) ([]resolve.Warning, resolve.ErrorList, bool) {
	f, err := syntax.Parse(testPath, chunk.Source)
	if err != nil {
		if serr, ok := err.(syntax.Error); ok {
			chunk.GotError(int(serr.Pos.Line), serr.Msg)
			return nil, nil, false
		}
		t.Error(err)
		return nil, nil, false
	}
	env, _ := newEnv("")
	warnings, err := resolve.File(f, env)
	var errs resolve.ErrorList
	if err != nil {
		errs = err.(resolve.ErrorList)
	}
	return warnings, errs, true
}

func TestErrors(t *testing.T) {
	filename := gdtest.DataFile("resolve", "testdata/errors.gd")
	for _, chunk := range chunkedfile.Read(filename, t) {
		chunk := chunk
		_, errs, ok := analyzeChunk(t, &chunk)
		if ok {
			for _, err := range errs {
				chunk.GotError(int(err.Pos.Line), err.Msg)
			}
		}
		chunk.Done()
	}
}

func TestWarnings(t *testing.T) {
	filename := gdtest.DataFile("resolve", "testdata/warnings.gd")
	for _, chunk := range chunkedfile.Read(filename, t) {
		chunk := chunk
		warnings, errs, ok := analyzeChunk(t, &chunk)
		if ok {
			for _, err := range errs {
				chunk.GotError(int(err.Pos.Line), err.Msg)
			}
			for _, w := range warnings {
				chunk.GotWarning(int(w.Pos.Line), w.Code.String()+": "+w.Msg)
			}
		}
		chunk.Done()
	}
}

func TestWarningsAsErrors(t *testing.T) {
	resolve.WarningsAsErrors = true
	defer func() { resolve.WarningsAsErrors = false }()

	f, err := syntax.Parse(testPath, "func f():\n\tvar x = 1\n")
	require.NoError(t, err)
	env, _ := newEnv("")
	warnings, err := resolve.File(f, env)
	require.Empty(t, warnings)
	require.Error(t, err)
	require.Contains(t, err.Error(), `The local variable "x" is declared but never used`)
}

func TestConstantInitializer(t *testing.T) {
	f, err := syntax.Parse(testPath, "extends Node\nvar x: int = 1 + 2\n")
	require.NoError(t, err)
	env, _ := newEnv("")
	warnings, err := resolve.File(f, env)
	require.NoError(t, err)
	require.Empty(t, warnings)

	v := f.Class.Lookup("x").(*syntax.VarDecl)
	info := v.Init.Info()
	require.True(t, info.IsConstant)
	require.Equal(t, variant.Int(3), info.Constant)
	require.Equal(t, "int", v.Type.String())
	require.Equal(t, "Node", f.Class.BaseType.String())
}

func TestFolding(t *testing.T) {
	for _, test := range []struct {
		expr, want string
	}{
		{`Vector3i(7, 8, 9) % 4`, "(3, 0, 1)"},
		{`Vector3i(7, 8, 9) % Vector3i(2, 3, 4)`, "(1, 2, 1)"},
		{`Vector2i(7, 8) % 4`, "(3, 0)"},
		{`NAN == NAN`, "false"},
		{`NAN != NAN`, "true"},
		{`NAN <= 1.0`, "false"},
		{`NAN > 1`, "false"},
		{`INF > 1`, "true"},
	} {
		f, err := syntax.Parse(testPath, "const K = "+test.expr+"\n")
		require.NoError(t, err)
		env, _ := newEnv("")
		_, err = resolve.File(f, env)
		require.NoError(t, err, test.expr)
		k := f.Class.Lookup("K").(*syntax.ConstDecl)
		require.Equal(t, test.want, variant.Repr(k.Value), test.expr)
	}
}

// withSingletons adds engine singletons to a catalog.
type withSingletons struct {
	classdb.Catalog
	singletons map[string]string
}

func (c withSingletons) Singleton(name string) (string, bool) {
	if class, ok := c.singletons[name]; ok {
		return class, true
	}
	return c.Catalog.Singleton(name)
}

// A global class hides an engine singleton of the same name.
func TestGlobalClassBeforeSingleton(t *testing.T) {
	p := gdtest.ParseProject([]byte("-- game.gd --\nclass_name Game\nextends Node\n"))
	env := resolve.NewEnv(withSingletons{classdb.Core(), map[string]string{"Game": "Object"}}, p.Load)
	require.NoError(t, resolve.ScanGlobalClasses(env, p.Paths()))

	f, err := syntax.Parse(testPath, "func f():\n\treturn Game\n")
	require.NoError(t, err)
	_, err = resolve.File(f, env)
	require.NoError(t, err)
	ret := f.Class.Lookup("f").(*syntax.FuncDecl).Body.Stmts[0].(*syntax.ReturnStmt)
	typ := ret.Result.Info().DataType
	require.True(t, typ.IsMeta, "%s", typ)
	require.Equal(t, syntax.Class, typ.Kind)
	require.Equal(t, "res://game.gd", typ.Class.Path)
}

const mutualProject = `
-- a.gd --
class_name A
const X = 1
const Y = B.Z + X
-- b.gd --
class_name B
const Z = 2
const W = A.X * 10
`

func TestMutualReferences(t *testing.T) {
	env, project := newEnv(mutualProject)
	require.NoError(t, resolve.ScanGlobalClasses(env, project.Paths()))

	for _, path := range project.Paths() {
		ref, err := env.Cache.Get(path)
		require.NoError(t, err)
		require.NoError(t, ref.RaiseStatus(resolve.FullySolved), path)
	}
	for _, path := range project.Paths() {
		require.Equal(t, 1, project.Loads(path), path)
	}

	ref, err := env.Cache.Get("res://a.gd")
	require.NoError(t, err)
	y := ref.File().Class.Lookup("Y").(*syntax.ConstDecl)
	require.Equal(t, variant.Int(3), y.Init.Info().Constant)

	ref, err = env.Cache.Get("res://b.gd")
	require.NoError(t, err)
	w := ref.File().Class.Lookup("W").(*syntax.ConstDecl)
	require.Equal(t, variant.Int(10), w.Init.Info().Constant)
}

func TestCyclicInheritance(t *testing.T) {
	env, project := newEnv(`
-- a.gd --
extends "b.gd"
-- b.gd --
extends "a.gd"
`)
	for _, path := range project.Paths() {
		ref, err := env.Cache.Get(path)
		require.NoError(t, err)
		ref.RaiseStatus(resolve.FullySolved)
	}
	for _, path := range project.Paths() {
		ref, err := env.Cache.Get(path)
		require.NoError(t, err)
		var msgs []string
		for _, e := range ref.Analyzer().Errors() {
			msgs = append(msgs, e.Msg)
		}
		if diff := cmp.Diff([]string{"Cyclic inheritance."}, msgs); diff != "" {
			t.Errorf("%s: errors mismatch (-want +got):\n%s", path, diff)
		}
	}
}

func TestLambdaCaptures(t *testing.T) {
	const src = `var m = 1

func f():
	var a = 1
	var b = 2
	var g = func(): return b + a + b
	var h = func(): return m
	print(g, h)
`
	f, err := syntax.Parse(testPath, src)
	require.NoError(t, err)
	env, _ := newEnv("")
	_, err = resolve.File(f, env)
	require.NoError(t, err)

	fn := f.Class.Lookup("f").(*syntax.FuncDecl)
	lambda := func(i int) *syntax.LambdaExpr {
		return fn.Body.Stmts[i].(*syntax.VarDecl).Init.(*syntax.LambdaExpr)
	}

	g := lambda(2)
	var names []string
	for _, id := range g.Captures {
		names = append(names, id.Name)
	}
	if diff := cmp.Diff([]string{"b", "a"}, names); diff != "" {
		t.Errorf("captures mismatch (-want +got):\n%s", diff)
	}
	require.False(t, g.UseSelf)

	h := lambda(3)
	require.Empty(t, h.Captures)
	require.True(t, h.UseSelf)
}

// A lambda capturing a local of a function two levels out makes the
// lambda in between capture it too.
func TestNestedLambdaCaptures(t *testing.T) {
	const src = `var m = 1

func f():
	var a = 1
	var outer = func(b): return func(): return a + b + m + a
	return outer
`
	f, err := syntax.Parse(testPath, src)
	require.NoError(t, err)
	env, _ := newEnv("")
	_, err = resolve.File(f, env)
	require.NoError(t, err)

	fn := f.Class.Lookup("f").(*syntax.FuncDecl)
	outer := fn.Body.Stmts[1].(*syntax.VarDecl).Init.(*syntax.LambdaExpr)
	inner := outer.Func.Body.Stmts[0].(*syntax.ReturnStmt).Result.(*syntax.LambdaExpr)
	captures := func(l *syntax.LambdaExpr) []string {
		var names []string
		for _, id := range l.Captures {
			names = append(names, id.Name)
		}
		return names
	}
	require.Equal(t, []string{"a", "b"}, captures(inner))
	require.Equal(t, []string{"a"}, captures(outer))
	require.True(t, inner.UseSelf)
	require.True(t, outer.UseSelf)
}

// Analyzing a file again must leave its annotations unchanged.
func TestIdempotent(t *testing.T) {
	const src = `extends Node
var count := 0
func f(n: int) -> int:
	var total = 0
	for i in n:
		total += i * count
	return total
`
	f, err := syntax.Parse(testPath, src)
	require.NoError(t, err)
	env, _ := newEnv("")
	w1, err := resolve.File(f, env)
	require.NoError(t, err)
	types1 := exprTypes(f)

	w2, err := resolve.File(f, env)
	require.NoError(t, err)
	if diff := cmp.Diff(w1, w2); diff != "" {
		t.Errorf("warnings changed (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(types1, exprTypes(f)); diff != "" {
		t.Errorf("types changed (-first +second):\n%s", diff)
	}
	v := f.Class.Lookup("count").(*syntax.VarDecl)
	require.Equal(t, 1, v.Usages)
}

// exprTypes returns the type of every reduced expression of f, in
// tree order.
func exprTypes(f *syntax.File) []string {
	var types []string
	syntax.Walk(f, func(n syntax.Node) bool {
		if e, ok := n.(syntax.Expr); ok && e.Info().Reduced {
			types = append(types, e.Info().DataType.String())
		}
		return true
	})
	return types
}

func TestUnsafeLines(t *testing.T) {
	const src = `func f(x):
	var _a = x.foo
	var _b: int = 1
`
	f, err := syntax.Parse(testPath, src)
	require.NoError(t, err)
	env, _ := newEnv("")
	a := resolve.NewAnalyzer(env, f)
	require.NoError(t, a.Analyze())
	require.Equal(t, []int{2}, a.UnsafeLines())
	require.True(t, strings.HasSuffix(a.File().Path, "test.gd"))
}

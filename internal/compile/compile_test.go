// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compile_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"go.gdlang.net/classdb"
	"go.gdlang.net/gdtest"
	"go.gdlang.net/internal/compile"
	"go.gdlang.net/resolve"
	"go.gdlang.net/syntax"
)

const project = `
-- base.gd --
extends Node
var hp := 10
signal died
func hit(n: int) -> void:
	hp -= n
	if hp <= 0:
		died.emit()
-- derived.gd --
extends "res://base.gd"
const NAMES = ["a", "b"]
enum Mode { IDLE, RUN = 4 }
var armor := 2
var pos := Vector2(1, 2)
func f(x, y = 1.5):
	hit(armor)
	var d = {"k": x, "n": NAMES}
	match x:
		[var a, ..]:
			return a
	return d
class Inner extends "res://base.gd":
	var z = Mode.RUN
`

// compileProject compiles the file at path of the test project.
func compileProject(t *testing.T, path string) (*compile.Compiler, *resolve.Env, *compile.Program) {
	t.Helper()
	env := resolve.NewEnv(classdb.Core(), gdtest.ParseProject([]byte(project)).Load)
	ref, err := env.Cache.Get(path)
	require.NoError(t, err)
	c := compile.New(env)
	prog, err := c.Compile(ref.File())
	require.NoError(t, err)
	return c, env, prog
}

func names(members []*compile.Member) []string {
	var list []string
	for _, m := range members {
		list = append(list, m.Name)
	}
	return list
}

func TestCompileBase(t *testing.T) {
	c, env, prog := compileProject(t, "res://derived.gd")
	s := prog.Main
	require.NotNil(t, s.Base)
	require.Equal(t, "res://base.gd", s.Base.FQCN)
	require.Equal(t, "Node", s.Native)
	require.Equal(t, []string{"hp", "armor", "pos"}, names(s.Members))
	require.NotNil(t, s.Method("hit"), "inherited method")

	// The base is compiled once and shared.
	ref, err := env.Cache.Get("res://base.gd")
	require.NoError(t, err)
	base, err := c.Compile(ref.File())
	require.NoError(t, err)
	require.Same(t, s.Base, base.Main)
	require.Same(t, base.Main, c.Script(ref.File().Class))

	inner := s.Subclasses[0]
	require.Same(t, s.Base, inner.Base)
	require.Equal(t, []string{"hp", "z"}, names(inner.Members))
}

// A script known only in compiled form can serve as a base class.
func TestCompiledBase(t *testing.T) {
	_, _, baseProg := compileProject(t, "res://base.gd")

	env := resolve.NewEnv(classdb.Core(), gdtest.ParseProject(nil).Load)
	env.Scripts["res://base.gd"] = baseProg.Main
	f, err := syntax.Parse("res://user.gd", "extends \"res://base.gd\"\nvar extra = 1\nfunc g():\n\treturn extra\n")
	require.NoError(t, err)
	prog, err := compile.New(env).Compile(f)
	require.NoError(t, err)
	require.Same(t, baseProg.Main, prog.Main.Base)
	require.Equal(t, []string{"hp", "extra"}, names(prog.Main.Members))
	require.Equal(t, 1, prog.Main.Member("extra").Index)
}

func disassemble(t *testing.T, prog *compile.Program) string {
	t.Helper()
	var buf bytes.Buffer
	for _, fn := range prog.Functions {
		require.NoError(t, fn.Disassemble(&buf))
	}
	return buf.String()
}

func TestSerialization(t *testing.T) {
	_, _, prog := compileProject(t, "res://derived.gd")
	data, err := prog.Encode()
	require.NoError(t, err)

	got, err := compile.DecodeProgram(data)
	require.NoError(t, err)
	require.Equal(t, prog.BuildID, got.BuildID)
	require.Equal(t, prog.Path, got.Path)
	require.Equal(t, prog.Names, got.Names)
	require.Len(t, got.Constants, len(prog.Constants))
	for i, c := range prog.Constants {
		require.Equal(t, c.Type(), got.Constants[i].Type())
		require.Equal(t, c.String(), got.Constants[i].String())
	}
	if diff := cmp.Diff(disassemble(t, prog), disassemble(t, got)); diff != "" {
		t.Errorf("code mismatch (-want +got):\n%s", diff)
	}

	s, gs := prog.Main, got.Main
	require.Equal(t, s.FQCN, gs.FQCN)
	require.Equal(t, s.Native, gs.Native)
	require.Nil(t, gs.Base, "base from another program")
	require.Equal(t, names(s.Members), names(gs.Members))
	require.Equal(t, s.Members[2].Type, gs.Members[2].Type)
	require.Len(t, gs.Constants, len(s.Constants))
	for i, c := range s.Constants {
		require.Equal(t, c.Name, gs.Constants[i].Name)
		require.Equal(t, c.Value.String(), gs.Constants[i].Value.String())
	}
	require.Len(t, gs.Methods, len(s.Methods))
	require.Equal(t, "f", gs.Methods[0].Name)
	require.Same(t, gs, gs.Methods[0].Script)
	require.Equal(t, s.Methods[0].DefaultEntries, gs.Methods[0].DefaultEntries)
	require.Equal(t, s.Methods[0].Lines, gs.Methods[0].Lines)
	require.Equal(t, "res://derived.gd", gs.Methods[0].Pos.Filename())
	require.Same(t, gs, gs.Subclasses[0].Outer)
	require.NotNil(t, gs.Initializer)
}

func TestDecodeGarbage(t *testing.T) {
	for _, data := range []string{"", "hello", "gdc", "GDC\x00\x01"} {
		_, err := compile.DecodeProgram([]byte(data))
		require.Error(t, err)
		require.Contains(t, err.Error(), "not a compiled script", "%q", data)
	}

	_, err := compile.DecodeProgram([]byte("gdc\x00\x07"))
	require.EqualError(t, err, "compiled script has version 7, want 1")

	_, _, prog := compileProject(t, "res://base.gd")
	data, err := prog.Encode()
	require.NoError(t, err)
	_, err = compile.DecodeProgram(data[:len(data)-3])
	require.Error(t, err)
}

const diamond = `
-- b.gd --
extends Node
var hp := 1
-- a.gd --
extends "res://b.gd"
var a := 2
-- c.gd --
extends "res://b.gd"
var c := 3
-- d.gd --
extends Node
const A = preload("res://a.gd")
const C = preload("res://c.gd")
-- e.gd --
extends "res://a.gd"
const C = preload("res://c.gd")
`

// Two classes of different files sharing a base compile that base once.
func TestSharedBase(t *testing.T) {
	env := resolve.NewEnv(classdb.Core(), gdtest.ParseProject([]byte(diamond)).Load)
	c := compile.New(env)
	compileFile := func(path string) *compile.Program {
		t.Helper()
		ref, err := env.Cache.Get(path)
		require.NoError(t, err)
		prog, err := c.Compile(ref.File())
		require.NoError(t, err, "compiling %s", path)
		return prog
	}

	compileFile("res://d.gd")
	e := compileFile("res://e.gd")
	a := compileFile("res://a.gd")
	cprog := compileFile("res://c.gd")
	b := compileFile("res://b.gd")
	require.Same(t, a.Main, e.Main.Base)
	require.Same(t, b.Main, a.Main.Base)
	require.Same(t, b.Main, cprog.Main.Base)
	require.Equal(t, []string{"hp", "a"}, names(e.Main.Members))
	require.Same(t, a, compileFile("res://a.gd"))
}

// A failure is recorded like a success.
func TestCompileFailureRecorded(t *testing.T) {
	env := resolve.NewEnv(classdb.Core(), gdtest.ParseProject([]byte(diamond)).Load)
	f, err := syntax.Parse("res://bad.gd", "extends \"res://missing.gd\"\n")
	require.NoError(t, err)
	c := compile.New(env)
	_, err1 := c.Compile(f)
	require.Error(t, err1)
	_, err2 := c.Compile(f)
	require.Equal(t, err1, err2)
}

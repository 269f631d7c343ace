// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"go.gdlang.net/classdb"
	"go.gdlang.net/internal/compile"
	"go.gdlang.net/resolve"
)

func TestAssignments(t *testing.T) {
	m := make(assignments)
	require.NoError(t, m.Set("Player=res://player.gd"))
	require.NoError(t, m.Set("Game=*game.gd"))
	require.Equal(t, "Game=*game.gd,Player=res://player.gd", m.String())
	for _, bad := range []string{"", "Player", "=x.gd", "Player="} {
		require.Error(t, m.Set(bad), "%q", bad)
	}
}

func TestProject(t *testing.T) {
	dir := t.TempDir()
	write := func(name, src string) {
		file := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(file), 0777))
		require.NoError(t, os.WriteFile(file, []byte(src), 0666))
	}
	write("actors/player.gd", "class_name Player\nextends Node\nvar hp := 3\n")
	write("main.gd", "extends Node\nfunc spawn() -> Player:\n\tvar p := Player.new()\n\tp.hp = 5\n\treturn p\n")
	write("notes.txt", "not a script")
	write(".godot/cache.gd", "syntax error (")

	defer func(prev string) { *root = prev }(*root)
	*root = dir
	load, paths, targets, err := project([]string{filepath.Join(dir, "main.gd")})
	require.NoError(t, err)
	require.Equal(t, []string{"res://actors/player.gd", "res://main.gd"}, paths)
	require.Equal(t, []string{"res://main.gd"}, targets)

	env := resolve.NewEnv(classdb.Core(), load)
	require.NoError(t, resolve.ScanGlobalClasses(env, paths))
	require.Equal(t, "res://actors/player.gd", env.GlobalClasses["Player"])

	d := &diagnostics{f: os.Stderr}
	prog, err := build(env, compile.New(env), d, "res://main.gd")
	require.NoError(t, err)
	require.NotNil(t, prog.Main.Method("spawn"))

	_, err = build(env, compile.New(env), d, "res://missing.gd")
	require.Error(t, err)
	require.True(t, os.IsNotExist(errors.Cause(err)), "%v", err)
}

func TestOutsideRoot(t *testing.T) {
	dir := t.TempDir()
	defer func(prev string) { *root = prev }(*root)
	*root = filepath.Join(dir, "game")
	require.NoError(t, os.MkdirAll(*root, 0777))
	other := filepath.Join(dir, "other.gd")
	require.NoError(t, os.WriteFile(other, nil, 0666))
	_, _, _, err := project([]string{other})
	require.ErrorContains(t, err, "outside the project root")
}

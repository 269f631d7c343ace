// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package repl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"go.gdlang.net/classdb"
	"go.gdlang.net/gdtest"
	"go.gdlang.net/internal/compile"
	"go.gdlang.net/resolve"
)

func newSession() *session {
	env := resolve.NewEnv(classdb.Core(), gdtest.ParseProject(nil).Load)
	return &session{env: env, compiler: compile.New(env)}
}

func TestExpr(t *testing.T) {
	for _, test := range []struct {
		src, want string
	}{
		{"1 + 2", "int = 3"},
		{"1.5 * 2", "float = 3.0"},
		{"\"a\" + \"b\"", "String = \"ab\""},
		{"Vector2(1, 2)", "Vector2 = (1.0, 2.0)"},
	} {
		var buf bytes.Buffer
		newSession().printExpr(&buf, "res://expr.gd", []byte(test.src+"\n"))
		if got := strings.TrimSpace(buf.String()); got != test.want {
			t.Errorf("%s = %s, want %s", test.src, got, test.want)
		}
	}
}

func TestClassName(t *testing.T) {
	s := newSession()
	var buf bytes.Buffer
	s.printClass(&buf, "res://a.gd", []byte("class_name Counter\nvar n := 0\nfunc bump():\n\tn += 1\n"))
	require.Contains(t, buf.String(), "function res://a.gd.bump() -> void")
	require.Equal(t, "res://a.gd", s.env.GlobalClasses["Counter"])

	buf.Reset()
	s.printClass(&buf, "res://b.gd", []byte("extends Counter\nfunc twice():\n\tbump()\n\tbump()\n"))
	require.Contains(t, buf.String(), "function res://b.gd.twice() -> void")

	// A second declaration of the name is refused.
	buf.Reset()
	s.printClass(&buf, "res://c.gd", []byte("class_name Counter\n"))
	require.Empty(t, buf.String())
	require.Equal(t, "res://a.gd", s.env.GlobalClasses["Counter"])
}

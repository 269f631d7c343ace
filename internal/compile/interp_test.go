// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compile

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"go.gdlang.net/variant"
)

// run executes fn with the given arguments, using a small interpreter
// for the instructions of functions that neither call nor construct.
func run(fn *Function, args ...variant.Value) (variant.Value, error) {
	if len(args) < fn.MinArgs || len(args) > fn.MaxArgs {
		return nil, fmt.Errorf("%s: got %d arguments, want %d to %d", fn, len(args), fn.MinArgs, fn.MaxArgs)
	}
	params := make([]variant.Value, len(fn.Params))
	copy(params, args)
	locals := make([]variant.Value, len(fn.Locals))
	temps := make([]variant.Value, fn.MaxTemps)

	load := func(x uint32) variant.Value {
		a := decodeAddress(x)
		var v variant.Value
		switch a.Mode {
		case AddrParameter:
			v = params[a.Index]
		case AddrLocal:
			v = locals[a.Index]
		case AddrTemporary:
			v = temps[a.Index]
		case AddrConstant:
			v = fn.Prog.Constants[a.Index]
		}
		if v == nil {
			v = variant.Null
		}
		return v
	}
	store := func(x uint32, v variant.Value) {
		a := decodeAddress(x)
		switch a.Mode {
		case AddrParameter:
			params[a.Index] = v
		case AddrLocal:
			locals[a.Index] = v
		case AddrTemporary:
			temps[a.Index] = v
		}
	}

	for pc := uint32(0); ; {
		in, next, err := decode(fn.Code, pc)
		if err != nil {
			return nil, err
		}
		pc = next
		x := in.args
		switch in.op {
		case NOP, LINE:
		case JUMP_TO_DEF_ARGUMENT:
			pc = fn.DefaultEntries[len(args)-fn.MinArgs]
		case ASSIGN:
			store(x[0], load(x[1]))
		case MATCH_TYPE:
			store(x[0], variant.Bool(matchType(load(x[1]).Type(), variant.Type(x[2]))))
		case TYPE_TEST_BUILTIN:
			store(x[0], variant.Bool(load(x[1]).Type() == variant.Type(x[2])))
		case OPERATOR, OPERATOR_VALIDATED:
			op := variant.Operator(x[1])
			var v variant.Value
			if decodeAddress(x[3]).Mode == AddrNil {
				v, err = variant.Unary(op, load(x[2]))
			} else {
				v, err = variant.Binary(op, load(x[2]), load(x[3]))
			}
			if err != nil {
				return nil, err
			}
			store(x[0], v)
		case JUMP:
			pc = x[0]
		case JUMP_IF:
			if variant.Truth(load(x[0])) {
				pc = x[1]
			}
		case JUMP_IF_NOT:
			if !variant.Truth(load(x[0])) {
				pc = x[1]
			}
		case RETURN:
			return load(x[0]), nil
		default:
			return nil, fmt.Errorf("pc %d: unsupported %s", in.pc, in.op)
		}
	}
}

// matchType reports whether a value of type have may equal a pattern
// of type want.
func matchType(have, want variant.Type) bool {
	numeric := func(t variant.Type) bool { return t == variant.INT || t == variant.FLOAT }
	text := func(t variant.Type) bool { return t == variant.STRING || t == variant.STRING_NAME }
	return have == want || numeric(have) && numeric(want) || text(have) && text(want)
}

func TestMatchRun(t *testing.T) {
	const src = `func f(v):
	match v:
		1:
			return "one"
		2, 3:
			return "two or three"
	return "other"
`
	fn := method(t, compileSource(t, src, ""), "f")
	for _, test := range []struct {
		arg  variant.Value
		want string
	}{
		{variant.Int(1), "one"},
		{variant.Int(2), "two or three"},
		{variant.Float(2.0), "two or three"},
		{variant.Int(3), "two or three"},
		{variant.String("2"), "other"},
		{variant.Float(2.5), "other"},
		{variant.Null, "other"},
	} {
		got, err := run(fn, test.arg)
		require.NoError(t, err, "match %s", variant.Repr(test.arg))
		require.Equal(t, variant.String(test.want), got, "match %s", variant.Repr(test.arg))
	}
}

func TestDefaultArgumentsRun(t *testing.T) {
	fn := method(t, compileSource(t, "func f(a, b = 10, c = 1):\n\treturn a + b + c\n", ""), "f")
	require.Len(t, fn.DefaultEntries, 3)
	for _, test := range []struct {
		args []variant.Value
		want int64
	}{
		{[]variant.Value{variant.Int(1)}, 1 + 10 + 1},
		{[]variant.Value{variant.Int(1), variant.Int(2)}, 1 + 2 + 1},
		{[]variant.Value{variant.Int(1), variant.Int(2), variant.Int(5)}, 1 + 2 + 5},
	} {
		got, err := run(fn, test.args...)
		require.NoError(t, err)
		require.Equal(t, variant.Int(test.want), got)
	}
	_, err := run(fn)
	require.Error(t, err)
}

func TestLoopRun(t *testing.T) {
	const src = `func f(n):
	var total = 0
	while n > 0:
		n -= 1
		if n == 2:
			continue
		if n == 5:
			break
		total += n
	return total
`
	fn := method(t, compileSource(t, src, ""), "f")
	got, err := run(fn, variant.Int(4))
	require.NoError(t, err)
	require.Equal(t, variant.Int(3+1+0), got)
	got, err = run(fn, variant.Int(10))
	require.NoError(t, err)
	require.Equal(t, variant.Int(9+8+7+6), got)
}

func TestMatchContinueRun(t *testing.T) {
	const src = `func f(v):
	var r = 0
	match v:
		1:
			r = 1
			if v > 0:
				continue
			r = 100
		_:
			r += 2
	return r

func g(n):
	var total = 0
	while n > 0:
		n -= 1
		match n:
			2:
				continue
			3:
				total += 100
			_:
				total += n
	return total
`
	prog := compileSource(t, src, "")
	for _, test := range []struct {
		arg, want int64
	}{
		{1, 1 + 2},
		{5, 2},
	} {
		got, err := run(method(t, prog, "f"), variant.Int(test.arg))
		require.NoError(t, err)
		require.Equal(t, variant.Int(test.want), got, "f(%d)", test.arg)
	}

	// The continue tests the remaining branches and stays in the loop.
	got, err := run(method(t, prog, "g"), variant.Int(4))
	require.NoError(t, err)
	require.Equal(t, variant.Int(100+2+1+0), got)
}

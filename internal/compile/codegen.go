// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compile

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"go.gdlang.net/syntax"
	"go.gdlang.net/variant"
)

// A Mode says where the value of an Address lives.
type Mode uint8

const (
	AddrSelf      Mode = iota // the instance running the function
	AddrClass                 // the script of the running function
	AddrNil                   // the null value; as a destination, the value is discarded
	AddrMember                // a member variable of self, by index
	AddrParameter             // a parameter; the captures of a lambda come first
	AddrLocal                 // a local variable
	AddrTemporary             // a slot of the temporary stack
	AddrConstant              // an element of Program.Constants
)

var modeNames = [...]string{
	AddrSelf:      "self",
	AddrClass:     "class",
	AddrNil:       "nil",
	AddrMember:    "member",
	AddrParameter: "parameter",
	AddrLocal:     "local",
	AddrTemporary: "temporary",
	AddrConstant:  "constant",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", m)
}

// An Address is an operand of an instruction: where to read or
// write a value, and the static type of that value.
type Address struct {
	Mode  Mode
	Index uint32
	Type  syntax.DataType
}

var (
	selfAddr  = Address{Mode: AddrSelf}
	classAddr = Address{Mode: AddrClass}
	nilAddr   = Address{Mode: AddrNil}
)

func (a Address) encode() uint32 { return a.Index<<3 | uint32(a.Mode) }

func decodeAddress(x uint32) Address {
	return Address{Mode: Mode(x & 7), Index: x >> 3}
}

// A label is a position in the instruction sequence of a function,
// the target of jumps. It is bound once.
type label int

// An insn is an instruction before encoding. The operands of shape
// 'l' hold label numbers, resolved to pcs by encode.
type insn struct {
	op   Opcode
	args []uint32
	line int32
}

// A frame records the labels of a short-circuit construct.
type frame struct {
	kind       frameKind
	skip, done label
}

type frameKind uint8

const (
	andFrame frameKind = iota
	orFrame
	ternaryFrame
)

var frameNames = [...]string{andFrame: "and", orFrame: "or", ternaryFrame: "ternary"}

// A generator accumulates the instructions of one function.
//
// Temporaries are allocated on a stack. Each temporary must be
// released in the reverse order of its allocation before the
// statement that allocated it completes.
type generator struct {
	pcomp *pcomp
	insns []insn
	binds []int // insn index of each label, or -1
	line  int32

	temps    []syntax.DataType // live temporaries, innermost last
	maxTemps int
	allocs   int // temporaries allocated
	pops     int // temporaries released

	frames []frame
}

func newGenerator(pcomp *pcomp) *generator {
	return &generator{pcomp: pcomp}
}

// emit appends an instruction, checking its operand count.
func (g *generator) emit(op Opcode, args ...uint32) {
	shape := op.shape()
	want := len(shape)
	if n := len(shape); n > 0 && shape[n-1] == '*' {
		if len(args) < n {
			internalErrorf("%s: got %d operands, want at least %d", op, len(args), n)
		}
		want = n + int(args[n-1])
	}
	if len(args) != want {
		internalErrorf("%s: got %d operands, want %d", op, len(args), want)
	}
	g.insns = append(g.insns, insn{op, args, g.line})
}

// emitList appends an instruction whose last operand is a list of
// addresses.
func (g *generator) emitList(op Opcode, list []Address, args ...uint32) {
	args = append(args, uint32(len(list)))
	for _, a := range list {
		args = append(args, a.encode())
	}
	g.emit(op, args...)
}

func (g *generator) newLabel() label {
	g.binds = append(g.binds, -1)
	return label(len(g.binds) - 1)
}

// bind sets the position of l to the next instruction.
func (g *generator) bind(l label) {
	if g.binds[l] >= 0 {
		internalErrorf("label %d bound twice", l)
	}
	g.binds[l] = len(g.insns)
}

func (g *generator) jump(l label) { g.emit(JUMP, uint32(l)) }

func (g *generator) jumpIf(cond Address, l label) { g.emit(JUMP_IF, cond.encode(), uint32(l)) }

func (g *generator) jumpIfNot(cond Address, l label) { g.emit(JUMP_IF_NOT, cond.encode(), uint32(l)) }

// ---- temporaries ----

// addTemporary allocates a temporary of type t.
func (g *generator) addTemporary(t syntax.DataType) Address {
	g.temps = append(g.temps, t)
	g.allocs++
	if len(g.temps) > g.maxTemps {
		g.maxTemps = len(g.temps)
	}
	return Address{Mode: AddrTemporary, Index: uint32(len(g.temps) - 1), Type: t}
}

// popTemporary releases the innermost temporary, which must be a.
func (g *generator) popTemporary(a Address) {
	n := len(g.temps)
	if a.Mode != AddrTemporary || n == 0 || a.Index != uint32(n-1) {
		internalErrorf("temporary %s released out of order (%d live)", a.Mode, n)
	}
	g.temps = g.temps[:n-1]
	g.pops++
}

// release releases a if it is a temporary.
func (g *generator) release(a Address) {
	if a.Mode == AddrTemporary {
		g.popTemporary(a)
	}
}

// releaseAll releases the temporaries among list in reverse order.
func (g *generator) releaseAll(list []Address) {
	for i := len(list) - 1; i >= 0; i-- {
		g.release(list[i])
	}
}

// ---- constants ----

func (g *generator) constant(v variant.Value) Address {
	return Address{Mode: AddrConstant, Index: g.pcomp.constantIndex(v), Type: typeOfValue(v)}
}

func (g *generator) boolean(b bool) Address { return g.constant(variant.Bool(b)) }

func (g *generator) name(s string) uint32 { return g.pcomp.nameIndex(s) }

// ---- short-circuit constructs ----
//
// Each construct is a matched sequence of calls:
//
//	beginAnd, andOperand..., endAnd
//	beginOr, orOperand..., endOr
//	beginTernary, ternaryCondition, ternaryElse, endTernary
//
// The operands are evaluated in order and evaluation stops at the
// first operand that decides the result.

func (g *generator) push(kind frameKind) {
	g.frames = append(g.frames, frame{kind, g.newLabel(), g.newLabel()})
}

func (g *generator) top(kind frameKind) frame {
	n := len(g.frames)
	if n == 0 || g.frames[n-1].kind != kind {
		internalErrorf("unmatched %s construct", frameNames[kind])
	}
	return g.frames[n-1]
}

func (g *generator) pop(kind frameKind) frame {
	f := g.top(kind)
	g.frames = g.frames[:len(g.frames)-1]
	return f
}

func (g *generator) beginAnd() { g.push(andFrame) }

// andOperand ends the construct with false unless x is true.
func (g *generator) andOperand(x Address) { g.jumpIfNot(x, g.top(andFrame).skip) }

// endAnd stores the result of the construct in target.
func (g *generator) endAnd(target Address) {
	f := g.pop(andFrame)
	g.emit(ASSIGN, target.encode(), g.boolean(true).encode())
	g.jump(f.done)
	g.bind(f.skip)
	g.emit(ASSIGN, target.encode(), g.boolean(false).encode())
	g.bind(f.done)
}

func (g *generator) beginOr() { g.push(orFrame) }

// orOperand ends the construct with true if x is true.
func (g *generator) orOperand(x Address) { g.jumpIf(x, g.top(orFrame).skip) }

func (g *generator) endOr(target Address) {
	f := g.pop(orFrame)
	g.emit(ASSIGN, target.encode(), g.boolean(false).encode())
	g.jump(f.done)
	g.bind(f.skip)
	g.emit(ASSIGN, target.encode(), g.boolean(true).encode())
	g.bind(f.done)
}

func (g *generator) beginTernary() { g.push(ternaryFrame) }

// ternaryCondition skips the true branch unless cond is true.
func (g *generator) ternaryCondition(cond Address) { g.jumpIfNot(cond, g.top(ternaryFrame).skip) }

// ternaryElse ends the true branch and begins the false one.
func (g *generator) ternaryElse() {
	f := g.top(ternaryFrame)
	g.jump(f.done)
	g.bind(f.skip)
}

func (g *generator) endTernary() { g.bind(g.pop(ternaryFrame).done) }

// ---- encoding ----

// encode returns the code of the instructions, the line table, and
// the pc of each label.
//
// The width of a jump operand depends on the pc it refers to, so the
// pcs are recomputed until they no longer change. They only grow, so
// this terminates.
func (g *generator) encode() (code []byte, lines []LineEntry, labels []uint32) {
	if len(g.frames) > 0 {
		internalErrorf("unterminated %s construct", frameNames[g.frames[len(g.frames)-1].kind])
	}
	pcs := make([]uint32, len(g.insns)+1)
	target := func(l uint32) uint32 {
		i := g.binds[l]
		if i < 0 {
			internalErrorf("label %d not bound", l)
		}
		return pcs[i]
	}
	for {
		changed := false
		var pc uint32
		for i, in := range g.insns {
			if pcs[i] != pc {
				pcs[i], changed = pc, true
			}
			pc += 1
			for j, x := range in.args {
				if j < len(in.op.shape()) && in.op.shape()[j] == 'l' {
					x = target(x)
				}
				pc += uint32(protowire.SizeVarint(uint64(x)))
			}
		}
		if pcs[len(g.insns)] != pc {
			pcs[len(g.insns)], changed = pc, true
		}
		if !changed {
			break
		}
	}

	line := int32(-1)
	for i, in := range g.insns {
		if in.line != line {
			lines = append(lines, LineEntry{PC: pcs[i], Line: in.line})
			line = in.line
		}
		code = append(code, byte(in.op))
		for j, x := range in.args {
			if j < len(in.op.shape()) && in.op.shape()[j] == 'l' {
				x = target(x)
			}
			code = protowire.AppendVarint(code, uint64(x))
		}
	}
	labels = make([]uint32, len(g.binds))
	for l, i := range g.binds {
		if i >= 0 {
			labels[l] = pcs[i]
		}
	}
	return code, lines, labels
}

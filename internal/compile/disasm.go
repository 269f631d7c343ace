// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compile

import (
	"fmt"
	"io"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"

	"go.gdlang.net/variant"
)

// An instruction is a decoded instruction.
type instruction struct {
	pc   uint32
	op   Opcode
	args []uint32 // for a counted list, the count followed by the addresses
}

// decode decodes the instruction at pc in code.
// It returns the pc of the next instruction.
func decode(code []byte, pc uint32) (instruction, uint32, error) {
	if int(pc) >= len(code) {
		return instruction{}, pc, fmt.Errorf("pc %d out of range", pc)
	}
	in := instruction{pc: pc, op: Opcode(code[pc])}
	if in.op > OpcodeMax {
		return in, pc, fmt.Errorf("pc %d: illegal opcode %d", pc, code[pc])
	}
	pc++
	operand := func() (uint32, error) {
		x, n := protowire.ConsumeVarint(code[pc:])
		if n <= 0 || x > 1<<32-1 {
			return 0, fmt.Errorf("pc %d: bad operand of %s", in.pc, in.op)
		}
		pc += uint32(n)
		return uint32(x), nil
	}
	for _, k := range in.op.shape() {
		x, err := operand()
		if err != nil {
			return in, pc, err
		}
		in.args = append(in.args, x)
		if k == '*' {
			for i := uint32(0); i < x; i++ {
				a, err := operand()
				if err != nil {
					return in, pc, err
				}
				in.args = append(in.args, a)
			}
		}
	}
	return in, pc, nil
}

// instructions decodes the code of fn.
func (fn *Function) instructions() ([]instruction, error) {
	var insns []instruction
	for pc := uint32(0); int(pc) < len(fn.Code); {
		in, next, err := decode(fn.Code, pc)
		if err != nil {
			return insns, err
		}
		insns = append(insns, in)
		pc = next
	}
	return insns, nil
}

// Disassemble writes a listing of the code of fn to w.
func (fn *Function) Disassemble(w io.Writer) error {
	var params []string
	for i, p := range fn.Params {
		if i < fn.NumCaptures {
			params = append(params, "^"+p.Name)
			continue
		}
		params = append(params, fmt.Sprintf("%s: %s", p.Name, p.Type))
	}
	fmt.Fprintf(w, "function %s(%s) -> %s\n", fn, strings.Join(params, ", "), fn.ReturnType)
	if len(fn.DefaultEntries) > 0 {
		fmt.Fprintf(w, "\tdefaults %v\n", fn.DefaultEntries)
	}
	insns, err := fn.instructions()
	for _, in := range insns {
		fmt.Fprintf(w, "\t%d\t%s\n", in.pc, fn.format(in))
	}
	if err != nil {
		fmt.Fprintf(w, "\t%v\n", err)
	}
	return err
}

// format returns the text of an instruction without its pc.
func (fn *Function) format(in instruction) string {
	shape := in.op.shape()
	if len(shape) == 0 {
		return in.op.String()
	}
	var operands []string
	i := 0
	for _, k := range shape {
		x := in.args[i]
		i++
		switch k {
		case 'a':
			operands = append(operands, fn.address(x))
		case 'o':
			operands = append(operands, variant.Operator(x).String())
		case 't':
			operands = append(operands, variant.Type(x).String())
		case 's':
			operands = append(operands, fn.name(x))
		case 'f':
			if fn.Prog != nil && int(x) < len(fn.Prog.Functions) {
				operands = append(operands, "func "+fn.Prog.Functions[x].Name)
			} else {
				operands = append(operands, fmt.Sprintf("func #%d", x))
			}
		case 'n':
			operands = append(operands, fmt.Sprint(x))
		case 'l':
			operands = append(operands, fmt.Sprintf("->%d", x))
		case '*':
			list := make([]string, x)
			for j := range list {
				list[j] = fn.address(in.args[i])
				i++
			}
			operands = append(operands, "("+strings.Join(list, ", ")+")")
		}
	}
	return in.op.String() + " " + strings.Join(operands, ", ")
}

func (fn *Function) name(x uint32) string {
	if fn.Prog != nil && int(x) < len(fn.Prog.Names) {
		return fn.Prog.Names[x]
	}
	return fmt.Sprintf("name#%d", x)
}

// address returns the text of an encoded address: a parameter or
// local by name, a temporary as %N, a constant by its value.
func (fn *Function) address(x uint32) string {
	a := decodeAddress(x)
	i := int(a.Index)
	switch a.Mode {
	case AddrSelf:
		return "self"
	case AddrClass:
		return "class"
	case AddrNil:
		return "null"
	case AddrMember:
		if fn.Script != nil && i < len(fn.Script.Members) {
			return "self." + fn.Script.Members[i].Name
		}
	case AddrParameter:
		if i < len(fn.Params) {
			return fn.Params[i].Name
		}
	case AddrLocal:
		if i < len(fn.Locals) {
			return fn.Locals[i].Name
		}
	case AddrTemporary:
		return fmt.Sprintf("%%%d", i)
	case AddrConstant:
		if fn.Prog != nil && i < len(fn.Prog.Constants) {
			return variant.Repr(fn.Prog.Constants[i])
		}
	}
	return fmt.Sprintf("%s#%d", a.Mode, i)
}

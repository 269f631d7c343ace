// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compile

// This file defines functions to read and write a compiled Program.
//
// Encoding:
//
//	"gdc\x00"           magic
//	varint              version
//	Program             protobuf wire format, fields:
//	  1 bytes           build id (16 bytes)
//	  2 string          path
//	  3 string*         names
//	  4 Constant*
//	  5 Function*
//	  6 Script*         the main script first, then inner scripts in preorder
//
// Constant:  1 type, 2 bytes (text or path), 3 fixed64* (float
// components), 4 varint* (zigzag int components), 5 Constant* (array
// elements or alternating dictionary keys and values), 6 element type,
// 7 string (element class or resource class), 8 bool (bool value).
//
// Function:  1 name, 2 script index+1, 3 line, 4 col, 5 code,
// 6 Local* params, 7 Local* locals, 8 captures, 9 min args, 10 max args,
// 11 packed default entries, 12 max temps, 13 TypeInfo return type,
// 14 static, 15 coroutine, 16 packed (pc, zigzag line) pairs.
//
// Script:  1 name, 2 fqcn, 3 path, 4 native, 5 base index+1, 6 outer
// index+1, 7 tool, 8 valid, 9 Member*, 10 NamedConstant*, 11 Signal*,
// 12 packed subclass indices, 13 packed method indices, 14 initializer
// index+1, 15 implicit ready index+1.
//
// A base script from another Program is not recorded; such a script
// decodes with a nil Base and only its Native class.

import (
	"bytes"
	"math"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"go.gdlang.net/syntax"
	"go.gdlang.net/variant"
)

const (
	magic   = "gdc\x00"
	version = 1
)

// Encode encodes a compiled program.
func (prog *Program) Encode() ([]byte, error) {
	scripts := prog.scripts()
	scriptIndex := make(map[*Script]int)
	for i, s := range scripts {
		scriptIndex[s] = i
	}
	funcIndex := make(map[*Function]int)
	for i, fn := range prog.Functions {
		funcIndex[fn] = i
	}

	b := []byte(magic)
	b = protowire.AppendVarint(b, version)
	b = appendBytes(b, 1, prog.BuildID[:])
	b = appendString(b, 2, prog.Path)
	for _, name := range prog.Names {
		b = appendBytes(b, 3, []byte(name))
	}
	for _, c := range prog.Constants {
		data, err := encodeConstant(nil, c)
		if err != nil {
			return nil, err
		}
		b = appendBytes(b, 4, data)
	}
	for _, fn := range prog.Functions {
		b = appendBytes(b, 5, encodeFunction(fn, scriptIndex))
	}
	for _, s := range scripts {
		data, err := encodeScript(s, scriptIndex, funcIndex)
		if err != nil {
			return nil, err
		}
		b = appendBytes(b, 6, data)
	}
	return b, nil
}

// scripts returns the scripts of prog, the main script first and
// then inner scripts in preorder.
func (prog *Program) scripts() []*Script {
	var list []*Script
	var visit func(s *Script)
	visit = func(s *Script) {
		list = append(list, s)
		for _, sub := range s.Subclasses {
			visit(sub)
		}
	}
	if prog.Main != nil {
		visit(prog.Main)
	}
	return list
}

func appendBytes(b []byte, num protowire.Number, data []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, data)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendVarint(b []byte, num protowire.Number, x uint64) []byte {
	if x == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, x)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	return appendVarint(b, num, protowire.EncodeBool(v))
}

func appendPacked(b []byte, num protowire.Number, list []uint64) []byte {
	if len(list) == 0 {
		return b
	}
	var data []byte
	for _, x := range list {
		data = protowire.AppendVarint(data, x)
	}
	return appendBytes(b, num, data)
}

func encodeConstant(b []byte, v variant.Value) ([]byte, error) {
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(v.Type()))
	floats := func(fs ...float64) {
		for _, f := range fs {
			b = protowire.AppendTag(b, 3, protowire.Fixed64Type)
			b = protowire.AppendFixed64(b, math.Float64bits(f))
		}
	}
	ints := func(is ...int64) {
		for _, i := range is {
			b = protowire.AppendTag(b, 4, protowire.VarintType)
			b = protowire.AppendVarint(b, protowire.EncodeZigZag(i))
		}
	}
	nested := func(list []variant.Value) error {
		for _, x := range list {
			data, err := encodeConstant(nil, x)
			if err != nil {
				return err
			}
			b = appendBytes(b, 5, data)
		}
		return nil
	}

	switch v := v.(type) {
	case variant.Nil:
	case variant.Bool:
		b = appendBool(b, 8, bool(v))
	case variant.Int:
		ints(int64(v))
	case variant.Float:
		floats(float64(v))
	case variant.String:
		b = appendBytes(b, 2, []byte(v))
	case variant.StringName:
		b = appendBytes(b, 2, []byte(v))
	case variant.NodePath:
		b = appendBytes(b, 2, []byte(v))
	case variant.Vector2:
		floats(v.X, v.Y)
	case variant.Vector2i:
		ints(v.X, v.Y)
	case variant.Vector3:
		floats(v.X, v.Y, v.Z)
	case variant.Vector3i:
		ints(v.X, v.Y, v.Z)
	case variant.Color:
		floats(v.R, v.G, v.B, v.A)
	case *variant.Array:
		b = appendVarint(b, 6, uint64(v.Elem))
		b = appendString(b, 7, v.ElemName)
		if err := nested(v.Elems()); err != nil {
			return nil, err
		}
	case *variant.Dictionary:
		var kvs []variant.Value
		for i, k := range v.Keys() {
			kvs = append(kvs, k, v.Values()[i])
		}
		if err := nested(kvs); err != nil {
			return nil, err
		}
	case *variant.Resource:
		b = appendBytes(b, 2, []byte(v.Path))
		b = appendString(b, 7, v.Class)
	default:
		return nil, errors.Errorf("cannot encode constant %s of type %s", variant.Repr(v), v.Type())
	}
	return b, nil
}

func encodeTypeInfo(t TypeInfo) []byte {
	var b []byte
	b = appendVarint(b, 1, uint64(t.Kind))
	b = appendVarint(b, 2, uint64(t.Builtin))
	b = appendString(b, 3, t.Native)
	b = appendString(b, 4, t.Script)
	if t.Elem != nil {
		b = appendBytes(b, 5, encodeTypeInfo(*t.Elem))
	}
	return b
}

func encodeLocal(l Local) []byte {
	var b []byte
	b = appendString(b, 1, l.Name)
	b = appendVarint(b, 2, uint64(l.Pos.Line))
	b = appendVarint(b, 3, uint64(l.Pos.Col))
	b = appendBytes(b, 4, encodeTypeInfo(l.Type))
	return b
}

func encodeFunction(fn *Function, scriptIndex map[*Script]int) []byte {
	var b []byte
	b = appendString(b, 1, fn.Name)
	if i, ok := scriptIndex[fn.Script]; ok {
		b = appendVarint(b, 2, uint64(i+1))
	}
	b = appendVarint(b, 3, uint64(fn.Pos.Line))
	b = appendVarint(b, 4, uint64(fn.Pos.Col))
	b = appendBytes(b, 5, fn.Code)
	for _, p := range fn.Params {
		b = appendBytes(b, 6, encodeLocal(p))
	}
	for _, l := range fn.Locals {
		b = appendBytes(b, 7, encodeLocal(l))
	}
	b = appendVarint(b, 8, uint64(fn.NumCaptures))
	b = appendVarint(b, 9, uint64(fn.MinArgs))
	b = appendVarint(b, 10, uint64(fn.MaxArgs))
	var entries []uint64
	for _, pc := range fn.DefaultEntries {
		entries = append(entries, uint64(pc))
	}
	b = appendPacked(b, 11, entries)
	b = appendVarint(b, 12, uint64(fn.MaxTemps))
	b = appendBytes(b, 13, encodeTypeInfo(fn.ReturnType))
	b = appendBool(b, 14, fn.Static)
	b = appendBool(b, 15, fn.Coroutine)
	var lines []uint64
	for _, e := range fn.Lines {
		lines = append(lines, uint64(e.PC), protowire.EncodeZigZag(int64(e.Line)))
	}
	b = appendPacked(b, 16, lines)
	return b
}

func encodeScript(s *Script, scriptIndex map[*Script]int, funcIndex map[*Function]int) ([]byte, error) {
	var b []byte
	b = appendString(b, 1, s.Name)
	b = appendString(b, 2, s.FQCN)
	b = appendString(b, 3, s.Path)
	b = appendString(b, 4, s.Native)
	if i, ok := scriptIndex[s.Base]; ok {
		b = appendVarint(b, 5, uint64(i+1))
	}
	if i, ok := scriptIndex[s.Outer]; ok {
		b = appendVarint(b, 6, uint64(i+1))
	}
	b = appendBool(b, 7, s.Tool)
	b = appendBool(b, 8, s.Valid)
	for _, m := range s.Members {
		var mb []byte
		mb = appendString(mb, 1, m.Name)
		mb = appendVarint(mb, 2, uint64(m.Index))
		mb = appendString(mb, 3, m.Getter)
		mb = appendString(mb, 4, m.Setter)
		mb = appendBytes(mb, 5, encodeTypeInfo(m.Type))
		b = appendBytes(b, 9, mb)
	}
	for _, c := range s.Constants {
		var cb []byte
		cb = appendString(cb, 1, c.Name)
		data, err := encodeConstant(nil, c.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "constant %s of %s", c.Name, s.FQCN)
		}
		cb = appendBytes(cb, 2, data)
		b = appendBytes(b, 10, cb)
	}
	for _, sig := range s.Signals {
		var sb []byte
		sb = appendString(sb, 1, sig.Name)
		for _, p := range sig.Params {
			sb = appendBytes(sb, 2, []byte(p))
		}
		b = appendBytes(b, 11, sb)
	}
	var subs, methods []uint64
	for _, sub := range s.Subclasses {
		subs = append(subs, uint64(scriptIndex[sub]))
	}
	for _, fn := range s.Methods {
		methods = append(methods, uint64(funcIndex[fn]))
	}
	b = appendPacked(b, 12, subs)
	b = appendPacked(b, 13, methods)
	if i, ok := funcIndex[s.Initializer]; ok {
		b = appendVarint(b, 14, uint64(i+1))
	}
	if i, ok := funcIndex[s.ImplicitReady]; ok {
		b = appendVarint(b, 15, uint64(i+1))
	}
	return b, nil
}

// ---- decoding ----

// A decoder reads the fields of one protobuf message.
// The first error is sticky.
type decoder struct {
	b   []byte
	err error
}

func (d *decoder) fail(n int) {
	if d.err == nil {
		d.err = protowire.ParseError(n)
	}
}

// next returns the number and type of the next field.
func (d *decoder) next() (protowire.Number, protowire.Type, bool) {
	if d.err != nil || len(d.b) == 0 {
		return 0, 0, false
	}
	num, typ, n := protowire.ConsumeTag(d.b)
	if n < 0 {
		d.fail(n)
		return 0, 0, false
	}
	d.b = d.b[n:]
	return num, typ, true
}

func (d *decoder) check(typ, want protowire.Type) bool {
	if d.err == nil && typ != want {
		d.err = errors.Errorf("wire type %d, want %d", typ, want)
	}
	return d.err == nil
}

func (d *decoder) varint(typ protowire.Type) uint64 {
	if !d.check(typ, protowire.VarintType) {
		return 0
	}
	x, n := protowire.ConsumeVarint(d.b)
	if n < 0 {
		d.fail(n)
		return 0
	}
	d.b = d.b[n:]
	return x
}

func (d *decoder) fixed64(typ protowire.Type) uint64 {
	if !d.check(typ, protowire.Fixed64Type) {
		return 0
	}
	x, n := protowire.ConsumeFixed64(d.b)
	if n < 0 {
		d.fail(n)
		return 0
	}
	d.b = d.b[n:]
	return x
}

func (d *decoder) bytes(typ protowire.Type) []byte {
	if !d.check(typ, protowire.BytesType) {
		return nil
	}
	x, n := protowire.ConsumeBytes(d.b)
	if n < 0 {
		d.fail(n)
		return nil
	}
	d.b = d.b[n:]
	return x
}

func (d *decoder) string(typ protowire.Type) string { return string(d.bytes(typ)) }

func (d *decoder) bool(typ protowire.Type) bool { return protowire.DecodeBool(d.varint(typ)) }

func (d *decoder) packed(typ protowire.Type) []uint64 {
	data := d.bytes(typ)
	var list []uint64
	for len(data) > 0 {
		x, n := protowire.ConsumeVarint(data)
		if n < 0 {
			d.fail(n)
			return nil
		}
		list = append(list, x)
		data = data[n:]
	}
	return list
}

func (d *decoder) skip(num protowire.Number, typ protowire.Type) {
	n := protowire.ConsumeFieldValue(num, typ, d.b)
	if n < 0 {
		d.fail(n)
		return
	}
	d.b = d.b[n:]
}

// DecodeProgram decodes a compiled program from its encoding.
func DecodeProgram(data []byte) (*Program, error) {
	if !bytes.HasPrefix(data, []byte(magic)) {
		return nil, errors.New("not a compiled script")
	}
	data = data[len(magic):]
	v, n := protowire.ConsumeVarint(data)
	if n < 0 {
		return nil, errors.New("not a compiled script")
	}
	if v != version {
		return nil, errors.Errorf("compiled script has version %d, want %d", v, version)
	}

	prog := new(Program)
	var funcs, scripts [][]byte
	d := &decoder{b: data[n:]}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			id := d.bytes(typ)
			if d.err == nil && len(id) != len(prog.BuildID) {
				d.err = errors.Errorf("build id has %d bytes", len(id))
			}
			copy(prog.BuildID[:], id)
		case 2:
			prog.Path = d.string(typ)
		case 3:
			prog.Names = append(prog.Names, d.string(typ))
		case 4:
			c, err := decodeConstant(d.bytes(typ))
			if err != nil && d.err == nil {
				d.err = err
			}
			prog.Constants = append(prog.Constants, c)
		case 5:
			funcs = append(funcs, d.bytes(typ))
		case 6:
			scripts = append(scripts, d.bytes(typ))
		default:
			d.skip(num, typ)
		}
	}
	if d.err != nil {
		return nil, errors.Wrap(d.err, "decoding compiled script")
	}

	// Allocate first, since functions and scripts refer to each other.
	path := prog.Path
	for range funcs {
		prog.Functions = append(prog.Functions, &Function{Prog: prog})
	}
	all := make([]*Script, len(scripts))
	for i := range all {
		all[i] = &Script{Prog: prog}
	}
	for i, data := range funcs {
		if err := decodeFunction(data, prog.Functions[i], all, &path); err != nil {
			return nil, errors.Wrapf(err, "decoding function %d", i)
		}
	}
	for i, data := range scripts {
		if err := decodeScript(data, all[i], all, prog.Functions); err != nil {
			return nil, errors.Wrapf(err, "decoding script %d", i)
		}
	}
	if len(all) > 0 {
		prog.Main = all[0]
	}
	return prog, nil
}

func decodeConstant(data []byte) (variant.Value, error) {
	d := &decoder{b: data}
	var (
		t      variant.Type
		text   string
		b      bool
		floats []float64
		ints   []int64
		elems  []variant.Value
		elem   variant.Type
		class  string
	)
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			t = variant.Type(d.varint(typ))
		case 2:
			text = d.string(typ)
		case 3:
			floats = append(floats, math.Float64frombits(d.fixed64(typ)))
		case 4:
			ints = append(ints, protowire.DecodeZigZag(d.varint(typ)))
		case 5:
			x, err := decodeConstant(d.bytes(typ))
			if err != nil {
				return nil, err
			}
			elems = append(elems, x)
		case 6:
			elem = variant.Type(d.varint(typ))
		case 7:
			class = d.string(typ)
		case 8:
			b = d.bool(typ)
		default:
			d.skip(num, typ)
		}
	}
	if d.err != nil {
		return nil, d.err
	}

	need := func(fs, is int) error {
		if len(floats) != fs || len(ints) != is {
			return errors.Errorf("malformed %s constant", t)
		}
		return nil
	}
	switch t {
	case variant.NIL:
		return variant.Null, nil
	case variant.BOOL:
		return variant.Bool(b), nil
	case variant.INT:
		if err := need(0, 1); err != nil {
			return nil, err
		}
		return variant.Int(ints[0]), nil
	case variant.FLOAT:
		if err := need(1, 0); err != nil {
			return nil, err
		}
		return variant.Float(floats[0]), nil
	case variant.STRING:
		return variant.String(text), nil
	case variant.STRING_NAME:
		return variant.StringName(text), nil
	case variant.NODE_PATH:
		return variant.NodePath(text), nil
	case variant.VECTOR2:
		if err := need(2, 0); err != nil {
			return nil, err
		}
		return variant.Vector2{X: floats[0], Y: floats[1]}, nil
	case variant.VECTOR2I:
		if err := need(0, 2); err != nil {
			return nil, err
		}
		return variant.Vector2i{X: ints[0], Y: ints[1]}, nil
	case variant.VECTOR3:
		if err := need(3, 0); err != nil {
			return nil, err
		}
		return variant.Vector3{X: floats[0], Y: floats[1], Z: floats[2]}, nil
	case variant.VECTOR3I:
		if err := need(0, 3); err != nil {
			return nil, err
		}
		return variant.Vector3i{X: ints[0], Y: ints[1], Z: ints[2]}, nil
	case variant.COLOR:
		if err := need(4, 0); err != nil {
			return nil, err
		}
		return variant.Color{R: floats[0], G: floats[1], B: floats[2], A: floats[3]}, nil
	case variant.DICTIONARY:
		if len(elems)%2 != 0 {
			return nil, errors.New("malformed Dictionary constant")
		}
		dict := variant.NewDictionary()
		for i := 0; i < len(elems); i += 2 {
			if err := dict.Set(elems[i], elems[i+1]); err != nil {
				return nil, err
			}
		}
		dict.MakeReadOnly()
		return dict, nil
	case variant.OBJECT:
		return &variant.Resource{Path: text, Class: class}, nil
	}
	if t == variant.ARRAY || variant.IsPackedArray(t) {
		a := variant.NewArray(elems)
		a.Kind, a.Elem, a.ElemName = t, elem, class
		a.MakeReadOnly()
		return a, nil
	}
	return nil, errors.Errorf("cannot decode constant of type %s", t)
}

func decodeTypeInfo(data []byte) (TypeInfo, error) {
	var t TypeInfo
	d := &decoder{b: data}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			t.Kind = syntax.Kind(d.varint(typ))
		case 2:
			t.Builtin = variant.Type(d.varint(typ))
		case 3:
			t.Native = d.string(typ)
		case 4:
			t.Script = d.string(typ)
		case 5:
			elem, err := decodeTypeInfo(d.bytes(typ))
			if err != nil {
				return t, err
			}
			t.Elem = &elem
		default:
			d.skip(num, typ)
		}
	}
	return t, d.err
}

func decodeLocal(data []byte, file *string) (Local, error) {
	var l Local
	var line, col int32
	d := &decoder{b: data}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			l.Name = d.string(typ)
		case 2:
			line = int32(d.varint(typ))
		case 3:
			col = int32(d.varint(typ))
		case 4:
			t, err := decodeTypeInfo(d.bytes(typ))
			if err != nil {
				return l, err
			}
			l.Type = t
		default:
			d.skip(num, typ)
		}
	}
	l.Pos = syntax.MakePosition(file, line, col)
	return l, d.err
}

func decodeFunction(data []byte, fn *Function, scripts []*Script, file *string) error {
	var line, col int32
	d := &decoder{b: data}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			fn.Name = d.string(typ)
		case 2:
			i := d.varint(typ)
			if i == 0 || i > uint64(len(scripts)) {
				return errors.Errorf("script index %d out of range", i)
			}
			fn.Script = scripts[i-1]
		case 3:
			line = int32(d.varint(typ))
		case 4:
			col = int32(d.varint(typ))
		case 5:
			fn.Code = d.bytes(typ)
		case 6, 7:
			l, err := decodeLocal(d.bytes(typ), file)
			if err != nil {
				return err
			}
			if num == 6 {
				fn.Params = append(fn.Params, l)
			} else {
				fn.Locals = append(fn.Locals, l)
			}
		case 8:
			fn.NumCaptures = int(d.varint(typ))
		case 9:
			fn.MinArgs = int(d.varint(typ))
		case 10:
			fn.MaxArgs = int(d.varint(typ))
		case 11:
			for _, pc := range d.packed(typ) {
				fn.DefaultEntries = append(fn.DefaultEntries, uint32(pc))
			}
		case 12:
			fn.MaxTemps = int(d.varint(typ))
		case 13:
			t, err := decodeTypeInfo(d.bytes(typ))
			if err != nil {
				return err
			}
			fn.ReturnType = t
		case 14:
			fn.Static = d.bool(typ)
		case 15:
			fn.Coroutine = d.bool(typ)
		case 16:
			pairs := d.packed(typ)
			if len(pairs)%2 != 0 {
				return errors.New("malformed line table")
			}
			for i := 0; i < len(pairs); i += 2 {
				fn.Lines = append(fn.Lines, LineEntry{PC: uint32(pairs[i]), Line: int32(protowire.DecodeZigZag(pairs[i+1]))})
			}
		default:
			d.skip(num, typ)
		}
	}
	fn.Pos = syntax.MakePosition(file, line, col)
	return d.err
}

func decodeScript(data []byte, s *Script, scripts []*Script, funcs []*Function) error {
	script := func(i uint64) (*Script, error) {
		if i >= uint64(len(scripts)) {
			return nil, errors.Errorf("script index %d out of range", i)
		}
		return scripts[i], nil
	}
	function := func(i uint64) (*Function, error) {
		if i >= uint64(len(funcs)) {
			return nil, errors.Errorf("function index %d out of range", i)
		}
		return funcs[i], nil
	}

	d := &decoder{b: data}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		var err error
		switch num {
		case 1:
			s.Name = d.string(typ)
		case 2:
			s.FQCN = d.string(typ)
		case 3:
			s.Path = d.string(typ)
		case 4:
			s.Native = d.string(typ)
		case 5:
			s.Base, err = script(d.varint(typ) - 1)
		case 6:
			s.Outer, err = script(d.varint(typ) - 1)
		case 7:
			s.Tool = d.bool(typ)
		case 8:
			s.Valid = d.bool(typ)
		case 9:
			var m *Member
			m, err = decodeMember(d.bytes(typ))
			s.Members = append(s.Members, m)
		case 10:
			var c NamedConstant
			c, err = decodeNamedConstant(d.bytes(typ))
			s.Constants = append(s.Constants, c)
		case 11:
			s.Signals = append(s.Signals, decodeSignal(d, d.bytes(typ)))
		case 12:
			for _, i := range d.packed(typ) {
				var sub *Script
				if sub, err = script(i); err != nil {
					break
				}
				s.Subclasses = append(s.Subclasses, sub)
			}
		case 13:
			for _, i := range d.packed(typ) {
				var fn *Function
				if fn, err = function(i); err != nil {
					break
				}
				s.Methods = append(s.Methods, fn)
			}
		case 14:
			s.Initializer, err = function(d.varint(typ) - 1)
		case 15:
			s.ImplicitReady, err = function(d.varint(typ) - 1)
		default:
			d.skip(num, typ)
		}
		if err != nil {
			return err
		}
	}
	return d.err
}

func decodeMember(data []byte) (*Member, error) {
	m := new(Member)
	d := &decoder{b: data}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.Name = d.string(typ)
		case 2:
			m.Index = int(d.varint(typ))
		case 3:
			m.Getter = d.string(typ)
		case 4:
			m.Setter = d.string(typ)
		case 5:
			t, err := decodeTypeInfo(d.bytes(typ))
			if err != nil {
				return nil, err
			}
			m.Type = t
		default:
			d.skip(num, typ)
		}
	}
	return m, d.err
}

func decodeNamedConstant(data []byte) (NamedConstant, error) {
	var c NamedConstant
	d := &decoder{b: data}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			c.Name = d.string(typ)
		case 2:
			v, err := decodeConstant(d.bytes(typ))
			if err != nil {
				return c, errors.Wrapf(err, "constant %s", c.Name)
			}
			c.Value = v
		default:
			d.skip(num, typ)
		}
	}
	return c, d.err
}

// decodeSignal decodes a signal, reporting errors through parent.
func decodeSignal(parent *decoder, data []byte) *Signal {
	sig := new(Signal)
	d := &decoder{b: data}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			sig.Name = d.string(typ)
		case 2:
			sig.Params = append(sig.Params, d.string(typ))
		default:
			d.skip(num, typ)
		}
	}
	if d.err != nil && parent.err == nil {
		parent.err = d.err
	}
	return sig
}

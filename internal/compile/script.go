// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compile

import (
	"fmt"

	"github.com/oklog/ulid/v2"

	"go.gdlang.net/syntax"
	"go.gdlang.net/variant"
)

// A Program is the compiled form of one source file: its scripts and
// the pools of names and constants their functions refer to.
type Program struct {
	BuildID   ulid.ULID // identifies this compilation
	Path      string
	Names     []string        // names of members, methods, classes and globals
	Constants []variant.Value // constant operands
	Functions []*Function     // every function of every script, in compilation order
	Main      *Script         // the script of the file's class
}

// A Script is a compiled class: its tables and functions.
type Script struct {
	Prog   *Program
	Name   string // class_name or inner class name; empty for an unnamed file class
	FQCN   string // path, followed by "::Inner" for each inner class
	Path   string
	Native string  // native class at the root of the inheritance chain
	Base   *Script // script base class, or nil if the base is native
	Outer  *Script // enclosing script of an inner class
	Tool   bool
	Valid  bool // the script compiled without error

	// Members are the member variables of instances, indexed by
	// Member.Index. Members inherited from script bases come first.
	Members    []*Member
	Constants  []NamedConstant
	Signals    []*Signal
	Subclasses []*Script
	Methods    []*Function

	Initializer   *Function // initializes the member variables; always present
	ImplicitReady *Function // initializes @onready members, or nil
}

// A Member is a member variable of a script.
type Member struct {
	Name   string
	Index  int
	Getter string // name of the getter function, or ""
	Setter string // name of the setter function, or ""
	Type   TypeInfo
}

// A NamedConstant is a constant of a script: a const declaration, an
// enum, an enum value or an inner class.
type NamedConstant struct {
	Name  string
	Value variant.Value
}

// A Signal is a signal declared by a script.
type Signal struct {
	Name   string
	Params []string
}

// A TypeInfo is the runtime description of a static type, as needed
// to check and convert values.
type TypeInfo struct {
	Kind    syntax.Kind // Variant, Builtin, Native or Script
	Builtin variant.Type
	Native  string
	Script  string    // FQCN of the script, for Script
	Elem    *TypeInfo // element type of a typed array
}

func (t TypeInfo) String() string {
	switch t.Kind {
	case syntax.Builtin:
		if t.Builtin == variant.NIL {
			return "void"
		}
		if t.Elem != nil {
			return fmt.Sprintf("%s[%s]", t.Builtin, t.Elem)
		}
		return t.Builtin.String()
	case syntax.Native:
		return t.Native
	case syntax.Script:
		return t.Script
	}
	return "Variant"
}

// typeInfo returns the runtime description of the hard type t, or
// Variant if t is not hard.
func typeInfo(t syntax.DataType) TypeInfo {
	if !t.IsHardType() {
		return TypeInfo{Kind: syntax.Variant}
	}
	switch t.Kind {
	case syntax.Builtin:
		ti := TypeInfo{Kind: syntax.Builtin, Builtin: t.Builtin}
		if t.Element != nil && t.Element.IsHardType() && !t.Element.IsVariant() {
			elem := typeInfo(*t.Element)
			ti.Elem = &elem
		}
		return ti
	case syntax.Enum:
		return TypeInfo{Kind: syntax.Builtin, Builtin: variant.INT}
	case syntax.Native:
		return TypeInfo{Kind: syntax.Native, Native: t.Native}
	case syntax.Class:
		return TypeInfo{Kind: syntax.Script, Script: t.Class.FQCN, Native: nativeOf(t)}
	case syntax.Script:
		return TypeInfo{Kind: syntax.Script, Script: t.Script.ScriptPath(), Native: t.Script.NativeClass()}
	}
	return TypeInfo{Kind: syntax.Variant}
}

// ScriptPath implements syntax.ScriptRef.
func (s *Script) ScriptPath() string { return s.FQCN }

// ScriptBase implements syntax.ScriptRef.
func (s *Script) ScriptBase() syntax.DataType {
	if s.Base != nil {
		return syntax.DataType{Kind: syntax.Script, Script: s.Base, Native: s.Native, Source: syntax.AnnotatedExplicit}
	}
	return syntax.MakeNativeType(s.Native)
}

// NativeClass implements syntax.ScriptRef.
func (s *Script) NativeClass() string { return s.Native }

func (s *Script) String() string { return s.FQCN }

// Member returns the member variable of the given name, or nil.
func (s *Script) Member(name string) *Member {
	for _, m := range s.Members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Method returns the function of the given name, searching the
// script and then its bases, or nil.
func (s *Script) Method(name string) *Function {
	for ; s != nil; s = s.Base {
		for _, fn := range s.Methods {
			if fn.Name == name {
				return fn
			}
		}
	}
	return nil
}

// Constant returns the value of the named constant of s.
func (s *Script) Constant(name string) (variant.Value, bool) {
	for _, c := range s.Constants {
		if c.Name == name {
			return c.Value, true
		}
	}
	return nil, false
}

// A Function is a compiled function: a method, an accessor, a lambda,
// or one of the implicit initializers of a script.
type Function struct {
	Prog   *Program
	Script *Script
	Name   string
	Pos    syntax.Position
	Code   []byte

	Params      []Local // captures first, then declared parameters
	Locals      []Local
	NumCaptures int
	MinArgs     int // required arguments, not counting captures
	MaxArgs     int

	// DefaultEntries holds the pc at which to start when i optional
	// arguments are supplied: DefaultEntries[i] assigns the defaults
	// of the remaining optional parameters, and the last entry is the
	// start of the body.
	DefaultEntries []uint32

	MaxTemps   int
	ReturnType TypeInfo
	Static     bool
	Coroutine  bool
	Lines      []LineEntry

	allocs, pops int // temporaries allocated and released
}

// A Local is a parameter or local variable of a function.
type Local struct {
	Name string
	Pos  syntax.Position
	Type TypeInfo
}

// A LineEntry maps the instructions from PC onwards to a source line.
type LineEntry struct {
	PC   uint32
	Line int32
}

func (fn *Function) String() string {
	if fn.Script != nil {
		return fn.Script.FQCN + "." + fn.Name
	}
	return fn.Name
}

// Position returns the source position of the instruction at pc.
func (fn *Function) Position(pc uint32) syntax.Position {
	pos := fn.Pos
	for _, e := range fn.Lines {
		if e.PC > pc {
			break
		}
		pos.Line, pos.Col = e.Line, 1
	}
	return pos
}

// ---- program pools ----

// A pcomp holds the state of the compilation of one Program.
type pcomp struct {
	prog      *Program
	names     map[string]uint32
	constants map[string]uint32
}

func newPcomp(path string) *pcomp {
	return &pcomp{
		prog:      &Program{BuildID: ulid.Make(), Path: path},
		names:     make(map[string]uint32),
		constants: make(map[string]uint32),
	}
}

func (pc *pcomp) nameIndex(name string) uint32 {
	index, ok := pc.names[name]
	if !ok {
		index = uint32(len(pc.prog.Names))
		pc.names[name] = index
		pc.prog.Names = append(pc.prog.Names, name)
	}
	return index
}

// constantIndex returns the index of v in the constant pool. Values
// of different types are never merged, so 1 and 1.0 stay distinct.
func (pc *pcomp) constantIndex(v variant.Value) uint32 {
	key := fmt.Sprintf("%d:%s", v.Type(), variant.Repr(v))
	if r, ok := v.(*variant.Resource); ok {
		key = fmt.Sprintf("%d:%s#%s", v.Type(), r.Class, r.Path)
	}
	index, ok := pc.constants[key]
	if !ok {
		index = uint32(len(pc.prog.Constants))
		pc.constants[key] = index
		pc.prog.Constants = append(pc.prog.Constants, v)
	}
	return index
}

func (pc *pcomp) addFunction(fn *Function) {
	pc.prog.Functions = append(pc.prog.Functions, fn)
}

// functionIndex returns the index of fn in Program.Functions.
func (pc *pcomp) functionIndex(fn *Function) uint32 {
	for i, f := range pc.prog.Functions {
		if f == fn {
			return uint32(i)
		}
	}
	internalErrorf("function %s not in program", fn)
	panic("unreachable")
}

// ---- types ----

// typeOfValue returns the static type of a constant.
func typeOfValue(v variant.Value) syntax.DataType {
	if r, ok := v.(*variant.Resource); ok {
		return syntax.MakeNativeType(r.Class)
	}
	return syntax.MakeBuiltinType(v.Type())
}

// nativeOf returns the native class of values of type t, or "".
func nativeOf(t syntax.DataType) string {
	switch t.Kind {
	case syntax.Native:
		return t.Native
	case syntax.Class:
		if t.Native != "" {
			return t.Native
		}
		if t.Class.Type.Native != "" {
			return t.Class.Type.Native
		}
		if t.Class.BaseType.IsSet() {
			return nativeOf(t.Class.BaseType)
		}
	case syntax.Script:
		return t.Script.NativeClass()
	case syntax.Builtin:
		if t.Builtin == variant.OBJECT {
			return "Object"
		}
	}
	return ""
}

// isHardBuiltin reports whether t is a declared builtin value type,
// whose operations can be checked at compile time.
func isHardBuiltin(t syntax.DataType) bool {
	return t.IsHardType() && !t.IsMeta && (t.Kind == syntax.Builtin && t.Builtin != variant.OBJECT || t.Kind == syntax.Enum)
}

// isShared reports whether values of t are known to be shared by
// reference, and whether that is known at all.
func isShared(t syntax.DataType) (shared, known bool) {
	if !t.IsHardType() || t.IsVariant() {
		return false, false
	}
	return variant.IsShared(t.VariantType()), true
}

// funcName returns the name of a function for messages and tables.
func funcName(fn *syntax.FuncDecl) string {
	if fn.Name == nil {
		return "<anonymous lambda>"
	}
	return fn.Name.Name
}

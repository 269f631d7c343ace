// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compile defines the compiler, which translates the analyzed
// syntax tree of a script file into a Program: a Script for each
// class, holding its member tables and a Function for each method,
// accessor and lambda.
//
// Function bodies are compiled to a compact register code. Each
// instruction is an opcode followed by uvarint operands; most operands
// are Addresses that name where a value lives: a parameter, a local,
// a member variable of self, a constant of the Program or a slot of
// the temporary stack. Temporaries are strictly LIFO: every helper
// releases what it allocates, in reverse order, before the statement
// that needs them completes.
//
// The compiler relies on the annotations of package resolve: each
// expression's static type and constant value, each identifier's
// declaration, each call's callee. It reports an error only for
// structural problems the analyzer cannot see, such as a cycle among
// the classes being compiled.
//
// This is an internal package of the gdc compiler and is not directly
// accessible to clients.
package compile // import "go.gdlang.net/internal/compile"

import (
	"fmt"
	"os"

	"go.gdlang.net/resolve"
	"go.gdlang.net/syntax"
	"go.gdlang.net/variant"
)

// Compiler options.
var (
	// Disassemble prints the code of each compiled function to stderr.
	Disassemble = false

	// DebugLines emits a LINE instruction at the start of each
	// statement, for debuggers that step by line.
	DebugLines = false
)

// An Error is the first error found while compiling a file.
type Error struct {
	Pos syntax.Position
	Msg string
}

func (e Error) Error() string { return e.Pos.String() + ": " + e.Msg }

// An InternalError is an inconsistency between the compiler and the
// annotations of the syntax tree. It is raised as a panic and
// reported by Compile as an Error.
type InternalError string

func (e InternalError) Error() string { return "internal compiler error: " + string(e) }

func internalErrorf(format string, args ...interface{}) {
	panic(InternalError(fmt.Sprintf(format, args...)))
}

// A Compiler compiles the files of one project. Files are compiled
// once; the base classes of a file, which may live in other files,
// are compiled first.
type Compiler struct {
	env *resolve.Env

	files      map[string]*compilation
	scripts    map[*syntax.ClassDecl]*Script
	populating map[*syntax.ClassDecl]bool
	populated  map[*syntax.ClassDecl]bool
}

// A compilation records the outcome of compiling one file.
type compilation struct {
	state fileState
	prog  *Program
	err   error
}

type fileState uint8

const (
	compiling fileState = iota
	compiled
	failed
)

// New returns a compiler for the files of env.
func New(env *resolve.Env) *Compiler {
	return &Compiler{
		env:        env,
		files:      make(map[string]*compilation),
		scripts:    make(map[*syntax.ClassDecl]*Script),
		populating: make(map[*syntax.ClassDecl]bool),
		populated:  make(map[*syntax.ClassDecl]bool),
	}
}

// Compile analyzes the file f, if that has not been done, and
// compiles it. It returns the analyzer's ErrorList if the file has
// errors, or an Error if it cannot be compiled. The outcome is
// recorded: compiling a file again returns the same Program or error.
func (c *Compiler) Compile(f *syntax.File) (prog *Program, err error) {
	if done, ok := c.files[f.Path]; ok {
		switch done.state {
		case compiled:
			return done.prog, nil
		case failed:
			return nil, done.err
		}
		// The analyzer rejects inheritance cycles, so a file can only
		// be reentered through an inconsistent environment.
		return nil, Error{f.Class.ClassPos, fmt.Sprintf("Cyclic class reference for \"%s\".", f.Path)}
	}

	cur := &compilation{state: compiling}
	c.files[f.Path] = cur
	defer func() {
		switch x := recover().(type) {
		case nil:
		case Error:
			prog, err = nil, x
		case InternalError:
			prog, err = nil, Error{f.Class.ClassPos, x.Error()}
		default:
			panic(x)
		}
		if err != nil {
			cur.state, cur.err = failed, err
		} else {
			cur.state, cur.prog = compiled, prog
		}
	}()

	if err := resolve.NewAnalyzer(c.env, f).Analyze(); err != nil {
		return nil, err
	}
	pc := newPcomp(f.Path)
	main := c.populate(pc, f.Class)
	c.compileClass(pc, f.Class)
	pc.prog.Main = main
	return pc.prog, nil
}

// Script returns the compiled script of a class, or nil if the file
// declaring it has not been compiled.
func (c *Compiler) Script(cls *syntax.ClassDecl) *Script { return c.scripts[cls] }

func errorf(n syntax.Node, format string, args ...interface{}) {
	panic(Error{syntax.Start(n), fmt.Sprintf(format, args...)})
}

// populate builds the member, constant, signal and subclass tables of
// the script of cls, once, after those of its base. A base declared
// in another file is compiled first.
func (c *Compiler) populate(pc *pcomp, cls *syntax.ClassDecl) *Script {
	if c.populated[cls] {
		return c.scripts[cls]
	}
	if c.populating[cls] {
		errorf(cls, "Cyclic class reference for \"%s\".", cls.FQCN)
	}
	c.populating[cls] = true
	defer delete(c.populating, cls)

	s := c.scripts[cls]
	if s == nil {
		s = &Script{}
		c.scripts[cls] = s
	}
	s.Prog = pc.prog
	s.FQCN, s.Path, s.Tool = cls.FQCN, cls.Path, cls.Tool
	if cls.Name != nil {
		s.Name = cls.Name.Name
		if c.env.Catalog.HasClass(s.Name) {
			errorf(cls.Name, "The class '%s' shadows a native class", s.Name)
		}
	}

	switch b := cls.BaseType; b.Kind {
	case syntax.Class:
		if b.Class.Path == cls.Path {
			s.Base = c.populate(pc, b.Class)
		} else {
			s.Base = c.compileBase(cls, b.Class)
		}
	case syntax.Script:
		if base, ok := b.Script.(*Script); ok {
			s.Base = base
		}
	}
	if s.Base != nil {
		s.Native = s.Base.Native
		for _, m := range s.Base.Members {
			inherited := *m
			s.Members = append(s.Members, &inherited)
		}
	} else {
		s.Native = nativeOf(cls.BaseType)
	}

	var inner []*syntax.ClassDecl
	for _, m := range cls.Members {
		switch m := m.(type) {
		case *syntax.VarDecl:
			mem := &Member{Name: m.Name.Name, Index: len(s.Members), Type: typeInfo(m.Type)}
			if m.Getter != nil {
				mem.Getter = accessorName(m, "getter")
			} else if m.GetterName != nil {
				mem.Getter = m.GetterName.Name
			}
			if m.Setter != nil {
				mem.Setter = accessorName(m, "setter")
			} else if m.SetterName != nil {
				mem.Setter = m.SetterName.Name
			}
			s.Members = append(s.Members, mem)
		case *syntax.ConstDecl:
			s.Constants = append(s.Constants, NamedConstant{m.Name.Name, m.Value})
		case *syntax.SignalDecl:
			sig := &Signal{Name: m.Name.Name}
			for _, p := range m.Params {
				sig.Params = append(sig.Params, p.Name.Name)
			}
			s.Signals = append(s.Signals, sig)
		case *syntax.EnumDecl:
			if m.Dict != nil {
				s.Constants = append(s.Constants, NamedConstant{m.Name.Name, m.Dict})
			}
		case *syntax.EnumValue:
			s.Constants = append(s.Constants, NamedConstant{m.Name.Name, variant.Int(m.Value)})
		case *syntax.ClassDecl:
			s.Constants = append(s.Constants, NamedConstant{m.Name.Name, &variant.Resource{Path: m.FQCN, Class: "GDScript"}})
			inner = append(inner, m)
		case *syntax.FuncDecl, *syntax.GroupDecl:
			// compiled by compileClass; groups only affect the editor
		default:
			internalErrorf("unexpected member %T", m)
		}
	}
	c.populated[cls] = true

	// Inner classes may extend the class that declares them.
	for _, m := range inner {
		sub := c.populate(pc, m)
		sub.Outer = s
		s.Subclasses = append(s.Subclasses, sub)
	}
	return s
}

// compileBase compiles the file declaring base, the base class of
// cls, and returns the script of base.
func (c *Compiler) compileBase(cls, base *syntax.ClassDecl) *Script {
	ref, err := c.env.Cache.Get(base.Path)
	if err != nil {
		errorf(cls, "Could not compile base class \"%s\": %v", base.FQCN, err)
	}
	if _, err := c.Compile(ref.File()); err != nil {
		errorf(cls, "Could not compile base class \"%s\": %v", base.FQCN, err)
	}
	s := c.scripts[base]
	if s == nil {
		internalErrorf("base class %s was not compiled", base.FQCN)
	}
	return s
}

func accessorName(v *syntax.VarDecl, kind string) string {
	return "@" + v.Name.Name + "_" + kind
}

// compileClass compiles the functions of cls: its methods, its inline
// accessors, its implicit initializers, and then its inner classes.
func (c *Compiler) compileClass(pc *pcomp, cls *syntax.ClassDecl) {
	s := c.scripts[cls]
	for _, m := range cls.Members {
		switch m := m.(type) {
		case *syntax.FuncDecl:
			s.Methods = append(s.Methods, c.compileFunction(pc, s, cls, m, m.Name.Name))
		case *syntax.VarDecl:
			if m.Getter != nil {
				s.Methods = append(s.Methods, c.compileFunction(pc, s, cls, m.Getter, accessorName(m, "getter")))
			}
			if m.Setter != nil {
				s.Methods = append(s.Methods, c.compileFunction(pc, s, cls, m.Setter, accessorName(m, "setter")))
			}
		}
	}

	s.Initializer = c.compileInitializer(pc, s, cls, "@implicit_new", false)
	if cls.OnreadyUsed {
		s.ImplicitReady = c.compileInitializer(pc, s, cls, "@implicit_ready", true)
	}

	for _, m := range cls.Members {
		if inner, ok := m.(*syntax.ClassDecl); ok {
			c.compileClass(pc, inner)
		}
	}
	s.Valid = true
}

// ---- functions ----

// An fcomp holds the state of the compilation of one function.
type fcomp struct {
	c      *Compiler
	pcomp  *pcomp
	script *Script
	class  *syntax.ClassDecl
	decl   *syntax.FuncDecl // nil for an implicit initializer
	fn     *Function
	gen    *generator

	vars  map[syntax.Node]Address // addresses of parameters and locals, by declaration
	loops []loop
	cases []label // tests of the next branch, by enclosing match

	hasReturnValue bool
}

type loop struct {
	brk, cont label
}

func (c *Compiler) newFcomp(pc *pcomp, s *Script, cls *syntax.ClassDecl, decl *syntax.FuncDecl, fn *Function) *fcomp {
	return &fcomp{
		c:      c,
		pcomp:  pc,
		script: s,
		class:  cls,
		decl:   decl,
		fn:     fn,
		gen:    newGenerator(pc),
		vars:   make(map[syntax.Node]Address),
	}
}

// compileFunction compiles a method, an accessor or the function of a
// lambda.
func (c *Compiler) compileFunction(pc *pcomp, s *Script, cls *syntax.ClassDecl, decl *syntax.FuncDecl, name string) *Function {
	fn := &Function{
		Prog:      pc.prog,
		Script:    s,
		Name:      name,
		Pos:       decl.Func,
		Static:    decl.Static,
		Coroutine: decl.IsCoroutine,
	}
	fc := c.newFcomp(pc, s, cls, decl, fn)
	fc.gen.line = decl.Func.Line

	if l := decl.Lambda; l != nil {
		for _, id := range l.Captures {
			fc.vars[id.Decl] = fc.addParam(id.Name, id.NamePos, id.DataType)
		}
		fn.NumCaptures = len(l.Captures)
	}
	for _, p := range decl.Params {
		fc.vars[p] = fc.addParam(p.Name.Name, p.Name.NamePos, p.Type)
	}
	fn.MinArgs, fn.MaxArgs = decl.MinArgs(), len(decl.Params)

	// Optional parameters: the caller enters at DefaultEntries[i]
	// when it supplies i of them.
	var entries []label
	if fn.MinArgs < fn.MaxArgs {
		fc.gen.emit(JUMP_TO_DEF_ARGUMENT)
		for _, p := range decl.Params[fn.MinArgs:] {
			l := fc.gen.newLabel()
			fc.gen.bind(l)
			entries = append(entries, l)
			fc.setLine(syntax.Start(p.Default))
			fc.balanced(func() {
				dst := fc.vars[p]
				src := fc.expr(p.Default)
				fc.assign(dst, src, p.ConversionAssign)
				fc.gen.release(src)
			})
		}
		l := fc.gen.newLabel()
		fc.gen.bind(l)
		entries = append(entries, l)
	}

	fc.block(decl.Body)
	if !decl.Body.HasReturn {
		fc.gen.emit(RETURN, nilAddr.encode())
	}

	switch rt := decl.ReturnType; {
	case rt.IsHardType() && !rt.IsVariant():
		fn.ReturnType = typeInfo(rt)
	case !fc.hasReturnValue:
		fn.ReturnType = TypeInfo{Kind: syntax.Builtin, Builtin: variant.NIL}
	default:
		fn.ReturnType = TypeInfo{Kind: syntax.Variant}
	}

	labels := fc.finish()
	for _, l := range entries {
		fn.DefaultEntries = append(fn.DefaultEntries, labels[l])
	}
	return fn
}

// compileInitializer compiles the implicit function that initializes
// the member variables declared by cls: those annotated @onready if
// ready is set, the others otherwise. Members inherited from a script
// base are initialized by the base's initializer.
func (c *Compiler) compileInitializer(pc *pcomp, s *Script, cls *syntax.ClassDecl, name string, ready bool) *Function {
	fn := &Function{
		Prog:       pc.prog,
		Script:     s,
		Name:       name,
		Pos:        cls.ClassPos,
		ReturnType: TypeInfo{Kind: syntax.Builtin, Builtin: variant.NIL},
	}
	fc := c.newFcomp(pc, s, cls, nil, fn)
	fc.gen.line = cls.ClassPos.Line

	for _, m := range cls.Members {
		v, ok := m.(*syntax.VarDecl)
		if !ok || v.Onready != ready {
			continue
		}
		mem := s.Member(v.Name.Name)
		if mem == nil {
			internalErrorf("member %s not in the table of %s", v.Name.Name, s.FQCN)
		}
		dst := Address{Mode: AddrMember, Index: uint32(mem.Index), Type: v.Type}
		fc.setLine(v.Var)
		fc.balanced(func() {
			if v.Init != nil {
				src := fc.expr(v.Init)
				fc.assign(dst, src, v.ConversionAssign)
				fc.gen.release(src)
			} else {
				fc.initialize(dst, v.Type)
			}
		})
	}
	fc.gen.emit(RETURN, nilAddr.encode())
	fc.finish()
	return fn
}

// finish encodes the code of the function and registers it with the
// program. It returns the pc of each label.
func (fc *fcomp) finish() []uint32 {
	g := fc.gen
	if len(g.temps) != 0 {
		internalErrorf("%s: %d temporaries live at end of function", fc.fn.Name, len(g.temps))
	}
	code, lines, labels := g.encode()
	fn := fc.fn
	fn.Code, fn.Lines = code, lines
	fn.MaxTemps = g.maxTemps
	fn.allocs, fn.pops = g.allocs, g.pops
	fc.pcomp.addFunction(fn)
	if Disassemble {
		fn.Disassemble(os.Stderr)
	}
	return labels
}

func (fc *fcomp) addParam(name string, pos syntax.Position, t syntax.DataType) Address {
	fc.fn.Params = append(fc.fn.Params, Local{Name: name, Pos: pos, Type: typeInfo(t)})
	return Address{Mode: AddrParameter, Index: uint32(len(fc.fn.Params) - 1), Type: t}
}

// addLocal allocates a slot for a local variable. Each declaration
// has its own slot.
func (fc *fcomp) addLocal(name string, pos syntax.Position, t syntax.DataType) Address {
	fc.fn.Locals = append(fc.fn.Locals, Local{Name: name, Pos: pos, Type: typeInfo(t)})
	return Address{Mode: AddrLocal, Index: uint32(len(fc.fn.Locals) - 1), Type: t}
}

// setLine sets the line of the following instructions.
func (fc *fcomp) setLine(pos syntax.Position) {
	if pos.Line == fc.gen.line {
		return
	}
	fc.gen.line = pos.Line
	if DebugLines {
		fc.gen.emit(LINE, uint32(pos.Line))
	}
}

// balanced calls f, which must release every temporary it allocates.
func (fc *fcomp) balanced(f func()) {
	depth := len(fc.gen.temps)
	f()
	if n := len(fc.gen.temps); n != depth {
		internalErrorf("%s: line %d: %d temporaries live after statement, want %d", fc.fn.Name, fc.gen.line, n, depth)
	}
}

// inAccessor reports whether the function being compiled is the
// getter or setter of member m, which access m directly.
func (fc *fcomp) inAccessor(m *Member) bool {
	return fc.fn.Name != "" && (fc.fn.Name == m.Getter || fc.fn.Name == m.Setter)
}

// assign stores src in dst, converting or checking the value against
// the type of dst if convert is set.
func (fc *fcomp) assign(dst, src Address, convert bool) {
	t := dst.Type
	if !convert || !t.IsHardType() || t.IsVariant() {
		fc.gen.emit(ASSIGN, dst.encode(), src.encode())
		return
	}
	switch t.Kind {
	case syntax.Builtin, syntax.Enum:
		fc.gen.emit(ASSIGN_CONVERT, dst.encode(), src.encode(), uint32(t.VariantType()))
	case syntax.Native:
		fc.gen.emit(ASSIGN_NATIVE, dst.encode(), src.encode(), fc.gen.name(t.Native))
	case syntax.Class, syntax.Script:
		fc.gen.emit(ASSIGN_SCRIPT, dst.encode(), src.encode(), fc.scriptConstant(t).encode())
	default:
		fc.gen.emit(ASSIGN, dst.encode(), src.encode())
	}
}

// initialize stores the default value of type t in dst: an empty
// typed array, the zero value of a builtin type, or null.
func (fc *fcomp) initialize(dst Address, t syntax.DataType) {
	switch {
	case t.IsHardType() && t.IsBuiltin(variant.ARRAY) && t.Element != nil && !t.Element.IsVariant():
		elem := *t.Element
		fc.gen.emitList(CONSTRUCT_TYPED_ARRAY, nil, dst.encode(), uint32(elem.VariantType()), fc.gen.name(nativeOf(elem)))
	case t.IsHardType() && (t.Kind == syntax.Builtin && t.Builtin != variant.OBJECT || t.Kind == syntax.Enum):
		fc.gen.emitList(CONSTRUCT, nil, dst.encode(), uint32(t.VariantType()))
	default:
		fc.gen.emit(ASSIGN, dst.encode(), fc.gen.constant(variant.Null).encode())
	}
}

// scriptConstant returns the constant denoting the script of the
// class or script type t.
func (fc *fcomp) scriptConstant(t syntax.DataType) Address {
	var path string
	switch t.Kind {
	case syntax.Class:
		path = t.Class.FQCN
	case syntax.Script:
		path = t.Script.ScriptPath()
	default:
		internalErrorf("%s is not a script type", t)
	}
	return fc.gen.constant(&variant.Resource{Path: path, Class: "GDScript"})
}

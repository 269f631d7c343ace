// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package resolve defines the analyzer, which annotates the syntax
// tree of a script with static types and reports semantic errors.
//
// Analysis of a file proceeds in three passes, each applied to every
// class of the file, outer classes first:
//
//   - inheritance: determine the base type of each class by following
//     its extends clause, which may name a native class, a script file,
//     a global class, an autoload singleton or a class in scope;
//   - interface: determine the type of every member (variables,
//     constants, signals, enums, function signatures) without entering
//     function bodies;
//   - body: resolve the statements and expressions of every function
//     and property accessor.
//
// Each expression is reduced at most once, recording its DataType and,
// where it can be computed statically, its constant value. The
// compiler (package internal/compile) relies on these annotations.
//
// A pass may need information from another file, such as the members
// of a class defined in a different script. All files are obtained
// through the Cache of the Env, which parses each path once and raises
// the status of its analysis on demand. Queries for a file whose
// analysis is already in progress return immediately with whatever
// has been resolved so far, so mutually dependent files terminate.
//
// Errors do not stop analysis: the offending expression is given the
// Variant type and analysis continues, so that a single pass reports
// as many problems as possible. The statements containing an error or
// an operation on an untyped value are recorded as unsafe.
package resolve // import "go.gdlang.net/resolve"

import (
	"fmt"
	"sort"
	"strings"

	"go.gdlang.net/classdb"
	"go.gdlang.net/syntax"
)

const debug = false

// Analyzer options.
// These features are either not standard or not yet firmly
// established, or exist to tailor diagnostics to a project.
var (
	// AllowUntypedDeclarations permits variables, parameters and
	// functions without a static type. When false, each such
	// declaration is an error.
	AllowUntypedDeclarations = true

	// WarningsAsErrors reports every enabled warning as an error.
	WarningsAsErrors = false
)

// An ErrorList is a non-empty list of resolver error messages.
type ErrorList []Error // len > 0

func (e ErrorList) Error() string { return e[0].Error() }

func (e ErrorList) Len() int           { return len(e) }
func (e ErrorList) Less(i, j int) bool { return e[i].Pos.Before(e[j].Pos) }
func (e ErrorList) Swap(i, j int)      { e[i], e[j] = e[j], e[i] }

// An Error describes the nature and position of a resolver error.
type Error struct {
	Pos syntax.Position
	Msg string
}

func (e Error) Error() string { return e.Pos.String() + ": " + e.Msg }

// An Env is the environment shared by the analyses of the files of
// one project.
type Env struct {
	Catalog classdb.Catalog // native classes and global constants
	Cache   *Cache          // parsed and partially analyzed files

	// GlobalClasses maps each class_name to the path of the file
	// declaring it.
	GlobalClasses map[string]string

	// Autoloads maps the name of each autoloaded script to its path.
	Autoloads map[string]Autoload

	// Scripts holds scripts that are available in compiled form only,
	// by path. A path found here is never loaded as source.
	Scripts map[string]syntax.ScriptRef
}

// An Autoload is a script instantiated by the host at startup.
// If Singleton is set, the instance is accessible by name.
type Autoload struct {
	Path      string
	Singleton bool
}

// NewEnv returns an environment for the native classes of cat whose
// script files are read by load.
func NewEnv(cat classdb.Catalog, load Loader) *Env {
	env := &Env{
		Catalog:       cat,
		GlobalClasses: make(map[string]string),
		Autoloads:     make(map[string]Autoload),
		Scripts:       make(map[string]syntax.ScriptRef),
	}
	env.Cache = newCache(env, load)
	return env
}

// File analyzes the syntax tree of a file, annotating it in place.
//
// It returns the warnings found, and an ErrorList if the file has
// errors; in that case the tree must not be compiled.
func File(f *syntax.File, env *Env) ([]Warning, error) {
	a := NewAnalyzer(env, f)
	err := a.Analyze()
	return a.Warnings(), err
}

// An Analyzer resolves one file.
//
// The file is registered in the cache of the Env under its path, so
// that other files referring to it share the same tree and analysis.
type Analyzer struct {
	env  *Env
	file *syntax.File
	ref  *Ref

	errors   ErrorList
	warnings []Warning
	unsafe   map[int32]bool // lines of unsafe statements

	// current context
	class   *syntax.ClassDecl    // class being resolved
	fn      *syntax.FuncDecl     // function being resolved, or nil
	block   *syntax.Block        // innermost block being resolved, or nil
	enum    *syntax.EnumDecl     // enum whose values are being reduced, or nil
	stmt    syntax.Node          // smallest enclosing statement or member
	lambdas []*syntax.LambdaExpr // enclosing lambdas, innermost last
	roots   map[syntax.Expr]bool // expressions whose value is discarded
	awaited map[*syntax.CallExpr]bool

	signatures map[*syntax.FuncDecl]bool  // signatures being resolved
	enumValues map[*syntax.EnumValue]bool // enum values being resolved
}

// NewAnalyzer returns an analyzer for the file f.
func NewAnalyzer(env *Env, f *syntax.File) *Analyzer {
	return env.Cache.add(f).analyzer
}

func newAnalyzer(env *Env, f *syntax.File, ref *Ref) *Analyzer {
	return &Analyzer{
		env:        env,
		file:       f,
		ref:        ref,
		unsafe:     make(map[int32]bool),
		roots:      make(map[syntax.Expr]bool),
		awaited:    make(map[*syntax.CallExpr]bool),
		signatures: make(map[*syntax.FuncDecl]bool),
		enumValues: make(map[*syntax.EnumValue]bool),
	}
}

// ResolveInheritance resolves the base of every class of the file.
func (a *Analyzer) ResolveInheritance() error { return a.ref.RaiseStatus(InheritanceSolved) }

// ResolveInterface resolves the members of every class of the file.
// It first resolves inheritance if necessary.
func (a *Analyzer) ResolveInterface() error { return a.ref.RaiseStatus(InterfaceSolved) }

// ResolveBody resolves the function bodies of every class of the
// file. It first resolves the interface if necessary.
func (a *Analyzer) ResolveBody() error { return a.ref.RaiseStatus(FullySolved) }

// Analyze runs all three passes.
func (a *Analyzer) Analyze() error { return a.ResolveBody() }

// File returns the file being analyzed.
func (a *Analyzer) File() *syntax.File { return a.file }

// Errors returns the errors reported so far, in order of position.
func (a *Analyzer) Errors() ErrorList {
	if len(a.errors) == 0 {
		return nil
	}
	list := append(ErrorList(nil), a.errors...)
	sort.Stable(list)
	return list
}

// Warnings returns the warnings reported so far, in order of position.
func (a *Analyzer) Warnings() []Warning {
	list := append([]Warning(nil), a.warnings...)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Pos.Before(list[j].Pos) })
	return list
}

// UnsafeLines returns the sorted line numbers of statements that
// failed analysis or operate on values of unknown type.
func (a *Analyzer) UnsafeLines() []int {
	lines := make([]int, 0, len(a.unsafe))
	for line := range a.unsafe {
		lines = append(lines, int(line))
	}
	sort.Ints(lines)
	return lines
}

// err returns the errors as an error, or nil.
func (a *Analyzer) err() error {
	if list := a.Errors(); list != nil {
		return list
	}
	return nil
}

// A bug is an internal inconsistency of the analyzer.
type bug string

func bugf(format string, args ...interface{}) {
	panic(bug(fmt.Sprintf(format, args...)))
}

// run calls f, converting an analyzer bug into an error of the file.
func (a *Analyzer) run(f func()) {
	defer func() {
		if x := recover(); x != nil {
			b, ok := x.(bug)
			if !ok {
				panic(x)
			}
			pos := a.file.Class.ClassPos
			if a.stmt != nil {
				pos = syntax.Start(a.stmt)
			}
			a.errors = append(a.errors, Error{pos, "internal error: " + string(b)})
		}
	}()
	f()
}

func (a *Analyzer) errorf(n syntax.Node, format string, args ...interface{}) {
	pos := a.file.Class.ClassPos
	if n != nil {
		pos = syntax.Start(n)
	}
	if debug {
		fmt.Printf("%s: error: %s\n", pos, fmt.Sprintf(format, args...))
	}
	a.errors = append(a.errors, Error{pos, fmt.Sprintf(format, args...)})
	a.markUnsafe(n)
}

// markUnsafe records the lines of the statement enclosing n.
func (a *Analyzer) markUnsafe(n syntax.Node) {
	if a.stmt != nil {
		n = a.stmt
	}
	if n == nil {
		return
	}
	start, end := n.Span()
	for line := start.Line; line <= end.Line; line++ {
		a.unsafe[line] = true
	}
}

// owner returns the analyzer responsible for the file declaring c.
func (a *Analyzer) owner(c *syntax.ClassDecl) *Analyzer {
	if c.Path == a.file.Path {
		return a
	}
	if ref := a.env.Cache.lookup(c.Path); ref != nil {
		return ref.analyzer
	}
	return a
}

// A context saves the analyzer's current position in the tree.
type context struct {
	class   *syntax.ClassDecl
	fn      *syntax.FuncDecl
	block   *syntax.Block
	enum    *syntax.EnumDecl
	stmt    syntax.Node
	lambdas []*syntax.LambdaExpr
}

// enter makes c the current class, outside any function, and returns
// the previous context.
func (a *Analyzer) enter(c *syntax.ClassDecl) context {
	save := context{a.class, a.fn, a.block, a.enum, a.stmt, a.lambdas}
	a.class, a.fn, a.block, a.enum, a.stmt, a.lambdas = c, nil, nil, nil, nil, nil
	return save
}

func (a *Analyzer) leave(save context) {
	a.class, a.fn, a.block = save.class, save.fn, save.block
	a.enum, a.stmt, a.lambdas = save.enum, save.stmt, save.lambdas
}

// staticFunction returns the enclosing named function if it is
// static, looking through lambdas.
func (a *Analyzer) staticFunction() *syntax.FuncDecl {
	fn := a.fn
	for fn != nil && fn.Lambda != nil {
		fn = fn.Outer
	}
	if fn != nil && fn.Static {
		return fn
	}
	return nil
}

// suggest returns a "Did you mean" suffix for a misspelled name.
func suggest(name string, candidates []string) string {
	others := candidates[:0:0]
	for _, c := range candidates {
		if c != name {
			others = append(others, c)
		}
	}
	if near := nearest(name, others); near != "" {
		return fmt.Sprintf(" Did you mean \"%s\"?", near)
	}
	return ""
}

// className returns the name of a class for messages.
func className(c *syntax.ClassDecl) string {
	if c.Name != nil {
		return c.Name.Name
	}
	if c.Outer == nil {
		return "<main>"
	}
	return c.FQCN
}

// isPrivate reports whether a name starts with an underscore, which
// suppresses warnings about unused declarations.
func isPrivate(name string) bool { return strings.HasPrefix(name, "_") }

// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The gdc command analyzes and compiles script files.
//
// Each argument is a script file or a directory, which is searched
// for .gd files. Paths are mapped to resource paths ("res://...")
// relative to the project root given by -root. Every file of the
// project declaring a class_name is registered as a global class
// before the first file is analyzed.
//
// With -txtar, the project is read from a txtar archive instead of
// the file system, and every file of the archive is compiled unless
// arguments name particular resource paths.
//
// With no arguments and a terminal on standard input, gdc starts a
// read-analyze-print loop (REPL).
package main // import "go.gdlang.net/cmd/gdc"

import (
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"go.gdlang.net/classdb"
	"go.gdlang.net/gdtest"
	"go.gdlang.net/internal/compile"
	"go.gdlang.net/repl"
	"go.gdlang.net/resolve"
	"go.gdlang.net/syntax"
)

// flags
var (
	root     = flag.String("root", ".", "project `dir` that res:// paths refer to")
	archive  = flag.String("txtar", "", "read the project from the txtar `file`")
	output   = flag.String("o", "", "write the compiled script to `file` (one input only)")
	rusage   = flag.Bool("rusage", false, "report resource usage on exit")
	verbose  = flag.Bool("v", false, "report progress")
	classes  = make(assignments)
	autoload = make(assignments)
)

func init() {
	flag.BoolVar(&compile.Disassemble, "disassemble", compile.Disassemble, "show disassembly during compilation of each function")
	flag.BoolVar(&compile.DebugLines, "lines", compile.DebugLines, "emit line instructions")
	flag.BoolVar(&resolve.WarningsAsErrors, "Werror", resolve.WarningsAsErrors, "treat warnings as errors")
	flag.BoolVar(&resolve.AllowUntypedDeclarations, "untyped", resolve.AllowUntypedDeclarations, "allow declarations without a static type")
	flag.Var(classes, "class", "register global class `Name=path` (repeatable)")
	flag.Var(autoload, "autoload", "register autoload `Name=path` (repeatable); a path prefixed by * is a singleton")
}

// assignments is a repeatable flag of the form name=value.
type assignments map[string]string

func (m assignments) String() string {
	var list []string
	for k, v := range m {
		list = append(list, k+"="+v)
	}
	sort.Strings(list)
	return strings.Join(list, ",")
}

func (m assignments) Set(s string) error {
	i := strings.IndexByte(s, '=')
	if i <= 0 || i == len(s)-1 {
		return fmt.Errorf("got %q, want name=path", s)
	}
	m[s[:i]] = s[i+1:]
	return nil
}

func main() {
	os.Exit(doMain())
}

func doMain() int {
	log.SetPrefix("gdc: ")
	log.SetFlags(0)
	flag.Parse()

	if *rusage {
		defer printRusage()
	}

	load, paths, targets, err := project(flag.Args())
	check(err)

	env := resolve.NewEnv(classdb.Core(), load)
	if *verbose {
		log.Printf("scanning %d files for global classes", len(paths))
	}
	check(resolve.ScanGlobalClasses(env, paths))
	for name, p := range classes {
		env.GlobalClasses[name] = gdtest.ResPath(p)
	}
	for name, p := range autoload {
		singleton := strings.HasPrefix(p, "*")
		env.Autoloads[name] = resolve.Autoload{Path: gdtest.ResPath(strings.TrimPrefix(p, "*")), Singleton: singleton}
	}

	switch {
	case len(targets) == 0 && term.IsTerminal(int(os.Stdin.Fd())):
		fmt.Println("Welcome to gdc (go.gdlang.net)")
		repl.REPL(env)
		return 0
	case len(targets) == 0:
		log.Print("no script files")
		return 1
	case *output != "" && len(targets) != 1:
		log.Print("-o requires exactly one script file")
		return 1
	}

	d := newDiagnostics(os.Stderr)
	c := compile.New(env)
	failed := false
	for _, p := range targets {
		if *verbose {
			log.Printf("compiling %s", p)
		}
		prog, err := build(env, c, d, p)
		if err != nil {
			d.error(err)
			failed = true
			continue
		}
		if *output != "" {
			data, err := prog.Encode()
			check(err)
			check(os.WriteFile(*output, data, 0666))
			if *verbose {
				log.Printf("wrote %s (%d bytes, build %s)", *output, len(data), prog.BuildID)
			}
		}
	}
	if failed {
		return 1
	}
	return 0
}

// build analyzes and compiles the file at path, reporting its
// warnings to d.
func build(env *resolve.Env, c *compile.Compiler, d *diagnostics, path string) (*compile.Program, error) {
	ref, err := env.Cache.Get(path)
	if err != nil {
		return nil, err
	}
	a := resolve.NewAnalyzer(env, ref.File())
	err = a.Analyze()
	for _, w := range a.Warnings() {
		d.warning(w)
	}
	if err != nil {
		return nil, err
	}
	return c.Compile(ref.File())
}

// project returns the loader of the project, the resource paths of
// all its script files, and those of the files named by args.
func project(args []string) (load resolve.Loader, paths, targets []string, err error) {
	if *archive != "" {
		p, err := gdtest.ReadProject(*archive)
		if err != nil {
			return nil, nil, nil, errors.Wrap(err, "reading archive")
		}
		targets = p.Paths()
		if len(args) > 0 {
			targets = nil
			for _, arg := range args {
				targets = append(targets, gdtest.ResPath(arg))
			}
		}
		return p.Load, p.Paths(), targets, nil
	}

	dir, err := filepath.Abs(*root)
	if err != nil {
		return nil, nil, nil, err
	}
	load = func(path string) ([]byte, error) {
		rel := strings.TrimPrefix(path, "res://")
		if rel == path {
			return nil, errors.Errorf("%s: not a resource path", path)
		}
		return os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	}

	paths, err = scan(dir, dir)
	if err != nil {
		return nil, nil, nil, err
	}
	for _, arg := range args {
		list, err := scan(dir, arg)
		if err != nil {
			return nil, nil, nil, err
		}
		targets = append(targets, list...)
	}
	return load, paths, targets, nil
}

// scan returns the resource paths of the script files in the file
// tree rooted at name, relative to the project directory dir. If name
// is a file, it is returned whatever its extension.
func scan(dir, name string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(name, func(file string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() {
			if file != name && strings.HasPrefix(e.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if file != name && filepath.Ext(file) != ".gd" {
			return nil
		}
		abs, err := filepath.Abs(file)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, abs)
		if err != nil || strings.HasPrefix(rel, "..") {
			return errors.Errorf("%s is outside the project root %s", file, dir)
		}
		paths = append(paths, gdtest.ResPath(rel))
		return nil
	})
	return paths, errors.Wrapf(err, "scanning %s", name)
}

// diagnostics prints warnings and errors, in color if the output is
// a terminal.
type diagnostics struct {
	f     *os.File
	color bool
}

func newDiagnostics(f *os.File) *diagnostics {
	return &diagnostics{f: f, color: term.IsTerminal(int(f.Fd()))}
}

const (
	red    = "\x1b[31m"
	yellow = "\x1b[33m"
	reset  = "\x1b[0m"
)

func (d *diagnostics) print(color, kind string, pos syntax.Position, msg string) {
	if d.color {
		fmt.Fprintf(d.f, "%s: %s%s:%s %s\n", pos, color, kind, reset, msg)
	} else {
		fmt.Fprintf(d.f, "%s: %s: %s\n", pos, kind, msg)
	}
}

func (d *diagnostics) warning(w resolve.Warning) {
	d.print(yellow, "warning", w.Pos, fmt.Sprintf("%s (%s)", w.Msg, w.Code))
}

func (d *diagnostics) error(err error) {
	switch err := errors.Cause(err).(type) {
	case resolve.ErrorList:
		for _, e := range err {
			d.print(red, "error", e.Pos, e.Msg)
		}
	case syntax.Error:
		d.print(red, "error", err.Pos, err.Msg)
	case compile.Error:
		d.print(red, "error", err.Pos, err.Msg)
	default:
		if d.color {
			fmt.Fprintf(d.f, "%serror:%s %v\n", red, reset, err)
		} else {
			fmt.Fprintf(d.f, "error: %v\n", err)
		}
	}
}

func check(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

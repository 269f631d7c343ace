// Package repl provides a read/analyze/print loop for scripts.
//
// It supports readline-style command editing,
// and interrupts through Control-C.
//
// If an input line can be parsed as an expression, the REPL analyzes
// it in the body of a function and prints its static type, and its
// value if that is a constant. Otherwise the REPL reads lines until a
// blank line, then analyzes and compiles the input as a class file,
// printing its warnings and the disassembly of each function.
//
// A class declaring a class_name is remembered, so that later inputs
// may refer to it by name.
package repl // import "go.gdlang.net/repl"

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"

	"go.gdlang.net/internal/compile"
	"go.gdlang.net/resolve"
	"go.gdlang.net/syntax"
	"go.gdlang.net/variant"
)

// A session holds the state shared by the inputs of one REPL.
type session struct {
	env      *resolve.Env
	compiler *compile.Compiler
	n        int // number of inputs read
}

// REPL executes a read, analyze, print loop on the project env.
func REPL(env *resolve.Env) {
	rl, err := readline.New(">>> ")
	if err != nil {
		PrintError(err)
		return
	}
	defer rl.Close()
	s := &session{env: env, compiler: compile.New(env)}
	for {
		if err := s.rep(rl, os.Stdout); err != nil {
			if err == readline.ErrInterrupt {
				fmt.Println(err)
				continue
			}
			break
		}
	}
	fmt.Println()
}

// rep reads, analyzes, and prints one item.
//
// It returns an error (possibly readline.ErrInterrupt)
// only if readline failed. Script errors are printed.
func (s *session) rep(rl *readline.Instance, out io.Writer) error {
	eof := false

	// readline returns EOF, ErrInterrupted, or a line including "\n".
	rl.SetPrompt(">>> ")
	readline := func() ([]byte, error) {
		line, err := rl.Readline()
		rl.SetPrompt("... ")
		if err != nil {
			if err == io.EOF {
				eof = true
			}
			return nil, err
		}
		return []byte(line + "\n"), nil
	}

	first, err := readline()
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(first)) == 0 {
		return nil
	}
	s.n++
	path := fmt.Sprintf("res://<stdin:%d>.gd", s.n)

	if _, err := syntax.ParseExpr(path, first); err == nil {
		s.printExpr(out, path, first)
		return nil
	}

	src := first
	for !eof {
		line, err := readline()
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		if len(bytes.TrimSpace(line)) == 0 {
			break
		}
		src = append(src, line...)
	}
	s.printClass(out, path, src)
	return nil
}

// printExpr analyzes the expression src as the result of a function
// and prints its type.
func (s *session) printExpr(out io.Writer, path string, src []byte) {
	body := append([]byte("func _repl():\n\treturn "), src...)
	f, err := syntax.Parse(path, body)
	if err != nil {
		PrintError(err)
		return
	}
	warnings, err := resolve.File(f, s.env)
	printWarnings(warnings)
	if err != nil {
		PrintError(err)
		return
	}
	fn := f.Class.Lookup("_repl").(*syntax.FuncDecl)
	info := fn.Body.Stmts[0].(*syntax.ReturnStmt).Result.Info()
	if info.IsConstant {
		fmt.Fprintf(out, "%s = %s\n", info.DataType, variant.Repr(info.Constant))
	} else {
		fmt.Fprintln(out, info.DataType)
	}
}

// printClass compiles src as a class file and prints its code.
func (s *session) printClass(out io.Writer, path string, src []byte) {
	f, err := syntax.Parse(path, src)
	if err != nil {
		PrintError(err)
		return
	}
	if name := f.Class.Name; name != nil {
		if prev, ok := s.env.GlobalClasses[name.Name]; ok {
			PrintError(fmt.Errorf("%s: class %q is already declared by %s", name.NamePos, name.Name, prev))
			return
		}
	}
	warnings, err := resolve.File(f, s.env)
	printWarnings(warnings)
	if err != nil {
		PrintError(err)
		return
	}
	prog, err := s.compiler.Compile(f)
	if err != nil {
		PrintError(err)
		return
	}
	if name := f.Class.Name; name != nil {
		s.env.GlobalClasses[name.Name] = path
	}
	for _, fn := range prog.Functions {
		if err := fn.Disassemble(out); err != nil {
			PrintError(err)
			return
		}
	}
}

func printWarnings(warnings []resolve.Warning) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
}

// PrintError prints the error to stderr,
// or each of its messages if it is a list of analyzer errors.
func PrintError(err error) {
	switch err := errors.Cause(err).(type) {
	case resolve.ErrorList:
		for _, e := range err {
			fmt.Fprintln(os.Stderr, e)
		}
	default:
		fmt.Fprintln(os.Stderr, err)
	}
}

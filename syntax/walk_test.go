package syntax_test

import (
	"bytes"
	"fmt"
	"log"
	"reflect"
	"strings"
	"testing"

	"go.gdlang.net/syntax"
)

func TestWalk(t *testing.T) {
	const src = `
func f(x):
	if x:
		pass
	else:
		g([2 * x])
`
	f, err := syntax.Parse("hello.gd", src)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	var depth int
	syntax.Walk(f, func(n syntax.Node) bool {
		if n == nil {
			depth--
			return true
		}
		fmt.Fprintf(&buf, "%s%s\n",
			strings.Repeat("  ", depth),
			strings.TrimPrefix(reflect.TypeOf(n).String(), "*syntax."))
		depth++
		return true
	})
	got := buf.String()
	want := `
File
  ClassDecl
    FuncDecl
      Ident
      Param
        Ident
      Block
        IfStmt
          Ident
          Block
            BranchStmt
          Block
            ExprStmt
              CallExpr
                Ident
                ListExpr
                  BinaryExpr
                    Literal
                    Ident`
	got = strings.TrimSpace(got)
	want = strings.TrimSpace(want)
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestWalkPrune(t *testing.T) {
	f, err := syntax.Parse("hello.gd", "var a = b\nfunc f():\n\treturn c")
	if err != nil {
		t.Fatal(err)
	}
	var idents []string
	syntax.Walk(f, func(n syntax.Node) bool {
		switch n := n.(type) {
		case *syntax.FuncDecl:
			return false
		case *syntax.Ident:
			idents = append(idents, n.Name)
		}
		return true
	})
	if got := strings.Join(idents, " "); got != "a b" {
		t.Errorf("got %s, want a b", got)
	}
}

// ExampleWalk demonstrates the use of Walk to
// enumerate the identifiers in a script
// containing a nonsense program with varied grammar.
func ExampleWalk() {
	const src = `
extends a

var b: c = d
const e = f

func g(h, i = j) -> k:
	l += {m: n}
	var o = -(p)
	return q.r[s + t]

func u():
	for v in w:
		x(func(): return y, z)
`
	f, err := syntax.Parse("hello.gd", src)
	if err != nil {
		log.Fatal(err)
	}

	var idents []string
	syntax.Walk(f, func(n syntax.Node) bool {
		if id, ok := n.(*syntax.Ident); ok {
			idents = append(idents, id.Name)
		}
		return true
	})
	fmt.Println(strings.Join(idents, " "))

	// Output:
	// a b c d e f g h i j k l m n o p q r s t u v w x y z
}

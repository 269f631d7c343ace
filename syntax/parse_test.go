// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax_test

import (
	"bytes"
	"fmt"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.gdlang.net/gdtest"
	"go.gdlang.net/internal/chunkedfile"
	"go.gdlang.net/syntax"
)

func TestExprParseTrees(t *testing.T) {
	for _, test := range []struct {
		input, want string
	}{
		{`print(1)`,
			`(CallExpr Fn=print Args=(1))`},
		{"print(1)\n",
			`(CallExpr Fn=print Args=(1))`},
		{`x + 1`,
			`(BinaryExpr X=x Op=+ Y=1)`},
		{`x+y*z`,
			`(BinaryExpr X=x Op=+ Y=(BinaryExpr X=y Op=* Y=z))`},
		{`x%y-z`,
			`(BinaryExpr X=(BinaryExpr X=x Op=% Y=y) Op=- Y=z)`},
		{`a + b not in c`,
			`(BinaryExpr X=(BinaryExpr X=a Op=+ Y=b) Op=not in Y=c)`},
		{`not a and b`,
			`(BinaryExpr X=(UnaryExpr Op=not X=a) Op=and Y=b)`},
		{`!a || b`,
			`(BinaryExpr X=(UnaryExpr Op=! X=a) Op=|| Y=b)`},
		{`a & b | c ^ d`,
			`(BinaryExpr X=(BinaryExpr X=a Op=& Y=b) Op=| Y=(BinaryExpr X=c Op=^ Y=d))`},
		{`1 << 2 + 3`,
			`(BinaryExpr X=1 Op=<< Y=(BinaryExpr X=2 Op=+ Y=3))`},
		{`1 < 2 == true`,
			`(BinaryExpr X=(BinaryExpr X=1 Op=< Y=2) Op=== Y=true)`},
		{`-2 ** 2`,
			`(UnaryExpr Op=- X=(BinaryExpr X=2 Op=** Y=2))`},
		{`2 ** -1`,
			`(BinaryExpr X=2 Op=** Y=(UnaryExpr Op=- X=1))`},
		{`2 ** 3 ** 2`,
			`(BinaryExpr X=(BinaryExpr X=2 Op=** Y=3) Op=** Y=2)`},
		{`a if b else c`,
			`(CondExpr True=a Cond=b False=c)`},
		{`a if b else c if d else e`,
			`(CondExpr True=a Cond=b False=(CondExpr True=c Cond=d False=e))`},
		{`x as int`,
			`(CastExpr X=x Target=(TypeSpec Names=(int)))`},
		{`a + b as float`,
			`(CastExpr X=(BinaryExpr X=a Op=+ Y=b) Target=(TypeSpec Names=(float)))`},
		{`x is Node`,
			`(TypeTestExpr X=x Test=(TypeSpec Names=(Node)))`},
		{`x is not Array[int]`,
			`(TypeTestExpr X=x Not Test=(TypeSpec Names=(Array) Element=(TypeSpec Names=(int))))`},
		{`await get_tree().process_frame`,
			`(AwaitExpr X=(DotExpr X=(CallExpr Fn=get_tree) Name=process_frame))`},
		{`x[i].f(42)`,
			`(CallExpr Fn=(DotExpr X=(IndexExpr X=x Y=i) Name=f) Args=(42))`},
		{`x.f()`,
			`(CallExpr Fn=(DotExpr X=x Name=f))`},
		{`[]`,
			`(ListExpr)`},
		{`[1, 2,]`,
			`(ListExpr List=(1 2))`},
		{`{"one": 1}`,
			`(DictExpr Entries=((DictEntry Key="one" Value=1)))`},
		{`{a = 1, b = 2}`,
			`(DictExpr Entries=((DictEntry Key=&"a" Value=1) (DictEntry Key=&"b" Value=2)) Style=LuaTable)`},
		{`&"name" + ^"path/to"`,
			`(BinaryExpr X=&"name" Op=+ Y=^"path/to")`},
		{`super(1)`,
			`(CallExpr Args=(1))`},
		{`preload("res://a.gd")`,
			`(PreloadExpr Path="res://a.gd")`},
		{`self.x`,
			`(DotExpr X=(SelfExpr) Name=x)`},
		{`(1 + 2) * 3`,
			`(BinaryExpr X=(BinaryExpr X=1 Op=+ Y=2) Op=* Y=3)`},
		{`func(x): return x + 1`,
			`(LambdaExpr Func=(FuncDecl Params=((Param Name=x)) Body=((ReturnStmt Result=(BinaryExpr X=x Op=+ Y=1)))))`},
		{`f(func(): pass, 2)`,
			`(CallExpr Fn=f Args=((LambdaExpr Func=(FuncDecl Body=((BranchStmt Token=pass)))) 2))`},
		{`func named(a: int) -> int: return a`,
			`(LambdaExpr Func=(FuncDecl Name=named Params=((Param Name=a TypeSpec=(TypeSpec Names=(int)))) Return=(TypeSpec Names=(int)) Body=((ReturnStmt Result=a))))`},
		{`a not b`,
			`got identifier, want in`},
		{`1 if x`,
			`Expected "else" after ternary operator condition.`},
		{`{a = 1, "b": 2}`,
			`Expected identifier as dictionary key.`},
		{`{"b": 2, a = 1}`,
			`Expected ":" after dictionary key.`},
		{`super`,
			`Expected "(" or "." after "super".`},
		{`preload(x)`,
			`Preloaded path must be a constant string.`},
		{`1 2`,
			`got int literal after expression, want EOF`},
	} {
		e, err := syntax.ParseExpr("foo.gd", test.input)
		var got string
		if err != nil {
			got = stripPos(err)
		} else {
			got = treeString(e)
		}
		if test.want != got {
			t.Errorf("parse `%s` = %s, want %s", test.input, got, test.want)
		}
	}
}

// funcBody parses the lines of src as the body of a function.
func funcBody(src string) (*syntax.Block, error) {
	lines := strings.Split(src, "\n")
	f, err := syntax.Parse("foo.gd", "func f():\n\t"+strings.Join(lines, "\n\t")+"\n")
	if err != nil {
		return nil, err
	}
	return f.Class.Members[0].(*syntax.FuncDecl).Body, nil
}

func TestStmtParseTrees(t *testing.T) {
	for _, test := range []struct {
		input, want string
	}{
		{`print(1)`,
			`(ExprStmt X=(CallExpr Fn=print Args=(1)))`},
		{`return`,
			`(ReturnStmt)`},
		{`return 1`,
			`(ReturnStmt Result=1)`},
		{`var x: int = 1`,
			`(VarDecl Name=x TypeSpec=(TypeSpec Names=(int)) Init=1 Local)`},
		{`var y := 2.5`,
			`(VarDecl Name=y Infer Init=2.5 Local)`},
		{`var a: Array[String]`,
			`(VarDecl Name=a TypeSpec=(TypeSpec Names=(Array) Element=(TypeSpec Names=(String))) Local)`},
		{`const K = 3`,
			`(ConstDecl Name=K Init=3 Local)`},
		{`x += 1`,
			`(AssignStmt Op=+= LHS=x RHS=1)`},
		{`x.f = 1`,
			`(AssignStmt Op== LHS=(DotExpr X=x Name=f) RHS=1)`},
		{`x[i] = 1`,
			`(AssignStmt Op== LHS=(IndexExpr X=x Y=i) RHS=1)`},
		{`for i in range(3): pass`,
			`(ForStmt Var=i X=(CallExpr Fn=range Args=(3)) Body=((BranchStmt Token=pass)))`},
		{`for i: int in a: continue`,
			`(ForStmt Var=i TypeSpec=(TypeSpec Names=(int)) X=a Body=((BranchStmt Token=continue)))`},
		{`while true: break`,
			`(WhileStmt Cond=true Body=((BranchStmt Token=break)))`},
		{`if a: pass`,
			`(IfStmt Cond=a True=((BranchStmt Token=pass)))`},
		{"if a: pass\nelse:\n\tpass",
			`(IfStmt Cond=a True=((BranchStmt Token=pass)) False=((BranchStmt Token=pass)))`},
		{"if a: pass\nelif b: pass\nelse: pass",
			`(IfStmt Cond=a True=((BranchStmt Token=pass)) False=((IfStmt Cond=b True=((BranchStmt Token=pass)) False=((BranchStmt Token=pass)))))`},
		{`assert(x > 0, "msg")`,
			`(AssertStmt Cond=(BinaryExpr X=x Op=> Y=0) Message="msg")`},
		{`assert(x)`,
			`(AssertStmt Cond=x)`},
		{`breakpoint`,
			`(BranchStmt Token=breakpoint)`},
		{"match x:\n\t1, 2: pass\n\t[var a, ..]: pass\n\t_: pass",
			`(MatchStmt X=x Branches=(` +
				`(MatchBranch Patterns=((LiteralPattern Lit=1) (LiteralPattern Lit=2)) Body=((BranchStmt Token=pass))) ` +
				`(MatchBranch Patterns=((ArrayPattern Elems=((BindPattern Name=a) (RestPattern)))) Body=((BranchStmt Token=pass))) ` +
				`(MatchBranch Patterns=((WildcardPattern)) Body=((BranchStmt Token=pass)) HasWildcard)))`},
		{"match x:\n\t{\"k\": var v, ..}: pass",
			`(MatchStmt X=x Branches=((MatchBranch Patterns=((DictPattern Entries=((DictPatternEntry Key="k" Value=(BindPattern Name=v))) Rest)) Body=((BranchStmt Token=pass)))))`},
		{"match x:\n\t1: continue\n\t_: pass",
			`(MatchStmt X=x Branches=(` +
				`(MatchBranch Patterns=((LiteralPattern Lit=1)) Body=((BranchStmt Token=continue Match))) ` +
				`(MatchBranch Patterns=((WildcardPattern)) Body=((BranchStmt Token=pass)) HasWildcard)))`},
		{"match x:\n\t_:\n\t\twhile a: continue",
			`(MatchStmt X=x Branches=((MatchBranch Patterns=((WildcardPattern)) Body=((WhileStmt Cond=a Body=((BranchStmt Token=continue)))) HasWildcard)))`},
		{"while a:\n\tmatch x:\n\t\t_: continue",
			`(WhileStmt Cond=a Body=((MatchStmt X=x Branches=((MatchBranch Patterns=((WildcardPattern)) Body=((BranchStmt Token=continue Match)) HasWildcard)))))`},
		{"match x:\n\t-1, K.V: pass",
			`(MatchStmt X=x Branches=((MatchBranch Patterns=((LiteralPattern Lit=-1) (ExprPattern X=(DotExpr X=K Name=V))) Body=((BranchStmt Token=pass)))))`},
		{"f();g()",
			`(ExprStmt X=(CallExpr Fn=f))`},
		{"f();",
			`(ExprStmt X=(CallExpr Fn=f))`},
	} {
		body, err := funcBody(test.input)
		if err != nil {
			t.Errorf("parse `%s` failed: %v", test.input, stripPos(err))
			continue
		}
		if got := treeString(body.Stmts[0]); test.want != got {
			t.Errorf("parse `%s` = %s, want %s", test.input, got, test.want)
		}
	}
}

// TestFileParseTrees tests class members, and particularly handling of
// annotations, indentation, newlines, and blank lines.
func TestFileParseTrees(t *testing.T) {
	for _, test := range []struct {
		input, want string
	}{
		{`signal hit(damage: int)`,
			`(SignalDecl Name=hit Params=((Param Name=damage TypeSpec=(TypeSpec Names=(int)))))`},
		{`signal done`,
			`(SignalDecl Name=done)`},
		{`enum State { IDLE, RUN = 5 }`,
			`(EnumDecl Name=State Values=((EnumValue Name=IDLE) (EnumValue Name=RUN Init=5)))`},
		{`enum { A, B, }`,
			`(EnumValue Name=A)
(EnumValue Name=B)`},
		{`@export var speed := 10.0`,
			`(VarDecl Name=speed Infer Init=10.0 Export)`},
		{"@export_range(0, 10)\nvar n = 1",
			`(VarDecl Name=n Init=1 Export)`},
		{`@onready var n = get_node("x")`,
			`(VarDecl Name=n Init=(CallExpr Fn=get_node Args=("x")) Onready)`},
		{`@export_group("Stats")`,
			`(GroupDecl Annotation=export_group Name=Stats)`},
		{"var hp: int = 0:\n\tset(value):\n\t\thp = value\n\tget:\n\t\treturn hp",
			`(VarDecl Name=hp TypeSpec=(TypeSpec Names=(int)) Init=0 ` +
				`Setter=(FuncDecl Name=@hp_setter Params=((Param Name=value)) Body=((AssignStmt Op== LHS=hp RHS=value))) ` +
				`Getter=(FuncDecl Name=@hp_getter Body=((ReturnStmt Result=hp))))`},
		{`var y = 0: set = set_y, get = get_y`,
			`(VarDecl Name=y Init=0 SetterName=set_y GetterName=get_y)`},
		{"var z:\n\tget = get_z",
			`(VarDecl Name=z GetterName=get_z)`},
		{"static func make(a, b = 10) -> int:\n\treturn a + b",
			`(FuncDecl Name=make Params=((Param Name=a) (Param Name=b Default=10)) Return=(TypeSpec Names=(int)) Body=((ReturnStmt Result=(BinaryExpr X=a Op=+ Y=b))) Static)`},
		{`func f(): return 1`,
			`(FuncDecl Name=f Body=((ReturnStmt Result=1)))`},
		{`const C: float = 1.5`,
			`(ConstDecl Name=C TypeSpec=(TypeSpec Names=(float)) Init=1.5)`},
		{"class Inner extends Node:\n\tvar x",
			`(ClassDecl Name=Inner Extends=(Extends Names=(Node)) Members=((VarDecl Name=x)))`},
		{"class Empty: pass",
			`(ClassDecl Name=Empty)`},
		{`var a = 1; var b = 2`,
			`(VarDecl Name=a Init=1)
(VarDecl Name=b Init=2)`},
		{"var f = func(x):\n\treturn x\nvar g = 1",
			`(VarDecl Name=f Init=(LambdaExpr Func=(FuncDecl Params=((Param Name=x)) Body=((ReturnStmt Result=x)))))
(VarDecl Name=g Init=1)`},
		{"func f():\n\tpass\n\n\nfunc g():\n\tpass",
			`(FuncDecl Name=f Body=((BranchStmt Token=pass)))
(FuncDecl Name=g Body=((BranchStmt Token=pass)))`},
		{"var x = (1 +\n2)",
			`(VarDecl Name=x Init=(BinaryExpr X=1 Op=+ Y=2))`},
		{"var x = 1 \\\n+ 2",
			`(VarDecl Name=x Init=(BinaryExpr X=1 Op=+ Y=2))`},
	} {
		f, err := syntax.Parse("foo.gd", test.input)
		if err != nil {
			t.Errorf("parse `%s` failed: %v", test.input, stripPos(err))
			continue
		}
		var buf bytes.Buffer
		for i, m := range f.Class.Members {
			if i > 0 {
				buf.WriteByte('\n')
			}
			writeTree(&buf, reflect.ValueOf(m))
		}
		if got := buf.String(); test.want != got {
			t.Errorf("parse `%s` = %s, want %s", test.input, got, test.want)
		}
	}
}

func TestClassHeader(t *testing.T) {
	for _, test := range []struct {
		input, want string
	}{
		{"extends Node\nclass_name Foo",
			`(ClassDecl Name=Foo Extends=(Extends Names=(Node)))`},
		{"class_name Foo extends Node",
			`(ClassDecl Name=Foo Extends=(Extends Names=(Node)))`},
		{`extends "res://base.gd".Inner`,
			`(ClassDecl Extends=(Extends Path="res://base.gd" Names=(Inner)))`},
		{"@tool\nextends Node",
			`(ClassDecl Extends=(Extends Names=(Node)) Tool)`},
		{"@onready var x = 1",
			`(ClassDecl Members=((VarDecl Name=x Init=1 Onready)) OnreadyUsed)`},
	} {
		f, err := syntax.Parse("foo.gd", test.input)
		if err != nil {
			t.Errorf("parse `%s` failed: %v", test.input, stripPos(err))
			continue
		}
		if got := treeString(f.Class); test.want != got {
			t.Errorf("parse `%s` = %s, want %s", test.input, got, test.want)
		}
	}
}

// TestLocalBindings checks that the parser tags each use of a local
// with the kind of its declaration.
func TestLocalBindings(t *testing.T) {
	const src = `
func f(a):
	var b = a
	for i in b:
		print(i)
	var g = func(): return a + b
	match a:
		var m: print(m)
`
	f, err := syntax.Parse("foo.gd", src)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	syntax.Walk(f, func(n syntax.Node) bool {
		if id, ok := n.(*syntax.Ident); ok {
			got = append(got, id.Name+":"+strings.ReplaceAll(id.Source.String(), " ", "_"))
		}
		return true
	})
	want := strings.Fields(`f:undefined a:parameter b:local_variable a:parameter
		i:for_loop_iterator b:local_variable print:undefined i:for_loop_iterator
		g:local_variable a:parameter b:local_variable
		a:parameter m:pattern_bind print:undefined m:pattern_bind`)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("local bindings (-want +got):\n%s", diff)
	}

	// A local used in a lambda is declared by the enclosing function.
	fn := f.Class.Members[0].(*syntax.FuncDecl)
	lambda := fn.Body.Stmts[2].(*syntax.VarDecl).Init.(*syntax.LambdaExpr)
	syntax.Walk(lambda.Func.Body, func(n syntax.Node) bool {
		if id, ok := n.(*syntax.Ident); ok && id.DeclFunc != fn {
			t.Errorf("%s: DeclFunc = %v, want f", id.Name, id.DeclFunc)
		}
		return true
	})
}

func TestWarningIgnore(t *testing.T) {
	const src = `@warning_ignore("unused_variable")
var x = 1

func f():
	@warning_ignore("narrowing_conversion", "integer_division")
	var y = 1 / 2
	return y
`
	f, err := syntax.Parse("foo.gd", src)
	if err != nil {
		t.Fatal(err)
	}
	type region struct {
		Start, End int32
		Codes      []string
	}
	var got []region
	for _, ig := range f.Ignores {
		got = append(got, region{ig.Start.Line, ig.End.Line, ig.Codes})
	}
	want := []region{
		{1, 2, []string{"UNUSED_VARIABLE"}},
		{5, 6, []string{"NARROWING_CONVERSION", "INTEGER_DIVISION"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ignores (-want +got):\n%s", diff)
	}
}

func TestSpan(t *testing.T) {
	f, err := syntax.Parse("foo.gd", "var x = foo(1)\nfunc g():\n\treturn x")
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []string{
		"foo.gd:1:1 foo.gd:1:15",
		"foo.gd:2:1 foo.gd:3:10",
	} {
		if got := fmt.Sprint(f.Class.Members[i].Span()); got != want {
			t.Errorf("member %d: span = %q, want %q", i, got, want)
		}
	}
}

func stripPos(err error) string {
	s := err.Error()
	if i := strings.Index(s, ": "); i >= 0 {
		s = s[i+len(": "):] // strip file:line:col
	}
	return s
}

// treeString prints a syntax node as a parenthesized tree.
// Idents are printed as foo and Literals as "foo" or 42.
// Structs are printed as (type name=value ...).
// Only non-empty fields are shown. Back references to enclosing
// nodes and facts recorded by the resolver are omitted.
func treeString(n syntax.Node) string {
	var buf bytes.Buffer
	writeTree(&buf, reflect.ValueOf(n))
	return buf.String()
}

var skipTypes = map[reflect.Type]bool{
	reflect.TypeOf(syntax.Position{}): true,
	reflect.TypeOf(syntax.DataType{}): true,
	reflect.TypeOf(syntax.ExprInfo{}): true,
	reflect.TypeOf(syntax.Source(0)):  true,
}

var skipFields = map[string]bool{
	"Block.Parent":      true,
	"Block.Func":        true,
	"Block.Locals":      true,
	"ClassDecl.Outer":   true,
	"ClassDecl.Path":    true,
	"FuncDecl.Class":    true,
	"FuncDecl.Outer":    true,
	"FuncDecl.Lambda":   true,
	"FuncDecl.Property": true,
	"EnumValue.Parent":  true,
	"EnumValue.Index":   true,
	"Ident.Decl":        true,
	"Ident.DeclFunc":    true,
}

func writeTree(out *bytes.Buffer, x reflect.Value) {
	switch x.Kind() {
	case reflect.String, reflect.Int, reflect.Bool:
		fmt.Fprintf(out, "%v", x.Interface())
	case reflect.Ptr, reflect.Interface:
		if elem := x.Elem(); elem.Kind() == 0 {
			out.WriteString("nil")
		} else {
			writeTree(out, elem)
		}
	case reflect.Struct:
		switch v := x.Interface().(type) {
		case syntax.Literal:
			switch v.Token {
			case syntax.STRING:
				fmt.Fprintf(out, "%q", v.Value.String())
			case syntax.STRING_NAME:
				fmt.Fprintf(out, "&%q", v.Value.String())
			case syntax.NODE_PATH:
				fmt.Fprintf(out, "^%q", v.Value.String())
			case syntax.INT:
				fmt.Fprintf(out, "%d", v.Value)
			default:
				out.WriteString(v.Raw)
			}
			return
		case syntax.Ident:
			out.WriteString(v.Name)
			return
		case syntax.Block:
			out.WriteByte('(')
			for i, stmt := range v.Stmts {
				if i > 0 {
					out.WriteByte(' ')
				}
				writeTree(out, reflect.ValueOf(stmt))
			}
			out.WriteByte(')')
			return
		}
		typename := strings.TrimPrefix(x.Type().String(), "syntax.")
		fmt.Fprintf(out, "(%s", typename)
		for i, n := 0, x.NumField(); i < n; i++ {
			f := x.Field(i)
			field := x.Type().Field(i)
			name := field.Name
			if !field.IsExported() || skipTypes[f.Type()] || skipFields[typename+"."+name] {
				continue
			}
			if f.Type() == reflect.TypeOf(syntax.Token(0)) {
				fmt.Fprintf(out, " %s=%s", name, f.Interface())
				continue
			}
			if f.Type() == reflect.TypeOf(syntax.DictStyle(0)) {
				if f.Uint() != 0 {
					fmt.Fprintf(out, " %s=%s", name, f.Interface())
				}
				continue
			}

			switch f.Kind() {
			case reflect.Slice:
				if n := f.Len(); n > 0 {
					fmt.Fprintf(out, " %s=(", name)
					for i := 0; i < n; i++ {
						if i > 0 {
							out.WriteByte(' ')
						}
						writeTree(out, f.Index(i))
					}
					out.WriteByte(')')
				}
				continue
			case reflect.Ptr, reflect.Interface:
				if f.IsNil() {
					continue
				}
			case reflect.String:
				if f.Len() > 0 {
					fmt.Fprintf(out, " %s=%s", name, f.String())
				}
				continue
			case reflect.Int, reflect.Int64, reflect.Uint8:
				continue // resolver counters and operators
			case reflect.Bool:
				if f.Bool() {
					fmt.Fprintf(out, " %s", name)
				}
				continue
			}
			fmt.Fprintf(out, " %s=", name)
			writeTree(out, f)
		}
		fmt.Fprintf(out, ")")
	default:
		fmt.Fprintf(out, "%T", x.Interface())
	}
}

func TestParseErrors(t *testing.T) {
	filename := gdtest.DataFile("syntax", "testdata/errors.gd")
	for _, chunk := range chunkedfile.Read(filename, t) {
		_, err := syntax.Parse(filename, chunk.Source)
		switch err := err.(type) {
		case nil:
			// ok
		case syntax.Error:
			chunk.GotError(int(err.Pos.Line), err.Msg)
		default:
			t.Error(err)
		}
		chunk.Done()
	}
}

func BenchmarkParse(b *testing.B) {
	filename := gdtest.DataFile("syntax", "testdata/scan.gd")
	b.StopTimer()
	data, err := os.ReadFile(filename)
	if err != nil {
		b.Fatal(err)
	}
	b.StartTimer()

	for i := 0; i < b.N; i++ {
		_, err := syntax.Parse(filename, data)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func scan(src interface{}) (tokens string, err error) {
	sc, err := newScanner("foo.gd", src)
	if err != nil {
		return "", err
	}

	defer sc.recover(&err)

	var buf bytes.Buffer
	var val tokenValue
	for {
		tok := sc.nextToken(&val)

		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		switch tok {
		case EOF:
			buf.WriteString("EOF")
		case IDENT:
			buf.WriteString(val.raw)
		case INT:
			fmt.Fprintf(&buf, "%d", val.int)
		case FLOAT:
			fmt.Fprintf(&buf, "%e", val.float)
		case STRING:
			buf.WriteString(Quote(val.string))
		case STRING_NAME:
			buf.WriteString("&" + Quote(val.string))
		case NODE_PATH:
			buf.WriteString("^" + Quote(val.string))
		case ANNOTATION:
			buf.WriteString("@" + val.string)
		default:
			buf.WriteString(tok.String())
		}
		if tok == EOF {
			break
		}
	}
	return buf.String(), nil
}

func TestScanner(t *testing.T) {
	for _, test := range []struct {
		input, want string
	}{
		{``, "EOF"},
		{`123`, "123 EOF"},
		{`x.y`, "x . y EOF"},
		{`chocolate.éclair`, `chocolate . éclair EOF`},
		{`123 "foo" hello x.y`, `123 "foo" hello x . y EOF`},
		{`print(x)`, "print ( x ) EOF"},
		{`print(x); print(y)`, "print ( x ) ; print ( y ) EOF"},
		{"\nprint(\n1\n)\n", "print ( 1 ) newline EOF"}, // final \n is at toplevel on non-blank line => token
		{`a+b-c`, "a + b - c EOF"},
		{`x := 1`, "x := 1 EOF"},
		{`x **= 2`, "x **= 2 EOF"},
		{`x <<= 1 >>= 2`, "x <<= 1 >>= 2 EOF"},
		{`a && b || !c`, "a && b || ! c EOF"},
		{`a and b or not c`, "a and b or not c EOF"},
		{`func f() -> int`, "func f ( ) -> int EOF"},
		{`&"name" ^"path/to"`, `&"name" ^"path/to" EOF`},
		{`a & b ^ c`, "a & b ^ c EOF"},
		{`@export var x`, "@export var x EOF"},
		{`@warning_ignore("unused")`, `@warning_ignore ( "unused" ) EOF`},
		{`0x1F 0b101 1_000 010`, "31 5 1000 10 EOF"},
		{`1.5 .5 1e3 2.`, "1.500000e+00 5.000000e-01 1.000000e+03 2.000000e+00 EOF"},
		{`1.x`, "1 . x EOF"},
		{`[1, ..]`, "[ 1 , .. ] EOF"},
		{`x is not y`, "x is not y EOF"},
		{`x as int`, "x as int EOF"},
		{`"a\tb"`, `"a\tb" EOF`},
		{`'single'`, `"single" EOF`},
		{`'''tri'''`, `"tri" EOF`},
		{`"""a
b"""`, `"a\nb" EOF`},
		{`# hello
print(x)`, "print ( x ) EOF"},
		{"if x:\n\tpass\nelse:\n\tpass\n",
			"if x : newline indent pass newline outdent else : newline indent pass newline outdent EOF"},
		{"if x:\n\tpass", "if x : newline indent pass newline outdent EOF"},
		{"if x:\n\tif y:\n\t\tpass\nz", "if x : newline indent if y : newline indent pass newline outdent outdent z EOF"},
		{"if x:\n    pass\n\n    # comment\n    pass", "if x : newline indent pass newline pass newline outdent EOF"},
		{"f(\n1,\n2)\n", "f ( 1 , 2 ) newline EOF"},
		{"x # comment\ny", "x newline y EOF"},
		{"x = 1 + \\\n2", "x = 1 + 2 EOF"},
		{"  x", "indent x newline outdent EOF"},
		{"x\r\ny", "x newline y EOF"},
		{`"unterminated`, "foo.gd:1:1: unterminated string literal"},
		{`"bad \q"`, `foo.gd:1:1: invalid escape sequence \q`},
		{`x = 1 $ 2`, "foo.gd:1:7: unexpected input character '$'"},
		{`)`, `foo.gd:1:1: unexpected ')'`},
		{`0x`, "foo.gd:1:1: invalid hex literal"},
		{`0b2`, "foo.gd:1:1: invalid binary literal"},
		{`1e`, "foo.gd:1:1: invalid float literal"},
		{`99999999999999999999`, "foo.gd:1:1: integer literal is too large"},
		{`@ x`, "foo.gd:1:2: expected annotation name after '@'"},
		{"x \\ y", "foo.gd:1:4: stray backslash in program"},
		{"if x:\n \tpass", "foo.gd:2:3: mixed use of tabs and spaces for indentation"},
		{"if x:\n\t\tpass\n\tpass", "foo.gd:3:2: unindent does not match any outer indentation level"},
	} {
		got, err := scan(test.input)
		if err != nil {
			got = err.(Error).Error()
		}
		if test.want != got {
			t.Errorf("scan `%s` = [%s], want [%s]", test.input, got, test.want)
		}
	}
}

func TestScanPositions(t *testing.T) {
	sc, err := newScanner("foo.gd", "var x\n\tf(é, 2)")
	if err != nil {
		t.Fatal(err)
	}
	var val tokenValue
	var got []string
	for {
		tok := sc.nextToken(&val)
		if tok == EOF {
			break
		}
		got = append(got, fmt.Sprintf("%s@%d:%d", tok, val.pos.Line, val.pos.Col))
	}
	want := "[var@1:1 identifier@1:5 newline@1:6 indent@2:2 identifier@2:2 (@2:3 identifier@2:4 ,@2:5 int literal@2:7 )@2:8 newline@2:9 outdent@2:9]"
	if s := fmt.Sprint(got); s != want {
		t.Errorf("positions = %s, want %s", s, want)
	}
}

// dataFile is the same as gdtest.DataFile.
// We make a copy to avoid a dependency cycle.
var dataFile = func(pkgdir, filename string) string {
	return filepath.Join(pkgdir, filename)
}

func BenchmarkScan(b *testing.B) {
	filename := dataFile("", "testdata/scan.gd")
	b.StopTimer()
	data, err := os.ReadFile(filename)
	if err != nil {
		b.Fatal(err)
	}
	b.StartTimer()

	for i := 0; i < b.N; i++ {
		sc, err := newScanner(filename, data)
		if err != nil {
			b.Fatal(err)
		}
		var val tokenValue
		for sc.nextToken(&val) != EOF {
		}
	}
}

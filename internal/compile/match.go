// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compile

import (
	"go.gdlang.net/syntax"
	"go.gdlang.net/variant"
)

// matchStmt lowers a match statement into a chain of tests. The
// matched value is copied once; each branch tests its patterns in
// order and the first branch that matches runs. A continue in a
// branch body resumes with the tests of the following branch.
func (fc *fcomp) matchStmt(s *syntax.MatchStmt) {
	g := fc.gen
	value := g.addTemporary(s.X.Info().DataType)
	x := fc.expr(s.X)
	g.emit(ASSIGN, value.encode(), x.encode())
	g.release(x)

	end := g.newLabel()
	for _, branch := range s.Branches {
		next := g.newLabel()
		cond := fc.branchCondition(value, branch.Patterns)
		g.jumpIfNot(cond, next)
		g.release(cond)
		fc.cases = append(fc.cases, next)
		fc.block(branch.Body)
		fc.cases = fc.cases[:len(fc.cases)-1]
		g.jump(end)
		g.bind(next)
	}
	g.bind(end)
	g.release(value)
}

// branchCondition returns the address of a bool that is true if any
// of the patterns matches value.
func (fc *fcomp) branchCondition(value Address, patterns []syntax.Pattern) Address {
	if len(patterns) == 1 {
		return fc.pattern(value, patterns[0])
	}
	g := fc.gen
	dst := g.addTemporary(boolType)
	g.beginOr()
	for _, p := range patterns {
		r := fc.pattern(value, p)
		g.orOperand(r)
		g.release(r)
	}
	g.endOr(dst)
	return dst
}

var boolType = syntax.MakeBuiltinType(variant.BOOL)

// pattern returns the address of a bool that is true if p matches
// value, binding the variables of p as a side effect.
func (fc *fcomp) pattern(value Address, p syntax.Pattern) Address {
	g := fc.gen
	switch p := p.(type) {
	case *syntax.LiteralPattern:
		return fc.equalPattern(value, p.Lit)

	case *syntax.ExprPattern:
		return fc.equalPattern(value, p.X)

	case *syntax.BindPattern:
		local := fc.addLocal(p.Name.Name, p.Name.NamePos, p.Type)
		fc.vars[p] = local
		g.emit(ASSIGN, local.encode(), value.encode())
		return g.boolean(true)

	case *syntax.WildcardPattern, *syntax.RestPattern:
		return g.boolean(true)

	case *syntax.ArrayPattern:
		dst := g.addTemporary(boolType)
		g.beginAnd()
		test := g.addTemporary(boolType)
		g.emit(TYPE_TEST_BUILTIN, test.encode(), value.encode(), uint32(variant.ARRAY))
		g.andOperand(test)

		n := len(p.Elems)
		if p.HasRest() {
			n--
		}
		fc.lengthTest(test, value, n, p.HasRest())

		for i, e := range p.Elems[:n] {
			elem := g.addTemporary(syntax.MakeVariantType())
			g.emit(GET_INDEXED, elem.encode(), value.encode(), g.constant(variant.Int(i)).encode())
			r := fc.pattern(elem, e)
			g.andOperand(r)
			g.release(r)
			g.release(elem)
		}
		g.release(test)
		g.endAnd(dst)
		return dst

	case *syntax.DictPattern:
		dst := g.addTemporary(boolType)
		g.beginAnd()
		test := g.addTemporary(boolType)
		g.emit(TYPE_TEST_BUILTIN, test.encode(), value.encode(), uint32(variant.DICTIONARY))
		g.andOperand(test)
		fc.lengthTest(test, value, len(p.Entries), p.Rest)

		for _, entry := range p.Entries {
			key := fc.expr(entry.Key)
			g.emit(OPERATOR, test.encode(), uint32(variant.OpIn), key.encode(), value.encode())
			g.andOperand(test)
			if entry.Value != nil {
				elem := g.addTemporary(syntax.MakeVariantType())
				g.emit(GET_INDEXED, elem.encode(), value.encode(), key.encode())
				r := fc.pattern(elem, entry.Value)
				g.andOperand(r)
				g.release(r)
				g.release(elem)
			}
			g.release(key)
		}
		g.release(test)
		g.endAnd(dst)
		return dst
	}
	internalErrorf("unexpected pattern %T", p)
	panic("unreachable")
}

// equalPattern tests that value has the type of the constant x and
// equals it. The type test keeps 1 from matching "1", and tolerates
// int against float and String against StringName.
func (fc *fcomp) equalPattern(value Address, x syntax.Expr) Address {
	g := fc.gen
	dst := g.addTemporary(boolType)
	g.beginAnd()
	c := fc.expr(x)
	test := g.addTemporary(boolType)
	g.emit(MATCH_TYPE, test.encode(), value.encode(), uint32(x.Info().Constant.Type()))
	g.andOperand(test)
	g.emit(OPERATOR, test.encode(), uint32(variant.OpEqual), value.encode(), c.encode())
	g.andOperand(test)
	g.release(test)
	g.release(c)
	g.endAnd(dst)
	return dst
}

// lengthTest stores in test whether the length of value is n, or at
// least n if rest is set, and ends the operand of the current and.
func (fc *fcomp) lengthTest(test, value Address, n int, rest bool) {
	g := fc.gen
	size := g.addTemporary(syntax.MakeBuiltinType(variant.INT))
	g.emitList(CALL_LANGUAGE_UTILITY, []Address{value}, size.encode(), g.name("len"))
	op := variant.OpEqual
	if rest {
		op = variant.OpGreaterEqual
	}
	g.emit(OPERATOR, test.encode(), uint32(op), size.encode(), g.constant(variant.Int(n)).encode())
	g.release(size)
	g.andOperand(test)
}

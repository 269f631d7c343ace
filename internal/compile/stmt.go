// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compile

import "go.gdlang.net/syntax"

func (fc *fcomp) block(b *syntax.Block) {
	for _, s := range b.Stmts {
		fc.setLine(syntax.Start(s))
		fc.balanced(func() { fc.stmt(s) })
	}
}

func (fc *fcomp) stmt(s syntax.Stmt) {
	g := fc.gen
	switch s := s.(type) {
	case *syntax.ExprStmt:
		if call, ok := s.X.(*syntax.CallExpr); ok {
			fc.call(call, true)
			break
		}
		g.release(fc.expr(s.X))

	case *syntax.VarDecl:
		dst := fc.addLocal(s.Name.Name, s.Name.NamePos, s.Type)
		fc.vars[s] = dst
		if s.Init != nil {
			src := fc.expr(s.Init)
			fc.assign(dst, src, s.ConversionAssign)
			g.release(src)
		} else {
			// A declaration in a loop body must not see the value
			// of the previous iteration.
			fc.initialize(dst, s.Type)
		}

	case *syntax.ConstDecl:
		if s.Init == nil || !s.Init.Info().IsConstant {
			errorf(s, "Local constant must have a constant value as initializer.")
		}
		// Uses are folded to the value.

	case *syntax.AssignStmt:
		fc.assignStmt(s)

	case *syntax.IfStmt:
		cond := fc.expr(s.Cond)
		orelse := g.newLabel()
		g.jumpIfNot(cond, orelse)
		g.release(cond)
		fc.block(s.True)
		if s.False != nil {
			done := g.newLabel()
			g.jump(done)
			g.bind(orelse)
			fc.block(s.False)
			g.bind(done)
		} else {
			g.bind(orelse)
		}

	case *syntax.WhileStmt:
		head := g.newLabel()
		done := g.newLabel()
		g.bind(head)
		cond := fc.expr(s.Cond)
		g.jumpIfNot(cond, done)
		g.release(cond)
		fc.loops = append(fc.loops, loop{brk: done, cont: head})
		fc.block(s.Body)
		fc.loops = fc.loops[:len(fc.loops)-1]
		g.jump(head)
		g.bind(done)

	case *syntax.ForStmt:
		fc.forStmt(s)

	case *syntax.MatchStmt:
		fc.matchStmt(s)

	case *syntax.BranchStmt:
		switch s.Token {
		case syntax.PASS:
		case syntax.BREAKPOINT:
			g.emit(BREAKPOINT)
		case syntax.CONTINUE:
			if s.Match {
				if len(fc.cases) == 0 {
					internalErrorf("%s: continue outside match", s.TokenPos)
				}
				g.jump(fc.cases[len(fc.cases)-1])
				break
			}
			fallthrough
		case syntax.BREAK:
			if len(fc.loops) == 0 {
				internalErrorf("%s: %s outside loop", s.TokenPos, s.Token)
			}
			l := fc.loops[len(fc.loops)-1]
			if s.Token == syntax.BREAK {
				g.jump(l.brk)
			} else {
				g.jump(l.cont)
			}
		default:
			internalErrorf("%s: unexpected branch %s", s.TokenPos, s.Token)
		}

	case *syntax.ReturnStmt:
		switch {
		case s.Result == nil:
			g.emit(RETURN, nilAddr.encode())
		case s.VoidReturn:
			fc.call(s.Result.(*syntax.CallExpr), true)
			g.emit(RETURN, nilAddr.encode())
		default:
			fc.hasReturnValue = true
			x := fc.expr(s.Result)
			g.emit(RETURN, x.encode())
			g.release(x)
		}

	case *syntax.AssertStmt:
		cond := fc.expr(s.Cond)
		msg := nilAddr
		if s.Message != nil {
			msg = fc.expr(s.Message)
		}
		g.emit(ASSERT, cond.encode(), msg.encode())
		g.release(msg)
		g.release(cond)

	default:
		internalErrorf("unexpected statement %T", s)
	}
}

// forStmt lowers a for loop:
//
//	    iterate_begin counter, container, var, done
//	body:
//	    ...
//	continue:
//	    iterate counter, container, var, done
//	    jump body
//	done:
//
// A call of range() with constant arguments is folded by the analyzer
// into an int, Vector2i or Vector3i holding its bounds.
func (fc *fcomp) forStmt(s *syntax.ForStmt) {
	g := fc.gen
	counter := g.addTemporary(syntax.MakeVariantType())
	container := g.addTemporary(s.X.Info().DataType)
	x := fc.expr(s.X)
	g.emit(ASSIGN, container.encode(), x.encode())
	g.release(x)

	v := fc.addLocal(s.Var.Name, s.Var.NamePos, s.VarType)
	fc.vars[s] = v

	body, cont, done := g.newLabel(), g.newLabel(), g.newLabel()
	g.emit(ITERATE_BEGIN, counter.encode(), container.encode(), v.encode(), uint32(done))
	g.bind(body)
	fc.loops = append(fc.loops, loop{brk: done, cont: cont})
	fc.block(s.Body)
	fc.loops = fc.loops[:len(fc.loops)-1]
	g.bind(cont)
	g.emit(ITERATE, counter.encode(), container.encode(), v.encode(), uint32(done))
	g.jump(body)
	g.bind(done)

	g.release(container)
	g.release(counter)
}

// ---- assignment ----

func (fc *fcomp) assignStmt(s *syntax.AssignStmt) {
	switch lhs := s.LHS.(type) {
	case *syntax.Ident:
		fc.assignIdent(s, lhs)
	case *syntax.DotExpr, *syntax.IndexExpr:
		fc.assignSubscript(s)
	default:
		internalErrorf("%s: assignment to %T", s.OpPos, s.LHS)
	}
}

// value returns the address of the value to store by s. For an
// augmented assignment, current loads the value of the target.
func (fc *fcomp) value(s *syntax.AssignStmt, current func() Address) Address {
	if s.Op == syntax.EQ {
		return fc.expr(s.RHS)
	}
	g := fc.gen
	dst := g.addTemporary(s.LHS.Info().DataType)
	x := current()
	y := fc.expr(s.RHS)
	g.emit(OPERATOR, dst.encode(), uint32(s.Operator), x.encode(), y.encode())
	g.release(y)
	g.release(x)
	return dst
}

func (fc *fcomp) assignIdent(s *syntax.AssignStmt, id *syntax.Ident) {
	g := fc.gen
	load := func() Address { return fc.ident(id) }
	switch id.Source {
	case syntax.Parameter, syntax.LocalVariable, syntax.LocalIterator, syntax.LocalBind:
		dst := fc.ident(id)
		dst.Type = s.LHS.Info().DataType
		src := fc.value(s, load)
		fc.assign(dst, src, s.ConversionAssign)
		g.release(src)

	case syntax.MemberVariable:
		m := fc.script.Member(id.Name)
		if m == nil {
			internalErrorf("%s: member %s not in the table of %s", id.NamePos, id.Name, fc.script.FQCN)
		}
		src := fc.value(s, load)
		if m.Setter != "" && !fc.inAccessor(m) {
			g.emitList(CALL_SELF, []Address{src}, nilAddr.encode(), g.name(m.Setter))
		} else {
			dst := Address{Mode: AddrMember, Index: uint32(m.Index), Type: id.DataType}
			fc.assign(dst, src, s.ConversionAssign)
		}
		g.release(src)

	case syntax.InheritedVariable:
		src := fc.value(s, load)
		g.emit(SET_MEMBER, g.name(id.Name), src.encode())
		g.release(src)

	default:
		internalErrorf("%s: assignment to %s %s", id.NamePos, id.Source, id.Name)
	}
}

// A subscript is one attribute or index step of an assignment target.
type subscript struct {
	named bool
	name  uint32  // for an attribute
	key   Address // for an index
	value Address // value of the subscript, for the write-back
}

// assignSubscript lowers an assignment to an attribute or element,
// such as a.b[i].c = v. Each intermediate value is loaded into a
// temporary, the final value is set, and each intermediate value is
// then stored back into its base in reverse order, since it may be a
// copy. A value whose type is shared by reference needs no write-back.
func (fc *fcomp) assignSubscript(s *syntax.AssignStmt) {
	g := fc.gen

	// Collect the chain from the target down to its root.
	var chain []syntax.Expr
	root := s.LHS
	for {
		switch x := root.(type) {
		case *syntax.DotExpr:
			chain = append(chain, x)
			root = x.X
			continue
		case *syntax.IndexExpr:
			chain = append(chain, x)
			root = x.X
			continue
		}
		break
	}

	base := fc.expr(root)
	var steps []subscript
	for i := len(chain) - 1; i >= 0; i-- {
		step := fc.subscript(chain[i])
		if i > 0 {
			step.value = g.addTemporary(chain[i].Info().DataType)
			prev := base
			if len(steps) > 0 {
				prev = steps[len(steps)-1].value
			}
			fc.get(step.value, prev, step)
		}
		steps = append(steps, step)
	}

	// The final set.
	last := steps[len(steps)-1]
	target := base
	if len(steps) > 1 {
		target = steps[len(steps)-2].value
	}
	src := fc.value(s, func() Address {
		dst := g.addTemporary(s.LHS.Info().DataType)
		fc.get(dst, target, last)
		return dst
	})
	fc.set(target, last, src)
	g.release(src)

	// The write-back.
	for i := len(steps) - 2; i >= 0; i-- {
		step := steps[i]
		into := base
		if i > 0 {
			into = steps[i-1].value
		}
		shared, known := isShared(step.value.Type)
		switch {
		case shared:
		case known:
			fc.set(into, step, step.value)
		default:
			skip := g.newLabel()
			g.emit(JUMP_IF_SHARED, step.value.encode(), uint32(skip))
			fc.set(into, step, step.value)
			g.bind(skip)
		}
	}
	fc.storeRoot(root, base)

	g.release(last.key)
	for i := len(steps) - 2; i >= 0; i-- {
		g.release(steps[i].value)
		g.release(steps[i].key)
	}
	g.release(base)
}

// subscript evaluates the key of an attribute or index step.
func (fc *fcomp) subscript(x syntax.Expr) subscript {
	switch x := x.(type) {
	case *syntax.DotExpr:
		return subscript{named: true, name: fc.gen.name(x.Name.Name), key: nilAddr}
	case *syntax.IndexExpr:
		return subscript{key: fc.expr(x.Y)}
	}
	internalErrorf("subscript %T", x)
	panic("unreachable")
}

func (fc *fcomp) get(dst, base Address, step subscript) {
	if step.named {
		fc.gen.emit(GET_NAMED, dst.encode(), base.encode(), step.name)
	} else {
		fc.gen.emit(GET_INDEXED, dst.encode(), base.encode(), step.key.encode())
	}
}

func (fc *fcomp) set(base Address, step subscript, value Address) {
	if step.named {
		fc.gen.emit(SET_NAMED, base.encode(), step.name, value.encode())
	} else {
		fc.gen.emit(SET_INDEXED, base.encode(), step.key.encode(), value.encode())
	}
}

// storeRoot stores the root of a subscript chain back into a member
// of self that was loaded through a getter or from the native base,
// since the value may have been copied.
func (fc *fcomp) storeRoot(root syntax.Expr, value Address) {
	id, ok := root.(*syntax.Ident)
	if !ok {
		return
	}
	if shared, known := isShared(id.DataType); shared && known {
		return
	}
	g := fc.gen
	switch id.Source {
	case syntax.MemberVariable:
		if m := fc.script.Member(id.Name); m != nil && m.Setter != "" && !fc.inAccessor(m) {
			g.emitList(CALL_SELF, []Address{value}, nilAddr.encode(), g.name(m.Setter))
		}
	case syntax.InheritedVariable:
		g.emit(SET_MEMBER, g.name(id.Name), value.encode())
	}
}

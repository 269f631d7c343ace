// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compile

// This file defines the lowering of expressions.

import (
	"go.gdlang.net/syntax"
	"go.gdlang.net/variant"
)

// expr emits the code to compute the value of e and returns its
// address. If the address is a temporary, the caller must release it.
func (fc *fcomp) expr(e syntax.Expr) Address {
	info := e.Info()
	if !info.Reduced {
		internalErrorf("%s: expression %T was not analyzed", syntax.Start(e), e)
	}
	if fc.isCurrentClass(info.DataType) {
		return Address{Mode: AddrClass, Type: info.DataType}
	}
	if info.IsConstant && !isContainerLiteral(e) && !isClassReference(info.DataType) {
		return fc.gen.constant(info.Constant)
	}

	g := fc.gen
	switch e := e.(type) {
	case *syntax.Literal:
		// A literal is always constant.
		return g.constant(info.Constant)

	case *syntax.Ident:
		return fc.ident(e)

	case *syntax.SelfExpr:
		return Address{Mode: AddrSelf, Type: e.DataType}

	case *syntax.ListExpr:
		dst := g.addTemporary(e.DataType)
		elems := make([]Address, len(e.List))
		for i, x := range e.List {
			elems[i] = fc.expr(x)
		}
		if elem := e.DataType.ElementType(); elem.IsHardType() && !elem.IsVariant() {
			g.emitList(CONSTRUCT_TYPED_ARRAY, elems, dst.encode(), uint32(elem.VariantType()), g.name(nativeOf(elem)))
		} else {
			g.emitList(CONSTRUCT_ARRAY, elems, dst.encode())
		}
		g.releaseAll(elems)
		return dst

	case *syntax.DictExpr:
		dst := g.addTemporary(e.DataType)
		var pairs []Address
		for _, entry := range e.Entries {
			pairs = append(pairs, fc.expr(entry.Key), fc.expr(entry.Value))
		}
		g.emitList(CONSTRUCT_DICTIONARY, pairs, dst.encode())
		g.releaseAll(pairs)
		return dst

	case *syntax.DotExpr:
		name := e.Name.Name
		if _, ok := e.X.(*syntax.SelfExpr); ok && fc.decl != nil && fc.decl.Property != nil && fc.decl.Property.Name.Name == name {
			errorf(e, "Must use '%s' instead of 'self.%s' in getter/setter.", name, name)
		}
		dst := g.addTemporary(e.DataType)
		base := fc.expr(e.X)
		g.emit(GET_NAMED, dst.encode(), base.encode(), g.name(name))
		g.release(base)
		return dst

	case *syntax.IndexExpr:
		dst := g.addTemporary(e.DataType)
		base := fc.expr(e.X)
		key := fc.expr(e.Y)
		g.emit(GET_INDEXED, dst.encode(), base.encode(), key.encode())
		g.release(key)
		g.release(base)
		return dst

	case *syntax.CallExpr:
		return fc.call(e, false)

	case *syntax.UnaryExpr:
		dst := g.addTemporary(e.DataType)
		x := fc.expr(e.X)
		op := OPERATOR
		if isHardBuiltin(x.Type) {
			op = OPERATOR_VALIDATED
		}
		g.emit(op, dst.encode(), uint32(e.Operator), x.encode(), nilAddr.encode())
		g.release(x)
		return dst

	case *syntax.BinaryExpr:
		if e.IsLogical() {
			return fc.logical(e)
		}
		dst := g.addTemporary(e.DataType)
		x := fc.expr(e.X)
		y := fc.expr(e.Y)
		op := OPERATOR
		if isHardBuiltin(x.Type) && isHardBuiltin(y.Type) {
			op = OPERATOR_VALIDATED
		}
		g.emit(op, dst.encode(), uint32(e.Operator), x.encode(), y.encode())
		g.release(y)
		g.release(x)
		if e.Op == syntax.NOT_IN {
			g.emit(OPERATOR, dst.encode(), uint32(variant.OpNot), dst.encode(), nilAddr.encode())
		}
		return dst

	case *syntax.CondExpr:
		dst := g.addTemporary(e.DataType)
		g.beginTernary()
		cond := fc.expr(e.Cond)
		g.ternaryCondition(cond)
		g.release(cond)
		x := fc.expr(e.True)
		g.emit(ASSIGN, dst.encode(), x.encode())
		g.release(x)
		g.ternaryElse()
		y := fc.expr(e.False)
		g.emit(ASSIGN, dst.encode(), y.encode())
		g.release(y)
		g.endTernary()
		return dst

	case *syntax.TypeTestExpr:
		dst := g.addTemporary(e.DataType)
		x := fc.expr(e.X)
		fc.typeTest(dst, x, e.Test.Type)
		g.release(x)
		if e.Not {
			g.emit(OPERATOR, dst.encode(), uint32(variant.OpNot), dst.encode(), nilAddr.encode())
		}
		return dst

	case *syntax.CastExpr:
		t := e.DataType
		if t.IsVariant() {
			return fc.expr(e.X)
		}
		dst := g.addTemporary(t)
		x := fc.expr(e.X)
		switch t.Kind {
		case syntax.Builtin, syntax.Enum:
			g.emit(CAST_BUILTIN, dst.encode(), x.encode(), uint32(t.VariantType()))
		case syntax.Native:
			g.emit(CAST_NATIVE, dst.encode(), x.encode(), g.name(t.Native))
		case syntax.Class, syntax.Script:
			g.emit(CAST_SCRIPT, dst.encode(), x.encode(), fc.scriptConstant(t).encode())
		default:
			internalErrorf("cast to %s", t)
		}
		g.release(x)
		return dst

	case *syntax.AwaitExpr:
		dst := g.addTemporary(e.DataType)
		x := fc.expr(e.X)
		g.emit(AWAIT, dst.encode(), x.encode())
		g.release(x)
		return dst

	case *syntax.PreloadExpr:
		// Folded by the analyzer unless the path is invalid.
		return g.constant(&variant.Resource{Path: e.ResolvedPath, Class: "Resource"})

	case *syntax.LambdaExpr:
		return fc.lambda(e)
	}
	internalErrorf("unexpected expression %T", e)
	panic("unreachable")
}

// isContainerLiteral reports whether e is an array or dictionary
// literal. Each evaluation of a literal yields a new container, so
// literals are built at run time even when their value is constant.
func isContainerLiteral(e syntax.Expr) bool {
	switch e.(type) {
	case *syntax.ListExpr, *syntax.DictExpr:
		return true
	}
	return false
}

// isClassReference reports whether t is the type of a script class
// named as a value. Such classes are loaded by name at run time.
func isClassReference(t syntax.DataType) bool {
	return t.IsMeta && (t.Kind == syntax.Class || t.Kind == syntax.Script)
}

// isCurrentClass reports whether t denotes the class being compiled
// itself, as opposed to its instances.
func (fc *fcomp) isCurrentClass(t syntax.DataType) bool {
	return t.IsMeta && t.Kind == syntax.Class && t.Class == fc.class
}

// ident returns the address of the value of a name.
func (fc *fcomp) ident(id *syntax.Ident) Address {
	g := fc.gen
	switch id.Source {
	case syntax.Parameter, syntax.LocalVariable, syntax.LocalIterator, syntax.LocalBind, syntax.LocalConstant:
		a, ok := fc.vars[id.Decl]
		if !ok {
			internalErrorf("%s: %s %s has no address", id.NamePos, id.Source, id.Name)
		}
		a.Type = id.DataType
		return a

	case syntax.MemberVariable:
		m := fc.script.Member(id.Name)
		if m == nil {
			internalErrorf("%s: member %s not in the table of %s", id.NamePos, id.Name, fc.script.FQCN)
		}
		if m.Getter != "" && !fc.inAccessor(m) {
			dst := g.addTemporary(id.DataType)
			g.emitList(CALL_SELF, nil, dst.encode(), g.name(m.Getter))
			return dst
		}
		return Address{Mode: AddrMember, Index: uint32(m.Index), Type: id.DataType}

	case syntax.InheritedVariable:
		dst := g.addTemporary(id.DataType)
		g.emit(GET_MEMBER, dst.encode(), g.name(id.Name))
		return dst

	case syntax.MemberFunction, syntax.MemberSignal:
		dst := g.addTemporary(id.DataType)
		g.emit(GET_NAMED, dst.encode(), selfAddr.encode(), g.name(id.Name))
		return dst

	case syntax.MemberConstant, syntax.MemberClass:
		// Constants are folded; this is a class, or a value known
		// only at run time.
		dst := g.addTemporary(id.DataType)
		if c, ok := id.Decl.(*syntax.ClassDecl); ok && c.Outer == nil {
			// the main class, by its global name
			g.emit(GET_GLOBAL, dst.encode(), g.name(id.Name))
			return dst
		}
		g.emit(GET_NAMED, dst.encode(), classAddr.encode(), g.name(id.Name))
		return dst

	case syntax.Undefined:
		// A native class, singleton or autoload.
		if !fc.isGlobal(id) {
			errorf(id, "Identifier not found: %s", id.Name)
		}
		dst := g.addTemporary(id.DataType)
		g.emit(GET_GLOBAL, dst.encode(), g.name(id.Name))
		return dst
	}
	internalErrorf("%s: identifier %s of kind %s", id.NamePos, id.Name, id.Source)
	panic("unreachable")
}

// isGlobal reports whether id names something the host provides by
// name at run time.
func (fc *fcomp) isGlobal(id *syntax.Ident) bool {
	env, name := fc.c.env, id.Name
	if id.DataType.IsMeta || env.Catalog.HasClass(name) {
		return true
	}
	if _, ok := env.Catalog.Singleton(name); ok {
		return true
	}
	if _, ok := env.Catalog.GlobalConstant(name); ok {
		return true
	}
	if _, ok := env.Catalog.GlobalEnum(name); ok {
		return true
	}
	_, isClass := env.GlobalClasses[name]
	_, isAutoload := env.Autoloads[name]
	return isClass || isAutoload
}

// logical lowers a short-circuit and/or.
func (fc *fcomp) logical(e *syntax.BinaryExpr) Address {
	g := fc.gen
	dst := g.addTemporary(syntax.MakeBuiltinType(variant.BOOL))
	and := e.Op == syntax.AND || e.Op == syntax.AMPAMP
	if and {
		g.beginAnd()
	} else {
		g.beginOr()
	}
	for _, operand := range []syntax.Expr{e.X, e.Y} {
		x := fc.expr(operand)
		if and {
			g.andOperand(x)
		} else {
			g.orOperand(x)
		}
		g.release(x)
	}
	if and {
		g.endAnd(dst)
	} else {
		g.endOr(dst)
	}
	return dst
}

// typeTest stores in dst whether the value of x has type t.
func (fc *fcomp) typeTest(dst, x Address, t syntax.DataType) {
	g := fc.gen
	switch t.Kind {
	case syntax.Builtin, syntax.Enum:
		g.emit(TYPE_TEST_BUILTIN, dst.encode(), x.encode(), uint32(t.VariantType()))
	case syntax.Native:
		g.emit(TYPE_TEST_NATIVE, dst.encode(), x.encode(), g.name(t.Native))
	case syntax.Class, syntax.Script:
		g.emit(TYPE_TEST_SCRIPT, dst.encode(), x.encode(), fc.scriptConstant(t).encode())
	default:
		g.emit(ASSIGN, dst.encode(), g.boolean(true).encode())
	}
}

// lambda compiles the function of a lambda and emits the creation of
// its closure. The captured locals become the leading parameters of
// the function.
func (fc *fcomp) lambda(e *syntax.LambdaExpr) Address {
	fn := fc.c.compileFunction(fc.pcomp, fc.script, fc.class, e.Func, funcName(e.Func))
	g := fc.gen
	dst := g.addTemporary(e.DataType)
	captures := make([]Address, len(e.Captures))
	for i, id := range e.Captures {
		captures[i] = fc.ident(id)
	}
	op := CREATE_LAMBDA
	if e.UseSelf {
		op = CREATE_SELF_LAMBDA
	}
	g.emitList(op, captures, dst.encode(), fc.pcomp.functionIndex(fn))
	g.releaseAll(captures)
	return dst
}

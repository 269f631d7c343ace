// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compile

import (
	"go.gdlang.net/classdb"
	"go.gdlang.net/syntax"
	"go.gdlang.net/variant"
)

// call lowers a call. The callee is classified in the order the
// analyzer resolved it: builtin constructors, language and utility
// functions, super calls, then methods of self or of a base value.
// If discard is set the result is not stored and the Nil address is
// returned.
func (fc *fcomp) call(e *syntax.CallExpr, discard bool) Address {
	g := fc.gen
	dst := nilAddr
	if !discard {
		dst = g.addTemporary(e.DataType)
	}
	async := e.IsAwaited

	if id, ok := e.Fn.(*syntax.Ident); ok && !e.IsSuper() && !id.Source.IsLocal() {
		if t, ok := variant.TypeByName(id.Name); ok {
			if t == variant.OBJECT {
				g.emitList(CONSTRUCT, nil, dst.encode(), uint32(t))
				return dst
			}
			args := fc.args(e.Args)
			g.emitList(CONSTRUCT, args, dst.encode(), uint32(t))
			g.releaseAll(args)
			return dst
		}
		if _, ok := classdb.LanguageFunction(id.Name); ok {
			fc.callName(CALL_LANGUAGE_UTILITY, dst, id.Name, e.Args)
			return dst
		}
		if _, ok := variant.Utility(id.Name); ok {
			fc.callName(CALL_UTILITY, dst, id.Name, e.Args)
			return dst
		}
	}

	if e.IsSuper() {
		op := CALL_SUPER
		if async {
			op = CALL_SUPER_ASYNC
		}
		fc.callName(op, dst, e.FuncName, e.Args)
		return dst
	}

	switch fn := e.Fn.(type) {
	case *syntax.Ident:
		// A method of self.
		switch {
		case async:
			fc.callName(CALL_SELF_ASYNC, dst, fn.Name, e.Args)
		case e.IsStaticCall:
			fc.callMethod(CALL_STATIC, dst, classAddr, fn.Name, e.Args)
		case e.Method != nil && fn.Decl == nil:
			fc.callMethod(CALL_METHOD_BIND, dst, selfAddr, fn.Name, e.Args)
		default:
			fc.callName(CALL_SELF, dst, fn.Name, e.Args)
		}

	case *syntax.DotExpr:
		name := fn.Name.Name
		bt := fn.X.Info().DataType
		_, isSelf := fn.X.(*syntax.SelfExpr)
		_, isScriptFunc := fn.Name.Decl.(*syntax.FuncDecl)
		switch {
		case async:
			fc.callMethod(CALL_ASYNC, dst, fc.expr(fn.X), name, e.Args)
		case isSelf && isScriptFunc && !e.IsStaticCall:
			fc.callName(CALL_SELF, dst, name, e.Args)
		case bt.IsMeta && bt.Kind != syntax.Builtin:
			fc.callMethod(CALL_STATIC, dst, fc.expr(fn.X), name, e.Args)
		case bt.IsHardType() && bt.Kind == syntax.Native && e.Method != nil:
			op := CALL_METHOD_BIND
			if exactArguments(e.Method, e.Args) {
				op = CALL_PTRCALL
			}
			fc.callMethod(op, dst, fc.expr(fn.X), name, e.Args)
		case isHardBuiltin(bt) && e.Method != nil:
			fc.callMethod(CALL_BUILTIN_METHOD, dst, fc.expr(fn.X), name, e.Args)
		default:
			fc.callMethod(CALL, dst, fc.expr(fn.X), name, e.Args)
		}

	default:
		internalErrorf("%s: call of %T", syntax.Start(e), e.Fn)
	}
	return dst
}

// args evaluates the arguments of a call, in order.
func (fc *fcomp) args(list []syntax.Expr) []Address {
	args := make([]Address, len(list))
	for i, x := range list {
		args[i] = fc.expr(x)
	}
	return args
}

// callName emits a call of a function known by name.
func (fc *fcomp) callName(op Opcode, dst Address, name string, list []syntax.Expr) {
	args := fc.args(list)
	fc.gen.emitList(op, args, dst.encode(), fc.gen.name(name))
	fc.gen.releaseAll(args)
}

// callMethod emits a call of a method of base, and releases base.
func (fc *fcomp) callMethod(op Opcode, dst, base Address, name string, list []syntax.Expr) {
	args := fc.args(list)
	fc.gen.emitList(op, args, dst.encode(), base.encode(), fc.gen.name(name))
	fc.gen.releaseAll(args)
	fc.gen.release(base)
}

// exactArguments reports whether the arguments of a call match the
// parameter types of the native method m exactly, so that the call
// needs no conversion or check.
func exactArguments(m *variant.MethodInfo, args []syntax.Expr) bool {
	if m.Vararg || len(args) != len(m.Args) {
		return false
	}
	for i, arg := range args {
		t, p := arg.Info().DataType, m.Args[i]
		if !t.IsHardType() || t.IsVariant() || p.Variant || t.IsMeta {
			return false
		}
		if t.VariantType() != p.Type {
			return false
		}
		if p.Type == variant.OBJECT && p.ClassName != "" && nativeOf(t) != p.ClassName {
			return false
		}
	}
	return true
}

// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

// This file defines the body pass, which resolves the statements of
// functions and property accessors.

import (
	"go.gdlang.net/classdb"
	"go.gdlang.net/syntax"
	"go.gdlang.net/variant"
)

func (a *Analyzer) resolveBody() {
	a.resolveClassBody(a.file.Class, true)
	a.checkUnusedSignals(a.file.Class)
}

// resolveClassBody resolves the functions of class c, after those of
// its base class, and if recursive those of its inner classes.
func (a *Analyzer) resolveClassBody(c *syntax.ClassDecl, recursive bool) {
	if !c.ResolvedBody {
		c.ResolvedBody = true
		a.resolveClassInterface(c, false)
		if b := c.BaseType; b.Kind == syntax.Class {
			o := a.owner(b.Class)
			if o != a {
				o.ref.RaiseStatus(FullySolved)
			}
			o.resolveClassBody(b.Class, false)
		}

		save := a.enter(c)
		for _, m := range c.Members {
			switch m := m.(type) {
			case *syntax.FuncDecl:
				a.resolveFunctionBody(m)
			case *syntax.VarDecl:
				if m.Setter != nil {
					a.resolveFunctionBody(m.Setter)
				}
				if m.Getter != nil {
					a.resolveFunctionBody(m.Getter)
				}
			}
		}
		a.leave(save)
	}
	if recursive {
		for _, m := range c.Members {
			if inner, ok := m.(*syntax.ClassDecl); ok {
				a.resolveClassBody(inner, true)
			}
		}
	}
}

func (a *Analyzer) checkUnusedSignals(c *syntax.ClassDecl) {
	for _, m := range c.Members {
		switch m := m.(type) {
		case *syntax.SignalDecl:
			if m.Usages == 0 && !isPrivate(m.Name.Name) {
				a.warn(m, UnusedSignal, "The signal \"%s\" is declared but never emitted.", m.Name.Name)
			}
		case *syntax.ClassDecl:
			a.checkUnusedSignals(m)
		}
	}
}

// funcName returns the name of a function for messages.
func funcName(fn *syntax.FuncDecl) string {
	if fn == nil || fn.Name == nil {
		return "<anonymous lambda>"
	}
	return fn.Name.Name
}

// isConstructor reports whether fn is the _init method of its class.
func isConstructor(fn *syntax.FuncDecl) bool {
	return fn.Lambda == nil && fn.Property == nil && fn.Name != nil && fn.Name.Name == "_init"
}

// resolveFunctionBody resolves the statements of fn, which may be a
// method, an accessor or the function of a lambda.
func (a *Analyzer) resolveFunctionBody(fn *syntax.FuncDecl) {
	if fn.ResolvedBody {
		return
	}
	fn.ResolvedBody = true
	a.resolveFunctionSignature(fn)

	saveFn, saveStmt := a.fn, a.stmt
	a.fn = fn
	for _, p := range fn.Params {
		a.stmt = p
		a.checkShadowing(p.Name, "function parameter")
	}
	a.stmt = nil
	a.resolveBlock(fn.Body)
	a.fn, a.stmt = saveFn, saveStmt

	rt := fn.ReturnType
	if rt.IsHardType() && !rt.IsVariant() && !rt.IsVoid() && !isConstructor(fn) && !fn.Body.HasReturn {
		a.errorf(fn, "Not all code paths return a value.")
	}
}

// resolveBlock resolves the statements of b in order, then reports
// the locals of b that are never used.
func (a *Analyzer) resolveBlock(b *syntax.Block) {
	save, saveBlock := a.stmt, a.block
	a.block = b
	for _, s := range b.Stmts {
		if b.HasReturn && !b.HasUnreachable {
			a.warn(s, UnreachableCode, "Unreachable code (statement after return) in function \"%s()\".", funcName(b.Func))
			b.HasUnreachable = true
		}
		a.stmt = s
		if a.resolveStmt(s) {
			b.HasReturn = true
		}
	}
	a.stmt, a.block = save, saveBlock
	a.checkLocals(b)
}

// resolveStmt resolves s and reports whether every path through it
// returns from the function.
func (a *Analyzer) resolveStmt(s syntax.Stmt) bool {
	switch s := s.(type) {
	case *syntax.ExprStmt:
		a.resolveExprStmt(s)

	case *syntax.AssignStmt:
		a.resolveAssign(s)

	case *syntax.VarDecl:
		s.Type, s.ConversionAssign = a.resolveAssignable(assignable{
			kind:  "variable",
			name:  s.Name,
			spec:  s.TypeSpec,
			infer: s.Infer,
			init:  s.Init,
		})
		a.checkShadowing(s.Name, "variable")

	case *syntax.ConstDecl:
		a.resolveConst(s)
		a.checkShadowing(s.Name, "constant")

	case *syntax.IfStmt:
		a.reduceExpr(s.Cond)
		a.resolveBlock(s.True)
		if s.False != nil {
			a.resolveBlock(s.False)
			return s.True.HasReturn && s.False.HasReturn
		}

	case *syntax.WhileStmt:
		a.reduceExpr(s.Cond)
		a.resolveBlock(s.Body)

	case *syntax.ForStmt:
		a.resolveFor(s)

	case *syntax.MatchStmt:
		return a.resolveMatch(s)

	case *syntax.ReturnStmt:
		a.resolveReturn(s)
		return true

	case *syntax.AssertStmt:
		a.resolveAssert(s)

	case *syntax.BranchStmt:
		// nothing to resolve

	default:
		bugf("unexpected statement %T", s)
	}
	return false
}

// checkLocals reports the unused and unassigned locals of block b.
func (a *Analyzer) checkLocals(b *syntax.Block) {
	for _, l := range b.Locals {
		private := isPrivate(l.Name)
		switch d := l.Decl.(type) {
		case *syntax.VarDecl:
			switch {
			case d.Usages <= 0 && !private:
				a.warn(d, UnusedVariable, "The local variable \"%s\" is declared but never used in the block. If this is intended, prefix it with an underscore: \"_%s\".", l.Name, l.Name)
			case d.Usages > 0 && d.Init == nil && d.Assignments == 0:
				a.warn(d, UnassignedVariable, "The variable \"%s\" was used but never assigned a value.", l.Name)
			}
		case *syntax.ConstDecl:
			if d.Usages == 0 && !private {
				a.warn(d, UnusedLocalConstant, "The local constant \"%s\" is declared but never used in the block. If this is intended, prefix it with an underscore: \"_%s\".", l.Name, l.Name)
			}
		case *syntax.Param:
			if d.Usages == 0 && !private {
				a.warn(d, UnusedParameter, "The parameter \"%s\" is never used in the function \"%s()\". If this is intended, prefix it with an underscore: \"_%s\".", l.Name, funcName(l.Func), l.Name)
			}
		case *syntax.BindPattern:
			if d.Usages == 0 && !private {
				a.warn(d, UnusedVariable, "The local variable \"%s\" is declared but never used in the block. If this is intended, prefix it with an underscore: \"_%s\".", l.Name, l.Name)
			}
		}
	}
}

// ---- expression statements and assignments ----

func (a *Analyzer) resolveExprStmt(s *syntax.ExprStmt) {
	a.roots[s.X] = true
	a.reduceExpr(s.X)
	switch s.X.(type) {
	case *syntax.CallExpr, *syntax.AwaitExpr:
		// executed for effect
	case *syntax.LambdaExpr:
		a.errorf(s.X, "Standalone lambdas cannot be accessed. Consider assigning it to a variable.")
	case *syntax.CondExpr:
		a.warn(s.X, StandaloneTernary, "Standalone ternary conditional operator: the return value is being discarded.")
	default:
		a.warn(s.X, StandaloneExpression, "Standalone expression (the line has no effect).")
	}
}

// isConstantTarget reports whether an assignment to x would modify a
// constant.
func isConstantTarget(x syntax.Expr) bool {
	info := x.Info()
	switch x := x.(type) {
	case *syntax.Ident:
		return info.IsConstant
	case *syntax.DotExpr:
		return info.IsConstant || isConstantBase(x.X)
	case *syntax.IndexExpr:
		return info.IsConstant || isConstantBase(x.X)
	}
	return false
}

// isConstantBase reports whether x is a constant value whose elements
// or properties are being assigned. Types used as bases are not.
func isConstantBase(x syntax.Expr) bool {
	if info := x.Info(); info.DataType.IsMeta {
		return false
	}
	return isConstantTarget(x)
}

func (a *Analyzer) resolveAssign(s *syntax.AssignStmt) {
	a.reduceExpr(s.LHS)
	a.reduceExpr(s.RHS)

	op := syntax.CompoundOp(s.Op)
	if id, ok := s.LHS.(*syntax.Ident); ok {
		if v, ok := id.Decl.(*syntax.VarDecl); ok {
			if op == syntax.ILLEGAL {
				v.Usages-- // a store is not a use
			} else if v.Local && v.Init == nil && v.Assignments == 0 {
				a.warn(s, UnassignedVariableOpAssign, "Using assignment with operation but the variable \"%s\" was not previously assigned a value.", id.Name)
			}
			v.Assignments++
		}
	}

	if isConstantTarget(s.LHS) {
		a.errorf(s.LHS, "Cannot assign a new value to a constant.")
		return
	}

	target := s.LHS.Info().DataType
	if list, ok := s.RHS.(*syntax.ListExpr); ok && target.Element != nil {
		a.updateListType(list, target)
	}
	value := s.RHS.Info().DataType

	if op != syntax.ILLEGAL {
		s.Operator = binaryOperator(op)
		rt, ok := operationType(s.Operator, target, value)
		if !ok && target.IsHardType() && value.IsHardType() {
			a.errorf(s, "Invalid operands \"%s\" and \"%s\" for assignment operator.", target, value)
			return
		}
		value = rt
	}

	switch {
	case !target.IsHardType() || target.IsVariant():
		if target.IsVariant() && !target.IsHardType() {
			a.markUnsafe(s)
		}

	case value.IsVariant() || !value.IsHardType():
		a.markUnsafe(s)
		s.ConversionAssign = true

	case !a.isTypeCompatible(target, value, true, s.RHS):
		if IsTypeCompatible(a.env.Catalog, value, target, true) {
			a.markUnsafe(s)
			s.ConversionAssign = true
		} else {
			a.errorf(s.RHS, "Value of type \"%s\" cannot be assigned to a variable of type \"%s\".", value, target)
		}

	default:
		if target.IsBuiltin(variant.INT) && value.IsBuiltin(variant.FLOAT) {
			a.warn(s.RHS, NarrowingConversion, "Narrowing conversion (float is converted to int and loses precision).")
		}
		s.ConversionAssign = needsConversion(target, value)
	}
}

// ---- control flow ----

func (a *Analyzer) resolveReturn(r *syntax.ReturnStmt) {
	fn := a.fn
	expected := fn.ReturnType

	result := syntax.MakeBuiltinType(variant.NIL)
	if r.Result != nil {
		if call, ok := r.Result.(*syntax.CallExpr); ok && expected.IsHardType() && expected.IsVoid() {
			a.roots[call] = true // return f() in a void function discards nothing
		}
		a.reduceExpr(r.Result)
		if list, ok := r.Result.(*syntax.ListExpr); ok && expected.Element != nil {
			a.updateListType(list, expected)
		}
		result = r.Result.Info().DataType

		if isConstructor(fn) {
			a.errorf(r, "Constructor cannot return a value.")
			return
		}
		if expected.IsHardType() && expected.IsVoid() {
			if _, isCall := r.Result.(*syntax.CallExpr); isCall && result.IsVoid() {
				r.VoidReturn = true
				return
			}
			a.errorf(r, "A void function cannot return a value.")
			return
		}
		if _, isCall := r.Result.(*syntax.CallExpr); isCall && result.IsVoid() {
			r.VoidReturn = true
		}
	}

	if !expected.IsHardType() || expected.IsVariant() || expected.IsVoid() {
		return
	}
	var n syntax.Node = r
	if r.Result != nil {
		n = r.Result
	}
	switch {
	case result.IsVariant() || !result.IsHardType():
		a.markUnsafe(r)
	case !a.isTypeCompatible(expected, result, true, r.Result):
		if IsTypeCompatible(a.env.Catalog, result, expected, true) {
			a.markUnsafe(r)
		} else {
			a.errorf(n, "Cannot return value of type \"%s\" because the function return type is \"%s\".", result, expected)
		}
	case expected.IsBuiltin(variant.INT) && result.IsBuiltin(variant.FLOAT):
		a.warn(n, NarrowingConversion, "Narrowing conversion (float is converted to int and loses precision).")
	}
}

func (a *Analyzer) resolveAssert(s *syntax.AssertStmt) {
	a.reduceExpr(s.Cond)
	if s.Message != nil {
		a.reduceExpr(s.Message)
		mt := s.Message.Info().DataType
		if mt.IsHardType() && !mt.IsVariant() && !mt.IsBuiltin(variant.STRING) && !mt.IsBuiltin(variant.STRING_NAME) {
			a.errorf(s.Message, "Expected string for assert error message.")
		}
	}
	if info := s.Cond.Info(); info.IsConstant {
		if variant.Truth(info.Constant) {
			a.warn(s, AssertAlwaysTrue, "Assert statement is redundant because the expression is always true.")
		} else {
			a.warn(s, AssertAlwaysFalse, "Assert statement will raise an error because the expression is always false.")
		}
	}
}

// ---- for loops ----

func (a *Analyzer) resolveFor(f *syntax.ForStmt) {
	var vt syntax.DataType
	if call, ok := f.X.(*syntax.CallExpr); ok && isRangeCall(call) {
		a.resolveRange(call)
		vt = syntax.MakeBuiltinType(variant.INT).WithSource(syntax.AnnotatedInferred)
	} else {
		a.reduceExpr(f.X)
		vt = a.iteratorType(f.X)
	}

	if f.TypeSpec != nil {
		specified := a.resolveDatatype(f.TypeSpec, false)
		switch {
		case specified.IsVariant():
		case vt.IsVariant() || !vt.IsHardType():
			a.markUnsafe(f)
		case !a.isTypeCompatible(specified, vt, true, nil):
			if IsTypeCompatible(a.env.Catalog, vt, specified, true) {
				a.markUnsafe(f)
			} else {
				a.errorf(f.TypeSpec, "Unable to iterate on value of type \"%s\" with variable of type \"%s\".", f.X.Info().DataType, specified)
			}
		}
		vt = specified
	}
	vt.IsConstant = false
	f.VarType = vt

	save := a.stmt
	a.stmt = f
	a.checkShadowing(f.Var, "\"for\" iterator variable")
	a.stmt = save
	a.resolveBlock(f.Body)
}

// isRangeCall reports whether x calls the range function.
func isRangeCall(x *syntax.CallExpr) bool {
	id, ok := x.Fn.(*syntax.Ident)
	return ok && !x.IsSuper() && id.Name == "range" && id.Source == syntax.Undefined
}

// resolveRange reduces the call of range() iterated by a for loop.
// With constant arguments, the call folds to an int, Vector2i or
// Vector3i holding the bounds of the loop.
func (a *Analyzer) resolveRange(call *syntax.CallExpr) {
	call.Reduced = true
	call.FuncName = "range"
	if fn, ok := classdb.LanguageFunction("range"); ok {
		call.Method = &fn.MethodInfo
	}
	call.DataType = syntax.MakeBuiltinType(variant.ARRAY)
	callee := call.Fn.Info()
	callee.Reduced = true
	callee.DataType = syntax.MakeBuiltinType(variant.CALLABLE)

	for _, arg := range call.Args {
		a.reduceExpr(arg)
	}
	switch n := len(call.Args); {
	case n == 0:
		a.errorf(call, "Invalid call for \"range()\" function. Expected at least 1 argument, none given.")
		return
	case n > 3:
		a.errorf(call.Args[3], "Invalid call for \"range()\" function. Expected at most 3 arguments, %d given.", n)
		return
	}

	bounds := make([]int64, 0, len(call.Args))
	folded := true
	for i, arg := range call.Args {
		info := arg.Info()
		t := info.DataType
		if t.IsHardType() && !t.IsVariant() && !isNumeric(t) {
			a.errorf(arg, "Invalid argument for \"range()\" call. Argument %d should be int or float but \"%s\" was given.", i+1, t)
			folded = false
			continue
		}
		if !info.IsConstant {
			folded = false
			continue
		}
		switch v := info.Constant.(type) {
		case variant.Int:
			bounds = append(bounds, int64(v))
		case variant.Float:
			bounds = append(bounds, int64(v))
		default:
			a.errorf(arg, "Invalid argument for \"range()\" call. Argument %d should be int or float but \"%s\" was given.", i+1, v.Type())
			folded = false
		}
	}
	if !folded {
		return
	}
	var v variant.Value
	switch len(bounds) {
	case 1:
		v = variant.Int(bounds[0])
	case 2:
		v = variant.Vector2i{X: bounds[0], Y: bounds[1]}
	default:
		v = variant.Vector3i{X: bounds[0], Y: bounds[1], Z: bounds[2]}
	}
	call.IsConstant = true
	call.Constant = v
	call.DataType = typeOfValue(v)
}

// iteratorType returns the type of the loop variable of a for loop
// over the value of x.
func (a *Analyzer) iteratorType(x syntax.Expr) syntax.DataType {
	lt := x.Info().DataType
	if lt.IsVariant() {
		a.markUnsafe(x)
		return syntax.MakeVariantType()
	}
	if lt.Element != nil {
		return lt.Element.WithSource(lt.Source)
	}

	switch {
	case lt.Kind == syntax.Builtin && !lt.IsMeta:
		switch b := lt.Builtin; b {
		case variant.INT, variant.FLOAT, variant.STRING:
			return syntax.MakeBuiltinType(b).WithSource(lt.Source)
		case variant.VECTOR2I, variant.VECTOR3I:
			return syntax.MakeBuiltinType(variant.INT).WithSource(lt.Source)
		case variant.VECTOR2, variant.VECTOR3:
			return syntax.MakeBuiltinType(variant.FLOAT).WithSource(lt.Source)
		case variant.ARRAY, variant.DICTIONARY, variant.OBJECT:
			return syntax.MakeVariantType()
		default:
			if variant.IsPackedArray(b) {
				return syntax.MakeBuiltinType(variant.PackedElem(b)).WithSource(lt.Source)
			}
		}

	case lt.Kind == syntax.Enum && lt.IsMeta:
		return syntax.MakeVariantType() // the keys of a dictionary

	case lt.IsObject() && !lt.IsMeta:
		if c := a.lookupFunction(lt, "_iter_get"); c != nil {
			return c.result
		}
		if !lt.IsHardType() {
			a.markUnsafe(x)
			return syntax.MakeVariantType()
		}
		a.errorf(x, "Unable to iterate on object of type \"%s\".", lt)
		return syntax.MakeVariantType()
	}

	if !lt.IsHardType() {
		a.markUnsafe(x)
		return syntax.MakeVariantType()
	}
	a.errorf(x, "Unable to iterate on value of type \"%s\".", lt)
	return syntax.MakeVariantType()
}

// ---- match ----

func (a *Analyzer) resolveMatch(m *syntax.MatchStmt) bool {
	a.reduceExpr(m.X)
	mt := m.X.Info().DataType
	mt.IsConstant = false

	catchAll := false
	allReturn := len(m.Branches) > 0
	for _, br := range m.Branches {
		for _, p := range br.Patterns {
			if catchAll {
				a.warn(p, UnreachablePattern, "Unreachable pattern (pattern after wildcard or bind).")
			}
			a.resolvePattern(p, mt)
			switch p.(type) {
			case *syntax.WildcardPattern, *syntax.BindPattern:
				catchAll = true
			}
		}
		a.resolveBlock(br.Body)
		a.stmt = m
		allReturn = allReturn && br.Body.HasReturn
	}
	return allReturn && catchAll
}

// resolvePattern resolves a pattern matching values of type t.
func (a *Analyzer) resolvePattern(p syntax.Pattern, t syntax.DataType) {
	switch p := p.(type) {
	case *syntax.LiteralPattern:
		a.reduceExpr(p.Lit)

	case *syntax.ExprPattern:
		a.reduceExpr(p.X)
		if !p.X.Info().IsConstant {
			a.errorf(p.X, "Expression in match pattern must be a constant.")
		}

	case *syntax.BindPattern:
		p.Type = t
		if !p.Type.IsSet() {
			p.Type = syntax.MakeVariantType()
		}
		a.checkShadowing(p.Name, "pattern bind")

	case *syntax.ArrayPattern:
		elem := syntax.MakeVariantType()
		if t.Element != nil {
			elem = *t.Element
		}
		for _, e := range p.Elems {
			a.resolvePattern(e, elem)
		}

	case *syntax.DictPattern:
		for _, e := range p.Entries {
			a.reduceExpr(e.Key)
			if !e.Key.Info().IsConstant {
				a.errorf(e.Key, "Expression in dictionary pattern key must be a constant.")
			}
			if e.Value != nil {
				a.resolvePattern(e.Value, syntax.MakeVariantType())
			}
		}

	case *syntax.WildcardPattern, *syntax.RestPattern:
		// matches anything

	default:
		bugf("unexpected pattern %T", p)
	}
}

// ---- shadowing ----

// checkShadowing warns if a local named by id hides a global name or
// a member of the current class or one of its bases. The context is
// the kind of local, for messages.
func (a *Analyzer) checkShadowing(id *syntax.Ident, context string) {
	name := id.Name
	cat := a.env.Catalog

	_, isLanguage := classdb.LanguageFunction(name)
	_, isUtility := variant.Utility(name)
	switch {
	case isLanguage || isUtility:
		a.warn(id, ShadowedGlobalIdentifier, "The %s \"%s\" has the same name as a %s.", context, name, "built-in function")
		return
	case cat.HasClass(name):
		a.warn(id, ShadowedGlobalIdentifier, "The %s \"%s\" has the same name as a %s.", context, name, "global class")
		return
	}
	if _, ok := variant.TypeByName(name); ok {
		a.warn(id, ShadowedGlobalIdentifier, "The %s \"%s\" has the same name as a %s.", context, name, "built-in type")
		return
	}

	if a.class == nil {
		return
	}
	if m, _ := findMember(a.class, name); m != nil {
		a.warn(id, ShadowedVariable, "The local %s \"%s\" is shadowing an already-declared %s at line %d.", context, name, syntax.KindOf(m), syntax.Start(m).Line)
		return
	}

	native := nativeOf(a.class.Type)
	if native == "" {
		return
	}
	checks := []struct {
		kind string
		has  func(class string) bool
	}{
		{"method", func(c string) bool { return classdb.HasMethod(cat, c, name) }},
		{"signal", func(c string) bool { return classdb.HasSignal(cat, c, name) }},
		{"property", func(c string) bool { return classdb.HasProperty(cat, c, name) }},
		{"constant", func(c string) bool { _, ok := cat.IntegerConstant(c, name); return ok }},
		{"enum", func(c string) bool { _, ok := cat.Enum(c, name); return ok }},
	}
	for _, check := range checks {
		if check.has(native) {
			owner := declaringClass(cat, native, check.has)
			a.warn(id, ShadowedVariableBaseClass, "The local %s \"%s\" is shadowing an already-declared %s at the base class \"%s\".", context, name, check.kind, owner)
			return
		}
	}
}

// declaringClass returns the most distant ancestor of class, itself
// included, for which has holds. Catalog lookups include ancestors,
// so this is the class that declares the member.
func declaringClass(cat classdb.Catalog, class string, has func(class string) bool) string {
	for p := cat.Parent(class); p != "" && has(p); p = cat.Parent(p) {
		class = p
	}
	return class
}

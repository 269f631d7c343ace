// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

// This file defines the reduction of calls.

import (
	"strings"

	"go.gdlang.net/classdb"
	"go.gdlang.net/syntax"
	"go.gdlang.net/variant"
)

// A callee is the signature of a called function.
type callee struct {
	params   []syntax.DataType
	defaults int
	vararg   bool
	result   syntax.DataType
	static   bool
	method   *variant.MethodInfo // native or builtin method, or nil
	fn       *syntax.FuncDecl    // script function, or nil
}

func funcCallee(fn *syntax.FuncDecl) *callee {
	c := &callee{result: fn.ReturnType, static: fn.Static, fn: fn}
	for _, p := range fn.Params {
		c.params = append(c.params, p.Type)
		if p.Default != nil {
			c.defaults++
		}
	}
	if !c.result.IsSet() {
		c.result = syntax.MakeVariantType()
	}
	c.result.IsCoroutine = fn.IsCoroutine
	return c
}

func methodCallee(cat classdb.Catalog, m *variant.MethodInfo) *callee {
	c := &callee{defaults: len(m.Defaults), vararg: m.Vararg, static: m.Static, method: m}
	for _, arg := range m.Args {
		c.params = append(c.params, typeOfProperty(cat, arg))
	}
	c.result = returnTypeOf(cat, m.Return)
	return c
}

// reduceCall reduces a call of a constructor, a global function or a
// method.
func (a *Analyzer) reduceCall(call *syntax.CallExpr) {
	root := a.roots[call]
	awaited := call.IsAwaited || a.awaited[call]

	constant := true
	for _, arg := range call.Args {
		a.reduceExpr(arg)
		constant = constant && arg.Info().IsConstant
	}
	call.DataType = syntax.MakeVariantType()

	if id, ok := call.Fn.(*syntax.Ident); ok && !call.IsSuper() && !id.Source.IsLocal() {
		if t, ok := variant.TypeByName(id.Name); ok {
			a.reduceConstructor(call, id, t, constant)
			return
		}
		if f, ok := classdb.LanguageFunction(id.Name); ok {
			a.reduceFunctionCall(call, id, f, constant, root || awaited)
			return
		}
		if f, ok := variant.Utility(id.Name); ok {
			a.reduceFunctionCall(call, id, f, constant, root || awaited)
			return
		}
	}

	var (
		base   syntax.DataType
		isSelf bool
		name   string
		nameId *syntax.Ident // the called name, if any
	)
	switch fn := call.Fn.(type) {
	case nil:
		if a.fn == nil || len(a.lambdas) > 0 {
			a.errorf(call, "Cannot use \"super()\" inside a lambda.")
			return
		}
		name = funcName(a.fn)
		base, isSelf = a.class.BaseType.Instance(), true
	case *syntax.Ident:
		name, nameId = fn.Name, fn
		if call.IsSuper() {
			base = a.class.BaseType.Instance()
		} else {
			base = classType(a.class)
		}
		isSelf = true
	case *syntax.DotExpr:
		name, nameId = fn.Name.Name, fn.Name
		a.reduceBase(fn.X)
		base = fn.X.Info().DataType
		_, isSelf = fn.X.(*syntax.SelfExpr)
		fn.Reduced = true
		fn.DataType = syntax.MakeBuiltinType(variant.CALLABLE)
	default:
		a.reduceExpr(call.Fn)
		a.errorf(call.Fn, "Cannot call on an expression. Use \".call()\" if it's a Callable.")
		return
	}
	call.FuncName = name

	if base.Kind == syntax.Enum && !base.IsMeta {
		a.errorf(call.Fn, "Cannot call function on enum value.")
		return
	}
	if base.IsVariant() {
		a.markUnsafe(call)
		return
	}

	isConstructor := base.IsMeta && name == "new"
	var c *callee
	if isConstructor {
		var ok bool
		if c, ok = a.lookupConstructor(call, base); !ok {
			return
		}
	} else {
		c = a.lookupFunction(base, name)
	}

	if c == nil && call.Fn == nil && name == "_init" {
		// The native base has a default constructor.
		c = &callee{result: syntax.MakeBuiltinType(variant.NIL)}
	}
	if c == nil {
		a.reportMissingFunction(call, base, name, nameId, isSelf)
		return
	}

	for i, arg := range call.Args {
		if list, ok := arg.(*syntax.ListExpr); ok && i < len(c.params) && c.params[i].Element != nil {
			a.updateListType(list, c.params[i])
		}
	}
	a.validateCallArgs(call, name, c)

	switch {
	case isSelf && !c.static && a.staticFunction() != nil:
		a.errorf(call, "Cannot call non-static function \"%s()\" from static function \"%s()\".", name, funcName(a.staticFunction()))
	case !isSelf && base.IsMeta && !c.static && base.Kind != syntax.Enum:
		a.errorf(call, "Cannot call non-static function \"%s()\" on the class \"%s\" directly. Make an instance instead.", name, base.Instance())
	case isSelf && !c.static:
		a.markLambdaUseSelf()
	}

	result := c.result
	if result.IsHardType() && result.IsVoid() && !root && !awaited {
		a.errorf(call, "Cannot get return value of call to \"%s()\" because it returns \"void\".", name)
	}
	if root && !result.IsVariant() && !result.IsVoid() {
		a.warn(call, ReturnValueDiscarded, "The function \"%s()\" returns a value that will be discarded if not used.", name)
	}
	if c.static && !isConstructor && !base.IsMeta && !(isSelf && nameId == call.Fn) {
		a.warn(call, StaticCalledOnInstance, "The function \"%s()\" is a static function but was called from an instance. Instead, it should be directly called from the type: \"%s.%s()\".", name, staticCaller(base), name)
	}

	call.DataType = result
	call.Method = c.method
	call.IsStaticCall = base.IsMeta || (c.static && isSelf)
	if nameId != nil {
		nameId.Reduced = true
		nameId.DataType = syntax.MakeBuiltinType(variant.CALLABLE)
		nameId.Source = syntax.MemberFunction
		if c.fn != nil {
			nameId.Decl = c.fn
			c.fn.Usages++
		}
	}

	if result.IsCoroutine && !awaited && !root {
		a.errorf(call, "Function \"%s()\" is a coroutine, so it must be called with \"await\".", name)
	}

	if name == "emit_signal" && isSelf && len(call.Args) > 0 {
		a.useSignal(call.Args[0])
	}
}

// staticCaller returns the name of the type on which a static
// function should be called.
func staticCaller(t syntax.DataType) string {
	if t.Kind == syntax.Native {
		return t.Native
	}
	return t.String()
}

// useSignal counts a use of the signal named by the constant x.
func (a *Analyzer) useSignal(x syntax.Expr) {
	info := x.Info()
	if !info.IsConstant {
		return
	}
	var name string
	switch v := info.Constant.(type) {
	case variant.String:
		name = string(v)
	case variant.StringName:
		name = string(v)
	default:
		return
	}
	if m, _ := findMember(a.class, name); m != nil {
		if s, ok := m.(*syntax.SignalDecl); ok {
			s.Usages++
		}
	}
}

// reportMissingFunction reports a call of a function that the type
// base does not have.
func (a *Analyzer) reportMissingFunction(call *syntax.CallExpr, base syntax.DataType, name string, nameId *syntax.Ident, isSelf bool) {
	if base.Kind == syntax.Enum && base.IsMeta {
		a.errorf(call.Fn, "Enums only have Dictionary built-in methods. Function \"%s()\" does not exist for enum \"%s\".", name, base.EnumName)
		return
	}

	found := false
	if nameId != nil && !call.IsSuper() {
		// Is the name something other than a function?
		var t syntax.DataType
		if nameId.Source.IsLocal() {
			a.reduceLocal(nameId)
			t = nameId.DataType
		} else if base.Kind == syntax.Builtin && base.Builtin != variant.OBJECT && !base.IsMeta {
			if p, ok := variant.Property(base.Builtin, name); ok {
				t = typeOfProperty(a.env.Catalog, p)
			}
		} else if f, ok := a.objectMember(base.Instance(), name); ok && f.kind != syntax.FunctionMember {
			t = f.t
		}
		nameId.Reduced = true
		if t.IsSet() && !t.IsVariant() {
			found = true
			if t.IsBuiltin(variant.CALLABLE) {
				a.errorf(call.Fn, "Name \"%s\" is a Callable. You can call it with \"%s.call()\" instead.", name, name)
			} else {
				a.errorf(call.Fn, "Name \"%s\" called as a function but is a \"%s\".", name, t)
			}
		} else if !isSelf && !(base.IsHardType() && base.Kind == syntax.Builtin) {
			a.warn(call, UnsafeMethodAccess, "The method \"%s()\" is not present on the inferred type \"%s\" (but may be present on a subtype).", name, base)
		}
	}
	if found {
		return
	}

	switch {
	case isSelf || base.IsHardType() && base.Kind == syntax.Builtin:
		where := base.String()
		if isSelf && !call.IsSuper() {
			where = "self"
		}
		var n syntax.Node = call
		if !call.IsSuper() {
			n = call.Fn
		}
		a.errorf(n, "Function \"%s()\" not found in base %s.%s", name, where, suggest(name, a.functionNames(base)))
	case !call.IsSuper() && base.IsHardType() && base.Kind == syntax.Native && base.IsMeta:
		a.errorf(call, "Static function \"%s()\" not found in base \"%s\".", name, base.Native)
	default:
		a.markUnsafe(call)
	}
}

// functionNames returns the names of the functions callable on t,
// for spelling suggestions.
func (a *Analyzer) functionNames(t syntax.DataType) []string {
	var names []string
	if t.Kind == syntax.Class {
		for c := t.Class; c != nil; {
			for _, m := range c.Members {
				if fn, ok := m.(*syntax.FuncDecl); ok {
					names = append(names, fn.Name.Name)
				}
			}
			if c.BaseType.Kind != syntax.Class {
				break
			}
			c = c.BaseType.Class
		}
	}
	if t.Kind == syntax.Builtin && t.Builtin != variant.OBJECT {
		for _, name := range variant.MemberNames(t.Builtin) {
			if _, ok := variant.Method(t.Builtin, name); ok {
				names = append(names, name)
			}
		}
		return names
	}
	if native := nativeOf(t); native != "" {
		cat := a.env.Catalog
		for _, name := range cat.MemberNames(native) {
			if _, ok := cat.Method(native, name); ok {
				names = append(names, name)
			}
		}
	}
	return names
}

// lookupFunction returns the signature of the method name of values
// of type t, or nil if it has none or the method cannot be known
// statically.
func (a *Analyzer) lookupFunction(t syntax.DataType, name string) *callee {
	cat := a.env.Catalog
	if t.Kind == syntax.Enum && t.IsMeta {
		t = syntax.MakeBuiltinType(variant.DICTIONARY)
	}
	if t.Kind == syntax.Builtin && t.Builtin != variant.OBJECT {
		if m, ok := variant.Method(t.Builtin, name); ok {
			return methodCallee(cat, m)
		}
		return nil
	}

	if t.Kind == syntax.Class {
		if m, owner := findMember(t.Class, name); m != nil {
			fn, ok := m.(*syntax.FuncDecl)
			if !ok {
				return nil
			}
			a.resolveClassMember(owner, fn)
			a.ensureBody(fn)
			return funcCallee(fn)
		}
	}

	native := nativeOf(t)
	if native == "" {
		return nil
	}
	m, ok := cat.Method(native, name)
	if !ok {
		return nil
	}
	c := methodCallee(cat, m)
	if _, ok := cat.Singleton(native); ok && t.IsMeta {
		c.static = true
	}
	return c
}

// lookupConstructor returns the signature of base.new(). It reports
// false if the type cannot be constructed, after reporting an error.
func (a *Analyzer) lookupConstructor(call *syntax.CallExpr, base syntax.DataType) (*callee, bool) {
	cat := a.env.Catalog
	instance := base.Instance().WithSource(syntax.AnnotatedExplicit)
	switch base.Kind {
	case syntax.Native:
		if !cat.IsInstantiable(base.Native) {
			a.errorf(call, "Native class \"%s\" cannot be constructed as it is abstract.", base.Native)
			return nil, false
		}
	case syntax.Class:
		if native := nativeOf(instance); native != "" && !cat.IsInstantiable(native) {
			a.errorf(call, "Class \"%s\" cannot be constructed as it is based on abstract native class \"%s\".", className(base.Class), native)
			return nil, false
		}
		if m, owner := findMember(base.Class, "_init"); m != nil {
			if fn, ok := m.(*syntax.FuncDecl); ok {
				a.resolveClassMember(owner, fn)
				c := funcCallee(fn)
				c.result, c.static = instance, true
				return c, true
			}
		}
	case syntax.Script:
		return &callee{result: instance, static: true, vararg: true}, true
	default:
		return nil, true
	}
	return &callee{result: instance, static: true}, true
}

// ensureBody resolves the body of fn, if its file has reached the
// body pass, so that calls know whether fn is a coroutine.
func (a *Analyzer) ensureBody(fn *syntax.FuncDecl) {
	if fn.ResolvedBody || fn.Class == nil {
		return
	}
	o := a.owner(fn.Class)
	if o.ref == nil || o.ref.status < FullySolved {
		return
	}
	save := o.enter(fn.Class)
	o.run(func() { o.resolveFunctionBody(fn) })
	o.leave(save)
}

// reduceConstructor reduces a call of the constructor of builtin
// type t, which is folded if its arguments are constant.
func (a *Analyzer) reduceConstructor(call *syntax.CallExpr, id *syntax.Ident, t variant.Type, constant bool) {
	cat := a.env.Catalog
	id.Reduced = true
	call.FuncName = id.Name
	if t == variant.OBJECT {
		id.DataType = nativeMeta("Object")
		call.DataType = syntax.MakeNativeType("Object")
		a.validateCallArgs(call, id.Name, &callee{})
		return
	}
	id.DataType = builtinMeta(t)
	call.DataType = syntax.MakeBuiltinType(t)

	if constant && !variant.IsShared(t) {
		args := make([]variant.Value, len(call.Args))
		for i, arg := range call.Args {
			args[i] = arg.Info().Constant
		}
		v, err := variant.Construct(t, args)
		if err != nil {
			a.errorf(call.Fn, "No constructor of \"%s\" matches the signature \"%s\".", t, constructorSignature(t, call.Args))
			return
		}
		call.IsConstant, call.Constant = true, v
		return
	}

	if len(call.Args) == 1 {
		at := call.Args[0].Info().DataType
		if at.IsVariant() {
			a.markUnsafe(call.Args[0])
		} else if at.IsBuiltin(t) {
			return // copy
		}
	}
	for _, params := range variant.Constructors(t) {
		if len(params) != len(call.Args) {
			continue
		}
		match := true
		for i, p := range params {
			if !IsTypeCompatible(cat, syntax.MakeTypeOf(p), call.Args[i].Info().DataType, true) {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		for i, p := range params {
			if p.Type == variant.INT && !p.Variant && call.Args[i].Info().DataType.IsBuiltin(variant.FLOAT) && t != variant.INT {
				a.warn(call, NarrowingConversion, "Narrowing conversion (float is converted to int and loses precision).")
			}
		}
		return
	}
	a.errorf(call, "No constructor of \"%s\" matches the signature \"%s\".", t, constructorSignature(t, call.Args))
}

func constructorSignature(t variant.Type, args []syntax.Expr) string {
	var buf strings.Builder
	buf.WriteString(t.String())
	buf.WriteByte('(')
	for i, arg := range args {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(arg.Info().DataType.String())
	}
	buf.WriteByte(')')
	return buf.String()
}

// reduceFunctionCall reduces a call of a utility or language
// function, which is folded if the function allows it and its
// arguments are constant.
func (a *Analyzer) reduceFunctionCall(call *syntax.CallExpr, id *syntax.Ident, f *variant.Function, constant, discarded bool) {
	cat := a.env.Catalog
	name := id.Name
	id.Reduced = true
	id.DataType = syntax.MakeBuiltinType(variant.CALLABLE)
	call.FuncName = name
	call.Method = &f.MethodInfo

	if f.Return.IsVoid() && !discarded {
		a.errorf(call, "Cannot get return value of call to \"%s()\" because it returns \"void\".", name)
	}
	call.DataType = returnTypeOf(cat, f.Return)

	if !a.validateCallArgs(call, name, methodCallee(cat, &f.MethodInfo)) {
		return
	}
	if constant && f.Const && f.Eval != nil {
		args := make([]variant.Value, len(call.Args))
		for i, arg := range call.Args {
			args[i] = arg.Info().Constant
		}
		v, err := f.Eval(args)
		if err != nil {
			a.errorf(call, "Invalid call for function \"%s\": %s.", name, err)
			return
		}
		call.IsConstant, call.Constant = true, v
		if !call.DataType.IsHardType() || call.DataType.IsVariant() {
			call.DataType = typeOfValue(v)
		}
	}
}

// validateCallArgs checks the arguments of call against the
// parameters of c. It reports whether they are valid.
func (a *Analyzer) validateCallArgs(call *syntax.CallExpr, name string, c *callee) bool {
	valid := true
	n := len(call.Args)
	if min := len(c.params) - c.defaults; n < min {
		a.errorf(call, "Too few arguments for \"%s()\" call. Expected at least %d but received %d.", name, min, n)
		valid = false
	}
	if !c.vararg && n > len(c.params) {
		a.errorf(call.Args[len(c.params)], "Too many arguments for \"%s()\" call. Expected at most %d but received %d.", name, len(c.params), n)
		valid = false
	}

	for i, arg := range call.Args {
		if i >= len(c.params) {
			break
		}
		pt, at := c.params[i], arg.Info().DataType
		switch {
		case at.IsVariant():
			a.markUnsafe(arg)
		case pt.IsHardType() && !a.isTypeCompatible(pt, at, true, arg):
			if !IsTypeCompatible(a.env.Catalog, at, pt, false) {
				a.errorf(arg, "Invalid argument for \"%s()\" function: argument %d should be \"%s\" but is \"%s\".", name, i+1, pt, at)
				valid = false
			} else {
				a.warn(arg, UnsafeCallArgument, "The argument %d of the function \"%s()\" requires a subtype \"%s\" but the supertype \"%s\" was provided.", i+1, name, pt, at)
			}
		case pt.IsBuiltin(variant.INT) && at.IsBuiltin(variant.FLOAT):
			a.warn(call, NarrowingConversion, "Narrowing conversion (float is converted to int and loses precision).")
		}
	}
	return valid
}

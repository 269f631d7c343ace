// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

// This file defines the interface pass, which computes the types of
// class members without entering function bodies.

import (
	"strings"

	"go.gdlang.net/classdb"
	"go.gdlang.net/syntax"
	"go.gdlang.net/variant"
)

func (a *Analyzer) resolveInterface() {
	a.resolveClassInterface(a.file.Class, true)
}

// resolveClassInterface resolves the members of class c, after its
// base class, and if recursive those of its inner classes.
func (a *Analyzer) resolveClassInterface(c *syntax.ClassDecl, recursive bool) {
	if !c.ResolvedInterface {
		c.ResolvedInterface = true
		if !a.resolveClassInheritance(c, false) {
			return
		}
		if b := c.BaseType; b.Kind == syntax.Class {
			o := a.owner(b.Class)
			if o != a {
				o.ref.RaiseStatus(InterfaceSolved) // errors belong to the base's file
			}
			o.resolveClassInterface(b.Class, false)
		}
		for _, m := range c.Members {
			a.resolveClassMember(c, m)
			a.checkMemberName(c, m)
		}
	}
	if recursive {
		for _, m := range c.Members {
			if inner, ok := m.(*syntax.ClassDecl); ok {
				a.resolveClassInterface(inner, true)
			}
		}
	}
}

// resolveClassMember determines the type of member m of class c.
// Members are resolved on demand, in any order: an expression may
// refer to a member declared further down.
func (a *Analyzer) resolveClassMember(c *syntax.ClassDecl, m syntax.Member) {
	if o := a.owner(c); o != a {
		o.resolveClassMember(c, m)
		return
	}
	save := a.enter(c)
	defer a.leave(save)

	switch m := m.(type) {
	case *syntax.VarDecl:
		a.resolveMemberVar(m)
	case *syntax.ConstDecl:
		a.resolveConst(m)
	case *syntax.SignalDecl:
		a.resolveSignal(m)
	case *syntax.EnumDecl:
		a.resolveEnum(m)
	case *syntax.EnumValue:
		a.resolveEnumValue(m)
	case *syntax.FuncDecl:
		a.resolveFunctionSignature(m)
	case *syntax.ClassDecl:
		a.resolveClassInheritance(m, false)
	case *syntax.GroupDecl:
		// no type
	default:
		bugf("unexpected member %T", m)
	}
}

// memberTitle returns the kind of m for the start of a message.
func memberTitle(m syntax.Member) string {
	s := syntax.KindOf(m).String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// checkMemberName reports a member whose name is already taken by
// another member of c, a member of a base class, a native member, a
// native class or a builtin type.
func (a *Analyzer) checkMemberName(c *syntax.ClassDecl, m syntax.Member) {
	name := m.MemberName()
	if name == "" {
		return
	}
	if _, ok := m.(*syntax.GroupDecl); ok {
		return
	}
	if first := c.Lookup(name); first != m {
		a.errorf(m, "%s \"%s\" has the same name as a previously declared %s.", memberTitle(m), name, syntax.KindOf(first))
		return
	}

	_, isFunc := m.(*syntax.FuncDecl)
	if b := c.BaseType; b.Kind == syntax.Class {
		if prev, owner := findMember(b.Class, name); prev != nil {
			_, prevFunc := prev.(*syntax.FuncDecl)
			if !prevFunc || !isFunc {
				a.errorf(m, "The member \"%s\" already exists in parent class %s.", name, owner.Type)
				return
			}
		}
	}

	cat := a.env.Catalog
	if native := nativeOf(c.Type); native != "" {
		_, isConst := cat.IntegerConstant(native, name)
		if classdb.HasSignal(cat, native, name) || classdb.HasProperty(cat, native, name) || isConst || name == "script" {
			a.errorf(m, "Member \"%s\" redefined (original in native class '%s')", name, native)
			return
		}
	}
	if _, isClass := m.(*syntax.ClassDecl); !isClass && cat.HasClass(name) {
		a.errorf(m, "The member \"%s\" shadows a native class.", name)
		return
	}
	if _, ok := variant.TypeByName(name); ok {
		a.errorf(m, "The member \"%s\" cannot have the same name as a builtin type.", name)
	}
}

// ---- variables and constants ----

func (a *Analyzer) resolveMemberVar(v *syntax.VarDecl) {
	if v.Type.IsSet() {
		return
	}
	if v.Resolving {
		a.errorf(v.Name, "Could not resolve member \"%s\": Cyclic reference.", v.Name.Name)
		return
	}
	v.Resolving = true
	defer func() { v.Resolving = false }()
	a.stmt = v

	v.Type, v.ConversionAssign = a.resolveAssignable(assignable{
		kind:  "variable",
		name:  v.Name,
		spec:  v.TypeSpec,
		infer: v.Infer,
		init:  v.Init,
	})
	if v.HasAccessors() {
		a.resolveAccessors(v)
	}

	if v.Export && v.TypeSpec == nil && v.Init == nil {
		a.errorf(v, "Cannot use simple \"@export\" annotation with variable without type or initializer, since type can't be inferred.")
	}
	if v.Onready {
		if v.Export {
			a.warn(v, OnreadyWithExport, "\"@onready\" will set the default value after \"@export\" takes effect and will override it.")
		}
		if !classdb.IsSubclass(a.env.Catalog, nativeOf(a.class.Type), "Node") {
			a.errorf(v, "\"@onready\" can only be used in classes that inherit \"Node\".")
		}
	}
	if v.Type.Kind == syntax.Enum && v.Init == nil {
		a.warn(v, EnumVariableWithoutDefault, "The variable \"%s\" has an enum type and does not set an explicit default value. The default will be set to \"0\".", v.Name.Name)
	}
}

func (a *Analyzer) resolveConst(k *syntax.ConstDecl) {
	if k.Type.IsSet() {
		return
	}
	if k.Resolving {
		a.errorf(k.Name, "Could not resolve member \"%s\": Cyclic reference.", k.Name.Name)
		return
	}
	k.Resolving = true
	defer func() { k.Resolving = false }()
	a.stmt = k

	t, _ := a.resolveAssignable(assignable{
		kind:  "constant",
		name:  k.Name,
		spec:  k.TypeSpec,
		infer: k.Infer,
		init:  k.Init,
	})
	k.Type = t
	if info := k.Init.Info(); info.IsConstant {
		k.Value = info.Constant
		if b, ok := builtinOf(t); ok && t.Kind == syntax.Builtin && !t.IsMeta && k.Value.Type() != b {
			if v, err := variant.Convert(k.Value, b); err == nil {
				k.Value = v
			}
		}
	}
}

// An assignable is a declaration that binds a name to a value: a
// variable, a constant or a parameter.
type assignable struct {
	kind  string // "variable", "constant" or "parameter"
	name  *syntax.Ident
	spec  *syntax.TypeSpec
	infer bool // declared with :=
	init  syntax.Expr
}

// resolveAssignable returns the type of a declaration, and whether its
// initializer must be converted to that type when assigned.
//
// A declaration with neither a type nor := is untyped, whatever its
// initializer. A constant, or a declaration using :=, takes the type
// of its initializer.
func (a *Analyzer) resolveAssignable(x assignable) (t syntax.DataType, conversion bool) {
	constant := x.kind == "constant"
	name := x.name.Name

	t = syntax.MakeVariantType()
	var specified syntax.DataType
	if x.spec != nil {
		specified = a.resolveDatatype(x.spec, false)
		t = specified
	}

	if x.init != nil {
		a.reduceExpr(x.init)
		if list, ok := x.init.(*syntax.ListExpr); ok && specified.Element != nil {
			a.updateListType(list, specified)
		}
		info := x.init.Info()
		if constant && !info.IsConstant {
			a.errorf(x.init, "Assigned value for %s \"%s\" isn't a constant expression.", x.kind, name)
		}

		it := info.DataType
		if x.infer {
			switch {
			case !it.IsSet():
				a.errorf(x.init, "Cannot infer the type of \"%s\" %s because the value doesn't have a set type.", name, x.kind)
			case it.IsVariant() && !it.IsHardType():
				a.errorf(x.init, "Cannot infer the type of \"%s\" %s because the value is Variant. Use explicit \"Variant\" type if this is intended.", name, x.kind)
			case it.IsBuiltin(variant.NIL) && !constant:
				a.errorf(x.init, "Cannot infer the type of \"%s\" %s because the value is \"null\".", name, x.kind)
			}
		} else if !it.IsSet() {
			a.errorf(x.init, "Could not resolve type for %s \"%s\".", x.kind, name)
		}

		switch {
		case x.spec == nil:
			if x.infer || constant {
				t = it
				if !t.IsSet() || t.IsBuiltin(variant.NIL) && !constant {
					t = syntax.MakeVariantType()
				}
				t.Source = syntax.AnnotatedInferred
			}

		case specified.IsVariant():
			// anything goes

		case it.IsVariant() || !it.IsHardType():
			a.markUnsafe(x.init)
			conversion = true

		case !a.isTypeCompatible(specified, it, true, x.init):
			if !constant && IsTypeCompatible(a.env.Catalog, it, specified, true) {
				// a downcast, checked at run time
				a.markUnsafe(x.init)
				conversion = true
			} else {
				a.errorf(x.init, "Cannot assign a value of type %s to %s \"%s\" with specified type %s.", it, x.kind, name, specified)
			}

		default:
			if specified.IsBuiltin(variant.INT) && it.IsBuiltin(variant.FLOAT) {
				a.warn(x.init, NarrowingConversion, "Narrowing conversion (float is converted to int and loses precision).")
			}
			conversion = needsConversion(specified, it)
		}
	}

	if x.spec == nil && !x.infer && !constant && !AllowUntypedDeclarations {
		a.errorf(x.name, "%s \"%s\" has no static type.", strings.ToUpper(x.kind[:1])+x.kind[1:], name)
	}
	t.IsConstant = constant
	return t, conversion
}

// needsConversion reports whether a value of type source, compatible
// with target, must be converted when stored.
func needsConversion(target, source syntax.DataType) bool {
	if target.Kind != syntax.Builtin || source.Kind != syntax.Builtin {
		return false
	}
	if target.Builtin != source.Builtin {
		return true
	}
	return target.Element != nil && source.Element == nil
}

// updateListType gives an array literal the typed array type t, and
// checks its elements against the element type.
func (a *Analyzer) updateListType(list *syntax.ListExpr, t syntax.DataType) {
	elem := *t.Element
	for _, e := range list.List {
		et := e.Info().DataType
		if et.IsVariant() || !et.IsHardType() {
			a.markUnsafe(e)
			continue
		}
		if !a.isTypeCompatible(elem, et, true, e) {
			a.errorf(e, "Cannot have an element of type \"%s\" in an array of type \"Array[%s]\".", et, elem)
			return
		}
	}
	list.DataType = t.WithSource(syntax.AnnotatedExplicit)
	list.DataType.IsConstant = false
	list.DataType.IsMeta = false
	if list.IsConstant {
		if arr, ok := list.Constant.(*variant.Array); ok {
			list.Constant = typedArray(arr, elem)
		}
	}
}

// typedArray returns a read-only copy of arr whose elements are
// converted to the builtin element type, if any.
func typedArray(arr *variant.Array, elem syntax.DataType) *variant.Array {
	elems := make([]variant.Value, arr.Len())
	for i, v := range arr.Elems() {
		elems[i] = v
		if elem.Kind == syntax.Builtin && v.Type() != elem.Builtin {
			if c, err := variant.Convert(v, elem.Builtin); err == nil {
				elems[i] = c
			}
		}
	}
	typed := variant.NewArray(elems)
	typed.MakeReadOnly()
	return typed
}

// isTypeCompatible is IsTypeCompatible, warning when an int is used
// where an enum value is expected. The node n is the source value.
func (a *Analyzer) isTypeCompatible(target, source syntax.DataType, implicit bool, n syntax.Expr) bool {
	ok := IsTypeCompatible(a.env.Catalog, target, source, implicit)
	if ok && n != nil && target.Kind == syntax.Enum && source.Kind == syntax.Builtin && !source.IsVariant() {
		a.warn(n, IntAsEnumWithoutCast, "Integer used when an enum value is expected. If this is intended cast the integer to the enum type.")
		if info := n.Info(); info.IsConstant {
			if i, isInt := info.Constant.(variant.Int); isInt && !hasEnumValue(target, int64(i)) {
				a.warn(n, IntAsEnumWithoutMatch, "Cannot assign %d as Enum \"%s\": no enum member has matching value.", int64(i), target)
			}
		}
	}
	return ok
}

func hasEnumValue(t syntax.DataType, v int64) bool {
	for _, e := range t.EnumValues {
		if e.Value == v {
			return true
		}
	}
	return false
}

// ---- property accessors ----

// resolveAccessors resolves the signatures of the setter and getter
// of property v and checks them against its type.
func (a *Analyzer) resolveAccessors(v *syntax.VarDecl) {
	if fn := v.Setter; fn != nil {
		a.resolveFunctionSignature(fn)
		if p := fn.Params[0]; p.TypeSpec == nil {
			p.Type = v.Type
			p.Type.IsConstant = false
		}
		fn.ReturnType = syntax.MakeBuiltinType(variant.NIL)
	}
	if fn := v.Getter; fn != nil {
		a.resolveFunctionSignature(fn)
		fn.ReturnType = v.Type
		fn.ReturnType.IsConstant = false
	}

	var getter, setter *syntax.FuncDecl
	if id := v.GetterName; id != nil {
		getter = a.accessorFunction(id)
		switch {
		case getter == nil:
			a.errorf(v, "Getter \"%s\" not found.", id.Name)
		case len(getter.Params) != 0:
			a.errorf(v, "Function \"%s\" cannot be used as getter because of its signature.", id.Name)
			getter = nil
		case !a.isTypeCompatible(v.Type, getter.ReturnType, true, nil):
			a.errorf(v, "Function with return type \"%s\" cannot be used as getter for a property of type \"%s\".", getter.ReturnType, v.Type)
			getter = nil
		case v.Type.IsBuiltin(variant.INT) && getter.ReturnType.IsBuiltin(variant.FLOAT):
			a.warn(v, NarrowingConversion, "Narrowing conversion (float is converted to int and loses precision).")
		}
	}
	if id := v.SetterName; id != nil {
		setter = a.accessorFunction(id)
		switch {
		case setter == nil:
			a.errorf(v, "Setter \"%s\" not found.", id.Name)
		case len(setter.Params) != 1:
			a.errorf(v, "Function \"%s\" cannot be used as setter because of its signature.", id.Name)
			setter = nil
		case !a.isTypeCompatible(v.Type, setter.Params[0].Type, true, nil):
			a.errorf(v, "Function with argument type \"%s\" cannot be used as setter for a property of type \"%s\".", setter.Params[0].Type, v.Type)
			setter = nil
		case v.Type.IsBuiltin(variant.INT) && setter.Params[0].Type.IsBuiltin(variant.FLOAT):
			a.warn(v, NarrowingConversion, "Narrowing conversion (float is converted to int and loses precision).")
		}
	}
	if v.Type.IsVariant() && getter != nil && setter != nil {
		if !a.isTypeCompatible(getter.ReturnType, setter.Params[0].Type, true, nil) {
			a.errorf(v, "Getter with type \"%s\" cannot be used along with setter of type \"%s\".", getter.ReturnType, setter.Params[0].Type)
		}
	}
}

// accessorFunction returns the function named by a "set = f" or
// "get = f" clause, with its signature resolved, or nil.
func (a *Analyzer) accessorFunction(id *syntax.Ident) *syntax.FuncDecl {
	m, owner := findMember(a.class, id.Name)
	fn, ok := m.(*syntax.FuncDecl)
	if !ok {
		return nil
	}
	a.resolveClassMember(owner, fn)
	return fn
}

// ---- signals and enums ----

func (a *Analyzer) resolveSignal(s *syntax.SignalDecl) {
	if s.Type.IsSet() {
		return
	}
	a.stmt = s
	for _, p := range s.Params {
		if p.TypeSpec != nil {
			p.Type = a.resolveDatatype(p.TypeSpec, false)
		} else {
			p.Type = syntax.MakeVariantType()
		}
	}
	s.Type = syntax.MakeBuiltinType(variant.SIGNAL)
}

// enumName returns the name of the type of a named enum of class c.
func enumName(c *syntax.ClassDecl, name string) string {
	if c.Outer == nil {
		return name
	}
	return className(c) + "." + name
}

// resolveEnum resolves the values of a named enum and gives it the
// type of its dictionary of values.
func (a *Analyzer) resolveEnum(e *syntax.EnumDecl) {
	if e.Type.IsSet() {
		return
	}
	entries := make([]syntax.EnumEntry, len(e.Values))
	for i, v := range e.Values {
		a.resolveEnumValue(v)
		entries[i] = syntax.EnumEntry{Name: v.Name.Name, Value: v.Value}
	}
	if e.Name == nil {
		e.Type = syntax.MakeBuiltinType(variant.INT)
		return
	}
	t := syntax.MakeEnumType(enumName(a.class, e.Name.Name), "", entries).Meta()
	t.IsConstant = true
	e.Type = t
	e.Dict = enumDict(t)
}

// resolveEnumValue computes the value of an enum element: its
// initializer, which must be a constant int, or one more than the
// previous element.
func (a *Analyzer) resolveEnumValue(v *syntax.EnumValue) {
	if v.Resolved {
		return
	}
	if a.enumValues[v] {
		a.errorf(v.Name, "Could not resolve member \"%s\": Cyclic reference.", v.Name.Name)
		return
	}
	a.enumValues[v] = true
	defer delete(a.enumValues, v)

	if v.Index > 0 {
		prev := v.Parent.Values[v.Index-1]
		a.resolveEnumValue(prev)
		v.Value = prev.Value + 1
	}
	if v.Init != nil {
		saveEnum, saveStmt := a.enum, a.stmt
		a.enum, a.stmt = v.Parent, v
		a.reduceExpr(v.Init)
		a.enum, a.stmt = saveEnum, saveStmt

		info := v.Init.Info()
		if !info.IsConstant {
			a.errorf(v.Init, "Enum values must be constant.")
		} else if i, ok := info.Constant.(variant.Int); !ok {
			a.errorf(v.Init, "Enum values must be integers.")
		} else {
			v.Value = int64(i)
		}
	}
	v.Resolved = true
}

// ---- function signatures ----

// resolveFunctionSignature resolves the parameter and return types of
// fn, and checks that a method overriding another has the same
// signature.
func (a *Analyzer) resolveFunctionSignature(fn *syntax.FuncDecl) {
	if fn.ResolvedSignature {
		return
	}
	name := "<anonymous lambda>"
	if fn.Name != nil {
		name = fn.Name.Name
	}
	if a.signatures[fn] {
		a.errorf(fn, "Could not resolve function \"%s\": Cyclic reference.", name)
		return
	}
	a.signatures[fn] = true
	defer delete(a.signatures, fn)

	saveFn, saveStmt := a.fn, a.stmt
	a.fn = fn
	for _, p := range fn.Params {
		a.stmt = p
		p.Type, p.ConversionAssign = a.resolveAssignable(assignable{
			kind:  "parameter",
			name:  p.Name,
			spec:  p.TypeSpec,
			infer: p.Infer,
			init:  p.Default,
		})
	}
	a.fn, a.stmt = saveFn, saveStmt

	isMethod := fn.Lambda == nil && fn.Property == nil
	switch {
	case isMethod && name == "_init":
		fn.ReturnType = a.class.Type.Instance()
		if fn.Return != nil {
			if rt := a.resolveDatatype(fn.Return, true); !rt.IsVoid() {
				a.errorf(fn.Return, "Constructor cannot have an explicit return type.")
			}
		}
	case fn.Return != nil:
		fn.ReturnType = a.resolveDatatype(fn.Return, true)
	default:
		// Inferred rather than undetected: the function is known.
		fn.ReturnType = syntax.MakeVariantType().WithSource(syntax.Inferred)
		if isMethod && !AllowUntypedDeclarations {
			a.errorf(fn, "Function \"%s()\" has no static return type.", name)
		}
	}
	fn.ResolvedSignature = true

	if isMethod && name != "_init" {
		a.checkOverride(fn)
	}
}

// A signature is the type of a function, for comparisons between an
// overriding method and the one it overrides.
type signature struct {
	params   []syntax.DataType
	defaults int
	result   syntax.DataType
	static   bool
	native   string // class of a non-virtual native method
}

func (s *signature) String(name string) string {
	var buf strings.Builder
	buf.WriteString(name)
	buf.WriteByte('(')
	for i, p := range s.params {
		if i > 0 {
			buf.WriteString(", ")
		}
		t := p.String()
		if t == "null" {
			t = "Variant"
		}
		buf.WriteString(t)
		if i >= len(s.params)-s.defaults {
			buf.WriteString(" = <default>")
		}
	}
	buf.WriteString(") -> ")
	switch {
	case s.result.IsVariant():
		buf.WriteString("Variant")
	case s.result.IsVoid():
		buf.WriteString("void")
	default:
		buf.WriteString(s.result.String())
	}
	return buf.String()
}

// parentSignature returns the signature of the method that a method
// of class c called name would override.
func (a *Analyzer) parentSignature(c *syntax.ClassDecl, name string) (*signature, bool) {
	base := c.BaseType
	if base.Kind == syntax.Class {
		if m, owner := findMember(base.Class, name); m != nil {
			fn, ok := m.(*syntax.FuncDecl)
			if !ok {
				return nil, false // a name conflict, reported elsewhere
			}
			a.resolveClassMember(owner, fn)
			sig := &signature{result: fn.ReturnType, static: fn.Static}
			for _, p := range fn.Params {
				sig.params = append(sig.params, p.Type)
				if p.Default != nil {
					sig.defaults++
				}
			}
			return sig, true
		}
	}
	native := nativeOf(base)
	if native == "" {
		return nil, false
	}
	m, ok := a.env.Catalog.Method(native, name)
	if !ok {
		return nil, false
	}
	return methodSignature(a.env.Catalog, m, native), true
}

// methodSignature returns the signature of a native method of class.
func methodSignature(cat classdb.Catalog, m *variant.MethodInfo, class string) *signature {
	sig := &signature{defaults: len(m.Defaults), static: m.Static}
	for _, arg := range m.Args {
		sig.params = append(sig.params, typeOfProperty(cat, arg))
	}
	sig.result = returnTypeOf(cat, m.Return)
	if !m.Virtual {
		sig.native = class
	}
	return sig
}

// returnTypeOf returns the type of the result of a native method.
func returnTypeOf(cat classdb.Catalog, p variant.PropertyInfo) syntax.DataType {
	if p.IsVoid() {
		return syntax.MakeBuiltinType(variant.NIL)
	}
	return typeOfProperty(cat, p)
}

func (a *Analyzer) checkOverride(fn *syntax.FuncDecl) {
	name := fn.Name.Name
	parent, ok := a.parentSignature(fn.Class, name)
	if !ok {
		return
	}
	defaults := 0
	for _, p := range fn.Params {
		if p.Default != nil {
			defaults++
		}
	}
	extra := len(fn.Params) - len(parent.params)
	valid := fn.Static == parent.static &&
		parent.result.Equal(fn.ReturnType) &&
		extra >= 0 &&
		defaults >= parent.defaults+extra
	for i, pt := range parent.params {
		if !valid {
			break
		}
		valid = pt.Equal(fn.Params[i].Type)
	}
	if !valid {
		a.errorf(fn, "The function signature doesn't match the parent. Parent signature is \"%s\".", parent.String(name))
	}
	if parent.native != "" {
		a.warn(fn, NativeMethodOverride, "The method \"%s()\" overrides a method from native class \"%s\". This won't be called by the engine and may not work as expected.", name, parent.native)
	}
}

// signatureOf returns the signature of a declared function as shown
// in diagnostics.
func signatureOf(fn *syntax.FuncDecl) string {
	sig := signature{result: fn.ReturnType}
	for _, p := range fn.Params {
		sig.params = append(sig.params, p.Type)
		if p.Default != nil {
			sig.defaults++
		}
	}
	name := "<anonymous lambda>"
	if fn.Name != nil {
		name = fn.Name.Name
	}
	return sig.String(name)
}

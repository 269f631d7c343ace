// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

// This file defines the reduction of expressions: the computation of
// their static type and, where possible, their constant value.

import (
	"io/fs"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"go.gdlang.net/classdb"
	"go.gdlang.net/syntax"
	"go.gdlang.net/variant"
)

// reduceExpr computes the type and constant value of e, once.
func (a *Analyzer) reduceExpr(e syntax.Expr) {
	info := e.Info()
	if info.Reduced {
		return
	}
	info.Reduced = true

	switch e := e.(type) {
	case *syntax.Literal:
		v := e.Value
		if v == nil {
			v = variant.Nil{}
		}
		setConstant(info, v)
	case *syntax.Ident:
		a.reduceIdent(e, false)
	case *syntax.SelfExpr:
		if fn := a.staticFunction(); fn != nil {
			a.errorf(e, "Cannot use \"self\" inside a static function.")
		}
		e.DataType = classType(a.class)
		a.markLambdaUseSelf()
	case *syntax.ListExpr:
		a.reduceList(e)
	case *syntax.DictExpr:
		a.reduceDict(e)
	case *syntax.DotExpr:
		a.reduceDot(e)
	case *syntax.IndexExpr:
		a.reduceIndex(e)
	case *syntax.CallExpr:
		a.reduceCall(e)
	case *syntax.UnaryExpr:
		a.reduceUnary(e)
	case *syntax.BinaryExpr:
		a.reduceBinary(e)
	case *syntax.CondExpr:
		a.reduceCond(e)
	case *syntax.TypeTestExpr:
		a.reduceTypeTest(e)
	case *syntax.CastExpr:
		a.reduceCast(e)
	case *syntax.AwaitExpr:
		a.reduceAwait(e)
	case *syntax.PreloadExpr:
		a.reducePreload(e)
	case *syntax.LambdaExpr:
		a.reduceLambda(e)
	default:
		bugf("unexpected expression %T", e)
	}

	if !info.DataType.IsSet() {
		info.DataType = syntax.MakeVariantType()
	}
}

// reduceBase reduces the operand of an attribute, index or call.
// Only there may an identifier name a builtin type.
func (a *Analyzer) reduceBase(x syntax.Expr) {
	id, ok := x.(*syntax.Ident)
	if !ok || id.Reduced {
		a.reduceExpr(x)
		return
	}
	id.Reduced = true
	a.reduceIdent(id, true)
	if !id.DataType.IsSet() {
		id.DataType = syntax.MakeVariantType()
	}
}

func setConstant(info *syntax.ExprInfo, v variant.Value) {
	info.IsConstant = true
	info.Constant = v
	info.DataType = typeOfValue(v)
}

// classValue returns the constant denoting class c.
func classValue(c *syntax.ClassDecl) variant.Value {
	return &variant.Resource{Path: fqcn(c), Class: "GDScript"}
}

// ---- identifiers ----

// reduceIdent resolves a name, searching in order the values of the
// enum being declared, the locals, the members of the enclosing
// classes, and the global scope.
func (a *Analyzer) reduceIdent(id *syntax.Ident, asBase bool) {
	name := id.Name

	if e := a.enum; e != nil {
		for _, v := range e.Values {
			if v.Name.Name != name {
				continue
			}
			id.Source, id.Decl = syntax.MemberConstant, v
			id.DataType = syntax.MakeBuiltinType(variant.INT)
			if v.Resolved {
				id.IsConstant, id.Constant = true, variant.Int(v.Value)
			} else {
				a.errorf(id, "Cannot use another enum element before it was declared.")
			}
			return
		}
	}

	if id.Source.IsLocal() {
		a.reduceLocal(id)
		return
	}

	for c := a.class; c != nil; c = c.Outer {
		if c.Name != nil && c.Name.Name == name {
			a.resolveClassInheritance(c, false)
			id.Source, id.Decl = syntax.MemberClass, c
			id.DataType = classType(c).Meta()
			id.DataType.IsConstant = true
			id.IsConstant, id.Constant = true, classValue(c)
			return
		}
		var (
			f  found
			ok bool
		)
		if c == a.class {
			f, ok = a.objectMember(classType(c), name)
		} else {
			f, ok = a.classMember(c, name)
		}
		if !ok {
			continue
		}
		if c != a.class {
			// Only constants, enums and classes of an outer class are
			// visible from an inner one.
			switch f.kind {
			case syntax.VariableMember, syntax.SignalMember, syntax.FunctionMember:
				continue
			}
		}
		useMember(id, f)
		switch f.kind {
		case syntax.VariableMember, syntax.SignalMember:
			if fn := a.staticFunction(); fn != nil {
				what := "instance variable"
				if f.kind == syntax.SignalMember {
					what = "signal"
				}
				a.errorf(id, "Cannot access %s \"%s\" from the static function \"%s()\".", what, name, funcName(fn))
			}
			a.markLambdaUseSelf()
		case syntax.FunctionMember:
			if !f.static {
				a.markLambdaUseSelf()
			}
		}
		return
	}

	a.reduceGlobal(id, asBase)
}

// reduceLocal resolves a reference to a local of the enclosing
// functions, already bound by the parser.
func (a *Analyzer) reduceLocal(id *syntax.Ident) {
	switch d := id.Decl.(type) {
	case *syntax.Param:
		id.DataType = d.Type
		d.Usages++
	case *syntax.VarDecl:
		id.DataType = d.Type
		d.Usages++
	case *syntax.ConstDecl:
		id.DataType = d.Type
		if d.Value != nil {
			id.IsConstant, id.Constant = true, d.Value
		}
		d.Usages++
	case *syntax.ForStmt:
		id.DataType = d.VarType
		d.Usages++
	case *syntax.BindPattern:
		id.DataType = d.Type
		d.Usages++
	default:
		bugf("local %s declared by %T", id.Name, id.Decl)
	}
	if id.DeclFunc != nil && id.DeclFunc != a.fn {
		a.capture(id)
	}
}

// capture records id as a capture of each lambda between the current
// function and the function declaring the local.
func (a *Analyzer) capture(id *syntax.Ident) {
	for fn := a.fn; fn != nil && fn != id.DeclFunc && fn.Lambda != nil; fn = fn.Outer {
		l := fn.Lambda
		dup := false
		for _, c := range l.Captures {
			if c.Decl == id.Decl {
				dup = true
				break
			}
		}
		if !dup {
			l.Captures = append(l.Captures, id)
		}
	}
}

// reduceGlobal resolves a name that is neither local nor a member.
func (a *Analyzer) reduceGlobal(id *syntax.Ident, asBase bool) {
	name := id.Name
	cat := a.env.Catalog

	if t, ok := variant.TypeByName(name); ok && t != variant.OBJECT {
		if asBase {
			id.DataType = builtinMeta(t)
			return
		}
		a.errorf(id, "Builtin type cannot be used as a name on its own.")
		return
	}

	if cat.HasClass(name) {
		id.DataType = nativeMeta(name)
		return
	}
	if path, ok := a.env.GlobalClasses[name]; ok {
		t, err := a.loadScript(path, InheritanceSolved)
		if _, ok := err.(loadError); ok {
			a.errorf(id, "Could not load global class \"%s\" from \"%s\".", name, path)
			return
		}
		id.DataType = t.Meta()
		id.DataType.IsConstant = true
		if t.Kind == syntax.Class {
			id.IsConstant, id.Constant = true, classValue(t.Class)
		}
		return
	}

	if al, ok := a.env.Autoloads[name]; ok && al.Singleton {
		if !a.isScriptPath(al.Path) {
			id.DataType = syntax.MakeNativeType("Node")
			return
		}
		t, err := a.loadScript(al.Path, InheritanceSolved)
		if _, ok := err.(loadError); ok {
			a.errorf(id, "Could not load autoload \"%s\" from \"%s\".", name, al.Path)
			return
		}
		id.DataType = t
		return
	}

	if class, ok := cat.Singleton(name); ok {
		id.DataType = syntax.MakeNativeType(class)
		return
	}
	if v, ok := cat.GlobalConstant(name); ok {
		setConstant(&id.ExprInfo, v)
		return
	}
	if t, ok := enumType(cat, name); ok {
		id.DataType = t.Meta()
		id.DataType.IsConstant = true
		id.IsConstant, id.Constant = true, enumDict(t)
		return
	}

	_, utility := variant.Utility(name)
	_, language := classdb.LanguageFunction(name)
	if utility || language {
		a.errorf(id, "Built-in function \"%s\" cannot be used as an identifier.", name)
		return
	}
	a.errorf(id, "Identifier \"%s\" not declared in the current scope.%s", name, suggest(name, a.namesInScope()))
}

// isScriptPath reports whether path denotes a script rather than a
// scene or other resource.
func (a *Analyzer) isScriptPath(path string) bool {
	if _, ok := a.env.Scripts[path]; ok {
		return true
	}
	return strings.HasSuffix(path, ".gd")
}

// namesInScope returns the names visible from the current position,
// for spelling suggestions.
func (a *Analyzer) namesInScope() []string {
	var names []string
	for b := a.block; b != nil; b = b.Parent {
		for _, l := range b.Locals {
			names = append(names, l.Name)
		}
	}
	for c := a.class; c != nil; c = c.Outer {
		for k := c; k != nil; {
			for _, m := range k.Members {
				if name := m.MemberName(); name != "" {
					names = append(names, name)
				}
			}
			if k.BaseType.Kind != syntax.Class {
				break
			}
			k = k.BaseType.Class
		}
	}
	cat := a.env.Catalog
	if a.class != nil {
		if native := nativeOf(classType(a.class)); native != "" {
			names = append(names, cat.MemberNames(native)...)
		}
	}
	for name := range a.env.GlobalClasses {
		names = append(names, name)
	}
	for name, al := range a.env.Autoloads {
		if al.Singleton {
			names = append(names, name)
		}
	}
	names = append(names, cat.ClassNames()...)
	sort.Strings(names)
	return names
}

// ---- members ----

// A found describes a member of an object type.
type found struct {
	kind    syntax.MemberKind
	t       syntax.DataType
	value   variant.Value // for constants
	static  bool          // for functions
	member  syntax.Member // nil for native members
	owner   *syntax.ClassDecl
	native  string              // class of a native member
	method  *variant.MethodInfo // for native methods
	unknown bool                // members of t cannot be known statically
}

// objectMember looks up the member name of the object type t, in its
// script classes and then in its native class.
func (a *Analyzer) objectMember(t syntax.DataType, name string) (found, bool) {
	switch t.Kind {
	case syntax.Class:
		if f, ok := a.classMember(t.Class, name); ok {
			return f, true
		}
		c := t.Class
		for c.BaseType.Kind == syntax.Class {
			c = c.BaseType.Class
		}
		switch b := c.BaseType; b.Kind {
		case syntax.Native, syntax.Script:
			return a.objectMember(b, name)
		}
		if native := nativeOf(classType(c)); native != "" {
			return a.nativeMember(native, name)
		}
		return found{unknown: true}, false
	case syntax.Script:
		f, ok := a.objectMember(t.Script.ScriptBase(), name)
		f.unknown = !ok
		return f, ok
	case syntax.Native:
		return a.nativeMember(t.Native, name)
	case syntax.Builtin:
		if t.Builtin == variant.OBJECT {
			return a.nativeMember("Object", name)
		}
	}
	return found{}, false
}

// classMember looks up name among the members of class c and of its
// script base classes.
func (a *Analyzer) classMember(c *syntax.ClassDecl, name string) (found, bool) {
	m, owner := findMember(c, name)
	if m == nil {
		return found{}, false
	}
	a.resolveClassMember(owner, m)

	f := found{kind: syntax.KindOf(m), member: m, owner: owner}
	switch m := m.(type) {
	case *syntax.VarDecl:
		f.t = m.Type
	case *syntax.ConstDecl:
		f.t, f.value = m.Type, m.Value
	case *syntax.SignalDecl:
		f.t = syntax.MakeBuiltinType(variant.SIGNAL)
	case *syntax.EnumDecl:
		f.t = m.Type
		if m.Dict != nil {
			f.value = m.Dict
		}
	case *syntax.EnumValue:
		f.t = syntax.MakeBuiltinType(variant.INT)
		if m.Parent.Name != nil {
			f.t = m.Parent.Type.Instance()
		}
		f.t.IsConstant = true
		if m.Resolved {
			f.value = variant.Int(m.Value)
		}
	case *syntax.FuncDecl:
		f.t = syntax.MakeBuiltinType(variant.CALLABLE)
		f.static = m.Static
	case *syntax.ClassDecl:
		f.t = classType(m).Meta()
		f.t.IsConstant = true
		f.value = classValue(m)
	}
	if !f.t.IsSet() {
		f.t = syntax.MakeVariantType()
	}
	return f, true
}

// nativeMember looks up name among the members of a native class.
func (a *Analyzer) nativeMember(class, name string) (found, bool) {
	cat := a.env.Catalog
	f := found{native: class}
	if p, ok := cat.Property(class, name); ok {
		f.kind, f.t = syntax.VariableMember, typeOfProperty(cat, p)
		return f, true
	}
	if m, ok := cat.Method(class, name); ok {
		f.kind, f.t = syntax.FunctionMember, syntax.MakeBuiltinType(variant.CALLABLE)
		f.method, f.static = m, m.Static
		return f, true
	}
	if _, ok := cat.Signal(class, name); ok {
		f.kind, f.t = syntax.SignalMember, syntax.MakeBuiltinType(variant.SIGNAL)
		return f, true
	}
	if values, ok := cat.Enum(class, name); ok {
		owner := declaringClass(cat, class, func(c string) bool {
			_, ok := cat.Enum(c, name)
			return ok
		})
		t := syntax.MakeEnumType(name, owner, enumEntries(values)).Meta()
		t.IsConstant = true
		f.kind, f.t, f.value = syntax.EnumMember, t, enumDict(t)
		return f, true
	}
	if v, ok := cat.IntegerConstant(class, name); ok {
		t := syntax.MakeBuiltinType(variant.INT)
		if enum, ok := cat.EnumOfConstant(class, name); ok {
			owner := declaringClass(cat, class, func(c string) bool {
				_, ok := cat.Enum(c, enum)
				return ok
			})
			if et, ok := enumType(cat, owner+"."+enum); ok {
				t = et
			}
		}
		t.IsConstant = true
		f.kind, f.t, f.value = syntax.ConstantMember, t, variant.Int(v)
		return f, true
	}
	return f, false
}

// useMember records that id refers to member f.
func useMember(id *syntax.Ident, f found) {
	id.Reduced = true
	id.DataType = f.t
	if f.member != nil {
		id.Decl = f.member
	}
	if f.value != nil {
		id.IsConstant, id.Constant = true, f.value
	}
	switch f.kind {
	case syntax.VariableMember:
		id.Source = syntax.MemberVariable
		if f.native != "" {
			id.Source = syntax.InheritedVariable
		}
	case syntax.SignalMember:
		id.Source = syntax.MemberSignal
	case syntax.FunctionMember:
		id.Source = syntax.MemberFunction
	case syntax.ClassMember:
		id.Source = syntax.MemberClass
	default:
		id.Source = syntax.MemberConstant
	}
	switch m := f.member.(type) {
	case *syntax.VarDecl:
		m.Usages++
	case *syntax.ConstDecl:
		m.Usages++
	case *syntax.SignalDecl:
		m.Usages++
	case *syntax.EnumDecl:
		m.Usages++
	case *syntax.EnumValue:
		m.Parent.Usages++
	case *syntax.FuncDecl:
		m.Usages++
	}
}

// markLambdaUseSelf records that the enclosing lambdas refer to the
// instance.
func (a *Analyzer) markLambdaUseSelf() {
	for _, l := range a.lambdas {
		l.UseSelf = true
	}
}

// ---- containers ----

func (a *Analyzer) reduceList(e *syntax.ListExpr) {
	constant := true
	for _, x := range e.List {
		a.reduceExpr(x)
		constant = constant && x.Info().IsConstant
	}
	e.DataType = syntax.MakeBuiltinType(variant.ARRAY)
	if constant {
		elems := make([]variant.Value, len(e.List))
		for i, x := range e.List {
			elems[i] = x.Info().Constant
		}
		list := variant.NewArray(elems)
		list.MakeReadOnly()
		e.IsConstant, e.Constant = true, list
	}
}

func (a *Analyzer) reduceDict(e *syntax.DictExpr) {
	type key struct {
		v    variant.Value
		line int32
	}
	var keys []key
	constant := true
	for _, entry := range e.Entries {
		a.reduceExpr(entry.Key)
		a.reduceExpr(entry.Value)
		k := entry.Key.Info()
		if k.IsConstant {
			for _, prev := range keys {
				if prev.v.Type() == k.Constant.Type() && variant.Equal(prev.v, k.Constant) {
					a.errorf(entry.Key, "Key \"%s\" was already used in this dictionary (at line %d).", k.Constant, prev.line)
					break
				}
			}
			keys = append(keys, key{k.Constant, syntax.Start(entry.Key).Line})
		}
		constant = constant && k.IsConstant && entry.Value.Info().IsConstant
	}
	e.DataType = syntax.MakeBuiltinType(variant.DICTIONARY)
	if !constant {
		return
	}
	d := variant.NewDictionary()
	for _, entry := range e.Entries {
		if err := d.Set(entry.Key.Info().Constant, entry.Value.Info().Constant); err != nil {
			a.errorf(entry.Key, "%s.", capitalize(err.Error()))
			return
		}
	}
	d.MakeReadOnly()
	e.IsConstant, e.Constant = true, d
}

// ---- attributes and indexing ----

func (a *Analyzer) reduceDot(e *syntax.DotExpr) {
	a.reduceBase(e.X)
	x := e.X.Info()
	b := x.DataType
	name := e.Name.Name

	switch {
	case b.Kind == syntax.Enum:
		if !b.IsMeta {
			a.errorf(e.Name, "Cannot get property from enum value.")
			break
		}
		if v, ok := b.EnumValue(name); ok {
			e.DataType = b.Instance()
			e.IsConstant, e.Constant = true, variant.Int(v)
			break
		}
		a.errorf(e.Name, "Cannot find member \"%s\" in base \"%s\".", name, b.Instance())

	case x.IsConstant && !b.IsMeta && !b.IsObject():
		v, err := variant.GetNamed(x.Constant, name)
		if err != nil {
			a.errorf(e.Name, "Cannot find member \"%s\" in base \"%s\".", name, b)
			break
		}
		setConstant(&e.ExprInfo, v)

	case b.IsVariant() || !b.IsHardType():
		a.markUnsafe(e)

	case b.Kind == syntax.Builtin && b.Builtin != variant.OBJECT:
		a.reduceBuiltinAttr(e, b)

	default:
		a.reduceObjectAttr(e, b)
	}

	if !e.DataType.IsSet() {
		e.DataType = syntax.MakeVariantType()
	}
	e.Name.Reduced = true
	e.Name.DataType = e.DataType
	e.Name.IsConstant, e.Name.Constant = e.IsConstant, e.Constant
}

func (a *Analyzer) reduceBuiltinAttr(e *syntax.DotExpr, b syntax.DataType) {
	name := e.Name.Name
	if b.IsMeta {
		if v, ok := variant.Constant(b.Builtin, name); ok {
			setConstant(&e.ExprInfo, v)
			return
		}
		a.errorf(e.Name, "Cannot find constant \"%s\" on type \"%s\".", name, b.Instance())
		return
	}
	switch b.Builtin {
	case variant.NIL:
		a.errorf(e.Name, "Invalid get index \"%s\" on base Nil", name)
		return
	case variant.DICTIONARY:
		return // any key
	}
	if p, ok := variant.Property(b.Builtin, name); ok {
		e.DataType = typeOfProperty(a.env.Catalog, p)
		return
	}
	a.errorf(e.Name, "Cannot find property \"%s\" on base \"%s\".", name, b)
}

func (a *Analyzer) reduceObjectAttr(e *syntax.DotExpr, b syntax.DataType) {
	name := e.Name.Name
	f, ok := a.objectMember(b.Instance(), name)
	if ok && b.IsMeta {
		// A class gives access to its constants, enums, inner
		// classes and static functions only.
		switch f.kind {
		case syntax.VariableMember, syntax.SignalMember:
			ok = false
		case syntax.FunctionMember:
			ok = f.static || f.native != ""
		}
	}
	if !ok {
		if b.IsMeta && !f.unknown {
			a.errorf(e.Name, "Cannot find member \"%s\" in base \"%s\".", name, b.Instance())
			return
		}
		a.warn(e.Name, UnsafePropertyAccess, "The property \"%s\" is not present on the inferred type \"%s\" (but may be present on a subtype).", name, b)
		return
	}
	useMember(e.Name, f)
	e.DataType = f.t
	if f.value != nil {
		e.IsConstant, e.Constant = true, f.value
	}
}

func (a *Analyzer) reduceIndex(e *syntax.IndexExpr) {
	a.reduceBase(e.X)
	a.reduceExpr(e.Y)
	x, y := e.X.Info(), e.Y.Info()
	e.DataType = syntax.MakeVariantType()

	if x.IsConstant && y.IsConstant {
		v, err := variant.GetIndexed(x.Constant, y.Constant)
		if err != nil {
			a.errorf(e.Y, "Cannot get index \"%s\" from \"%s\".", variant.Repr(y.Constant), variant.Repr(x.Constant))
			return
		}
		setConstant(&e.ExprInfo, v)
		return
	}

	b, k := x.DataType, y.DataType
	if b.IsVariant() {
		a.markUnsafe(e)
		return
	}
	base, _ := builtinOf(b)
	if kt, ok := builtinOf(k); ok {
		if b.Kind == syntax.Builtin && !b.IsMeta {
			if !validIndex(base, kt) {
				a.errorf(e.Y, "Invalid index type \"%s\" for a base of type \"%s\".", k, b)
				return
			}
		} else if kt != variant.STRING && kt != variant.STRING_NAME {
			a.errorf(e.Y, "Only String or StringName can be used as index for type \"%s\", but received a \"%s\".", b, k)
			return
		}
	}

	var t syntax.DataType
	switch base {
	case variant.NIL, variant.BOOL, variant.INT, variant.FLOAT,
		variant.STRING_NAME, variant.NODE_PATH, variant.CALLABLE, variant.SIGNAL:
		a.errorf(e.X, "Cannot use subscript operator on a base of type \"%s\".", b)
		return
	case variant.PACKED_BYTE_ARRAY, variant.PACKED_INT32_ARRAY, variant.PACKED_INT64_ARRAY,
		variant.VECTOR2I, variant.VECTOR3I:
		t = syntax.MakeBuiltinType(variant.INT)
	case variant.PACKED_FLOAT32_ARRAY, variant.PACKED_FLOAT64_ARRAY,
		variant.VECTOR2, variant.VECTOR3:
		t = syntax.MakeBuiltinType(variant.FLOAT)
	case variant.STRING, variant.PACKED_STRING_ARRAY:
		t = syntax.MakeBuiltinType(variant.STRING)
	case variant.ARRAY:
		if b.Element != nil {
			e.DataType = b.Element.WithSource(b.Source)
		} else {
			a.markUnsafe(e)
		}
		return
	default:
		// COLOR, DICTIONARY, OBJECT
		return
	}
	if b.IsHardType() {
		e.DataType = t.WithSource(syntax.AnnotatedInferred)
	} else {
		e.DataType = t.WithSource(syntax.Inferred)
	}
}

// validIndex reports whether a key of type key may index a value of
// builtin type base.
func validIndex(base, key variant.Type) bool {
	switch base {
	case variant.STRING, variant.ARRAY, variant.PACKED_BYTE_ARRAY,
		variant.PACKED_INT32_ARRAY, variant.PACKED_INT64_ARRAY,
		variant.PACKED_FLOAT32_ARRAY, variant.PACKED_FLOAT64_ARRAY,
		variant.PACKED_STRING_ARRAY:
		return key == variant.INT || key == variant.FLOAT
	case variant.OBJECT:
		return key == variant.STRING || key == variant.STRING_NAME
	case variant.VECTOR2, variant.VECTOR2I, variant.VECTOR3, variant.VECTOR3I:
		return key == variant.INT || key == variant.FLOAT ||
			key == variant.STRING || key == variant.STRING_NAME
	case variant.COLOR:
		return key == variant.INT || key == variant.STRING || key == variant.STRING_NAME
	}
	return true
}

// ---- operators ----

func unaryOperator(tok syntax.Token) variant.Operator {
	switch tok {
	case syntax.MINUS:
		return variant.OpNegate
	case syntax.PLUS:
		return variant.OpPositive
	case syntax.TILDE:
		return variant.OpBitNegate
	case syntax.NOT, syntax.BANG:
		return variant.OpNot
	}
	bugf("unexpected unary operator %s", tok)
	return 0
}

// binaryOperator returns the operator of a binary or compound
// assignment token. NOT_IN maps to OpIn, whose result is negated.
func binaryOperator(tok syntax.Token) variant.Operator {
	switch tok {
	case syntax.PLUS:
		return variant.OpAdd
	case syntax.MINUS:
		return variant.OpSubtract
	case syntax.STAR:
		return variant.OpMultiply
	case syntax.SLASH:
		return variant.OpDivide
	case syntax.PERCENT:
		return variant.OpModule
	case syntax.STARSTAR:
		return variant.OpPower
	case syntax.LTLT:
		return variant.OpShiftLeft
	case syntax.GTGT:
		return variant.OpShiftRight
	case syntax.AMP:
		return variant.OpBitAnd
	case syntax.PIPE:
		return variant.OpBitOr
	case syntax.CIRCUMFLEX:
		return variant.OpBitXor
	case syntax.AND, syntax.AMPAMP:
		return variant.OpAnd
	case syntax.OR, syntax.PIPEPIPE:
		return variant.OpOr
	case syntax.EQL:
		return variant.OpEqual
	case syntax.NEQ:
		return variant.OpNotEqual
	case syntax.LT:
		return variant.OpLess
	case syntax.LE:
		return variant.OpLessEqual
	case syntax.GT:
		return variant.OpGreater
	case syntax.GE:
		return variant.OpGreaterEqual
	case syntax.IN, syntax.NOT_IN:
		return variant.OpIn
	}
	bugf("unexpected binary operator %s", tok)
	return 0
}

// operationType returns the type of the result of op applied to
// operands of types x and y; y is NIL for a unary operator. It
// reports false if the operation is invalid for those types.
func operationType(op variant.Operator, x, y syntax.DataType) (syntax.DataType, bool) {
	if x.IsVariant() || y.IsVariant() {
		return syntax.MakeVariantType(), true
	}
	bx, _ := builtinOf(x)
	by, _ := builtinOf(y)
	rt, ok := variant.ReturnType(op, bx, by)
	if !ok {
		return syntax.MakeVariantType(), false
	}
	t := syntax.MakeBuiltinType(rt)
	if x.IsHardType() && y.IsHardType() {
		return t.WithSource(syntax.AnnotatedInferred), true
	}
	return t.WithSource(syntax.Inferred), true
}

func (a *Analyzer) reduceUnary(e *syntax.UnaryExpr) {
	a.reduceExpr(e.X)
	op := unaryOperator(e.Op)
	e.Operator = op
	x := e.X.Info()

	if x.IsConstant {
		v, err := variant.Unary(op, x.Constant)
		if err != nil {
			a.errorf(e, "Invalid operand of type \"%s\" for unary operator \"%s\".", x.Constant.Type(), op)
			return
		}
		setConstant(&e.ExprInfo, v)
		return
	}
	if x.DataType.IsVariant() {
		a.markUnsafe(e)
		e.DataType = syntax.MakeVariantType()
		return
	}
	t, ok := operationType(op, x.DataType, syntax.MakeBuiltinType(variant.NIL))
	if !ok {
		a.errorf(e, "Invalid operand of type \"%s\" for unary operator \"%s\".", x.DataType, op)
	}
	e.DataType = t
}

func (a *Analyzer) reduceBinary(e *syntax.BinaryExpr) {
	a.reduceExpr(e.X)
	a.reduceExpr(e.Y)
	op := binaryOperator(e.Op)
	e.Operator = op
	x, y := e.X.Info(), e.Y.Info()
	lt, rt := x.DataType, y.DataType

	if op == variant.OpDivide && lt.IsBuiltin(variant.INT) && rt.IsBuiltin(variant.INT) {
		a.warn(e, IntegerDivision, "Integer division, decimal part will be discarded.")
	}

	if x.IsConstant && y.IsConstant {
		v, err := variant.Binary(op, x.Constant, y.Constant)
		if err != nil {
			if _, valid := variant.ReturnType(op, x.Constant.Type(), y.Constant.Type()); valid {
				a.errorf(e, "%s.", capitalize(err.Error()))
			} else {
				a.errorf(e, "Invalid operands to operator %s, %s and %s.", op, x.Constant.Type(), y.Constant.Type())
			}
			return
		}
		if e.Op == syntax.NOT_IN {
			v = variant.Bool(!variant.Truth(v))
		}
		setConstant(&e.ExprInfo, v)
		return
	}

	if lt.IsVariant() || rt.IsVariant() {
		a.markUnsafe(e)
		e.DataType = syntax.MakeVariantType()
		return
	}
	t, ok := operationType(op, lt, rt)
	if !ok && lt.IsHardType() && rt.IsHardType() {
		a.errorf(e, "Invalid operands \"%s\" and \"%s\" for \"%s\" operator.", lt, rt, op)
	}
	e.DataType = t
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (a *Analyzer) reduceCond(e *syntax.CondExpr) {
	a.reduceExpr(e.Cond)
	a.reduceExpr(e.True)
	a.reduceExpr(e.False)
	c, x, y := e.Cond.Info(), e.True.Info(), e.False.Info()

	if c.IsConstant && x.IsConstant && y.IsConstant {
		if variant.Truth(c.Constant) {
			setConstant(&e.ExprInfo, x.Constant)
		} else {
			setConstant(&e.ExprInfo, y.Constant)
		}
		return
	}

	tt, ft := x.DataType, y.DataType
	if tt.IsVariant() || ft.IsVariant() {
		e.DataType = syntax.MakeVariantType()
		return
	}
	t := tt
	if !IsTypeCompatible(a.env.Catalog, tt, ft, false) {
		t = ft
		if !IsTypeCompatible(a.env.Catalog, ft, tt, false) {
			a.warn(e, IncompatibleTernary, "Values of the ternary conditional are not mutually compatible.")
			t = syntax.MakeVariantType()
		}
	}
	e.DataType = t
}

func (a *Analyzer) reduceTypeTest(e *syntax.TypeTestExpr) {
	a.reduceExpr(e.X)
	test := a.resolveDatatype(e.Test, false)
	e.DataType = syntax.MakeBuiltinType(variant.BOOL)
	x := e.X.Info()
	if test.IsVariant() {
		return
	}

	cat := a.env.Catalog
	if !IsTypeCompatible(cat, test, x.DataType, false) && !IsTypeCompatible(cat, x.DataType, test, false) {
		if x.DataType.IsHardType() {
			a.errorf(e.X, "Expression is of type \"%s\" so it can't be of type \"%s\".", x.DataType, test)
		} else {
			a.markUnsafe(e)
		}
		return
	}

	if x.IsConstant && test.Kind == syntax.Builtin && test.Builtin != variant.OBJECT {
		is := x.Constant.Type() == test.Builtin
		if e.Not {
			is = !is
		}
		setConstant(&e.ExprInfo, variant.Bool(is))
	}
}

func (a *Analyzer) reduceCast(e *syntax.CastExpr) {
	a.reduceExpr(e.X)
	t := a.resolveDatatype(e.Target, false)
	e.DataType = t
	if t.IsVariant() {
		a.markUnsafe(e)
		return
	}
	x := e.X.Info()
	xt := x.DataType
	if xt.IsVariant() {
		a.warn(e, UnsafeCast, "Casting \"Variant\" to \"%s\" is unsafe.", t)
		return
	}

	valid := false
	switch {
	case t.Kind == syntax.Enum && isNumeric(xt) && !xt.IsBuiltin(variant.FLOAT):
		valid = true
		if x.IsConstant {
			if i, ok := x.Constant.(variant.Int); ok && !hasEnumValue(t, int64(i)) {
				a.errorf(e.Target, "Invalid cast. Enum \"%s\" does not have enum value %d.", t, int64(i))
				return
			}
		} else {
			a.markUnsafe(e)
		}
	case t.Kind == syntax.Builtin && xt.Kind == syntax.Builtin && !t.IsMeta && !xt.IsMeta:
		valid = variant.CanConvert(xt.Builtin, t.Builtin)
	case t.Kind != syntax.Builtin && xt.Kind != syntax.Builtin:
		cat := a.env.Catalog
		valid = IsTypeCompatible(cat, t, xt, false) || IsTypeCompatible(cat, xt, t, false)
	case xt.Kind == syntax.Enum && !xt.IsMeta && t.Kind == syntax.Builtin:
		valid = variant.CanConvert(variant.INT, t.Builtin)
	}
	if !valid {
		a.errorf(e.Target, "Invalid cast. Cannot convert from \"%s\" to \"%s\".", xt, t)
	}
}

// ---- await, preload, lambda ----

func (a *Analyzer) reduceAwait(e *syntax.AwaitExpr) {
	call, isCall := e.X.(*syntax.CallExpr)
	if isCall {
		call.IsAwaited = true
		a.awaited[call] = true
	}
	a.reduceExpr(e.X)
	if a.fn != nil {
		a.fn.IsCoroutine = true
	}

	x := e.X.Info()
	t := x.DataType
	switch {
	case isCall && !t.IsBuiltin(variant.SIGNAL):
		e.DataType = t
		e.DataType.IsCoroutine = false
	default:
		e.DataType = syntax.MakeVariantType()
	}
	if x.IsConstant {
		e.IsConstant, e.Constant = true, x.Constant
	}

	if t.Source != syntax.Undetected && !t.IsCoroutine && !t.IsBuiltin(variant.SIGNAL) {
		a.warn(e, RedundantAwait, "\"await\" keyword not needed here.")
	}
}

func (a *Analyzer) reducePreload(e *syntax.PreloadExpr) {
	a.reduceExpr(e.Path)
	s, ok := e.Path.Value.(variant.String)
	if !ok {
		a.errorf(e.Path, "Preloaded path must be a constant string.")
		return
	}
	path := resolvePath(a.file.Path, string(s))
	e.ResolvedPath = path

	if !a.isScriptPath(path) {
		e.DataType = syntax.MakeNativeType("Resource")
		e.IsConstant, e.Constant = true, &variant.Resource{Path: path, Class: "Resource"}
		return
	}
	t, err := a.loadScript(path, InterfaceSolved)
	if err, ok := err.(loadError); ok {
		if errors.Is(err.error, fs.ErrNotExist) {
			a.errorf(e.Path, "Preload file \"%s\" does not exist.", path)
		} else {
			a.errorf(e.Path, "Could not preload resource script \"%s\".", path)
		}
		return
	}
	e.DataType = t.Meta()
	e.DataType.IsConstant = true
	e.IsConstant, e.Constant = true, &variant.Resource{Path: path, Class: "GDScript"}
}

func (a *Analyzer) reduceLambda(e *syntax.LambdaExpr) {
	e.DataType = syntax.MakeBuiltinType(variant.CALLABLE).WithSource(syntax.AnnotatedInferred)

	a.lambdas = append(a.lambdas, e)
	save, saveBlock := a.stmt, a.block
	a.resolveFunctionBody(e.Func)
	a.stmt, a.block = save, saveBlock
	a.lambdas = a.lambdas[:len(a.lambdas)-1]
}

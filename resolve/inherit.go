// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

// This file defines the inheritance pass and the resolution of type
// annotations.

import (
	"go.gdlang.net/syntax"
	"go.gdlang.net/variant"
)

// A loadError reports that a script could not be loaded or parsed,
// as opposed to a script with semantic errors.
type loadError struct{ error }

// loadScript returns the type of the main class of the script at
// path, whose analysis is first raised to status s.
func (a *Analyzer) loadScript(path string, s Status) (syntax.DataType, error) {
	if path == a.file.Path {
		return classType(a.file.Class), nil
	}
	if script, ok := a.env.Scripts[path]; ok {
		return scriptType(script), nil
	}
	ref, err := a.env.Cache.Get(path)
	if err != nil {
		return syntax.MakeVariantType(), loadError{err}
	}
	err = ref.RaiseStatus(s)
	return classType(ref.File().Class), err
}

func (a *Analyzer) resolveInheritance() {
	a.resolveClassInheritance(a.file.Class, true)
}

// resolveClassInheritance determines the base type of class c and,
// if recursive, of its inner classes. It reports whether the base of
// c is known.
func (a *Analyzer) resolveClassInheritance(c *syntax.ClassDecl, recursive bool) bool {
	cache := a.env.Cache
	switch c.BaseType.Kind {
	case syntax.Resolving:
		a.reportCycle(c)
		return false

	case syntax.Unresolved:
		c.FQCN = fqcn(c)
		c.Type = syntax.DataType{Kind: syntax.Class, Class: c, Source: syntax.AnnotatedExplicit}
		if c.Name != nil {
			a.checkClassName(c)
		}

		c.BaseType.Kind = syntax.Resolving
		cache.inheriting = append(cache.inheriting, c)
		save := a.enter(c)
		base, ok := a.resolveExtends(c)
		a.leave(save)
		cache.inheriting = cache.inheriting[:len(cache.inheriting)-1]

		if !ok || cache.cyclic[c] {
			base = syntax.MakeVariantType()
		}
		c.BaseType = base
		c.Type.Native = nativeOf(base)
	}

	if recursive {
		for _, m := range c.Members {
			if inner, ok := m.(*syntax.ClassDecl); ok {
				a.resolveClassInheritance(inner, true)
			}
		}
	}
	return c.BaseType.Kind != syntax.Resolving && !cache.cyclic[c]
}

// fqcn returns the fully qualified name of a class: the path of its
// file, followed by the names of the enclosing inner classes.
func fqcn(c *syntax.ClassDecl) string {
	if c.FQCN != "" {
		return c.FQCN
	}
	if c.Outer == nil {
		return c.Path
	}
	return fqcn(c.Outer) + "::" + c.Name.Name
}

// reportCycle reports each class whose base depends on c, which is
// being resolved, as cyclic. Each class is reported once.
func (a *Analyzer) reportCycle(c *syntax.ClassDecl) {
	cache := a.env.Cache
	i := len(cache.inheriting) - 1
	for i >= 0 && cache.inheriting[i] != c {
		i--
	}
	if i < 0 {
		i = len(cache.inheriting) - 1
	}
	for _, x := range cache.inheriting[i:] {
		if cache.cyclic[x] {
			continue
		}
		cache.cyclic[x] = true
		var n syntax.Node = x
		if x.Extends != nil {
			n = x.Extends
		}
		a.owner(x).errorf(n, "Cyclic inheritance.")
	}
}

// checkClassName reports a class name that hides another global name.
func (a *Analyzer) checkClassName(c *syntax.ClassDecl) {
	name := c.Name.Name
	main := c.Outer == nil
	if _, ok := variant.TypeByName(name); ok || name == "Variant" {
		a.errorf(c.Name, "Class \"%s\" hides a built-in type.", name)
	} else if a.env.Catalog.HasClass(name) {
		a.errorf(c.Name, "Class \"%s\" hides a native class.", name)
	} else if p, ok := a.env.GlobalClasses[name]; ok && (!main || p != a.file.Path) {
		a.errorf(c.Name, "Class \"%s\" hides a global script class.", name)
	} else if al, ok := a.env.Autoloads[name]; ok && (!main || al.Path != a.file.Path) {
		a.errorf(c.Name, "Class \"%s\" hides an autoload singleton.", name)
	}
}

// resolveExtends returns the type named by the extends clause of c.
// A class without one extends RefCounted.
func (a *Analyzer) resolveExtends(c *syntax.ClassDecl) (syntax.DataType, bool) {
	e := c.Extends
	if e == nil {
		return syntax.MakeNativeType("RefCounted"), true
	}

	var base syntax.DataType
	names := e.Names
	if e.Path != nil {
		raw := string(e.Path.Value.(variant.String))
		t, err := a.loadScript(resolvePath(a.file.Path, raw), InheritanceSolved)
		if err != nil {
			if !a.env.Cache.cyclic[c] {
				if _, ok := err.(loadError); ok {
					a.errorf(e.Path, "Could not resolve super class path \"%s\".", raw)
				} else {
					a.errorf(e.Path, "Could not resolve super class inheritance from \"%s\".", raw)
				}
			}
			return t, false
		}
		base = t
	} else {
		t, ok := a.resolveBaseName(c, names[0])
		if !ok {
			return t, false
		}
		base = t
		names = names[1:]
	}

	for _, id := range names {
		var inner *syntax.ClassDecl
		if base.Kind == syntax.Class {
			m, _ := findMember(base.Class, id.Name)
			inner, _ = m.(*syntax.ClassDecl)
		}
		if inner == nil {
			a.errorf(id, "Could not find base class \"%s\".", id.Name)
			return base, false
		}
		base = classType(inner)
	}

	if base.Kind == syntax.Class {
		if !a.owner(base.Class).resolveClassInheritance(base.Class, false) {
			return base, false
		}
		base = base.Class.Type
	}
	return base, true
}

// resolveBaseName returns the class named by the first identifier of
// an extends clause.
func (a *Analyzer) resolveBaseName(c *syntax.ClassDecl, id *syntax.Ident) (syntax.DataType, bool) {
	name := id.Name
	if main := a.file.Class; main.Name != nil && main.Name.Name == name {
		return classType(main), true
	}

	path, ok := a.env.GlobalClasses[name]
	if !ok {
		if al, isAutoload := a.env.Autoloads[name]; isAutoload && al.Singleton {
			path, ok = al.Path, true
		}
	}
	if ok {
		t, err := a.loadScript(path, InheritanceSolved)
		if err != nil {
			if !a.env.Cache.cyclic[c] {
				a.errorf(id, "Could not resolve super class inheritance from \"%s\".", name)
			}
			return t, false
		}
		return t, true
	}

	if a.env.Catalog.HasClass(name) {
		return syntax.MakeNativeType(name), true
	}

	for o := c.Outer; o != nil; o = o.Outer {
		if m, _ := findMember(o, name); m != nil {
			if inner, ok := m.(*syntax.ClassDecl); ok {
				return classType(inner), true
			}
		}
	}

	a.errorf(id, "Could not find base class \"%s\".", name)
	return syntax.MakeVariantType(), false
}

// findMember returns the member of class c or of its script base
// classes with the given name, and the class declaring it.
func findMember(c *syntax.ClassDecl, name string) (syntax.Member, *syntax.ClassDecl) {
	for c != nil {
		if m := c.Lookup(name); m != nil {
			if _, ok := m.(*syntax.GroupDecl); !ok {
				return m, c
			}
		}
		if c.BaseType.Kind != syntax.Class {
			break
		}
		c = c.BaseType.Class
	}
	return nil, nil
}

// ---- type annotations ----

// resolveDatatype returns the type denoted by an annotation, and
// records it in ts. Only a function's return type may be void.
func (a *Analyzer) resolveDatatype(ts *syntax.TypeSpec, allowVoid bool) syntax.DataType {
	t, ok := a.resolveTypeName(ts, allowVoid)
	if !ok {
		t = syntax.MakeVariantType()
	}
	if ts.Element != nil {
		switch {
		case !t.IsBuiltin(variant.ARRAY):
			a.errorf(ts.Element, "Only arrays can specify the collection element type.")
		case ts.Element.Element != nil:
			a.errorf(ts.Element, "Nested typed collections are not supported.")
		default:
			if elem := a.resolveDatatype(ts.Element, false); elem.Kind != syntax.Variant {
				t = t.WithElement(elem)
			}
		}
	}
	t.Source = syntax.AnnotatedExplicit
	ts.Type = t
	return t
}

func (a *Analyzer) resolveTypeName(ts *syntax.TypeSpec, allowVoid bool) (syntax.DataType, bool) {
	first := ts.Names[0]
	name := first.Name
	rest := ts.Names[1:]
	cat := a.env.Catalog

	var t syntax.DataType
	switch builtin, isBuiltin := variant.TypeByName(name); {
	case name == "Variant" && len(rest) > 0 && rest[0].Name == "Type":
		t, _ = enumType(cat, "Variant.Type")
		rest = rest[1:]
	case name == "Variant":
		t = syntax.MakeVariantType()
	case name == "void":
		if !allowVoid {
			a.errorf(first, "\"void\" is only allowed for a function return type.")
			return t, false
		}
		t = syntax.MakeBuiltinType(variant.NIL)
	case isBuiltin:
		t = syntax.MakeBuiltinType(builtin)
	default:
		var ok bool
		if t, ok = a.findTypeInScope(first); !ok {
			return t, false
		}
	}

	for _, id := range rest {
		base := t
		switch t.Kind {
		case syntax.Variant:
			a.errorf(id, "Variant doesn't contain nested types.")
			return t, false
		case syntax.Builtin:
			a.errorf(id, "Built-in types don't contain nested types.")
			return t, false
		case syntax.Enum:
			a.errorf(id, "Enums cannot contain nested types.")
			return t, false
		case syntax.Native:
			values, ok := cat.Enum(t.Native, id.Name)
			if !ok {
				a.errorf(id, "Could not find type \"%s\" under base \"%s\".", id.Name, base)
				return t, false
			}
			t = syntax.MakeEnumType(id.Name, t.Native, enumEntries(values))
		case syntax.Class:
			m, owner := findMember(t.Class, id.Name)
			if m == nil {
				a.errorf(id, "Could not find type \"%s\" under base \"%s\".", id.Name, base)
				return t, false
			}
			var ok bool
			if t, ok = a.memberType(owner, m); !ok {
				a.errorf(id, "Member \"%s\" under base \"%s\" is not a valid type.", id.Name, base)
				return t, false
			}
		default:
			a.errorf(id, "Could not find type \"%s\" under base \"%s\".", id.Name, base)
			return t, false
		}
	}
	return t, true
}

// findTypeInScope returns the type named by an identifier that is not
// a builtin type: a class or enum in scope, the main class, a global
// class, an autoload, a native class, or a native or global enum.
func (a *Analyzer) findTypeInScope(id *syntax.Ident) (syntax.DataType, bool) {
	name := id.Name
	cat := a.env.Catalog

	for c := a.class; c != nil; c = c.Outer {
		if m, owner := findMember(c, name); m != nil {
			if t, ok := a.memberType(owner, m); ok {
				return t, true
			}
			a.errorf(id, "\"%s\" is a %s but does not have a type.", name, syntax.KindOf(m))
			return syntax.MakeVariantType(), false
		}
	}

	if main := a.file.Class; main.Name != nil && main.Name.Name == name {
		return classType(main), true
	}
	if cat.HasClass(name) {
		return syntax.MakeNativeType(name), true
	}

	path, ok := a.env.GlobalClasses[name]
	if !ok {
		if al, isAutoload := a.env.Autoloads[name]; isAutoload {
			path, ok = al.Path, true
		}
	}
	if ok {
		t, err := a.loadScript(path, InheritanceSolved)
		if _, failed := err.(loadError); failed {
			a.errorf(id, "Could not parse global class \"%s\" from \"%s\".", name, path)
			return t, false
		}
		return t, true
	}

	if a.class != nil {
		if native := nativeOf(a.class.Type); native != "" {
			if values, ok := cat.Enum(native, name); ok {
				return syntax.MakeEnumType(name, native, enumEntries(values)), true
			}
		}
	}
	if t, ok := enumType(cat, name); ok {
		return t, true
	}

	a.errorf(id, "Could not find type \"%s\" in the current scope.", name)
	return syntax.MakeVariantType(), false
}

// memberType returns the type named by a class member that denotes a
// type: an inner class, an enum, or a constant holding a script.
func (a *Analyzer) memberType(c *syntax.ClassDecl, m syntax.Member) (syntax.DataType, bool) {
	switch m := m.(type) {
	case *syntax.ClassDecl:
		a.owner(m).resolveClassInheritance(m, false)
		return classType(m), true
	case *syntax.EnumDecl:
		a.owner(c).resolveClassMember(c, m)
		return m.Type.Instance(), true
	case *syntax.ConstDecl:
		a.owner(c).resolveClassMember(c, m)
		if m.Type.IsMeta && m.Type.IsObject() {
			return m.Type.Instance(), true
		}
	}
	return syntax.DataType{}, false
}

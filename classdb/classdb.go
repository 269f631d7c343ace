// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package classdb describes the native classes, singletons and
// global constants visible to scripts.
//
// The analyzer and compiler consult a Catalog rather than a fixed
// table, so that a host can describe its own classes. Core returns
// a catalog of commonly used classes, sufficient for the command
// and for tests.
package classdb // import "go.gdlang.net/classdb"

import (
	"fmt"
	"sort"

	"go.gdlang.net/variant"
)

// A Catalog describes the native class hierarchy.
//
// Member lookups search the named class and then its ancestors.
type Catalog interface {
	// HasClass reports whether a native class of the given name exists.
	HasClass(name string) bool
	// Parent returns the parent of a class, or "" for a root class.
	Parent(class string) string
	// IsInstantiable reports whether scripts may call class.new().
	IsInstantiable(class string) bool

	Property(class, name string) (variant.PropertyInfo, bool)
	Method(class, name string) (*variant.MethodInfo, bool)
	Signal(class, name string) (*variant.MethodInfo, bool)
	IntegerConstant(class, name string) (int64, bool)
	// Enum returns the values of an enum declared by class.
	Enum(class, name string) ([]EnumValue, bool)
	// EnumOfConstant returns the enum to which an integer constant belongs.
	EnumOfConstant(class, name string) (string, bool)

	// Singleton returns the class of the named engine singleton.
	Singleton(name string) (class string, ok bool)

	GlobalConstant(name string) (variant.Value, bool)
	GlobalEnum(name string) ([]EnumValue, bool)

	// ClassNames and MemberNames enumerate names for suggestions.
	ClassNames() []string
	MemberNames(class string) []string
}

// An EnumValue is one element of a native or global enum.
type EnumValue struct {
	Name  string
	Value int64
}

// An Enum is a named set of integer constants of a class.
type Enum struct {
	Name     string
	Values   []EnumValue
	Bitfield bool
}

// A Class describes a native class.
type Class struct {
	Name         string
	Parent       string
	Instantiable bool
	Properties   []variant.PropertyInfo
	Methods      []*variant.MethodInfo
	Signals      []*variant.MethodInfo
	Enums        []Enum
	Constants    []EnumValue // integer constants outside any enum
}

type classInfo struct {
	*Class
	properties map[string]variant.PropertyInfo
	methods    map[string]*variant.MethodInfo
	signals    map[string]*variant.MethodInfo
	constants  map[string]int64
	enums      map[string][]EnumValue
	enumOf     map[string]string
}

// A DB is a Catalog built from Class descriptions.
// A DB is not safe for concurrent mutation, but once built it may be
// shared by any number of analyses.
type DB struct {
	classes     map[string]*classInfo
	singletons  map[string]string
	globals     map[string]variant.Value
	globalEnums map[string][]EnumValue
}

var _ Catalog = (*DB)(nil)

// New returns an empty catalog.
func New() *DB {
	return &DB{
		classes:     make(map[string]*classInfo),
		singletons:  make(map[string]string),
		globals:     make(map[string]variant.Value),
		globalEnums: make(map[string][]EnumValue),
	}
}

// Add adds a class to the catalog. Its parent, if any, must already
// have been added.
func (db *DB) Add(c *Class) error {
	if _, ok := db.classes[c.Name]; ok {
		return fmt.Errorf("class %s already defined", c.Name)
	}
	if c.Parent != "" {
		if _, ok := db.classes[c.Parent]; !ok {
			return fmt.Errorf("class %s: unknown parent class %s", c.Name, c.Parent)
		}
	}
	ci := &classInfo{
		Class:      c,
		properties: make(map[string]variant.PropertyInfo),
		methods:    make(map[string]*variant.MethodInfo),
		signals:    make(map[string]*variant.MethodInfo),
		constants:  make(map[string]int64),
		enums:      make(map[string][]EnumValue),
		enumOf:     make(map[string]string),
	}
	for _, p := range c.Properties {
		ci.properties[p.Name] = p
	}
	for _, m := range c.Methods {
		ci.methods[m.Name] = m
	}
	for _, s := range c.Signals {
		ci.signals[s.Name] = s
	}
	for _, k := range c.Constants {
		ci.constants[k.Name] = k.Value
	}
	for _, e := range c.Enums {
		ci.enums[e.Name] = e.Values
		for _, v := range e.Values {
			ci.constants[v.Name] = v.Value
			ci.enumOf[v.Name] = e.Name
		}
	}
	db.classes[c.Name] = ci
	return nil
}

// AddSingleton registers an engine singleton: a global instance of
// a class, accessible by name.
func (db *DB) AddSingleton(name, class string) error {
	if _, ok := db.classes[class]; !ok {
		return fmt.Errorf("singleton %s: unknown class %s", name, class)
	}
	db.singletons[name] = class
	return nil
}

// AddGlobalConstant defines a constant of the global scope.
func (db *DB) AddGlobalConstant(name string, v variant.Value) {
	db.globals[name] = v
}

// AddGlobalEnum defines an enum of the global scope. Its values are
// also global constants.
func (db *DB) AddGlobalEnum(name string, values []EnumValue) {
	db.globalEnums[name] = values
	for _, v := range values {
		db.globals[v.Name] = variant.Int(v.Value)
	}
}

func (db *DB) HasClass(name string) bool {
	_, ok := db.classes[name]
	return ok
}

func (db *DB) Parent(class string) string {
	if c, ok := db.classes[class]; ok {
		return c.Parent
	}
	return ""
}

func (db *DB) IsInstantiable(class string) bool {
	c, ok := db.classes[class]
	return ok && c.Instantiable
}

// lookup calls f for class and each of its ancestors until f returns true.
func (db *DB) lookup(class string, f func(c *classInfo) bool) {
	for class != "" {
		c, ok := db.classes[class]
		if !ok || f(c) {
			return
		}
		class = c.Parent
	}
}

func (db *DB) Property(class, name string) (p variant.PropertyInfo, ok bool) {
	db.lookup(class, func(c *classInfo) bool {
		p, ok = c.properties[name]
		return ok
	})
	return
}

func (db *DB) Method(class, name string) (m *variant.MethodInfo, ok bool) {
	db.lookup(class, func(c *classInfo) bool {
		m, ok = c.methods[name]
		return ok
	})
	return
}

func (db *DB) Signal(class, name string) (s *variant.MethodInfo, ok bool) {
	db.lookup(class, func(c *classInfo) bool {
		s, ok = c.signals[name]
		return ok
	})
	return
}

func (db *DB) IntegerConstant(class, name string) (v int64, ok bool) {
	db.lookup(class, func(c *classInfo) bool {
		v, ok = c.constants[name]
		return ok
	})
	return
}

func (db *DB) Enum(class, name string) (values []EnumValue, ok bool) {
	db.lookup(class, func(c *classInfo) bool {
		values, ok = c.enums[name]
		return ok
	})
	return
}

func (db *DB) EnumOfConstant(class, name string) (enum string, ok bool) {
	db.lookup(class, func(c *classInfo) bool {
		enum, ok = c.enumOf[name]
		return ok
	})
	return
}

func (db *DB) Singleton(name string) (string, bool) {
	class, ok := db.singletons[name]
	return class, ok
}

func (db *DB) GlobalConstant(name string) (variant.Value, bool) {
	v, ok := db.globals[name]
	return v, ok
}

func (db *DB) GlobalEnum(name string) ([]EnumValue, bool) {
	values, ok := db.globalEnums[name]
	return values, ok
}

func (db *DB) ClassNames() []string {
	names := make([]string, 0, len(db.classes))
	for name := range db.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (db *DB) MemberNames(class string) []string {
	seen := make(map[string]bool)
	db.lookup(class, func(c *classInfo) bool {
		for name := range c.properties {
			seen[name] = true
		}
		for name := range c.methods {
			seen[name] = true
		}
		for name := range c.signals {
			seen[name] = true
		}
		for name := range c.constants {
			seen[name] = true
		}
		for name := range c.enums {
			seen[name] = true
		}
		return false
	})
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsSubclass reports whether class is ancestor or derives from it.
func IsSubclass(cat Catalog, class, ancestor string) bool {
	for ; class != ""; class = cat.Parent(class) {
		if class == ancestor {
			return true
		}
	}
	return false
}

// HasProperty reports whether class or an ancestor declares the property.
func HasProperty(cat Catalog, class, name string) bool {
	_, ok := cat.Property(class, name)
	return ok
}

// HasMethod reports whether class or an ancestor declares the method.
func HasMethod(cat Catalog, class, name string) bool {
	_, ok := cat.Method(class, name)
	return ok
}

// HasSignal reports whether class or an ancestor declares the signal.
func HasSignal(cat Catalog, class, name string) bool {
	_, ok := cat.Signal(class, name)
	return ok
}

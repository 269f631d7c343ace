// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// Walk traverses a syntax tree in depth-first order.
// It starts by calling f(n); n must not be nil.
// If f returns true, Walk calls itself
// recursively for each non-nil child of n.
// Walk then calls f(nil).
//
// The members of an unnamed enum are visited as children of the
// class, not of an EnumDecl.
func Walk(n Node, f func(Node) bool) {
	if n == nil {
		panic("nil")
	}
	if !f(n) {
		return
	}

	switch n := n.(type) {
	case *File:
		Walk(n.Class, f)

	case *ClassDecl:
		if n.Name != nil {
			Walk(n.Name, f)
		}
		if n.Extends != nil {
			Walk(n.Extends, f)
		}
		for _, m := range n.Members {
			Walk(m, f)
		}

	case *Extends:
		if n.Path != nil {
			Walk(n.Path, f)
		}
		for _, id := range n.Names {
			Walk(id, f)
		}

	case *VarDecl:
		Walk(n.Name, f)
		if n.TypeSpec != nil {
			Walk(n.TypeSpec, f)
		}
		if n.Init != nil {
			Walk(n.Init, f)
		}
		if n.Setter != nil {
			Walk(n.Setter, f)
		}
		if n.Getter != nil {
			Walk(n.Getter, f)
		}
		if n.SetterName != nil {
			Walk(n.SetterName, f)
		}
		if n.GetterName != nil {
			Walk(n.GetterName, f)
		}

	case *ConstDecl:
		Walk(n.Name, f)
		if n.TypeSpec != nil {
			Walk(n.TypeSpec, f)
		}
		Walk(n.Init, f)

	case *SignalDecl:
		Walk(n.Name, f)
		for _, p := range n.Params {
			Walk(p, f)
		}

	case *EnumDecl:
		if n.Name != nil {
			Walk(n.Name, f)
		}
		for _, v := range n.Values {
			Walk(v, f)
		}

	case *EnumValue:
		Walk(n.Name, f)
		if n.Init != nil {
			Walk(n.Init, f)
		}

	case *GroupDecl:
		// no-op

	case *FuncDecl:
		if n.Name != nil {
			Walk(n.Name, f)
		}
		for _, p := range n.Params {
			Walk(p, f)
		}
		if n.Return != nil {
			Walk(n.Return, f)
		}
		Walk(n.Body, f)

	case *Param:
		Walk(n.Name, f)
		if n.TypeSpec != nil {
			Walk(n.TypeSpec, f)
		}
		if n.Default != nil {
			Walk(n.Default, f)
		}

	case *TypeSpec:
		for _, id := range n.Names {
			Walk(id, f)
		}
		if n.Element != nil {
			Walk(n.Element, f)
		}

	case *Block:
		walkStmts(n.Stmts, f)

	case *AssignStmt:
		Walk(n.LHS, f)
		Walk(n.RHS, f)

	case *ExprStmt:
		Walk(n.X, f)

	case *IfStmt:
		Walk(n.Cond, f)
		Walk(n.True, f)
		if n.False != nil {
			Walk(n.False, f)
		}

	case *ForStmt:
		Walk(n.Var, f)
		if n.TypeSpec != nil {
			Walk(n.TypeSpec, f)
		}
		Walk(n.X, f)
		Walk(n.Body, f)

	case *WhileStmt:
		Walk(n.Cond, f)
		Walk(n.Body, f)

	case *MatchStmt:
		Walk(n.X, f)
		for _, br := range n.Branches {
			Walk(br, f)
		}

	case *MatchBranch:
		for _, p := range n.Patterns {
			Walk(p, f)
		}
		Walk(n.Body, f)

	case *BranchStmt:
		// no-op

	case *ReturnStmt:
		if n.Result != nil {
			Walk(n.Result, f)
		}

	case *AssertStmt:
		Walk(n.Cond, f)
		if n.Message != nil {
			Walk(n.Message, f)
		}

	case *LiteralPattern:
		Walk(n.Lit, f)

	case *ExprPattern:
		Walk(n.X, f)

	case *BindPattern:
		Walk(n.Name, f)

	case *ArrayPattern:
		for _, e := range n.Elems {
			Walk(e, f)
		}

	case *DictPattern:
		for _, e := range n.Entries {
			Walk(e, f)
		}

	case *DictPatternEntry:
		Walk(n.Key, f)
		if n.Value != nil {
			Walk(n.Value, f)
		}

	case *WildcardPattern, *RestPattern:
		// no-op

	case *Ident, *Literal, *SelfExpr:
		// no-op

	case *CallExpr:
		if n.Fn != nil {
			Walk(n.Fn, f)
		}
		for _, arg := range n.Args {
			Walk(arg, f)
		}

	case *DotExpr:
		Walk(n.X, f)
		Walk(n.Name, f)

	case *IndexExpr:
		Walk(n.X, f)
		Walk(n.Y, f)

	case *UnaryExpr:
		Walk(n.X, f)

	case *BinaryExpr:
		Walk(n.X, f)
		Walk(n.Y, f)

	case *CondExpr:
		Walk(n.True, f)
		Walk(n.Cond, f)
		Walk(n.False, f)

	case *TypeTestExpr:
		Walk(n.X, f)
		Walk(n.Test, f)

	case *CastExpr:
		Walk(n.X, f)
		Walk(n.Target, f)

	case *ListExpr:
		for _, x := range n.List {
			Walk(x, f)
		}

	case *DictExpr:
		for _, e := range n.Entries {
			Walk(e, f)
		}

	case *DictEntry:
		Walk(n.Key, f)
		Walk(n.Value, f)

	case *LambdaExpr:
		Walk(n.Func, f)

	case *AwaitExpr:
		Walk(n.X, f)

	case *PreloadExpr:
		Walk(n.Path, f)

	default:
		panic(n)
	}

	f(nil)
}

func walkStmts(stmts []Stmt, f func(Node) bool) {
	for _, stmt := range stmts {
		Walk(stmt, f)
	}
}

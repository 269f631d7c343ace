// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package syntax provides a parser and syntax tree for the script
// language: an indentation-sensitive, optionally typed language whose
// files each define a class.
//
// Nodes carry fields that are set by the resolver (package resolve)
// and read by the compiler. Such fields are grouped under a "set by
// resolver" comment.
package syntax // import "go.gdlang.net/syntax"

import "go.gdlang.net/variant"

// A Node is a node in a syntax tree.
type Node interface {
	// Span returns the start and end position of the node.
	Span() (start, end Position)
}

// Start returns the start position of the node.
func Start(n Node) Position {
	start, _ := n.Span()
	return start
}

// End returns the end position of the node.
func End(n Node) Position {
	_, end := n.Span()
	return end
}

// A File represents a source file. Its top-level declarations are
// the members of the implicit class Class.
type File struct {
	Path  string
	Class *ClassDecl

	// Ignores lists the regions in which @warning_ignore
	// annotations suppress warnings.
	Ignores []WarningIgnore
}

func (x *File) Span() (start, end Position) { return x.Class.Span() }

// A WarningIgnore suppresses the named warnings within a region.
type WarningIgnore struct {
	Start, End Position
	Codes      []string // upper case, e.g. "UNUSED_VARIABLE"
}

// ---- class members ----

// A Member is a declaration in a class body.
type Member interface {
	Node
	// MemberName returns the declared name.
	MemberName() string
	member()
}

func (*VarDecl) member()    {}
func (*ConstDecl) member()  {}
func (*SignalDecl) member() {}
func (*EnumDecl) member()   {}
func (*EnumValue) member()  {}
func (*FuncDecl) member()   {}
func (*ClassDecl) member()  {}
func (*GroupDecl) member()  {}

// A MemberKind classifies class members.
type MemberKind uint8

const (
	VariableMember MemberKind = iota
	ConstantMember
	SignalMember
	EnumMember
	EnumValueMember
	FunctionMember
	ClassMember
	GroupMember
)

var memberKindNames = [...]string{
	VariableMember:  "variable",
	ConstantMember:  "constant",
	SignalMember:    "signal",
	EnumMember:      "enum",
	EnumValueMember: "enum value",
	FunctionMember:  "function",
	ClassMember:     "class",
	GroupMember:     "group",
}

func (k MemberKind) String() string { return memberKindNames[k] }

// KindOf returns the kind of a class member.
func KindOf(m Member) MemberKind {
	switch m.(type) {
	case *VarDecl:
		return VariableMember
	case *ConstDecl:
		return ConstantMember
	case *SignalDecl:
		return SignalMember
	case *EnumDecl:
		return EnumMember
	case *EnumValue:
		return EnumValueMember
	case *FuncDecl:
		return FunctionMember
	case *ClassDecl:
		return ClassMember
	case *GroupDecl:
		return GroupMember
	}
	panic(m)
}

// A ClassDecl is a class: either the implicit class of a file or an
// inner class declared with the class keyword.
type ClassDecl struct {
	ClassPos Position // position of CLASS, or of the first token of a file
	Name     *Ident   // class_name or inner class name; nil for an unnamed file class
	Extends  *Extends // nil if the class has no extends clause
	Members  []Member
	Tool     bool
	Outer    *ClassDecl // enclosing class of an inner class
	Path     string     // path of the declaring file
	EndPos   Position

	OnreadyUsed bool // some variable is annotated @onready

	index map[string]int

	// set by resolver:
	FQCN              string   // fully qualified class name: path, then inner names
	Type              DataType // the type of instances of this class
	BaseType          DataType // the type this class extends
	ResolvedInterface bool
	ResolvedBody      bool
}

func (x *ClassDecl) Span() (start, end Position) { return x.ClassPos, x.EndPos }
func (x *ClassDecl) MemberName() string {
	if x.Name == nil {
		return ""
	}
	return x.Name.Name
}

// AddMember appends m to the class's members. When several members
// share a name, Lookup returns the first.
func (x *ClassDecl) AddMember(m Member) {
	if x.index == nil {
		x.index = make(map[string]int)
	}
	if name := m.MemberName(); name != "" {
		if _, ok := x.index[name]; !ok {
			x.index[name] = len(x.Members)
		}
	}
	x.Members = append(x.Members, m)
}

// Lookup returns the class's member of the given name, or nil.
func (x *ClassDecl) Lookup(name string) Member {
	if x.index == nil && len(x.Members) > 0 {
		x.index = make(map[string]int)
		for i, m := range x.Members {
			if _, ok := x.index[m.MemberName()]; !ok {
				x.index[m.MemberName()] = i
			}
		}
	}
	if i, ok := x.index[name]; ok {
		return x.Members[i]
	}
	return nil
}

// An Extends clause names the base of a class:
//
//	extends Node
//	extends "res://base.gd"
//	extends "res://base.gd".Inner
//	extends Outer.Inner
type Extends struct {
	ExtendsPos Position
	Path       *Literal // a string, or nil
	Names      []*Ident
}

func (x *Extends) Span() (start, end Position) {
	end = x.ExtendsPos.add("extends")
	if len(x.Names) > 0 {
		end = End(x.Names[len(x.Names)-1])
	} else if x.Path != nil {
		end = End(x.Path)
	}
	return x.ExtendsPos, end
}

// A VarDecl declares a variable, as a class member or in a function body.
//
//	var x
//	var x: int = 1
//	var x := 1
//	@onready var x = f()
//	var x: int:
//		set(value):
//			...
//		get:
//			return ...
//	var y = 0: set = set_y, get = get_y
type VarDecl struct {
	Var      Position
	Name     *Ident
	TypeSpec *TypeSpec // nil if not annotated
	Infer    bool      // declared with :=
	Init     Expr      // nil if no initializer
	Onready  bool
	Export   bool
	Local    bool // declared in a function body

	Setter     *FuncDecl // inline set(value): accessor
	Getter     *FuncDecl // inline get: accessor
	SetterName *Ident    // set = f
	GetterName *Ident    // get = f

	EndPos Position

	// set by resolver:
	Type             DataType
	ConversionAssign bool // initializer value needs conversion to Type
	Usages           int
	Assignments      int
	Resolving        bool
}

func (x *VarDecl) Span() (start, end Position) { return x.Var, x.EndPos }
func (x *VarDecl) MemberName() string          { return x.Name.Name }

// HasAccessors reports whether x declares a setter or getter.
func (x *VarDecl) HasAccessors() bool {
	return x.Setter != nil || x.Getter != nil || x.SetterName != nil || x.GetterName != nil
}

// A ConstDecl declares a constant.
type ConstDecl struct {
	Const    Position
	Name     *Ident
	TypeSpec *TypeSpec
	Infer    bool
	Init     Expr
	Local    bool

	// set by resolver:
	Type      DataType
	Value     variant.Value
	Usages    int
	Resolving bool
}

func (x *ConstDecl) Span() (start, end Position) {
	if x.Init == nil {
		return x.Const, End(x.Name)
	}
	return x.Const, End(x.Init)
}
func (x *ConstDecl) MemberName() string { return x.Name.Name }

// A SignalDecl declares a signal: signal hit(damage: int).
type SignalDecl struct {
	Signal Position
	Name   *Ident
	Params []*Param
	EndPos Position

	// set by resolver:
	Type   DataType
	Usages int
}

func (x *SignalDecl) Span() (start, end Position) { return x.Signal, x.EndPos }
func (x *SignalDecl) MemberName() string          { return x.Name.Name }

// An EnumDecl declares an enum. The values of an unnamed enum are
// also members of the enclosing class.
type EnumDecl struct {
	Enum   Position
	Name   *Ident // nil for an unnamed enum
	Values []*EnumValue
	Rbrace Position

	// set by resolver:
	Type   DataType
	Dict   *variant.Dictionary // name to value, for named enums
	Usages int
}

func (x *EnumDecl) Span() (start, end Position) { return x.Enum, x.Rbrace.add("}") }
func (x *EnumDecl) MemberName() string {
	if x.Name == nil {
		return ""
	}
	return x.Name.Name
}

// An EnumValue is an element of an enum: NAME or NAME = expr.
type EnumValue struct {
	Name   *Ident
	Init   Expr // nil if the value is implicit
	Parent *EnumDecl
	Index  int

	// set by resolver:
	Value    int64
	Resolved bool
}

func (x *EnumValue) Span() (start, end Position) {
	if x.Init != nil {
		return Start(x.Name), End(x.Init)
	}
	return x.Name.Span()
}
func (x *EnumValue) MemberName() string { return x.Name.Name }

// A GroupDecl groups the following exported properties in an editor:
// @export_group("Name").
type GroupDecl struct {
	At         Position
	Annotation string // export_group, export_subgroup or export_category
	Name       string
}

func (x *GroupDecl) Span() (start, end Position) { return x.At, x.At.add("@" + x.Annotation) }
func (x *GroupDecl) MemberName() string          { return x.Name }

// A FuncDecl is a function: a method, an inline property accessor,
// or the function of a lambda expression.
type FuncDecl struct {
	Func     Position
	Name     *Ident // nil for a lambda
	Params   []*Param
	Return   *TypeSpec // nil if not annotated
	Body     *Block
	Static   bool
	Class    *ClassDecl  // class declaring the function
	Outer    *FuncDecl   // enclosing function of a lambda
	Lambda   *LambdaExpr // the lambda expression, for a lambda
	Property *VarDecl    // the property, for an inline accessor

	// set by resolver:
	ResolvedSignature bool
	ResolvedBody      bool
	ReturnType        DataType
	IsCoroutine       bool
	Usages            int
}

func (x *FuncDecl) Span() (start, end Position) {
	if x.Body == nil || len(x.Body.Stmts) == 0 {
		return x.Func, x.Func.add("func")
	}
	return x.Func, x.Body.end()
}

func (x *FuncDecl) MemberName() string {
	if x.Name == nil {
		return ""
	}
	return x.Name.Name
}

// MinArgs returns the number of parameters without defaults.
func (x *FuncDecl) MinArgs() int {
	n := 0
	for _, p := range x.Params {
		if p.Default == nil {
			n++
		}
	}
	return n
}

// A Param is a function or signal parameter.
type Param struct {
	Name     *Ident
	TypeSpec *TypeSpec
	Infer    bool // declared with :=
	Default  Expr // nil if required

	// set by resolver:
	Type             DataType
	ConversionAssign bool // default value needs conversion to Type
	Usages           int
}

func (x *Param) Span() (start, end Position) {
	start, end = x.Name.Span()
	if x.Default != nil {
		end = End(x.Default)
	} else if x.TypeSpec != nil {
		end = End(x.TypeSpec)
	}
	return
}

// A TypeSpec is a type annotation: int, Node, Outer.Inner, Array[int].
type TypeSpec struct {
	Names   []*Ident
	Element *TypeSpec // for Array[T]
	Rbrack  Position

	// set by resolver:
	Type DataType
}

func (x *TypeSpec) Span() (start, end Position) {
	start = Start(x.Names[0])
	if x.Element != nil {
		return start, x.Rbrack.add("]")
	}
	return start, End(x.Names[len(x.Names)-1])
}

// String returns the type as written, e.g. "Array[int]".
func (x *TypeSpec) String() string {
	s := x.Names[0].Name
	for _, id := range x.Names[1:] {
		s += "." + id.Name
	}
	if x.Element != nil {
		s += "[" + x.Element.String() + "]"
	}
	return s
}

// ---- statements ----

// A Stmt is a statement.
type Stmt interface {
	Node
	stmt()
}

func (*AssertStmt) stmt() {}
func (*AssignStmt) stmt() {}
func (*BranchStmt) stmt() {}
func (*ConstDecl) stmt()  {}
func (*ExprStmt) stmt()   {}
func (*ForStmt) stmt()    {}
func (*IfStmt) stmt()     {}
func (*MatchStmt) stmt()  {}
func (*ReturnStmt) stmt() {}
func (*VarDecl) stmt()    {}
func (*WhileStmt) stmt()  {}

// A Block is a sequence of statements with its own scope.
type Block struct {
	Stmts  []Stmt
	Parent *Block    // enclosing block; for a lambda body, the block containing the lambda
	Func   *FuncDecl // function whose body contains the block
	Locals []*Local  // names declared directly in this block, in order
	IsLoop bool      // body of a for or while statement
	IsCase bool      // body of a match branch
	Start  Position

	// set by resolver:
	HasReturn      bool // every path through the block returns
	HasUnreachable bool
}

func (b *Block) Span() (start, end Position) { return b.Start, b.end() }

func (b *Block) end() Position {
	if len(b.Stmts) == 0 {
		return b.Start
	}
	return End(b.Stmts[len(b.Stmts)-1])
}

// Lookup returns the innermost local of the given name visible in
// block b, searching enclosing blocks and functions.
func (b *Block) Lookup(name string) *Local {
	for ; b != nil; b = b.Parent {
		for i := len(b.Locals) - 1; i >= 0; i-- {
			if b.Locals[i].Name == name {
				return b.Locals[i]
			}
		}
	}
	return nil
}

// An AssignStmt represents an assignment:
//
//	x = 0
//	x.y[i] += 1
type AssignStmt struct {
	OpPos Position
	Op    Token // EQ or an augmented assignment such as PLUS_EQ
	LHS   Expr
	RHS   Expr

	// set by resolver:
	Operator         variant.Operator // for augmented assignment
	ConversionAssign bool             // assigned value needs conversion to the target's type
}

func (x *AssignStmt) Span() (start, end Position) {
	start, _ = x.LHS.Span()
	_, end = x.RHS.Span()
	return
}

// An ExprStmt is an expression evaluated for side effects.
type ExprStmt struct {
	X Expr
}

func (x *ExprStmt) Span() (start, end Position) { return x.X.Span() }

// An IfStmt is a conditional: If Cond: True; else: False.
// 'elif' is desugared into a chain of IfStmts.
type IfStmt struct {
	If      Position // IF or ELIF
	Cond    Expr
	True    *Block
	ElsePos Position // ELSE or ELIF
	False   *Block   // optional
}

func (x *IfStmt) Span() (start, end Position) {
	body := x.False
	if body == nil {
		body = x.True
	}
	return x.If, body.end()
}

// A ForStmt represents a loop: for Var in X: Body.
type ForStmt struct {
	For      Position
	Var      *Ident
	TypeSpec *TypeSpec // for x: int in ...
	X        Expr
	Body     *Block

	// set by resolver:
	VarType DataType
	Usages  int
}

func (x *ForStmt) Span() (start, end Position) { return x.For, x.Body.end() }

// A WhileStmt represents a loop: while Cond: Body.
type WhileStmt struct {
	While Position
	Cond  Expr
	Body  *Block
}

func (x *WhileStmt) Span() (start, end Position) { return x.While, x.Body.end() }

// A MatchStmt compares a value against patterns:
//
//	match x:
//		1, 2:
//			...
//		[var a, ..]:
//			...
type MatchStmt struct {
	Match    Position
	X        Expr
	Branches []*MatchBranch
}

func (x *MatchStmt) Span() (start, end Position) {
	if len(x.Branches) == 0 {
		return x.Match, End(x.X)
	}
	return x.Match, x.Branches[len(x.Branches)-1].Body.end()
}

// A MatchBranch is one arm of a match statement.
// A branch with several patterns matches if any of them does.
type MatchBranch struct {
	Patterns    []Pattern
	Body        *Block
	HasWildcard bool // some pattern is _
}

func (x *MatchBranch) Span() (start, end Position) { return Start(x.Patterns[0]), x.Body.end() }

// A BranchStmt changes the flow of control: break, continue, pass, breakpoint.
type BranchStmt struct {
	Token    Token // = BREAK | CONTINUE | PASS | BREAKPOINT
	TokenPos Position
	Match    bool // continue: resume with the next pattern of the innermost match
}

func (x *BranchStmt) Span() (start, end Position) {
	return x.TokenPos, x.TokenPos.add(x.Token.String())
}

// A ReturnStmt returns from a function.
type ReturnStmt struct {
	Return Position
	Result Expr // may be nil

	// set by resolver:
	VoidReturn bool // returns the value of a void call
}

func (x *ReturnStmt) Span() (start, end Position) {
	if x.Result == nil {
		return x.Return, x.Return.add("return")
	}
	_, end = x.Result.Span()
	return x.Return, end
}

// An AssertStmt checks a condition: assert(Cond, Message).
type AssertStmt struct {
	Assert  Position
	Cond    Expr
	Message Expr // may be nil
	Rparen  Position
}

func (x *AssertStmt) Span() (start, end Position) { return x.Assert, x.Rparen.add(")") }

// ---- match patterns ----

// A Pattern is a match pattern.
type Pattern interface {
	Node
	pattern()
}

func (*LiteralPattern) pattern()  {}
func (*ExprPattern) pattern()     {}
func (*BindPattern) pattern()     {}
func (*ArrayPattern) pattern()    {}
func (*DictPattern) pattern()     {}
func (*WildcardPattern) pattern() {}
func (*RestPattern) pattern()     {}

// A LiteralPattern matches a value equal to a literal.
type LiteralPattern struct {
	Lit *Literal
}

func (x *LiteralPattern) Span() (start, end Position) { return x.Lit.Span() }

// An ExprPattern matches a value equal to a constant expression.
type ExprPattern struct {
	X Expr
}

func (x *ExprPattern) Span() (start, end Position) { return x.X.Span() }

// A BindPattern matches any value and binds it to a new local: var name.
type BindPattern struct {
	Var  Position
	Name *Ident

	// set by resolver:
	Type   DataType
	Usages int
}

func (x *BindPattern) Span() (start, end Position) { return x.Var, End(x.Name) }

// An ArrayPattern matches an array element-wise: [p1, p2, ..].
type ArrayPattern struct {
	Lbrack Position
	Elems  []Pattern // a RestPattern may only come last
	Rbrack Position
}

func (x *ArrayPattern) Span() (start, end Position) { return x.Lbrack, x.Rbrack.add("]") }

// HasRest reports whether the pattern ends with "..".
func (x *ArrayPattern) HasRest() bool {
	if n := len(x.Elems); n > 0 {
		_, ok := x.Elems[n-1].(*RestPattern)
		return ok
	}
	return false
}

// A DictPattern matches a dictionary by key: {"k": p, "j", ..}.
type DictPattern struct {
	Lbrace  Position
	Entries []*DictPatternEntry
	Rest    bool // ends with ".."
	Rbrace  Position
}

func (x *DictPattern) Span() (start, end Position) { return x.Lbrace, x.Rbrace.add("}") }

// A DictPatternEntry is one entry of a dictionary pattern.
type DictPatternEntry struct {
	Key   Expr    // a constant expression
	Value Pattern // nil if only the key's presence is tested
}

func (x *DictPatternEntry) Span() (start, end Position) {
	if x.Value == nil {
		return x.Key.Span()
	}
	return Start(x.Key), End(x.Value)
}

// A WildcardPattern matches anything: _.
type WildcardPattern struct {
	Pos Position
}

func (x *WildcardPattern) Span() (start, end Position) { return x.Pos, x.Pos.add("_") }

// A RestPattern matches the remaining elements of an array or dictionary: ..
type RestPattern struct {
	Pos Position
}

func (x *RestPattern) Span() (start, end Position) { return x.Pos, x.Pos.add("..") }

// ---- expressions ----

// An Expr is an expression.
type Expr interface {
	Node
	// Info returns the facts recorded about the expression by the resolver.
	Info() *ExprInfo
	expr()
}

// ExprInfo holds what the resolver learns about an expression.
// Each expression is reduced at most once.
type ExprInfo struct {
	Reduced    bool
	DataType   DataType
	IsConstant bool
	Constant   variant.Value // valid if IsConstant
}

func (x *ExprInfo) Info() *ExprInfo { return x }

func (*AwaitExpr) expr()    {}
func (*BinaryExpr) expr()   {}
func (*CallExpr) expr()     {}
func (*CastExpr) expr()     {}
func (*CondExpr) expr()     {}
func (*DictExpr) expr()     {}
func (*DotExpr) expr()      {}
func (*Ident) expr()        {}
func (*IndexExpr) expr()    {}
func (*LambdaExpr) expr()   {}
func (*ListExpr) expr()     {}
func (*Literal) expr()      {}
func (*PreloadExpr) expr()  {}
func (*SelfExpr) expr()     {}
func (*TypeTestExpr) expr() {}
func (*UnaryExpr) expr()    {}

// An Ident represents an identifier.
type Ident struct {
	NamePos Position
	Name    string
	ExprInfo

	// Source, Decl and DeclFunc are set by the parser for
	// function-local names and by the resolver for the rest.
	Source   Source
	Decl     Node      // declaring node: a Member, or the Decl of a Local
	DeclFunc *FuncDecl // function declaring a local, for capture analysis
}

func (x *Ident) Span() (start, end Position) { return x.NamePos, x.NamePos.add(x.Name) }

// A Literal represents a literal: a number, string, string name,
// node path, boolean or null.
type Literal struct {
	Token    Token // INT | FLOAT | STRING | STRING_NAME | NODE_PATH | TRUE | FALSE | NULL
	TokenPos Position
	Raw      string // uninterpreted text
	Value    variant.Value
	ExprInfo
}

func (x *Literal) Span() (start, end Position) { return x.TokenPos, x.TokenPos.add(x.Raw) }

// A SelfExpr refers to the current instance.
type SelfExpr struct {
	SelfPos Position
	ExprInfo
}

func (x *SelfExpr) Span() (start, end Position) { return x.SelfPos, x.SelfPos.add("self") }

// A CallExpr represents a call: Fn(Args), super(Args) or super.Fn(Args).
type CallExpr struct {
	Fn     Expr     // callee; an Ident for super calls, nil for super()
	Super  Position // position of 'super', if a super call
	Lparen Position
	Args   []Expr
	Rparen Position
	ExprInfo

	// set by resolver:
	FuncName     string              // name of the called function
	IsStaticCall bool                // callee is called on a class, not an instance
	Method       *variant.MethodInfo // signature of a native, builtin or utility callee
	IsAwaited    bool
}

func (x *CallExpr) Span() (start, end Position) {
	if x.IsSuper() {
		return x.Super, x.Rparen.add(")")
	}
	start, _ = x.Fn.Span()
	return start, x.Rparen.add(")")
}

// IsSuper reports whether x calls the base class's implementation.
func (x *CallExpr) IsSuper() bool { return x.Super.IsValid() }

// A DotExpr represents an attribute access: X.Name.
type DotExpr struct {
	X    Expr
	Dot  Position
	Name *Ident
	ExprInfo
}

func (x *DotExpr) Span() (start, end Position) {
	start, _ = x.X.Span()
	_, end = x.Name.Span()
	return
}

// An IndexExpr represents an index expression: X[Y].
type IndexExpr struct {
	X      Expr
	Lbrack Position
	Y      Expr
	Rbrack Position
	ExprInfo
}

func (x *IndexExpr) Span() (start, end Position) {
	start, _ = x.X.Span()
	return start, x.Rbrack.add("]")
}

// A UnaryExpr represents a unary expression: Op X.
type UnaryExpr struct {
	OpPos Position
	Op    Token // MINUS | PLUS | TILDE | NOT | BANG
	X     Expr
	ExprInfo

	// set by resolver:
	Operator variant.Operator
}

func (x *UnaryExpr) Span() (start, end Position) {
	_, end = x.X.Span()
	return x.OpPos, end
}

// A BinaryExpr represents a binary expression: X Op Y.
// The logical operators and, or short-circuit.
type BinaryExpr struct {
	X     Expr
	OpPos Position
	Op    Token
	Y     Expr
	ExprInfo

	// set by resolver:
	Operator variant.Operator
}

func (x *BinaryExpr) Span() (start, end Position) {
	start, _ = x.X.Span()
	_, end = x.Y.Span()
	return start, end
}

// IsLogical reports whether x is a short-circuit and/or.
func (x *BinaryExpr) IsLogical() bool {
	switch x.Op {
	case AND, AMPAMP, OR, PIPEPIPE:
		return true
	}
	return false
}

// A CondExpr represents the conditional: True if Cond else False.
type CondExpr struct {
	True    Expr
	If      Position
	Cond    Expr
	ElsePos Position
	False   Expr
	ExprInfo
}

func (x *CondExpr) Span() (start, end Position) {
	start, _ = x.True.Span()
	_, end = x.False.Span()
	return start, end
}

// A TypeTestExpr tests the type of a value: X is T, X is not T.
type TypeTestExpr struct {
	X     Expr
	IsPos Position
	Not   bool
	Test  *TypeSpec
	ExprInfo
}

func (x *TypeTestExpr) Span() (start, end Position) { return Start(x.X), End(x.Test) }

// A CastExpr converts a value to a type: X as T.
type CastExpr struct {
	X      Expr
	AsPos  Position
	Target *TypeSpec
	ExprInfo
}

func (x *CastExpr) Span() (start, end Position) { return Start(x.X), End(x.Target) }

// A ListExpr represents an array literal: [ List ].
type ListExpr struct {
	Lbrack Position
	List   []Expr
	Rbrack Position
	ExprInfo
}

func (x *ListExpr) Span() (start, end Position) { return x.Lbrack, x.Rbrack.add("]") }

// A DictStyle distinguishes the two spellings of dictionary literals.
type DictStyle uint8

const (
	PythonDict DictStyle = iota // {key: value}, any key expression
	LuaTable                    // {name = value}, identifier keys denote string names
)

func (s DictStyle) String() string {
	if s == LuaTable {
		return "LuaTable"
	}
	return "PythonDict"
}

// A DictExpr represents a dictionary literal: { Entries }.
type DictExpr struct {
	Lbrace  Position
	Entries []*DictEntry
	Rbrace  Position
	Style   DictStyle
	ExprInfo
}

func (x *DictExpr) Span() (start, end Position) { return x.Lbrace, x.Rbrace.add("}") }

// A DictEntry represents a dictionary entry: Key: Value, or Key = Value.
type DictEntry struct {
	Key   Expr
	Colon Position
	Value Expr
}

func (x *DictEntry) Span() (start, end Position) {
	start, _ = x.Key.Span()
	_, end = x.Value.Span()
	return start, end
}

// A LambdaExpr represents an anonymous function.
type LambdaExpr struct {
	Func *FuncDecl
	ExprInfo

	// set by resolver:
	Captures []*Ident // outer locals read by the lambda, in first-use order
	UseSelf  bool     // the lambda refers to members of the instance
}

func (x *LambdaExpr) Span() (start, end Position) { return x.Func.Span() }

// An AwaitExpr waits for a signal or coroutine: await X.
type AwaitExpr struct {
	Await Position
	X     Expr
	ExprInfo
}

func (x *AwaitExpr) Span() (start, end Position) { return x.Await, End(x.X) }

// A PreloadExpr loads a resource at compile time: preload("res://x.gd").
type PreloadExpr struct {
	Preload Position
	Path    *Literal
	Rparen  Position
	ExprInfo

	// set by resolver:
	ResolvedPath string
}

func (x *PreloadExpr) Span() (start, end Position) { return x.Preload, x.Rparen.add(")") }

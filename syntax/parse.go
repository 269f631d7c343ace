// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// This file defines a recursive-descent parser.
//
// Grammar, lowest precedence first:
//
//	expr       = ternary {'as' type}
//	ternary    = binop ['if' binop 'else' ternary]
//	binop      = binop binop_op binop | ('not' | '!') binop | unary
//	unary      = ('-' | '+' | '~') unary | power
//	power      = typetest {'**' ['-' | '+' | '~'] typetest}
//	typetest   = await {'is' ['not'] type}
//	await      = 'await' await | primary {suffix}
//
// The parser tags function-local names as it goes: each Block
// records the locals it declares, and each identifier that refers
// to a local is given the local's Source and declaring node.

import (
	"fmt"
	"strings"

	"go.gdlang.net/variant"
)

// Parse parses the input data and returns the corresponding parse tree.
//
// If src != nil, Parse parses the source from src and the filename
// is only used when recording position information.
// The type of the argument for the src parameter must be string,
// []byte, or io.Reader.
// If src == nil, Parse parses the file specified by filename.
func Parse(filename string, src interface{}) (f *File, err error) {
	in, err := newScanner(filename, src)
	if err != nil {
		return nil, err
	}
	p := parser{in: in, path: filename}
	defer p.in.recover(&err)

	p.nextToken() // read first lookahead token
	f = p.parseFile()
	return f, nil
}

// ParseExpr parses a single expression, optionally followed by a
// newline.
func ParseExpr(filename string, src interface{}) (expr Expr, err error) {
	in, err := newScanner(filename, src)
	if err != nil {
		return nil, err
	}
	p := parser{in: in, path: filename}
	defer p.in.recover(&err)

	p.nextToken() // read first lookahead token
	expr = p.parseExpr()
	if p.tok == NEWLINE {
		p.nextToken()
	}
	if p.tok != EOF {
		p.in.errorf(p.tokval.pos, "got %#v after expression, want EOF", p.tok)
	}
	return expr, nil
}

type parser struct {
	in     *scanner
	tok    Token
	tokval tokenValue

	// one token of lookahead beyond tok
	peeked  bool
	peekTok Token
	peekVal tokenValue

	path  string
	file  *File
	class *ClassDecl // class whose body is being parsed
	fn    *FuncDecl  // innermost function being parsed, or nil
	block *Block     // innermost block being parsed, or nil

	// lineEnded is set after a lambda with an indented body,
	// which consumes the newline of the enclosing statement.
	lineEnded bool
}

// nextToken advances the scanner and returns the position of the
// previous token.
func (p *parser) nextToken() Position {
	oldpos := p.tokval.pos
	if p.peeked {
		p.peeked = false
		p.tok, p.tokval = p.peekTok, p.peekVal
	} else {
		p.tok = p.in.nextToken(&p.tokval)
	}
	return oldpos
}

// peek returns the token after the current one.
func (p *parser) peek() Token {
	if !p.peeked {
		p.peekTok = p.in.nextToken(&p.peekVal)
		p.peeked = true
	}
	return p.peekTok
}

// consume consumes a token of the specified type and returns its position.
func (p *parser) consume(t Token) Position {
	if p.tok != t {
		p.in.errorf(p.tokval.pos, "got %#v, want %#v", p.tok, t)
	}
	return p.nextToken()
}

// endLine consumes the end of a simple statement or member declaration.
func (p *parser) endLine() {
	if p.lineEnded {
		p.lineEnded = false
		return
	}
	switch p.tok {
	case SEMI:
		p.nextToken()
		if p.tok == NEWLINE {
			p.nextToken()
		}
	case NEWLINE:
		p.nextToken()
	case EOF:
	default:
		p.in.errorf(p.tokval.pos, "got %#v, want newline", p.tok)
	}
}

// ---- classes ----

func (p *parser) parseFile() *File {
	c := &ClassDecl{ClassPos: p.tokval.pos, Path: p.path}
	p.file = &File{Path: p.path, Class: c}
	p.class = c
	for p.tok != EOF {
		p.parseClassMember(c, true)
	}
	c.EndPos = p.tokval.pos
	return p.file
}

// annotations accumulates the annotations preceding a member or statement.
type annotations struct {
	pos     Position
	onready bool
	export  bool
	ignore  []string
}

func (a *annotations) any() bool { return a.onready || a.export || a.ignore != nil }

// parseAnnotation parses @name or @name(args) and records its effect.
// Class-level annotations such as @tool take effect immediately.
func (p *parser) parseAnnotation(c *ClassDecl, ann *annotations) {
	pos := p.tokval.pos
	name := p.tokval.string
	p.nextToken()
	var args []Expr
	if p.tok == LPAREN {
		p.nextToken()
		for p.tok != RPAREN {
			args = append(args, p.parseExpr())
			if p.tok != COMMA {
				break
			}
			p.nextToken()
		}
		p.consume(RPAREN)
	}
	if !ann.any() {
		ann.pos = pos
	}

	if c == nil && name != "warning_ignore" {
		p.in.errorf(pos, "Annotation \"@%s\" is not allowed in this level.", name)
	}

	switch name {
	case "tool":
		c.Tool = true
	case "icon", "static_unload":
		// editor-only
	case "onready":
		ann.onready = true
	case "export_group", "export_subgroup", "export_category":
		if len(args) == 0 {
			p.in.errorf(pos, "Annotation \"@%s\" requires a string argument.", name)
		}
		lit, ok := args[0].(*Literal)
		if !ok || lit.Token != STRING {
			p.in.errorf(Start(args[0]), "Annotation \"@%s\" requires a string argument.", name)
		}
		c.AddMember(&GroupDecl{At: pos, Annotation: name, Name: string(lit.Value.(variant.String))})
	case "warning_ignore":
		for _, arg := range args {
			lit, ok := arg.(*Literal)
			if !ok || lit.Token != STRING {
				p.in.errorf(Start(arg), "Annotation \"@warning_ignore\" requires string arguments.")
			}
			ann.ignore = append(ann.ignore, strings.ToUpper(string(lit.Value.(variant.String))))
		}
		if ann.ignore == nil {
			ann.ignore = []string{}
		}
	default:
		if strings.HasPrefix(name, "export") {
			ann.export = true
			break
		}
		p.in.errorf(pos, "Unrecognized annotation: \"@%s\".", name)
	}
}

// parseClassMember parses one member of class c, with any
// preceding annotations.
func (p *parser) parseClassMember(c *ClassDecl, top bool) {
	var ann annotations
	for p.tok == ANNOTATION {
		p.parseAnnotation(c, &ann)
		for p.tok == NEWLINE {
			p.nextToken()
		}
	}

	var m Member
	switch p.tok {
	case VAR:
		v := p.parseVarDecl(false)
		v.Onready, v.Export = ann.onready, ann.export
		if v.Onready {
			c.OnreadyUsed = true
		}
		c.AddMember(v)
		m = v
		p.endLine()

	case CONST:
		k := p.parseConstDecl(false)
		c.AddMember(k)
		m = k
		p.endLine()

	case SIGNAL:
		s := &SignalDecl{Signal: p.nextToken(), Name: p.parseIdent()}
		s.EndPos = End(s.Name)
		if p.tok == LPAREN {
			p.nextToken()
			s.Params = p.parseParams(false)
			s.EndPos = p.consume(RPAREN).add(")")
		}
		c.AddMember(s)
		m = s
		p.endLine()

	case ENUM:
		e := p.parseEnumDecl()
		if e.Name != nil {
			c.AddMember(e)
		} else {
			for _, v := range e.Values {
				c.AddMember(v)
			}
		}
		m = e
		p.endLine()

	case STATIC, FUNC:
		static := false
		if p.tok == STATIC {
			p.nextToken()
			static = true
		}
		fn := &FuncDecl{Func: p.consume(FUNC), Static: static, Class: c}
		fn.Name = p.parseIdent()
		p.parseFunction(fn)
		c.AddMember(fn)
		m = fn

	case CLASS:
		inner := &ClassDecl{ClassPos: p.nextToken(), Outer: c, Path: p.path}
		inner.Name = p.parseIdent()
		if p.tok == EXTENDS {
			inner.Extends = p.parseExtends()
		}
		p.consume(COLON)
		save := p.class
		p.class = inner
		if p.tok == NEWLINE {
			p.nextToken()
			p.consume(INDENT)
			for p.tok != OUTDENT && p.tok != EOF {
				p.parseClassMember(inner, false)
			}
			inner.EndPos = p.consume(OUTDENT)
		} else {
			p.parseClassMember(inner, false)
			inner.EndPos = p.tokval.pos
		}
		p.class = save
		c.AddMember(inner)
		m = inner

	case EXTENDS:
		if c.Extends != nil {
			p.in.error(p.tokval.pos, "\"extends\" can only be used once.")
		}
		c.Extends = p.parseExtends()
		p.endLine()

	case CLASS_NAME:
		if !top {
			p.in.error(p.tokval.pos, "\"class_name\" is only valid for the main class namespace.")
		}
		if c.Name != nil {
			p.in.error(p.tokval.pos, "\"class_name\" can only be used once.")
		}
		p.nextToken()
		c.Name = p.parseIdent()
		if p.tok == EXTENDS {
			if c.Extends != nil {
				p.in.error(p.tokval.pos, "\"extends\" can only be used once.")
			}
			c.Extends = p.parseExtends()
		}
		p.endLine()

	case PASS:
		p.nextToken()
		p.endLine()

	case NEWLINE, SEMI:
		p.nextToken()

	case EOF, OUTDENT:
		if ann.any() {
			p.in.error(p.tokval.pos, "Expected class member after annotation.")
		}
		return

	default:
		p.in.errorf(p.tokval.pos, "unexpected %#v in class body", p.tok)
	}

	if _, ok := m.(*VarDecl); !ok {
		if ann.onready {
			p.in.error(ann.pos, "Annotation \"@onready\" can only be applied to variables.")
		}
		if ann.export {
			p.in.error(ann.pos, "Annotation \"@export\" can only be applied to variables.")
		}
	}
	if ann.ignore != nil && m != nil {
		p.file.Ignores = append(p.file.Ignores, WarningIgnore{Start: ann.pos, End: End(m), Codes: ann.ignore})
	}
}

// parseExtends parses an extends clause:
//
//	extends Name{.Name}
//	extends "path"{.Name}
func (p *parser) parseExtends() *Extends {
	e := &Extends{ExtendsPos: p.nextToken()}
	if p.tok == STRING {
		e.Path = p.parseLiteral()
		if p.tok != DOT {
			return e
		}
		p.nextToken()
	}
	e.Names = append(e.Names, p.parseIdent())
	for p.tok == DOT {
		p.nextToken()
		e.Names = append(e.Names, p.parseIdent())
	}
	return e
}

func (p *parser) parseEnumDecl() *EnumDecl {
	e := &EnumDecl{Enum: p.nextToken()}
	if p.tok == IDENT {
		e.Name = p.parseIdent()
	}
	p.consume(LBRACE)
	for p.tok != RBRACE {
		v := &EnumValue{Name: p.parseIdent(), Parent: e, Index: len(e.Values)}
		if p.tok == EQ {
			p.nextToken()
			v.Init = p.parseExpr()
		}
		e.Values = append(e.Values, v)
		if p.tok != COMMA {
			break
		}
		p.nextToken()
	}
	e.Rbrace = p.consume(RBRACE)
	return e
}

// parseVarDecl parses a variable declaration. Members may declare
// property accessors; locals are declared after their initializer.
func (p *parser) parseVarDecl(local bool) *VarDecl {
	v := &VarDecl{Var: p.nextToken(), Local: local}
	v.Name = p.parseIdent()
	v.EndPos = End(v.Name)

	switch p.tok {
	case COLON:
		p.nextToken()
		if !local && p.isAccessorStart() {
			p.parseAccessors(v)
			return v
		}
		v.TypeSpec = p.parseTypeSpec()
		v.EndPos = End(v.TypeSpec)
	case COLONEQ:
		p.nextToken()
		v.Infer = true
		v.Init = p.parseExpr()
		v.EndPos = End(v.Init)
	}
	if !v.Infer && p.tok == EQ {
		p.nextToken()
		v.Init = p.parseExpr()
		v.EndPos = End(v.Init)
	}

	if local {
		p.declare(v.Name, LocalVariable, v)
	} else if p.tok == COLON && !p.lineEnded {
		p.nextToken()
		p.parseAccessors(v)
	}
	return v
}

// isAccessorStart reports whether the tokens following a colon in a
// member variable declaration begin accessors rather than a type.
func (p *parser) isAccessorStart() bool {
	if p.tok == NEWLINE {
		return true
	}
	if p.tok != IDENT || (p.tokval.raw != "set" && p.tokval.raw != "get") {
		return false
	}
	switch p.peek() {
	case EQ, LPAREN, COLON:
		return true
	}
	return false
}

// parseAccessors parses the setter and getter of a property, either
// as an indented block or inline as "set = f, get = g".
func (p *parser) parseAccessors(v *VarDecl) {
	if p.tok != NEWLINE {
		for {
			p.parseAccessor(v, false)
			if p.tok != COMMA {
				break
			}
			p.nextToken()
		}
		return
	}
	p.nextToken()
	p.consume(INDENT)
	for p.tok != OUTDENT && p.tok != EOF {
		p.parseAccessor(v, true)
	}
	p.consume(OUTDENT)
	p.lineEnded = true
}

func (p *parser) parseAccessor(v *VarDecl, block bool) {
	id := p.parseIdent()
	isSet := id.Name == "set"
	if !isSet && id.Name != "get" {
		p.in.error(id.NamePos, "Expected \"get\" or \"set\" for property declaration.")
	}
	if isSet && (v.Setter != nil || v.SetterName != nil) {
		p.in.error(id.NamePos, "Properties can only have one setter.")
	}
	if !isSet && (v.Getter != nil || v.GetterName != nil) {
		p.in.error(id.NamePos, "Properties can only have one getter.")
	}

	if p.tok == EQ {
		p.nextToken()
		name := p.parseIdent()
		if isSet {
			v.SetterName = name
		} else {
			v.GetterName = name
		}
		v.EndPos = End(name)
		if block {
			p.endLine()
		}
		return
	}
	if !block {
		p.in.errorf(p.tokval.pos, "Expected \"=\" after \"%s\".", id.Name)
	}

	suffix := "_getter"
	if isSet {
		suffix = "_setter"
	}
	fn := &FuncDecl{
		Func:     id.NamePos,
		Name:     &Ident{NamePos: id.NamePos, Name: "@" + v.Name.Name + suffix},
		Class:    p.class,
		Property: v,
	}
	save := p.enterFunction(fn)
	if isSet {
		p.consume(LPAREN)
		param := &Param{Name: p.parseIdent()}
		if p.tok == COLON {
			p.nextToken()
			param.TypeSpec = p.parseTypeSpec()
		}
		p.declare(param.Name, Parameter, param)
		fn.Params = []*Param{param}
		p.consume(RPAREN)
		v.Setter = fn
	} else {
		if p.tok == LPAREN {
			p.nextToken()
			p.consume(RPAREN)
		}
		v.Getter = fn
	}
	p.consume(COLON)
	fn.Body.Start = p.tokval.pos
	p.parseSuite(fn.Body)
	p.leaveFunction(save)
	v.EndPos = fn.Body.end()
}

func (p *parser) parseConstDecl(local bool) *ConstDecl {
	k := &ConstDecl{Const: p.nextToken(), Local: local}
	k.Name = p.parseIdent()
	switch p.tok {
	case COLON:
		p.nextToken()
		k.TypeSpec = p.parseTypeSpec()
		p.consume(EQ)
	case COLONEQ:
		p.nextToken()
		k.Infer = true
	default:
		p.consume(EQ)
	}
	k.Init = p.parseExpr()
	if local {
		p.declare(k.Name, LocalConstant, k)
	}
	return k
}

// ---- functions ----

// A funcState saves the parser's function context.
type funcState struct {
	fn    *FuncDecl
	block *Block
}

// enterFunction makes fn the current function. Its body block is
// nested in the current block, so a lambda sees the locals of the
// function that contains it.
func (p *parser) enterFunction(fn *FuncDecl) funcState {
	save := funcState{p.fn, p.block}
	fn.Body = &Block{Parent: p.block, Func: fn}
	p.fn = fn
	p.block = fn.Body
	return save
}

func (p *parser) leaveFunction(save funcState) {
	p.fn, p.block = save.fn, save.block
}

// parseFunction parses the parameters, return type and body of fn.
func (p *parser) parseFunction(fn *FuncDecl) {
	save := p.enterFunction(fn)
	p.consume(LPAREN)
	fn.Params = p.parseParams(true)
	p.consume(RPAREN)
	if p.tok == ARROW {
		p.nextToken()
		fn.Return = p.parseTypeSpec()
	}
	p.consume(COLON)
	fn.Body.Start = p.tokval.pos

	switch {
	case fn.Lambda == nil:
		p.parseSuite(fn.Body)
	case p.tok == NEWLINE:
		p.parseSuite(fn.Body)
		p.lineEnded = true
	default:
		// Simple statements on one line, up to the end of the
		// enclosing expression.
		for {
			fn.Body.Stmts = append(fn.Body.Stmts, p.parseSmallStmt())
			if p.lineEnded || p.tok != SEMI {
				break
			}
			p.nextToken()
		}
	}
	p.leaveFunction(save)
}

// parseParams parses a parameter list, up to the closing paren.
// Function parameters are declared as locals of the current block.
func (p *parser) parseParams(declare bool) []*Param {
	var params []*Param
	for p.tok != RPAREN {
		param := &Param{Name: p.parseIdent()}
		switch p.tok {
		case COLON:
			p.nextToken()
			param.TypeSpec = p.parseTypeSpec()
		case COLONEQ:
			p.nextToken()
			param.Infer = true
			param.Default = p.parseExpr()
		}
		if !param.Infer && p.tok == EQ {
			p.nextToken()
			param.Default = p.parseExpr()
		}
		if param.Default != nil && !declare {
			p.in.error(Start(param.Default), "Signal parameters cannot have a default value.")
		}
		if param.Default == nil && len(params) > 0 && params[len(params)-1].Default != nil {
			p.in.error(param.Name.NamePos, "Cannot have mandatory parameters after optional parameters.")
		}
		if declare {
			p.declare(param.Name, Parameter, param)
		} else {
			for _, prev := range params {
				if prev.Name.Name == param.Name.Name {
					p.in.errorf(param.Name.NamePos, "There is already a parameter named \"%s\" declared in this scope.", param.Name.Name)
				}
			}
		}
		params = append(params, param)
		if p.tok != COMMA {
			break
		}
		p.nextToken()
	}
	return params
}

// declare adds a local to the current block and tags its identifier.
// A function's locals may not be redeclared in nested blocks.
func (p *parser) declare(id *Ident, src Source, decl Node) {
	for b := p.block; b != nil && b.Func == p.fn; b = b.Parent {
		for _, l := range b.Locals {
			if l.Name == id.Name {
				p.in.errorf(id.NamePos, "There is already a %s named \"%s\" declared in this scope.", localKind(l.Source), id.Name)
			}
		}
	}
	p.block.Locals = append(p.block.Locals, &Local{
		Name:   id.Name,
		Source: src,
		Decl:   decl,
		Func:   p.fn,
		Ident:  id,
	})
	id.Source, id.Decl, id.DeclFunc = src, decl, p.fn
}

func localKind(s Source) string {
	switch s {
	case Parameter:
		return "parameter"
	case LocalConstant:
		return "constant"
	case LocalIterator:
		return "for loop iterator"
	case LocalBind:
		return "pattern bind"
	}
	return "variable"
}

// ---- statements ----

// parseSuite parses the body of a compound statement, after the colon:
// either simple statements on the same line or an indented block.
func (p *parser) parseSuite(b *Block) {
	if p.tok != NEWLINE {
		p.parseSimpleStmt(b)
		return
	}
	p.nextToken()
	p.consume(INDENT)
	for p.tok != OUTDENT && p.tok != EOF {
		p.parseStmt(b)
	}
	p.consume(OUTDENT)
}

// parseBlock parses a suite as a new block nested in the current one.
func (p *parser) parseBlock(loop bool) *Block {
	b := &Block{Parent: p.block, Func: p.fn, IsLoop: loop, Start: p.tokval.pos}
	save := p.block
	p.block = b
	p.parseSuite(b)
	p.block = save
	return b
}

// parseStmt parses a statement, with any preceding annotations,
// and appends it to b.
func (p *parser) parseStmt(b *Block) {
	var ann annotations
	for p.tok == ANNOTATION {
		p.parseAnnotation(nil, &ann)
		for p.tok == NEWLINE {
			p.nextToken()
		}
	}
	first := len(b.Stmts)

	switch p.tok {
	case IF:
		b.Stmts = append(b.Stmts, p.parseIfStmt())
	case FOR:
		b.Stmts = append(b.Stmts, p.parseForStmt())
	case WHILE:
		pos := p.nextToken()
		cond := p.parseExpr()
		p.consume(COLON)
		b.Stmts = append(b.Stmts, &WhileStmt{While: pos, Cond: cond, Body: p.parseBlock(true)})
	case MATCH:
		b.Stmts = append(b.Stmts, p.parseMatchStmt())
	case SEMI, NEWLINE:
		p.nextToken()
	default:
		p.parseSimpleStmt(b)
	}

	if ann.ignore != nil && len(b.Stmts) > first {
		p.file.Ignores = append(p.file.Ignores, WarningIgnore{
			Start: ann.pos,
			End:   End(b.Stmts[len(b.Stmts)-1]),
			Codes: ann.ignore,
		})
	}
}

// parseSimpleStmt parses simple statements separated by semicolons,
// up to the end of the line.
func (p *parser) parseSimpleStmt(b *Block) {
	for {
		b.Stmts = append(b.Stmts, p.parseSmallStmt())
		if p.lineEnded || p.tok != SEMI {
			break
		}
		p.nextToken()
		if p.tok == NEWLINE || p.tok == EOF {
			break
		}
	}
	p.endLine()
}

// parseSmallStmt parses a simple statement.
func (p *parser) parseSmallStmt() Stmt {
	switch p.tok {
	case VAR:
		return p.parseVarDecl(true)

	case CONST:
		return p.parseConstDecl(true)

	case RETURN:
		pos := p.nextToken()
		var result Expr
		if !p.atStmtEnd() {
			result = p.parseExpr()
		}
		return &ReturnStmt{Return: pos, Result: result}

	case BREAK:
		if !p.inLoop() {
			p.in.error(p.tokval.pos, "Cannot use \"break\" outside of a loop.")
		}
		return &BranchStmt{Token: BREAK, TokenPos: p.nextToken()}

	case CONTINUE:
		b := p.continuable()
		if b == nil {
			p.in.error(p.tokval.pos, "Cannot use \"continue\" outside of a loop or pattern matching block.")
		}
		return &BranchStmt{Token: CONTINUE, TokenPos: p.nextToken(), Match: b != nil && b.IsCase}

	case PASS, BREAKPOINT:
		tok := p.tok
		pos := p.nextToken()
		return &BranchStmt{Token: tok, TokenPos: pos}

	case ASSERT:
		a := &AssertStmt{Assert: p.nextToken()}
		p.consume(LPAREN)
		a.Cond = p.parseExpr()
		if p.tok == COMMA {
			p.nextToken()
			if p.tok != RPAREN {
				a.Message = p.parseExpr()
				if p.tok == COMMA {
					p.nextToken()
				}
			}
		}
		a.Rparen = p.consume(RPAREN)
		return a
	}

	x := p.parseExpr()
	switch p.tok {
	case EQ, PLUS_EQ, MINUS_EQ, STAR_EQ, STARSTAR_EQ, SLASH_EQ, PERCENT_EQ,
		AMP_EQ, PIPE_EQ, CIRCUMFLEX_EQ, LTLT_EQ, GTGT_EQ:
		switch x.(type) {
		case *Ident, *DotExpr, *IndexExpr:
		default:
			p.in.errorf(Start(x), "cannot assign to %s", describeExpr(x))
		}
		op := p.tok
		pos := p.nextToken()
		rhs := p.parseExpr()
		return &AssignStmt{OpPos: pos, Op: op, LHS: x, RHS: rhs}
	}
	return &ExprStmt{X: x}
}

// atStmtEnd reports whether the current token ends a simple statement,
// including one in the body of a single-line lambda.
func (p *parser) atStmtEnd() bool {
	switch p.tok {
	case NEWLINE, SEMI, EOF, RPAREN, RBRACK, RBRACE, COMMA:
		return true
	}
	return p.lineEnded
}

// inLoop reports whether the current block is within a loop body
// of the current function.
func (p *parser) inLoop() bool {
	for b := p.block; b != nil && b.Func == p.fn; b = b.Parent {
		if b.IsLoop {
			return true
		}
	}
	return false
}

// continuable returns the innermost loop body or match branch body
// of the current function, or nil.
func (p *parser) continuable() *Block {
	for b := p.block; b != nil && b.Func == p.fn; b = b.Parent {
		if b.IsLoop || b.IsCase {
			return b
		}
	}
	return nil
}

func describeExpr(x Expr) string {
	switch x := x.(type) {
	case *Literal:
		return "a literal"
	case *CallExpr:
		return "a function call"
	case *BinaryExpr:
		return "a " + x.Op.String() + " expression"
	case *UnaryExpr:
		return "a unary expression"
	case *SelfExpr:
		return "self"
	}
	return "an expression"
}

// parseIfStmt parses an if statement. Each elif becomes an IfStmt
// nested in the else block of the previous one.
func (p *parser) parseIfStmt() *IfStmt {
	x := &IfStmt{If: p.nextToken()}
	x.Cond = p.parseExpr()
	p.consume(COLON)
	x.True = p.parseBlock(false)

	tail := x
	for p.tok == ELIF {
		elif := &IfStmt{If: p.nextToken()}
		elif.Cond = p.parseExpr()
		p.consume(COLON)
		elif.True = p.parseBlock(false)
		tail.ElsePos = elif.If
		tail.False = &Block{Parent: p.block, Func: p.fn, Start: elif.If, Stmts: []Stmt{elif}}
		tail = elif
	}
	if p.tok == ELSE {
		tail.ElsePos = p.nextToken()
		p.consume(COLON)
		tail.False = p.parseBlock(false)
	}
	return x
}

// parseForStmt parses a for loop. The loop variable is a local of
// the loop body.
func (p *parser) parseForStmt() *ForStmt {
	f := &ForStmt{For: p.nextToken()}
	f.Var = p.parseIdent()
	if p.tok == COLON {
		p.nextToken()
		f.TypeSpec = p.parseTypeSpec()
	}
	p.consume(IN)
	f.X = p.parseExpr()
	p.consume(COLON)

	f.Body = &Block{Parent: p.block, Func: p.fn, IsLoop: true, Start: p.tokval.pos}
	save := p.block
	p.block = f.Body
	p.declare(f.Var, LocalIterator, f)
	p.parseSuite(f.Body)
	p.block = save
	return f
}

func (p *parser) parseMatchStmt() *MatchStmt {
	m := &MatchStmt{Match: p.nextToken()}
	m.X = p.parseExpr()
	p.consume(COLON)
	p.consume(NEWLINE)
	p.consume(INDENT)
	for p.tok != OUTDENT && p.tok != EOF {
		m.Branches = append(m.Branches, p.parseMatchBranch())
	}
	p.consume(OUTDENT)
	return m
}

// parseMatchBranch parses a comma-separated list of patterns and
// the branch body. Pattern binds are locals of the body.
func (p *parser) parseMatchBranch() *MatchBranch {
	br := &MatchBranch{Body: &Block{Parent: p.block, Func: p.fn, IsCase: true}}
	save := p.block
	p.block = br.Body
	for {
		br.Patterns = append(br.Patterns, p.parsePattern(br, true))
		if p.tok != COMMA {
			break
		}
		p.nextToken()
	}
	if len(br.Patterns) > 1 && len(br.Body.Locals) > 0 {
		p.in.error(br.Body.Locals[0].Ident.NamePos, "Cannot use a variable bind with multiple patterns.")
	}
	p.consume(COLON)
	br.Body.Start = p.tokval.pos
	p.parseSuite(br.Body)
	p.block = save
	return br
}

func (p *parser) parsePattern(br *MatchBranch, top bool) Pattern {
	switch p.tok {
	case VAR:
		b := &BindPattern{Var: p.nextToken()}
		b.Name = p.parseIdent()
		p.declare(b.Name, LocalBind, b)
		return b

	case DOTDOT:
		if top {
			p.in.error(p.tokval.pos, "The \"..\" pattern can only be used in array or dictionary patterns.")
		}
		return &RestPattern{Pos: p.nextToken()}

	case LBRACK:
		a := &ArrayPattern{Lbrack: p.nextToken()}
		for p.tok != RBRACK {
			a.Elems = append(a.Elems, p.parsePattern(br, false))
			if p.tok != COMMA {
				break
			}
			p.nextToken()
		}
		a.Rbrack = p.consume(RBRACK)
		for i, e := range a.Elems {
			if _, ok := e.(*RestPattern); ok && i != len(a.Elems)-1 {
				p.in.error(Start(e), "The \"..\" pattern must be the last element in the pattern array.")
			}
		}
		return a

	case LBRACE:
		d := &DictPattern{Lbrace: p.nextToken()}
		for p.tok != RBRACE {
			if d.Rest {
				p.in.error(p.tokval.pos, "The \"..\" pattern must be the last element in the pattern dictionary.")
			}
			if p.tok == DOTDOT {
				p.nextToken()
				d.Rest = true
			} else {
				e := &DictPatternEntry{Key: p.parseExpr()}
				if p.tok == COLON {
					p.nextToken()
					e.Value = p.parsePattern(br, false)
				}
				d.Entries = append(d.Entries, e)
			}
			if p.tok != COMMA {
				break
			}
			p.nextToken()
		}
		d.Rbrace = p.consume(RBRACE)
		return d
	}

	x := p.parseExpr()
	switch x := x.(type) {
	case *Ident:
		if x.Name == "_" {
			if top {
				br.HasWildcard = true
			}
			return &WildcardPattern{Pos: x.NamePos}
		}
	case *Literal:
		return &LiteralPattern{Lit: x}
	case *UnaryExpr:
		// Fold -1 and -1.5 into literals.
		if lit, ok := x.X.(*Literal); ok && x.Op == MINUS {
			switch v := lit.Value.(type) {
			case variant.Int:
				return &LiteralPattern{Lit: &Literal{Token: INT, TokenPos: x.OpPos, Raw: "-" + lit.Raw, Value: -v}}
			case variant.Float:
				return &LiteralPattern{Lit: &Literal{Token: FLOAT, TokenPos: x.OpPos, Raw: "-" + lit.Raw, Value: -v}}
			}
		}
	}
	return &ExprPattern{X: x}
}

// ---- types ----

// parseTypeSpec parses a type annotation:
//
//	type = IDENT {'.' IDENT} ['[' type ']']
func (p *parser) parseTypeSpec() *TypeSpec {
	t := &TypeSpec{Names: []*Ident{p.parseTypeName()}}
	for p.tok == DOT {
		p.nextToken()
		t.Names = append(t.Names, p.parseTypeName())
	}
	if p.tok == LBRACK {
		p.nextToken()
		t.Element = p.parseTypeSpec()
		t.Rbrack = p.consume(RBRACK)
	}
	return t
}

func (p *parser) parseTypeName() *Ident {
	if p.tok != IDENT {
		p.in.errorf(p.tokval.pos, "got %#v, want type name", p.tok)
	}
	return p.parseIdent()
}

// ---- expressions ----

// parseExpr parses an expression, including a trailing cast.
func (p *parser) parseExpr() Expr {
	x := p.parseTernary()
	for p.tok == AS {
		pos := p.nextToken()
		x = &CastExpr{X: x, AsPos: pos, Target: p.parseTypeSpec()}
	}
	return x
}

func (p *parser) parseTernary() Expr {
	x := p.parseTestPrec(0)
	if p.tok != IF {
		return x
	}
	ifpos := p.nextToken()
	cond := p.parseTestPrec(0)
	if p.tok != ELSE {
		p.in.error(p.tokval.pos, "Expected \"else\" after ternary operator condition.")
	}
	elsepos := p.nextToken()
	y := p.parseTernary()
	return &CondExpr{True: x, If: ifpos, Cond: cond, ElsePos: elsepos, False: y}
}

func (p *parser) parseTestPrec(prec int) Expr {
	if prec >= len(preclevels) {
		return p.parseUnary()
	}

	// expr = NOT expr | '!' expr
	if (p.tok == NOT || p.tok == BANG) && prec == int(precedence[NOT]) {
		op := p.tok
		pos := p.nextToken()
		x := p.parseTestPrec(prec)
		return &UnaryExpr{OpPos: pos, Op: op, X: x}
	}

	return p.parseBinopExpr(prec)
}

// expr = expr op expr
func (p *parser) parseBinopExpr(prec int) Expr {
	x := p.parseTestPrec(prec + 1)
	for {
		if p.tok == NOT {
			// In this context, NOT must be followed by IN.
			// Replace NOT IN by a single NOT_IN token.
			if p.peek() != IN {
				p.in.errorf(p.tokval.pos, "got %#v, want in", p.peek())
			}
			p.nextToken()
			p.tok = NOT_IN
		}

		// Binary operator of specified precedence?
		opprec := int(precedence[p.tok])
		if opprec < prec {
			return x
		}

		op := p.tok
		pos := p.nextToken()
		y := p.parseTestPrec(opprec + 1)
		x = &BinaryExpr{OpPos: pos, Op: op, X: x, Y: y}
	}
}

// precedence maps each operator to its precedence (0-10), or -1 for other tokens.
var precedence [maxToken]int8

// preclevels groups operators of equal precedence.
// Comparisons are left-associative, as are all binary operators.
// Unary 'not' and '!' are handled at their own level.
var preclevels = [...][]Token{
	{OR, PIPEPIPE},             // or ||
	{AND, AMPAMP},              // and &&
	{NOT},                      // not !
	{IN, NOT_IN},               // in, not in
	{EQL, NEQ, LT, GT, LE, GE}, // == != < > <= >=
	{PIPE},                     // |
	{CIRCUMFLEX},               // ^
	{AMP},                      // &
	{LTLT, GTGT},               // << >>
	{MINUS, PLUS},              // + -
	{STAR, PERCENT, SLASH},     // * % /
}

func init() {
	// populate precedence table
	for i := range precedence {
		precedence[i] = -1
	}
	for level, tokens := range preclevels {
		for _, tok := range tokens {
			precedence[tok] = int8(level)
		}
	}
}

// unary = ('-' | '+' | '~') unary | power
func (p *parser) parseUnary() Expr {
	switch p.tok {
	case MINUS, PLUS, TILDE:
		op := p.tok
		pos := p.nextToken()
		x := p.parseUnary()
		return &UnaryExpr{OpPos: pos, Op: op, X: x}
	case NOT, BANG:
		// as an operand of a tighter operator: a == not b
		op := p.tok
		pos := p.nextToken()
		x := p.parseTestPrec(int(precedence[NOT]))
		return &UnaryExpr{OpPos: pos, Op: op, X: x}
	}
	return p.parsePower()
}

// power = typetest {'**' ['-' | '+' | '~'] typetest}
func (p *parser) parsePower() Expr {
	x := p.parseTypeTest()
	for p.tok == STARSTAR {
		pos := p.nextToken()
		y := p.parsePowerOperand()
		x = &BinaryExpr{OpPos: pos, Op: STARSTAR, X: x, Y: y}
	}
	return x
}

func (p *parser) parsePowerOperand() Expr {
	switch p.tok {
	case MINUS, PLUS, TILDE:
		op := p.tok
		pos := p.nextToken()
		return &UnaryExpr{OpPos: pos, Op: op, X: p.parsePowerOperand()}
	}
	return p.parseTypeTest()
}

// typetest = await {'is' ['not'] type}
func (p *parser) parseTypeTest() Expr {
	x := p.parseAwait()
	for p.tok == IS {
		pos := p.nextToken()
		not := false
		if p.tok == NOT {
			p.nextToken()
			not = true
		}
		x = &TypeTestExpr{X: x, IsPos: pos, Not: not, Test: p.parseTypeSpec()}
	}
	return x
}

func (p *parser) parseAwait() Expr {
	if p.tok == AWAIT {
		pos := p.nextToken()
		return &AwaitExpr{Await: pos, X: p.parseAwait()}
	}
	return p.parsePrimaryWithSuffix()
}

// primary_with_suffix = primary
//
//	| primary '.' IDENT
//	| primary '[' expr ']'
//	| primary '(' args ')'
func (p *parser) parsePrimaryWithSuffix() Expr {
	x := p.parsePrimary()
	for {
		switch p.tok {
		case DOT:
			dot := p.nextToken()
			x = &DotExpr{X: x, Dot: dot, Name: p.parseMemberName()}
		case LBRACK:
			lbrack := p.nextToken()
			y := p.parseExpr()
			rbrack := p.consume(RBRACK)
			x = &IndexExpr{X: x, Lbrack: lbrack, Y: y, Rbrack: rbrack}
		case LPAREN:
			x = p.parseCallSuffix(&CallExpr{Fn: x})
		default:
			return x
		}
	}
}

// parseCallSuffix parses the argument list of call.
func (p *parser) parseCallSuffix(call *CallExpr) *CallExpr {
	call.Lparen = p.consume(LPAREN)
	for p.tok != RPAREN {
		call.Args = append(call.Args, p.parseExpr())
		if p.tok != COMMA {
			break
		}
		p.nextToken()
	}
	call.Rparen = p.consume(RPAREN)
	return call
}

// primary = IDENT | literal | 'self' | super_call | '(' expr ')'
//
//	| '[' ... ']' | '{' ... '}' | lambda | 'preload' '(' STRING ')'
func (p *parser) parsePrimary() Expr {
	switch p.tok {
	case IDENT:
		return p.parseIdentRef()

	case INT, FLOAT, STRING, STRING_NAME, NODE_PATH, TRUE, FALSE, NULL:
		return p.parseLiteral()

	case SELF:
		return &SelfExpr{SelfPos: p.nextToken()}

	case SUPER:
		pos := p.nextToken()
		call := &CallExpr{Super: pos}
		if p.tok == DOT {
			p.nextToken()
			call.Fn = p.parseMemberName()
		} else if p.tok != LPAREN {
			p.in.error(p.tokval.pos, "Expected \"(\" or \".\" after \"super\".")
		}
		return p.parseCallSuffix(call)

	case LPAREN:
		p.nextToken()
		x := p.parseExpr()
		p.consume(RPAREN)
		return x

	case LBRACK:
		list := &ListExpr{Lbrack: p.nextToken()}
		for p.tok != RBRACK {
			list.List = append(list.List, p.parseExpr())
			if p.tok != COMMA {
				break
			}
			p.nextToken()
		}
		list.Rbrack = p.consume(RBRACK)
		return list

	case LBRACE:
		return p.parseDict()

	case FUNC:
		fn := &FuncDecl{Func: p.nextToken(), Class: p.class, Outer: p.fn}
		if p.tok == IDENT {
			fn.Name = p.parseIdent()
		}
		lambda := &LambdaExpr{Func: fn}
		fn.Lambda = lambda
		p.parseFunction(fn)
		return lambda

	case PRELOAD:
		x := &PreloadExpr{Preload: p.nextToken()}
		p.consume(LPAREN)
		if p.tok != STRING {
			p.in.error(p.tokval.pos, "Preloaded path must be a constant string.")
		}
		x.Path = p.parseLiteral()
		x.Rparen = p.consume(RPAREN)
		return x
	}
	p.in.errorf(p.tokval.pos, "got %#v, want primary expression", p.tok)
	panic("unreachable")
}

// parseDict parses a dictionary literal in either style:
//
//	{key: value, ...}
//	{name = value, ...}
//
// A dictionary may not mix the two.
func (p *parser) parseDict() *DictExpr {
	d := &DictExpr{Lbrace: p.nextToken()}
	for p.tok != RBRACE {
		if len(d.Entries) == 0 && p.tok == IDENT && p.peek() == EQ {
			d.Style = LuaTable
		}
		e := new(DictEntry)
		if d.Style == LuaTable {
			if p.tok != IDENT {
				p.in.errorf(p.tokval.pos, "Expected identifier as dictionary key.")
			}
			id := p.parseIdent()
			e.Key = &Literal{Token: STRING_NAME, TokenPos: id.NamePos, Raw: id.Name, Value: variant.StringName(id.Name)}
			if p.tok != EQ {
				p.in.error(p.tokval.pos, "Expected \"=\" after dictionary key.")
			}
		} else {
			e.Key = p.parseExpr()
			if p.tok != COLON {
				p.in.error(p.tokval.pos, "Expected \":\" after dictionary key.")
			}
		}
		e.Colon = p.nextToken()
		e.Value = p.parseExpr()
		d.Entries = append(d.Entries, e)
		if p.tok != COMMA {
			break
		}
		p.nextToken()
	}
	d.Rbrace = p.consume(RBRACE)
	return d
}

func (p *parser) parseLiteral() *Literal {
	lit := &Literal{Token: p.tok, TokenPos: p.tokval.pos, Raw: p.tokval.raw}
	switch p.tok {
	case INT:
		lit.Value = variant.Int(p.tokval.int)
	case FLOAT:
		lit.Value = variant.Float(p.tokval.float)
	case STRING:
		lit.Value = variant.String(p.tokval.string)
	case STRING_NAME:
		lit.Value = variant.StringName(p.tokval.string)
	case NODE_PATH:
		lit.Value = variant.NodePath(p.tokval.string)
	case TRUE:
		lit.Value = variant.Bool(true)
	case FALSE:
		lit.Value = variant.Bool(false)
	case NULL:
		lit.Value = variant.Null
	default:
		p.in.errorf(p.tokval.pos, "got %#v, want literal", p.tok)
	}
	p.nextToken()
	return lit
}

func (p *parser) parseIdent() *Ident {
	if p.tok != IDENT {
		p.in.errorf(p.tokval.pos, "got %#v, want identifier", p.tok)
	}
	id := &Ident{NamePos: p.tokval.pos, Name: p.tokval.raw}
	p.nextToken()
	return id
}

// parseMemberName parses the name following a dot, which may be a keyword.
func (p *parser) parseMemberName() *Ident {
	if p.tok != IDENT && p.tok < AND {
		p.in.errorf(p.tokval.pos, "got %#v, want identifier", p.tok)
	}
	id := &Ident{NamePos: p.tokval.pos, Name: p.tokval.raw}
	p.nextToken()
	return id
}

// parseIdentRef parses an identifier in expression position, tagging
// it if it refers to a local visible from the current block.
func (p *parser) parseIdentRef() *Ident {
	id := p.parseIdent()
	if p.block != nil {
		if l := p.block.Lookup(id.Name); l != nil {
			id.Source, id.Decl, id.DeclFunc = l.Source, l.Decl, l.Func
		}
	}
	return id
}

// Debugging helper.
func (p *parser) String() string {
	return fmt.Sprintf("%s %q at %s", p.tok, p.tokval.raw, p.tokval.pos)
}

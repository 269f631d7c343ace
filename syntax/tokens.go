// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// A Token represents a lexical token.
type Token int8

const (
	ILLEGAL Token = iota
	EOF

	NEWLINE
	INDENT
	OUTDENT

	// Tokens with values
	IDENT       // x
	INT         // 123
	FLOAT       // 1.23e45
	STRING      // "foo" or 'foo' or '''foo''' or """foo"""
	STRING_NAME // &"foo"
	NODE_PATH   // ^"foo"
	ANNOTATION  // @onready

	// Punctuation
	PLUS          // +
	MINUS         // -
	STAR          // *
	STARSTAR      // **
	SLASH         // /
	PERCENT       // %
	AMP           // &
	PIPE          // |
	CIRCUMFLEX    // ^
	TILDE         // ~
	LTLT          // <<
	GTGT          // >>
	BANG          // !
	AMPAMP        // &&
	PIPEPIPE      // ||
	DOT           // .
	DOTDOT        // ..
	COMMA         // ,
	EQ            // =
	SEMI          // ;
	COLON         // :
	COLONEQ       // :=
	ARROW         // ->
	LPAREN        // (
	RPAREN        // )
	LBRACK        // [
	RBRACK        // ]
	LBRACE        // {
	RBRACE        // }
	LT            // <
	GT            // >
	GE            // >=
	LE            // <=
	EQL           // ==
	NEQ           // !=
	PLUS_EQ       // +=
	MINUS_EQ      // -=
	STAR_EQ       // *=
	STARSTAR_EQ   // **=
	SLASH_EQ      // /=
	PERCENT_EQ    // %=
	AMP_EQ        // &=
	PIPE_EQ       // |=
	CIRCUMFLEX_EQ // ^=
	LTLT_EQ       // <<=
	GTGT_EQ       // >>=

	NOT_IN // "not in", synthesized by the parser

	// Keywords
	AND
	AS
	ASSERT
	AWAIT
	BREAK
	BREAKPOINT
	CLASS
	CLASS_NAME
	CONST
	CONTINUE
	ELIF
	ELSE
	ENUM
	EXTENDS
	FALSE
	FOR
	FUNC
	IF
	IN
	IS
	MATCH
	NOT
	NULL
	OR
	PASS
	PRELOAD
	RETURN
	SELF
	SIGNAL
	STATIC
	SUPER
	TRUE
	VAR
	WHILE

	maxToken
)

func (tok Token) String() string { return tokenNames[tok] }

// GoString is like String but quotes punctuation tokens.
// Use Sprintf("%#v", tok) when constructing error messages.
func (tok Token) GoString() string {
	if tok >= PLUS && tok <= GTGT_EQ {
		return "'" + tokenNames[tok] + "'"
	}
	return tokenNames[tok]
}

var tokenNames = [...]string{
	ILLEGAL:       "illegal token",
	EOF:           "end of file",
	NEWLINE:       "newline",
	INDENT:        "indent",
	OUTDENT:       "outdent",
	IDENT:         "identifier",
	INT:           "int literal",
	FLOAT:         "float literal",
	STRING:        "string literal",
	STRING_NAME:   "string name literal",
	NODE_PATH:     "node path literal",
	ANNOTATION:    "annotation",
	PLUS:          "+",
	MINUS:         "-",
	STAR:          "*",
	STARSTAR:      "**",
	SLASH:         "/",
	PERCENT:       "%",
	AMP:           "&",
	PIPE:          "|",
	CIRCUMFLEX:    "^",
	TILDE:         "~",
	LTLT:          "<<",
	GTGT:          ">>",
	BANG:          "!",
	AMPAMP:        "&&",
	PIPEPIPE:      "||",
	DOT:           ".",
	DOTDOT:        "..",
	COMMA:         ",",
	EQ:            "=",
	SEMI:          ";",
	COLON:         ":",
	COLONEQ:       ":=",
	ARROW:         "->",
	LPAREN:        "(",
	RPAREN:        ")",
	LBRACK:        "[",
	RBRACK:        "]",
	LBRACE:        "{",
	RBRACE:        "}",
	LT:            "<",
	GT:            ">",
	GE:            ">=",
	LE:            "<=",
	EQL:           "==",
	NEQ:           "!=",
	PLUS_EQ:       "+=",
	MINUS_EQ:      "-=",
	STAR_EQ:       "*=",
	STARSTAR_EQ:   "**=",
	SLASH_EQ:      "/=",
	PERCENT_EQ:    "%=",
	AMP_EQ:        "&=",
	PIPE_EQ:       "|=",
	CIRCUMFLEX_EQ: "^=",
	LTLT_EQ:       "<<=",
	GTGT_EQ:       ">>=",
	NOT_IN:        "not in",
	AND:           "and",
	AS:            "as",
	ASSERT:        "assert",
	AWAIT:         "await",
	BREAK:         "break",
	BREAKPOINT:    "breakpoint",
	CLASS:         "class",
	CLASS_NAME:    "class_name",
	CONST:         "const",
	CONTINUE:      "continue",
	ELIF:          "elif",
	ELSE:          "else",
	ENUM:          "enum",
	EXTENDS:       "extends",
	FALSE:         "false",
	FOR:           "for",
	FUNC:          "func",
	IF:            "if",
	IN:            "in",
	IS:            "is",
	MATCH:         "match",
	NOT:           "not",
	NULL:          "null",
	OR:            "or",
	PASS:          "pass",
	PRELOAD:       "preload",
	RETURN:        "return",
	SELF:          "self",
	SIGNAL:        "signal",
	STATIC:        "static",
	SUPER:         "super",
	TRUE:          "true",
	VAR:           "var",
	WHILE:         "while",
}

var keywordToken = make(map[string]Token)

func init() {
	for tok := AND; tok < maxToken; tok++ {
		keywordToken[tokenNames[tok]] = tok
	}
}

// IsKeyword reports whether name is a reserved word.
func IsKeyword(name string) bool {
	_, ok := keywordToken[name]
	return ok
}

// compoundOp maps an augmented assignment token to its binary operator.
var compoundOp = map[Token]Token{
	PLUS_EQ:       PLUS,
	MINUS_EQ:      MINUS,
	STAR_EQ:       STAR,
	STARSTAR_EQ:   STARSTAR,
	SLASH_EQ:      SLASH,
	PERCENT_EQ:    PERCENT,
	AMP_EQ:        AMP,
	PIPE_EQ:       PIPE,
	CIRCUMFLEX_EQ: CIRCUMFLEX,
	LTLT_EQ:       LTLT,
	GTGT_EQ:       GTGT,
}

// CompoundOp returns the binary operator of an augmented assignment
// such as +=, or ILLEGAL for plain assignment.
func CompoundOp(tok Token) Token {
	if op, ok := compoundOp[tok]; ok {
		return op
	}
	return ILLEGAL
}

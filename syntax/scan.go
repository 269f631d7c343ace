// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// A lexical scanner for the indentation-sensitive script language.

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// An Error describes the nature and position of a scanner or parser error.
type Error struct {
	Pos Position
	Msg string
}

func (e Error) Error() string { return e.Pos.String() + ": " + e.Msg }

// A tokenValue holds the value of a token.
type tokenValue struct {
	raw    string   // raw text of token
	int    int64    // decoded int
	float  float64  // decoded float
	string string   // decoded string, string name, node path or annotation name
	pos    Position // start position of token
}

// A scanner represents a single input file being parsed.
type scanner struct {
	rest      []byte   // rest of input
	token     []byte   // token being scanned
	pos       Position // current input position
	depth     int      // nesting of [ ( {
	indentstk []int    // stack of indentation levels
	dents     int      // number of saved INDENT (>0) or OUTDENT (<0) tokens to return
	lineStart bool     // after NEWLINE; convert spaces to indentation tokens
}

// tabWidth is the number of columns a tab contributes to indentation.
const tabWidth = 4

func newScanner(filename string, src interface{}) (*scanner, error) {
	data, err := readSource(filename, src)
	if err != nil {
		return nil, err
	}
	return &scanner{
		pos:       MakePosition(&filename, 1, 1),
		indentstk: make([]int, 1, 10), // []int{0} + spare capacity
		lineStart: true,
		rest:      data,
	}, nil
}

func readSource(filename string, src interface{}) ([]byte, error) {
	switch src := src.(type) {
	case string:
		return []byte(src), nil
	case []byte:
		return src, nil
	case io.Reader:
		data, err := io.ReadAll(src)
		if err != nil {
			err = &os.PathError{Op: "read", Path: filename, Err: err}
			return nil, err
		}
		return data, nil
	case nil:
		return os.ReadFile(filename)
	default:
		return nil, fmt.Errorf("invalid source: %T", src)
	}
}

// error is called to report an error at the specified position.
// It panics with an Error that is recovered by the parser.
func (sc *scanner) error(pos Position, s string) {
	panic(Error{pos, s})
}

func (sc *scanner) errorf(pos Position, format string, args ...interface{}) {
	sc.error(pos, fmt.Sprintf(format, args...))
}

func (sc *scanner) recover(err *error) {
	// The scanner and parser panic both for routine errors like
	// syntax errors and for programmer bugs like array index
	// errors.  Turn both into error returns.  Catching bug panics
	// is especially important when processing many files.
	switch e := recover().(type) {
	case nil:
		// no panic
	case Error:
		*err = e
	default:
		*err = Error{sc.pos, fmt.Sprintf("internal error: %v", e)}
	}
}

// eof reports whether the input has reached end of file.
func (sc *scanner) eof() bool {
	return len(sc.rest) == 0
}

// peekRune returns the next rune in the input without consuming it.
// Newlines in Unix, DOS, or Mac format are treated as one rune, '\n'.
func (sc *scanner) peekRune() rune {
	if len(sc.rest) == 0 {
		return 0
	}
	// fast path: ASCII
	if b := sc.rest[0]; b < utf8.RuneSelf {
		if b == '\r' {
			return '\n'
		}
		return rune(b)
	}
	r, _ := utf8.DecodeRune(sc.rest)
	return r
}

// peekByte returns the byte at offset i of the remaining input, or 0.
func (sc *scanner) peekByte(i int) byte {
	if i < len(sc.rest) {
		return sc.rest[i]
	}
	return 0
}

// readRune consumes and returns the next rune in the input.
// Newlines in Unix, DOS, or Mac format are treated as one rune, '\n'.
func (sc *scanner) readRune() rune {
	if len(sc.rest) == 0 {
		sc.error(sc.pos, "internal scanner error: readRune at EOF")
		return 0 // unreachable but eliminates bounds-check below
	}

	// fast path: ASCII
	if b := sc.rest[0]; b < utf8.RuneSelf {
		r := rune(b)
		sc.rest = sc.rest[1:]
		if r == '\r' {
			if len(sc.rest) > 0 && sc.rest[0] == '\n' {
				sc.rest = sc.rest[1:]
			}
			r = '\n'
		}
		if r == '\n' {
			sc.pos.Line++
			sc.pos.Col = 1
		} else {
			sc.pos.Col++
		}
		return r
	}

	r, size := utf8.DecodeRune(sc.rest)
	sc.rest = sc.rest[size:]
	sc.pos.Col++
	return r
}

// startToken marks the beginning of the next input token.
// It must be followed by a call to endToken once the token has
// been consumed using readRune.
func (sc *scanner) startToken(val *tokenValue) {
	sc.token = sc.rest
	val.raw = ""
	val.pos = sc.pos
}

// endToken marks the end of an input token.
// It records the actual token string in val.raw if the caller
// has not done that already.
func (sc *scanner) endToken(val *tokenValue) {
	if val.raw == "" {
		val.raw = string(sc.token[:len(sc.token)-len(sc.rest)])
	}
}

// nextToken is called by the parser to obtain the next input token.
// It returns the token value and sets val to the data associated with
// the token.
//
// For all our input tokens, the associated data is val.pos (the
// position where the token begins), val.raw (the input string
// corresponding to the token).  For string, string name and node path
// tokens, val.string holds the decoded text; for int and float
// literals, val.int and val.float hold the value; for annotations,
// val.string holds the name without the '@'.
func (sc *scanner) nextToken(val *tokenValue) Token {
start:
	var c rune

	// Deal with leading spaces and indentation.
	blank := false
	savedLineStart := sc.lineStart
	if sc.lineStart {
		sc.lineStart = false
		col := 0
		sawSpace, sawTab := false, false
		for {
			c = sc.peekRune()
			if c == ' ' {
				col++
				sawSpace = true
			} else if c == '\t' {
				col += tabWidth
				sawTab = true
			} else {
				break
			}
			sc.readRune()
		}

		// The third clause matches EOF.
		if c == '#' || c == '\n' || c == 0 {
			blank = true
		}

		// Compute indentation level for non-blank lines not
		// inside an expression.  This is not the common case.
		if !blank && sc.depth == 0 {
			if sawSpace && sawTab {
				sc.error(sc.pos, "mixed use of tabs and spaces for indentation")
			}
			cur := sc.indentstk[len(sc.indentstk)-1]
			if col > cur {
				// indent
				sc.dents++
				sc.indentstk = append(sc.indentstk, col)
			} else if col < cur {
				// outdent(s)
				for len(sc.indentstk) > 0 && col < sc.indentstk[len(sc.indentstk)-1] {
					sc.dents--
					sc.indentstk = sc.indentstk[:len(sc.indentstk)-1] // pop
				}
				if col != sc.indentstk[len(sc.indentstk)-1] {
					sc.error(sc.pos, "unindent does not match any outer indentation level")
				}
			}
		}
	}

	// Return saved indentation tokens.
	if sc.dents != 0 {
		sc.startToken(val)
		sc.endToken(val)
		if sc.dents < 0 {
			sc.dents++
			return OUTDENT
		}
		sc.dents--
		return INDENT
	}

	// start of line proper
	c = sc.peekRune()

	// Skip spaces.
	for c == ' ' || c == '\t' {
		sc.readRune()
		c = sc.peekRune()
	}

	// comment
	if c == '#' {
		for c != 0 && c != '\n' {
			sc.readRune()
			c = sc.peekRune()
		}
	}

	// newline
	if c == '\n' {
		sc.lineStart = true

		// Ignore newlines within expressions (common case).
		if blank || sc.depth > 0 {
			sc.readRune()
			goto start
		}

		// At top-level (not in an expression).
		sc.startToken(val)
		sc.readRune()
		val.raw = "\n"
		return NEWLINE
	}

	// end of file
	if c == 0 {
		// Emit OUTDENTs for unfinished indentation,
		// preceded by a NEWLINE if we haven't just emitted one.
		if len(sc.indentstk) > 1 {
			if savedLineStart {
				sc.dents = 1 - len(sc.indentstk)
				sc.indentstk = sc.indentstk[:1]
				goto start
			}
			sc.lineStart = true
			sc.startToken(val)
			val.raw = "\n"
			return NEWLINE
		}

		sc.startToken(val)
		sc.endToken(val)
		return EOF
	}

	// line continuation
	if c == '\\' {
		sc.readRune()
		if sc.peekRune() != '\n' {
			sc.errorf(sc.pos, "stray backslash in program")
		}
		sc.readRune()
		goto start
	}

	// start of the next token
	sc.startToken(val)

	// comma (common case)
	if c == ',' {
		sc.readRune()
		sc.endToken(val)
		return COMMA
	}

	// string literal
	if c == '"' || c == '\'' {
		return sc.scanString(val, c)
	}

	// identifier or keyword
	if isIdentStart(c) {
		for isIdent(c) {
			sc.readRune()
			c = sc.peekRune()
		}
		sc.endToken(val)
		if k, ok := keywordToken[val.raw]; ok {
			return k
		}
		return IDENT
	}

	// brackets
	switch c {
	case '[', '(', '{':
		sc.depth++
		sc.readRune()
		sc.endToken(val)
		switch c {
		case '[':
			return LBRACK
		case '(':
			return LPAREN
		case '{':
			return LBRACE
		}
		panic("unreachable")

	case ']', ')', '}':
		if sc.depth == 0 {
			sc.errorf(sc.pos, "unexpected %q", c)
		} else {
			sc.depth--
		}
		sc.readRune()
		sc.endToken(val)
		switch c {
		case ']':
			return RBRACK
		case ')':
			return RPAREN
		case '}':
			return RBRACE
		}
		panic("unreachable")
	}

	// int or float literal, or period
	if isdigit(c) || c == '.' {
		return sc.scanNumber(val, c)
	}

	// string name and node path literals
	if (c == '&' || c == '^') && (sc.peekByte(1) == '"' || sc.peekByte(1) == '\'') {
		sc.readRune()
		q := sc.peekRune()
		tok := sc.scanString(val, q)
		val.raw = string(c) + val.raw
		if tok == STRING {
			if c == '&' {
				tok = STRING_NAME
			} else {
				tok = NODE_PATH
			}
		}
		return tok
	}

	// annotation
	if c == '@' {
		sc.readRune()
		c = sc.peekRune()
		if !isIdentStart(c) {
			sc.error(sc.pos, "expected annotation name after '@'")
		}
		for isIdent(c) {
			sc.readRune()
			c = sc.peekRune()
		}
		sc.endToken(val)
		val.string = val.raw[1:]
		return ANNOTATION
	}

	// other punctuation
	defer sc.endToken(val)
	switch c {
	case ':', '=', '<', '>', '!', '+', '-', '%', '/', '&', '|', '^', '~', '*', ';': // possibly followed by '='
		start := sc.pos
		sc.readRune()
		switch c {
		case ':':
			if sc.peekRune() == '=' {
				sc.readRune()
				return COLONEQ
			}
			return COLON
		case ';':
			return SEMI
		case '~':
			return TILDE
		case '=':
			if sc.peekRune() == '=' {
				sc.readRune()
				return EQL
			}
			return EQ
		case '!':
			if sc.peekRune() == '=' {
				sc.readRune()
				return NEQ
			}
			return BANG
		case '<':
			if sc.peekRune() == '<' {
				sc.readRune()
				if sc.peekRune() == '=' {
					sc.readRune()
					return LTLT_EQ
				}
				return LTLT
			}
			if sc.peekRune() == '=' {
				sc.readRune()
				return LE
			}
			return LT
		case '>':
			if sc.peekRune() == '>' {
				sc.readRune()
				if sc.peekRune() == '=' {
					sc.readRune()
					return GTGT_EQ
				}
				return GTGT
			}
			if sc.peekRune() == '=' {
				sc.readRune()
				return GE
			}
			return GT
		case '+':
			if sc.peekRune() == '=' {
				sc.readRune()
				return PLUS_EQ
			}
			return PLUS
		case '-':
			if sc.peekRune() == '=' {
				sc.readRune()
				return MINUS_EQ
			}
			if sc.peekRune() == '>' {
				sc.readRune()
				return ARROW
			}
			return MINUS
		case '/':
			if sc.peekRune() == '=' {
				sc.readRune()
				return SLASH_EQ
			}
			return SLASH
		case '%':
			if sc.peekRune() == '=' {
				sc.readRune()
				return PERCENT_EQ
			}
			return PERCENT
		case '&':
			if sc.peekRune() == '&' {
				sc.readRune()
				return AMPAMP
			}
			if sc.peekRune() == '=' {
				sc.readRune()
				return AMP_EQ
			}
			return AMP
		case '|':
			if sc.peekRune() == '|' {
				sc.readRune()
				return PIPEPIPE
			}
			if sc.peekRune() == '=' {
				sc.readRune()
				return PIPE_EQ
			}
			return PIPE
		case '^':
			if sc.peekRune() == '=' {
				sc.readRune()
				return CIRCUMFLEX_EQ
			}
			return CIRCUMFLEX
		case '*':
			if sc.peekRune() == '*' {
				sc.readRune()
				if sc.peekRune() == '=' {
					sc.readRune()
					return STARSTAR_EQ
				}
				return STARSTAR
			}
			if sc.peekRune() == '=' {
				sc.readRune()
				return STAR_EQ
			}
			return STAR
		}
		panic(fmt.Sprintf("unreachable punctuation %q at %s", c, start))
	}

	sc.errorf(sc.pos, "unexpected input character %#q", c)
	panic("unreachable")
}

func (sc *scanner) scanString(val *tokenValue, quote rune) Token {
	start := sc.pos
	triple := len(sc.rest) >= 3 && sc.rest[0] == byte(quote) && sc.rest[1] == byte(quote) && sc.rest[2] == byte(quote)
	raw := sc.rest
	sc.readRune()
	if !triple {
		// single-quoted string literal
		for {
			if sc.eof() {
				sc.error(val.pos, "unterminated string literal")
			}
			c := sc.readRune()
			if c == quote {
				break
			}
			if c == '\n' {
				sc.error(val.pos, "unterminated string literal")
			}
			if c == '\\' {
				if sc.eof() {
					sc.error(val.pos, "unterminated string literal")
				}
				sc.readRune()
			}
		}
	} else {
		// triple-quoted string literal
		sc.readRune()
		sc.readRune()
		quoteCount := 0
		for {
			if sc.eof() {
				sc.error(val.pos, "unterminated string literal")
			}
			c := sc.readRune()
			if c == quote {
				quoteCount++
				if quoteCount == 3 {
					break
				}
			} else {
				quoteCount = 0
			}
			if c == '\\' {
				if sc.eof() {
					sc.error(val.pos, "unterminated string literal")
				}
				sc.readRune()
			}
		}
	}
	val.raw = string(raw[:len(raw)-len(sc.rest)])
	s, _, err := unquote(val.raw)
	if err != nil {
		sc.error(start, err.Error())
	}
	val.string = s
	return STRING
}

func (sc *scanner) scanNumber(val *tokenValue, c rune) Token {
	// https://docs.godotengine.org/en/stable/tutorials/scripting/gdscript/gdscript_basics.html#literals
	//
	// Go and GDScript number syntax differ in the treatment of a
	// leading zero: "010" is decimal 10, not octal.
	start := sc.pos
	fraction, exponent := false, false

	if c == '.' {
		// dot, dot-dot or start of fraction
		sc.readRune()
		c = sc.peekRune()
		if c == '.' {
			sc.readRune()
			sc.endToken(val)
			return DOTDOT
		}
		if !isdigit(c) {
			sc.endToken(val)
			return DOT
		}
		fraction = true
	} else if c == '0' {
		// hex, binary or decimal with leading zero
		sc.readRune()
		c = sc.peekRune()
		switch c {
		case 'x', 'X':
			sc.readRune()
			c = sc.peekRune()
			if !isxdigit(c) {
				sc.error(start, "invalid hex literal")
			}
			for isxdigit(c) || c == '_' {
				sc.readRune()
				c = sc.peekRune()
			}
			return sc.intLiteral(val, start, 16, 2)
		case 'b', 'B':
			sc.readRune()
			c = sc.peekRune()
			if c != '0' && c != '1' {
				sc.error(start, "invalid binary literal")
			}
			for c == '0' || c == '1' || c == '_' {
				sc.readRune()
				c = sc.peekRune()
			}
			return sc.intLiteral(val, start, 2, 2)
		}
	}

	// decimal digits
	for isdigit(c) || c == '_' {
		sc.readRune()
		c = sc.peekRune()
	}
	if !fraction && c == '.' && sc.peekByte(1) != '.' && !isIdentStart(rune(sc.peekByte(1))) {
		sc.readRune()
		c = sc.peekRune()
		fraction = true
	}
	if fraction {
		for isdigit(c) || c == '_' {
			sc.readRune()
			c = sc.peekRune()
		}
	}
	if c == 'e' || c == 'E' {
		exponent = true
		sc.readRune()
		c = sc.peekRune()
		if c == '+' || c == '-' {
			sc.readRune()
			c = sc.peekRune()
		}
		if !isdigit(c) {
			sc.error(start, "invalid float literal")
		}
		for isdigit(c) {
			sc.readRune()
			c = sc.peekRune()
		}
	}

	if fraction || exponent {
		sc.endToken(val)
		s := strings.ReplaceAll(val.raw, "_", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			sc.error(start, "invalid float literal")
		}
		val.float = f
		return FLOAT
	}
	return sc.intLiteral(val, start, 10, 0)
}

func (sc *scanner) intLiteral(val *tokenValue, start Position, base, prefix int) Token {
	sc.endToken(val)
	s := strings.ReplaceAll(val.raw[prefix:], "_", "")
	i, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		if e, ok := err.(*strconv.NumError); ok && e.Err == strconv.ErrRange {
			sc.error(start, "integer literal is too large")
		}
		sc.error(start, "invalid int literal")
	}
	val.int = i
	return INT
}

// isIdent reports whether c is an identifier rune.
func isIdent(c rune) bool {
	return isdigit(c) || isIdentStart(c)
}

func isdigit(c rune) bool  { return '0' <= c && c <= '9' }
func isxdigit(c rune) bool { return isdigit(c) || 'A' <= c && c <= 'F' || 'a' <= c && c <= 'f' }

// isIdentStart reports whether c is a valid first rune of an identifier.
func isIdentStart(c rune) bool {
	return 'a' <= c && c <= 'z' ||
		'A' <= c && c <= 'Z' ||
		c == '_' ||
		unicode.IsLetter(c)
}

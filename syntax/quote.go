// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// String literal quoting and unquoting.

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// unesc maps single-letter chars following \ to their actual values.
var unesc = [256]byte{
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'v':  '\v',
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
}

// esc maps escape-worthy bytes to the char that should follow \.
var esc = [256]byte{
	'\a': 'a',
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
	'\v': 'v',
	'\\': '\\',
	'"':  '"',
}

// unquote unquotes the quoted string, returning the actual
// string value and whether the original was triple-quoted.
func unquote(quoted string) (s string, triple bool, err error) {
	// Check for raw prefix: means don't interpret the inner \.
	raw := false
	if strings.HasPrefix(quoted, "r") {
		raw = true
		quoted = quoted[1:]
	}

	if len(quoted) < 2 {
		err = fmt.Errorf("string literal too short")
		return
	}

	if quoted[0] != '"' && quoted[0] != '\'' || quoted[0] != quoted[len(quoted)-1] {
		err = fmt.Errorf("string literal has invalid quotes")
		return
	}

	// Check for triple quoted string.
	quote := quoted[0]
	if len(quoted) >= 6 && quoted[1] == quote && quoted[2] == quote && quoted[:3] == quoted[len(quoted)-3:] {
		triple = true
		quoted = quoted[3 : len(quoted)-3]
	} else {
		quoted = quoted[1 : len(quoted)-1]
	}

	// Now quoted is the quoted data, but no quotes.
	// If we're in raw mode or there are no escapes or
	// carriage returns, we're done.
	var unquoteChars string
	if raw {
		unquoteChars = "\r"
	} else {
		unquoteChars = "\\\r"
	}
	if !strings.ContainsAny(quoted, unquoteChars) {
		s = quoted
		return
	}

	// Otherwise process quoted string.
	// Each iteration processes one escape sequence along with the
	// plain text leading up to it.
	buf := new(strings.Builder)
	for {
		// Remove prefix before escape sequence.
		i := strings.IndexAny(quoted, unquoteChars)
		if i < 0 {
			i = len(quoted)
		}
		buf.WriteString(quoted[:i])
		quoted = quoted[i:]

		if len(quoted) == 0 {
			break
		}

		// Process carriage return.
		if quoted[0] == '\r' {
			buf.WriteByte('\n')
			if len(quoted) > 1 && quoted[1] == '\n' {
				quoted = quoted[2:]
			} else {
				quoted = quoted[1:]
			}
			continue
		}

		// Process escape sequence.
		if len(quoted) == 1 {
			err = fmt.Errorf(`truncated escape sequence \`)
			return
		}

		switch quoted[1] {
		default:
			err = fmt.Errorf(`invalid escape sequence \%c`, quoted[1])
			return

		case '\n':
			// Ignore the escape and the line break.
			quoted = quoted[2:]

		case 'a', 'b', 'f', 'n', 'r', 't', 'v', '\\', '\'', '"':
			buf.WriteByte(unesc[quoted[1]])
			quoted = quoted[2:]

		case 'u', 'U':
			// \uXXXX or \UXXXXXX Unicode code point.
			n := 4
			if quoted[1] == 'U' {
				n = 6
			}
			if len(quoted) < 2+n {
				err = fmt.Errorf(`truncated escape sequence %s`, quoted)
				return
			}
			x, err1 := strconv.ParseUint(quoted[2:2+n], 16, 32)
			if err1 != nil || x > utf8.MaxRune {
				err = fmt.Errorf(`invalid escape sequence %s`, quoted[:2+n])
				return
			}
			buf.WriteRune(rune(x))
			quoted = quoted[2+n:]
		}
	}

	s = buf.String()
	return
}

// Quote returns a double-quoted literal denoting s.
func Quote(s string) string {
	buf := new(strings.Builder)
	buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if e := esc[c]; e != 0 {
			buf.WriteByte('\\')
			buf.WriteByte(e)
			continue
		}
		if c < 0x20 || c == 0x7f {
			fmt.Fprintf(buf, `\u%04x`, c)
			continue
		}
		buf.WriteByte(c)
	}
	buf.WriteByte('"')
	return buf.String()
}

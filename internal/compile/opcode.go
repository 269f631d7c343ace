// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compile

import "fmt"

// An Opcode is the first byte of an instruction.
//
// Each instruction is an opcode followed by its operands, each a
// uvarint. The operand shape of each opcode is given by opcodeShapes:
//
//	a	an address, index<<3 | mode
//	o	a variant.Operator
//	t	a variant.Type
//	s	an index into Program.Names
//	f	an index into Program.Functions
//	n	a number
//	l	a jump target, as an absolute pc
//	*	a count n followed by n addresses; always last
type Opcode uint8

const (
	NOP                  Opcode = iota // -
	BREAKPOINT                         // -
	END                                // -
	JUMP_TO_DEF_ARGUMENT               // - ; jumps to DefaultEntries[argc-MinArgs]
	LINE                               // line

	ASSIGN         // dst src
	ASSIGN_CONVERT // dst src type
	ASSIGN_NATIVE  // dst src class
	ASSIGN_SCRIPT  // dst src script

	OPERATOR           // dst op x y ; y is null for unary operators
	OPERATOR_VALIDATED // dst op x y ; operand types known to be valid

	TYPE_TEST_BUILTIN // dst x type
	TYPE_TEST_NATIVE  // dst x class
	TYPE_TEST_SCRIPT  // dst x script
	MATCH_TYPE        // dst x type ; int and float, String and StringName match each other

	CAST_BUILTIN // dst x type
	CAST_NATIVE  // dst x class
	CAST_SCRIPT  // dst x script

	CONSTRUCT             // dst type args...
	CONSTRUCT_ARRAY       // dst elems...
	CONSTRUCT_TYPED_ARRAY // dst type class elems...
	CONSTRUCT_DICTIONARY  // dst key value key value...

	GET_NAMED   // dst base name
	SET_NAMED   // base name value
	GET_MEMBER  // dst name ; native property of self
	SET_MEMBER  // name value
	GET_INDEXED // dst base key
	SET_INDEXED // base key value
	GET_GLOBAL  // dst name ; native class, singleton or autoload

	JUMP           // target
	JUMP_IF        // cond target
	JUMP_IF_NOT    // cond target
	JUMP_IF_SHARED // value target ; value is an object, array or dictionary

	CALL                  // dst base name args...
	CALL_ASYNC            // dst base name args...
	CALL_METHOD_BIND      // dst base name args...
	CALL_PTRCALL          // dst base name args...
	CALL_BUILTIN_METHOD   // dst base name args...
	CALL_STATIC           // dst base name args...
	CALL_SELF             // dst name args...
	CALL_SELF_ASYNC       // dst name args...
	CALL_SUPER            // dst name args...
	CALL_SUPER_ASYNC      // dst name args...
	CALL_UTILITY          // dst name args...
	CALL_LANGUAGE_UTILITY // dst name args...

	CREATE_LAMBDA      // dst fn captures...
	CREATE_SELF_LAMBDA // dst fn captures...
	AWAIT              // dst x

	ITERATE_BEGIN // counter container iterator target ; jumps to target if empty
	ITERATE       // counter container iterator target ; jumps to target when done

	RETURN // x
	ASSERT // cond message

	OpcodeMax = ASSERT
)

var opcodeNames = [...]string{
	NOP:                   "nop",
	BREAKPOINT:            "breakpoint",
	END:                   "end",
	JUMP_TO_DEF_ARGUMENT:  "jump_to_def_argument",
	LINE:                  "line",
	ASSIGN:                "assign",
	ASSIGN_CONVERT:        "assign_convert",
	ASSIGN_NATIVE:         "assign_native",
	ASSIGN_SCRIPT:         "assign_script",
	OPERATOR:              "operator",
	OPERATOR_VALIDATED:    "operator_validated",
	TYPE_TEST_BUILTIN:     "type_test_builtin",
	TYPE_TEST_NATIVE:      "type_test_native",
	TYPE_TEST_SCRIPT:      "type_test_script",
	MATCH_TYPE:            "match_type",
	CAST_BUILTIN:          "cast_builtin",
	CAST_NATIVE:           "cast_native",
	CAST_SCRIPT:           "cast_script",
	CONSTRUCT:             "construct",
	CONSTRUCT_ARRAY:       "construct_array",
	CONSTRUCT_TYPED_ARRAY: "construct_typed_array",
	CONSTRUCT_DICTIONARY:  "construct_dictionary",
	GET_NAMED:             "get_named",
	SET_NAMED:             "set_named",
	GET_MEMBER:            "get_member",
	SET_MEMBER:            "set_member",
	GET_INDEXED:           "get_indexed",
	SET_INDEXED:           "set_indexed",
	GET_GLOBAL:            "get_global",
	JUMP:                  "jump",
	JUMP_IF:               "jump_if",
	JUMP_IF_NOT:           "jump_if_not",
	JUMP_IF_SHARED:        "jump_if_shared",
	CALL:                  "call",
	CALL_ASYNC:            "call_async",
	CALL_METHOD_BIND:      "call_method_bind",
	CALL_PTRCALL:          "call_ptrcall",
	CALL_BUILTIN_METHOD:   "call_builtin_method",
	CALL_STATIC:           "call_static",
	CALL_SELF:             "call_self",
	CALL_SELF_ASYNC:       "call_self_async",
	CALL_SUPER:            "call_super",
	CALL_SUPER_ASYNC:      "call_super_async",
	CALL_UTILITY:          "call_utility",
	CALL_LANGUAGE_UTILITY: "call_language_utility",
	CREATE_LAMBDA:         "create_lambda",
	CREATE_SELF_LAMBDA:    "create_self_lambda",
	AWAIT:                 "await",
	ITERATE_BEGIN:         "iterate_begin",
	ITERATE:               "iterate",
	RETURN:                "return",
	ASSERT:                "assert",
}

var opcodeShapes = [...]string{
	NOP:                   "",
	BREAKPOINT:            "",
	END:                   "",
	JUMP_TO_DEF_ARGUMENT:  "",
	LINE:                  "n",
	ASSIGN:                "aa",
	ASSIGN_CONVERT:        "aat",
	ASSIGN_NATIVE:         "aas",
	ASSIGN_SCRIPT:         "aaa",
	OPERATOR:              "aoaa",
	OPERATOR_VALIDATED:    "aoaa",
	TYPE_TEST_BUILTIN:     "aat",
	TYPE_TEST_NATIVE:      "aas",
	TYPE_TEST_SCRIPT:      "aaa",
	MATCH_TYPE:            "aat",
	CAST_BUILTIN:          "aat",
	CAST_NATIVE:           "aas",
	CAST_SCRIPT:           "aaa",
	CONSTRUCT:             "at*",
	CONSTRUCT_ARRAY:       "a*",
	CONSTRUCT_TYPED_ARRAY: "ats*",
	CONSTRUCT_DICTIONARY:  "a*",
	GET_NAMED:             "aas",
	SET_NAMED:             "asa",
	GET_MEMBER:            "as",
	SET_MEMBER:            "sa",
	GET_INDEXED:           "aaa",
	SET_INDEXED:           "aaa",
	GET_GLOBAL:            "as",
	JUMP:                  "l",
	JUMP_IF:               "al",
	JUMP_IF_NOT:           "al",
	JUMP_IF_SHARED:        "al",
	CALL:                  "aas*",
	CALL_ASYNC:            "aas*",
	CALL_METHOD_BIND:      "aas*",
	CALL_PTRCALL:          "aas*",
	CALL_BUILTIN_METHOD:   "aas*",
	CALL_STATIC:           "aas*",
	CALL_SELF:             "as*",
	CALL_SELF_ASYNC:       "as*",
	CALL_SUPER:            "as*",
	CALL_SUPER_ASYNC:      "as*",
	CALL_UTILITY:          "as*",
	CALL_LANGUAGE_UTILITY: "as*",
	CREATE_LAMBDA:         "af*",
	CREATE_SELF_LAMBDA:    "af*",
	AWAIT:                 "aa",
	ITERATE_BEGIN:         "aaal",
	ITERATE:               "aaal",
	RETURN:                "a",
	ASSERT:                "aa",
}

func (op Opcode) String() string {
	if op <= OpcodeMax {
		if name := opcodeNames[op]; name != "" {
			return name
		}
	}
	return fmt.Sprintf("illegal op (%d)", op)
}

// shape returns the operand shape of op.
func (op Opcode) shape() string {
	if op <= OpcodeMax {
		return opcodeShapes[op]
	}
	return ""
}

// isJump reports whether op has a jump target operand.
func (op Opcode) isJump() bool {
	switch op {
	case JUMP, JUMP_IF, JUMP_IF_NOT, JUMP_IF_SHARED, ITERATE_BEGIN, ITERATE:
		return true
	}
	return false
}

// isAsync reports whether op may suspend the calling function.
func (op Opcode) isAsync() bool {
	switch op {
	case CALL_ASYNC, CALL_SELF_ASYNC, CALL_SUPER_ASYNC, AWAIT:
		return true
	}
	return false
}

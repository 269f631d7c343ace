// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

import (
	"fmt"

	"go.gdlang.net/syntax"
)

// A Warning is a diagnostic that does not prevent compilation.
type Warning struct {
	Pos  syntax.Position
	Code WarningCode
	Msg  string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s (%s)", w.Pos, w.Msg, w.Code)
}

// A WarningCode identifies a kind of warning. Its name, in upper
// case, is the argument of the @warning_ignore annotation.
type WarningCode uint8

const (
	UnassignedVariable WarningCode = iota
	UnassignedVariableOpAssign
	UnusedVariable
	UnusedLocalConstant
	UnusedParameter
	UnusedSignal
	ShadowedVariable
	ShadowedVariableBaseClass
	ShadowedGlobalIdentifier
	UnreachableCode
	UnreachablePattern
	StandaloneExpression
	StandaloneTernary
	IncompatibleTernary
	UnsafePropertyAccess
	UnsafeMethodAccess
	UnsafeCast
	UnsafeCallArgument
	ReturnValueDiscarded
	StaticCalledOnInstance
	RedundantAwait
	AssertAlwaysTrue
	AssertAlwaysFalse
	IntegerDivision
	NarrowingConversion
	IntAsEnumWithoutCast
	IntAsEnumWithoutMatch
	EnumVariableWithoutDefault
	EmptyFile
	InferenceOnVariant
	NativeMethodOverride
	OnreadyWithExport

	numWarnings
)

var warningNames = [...]string{
	UnassignedVariable:         "UNASSIGNED_VARIABLE",
	UnassignedVariableOpAssign: "UNASSIGNED_VARIABLE_OP_ASSIGN",
	UnusedVariable:             "UNUSED_VARIABLE",
	UnusedLocalConstant:        "UNUSED_LOCAL_CONSTANT",
	UnusedParameter:            "UNUSED_PARAMETER",
	UnusedSignal:               "UNUSED_SIGNAL",
	ShadowedVariable:           "SHADOWED_VARIABLE",
	ShadowedVariableBaseClass:  "SHADOWED_VARIABLE_BASE_CLASS",
	ShadowedGlobalIdentifier:   "SHADOWED_GLOBAL_IDENTIFIER",
	UnreachableCode:            "UNREACHABLE_CODE",
	UnreachablePattern:         "UNREACHABLE_PATTERN",
	StandaloneExpression:       "STANDALONE_EXPRESSION",
	StandaloneTernary:          "STANDALONE_TERNARY",
	IncompatibleTernary:        "INCOMPATIBLE_TERNARY",
	UnsafePropertyAccess:       "UNSAFE_PROPERTY_ACCESS",
	UnsafeMethodAccess:         "UNSAFE_METHOD_ACCESS",
	UnsafeCast:                 "UNSAFE_CAST",
	UnsafeCallArgument:         "UNSAFE_CALL_ARGUMENT",
	ReturnValueDiscarded:       "RETURN_VALUE_DISCARDED",
	StaticCalledOnInstance:     "STATIC_CALLED_ON_INSTANCE",
	RedundantAwait:             "REDUNDANT_AWAIT",
	AssertAlwaysTrue:           "ASSERT_ALWAYS_TRUE",
	AssertAlwaysFalse:          "ASSERT_ALWAYS_FALSE",
	IntegerDivision:            "INTEGER_DIVISION",
	NarrowingConversion:        "NARROWING_CONVERSION",
	IntAsEnumWithoutCast:       "INT_AS_ENUM_WITHOUT_CAST",
	IntAsEnumWithoutMatch:      "INT_AS_ENUM_WITHOUT_MATCH",
	EnumVariableWithoutDefault: "ENUM_VARIABLE_WITHOUT_DEFAULT",
	EmptyFile:                  "EMPTY_FILE",
	InferenceOnVariant:         "INFERENCE_ON_VARIANT",
	NativeMethodOverride:       "NATIVE_METHOD_OVERRIDE",
	OnreadyWithExport:          "ONREADY_WITH_EXPORT",
}

func (c WarningCode) String() string {
	if c < numWarnings {
		return warningNames[c]
	}
	return fmt.Sprintf("WarningCode(%d)", c)
}

// WarningCodeByName returns the code whose name is name, such as
// "UNUSED_VARIABLE".
func WarningCodeByName(name string) (WarningCode, bool) {
	for c, n := range warningNames {
		if n == name {
			return WarningCode(c), true
		}
	}
	return 0, false
}

// DisabledWarnings holds the codes of warnings that are not reported.
// By default, warnings about operations on untyped values are
// disabled.
var DisabledWarnings = map[WarningCode]bool{
	UnsafePropertyAccess: true,
	UnsafeMethodAccess:   true,
	UnsafeCast:           true,
	UnsafeCallArgument:   true,
}

// warn reports a warning at the start of n, unless its code is
// disabled or suppressed by a @warning_ignore annotation covering n.
// Options may turn the warning into an error.
func (a *Analyzer) warn(n syntax.Node, code WarningCode, format string, args ...interface{}) {
	switch code {
	case UnsafePropertyAccess, UnsafeMethodAccess, UnsafeCast, UnsafeCallArgument:
		a.markUnsafe(n)
	}
	if DisabledWarnings[code] {
		return
	}
	pos := syntax.Start(n)
	if a.ignored(pos, code) {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if WarningsAsErrors {
		a.errors = append(a.errors, Error{pos, msg})
		return
	}
	a.warnings = append(a.warnings, Warning{Pos: pos, Code: code, Msg: msg})
}

func (a *Analyzer) ignored(pos syntax.Position, code WarningCode) bool {
	name := code.String()
	for _, ig := range a.file.Ignores {
		if pos.Before(ig.Start) || ig.End.Before(pos) {
			continue
		}
		for _, c := range ig.Codes {
			if c == name {
				return true
			}
		}
	}
	return false
}

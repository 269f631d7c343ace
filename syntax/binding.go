package syntax

// This file defines resolver data types referenced by the syntax tree.
// We cannot guarantee API stability for these types
// as they are closely tied to the implementation.

// A Source records what kind of declaration an identifier denotes.
// The parser sets it for function-local names; the resolver sets it
// for everything else.
type Source uint8

const (
	Undefined         Source = iota // name is not (yet) resolved
	Parameter                       // function parameter
	LocalConstant                   // const declared in a function body
	LocalVariable                   // var declared in a function body
	LocalIterator                   // loop variable of a for statement
	LocalBind                       // variable bound by a match pattern
	MemberVariable                  // var declared in a class
	MemberConstant                  // const, enum or enum value declared in a class
	MemberFunction                  // func declared in a class
	MemberSignal                    // signal declared in a class
	MemberClass                     // inner class
	InheritedVariable               // property of the native base class
)

var sourceNames = [...]string{
	Undefined:         "undefined",
	Parameter:         "parameter",
	LocalConstant:     "local constant",
	LocalVariable:     "local variable",
	LocalIterator:     "for loop iterator",
	LocalBind:         "pattern bind",
	MemberVariable:    "member variable",
	MemberConstant:    "member constant",
	MemberFunction:    "member function",
	MemberSignal:      "member signal",
	MemberClass:       "member class",
	InheritedVariable: "inherited variable",
}

func (s Source) String() string { return sourceNames[s] }

// IsLocal reports whether s denotes a name declared inside a function.
func (s Source) IsLocal() bool { return s >= Parameter && s <= LocalBind }

// A Local is a name declared in a function body: a parameter, a
// local variable or constant, a loop iterator or a pattern bind.
type Local struct {
	Name   string
	Source Source
	Decl   Node      // *Param, *VarDecl, *ConstDecl, *ForStmt or *BindPattern
	Func   *FuncDecl // function whose body declares the name
	Ident  *Ident    // the declaring identifier
}

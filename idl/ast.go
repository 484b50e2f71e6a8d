// Package idl holds the syntax tree for the Blink Web IDL dialect used by
// extension API definitions, and a parser that produces it.
//
// A Document is the ordered list of top-level declarations found in one
// source file. Declarations are a closed set: Interface, Dictionary, Enum and
// Callback. Code switching over Declaration should handle all four.
package idl

// Reserved interface names. Members of these two interfaces become the
// functions and events of a namespace; other interfaces carry no meaning.
const (
	FunctionsInterface = "Functions"
	EventsInterface    = "Events"
)

// DeclKind identifies the variant of a Declaration.
type DeclKind int

const (
	KindInterface DeclKind = iota
	KindDictionary
	KindEnum
	KindCallback
)

func (k DeclKind) String() string {
	switch k {
	case KindInterface:
		return "interface"
	case KindDictionary:
		return "dictionary"
	case KindEnum:
		return "enum"
	case KindCallback:
		return "callback"
	default:
		return "unknown"
	}
}

// Declaration is a top-level IDL declaration.
type Declaration interface {
	Kind() DeclKind
	DeclName() string
	isDeclaration()
}

// Document is a parsed IDL file, declarations in source order.
type Document []Declaration

// Interface is an `interface Name { ... };` block.
type Interface struct {
	Name    string
	Members []*Member
}

// Dictionary is a `dictionary Name { ... };` block. Its fields reuse Argument;
// Optional is never set on them.
type Dictionary struct {
	Name    string
	Members []*Argument
}

// Enum is an `enum Name { ... };` block. Values keep source order and may repeat.
type Enum struct {
	Name   string
	Values []string
}

// Callback is a `callback Name = void (...);` declaration.
type Callback struct {
	Name      string
	Arguments []*Argument
}

// Member is an operation inside an interface.
type Member struct {
	Name      string
	Arguments []*Argument
	// Static is set by the parser for every operation; nil only in hand-built trees.
	Static *bool
}

// Argument is an operation argument, a callback argument or a dictionary field.
type Argument struct {
	Name    string
	IDLType *Type
	// Optional is true or false for arguments and nil for dictionary fields.
	Optional *bool
}

// Type is a type reference: a primitive keyword or a declared name, possibly
// an array and possibly nullable.
type Type struct {
	IDLType  string
	Array    bool
	Nullable bool
}

func (*Interface) Kind() DeclKind  { return KindInterface }
func (*Dictionary) Kind() DeclKind { return KindDictionary }
func (*Enum) Kind() DeclKind       { return KindEnum }
func (*Callback) Kind() DeclKind   { return KindCallback }

func (d *Interface) DeclName() string  { return d.Name }
func (d *Dictionary) DeclName() string { return d.Name }
func (d *Enum) DeclName() string       { return d.Name }
func (d *Callback) DeclName() string   { return d.Name }

func (*Interface) isDeclaration()  {}
func (*Dictionary) isDeclaration() {}
func (*Enum) isDeclaration()       {}
func (*Callback) isDeclaration()   {}

// Package ast defines the syntax tree the parser builds and the
// codegen package consumes. The shape mirrors the original compiler's
// tree (original_source/src/ast.rs): identifiers carry a source byte
// offset for diagnostics, commands and expressions are small closed
// sums, and declarations distinguish scalar from array storage.
package ast

// Ident is a (name, byte-offset) occurrence — either a declaration site
// or a reference site. The offset is carried only for diagnostics.
type Ident struct {
	Name   string
	Offset int
}

// Value is either a literal number or an identifier reference.
type Value interface{ isValue() }

// NumberValue is an unsigned integer literal.
type NumberValue struct {
	N uint64
}

// IndexKind distinguishes a fixed numeric array index from a
// variable (identifier) index.
type IndexKind int

const (
	IndexNone IndexKind = iota
	IndexNumber
	IndexIdent
)

// IdentValue is an identifier reference: a bare scalar, a fixed-index
// array element, or a variable-index array element.
type IdentValue struct {
	Base      Ident
	IndexKind IndexKind
	IndexNum  uint64
	IndexVar  Ident
}

func (NumberValue) isValue() {}
func (IdentValue) isValue()  {}

// CompareOp enumerates the six comparisons spec.md §4.4 realizes.
type CompareOp int

const (
	OpEq CompareOp = iota
	OpNeq
	OpGt
	OpLt
	OpGeq
	OpLeq
)

// Condition is one of the six comparisons between two values.
type Condition struct {
	Op    CompareOp
	Left  Value
	Right Value
}

// Expression is one of the five arithmetic forms spec.md §4.3 lowers.
type Expression interface{ isExpression() }

type ValueExpr struct{ V Value }
type AddExpr struct{ Left, Right Value }
type SubExpr struct{ Left, Right Value }
type MulExpr struct{ Left, Right Value }
type DivExpr struct{ Left, Right Value }
type ModExpr struct{ Left, Right Value }

func (ValueExpr) isExpression() {}
func (AddExpr) isExpression()   {}
func (SubExpr) isExpression()   {}
func (MulExpr) isExpression()   {}
func (DivExpr) isExpression()   {}
func (ModExpr) isExpression()   {}

// Command is one of the six command forms spec.md §4.5 lowers, plus
// procedure call.
type Command interface{ isCommand() }

type AssignCmd struct {
	Target IdentValue
	Expr   Expression
}

type IfCmd struct {
	Cond Condition
	Then []Command
	Else []Command // nil if there is no else-arm
}

type WhileCmd struct {
	Cond Condition
	Body []Command
}

type RepeatCmd struct {
	Body []Command
	Cond Condition
}

type CallCmd struct {
	Proc Ident
	Args []Ident
}

type ReadCmd struct {
	Target IdentValue
}

type WriteCmd struct {
	V Value
}

func (AssignCmd) isCommand() {}
func (IfCmd) isCommand()     {}
func (WhileCmd) isCommand()  {}
func (RepeatCmd) isCommand() {}
func (CallCmd) isCommand()   {}
func (ReadCmd) isCommand()   {}
func (WriteCmd) isCommand()  {}

// DeclKind distinguishes a scalar declaration from an array one.
type DeclKind int

const (
	DeclScalar DeclKind = iota
	DeclArray
)

// Declaration is one local or main-program variable declaration.
type Declaration struct {
	Name Ident
	Kind DeclKind
	Size uint64 // only meaningful when Kind == DeclArray
}

// ArgKind tags a formal parameter as scalar or array.
type ArgKind int

const (
	ArgScalar ArgKind = iota
	ArgArray
)

// FormalParam is one formal parameter of a procedure signature.
type FormalParam struct {
	Name Ident
	Kind ArgKind
}

// Procedure is a procedure definition: name, formals, optional locals,
// and an ordered command list.
type Procedure struct {
	Name    Ident
	Formals []FormalParam
	Locals  []Declaration
	Body    []Command
}

// Program is the root of the tree: zero or more procedures plus the
// main program's own declarations and commands.
type Program struct {
	Procedures []Procedure
	MainDecls  []Declaration
	MainBody   []Command
}

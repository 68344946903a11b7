// Package parse builds an abstract syntax tree from a lex.Token stream using
// a Pratt/shunting-yard expression parser. The tree is a tagged sum: each
// Node has one Kind and only the fields relevant to that kind are populated.
package parse

// Kind identifies which fields of a Node are meaningful.
type Kind int

const (
	KindLiteral Kind = iota
	KindIdent
	KindBinary
	KindUnary
	KindCall
	KindIndex
	KindBlock
	KindIf
	KindWhile
	KindDecl
	KindAssign
	KindArrayLiteral
)

// Node is one point in the syntax tree.
type Node struct {
	Kind Kind
	Line int

	// KindLiteral
	NumberValue uint8
	// LiteralKind distinguishes how a KindLiteral node was written in
	// source ("number", "char" or "bool"), since all three collapse to
	// the same NumberValue representation but the declared-type check in
	// codegen needs to tell them apart.
	LiteralKind string

	// KindIdent, KindDecl (variable name), KindCall (callee name)
	Name string

	// KindBinary, KindUnary: operator text ("+", "!", "-", ...)
	Op string

	// KindBinary
	Left, Right *Node

	// KindUnary
	Operand *Node

	// KindCall
	Args []*Node

	// KindArrayLiteral
	Elements []*Node

	// KindIndex
	Array *Node
	Subscript *Node

	// KindBlock
	Statements []*Node

	// KindIf, KindWhile
	Cond *Node
	Body *Node

	// KindDecl
	TypeName  string // "uint8", "char" or "bool"
	IsArray   bool
	ArraySize int
	Init      *Node // initializer expression (KindArrayLiteral for arrays), nil if none

	// KindAssign
	Target *Node
	Value  *Node
}

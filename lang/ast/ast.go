// Package ast defines the node shapes produced by the parser and consumed by
// the scope tracker and compiler. It intentionally covers only the syntactic
// surface the compiler (lang/compiler) and scope tracker (lang/resolver)
// need to recognize; it is not a lossless, round-trippable syntax tree.
package ast

import "github.com/lucernalang/lucerna/lang/token"

// Node is implemented by every AST node.
type Node interface {
	Pos() token.Pos
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmt()
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	expr()
}

// Chunk is the root of a parsed program.
type Chunk struct {
	Block *Block
}

// Block is an ordered sequence of statements sharing a lexical scope.
type Block struct {
	Stmts []Stmt
}

type Base struct{ At token.Pos }

func (b Base) Pos() token.Pos { return b.At }

// VarStmt is `var name = expr`: introduces a mutable definition.
type VarStmt struct {
	Base
	Name  string
	Value Expr
}

// LetStmt is `let name = expr`: introduces an immutable-by-convention
// definition. It is compiled identically to VarStmt; the distinction is
// surface-level only (see DESIGN.md).
type LetStmt struct {
	Base
	Name  string
	Value Expr
}

// FuncStmt is `func name(params) body end`: introduces a definition bound to
// a function literal.
type FuncStmt struct {
	Base
	Name   string
	Params []string
	Body   *Block
}

// AssignTarget is the left-hand side of an AssignStmt.
type AssignTarget interface {
	Node
	assignTarget()
	// Root returns the outermost name this target ultimately reaches through
	// (itself, or the Base of an index/field chain). Used by the scope
	// tracker to record the capture against the right name.
	Root() string
}

// NameTarget assigns directly to a bound name: `name = expr`.
type NameTarget struct {
	Base
	Name string
}

// IndexTarget assigns through subscript: `a[i] = expr`.
type IndexTarget struct {
	Base
	Object Expr
	Index  Expr
}

// FieldTarget assigns through dotted field access: `t.k = expr`.
type FieldTarget struct {
	Base
	Object Expr
	Name   string
}

// AssignStmt is a bare assignment statement (no var/let keyword).
type AssignStmt struct {
	Base
	Target AssignTarget
	Value  Expr
}

// ExprStmt is an expression evaluated for its side effect (typically a call).
type ExprStmt struct {
	Base
	X Expr
}

// IfStmt is `if cond then then-block [else else-block] end`.
type IfStmt struct {
	Base
	Cond Expr
	Then *Block
	Else *Block // nil if there is no else clause
}

// WhileStmt is `while cond do body end`.
type WhileStmt struct {
	Base
	Cond Expr
	Body *Block
}

// ReturnStmt is `return [expr]`.
type ReturnStmt struct {
	Base
	Value Expr // nil if bare `return`
}

func (*VarStmt) stmt()    {}
func (*LetStmt) stmt()    {}
func (*FuncStmt) stmt()   {}
func (*AssignStmt) stmt() {}
func (*ExprStmt) stmt()   {}
func (*IfStmt) stmt()     {}
func (*WhileStmt) stmt()  {}
func (*ReturnStmt) stmt() {}

func (*NameTarget) assignTarget()  {}
func (*IndexTarget) assignTarget() {}
func (*FieldTarget) assignTarget() {}

func (t *NameTarget) Root() string  { return t.Name }
func (t *IndexTarget) Root() string { return rootOf(t.Object) }
func (t *FieldTarget) Root() string { return rootOf(t.Object) }

func rootOf(e Expr) string {
	for {
		switch x := e.(type) {
		case *NameExpr:
			return x.Name
		case *IndexExpr:
			e = x.Object
		case *FieldExpr:
			e = x.Object
		default:
			return ""
		}
	}
}

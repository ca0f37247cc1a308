package ast

import "github.com/lucernalang/lucerna/lang/token"

// IntLit is an integer literal.
type IntLit struct {
	Base
	Value int64
}

// FloatLit is a floating-point literal.
type FloatLit struct {
	Base
	Value float64
}

// StringLit is a string literal.
type StringLit struct {
	Base
	Value string
}

// BoolLit is `true` or `false`.
type BoolLit struct {
	Base
	Value bool
}

// NilLit is the `nil` literal.
type NilLit struct{ Base }

// NameExpr is a bare identifier reference.
type NameExpr struct {
	Base
	Name string
}

// BinaryExpr is a binary operator application.
type BinaryExpr struct {
	Base
	Op          token.Token
	Left, Right Expr
}

// UnaryExpr is a unary operator application: MINUS (arithmetic negation) or
// NOT (boolean negation).
type UnaryExpr struct {
	Base
	Op      token.Token
	Operand Expr
}

// CallExpr is `callee(args...)`.
type CallExpr struct {
	Base
	Callee Expr
	Args   []Expr
}

// MethodCallExpr is `object:method(args...)`.
type MethodCallExpr struct {
	Base
	Object Expr
	Method string
	Args   []Expr
}

// IndexExpr is `object[index]`.
type IndexExpr struct {
	Base
	Object Expr
	Index  Expr
}

// FieldExpr is `object.name`, sugar for indexing a table with a string key.
type FieldExpr struct {
	Base
	Object Expr
	Name   string
}

// ArrayLit is `[e1, e2, ...]`.
type ArrayLit struct {
	Base
	Elems []Expr
}

// TableEntry is one `name = value` pair inside a TableLit.
type TableEntry struct {
	Name  string
	Value Expr
}

// TableLit is `{name1 = e1, name2 = e2, ...}`.
type TableLit struct {
	Base
	Entries []TableEntry
}

// FuncLit is an anonymous `func(params) body end` expression.
type FuncLit struct {
	Base
	Params []string
	Body   *Block
}

func (*IntLit) expr()         {}
func (*FloatLit) expr()       {}
func (*StringLit) expr()      {}
func (*BoolLit) expr()        {}
func (*NilLit) expr()         {}
func (*NameExpr) expr()       {}
func (*BinaryExpr) expr()     {}
func (*UnaryExpr) expr()      {}
func (*CallExpr) expr()       {}
func (*MethodCallExpr) expr() {}
func (*IndexExpr) expr()      {}
func (*FieldExpr) expr()      {}
func (*ArrayLit) expr()       {}
func (*TableLit) expr()       {}
func (*FuncLit) expr()        {}

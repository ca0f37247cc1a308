package maincmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/lucernalang/lucerna/lang/ast"
)

// printChunk writes an indented dump of chunk's syntax tree to w, one
// statement per line with nested blocks indented. It is deliberately plain
// text rather than a lossless, re-parseable format: spec.md treats a full
// AST printer as an external collaborator's concern.
func printChunk(w io.Writer, chunk *ast.Chunk) {
	printBlock(w, chunk.Block, 0)
}

func printBlock(w io.Writer, b *ast.Block, depth int) {
	for _, stmt := range b.Stmts {
		printStmt(w, stmt, depth)
	}
}

func indent(depth int) string { return strings.Repeat("    ", depth) }

func printStmt(w io.Writer, stmt ast.Stmt, depth int) {
	pre := indent(depth)
	line, col := stmt.Pos().LineCol()
	switch s := stmt.(type) {
	case *ast.VarStmt:
		fmt.Fprintf(w, "%s%d:%d var %s = %s\n", pre, line, col, s.Name, exprString(s.Value))
	case *ast.LetStmt:
		fmt.Fprintf(w, "%s%d:%d let %s = %s\n", pre, line, col, s.Name, exprString(s.Value))
	case *ast.FuncStmt:
		fmt.Fprintf(w, "%s%d:%d func %s(%s)\n", pre, line, col, s.Name, strings.Join(s.Params, ", "))
		printBlock(w, s.Body, depth+1)
	case *ast.AssignStmt:
		fmt.Fprintf(w, "%s%d:%d %s = %s\n", pre, line, col, targetString(s.Target), exprString(s.Value))
	case *ast.ExprStmt:
		fmt.Fprintf(w, "%s%d:%d %s\n", pre, line, col, exprString(s.X))
	case *ast.IfStmt:
		fmt.Fprintf(w, "%s%d:%d if %s\n", pre, line, col, exprString(s.Cond))
		printBlock(w, s.Then, depth+1)
		if s.Else != nil {
			fmt.Fprintf(w, "%selse\n", pre)
			printBlock(w, s.Else, depth+1)
		}
	case *ast.WhileStmt:
		fmt.Fprintf(w, "%s%d:%d while %s\n", pre, line, col, exprString(s.Cond))
		printBlock(w, s.Body, depth+1)
	case *ast.ReturnStmt:
		if s.Value == nil {
			fmt.Fprintf(w, "%s%d:%d return\n", pre, line, col)
		} else {
			fmt.Fprintf(w, "%s%d:%d return %s\n", pre, line, col, exprString(s.Value))
		}
	default:
		fmt.Fprintf(w, "%s%d:%d <unknown statement %T>\n", pre, line, col, stmt)
	}
}

func targetString(t ast.AssignTarget) string {
	switch x := t.(type) {
	case *ast.NameTarget:
		return x.Name
	case *ast.IndexTarget:
		return fmt.Sprintf("%s[%s]", exprString(x.Object), exprString(x.Index))
	case *ast.FieldTarget:
		return fmt.Sprintf("%s.%s", exprString(x.Object), x.Name)
	default:
		return fmt.Sprintf("<unknown target %T>", t)
	}
}

func exprString(e ast.Expr) string {
	switch x := e.(type) {
	case *ast.IntLit:
		return fmt.Sprintf("%d", x.Value)
	case *ast.FloatLit:
		return fmt.Sprintf("%g", x.Value)
	case *ast.StringLit:
		return fmt.Sprintf("%q", x.Value)
	case *ast.BoolLit:
		return fmt.Sprintf("%t", x.Value)
	case *ast.NilLit:
		return "nil"
	case *ast.NameExpr:
		return x.Name
	case *ast.BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", exprString(x.Left), x.Op, exprString(x.Right))
	case *ast.UnaryExpr:
		return fmt.Sprintf("(%s %s)", x.Op, exprString(x.Operand))
	case *ast.CallExpr:
		return fmt.Sprintf("%s(%s)", exprString(x.Callee), exprListString(x.Args))
	case *ast.MethodCallExpr:
		return fmt.Sprintf("%s:%s(%s)", exprString(x.Object), x.Method, exprListString(x.Args))
	case *ast.IndexExpr:
		return fmt.Sprintf("%s[%s]", exprString(x.Object), exprString(x.Index))
	case *ast.FieldExpr:
		return fmt.Sprintf("%s.%s", exprString(x.Object), x.Name)
	case *ast.ArrayLit:
		return fmt.Sprintf("[%s]", exprListString(x.Elems))
	case *ast.TableLit:
		parts := make([]string, len(x.Entries))
		for i, e := range x.Entries {
			parts[i] = fmt.Sprintf("%s = %s", e.Name, exprString(e.Value))
		}
		return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
	case *ast.FuncLit:
		return fmt.Sprintf("func(%s) ... end", strings.Join(x.Params, ", "))
	default:
		return fmt.Sprintf("<unknown expr %T>", e)
	}
}

func exprListString(exprs []ast.Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = exprString(e)
	}
	return strings.Join(parts, ", ")
}

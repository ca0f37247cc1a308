package maincmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mna/mainer"

	"github.com/lucernalang/lucerna/lang/ast"
	"github.com/lucernalang/lucerna/lang/parser"
	"github.com/lucernalang/lucerna/lang/resolver"
)

// Resolve parses each file in args, runs scope analysis, and prints the
// definitions and captures recorded for the top-level chunk and every
// nested function.
func (c *Cmd) Resolve(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ResolveFiles(ctx, stdio, args...)
}

func ResolveFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return printError(stdio, err)
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return printError(stdio, err)
		}
		chunk, err := parser.Parse(src)
		if err != nil {
			return printError(stdio, fmt.Errorf("%s: %w", path, err))
		}
		res := resolver.Analyze(chunk)
		fmt.Fprintf(stdio.Stdout, "%s:\n", path)
		printFuncInfo(stdio.Stdout, "<top-level>", res.Top)
		walkFuncs(stdio.Stdout, chunk.Block, res)
	}
	return nil
}

func printFuncInfo(w io.Writer, name string, info *resolver.FuncInfo) {
	fmt.Fprintf(w, "  %s: definitions=[%s] captures=[%s]\n",
		name, strings.Join(info.Definitions, ", "), strings.Join(info.Captures, ", "))
}

// walkFuncs descends into every function statement and literal in b,
// printing the FuncInfo recorded for each.
func walkFuncs(w io.Writer, b *ast.Block, res *resolver.Result) {
	if b == nil {
		return
	}
	for _, stmt := range b.Stmts {
		switch s := stmt.(type) {
		case *ast.FuncStmt:
			if info, ok := res.Funcs[s]; ok {
				printFuncInfo(w, s.Name, info)
			}
			walkFuncs(w, s.Body, res)
		case *ast.IfStmt:
			walkFuncs(w, s.Then, res)
			walkFuncs(w, s.Else, res)
			walkFuncsExpr(w, s.Cond, res)
		case *ast.WhileStmt:
			walkFuncs(w, s.Body, res)
			walkFuncsExpr(w, s.Cond, res)
		case *ast.VarStmt:
			walkFuncsExpr(w, s.Value, res)
		case *ast.LetStmt:
			walkFuncsExpr(w, s.Value, res)
		case *ast.AssignStmt:
			walkFuncsExpr(w, s.Value, res)
		case *ast.ExprStmt:
			walkFuncsExpr(w, s.X, res)
		case *ast.ReturnStmt:
			walkFuncsExpr(w, s.Value, res)
		}
	}
}

func walkFuncsExpr(w io.Writer, e ast.Expr, res *resolver.Result) {
	switch x := e.(type) {
	case nil:
	case *ast.FuncLit:
		if info, ok := res.Funcs[x]; ok {
			printFuncInfo(w, "<anonymous>", info)
		}
		walkFuncs(w, x.Body, res)
	case *ast.BinaryExpr:
		walkFuncsExpr(w, x.Left, res)
		walkFuncsExpr(w, x.Right, res)
	case *ast.UnaryExpr:
		walkFuncsExpr(w, x.Operand, res)
	case *ast.CallExpr:
		walkFuncsExpr(w, x.Callee, res)
		for _, a := range x.Args {
			walkFuncsExpr(w, a, res)
		}
	case *ast.MethodCallExpr:
		walkFuncsExpr(w, x.Object, res)
		for _, a := range x.Args {
			walkFuncsExpr(w, a, res)
		}
	case *ast.IndexExpr:
		walkFuncsExpr(w, x.Object, res)
		walkFuncsExpr(w, x.Index, res)
	case *ast.FieldExpr:
		walkFuncsExpr(w, x.Object, res)
	case *ast.ArrayLit:
		for _, el := range x.Elems {
			walkFuncsExpr(w, el, res)
		}
	case *ast.TableLit:
		for _, entry := range x.Entries {
			walkFuncsExpr(w, entry.Value, res)
		}
	}
}

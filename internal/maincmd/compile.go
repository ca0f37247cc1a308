package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/lucernalang/lucerna/lang/compiler"
	"github.com/lucernalang/lucerna/lang/parser"
	"github.com/lucernalang/lucerna/lang/resolver"
)

// Compile parses, resolves and compiles each file in args, printing the
// resulting bytecode.
func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return CompileFiles(ctx, stdio, args...)
}

func CompileFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return printError(stdio, err)
		}
		prog, err := compileFile(path)
		if err != nil {
			return printError(stdio, err)
		}
		fmt.Fprintf(stdio.Stdout, "%s:\n", path)
		for i, code := range prog.Code {
			fmt.Fprintf(stdio.Stdout, "  %4d  %s\n", i, formatCode(code))
		}
	}
	return nil
}

func compileFile(path string) (*compiler.Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	chunk, err := parser.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	res := resolver.Analyze(chunk)
	prog, err := compiler.Compile(chunk, res)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

func formatCode(c compiler.Code) string {
	switch c.Op {
	case compiler.OpLoadInt:
		return fmt.Sprintf("%s %d", c.Op, c.Int)
	case compiler.OpLoadFloat:
		return fmt.Sprintf("%s %g", c.Op, c.Float)
	case compiler.OpLoadBool:
		return fmt.Sprintf("%s %t", c.Op, c.Bool)
	case compiler.OpLoadString, compiler.OpLoadNativeFunction, compiler.OpAddArgument:
		return fmt.Sprintf("%s %q", c.Op, c.Str)
	case compiler.OpCallMethod:
		return fmt.Sprintf("%s %q %d", c.Op, c.Str, c.Argc)
	case compiler.OpLoadLocal, compiler.OpSetLocal, compiler.OpAddCapture:
		return fmt.Sprintf("%s #%d", c.Op, c.ID)
	case compiler.OpDropLocal, compiler.OpMakeArray, compiler.OpMakeTable, compiler.OpCall:
		return fmt.Sprintf("%s %d", c.Op, c.Argc)
	case compiler.OpJump, compiler.OpJumpIfTrue, compiler.OpJumpIfFalse:
		return fmt.Sprintf("%s %+d", c.Op, c.Offset)
	case compiler.OpBuiltin:
		return fmt.Sprintf("%s %s %d", c.Op, c.Builtin, c.Argc)
	default:
		return c.Op.String()
	}
}

package machine

import (
	"fmt"
	"os"
	"strings"

	"github.com/lucernalang/lucerna/lang/compiler"
)

func execBuiltin(rt *Runtime, op compiler.BuiltinOp, argc int) error {
	args, err := popArgs(rt, argc)
	if err != nil {
		return err
	}

	switch op {
	case compiler.BuiltinWrite:
		for _, a := range args {
			fmt.Fprint(rt.Stdout, a.String())
		}
	case compiler.BuiltinFlush:
		if argc != 0 {
			return errAssertion("Builtin.Flush takes no arguments")
		}
		return rt.Stdout.Flush()
	case compiler.BuiltinWriteError:
		for _, a := range args {
			fmt.Fprint(rt.Stderr, a.String())
		}
	case compiler.BuiltinFlushError:
		if argc != 0 {
			return errAssertion("Builtin.FlushError takes no arguments")
		}
		return rt.Stderr.Flush()
	case compiler.BuiltinReadLine:
		if argc != 0 {
			return errAssertion("Builtin.ReadLine takes no arguments")
		}
		line, err := rt.Stdin.ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("i/o failure: %w", err)
		}
		rt.push(String(strings.TrimSuffix(line, "\n")))
	case compiler.BuiltinReadFile:
		if argc != 1 {
			return errAssertion("Builtin.ReadFile takes 1 argument")
		}
		path, ok := args[0].(String)
		if !ok {
			return fmt.Errorf("type mismatch: expected a string path, but got %s", args[0].Type())
		}
		content, err := os.ReadFile(string(path))
		if err != nil {
			return fmt.Errorf("i/o failure: %w", err)
		}
		rt.push(String(content))
	case compiler.BuiltinWriteFile:
		if argc != 2 {
			return errAssertion("Builtin.WriteFile takes 2 arguments")
		}
		path, ok := args[0].(String)
		if !ok {
			return fmt.Errorf("type mismatch: expected a string path, but got %s", args[0].Type())
		}
		content, ok := args[1].(String)
		if !ok {
			return fmt.Errorf("type mismatch: expected a string, but got %s", args[1].Type())
		}
		if err := os.WriteFile(string(path), []byte(content), 0o644); err != nil {
			return fmt.Errorf("i/o failure: %w", err)
		}
	default:
		return errAssertion("unhandled builtin op %s", op)
	}
	return nil
}

// nativeFunctions holds the NativeFunction values reachable from
// LoadNativeFunction by name. spec.md treats the concrete set of native
// functions as an external collaborator; this registry is the seam where a
// host program installs its own.
var nativeFunctions = map[string]*NativeFunction{}

// RegisterNativeFunction installs fn under name, reachable from Lucerna code
// via LoadNativeFunction(name).
func RegisterNativeFunction(name string, fn func(rt *Runtime, args []Value) (Value, error)) {
	nativeFunctions[name] = &NativeFunction{Name: name, Fn: fn}
}

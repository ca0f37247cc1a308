// Package maincmd implements the lucerna command-line driver: argument
// parsing and dispatch to the tokenize, parse, resolve, compile and run
// sub-commands. cmd/lucerna is a thin wrapper around Cmd.Main.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/mna/mainer"
)

const binName = "lucerna"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> [<path>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> [<path>...]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and runtime for the %[1]s programming language.

The <command> can be one of:
       tokenize                  Scan the file(s) and print the resulting
                                 tokens.
       parse                     Parse the file(s) and print the
                                 resulting syntax tree.
       resolve                   Parse and run scope analysis, printing
                                 each function's definitions and captures.
       compile                   Compile to bytecode and print the
                                 resulting instructions.
       run                       Compile and execute, printing the final
                                 value.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

Environment variables:
       LUCERNA_MAX_STEPS         Abort a run after this many executed
                                 instructions (0: unlimited).
       LUCERNA_MAX_CALL_DEPTH    Abort a run once nested calls exceed this
                                 depth (0: unlimited).

More information on the %[1]s repository:
       https://github.com/lucernalang/lucerna
`, binName)
)

// Config holds the environment-tunable VM resource limits, loaded from the
// environment on every invocation (see Cmd.Main).
type Config struct {
	MaxSteps     int64 `env:"LUCERNA_MAX_STEPS" envDefault:"0"`
	MaxCallDepth int   `env:"LUCERNA_MAX_CALL_DEPTH" envDefault:"0"`
}

// Cmd is the top-level lucerna command, populated by mainer.Parser from the
// process's command-line flags.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	args   []string
	flags  map[string]bool
	cmdFn  func(context.Context, mainer.Stdio, []string) error
	config Config
}

func (c *Cmd) SetArgs(args []string) { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) { c.flags = flags }

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]
	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", cmdName)
	}
	if len(c.args[1:]) == 0 {
		return fmt.Errorf("%s: at least one file must be provided", cmdName)
	}
	return nil
}

// Main parses args, loads the environment-tunable VM limits, and dispatches
// to the requested sub-command.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false, // leaving this here in case some flags can use this
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	if err := env.Parse(&c.config); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid environment configuration: %s\n", err)
		return mainer.InvalidArgs
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		return mainer.Failure
	}
	return mainer.Success
}

// buildCmds reflects over v's methods to find the sub-command handlers:
// those taking (context.Context, mainer.Stdio, []string) and returning
// error. The lower-cased method name is the command name.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type
		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}

func printError(stdio mainer.Stdio, err error) error {
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
	}
	return err
}

package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/lucernalang/lucerna/lang/machine"
)

// Run compiles each file in args and executes it, printing the final value.
// The environment-tunable VM limits (LUCERNA_MAX_STEPS, LUCERNA_MAX_CALL_DEPTH)
// loaded into c.config by Main apply to every file.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return c.RunFiles(ctx, stdio, args...)
}

func (c *Cmd) RunFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return printError(stdio, err)
		}
		prog, err := compileFile(path)
		if err != nil {
			return printError(stdio, err)
		}
		rt := machine.NewRuntime(stdio.Stdout, stdio.Stderr, stdio.Stdin)
		rt.MaxSteps = c.config.MaxSteps
		rt.MaxCallDepth = c.config.MaxCallDepth
		v, err := machine.Execute(prog.Code, rt)
		if err != nil {
			return printError(stdio, fmt.Errorf("%s: %w", path, err))
		}
		rt.Stdout.Flush()
		fmt.Fprintln(stdio.Stdout, v)
	}
	return nil
}

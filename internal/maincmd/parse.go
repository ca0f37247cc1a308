package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/lucernalang/lucerna/lang/parser"
)

// Parse parses each file in args and prints its syntax tree.
func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ParseFiles(ctx, stdio, args...)
}

func ParseFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
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
		fmt.Fprintf(stdio.Stdout, "%s:\n", path)
		printChunk(stdio.Stdout, chunk)
	}
	return nil
}

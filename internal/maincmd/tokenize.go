package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/lucernalang/lucerna/lang/scanner"
	"github.com/lucernalang/lucerna/lang/token"
)

// Tokenize scans each file in args and prints its token stream.
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFiles(ctx, stdio, args...)
}

func TokenizeFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return printError(stdio, err)
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return printError(stdio, err)
		}
		sc := scanner.New(src)
		for {
			tok, err := sc.Next()
			if err != nil {
				return printError(stdio, fmt.Errorf("%s: %w", path, err))
			}
			line, col := tok.Pos.LineCol()
			if tok.Lit != "" {
				fmt.Fprintf(stdio.Stdout, "%s:%d:%d: %s %s\n", path, line, col, tok.Kind, tok.Lit)
			} else {
				fmt.Fprintf(stdio.Stdout, "%s:%d:%d: %s\n", path, line, col, tok.Kind)
			}
			if tok.Kind == token.EOF {
				break
			}
		}
	}
	return nil
}

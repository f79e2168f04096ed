package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/nilstack/minic/lang/scanner"
	"github.com/nilstack/minic/lang/token"
)

// Tokenize runs the scanner phase alone and prints the resulting tokens,
// one per line, as "<pos>: <TOKEN> [<literal>]".
func (c *Cmd) Tokenize(_ context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) == 0 {
		return reportf(stdio, "tokenize: a source file path is required")
	}
	src, err := os.ReadFile(args[0])
	if err != nil {
		return reportf(stdio, "tokenize: %s", err)
	}

	file, toks, err := scanner.ScanAll(args[0], src)
	for _, tv := range toks {
		if tv.Token == token.EOF {
			break
		}
		pos := file.Position(tv.Pos)
		if tv.Lit != "" {
			fmt.Fprintf(stdio.Stdout, "%s: %s %s\n", pos, tv.Token, tv.Lit)
		} else {
			fmt.Fprintf(stdio.Stdout, "%s: %s\n", pos, tv.Token)
		}
	}
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
	}
	return err
}

func reportf(stdio mainer.Stdio, format string, args ...interface{}) error {
	err := fmt.Errorf(format, args...)
	fmt.Fprintln(stdio.Stderr, err)
	return err
}

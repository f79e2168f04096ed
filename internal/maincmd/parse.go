package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/nilstack/minic/lang/ast"
	"github.com/nilstack/minic/lang/parser"
)

// Parse runs the scanner and parser phases and prints the resulting AST
// as an indented tree, via lang/ast's own printer.
func (c *Cmd) Parse(_ context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) == 0 {
		return reportf(stdio, "parse: a source file path is required")
	}
	prog, err := parseFile(args[0])
	if prog != nil {
		ast.Fprint(stdio.Stdout, prog)
	}
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
	}
	return err
}

func parseFile(path string) (*ast.Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return parser.ParseFile(path, src)
}

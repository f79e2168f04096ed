package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/nilstack/minic/lang/compiler"
)

// Disasm runs every phase through codegen and prints the resulting
// bytecode, one function section at a time. There is no reverse
// assembler: the bytecode is never persisted, so this is a read-only
// dump, unlike the teacher's round-tripping asm/disasm pair.
func (c *Cmd) Disasm(_ context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) == 0 {
		return reportf(stdio, "disasm: a source file path is required")
	}
	cp, err := compileFile(args[0])
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	out, err := compiler.Dasm(cp)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	stdio.Stdout.Write(out)
	return nil
}

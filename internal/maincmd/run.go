package maincmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/mna/mainer"
	"github.com/nilstack/minic/lang/machine"
)

// Run compiles the source file named by args[0] and executes its "main"
// function, passing the remaining args as its INT32 arguments. Per
// spec.md §6.1, standard output carries a banner, the echoed source,
// any printNum output, and a final "Result: <n>" line.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) == 0 {
		return reportf(stdio, "run: a source file path is required")
	}
	path := args[0]

	src, err := os.ReadFile(path)
	if err != nil {
		return reportf(stdio, "run: %s", err)
	}

	mainArgs, err := parseArgs(args[1:])
	if err != nil {
		return reportf(stdio, "run: %s", err)
	}

	fmt.Fprintf(stdio.Stdout, "minic run %s\n", path)
	stdio.Stdout.Write(src)
	if len(src) == 0 || src[len(src)-1] != '\n' {
		fmt.Fprintln(stdio.Stdout)
	}

	if c.Debug {
		if err := c.Tokenize(ctx, stdio, []string{path}); err != nil {
			return err
		}
		if err := c.Parse(ctx, stdio, []string{path}); err != nil {
			return err
		}
	}

	cp, err := compileFile(path)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	rl, err := loadResourceLimits()
	if err != nil {
		return reportf(stdio, "run: %s", err)
	}

	th := &machine.Thread{
		Name:              path,
		Stdout:            stdio.Stdout,
		MaxSteps:          rl.MaxSteps,
		MaxStackDepth:     rl.MaxStackDepth,
		MaxCallStackDepth: rl.MaxCallStackDepth,
	}
	result, rerr := machine.Run(ctx, th, cp, mainArgs)
	if rerr != nil {
		fmt.Fprintln(stdio.Stderr, rerr)
		return rerr
	}

	fmt.Fprintf(stdio.Stdout, "Result: %d\n", result)
	return nil
}

func parseArgs(raw []string) ([]int16, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]int16, len(raw))
	for i, a := range raw {
		n, err := strconv.ParseInt(a, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("argument %q is not a 16-bit integer: %w", a, err)
		}
		out[i] = int16(n)
	}
	return out, nil
}

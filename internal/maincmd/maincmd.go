// Package maincmd wires the lang/* compiler phases into a small CLI, the
// way the teacher's internal/maincmd package wires its own pipeline: a
// Cmd struct mainer.Parser can populate from flags/args, one method per
// subcommand, dispatched by reflection from Main.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
)

const binName = "minic"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> <file> [<arg>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> <file> [<arg>...]
       %[1]s -h|--help
       %[1]s -v|--version

Ahead-of-time compiler and stack machine for the minic language.

The <command> can be one of:
       run                       Compile and execute <file>, printing any
                                 printNum output and a final "Result: <n>"
                                 line. This is the default when <command>
                                 is itself a readable file path.
       tokenize                  Run the scanner phase and print the
                                 resulting tokens.
       parse                     Run the parser phase and print the
                                 resulting abstract syntax tree.
       resolve                   Run the resolver phase and print the
                                 AST annotated with resolved bindings.
       disasm                    Compile <file> and print the resulting
                                 bytecode, one function section at a time.

Any <arg> values following <file> are the INT32 arguments passed to the
program's "main" function, for the run command only.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       --debug                   For run, also dump tokens and the parse
                                 tree before executing.
`, binName)
)

// Cmd is the CLI entry point's flag/argument target, populated by
// mainer.Parser.Parse before Main dispatches to a subcommand method.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`
	Debug   bool `flag:"debug"`

	args  []string
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) { c.args = args }
func (c *Cmd) SetFlags(map[string]bool) {}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	commands := buildCmds(c)
	cmdName := c.args[0]
	rest := c.args[1:]

	if fn, ok := commands[cmdName]; ok {
		c.cmdFn = fn
		c.args = rest
	} else if _, err := os.Stat(cmdName); err == nil {
		// No command word matched, but the first argument names a
		// readable file: treat this as "run" given directly, the way a
		// small compiler driver is normally invoked.
		c.cmdFn = commands["run"]
	} else {
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	if len(c.args) == 0 {
		return errors.New("a source file path is required")
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvVars: false, EnvPrefix: strings.ToUpper(binName) + "_"}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return exitUnclassified
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return exitSuccess
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return exitSuccess
	}

	return c.run(stdio)
}

// run invokes the resolved subcommand, mapping its outcome onto spec.md
// §6.1's three-way exit code taxonomy instead of mainer's own generic
// Success/Failure/InvalidArgs enum: 0 success, 2 any reported compile or
// runtime error, 1 for anything that reached here unclassified (a Go
// panic from a phase that is supposed to only ever return an error).
func (c *Cmd) run(stdio mainer.Stdio) (code mainer.ExitCode) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(stdio.Stderr, "internal error: %v\n", r)
			code = exitUnclassified
		}
	}()

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args); err != nil {
		// Each command prints its own error to stdio.Stderr before
		// returning it; Main only needs to translate presence of an
		// error into the reported-error exit code.
		return exitReportedError
	}
	return exitSuccess
}

const (
	exitSuccess       mainer.ExitCode = 0
	exitUnclassified  mainer.ExitCode = 1
	exitReportedError mainer.ExitCode = 2
)

// buildCmds discovers v's exported methods matching the subcommand shape
// func(context.Context, mainer.Stdio, []string) error, keyed by their
// lowercased name, via reflection (ported from the teacher's maincmd so
// adding a subcommand never requires touching this dispatch table).
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

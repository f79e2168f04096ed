package maincmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mna/mainer"
	"github.com/nilstack/minic/lang/ast"
	"github.com/nilstack/minic/lang/resolver"
)

// Resolve runs the scanner, parser and resolver phases, then prints the
// AST the same way the parse command does, with each VARIABLE_NAME
// additionally annotated with the binding the resolver gave it (a local
// slot, a parameter index, or "ignored" for a declared non-INT32 name).
func (c *Cmd) Resolve(_ context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) == 0 {
		return reportf(stdio, "resolve: a source file path is required")
	}
	prog, err := parseFile(args[0])
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	rp, rerr := resolver.Resolve(prog)
	fprintResolved(stdio.Stdout, rp)
	if rerr != nil {
		fmt.Fprintln(stdio.Stderr, rerr)
	}
	return rerr
}

// fprintResolved mirrors ast.Fprint's shape but annotates every
// VARIABLE_NAME with its resolver.Binding, since that information lives
// one layer above ast and can't be folded into ast.Fprint itself without
// an import cycle.
func fprintResolved(w io.Writer, rp *resolver.Program) {
	for _, name := range rp.Order {
		fi := rp.Functions[name]
		fmt.Fprintf(w, "func %s(", fi.Def.Name)
		for i, p := range fi.Def.Params {
			if i > 0 {
				fmt.Fprint(w, ", ")
			}
			fmt.Fprintf(w, "%s %s", p.Type, p.Name)
		}
		fmt.Fprintf(w, ") returns=%v locals=%d\n", fi.Def.ReturnsSomething, fi.NumLocals)
		for _, stmt := range fi.Def.Body {
			fprintResolvedStmt(w, fi, stmt, 1)
		}
	}
}

func fprintResolvedStmt(w io.Writer, fi *resolver.FuncInfo, s *ast.Statement, depth int) {
	indent := strings.Repeat("  ", depth)
	switch s.Kind {
	case ast.VARIABLE_DECLARATION:
		fmt.Fprintf(w, "%sVARIABLE_DECLARATION %s %s%s\n", indent, s.Type, s.Name, bindingSuffix(fi, s.Name))
	case ast.VARIABLE_NAME:
		fmt.Fprintf(w, "%sVARIABLE_NAME %s%s\n", indent, s.Name, bindingSuffix(fi, s.Name))
		return
	case ast.LITERAL:
		fmt.Fprintf(w, "%sLITERAL %s %s\n", indent, s.Type, s.Name)
		return
	case ast.OPERATOR_CALL:
		fmt.Fprintf(w, "%sOPERATOR_CALL %q\n", indent, s.Name)
	case ast.FUNCTION_CALL:
		fmt.Fprintf(w, "%sFUNCTION_CALL %s\n", indent, s.Name)
	case ast.WHILE_LOOP:
		fmt.Fprintf(w, "%sWHILE_LOOP\n", indent)
	default:
		fmt.Fprintf(w, "%s<unknown kind %d>\n", indent, s.Kind)
	}
	for _, c := range s.Children {
		fprintResolvedStmt(w, fi, c, depth+1)
	}
}

func bindingSuffix(fi *resolver.FuncInfo, name string) string {
	b, ok := fi.Lookup(name)
	if !ok {
		return " (unresolved)"
	}
	return fmt.Sprintf(" [%s %d]", b.Scope, b.Index)
}

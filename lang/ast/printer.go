package ast

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Fprint writes an indented tree representation of prog to w, in
// deterministic (sorted) function-name order, followed by declaration
// order within a function's own statements. It is the printer backing the
// CLI's "parse" command.
func Fprint(w io.Writer, prog *Program) {
	names := make([]string, 0, len(prog.Functions))
	for name := range prog.Functions {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fn := prog.Functions[name]
		fmt.Fprintf(w, "func %s(", fn.Name)
		for i, p := range fn.Params {
			if i > 0 {
				fmt.Fprint(w, ", ")
			}
			fmt.Fprintf(w, "%s %s", p.Type, p.Name)
		}
		fmt.Fprintf(w, ") returns=%v\n", fn.ReturnsSomething)
		for _, stmt := range fn.Body {
			fprintStmt(w, stmt, 1)
		}
	}
}

func fprintStmt(w io.Writer, s *Statement, depth int) {
	indent := strings.Repeat("  ", depth)
	switch s.Kind {
	case VARIABLE_DECLARATION:
		fmt.Fprintf(w, "%sVARIABLE_DECLARATION %s %s\n", indent, s.Type, s.Name)
	case LITERAL:
		fmt.Fprintf(w, "%sLITERAL %s %s\n", indent, s.Type, s.Name)
		return
	case VARIABLE_NAME:
		fmt.Fprintf(w, "%sVARIABLE_NAME %s\n", indent, s.Name)
		return
	case OPERATOR_CALL:
		fmt.Fprintf(w, "%sOPERATOR_CALL %q\n", indent, s.Name)
	case FUNCTION_CALL:
		fmt.Fprintf(w, "%sFUNCTION_CALL %s\n", indent, s.Name)
	case WHILE_LOOP:
		fmt.Fprintf(w, "%sWHILE_LOOP\n", indent)
	default:
		fmt.Fprintf(w, "%s<unknown kind %d>\n", indent, s.Kind)
	}
	for _, c := range s.Children {
		fprintStmt(w, c, depth+1)
	}
}

// String renders prog the same way Fprint does, returning it as a string.
func String(prog *Program) string {
	var b strings.Builder
	Fprint(&b, prog)
	return b.String()
}

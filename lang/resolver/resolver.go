// Package resolver binds every VARIABLE_NAME occurrence to a parameter
// index or a local slot offset, and performs the compile-time validation
// spec.md §7 assigns to "compile-time" errors (unknown variable, unknown
// function, wrong arity, malformed operator call). lang/compiler consumes
// its output instead of re-deriving bindings itself.
package resolver

import (
	"fmt"
	"strconv"

	"github.com/dolthub/swiss"
	"github.com/nilstack/minic/lang/ast"
)

// FuncInfo is the resolved view of a single function: its AST plus the
// name -> Binding table built from its parameters and INT32 local
// declarations, and the total count of INT32 locals (the number of
// PUSH_INT/POP_INT pairs the compiler's prologue/epilogue must emit).
type FuncInfo struct {
	Def       *ast.FunctionDefinition
	Bindings  *swiss.Map[string, *Binding]
	NumLocals int
}

// Program is the resolved form of an ast.Program.
type Program struct {
	AST       *ast.Program
	Functions map[string]*FuncInfo
	Order     []string
}

// Resolve validates prog and builds the binding tables every function
// needs. The returned error, if non-nil, aggregates every problem found
// (spec.md §7: compilation halts, but every error found is reported).
func Resolve(prog *ast.Program) (*Program, error) {
	rp := &Program{AST: prog, Functions: make(map[string]*FuncInfo), Order: prog.Order}

	var errs []error
	for _, name := range prog.Order {
		fn := prog.Functions[name]
		fi, ferrs := resolveFunction(fn)
		rp.Functions[name] = fi
		errs = append(errs, ferrs...)
	}
	for _, name := range prog.Order {
		errs = append(errs, validateBody(rp, rp.Functions[name])...)
	}

	if len(errs) == 0 {
		return rp, nil
	}
	return rp, joinErrors(errs)
}

func resolveFunction(fn *ast.FunctionDefinition) (*FuncInfo, []error) {
	fi := &FuncInfo{Def: fn, Bindings: swiss.NewMap[string, *Binding](8)}
	var errs []error

	for i, p := range fn.Params {
		if _, ok := fi.Bindings.Get(p.Name); ok {
			errs = append(errs, fmt.Errorf("function %s: parameter %q redeclared", fn.Name, p.Name))
			continue
		}
		fi.Bindings.Put(p.Name, &Binding{Scope: Param, Index: i})
	}

	WalkDecls(fn.Body, func(s *ast.Statement) {
		if _, ok := fi.Bindings.Get(s.Name); ok {
			errs = append(errs, fmt.Errorf("function %s: %q redeclared", fn.Name, s.Name))
			return
		}
		if s.Type == ast.INT32 {
			fi.Bindings.Put(s.Name, &Binding{Scope: Local, Index: fi.NumLocals})
			fi.NumLocals++
		} else {
			fi.Bindings.Put(s.Name, &Binding{Scope: Ignored})
		}
	})

	return fi, errs
}

// WalkDecls visits every VARIABLE_DECLARATION reachable from stmts, top to
// bottom, descending into WHILE_LOOP bodies (skipping the condition
// expression). lang/compiler's prologue pass calls this with the same
// stmts to assign PUSH_INT slots in the identical order Resolve used to
// assign local offsets.
func WalkDecls(stmts []*ast.Statement, visit func(*ast.Statement)) {
	for _, s := range stmts {
		switch s.Kind {
		case ast.VARIABLE_DECLARATION:
			visit(s)
		case ast.WHILE_LOOP:
			if len(s.Children) > 1 {
				WalkDecls(s.Children[1:], visit)
			}
		}
	}
}

// Lookup returns the binding for name within fi, or (nil, false) if the
// name is not declared in this function.
func (fi *FuncInfo) Lookup(name string) (*Binding, bool) {
	return fi.Bindings.Get(name)
}

func validateBody(rp *Program, fi *FuncInfo) []error {
	var errs []error
	var check func(stmts []*ast.Statement)
	var checkExpr func(s *ast.Statement, valueCtx bool)

	checkExpr = func(s *ast.Statement, valueCtx bool) {
		switch s.Kind {
		case ast.LITERAL:
			if s.Type == ast.INT32 {
				n, err := strconv.Atoi(s.Name)
				if err != nil {
					errs = append(errs, fmt.Errorf("function %s: invalid int32 literal %q", fi.Def.Name, s.Name))
				} else if n < -32768 || n > 32767 {
					errs = append(errs, fmt.Errorf("function %s: literal %d out of 16-bit range", fi.Def.Name, n))
				}
			}
		case ast.VARIABLE_NAME:
			b, ok := fi.Lookup(s.Name)
			if !ok {
				errs = append(errs, fmt.Errorf("function %s: unknown variable %q", fi.Def.Name, s.Name))
			} else if b.Scope == Ignored {
				errs = append(errs, fmt.Errorf("function %s: variable %q has a reserved type with no runtime storage", fi.Def.Name, s.Name))
			}
		case ast.OPERATOR_CALL:
			if len(s.Children) != 2 {
				errs = append(errs, fmt.Errorf("function %s: operator %q needs exactly two operands", fi.Def.Name, s.Name))
				return
			}
			if s.Name == "=" {
				lhs := s.Children[0]
				if lhs.Kind != ast.VARIABLE_NAME {
					errs = append(errs, fmt.Errorf("function %s: left-hand side of %q must be a variable", fi.Def.Name, "="))
				} else if b, ok := fi.Lookup(lhs.Name); ok && b.Scope == Param {
					errs = append(errs, fmt.Errorf("function %s: cannot assign to parameter %q", fi.Def.Name, lhs.Name))
				}
			}
			if s.Name != "+" && s.Name != "<" && s.Name != "=" {
				errs = append(errs, fmt.Errorf("function %s: unknown operator %q", fi.Def.Name, s.Name))
			}
			for _, c := range s.Children {
				checkExpr(c, true)
			}
		case ast.FUNCTION_CALL:
			switch s.Name {
			case "return":
				if len(s.Children) != 1 {
					errs = append(errs, fmt.Errorf("function %s: return takes exactly one argument", fi.Def.Name))
				}
				if valueCtx {
					errs = append(errs, fmt.Errorf("function %s: return has no value", fi.Def.Name))
				}
			case "printNum":
				if len(s.Children) != 1 {
					errs = append(errs, fmt.Errorf("function %s: printNum takes exactly one argument", fi.Def.Name))
				}
				if valueCtx {
					errs = append(errs, fmt.Errorf("function %s: printNum has no value", fi.Def.Name))
				}
			default:
				callee, ok := rp.Functions[s.Name]
				if !ok {
					errs = append(errs, fmt.Errorf("function %s: unknown function %q", fi.Def.Name, s.Name))
				} else {
					if len(s.Children) != len(callee.Def.Params) {
						errs = append(errs, fmt.Errorf("function %s: call to %s wants %d arguments, got %d",
							fi.Def.Name, s.Name, len(callee.Def.Params), len(s.Children)))
					}
					if valueCtx && !callee.Def.ReturnsSomething {
						errs = append(errs, fmt.Errorf("function %s: call to void function %s used as a value", fi.Def.Name, s.Name))
					}
				}
			}
			for _, c := range s.Children {
				checkExpr(c, true)
			}
		default:
			errs = append(errs, fmt.Errorf("function %s: %s is not a valid expression", fi.Def.Name, s.Kind))
		}
	}

	check = func(stmts []*ast.Statement) {
		for _, s := range stmts {
			switch s.Kind {
			case ast.VARIABLE_DECLARATION:
				if len(s.Children) > 0 {
					if s.Type != ast.INT32 {
						errs = append(errs, fmt.Errorf("function %s: variable %q has a reserved type with no runtime storage and cannot have an initializer", fi.Def.Name, s.Name))
					} else {
						checkExpr(s.Children[0], true)
					}
				}
			case ast.WHILE_LOOP:
				if len(s.Children) == 0 {
					errs = append(errs, fmt.Errorf("function %s: while loop missing condition", fi.Def.Name))
					continue
				}
				checkExpr(s.Children[0], true)
				check(s.Children[1:])
			case ast.FUNCTION_CALL:
				checkExpr(s, false)
			case ast.OPERATOR_CALL:
				if s.Name == "=" {
					checkExpr(s, false)
				} else {
					errs = append(errs, fmt.Errorf("function %s: operator %q is not a valid statement", fi.Def.Name, s.Name))
				}
			default:
				errs = append(errs, fmt.Errorf("function %s: %s is not a valid statement", fi.Def.Name, s.Kind))
			}
		}
	}

	check(fi.Def.Body)
	return errs
}

func joinErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return &MultiError{Errs: errs, msgs: msgs}
}

// MultiError aggregates every resolver error found in one pass, rather than
// stopping at the first (spec.md §7: "compilation halts" refers to not
// proceeding to codegen, not to under-reporting problems).
type MultiError struct {
	Errs []error
	msgs []string
}

func (m *MultiError) Error() string {
	s := ""
	for i, msg := range m.msgs {
		if i > 0 {
			s += "\n"
		}
		s += msg
	}
	return s
}

func (m *MultiError) Unwrap() []error { return m.Errs }

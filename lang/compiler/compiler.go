// Much of the shape of this package (a pcomp holding the shared program,
// an fcomp holding per-function state, an emit helper, a backpatch-the-
// branch-after-the-fact style) is adapted from the Starlark compiler:
// https://github.com/google/starlark-go/tree/ee8ed142361c69d52fe8e9fb5e311d2a0a7c02de
//
// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compiler lowers a resolver.Program into a single flat bytecode
// instruction buffer and a function symbol table, per spec.md §2 and §4.
package compiler

import (
	"fmt"
	"sort"

	"github.com/dolthub/swiss"
	"github.com/nilstack/minic/lang/ast"
	"github.com/nilstack/minic/lang/resolver"
)

// Compile lowers a resolved program to bytecode. rp must come from a
// successful resolver.Resolve call; an AST that resolved with errors
// produces undefined results here.
//
// Functions are compiled in sorted name order. A call to a function
// sorted after its caller needs that function's entry offset before it
// exists, so every CALL's branch is backpatched in a final pass once
// every function has been compiled and has a final Entry.
func Compile(rp *resolver.Program) (*Program, error) {
	names := make([]string, 0, len(rp.Functions))
	for name := range rp.Functions {
		names = append(names, name)
	}
	sort.Strings(names)

	prog := &Program{
		Functions: swiss.NewMap[string, *FuncInfo](uint32(len(names))),
		Order:     names,
	}
	for _, name := range names {
		fi := rp.Functions[name]
		prog.Functions.Put(name, &FuncInfo{
			Name:             name,
			NumParams:        len(fi.Def.Params),
			ReturnsSomething: fi.Def.ReturnsSomething,
		})
	}

	pc := &pcomp{prog: prog}
	for _, name := range names {
		target, _ := prog.Functions.Get(name)
		target.Entry = len(prog.Instructions)
		if err := pc.compileFunction(rp.Functions[name]); err != nil {
			return nil, err
		}
	}
	for _, call := range pc.pendingCalls {
		target, _ := prog.Functions.Get(call.name)
		prog.Instructions[call.idx].P2 = int16(target.Entry - call.idx)
	}

	if _, ok := prog.Main(); !ok {
		return nil, fmt.Errorf("compiler: no function named %q", "main")
	}
	return prog, nil
}

// pendingCall is a CALL instruction whose branch offset can't be computed
// until every function in the program has a final Entry.
type pendingCall struct {
	idx  int
	name string
}

// pcomp holds state shared by every function being compiled: the program
// under construction and the calls awaiting a final target offset.
type pcomp struct {
	prog         *Program
	pendingCalls []pendingCall
}

// fcomp holds the compiler state for a single function body: the
// resolver's bindings for it, and the indices of every JUMP_BY emitted by
// a "return" statement, awaiting the epilogue's cleanup offset.
type fcomp struct {
	pc            *pcomp
	fi            *resolver.FuncInfo
	returnPatches []int
}

func (pc *pcomp) compileFunction(fi *resolver.FuncInfo) error {
	fc := &fcomp{pc: pc, fi: fi}

	// Prologue (spec.md §4.4.1): one PUSH_INT per INT32 local, in the same
	// order resolver.Resolve assigned local offsets, carrying a literal
	// initializer's value (or 0) so the second pass need not re-emit it.
	resolver.WalkDecls(fi.Def.Body, func(s *ast.Statement) {
		if s.Type != ast.INT32 {
			return
		}
		v := int16(0)
		if len(s.Children) > 0 && s.Children[0].Kind == ast.LITERAL {
			v, _ = parseInt16(s.Children[0].Name) // resolver already validated range
		}
		fc.emit(PUSH_INT, 0, v)
	})

	if err := fc.compileStmts(fi.Def.Body); err != nil {
		return err
	}

	// Epilogue (spec.md §4.4.3): every pending "return" jump lands here;
	// control also reaches here by falling off the end of the body. One
	// POP_INT per local unwinds the local area, then RETURN restores the
	// caller's pc/bp from the two header slots directly below.
	cleanup := len(fc.pc.prog.Instructions)
	for _, idx := range fc.returnPatches {
		fc.patchBranch(idx, cleanup)
	}
	for i := 0; i < fi.NumLocals; i++ {
		fc.emit(POP_INT, 0, 0)
	}
	fc.emit(RETURN, 0, 0)
	return nil
}

// emit appends an instruction and returns its own index, for callers that
// need to backpatch a jump target into it later.
func (fc *fcomp) emit(op Opcode, p1 byte, p2 int16) int {
	idx := len(fc.pc.prog.Instructions)
	fc.pc.prog.Instructions = append(fc.pc.prog.Instructions, Instruction{Op: op, P1: p1, P2: p2})
	return idx
}

// patchBranch sets the P2 of the jump/call instruction at idx so that it
// targets target, using the "offset relative to the instruction's own
// index" convention spec.md §4.4.1 uses throughout.
func (fc *fcomp) patchBranch(idx, target int) {
	fc.pc.prog.Instructions[idx].P2 = int16(target - idx)
}

func (fc *fcomp) compileStmts(stmts []*ast.Statement) error {
	for _, s := range stmts {
		if err := fc.compileStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (fc *fcomp) compileStmt(s *ast.Statement) error {
	switch s.Kind {
	case ast.VARIABLE_DECLARATION:
		// Literal initializers were already folded into the prologue's
		// PUSH_INT; only a non-literal initializer emits code here.
		if len(s.Children) == 0 || s.Children[0].Kind == ast.LITERAL {
			return nil
		}
		if err := fc.compileExpr(s.Children[0]); err != nil {
			return err
		}
		return fc.storeTo(s.Name)

	case ast.OPERATOR_CALL: // only "=" reaches here; resolver rejects the rest as statements
		if err := fc.compileExpr(s.Children[1]); err != nil {
			return err
		}
		return fc.storeTo(s.Children[0].Name)

	case ast.WHILE_LOOP:
		return fc.compileWhile(s)

	case ast.FUNCTION_CALL:
		return fc.compileCallStmt(s)

	default:
		return fmt.Errorf("compiler: %s is not a valid statement", s.Kind)
	}
}

func (fc *fcomp) storeTo(name string) error {
	b, ok := fc.fi.Lookup(name)
	if !ok {
		return fmt.Errorf("function %s: internal: unresolved variable %q", fc.fi.Def.Name, name)
	}
	fc.emit(STORE_INT_BASEPOINTER_RELATIVE, 0, int16(bpOffset(fc.fi, b)))
	return nil
}

// bpOffset returns a Binding's offset relative to bp, per the frame
// layout of spec.md §4.2 with bp pointing at the slot just above saved
// pc: a local sits at +Index, a parameter at Index-N-2 (N = this
// function's parameter count).
func bpOffset(fi *resolver.FuncInfo, b *resolver.Binding) int {
	if b.Scope == resolver.Param {
		return b.Index - len(fi.Def.Params) - 2
	}
	return b.Index
}

// returnSlotOffset is where a "return" statement stores its value: one
// slot below argument 0, derived the same way as bpOffset above (spec.md
// §4.2's own text for this offset, "-2-N", is inconsistent with its
// frame picture; see DESIGN.md).
func returnSlotOffset(fi *resolver.FuncInfo) int {
	return -(len(fi.Def.Params) + 3)
}

func (fc *fcomp) compileWhile(s *ast.Statement) error {
	if len(s.Children) == 0 {
		return fmt.Errorf("function %s: while loop missing condition", fc.fi.Def.Name)
	}
	condPC := len(fc.pc.prog.Instructions)
	if err := fc.compileExpr(s.Children[0]); err != nil {
		return err
	}
	jzIdx := fc.emit(JUMP_BY_IF_ZERO, 0, 0) // patched once the loop end is known

	if err := fc.compileStmts(s.Children[1:]); err != nil {
		return err
	}

	backIdx := fc.emit(JUMP_BY, 0, 0)
	fc.patchBranch(backIdx, condPC)
	fc.patchBranch(jzIdx, len(fc.pc.prog.Instructions))
	return nil
}

// compileExpr emits code that leaves exactly one INT32 value on the
// stack: s must be LITERAL, VARIABLE_NAME, OPERATOR_CALL ("+" or "<") or
// a value-producing FUNCTION_CALL — exactly the shapes resolver.Resolve
// already validated for value context.
func (fc *fcomp) compileExpr(s *ast.Statement) error {
	switch s.Kind {
	case ast.LITERAL:
		n, err := parseInt16(s.Name)
		if err != nil {
			return fmt.Errorf("function %s: %w", fc.fi.Def.Name, err)
		}
		fc.emit(PUSH_INT, 0, n)
		return nil

	case ast.VARIABLE_NAME:
		b, ok := fc.fi.Lookup(s.Name)
		if !ok {
			return fmt.Errorf("function %s: internal: unresolved variable %q", fc.fi.Def.Name, s.Name)
		}
		fc.emit(LOAD_INT_BASEPOINTER_RELATIVE, 0, int16(bpOffset(fc.fi, b)))
		return nil

	case ast.OPERATOR_CALL:
		if err := fc.compileExpr(s.Children[0]); err != nil {
			return err
		}
		if err := fc.compileExpr(s.Children[1]); err != nil {
			return err
		}
		switch s.Name {
		case "+":
			fc.emit(ADD_INT, 0, 0)
		case "<":
			fc.emit(COMP_INT_LT, 0, 0)
		default:
			return fmt.Errorf("function %s: operator %q has no value", fc.fi.Def.Name, s.Name)
		}
		return nil

	case ast.FUNCTION_CALL:
		return fc.compileCallExpr(s)

	default:
		return fmt.Errorf("compiler: %s is not a valid expression", s.Kind)
	}
}

// compileCallStmt compiles a FUNCTION_CALL used as a bare statement:
// "return", "printNum", or a call to a user function whose result (if
// any) is discarded.
func (fc *fcomp) compileCallStmt(s *ast.Statement) error {
	switch s.Name {
	case "return":
		if err := fc.compileExpr(s.Children[0]); err != nil {
			return err
		}
		fc.emit(STORE_INT_BASEPOINTER_RELATIVE, 0, int16(returnSlotOffset(fc.fi)))
		fc.returnPatches = append(fc.returnPatches, fc.emit(JUMP_BY, 0, 0))
		return nil

	case "printNum":
		if err := fc.compileExpr(s.Children[0]); err != nil {
			return err
		}
		fc.emit(PRINT_INT, 0, 0)
		return nil

	default:
		return fc.compileUserCall(s, false)
	}
}

func (fc *fcomp) compileCallExpr(s *ast.Statement) error {
	switch s.Name {
	case "return", "printNum":
		return fmt.Errorf("function %s: %s has no value", fc.fi.Def.Name, s.Name)
	default:
		return fc.compileUserCall(s, true)
	}
}

// compileUserCall emits a call to a user-defined function, per spec.md
// §4.4.4's "FUNCTION_CALL (user-defined)" rule: a return slot only if the
// callee produces a value, then the arguments, then CALL, then one
// POP_INT per argument. keepValue controls whether a value-returning
// call's result is left on the stack (expression context) or popped
// immediately (statement context, where the value is unused).
func (fc *fcomp) compileUserCall(s *ast.Statement, keepValue bool) error {
	target, ok := fc.pc.prog.Functions.Get(s.Name)
	if !ok {
		return fmt.Errorf("function %s: internal: unresolved call %q", fc.fi.Def.Name, s.Name)
	}

	if target.ReturnsSomething {
		fc.emit(PUSH_INT, 0, 0) // return slot
	}
	for _, arg := range s.Children {
		if err := fc.compileExpr(arg); err != nil {
			return err
		}
	}
	callIdx := fc.emit(CALL, 0, 0)
	fc.pc.pendingCalls = append(fc.pc.pendingCalls, pendingCall{idx: callIdx, name: s.Name})

	for range s.Children {
		fc.emit(POP_INT, 0, 0)
	}
	if target.ReturnsSomething && !keepValue {
		fc.emit(POP_INT, 0, 0)
	}
	return nil
}

func parseInt16(lit string) (int16, error) {
	n := 0
	neg := false
	i := 0
	if len(lit) > 0 && lit[0] == '-' {
		neg = true
		i = 1
	}
	if i == len(lit) {
		return 0, fmt.Errorf("invalid int32 literal %q", lit)
	}
	for ; i < len(lit); i++ {
		c := lit[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid int32 literal %q", lit)
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		n = -n
	}
	if n < -32768 || n > 32767 {
		return 0, fmt.Errorf("literal %d out of 16-bit range", n)
	}
	return int16(n), nil
}

// Much of the shape of this package (a Thread owning one-shot mutable
// execution state, a dispatch loop that checks step/cancellation limits
// on every iteration before decoding the next instruction) is adapted
// from the Starlark-derived interpreter this repository's machine
// package used to run:
// https://github.com/google/starlark-go/tree/ee8ed142361c69d52fe8e9fb5e311d2a0a7c02de
//
// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package machine implements the stack-based interpreter that executes a
// compiler.Program, per spec.md §4.5.
package machine

import (
	"context"
	"fmt"

	"github.com/nilstack/minic/lang/compiler"
)

// haltPC is the sentinel saved-pc value the entry frame is given: no
// real instruction index is ever negative, so RETURN reading it back
// means "there is no caller, stop" (spec.md §4.1's RETURN row and
// §4.5 step 3).
const haltPC = -1

// Run executes prog's "main" function to completion and returns the
// value left in its return slot, per spec.md §4.5's five-step entry
// protocol. args are main's positional arguments; len(args) must equal
// main's declared parameter count.
func Run(ctx context.Context, th *Thread, prog *compiler.Program, args []int16) (int16, error) {
	th.init(ctx)
	defer th.ctxCancel(nil)

	main, ok := prog.Main()
	if !ok {
		return 0, fmt.Errorf("machine: no function named %q", "main")
	}
	if len(args) != main.NumParams {
		return 0, fmt.Errorf("machine: main wants %d arguments, got %d", main.NumParams, len(args))
	}

	stack := make([]int16, 0, 64)
	// Step 1: always push the sentinel return slot, per spec.md §4.5's own
	// parenthetical ("for consistency, always push one").
	stack = append(stack, 0)
	// Step 2: the arguments.
	stack = append(stack, args...)
	// Step 3: sentinel saved bp and the halt-marking saved pc.
	stack = append(stack, 0, haltPC)
	// Step 4: bp sits just above the saved-pc slot; pc starts at main.
	bp := len(stack)
	pc := main.Entry
	callDepth := 0

	insns := prog.Instructions
	for {
		th.steps++
		if th.steps >= th.maxSteps {
			th.ctxCancel(fmt.Errorf("step limit exceeded"))
			return 0, &haltError{reason: "step limit exceeded"}
		}
		if th.cancelled.Load() {
			return 0, &haltError{reason: context.Cause(th.ctx).Error()}
		}
		if pc < 0 || pc >= len(insns) {
			return 0, fmt.Errorf("machine: pc %d out of range [0,%d)", pc, len(insns))
		}

		insn := insns[pc]
		ip := pc
		pc++

		switch insn.Op {
		case compiler.PUSH_INT:
			if err := push(&stack, th.MaxStackDepth, insn.P2); err != nil {
				return 0, err
			}

		case compiler.POP_INT:
			if len(stack) == 0 {
				return 0, fmt.Errorf("machine: stack underflow at pc %d", ip)
			}
			stack = stack[:len(stack)-1]

		case compiler.ADD_INT:
			b, a, err := pop2(&stack, ip)
			if err != nil {
				return 0, err
			}
			if err := push(&stack, th.MaxStackDepth, a+b); err != nil { // two's-complement wrap is automatic on int16 overflow
				return 0, err
			}

		case compiler.COMP_INT_LT:
			b, a, err := pop2(&stack, ip)
			if err != nil {
				return 0, err
			}
			var v int16
			if a < b {
				v = 1
			}
			if err := push(&stack, th.MaxStackDepth, v); err != nil {
				return 0, err
			}

		case compiler.PRINT_INT:
			if len(stack) == 0 {
				return 0, fmt.Errorf("machine: stack underflow at pc %d", ip)
			}
			a := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			fmt.Fprintf(th.stdout, "%d\n", a)

		case compiler.LOAD_INT_BASEPOINTER_RELATIVE:
			idx := bp + int(insn.P2)
			if idx < 0 || idx >= len(stack) {
				return 0, fmt.Errorf("machine: load out of range at pc %d (bp=%d p2=%d)", ip, bp, insn.P2)
			}
			if err := push(&stack, th.MaxStackDepth, stack[idx]); err != nil {
				return 0, err
			}

		case compiler.STORE_INT_BASEPOINTER_RELATIVE:
			if len(stack) == 0 {
				return 0, fmt.Errorf("machine: stack underflow at pc %d", ip)
			}
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			idx := bp + int(insn.P2)
			if idx < 0 || idx >= len(stack) {
				return 0, fmt.Errorf("machine: store out of range at pc %d (bp=%d p2=%d)", ip, bp, insn.P2)
			}
			stack[idx] = v

		case compiler.JUMP_BY:
			pc = ip + int(insn.P2)

		case compiler.JUMP_BY_IF_ZERO:
			if len(stack) == 0 {
				return 0, fmt.Errorf("machine: stack underflow at pc %d", ip)
			}
			a := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if a == 0 {
				pc = ip + int(insn.P2)
			}

		case compiler.CALL:
			callDepth++
			if th.MaxCallStackDepth > 0 && callDepth > th.MaxCallStackDepth {
				return 0, &haltError{reason: "call stack depth exceeded"}
			}
			if err := push(&stack, th.MaxStackDepth, int16(bp)); err != nil {
				return 0, err
			}
			if err := push(&stack, th.MaxStackDepth, int16(ip+1)); err != nil {
				return 0, err
			}
			bp = len(stack)
			pc = ip + int(insn.P2)

		case compiler.RETURN:
			callDepth--
			if bp < 2 || bp > len(stack) {
				return 0, fmt.Errorf("machine: corrupt frame header at pc %d", ip)
			}
			savedPC := stack[bp-1]
			savedBP := stack[bp-2]
			stack = stack[:bp-2]
			if int(savedPC) == haltPC {
				// The entry frame's return slot sits at the very bottom of
				// the stack (spec.md §4.5 step 5): offset -(N+3) from the
				// entry bp always resolves to absolute index 0.
				return stack[0], nil
			}
			bp = int(savedBP)
			pc = int(savedPC)

		default:
			return 0, fmt.Errorf("machine: illegal opcode %d at pc %d", insn.Op, ip)
		}
	}
}

func push(stack *[]int16, maxDepth int, v int16) error {
	if maxDepth > 0 && len(*stack) >= maxDepth {
		return &haltError{reason: "stack depth exceeded"}
	}
	*stack = append(*stack, v)
	return nil
}

func pop2(stack *[]int16, ip int) (b, a int16, err error) {
	if len(*stack) < 2 {
		return 0, 0, fmt.Errorf("machine: stack underflow at pc %d", ip)
	}
	s := *stack
	b, a = s[len(s)-1], s[len(s)-2]
	*stack = s[:len(s)-2]
	return b, a, nil
}

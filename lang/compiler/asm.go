package compiler

import (
	"bytes"
	"fmt"
)

// Dasm renders a compiled Program as human-readable pseudo-assembly: one
// function section per entry in Order, each listing its instructions
// with their own index so jump/call targets are easy to follow by eye.
// There is no corresponding Asm: the bytecode is never persisted, so
// nothing in this module needs to read this format back in, only print
// it for the disasm CLI command.
func Dasm(p *Program) ([]byte, error) {
	buf := new(bytes.Buffer)
	for _, name := range p.Order {
		fi, ok := p.Functions.Get(name)
		if !ok {
			return nil, fmt.Errorf("compiler: disasm: %q missing from function table", name)
		}
		fmt.Fprintf(buf, "function %s(params=%d returns=%v) entry=%03d\n",
			fi.Name, fi.NumParams, fi.ReturnsSomething, fi.Entry)

		end := len(p.Instructions)
		for _, other := range p.Order {
			oi, _ := p.Functions.Get(other)
			if oi.Entry > fi.Entry && oi.Entry < end {
				end = oi.Entry
			}
		}
		for i := fi.Entry; i < end; i++ {
			insn := p.Instructions[i]
			if opHasImmediate(insn.Op) {
				fmt.Fprintf(buf, "\t%03d\t%-30s %d\n", i, insn.Op, insn.P2)
			} else {
				fmt.Fprintf(buf, "\t%03d\t%s\n", i, insn.Op)
			}
		}
	}
	return buf.Bytes(), nil
}

// opHasImmediate reports whether op's P2 is meaningful to print: every
// opcode except the five that take no operand (POP_INT, ADD_INT,
// COMP_INT_LT, PRINT_INT and RETURN).
func opHasImmediate(op Opcode) bool {
	switch op {
	case POP_INT, ADD_INT, COMP_INT_LT, PRINT_INT, RETURN:
		return false
	default:
		return true
	}
}

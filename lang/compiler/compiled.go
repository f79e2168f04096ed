package compiler

import "github.com/dolthub/swiss"

// Instruction is a single bytecode instruction, per spec.md §3.3: an
// opcode, a reserved byte (always 0 in the core) and a signed 16-bit
// immediate, used either as a literal value or as a jump/call offset
// relative to the instruction's own index.
type Instruction struct {
	Op Opcode
	P1 byte
	P2 int16
}

// FuncInfo is the symbol-table entry for one compiled function: its entry
// offset into the shared instruction buffer, its parameter count, and
// whether it leaves a value in the caller-reserved return slot.
type FuncInfo struct {
	Name             string
	Entry            int
	NumParams        int
	ReturnsSomething bool
}

// Program is the output of Compile: a single instruction buffer shared by
// every function, plus the symbol table Run uses to resolve "main".
type Program struct {
	Instructions []Instruction
	Functions    *swiss.Map[string, *FuncInfo]
	Order        []string // function names, in the order they were compiled
}

// Main looks up the entry point required by spec.md §7 ("missing main" is
// reported by the driver before execution).
func (p *Program) Main() (*FuncInfo, bool) {
	return p.Functions.Get("main")
}

package maincmd

import (
	"fmt"

	"github.com/nilstack/minic/lang/compiler"
	"github.com/nilstack/minic/lang/resolver"
)

// compileFile runs every phase up to and including codegen for the
// source file at path, the shared tail of the disasm and run commands.
func compileFile(path string) (*compiler.Program, error) {
	prog, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	rp, err := resolver.Resolve(prog)
	if err != nil {
		return nil, err
	}
	cp, err := compiler.Compile(rp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cp, nil
}

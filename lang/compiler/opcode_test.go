package compiler_test

import (
	"fmt"
	"testing"

	"github.com/nilstack/minic/lang/compiler"
	"github.com/stretchr/testify/require"
)

func TestOpcodeString(t *testing.T) {
	cases := []struct {
		op   compiler.Opcode
		want string
	}{
		{compiler.PUSH_INT, "PUSH_INT"},
		{compiler.POP_INT, "POP_INT"},
		{compiler.ADD_INT, "ADD_INT"},
		{compiler.COMP_INT_LT, "COMP_INT_LT"},
		{compiler.PRINT_INT, "PRINT_INT"},
		{compiler.LOAD_INT_BASEPOINTER_RELATIVE, "LOAD_INT_BASEPOINTER_RELATIVE"},
		{compiler.STORE_INT_BASEPOINTER_RELATIVE, "STORE_INT_BASEPOINTER_RELATIVE"},
		{compiler.JUMP_BY, "JUMP_BY"},
		{compiler.JUMP_BY_IF_ZERO, "JUMP_BY_IF_ZERO"},
		{compiler.CALL, "CALL"},
		{compiler.RETURN, "RETURN"},
	}
	for _, c := range cases {
		t.Run(c.want, func(t *testing.T) {
			require.Equal(t, c.want, c.op.String())
		})
	}
}

func TestOpcodeStringIllegal(t *testing.T) {
	bad := compiler.OpcodeMax + 1
	require.Equal(t, fmt.Sprintf("<illegal opcode %d>", bad), bad.String())
}

package compiler_test

import (
	"testing"

	"github.com/nilstack/minic/lang/compiler"
	"github.com/nilstack/minic/lang/parser"
	"github.com/nilstack/minic/lang/resolver"
	"github.com/stretchr/testify/require"
)

func TestDasmListsFunctionsInOrderWithEntries(t *testing.T) {
	prog, err := parser.ParseFile("t.myc", []byte(`
int32 alpha() { return 1; }
int32 main() { return alpha(); }`))
	require.NoError(t, err)
	rp, err := resolver.Resolve(prog)
	require.NoError(t, err)
	cp, err := compiler.Compile(rp)
	require.NoError(t, err)

	out, err := compiler.Dasm(cp)
	require.NoError(t, err)
	text := string(out)

	require.Contains(t, text, "function alpha(params=0 returns=true)")
	require.Contains(t, text, "function main(params=0 returns=true)")
	require.Contains(t, text, "RETURN")
	require.Contains(t, text, "CALL")

	alphaIdx := indexOf(text, "function alpha")
	mainIdx := indexOf(text, "function main")
	require.Less(t, alphaIdx, mainIdx, "Dasm should list functions in Order, alphabetically here")
}

func TestDasmOmitsImmediateForZeroOperandOps(t *testing.T) {
	prog, err := parser.ParseFile("t.myc", []byte(`int32 main() { return 1 + 2; }`))
	require.NoError(t, err)
	rp, err := resolver.Resolve(prog)
	require.NoError(t, err)
	cp, err := compiler.Compile(rp)
	require.NoError(t, err)

	out, err := compiler.Dasm(cp)
	require.NoError(t, err)
	text := string(out)

	require.Contains(t, text, "\tADD_INT\n")
	require.NotContains(t, text, "ADD_INT ")
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}

package compiler_test

import (
	"testing"

	"github.com/nilstack/minic/lang/compiler"
	"github.com/nilstack/minic/lang/parser"
	"github.com/nilstack/minic/lang/resolver"
	"github.com/stretchr/testify/require"
)

func mustCompileSrc(t *testing.T, src string) *compiler.Program {
	t.Helper()
	prog, err := parser.ParseFile("t.myc", []byte(src))
	require.NoError(t, err)
	rp, err := resolver.Resolve(prog)
	require.NoError(t, err)
	cp, err := compiler.Compile(rp)
	require.NoError(t, err)
	return cp
}

func TestCompileMissingMain(t *testing.T) {
	prog, err := parser.ParseFile("t.myc", []byte(`int32 notMain() { return 1; }`))
	require.NoError(t, err)
	rp, err := resolver.Resolve(prog)
	require.NoError(t, err)
	_, err = compiler.Compile(rp)
	require.Error(t, err)
	require.Contains(t, err.Error(), "main")
}

func TestCompileLiteralReturnEndsWithReturn(t *testing.T) {
	cp := mustCompileSrc(t, `int32 main() { return 42; }`)
	main, ok := cp.Main()
	require.True(t, ok)

	last := cp.Instructions[len(cp.Instructions)-1]
	require.Equal(t, compiler.RETURN, last.Op)

	// The body has no declared locals, so the epilogue is just the
	// back-patched jump target for "return" followed immediately by RETURN:
	// PUSH_INT 42, STORE_INT_BASEPOINTER_RELATIVE, JUMP_BY, RETURN.
	body := cp.Instructions[main.Entry:]
	require.Len(t, body, 4)
	require.Equal(t, compiler.PUSH_INT, body[0].Op)
	require.EqualValues(t, 42, body[0].P2)
	require.Equal(t, compiler.STORE_INT_BASEPOINTER_RELATIVE, body[1].Op)
	require.Equal(t, compiler.JUMP_BY, body[2].Op)
	require.Equal(t, compiler.RETURN, body[3].Op)
	// The back-patched jump must land exactly on the trailing RETURN.
	require.EqualValues(t, 1, body[2].P2)
}

func TestCompileFunctionsOrderedByName(t *testing.T) {
	cp := mustCompileSrc(t, `
int32 zeta() { return 1; }
int32 alpha() { return 2; }
int32 main() { return alpha() + zeta(); }`)
	require.Equal(t, []string{"alpha", "main", "zeta"}, cp.Order)
}

func TestCompileForwardCallResolvesEntry(t *testing.T) {
	// "main" is compiled before "zeta" (alphabetically earlier), so the CALL
	// to zeta must be patched in the deferred pass after every entry is known.
	cp := mustCompileSrc(t, `
int32 main() { return zeta(); }
int32 zeta() { return 9; }`)
	zeta, ok := cp.Functions.Get("zeta")
	require.True(t, ok)

	var call *compiler.Instruction
	var callIdx int
	for i, insn := range cp.Instructions {
		if insn.Op == compiler.CALL {
			call = &cp.Instructions[i]
			callIdx = i
			break
		}
	}
	require.NotNil(t, call)
	require.EqualValues(t, zeta.Entry-callIdx, call.P2)
}

func TestCompileIgnoredDeclarationDoesNotConsumeLocalSlot(t *testing.T) {
	// "skipped" is a non-INT32 declaration interleaved with a real local;
	// it must not get a PUSH_INT in the prologue, must not shift "x"'s
	// offset, and must not shift the epilogue's POP_INT count.
	cp := mustCompileSrc(t, `
int32 main() {
  double skipped;
  int32 x = 7;
  return x;
}`)
	main, ok := cp.Main()
	require.True(t, ok)

	body := cp.Instructions[main.Entry:]
	// PUSH_INT 7 (prologue for x only), LOAD_INT_BASEPOINTER_RELATIVE
	// (loads x for return), STORE_INT_BASEPOINTER_RELATIVE (return slot),
	// JUMP_BY, POP_INT (unwind x's one local), RETURN.
	require.Len(t, body, 6)
	require.Equal(t, compiler.PUSH_INT, body[0].Op)
	require.EqualValues(t, 7, body[0].P2)
	require.Equal(t, compiler.LOAD_INT_BASEPOINTER_RELATIVE, body[1].Op)
	require.EqualValues(t, 0, body[1].P2) // x sits at offset 0, not 1
	require.Equal(t, compiler.STORE_INT_BASEPOINTER_RELATIVE, body[2].Op)
	require.Equal(t, compiler.JUMP_BY, body[3].Op)
	require.Equal(t, compiler.POP_INT, body[4].Op)
	require.Equal(t, compiler.RETURN, body[5].Op)
}

func TestCompileVoidCallReservesNoReturnSlot(t *testing.T) {
	cp := mustCompileSrc(t, `
void shout(int32 n) { printNum(n); }
int32 main() { shout(1); return 0; }`)
	main, ok := cp.Main()
	require.True(t, ok)

	var callIdx int
	for i := main.Entry; i < len(cp.Instructions); i++ {
		if cp.Instructions[i].Op == compiler.CALL {
			callIdx = i
			break
		}
	}
	require.NotZero(t, callIdx)
	// Argument pushed right before CALL should be the argument itself (1),
	// not a reserved return slot pushed ahead of it: PUSH_INT 1, CALL.
	require.Equal(t, compiler.PUSH_INT, cp.Instructions[callIdx-1].Op)
	require.EqualValues(t, 1, cp.Instructions[callIdx-1].P2)
}

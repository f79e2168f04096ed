package machine_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/nilstack/minic/lang/compiler"
	"github.com/nilstack/minic/lang/machine"
	"github.com/nilstack/minic/lang/parser"
	"github.com/nilstack/minic/lang/resolver"
	"github.com/stretchr/testify/require"
)

func mustCompile(t *testing.T, src string) *compiler.Program {
	t.Helper()
	prog, err := parser.ParseFile("t.myc", []byte(src))
	require.NoError(t, err)
	rp, err := resolver.Resolve(prog)
	require.NoError(t, err)
	cp, err := compiler.Compile(rp)
	require.NoError(t, err)
	return cp
}

func runSrc(t *testing.T, src string, args ...int16) (int16, string) {
	t.Helper()
	cp := mustCompile(t, src)
	var out bytes.Buffer
	th := &machine.Thread{Stdout: &out}
	result, err := machine.Run(context.Background(), th, cp, args)
	require.NoError(t, err)
	return result, out.String()
}

func TestS1LiteralReturn(t *testing.T) {
	result, out := runSrc(t, `int32 main() { return 42; }`)
	require.Equal(t, int16(42), result)
	require.Empty(t, out)
}

func TestS2PrintAndReturn(t *testing.T) {
	result, out := runSrc(t, `
int32 main() {
  printNum(4000 + 1042);
  return 7;
}`)
	require.Equal(t, int16(7), result)
	require.Equal(t, "5042\n", out)
}

func TestS3WhileLoopCounting(t *testing.T) {
	result, out := runSrc(t, `
int32 main(int32 n) {
  int32 x = 0;
  while (x < n) {
    printNum(x);
    x = x + 1;
  }
  return x;
}`, 3)
	require.Equal(t, int16(3), result)
	require.Equal(t, "0\n1\n2\n", out)
}

func TestS4Recursion(t *testing.T) {
	// The grammar has no subtraction or unary minus, so recursion is
	// exercised by counting up to a bound instead of counting down; the
	// frame-balance property under test is the same either way.
	result, _ := runSrc(t, `
int32 count(int32 i, int32 n) {
  while (i < n) {
    return count(i + 1, n);
  }
  return i;
}
int32 main() { return count(0, 3); }`)
	require.Equal(t, int16(3), result)
}

func TestS5NestedCallReturningValue(t *testing.T) {
	result, _ := runSrc(t, `
int32 add3(int32 a, int32 b, int32 c) {
  return a + b + c;
}
int32 main() {
  return add3(1, 2, 4);
}`)
	require.Equal(t, int16(7), result)
}

func TestS6LessThanBranch(t *testing.T) {
	result, _ := runSrc(t, `
int32 main() {
  int32 r = 0;
  while (r < 1) {
    r = r + 1;
  }
  return r;
}`)
	require.Equal(t, int16(1), result)
}

func TestVoidFunctionCallDiscardsNothing(t *testing.T) {
	result, out := runSrc(t, `
void shout(int32 n) {
  printNum(n);
}
int32 main() {
  shout(9);
  return 1;
}`)
	require.Equal(t, int16(1), result)
	require.Equal(t, "9\n", out)
}

func TestMaxStepsHalts(t *testing.T) {
	cp := mustCompile(t, `
int32 main() {
  int32 x = 0;
  while (x < 1000) {
    x = x + 1;
  }
  return x;
}`)
	th := &machine.Thread{MaxSteps: 5}
	_, err := machine.Run(context.Background(), th, cp, nil)
	require.Error(t, err)
}

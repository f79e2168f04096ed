package parser_test

import (
	"testing"

	"github.com/nilstack/minic/lang/ast"
	"github.com/nilstack/minic/lang/parser"
	"github.com/stretchr/testify/require"
)

func TestParseLiteralReturn(t *testing.T) {
	src := `int32 main() { return 42; }`
	prog, err := parser.ParseFile("t.myc", []byte(src))
	require.NoError(t, err)

	main, ok := prog.Functions["main"]
	require.True(t, ok)
	require.True(t, main.ReturnsSomething)
	require.Len(t, main.Body, 1)

	call := main.Body[0]
	require.Equal(t, ast.FUNCTION_CALL, call.Kind)
	require.Equal(t, "return", call.Name)
	require.Len(t, call.Children, 1)
	require.Equal(t, ast.LITERAL, call.Children[0].Kind)
	require.Equal(t, "42", call.Children[0].Name)
}

func TestParseWhileLoop(t *testing.T) {
	src := `
int32 main(int32 n) {
  int32 x = 0;
  while (x < n) {
    printNum(x);
    x = x + 1;
  }
  return x;
}`
	prog, err := parser.ParseFile("t.myc", []byte(src))
	require.NoError(t, err)

	main := prog.Functions["main"]
	require.Len(t, main.Params, 1)
	require.Equal(t, "n", main.Params[0].Name)
	require.Equal(t, ast.INT32, main.Params[0].Type)

	require.Len(t, main.Body, 3)
	require.Equal(t, ast.VARIABLE_DECLARATION, main.Body[0].Kind)

	loop := main.Body[1]
	require.Equal(t, ast.WHILE_LOOP, loop.Kind)
	require.Equal(t, ast.OPERATOR_CALL, loop.Children[0].Kind)
	require.Equal(t, "<", loop.Children[0].Name)
	require.Len(t, loop.Children, 3) // cond, printNum(x), x = x + 1
}

func TestParseReturnOfParenthesizedCallStillWorks(t *testing.T) {
	// "return" only special-cases the bare keyword form; return(expr) must
	// still parse via the ordinary call path to the same effect.
	src := `int32 main() { return(9); }`
	prog, err := parser.ParseFile("t.myc", []byte(src))
	require.NoError(t, err)

	call := prog.Functions["main"].Body[0]
	require.Equal(t, ast.FUNCTION_CALL, call.Kind)
	require.Equal(t, "return", call.Name)
	require.Len(t, call.Children, 1)
}

func TestParseErrorReported(t *testing.T) {
	_, err := parser.ParseFile("t.myc", []byte(`int32 main( { return 1; }`))
	require.Error(t, err)
}

func TestParseMultipleFunctions(t *testing.T) {
	src := `
int32 add3(int32 a, int32 b, int32 c) {
  return a + b + c;
}
int32 main() {
  return add3(1, 2, 4);
}`
	prog, err := parser.ParseFile("t.myc", []byte(src))
	require.NoError(t, err)
	require.Len(t, prog.Functions, 2)
	require.Contains(t, prog.Functions, "add3")
	require.Contains(t, prog.Functions, "main")
}

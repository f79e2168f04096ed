package token_test

import (
	"testing"

	"github.com/nilstack/minic/lang/token"
	"github.com/stretchr/testify/require"
)

func TestFilePosition(t *testing.T) {
	line1 := "int32 main() {"
	line2 := "  return 1;"
	src := []byte(line1 + "\n" + line2 + "\n}\n")
	f := token.NewFile("test.myc", src)

	// index of the 'r' in "return", on line 2
	idx := len(line1) + 1 + 2
	got := f.Position(token.Pos(idx))
	require.Equal(t, 2, got.Line)
	require.Equal(t, 3, got.Col)
	require.Equal(t, "test.myc", got.Filename)
}

func TestInvalidPosition(t *testing.T) {
	var f *token.File
	require.False(t, f.Position(0).IsValid())
}

package token_test

import (
	"testing"

	"github.com/nilstack/minic/lang/token"
	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	for tok := token.ILLEGAL; tok <= token.ASSIGN; tok++ {
		s := tok.String()
		require.NotContains(t, s, "illegal token")
	}
}

func TestLookup(t *testing.T) {
	cases := []struct {
		in   string
		want token.Token
	}{
		{"int32", token.INT32},
		{"while", token.WHILE},
		{"struct", token.STRUCT},
		{"x", token.IDENT},
		{"printNum", token.IDENT},
	}
	for _, c := range cases {
		require.Equal(t, c.want, token.Lookup(c.in), c.in)
	}
}

func TestIsType(t *testing.T) {
	require.True(t, token.INT32.IsType())
	require.False(t, token.WHILE.IsType())
	require.False(t, token.IDENT.IsType())
}

package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	for key, val := range keywords {
		require.Equal(t, val, LookupIdentifier(key))
		// Keywords are case sensitive.
		require.Equal(t, Type(IDENT), LookupIdentifier(strings.ToUpper(key)))
	}
}

func TestPosition(t *testing.T) {
	tok := Token{
		Type:    IDENT,
		Literal: "foo",
		StartPosition: Position{
			Line:   2,
			Column: 0,
		},
	}
	require.Equal(t, 3, tok.StartPosition.LineNumber())
	require.Equal(t, 1, tok.StartPosition.ColumnNumber())
	require.True(t, tok.StartPosition.IsValid())
	require.False(t, NoPos.IsValid())

	adv := tok.StartPosition.Advance(3)
	require.Equal(t, 3, adv.Column)
	require.Equal(t, 3, adv.Char)
}

package lexer

import (
	"testing"

	"github.com/deepnoodle-ai/qmlc/internal/token"
	"github.com/stretchr/testify/require"
)

type expectedToken struct {
	typ     token.Type
	literal string
}

func lexAll(t *testing.T, input string) []expectedToken {
	t.Helper()
	l := New(input)
	var result []expectedToken
	for {
		tok, err := l.Next()
		require.Nil(t, err)
		result = append(result, expectedToken{tok.Type, tok.Literal})
		if tok.Type == token.EOF {
			return result
		}
	}
}

func TestOperators(t *testing.T) {
	got := lexAll(t, "= == === ! != !== < <= > >= && & || | + - * / % ? : . , ; ( ) { } [ ]")
	want := []expectedToken{
		{token.ASSIGN, "="},
		{token.EQ, "=="},
		{token.STRICT_EQ, "==="},
		{token.BANG, "!"},
		{token.NOT_EQ, "!="},
		{token.STRICT_NE, "!=="},
		{token.LT, "<"},
		{token.LT_EQUALS, "<="},
		{token.GT, ">"},
		{token.GT_EQUALS, ">="},
		{token.AND, "&&"},
		{token.BITAND, "&"},
		{token.OR, "||"},
		{token.BITOR, "|"},
		{token.PLUS, "+"},
		{token.MINUS, "-"},
		{token.ASTERISK, "*"},
		{token.SLASH, "/"},
		{token.MOD, "%"},
		{token.QUESTION, "?"},
		{token.COLON, ":"},
		{token.PERIOD, "."},
		{token.COMMA, ","},
		{token.SEMICOLON, ";"},
		{token.LPAREN, "("},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.RBRACE, "}"},
		{token.LBRACKET, "["},
		{token.RBRACKET, "]"},
		{token.EOF, ""},
	}
	require.Equal(t, want, got)
}

func TestLiterals(t *testing.T) {
	got := lexAll(t, `qsTr("Hello") 'it\'s' 42 0x1F 3.5 .25 1e3 true null undefined`)
	want := []expectedToken{
		{token.IDENT, "qsTr"},
		{token.LPAREN, "("},
		{token.STRING, "Hello"},
		{token.RPAREN, ")"},
		{token.STRING, "it's"},
		{token.INT, "42"},
		{token.INT, "0x1F"},
		{token.FLOAT, "3.5"},
		{token.FLOAT, ".25"},
		{token.FLOAT, "1e3"},
		{token.TRUE, "true"},
		{token.NULL, "null"},
		{token.UNDEFINED, "undefined"},
		{token.EOF, ""},
	}
	require.Equal(t, want, got)
}

func TestComments(t *testing.T) {
	got := lexAll(t, "a // line\n/* block\n comment */ b")
	require.Equal(t, []expectedToken{
		{token.IDENT, "a"},
		{token.IDENT, "b"},
		{token.EOF, ""},
	}, got)
}

func TestPositions(t *testing.T) {
	l := New("foo\n  bar", WithFilename("main.qml"), WithOffset(4, 10))
	tok, err := l.Next()
	require.Nil(t, err)
	require.Equal(t, 4, tok.StartPosition.Line)
	require.Equal(t, 10, tok.StartPosition.Column)
	require.Equal(t, "main.qml", tok.StartPosition.File)

	tok, err = l.Next()
	require.Nil(t, err)
	require.Equal(t, "bar", tok.Literal)
	require.Equal(t, 5, tok.StartPosition.Line)
	require.Equal(t, 2, tok.StartPosition.Column)
	require.Equal(t, "  bar", l.GetLineText(tok))
}

func TestErrors(t *testing.T) {
	tests := []struct {
		input  string
		errMsg string
	}{
		{`"abc`, "syntax error: unterminated string literal"},
		{"/* abc", "syntax error: unterminated comment"},
		{"#", "syntax error: unexpected character '#'"},
		{"12abc", `syntax error: invalid number "12a"`},
		{"1e+", `syntax error: invalid exponent in "1e+"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := New(tt.input)
			_, err := l.Next()
			require.NotNil(t, err)
			require.Equal(t, tt.errMsg, err.Error())
		})
	}
}

package parser

import (
	"context"
	"testing"

	"github.com/deepnoodle-ai/qmlc/ast"
	"github.com/deepnoodle-ai/qmlc/errors"
	"github.com/stretchr/testify/require"
)

func parseOK(t *testing.T, input string) *ast.Program {
	t.Helper()
	program, err := Parse(context.Background(), input)
	require.Nil(t, err)
	require.NotNil(t, program)
	return program
}

func TestExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`qsTr("Hello")`, `qsTr("Hello")`},
		{`qsTr("Hello") + "!"`, `(qsTr("Hello") + "!")`},
		{`parent.width / 2 - 4`, `((parent.width / 2) - 4)`},
		{`a || b && c`, `(a || (b && c))`},
		{`!visible`, `(!visible)`},
		{`-x * 3`, `((-x) * 3)`},
		{`a ? b : c ? d : e`, `(a ? b : (c ? d : e))`},
		{`model[index].name`, `model[index].name`},
		{`console.log(mouse.x)`, `console.log(mouse.x)`},
		{`x = y = 3`, `x = y = 3`},
		{`[1, 2, 3,]`, `[1, 2, 3]`},
		{`({a: 1, "b": true})`, `{"a": 1, "b": true}`},
		{`a === null || b !== undefined`, `((a === null) || (b !== undefined))`},
		{`Qt.AlignLeft | Qt.AlignTop`, `(Qt.AlignLeft | Qt.AlignTop)`},
		{`(function(a, b) { return a })`, `function(a, b) { return a }`},
		{`0x10 + 1.5e2`, `(0x10 + 1.5e2)`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			program := parseOK(t, tt.input)
			require.Len(t, program.Stmts, 1)
			require.Equal(t, tt.expected, program.Stmts[0].String())
		})
	}
}

func TestStatements(t *testing.T) {
	program := parseOK(t, `
var total = 0
let n = 2; const m = 3
if (n > 1) {
    total = n * m
} else if (n == 0) return
else total = -1
function helper(a) { return a + 1 }
total`)
	require.Len(t, program.Stmts, 6)
	require.IsType(t, &ast.Var{}, program.Stmts[0])
	require.IsType(t, &ast.Var{}, program.Stmts[1])
	require.IsType(t, &ast.Var{}, program.Stmts[2])
	ifStmt, ok := program.Stmts[3].(*ast.If)
	require.True(t, ok)
	elseIf, ok := ifStmt.Alternative.(*ast.If)
	require.True(t, ok)
	require.IsType(t, &ast.Return{}, elseIf.Consequence.Stmts[0])
	require.NotNil(t, elseIf.Alternative)
	fn, ok := program.Stmts[4].(*ast.Func)
	require.True(t, ok)
	require.Equal(t, "helper", fn.Name.Name)
	require.Equal(t, []string{"a"}, fn.ParamNames())
	require.IsType(t, &ast.Ident{}, program.Stmts[5])
}

func TestBlockBinding(t *testing.T) {
	program := parseOK(t, "{ if (a) return 1; return 2 }")
	block, ok := program.First().(*ast.Block)
	require.True(t, ok)
	require.Len(t, block.Stmts, 2)
}

func TestPositions(t *testing.T) {
	program, err := Parse(context.Background(), "foo(\n  bar)", WithFilename("Main.qml"), WithOffset(9, 12))
	require.Nil(t, err)
	call := program.First().(*ast.Call)
	require.Equal(t, 9, call.Pos().Line)
	require.Equal(t, 12, call.Pos().Column)
	require.Equal(t, 10, call.Args[0].Pos().Line)
	require.Equal(t, "Main.qml", call.Pos().File)
}

func TestErrors(t *testing.T) {
	tests := []struct {
		input  string
		errMsg string
		line   int
		column int
	}{
		{"a b", `syntax error: unexpected "b" following statement`, 1, 3},
		{"foo(", `syntax error: unexpected end of input`, 1, 5},
		{"a + = 2", `syntax error: unexpected "="`, 1, 5},
		{"1 = 2", `syntax error: invalid assignment target`, 1, 3},
		{"if (a { }", `syntax error: unexpected "{" while parsing if statement (expected ))`, 1, 7},
		{"const x", `syntax error: missing initializer in const declaration`, 1, 8},
		{"{ a", `syntax error: unterminated block statement`, 1, 4},
		{`"abc`, `syntax error: unterminated string literal`, 1, 1},
		{"function (a b) {}", `syntax error: unexpected "b" in parameter list`, 1, 13},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(context.Background(), tt.input)
			require.NotNil(t, err)
			var ce *errors.CompileError
			require.True(t, errors.As(err, &ce))
			require.Equal(t, errors.E4001, ce.Code)
			require.Equal(t, tt.errMsg, ce.Message)
			require.Equal(t, tt.line, ce.Line)
			require.Equal(t, tt.column, ce.Column)
		})
	}
}

func TestMaxDepth(t *testing.T) {
	input := ""
	for i := 0; i < 50; i++ {
		input += "("
	}
	_, err := Parse(context.Background(), input+"1", WithMaxDepth(20))
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "maximum nesting depth exceeded")
}

func TestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Parse(ctx, "a")
	require.ErrorIs(t, err, context.Canceled)
}

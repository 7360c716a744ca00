package dis

import (
	"bytes"
	"strings"
	"testing"

	"github.com/deepnoodle-ai/qmlc/bytecode"
	"github.com/deepnoodle-ai/qmlc/op"
	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

func disableColor(t *testing.T) {
	saved := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = saved })
}

func TestDisassemblyListing(t *testing.T) {
	disableColor(t)
	code := bytecode.NewCode(bytecode.CodeParams{
		Name: "text",
		Instructions: []op.Code{
			op.LoadConst, 0,
			op.PopTop,
			op.LoadName, 0,
			op.LoadConst, 1,
			op.Call, 1,
			op.ReturnValue,
		},
		Constants: []any{int64(42), "kaboom"},
		Names:     []string{"qsTr"},
	})
	instructions, err := Disassemble(code)
	require.Nil(t, err)
	require.Len(t, instructions, 6)
	require.Equal(t, 3, instructions[2].Offset)
	require.Equal(t, "qsTr", instructions[2].Annotation)

	var buf bytes.Buffer
	Print(instructions, &buf)

	expected := strings.TrimSpace(`
+--------+--------------+----------+----------+
| OFFSET |    OPCODE    | OPERANDS |   INFO   |
+--------+--------------+----------+----------+
|      0 | LOAD_CONST   |        0 | 42       |
|      2 | POP_TOP      |          |          |
|      3 | LOAD_NAME    |        0 | qsTr     |
|      5 | LOAD_CONST   |        1 | "kaboom" |
|      7 | CALL         |        1 |          |
|      9 | RETURN_VALUE |          |          |
+--------+--------------+----------+----------+
`)
	require.Equal(t, expected+"\n", buf.String())
}

func TestDisassemblyAnnotations(t *testing.T) {
	code := bytecode.NewCode(bytecode.CodeParams{
		Instructions: []op.Code{
			op.LoadIdObject, 2,
			op.LoadScopeProperty, 5,
			op.LoadContextProperty, 1,
			op.BinaryOp, op.Code(op.Add),
			op.PopJumpForwardIfFalse, 4,
			op.LoadFast, 0,
			op.LoadClosure, 3, 0,
			op.ReturnValue,
		},
		LocalCount: 1,
		LocalNames: []string{"mouse"},
	})
	instructions, err := Disassemble(code)
	require.Nil(t, err)
	var annotations []string
	for _, instr := range instructions {
		annotations = append(annotations, instr.Annotation)
	}
	require.Equal(t, []string{
		"object 2", "scope.5", "context.1", "+", "to 12", "mouse", "func:3", "",
	}, annotations)
}

func TestDisassemblyErrors(t *testing.T) {
	tests := []struct {
		name         string
		instructions []op.Code
		err          string
	}{
		{"constant", []op.Code{op.LoadConst, 3}, "constant index out of range: 3"},
		{"name", []op.Code{op.LoadName, 1}, "name index out of range: 1"},
		{"local", []op.Code{op.LoadFast, 0}, "local variable index out of range: 0"},
		{"opcode", []op.Code{op.Code(250)}, "unknown opcode 250 at offset 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Disassemble(bytecode.NewCode(bytecode.CodeParams{Instructions: tt.instructions}))
			require.Error(t, err)
			require.Equal(t, tt.err, err.Error())
		})
	}
}

func TestPrintFunction(t *testing.T) {
	disableColor(t)
	fn := bytecode.NewFunction(bytecode.FunctionParams{
		Name:       "onClicked",
		Kind:       bytecode.KindSignalHandler,
		Parameters: []string{"mouse"},
		Code: bytecode.NewCode(bytecode.CodeParams{
			Instructions: []op.Code{op.Undefined, op.ReturnValue},
		}),
	})
	var buf bytes.Buffer
	require.Nil(t, PrintFunction(fn, &buf))
	require.True(t, strings.HasPrefix(buf.String(), "handler onClicked (1 params)\n+"))
	require.Contains(t, buf.String(), "| UNDEFINED")
}

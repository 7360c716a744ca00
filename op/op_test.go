package op

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo(LoadClosure)
	require.Equal(t, "LOAD_CLOSURE", info.Name)
	require.Equal(t, 2, info.OperandCount)
	require.Equal(t, LoadClosure, info.Code)
}

func TestGetInfoAllOpcodes(t *testing.T) {
	tests := []struct {
		code     Code
		name     string
		operands int
	}{
		{Nop, "NOP", 0},
		{Call, "CALL", 1},
		{ReturnValue, "RETURN_VALUE", 0},
		{JumpForward, "JUMP_FORWARD", 1},
		{PopJumpForwardIfFalse, "POP_JUMP_FORWARD_IF_FALSE", 1},
		{PopJumpForwardIfTrue, "POP_JUMP_FORWARD_IF_TRUE", 1},
		{LoadAttr, "LOAD_ATTR", 1},
		{LoadFast, "LOAD_FAST", 1},
		{LoadFree, "LOAD_FREE", 1},
		{LoadName, "LOAD_NAME", 1},
		{LoadConst, "LOAD_CONST", 1},
		{LoadIdObject, "LOAD_ID_OBJECT", 1},
		{LoadScopeProperty, "LOAD_SCOPE_PROPERTY", 1},
		{LoadContextProperty, "LOAD_CONTEXT_PROPERTY", 1},
		{StoreAttr, "STORE_ATTR", 1},
		{StoreFast, "STORE_FAST", 1},
		{StoreFree, "STORE_FREE", 1},
		{StoreName, "STORE_NAME", 1},
		{StoreScopeProperty, "STORE_SCOPE_PROPERTY", 1},
		{StoreContextProperty, "STORE_CONTEXT_PROPERTY", 1},
		{BinaryOp, "BINARY_OP", 1},
		{CompareOp, "COMPARE_OP", 1},
		{UnaryNegative, "UNARY_NEGATIVE", 0},
		{UnaryNot, "UNARY_NOT", 0},
		{UnaryPlus, "UNARY_PLUS", 0},
		{BuildList, "BUILD_LIST", 1},
		{BuildMap, "BUILD_MAP", 1},
		{BinarySubscr, "BINARY_SUBSCR", 0},
		{StoreSubscr, "STORE_SUBSCR", 0},
		{Swap, "SWAP", 1},
		{Copy, "COPY", 1},
		{PopTop, "POP_TOP", 0},
		{Null, "NULL", 0},
		{False, "FALSE", 0},
		{True, "TRUE", 0},
		{Undefined, "UNDEFINED", 0},
		{LoadClosure, "LOAD_CLOSURE", 2},
		{MakeCell, "MAKE_CELL", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := GetInfo(tt.code)
			require.Equal(t, tt.code, info.Code)
			require.Equal(t, tt.name, info.Name)
			require.Equal(t, tt.operands, info.OperandCount)
		})
	}
}

func TestGetInfoInvalid(t *testing.T) {
	require.Equal(t, Info{}, GetInfo(Invalid))
	require.Equal(t, Info{}, GetInfo(Code(1000)))
}

func TestIsJump(t *testing.T) {
	require.True(t, IsJump(JumpForward))
	require.True(t, IsJump(PopJumpForwardIfTrue))
	require.False(t, IsJump(ReturnValue))
	require.False(t, IsJump(LoadClosure))
}

func TestBinaryOpTypeString(t *testing.T) {
	tests := []struct {
		op   BinaryOpType
		want string
	}{
		{Add, "+"},
		{Subtract, "-"},
		{Multiply, "*"},
		{Divide, "/"},
		{Modulo, "%"},
		{BitwiseAnd, "&"},
		{BitwiseOr, "|"},
		{BinaryOpType(255), ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.op.String())
	}
}

func TestCompareOpTypeString(t *testing.T) {
	tests := []struct {
		op   CompareOpType
		want string
	}{
		{LessThan, "<"},
		{LessThanOrEqual, "<="},
		{Equal, "=="},
		{NotEqual, "!="},
		{GreaterThan, ">"},
		{GreaterThanOrEqual, ">="},
		{StrictEqual, "==="},
		{StrictNotEqual, "!=="},
		{CompareOpType(255), ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.op.String())
	}
}

// Package op defines the opcodes of compiled binding expressions and
// functions.
package op

// Code is an integer opcode that indicates an operation to execute.
type Code uint16

const (
	Invalid Code = 0

	// Execution
	Nop         Code = 1
	Call        Code = 3
	ReturnValue Code = 4

	// Jump
	JumpForward           Code = 11
	PopJumpForwardIfFalse Code = 12
	PopJumpForwardIfTrue  Code = 13

	// Load
	LoadAttr  Code = 20
	LoadFast  Code = 21
	LoadFree  Code = 22
	LoadName  Code = 23 // Global or runtime scope lookup by name
	LoadConst Code = 24
	// LoadIdObject pushes the object with the given id of the enclosing
	// component.
	LoadIdObject Code = 25
	// LoadScopeProperty and LoadContextProperty read a property of the
	// scope object or the component root by core index.
	LoadScopeProperty   Code = 26
	LoadContextProperty Code = 27

	// Store
	StoreAttr            Code = 30
	StoreFast            Code = 31
	StoreFree            Code = 32
	StoreName            Code = 33
	StoreScopeProperty   Code = 34
	StoreContextProperty Code = 35

	// Operations
	BinaryOp      Code = 40
	CompareOp     Code = 41
	UnaryNegative Code = 42
	UnaryNot      Code = 43
	UnaryPlus     Code = 44

	// Build
	BuildList Code = 50
	BuildMap  Code = 51

	// Containers
	BinarySubscr Code = 60
	StoreSubscr  Code = 61

	// Stack
	Swap   Code = 70
	Copy   Code = 71
	PopTop Code = 72

	// Push constants
	Null      Code = 80
	False     Code = 81
	True      Code = 82
	Undefined Code = 83

	// Closures
	LoadClosure Code = 120 // operands: function table index, free count
	MakeCell    Code = 121
)

// BinaryOpType describes a type of binary operation, as in an operation that
// takes two operands. For example, addition, subtraction, multiplication, etc.
type BinaryOpType uint16

const (
	Add        BinaryOpType = 1
	Subtract   BinaryOpType = 2
	Multiply   BinaryOpType = 3
	Divide     BinaryOpType = 4
	Modulo     BinaryOpType = 5
	BitwiseAnd BinaryOpType = 12
	BitwiseOr  BinaryOpType = 13
)

// String returns a string representation of the binary operation.
// For example "+" for addition.
func (bop BinaryOpType) String() string {
	switch bop {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	case Modulo:
		return "%"
	case BitwiseAnd:
		return "&"
	case BitwiseOr:
		return "|"
	default:
		return ""
	}
}

// CompareOpType describes a type of comparison operation. For example, less
// than, greater than, equal, etc.
type CompareOpType uint16

const (
	LessThan           CompareOpType = 1
	LessThanOrEqual    CompareOpType = 2
	Equal              CompareOpType = 3
	NotEqual           CompareOpType = 4
	GreaterThan        CompareOpType = 5
	GreaterThanOrEqual CompareOpType = 6
	StrictEqual        CompareOpType = 7
	StrictNotEqual     CompareOpType = 8
)

// String returns a string representation of the comparison operation.
// For example "<" for less than.
func (cop CompareOpType) String() string {
	switch cop {
	case LessThan:
		return "<"
	case LessThanOrEqual:
		return "<="
	case Equal:
		return "=="
	case NotEqual:
		return "!="
	case GreaterThan:
		return ">"
	case GreaterThanOrEqual:
		return ">="
	case StrictEqual:
		return "==="
	case StrictNotEqual:
		return "!=="
	default:
		return ""
	}
}

// Info contains information about an opcode.
type Info struct {
	Code         Code
	Name         string
	OperandCount int
}

var infos = make([]Info, 256)

func init() {
	type opInfo struct {
		op    Code
		name  string
		count int
	}
	ops := []opInfo{
		{BinaryOp, "BINARY_OP", 1},
		{BinarySubscr, "BINARY_SUBSCR", 0},
		{BuildList, "BUILD_LIST", 1},
		{BuildMap, "BUILD_MAP", 1},
		{Call, "CALL", 1},
		{CompareOp, "COMPARE_OP", 1},
		{Copy, "COPY", 1},
		{False, "FALSE", 0},
		{JumpForward, "JUMP_FORWARD", 1},
		{LoadAttr, "LOAD_ATTR", 1},
		{LoadClosure, "LOAD_CLOSURE", 2},
		{LoadConst, "LOAD_CONST", 1},
		{LoadContextProperty, "LOAD_CONTEXT_PROPERTY", 1},
		{LoadFast, "LOAD_FAST", 1},
		{LoadFree, "LOAD_FREE", 1},
		{LoadIdObject, "LOAD_ID_OBJECT", 1},
		{LoadName, "LOAD_NAME", 1},
		{LoadScopeProperty, "LOAD_SCOPE_PROPERTY", 1},
		{MakeCell, "MAKE_CELL", 2},
		{Nop, "NOP", 0},
		{Null, "NULL", 0},
		{PopJumpForwardIfFalse, "POP_JUMP_FORWARD_IF_FALSE", 1},
		{PopJumpForwardIfTrue, "POP_JUMP_FORWARD_IF_TRUE", 1},
		{PopTop, "POP_TOP", 0},
		{ReturnValue, "RETURN_VALUE", 0},
		{StoreAttr, "STORE_ATTR", 1},
		{StoreContextProperty, "STORE_CONTEXT_PROPERTY", 1},
		{StoreFast, "STORE_FAST", 1},
		{StoreFree, "STORE_FREE", 1},
		{StoreName, "STORE_NAME", 1},
		{StoreScopeProperty, "STORE_SCOPE_PROPERTY", 1},
		{StoreSubscr, "STORE_SUBSCR", 0},
		{Swap, "SWAP", 1},
		{True, "TRUE", 0},
		{UnaryNegative, "UNARY_NEGATIVE", 0},
		{UnaryNot, "UNARY_NOT", 0},
		{UnaryPlus, "UNARY_PLUS", 0},
		{Undefined, "UNDEFINED", 0},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Name:         o.name,
			Code:         o.op,
			OperandCount: o.count,
		}
	}
}

// GetInfo returns information about the given opcode.
func GetInfo(op Code) Info {
	if int(op) >= len(infos) {
		return Info{}
	}
	return infos[op]
}

// IsJump reports whether the opcode transfers control to a relative target.
func IsJump(code Code) bool {
	switch code {
	case JumpForward, PopJumpForwardIfFalse, PopJumpForwardIfTrue:
		return true
	}
	return false
}

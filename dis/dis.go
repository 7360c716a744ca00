// Package dis disassembles compiled binding and function bytecode into a
// readable listing. It works with the opcodes defined in the `op` package
// and the InstructionIter type from the `bytecode` package.
package dis

import (
	"fmt"
	"io"
	"strings"

	"github.com/deepnoodle-ai/qmlc/bytecode"
	"github.com/deepnoodle-ai/qmlc/internal/table"
	"github.com/deepnoodle-ai/qmlc/op"
	"github.com/fatih/color"
)

// Instruction represents a single bytecode instruction and its operands.
type Instruction struct {
	Offset     int
	Name       string
	Opcode     op.Code
	Operands   []op.Code
	Annotation string
	Constant   any
}

// Disassemble returns a parsed representation of the given bytecode.
func Disassemble(code *bytecode.Code) ([]Instruction, error) {
	var instructions []Instruction
	iter := bytecode.NewInstructionIter(code)
	for {
		val, ok := iter.Next()
		if !ok {
			break
		}
		var err error
		info := op.GetInfo(val[0])
		var constant any
		var annotation string
		switch val[0] {
		case op.LoadFast, op.StoreFast:
			annotation, err = getLocalVariableName(code, int(val[1]))
		case op.LoadName, op.StoreName, op.LoadAttr, op.StoreAttr:
			annotation, err = getName(code, int(val[1]))
		case op.LoadIdObject:
			annotation = fmt.Sprintf("object %d", val[1])
		case op.LoadScopeProperty, op.StoreScopeProperty:
			annotation = fmt.Sprintf("scope.%d", val[1])
		case op.LoadContextProperty, op.StoreContextProperty:
			annotation = fmt.Sprintf("context.%d", val[1])
		case op.LoadClosure:
			annotation = fmt.Sprintf("func:%d", val[1])
		case op.BinaryOp:
			annotation = op.BinaryOpType(val[1]).String()
		case op.CompareOp:
			annotation = op.CompareOpType(val[1]).String()
		case op.JumpForward, op.PopJumpForwardIfFalse, op.PopJumpForwardIfTrue:
			annotation = fmt.Sprintf("to %d", iter.Offset()+int(val[1]))
		case op.LoadConst:
			constant, err = getConstantValue(code, int(val[1]))
			annotation = fmt.Sprintf("%v", constant)
		}
		if err != nil {
			return nil, err
		}
		if info.Name == "" {
			return nil, fmt.Errorf("unknown opcode %d at offset %d", val[0], iter.Offset())
		}
		instructions = append(instructions, Instruction{
			Offset:     iter.Offset(),
			Name:       info.Name,
			Opcode:     val[0],
			Operands:   val[1:],
			Annotation: annotation,
			Constant:   constant,
		})
	}
	return instructions, nil
}

var (
	bold    = color.New(color.Bold).SprintFunc()
	italic  = color.New(color.Italic).SprintFunc()
	yellow  = color.New(color.FgYellow).SprintFunc()
	green   = color.New(color.FgGreen).SprintFunc()
	magenta = color.New(color.FgMagenta).SprintFunc()
	cyan    = color.New(color.FgHiCyan).SprintFunc()
)

// Print a string representation of the given instructions to the given writer.
func Print(instructions []Instruction, writer io.Writer) {
	var lines [][]string
	for _, instr := range instructions {
		var values []string
		values = append(values, fmt.Sprintf("%d", instr.Offset))
		values = append(values, bold(instr.Name))
		values = append(values, formatOperands(instr.Operands))
		if instr.Constant != nil {
			switch c := instr.Constant.(type) {
			case int64:
				values = append(values, yellow(fmt.Sprintf("%d", c)))
			case float64:
				values = append(values, yellow(fmt.Sprintf("%g", c)))
			case string:
				if len(c) > 80 {
					c = c[:77] + "..."
				}
				values = append(values, green(fmt.Sprintf("%q", c)))
			case *bytecode.Function:
				name := c.Name()
				if name == "" {
					name = italic("<anonymous>")
				}
				values = append(values, magenta(fmt.Sprintf("func:%s", name)))
			default:
				values = append(values, bold(fmt.Sprintf("%v", c)))
			}
		} else if instr.Annotation != "" {
			values = append(values, cyan(instr.Annotation))
		} else {
			values = append(values, "")
		}
		lines = append(lines, values)
	}

	table.NewTable(writer).
		WithHeader([]string{"OFFSET", "OPCODE", "OPERANDS", "INFO"}).
		WithColumnAlignment([]table.Alignment{
			table.AlignRight,
			table.AlignLeft,
			table.AlignRight,
			table.AlignLeft,
		}).
		WithHeaderAlignment([]table.Alignment{
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
		}).
		WithRows(lines).
		Render()
}

// PrintFunction writes a heading for fn followed by its instruction listing.
func PrintFunction(fn *bytecode.Function, writer io.Writer) error {
	instructions, err := Disassemble(fn.Code())
	if err != nil {
		return fmt.Errorf("%s: %w", fn.Name(), err)
	}
	fmt.Fprintf(writer, "%s %s (%d params)\n", fn.Kind(), fn.Name(), fn.ParameterCount())
	Print(instructions, writer)
	return nil
}

func formatOperands(ops []op.Code) string {
	var sb strings.Builder
	for i, op := range ops {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%d", op))
	}
	return sb.String()
}

func getLocalVariableName(code *bytecode.Code, index int) (string, error) {
	if code.LocalCount() <= index {
		return "", fmt.Errorf("local variable index out of range: %d", index)
	}
	if name := code.LocalNameAt(index); name != "" {
		return name, nil
	}
	return fmt.Sprintf("local_%d", index), nil
}

func getConstantValue(code *bytecode.Code, index int) (any, error) {
	if code.ConstantCount() <= index {
		return "", fmt.Errorf("constant index out of range: %d", index)
	}
	return code.ConstantAt(index), nil
}

func getName(code *bytecode.Code, index int) (string, error) {
	if code.NameCount() <= index {
		return "", fmt.Errorf("name index out of range: %d", index)
	}
	return code.NameAt(index), nil
}

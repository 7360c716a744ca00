package codegen

import (
	"fmt"
	"math"

	"github.com/deepnoodle-ai/qmlc/bytecode"
	"github.com/deepnoodle-ai/qmlc/internal/token"
	"github.com/deepnoodle-ai/qmlc/op"
)

// code accumulates the instructions of one function while it is compiled.
type code struct {
	name         string
	parent       *code
	symbols      *SymbolTable
	instructions []op.Code
	constants    []any
	names        []string
	nameIndex    map[string]uint16
	locations    []bytecode.SourceLocation
	maxCallArgs  int
	source       string
}

func newCode(name, source string, parent *code, symbols *SymbolTable) *code {
	return &code{
		name:      name,
		parent:    parent,
		symbols:   symbols,
		nameIndex: map[string]uint16{},
		source:    source,
	}
}

// function returns the table of the function the code belongs to,
// skipping any blocks currently open.
func (c *code) function() *SymbolTable {
	t := c.symbols
	for t.isBlock {
		t = t.parent
	}
	return t
}

func (c *code) emit(pos token.Position, opcode op.Code, operands ...uint16) int {
	info := op.GetInfo(opcode)
	if len(operands) != info.OperandCount {
		panic(fmt.Sprintf("codegen: %s takes %d operands, got %d", info.Name, info.OperandCount, len(operands)))
	}
	offset := len(c.instructions)
	c.instructions = append(c.instructions, opcode)
	for _, o := range operands {
		c.instructions = append(c.instructions, op.Code(o))
	}
	if opcode == op.Call && int(operands[0]) > c.maxCallArgs {
		c.maxCallArgs = int(operands[0])
	}
	loc := bytecode.SourceLocation{Line: pos.LineNumber(), Column: pos.ColumnNumber()}
	for range 1 + len(operands) {
		c.locations = append(c.locations, loc)
	}
	return offset
}

// patchJump points the jump at offset to the next instruction to be
// emitted.
func (c *code) patchJump(offset int) error {
	delta := len(c.instructions) - offset
	if delta > math.MaxUint16 {
		return fmt.Errorf("jump destination is too far away")
	}
	c.instructions[offset+1] = op.Code(delta)
	return nil
}

func (c *code) constant(value any) (uint16, error) {
	if len(c.constants) >= math.MaxUint16 {
		return 0, fmt.Errorf("number of constants exceeded limits")
	}
	c.constants = append(c.constants, value)
	return uint16(len(c.constants) - 1), nil
}

func (c *code) addName(name string) (uint16, error) {
	if idx, ok := c.nameIndex[name]; ok {
		return idx, nil
	}
	if len(c.names) >= math.MaxUint16 {
		return 0, fmt.Errorf("number of names exceeded limits")
	}
	idx := uint16(len(c.names))
	c.names = append(c.names, name)
	c.nameIndex[name] = idx
	return idx, nil
}

func (c *code) build(filename string) *bytecode.Code {
	fn := c.function()
	return bytecode.NewCode(bytecode.CodeParams{
		Name:         c.name,
		Instructions: c.instructions,
		Constants:    c.constants,
		Names:        c.names,
		Source:       c.source,
		Filename:     filename,
		Locations:    c.locations,
		MaxCallArgs:  c.maxCallArgs,
		LocalCount:   int(fn.Count()),
		LocalNames:   fn.Names(),
	})
}

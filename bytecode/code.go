package bytecode

import (
	"fmt"
	"slices"
	"strings"

	"github.com/deepnoodle-ai/qmlc/op"
)

// Code is a compiled instruction sequence: the body of a binding
// expression, signal handler or function. It is immutable after creation
// and safe for concurrent use.
type Code struct {
	name string

	instructions []op.Code
	constants    []any
	names        []string
	source       string
	filename     string

	// Source map: one location per instruction word
	locations []SourceLocation

	maxCallArgs int
	localCount  int
	localNames  []string
}

// CodeParams contains parameters for creating a new Code.
type CodeParams struct {
	Name         string
	Instructions []op.Code
	Constants    []any
	// Names holds attribute and global names referenced by LoadAttr,
	// LoadName and their store counterparts.
	Names       []string
	Source      string
	Filename    string
	Locations   []SourceLocation
	MaxCallArgs int
	LocalCount  int
	LocalNames  []string
}

// NewCode creates a new immutable Code from the given parameters.
// Input slices are copied to ensure immutability.
func NewCode(params CodeParams) *Code {
	return &Code{
		name:         params.Name,
		instructions: slices.Clone(params.Instructions),
		constants:    slices.Clone(params.Constants),
		names:        slices.Clone(params.Names),
		source:       params.Source,
		filename:     params.Filename,
		locations:    slices.Clone(params.Locations),
		maxCallArgs:  params.MaxCallArgs,
		localCount:   params.LocalCount,
		localNames:   slices.Clone(params.LocalNames),
	}
}

// Name returns the name of this code block.
func (c *Code) Name() string {
	return c.name
}

// InstructionCount returns the number of instruction words.
func (c *Code) InstructionCount() int {
	return len(c.instructions)
}

// InstructionAt returns the instruction word at the given index.
func (c *Code) InstructionAt(index int) op.Code {
	return c.instructions[index]
}

// ConstantCount returns the number of constants.
func (c *Code) ConstantCount() int {
	return len(c.constants)
}

// ConstantAt returns the constant at the given index.
func (c *Code) ConstantAt(index int) any {
	return c.constants[index]
}

// NameCount returns the number of names.
func (c *Code) NameCount() int {
	return len(c.names)
}

// NameAt returns the name at the given index.
func (c *Code) NameAt(index int) string {
	return c.names[index]
}

// Source returns the source text of this block.
func (c *Code) Source() string {
	return c.source
}

// Filename returns the document URL the code was compiled from.
func (c *Code) Filename() string {
	return c.filename
}

// LocalCount returns the number of local variables, parameters included.
func (c *Code) LocalCount() int {
	return c.localCount
}

// LocalNameCount returns the number of local variable names.
func (c *Code) LocalNameCount() int {
	return len(c.localNames)
}

// LocalNameAt returns the local variable name at the given index.
// Returns an empty string if the index is out of range.
func (c *Code) LocalNameAt(index int) string {
	if index < 0 || index >= len(c.localNames) {
		return ""
	}
	return c.localNames[index]
}

// MaxCallArgs returns the maximum argument count from any Call opcode.
func (c *Code) MaxCallArgs() int {
	return c.maxCallArgs
}

// LocationAt returns the source location for the instruction at the given index.
func (c *Code) LocationAt(ip int) SourceLocation {
	if ip < 0 || ip >= len(c.locations) {
		return SourceLocation{}
	}
	return c.locations[ip]
}

// LocationCount returns the number of recorded source locations.
func (c *Code) LocationCount() int {
	return len(c.locations)
}

// SourceLine returns the line of Source with the given 1-based number.
func (c *Code) SourceLine(lineNum int) string {
	if lineNum < 1 || c.source == "" {
		return ""
	}
	lines := strings.Split(c.source, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// Closures returns the function table indices referenced by LoadClosure
// instructions, in instruction order.
func (c *Code) Closures() []int {
	var out []int
	iter := NewInstructionIter(c)
	for {
		instr, ok := iter.Next()
		if !ok {
			return out
		}
		if instr[0] == op.LoadClosure {
			out = append(out, int(instr[1]))
		}
	}
}

// remapClosures returns a copy of c whose LoadClosure instructions refer to
// remap[old]. A negative entry marks a removed function.
func (c *Code) remapClosures(remap []int) (*Code, error) {
	instructions := slices.Clone(c.instructions)
	changed := false
	iter := NewInstructionIter(c)
	for {
		instr, ok := iter.Next()
		if !ok {
			break
		}
		if instr[0] != op.LoadClosure {
			continue
		}
		old := int(instr[1])
		if old >= len(remap) || remap[old] < 0 {
			return nil, fmt.Errorf("bytecode: %s references removed function %d", c.name, old)
		}
		if remap[old] != old {
			instructions[iter.Offset()+1] = op.Code(remap[old])
			changed = true
		}
	}
	if !changed {
		return c, nil
	}
	cp := *c
	cp.instructions = instructions
	return &cp, nil
}

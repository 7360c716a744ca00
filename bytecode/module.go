package bytecode

import (
	"fmt"

	"github.com/deepnoodle-ai/qmlc/op"
)

// Module is the function table of one compiled document. Bindings, signal
// handlers, methods and closures all refer to their function by index.
type Module struct {
	functions []*Function
}

// NewModule returns a module holding a copy of functions.
func NewModule(functions []*Function) *Module {
	m := &Module{}
	if len(functions) > 0 {
		m.functions = make([]*Function, len(functions))
		copy(m.functions, functions)
	}
	return m
}

// FunctionCount returns the number of functions.
func (m *Module) FunctionCount() int {
	return len(m.functions)
}

// FunctionAt returns the function at the given index.
func (m *Module) FunctionAt(index int) *Function {
	return m.functions[index]
}

// Compact removes the functions with the given indices and renumbers the
// LoadClosure references of the remaining ones. It returns the new module
// and a table mapping each old index to its new index, or -1 for removed
// functions. A surviving function that references a removed one is an
// error.
func (m *Module) Compact(removed []int) (*Module, []int, error) {
	remap := make([]int, len(m.functions))
	for _, idx := range removed {
		if idx < 0 || idx >= len(m.functions) {
			return nil, nil, fmt.Errorf("bytecode: function index %d out of range", idx)
		}
		remap[idx] = -1
	}
	next := 0
	for i := range remap {
		if remap[i] == 0 {
			remap[i] = next
			next++
		}
	}
	functions := make([]*Function, 0, next)
	for i, fn := range m.functions {
		if remap[i] < 0 {
			continue
		}
		if fn.code == nil {
			functions = append(functions, fn)
			continue
		}
		code, err := fn.code.remapClosures(remap)
		if err != nil {
			return nil, nil, err
		}
		functions = append(functions, fn.withCode(code))
	}
	return &Module{functions: functions}, remap, nil
}

// Stats returns statistics about the module.
func (m *Module) Stats() Stats {
	var s Stats
	s.FunctionCount = len(m.functions)
	for _, fn := range m.functions {
		code := fn.Code()
		if code == nil {
			continue
		}
		s.InstructionCount += code.InstructionCount()
		s.ConstantCount += code.ConstantCount()
		iter := NewInstructionIter(code)
		for {
			instr, ok := iter.Next()
			if !ok {
				break
			}
			if instr[0] == op.LoadClosure {
				s.ClosureCount++
			}
		}
	}
	return s
}

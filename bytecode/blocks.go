package bytecode

import (
	"sort"

	"github.com/deepnoodle-ai/qmlc/op"
)

// BasicBlocks returns the instruction offsets that start a basic block: the
// entry, every jump target, and every instruction following a jump or a
// return.
func BasicBlocks(c *Code) []int {
	n := c.InstructionCount()
	if n == 0 {
		return nil
	}
	leaders := map[int]bool{0: true}
	iter := NewInstructionIter(c)
	for {
		instr, ok := iter.Next()
		if !ok {
			break
		}
		pos := iter.Offset()
		next := pos + len(instr)
		if op.IsJump(instr[0]) {
			if target := pos + int(instr[1]); target < n {
				leaders[target] = true
			}
		}
		if (op.IsJump(instr[0]) || instr[0] == op.ReturnValue) && next < n {
			leaders[next] = true
		}
	}
	out := make([]int, 0, len(leaders))
	for pos := range leaders {
		out = append(out, pos)
	}
	sort.Ints(out)
	return out
}

// BasicBlockCount returns the number of basic blocks of c.
func BasicBlockCount(c *Code) int {
	return len(BasicBlocks(c))
}

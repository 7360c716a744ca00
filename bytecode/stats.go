package bytecode

// Stats contains statistics about a compiled module.
type Stats struct {
	// FunctionCount is the number of functions in the table.
	FunctionCount int

	// InstructionCount is the total number of instruction words.
	InstructionCount int

	// ConstantCount is the total size of the constant pools.
	ConstantCount int

	// ClosureCount is the number of LoadClosure instructions.
	ClosureCount int
}

// Package bytecode provides immutable representations of compiled binding
// expressions, signal handlers and functions.
//
// # Key Types
//
//   - [Code]: an immutable instruction sequence with its constant and name
//     pools
//   - [Function]: a compiled function with its parameters and code
//   - [Module]: the function table of one compiled document; closures and
//     bindings refer to functions by their index in it
//   - [SourceLocation]: maps instructions to source positions
//
// # Immutability Guarantees
//
// All types in this package are immutable after construction. Constructors
// copy input slices and accessors use index-based access:
//
//	code.InstructionAt(0)
//	code.ConstantAt(i)
//	module.FunctionAt(j)
//
// Transformations such as [Module.Compact] return new values and leave
// their receiver untouched.
package bytecode

package bytecode

import (
	"bytes"
	"slices"
	"strings"
)

// Kind tells what a compiled function was generated from.
type Kind uint8

const (
	// KindBinding is a property binding expression.
	KindBinding Kind = iota
	// KindSignalHandler is an "on<Signal>" handler body.
	KindSignalHandler
	// KindMethod is a declared "function" member of an object.
	KindMethod
	// KindClosure is a function expression nested in another script.
	KindClosure
)

func (k Kind) String() string {
	switch k {
	case KindBinding:
		return "binding"
	case KindSignalHandler:
		return "handler"
	case KindMethod:
		return "method"
	case KindClosure:
		return "closure"
	default:
		return "unknown"
	}
}

// Function is a compiled function template. It is immutable after creation.
type Function struct {
	name       string
	kind       Kind
	parameters []string
	code       *Code
	location   SourceLocation
}

// FunctionParams contains parameters for creating a new Function.
type FunctionParams struct {
	Name       string
	Kind       Kind
	Parameters []string
	Code       *Code
	Location   SourceLocation
}

// NewFunction creates a new immutable Function from the given parameters.
// Input slices are copied to ensure immutability.
func NewFunction(params FunctionParams) *Function {
	return &Function{
		name:       params.Name,
		kind:       params.Kind,
		parameters: slices.Clone(params.Parameters),
		code:       params.Code,
		location:   params.Location,
	}
}

// Name returns the function name, or empty string for anonymous functions.
func (f *Function) Name() string {
	return f.name
}

// Kind returns what the function was compiled from.
func (f *Function) Kind() Kind {
	return f.kind
}

// Code returns the compiled bytecode for this function's body.
func (f *Function) Code() *Code {
	return f.code
}

// Location returns the position of the script in the document.
func (f *Function) Location() SourceLocation {
	return f.location
}

// ParameterCount returns the number of parameters.
func (f *Function) ParameterCount() int {
	return len(f.parameters)
}

// Parameter returns the name of the parameter at the given index.
func (f *Function) Parameter(index int) string {
	return f.parameters[index]
}

// LocalCount returns the number of local variables in the function body.
func (f *Function) LocalCount() int {
	if f.code == nil {
		return 0
	}
	return f.code.LocalCount()
}

// withCode returns a copy of f with a different body.
func (f *Function) withCode(code *Code) *Function {
	if code == f.code {
		return f
	}
	cp := *f
	cp.code = code
	return &cp
}

// String returns a string representation of the function.
func (f *Function) String() string {
	var out bytes.Buffer
	out.WriteString("function")
	if f.name != "" {
		out.WriteString(" " + f.name)
	}
	out.WriteString("(")
	out.WriteString(strings.Join(f.parameters, ", "))
	out.WriteString(") {")
	var source string
	if f.code != nil {
		source = f.code.Source()
	}
	lines := strings.Split(source, "\n")
	if len(lines) == 1 {
		out.WriteString(" " + lines[0] + " }")
	} else {
		for _, line := range lines {
			out.WriteString("\n    " + line)
		}
		out.WriteString("\n}")
	}
	return out.String()
}

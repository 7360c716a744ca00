package unit

import (
	"github.com/deepnoodle-ai/qmlc/metatype"
)

// VMEMetaData describes the members an object declares on top of its base
// type, in declaration order. The runtime reflects it into a meta object for
// the synthesized property cache.
type VMEMetaData struct {
	Properties []VMEProperty
	Aliases    []VMEAlias
	Signals    []VMESignal
	Methods    []VMEMethod
}

// VMEProperty is a declared property.
type VMEProperty struct {
	Name     string
	Type     metatype.TypeID
	Var      bool
	ReadOnly bool
}

// VMEAlias is a resolved alias property.
type VMEAlias struct {
	Name string
	// TargetObjectID is the id of the target object within the component.
	TargetObjectID int
	// TargetIndex is the encoded core and value type sub-property index, or
	// -1 for aliases to the object itself.
	TargetIndex int
	PropType    metatype.TypeID
	// PointsToPointerObject is set when the alias refers to an object.
	PointsToPointerObject bool
	ReadOnly              bool
	NotifySignal          int
}

// VMESignal is a declared signal.
type VMESignal struct {
	Name           string
	ParameterNames []string
	ParameterTypes []metatype.TypeID
}

// VMEMethod is a declared function.
type VMEMethod struct {
	Name           string
	ParameterCount int
	Line           int
	// RuntimeFunctionIndex is the index of the body in the module function
	// table.
	RuntimeFunctionIndex int
}

// VarPropertyCount returns the number of "property var" declarations.
func (m *VMEMetaData) VarPropertyCount() int {
	n := 0
	for _, p := range m.Properties {
		if p.Var {
			n++
		}
	}
	return n
}

package propcache

import (
	"sort"
	"strings"

	"github.com/deepnoodle-ai/qmlc/metatype"
)

// Flags describe a property, method or signal entry.
type Flags uint32

const (
	IsWritable Flags = 1 << iota
	IsResettable
	IsAlias
	IsFinal
	IsConstant
	// IsQObjectDerived marks object-valued properties.
	IsQObjectDerived
	IsEnumType
	IsQList
	// IsVarProperty marks "property var" declarations.
	IsVarProperty
	// IsQVariant marks "property variant" declarations and aliases to var
	// properties.
	IsQVariant
	IsFunction
	IsSignal
	HasArguments
	// IsVMEFunction and IsVMESignal mark methods and signals declared in a
	// document rather than by a native type.
	IsVMEFunction
	IsVMESignal
)

// Parameter is one formal parameter of a method or signal.
type Parameter struct {
	Name string
	Type metatype.TypeID
}

// PropertyData is one entry of a property cache.
type PropertyData struct {
	Name     string
	Flags    Flags
	PropType metatype.TypeID
	// CoreIndex is the property index for properties and the method index
	// for methods and signals.
	CoreIndex int
	// NotifyIndex is the method index of the change signal of a property,
	// or -1.
	NotifyIndex int
	// Revision is the type revision that introduced the member.
	Revision int
	// Level is the depth of the declaring cache in its parent chain.
	Level      int
	Parameters []Parameter
	// Enum is the enumeration of enum typed properties.
	Enum *Enum
}

func (d *PropertyData) has(f Flags) bool {
	return d.Flags&f != 0
}

func (d *PropertyData) IsWritable() bool { return d.has(IsWritable) }
func (d *PropertyData) IsResettable() bool { return d.has(IsResettable) }
func (d *PropertyData) IsAlias() bool { return d.has(IsAlias) }
func (d *PropertyData) IsFinal() bool { return d.has(IsFinal) }
func (d *PropertyData) IsConstant() bool { return d.has(IsConstant) }
func (d *PropertyData) IsQObject() bool { return d.has(IsQObjectDerived) }
func (d *PropertyData) IsEnum() bool { return d.has(IsEnumType) }
func (d *PropertyData) IsQList() bool { return d.has(IsQList) }
func (d *PropertyData) IsVarProperty() bool { return d.has(IsVarProperty) }
func (d *PropertyData) IsQVariant() bool { return d.has(IsQVariant) }
func (d *PropertyData) IsFunction() bool { return d.has(IsFunction) }
func (d *PropertyData) IsSignal() bool { return d.has(IsSignal) }
func (d *PropertyData) HasArguments() bool { return d.has(HasArguments) }
func (d *PropertyData) IsVMEFunction() bool { return d.has(IsVMEFunction) }
func (d *PropertyData) IsVMESignal() bool { return d.has(IsVMESignal) }

// ParameterNames returns the formal parameter names of a method or signal.
func (d *PropertyData) ParameterNames() []string {
	names := make([]string, len(d.Parameters))
	for i, p := range d.Parameters {
		names[i] = p.Name
	}
	return names
}

// Enum is a named enumeration of a native type.
type Enum struct {
	Name string
	// IsFlag marks enumerations whose values combine with "|".
	IsFlag bool
	Values map[string]int
}

// KeyToValue returns the value of a single enumerator.
func (e *Enum) KeyToValue(key string) (int, bool) {
	v, ok := e.Values[strings.TrimSpace(key)]
	return v, ok
}

// KeysToValue returns the combined value of "A | B" for flag types.
func (e *Enum) KeysToValue(keys string) (int, bool) {
	value := 0
	for _, key := range strings.Split(keys, "|") {
		v, ok := e.KeyToValue(key)
		if !ok {
			return 0, false
		}
		value |= v
	}
	return value, true
}

// Keys returns the enumerator names in sorted order.
func (e *Enum) Keys() []string {
	keys := make([]string, 0, len(e.Values))
	for k := range e.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

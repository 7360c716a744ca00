package ir

// ObjectFlags describe how an object is instantiated.
type ObjectFlags uint8

const (
	// IsComponent marks an explicit or synthesized Component boundary.
	IsComponent ObjectFlags = 1 << iota
	// HasDeferredBindings is set when at least one binding is deferred.
	HasDeferredBindings
	// HasCustomParserBindings is set when a custom parser claims bindings.
	HasCustomParserBindings
	// DefaultPropertyIsAlias means DefaultProperty indexes Aliases.
	DefaultPropertyIsAlias
)

// Object is one QML element instance declaration.
type Object struct {
	// InheritedTypeName is the string index of the type name. Group
	// property objects have an empty type name.
	InheritedTypeName int
	// IDName is the string index of the declared id, or 0.
	IDName int
	// ID is the dense id within the enclosing component scope, or -1.
	ID int

	Properties []*Property
	Aliases    []*Alias
	Signals    []*Signal
	Functions  []*Function
	Bindings   []*Binding

	// Scripts holds function bodies and binding expressions. Functions and
	// script bindings refer into it by index.
	Scripts []*Script
	// RuntimeFunctionIndices maps each script to its index in the compiled
	// function table. Populated by code generation.
	RuntimeFunctionIndices []int

	Flags ObjectFlags
	// DefaultProperty indexes Properties (or Aliases when
	// DefaultPropertyIsAlias is set), or is -1.
	DefaultProperty int

	Location   Location
	IDLocation Location
}

// NewObject returns an object of the given type-name string index.
func NewObject(typeName int, loc Location) *Object {
	return &Object{
		InheritedTypeName: typeName,
		ID:                -1,
		DefaultProperty:   -1,
		Location:          loc,
	}
}

// HasFlag reports whether flag is set.
func (o *Object) HasFlag(flag ObjectFlags) bool {
	return o.Flags&flag != 0
}

// DeclaresMembers reports whether the object declares properties, aliases,
// signals or functions of its own.
func (o *Object) DeclaresMembers() bool {
	return len(o.Properties) > 0 || len(o.Aliases) > 0 || len(o.Signals) > 0 || len(o.Functions) > 0
}

// AddScript appends s and returns its index.
func (o *Object) AddScript(s *Script) int {
	o.Scripts = append(o.Scripts, s)
	return len(o.Scripts) - 1
}

// PropertyType is the declared type of a property or signal parameter.
type PropertyType uint8

const (
	Var PropertyType = iota
	Variant
	Int
	Bool
	Real
	String
	Url
	Color
	Font
	Time
	Date
	DateTime
	Rect
	Point
	Size
	Vector2D
	Vector3D
	Vector4D
	Matrix4x4
	Quaternion
	Custom
	CustomList
)

var propertyTypeNames = map[PropertyType]string{
	Var: "var", Variant: "variant", Int: "int", Bool: "bool", Real: "real",
	String: "string", Url: "url", Color: "color", Font: "font", Time: "time",
	Date: "date", DateTime: "datetime", Rect: "rect", Point: "point",
	Size: "size", Vector2D: "vector2d", Vector3D: "vector3d", Vector4D: "vector4d",
	Matrix4x4: "matrix4x4", Quaternion: "quaternion",
	Custom: "custom", CustomList: "list",
}

func (t PropertyType) String() string {
	return propertyTypeNames[t]
}

// ParsePropertyType maps a declared type name to a builtin PropertyType.
// Unknown names are Custom.
func ParsePropertyType(name string) PropertyType {
	for t, n := range propertyTypeNames {
		if n == name && t != Custom && t != CustomList {
			return t
		}
	}
	return Custom
}

// Property is a "property <type> <name>" declaration.
type Property struct {
	Name int
	Type PropertyType
	// CustomTypeName is the string index of the type for Custom and
	// CustomList properties.
	CustomTypeName int
	ReadOnly       bool
	Location       Location
}

// AliasFlags record the resolution state of an alias.
type AliasFlags uint8

const (
	AliasResolved AliasFlags = 1 << iota
	// AliasPointsToPointerObject marks aliases to an object or to an object
	// valued property.
	AliasPointsToPointerObject
	// AliasToLocalAlias marks aliases to another alias of the same object.
	AliasToLocalAlias
)

// Alias is a "property alias <name>: <id>[.<property>[.<sub>]]" declaration.
type Alias struct {
	Name int
	// IDName is the referenced id.
	IDName int
	// PropertyPath is the dotted path after the id, or 0.
	PropertyPath      int
	ReadOnly          bool
	Flags             AliasFlags
	Location          Location
	ReferenceLocation Location

	// Resolution results.
	TargetObjectID  int
	TargetCoreIndex int
	TargetSubIndex  int
	LocalAliasIndex int
}

// NewAlias returns an unresolved alias.
func NewAlias(name, idName, path int, loc, ref Location) *Alias {
	return &Alias{
		Name:              name,
		IDName:            idName,
		PropertyPath:      path,
		Location:          loc,
		ReferenceLocation: ref,
		TargetObjectID:    -1,
		TargetCoreIndex:   -1,
		TargetSubIndex:    -1,
		LocalAliasIndex:   -1,
	}
}

// HasFlag reports whether flag is set.
func (a *Alias) HasFlag(flag AliasFlags) bool {
	return a.Flags&flag != 0
}

// IsResolved reports whether alias resolution completed for a.
func (a *Alias) IsResolved() bool {
	return a.HasFlag(AliasResolved)
}

// EncodedIndex packs the target core index and value type sub-index into one
// integer: coreIndex | subIndex<<16.
func (a *Alias) EncodedIndex() int {
	if a.TargetSubIndex < 0 {
		return a.TargetCoreIndex
	}
	return a.TargetCoreIndex | a.TargetSubIndex<<16
}

// Signal is a "signal name(params)" declaration.
type Signal struct {
	Name       int
	Parameters []*SignalParameter
	Location   Location
}

// SignalParameter is one formal parameter of a declared signal.
type SignalParameter struct {
	Name           int
	Type           PropertyType
	CustomTypeName int
}

// Function is a "function name(params) { ... }" declaration.
type Function struct {
	Name int
	// ScriptIndex is the index of the function body in Object.Scripts.
	ScriptIndex int
	Location    Location
}

package registry

import (
	"github.com/deepnoodle-ai/qmlc/metatype"
)

// Export makes a type available under a QML name in one module version.
type Export struct {
	Module string
	Name   string
	Major  int
	Minor  int
	// Revision is the meta object revision visible through this export.
	Revision int
}

// Property describes a native property.
type Property struct {
	Name string
	// Type is the C++ or QML type name: a builtin ("int", "QString"), an
	// enumeration of the declaring chain or a registered class name.
	Type       string
	IsList     bool
	IsPointer  bool
	ReadOnly   bool
	Final      bool
	Resettable bool
	Revision   int
}

// Parameter is one formal parameter of a native method or signal.
type Parameter struct {
	Name string
	Type string
}

// Method describes a native method or signal.
type Method struct {
	Name     string
	Params   []Parameter
	Revision int
}

// Enum describes a native enumeration.
type Enum struct {
	Name   string
	IsFlag bool
	Values map[string]int
}

// Type is a registered native or composite type.
type Type struct {
	// ID is assigned by the registry. The list type of the class is ID+1.
	ID metatype.TypeID
	// Name is the C++ class name, or the type name of a composite type.
	Name string
	// Prototype is the class name of the base type, if any.
	Prototype string
	Exports   []Export

	Uncreatable bool
	// IsComposite marks types defined by a QML document at SourceURL.
	IsComposite bool
	SourceURL   string
	Singleton   bool

	// AttachedType is the class name of the attached properties object.
	AttachedType    string
	DefaultProperty string
	// DeferredNames lists properties whose bindings are created on demand.
	DeferredNames []string

	ValueSource bool
	Interceptor bool
	Interface   bool
	// FullyDynamic types cannot declare additional members in documents.
	FullyDynamic bool

	Properties []Property
	Signals    []Method
	Methods    []Method
	Enums      []Enum
}

// ListID returns the id of the list type of t.
func (t *Type) ListID() metatype.TypeID {
	return t.ID + 1
}

// IsCreatable reports whether documents may instantiate t.
func (t *Type) IsCreatable() bool {
	return !t.Uncreatable && !(t.IsComposite && t.Singleton)
}

// IsCompositeSingleton reports whether t is a "pragma Singleton" document.
func (t *Type) IsCompositeSingleton() bool {
	return t.IsComposite && t.Singleton
}

// IsDeferred reports whether bindings to the named property are deferred.
func (t *Type) IsDeferred(name string) bool {
	for _, n := range t.DeferredNames {
		if n == name {
			return true
		}
	}
	return false
}

// QMLName returns the first exported name of t, or its class name.
func (t *Type) QMLName() string {
	if len(t.Exports) > 0 {
		return t.Exports[0].Name
	}
	return t.Name
}

// ExportFor returns the export of t in module with the highest minor version
// not above minor, for the given major version. A negative major matches
// any version, as for directory imports.
func (t *Type) ExportFor(module string, major, minor int) (Export, bool) {
	var best Export
	found := false
	for _, e := range t.Exports {
		if e.Module != module {
			continue
		}
		if major >= 0 && (e.Major != major || e.Minor > minor) {
			continue
		}
		if !found || e.Minor > best.Minor {
			best = e
			found = true
		}
	}
	return best, found
}

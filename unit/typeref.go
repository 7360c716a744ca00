package unit

import (
	"github.com/deepnoodle-ai/qmlc/propcache"
	"github.com/deepnoodle-ai/qmlc/registry"
)

// TypeReference is a type name of a document resolved through its imports.
// All objects naming the same type share one reference.
type TypeReference struct {
	// Name is the type name as written, possibly namespace qualified.
	Name string
	// Type is the registered descriptor of a native or composite type.
	Type *registry.Type
	// Composite is the compiled unit of a document-defined type.
	Composite *Unit
	// Module, Major and Minor are the import the type was found through.
	Module       string
	Major, Minor int
	// Cache is the metadata of the type as visible through that import. For
	// composite types it is the root cache of the composite unit.
	Cache *propcache.PropertyCache
	// NeedsCreation is set when an object instantiates the type, as opposed
	// to only naming it for attached properties.
	NeedsCreation bool
}

// IsComposite reports whether the type is defined by another document.
func (r *TypeReference) IsComposite() bool {
	return r.Composite != nil
}

// AttachedType returns the class name of the attached properties object of
// the type, or "".
func (r *TypeReference) AttachedType() string {
	if r.Type == nil {
		return ""
	}
	return r.Type.AttachedType
}

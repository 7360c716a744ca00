package registry

import (
	"strings"

	"github.com/deepnoodle-ai/qmlc/ir"
)

// Import is one import of a document. Directory imports have a negative
// Major version.
type Import struct {
	Module    string
	Qualifier string
	Major     int
	Minor     int
}

// Resolution is the outcome of resolving a type name through imports.
type Resolution struct {
	Type   *Type
	Export Export
	// Import is the import that provided the type.
	Import Import
	// Namespace is set when the name is an import qualifier rather than a
	// type.
	Namespace bool
}

// Imports resolves type names for one document.
type Imports struct {
	registry *Registry
	imports  []Import
}

// NewImports returns the import table of a document. Later imports take
// precedence over earlier ones.
func (r *Registry) NewImports(imports []Import) *Imports {
	return &Imports{registry: r, imports: append([]Import(nil), imports...)}
}

// DocumentImports returns the import table declared by doc.
func (r *Registry) DocumentImports(doc *ir.Document) *Imports {
	imports := make([]Import, 0, len(doc.Imports))
	for _, imp := range doc.Imports {
		imports = append(imports, Import{
			Module:    imp.URI,
			Qualifier: imp.Qualifier,
			Major:     imp.Major,
			Minor:     imp.Minor,
		})
	}
	return r.NewImports(imports)
}

// Registry returns the registry the imports resolve against.
func (im *Imports) Registry() *Registry {
	return im.registry
}

// List returns the imports in declaration order.
func (im *Imports) List() []Import {
	return append([]Import(nil), im.imports...)
}

// IsNamespace reports whether name is the qualifier of an import.
func (im *Imports) IsNamespace(name string) bool {
	for _, imp := range im.imports {
		if imp.Qualifier != "" && imp.Qualifier == name {
			return true
		}
	}
	return false
}

// Resolve looks up "Name" among unqualified imports or "Qualifier.Name" among
// the imports with that qualifier.
func (im *Imports) Resolve(name string) (Resolution, bool) {
	qualifier, local, qualified := strings.Cut(name, ".")
	if !qualified {
		if im.IsNamespace(name) {
			return Resolution{Namespace: true}, true
		}
		qualifier, local = "", name
	}
	for i := len(im.imports) - 1; i >= 0; i-- {
		imp := im.imports[i]
		if imp.Qualifier != qualifier {
			continue
		}
		if t, e, ok := im.registry.Lookup(imp.Module, local, imp.Major, imp.Minor); ok {
			return Resolution{Type: t, Export: e, Import: imp}, true
		}
	}
	return Resolution{}, false
}

// Candidates returns the type names visible through the imports, for "did
// you mean" suggestions.
func (im *Imports) Candidates() []string {
	var names []string
	for _, imp := range im.imports {
		for _, n := range im.registry.ModuleTypeNames(imp.Module) {
			if imp.Qualifier != "" {
				n = imp.Qualifier + "." + n
			}
			names = append(names, n)
		}
	}
	return names
}

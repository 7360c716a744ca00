// Package registry holds the process-wide table of native and composite
// types that documents import, and resolves type names through a document's
// imports.
//
// A Registry is safe for concurrent use. Types are registered up front,
// usually from .qmltypes files, and property caches for them are built
// lazily on first use.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/deepnoodle-ai/qmlc/metatype"
	"github.com/deepnoodle-ai/qmlc/propcache"
)

// ComponentClass is the class name of the well-known Component type.
const ComponentClass = "QQmlComponent"

// Registry is a set of types addressable by class name, type id and module
// export.
type Registry struct {
	mu        sync.RWMutex
	types     map[string]*Type
	byID      map[metatype.TypeID]*Type
	modules   map[string][]*Type
	caches    map[string]*propcache.PropertyCache
	// versioned memoizes revision views so every import of a type version
	// shares one cache instance.
	versioned map[versionKey]*propcache.PropertyCache
	nextID    metatype.TypeID
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		types:     map[string]*Type{},
		byID:      map[metatype.TypeID]*Type{},
		modules:   map[string][]*Type{},
		caches:    map[string]*propcache.PropertyCache{},
		versioned: map[versionKey]*propcache.PropertyCache{},
		nextID:    metatype.FirstDynamic,
	}
}

// Register adds t and assigns its type id. Class names must be unique.
func (r *Registry) Register(t *Type) (*Type, error) {
	if t.Name == "" {
		return nil, fmt.Errorf("registry: type without a name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[t.Name]; exists {
		return nil, fmt.Errorf("registry: type %s is already registered", t.Name)
	}
	t.ID = r.nextID
	r.nextID += 2
	r.types[t.Name] = t
	r.byID[t.ID] = t
	for _, e := range t.Exports {
		r.addToModule(e.Module, t)
	}
	return t, nil
}

func (r *Registry) addToModule(module string, t *Type) {
	for _, existing := range r.modules[module] {
		if existing == t {
			return
		}
	}
	r.modules[module] = append(r.modules[module], t)
}

// Type returns the type with the given class name.
func (r *Registry) Type(name string) *Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.types[name]
}

// TypeByID returns the type with the given id.
func (r *Registry) TypeByID(id metatype.TypeID) *Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.byID[id]; ok {
		return t
	}
	return nil
}

// ListElement returns the element type of a registered list type id.
func (r *Registry) ListElement(id metatype.TypeID) (*Type, bool) {
	if id < metatype.FirstDynamic || (id-metatype.FirstDynamic)%2 != 1 {
		return nil, false
	}
	t := r.TypeByID(id - 1)
	return t, t != nil
}

// IsInterface reports whether id is a registered interface type.
func (r *Registry) IsInterface(id metatype.TypeID) bool {
	t := r.TypeByID(id)
	return t != nil && t.Interface
}

// Types returns the registered types sorted by class name.
func (r *Registry) Types() []*Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Type, 0, len(r.types))
	for _, t := range r.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// HasModule reports whether any type is exported by module in the given
// major version. A negative major matches any version.
func (r *Registry) HasModule(module string, major int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.modules[module] {
		for _, e := range t.Exports {
			if e.Module == module && (major < 0 || e.Major == major) {
				return true
			}
		}
	}
	return false
}

// Lookup finds the type exported as name by module in a version at most
// major.minor.
func (r *Registry) Lookup(module, name string, major, minor int) (*Type, Export, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var (
		found *Type
		best  Export
	)
	for _, t := range r.modules[module] {
		for _, e := range t.Exports {
			if e.Name != name || e.Module != module {
				continue
			}
			if major >= 0 && (e.Major != major || e.Minor > minor) {
				continue
			}
			if found == nil || e.Minor > best.Minor {
				found, best = t, e
			}
		}
	}
	return found, best, found != nil
}

// ModuleTypeNames returns the exported names of module, for suggestions.
func (r *Registry) ModuleTypeNames(module string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	for _, t := range r.modules[module] {
		for _, e := range t.Exports {
			if e.Module == module {
				names = append(names, e.Name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// Inherits reports whether t is, or derives from, the class named base.
func (r *Registry) Inherits(t *Type, base string) bool {
	for cur := t; cur != nil; cur = r.Type(cur.Prototype) {
		if cur.Name == base {
			return true
		}
		if cur.Prototype == "" {
			break
		}
	}
	return false
}

// Chain returns t followed by its prototypes, most derived first.
func (r *Registry) Chain(t *Type) []*Type {
	var chain []*Type
	seen := map[string]bool{}
	for cur := t; cur != nil && !seen[cur.Name]; {
		seen[cur.Name] = true
		chain = append(chain, cur)
		if cur.Prototype == "" {
			break
		}
		cur = r.Type(cur.Prototype)
	}
	return chain
}

// IsValueSource reports whether t or a base type is a property value
// source.
func (r *Registry) IsValueSource(t *Type) bool {
	for _, c := range r.Chain(t) {
		if c.ValueSource {
			return true
		}
	}
	return false
}

// IsInterceptor reports whether t or a base type is a property value
// interceptor.
func (r *Registry) IsInterceptor(t *Type) bool {
	for _, c := range r.Chain(t) {
		if c.Interceptor {
			return true
		}
	}
	return false
}

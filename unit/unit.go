// Package unit defines the compiled form of a QML document: the resolved
// object table with its property caches, component scopes and compiled
// script functions. A Unit is immutable once created.
package unit

import (
	"fmt"
	"sort"

	"github.com/deepnoodle-ai/qmlc/bytecode"
	"github.com/deepnoodle-ai/qmlc/ir"
	"github.com/deepnoodle-ai/qmlc/propcache"
	"github.com/gofrs/uuid"
	"github.com/zeebo/xxh3"
)

// Component is one id scope of the unit: the document root or an explicit
// or synthesized Component object.
type Component struct {
	// Root is the object index of the component root. For the document
	// scope it is the root object.
	Root int
	// Objects holds the object index of each scope-local id.
	Objects []int
	// Names maps declared ids to scope-local ids.
	Names map[string]int
}

// ObjectForID returns the object index of the scope-local id.
func (c Component) ObjectForID(id int) (int, bool) {
	if id < 0 || id >= len(c.Objects) {
		return 0, false
	}
	return c.Objects[id], true
}

// Params are the tables a compiler hands over to New.
type Params struct {
	URL    string
	Source string

	Objects    []*ir.Object
	RootObject int
	Strings    []string
	Singleton  bool

	// Types maps inherited type name string indices to their resolution.
	Types  map[int]*TypeReference
	Caches []*propcache.PropertyCache
	// Components lists the document scope first, then every component in
	// object order.
	Components []Component

	Deferred     []*BitSet
	CustomParser []*BitSet
	VME          []*VMEMetaData
	Module       *bytecode.Module
}

// Unit is a compiled document.
type Unit struct {
	id       uuid.UUID
	checksum uint64
	url      string
	source   string

	objects   []*ir.Object
	root      int
	strings   []string
	singleton bool

	types        map[int]*TypeReference
	caches       []*propcache.PropertyCache
	components   []Component
	deferred     []*BitSet
	customParser []*BitSet
	vme          []*VMEMetaData
	module       *bytecode.Module
}

// New freezes p into a unit and assigns it a fresh id.
func New(p Params) (*Unit, error) {
	if len(p.Objects) == 0 {
		return nil, fmt.Errorf("unit: %s has no objects", p.URL)
	}
	if p.RootObject < 0 || p.RootObject >= len(p.Objects) {
		return nil, fmt.Errorf("unit: root object %d out of range", p.RootObject)
	}
	if len(p.Caches) != len(p.Objects) {
		return nil, fmt.Errorf("unit: %d property caches for %d objects", len(p.Caches), len(p.Objects))
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("unit: %w", err)
	}
	module := p.Module
	if module == nil {
		module = bytecode.NewModule(nil)
	}
	u := &Unit{
		id:           id,
		checksum:     xxh3.HashString(p.Source),
		url:          p.URL,
		source:       p.Source,
		objects:      append([]*ir.Object(nil), p.Objects...),
		root:         p.RootObject,
		strings:      append([]string(nil), p.Strings...),
		singleton:    p.Singleton,
		types:        make(map[int]*TypeReference, len(p.Types)),
		caches:       append([]*propcache.PropertyCache(nil), p.Caches...),
		components:   append([]Component(nil), p.Components...),
		deferred:     perObject(p.Deferred, len(p.Objects)),
		customParser: perObject(p.CustomParser, len(p.Objects)),
		vme:          make([]*VMEMetaData, len(p.Objects)),
		module:       module,
	}
	for k, v := range p.Types {
		u.types[k] = v
	}
	copy(u.vme, p.VME)
	return u, nil
}

func perObject(sets []*BitSet, n int) []*BitSet {
	out := make([]*BitSet, n)
	copy(out, sets)
	for i := range out {
		if out[i] == nil {
			out[i] = &BitSet{}
		}
	}
	return out
}

// ID returns the unique id assigned when the unit was created.
func (u *Unit) ID() uuid.UUID { return u.id }

// Checksum returns the XXH3 hash of the document source.
func (u *Unit) Checksum() uint64 { return u.checksum }

// URL returns the document URL.
func (u *Unit) URL() string { return u.url }

// Source returns the document text.
func (u *Unit) Source() string { return u.source }

// IsSingleton reports whether the document declares "pragma Singleton".
func (u *Unit) IsSingleton() bool { return u.singleton }

// ObjectCount returns the number of objects, including synthesized
// components.
func (u *Unit) ObjectCount() int { return len(u.objects) }

// Object returns the object at index i.
func (u *Unit) Object(i int) *ir.Object { return u.objects[i] }

// RootIndex returns the index of the root object.
func (u *Unit) RootIndex() int { return u.root }

// Root returns the root object.
func (u *Unit) Root() *ir.Object { return u.objects[u.root] }

// String returns the pooled string with the given index.
func (u *Unit) String(i int) string {
	if i < 0 || i >= len(u.strings) {
		return ""
	}
	return u.strings[i]
}

// StringCount returns the size of the string pool.
func (u *Unit) StringCount() int { return len(u.strings) }

// TypeReference returns the resolution of a type name string index.
func (u *Unit) TypeReference(nameIndex int) (*TypeReference, bool) {
	r, ok := u.types[nameIndex]
	return r, ok
}

// TypeNameIndices returns the string indices with a type resolution, in
// increasing order.
func (u *Unit) TypeNameIndices() []int {
	keys := make([]int, 0, len(u.types))
	for k := range u.types {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// PropertyCache returns the metadata of object i.
func (u *Unit) PropertyCache(i int) *propcache.PropertyCache { return u.caches[i] }

// RootCache returns the metadata of the root object. Documents using this
// unit as a composite type derive from it.
func (u *Unit) RootCache() *propcache.PropertyCache { return u.caches[u.root] }

// Components returns the id scopes, document scope first.
func (u *Unit) Components() []Component {
	return append([]Component(nil), u.components...)
}

// ComponentRoots returns the object indices of Component objects in object
// order.
func (u *Unit) ComponentRoots() []int {
	if len(u.components) < 2 {
		return nil
	}
	roots := make([]int, 0, len(u.components)-1)
	for _, c := range u.components[1:] {
		roots = append(roots, c.Root)
	}
	return roots
}

// ComponentAt returns the id scope rooted at object index root. For a root
// object that is itself a Component this is the document scope.
func (u *Unit) ComponentAt(root int) (Component, bool) {
	for _, c := range u.components {
		if c.Root == root {
			return c, true
		}
	}
	return Component{}, false
}

// DeferredBindings returns the binding indices of object i that are
// created on demand.
func (u *Unit) DeferredBindings(i int) *BitSet { return u.deferred[i] }

// CustomParserBindings returns the binding indices of object i claimed by a
// custom parser.
func (u *Unit) CustomParserBindings(i int) *BitSet { return u.customParser[i] }

// VMEMetaData returns the declared members of object i, or nil when the
// object shares its base type's metadata.
func (u *Unit) VMEMetaData(i int) *VMEMetaData { return u.vme[i] }

// Module returns the compiled function table.
func (u *Unit) Module() *bytecode.Module { return u.module }

// FunctionCount returns the number of compiled functions.
func (u *Unit) FunctionCount() int { return u.module.FunctionCount() }

// BindingCount returns the number of bindings across all objects.
func (u *Unit) BindingCount() int {
	n := 0
	for _, o := range u.objects {
		n += len(o.Bindings)
	}
	return n
}

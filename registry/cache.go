package registry

import (
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/qmlc/metatype"
	"github.com/deepnoodle-ai/qmlc/propcache"
)

type versionKey struct {
	name         string
	module       string
	major, minor int
}

// PropertyCache returns the metadata chain of a native type, building it and
// the caches of its prototypes on first use.
func (r *Registry) PropertyCache(t *Type) (*propcache.PropertyCache, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cacheLocked(t, map[string]bool{})
}

// VersionedCache returns the cache of t as seen through an import of module
// major.minor. Each level of the chain hides members with a revision newer
// than the export of that level's type in the module; levels whose type is
// not exported by the module see revision 0 only.
func (r *Registry) VersionedCache(t *Type, module string, major, minor int) (*propcache.PropertyCache, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := versionKey{t.Name, module, major, minor}
	if c, ok := r.versioned[key]; ok {
		return c, nil
	}
	cache, err := r.cacheLocked(t, map[string]bool{})
	if err != nil {
		return nil, err
	}
	revs := make([]int, cache.Level()+1)
	level := cache.Level()
	for cur := t; cur != nil && level >= 0; level-- {
		if e, ok := cur.ExportFor(module, major, minor); ok {
			revs[level] = e.Revision
		}
		cur = r.types[cur.Prototype]
	}
	view := cache.WithRevisions(revs)
	r.versioned[key] = view
	return view, nil
}

// AttachedCache returns the cache of the attached properties type of t, or
// nil if t has none.
func (r *Registry) AttachedCache(t *Type) (*propcache.PropertyCache, error) {
	if t == nil || t.AttachedType == "" {
		return nil, nil
	}
	attached := r.Type(t.AttachedType)
	if attached == nil {
		return nil, fmt.Errorf("registry: attached type %s of %s is not registered", t.AttachedType, t.Name)
	}
	return r.PropertyCache(attached)
}

// CacheForTypeID returns the cache of the object type with the given id, or
// nil for builtin and unknown ids.
func (r *Registry) CacheForTypeID(id metatype.TypeID) *propcache.PropertyCache {
	t := r.TypeByID(id)
	if t == nil || t.IsComposite {
		return nil
	}
	cache, err := r.PropertyCache(t)
	if err != nil {
		return nil
	}
	return cache
}

func (r *Registry) cacheLocked(t *Type, visiting map[string]bool) (*propcache.PropertyCache, error) {
	if c, ok := r.caches[t.Name]; ok {
		return c, nil
	}
	if t.IsComposite {
		return nil, fmt.Errorf("registry: %s is a composite type", t.Name)
	}
	if visiting[t.Name] {
		return nil, fmt.Errorf("registry: prototype cycle through %s", t.Name)
	}
	visiting[t.Name] = true

	var cache *propcache.PropertyCache
	if t.Prototype == "" {
		cache = propcache.New(t.Name)
	} else {
		base, ok := r.types[t.Prototype]
		if !ok {
			return nil, fmt.Errorf("registry: prototype %s of %s is not registered", t.Prototype, t.Name)
		}
		parent, err := r.cacheLocked(base, visiting)
		if err != nil {
			return nil, err
		}
		cache = parent.Derive(t.Name)
	}
	for _, e := range t.Enums {
		values := make(map[string]int, len(e.Values))
		for k, v := range e.Values {
			values[k] = v
		}
		cache.AddEnum(&propcache.Enum{Name: e.Name, IsFlag: e.IsFlag, Values: values})
	}
	for _, s := range t.Signals {
		d := cache.AppendSignal(s.Name, 0, r.parametersLocked(s.Params))
		d.Revision = s.Revision
	}
	for _, m := range t.Methods {
		d := cache.AppendMethod(m.Name, 0, r.parametersLocked(m.Params))
		d.Revision = m.Revision
	}
	for _, p := range t.Properties {
		flags, propType, enum, err := r.propertyTypeLocked(cache, p)
		if err != nil {
			return nil, fmt.Errorf("registry: %s.%s: %w", t.Name, p.Name, err)
		}
		notify := -1
		if sig := cache.Method(p.Name + "Changed"); sig != nil && sig.IsSignal() {
			notify = sig.CoreIndex
		}
		d := cache.AppendProperty(p.Name, flags, propType, notify)
		d.Revision = p.Revision
		d.Enum = enum
	}
	if t.DefaultProperty != "" {
		cache.SetDefaultPropertyName(t.DefaultProperty)
	}
	r.caches[t.Name] = cache
	return cache, nil
}

func (r *Registry) parametersLocked(params []Parameter) []propcache.Parameter {
	if len(params) == 0 {
		return nil
	}
	out := make([]propcache.Parameter, len(params))
	for i, p := range params {
		typ, ok := metatype.Lookup(p.Type)
		if !ok {
			typ = metatype.QVariant
			if obj, isObject := r.types[strings.TrimSuffix(p.Type, "*")]; isObject {
				typ = obj.ID
			}
		}
		out[i] = propcache.Parameter{Name: p.Name, Type: typ}
	}
	return out
}

var builtinLists = map[metatype.TypeID]metatype.TypeID{
	metatype.QString: metatype.ListOfString,
	metatype.Int:     metatype.ListOfInt,
	metatype.Double:  metatype.ListOfReal,
	metatype.Bool:    metatype.ListOfBool,
	metatype.QUrl:    metatype.ListOfUrl,
}

func (r *Registry) propertyTypeLocked(cache *propcache.PropertyCache, p Property) (propcache.Flags, metatype.TypeID, *propcache.Enum, error) {
	var flags propcache.Flags
	if !p.ReadOnly {
		flags |= propcache.IsWritable
	}
	if p.Final {
		flags |= propcache.IsFinal
	}
	if p.Resettable {
		flags |= propcache.IsResettable
	}
	if p.IsList {
		flags = flags&^propcache.IsWritable | propcache.IsQList
		if obj, ok := r.types[p.Type]; ok {
			return flags, obj.ListID(), nil, nil
		}
		if id, ok := metatype.Lookup(p.Type); ok {
			if list, ok := builtinLists[id]; ok {
				return flags, list, nil, nil
			}
		}
		return 0, 0, nil, fmt.Errorf("unknown list element type %q", p.Type)
	}
	if id, ok := metatype.Lookup(p.Type); ok {
		return flags, id, nil, nil
	}
	if obj, ok := r.types[p.Type]; ok {
		return flags | propcache.IsQObjectDerived, obj.ID, nil, nil
	}
	owner, enumName, qualified := strings.Cut(p.Type, "::")
	if !qualified {
		enumName = p.Type
	}
	enumCache := cache
	if qualified && owner != cache.ClassName() {
		ownerType, ok := r.types[owner]
		if !ok {
			return 0, 0, nil, fmt.Errorf("unknown type %q", p.Type)
		}
		c, err := r.cacheLocked(ownerType, map[string]bool{})
		if err != nil {
			return 0, 0, nil, err
		}
		enumCache = c
	}
	if e := enumCache.Enum(enumName); e != nil {
		return flags | propcache.IsEnumType, metatype.Int, e, nil
	}
	return 0, 0, nil, fmt.Errorf("unknown type %q", p.Type)
}

// Package propcache implements property caches: the per-type metadata
// tables of properties, methods and signals that the compiler resolves
// bindings against, chained from the most derived type to its native base.
package propcache

import (
	"github.com/deepnoodle-ai/qmlc/metatype"
)

// PropertyCache is one level of a metadata chain. Lookups walk from the
// receiving cache to its parents. A cache is append-only while the compiler
// builds it and must not be modified after compilation finishes.
type PropertyCache struct {
	parent *PropertyCache
	level  int

	className        string
	dynamicClassName string
	defaultProperty  string

	properties []*PropertyData
	methods    []*PropertyData
	signals    []*PropertyData
	propNames  map[string]*PropertyData
	methNames  map[string]*PropertyData

	propertyOffset int
	methodOffset   int
	signalOffset   int

	enums map[string]*Enum

	// origin is the cache a revision view was made from.
	origin *PropertyCache

	// allowedRevisions is indexed by level. A member declared at level l is
	// visible when its revision is at most allowedRevisions[l].
	allowedRevisions []int
}

// New returns a root cache for a native class.
func New(className string) *PropertyCache {
	return &PropertyCache{
		className:        className,
		propNames:        map[string]*PropertyData{},
		methNames:        map[string]*PropertyData{},
		enums:            map[string]*Enum{},
		allowedRevisions: []int{0},
	}
}

// Derive returns an empty cache whose parent is c. Native subclasses and
// synthesized document types are both built this way.
func (c *PropertyCache) Derive(className string) *PropertyCache {
	child := New(className)
	child.parent = c
	child.level = c.level + 1
	child.propertyOffset = c.PropertyCount()
	child.methodOffset = c.MethodCount()
	child.signalOffset = c.SignalCount()
	child.allowedRevisions = append(append([]int(nil), c.allowedRevisions...), 0)
	return child
}

// CopyAndReserve returns a child cache for a document object declaring new
// members on top of c. The child inherits the class name and default
// property and carries its own dynamic class name.
func (c *PropertyCache) CopyAndReserve(dynamicClassName string) *PropertyCache {
	child := c.Derive(c.className)
	child.dynamicClassName = dynamicClassName
	return child
}

// WithRevisions returns a view of c whose revision gates are revs, indexed
// by level from the root of the chain. The view shares all member data with
// c.
func (c *PropertyCache) WithRevisions(revs []int) *PropertyCache {
	view := *c
	view.origin = c.canonical()
	view.allowedRevisions = make([]int, c.level+1)
	copy(view.allowedRevisions, revs)
	return &view
}

// Parent returns the next cache up the chain, or nil.
func (c *PropertyCache) Parent() *PropertyCache {
	return c.parent
}

// Level returns the depth of c in its chain.
func (c *PropertyCache) Level() int {
	return c.level
}

// ClassName returns the native class name described by the chain.
func (c *PropertyCache) ClassName() string {
	return c.className
}

// DynamicClassName returns the synthesized class name of a document
// object, or "".
func (c *PropertyCache) DynamicClassName() string {
	return c.dynamicClassName
}

// EffectiveClassName returns the dynamic class name if set, else the native
// class name.
func (c *PropertyCache) EffectiveClassName() string {
	if c.dynamicClassName != "" {
		return c.dynamicClassName
	}
	return c.className
}

// DefaultPropertyName returns the default property of the most derived
// level that declares one.
func (c *PropertyCache) DefaultPropertyName() string {
	for p := c; p != nil; p = p.parent {
		if p.defaultProperty != "" {
			return p.defaultProperty
		}
	}
	return ""
}

// SetDefaultPropertyName sets the default property of this level.
func (c *PropertyCache) SetDefaultPropertyName(name string) {
	c.defaultProperty = name
}

// DefaultProperty returns the data of the default property, or nil.
func (c *PropertyCache) DefaultProperty() *PropertyData {
	name := c.DefaultPropertyName()
	if name == "" {
		return nil
	}
	return c.Property(name)
}

// PropertyCount returns the number of properties in the chain.
func (c *PropertyCache) PropertyCount() int {
	return c.propertyOffset + len(c.properties)
}

// MethodCount returns the number of methods, including signals, in the
// chain.
func (c *PropertyCache) MethodCount() int {
	return c.methodOffset + len(c.methods)
}

// SignalCount returns the number of signals in the chain.
func (c *PropertyCache) SignalCount() int {
	return c.signalOffset + len(c.signals)
}

// PropertyOffset returns the index of the first property of this level.
func (c *PropertyCache) PropertyOffset() int {
	return c.propertyOffset
}

// MethodOffset returns the index of the first method of this level.
func (c *PropertyCache) MethodOffset() int {
	return c.methodOffset
}

// SignalOffset returns the index of the first signal of this level.
func (c *PropertyCache) SignalOffset() int {
	return c.signalOffset
}

// OwnProperties returns the properties declared at this level.
func (c *PropertyCache) OwnProperties() []*PropertyData {
	return c.properties
}

// OwnMethods returns the methods and signals declared at this level.
func (c *PropertyCache) OwnMethods() []*PropertyData {
	return c.methods
}

// OwnSignals returns the signals declared at this level.
func (c *PropertyCache) OwnSignals() []*PropertyData {
	return c.signals
}

// PropertyAt returns the property with the given absolute index, or nil.
func (c *PropertyCache) PropertyAt(index int) *PropertyData {
	for p := c; p != nil; p = p.parent {
		if index >= p.propertyOffset {
			if i := index - p.propertyOffset; i < len(p.properties) {
				return p.properties[i]
			}
			return nil
		}
	}
	return nil
}

// MethodAt returns the method with the given absolute index, or nil.
func (c *PropertyCache) MethodAt(index int) *PropertyData {
	for p := c; p != nil; p = p.parent {
		if index >= p.methodOffset {
			if i := index - p.methodOffset; i < len(p.methods) {
				return p.methods[i]
			}
			return nil
		}
	}
	return nil
}

// Signal returns the signal with the given method index, or nil.
func (c *PropertyCache) Signal(methodIndex int) *PropertyData {
	d := c.MethodAt(methodIndex)
	if d == nil || !d.IsSignal() {
		return nil
	}
	return d
}

// Property returns the most derived non-function member of that name,
// ignoring revisions.
func (c *PropertyCache) Property(name string) *PropertyData {
	for p := c; p != nil; p = p.parent {
		if d, ok := p.propNames[name]; ok {
			return d
		}
	}
	return nil
}

// Method returns the most derived method or signal of that name, ignoring
// revisions.
func (c *PropertyCache) Method(name string) *PropertyData {
	for p := c; p != nil; p = p.parent {
		if d, ok := p.methNames[name]; ok {
			return d
		}
	}
	return nil
}

// IsAllowedInRevision reports whether d is visible through c.
func (c *PropertyCache) IsAllowedInRevision(d *PropertyData) bool {
	if d.Revision == 0 {
		return true
	}
	if d.Level >= len(c.allowedRevisions) {
		return false
	}
	return c.allowedRevisions[d.Level] >= d.Revision
}

// AllowedRevision returns the revision gate of the given level.
func (c *PropertyCache) AllowedRevision(level int) int {
	if level < 0 || level >= len(c.allowedRevisions) {
		return 0
	}
	return c.allowedRevisions[level]
}

// AppendProperty adds a property at the next property index.
func (c *PropertyCache) AppendProperty(name string, flags Flags, propType metatype.TypeID, notifyIndex int) *PropertyData {
	d := &PropertyData{
		Name:        name,
		Flags:       flags,
		PropType:    propType,
		CoreIndex:   c.PropertyCount(),
		NotifyIndex: notifyIndex,
		Level:       c.level,
	}
	c.properties = append(c.properties, d)
	c.propNames[name] = d
	return d
}

// AppendSignal adds a signal at the next method index.
func (c *PropertyCache) AppendSignal(name string, flags Flags, params []Parameter) *PropertyData {
	d := &PropertyData{
		Name:        name,
		Flags:       flags | IsSignal | IsFunction,
		CoreIndex:   c.MethodCount(),
		NotifyIndex: -1,
		Level:       c.level,
		Parameters:  params,
	}
	if len(params) > 0 {
		d.Flags |= HasArguments
	}
	c.methods = append(c.methods, d)
	c.signals = append(c.signals, d)
	c.methNames[name] = d
	return d
}

// AppendMethod adds a method at the next method index.
func (c *PropertyCache) AppendMethod(name string, flags Flags, params []Parameter) *PropertyData {
	d := &PropertyData{
		Name:        name,
		Flags:       flags | IsFunction,
		CoreIndex:   c.MethodCount(),
		NotifyIndex: -1,
		Level:       c.level,
		Parameters:  params,
	}
	if len(params) > 0 {
		d.Flags |= HasArguments
	}
	c.methods = append(c.methods, d)
	c.methNames[name] = d
	return d
}

// AddEnum registers a native enumeration at this level.
func (c *PropertyCache) AddEnum(e *Enum) {
	c.enums[e.Name] = e
}

// EnumValue looks up an enumerator in every enumeration of the chain.
func (c *PropertyCache) EnumValue(key string) (int, bool) {
	for p := c; p != nil; p = p.parent {
		for _, e := range p.enums {
			if v, ok := e.Values[key]; ok {
				return v, true
			}
		}
	}
	return 0, false
}

// Enum returns the named enumeration of the chain, or nil.
func (c *PropertyCache) Enum(name string) *Enum {
	for p := c; p != nil; p = p.parent {
		if e, ok := p.enums[name]; ok {
			return e
		}
	}
	return nil
}

// Inherits reports whether base is c or one of its parents.
func (c *PropertyCache) Inherits(base *PropertyCache) bool {
	if base == nil {
		return false
	}
	for p := c; p != nil; p = p.parent {
		if p.Same(base) {
			return true
		}
	}
	return false
}

// canonical returns the cache a revision view was made from.
func (c *PropertyCache) canonical() *PropertyCache {
	if c.origin != nil {
		return c.origin
	}
	return c
}

// Same reports whether c and other describe the same level, looking
// through revision views.
func (c *PropertyCache) Same(other *PropertyCache) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.canonical() == other.canonical()
}

package compiler

import (
	"sort"
	"strings"

	"github.com/deepnoodle-ai/qmlc/errors"
	"github.com/deepnoodle-ai/qmlc/ir"
	"github.com/deepnoodle-ai/qmlc/metatype"
	"github.com/deepnoodle-ai/qmlc/propcache"
	"github.com/deepnoodle-ai/qmlc/registry"
	"github.com/deepnoodle-ai/qmlc/unit"
	"github.com/rs/zerolog"
)

// syntheticComponentName is the type name of Component objects inserted
// around objects assigned to component properties.
const syntheticComponentName = "QmlInternals.Component"

// maxAliasCoreIndex is the largest property index an alias can encode.
const maxAliasCoreIndex = 0xFFFF

func (c *TypeCompiler) resolveComponentsAndAliases(ev *zerolog.Event) error {
	if err := c.findComponents(); err != nil {
		return err
	}
	sort.Ints(c.componentRoots)
	for _, root := range c.componentRoots {
		body := c.componentBody(c.object(root))
		if body < 0 {
			continue
		}
		scope, err := c.resolveScope(root, body)
		if err != nil {
			return err
		}
		c.scopes[root] = scope
	}
	scope, err := c.resolveScope(c.doc.RootObject, c.doc.RootObject)
	if err != nil {
		return err
	}
	c.scopes[c.doc.RootObject] = scope
	c.stats.components = len(c.componentRoots)
	ev.Int("components", c.stats.components).Int("aliases", c.stats.aliases)
	return nil
}

// findComponents flags explicit Component objects and wraps objects
// assigned to component typed properties into synthesized ones.
func (c *TypeCompiler) findComponents() error {
	componentType := c.registry.Type(registry.ComponentClass)
	if componentType == nil {
		return nil
	}
	n := len(c.doc.Objects)
	for i := 0; i < n; i++ {
		obj := c.object(i)
		cache := c.caches[i]
		if cache == nil && c.types[obj.InheritedTypeName] == nil {
			continue
		}
		if c.isComponentType(obj.InheritedTypeName) {
			if err := c.checkComponent(obj); err != nil {
				return err
			}
			obj.Flags |= ir.IsComponent
			if i != c.doc.RootObject {
				c.componentRoots = append(c.componentRoots, i)
			}
			continue
		}
		if cache == nil {
			continue
		}
		for _, b := range obj.Bindings {
			if b.Type != ir.BindingObject || b.HasFlag(ir.IsSignalHandlerObject) {
				continue
			}
			if c.createsComponent(c.object(b.ObjectIndex).InheritedTypeName) {
				continue
			}
			pd, _ := c.bindingProperty(obj, cache, b)
			if pd == nil || !pd.IsQObject() {
				continue
			}
			if t := c.registry.TypeByID(pd.PropType); t == nil || !c.registry.Inherits(t, registry.ComponentClass) {
				continue
			}
			if err := c.synthesizeComponent(componentType, b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *TypeCompiler) checkComponent(obj *ir.Object) error {
	switch {
	case len(obj.Functions) > 0:
		return c.errorf(errors.E1004, obj.Functions[0].Location, "Component objects cannot declare new functions.")
	case len(obj.Properties) > 0:
		return c.errorf(errors.E1004, obj.Properties[0].Location, "Component objects cannot declare new properties.")
	case len(obj.Aliases) > 0:
		return c.errorf(errors.E1004, obj.Aliases[0].Location, "Component objects cannot declare new properties.")
	case len(obj.Signals) > 0:
		return c.errorf(errors.E1004, obj.Signals[0].Location, "Component objects cannot declare new signals.")
	case len(obj.Bindings) == 0:
		return c.errorf(errors.E1004, obj.Location, "Cannot create empty component specification")
	}
	for _, b := range obj.Bindings {
		if b.PropertyName != 0 {
			return c.errorf(errors.E1004, b.Location, "Component elements may not contain properties other than id")
		}
	}
	if len(obj.Bindings) != 1 || obj.Bindings[0].Type != ir.BindingObject {
		return c.errorf(errors.E1004, obj.Bindings[len(obj.Bindings)-1].Location, "Invalid component body specification")
	}
	return nil
}

// synthesizeComponent inserts a Component object between the binding and
// the object it assigns.
func (c *TypeCompiler) synthesizeComponent(componentType *registry.Type, b *ir.Binding) error {
	name := c.doc.Strings.Register(syntheticComponentName)
	if _, ok := c.types[name]; !ok {
		cache, err := c.registry.PropertyCache(componentType)
		if err != nil {
			return c.errorf(errors.E2001, b.Location, "%s", err)
		}
		ref := &unit.TypeReference{
			Name:          syntheticComponentName,
			Type:          componentType,
			Cache:         cache,
			NeedsCreation: true,
		}
		if len(componentType.Exports) > 0 {
			e := componentType.Exports[0]
			ref.Module, ref.Major, ref.Minor = e.Module, e.Major, e.Minor
			c.doc.Imports = append(c.doc.Imports, &ir.Import{
				URI:       e.Module,
				Qualifier: strings.TrimSuffix(syntheticComponentName, ".Component"),
				Major:     e.Major,
				Minor:     e.Minor,
			})
		}
		c.types[name] = ref
	}

	obj := ir.NewObject(name, b.ValueLocation)
	obj.Flags |= ir.IsComponent
	inner := *b
	inner.PropertyName = 0
	inner.Type = ir.BindingObject
	inner.Flags &^= ir.IsOnAssignment | ir.IsListItem
	obj.Bindings = []*ir.Binding{&inner}

	index := c.doc.AddObject(obj)
	c.caches = append(c.caches, c.types[name].Cache)
	c.vme = append(c.vme, nil)
	b.ObjectIndex = index
	c.componentRoots = append(c.componentRoots, index)
	return nil
}

// componentBody returns the object index of the single child of a Component
// object, or -1.
func (c *TypeCompiler) componentBody(obj *ir.Object) int {
	for _, b := range obj.Bindings {
		if b.Type == ir.BindingObject {
			return b.ObjectIndex
		}
	}
	return -1
}

// resolveScope assigns the ids of the component rooted at root, starting
// the walk at start, and resolves the aliases declared in it.
func (c *TypeCompiler) resolveScope(root, start int) (unit.Component, error) {
	scope := unit.Component{Root: root, Names: map[string]int{}}
	var withAliases []int
	seen := map[int]bool{}
	var collect func(index int) error
	collect = func(index int) error {
		if seen[index] {
			return nil
		}
		seen[index] = true
		obj := c.object(index)
		if obj.IDName != 0 {
			id := c.stringAt(obj.IDName)
			if _, dup := scope.Names[id]; dup {
				return c.errorf(errors.E1001, obj.IDLocation, "id is not unique")
			}
			obj.ID = len(scope.Objects)
			scope.Names[id] = obj.ID
			scope.Objects = append(scope.Objects, index)
		}
		if len(obj.Aliases) > 0 {
			withAliases = append(withAliases, index)
		}
		if obj.HasFlag(ir.IsComponent) && index != start {
			return nil
		}
		for _, b := range obj.Bindings {
			if b.IsObjectBinding() {
				if err := collect(b.ObjectIndex); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := collect(start); err != nil {
		return scope, err
	}
	return scope, c.resolveAliases(scope, withAliases)
}

// resolveAliases resolves aliases until every object of the scope is done.
// Aliases to aliases of other objects wait until those are resolved and
// appended to their cache.
func (c *TypeCompiler) resolveAliases(scope unit.Component, pending []int) error {
	for len(pending) > 0 {
		progress := false
		var next []int
		for _, index := range pending {
			done, changed, err := c.resolveObjectAliases(scope, index)
			if err != nil {
				return err
			}
			progress = progress || changed
			if !done {
				next = append(next, index)
				continue
			}
			if err := c.appendAliasProperties(scope, index); err != nil {
				return err
			}
		}
		if !progress && len(next) > 0 {
			obj := c.object(next[0])
			loc := obj.Location
			for _, a := range obj.Aliases {
				if !a.IsResolved() {
					loc = a.Location
					break
				}
			}
			return c.errorf(errors.E2006, loc, "Circular alias reference detected")
		}
		pending = next
	}
	return nil
}

func (c *TypeCompiler) resolveObjectAliases(scope unit.Component, index int) (done, progress bool, err error) {
	obj := c.object(index)
	done = true
	for j, a := range obj.Aliases {
		if a.IsResolved() {
			continue
		}
		id, ok := scope.Names[c.stringAt(a.IDName)]
		if !ok {
			return false, false, c.errorf(errors.E2004, a.ReferenceLocation, "Invalid alias reference. Unable to find id \"%s\"", c.stringAt(a.IDName))
		}
		targetIndex := scope.Objects[id]
		a.TargetObjectID = id

		path := c.stringAt(a.PropertyPath)
		if path == "" {
			a.Flags |= ir.AliasPointsToPointerObject | ir.AliasResolved
			a.TargetCoreIndex = -1
			progress = true
			continue
		}
		prop, sub, hasSub := strings.Cut(path, ".")

		pd, _ := propcache.NewResolver(c.caches[targetIndex]).Property(prop)
		if pd == nil {
			target := c.object(targetIndex)
			local := -1
			for k, other := range target.Aliases {
				if c.stringAt(other.Name) == prop {
					local = k
					break
				}
			}
			switch {
			case local < 0:
				return false, false, c.errorf(errors.E2005, a.ReferenceLocation, "Invalid alias target location: %s", prop)
			case targetIndex != index:
				done = false
			case hasSub:
				return false, false, c.errorf(errors.E2005, a.ReferenceLocation, "Invalid alias target location: %s", sub)
			case local == j:
				return false, false, c.errorf(errors.E2006, a.Location, "Circular alias reference detected")
			default:
				a.LocalAliasIndex = local
				a.Flags |= ir.AliasToLocalAlias | ir.AliasResolved
				progress = true
			}
			continue
		}
		if pd.CoreIndex > maxAliasCoreIndex {
			return false, false, c.errorf(errors.E2005, a.ReferenceLocation, "Invalid alias target location: %s", prop)
		}
		a.TargetCoreIndex = pd.CoreIndex
		if hasSub {
			subIndex := -1
			if vt := metatype.ValueTypeOf(pd.PropType); vt != nil {
				subIndex = vt.Property(sub)
			}
			if subIndex < 0 {
				return false, false, c.errorf(errors.E2005, a.ReferenceLocation, "Invalid alias target location: %s", sub)
			}
			a.TargetSubIndex = subIndex
		} else if pd.IsQObject() {
			a.Flags |= ir.AliasPointsToPointerObject
		}
		a.Flags |= ir.AliasResolved
		progress = true
	}
	return done, progress, nil
}

// aliasTarget is the property an alias finally refers to.
type aliasTarget struct {
	flags    propcache.Flags
	typ      metatype.TypeID
	writable bool
}

// appendAliasProperties adds the resolved aliases of an object to its
// cache, after its declared properties.
func (c *TypeCompiler) appendAliasProperties(scope unit.Component, index int) error {
	obj := c.object(index)
	cache := c.caches[index]
	meta := c.vme[index]
	if cache == nil || meta == nil {
		return nil
	}
	first := cache.PropertyCount()
	for j, a := range obj.Aliases {
		target, err := c.aliasTarget(scope, index, j, map[int]bool{})
		if err != nil {
			return err
		}
		flags := target.flags | propcache.IsAlias
		if target.writable {
			flags |= propcache.IsWritable
		}
		name := c.stringAt(a.Name)
		notify := -1
		if m := cache.Method(name + "Changed"); m != nil {
			notify = m.CoreIndex
		}
		cache.AppendProperty(name, flags, target.typ, notify)

		va := unit.VMEAlias{
			Name:                  name,
			TargetObjectID:        a.TargetObjectID,
			TargetIndex:           a.EncodedIndex(),
			PropType:              target.typ,
			PointsToPointerObject: a.HasFlag(ir.AliasPointsToPointerObject),
			ReadOnly:              !target.writable,
			NotifySignal:          notify,
		}
		if a.HasFlag(ir.AliasToLocalAlias) {
			va.TargetIndex = first + a.LocalAliasIndex
		}
		meta.Aliases = append(meta.Aliases, va)
		c.stats.aliases++
	}
	return nil
}

func (c *TypeCompiler) aliasTarget(scope unit.Component, index, aliasIndex int, visited map[int]bool) (aliasTarget, error) {
	obj := c.object(index)
	a := obj.Aliases[aliasIndex]
	if visited[aliasIndex] {
		return aliasTarget{}, c.errorf(errors.E2006, a.Location, "Circular alias reference detected")
	}
	visited[aliasIndex] = true

	if a.HasFlag(ir.AliasToLocalAlias) {
		t, err := c.aliasTarget(scope, index, a.LocalAliasIndex, visited)
		if err != nil {
			return t, err
		}
		t.writable = t.writable && !a.ReadOnly
		return t, nil
	}

	targetIndex, _ := scope.ObjectForID(a.TargetObjectID)
	if a.TargetCoreIndex < 0 {
		typ := metatype.QObjectStar
		if ref := c.types[c.object(targetIndex).InheritedTypeName]; ref != nil && ref.Type != nil {
			typ = ref.Type.ID
		}
		return aliasTarget{flags: propcache.IsQObjectDerived, typ: typ}, nil
	}

	pd := c.caches[targetIndex].PropertyAt(a.TargetCoreIndex)
	t := aliasTarget{writable: !a.ReadOnly && pd.IsWritable()}
	if a.TargetSubIndex >= 0 {
		sp := metatype.ValueTypeOf(pd.PropType).Properties[a.TargetSubIndex]
		t.typ = sp.Type
		if sp.Enum != "" {
			t.typ = metatype.Int
		}
		t.writable = t.writable && !sp.ReadOnly
		return t, nil
	}
	switch {
	case pd.IsEnum():
		t.typ = metatype.Int
	case pd.IsVarProperty():
		t.typ = pd.PropType
		t.flags = propcache.IsQVariant
	default:
		t.typ = pd.PropType
		t.flags = pd.Flags & (propcache.IsQObjectDerived | propcache.IsQList | propcache.IsQVariant)
	}
	if pd.IsResettable() {
		t.flags |= propcache.IsResettable
	}
	return t, nil
}

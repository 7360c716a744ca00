package compiler

import (
	"fmt"
	"path"
	"strings"

	"github.com/deepnoodle-ai/qmlc/errors"
	"github.com/deepnoodle-ai/qmlc/ir"
	"github.com/deepnoodle-ai/qmlc/metatype"
	"github.com/deepnoodle-ai/qmlc/propcache"
	"github.com/deepnoodle-ai/qmlc/unit"
	"github.com/rs/zerolog"
)

// cacheContext describes how an object is reached from its parent.
type cacheContext struct {
	referencingObject int
	binding           *ir.Binding
	// property is the property of the referencing object that a group
	// object instantiates.
	property *propcache.PropertyData
}

func (c *TypeCompiler) buildPropertyCaches(ev *zerolog.Event) error {
	c.caches = make([]*propcache.PropertyCache, len(c.doc.Objects))
	c.vme = make([]*unit.VMEMetaData, len(c.doc.Objects))
	if err := c.buildCache(c.doc.RootObject, cacheContext{referencingObject: -1}); err != nil {
		return err
	}
	ev.Int("objects", len(c.caches)).Int("synthesized", c.stats.synthesized)
	return nil
}

func (c *TypeCompiler) buildCache(index int, ctx cacheContext) error {
	obj := c.object(index)
	base, err := c.baseCache(obj, ctx)
	if err != nil {
		return err
	}
	if base != nil {
		needsVME := obj.DeclaresMembers()
		if !needsVME {
			for _, b := range obj.Bindings {
				if b.Type != ir.BindingObject || !b.HasFlag(ir.IsOnAssignment) {
					continue
				}
				// Interceptors on value type groups live on the object
				// owning the group.
				if ctx.property != nil && metatype.IsValueType(ctx.property.PropType) {
					if err := c.ensureVME(ctx.referencingObject); err != nil {
						return err
					}
				} else {
					needsVME = true
				}
				break
			}
		}
		if needsVME {
			if err := c.createMetaObject(index, obj, base); err != nil {
				return err
			}
		} else {
			c.caches[index] = base
		}
	}

	cache := c.caches[index]
	for _, b := range obj.Bindings {
		if !b.IsObjectBinding() {
			continue
		}
		child := cacheContext{referencingObject: index, binding: b}
		if b.Type == ir.BindingGroupProperty && cache != nil {
			child.property, _ = propcache.NewResolver(cache).Property(c.stringAt(b.PropertyName))
		}
		if err := c.buildCache(b.ObjectIndex, child); err != nil {
			return err
		}
	}
	return nil
}

// baseCache returns the cache an object derives from. A nil cache without
// error leaves the object unresolved for the validator to report.
func (c *TypeCompiler) baseCache(obj *ir.Object, ctx cacheContext) (*propcache.PropertyCache, error) {
	if ctx.binding != nil {
		switch ctx.binding.Type {
		case ir.BindingGroupProperty:
			pd := ctx.property
			if pd == nil {
				return nil, nil
			}
			if metatype.IsValueType(pd.PropType) {
				return propcache.ForValueType(pd.PropType), nil
			}
			if pd.IsQObject() {
				return c.cacheForTypeID(pd.PropType), nil
			}
			return nil, nil
		case ir.BindingAttachedProperty:
			ref := c.types[ctx.binding.PropertyName]
			var attached *propcache.PropertyCache
			if ref != nil {
				var err error
				attached, err = c.registry.AttachedCache(c.registryType(ref))
				if err != nil {
					return nil, c.errorf(errors.E2002, ctx.binding.Location, "%s", err)
				}
			}
			if attached == nil {
				return nil, c.errorf(errors.E2002, ctx.binding.Location, "Non-existent attached object")
			}
			return attached, nil
		}
	}
	if ref := c.types[obj.InheritedTypeName]; ref != nil {
		return ref.Cache, nil
	}
	return nil, nil
}

// cacheForTypeID returns the cache of an object type id, native or
// composite.
func (c *TypeCompiler) cacheForTypeID(id metatype.TypeID) *propcache.PropertyCache {
	if cache := c.registry.CacheForTypeID(id); cache != nil {
		return cache
	}
	for _, ref := range c.types {
		if ref.IsComposite() && ref.Type != nil && ref.Type.ID == id {
			return ref.Cache
		}
	}
	return nil
}

// ensureVME gives the object its own cache if it still shares one.
func (c *TypeCompiler) ensureVME(index int) error {
	if index < 0 || c.vme[index] != nil || c.caches[index] == nil {
		return nil
	}
	return c.createMetaObject(index, c.object(index), c.caches[index])
}

func (c *TypeCompiler) className(index int, base *propcache.PropertyCache) string {
	n := classIndexCounter.Add(1) - 1
	if index == c.doc.RootObject {
		name := strings.TrimSuffix(path.Base(c.doc.URL), ".qml")
		if isUpper(name) {
			return fmt.Sprintf("%s_QMLTYPE_%d", name, n)
		}
	}
	return fmt.Sprintf("%s_QML_%d", base.EffectiveClassName(), n)
}

// createMetaObject synthesizes the cache of an object declaring members.
// Change signals come first, ordered normal, var and alias properties,
// then declared signals, functions and properties. Alias properties are
// appended once the aliases are resolved.
func (c *TypeCompiler) createMetaObject(index int, obj *ir.Object, base *propcache.PropertyCache) error {
	if t := c.registry.Type(base.ClassName()); t != nil && t.FullyDynamic {
		switch {
		case len(obj.Properties) > 0 || len(obj.Aliases) > 0:
			return c.errorf(errors.E1003, obj.Location, "Fully dynamic types cannot declare new properties.")
		case len(obj.Signals) > 0:
			return c.errorf(errors.E1003, obj.Location, "Fully dynamic types cannot declare new signals.")
		case len(obj.Functions) > 0:
			return c.errorf(errors.E1003, obj.Location, "Fully dynamic types cannot declare new functions.")
		}
	}
	for _, p := range obj.Properties {
		if d := base.Property(c.stringAt(p.Name)); d != nil && d.IsFinal() {
			return c.errorf(errors.E1002, p.Location, "Cannot override FINAL property")
		}
	}
	for _, a := range obj.Aliases {
		if d := base.Property(c.stringAt(a.Name)); d != nil && d.IsFinal() {
			return c.errorf(errors.E1002, a.Location, "Cannot override FINAL property")
		}
	}

	cache := base.CopyAndReserve(c.className(index, base))
	if obj.DefaultProperty >= 0 {
		if obj.HasFlag(ir.DefaultPropertyIsAlias) {
			cache.SetDefaultPropertyName(c.stringAt(obj.Aliases[obj.DefaultProperty].Name))
		} else {
			cache.SetDefaultPropertyName(c.stringAt(obj.Properties[obj.DefaultProperty].Name))
		}
	}

	seenSignals := map[string]bool{"destroyed": true, "parentChanged": true, "objectNameChanged": true}
	for p := base; p != nil; p = p.Parent() {
		for _, s := range p.OwnSignals() {
			seenSignals[s.Name] = true
		}
	}
	appendNotify := func(name string, loc ir.Location) error {
		signal := name + "Changed"
		if seenSignals[signal] {
			return c.errorf(errors.E4004, loc, "Duplicate signal name: invalid override of property change signal or superclass signal")
		}
		seenSignals[signal] = true
		cache.AppendSignal(signal, propcache.IsVMESignal, nil)
		return nil
	}
	for _, varProps := range []bool{false, true} {
		for _, p := range obj.Properties {
			if (p.Type == ir.Var) != varProps {
				continue
			}
			if err := appendNotify(c.stringAt(p.Name), p.Location); err != nil {
				return err
			}
		}
	}
	for _, a := range obj.Aliases {
		if err := appendNotify(c.stringAt(a.Name), a.Location); err != nil {
			return err
		}
	}

	meta := &unit.VMEMetaData{}
	for _, s := range obj.Signals {
		name := c.stringAt(s.Name)
		if seenSignals[name] {
			return c.errorf(errors.E4004, s.Location, "Duplicate signal name: invalid override of property change signal or superclass signal")
		}
		seenSignals[name] = true
		params := make([]propcache.Parameter, len(s.Parameters))
		vs := unit.VMESignal{Name: name}
		for i, sp := range s.Parameters {
			typ, err := c.parameterType(sp, s.Location)
			if err != nil {
				return err
			}
			params[i] = propcache.Parameter{Name: c.stringAt(sp.Name), Type: typ}
			vs.ParameterNames = append(vs.ParameterNames, params[i].Name)
			vs.ParameterTypes = append(vs.ParameterTypes, typ)
		}
		cache.AppendSignal(name, propcache.IsVMESignal, params)
		meta.Signals = append(meta.Signals, vs)
	}

	for _, fn := range obj.Functions {
		name := c.stringAt(fn.Name)
		if seenSignals[name] {
			return c.errorf(errors.E4004, fn.Location, "Duplicate method name: invalid override of property change signal or superclass signal")
		}
		var params []propcache.Parameter
		if decl := obj.Scripts[fn.ScriptIndex].Function(); decl != nil {
			for _, p := range decl.Params {
				params = append(params, propcache.Parameter{Name: p.Name, Type: metatype.QVariant})
			}
		}
		cache.AppendMethod(name, propcache.IsVMEFunction, params)
		meta.Methods = append(meta.Methods, unit.VMEMethod{
			Name:                 name,
			ParameterCount:       len(params),
			Line:                 fn.Location.Line,
			RuntimeFunctionIndex: -1,
		})
	}

	for _, varProps := range []bool{false, true} {
		for _, p := range obj.Properties {
			if (p.Type == ir.Var) != varProps {
				continue
			}
			flags, typ, err := c.propertyFlags(p)
			if err != nil {
				return err
			}
			name := c.stringAt(p.Name)
			cache.AppendProperty(name, flags, typ, cache.Method(name+"Changed").CoreIndex)
		}
	}
	for _, p := range obj.Properties {
		typ, _ := metatype.FromPropertyType(p.Type)
		if p.Type == ir.Custom || p.Type == ir.CustomList {
			typ = cache.Property(c.stringAt(p.Name)).PropType
		}
		meta.Properties = append(meta.Properties, unit.VMEProperty{
			Name:     c.stringAt(p.Name),
			Type:     typ,
			Var:      p.Type == ir.Var,
			ReadOnly: p.ReadOnly,
		})
	}

	c.caches[index] = cache
	c.vme[index] = meta
	c.stats.synthesized++
	return nil
}

func (c *TypeCompiler) propertyFlags(p *ir.Property) (propcache.Flags, metatype.TypeID, error) {
	var flags propcache.Flags
	var typ metatype.TypeID
	switch p.Type {
	case ir.Var:
		flags |= propcache.IsVarProperty
		typ = metatype.QVariant
	case ir.Custom, ir.CustomList:
		res, ok := c.imports.Resolve(c.stringAt(p.CustomTypeName))
		if !ok || res.Namespace {
			return 0, 0, c.errorf(errors.E2003, p.Location, "Invalid property type")
		}
		if p.Type == ir.CustomList {
			flags |= propcache.IsQList
			typ = res.Type.ListID()
		} else {
			flags |= propcache.IsQObjectDerived
			typ = res.Type.ID
		}
	default:
		typ, _ = metatype.FromPropertyType(p.Type)
		if p.Type == ir.Variant {
			flags |= propcache.IsQVariant
		}
	}
	if !p.ReadOnly && p.Type != ir.CustomList {
		flags |= propcache.IsWritable
	}
	return flags, typ, nil
}

func (c *TypeCompiler) parameterType(p *ir.SignalParameter, loc ir.Location) (metatype.TypeID, error) {
	if p.Type != ir.Custom && p.Type != ir.CustomList {
		typ, _ := metatype.FromPropertyType(p.Type)
		return typ, nil
	}
	name := c.stringAt(p.CustomTypeName)
	res, ok := c.imports.Resolve(name)
	if !ok || res.Namespace {
		return 0, c.errorf(errors.E4003, loc, "Invalid signal parameter type: %s", name)
	}
	if p.Type == ir.CustomList {
		return res.Type.ListID(), nil
	}
	return res.Type.ID, nil
}

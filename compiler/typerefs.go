package compiler

import (
	"context"

	"github.com/deepnoodle-ai/qmlc/errors"
	"github.com/deepnoodle-ai/qmlc/ir"
	"github.com/deepnoodle-ai/qmlc/registry"
	"github.com/deepnoodle-ai/qmlc/unit"
	"github.com/rs/zerolog"
)

// resolveTypes creates one type reference per distinct type name used by
// an object or an attached property binding.
func (c *TypeCompiler) resolveTypes(ctx context.Context, ev *zerolog.Event) error {
	type use struct {
		loc          ir.Location
		instantiated bool
	}
	uses := map[int]*use{}
	var order []int
	add := func(name int, loc ir.Location, instantiated bool) {
		if u, ok := uses[name]; ok {
			u.instantiated = u.instantiated || instantiated
			return
		}
		uses[name] = &use{loc: loc, instantiated: instantiated}
		order = append(order, name)
	}
	for _, obj := range c.doc.Objects {
		if obj.InheritedTypeName != 0 {
			add(obj.InheritedTypeName, obj.Location, true)
		}
		for _, b := range obj.Bindings {
			if b.Type == ir.BindingAttachedProperty {
				add(b.PropertyName, b.Location, false)
			}
		}
	}
	for _, name := range order {
		u := uses[name]
		ref, err := c.resolveType(ctx, c.stringAt(name), u.loc, u.instantiated)
		if err != nil {
			return err
		}
		if ref == nil {
			continue
		}
		c.types[name] = ref
		if ref.Type != nil && !ref.IsComposite() {
			if p, ok := c.parsers[ref.Type.Name]; ok {
				c.customParsers[name] = p
			}
		}
	}
	c.stats.typeRefs = len(c.types)
	ev.Int("types", len(c.types)).Int("custom_parsers", len(c.customParsers))
	return nil
}

func (c *TypeCompiler) resolveType(ctx context.Context, name string, loc ir.Location, instantiated bool) (*unit.TypeReference, error) {
	res, ok := c.imports.Resolve(name)
	if ok && res.Namespace {
		if instantiated {
			return nil, c.errorf(errors.E2009, loc, "Namespace %s cannot be used as a type", name)
		}
		// Reported as a missing attached object by the cache builder.
		return nil, nil
	}
	if !ok {
		return nil, c.errorf(errors.E2001, loc, "%s is not a type", name).
			WithSuggestions(name, c.imports.Candidates())
	}
	t := res.Type
	ref := &unit.TypeReference{
		Name:          name,
		Type:          t,
		Module:        res.Import.Module,
		Major:         res.Import.Major,
		Minor:         res.Import.Minor,
		NeedsCreation: instantiated,
	}
	if t.IsComposite {
		if instantiated && t.IsCompositeSingleton() {
			return nil, c.errorf(errors.E2010, loc, "Composite Singleton Type %s is not creatable.", name)
		}
		if c.resolver == nil {
			return nil, c.errorf(errors.E2001, loc, "Type %s unavailable", name)
		}
		u, err := c.resolver.ResolveComposite(ctx, t)
		if err != nil {
			e := c.errorf(errors.E2001, loc, "Type %s unavailable", name)
			e.Note = err.Error()
			return nil, e
		}
		if instantiated && u.IsSingleton() {
			return nil, c.errorf(errors.E2010, loc, "Composite Singleton Type %s is not creatable.", name)
		}
		ref.Composite = u
		ref.Cache = u.RootCache()
		return ref, nil
	}
	if instantiated && !t.IsCreatable() {
		return nil, c.errorf(errors.E2010, loc, "Element is not creatable.")
	}
	cache, err := c.registry.VersionedCache(t, res.Import.Module, res.Import.Major, res.Import.Minor)
	if err != nil {
		return nil, c.errorf(errors.E2001, loc, "%s", err)
	}
	ref.Cache = cache
	return ref, nil
}

// isComponentType reports whether the type name resolves to the native
// Component type.
func (c *TypeCompiler) isComponentType(name int) bool {
	ref := c.types[name]
	return ref != nil && !ref.IsComposite() && ref.Type != nil && ref.Type.Name == registry.ComponentClass
}

// createsComponent reports whether objects of the type name already are
// components, natively or through a composite type rooted in Component.
func (c *TypeCompiler) createsComponent(name int) bool {
	ref := c.types[name]
	if ref == nil {
		return false
	}
	if ref.IsComposite() {
		return ref.Cache != nil && ref.Cache.ClassName() == registry.ComponentClass
	}
	return c.isComponentType(name)
}

// registryType returns the native type behind ref. For composite types it
// is the native base of the composite root.
func (c *TypeCompiler) registryType(ref *unit.TypeReference) *registry.Type {
	if ref == nil {
		return nil
	}
	if ref.IsComposite() && ref.Cache != nil {
		return c.registry.Type(ref.Cache.ClassName())
	}
	return ref.Type
}

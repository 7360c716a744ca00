package compiler

import (
	"github.com/deepnoodle-ai/qmlc/ir"
	"github.com/deepnoodle-ai/qmlc/metatype"
	"github.com/deepnoodle-ai/qmlc/registry"
	"github.com/rs/zerolog"
)

// indexCustomParserScripts stores the source text of every script binding
// below an object handled by a custom parser, so the parser can read it.
func (c *TypeCompiler) indexCustomParserScripts(ev *zerolog.Event) error {
	seen := map[int]bool{}
	var scan func(index int, annotate bool)
	scan = func(index int, annotate bool) {
		if seen[index] {
			return
		}
		seen[index] = true
		obj := c.object(index)
		annotate = annotate || c.customParser(obj) != nil
		for _, b := range obj.Bindings {
			if b.IsObjectBinding() {
				scan(b.ObjectIndex, annotate)
				continue
			}
			if annotate && b.Type == ir.BindingScript {
				b.StringIndex = c.doc.Strings.Register(c.bindingSource(obj, b))
				c.stats.customParser++
			}
		}
	}
	for i, obj := range c.doc.Objects {
		if c.customParser(obj) != nil {
			scan(i, true)
		}
	}
	ev.Int("scripts", c.stats.customParser)
	return nil
}

// annotateAliasBindings flags value bindings whose target property is an
// alias.
func (c *TypeCompiler) annotateAliasBindings(ev *zerolog.Event) error {
	n := 0
	for i, obj := range c.doc.Objects {
		cache := c.caches[i]
		if cache == nil {
			continue
		}
		for _, b := range obj.Bindings {
			if !b.IsValueBinding() || b.IsSignalHandler() {
				continue
			}
			if pd, _ := c.bindingProperty(obj, cache, b); pd != nil && pd.IsAlias() {
				b.Flags |= ir.IsBindingToAlias
				n++
			}
		}
	}
	ev.Int("alias_bindings", n)
	return nil
}

// scanScriptStrings keeps the source text of scripts assigned to script
// string properties. Those scripts are evaluated in an arbitrary scope later
// and must not use lookups bound at compile time.
func (c *TypeCompiler) scanScriptStrings(ev *zerolog.Event) error {
	n := 0
	for i, obj := range c.doc.Objects {
		cache := c.caches[i]
		if cache == nil {
			continue
		}
		for _, b := range obj.Bindings {
			if b.Type != ir.BindingScript || b.IsSignalHandler() {
				continue
			}
			pd, _ := c.bindingProperty(obj, cache, b)
			if pd == nil || pd.PropType != metatype.ScriptString {
				continue
			}
			s := obj.Scripts[b.ScriptIndex]
			s.DisableAcceleratedLookups = true
			b.StringIndex = c.doc.Strings.Register(s.Source)
			n++
		}
	}
	ev.Int("script_strings", n)
	return nil
}

// scanDeferredBindings flags bindings to deferred properties and bindings
// left to custom parsers. A binding is only deferred when no object below it
// declares an id, since ids must be reachable when the scope is created.
func (c *TypeCompiler) scanDeferredBindings(ev *zerolog.Event) error {
	seen := map[int]bool{}
	c.scanObjectForDeferred(c.doc.RootObject, seen)
	ev.Int("deferred", c.stats.deferred)
	return nil
}

// scanObjectForDeferred reports whether the object or any object below it
// declares an id.
func (c *TypeCompiler) scanObjectForDeferred(index int, seen map[int]bool) bool {
	if seen[index] {
		return false
	}
	seen[index] = true
	obj := c.object(index)
	hasID := obj.IDName != 0

	if obj.HasFlag(ir.IsComponent) {
		for _, b := range obj.Bindings {
			if b.Type == ir.BindingObject {
				hasID = c.scanObjectForDeferred(b.ObjectIndex, seen) || hasID
			}
		}
		return hasID
	}

	cache := c.caches[index]
	parser := c.customParser(obj)
	var chain []*registry.Type
	if cache != nil {
		chain = c.registry.Chain(c.registry.Type(cache.ClassName()))
	}

	for _, b := range obj.Bindings {
		name := c.stringAt(b.PropertyName)
		if parser != nil {
			flags := parser.Flags()
			if b.Type == ir.BindingAttachedProperty && flags&AcceptsAttachedProperties != 0 {
				c.markCustomParserBinding(obj, b)
				continue
			}
			if isSignalPropertyName(name) && !b.IsSignalHandler() && flags&AcceptsSignalHandlers == 0 {
				c.markCustomParserBinding(obj, b)
				continue
			}
		}
		if b.IsSignalHandler() {
			continue
		}

		var found bool
		if cache != nil {
			pd, _ := c.bindingProperty(obj, cache, b)
			if pd != nil {
				found = true
				if name == "" {
					name = pd.Name
				}
			}
		}
		if isUpper(name) && b.Type != ir.BindingAttachedProperty {
			continue
		}

		subHasID := false
		if b.IsObjectBinding() && (found || b.Type == ir.BindingAttachedProperty) {
			subHasID = c.scanObjectForDeferred(b.ObjectIndex, seen)
			hasID = hasID || subHasID
		}
		if b.Type == ir.BindingAttachedProperty || b.Type == ir.BindingGroupProperty {
			continue
		}
		if !subHasID && name != "" && isDeferred(chain, name) {
			b.Flags |= ir.IsDeferredBinding
			obj.Flags |= ir.HasDeferredBindings
			c.stats.deferred++
		}
		if !found && parser != nil {
			c.markCustomParserBinding(obj, b)
		}
	}
	return hasID
}

func (c *TypeCompiler) markCustomParserBinding(obj *ir.Object, b *ir.Binding) {
	b.Flags |= ir.IsCustomParserBinding
	obj.Flags |= ir.HasCustomParserBindings
}

func isDeferred(chain []*registry.Type, name string) bool {
	for _, t := range chain {
		if t.IsDeferred(name) {
			return true
		}
	}
	return false
}

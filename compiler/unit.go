package compiler

import (
	"github.com/deepnoodle-ai/qmlc/errors"
	"github.com/deepnoodle-ai/qmlc/ir"
	"github.com/deepnoodle-ai/qmlc/unit"
)

// generateUnit freezes the compiler tables into a unit.
func (c *TypeCompiler) generateUnit() (*unit.Unit, error) {
	n := len(c.doc.Objects)
	deferred := make([]*unit.BitSet, n)
	custom := make([]*unit.BitSet, n)
	for i, obj := range c.doc.Objects {
		for j, b := range obj.Bindings {
			if b.HasFlag(ir.IsDeferredBinding) {
				if deferred[i] == nil {
					deferred[i] = unit.NewBitSet(len(obj.Bindings))
				}
				deferred[i].Set(j)
			}
			if b.HasFlag(ir.IsCustomParserBinding) {
				if custom[i] == nil {
					custom[i] = unit.NewBitSet(len(obj.Bindings))
				}
				custom[i].Set(j)
			}
		}
	}

	for i, meta := range c.vme {
		if meta == nil {
			continue
		}
		obj := c.object(i)
		for k, fn := range obj.Functions {
			if k < len(meta.Methods) && fn.ScriptIndex < len(obj.RuntimeFunctionIndices) {
				meta.Methods[k].RuntimeFunctionIndex = obj.RuntimeFunctionIndices[fn.ScriptIndex]
			}
		}
	}

	components := []unit.Component{c.scopes[c.doc.RootObject]}
	for _, root := range c.componentRoots {
		if scope, ok := c.scopes[root]; ok {
			components = append(components, scope)
		}
	}

	u, err := unit.New(unit.Params{
		URL:          c.doc.URL,
		Source:       c.doc.Source,
		Objects:      c.doc.Objects,
		RootObject:   c.doc.RootObject,
		Strings:      c.doc.Strings.Strings(),
		Singleton:    c.doc.IsSingleton(),
		Types:        c.types,
		Caches:       c.caches,
		Components:   components,
		Deferred:     deferred,
		CustomParser: custom,
		VME:          c.vme,
		Module:       c.module,
	})
	if err != nil {
		return nil, c.fail(errors.Newf(errors.E1004, 0, 0, "%s", err))
	}
	c.logger.Debug().
		Str("url", c.doc.URL).
		Int("objects", u.ObjectCount()).
		Int("functions", u.FunctionCount()).
		Int("components", len(components)-1).
		Int("deferred", c.stats.deferred).
		Int("elided", c.stats.elided).
		Msg("compiled unit")
	return u, nil
}

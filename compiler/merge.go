package compiler

import (
	"github.com/deepnoodle-ai/qmlc/ir"
	"github.com/rs/zerolog"
)

func (c *TypeCompiler) mergeDefaultProperties(ev *zerolog.Event) error {
	for i, obj := range c.doc.Objects {
		if c.caches[i] == nil {
			continue
		}
		pd := c.defaultProperty(obj, c.caches[i])
		if pd == nil {
			continue
		}
		name, ok := c.doc.Strings.Lookup(pd.Name)
		if !ok {
			continue
		}
		if mergeDefaultBindings(obj, name) {
			c.stats.merged++
		}
	}
	ev.Int("merged", c.stats.merged)
	return nil
}

// mergeDefaultBindings moves the bindings that name the default property
// explicitly among the unnamed ones, each after the leading run of
// bindings whose values precede it in the source. It reports whether any
// binding was moved.
func mergeDefaultBindings(obj *ir.Object, name int) bool {
	var named, rest []*ir.Binding
	for _, b := range obj.Bindings {
		if b.PropertyName == name {
			named = append(named, b)
		} else {
			rest = append(rest, b)
		}
	}
	if len(named) == 0 {
		return false
	}
	for _, b := range named {
		pos := 0
		for pos < len(rest) && rest[pos].ValueLocation.Less(b.ValueLocation) {
			pos++
		}
		rest = append(rest, nil)
		copy(rest[pos+1:], rest[pos:])
		rest[pos] = b
	}
	obj.Bindings = rest
	return true
}

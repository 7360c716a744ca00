package compiler

import (
	"strings"

	"github.com/deepnoodle-ai/qmlc/errors"
	"github.com/deepnoodle-ai/qmlc/ir"
	"github.com/deepnoodle-ai/qmlc/metatype"
	"github.com/deepnoodle-ai/qmlc/propcache"
	"github.com/rs/zerolog"
)

func (c *TypeCompiler) resolveEnums(ev *zerolog.Event) error {
	for i, obj := range c.doc.Objects {
		cache := c.caches[i]
		if cache == nil {
			continue
		}
		resolver := propcache.NewResolver(cache)
		for _, b := range obj.Bindings {
			if b.IsSignalHandler() || b.Type != ir.BindingScript {
				continue
			}
			pd, _ := resolver.Property(c.stringAt(b.PropertyName))
			if pd == nil || (!pd.IsEnum() && pd.PropType != metatype.Int) {
				continue
			}
			if err := c.tryQualifiedEnumAssignment(obj, pd, b); err != nil {
				return err
			}
		}
	}
	ev.Int("enums", c.stats.enums)
	return nil
}

// tryQualifiedEnumAssignment rewrites a "Type.Value" script into the
// numeric value of the enumerator. Scripts of any other form, and
// enumerators that do not resolve, are left for the script compiler.
func (c *TypeCompiler) tryQualifiedEnumAssignment(obj *ir.Object, pd *propcache.PropertyData, b *ir.Binding) error {
	isIntProp := pd.PropType == metatype.Int && !pd.IsEnum()
	if !pd.IsWritable() && !b.HasFlag(ir.InitializerForReadOnlyDeclaration) {
		return c.errorf(errors.E3002, b.Location, "Invalid property assignment: \"%s\" is a read-only property", c.stringAt(b.PropertyName))
	}
	script := strings.TrimSpace(c.bindingSource(obj, b))
	if !isUpper(script) {
		return nil
	}
	typeName, enumValue, ok := strings.Cut(script, ".")
	if !ok || enumValue == "" || strings.Contains(enumValue, ".") {
		return nil
	}
	isQt := typeName == "Qt"
	// Lowercase enumerators only exist in the Qt namespace.
	if isLower(enumValue) && !isQt {
		return nil
	}

	var value int
	if isIntProp {
		value, ok = c.evaluateEnum(typeName, enumValue)
	} else {
		value, ok = c.enumValue(obj, pd, typeName, enumValue)
	}
	if !ok {
		return nil
	}
	b.Type = ir.BindingNumber
	b.Number = float64(value)
	b.Flags |= ir.IsResolvedEnum
	c.stats.enums++
	return nil
}

func (c *TypeCompiler) enumValue(obj *ir.Object, pd *propcache.PropertyData, typeName, enumValue string) (int, bool) {
	if typeName == "Qt" {
		return metatype.QtEnumValue(enumValue)
	}
	res, ok := c.imports.Resolve(typeName)
	if !ok || res.Namespace || res.Type.IsComposite {
		return 0, false
	}
	// The enumeration of the property is searched directly when the
	// qualifier names the type of the object itself.
	if ref := c.types[obj.InheritedTypeName]; ref != nil && ref.Type == res.Type && pd.Enum != nil {
		if pd.Enum.IsFlag {
			return pd.Enum.KeysToValue(enumValue)
		}
		return pd.Enum.KeyToValue(enumValue)
	}
	return c.evaluateEnum(typeName, enumValue)
}

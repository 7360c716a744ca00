package compiler

import (
	"math"

	"fortio.org/safecast"
	"github.com/deepnoodle-ai/qmlc/errors"
	"github.com/deepnoodle-ai/qmlc/ir"
	"github.com/deepnoodle-ai/qmlc/metatype"
	"github.com/deepnoodle-ai/qmlc/propcache"
	"github.com/deepnoodle-ai/qmlc/stringconv"
	"github.com/rs/zerolog"
)

// validate checks every binding of the document against the property it
// assigns and hands the bindings claimed by custom parsers to their parser.
func (c *TypeCompiler) validate(ev *zerolog.Event) error {
	seen := map[int]bool{}
	if err := c.validateObject(c.doc.RootObject, nil, false, seen); err != nil {
		return err
	}
	for _, root := range c.componentRoots {
		if err := c.validateObject(root, nil, false, seen); err != nil {
			return err
		}
	}
	ev.Int("objects", len(seen))
	return nil
}

func (c *TypeCompiler) validateObject(index int, instantiating *ir.Binding, populatingValueTypeGroup bool, seen map[int]bool) error {
	if seen[index] {
		return nil
	}
	seen[index] = true
	obj := c.object(index)

	if obj.HasFlag(ir.IsComponent) {
		for _, b := range obj.Bindings {
			if b.Type == ir.BindingObject {
				return c.validateObject(b.ObjectIndex, b, false, seen)
			}
		}
		return nil
	}

	cache := c.caches[index]
	if cache == nil {
		return nil
	}
	parser := c.customParser(obj)

	groupProperties := map[int]*ir.Binding{}
	for _, b := range obj.Bindings {
		if b.Type != ir.BindingGroupProperty || b.HasFlag(ir.IsOnAssignment) {
			continue
		}
		if populatingValueTypeGroup {
			return c.errorf(errors.E3005, b.Location, "Property assignment expected")
		}
		if _, ok := groupProperties[b.PropertyName]; !ok {
			groupProperties[b.PropertyName] = b
		}
	}

	resolver := propcache.NewResolver(cache)
	var custom []*ir.Binding
	for _, b := range obj.Bindings {
		if b.HasFlag(ir.IsCustomParserBinding) {
			custom = append(custom, b)
			continue
		}
		if b.IsSignalHandler() {
			continue
		}
		name := c.stringAt(b.PropertyName)
		if isUpper(name) && b.Type != ir.BindingAttachedProperty {
			if c.imports.IsNamespace(name) {
				return c.errorf(errors.E2009, b.Location, "Invalid use of namespace")
			}
			return c.errorf(errors.E2002, b.Location, "Invalid attached object assignment")
		}

		var pd *propcache.PropertyData
		toDefault := false
		if b.Type == ir.BindingAttachedProperty {
			// Attached objects resolve against their own cache.
		} else if name != "" {
			var notInRevision bool
			pd, notInRevision = resolver.Property(name)
			if notInRevision {
				typeName := c.stringAt(obj.InheritedTypeName)
				if ref := c.types[obj.InheritedTypeName]; ref != nil && ref.Type != nil {
					return c.errorf(errors.E2007, b.Location, "\"%s.%s\" is not available in %s %d.%d.",
						typeName, name, ref.Module, ref.Major, ref.Minor)
				}
				return c.errorf(errors.E2007, b.Location, "\"%s.%s\" is not available due to component versioning.", typeName, name)
			}
		} else {
			if instantiating != nil && instantiating.Type == ir.BindingGroupProperty {
				return c.errorf(errors.E3005, b.Location, "Cannot assign a value directly to a grouped property")
			}
			pd = c.defaultProperty(obj, cache)
			if pd != nil {
				name = pd.Name
			}
			toDefault = true
		}

		if b.IsObjectBinding() && parser == nil {
			valueTypeGroup := pd != nil && propcache.ForValueType(pd.PropType) != nil
			if err := c.validateObject(b.ObjectIndex, b, valueTypeGroup, seen); err != nil {
				return err
			}
		}

		if b.Type == ir.BindingAttachedProperty {
			if instantiating != nil && (instantiating.Type == ir.BindingAttachedProperty || instantiating.Type == ir.BindingGroupProperty) {
				return c.errorf(errors.E2009, b.Location, "Attached properties cannot be used here")
			}
			continue
		}

		if pd == nil {
			if parser != nil {
				custom = append(custom, b)
				continue
			}
			if toDefault {
				return c.errorf(errors.E2008, b.Location, "Cannot assign to non-existent default property")
			}
			return c.errorf(errors.E2008, b.Location, "Cannot assign to non-existent property \"%s\"", name).
				WithSuggestions(name, propertyNames(cache))
		}
		if err := c.validateBinding(cache, pd, name, b, toDefault, groupProperties[b.PropertyName]); err != nil {
			return err
		}
	}

	if parser != nil && len(custom) > 0 {
		if err := parser.VerifyBindings(&Verifier{c: c}, obj, custom); err != nil {
			return err
		}
	}
	return nil
}

func (c *TypeCompiler) validateBinding(cache *propcache.PropertyCache, pd *propcache.PropertyData, name string, b *ir.Binding, toDefault bool, group *ir.Binding) error {
	assigningToGroup := group != nil && b.PropertyName != 0
	if !pd.IsWritable() && !pd.IsQList() && b.Type != ir.BindingGroupProperty && !b.HasFlag(ir.InitializerForReadOnlyDeclaration) {
		if assigningToGroup && b.Type < ir.BindingObject {
			return c.errorf(errors.E3005, b.ValueLocation, "Cannot assign a value directly to a grouped property")
		}
		return c.errorf(errors.E3002, b.ValueLocation, "Invalid property assignment: \"%s\" is a read-only property", name)
	}
	if !pd.IsQList() && b.HasFlag(ir.IsListItem) {
		if pd.PropType == metatype.ScriptString {
			return c.errorf(errors.E3004, b.ValueLocation, "Cannot assign multiple values to a script property")
		}
		return c.errorf(errors.E3004, b.ValueLocation, "Cannot assign multiple values to a singular property")
	}
	if !toDefault && b.Type != ir.BindingGroupProperty && !b.HasFlag(ir.IsOnAssignment) && assigningToGroup {
		loc := b.ValueLocation
		if loc.Less(group.ValueLocation) {
			loc = group.ValueLocation
		}
		if metatype.IsValueType(pd.PropType) {
			return c.errorf(errors.E3004, loc, "Property has already been assigned a value")
		}
		return c.errorf(errors.E3005, loc, "Cannot assign a value directly to a grouped property")
	}

	switch {
	case b.IsLiteral():
		return c.validateLiteral(pd, b)
	case b.Type == ir.BindingObject:
		return c.validateObjectBinding(pd, name, b)
	case b.Type == ir.BindingGroupProperty:
		if metatype.IsValueType(pd.PropType) {
			if metatype.ValueTypeOf(pd.PropType) == nil {
				return c.errorf(errors.E3005, b.Location, "Invalid grouped property access")
			}
			if !pd.IsWritable() {
				return c.errorf(errors.E3002, b.Location, "Invalid property assignment: \"%s\" is a read-only property", name)
			}
			return nil
		}
		if c.cacheForTypeID(pd.PropType) == nil {
			return c.errorf(errors.E3005, b.Location, "Invalid grouped property access")
		}
	}
	return nil
}

func (c *TypeCompiler) validateLiteral(pd *propcache.PropertyData, b *ir.Binding) error {
	loc := b.ValueLocation
	if pd.IsQList() {
		return c.errorf(errors.E3006, loc, "Cannot assign primitives to lists")
	}
	if pd.IsEnum() {
		if b.HasFlag(ir.IsResolvedEnum) {
			return nil
		}
		value := b.ValueAsString(c.doc.Strings)
		ok := false
		if pd.Enum != nil {
			if pd.Enum.IsFlag {
				_, ok = pd.Enum.KeysToValue(value)
			} else {
				_, ok = pd.Enum.KeyToValue(value)
			}
		}
		if !ok {
			return c.errorf(errors.E3001, loc, "Invalid property assignment: unknown enumeration")
		}
		return nil
	}

	expected := func(what string) error {
		return c.errorf(errors.E3001, loc, "Invalid property assignment: %s expected", what)
	}
	parses := func(what string) error {
		if _, ok := stringconv.FromString(pd.PropType, b.ValueAsString(c.doc.Strings)); !ok {
			return expected(what)
		}
		return nil
	}

	switch pd.PropType {
	case metatype.QVariant, metatype.JSValue, metatype.ScriptString:
		return nil
	case metatype.QString:
		if !b.EvaluatesToString() {
			return expected("string")
		}
	case metatype.QStringList:
		if !b.EvaluatesToString() {
			return expected("string or string list")
		}
	case metatype.QByteArray:
		if b.Type != ir.BindingString {
			return expected("byte array")
		}
	case metatype.QUrl:
		if b.Type != ir.BindingString {
			return expected("url")
		}
	case metatype.UInt:
		if b.Type != ir.BindingNumber || !isWhole[uint32](b.Number) {
			return expected("unsigned int")
		}
	case metatype.Int:
		if b.Type != ir.BindingNumber || !isWhole[int32](b.Number) {
			return expected("int")
		}
	case metatype.Float, metatype.Double:
		if b.Type != ir.BindingNumber {
			return expected("number")
		}
	case metatype.Bool:
		if b.Type != ir.BindingBoolean {
			return expected("boolean")
		}
	case metatype.QColor:
		return parses("color")
	case metatype.QDate:
		return parses("date")
	case metatype.QTime:
		return parses("time")
	case metatype.QDateTime:
		return parses("datetime")
	case metatype.QPoint, metatype.QPointF, metatype.QRectF:
		// Qt reports rectf parse failures as point errors.
		return parses("point")
	case metatype.QSize, metatype.QSizeF:
		return parses("size")
	case metatype.QRect:
		return parses("rect")
	case metatype.QVector2D:
		return parses("2D vector")
	case metatype.QVector3D:
		return parses("3D vector")
	case metatype.QVector4D:
		return parses("4D vector")
	case metatype.QQuaternion:
		return parses("quaternion")
	case metatype.QRegExp:
		return c.errorf(errors.E3001, loc, "Invalid property assignment: regular expression expected; use /pattern/ syntax")
	case metatype.ListOfReal:
		if b.Type != ir.BindingNumber {
			return expected("number or array of numbers")
		}
	case metatype.ListOfInt:
		if b.Type != ir.BindingNumber || !isWhole[int32](b.Number) {
			return expected("int or array of ints")
		}
	case metatype.ListOfBool:
		if b.Type != ir.BindingBoolean {
			return expected("bool or array of bools")
		}
	case metatype.ListOfUrl:
		if b.Type != ir.BindingString {
			return expected("url or array of urls")
		}
	case metatype.ListOfString:
		if !b.EvaluatesToString() {
			return expected("string or array of strings")
		}
	default:
		if !stringconv.IsConvertible(pd.PropType) {
			return c.errorf(errors.E3001, loc, "Invalid property assignment: unsupported type \"%s\"", pd.PropType)
		}
		return parses(pd.PropType.String())
	}
	return nil
}

// isWhole reports whether f converts to T without loss.
func isWhole[T int32 | uint32](f float64) bool {
	if f != math.Trunc(f) {
		return false
	}
	_, err := safecast.Convert[T](f)
	return err == nil
}

func (c *TypeCompiler) validateObjectBinding(pd *propcache.PropertyData, name string, b *ir.Binding) error {
	target := c.object(b.ObjectIndex)
	if b.HasFlag(ir.IsOnAssignment) {
		t := c.registryType(c.types[target.InheritedTypeName])
		if t == nil || (!c.registry.IsValueSource(t) && !c.registry.IsInterceptor(t)) {
			return c.errorf(errors.E3007, b.ValueLocation, "\"%s\" cannot operate on \"%s\"", c.stringAt(target.InheritedTypeName), name)
		}
		return nil
	}

	source := c.caches[b.ObjectIndex]
	switch {
	case c.registry.IsInterface(pd.PropType), pd.PropType == metatype.QVariant:
		return nil
	case pd.IsQList():
		if pd.PropType == metatype.ListOfObject {
			return nil
		}
		elem, ok := c.registry.ListElement(pd.PropType)
		if !ok || elem.Interface {
			return nil
		}
		to, err := c.registry.PropertyCache(elem)
		if err != nil || to == nil || !source.Inherits(to) {
			return c.errorf(errors.E3006, b.ValueLocation, "Cannot assign object to list")
		}
		return nil
	case target.HasFlag(ir.IsComponent):
		return nil
	case b.HasFlag(ir.IsSignalHandlerObject) && pd.IsFunction():
		return nil
	case metatype.IsValueType(pd.PropType):
		return c.errorf(errors.E3003, b.Location, "Unexpected object assignment")
	case pd.PropType == metatype.ScriptString:
		return c.errorf(errors.E3003, b.ValueLocation, "Invalid property assignment: script expected")
	}
	to := c.cacheForTypeID(pd.PropType)
	if to == nil || !source.Inherits(to) {
		return c.errorf(errors.E3003, b.ValueLocation, "Cannot assign object to property")
	}
	return nil
}

// propertyNames lists the property names visible through cache, for
// suggestions.
func propertyNames(cache *propcache.PropertyCache) []string {
	var names []string
	for p := cache; p != nil; p = p.Parent() {
		for _, d := range p.OwnProperties() {
			names = append(names, d.Name)
		}
	}
	return names
}

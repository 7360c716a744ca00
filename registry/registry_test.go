package registry

import (
	"testing"

	"github.com/deepnoodle-ai/qmlc/metatype"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := New()
	types := []*Type{
		{
			Name:       "QObject",
			Exports:    []Export{{Module: "QtQml", Name: "QtObject", Major: 2, Minor: 0}},
			Properties: []Property{{Name: "objectName", Type: "QString"}},
			Signals:    []Method{{Name: "objectNameChanged"}},
		},
		{
			Name:      "QQuickItem",
			Prototype: "QObject",
			Exports: []Export{
				{Module: "QtQuick", Name: "Item", Major: 2, Minor: 0, Revision: 0},
				{Module: "QtQuick", Name: "Item", Major: 2, Minor: 1, Revision: 1},
			},
			DefaultProperty: "data",
			Enums:           []Enum{{Name: "TransformOrigin", Values: map[string]int{"TopLeft": 0, "Center": 4}}},
			Properties: []Property{
				{Name: "width", Type: "double"},
				{Name: "data", Type: "QObject", IsList: true},
				{Name: "parent", Type: "QQuickItem", IsPointer: true},
				{Name: "transformOrigin", Type: "TransformOrigin"},
				{Name: "activeFocusOnTab", Type: "bool", Revision: 1},
				{Name: "names", Type: "string", IsList: true},
				{Name: "id", Type: "int", ReadOnly: true},
			},
			Signals: []Method{
				{Name: "widthChanged"},
				{Name: "activeFocusOnTabChanged", Revision: 1},
			},
		},
		{
			Name:      "QQuickRectangle",
			Prototype: "QQuickItem",
			Exports: []Export{
				{Module: "QtQuick", Name: "Rectangle", Major: 2, Minor: 0},
			},
			Properties: []Property{{Name: "color", Type: "QColor"}},
		},
		{
			Name:         "QQuickKeysAttached",
			Prototype:    "QObject",
			Uncreatable:  true,
			AttachedType: "QQuickKeysAttached",
			Exports:      []Export{{Module: "QtQuick", Name: "Keys", Major: 2, Minor: 0}},
			Signals:      []Method{{Name: "pressed", Params: []Parameter{{Name: "event", Type: "QQuickItem*"}}}},
		},
		{
			Name:        "Button",
			IsComposite: true,
			SourceURL:   "file:///app/Button.qml",
			Exports:     []Export{{Module: "file:///app", Name: "Button", Major: 0, Minor: 0}},
		},
	}
	for _, typ := range types {
		_, err := reg.Register(typ)
		require.Nil(t, err)
	}
	return reg
}

func TestRegister(t *testing.T) {
	reg := testRegistry(t)
	obj := reg.Type("QObject")
	item := reg.Type("QQuickItem")
	require.Equal(t, metatype.FirstDynamic, obj.ID)
	require.Equal(t, metatype.FirstDynamic+2, item.ID)
	require.Same(t, item, reg.TypeByID(item.ID))
	require.Nil(t, reg.TypeByID(metatype.FirstDynamic+1))

	elem, ok := reg.ListElement(item.ListID())
	require.True(t, ok)
	require.Same(t, item, elem)
	_, ok = reg.ListElement(item.ID)
	require.False(t, ok)

	_, err := reg.Register(&Type{Name: "QObject"})
	require.EqualError(t, err, "registry: type QObject is already registered")
	_, err = reg.Register(&Type{})
	require.Error(t, err)

	names := []string{}
	for _, typ := range reg.Types() {
		names = append(names, typ.Name)
	}
	require.Equal(t, []string{"Button", "QObject", "QQuickItem", "QQuickKeysAttached", "QQuickRectangle"}, names)
}

func TestLookup(t *testing.T) {
	reg := testRegistry(t)
	tests := []struct {
		module       string
		name         string
		major, minor int
		wantType     string
		wantRevision int
		wantOK       bool
	}{
		{"QtQuick", "Item", 2, 0, "QQuickItem", 0, true},
		{"QtQuick", "Item", 2, 1, "QQuickItem", 1, true},
		{"QtQuick", "Item", 2, 5, "QQuickItem", 1, true},
		{"QtQuick", "Item", 1, 0, "", 0, false},
		{"QtQuick", "Rectangle", 2, 0, "QQuickRectangle", 0, true},
		{"QtQuick", "QtObject", 2, 0, "", 0, false},
		{"file:///app", "Button", -1, -1, "Button", 0, true},
	}
	for _, tt := range tests {
		typ, export, ok := reg.Lookup(tt.module, tt.name, tt.major, tt.minor)
		require.Equal(t, tt.wantOK, ok, "%s %s %d.%d", tt.module, tt.name, tt.major, tt.minor)
		if !ok {
			continue
		}
		require.Equal(t, tt.wantType, typ.Name)
		require.Equal(t, tt.wantRevision, export.Revision)
	}
	require.True(t, reg.HasModule("QtQuick", 2))
	require.False(t, reg.HasModule("QtQuick", 1))
	require.True(t, reg.HasModule("file:///app", -1))
	require.Equal(t, []string{"Item", "Item", "Keys", "Rectangle"}, reg.ModuleTypeNames("QtQuick"))
}

func TestInheritance(t *testing.T) {
	reg := testRegistry(t)
	rect := reg.Type("QQuickRectangle")
	require.True(t, reg.Inherits(rect, "QObject"))
	require.True(t, reg.Inherits(rect, "QQuickRectangle"))
	require.False(t, reg.Inherits(reg.Type("QQuickItem"), "QQuickRectangle"))

	chain := reg.Chain(rect)
	require.Len(t, chain, 3)
	require.Equal(t, "QObject", chain[2].Name)
	require.False(t, reg.IsValueSource(rect))
	rect.ValueSource = true
	require.True(t, reg.IsValueSource(rect))
	require.False(t, reg.IsInterceptor(rect))
}

func TestPropertyCache(t *testing.T) {
	reg := testRegistry(t)
	item := reg.Type("QQuickItem")
	cache, err := reg.PropertyCache(item)
	require.Nil(t, err)
	again, err := reg.PropertyCache(item)
	require.Nil(t, err)
	require.Same(t, cache, again)

	require.Equal(t, "QQuickItem", cache.ClassName())
	require.Equal(t, 1, cache.Level())
	require.Equal(t, "data", cache.DefaultPropertyName())
	require.Equal(t, 1, cache.PropertyOffset())

	width := cache.Property("width")
	require.Equal(t, metatype.Double, width.PropType)
	require.True(t, width.IsWritable())
	require.Equal(t, "widthChanged", cache.Signal(width.NotifyIndex).Name)

	data := cache.Property("data")
	require.True(t, data.IsQList())
	require.False(t, data.IsWritable())
	require.Equal(t, reg.Type("QObject").ListID(), data.PropType)
	require.Equal(t, metatype.ListOfString, cache.Property("names").PropType)
	require.False(t, cache.Property("id").IsWritable())

	parent := cache.Property("parent")
	require.True(t, parent.IsQObject())
	require.Equal(t, item.ID, parent.PropType)

	origin := cache.Property("transformOrigin")
	require.True(t, origin.IsEnum())
	require.Equal(t, metatype.Int, origin.PropType)
	v, ok := origin.Enum.KeyToValue("Center")
	require.True(t, ok)
	require.Equal(t, 4, v)

	require.Equal(t, 0, cache.Property("objectName").NotifyIndex)
	require.Nil(t, reg.CacheForTypeID(reg.Type("Button").ID))
	require.Same(t, cache, reg.CacheForTypeID(item.ID))
	_, err = reg.PropertyCache(reg.Type("Button"))
	require.Error(t, err)
}

func TestPropertyCacheErrors(t *testing.T) {
	reg := New()
	_, err := reg.Register(&Type{Name: "A", Prototype: "Missing"})
	require.Nil(t, err)
	_, err = reg.PropertyCache(reg.Type("A"))
	require.EqualError(t, err, "registry: prototype Missing of A is not registered")

	_, err = reg.Register(&Type{Name: "B", Properties: []Property{{Name: "x", Type: "Nope"}}})
	require.Nil(t, err)
	_, err = reg.PropertyCache(reg.Type("B"))
	require.EqualError(t, err, `registry: B.x: unknown type "Nope"`)

	_, err = reg.Register(&Type{Name: "C", Prototype: "D"})
	require.Nil(t, err)
	_, err = reg.Register(&Type{Name: "D", Prototype: "C"})
	require.Nil(t, err)
	_, err = reg.PropertyCache(reg.Type("C"))
	require.ErrorContains(t, err, "prototype cycle")
}

func TestVersionedCache(t *testing.T) {
	reg := testRegistry(t)
	item := reg.Type("QQuickItem")

	v20, err := reg.VersionedCache(item, "QtQuick", 2, 0)
	require.Nil(t, err)
	v21, err := reg.VersionedCache(item, "QtQuick", 2, 1)
	require.Nil(t, err)
	again, err := reg.VersionedCache(item, "QtQuick", 2, 0)
	require.Nil(t, err)
	require.Same(t, v20, again)
	require.NotSame(t, v20, v21)
	require.True(t, v20.Same(v21))

	focus := v20.Property("activeFocusOnTab")
	require.NotNil(t, focus)
	require.False(t, v20.IsAllowedInRevision(focus))
	require.True(t, v21.IsAllowedInRevision(focus))

	// A derived type exported at revision 0 does not unlock its base's
	// newer members.
	rect, err := reg.VersionedCache(reg.Type("QQuickRectangle"), "QtQuick", 2, 0)
	require.Nil(t, err)
	require.False(t, rect.IsAllowedInRevision(focus))
	require.True(t, rect.Inherits(v21))
}

func TestAttachedCache(t *testing.T) {
	reg := testRegistry(t)
	cache, err := reg.AttachedCache(reg.Type("QQuickItem"))
	require.Nil(t, err)
	require.Nil(t, cache)

	keys := reg.Type("QQuickKeysAttached")
	cache, err = reg.AttachedCache(keys)
	require.Nil(t, err)
	pressed := cache.Method("pressed")
	require.True(t, pressed.IsSignal())
	require.Equal(t, []string{"event"}, pressed.ParameterNames())
	require.Equal(t, reg.Type("QQuickItem").ID, pressed.Parameters[0].Type)

	_, err = reg.AttachedCache(&Type{Name: "X", AttachedType: "Missing"})
	require.Error(t, err)
}

func TestImports(t *testing.T) {
	reg := testRegistry(t)
	im := reg.NewImports([]Import{
		{Module: "QtQml", Major: 2, Minor: 0},
		{Module: "QtQuick", Major: 2, Minor: 1},
		{Module: "QtQuick", Qualifier: "Q", Major: 2, Minor: 0},
		{Module: "file:///app", Major: -1, Minor: -1},
	})
	require.Same(t, reg, im.Registry())
	require.Len(t, im.List(), 4)
	require.True(t, im.IsNamespace("Q"))
	require.False(t, im.IsNamespace("Item"))

	res, ok := im.Resolve("Item")
	require.True(t, ok)
	require.Equal(t, "QQuickItem", res.Type.Name)
	require.Equal(t, 1, res.Export.Revision)
	require.Equal(t, "", res.Import.Qualifier)

	res, ok = im.Resolve("Q.Item")
	require.True(t, ok)
	require.Equal(t, 0, res.Export.Revision)
	require.Equal(t, "Q", res.Import.Qualifier)

	res, ok = im.Resolve("Q")
	require.True(t, ok)
	require.True(t, res.Namespace)

	res, ok = im.Resolve("Button")
	require.True(t, ok)
	require.True(t, res.Type.IsComposite)

	_, ok = im.Resolve("Q.QtObject")
	require.False(t, ok)
	_, ok = im.Resolve("Nothing")
	require.False(t, ok)

	require.Contains(t, im.Candidates(), "Q.Rectangle")
	require.Contains(t, im.Candidates(), "QtObject")
}

func TestTypeHelpers(t *testing.T) {
	typ := &Type{
		Name:          "QQuickPopup",
		DeferredNames: []string{"background"},
		Exports:       []Export{{Module: "M", Name: "Popup", Major: 1, Minor: 2, Revision: 3}},
	}
	require.True(t, typ.IsCreatable())
	require.True(t, typ.IsDeferred("background"))
	require.False(t, typ.IsDeferred("contentItem"))
	require.Equal(t, "Popup", typ.QMLName())
	_, ok := typ.ExportFor("M", 1, 1)
	require.False(t, ok)
	e, ok := typ.ExportFor("M", -1, 0)
	require.True(t, ok)
	require.Equal(t, 3, e.Revision)

	require.Equal(t, "X", (&Type{Name: "X"}).QMLName())
	singleton := &Type{Name: "S", IsComposite: true, Singleton: true}
	require.False(t, singleton.IsCreatable())
	require.True(t, singleton.IsCompositeSingleton())
	require.False(t, (&Type{Name: "U", Uncreatable: true}).IsCreatable())
}

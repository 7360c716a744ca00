package propcache

import (
	"testing"

	"github.com/deepnoodle-ai/qmlc/metatype"
	"github.com/stretchr/testify/require"
)

func itemChain() (*PropertyCache, *PropertyCache) {
	object := New("QObject")
	sig := object.AppendSignal("objectNameChanged", 0, nil)
	object.AppendProperty("objectName", IsWritable, metatype.QString, sig.CoreIndex)

	item := object.Derive("QQuickItem")
	widthChanged := item.AppendSignal("widthChanged", 0, nil)
	item.AppendProperty("width", IsWritable, metatype.Double, widthChanged.CoreIndex)
	item.AppendProperty("visible", IsWritable, metatype.Bool, -1)
	item.SetDefaultPropertyName("data")
	item.AppendProperty("data", IsQList, metatype.ListOfObject, -1)
	return object, item
}

func TestChainIndices(t *testing.T) {
	object, item := itemChain()
	require.Equal(t, 1, object.PropertyCount())
	require.Equal(t, 4, item.PropertyCount())
	require.Equal(t, 1, item.PropertyOffset())
	require.Equal(t, 2, item.MethodCount())
	require.Equal(t, 1, item.MethodOffset())
	require.Equal(t, 1, item.SignalOffset())
	require.Len(t, item.OwnMethods(), 1)
	require.Equal(t, "widthChanged", item.OwnMethods()[0].Name)
	require.Equal(t, 1, item.Level())
	require.Same(t, object, item.Parent())

	width := item.Property("width")
	require.NotNil(t, width)
	require.Equal(t, 1, width.CoreIndex)
	require.Same(t, width, item.PropertyAt(1))
	require.Equal(t, "objectName", item.PropertyAt(0).Name)
	require.Nil(t, item.PropertyAt(10))

	require.Equal(t, "widthChanged", item.Signal(width.NotifyIndex).Name)
	require.Equal(t, "data", item.DefaultPropertyName())
	require.Equal(t, "data", item.DefaultProperty().Name)
	require.Nil(t, object.DefaultProperty())
}

func TestCopyAndReserve(t *testing.T) {
	_, item := itemChain()
	dyn := item.CopyAndReserve("Main_QMLTYPE_0")
	require.Equal(t, "QQuickItem", dyn.ClassName())
	require.Equal(t, "Main_QMLTYPE_0", dyn.EffectiveClassName())
	require.Equal(t, "QQuickItem", item.EffectiveClassName())
	require.Equal(t, "data", dyn.DefaultPropertyName())

	changed := dyn.AppendSignal("labelChanged", IsVMESignal, nil)
	label := dyn.AppendProperty("label", IsWritable, metatype.QString, changed.CoreIndex)
	require.Equal(t, 4, label.CoreIndex)
	require.Equal(t, 2, changed.CoreIndex)
	require.True(t, changed.IsSignal())
	require.True(t, changed.IsFunction())
	require.True(t, dyn.Inherits(item))
	require.False(t, item.Inherits(dyn))
}

func TestRevisionGating(t *testing.T) {
	_, item := itemChain()
	rev := item.AppendProperty("opacityMask", IsWritable, metatype.Double, -1)
	rev.Revision = 1
	sig := item.AppendSignal("activeFocusOnTabChanged", 0, nil)
	sig.Revision = 1

	old := item.WithRevisions([]int{0, 0})
	d, notInRevision := NewResolver(old).Property("opacityMask")
	require.Nil(t, d)
	require.True(t, notInRevision)

	s, notInRevision := NewResolver(old).Signal("activeFocusOnTabChanged")
	require.Nil(t, s)
	require.True(t, notInRevision)

	d, notInRevision = NewResolver(old).Property("width")
	require.NotNil(t, d)
	require.False(t, notInRevision)

	current := item.WithRevisions([]int{0, 1})
	require.Equal(t, 1, current.AllowedRevision(1))
	require.Equal(t, 0, old.AllowedRevision(1))
	require.Equal(t, 0, current.AllowedRevision(5))
	d, notInRevision = NewResolver(current).Property("opacityMask")
	require.Same(t, rev, d)
	require.False(t, notInRevision)

	require.True(t, current.Same(item))
	require.True(t, old.Same(current))
	require.True(t, current.Inherits(item))
	require.True(t, item.Inherits(current))

	d, notInRevision = NewResolver(old).Property("missing")
	require.Nil(t, d)
	require.False(t, notInRevision)
}

func TestResolverChangedSignalFallback(t *testing.T) {
	_, item := itemChain()
	s, _ := NewResolver(item).Signal("widthChanged")
	require.NotNil(t, s)
	require.Equal(t, "widthChanged", s.Name)

	dyn := item.CopyAndReserve("X_QML_1")
	dyn.AppendProperty("count", IsWritable, metatype.Int, -1)
	s, hidden := NewResolver(dyn).Signal("countChanged")
	require.Nil(t, s)
	require.False(t, hidden)

	s, _ = NewResolver(dyn).Signal("nothing")
	require.Nil(t, s)
	s, _ = NewResolver(nil).Signal("x")
	require.Nil(t, s)
}

func TestEnums(t *testing.T) {
	e := &Enum{Name: "Alignment", IsFlag: true, Values: map[string]int{"AlignLeft": 1, "AlignTop": 0x20}}
	v, ok := e.KeysToValue("AlignLeft | AlignTop")
	require.True(t, ok)
	require.Equal(t, 0x21, v)
	_, ok = e.KeysToValue("AlignLeft | Nope")
	require.False(t, ok)
	require.Equal(t, []string{"AlignLeft", "AlignTop"}, e.Keys())

	cache := New("QQuickText")
	cache.AddEnum(e)
	v, ok = cache.Derive("Sub").EnumValue("AlignTop")
	require.True(t, ok)
	require.Equal(t, 0x20, v)
	require.Same(t, e, cache.Derive("Sub").Enum("Alignment"))
}

func TestValueTypeCaches(t *testing.T) {
	font := ForValueType(metatype.QFont)
	require.NotNil(t, font)
	bold := font.Property("bold")
	require.NotNil(t, bold)
	require.Equal(t, metatype.Bool, bold.PropType)
	weight := font.Property("weight")
	require.True(t, weight.IsEnum())
	require.Equal(t, 75, weight.Enum.Values["Bold"])

	rect := ForValueType(metatype.QRectF)
	require.True(t, rect.Property("x").IsWritable())
	require.False(t, rect.Property("left").IsWritable())
	require.Equal(t, 2, rect.Property("width").CoreIndex)

	require.Same(t, font, ForValueType(metatype.QFont))
	require.Nil(t, ForValueType(metatype.Int))
}

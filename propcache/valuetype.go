package propcache

import (
	"sync"

	"github.com/deepnoodle-ai/qmlc/metatype"
)

var (
	valueTypeOnce   sync.Once
	valueTypeCaches map[metatype.TypeID]*PropertyCache
)

// ForValueType returns the shared cache describing the sub-properties of a
// builtin value type, or nil if t is not a value type. Sub-property core
// indices equal their position in the value type.
func ForValueType(t metatype.TypeID) *PropertyCache {
	valueTypeOnce.Do(buildValueTypeCaches)
	return valueTypeCaches[t]
}

func buildValueTypeCaches() {
	valueTypeCaches = map[metatype.TypeID]*PropertyCache{}
	for _, t := range []metatype.TypeID{
		metatype.QPoint, metatype.QPointF, metatype.QSize, metatype.QSizeF,
		metatype.QRect, metatype.QRectF, metatype.QVector2D, metatype.QVector3D,
		metatype.QVector4D, metatype.QQuaternion, metatype.QMatrix4x4,
		metatype.QColor, metatype.QFont,
	} {
		vt := metatype.ValueTypeOf(t)
		cache := New(vt.Name)
		for name, values := range vt.Enums {
			cache.AddEnum(&Enum{Name: name, Values: values})
		}
		for _, sub := range vt.Properties {
			flags := IsWritable
			if sub.ReadOnly {
				flags = 0
			}
			d := cache.AppendProperty(sub.Name, flags, sub.Type, -1)
			if sub.Enum != "" {
				d.Flags |= IsEnumType
				d.Enum = cache.Enum(sub.Enum)
			}
		}
		valueTypeCaches[t] = cache
	}
}

// Package metatype defines the closed set of builtin type ids shared with the
// runtime's value type system, the builtin value types and their
// sub-properties, and the builtin Qt namespace enumerations.
package metatype

import (
	"fmt"

	"github.com/deepnoodle-ai/qmlc/ir"
)

// TypeID identifies a property or parameter type. Builtin ids use the same
// numbering as the runtime's meta type system; object and list types are
// assigned ids at or above FirstDynamic by the type registry.
type TypeID int

// Builtin type ids.
const (
	Invalid     TypeID = 0
	Bool        TypeID = 1
	Int         TypeID = 2
	UInt        TypeID = 3
	Double      TypeID = 6
	QString     TypeID = 10
	QStringList TypeID = 11
	QByteArray  TypeID = 12
	QDate       TypeID = 14
	QTime       TypeID = 15
	QDateTime   TypeID = 16
	QUrl        TypeID = 17
	QRect       TypeID = 19
	QRectF      TypeID = 20
	QSize       TypeID = 21
	QSizeF      TypeID = 22
	QPoint      TypeID = 25
	QPointF     TypeID = 26
	QRegExp     TypeID = 27
	Float       TypeID = 38
	QObjectStar TypeID = 39
	QVariant    TypeID = 41
	QFont       TypeID = 64
	QColor      TypeID = 67
	QMatrix4x4  TypeID = 81
	QVector2D   TypeID = 82
	QVector3D   TypeID = 83
	QVector4D   TypeID = 84
	QQuaternion TypeID = 85

	// User is the first id of types registered outside the builtin set.
	User TypeID = 1024

	JSValue      TypeID = User + 1
	ScriptString TypeID = User + 2
	ListOfReal   TypeID = User + 3
	ListOfInt    TypeID = User + 4
	ListOfBool   TypeID = User + 5
	ListOfUrl    TypeID = User + 6
	ListOfString TypeID = User + 7
	// ListOfObject is the generic object list used for dynamic list
	// properties.
	ListOfObject TypeID = User + 8

	// FirstDynamic is the first id handed out by the type registry.
	FirstDynamic TypeID = 2048
)

var names = map[TypeID]string{
	Invalid:      "invalid",
	Bool:         "bool",
	Int:          "int",
	UInt:         "uint",
	Double:       "double",
	QString:      "QString",
	QStringList:  "QStringList",
	QByteArray:   "QByteArray",
	QDate:        "QDate",
	QTime:        "QTime",
	QDateTime:    "QDateTime",
	QUrl:         "QUrl",
	QRect:        "QRect",
	QRectF:       "QRectF",
	QSize:        "QSize",
	QSizeF:       "QSizeF",
	QPoint:       "QPoint",
	QPointF:      "QPointF",
	QRegExp:      "QRegExp",
	Float:        "float",
	QObjectStar:  "QObject*",
	QVariant:     "QVariant",
	QFont:        "QFont",
	QColor:       "QColor",
	QMatrix4x4:   "QMatrix4x4",
	QVector2D:    "QVector2D",
	QVector3D:    "QVector3D",
	QVector4D:    "QVector4D",
	QQuaternion:  "QQuaternion",
	JSValue:      "QJSValue",
	ScriptString: "QQmlScriptString",
	ListOfReal:   "QList<qreal>",
	ListOfInt:    "QList<int>",
	ListOfBool:   "QList<bool>",
	ListOfUrl:    "QList<QUrl>",
	ListOfString: "QList<QString>",
	ListOfObject: "QQmlListProperty<QObject>",
}

// Aliases used by type description files.
var byName = map[string]TypeID{
	"real":       Double,
	"qreal":      Double,
	"string":     QString,
	"url":        QUrl,
	"color":      QColor,
	"font":       QFont,
	"date":       QDate,
	"time":       QTime,
	"datetime":   QDateTime,
	"rect":       QRectF,
	"point":      QPointF,
	"size":       QSizeF,
	"var":        QVariant,
	"variant":    QVariant,
	"vector2d":   QVector2D,
	"vector3d":   QVector3D,
	"vector4d":   QVector4D,
	"matrix4x4":  QMatrix4x4,
	"quaternion": QQuaternion,
}

func init() {
	for id, name := range names {
		byName[name] = id
	}
}

func (t TypeID) String() string {
	if name, ok := names[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// IsBuiltin reports whether t is part of the closed builtin set.
func (t TypeID) IsBuiltin() bool {
	_, ok := names[t]
	return ok
}

// Lookup returns the builtin type with the given C++ or QML name.
func Lookup(name string) (TypeID, bool) {
	id, ok := byName[name]
	return id, ok
}

// builtinPropertyTypes maps declared property types to builtin ids. Var and
// Variant share QVariant; callers distinguish them through property flags.
var builtinPropertyTypes = map[ir.PropertyType]TypeID{
	ir.Var:        QVariant,
	ir.Variant:    QVariant,
	ir.Int:        Int,
	ir.Bool:       Bool,
	ir.Real:       Double,
	ir.String:     QString,
	ir.Url:        QUrl,
	ir.Color:      QColor,
	ir.Font:       QFont,
	ir.Time:       QTime,
	ir.Date:       QDate,
	ir.DateTime:   QDateTime,
	ir.Rect:       QRectF,
	ir.Point:      QPointF,
	ir.Size:       QSizeF,
	ir.Vector2D:   QVector2D,
	ir.Vector3D:   QVector3D,
	ir.Vector4D:   QVector4D,
	ir.Matrix4x4:  QMatrix4x4,
	ir.Quaternion: QQuaternion,
}

// FromPropertyType returns the builtin id of a declared property type. It
// returns false for Custom and CustomList, which need type resolution.
func FromPropertyType(t ir.PropertyType) (TypeID, bool) {
	id, ok := builtinPropertyTypes[t]
	return id, ok
}

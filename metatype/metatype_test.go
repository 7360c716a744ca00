package metatype

import (
	"testing"

	"github.com/deepnoodle-ai/qmlc/ir"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		want TypeID
	}{
		{"real", Double},
		{"qreal", Double},
		{"string", QString},
		{"QString", QString},
		{"var", QVariant},
		{"variant", QVariant},
		{"QObject*", QObjectStar},
		{"QQmlScriptString", ScriptString},
		{"rect", QRectF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := Lookup(tt.name)
			require.True(t, ok)
			require.Equal(t, tt.want, id)
			require.True(t, id.IsBuiltin())
		})
	}
	_, ok := Lookup("QQuickItem")
	require.False(t, ok)
}

func TestTypeIDString(t *testing.T) {
	require.Equal(t, "QColor", QColor.String())
	require.Equal(t, "QList<int>", ListOfInt.String())
	require.Equal(t, "type(2050)", (FirstDynamic + 2).String())
	require.False(t, (FirstDynamic + 2).IsBuiltin())
}

func TestFromPropertyType(t *testing.T) {
	id, ok := FromPropertyType(ir.Var)
	require.True(t, ok)
	require.Equal(t, QVariant, id)

	id, ok = FromPropertyType(ir.Rect)
	require.True(t, ok)
	require.Equal(t, QRectF, id)

	_, ok = FromPropertyType(ir.Custom)
	require.False(t, ok)
}

func TestValueTypes(t *testing.T) {
	font := ValueTypeOf(QFont)
	require.NotNil(t, font)
	bold := font.Property("bold")
	require.GreaterOrEqual(t, bold, 0)
	require.Equal(t, Bool, font.Properties[bold].Type)
	require.Equal(t, -1, font.Property("nothing"))
	require.Equal(t, 75, font.Enums["Weight"]["Bold"])

	rect := ValueTypeOf(QRectF)
	require.True(t, rect.Properties[rect.Property("left")].ReadOnly)
	require.False(t, rect.Properties[rect.Property("x")].ReadOnly)

	require.True(t, IsValueType(QVector3D))
	require.False(t, IsValueType(QString))
	require.Nil(t, ValueTypeOf(Int))
}

func TestQtEnumValue(t *testing.T) {
	v, ok := QtEnumValue("AlignCenter")
	require.True(t, ok)
	require.Equal(t, 0x0084, v)

	_, ok = QtEnumValue("Bogus")
	require.False(t, ok)
}

package compiler

import (
	"testing"

	"github.com/deepnoodle-ai/qmlc/errors"
	"github.com/deepnoodle-ai/qmlc/internal/qmltest"
	"github.com/stretchr/testify/require"
)

func TestLiteralAssignments(t *testing.T) {
	valid := []struct {
		name  string
		root  string
		prop  string
		value string
		str   bool
	}{
		{"number", "Item", "width", "10.5", false},
		{"negative number", "Item", "x", "-4", false},
		{"boolean", "Item", "visible", "false", false},
		{"string", "Text", "text", "hello", true},
		{"url", "Image", "source", "qrc:/logo.png", true},
		{"named color", "Rectangle", "color", "steelblue", true},
		{"hex color", "Rectangle", "color", "#80ff0000", true},
		{"int", "ListView", "currentIndex", "3", false},
		{"size", "Image", "sourceSize", "64x32", true},
		{"variant", "ListView", "model", "5", false},
		{"enum name", "Image", "fillMode", "Tile", true},
	}
	for _, tt := range valid {
		t.Run(tt.name, func(t *testing.T) {
			d := newDoc(t)
			root := d.Root(tt.root)
			if tt.str {
				root.SetString(tt.prop, tt.value)
			} else {
				root.Set(tt.prop, tt.value)
			}
			mustCompile(t, d)
		})
	}

	invalid := []struct {
		name  string
		build func(o *qmltest.Object)
		root  string
		msg   string
	}{
		{"number", func(o *qmltest.Object) { o.SetString("width", "wide") }, "Item",
			"Invalid property assignment: number expected"},
		{"boolean", func(o *qmltest.Object) { o.Set("visible", "1") }, "Item",
			"Invalid property assignment: boolean expected"},
		{"string", func(o *qmltest.Object) { o.Set("text", "5") }, "Text",
			"Invalid property assignment: string expected"},
		{"url", func(o *qmltest.Object) { o.Set("source", "5") }, "Image",
			"Invalid property assignment: url expected"},
		{"color", func(o *qmltest.Object) { o.SetString("color", "notacolor") }, "Rectangle",
			"Invalid property assignment: color expected"},
		{"int", func(o *qmltest.Object) { o.Set("currentIndex", "1.5") }, "ListView",
			"Invalid property assignment: int expected"},
		{"int out of range", func(o *qmltest.Object) { o.Set("currentIndex", "3000000000") }, "ListView",
			"Invalid property assignment: int expected"},
		{"size", func(o *qmltest.Object) { o.SetString("sourceSize", "big") }, "Image",
			"Invalid property assignment: size expected"},
		{"point", func(o *qmltest.Object) { o.Property("point", "p").SetString("p", "one") }, "Item",
			"Invalid property assignment: point expected"},
		{"rect", func(o *qmltest.Object) { o.Property("rect", "r").SetString("r", "bogus") }, "Item",
			"Invalid property assignment: point expected"},
		{"date", func(o *qmltest.Object) { o.Property("date", "d").SetString("d", "2014-13-45") }, "Item",
			"Invalid property assignment: date expected"},
	}
	for _, tt := range invalid {
		t.Run("invalid "+tt.name, func(t *testing.T) {
			d := newDoc(t)
			tt.build(d.Root(tt.root))
			compileError(t, d, errors.E3001, tt.msg)
		})
	}
}

func TestDeclaredValueTypeLiterals(t *testing.T) {
	d := newDoc(t)
	d.Root("Item").
		Property("point", "p").
		Property("size", "s").
		Property("rect", "r").
		Property("vector3d", "v").
		Property("color", "c").
		SetString("p", "1,2").
		SetString("s", "3x4").
		SetString("r", "1,2,3x4").
		SetString("v", "1,2,3").
		SetString("c", "red")
	mustCompile(t, d)
}

func TestPrimitiveToList(t *testing.T) {
	d := newDoc(t)
	d.Root("Item").Set("states", "5")
	compileError(t, d, errors.E3006, "Cannot assign primitives to lists")
}

func TestReadOnlyInitializer(t *testing.T) {
	d := newDoc(t)
	d.Root("Item").ReadOnlyProperty("int", "answer", "42")
	u := mustCompile(t, d)
	require.False(t, u.RootCache().Property("answer").IsWritable())
	require.True(t, u.VMEMetaData(0).Properties[0].ReadOnly)
}

func TestGroupedProperties(t *testing.T) {
	t.Run("pointer group", func(t *testing.T) {
		d := newDoc(t)
		d.Root("Item").
			Set("anchors.fill", "parent").
			Set("anchors.margins", "4")
		mustCompile(t, d)
	})
	t.Run("value type group", func(t *testing.T) {
		d := newDoc(t)
		d.Root("Text").
			Set("font.pixelSize", "12").
			Set("font.bold", "true")
		mustCompile(t, d)
	})
	t.Run("readonly pointer group", func(t *testing.T) {
		d := newDoc(t)
		d.Root("Rectangle").
			Set("border.width", "2").
			SetString("border.color", "red")
		mustCompile(t, d)
	})
	t.Run("invalid sub-property literal", func(t *testing.T) {
		d := newDoc(t)
		d.Root("Text").SetString("font.pixelSize", "big")
		compileError(t, d, errors.E3001, "Invalid property assignment: int expected")
	})
}

func TestGroupedPropertyErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(d *qmltest.Document)
		code  errors.ErrorCode
		msg   string
	}{
		{"value and group", func(d *qmltest.Document) {
			d.Root("Item").
				Set("anchors.left", "parent.left").
				Set("anchors", "parent.left")
		}, errors.E3005, "Cannot assign a value directly to a grouped property"},
		{"value type assigned twice", func(d *qmltest.Document) {
			d.Root("Text").
				Set("font.bold", "true").
				SetString("font", "Arial")
		}, errors.E3004, "Property has already been assigned a value"},
		{"readonly group value", func(d *qmltest.Document) {
			d.Root("Item").Set("anchors", "5")
		}, errors.E3002, `Invalid property assignment: "anchors" is a read-only property`},
		{"group inside value type", func(d *qmltest.Document) {
			d.Root("Text").Set("font.bold.x", "1")
		}, errors.E3005, "Property assignment expected"},
		{"unknown group", func(d *qmltest.Document) {
			d.Root("Item").Set("bogus.x", "1")
		}, errors.E2008, `Cannot assign to non-existent property "bogus"`},
		{"attached inside group", func(d *qmltest.Document) {
			d.Root("Item").Set("anchors.Keys.enabled", "true")
		}, errors.E2009, "Attached properties cannot be used here"},
		{"type without attached object", func(d *qmltest.Document) {
			d.Root("Item").Set("Rectangle.color", "1")
		}, errors.E2002, "Non-existent attached object"},
		{"uppercase property", func(d *qmltest.Document) {
			d.Root("Item").Set("Foo", "1")
		}, errors.E2002, "Invalid attached object assignment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDoc(t)
			tt.build(d)
			compileError(t, d, tt.code, tt.msg)
		})
	}
}

func TestNamespaceAssignment(t *testing.T) {
	d := qmltest.NewDocument(t, mainURL).ImportAs("QtQuick", "QQ", 2, 0)
	d.Root("QQ.Item").Set("QQ", "1")
	compileError(t, d, errors.E2009, "Invalid use of namespace")
}

func TestObjectAssignments(t *testing.T) {
	t.Run("matching pointer", func(t *testing.T) {
		d := newDoc(t)
		d.Root("Popup").Child("background", "Rectangle")
		mustCompile(t, d)
	})
	t.Run("list items", func(t *testing.T) {
		d := newDoc(t)
		d.Root("Item").Items("states", "State", "State")
		mustCompile(t, d)
	})
	t.Run("variant", func(t *testing.T) {
		d := newDoc(t)
		d.Root("ListView").Child("model", "ListModel")
		mustCompile(t, d)
	})
	t.Run("script string", func(t *testing.T) {
		d := newDoc(t)
		d.Root("StateChangeScript").Set("script", "print(1)")
		u := mustCompile(t, d)
		b := u.Root().Bindings[0]
		require.Equal(t, "print(1)", u.String(b.StringIndex))
	})
}

func TestObjectAssignmentErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(d *qmltest.Document)
		code  errors.ErrorCode
		msg   string
	}{
		{"wrong pointer type", func(d *qmltest.Document) {
			d.Root("Item").Child("parent", "Timer")
		}, errors.E3003, "Cannot assign object to property"},
		{"object to value type", func(d *qmltest.Document) {
			d.Root("Text").Child("font", "Item")
		}, errors.E3003, "Unexpected object assignment"},
		{"wrong list element", func(d *qmltest.Document) {
			d.Root("Item").Items("states", "Timer")
		}, errors.E3006, "Cannot assign object to list"},
		{"several values to singular property", func(d *qmltest.Document) {
			d.Root("Item").Items("parent", "Item", "Item")
		}, errors.E3004, "Cannot assign multiple values to a singular property"},
		{"object to script string", func(d *qmltest.Document) {
			d.Root("StateChangeScript").Child("script", "Item")
		}, errors.E3003, "Invalid property assignment: script expected"},
		{"no default property", func(d *qmltest.Document) {
			d.Root("Timer").Child("", "Item")
		}, errors.E2008, "Cannot assign to non-existent default property"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDoc(t)
			tt.build(d)
			compileError(t, d, tt.code, tt.msg)
		})
	}
}

func TestValueSourcesAndInterceptors(t *testing.T) {
	t.Run("value source", func(t *testing.T) {
		d := newDoc(t)
		d.Root("Rectangle").On("x", "NumberAnimation").Set("to", "100")
		u := mustCompile(t, d)
		require.NotNil(t, u.VMEMetaData(0))
	})
	t.Run("interceptor", func(t *testing.T) {
		d := newDoc(t)
		d.Root("Rectangle").On("width", "Behavior").Child("", "NumberAnimation")
		mustCompile(t, d)
	})
	t.Run("interceptor on value type sub-property", func(t *testing.T) {
		d := newDoc(t)
		d.Root("Text").On("font.pixelSize", "Behavior")
		u := mustCompile(t, d)
		require.NotNil(t, u.VMEMetaData(0))
	})
	t.Run("not a value source", func(t *testing.T) {
		d := newDoc(t)
		d.Root("Item").On("x", "Timer")
		compileError(t, d, errors.E3007, `"Timer" cannot operate on "x"`)
	})
}

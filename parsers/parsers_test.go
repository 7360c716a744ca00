package parsers_test

import (
	"context"
	"testing"

	"github.com/deepnoodle-ai/qmlc/compiler"
	"github.com/deepnoodle-ai/qmlc/errors"
	"github.com/deepnoodle-ai/qmlc/internal/qmltest"
	"github.com/deepnoodle-ai/qmlc/ir"
	"github.com/deepnoodle-ai/qmlc/parsers"
	"github.com/deepnoodle-ai/qmlc/unit"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newDoc(t *testing.T) *qmltest.Document {
	return qmltest.NewDocument(t, "file:///app/Model.qml").
		Import("QtQml", 2, 0).
		Import("QtQuick", 2, 0)
}

func compile(t *testing.T, d *qmltest.Document) (*unit.Unit, error) {
	t.Helper()
	doc := d.Build()
	c, err := compiler.New(doc, &compiler.Config{
		Imports:       qmltest.Registry(t).DocumentImports(doc),
		CustomParsers: parsers.Stock(),
		Logger:        zerolog.Nop(),
	})
	require.NoError(t, err)
	return c.Compile(context.Background())
}

func requireErrors(t *testing.T, err error, msgs ...string) {
	t.Helper()
	require.Error(t, err)
	list := errors.List(err)
	require.Len(t, list, len(msgs), err.Error())
	for i, msg := range msgs {
		require.Equal(t, errors.E4006, list[i].Code)
		require.Equal(t, msg, list[i].Message)
	}
}

func TestStock(t *testing.T) {
	stock := parsers.Stock()
	require.Len(t, stock, 2)
	require.Equal(t, compiler.AcceptsSignalHandlers, stock[parsers.ListModelClass].Flags())
	require.Equal(t, compiler.CustomParserFlags(0), stock[parsers.ConnectionsClass].Flags())
}

func TestListModel(t *testing.T) {
	d := newDoc(t)
	root := d.Root("ListModel").Set("onCountChanged", "print(count)")
	root.Child("", "ListElement").
		SetString("name", "Apple").
		Set("cost", "2.45").
		Set("align", "Text.AlignLeft").
		Set("button", "Qt.LeftButton").
		Set("tags", "[]")
	root.Child("", "ListElement").
		SetString("name", "Orange").
		Items("attributes", "ListElement", "ListElement")
	u, err := compile(t, d)
	require.NoError(t, err)

	model := u.Root()
	require.True(t, model.HasFlag(ir.HasCustomParserBindings))
	require.True(t, model.Bindings[0].HasFlag(ir.IsSignalHandlerExpression))
	require.Equal(t, []int{1, 2}, u.CustomParserBindings(0).Indices())
}

func TestListModelErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(model *qmltest.Object)
		msgs  []string
	}{
		{"undefined property", func(model *qmltest.Object) {
			model.Set("rows", "2")
		}, []string{"ListModel: undefined property 'rows'"}},
		{"other element type", func(model *qmltest.Object) {
			model.Child("", "Item")
		}, []string{"ListElement: cannot contain nested elements"}},
		{"default binding in element", func(model *qmltest.Object) {
			model.Child("", "ListElement").Child("", "ListElement")
		}, []string{"ListElement: cannot contain nested elements"}},
		{"nested list of other types", func(model *qmltest.Object) {
			model.Child("", "ListElement").Items("rows", "Item")
		}, []string{"ListElement: cannot contain nested elements"}},
		{"id", func(model *qmltest.Object) {
			model.Child("", "ListElement").ID("first")
		}, []string{`ListElement: cannot use reserved "id" property`}},
		{"script", func(model *qmltest.Object) {
			model.Child("", "ListElement").Set("cost", "1 + 2")
		}, []string{"ListElement: cannot use script for property value"}},
		{"unknown enumerator", func(model *qmltest.Object) {
			model.Child("", "ListElement").Set("align", "Text.Bogus")
		}, []string{"ListElement: cannot use script for property value"}},
		{"one error per element", func(model *qmltest.Object) {
			model.Child("", "ListElement").Set("a", "x").Set("b", "y")
			model.Child("", "Item")
		}, []string{
			"ListElement: cannot use script for property value",
			"ListElement: cannot contain nested elements",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDoc(t)
			tt.build(d.Root("ListModel"))
			_, err := compile(t, d)
			requireErrors(t, err, tt.msgs...)
		})
	}
}

func TestConnections(t *testing.T) {
	d := newDoc(t)
	d.Root("Connections").
		Set("onClicked", "print(1)").
		Set("onTargetChanged", "print(target)")
	u, err := compile(t, d)
	require.NoError(t, err)

	root := u.Root()
	require.Equal(t, []int{0, 1}, u.CustomParserBindings(0).Indices())
	for _, b := range root.Bindings {
		require.True(t, b.HasFlag(ir.IsCustomParserBinding))
		require.False(t, b.IsSignalHandler())
	}
	require.Equal(t, "print(1)", u.String(root.Bindings[0].StringIndex))
}

func TestConnectionsErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(conn *qmltest.Object)
		msgs  []string
	}{
		{"literal handler", func(conn *qmltest.Object) {
			conn.Set("onClicked", "5")
		}, []string{"Connections: script expected"}},
		{"object handler", func(conn *qmltest.Object) {
			conn.Child("onClicked", "Item")
		}, []string{"Connections: nested objects not allowed"}},
		{"grouped handler", func(conn *qmltest.Object) {
			conn.Set("onClicked.x", "1")
		}, []string{"Connections: syntax error"}},
		{"unknown property", func(conn *qmltest.Object) {
			conn.Set("enabled", "true")
		}, []string{`Cannot assign to non-existent property "enabled"`}},
		{"all handlers reported", func(conn *qmltest.Object) {
			conn.Set("onPressed", "1").SetString("onReleased", "2")
		}, []string{"Connections: script expected", "Connections: script expected"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDoc(t)
			tt.build(d.Root("Connections"))
			_, err := compile(t, d)
			requireErrors(t, err, tt.msgs...)
		})
	}
}

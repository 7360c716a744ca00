package ir

import (
	"context"
	"strings"
	"testing"

	"github.com/deepnoodle-ai/qmlc/ast"
	"github.com/deepnoodle-ai/qmlc/errors"
	"github.com/stretchr/testify/require"
)

func loc(line, col int) Location {
	return Location{Line: line, Column: col}
}

func newBuilder(t *testing.T) (*Builder, int) {
	t.Helper()
	b := NewBuilder(context.Background(), "file:///Main.qml", "")
	root := b.NewObject("Item", loc(1, 1))
	b.SetRoot(root)
	return b, root
}

func TestStringTable(t *testing.T) {
	table := NewStringTable()
	require.Equal(t, 1, table.Len())
	require.Equal(t, "", table.At(0))

	a := table.Register("width")
	require.Equal(t, 1, a)
	require.Equal(t, a, table.Register("width"))
	require.Equal(t, 2, table.Register("height"))

	i, ok := table.Lookup("height")
	require.True(t, ok)
	require.Equal(t, 2, i)
	_, ok = table.Lookup("missing")
	require.False(t, ok)

	require.Equal(t, "", table.At(99))
	require.Equal(t, []string{"", "width", "height"}, table.Strings())
}

func TestLiteralDetection(t *testing.T) {
	tests := []struct {
		source string
		typ    BindingType
		check  func(t *testing.T, b *Binding, doc *Document)
	}{
		{`"hello"`, BindingString, func(t *testing.T, b *Binding, doc *Document) {
			require.Equal(t, "hello", doc.StringAt(b.StringIndex))
		}},
		{"42", BindingNumber, func(t *testing.T, b *Binding, doc *Document) {
			require.Equal(t, 42.0, b.Number)
		}},
		{"-1.5", BindingNumber, func(t *testing.T, b *Binding, doc *Document) {
			require.Equal(t, -1.5, b.Number)
		}},
		{"true", BindingBoolean, func(t *testing.T, b *Binding, doc *Document) {
			require.True(t, b.Bool)
		}},
		{"parent.width / 2", BindingScript, func(t *testing.T, b *Binding, doc *Document) {
			script := doc.Root().Scripts[b.ScriptIndex]
			require.Equal(t, "parent.width / 2", script.Source)
			_, ok := script.Node.(*ast.Program)
			require.True(t, ok)
		}},
		{"-x", BindingScript, nil},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			b, root := newBuilder(t)
			require.Nil(t, b.AddScriptBinding(root, "value", tt.source, loc(2, 5), loc(2, 12)))
			doc := b.Document()
			binding := doc.Root().Bindings[0]
			require.Equal(t, tt.typ, binding.Type)
			require.Equal(t, "value", doc.StringAt(binding.PropertyName))
			if tt.check != nil {
				tt.check(t, binding, doc)
			}
		})
	}
}

func TestScriptPositionsAreDocumentRelative(t *testing.T) {
	b, root := newBuilder(t)
	require.Nil(t, b.AddScriptBinding(root, "width", "parent.width", loc(4, 5), loc(4, 12)))
	script := b.Document().Root().Scripts[0]
	program := script.Node.(*ast.Program)
	pos := program.Pos()
	require.Equal(t, 4, pos.LineNumber())
	require.Equal(t, 12, pos.ColumnNumber())
}

func TestScriptSyntaxError(t *testing.T) {
	b, root := newBuilder(t)
	err := b.AddScriptBinding(root, "width", "parent.", loc(3, 1), loc(3, 8))
	require.Error(t, err)
	var ce *errors.CompileError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, errors.E4001, ce.Code)
	require.Equal(t, 3, ce.Line)
}

func TestGroupAndAttachedBindings(t *testing.T) {
	b, root := newBuilder(t)
	require.Nil(t, b.AddScriptBinding(root, "anchors.left", "parent.left", loc(2, 5), loc(2, 19)))
	require.Nil(t, b.AddScriptBinding(root, "anchors.right", "parent.right", loc(3, 5), loc(3, 20)))
	require.Nil(t, b.AddScriptBinding(root, "Keys.enabled", "true", loc(4, 5), loc(4, 19)))

	doc := b.Document()
	bindings := doc.Root().Bindings
	require.Len(t, bindings, 2)

	group := bindings[0]
	require.Equal(t, BindingGroupProperty, group.Type)
	require.Equal(t, "anchors", doc.StringAt(group.PropertyName))
	groupObj := doc.Objects[group.ObjectIndex]
	require.Equal(t, 0, groupObj.InheritedTypeName)
	require.Len(t, groupObj.Bindings, 2)
	require.Equal(t, "left", doc.StringAt(groupObj.Bindings[0].PropertyName))
	require.Equal(t, "right", doc.StringAt(groupObj.Bindings[1].PropertyName))

	attached := bindings[1]
	require.Equal(t, BindingAttachedProperty, attached.Type)
	require.Equal(t, "Keys", doc.StringAt(attached.PropertyName))
	require.False(t, attached.IsValueBinding())
}

func TestQualifiedAttachedBinding(t *testing.T) {
	b, root := newBuilder(t)
	b.AddImport("QtQuick", "QQ", 2, 0, loc(1, 1))
	require.Nil(t, b.AddScriptBinding(root, "QQ.Keys.enabled", "true", loc(2, 5), loc(2, 22)))

	doc := b.Document()
	require.Len(t, doc.Root().Bindings, 1)
	attached := doc.Root().Bindings[0]
	require.Equal(t, BindingAttachedProperty, attached.Type)
	require.Equal(t, "QQ.Keys", doc.StringAt(attached.PropertyName))
	require.Equal(t, "enabled", doc.StringAt(doc.Objects[attached.ObjectIndex].Bindings[0].PropertyName))
}

func TestValueAndGroupBindingMayCoexist(t *testing.T) {
	b, root := newBuilder(t)
	require.Nil(t, b.AddScriptBinding(root, "anchors", "parent", loc(2, 5), loc(2, 14)))
	require.Nil(t, b.AddScriptBinding(root, "anchors.fill", "parent", loc(3, 5), loc(3, 19)))
	require.Len(t, b.Document().Root().Bindings, 2)
}

func TestDuplicateValueBinding(t *testing.T) {
	b, root := newBuilder(t)
	require.Nil(t, b.AddScriptBinding(root, "width", "10", loc(2, 5), loc(2, 12)))
	err := b.AddScriptBinding(root, "width", "20", loc(3, 5), loc(3, 12))
	require.Error(t, err)
	require.Contains(t, err.Error(), "Property value set multiple times")
	require.Contains(t, err.Error(), "file:///Main.qml:3:5")
}

func TestListAndOnBindingsAreNotDuplicates(t *testing.T) {
	b, root := newBuilder(t)
	first := b.NewObject("Item", loc(2, 5))
	second := b.NewObject("Item", loc(3, 5))
	require.Nil(t, b.AddListBinding(root, "children", []int{first, second}, loc(2, 5)))

	anim := b.NewObject("NumberAnimation", loc(4, 5))
	require.Nil(t, b.AddScriptBinding(root, "x", "10", loc(5, 5), loc(5, 8)))
	require.Nil(t, b.AddObjectBinding(root, "x", anim, true, loc(4, 5)))

	bindings := b.Document().Root().Bindings
	require.Len(t, bindings, 4)
	require.True(t, bindings[0].HasFlag(IsListItem))
	require.True(t, bindings[1].HasFlag(IsListItem))
	require.True(t, bindings[3].HasFlag(IsOnAssignment))
}

func TestDeclarationChecks(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *Builder, root int) error
		want  string
	}{
		{"duplicate property", func(b *Builder, root int) error {
			if err := b.AddProperty(root, "count", "int", false, false, loc(2, 5)); err != nil {
				return err
			}
			return b.AddProperty(root, "count", "real", false, false, loc(3, 5))
		}, "Duplicate property name"},
		{"uppercase property", func(b *Builder, root int) error {
			return b.AddProperty(root, "Count", "int", false, false, loc(2, 5))
		}, "Property names cannot begin with an upper case letter"},
		{"duplicate default", func(b *Builder, root int) error {
			if err := b.AddProperty(root, "a", "var", false, true, loc(2, 5)); err != nil {
				return err
			}
			return b.AddAlias(root, "b", "x.y", false, true, loc(3, 5), loc(3, 20))
		}, "Duplicate default property"},
		{"duplicate alias", func(b *Builder, root int) error {
			if err := b.AddAlias(root, "a", "x.y", false, false, loc(2, 5), loc(2, 20)); err != nil {
				return err
			}
			return b.AddAlias(root, "a", "x.z", false, false, loc(3, 5), loc(3, 20))
		}, "Duplicate alias name"},
		{"alias shadows property", func(b *Builder, root int) error {
			if err := b.AddProperty(root, "a", "int", false, false, loc(2, 5)); err != nil {
				return err
			}
			return b.AddAlias(root, "a", "x.z", false, false, loc(3, 5), loc(3, 20))
		}, "Duplicate property name"},
		{"duplicate signal", func(b *Builder, root int) error {
			if err := b.AddSignal(root, "clicked", nil, loc(2, 5)); err != nil {
				return err
			}
			return b.AddSignal(root, "clicked", nil, loc(3, 5))
		}, "Duplicate signal name"},
		{"duplicate function", func(b *Builder, root int) error {
			if err := b.AddFunction(root, "function f() { return 1 }", loc(2, 5)); err != nil {
				return err
			}
			return b.AddFunction(root, "function f() { return 2 }", loc(3, 5))
		}, "Duplicate function name"},
		{"not a function", func(b *Builder, root int) error {
			return b.AddFunction(root, "1 + 2", loc(2, 5))
		}, "Expected a function declaration"},
		{"uppercase id", func(b *Builder, root int) error {
			return b.SetID(root, "Root", loc(1, 1))
		}, "IDs cannot start with an uppercase letter"},
		{"illegal id", func(b *Builder, root int) error {
			return b.SetID(root, "console", loc(1, 1))
		}, "ID illegally masks global JavaScript property"},
		{"invalid id characters", func(b *Builder, root int) error {
			return b.SetID(root, "my-id", loc(1, 1))
		}, "IDs must contain only letters, numbers, and underscores"},
		{"deep alias", func(b *Builder, root int) error {
			return b.AddAlias(root, "a", "x.y.z.w", false, false, loc(2, 5), loc(2, 20))
		}, "Invalid alias location"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, root := newBuilder(t)
			err := tt.build(b, root)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDeclarations(t *testing.T) {
	b, root := newBuilder(t)
	require.Nil(t, b.SetID(root, "root", loc(2, 9)))
	require.Nil(t, b.AddProperty(root, "items", "list<Item>", false, false, loc(3, 5)))
	require.Nil(t, b.AddProperty(root, "model", "ListModel", true, false, loc(4, 5)))
	require.Nil(t, b.AddAlias(root, "label", "t.text", false, true, loc(5, 5), loc(5, 26)))
	require.Nil(t, b.AddSignal(root, "clicked", []SignalParam{{Name: "mouse", Type: "var"}, {Name: "item", Type: "Item"}}, loc(6, 5)))
	require.Nil(t, b.AddFunction(root, "function area() { return width * height }", loc(7, 5)))

	doc := b.Document()
	obj := doc.Root()
	require.Equal(t, "root", doc.StringAt(obj.IDName))

	require.Equal(t, CustomList, obj.Properties[0].Type)
	require.Equal(t, "Item", doc.StringAt(obj.Properties[0].CustomTypeName))
	require.Equal(t, Custom, obj.Properties[1].Type)
	require.True(t, obj.Properties[1].ReadOnly)

	alias := obj.Aliases[0]
	require.Equal(t, "t", doc.StringAt(alias.IDName))
	require.Equal(t, "text", doc.StringAt(alias.PropertyPath))
	require.False(t, alias.IsResolved())
	require.Equal(t, -1, alias.TargetObjectID)
	require.True(t, obj.HasFlag(DefaultPropertyIsAlias))
	require.Equal(t, 0, obj.DefaultProperty)

	sig := obj.Signals[0]
	require.Len(t, sig.Parameters, 2)
	require.Equal(t, Var, sig.Parameters[0].Type)
	require.Equal(t, Custom, sig.Parameters[1].Type)
	require.Equal(t, "Item", doc.StringAt(sig.Parameters[1].CustomTypeName))

	fn := obj.Functions[0]
	require.Equal(t, "area", doc.StringAt(fn.Name))
	require.NotNil(t, obj.Scripts[fn.ScriptIndex].Function())
	require.True(t, obj.DeclaresMembers())
}

func TestAliasEncodedIndex(t *testing.T) {
	a := NewAlias(1, 2, 3, Location{}, Location{})
	a.TargetCoreIndex = 5
	require.Equal(t, 5, a.EncodedIndex())
	a.TargetSubIndex = 2
	require.Equal(t, 5|2<<16, a.EncodedIndex())
}

func TestParsePropertyType(t *testing.T) {
	require.Equal(t, Int, ParsePropertyType("int"))
	require.Equal(t, Variant, ParsePropertyType("variant"))
	require.Equal(t, Var, ParsePropertyType("var"))
	require.Equal(t, Quaternion, ParsePropertyType("quaternion"))
	require.Equal(t, Custom, ParsePropertyType("Item"))
	require.Equal(t, Custom, ParsePropertyType("list"))
	require.Equal(t, "datetime", DateTime.String())
}

const sampleDocument = `{
  "url": "file:///app/Main.qml",
  "imports": [{"uri": "QtQuick", "major": 2, "minor": 0}],
  "root": {
    "type": "Rectangle",
    "id": "root",
    "location": {"line": 2, "column": 1},
    "properties": [
      {"name": "count", "type": "int", "readonly": true, "value": "3", "location": {"line": 4, "column": 5}}
    ],
    "aliases": [{"name": "label", "target": "t.text", "location": {"line": 5, "column": 5}}],
    "bindings": [
      {"name": "width", "script": "100", "location": {"line": 6, "column": 5}},
      {"name": "title", "string": "Hello", "location": {"line": 7, "column": 5}},
      {"name": "", "object": {"type": "Text", "id": "t", "location": {"line": 8, "column": 5}}},
      {"name": "states", "list": [
        {"type": "State", "location": {"line": 9, "column": 5}},
        {"type": "State", "location": {"line": 10, "column": 5}}
      ]}
    ]
  }
}`

func TestLoad(t *testing.T) {
	doc, err := Load(context.Background(), strings.NewReader(sampleDocument))
	require.Nil(t, err)
	require.Equal(t, "file:///app/Main.qml", doc.URL)
	require.Len(t, doc.Imports, 1)
	require.Equal(t, "QtQuick", doc.Imports[0].URI)
	require.Len(t, doc.Objects, 4)

	root := doc.Root()
	require.Equal(t, "Rectangle", doc.StringAt(root.InheritedTypeName))
	require.Len(t, root.Bindings, 6)
	require.True(t, root.Bindings[0].HasFlag(InitializerForReadOnlyDeclaration))
	require.Equal(t, BindingNumber, root.Bindings[1].Type)
	require.Equal(t, BindingString, root.Bindings[2].Type)
	require.Equal(t, 0, root.Bindings[3].PropertyName)
	require.Equal(t, "Text", doc.StringAt(doc.Objects[root.Bindings[3].ObjectIndex].InheritedTypeName))
	require.True(t, root.Bindings[4].HasFlag(IsListItem))
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(context.Background(), strings.NewReader(`{"url": "x.qml"}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "has no root object")

	_, err = Load(context.Background(), strings.NewReader(`{`))
	require.Error(t, err)

	_, err = Load(context.Background(), strings.NewReader(`{"url": "x.qml", "root": {"type": "Item", "bindings": [{"name": "x"}]}}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), `binding "x" has no value`)
}

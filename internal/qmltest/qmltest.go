// Package qmltest provides a registry of common native types and a fluent
// document builder for tests.
package qmltest

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"testing"

	"github.com/deepnoodle-ai/qmlc/ir"
	"github.com/deepnoodle-ai/qmlc/qmltypes"
	"github.com/deepnoodle-ai/qmlc/registry"
	"github.com/stretchr/testify/require"
)

//go:embed builtins.qmltypes
var builtins string

// Builtins returns the type description the registry is loaded from.
func Builtins() string {
	return builtins
}

// Registry returns a new registry loaded with the QtQml and QtQuick test
// types.
func Registry(t testing.TB) *registry.Registry {
	t.Helper()
	reg := registry.New()
	_, err := qmltypes.Load(reg, "builtins.qmltypes", strings.NewReader(builtins))
	require.NoError(t, err)
	return reg
}

// Document builds an ir.Document. Every declaration is placed on its own
// line, and a QML-like rendering of it becomes the document source.
type Document struct {
	t     testing.TB
	b     *ir.Builder
	lines []string
}

// NewDocument returns a builder for a document with the given URL.
func NewDocument(t testing.TB, url string) *Document {
	return &Document{t: t, b: ir.NewBuilder(context.Background(), url, "")}
}

func (d *Document) next(depth int, format string, args ...any) ir.Location {
	text := strings.Repeat("    ", depth) + fmt.Sprintf(format, args...)
	d.lines = append(d.lines, text)
	return ir.Location{Line: len(d.lines), Column: 4*depth + 1}
}

// Import adds "import uri major.minor".
func (d *Document) Import(uri string, major, minor int) *Document {
	return d.ImportAs(uri, "", major, minor)
}

// ImportAs adds "import uri major.minor as qualifier".
func (d *Document) ImportAs(uri, qualifier string, major, minor int) *Document {
	text := fmt.Sprintf("import %s %d.%d", uri, major, minor)
	if qualifier != "" {
		text += " as " + qualifier
	}
	d.b.AddImport(uri, qualifier, major, minor, d.next(0, "%s", text))
	return d
}

// Pragma adds "pragma name".
func (d *Document) Pragma(name string) *Document {
	d.next(0, "pragma %s", name)
	d.b.AddPragma(name)
	return d
}

// Root creates the root object.
func (d *Document) Root(typeName string) *Object {
	loc := d.next(0, "%s {", typeName)
	obj := d.b.NewObject(typeName, loc)
	d.b.SetRoot(obj)
	return &Object{d: d, index: obj, loc: loc}
}

// Build returns the document.
func (d *Document) Build() *ir.Document {
	doc := d.b.Document()
	doc.Source = strings.Join(d.lines, "\n")
	return doc
}

// Builder returns the underlying builder for declarations that are expected
// to fail.
func (d *Document) Builder() *ir.Builder {
	return d.b
}

// Object is an object of a Document under construction.
type Object struct {
	d     *Document
	index int
	depth int
	loc   ir.Location
}

// Index returns the object index within the document.
func (o *Object) Index() int {
	return o.index
}

// Location returns the location of the object declaration.
func (o *Object) Location() ir.Location {
	return o.loc
}

func (o *Object) line(format string, args ...any) ir.Location {
	return o.d.next(o.depth+1, format, args...)
}

// ID sets the object id.
func (o *Object) ID(id string) *Object {
	o.d.t.Helper()
	require.NoError(o.d.t, o.d.b.SetID(o.index, id, o.line("id: %s", id)))
	return o
}

// Property declares "property <typ> <name>".
func (o *Object) Property(typ, name string) *Object {
	return o.addProperty(typ, name, false, false)
}

// ReadOnlyProperty declares "readonly property <typ> <name>: <init>".
func (o *Object) ReadOnlyProperty(typ, name, init string) *Object {
	o.d.t.Helper()
	o.addProperty(typ, name, true, false)
	o.Set(name, init)
	bindings := o.d.b.Document().Objects[o.index].Bindings
	bindings[len(bindings)-1].Flags |= ir.InitializerForReadOnlyDeclaration
	return o
}

// DefaultProperty declares "default property <typ> <name>".
func (o *Object) DefaultProperty(typ, name string) *Object {
	return o.addProperty(typ, name, false, true)
}

func (o *Object) addProperty(typ, name string, readOnly, isDefault bool) *Object {
	o.d.t.Helper()
	prefix := ""
	if isDefault {
		prefix = "default "
	}
	if readOnly {
		prefix += "readonly "
	}
	loc := o.line("%sproperty %s %s", prefix, typ, name)
	require.NoError(o.d.t, o.d.b.AddProperty(o.index, name, typ, readOnly, isDefault, loc))
	return o
}

// Alias declares "property alias <name>: <target>".
func (o *Object) Alias(name, target string) *Object {
	o.d.t.Helper()
	loc := o.line("property alias %s: %s", name, target)
	ref := loc
	ref.Column += len("property alias : ") + len(name)
	require.NoError(o.d.t, o.d.b.AddAlias(o.index, name, target, false, false, loc, ref))
	return o
}

// Signal declares "signal <name>(<params>)".
func (o *Object) Signal(name string, params ...ir.SignalParam) *Object {
	o.d.t.Helper()
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Type + " " + p.Name
	}
	loc := o.line("signal %s(%s)", name, strings.Join(parts, ", "))
	require.NoError(o.d.t, o.d.b.AddSignal(o.index, name, params, loc))
	return o
}

// Function declares a method from its source, "function f() { ... }".
func (o *Object) Function(source string) *Object {
	o.d.t.Helper()
	require.NoError(o.d.t, o.d.b.AddFunction(o.index, source, o.line("%s", source)))
	return o
}

// Set binds "name: script".
func (o *Object) Set(name, script string) *Object {
	o.d.t.Helper()
	loc := o.line("%s: %s", name, script)
	value := loc
	value.Column += len(name) + 2
	require.NoError(o.d.t, o.d.b.AddScriptBinding(o.index, name, script, loc, value))
	return o
}

// SetString binds a string literal without parsing it.
func (o *Object) SetString(name, value string) *Object {
	o.d.t.Helper()
	loc := o.line("%s: %q", name, value)
	valueLoc := loc
	valueLoc.Column += len(name) + 2
	require.NoError(o.d.t, o.d.b.AddStringBinding(o.index, name, value, loc, valueLoc))
	return o
}

func (o *Object) newChild(typeName, format string, args ...any) *Object {
	loc := o.line(format, args...)
	index := o.d.b.NewObject(typeName, loc)
	return &Object{d: o.d, index: index, depth: o.depth + 1, loc: loc}
}

// Child creates an object of typeName bound to the named property, or to
// the default property when name is empty.
func (o *Object) Child(name, typeName string) *Object {
	o.d.t.Helper()
	text := typeName + " {"
	if name != "" {
		text = name + ": " + text
	}
	child := o.newChild(typeName, "%s", text)
	require.NoError(o.d.t, o.d.b.AddObjectBinding(o.index, name, child.index, false, child.loc))
	return child
}

// On creates "typeName on name { }", a value source or interceptor.
func (o *Object) On(name, typeName string) *Object {
	o.d.t.Helper()
	child := o.newChild(typeName, "%s on %s {", typeName, name)
	require.NoError(o.d.t, o.d.b.AddObjectBinding(o.index, name, child.index, true, child.loc))
	return child
}

// Items binds "name: [ typeName {}, ... ]" and returns the list items.
func (o *Object) Items(name string, typeNames ...string) []*Object {
	o.d.t.Helper()
	loc := o.line("%s: [", name)
	items := make([]*Object, len(typeNames))
	indices := make([]int, len(typeNames))
	for i, typeName := range typeNames {
		item := o.newChild(typeName, "%s {", typeName)
		items[i] = item
		indices[i] = item.index
	}
	require.NoError(o.d.t, o.d.b.AddListBinding(o.index, name, indices, loc))
	return items
}

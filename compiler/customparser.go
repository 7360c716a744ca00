package compiler

import (
	"strings"

	"github.com/deepnoodle-ai/qmlc/errors"
	"github.com/deepnoodle-ai/qmlc/ir"
	"github.com/deepnoodle-ai/qmlc/metatype"
	"github.com/deepnoodle-ai/qmlc/registry"
)

// CustomParserFlags select which bindings a custom parser claims besides
// the ones that do not resolve to a property.
type CustomParserFlags uint8

const (
	// AcceptsAttachedProperties hands attached property bindings to the
	// parser.
	AcceptsAttachedProperties CustomParserFlags = 1 << iota
	// AcceptsSignalHandlers lets "onFoo" bindings go through the regular
	// signal handler conversion instead of the parser.
	AcceptsSignalHandlers
)

// CustomParser takes over the bindings of one native type that the generic
// rules cannot describe, such as the ListElement children of a ListModel.
type CustomParser interface {
	Flags() CustomParserFlags
	// VerifyBindings checks the bindings claimed for obj. The returned
	// error may be a single compile error or an aggregate of them.
	VerifyBindings(v *Verifier, obj *ir.Object, bindings []*ir.Binding) error
}

// Verifier gives a custom parser read access to the document being
// compiled.
type Verifier struct {
	c *TypeCompiler
}

// Document returns the document being compiled.
func (v *Verifier) Document() *ir.Document {
	return v.c.doc
}

// String returns a pooled string of the document.
func (v *Verifier) String(i int) string {
	return v.c.stringAt(i)
}

// Object returns the object with the given index.
func (v *Verifier) Object(i int) *ir.Object {
	return v.c.object(i)
}

// TypeOf returns the registered type obj instantiates, or nil for group
// objects and unresolved names.
func (v *Verifier) TypeOf(obj *ir.Object) *registry.Type {
	if ref := v.c.types[obj.InheritedTypeName]; ref != nil {
		return ref.Type
	}
	return nil
}

// ResolveType resolves a type name through the imports of the document.
func (v *Verifier) ResolveType(name string) (*registry.Type, bool) {
	res, ok := v.c.imports.Resolve(name)
	if !ok || res.Namespace {
		return nil, false
	}
	return res.Type, true
}

// BindingSource returns the source text of a script binding of obj.
func (v *Verifier) BindingSource(obj *ir.Object, b *ir.Binding) string {
	if b.Type != ir.BindingScript {
		return b.ValueAsString(v.c.doc.Strings)
	}
	if b.StringIndex != 0 {
		return v.c.stringAt(b.StringIndex)
	}
	return v.c.bindingSource(obj, b)
}

// IsFunctionExpression reports whether a script binding of obj is a bare
// function expression.
func (v *Verifier) IsFunctionExpression(obj *ir.Object, b *ir.Binding) bool {
	if b.Type != ir.BindingScript || b.ScriptIndex < 0 || b.ScriptIndex >= len(obj.Scripts) {
		return false
	}
	return functionExpression(obj.Scripts[b.ScriptIndex]) != nil
}

// EvaluateEnum evaluates "Type.Value" or "Qt.Value".
func (v *Verifier) EvaluateEnum(script string) (int, bool) {
	scope, value, ok := strings.Cut(strings.TrimSpace(script), ".")
	if !ok {
		return 0, false
	}
	return v.c.evaluateEnum(scope, value)
}

// Errorf returns a custom parser error at loc.
func (v *Verifier) Errorf(loc ir.Location, format string, args ...any) *errors.CompileError {
	return v.c.errorf(errors.E4006, loc, format, args...)
}

// evaluateEnum looks value up in the enumerations of the type named scope,
// or in the Qt namespace.
func (c *TypeCompiler) evaluateEnum(scope, value string) (int, bool) {
	if scope == "Qt" {
		return metatype.QtEnumValue(value)
	}
	res, ok := c.imports.Resolve(scope)
	if !ok || res.Namespace || res.Type.IsComposite {
		return 0, false
	}
	cache, err := c.registry.PropertyCache(res.Type)
	if err != nil {
		return 0, false
	}
	return cache.EnumValue(value)
}

package compiler

import (
	"github.com/deepnoodle-ai/qmlc/bytecode"
	"github.com/deepnoodle-ai/qmlc/codegen"
	"github.com/deepnoodle-ai/qmlc/errors"
	"github.com/deepnoodle-ai/qmlc/ir"
	"github.com/deepnoodle-ai/qmlc/unit"
	"github.com/rs/zerolog"
)

// generateCode compiles the scripts of every component, then those of the
// document scope, into one function table.
func (c *TypeCompiler) generateCode(ev *zerolog.Event) error {
	for _, obj := range c.doc.Objects {
		obj.RuntimeFunctionIndices = nil
	}
	gen := codegen.New(c.doc.URL, c.doc.Source)
	for _, root := range c.componentRoots {
		body := c.componentBody(c.object(root))
		if body < 0 {
			continue
		}
		if err := c.compileObjectScripts(gen, c.scopes[root], body, body, body); err != nil {
			return err
		}
	}
	root := c.doc.RootObject
	context := root
	if c.object(root).HasFlag(ir.IsComponent) {
		if body := c.componentBody(c.object(root)); body >= 0 {
			context = body
		}
	}
	if err := c.compileObjectScripts(gen, c.scopes[root], root, root, context); err != nil {
		return err
	}
	c.module = gen.Module()
	stats := c.module.Stats()
	c.stats.functions = stats.FunctionCount
	ev.Int("functions", stats.FunctionCount).
		Int("instructions", stats.InstructionCount).
		Int("closures", stats.ClosureCount)
	return nil
}

// compileObjectScripts compiles the scripts of an object and of the objects
// below it. Component objects below it are compiled in their own scope.
// Scripts of group and attached objects run with the enclosing object as
// scope.
func (c *TypeCompiler) compileObjectScripts(gen *codegen.Compiler, scope unit.Component, index, scopeObject, context int) error {
	obj := c.object(index)

	kinds := make([]bytecode.Kind, len(obj.Scripts))
	names := make([]string, len(obj.Scripts))
	for _, fn := range obj.Functions {
		kinds[fn.ScriptIndex] = bytecode.KindMethod
		names[fn.ScriptIndex] = c.stringAt(fn.Name)
	}
	for _, b := range obj.Bindings {
		if b.Type != ir.BindingScript {
			continue
		}
		if b.HasFlag(ir.IsSignalHandlerExpression) {
			kinds[b.ScriptIndex] = bytecode.KindSignalHandler
		}
		names[b.ScriptIndex] = c.stringAt(b.PropertyName)
	}

	objectScope := codegen.ObjectScope{
		IDs:     scope.Names,
		Object:  c.caches[scopeObject],
		Context: c.caches[context],
	}
	disable := c.customParser(obj) != nil
	obj.RuntimeFunctionIndices = make([]int, len(obj.Scripts))
	for i, s := range obj.Scripts {
		objectScope.DisableAcceleratedLookups = disable || s.DisableAcceleratedLookups
		idx, err := gen.CompileScript(codegen.Script{
			Name:     names[i],
			Kind:     kinds[i],
			Node:     s.Node,
			Source:   s.Source,
			Location: bytecode.SourceLocation{Line: s.Location.Line, Column: s.Location.Column},
		}, objectScope)
		if err != nil {
			var ce *errors.CompileError
			if errors.As(err, &ce) {
				return ce
			}
			return c.errorf(errors.E4005, s.Location, "%s", err)
		}
		obj.RuntimeFunctionIndices[i] = idx
	}

	for _, b := range obj.Bindings {
		if !b.IsObjectBinding() || c.object(b.ObjectIndex).HasFlag(ir.IsComponent) {
			continue
		}
		child := scopeObject
		if b.Type == ir.BindingObject {
			child = b.ObjectIndex
		}
		if err := c.compileObjectScripts(gen, scope, b.ObjectIndex, child, context); err != nil {
			return err
		}
	}
	return nil
}

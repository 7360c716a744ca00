package compiler

import (
	"strings"
	"unicode"

	"github.com/deepnoodle-ai/qmlc/ast"
	"github.com/deepnoodle-ai/qmlc/errors"
	"github.com/deepnoodle-ai/qmlc/ir"
	"github.com/deepnoodle-ai/qmlc/propcache"
	"github.com/rs/zerolog"
)

// isSignalPropertyName reports whether name has the "onFoo" handler form.
// Underscores may precede the first letter after "on".
func isSignalPropertyName(name string) bool {
	if len(name) < 3 || !strings.HasPrefix(name, "on") {
		return false
	}
	for _, r := range name[2:] {
		if r == '_' {
			continue
		}
		return unicode.IsUpper(r)
	}
	return false
}

// signalNameFromHandler maps "onFooBar" to "fooBar".
func signalNameFromHandler(name string) string {
	runes := []rune(strings.TrimPrefix(name, "on"))
	for i, r := range runes {
		if unicode.IsUpper(r) {
			runes[i] = unicode.ToLower(r)
			break
		}
	}
	return string(runes)
}

func (c *TypeCompiler) convertSignalHandlers(ev *zerolog.Event) error {
	attached := map[int]bool{}
	for _, obj := range c.doc.Objects {
		for _, b := range obj.Bindings {
			if b.Type == ir.BindingAttachedProperty {
				attached[b.ObjectIndex] = true
			}
		}
	}
	for i, obj := range c.doc.Objects {
		if c.caches[i] == nil || attached[i] {
			continue
		}
		if p := c.customParser(obj); p != nil && p.Flags()&AcceptsSignalHandlers == 0 {
			continue
		}
		if err := c.convertObjectSignalHandlers(obj, c.stringAt(obj.InheritedTypeName), c.caches[i]); err != nil {
			return err
		}
	}
	ev.Int("handlers", c.stats.handlers)
	return nil
}

func (c *TypeCompiler) convertObjectSignalHandlers(obj *ir.Object, typeName string, cache *propcache.PropertyCache) error {
	var customSignals map[string][]string
	resolver := propcache.NewResolver(cache)
	for _, b := range obj.Bindings {
		original := c.stringAt(b.PropertyName)
		if b.Type == ir.BindingAttachedProperty {
			ref := c.types[b.PropertyName]
			attachedCache, err := c.registry.AttachedCache(c.registryType(ref))
			if err != nil || attachedCache == nil {
				return c.errorf(errors.E2002, b.Location, "Non-existent attached object")
			}
			if err := c.convertObjectSignalHandlers(c.object(b.ObjectIndex), original, attachedCache); err != nil {
				return err
			}
			continue
		}
		if !isSignalPropertyName(original) {
			continue
		}
		name := signalNameFromHandler(original)

		var params []string
		signal, notInRevision := resolver.Signal(name)
		if signal != nil {
			unnamed := false
			for _, p := range signal.ParameterNames() {
				switch {
				case p == "":
					unnamed = true
				case unnamed:
					return c.errorf(errors.E4002, b.Location, "Signal uses unnamed parameter followed by named parameter.")
				case ir.IsIllegalName(p):
					return c.errorf(errors.E4002, b.Location, "Signal parameter \"%s\" hides global variable.", p)
				}
				params = append(params, p)
			}
		} else {
			if notInRevision {
				if d, _ := resolver.Property(name); d != nil {
					continue
				}
				if ref := c.types[obj.InheritedTypeName]; ref != nil && ref.Type != nil {
					return c.errorf(errors.E2007, b.Location, "\"%s.%s\" is not available in %s %d.%d.",
						typeName, original, ref.Module, ref.Major, ref.Minor)
				}
				return c.errorf(errors.E2007, b.Location, "\"%s.%s\" is not available due to component versioning.", typeName, original)
			}
			if customSignals == nil {
				customSignals = c.declaredSignals(obj)
			}
			var ok bool
			params, ok = customSignals[name]
			if !ok {
				if prop, isChange := strings.CutSuffix(name, "Changed"); isChange {
					params, ok = customSignals[prop]
				}
			}
			if !ok {
				// Not a signal; the binding stays a property assignment.
				continue
			}
		}

		if b.Type == ir.BindingObject {
			b.Flags |= ir.IsSignalHandlerObject
			continue
		}
		if b.Type != ir.BindingScript {
			if b.Type < ir.BindingScript {
				return c.errorf(errors.E4002, b.Location, "Cannot assign a value to a signal (expecting a script to be run)")
			}
			return c.errorf(errors.E4002, b.Location, "Incorrectly specified signal assignment")
		}
		wrapHandler(obj.Scripts[b.ScriptIndex], original, params)
		b.PropertyName = c.doc.Strings.Register(name)
		b.Flags |= ir.IsSignalHandlerExpression
		c.stats.handlers++
	}
	return nil
}

// declaredSignals returns the parameter names of the signals obj declares.
// Declared properties are listed under their own name with no parameters.
func (c *TypeCompiler) declaredSignals(obj *ir.Object) map[string][]string {
	signals := map[string][]string{}
	for _, s := range obj.Signals {
		var names []string
		for _, p := range s.Parameters {
			names = append(names, c.stringAt(p.Name))
		}
		signals[c.stringAt(s.Name)] = names
	}
	for _, p := range obj.Properties {
		signals[c.stringAt(p.Name)] = nil
	}
	for _, a := range obj.Aliases {
		signals[c.stringAt(a.Name)] = nil
	}
	return signals
}

// wrapHandler turns the binding script into a function named after the
// handler, taking the signal parameters. A binding that already is a
// function expression keeps its own parameters.
func wrapHandler(s *ir.Script, name string, params []string) {
	if fn := functionExpression(s); fn != nil {
		fn.Name = &ast.Ident{NamePos: fn.Pos(), Name: name}
		s.Node = fn
		return
	}
	program, ok := s.Node.(*ast.Program)
	if !ok {
		return
	}
	pos, end := program.Pos(), program.End()
	var idents []*ast.Ident
	for _, p := range params {
		// Unnamed parameters can only trail the named ones.
		if p != "" {
			idents = append(idents, &ast.Ident{NamePos: pos, Name: p})
		}
	}
	s.Node = &ast.Func{
		Func:   pos,
		Name:   &ast.Ident{NamePos: pos, Name: name},
		Lparen: pos,
		Params: idents,
		Rparen: pos,
		Body:   &ast.Block{Lbrace: pos, Stmts: program.Stmts, Rbrace: end},
	}
}

// functionExpression returns the anonymous function a binding script
// consists of, or nil.
func functionExpression(s *ir.Script) *ast.Func {
	program, ok := s.Node.(*ast.Program)
	if !ok || len(program.Stmts) != 1 {
		return nil
	}
	fn, ok := program.Stmts[0].(*ast.Func)
	if !ok || fn.Name != nil {
		return nil
	}
	return fn
}

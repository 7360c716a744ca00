package parsers

import (
	"unicode"
	"unicode/utf8"

	"github.com/deepnoodle-ai/qmlc/compiler"
	"github.com/deepnoodle-ai/qmlc/ir"
	"github.com/hashicorp/go-multierror"
)

// Connections verifies the handlers of a Connections object. The handlers
// name signals of the target object, which is only known at runtime, so
// they are claimed here instead of being resolved against the cache.
type Connections struct{}

// Flags implements compiler.CustomParser.
func (p *Connections) Flags() compiler.CustomParserFlags {
	return 0
}

// VerifyBindings implements compiler.CustomParser.
func (p *Connections) VerifyBindings(v *compiler.Verifier, obj *ir.Object, bindings []*ir.Binding) error {
	var result *multierror.Error
	for _, b := range bindings {
		name := v.String(b.PropertyName)
		switch {
		case !isHandlerName(name):
			result = multierror.Append(result, v.Errorf(b.ValueLocation,
				"Cannot assign to non-existent property \"%s\"", name))
		case b.IsObjectBinding():
			if v.Object(b.ObjectIndex).InheritedTypeName != 0 {
				result = multierror.Append(result, v.Errorf(b.ValueLocation, "Connections: nested objects not allowed"))
			} else {
				result = multierror.Append(result, v.Errorf(b.ValueLocation, "Connections: syntax error"))
			}
		case b.Type != ir.BindingScript:
			result = multierror.Append(result, v.Errorf(b.ValueLocation, "Connections: script expected"))
		}
	}
	return result.ErrorOrNil()
}

func isHandlerName(name string) bool {
	if len(name) < 3 || name[:2] != "on" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(name[2:])
	return unicode.IsUpper(r)
}

package parsers

import (
	"strings"

	"github.com/deepnoodle-ai/qmlc/compiler"
	"github.com/deepnoodle-ai/qmlc/ir"
	"github.com/hashicorp/go-multierror"
)

// ListModel verifies the static contents of a ListModel. Every element must
// be a ListElement whose roles are constants: literals, enumerators, empty
// lists, or nested lists of further ListElements.
type ListModel struct{}

// Flags implements compiler.CustomParser. Signal handlers of the model are
// compiled as usual.
func (p *ListModel) Flags() compiler.CustomParserFlags {
	return compiler.AcceptsSignalHandlers
}

// VerifyBindings implements compiler.CustomParser. The first problem of each
// element is reported.
func (p *ListModel) VerifyBindings(v *compiler.Verifier, obj *ir.Object, bindings []*ir.Binding) error {
	var result *multierror.Error
	for _, b := range bindings {
		if b.PropertyName != 0 {
			result = multierror.Append(result, v.Errorf(b.ValueLocation,
				"ListModel: undefined property '%s'", v.String(b.PropertyName)))
			continue
		}
		if err := p.verifyRole(v, obj, b); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (p *ListModel) verifyRole(v *compiler.Verifier, obj *ir.Object, b *ir.Binding) error {
	if b.IsObjectBinding() {
		target := v.Object(b.ObjectIndex)
		if t := v.TypeOf(target); t == nil || t.Name != ListElementClass {
			return v.Errorf(target.Location, "ListElement: cannot contain nested elements")
		}
		if target.IDName != 0 {
			return v.Errorf(target.IDLocation, "ListElement: cannot use reserved \"id\" property")
		}
		for _, sub := range target.Bindings {
			if sub.PropertyName == 0 {
				return v.Errorf(sub.ValueLocation, "ListElement: cannot contain nested elements")
			}
			if err := p.verifyRole(v, target, sub); err != nil {
				return err
			}
		}
		return nil
	}
	if b.Type != ir.BindingScript {
		return nil
	}
	source := v.BindingSource(obj, b)
	if definesEmptyList(source) {
		return nil
	}
	if _, ok := v.EvaluateEnum(source); !ok {
		return v.Errorf(b.ValueLocation, "ListElement: cannot use script for property value")
	}
	return nil
}

// definesEmptyList reports whether s is "[]", ignoring white space.
func definesEmptyList(s string) bool {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return false
	}
	return strings.TrimSpace(s[1:len(s)-1]) == ""
}

package compiler

import (
	"math"

	"fortio.org/safecast"
	"github.com/deepnoodle-ai/qmlc/bytecode"
	"github.com/deepnoodle-ai/qmlc/ir"
	"github.com/deepnoodle-ai/qmlc/op"
	"github.com/rs/zerolog"
)

// translationCall is a binding function consisting of one call of a
// global function with constant arguments.
type translationCall struct {
	name string
	args []any
}

// simplifyBindings turns bindings that only call a translation function
// into translation records and removes their compiled functions.
func (c *TypeCompiler) simplifyBindings(ev *zerolog.Event) error {
	if !c.simplify || c.module == nil {
		ev.Bool("skipped", true)
		return nil
	}
	var removed []int
	for _, obj := range c.doc.Objects {
		for _, b := range obj.Bindings {
			// Bindings whose source text is kept are read by other consumers.
			if b.Type != ir.BindingScript || b.IsSignalHandler() || b.StringIndex != 0 {
				continue
			}
			if b.ScriptIndex < 0 || b.ScriptIndex >= len(obj.RuntimeFunctionIndices) {
				continue
			}
			index := obj.RuntimeFunctionIndices[b.ScriptIndex]
			fn := c.module.FunctionAt(index)
			if fn == nil || fn.Kind() != bytecode.KindBinding || fn.Code() == nil {
				continue
			}
			if bytecode.BasicBlockCount(fn.Code()) > c.maxBlocks {
				continue
			}
			call, ok := matchTranslationCall(fn.Code())
			if !ok || !c.applyTranslation(b, call) {
				continue
			}
			removed = append(removed, index)
		}
	}
	if len(removed) == 0 {
		ev.Int("elided", 0)
		return nil
	}

	module, remap, err := c.module.Compact(removed)
	if err != nil {
		return err
	}
	for _, obj := range c.doc.Objects {
		for i, idx := range obj.RuntimeFunctionIndices {
			if idx >= 0 && idx < len(remap) {
				obj.RuntimeFunctionIndices[i] = remap[idx]
			} else {
				obj.RuntimeFunctionIndices[i] = -1
			}
		}
	}
	c.module = module
	c.stats.elided = len(removed)
	c.stats.functions = module.FunctionCount()
	ev.Int("elided", c.stats.elided).Int("functions", c.stats.functions)
	return nil
}

// matchTranslationCall recognizes LOAD_NAME f, LOAD_CONST..., CALL n,
// RETURN_VALUE with exactly n constants.
func matchTranslationCall(code *bytecode.Code) (translationCall, bool) {
	instrs := bytecode.NewInstructionIter(code).All()
	if len(instrs) < 3 {
		return translationCall{}, false
	}
	first, call, ret := instrs[0], instrs[len(instrs)-2], instrs[len(instrs)-1]
	if first[0] != op.LoadName || len(first) < 2 || call[0] != op.Call || len(call) < 2 || ret[0] != op.ReturnValue {
		return translationCall{}, false
	}
	consts := instrs[1 : len(instrs)-2]
	if int(call[1]) != len(consts) {
		return translationCall{}, false
	}
	tc := translationCall{name: code.NameAt(int(first[1]))}
	for _, in := range consts {
		if in[0] != op.LoadConst || len(in) < 2 {
			return translationCall{}, false
		}
		tc.args = append(tc.args, code.ConstantAt(int(in[1])))
	}
	return tc, true
}

func (c *TypeCompiler) applyTranslation(b *ir.Binding, call translationCall) bool {
	strs := c.doc.Strings
	args := call.args
	switch call.name {
	case "qsTr":
		if len(args) < 1 || len(args) > 3 {
			return false
		}
		text, ok := args[0].(string)
		if !ok {
			return false
		}
		tr := ir.Translation{Number: -1}
		if len(args) > 1 {
			comment, ok := args[1].(string)
			if !ok {
				return false
			}
			tr.CommentIndex = strs.Register(comment)
		}
		if len(args) > 2 {
			if tr.Number, ok = intArg(args[2]); !ok {
				return false
			}
		}
		b.Type = ir.BindingTranslation
		b.StringIndex = strs.Register(text)
		b.Translation = tr
	case "qsTrId":
		if len(args) < 1 || len(args) > 2 {
			return false
		}
		id, ok := args[0].(string)
		if !ok {
			return false
		}
		tr := ir.Translation{Number: -1}
		if len(args) > 1 {
			if tr.Number, ok = intArg(args[1]); !ok {
				return false
			}
		}
		b.Type = ir.BindingTranslationByID
		b.StringIndex = strs.Register(id)
		b.Translation = tr
	case "QT_TR_NOOP", "QT_TRID_NOOP":
		if len(args) != 1 {
			return false
		}
		text, ok := args[0].(string)
		if !ok {
			return false
		}
		b.Type = ir.BindingString
		b.StringIndex = strs.Register(text)
	case "QT_TRANSLATE_NOOP":
		if len(args) != 2 {
			return false
		}
		_, ok1 := args[0].(string)
		text, ok2 := args[1].(string)
		if !ok1 || !ok2 {
			return false
		}
		b.Type = ir.BindingString
		b.StringIndex = strs.Register(text)
	default:
		return false
	}
	return true
}

func intArg(v any) (int, bool) {
	switch n := v.(type) {
	case int64:
		i, err := safecast.Conv[int32](n)
		return int(i), err == nil
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		i, err := safecast.Convert[int32](n)
		return int(i), err == nil
	}
	return 0, false
}

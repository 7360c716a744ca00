package ir

import "strconv"

// BindingType is the kind of value a binding assigns. Literal kinds sort
// before Script, and object kinds sort after it.
type BindingType uint8

const (
	BindingInvalid BindingType = iota
	BindingBoolean
	BindingNumber
	BindingString
	BindingTranslation
	BindingTranslationByID
	BindingScript
	BindingObject
	BindingAttachedProperty
	BindingGroupProperty
)

var bindingTypeNames = [...]string{
	"invalid", "boolean", "number", "string", "translation",
	"translation-by-id", "script", "object", "attached", "group",
}

func (t BindingType) String() string {
	if int(t) < len(bindingTypeNames) {
		return bindingTypeNames[t]
	}
	return "binding(" + strconv.Itoa(int(t)) + ")"
}

// BindingFlags annotate bindings for later passes and the runtime.
type BindingFlags uint16

const (
	IsSignalHandlerExpression BindingFlags = 1 << iota
	IsSignalHandlerObject
	IsOnAssignment
	InitializerForReadOnlyDeclaration
	IsResolvedEnum
	IsListItem
	IsBindingToAlias
	IsDeferredBinding
	IsCustomParserBinding
)

// Translation holds the extra data of qsTr and qsTrId bindings. The
// translated text or id is in Binding.StringIndex.
type Translation struct {
	CommentIndex int
	Number       int
}

// Binding is one property assignment of an object.
type Binding struct {
	// PropertyName is the string index of the target, or 0 for the default
	// property.
	PropertyName int
	Type         BindingType
	Flags        BindingFlags

	Bool        bool
	Number      float64
	StringIndex int
	Translation Translation
	// ObjectIndex is the bound object for object, attached and group
	// bindings.
	ObjectIndex int
	// ScriptIndex is the index into Object.Scripts for script bindings.
	ScriptIndex int

	Location      Location
	ValueLocation Location
}

// HasFlag reports whether flag is set.
func (b *Binding) HasFlag(flag BindingFlags) bool {
	return b.Flags&flag != 0
}

// IsValueBinding reports whether the binding assigns a value, as opposed to
// opening an attached or grouped property scope.
func (b *Binding) IsValueBinding() bool {
	return b.Type != BindingAttachedProperty && b.Type != BindingGroupProperty
}

// IsLiteral reports whether the binding holds a constant value.
func (b *Binding) IsLiteral() bool {
	return b.Type > BindingInvalid && b.Type < BindingScript
}

// IsObjectBinding reports whether the binding carries a nested object.
func (b *Binding) IsObjectBinding() bool {
	return b.Type >= BindingObject
}

// IsTranslation reports whether the binding is a qsTr or qsTrId record.
func (b *Binding) IsTranslation() bool {
	return b.Type == BindingTranslation || b.Type == BindingTranslationByID
}

// EvaluatesToString reports whether the binding value is a string.
func (b *Binding) EvaluatesToString() bool {
	return b.Type == BindingString || b.IsTranslation()
}

// IsSignalHandler reports whether the binding was converted to a signal
// handler.
func (b *Binding) IsSignalHandler() bool {
	return b.HasFlag(IsSignalHandlerExpression) || b.HasFlag(IsSignalHandlerObject)
}

// ValueAsString formats literal values as their source would read.
func (b *Binding) ValueAsString(strings *StringTable) string {
	switch b.Type {
	case BindingBoolean:
		return strconv.FormatBool(b.Bool)
	case BindingNumber:
		return strconv.FormatFloat(b.Number, 'g', -1, 64)
	case BindingString, BindingTranslation, BindingTranslationByID:
		return strings.At(b.StringIndex)
	}
	return ""
}

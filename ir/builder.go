package ir

import (
	"context"
	"strings"
	"unicode"

	"github.com/deepnoodle-ai/qmlc/ast"
	"github.com/deepnoodle-ai/qmlc/errors"
	"github.com/deepnoodle-ai/qmlc/parser"
)

// Builder constructs a Document one declaration at a time, applying the
// checks a QML parser performs while it builds the object tree. Scripts are
// parsed as they are added.
type Builder struct {
	ctx context.Context
	doc *Document
}

// NewBuilder returns a builder for a document with the given URL and source.
func NewBuilder(ctx context.Context, url, source string) *Builder {
	doc := NewDocument(url)
	doc.Source = source
	return &Builder{ctx: ctx, doc: doc}
}

// Document returns the document under construction.
func (b *Builder) Document() *Document {
	return b.doc
}

// AddImport records an import statement.
func (b *Builder) AddImport(uri, qualifier string, major, minor int, loc Location) {
	b.doc.Imports = append(b.doc.Imports, &Import{
		URI:       uri,
		Qualifier: qualifier,
		Major:     major,
		Minor:     minor,
		Location:  loc,
	})
}

// AddPragma records a pragma such as "Singleton".
func (b *Builder) AddPragma(name string) {
	b.doc.Pragmas = append(b.doc.Pragmas, name)
}

// NewObject appends an object of the given type and returns its index.
func (b *Builder) NewObject(typeName string, loc Location) int {
	return b.doc.AddObject(NewObject(b.doc.Strings.Register(typeName), loc))
}

// SetRoot marks obj as the document root.
func (b *Builder) SetRoot(obj int) {
	b.doc.RootObject = obj
}

func (b *Builder) errorf(code errors.ErrorCode, loc Location, format string, args ...any) *errors.CompileError {
	err := errors.Newf(code, loc.Line, loc.Column, format, args...)
	err.Filename = b.doc.URL
	return err
}

// SetID assigns the id of obj.
func (b *Builder) SetID(obj int, id string, loc Location) error {
	if id == "" {
		return b.errorf(errors.E1006, loc, "Invalid empty ID")
	}
	first := rune(id[0])
	if unicode.IsUpper(first) {
		return b.errorf(errors.E1006, loc, "IDs cannot start with an uppercase letter")
	}
	if !unicode.IsLetter(first) && first != '_' {
		return b.errorf(errors.E1006, loc, "IDs must start with a letter or underscore")
	}
	for _, r := range id {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return b.errorf(errors.E1006, loc, "IDs must contain only letters, numbers, and underscores")
		}
	}
	if IsIllegalName(id) {
		return b.errorf(errors.E1006, loc, "ID illegally masks global JavaScript property")
	}
	o := b.doc.Objects[obj]
	o.IDName = b.doc.Strings.Register(id)
	o.IDLocation = loc
	return nil
}

// AddProperty declares "[default] [readonly] property <type> <name>". List
// types are written "list<T>".
func (b *Builder) AddProperty(obj int, name, typeName string, readOnly, isDefault bool, loc Location) error {
	o := b.doc.Objects[obj]
	if err := b.checkPropertyName(o, name, loc); err != nil {
		return err
	}
	p := &Property{
		Name:     b.doc.Strings.Register(name),
		ReadOnly: readOnly,
		Location: loc,
	}
	if elem, ok := strings.CutPrefix(typeName, "list<"); ok && strings.HasSuffix(elem, ">") {
		p.Type = CustomList
		p.CustomTypeName = b.doc.Strings.Register(strings.TrimSuffix(elem, ">"))
	} else {
		p.Type = ParsePropertyType(typeName)
		if p.Type == Custom {
			p.CustomTypeName = b.doc.Strings.Register(typeName)
		}
	}
	o.Properties = append(o.Properties, p)
	if isDefault {
		if o.DefaultProperty >= 0 {
			return b.errorf(errors.E1005, loc, "Duplicate default property")
		}
		o.DefaultProperty = len(o.Properties) - 1
	}
	return nil
}

// AddAlias declares "property alias <name>: <target>" where target is
// "id", "id.property" or "id.property.subProperty".
func (b *Builder) AddAlias(obj int, name, target string, readOnly, isDefault bool, loc, ref Location) error {
	o := b.doc.Objects[obj]
	for _, a := range o.Aliases {
		if b.doc.StringAt(a.Name) == name {
			return b.errorf(errors.E1005, loc, "Duplicate alias name")
		}
	}
	if err := b.checkPropertyName(o, name, loc); err != nil {
		return err
	}
	id, path, _ := strings.Cut(target, ".")
	if id == "" || strings.Count(path, ".") > 1 {
		return b.errorf(errors.E2005, ref, "Invalid alias location")
	}
	a := NewAlias(b.doc.Strings.Register(name), b.doc.Strings.Register(id), b.doc.Strings.Register(path), loc, ref)
	a.ReadOnly = readOnly
	o.Aliases = append(o.Aliases, a)
	if isDefault {
		if o.DefaultProperty >= 0 {
			return b.errorf(errors.E1005, loc, "Duplicate default property")
		}
		o.DefaultProperty = len(o.Aliases) - 1
		o.Flags |= DefaultPropertyIsAlias
	}
	return nil
}

func (b *Builder) checkPropertyName(o *Object, name string, loc Location) error {
	if name == "" {
		return b.errorf(errors.E1006, loc, "Invalid empty property name")
	}
	if unicode.IsUpper(rune(name[0])) {
		return b.errorf(errors.E1006, loc, "Property names cannot begin with an upper case letter")
	}
	for _, p := range o.Properties {
		if b.doc.StringAt(p.Name) == name {
			return b.errorf(errors.E1005, loc, "Duplicate property name")
		}
	}
	for _, a := range o.Aliases {
		if b.doc.StringAt(a.Name) == name {
			return b.errorf(errors.E1005, loc, "Duplicate property name")
		}
	}
	return nil
}

// SignalParam is one parameter of a declared signal.
type SignalParam struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// AddSignal declares "signal <name>(<params>)".
func (b *Builder) AddSignal(obj int, name string, params []SignalParam, loc Location) error {
	o := b.doc.Objects[obj]
	if name == "" || unicode.IsUpper(rune(name[0])) {
		return b.errorf(errors.E4003, loc, "Signal names cannot begin with an upper case letter")
	}
	if IsIllegalName(name) {
		return b.errorf(errors.E4003, loc, "Illegal signal name")
	}
	for _, s := range o.Signals {
		if b.doc.StringAt(s.Name) == name {
			return b.errorf(errors.E4004, loc, "Duplicate signal name")
		}
	}
	sig := &Signal{Name: b.doc.Strings.Register(name), Location: loc}
	for _, p := range params {
		sp := &SignalParameter{
			Name: b.doc.Strings.Register(p.Name),
			Type: ParsePropertyType(p.Type),
		}
		if sp.Type == Custom {
			sp.CustomTypeName = b.doc.Strings.Register(p.Type)
		}
		sig.Parameters = append(sig.Parameters, sp)
	}
	o.Signals = append(o.Signals, sig)
	return nil
}

// AddFunction parses source as a named function declaration and adds it to
// obj.
func (b *Builder) AddFunction(obj int, source string, loc Location) error {
	program, err := b.parse(source, loc)
	if err != nil {
		return err
	}
	fn, ok := program.First().(*ast.Func)
	if !ok || fn.Name == nil || len(program.Stmts) != 1 {
		return b.errorf(errors.E4001, loc, "Expected a function declaration")
	}
	o := b.doc.Objects[obj]
	name := b.doc.Strings.Register(fn.Name.Name)
	for _, f := range o.Functions {
		if f.Name == name {
			return b.errorf(errors.E4004, loc, "Duplicate function name")
		}
	}
	idx := o.AddScript(&Script{Node: fn, Source: source, Location: loc})
	o.Functions = append(o.Functions, &Function{Name: name, ScriptIndex: idx, Location: loc})
	return nil
}

func (b *Builder) parse(source string, loc Location) (*ast.Program, error) {
	return parser.Parse(b.ctx, source,
		parser.WithFilename(b.doc.URL),
		parser.WithOffset(max(loc.Line-1, 0), max(loc.Column-1, 0)))
}

// AddScriptBinding binds the script source to the (possibly dotted)
// property name. Scripts that consist of a single string, number or
// boolean literal become literal bindings.
func (b *Builder) AddScriptBinding(obj int, name, source string, loc, valueLoc Location) error {
	program, err := b.parse(source, valueLoc)
	if err != nil {
		return err
	}
	target, prop, err := b.resolveQualifiedName(obj, name, loc)
	if err != nil {
		return err
	}
	binding := &Binding{
		PropertyName:  prop,
		Location:      loc,
		ValueLocation: valueLoc,
	}
	if !setLiteralValue(binding, program, b.doc.Strings) {
		o := b.doc.Objects[target]
		binding.Type = BindingScript
		binding.ScriptIndex = o.AddScript(&Script{Node: program, Source: source, Location: valueLoc})
	}
	return b.appendBinding(target, binding)
}

// AddStringBinding binds a string literal without parsing.
func (b *Builder) AddStringBinding(obj int, name, value string, loc, valueLoc Location) error {
	target, prop, err := b.resolveQualifiedName(obj, name, loc)
	if err != nil {
		return err
	}
	return b.appendBinding(target, &Binding{
		PropertyName:  prop,
		Type:          BindingString,
		StringIndex:   b.doc.Strings.Register(value),
		Location:      loc,
		ValueLocation: valueLoc,
	})
}

// AddObjectBinding binds the child object to the property. On assignments
// ("Behavior on x { }") set onAssignment. An empty name binds to the default
// property.
func (b *Builder) AddObjectBinding(obj int, name string, child int, onAssignment bool, loc Location) error {
	target, prop, err := b.resolveQualifiedName(obj, name, loc)
	if err != nil {
		return err
	}
	binding := &Binding{
		PropertyName:  prop,
		Type:          BindingObject,
		ObjectIndex:   child,
		Location:      loc,
		ValueLocation: b.doc.Objects[child].Location,
	}
	if onAssignment {
		binding.Flags |= IsOnAssignment
	}
	return b.appendBinding(target, binding)
}

// AddListBinding binds each child as one list item of the property.
func (b *Builder) AddListBinding(obj int, name string, children []int, loc Location) error {
	target, prop, err := b.resolveQualifiedName(obj, name, loc)
	if err != nil {
		return err
	}
	for _, child := range children {
		err := b.appendBinding(target, &Binding{
			PropertyName:  prop,
			Type:          BindingObject,
			Flags:         IsListItem,
			ObjectIndex:   child,
			Location:      loc,
			ValueLocation: b.doc.Objects[child].Location,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// resolveQualifiedName walks "a.b.c", creating or reusing the group and
// attached property objects for every segment but the last. It returns the
// object that receives the binding and the pooled name of the last segment.
func (b *Builder) resolveQualifiedName(obj int, name string, loc Location) (int, int, error) {
	segments := b.mergeQualifiers(strings.Split(name, "."))
	target := obj
	for _, seg := range segments[:len(segments)-1] {
		if seg == "" {
			return 0, 0, b.errorf(errors.E4001, loc, "Invalid property name %q", name)
		}
		kind := BindingGroupProperty
		if unicode.IsUpper(rune(seg[0])) {
			kind = BindingAttachedProperty
		}
		segIndex := b.doc.Strings.Register(seg)
		next := -1
		for _, existing := range b.doc.Objects[target].Bindings {
			if existing.PropertyName == segIndex && existing.Type == kind {
				next = existing.ObjectIndex
				break
			}
		}
		if next < 0 {
			next = b.doc.AddObject(NewObject(0, loc))
			err := b.appendBinding(target, &Binding{
				PropertyName:  segIndex,
				Type:          kind,
				ObjectIndex:   next,
				Location:      loc,
				ValueLocation: loc,
			})
			if err != nil {
				return 0, 0, err
			}
		}
		target = next
	}
	last := segments[len(segments)-1]
	if last == "" && len(segments) > 1 {
		return 0, 0, b.errorf(errors.E4001, loc, "Invalid property name %q", name)
	}
	return target, b.doc.Strings.Register(last), nil
}

// mergeQualifiers joins an import qualifier with the attached type name
// that follows it, so "QQ.Keys.enabled" names the attached type "QQ.Keys".
func (b *Builder) mergeQualifiers(segments []string) []string {
	if len(segments) < 3 {
		return segments
	}
	for _, imp := range b.doc.Imports {
		if imp.Qualifier != "" && imp.Qualifier == segments[0] {
			return append([]string{segments[0] + "." + segments[1]}, segments[2:]...)
		}
	}
	return segments
}

func (b *Builder) appendBinding(obj int, binding *Binding) error {
	o := b.doc.Objects[obj]
	if binding.PropertyName != 0 &&
		!binding.HasFlag(IsListItem) &&
		binding.Type != BindingGroupProperty &&
		binding.Type != BindingAttachedProperty &&
		!binding.HasFlag(IsOnAssignment) {
		for _, existing := range o.Bindings {
			if existing.PropertyName != binding.PropertyName {
				continue
			}
			if existing.IsValueBinding() == binding.IsValueBinding() && !existing.HasFlag(IsOnAssignment) && !existing.HasFlag(IsListItem) {
				return b.errorf(errors.E3004, binding.Location, "Property value set multiple times")
			}
		}
	}
	o.Bindings = append(o.Bindings, binding)
	return nil
}

// setLiteralValue turns single-literal programs into literal bindings.
func setLiteralValue(binding *Binding, program *ast.Program, pool *StringTable) bool {
	if len(program.Stmts) != 1 {
		return false
	}
	switch node := program.Stmts[0].(type) {
	case *ast.String:
		binding.Type = BindingString
		binding.StringIndex = pool.Register(node.Value)
	case *ast.Bool:
		binding.Type = BindingBoolean
		binding.Bool = node.Value
	case *ast.Int:
		binding.Type = BindingNumber
		binding.Number = float64(node.Value)
	case *ast.Float:
		binding.Type = BindingNumber
		binding.Number = node.Value
	case *ast.Prefix:
		if node.Op != "-" {
			return false
		}
		switch x := node.X.(type) {
		case *ast.Int:
			binding.Number = -float64(x.Value)
		case *ast.Float:
			binding.Number = -x.Value
		default:
			return false
		}
		binding.Type = BindingNumber
	default:
		return false
	}
	return true
}

var illegalNames = map[string]bool{
	"Array": true, "Boolean": true, "Date": true, "Function": true, "Infinity": true,
	"JSON": true, "Math": true, "NaN": true, "Number": true, "Object": true,
	"RegExp": true, "String": true, "arguments": true, "console": true,
	"decodeURI": true, "encodeURI": true, "eval": true, "isFinite": true,
	"isNaN": true, "parseFloat": true, "parseInt": true, "print": true,
	"qsTr": true, "qsTrId": true, "undefined": true,
}

// IsIllegalName reports whether name shadows a global of the script
// environment and may not be used as an id or signal parameter.
func IsIllegalName(name string) bool {
	return illegalNames[name]
}

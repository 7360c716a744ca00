// Package qmltypes reads .qmltypes type description files and registers
// the components they describe.
package qmltypes

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// File is a parsed .qmltypes file.
type File struct {
	Imports []Import `@@*`
	Main    Object   `@@`
}

// Import is an "import QtQuick.tooling 1.1" header.
type Import struct {
	Name    []string `"import" @Ident ("." @Ident)*`
	Version float64  `@Float`
}

// Object is a "Name { ... }" block.
type Object struct {
	Pos   lexer.Position
	Name  string `@Ident "{"`
	Items []Item `@@* "}"`
}

// Item is one field or nested object of a block.
type Item struct {
	Field  *Field  `(@@ |`
	Object *Object `@@) ";"?`
}

// Field is a "key: value" entry.
type Field struct {
	Pos   lexer.Position
	Name  string `@Ident ":"`
	Value Value  `@@`
}

// Value is a field value.
type Value struct {
	Boolean        *string  `@("true" | "false") |`
	List           *List    `@@ |`
	Map            *Map     `@@ |`
	NegativeNumber *int     `("-" @Int) |`
	Number         *int     `@Int |`
	Float          *float64 `@Float |`
	String         *string  `@String`
}

// List is a "[a, b]" value.
type List struct {
	Values []Value `"[" (@@ ("," @@)* ","?)? "]"`
}

// Map is a "{ "k": v }" value.
type Map struct {
	Entries []MapEntry `"{" (@@ ("," @@)* ","?)? "}"`
}

// MapEntry is one entry of a Map.
type MapEntry struct {
	Name  string `(@Ident | @String) ":"`
	Value Value  `@@`
}

var parser = participle.MustBuild[File](
	participle.Unquote("String"),
	participle.UseLookahead(2),
)

// Field returns the value of the named field.
func (o *Object) Field(name string) (Value, bool) {
	for _, it := range o.Items {
		if it.Field != nil && it.Field.Name == name {
			return it.Field.Value, true
		}
	}
	return Value{}, false
}

// Children returns the nested blocks with the given name.
func (o *Object) Children(name string) []*Object {
	var out []*Object
	for _, it := range o.Items {
		if it.Object != nil && it.Object.Name == name {
			out = append(out, it.Object)
		}
	}
	return out
}

// Str returns a string value.
func (v Value) Str() (string, bool) {
	if v.String == nil {
		return "", false
	}
	return *v.String, true
}

// Int returns an integer value.
func (v Value) Int() (int, bool) {
	switch {
	case v.Number != nil:
		return *v.Number, true
	case v.NegativeNumber != nil:
		return -*v.NegativeNumber, true
	}
	return 0, false
}

// Bool returns a boolean value.
func (v Value) Bool() (bool, bool) {
	if v.Boolean == nil {
		return false, false
	}
	return *v.Boolean == "true", true
}

// Strings returns the string elements of a list value.
func (v Value) Strings() ([]string, bool) {
	if v.List == nil {
		return nil, false
	}
	out := make([]string, 0, len(v.List.Values))
	for _, item := range v.List.Values {
		s, ok := item.Str()
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// Ints returns the integer elements of a list value.
func (v Value) Ints() ([]int, bool) {
	if v.List == nil {
		return nil, false
	}
	out := make([]int, 0, len(v.List.Values))
	for _, item := range v.List.Values {
		n, ok := item.Int()
		if !ok {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

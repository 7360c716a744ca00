// Package ir holds the intermediate representation of one parsed QML
// document: its objects, their declared members and bindings, the string
// pool, and the embedded script ASTs.
//
// The compiler mutates a Document in place while it runs its passes. Objects
// and scripts are addressed by their index in the owning slices, which stays
// stable for the lifetime of the document.
package ir

import (
	"github.com/deepnoodle-ai/qmlc/ast"
)

// Location is a 1-based line and column within a document.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Less reports whether l comes before other in the source.
func (l Location) Less(other Location) bool {
	if l.Line != other.Line {
		return l.Line < other.Line
	}
	return l.Column < other.Column
}

// IsZero reports whether the location is unset.
func (l Location) IsZero() bool {
	return l.Line == 0 && l.Column == 0
}

// Import is one import statement of the document.
type Import struct {
	// URI is a module URI ("QtQuick") or a directory or file URL.
	URI string
	// Qualifier is the "as" namespace, or empty.
	Qualifier    string
	Major, Minor int
	Location     Location
}

// Document is the parse result for one QML file.
type Document struct {
	// URL identifies the document, for example "file:///app/Main.qml".
	URL string
	// Source is the complete document text.
	Source string
	// Imports in declaration order.
	Imports []*Import
	// Objects in creation order. Object bindings refer to objects by index.
	Objects []*Object
	// RootObject is the index of the root object in Objects.
	RootObject int
	// Strings is the string pool shared by all objects of the document.
	Strings *StringTable
	// Pragmas such as "Singleton".
	Pragmas []string
}

// NewDocument returns an empty document with an initialized string pool.
func NewDocument(url string) *Document {
	return &Document{URL: url, Strings: NewStringTable()}
}

// StringAt returns the pooled string with the given index.
func (d *Document) StringAt(index int) string {
	return d.Strings.At(index)
}

// Root returns the root object.
func (d *Document) Root() *Object {
	return d.Objects[d.RootObject]
}

// AddObject appends obj to the object table and returns its index.
func (d *Document) AddObject(obj *Object) int {
	d.Objects = append(d.Objects, obj)
	return len(d.Objects) - 1
}

// IsSingleton reports whether the document declares "pragma Singleton".
func (d *Document) IsSingleton() bool {
	for _, p := range d.Pragmas {
		if p == "Singleton" {
			return true
		}
	}
	return false
}

// Script is one function or binding expression of an object. Function
// scripts hold an *ast.Func; binding scripts hold an *ast.Program whose final
// statement produces the binding value.
type Script struct {
	Node ast.Node
	// Source is the literal text of the script in the document.
	Source   string
	Location Location
	// DisableAcceleratedLookups forces name lookups through the dynamic
	// scope at runtime.
	DisableAcceleratedLookups bool
}

// Function returns the script as a function declaration, or nil.
func (s *Script) Function() *ast.Func {
	fn, _ := s.Node.(*ast.Func)
	return fn
}

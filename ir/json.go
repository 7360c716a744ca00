package ir

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// File is the JSON description of a document accepted by Load. It mirrors
// the QML source structure with binding values given as script text.
type File struct {
	URL     string       `json:"url"`
	Source  string       `json:"source,omitempty"`
	Imports []FileImport `json:"imports,omitempty"`
	Pragmas []string     `json:"pragmas,omitempty"`
	Root    *FileObject  `json:"root"`
}

// FileImport is one import of a File.
type FileImport struct {
	URI       string   `json:"uri"`
	Qualifier string   `json:"as,omitempty"`
	Major     int      `json:"major"`
	Minor     int      `json:"minor"`
	Location  Location `json:"location"`
}

// FileObject is one object declaration of a File.
type FileObject struct {
	Type       string         `json:"type"`
	ID         string         `json:"id,omitempty"`
	Location   Location       `json:"location"`
	Properties []FileProperty `json:"properties,omitempty"`
	Aliases    []FileAlias    `json:"aliases,omitempty"`
	Signals    []FileSignal   `json:"signals,omitempty"`
	Functions  []FileFunction `json:"functions,omitempty"`
	Bindings   []FileBinding  `json:"bindings,omitempty"`
}

// FileProperty declares a property.
type FileProperty struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	ReadOnly bool     `json:"readonly,omitempty"`
	Default  bool     `json:"default,omitempty"`
	Location Location `json:"location"`
	// Value optionally initializes the property with a script.
	Value *string `json:"value,omitempty"`
}

// FileAlias declares an alias property.
type FileAlias struct {
	Name     string   `json:"name"`
	Target   string   `json:"target"`
	ReadOnly bool     `json:"readonly,omitempty"`
	Default  bool     `json:"default,omitempty"`
	Location Location `json:"location"`
}

// FileSignal declares a signal.
type FileSignal struct {
	Name     string        `json:"name"`
	Params   []SignalParam `json:"params,omitempty"`
	Location Location      `json:"location"`
}

// FileFunction declares a function with its full source text.
type FileFunction struct {
	Source   string   `json:"source"`
	Location Location `json:"location"`
}

// FileBinding is one binding. Exactly one of Script, String, Object or List
// is set.
type FileBinding struct {
	Name          string        `json:"name"`
	Script        *string       `json:"script,omitempty"`
	String        *string       `json:"string,omitempty"`
	Object        *FileObject   `json:"object,omitempty"`
	List          []*FileObject `json:"list,omitempty"`
	On            bool          `json:"on,omitempty"`
	Location      Location      `json:"location"`
	ValueLocation Location      `json:"valueLocation"`
}

// Load reads a JSON document description and builds its Document.
func Load(ctx context.Context, r io.Reader) (*Document, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return f.Build(ctx)
}

// Build converts the description into a Document.
func (f *File) Build(ctx context.Context) (*Document, error) {
	if f.Root == nil {
		return nil, fmt.Errorf("document %s has no root object", f.URL)
	}
	b := NewBuilder(ctx, f.URL, f.Source)
	for _, imp := range f.Imports {
		b.AddImport(imp.URI, imp.Qualifier, imp.Major, imp.Minor, imp.Location)
	}
	for _, p := range f.Pragmas {
		b.AddPragma(p)
	}
	root, err := b.buildObject(f.Root)
	if err != nil {
		return nil, err
	}
	b.SetRoot(root)
	return b.Document(), nil
}

func (b *Builder) buildObject(fo *FileObject) (int, error) {
	obj := b.NewObject(fo.Type, fo.Location)
	if fo.ID != "" {
		if err := b.SetID(obj, fo.ID, fo.Location); err != nil {
			return 0, err
		}
	}
	for _, p := range fo.Properties {
		if err := b.AddProperty(obj, p.Name, p.Type, p.ReadOnly, p.Default, p.Location); err != nil {
			return 0, err
		}
		if p.Value != nil {
			if err := b.AddScriptBinding(obj, p.Name, *p.Value, p.Location, p.Location); err != nil {
				return 0, err
			}
			if p.ReadOnly {
				o := b.doc.Objects[obj]
				o.Bindings[len(o.Bindings)-1].Flags |= InitializerForReadOnlyDeclaration
			}
		}
	}
	for _, a := range fo.Aliases {
		if err := b.AddAlias(obj, a.Name, a.Target, a.ReadOnly, a.Default, a.Location, a.Location); err != nil {
			return 0, err
		}
	}
	for _, s := range fo.Signals {
		if err := b.AddSignal(obj, s.Name, s.Params, s.Location); err != nil {
			return 0, err
		}
	}
	for _, fn := range fo.Functions {
		if err := b.AddFunction(obj, fn.Source, fn.Location); err != nil {
			return 0, err
		}
	}
	for _, fb := range fo.Bindings {
		if err := b.buildBinding(obj, fb); err != nil {
			return 0, err
		}
	}
	return obj, nil
}

func (b *Builder) buildBinding(obj int, fb FileBinding) error {
	switch {
	case fb.Script != nil:
		return b.AddScriptBinding(obj, fb.Name, *fb.Script, fb.Location, fb.ValueLocation)
	case fb.String != nil:
		return b.AddStringBinding(obj, fb.Name, *fb.String, fb.Location, fb.ValueLocation)
	case fb.Object != nil:
		child, err := b.buildObject(fb.Object)
		if err != nil {
			return err
		}
		return b.AddObjectBinding(obj, fb.Name, child, fb.On, fb.Location)
	case fb.List != nil:
		children := make([]int, 0, len(fb.List))
		for _, fo := range fb.List {
			child, err := b.buildObject(fo)
			if err != nil {
				return err
			}
			children = append(children, child)
		}
		return b.AddListBinding(obj, fb.Name, children, fb.Location)
	}
	return fmt.Errorf("%s: binding %q has no value", b.doc.URL, fb.Name)
}

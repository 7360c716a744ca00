// Package qmlc compiles QML documents into compilation units: every object
// gets a resolved property cache, signal handlers become functions, ids and
// aliases are resolved per component, and all bindings are checked against
// the types of the properties they assign.
package qmlc

import (
	"context"
	"fmt"

	"github.com/deepnoodle-ai/qmlc/compiler"
	"github.com/deepnoodle-ai/qmlc/ir"
	"github.com/deepnoodle-ai/qmlc/unit"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// Compile compiles one document. The document is modified in place and
// must not be compiled again. On failure the error is a
// *errors.CompileError or *errors.CompileErrors.
func Compile(ctx context.Context, doc *ir.Document, opts ...Option) (*unit.Unit, error) {
	return compile(ctx, doc, collectOptions(opts...))
}

func compile(ctx context.Context, doc *ir.Document, o *options) (*unit.Unit, error) {
	if doc == nil {
		return nil, fmt.Errorf("qmlc: nil document")
	}
	imports := o.imports
	if imports == nil {
		if o.registry == nil {
			return nil, fmt.Errorf("qmlc: no registry to resolve the imports of %s", doc.URL)
		}
		imports = o.registry.DocumentImports(doc)
	}
	c, err := compiler.New(doc, o.compilerConfig(imports))
	if err != nil {
		return nil, err
	}
	return c.Compile(ctx)
}

// CompileAll compiles independent documents concurrently. The returned
// units are in the order of docs, with nil entries for the documents that
// failed. The error aggregates the failures of all documents.
func CompileAll(ctx context.Context, docs []*ir.Document, opts ...Option) ([]*unit.Unit, error) {
	o := collectOptions(opts...)
	units := make([]*unit.Unit, len(docs))
	errs := make([]error, len(docs))

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, doc := range docs {
		g.Go(func() error {
			units[i], errs[i] = compile(ctx, doc, o)
			return nil
		})
	}
	_ = g.Wait()

	var result *multierror.Error
	for _, err := range errs {
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	return units, result.ErrorOrNil()
}

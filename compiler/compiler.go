// Package compiler is the QML type compiler. It resolves a parsed document
// against the type registry and turns it into an immutable unit.Unit.
//
// # Passes
//
// A TypeCompiler runs a fixed sequence of passes over the document IR. Every
// pass finishes mutating the working state before the next one starts, and
// the first pass that fails aborts the compilation:
//
//  1. typerefs: resolve object type names and attached property names
//     through the imports of the document.
//  2. propertycaches: give every object a property cache. Objects that
//     declare no members share the cache of their base type; all others get
//     a synthesized cache with VME metadata.
//  3. mergedefaults: move bindings to the default property into one run.
//  4. signalhandlers: rewrite "onFoo" bindings into handler functions.
//  5. enums: turn "Type.Value" scripts on int and enum properties into
//     numeric literals.
//  6. customparserscripts: keep the source text of script bindings handled
//     by a custom parser.
//  7. components: detect explicit and implicit Component boundaries, assign
//     ids per component scope and resolve aliases.
//  8. aliasbindings: flag bindings that target alias properties.
//  9. deferred: flag deferred and custom parser bindings.
//  10. scriptstrings: keep the source text of script string bindings.
//  11. codegen: compile every script of every component.
//  12. simplify: replace bindings that only call a translation function by
//     translation records and drop their functions.
//  13. validate: check every binding against the property it assigns.
//
// The resulting tables are then frozen into a unit.Unit.
//
// # Aliases
//
// Alias resolution iterates to a fixpoint. An alias to another alias that is
// not resolved yet is retried on the next round; a round in which nothing
// resolves ends the compilation with a circular alias reference error.
//
// # Concurrency
//
// A TypeCompiler owns its document and is not safe for concurrent use.
// Different documents may be compiled concurrently against one registry.
package compiler

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/deepnoodle-ai/qmlc/bytecode"
	"github.com/deepnoodle-ai/qmlc/errors"
	"github.com/deepnoodle-ai/qmlc/ir"
	"github.com/deepnoodle-ai/qmlc/propcache"
	"github.com/deepnoodle-ai/qmlc/registry"
	"github.com/deepnoodle-ai/qmlc/unit"
	"github.com/rs/zerolog"
)

// DefaultMaxSimplifyBlocks is the basic block limit above which a binding
// function is not inspected for translation calls.
const DefaultMaxSimplifyBlocks = 10

// classIndexCounter numbers synthesized class names. It is shared by all
// compilations of the process and never reset.
var classIndexCounter atomic.Int64

// CompositeResolver compiles the documents that define composite types.
type CompositeResolver interface {
	ResolveComposite(ctx context.Context, t *registry.Type) (*unit.Unit, error)
}

// CompositeResolverFunc adapts a function to the CompositeResolver
// interface.
type CompositeResolverFunc func(ctx context.Context, t *registry.Type) (*unit.Unit, error)

// ResolveComposite calls f.
func (f CompositeResolverFunc) ResolveComposite(ctx context.Context, t *registry.Type) (*unit.Unit, error) {
	return f(ctx, t)
}

// Config holds compiler configuration options.
type Config struct {
	// Imports resolves the type names of the document. Required.
	Imports *registry.Imports

	// CompositeResolver loads composite types. Documents that use no
	// composite types may leave it nil.
	CompositeResolver CompositeResolver

	// CustomParsers maps native class names to the parser that takes over
	// their bindings.
	CustomParsers map[string]CustomParser

	// Logger receives one debug event per pass.
	Logger zerolog.Logger

	// DisableSimplification keeps translation bindings as compiled scripts.
	DisableSimplification bool

	// MaxSimplifyBlocks overrides DefaultMaxSimplifyBlocks when positive.
	MaxSimplifyBlocks int
}

// TypeCompiler compiles one document.
type TypeCompiler struct {
	doc       *ir.Document
	imports   *registry.Imports
	registry  *registry.Registry
	resolver  CompositeResolver
	parsers   map[string]CustomParser
	logger    zerolog.Logger
	simplify  bool
	maxBlocks int
	lines     []string

	types         map[int]*unit.TypeReference
	customParsers map[int]CustomParser
	caches        []*propcache.PropertyCache
	vme           []*unit.VMEMetaData

	componentRoots []int
	// scopes holds the id scope of every component root and, under the root
	// object index, of the document.
	scopes map[int]unit.Component

	module *bytecode.Module
	stats  passStats
}

type passStats struct {
	typeRefs     int
	synthesized  int
	merged       int
	handlers     int
	enums        int
	components   int
	aliases      int
	deferred     int
	customParser int
	functions    int
	elided       int
}

// New returns a compiler for doc. The compiler mutates doc while it runs.
func New(doc *ir.Document, cfg *Config) (*TypeCompiler, error) {
	if doc == nil || len(doc.Objects) == 0 {
		return nil, errors.Newf(errors.E1004, 0, 0, "document has no objects")
	}
	if cfg == nil || cfg.Imports == nil {
		return nil, errors.Newf(errors.E2001, 0, 0, "no import table for %s", doc.URL)
	}
	c := &TypeCompiler{
		doc:           doc,
		imports:       cfg.Imports,
		registry:      cfg.Imports.Registry(),
		resolver:      cfg.CompositeResolver,
		parsers:       cfg.CustomParsers,
		logger:        cfg.Logger,
		simplify:      !cfg.DisableSimplification,
		maxBlocks:     cfg.MaxSimplifyBlocks,
		types:         map[int]*unit.TypeReference{},
		customParsers: map[int]CustomParser{},
		scopes:        map[int]unit.Component{},
	}
	if c.maxBlocks <= 0 {
		c.maxBlocks = DefaultMaxSimplifyBlocks
	}
	return c, nil
}

type pass struct {
	name string
	run  func(ev *zerolog.Event) error
}

// Compile runs all passes and returns the compiled unit. On failure the
// error is a *errors.CompileError or *errors.CompileErrors, or the context
// error when ctx is done before a pass starts.
func (c *TypeCompiler) Compile(ctx context.Context) (*unit.Unit, error) {
	passes := []pass{
		{"typerefs", func(ev *zerolog.Event) error { return c.resolveTypes(ctx, ev) }},
		{"propertycaches", c.buildPropertyCaches},
		{"mergedefaults", c.mergeDefaultProperties},
		{"signalhandlers", c.convertSignalHandlers},
		{"enums", c.resolveEnums},
		{"customparserscripts", c.indexCustomParserScripts},
		{"components", c.resolveComponentsAndAliases},
		{"aliasbindings", c.annotateAliasBindings},
		{"deferred", c.scanDeferredBindings},
		{"scriptstrings", c.scanScriptStrings},
		{"codegen", c.generateCode},
		{"simplify", c.simplifyBindings},
		{"validate", c.validate},
	}
	for _, p := range passes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		ev := c.logger.Debug()
		if err := p.run(ev); err != nil {
			ev.Discard()
			c.logger.Debug().Str("url", c.doc.URL).Str("pass", p.name).Err(err).Msg("compile failed")
			return nil, c.fail(err)
		}
		ev.Str("url", c.doc.URL).
			Str("pass", p.name).
			Dur("elapsed", time.Since(start)).
			Msg("compiler pass")
	}
	return c.generateUnit()
}

// fail normalizes err into compile errors carrying the document URL.
func (c *TypeCompiler) fail(err error) error {
	var list errors.CompileErrors
	for _, e := range errors.List(err) {
		list.Add(e)
	}
	list.SetFilename(c.doc.URL)
	return list.ToError()
}

func (c *TypeCompiler) errorf(code errors.ErrorCode, loc ir.Location, format string, args ...any) *errors.CompileError {
	err := errors.Newf(code, loc.Line, loc.Column, format, args...)
	err.Filename = c.doc.URL
	err.SourceLine = c.sourceLine(loc.Line)
	return err
}

func (c *TypeCompiler) sourceLine(n int) string {
	if c.lines == nil {
		c.lines = strings.Split(c.doc.Source, "\n")
	}
	if n < 1 || n > len(c.lines) {
		return ""
	}
	return c.lines[n-1]
}

func (c *TypeCompiler) stringAt(i int) string {
	return c.doc.StringAt(i)
}

func (c *TypeCompiler) object(i int) *ir.Object {
	return c.doc.Objects[i]
}

// defaultProperty returns the default property bindings of obj assign.
// An object that declares its own default property still binds its
// unnamed children to the default property of its base type.
func (c *TypeCompiler) defaultProperty(obj *ir.Object, cache *propcache.PropertyCache) *propcache.PropertyData {
	if cache == nil {
		return nil
	}
	if obj.DefaultProperty >= 0 && cache.Parent() != nil {
		return cache.Parent().DefaultProperty()
	}
	return cache.DefaultProperty()
}

// bindingProperty resolves the property a binding of obj targets. Unnamed
// bindings target the default property.
func (c *TypeCompiler) bindingProperty(obj *ir.Object, cache *propcache.PropertyCache, b *ir.Binding) (*propcache.PropertyData, bool) {
	if b.PropertyName == 0 {
		return c.defaultProperty(obj, cache), false
	}
	return propcache.NewResolver(cache).Property(c.stringAt(b.PropertyName))
}

func (c *TypeCompiler) customParser(obj *ir.Object) CustomParser {
	return c.customParsers[obj.InheritedTypeName]
}

func (c *TypeCompiler) bindingSource(obj *ir.Object, b *ir.Binding) string {
	if b.ScriptIndex < 0 || b.ScriptIndex >= len(obj.Scripts) {
		return ""
	}
	return obj.Scripts[b.ScriptIndex].Source
}

func isUpper(s string) bool {
	return s != "" && s[0] >= 'A' && s[0] <= 'Z'
}

func isLower(s string) bool {
	return s != "" && s[0] >= 'a' && s[0] <= 'z'
}

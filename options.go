package qmlc

import (
	"runtime"

	"github.com/deepnoodle-ai/qmlc/compiler"
	"github.com/deepnoodle-ai/qmlc/parsers"
	"github.com/deepnoodle-ai/qmlc/registry"
	"github.com/rs/zerolog"
)

// Option configures a compilation.
type Option func(*options)

type options struct {
	registry    *registry.Registry
	imports     *registry.Imports
	resolver    compiler.CompositeResolver
	parsers     map[string]compiler.CustomParser
	logger      zerolog.Logger
	simplify    bool
	maxBlocks   int
	concurrency int
}

func collectOptions(opts ...Option) *options {
	o := &options{
		parsers:     parsers.Stock(),
		logger:      zerolog.Nop(),
		simplify:    true,
		maxBlocks:   compiler.DefaultMaxSimplifyBlocks,
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) compilerConfig(imports *registry.Imports) *compiler.Config {
	return &compiler.Config{
		Imports:               imports,
		CompositeResolver:     o.resolver,
		CustomParsers:         o.parsers,
		Logger:                o.logger,
		DisableSimplification: !o.simplify,
		MaxSimplifyBlocks:     o.maxBlocks,
	}
}

// WithRegistry sets the type registry the imports of each document are
// resolved against.
func WithRegistry(reg *registry.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithImports uses a prepared import table instead of the imports declared
// by the document. The table also supplies the registry.
func WithImports(imports *registry.Imports) Option {
	return func(o *options) {
		o.imports = imports
	}
}

// WithCompositeResolver sets the resolver used for types defined by other
// QML documents.
func WithCompositeResolver(r compiler.CompositeResolver) Option {
	return func(o *options) {
		o.resolver = r
	}
}

// WithCustomParser registers a custom parser for a native class name. The
// stock ListModel and Connections parsers are registered by default; a nil
// parser removes the registration.
func WithCustomParser(className string, p compiler.CustomParser) Option {
	return func(o *options) {
		parsers := make(map[string]compiler.CustomParser, len(o.parsers)+1)
		for name, existing := range o.parsers {
			parsers[name] = existing
		}
		if p == nil {
			delete(parsers, className)
		} else {
			parsers[className] = p
		}
		o.parsers = parsers
	}
}

// WithLogger sets the logger that receives the per-pass debug events.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSimplification turns the rewriting of translation bindings into
// constants on or off. It is on by default.
func WithSimplification(enabled bool) Option {
	return func(o *options) {
		o.simplify = enabled
	}
}

// WithMaxSimplifyBlocks sets the basic block limit of binding functions
// inspected for translation calls.
func WithMaxSimplifyBlocks(n int) Option {
	return func(o *options) {
		o.maxBlocks = n
	}
}

// WithConcurrency bounds the number of documents CompileAll compiles at
// once. Values below one mean GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		o.concurrency = n
	}
}

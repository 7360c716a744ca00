package qmlc

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/deepnoodle-ai/qmlc/ir"
	"github.com/deepnoodle-ai/qmlc/registry"
	"github.com/deepnoodle-ai/qmlc/unit"
)

// Loader returns the document found at url.
type Loader func(ctx context.Context, url string) (*ir.Document, error)

// Resolver compiles the documents of composite types on demand and caches
// the units by URL. It is safe for concurrent use.
type Resolver struct {
	load Loader
	opts []Option

	mu    sync.Mutex
	units map[string]*unit.Unit
}

type resolvingKey struct{}

// NewResolver returns a resolver that loads composite documents with load
// and compiles them with opts. The resolver passes itself on, so composite
// types used by composite documents resolve through the same cache.
func NewResolver(load Loader, opts ...Option) *Resolver {
	return &Resolver{load: load, opts: opts, units: map[string]*unit.Unit{}}
}

// ResolveComposite implements compiler.CompositeResolver.
func (r *Resolver) ResolveComposite(ctx context.Context, t *registry.Type) (*unit.Unit, error) {
	url := t.SourceURL
	r.mu.Lock()
	u, ok := r.units[url]
	r.mu.Unlock()
	if ok {
		return u, nil
	}

	chain, _ := ctx.Value(resolvingKey{}).([]string)
	if slices.Contains(chain, url) {
		return nil, fmt.Errorf("cyclic dependency detected: %s", strings.Join(append(chain, url), " -> "))
	}
	ctx = context.WithValue(ctx, resolvingKey{}, append(slices.Clip(chain), url))

	doc, err := r.load(ctx, url)
	if err != nil {
		return nil, err
	}
	opts := append(slices.Clip(r.opts), WithCompositeResolver(r))
	u, err = Compile(ctx, doc, opts...)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.units[url]; ok {
		return existing, nil
	}
	r.units[url] = u
	return u, nil
}

// Unit returns the cached unit of url.
func (r *Resolver) Unit(url string) (*unit.Unit, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.units[url]
	return u, ok
}

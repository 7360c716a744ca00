package propcache

import "strings"

// Resolver looks up members of a cache the way bindings see them: hidden
// by the revision gates of the importing document.
type Resolver struct {
	cache *PropertyCache
}

// NewResolver returns a resolver over cache.
func NewResolver(cache *PropertyCache) Resolver {
	return Resolver{cache: cache}
}

// Property returns the named property. When the property exists but is not
// visible in the imported revision, it returns nil and notInRevision true.
func (r Resolver) Property(name string) (d *PropertyData, notInRevision bool) {
	if r.cache == nil {
		return nil, false
	}
	d = r.cache.Property(name)
	if d == nil {
		return nil, false
	}
	if !r.cache.IsAllowedInRevision(d) {
		return nil, true
	}
	return d, false
}

// Signal returns the named signal. A "<property>Changed" name resolves to
// the change signal of the property.
func (r Resolver) Signal(name string) (d *PropertyData, notInRevision bool) {
	if r.cache == nil {
		return nil, false
	}
	d = r.cache.Method(name)
	if d != nil && !r.cache.IsAllowedInRevision(d) {
		return nil, true
	}
	if d != nil && d.IsSignal() {
		return d, false
	}
	if prop, ok := strings.CutSuffix(name, "Changed"); ok {
		p, hidden := r.Property(prop)
		if p != nil {
			if sig := r.cache.Signal(p.NotifyIndex); sig != nil {
				return sig, false
			}
		}
		return nil, hidden
	}
	return nil, false
}

// Cache returns the cache the resolver reads.
func (r Resolver) Cache() *PropertyCache {
	return r.cache
}

// Package cache wraps an LRU of resolved "safe" method lookups, so that
// the VM driver's InvokeOp path records once per signature whether a
// hot safe method like java.lang.String.length() has a reflective
// stand-in, instead of resolving it again at every call site.
package cache

import (
	lru "github.com/hashicorp/golang-lru"
)

// defaultSize bounds the cache to a fixed number of resolved methods;
// a deobfuscation run touches at most a few hundred distinct safe
// signatures in practice, so this is generous headroom rather than a
// tuned value.
const defaultSize = 512

// ResolvedMethod is what gets cached per signature: a reflect.Value-free
// descriptor the invoke handler's safe-call path uses to dispatch
// without repeating reflection. Kept driver-agnostic (no reflect.Method
// stored directly) so that a resolution failure is itself cacheable.
type ResolvedMethod struct {
	Signature string
	Found     bool
	ParamKinds []string
}

// SafeMethodCache is an LRU keyed by fully-qualified method signature
// (dex.MethodSignature.String) caching the result of resolving that
// signature against the reflective safe-invoke surface.
type SafeMethodCache struct {
	lru *lru.Cache
}

// New creates a SafeMethodCache holding up to defaultSize entries.
func New() (*SafeMethodCache, error) {
	return NewSized(defaultSize)
}

// NewSized creates a SafeMethodCache holding up to size entries.
func NewSized(size int) (*SafeMethodCache, error) {
	l, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &SafeMethodCache{lru: l}, nil
}

// Get returns a previously resolved method for signature, if cached.
func (c *SafeMethodCache) Get(signature string) (ResolvedMethod, bool) {
	v, ok := c.lru.Get(signature)
	if !ok {
		return ResolvedMethod{}, false
	}
	return v.(ResolvedMethod), true
}

// Put caches a resolution result (successful or not) for signature.
func (c *SafeMethodCache) Put(signature string, resolved ResolvedMethod) {
	c.lru.Add(signature, resolved)
}

// Len reports the number of cached entries.
func (c *SafeMethodCache) Len() int {
	return c.lru.Len()
}

package extract

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/joblens/joblens"
)

// Persistent cache key prefixes.
const (
	contentKeyPrefix = "joblens:content:"
	resultKeyPrefix  = "joblens:result:"
)

// Sizing for the key filter: one browsing session's worth of job pages
// with a low false positive rate (a false positive only costs one store
// round trip, or one skipped lookup).
const (
	keyFilterExpected = 10000
	keyFilterFPRate   = 0.01
)

// keyFilter remembers which persistent cache keys were written and which
// were looked up and found absent, so repeat lookups of never-extracted
// pages skip the store round trip. Writes override recorded misses.
type keyFilter struct {
	mu      sync.Mutex
	written *bloom.BloomFilter
	missed  *bloom.BloomFilter
}

func newKeyFilter() *keyFilter {
	return &keyFilter{
		written: bloom.NewWithEstimates(keyFilterExpected, keyFilterFPRate),
		missed:  bloom.NewWithEstimates(keyFilterExpected, keyFilterFPRate),
	}
}

func (f *keyFilter) recordWrite(key string) {
	f.mu.Lock()
	f.written.AddString(key)
	f.mu.Unlock()
}

func (f *keyFilter) recordMiss(key string) {
	f.mu.Lock()
	f.missed.AddString(key)
	f.mu.Unlock()
}

// shouldQuery reports whether a store lookup for key is worthwhile. Keys
// never seen before are always worth one lookup; known misses are skipped
// unless a later write superseded them.
func (f *keyFilter) shouldQuery(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.written.TestString(key) {
		return true
	}
	return !f.missed.TestString(key)
}

// pageCache holds one value scoped to a page identity, with lazy
// invalidation: a lookup under a different identity discards the entry.
// When a KeyValueStore is configured the value is written through and read
// back best-effort, so caches survive a reload; store failures degrade to
// in-memory behavior.
type pageCache[T any] struct {
	keyPrefix string
	store     joblens.KeyValueStore // optional
	keys      *keyFilter            // shared across caches, nil without store

	mu    sync.Mutex
	id    joblens.PageIdentity
	value *T
}

func newPageCache[T any](keyPrefix string, store joblens.KeyValueStore, keys *keyFilter) *pageCache[T] {
	return &pageCache[T]{keyPrefix: keyPrefix, store: store, keys: keys}
}

// get returns the cached value for id, or nil. A stored entry whose
// identity does not exactly equal id is discarded.
func (c *pageCache[T]) get(ctx context.Context, id joblens.PageIdentity) *T {
	c.mu.Lock()
	if c.value != nil {
		if c.id == id {
			v := c.value
			c.mu.Unlock()
			return v
		}
		c.value = nil
	}
	c.mu.Unlock()

	return c.load(ctx, id)
}

// load reads the value back from the persistent store, if configured.
func (c *pageCache[T]) load(ctx context.Context, id joblens.PageIdentity) *T {
	if c.store == nil {
		return nil
	}
	key := c.keyPrefix + id.Key()
	if !c.keys.shouldQuery(key) {
		return nil
	}

	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if joblens.ErrorCode(err) == joblens.ENOTFOUND {
			c.keys.recordMiss(key)
		}
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}

	c.mu.Lock()
	c.id = id
	c.value = &v
	c.mu.Unlock()
	return &v
}

// set replaces the cached value for id.
func (c *pageCache[T]) set(ctx context.Context, id joblens.PageIdentity, value *T) {
	c.mu.Lock()
	c.id = id
	c.value = value
	c.mu.Unlock()

	if c.store == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	key := c.keyPrefix + id.Key()
	if err := c.store.Set(ctx, key, raw); err != nil {
		return
	}
	c.keys.recordWrite(key)
}

// clear discards the entry for the current page context, including its
// persisted copy.
func (c *pageCache[T]) clear(ctx context.Context) {
	c.mu.Lock()
	id := c.id
	had := c.value != nil
	c.id = joblens.PageIdentity{}
	c.value = nil
	c.mu.Unlock()

	if c.store != nil && had {
		_ = c.store.Remove(ctx, c.keyPrefix+id.Key())
	}
}

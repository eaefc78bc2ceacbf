package rescache

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

type cache[E any] struct {
	id        func(E) string
	transport Transport[E]
	resource  func(string) string
	withID    func(E, string) E
	newID     func() string
	log       Logger
	hooks     Hooks
	enabled   bool

	// one in-flight fetch per key
	flight singleflight.Group

	mu      sync.RWMutex
	entries map[string]*entryState[E]
	subs    map[string]map[uint64]func(Entry[E])
	nextSub uint64
}

func newCache[E any](opts Options[E]) (*cache[E], error) {
	if opts.ID == nil {
		return nil, fmt.Errorf("rescache: ID function is required")
	}

	c := &cache[E]{
		id:        opts.ID,
		transport: opts.Transport,
		withID:    opts.WithID,
		entries:   make(map[string]*entryState[E]),
		subs:      make(map[string]map[uint64]func(Entry[E])),
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	if opts.Resource != nil {
		c.resource = opts.Resource
	} else {
		c.resource = func(key string) string { return key }
	}
	if opts.NewID != nil {
		c.newID = opts.NewID
	} else {
		c.newID = uuid.NewString
	}

	c.enabled = !opts.Disabled
	return c, nil
}

func (c *cache[E]) Enabled() bool { return c.enabled }

// Get returns the current entry, lazily creating an empty Idle one.
func (c *cache[E]) Get(key string) Entry[E] {
	c.mu.RLock()
	if e, ok := c.entries[key]; ok {
		snap := e.snapshot()
		c.mu.RUnlock()
		return snap
	}
	c.mu.RUnlock()

	if !c.enabled {
		return Entry[E]{Status: StatusIdle}
	}

	c.mu.Lock()
	snap := c.entryLocked(key).snapshot()
	c.mu.Unlock()
	return snap
}

// Set replaces the collection wholesale and marks the entry Success.
func (c *cache[E]) Set(key string, data []E) {
	if !c.enabled {
		return
	}
	c.mu.Lock()
	e := c.entryLocked(key)
	e.data = data
	e.status = StatusSuccess
	e.err = nil
	e.populated = true
	e.version++
	snap, fns := c.changedLocked(key, e)
	c.mu.Unlock()
	notify(fns, snap)
}

// SetError records a failure without touching Data: prior known-good state
// stays visible alongside the error.
func (c *cache[E]) SetError(key string, err error) {
	if !c.enabled {
		return
	}
	c.mu.Lock()
	e := c.entryLocked(key)
	e.status = StatusError
	e.err = err
	snap, fns := c.changedLocked(key, e)
	c.mu.Unlock()
	notify(fns, snap)
}

// Patch applies fn to the current collection and replaces it. A key that has
// never been populated is skipped (a mutation cannot patch a collection that
// was never read); the skip is reported via hooks, not an error.
//
// fn must be pure: derive the new slice, never mutate the old one. It runs
// under the cache lock.
func (c *cache[E]) Patch(key string, fn PatchFunc[E]) bool {
	if !c.enabled || fn == nil {
		return false
	}
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok || !e.populated {
		c.mu.Unlock()
		c.hooks.PatchSkipped(key)
		c.log.Debug("patch skipped (key never populated)", Fields{"key": key})
		return false
	}
	e.data = fn(e.data)
	e.version++
	snap, fns := c.changedLocked(key, e)
	c.mu.Unlock()
	notify(fns, snap)
	return true
}

// Subscribe registers fn for every change to the key's entry. The returned
// func removes the subscription and is safe to call more than once.
// Callbacks run outside the cache lock, against an entry snapshot, so they
// may themselves call back into the cache (including Subscribe).
func (c *cache[E]) Subscribe(key string, fn func(Entry[E])) func() {
	if fn == nil {
		return func() {}
	}
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	m, ok := c.subs[key]
	if !ok {
		m = make(map[uint64]func(Entry[E]))
		c.subs[key] = m
	}
	m[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			if m, ok := c.subs[key]; ok {
				delete(m, id)
				if len(m) == 0 {
					delete(c.subs, key)
				}
			}
			c.mu.Unlock()
		})
	}
}

// beginFetch marks the key as fetching and returns the observed version.
// A cold entry moves to Loading; a populated one keeps its status and data
// readable while the refetch runs.
func (c *cache[E]) beginFetch(key string) uint64 {
	c.mu.Lock()
	e := c.entryLocked(key)
	if !e.populated {
		e.status = StatusLoading
	}
	e.fetching = true
	obs := e.version
	snap, fns := c.changedLocked(key, e)
	c.mu.Unlock()
	notify(fns, snap)
	return obs
}

// completeFetch publishes a fetch result iff the entry version still matches
// the one observed at fetch start. A moved version means a mutation (or Set)
// landed while the fetch was in flight; the older server snapshot is dropped.
func (c *cache[E]) completeFetch(key string, data []E, observed uint64) bool {
	c.mu.Lock()
	e := c.entryLocked(key)
	e.fetching = false
	if e.version != observed {
		current := e.version
		snap, fns := c.changedLocked(key, e)
		c.mu.Unlock()
		notify(fns, snap)
		c.hooks.FetchDiscarded(key, observed, current)
		c.log.Debug("stale fetch discarded (version moved)", Fields{"key": key, "obs": observed, "cur": current})
		return false
	}
	e.data = data
	e.status = StatusSuccess
	e.err = nil
	e.populated = true
	e.version++
	snap, fns := c.changedLocked(key, e)
	c.mu.Unlock()
	notify(fns, snap)
	return true
}

// failFetch records a fetch failure. Data is left untouched so consumers can
// keep rendering the stale collection next to the error.
func (c *cache[E]) failFetch(key string, err error) {
	c.mu.Lock()
	e := c.entryLocked(key)
	e.fetching = false
	e.status = StatusError
	e.err = err
	snap, fns := c.changedLocked(key, e)
	c.mu.Unlock()
	notify(fns, snap)
}

// entryLocked returns the entry for key, creating an Idle one if missing.
// Caller holds c.mu.
func (c *cache[E]) entryLocked(key string) *entryState[E] {
	e, ok := c.entries[key]
	if !ok {
		e = &entryState[E]{status: StatusIdle}
		c.entries[key] = e
	}
	return e
}

// changedLocked snapshots the entry and the subscriber list for key.
// The copy makes notification re-entrant safe: subscribers added or removed
// from within a callback affect later notifications only. Caller holds c.mu.
func (c *cache[E]) changedLocked(key string, e *entryState[E]) (Entry[E], []func(Entry[E])) {
	snap := e.snapshot()
	m := c.subs[key]
	if len(m) == 0 {
		return snap, nil
	}
	fns := make([]func(Entry[E]), 0, len(m))
	for _, fn := range m {
		fns = append(fns, fn)
	}
	return snap, fns
}

func notify[E any](fns []func(Entry[E]), snap Entry[E]) {
	for _, fn := range fns {
		fn(snap)
	}
}

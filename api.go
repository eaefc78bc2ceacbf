package rescache

import (
	"context"
)

// FetchFunc loads the full collection for a resource key, typically by
// delegating to a Transport. It must return the complete collection; partial
// results are indistinguishable from deletions on publish.
type FetchFunc[E any] func(ctx context.Context) ([]E, error)

// Transport executes reads and writes against the backing store for a
// resource. Implemented elsewhere (see transport/resthttp for an HTTP one);
// the cache only calls it and never retries.
type Transport[E any] interface {
	List(ctx context.Context, resource string) ([]E, error)
	Create(ctx context.Context, resource string, entity E) (E, error)
	Update(ctx context.Context, resource string, entity E) (E, error)
	Delete(ctx context.Context, resource string, id string) error
}

// MutateOptions tune a single Mutate call.
type MutateOptions[E any] struct {
	// Patch reconciles the cached collection after the transport acknowledged
	// the write. If nil, a by-id default is derived from the action:
	// Create/Update upsert the acknowledged entity, Delete removes it.
	Patch PatchFunc[E]

	// OnSuccess runs after the patch was applied, with the acknowledged
	// entity. Typical use is a navigation side effect; it is never awaited.
	OnSuccess func(E)

	// OnError runs when the transport rejected the write. The cache is left
	// untouched in that case.
	OnError func(error)
}

// Cache is the high-level API over per-key resource collections.
// E is the caller's entity type; identity comes from Options.ID.
type Cache[E any] interface {
	Enabled() bool

	// Synchronous cache surface.
	Get(key string) Entry[E]
	Set(key string, data []E)
	SetError(key string, err error)
	Patch(key string, fn PatchFunc[E]) bool
	Subscribe(key string, fn func(Entry[E])) (unsubscribe func())

	// Coordinated read: concurrent calls for one key share a single fetch.
	// A nil fetch uses Transport.List for the key's resource.
	Query(ctx context.Context, key string, fetch FetchFunc[E]) ([]E, error)

	// Coordinated write: dispatches to the Transport and patches the cache
	// on success. The cache stays untouched on failure.
	Mutate(ctx context.Context, action Action, key string, entity E, opts MutateOptions[E]) (E, error)
}

// Options tune the cache. Only ID is required; others have sensible defaults.
type Options[E any] struct {
	// Required. Returns the stable, unique identifier of an entity.
	ID func(E) string

	Transport Transport[E] // required for Mutate and for Query with a nil fetch

	// Resource maps a cache key to the transport resource path.
	// Defaults to the identity function (key == resource).
	Resource func(key string) string

	// WithID returns a copy of the entity with the given id assigned. When
	// set, Create assigns a client-generated id (NewID) to entities whose ID
	// is empty before dispatching.
	WithID func(entity E, id string) E
	NewID  func() string // default uuid.NewString

	Logger Logger // if nil, logging is disabled
	Hooks  Hooks  // if nil, NopHooks

	// Disabled turns the cache into a passthrough: Query always fetches,
	// Mutate never patches, and the synchronous surface is inert.
	Disabled bool
}

// New builds a Cache from Options.
func New[E any](opts Options[E]) (Cache[E], error) {
	return newCache[E](opts)
}

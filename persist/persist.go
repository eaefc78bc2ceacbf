// Package persist stores collection snapshots in a byte store so a process
// can warm-start its resource cache instead of refetching everything.
//
// A Persister frames each snapshot (internal/wire) together with the entry
// version it was taken at and encodes the collection with a pluggable codec.
// Load self-heals: corrupt or undecodable values are deleted and reported as
// a miss, never returned.
//
// Stores MUST be byte-for-byte transparent: Get must return exactly the
// []byte previously passed to Set for a key (no prepended metadata, no
// re-encoding). The keyspace "snap:<ns>:" is owned by the persister; foreign
// writes under it are treated as corruption and deleted.
package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/unkn0wn-root/rescache"
	"github.com/unkn0wn-root/rescache/codec"
	"github.com/unkn0wn-root/rescache/internal/util"
	"github.com/unkn0wn-root/rescache/internal/wire"
)

// Store is a minimal byte store with TTLs. Must be safe for concurrent use.
// See the redis, bigcache, ristretto and local subpackages.
type Store interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL. May ignore cost if unsupported.
	// Returns ok=false when the store rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)

	// Del removes a key (best-effort).
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}

const defaultTTL = 24 * time.Hour

// Config tunes a Persister. Namespace, Store and Codec are required.
type Config[E any] struct {
	Namespace string // logical namespace to avoid collisions, e.g. "heroes-app"
	Store     Store
	Codec     codec.Codec[[]E]

	TTL    time.Duration   // snapshot TTL; 0 => 24h
	Logger rescache.Logger // if nil, logging is disabled
}

// Persister saves and loads collection snapshots for resource keys.
type Persister[E any] struct {
	ns    string
	store Store
	codec codec.Codec[[]E]
	ttl   time.Duration
	log   rescache.Logger
}

func New[E any](cfg Config[E]) (*Persister[E], error) {
	if cfg.Namespace == "" {
		return nil, fmt.Errorf("persist: namespace is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("persist: store is required")
	}
	if cfg.Codec == nil {
		return nil, fmt.Errorf("persist: codec is required")
	}
	p := &Persister[E]{
		ns:    cfg.Namespace,
		store: cfg.Store,
		codec: cfg.Codec,
		ttl:   cfg.TTL,
		log:   cfg.Logger,
	}
	if p.ttl == 0 {
		p.ttl = defaultTTL
	}
	if p.log == nil {
		p.log = rescache.NopLogger{}
	}
	return p, nil
}

// Save snapshots a collection for key at the given entry version.
func (p *Persister[E]) Save(ctx context.Context, key string, version uint64, data []E) error {
	payload, err := p.codec.Encode(data)
	if err != nil {
		return fmt.Errorf("persist: encode %q: %w", key, err)
	}
	framed := wire.EncodeSnapshot(version, payload)
	k := p.storageKey(key)
	ok, err := p.store.Set(ctx, k, framed, int64(len(framed)), p.ttl)
	if err != nil {
		return fmt.Errorf("persist: save %q: %w", key, err)
	}
	if !ok {
		p.log.Debug("snapshot rejected by store (pressure)", rescache.Fields{"key": key})
	}
	return nil
}

// Load returns the snapshot for key, if any. Corrupt or undecodable values
// are deleted and reported as a miss.
func (p *Persister[E]) Load(ctx context.Context, key string) ([]E, uint64, bool, error) {
	k := p.storageKey(key)
	raw, ok, err := p.store.Get(ctx, k)
	if err != nil || !ok {
		return nil, 0, false, err
	}
	version, payload, err := wire.DecodeSnapshot(raw)
	if err != nil {
		_ = p.store.Del(ctx, k) // self-heal corrupt
		p.log.Debug("corrupt snapshot dropped", rescache.Fields{"key": key})
		return nil, 0, false, nil
	}
	data, err := p.codec.Decode(payload)
	if err != nil {
		_ = p.store.Del(ctx, k) // self-heal
		p.log.Debug("undecodable snapshot dropped", rescache.Fields{"key": key, "err": err})
		return nil, 0, false, nil
	}
	return data, version, true, nil
}

// Invalidate removes the snapshot for key.
func (p *Persister[E]) Invalidate(ctx context.Context, key string) error {
	return p.store.Del(ctx, p.storageKey(key))
}

// Close releases the underlying store.
func (p *Persister[E]) Close(ctx context.Context) error {
	return p.store.Close(ctx)
}

func (p *Persister[E]) storageKey(key string) string {
	return util.StorageKey("snap:"+p.ns, key)
}

// Package local persists snapshots in a bounded in-process LRU. The cheapest
// store: no serialization across processes, entries evicted least-recently-
// used first. Suited for tests and single-process deployments.
package local

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/unkn0wn-root/rescache/persist"
)

type Store struct {
	c *expirable.LRU[string, []byte]
}

var _ persist.Store = (*Store)(nil)

type Config struct {
	MaxEntries int           // required, > 0
	TTL        time.Duration // cache-wide TTL; 0 disables expiry
}

func New(cfg Config) (*Store, error) {
	if cfg.MaxEntries <= 0 {
		return nil, errors.New("local: MaxEntries must be > 0")
	}
	return &Store{c: expirable.NewLRU[string, []byte](cfg.MaxEntries, nil, cfg.TTL)}, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, ok := s.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	return b, true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte, _ int64, _ time.Duration) (bool, error) {
	// The LRU applies its cache-wide TTL; per-entry TTLs are unsupported.
	s.c.Add(key, value)
	return true, nil
}

func (s *Store) Del(_ context.Context, key string) error {
	s.c.Remove(key)
	return nil
}

func (s *Store) Close(_ context.Context) error {
	s.c.Purge()
	return nil
}

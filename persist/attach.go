package persist

import (
	"context"
	"sync"

	"github.com/unkn0wn-root/rescache"
)

// Hydrate seeds the cache from persisted snapshots for the given keys.
// Keys that already hold data are skipped; a stored snapshot populates the
// entry via Set, so consumers see it as known-good data while the first
// Query revalidates against the transport. Store errors abort; decode
// problems are self-healed misses.
func Hydrate[E any](ctx context.Context, c rescache.Cache[E], p *Persister[E], keys ...string) error {
	for _, key := range keys {
		if e := c.Get(key); e.Data != nil {
			continue
		}
		data, _, ok, err := p.Load(ctx, key)
		if err != nil {
			return err
		}
		if ok {
			c.Set(key, data)
		}
	}
	return nil
}

// Attach subscribes to the given keys and persists every known-good state
// the cache publishes. Saves run on a single background worker; for each key
// only the most recent snapshot is kept while a save is pending, so the store
// converges on the latest state without ever blocking a cache write.
// The returned func detaches, flushes outstanding saves and stops the worker.
func Attach[E any](c rescache.Cache[E], p *Persister[E], keys ...string) (detach func()) {
	w := newWorker(p)
	go w.run()

	unsubs := make([]func(), 0, len(keys))
	for _, key := range keys {
		key := key
		unsubs = append(unsubs, c.Subscribe(key, func(e rescache.Entry[E]) {
			if e.Status != rescache.StatusSuccess || e.Data == nil || e.Fetching {
				return
			}
			w.enqueue(key, snapshot[E]{version: e.Version, data: e.Data})
		}))
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for _, u := range unsubs {
				u()
			}
			w.stop()
		})
	}
}

type snapshot[E any] struct {
	version uint64
	data    []E
}

type worker[E any] struct {
	p *Persister[E]

	mu      sync.Mutex
	pending map[string]snapshot[E]
	saved   map[string]uint64

	wake chan struct{}
	done chan struct{}
	dead chan struct{}
}

func newWorker[E any](p *Persister[E]) *worker[E] {
	return &worker[E]{
		p:       p,
		pending: make(map[string]snapshot[E]),
		saved:   make(map[string]uint64),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		dead:    make(chan struct{}),
	}
}

func (w *worker[E]) enqueue(key string, s snapshot[E]) {
	w.mu.Lock()
	w.pending[key] = s
	w.mu.Unlock()
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *worker[E]) run() {
	defer close(w.dead)
	for {
		select {
		case <-w.wake:
			w.flush()
		case <-w.done:
			w.flush()
			return
		}
	}
}

func (w *worker[E]) flush() {
	for {
		key, s, ok := w.take()
		if !ok {
			return
		}
		w.mu.Lock()
		already := w.saved[key] == s.version
		w.mu.Unlock()
		if already {
			continue
		}
		if err := w.p.Save(context.Background(), key, s.version, s.data); err != nil {
			w.p.log.Warn("snapshot save failed", rescache.Fields{"key": key, "err": err})
			continue
		}
		w.mu.Lock()
		w.saved[key] = s.version
		w.mu.Unlock()
	}
}

func (w *worker[E]) take() (string, snapshot[E], bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for k, s := range w.pending {
		delete(w.pending, k)
		return k, s, true
	}
	var zero snapshot[E]
	return "", zero, false
}

func (w *worker[E]) stop() {
	close(w.done)
	<-w.dead
}

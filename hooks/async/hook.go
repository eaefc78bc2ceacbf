// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/unkn0wn-root/rescache"
//	"github.com/unkn0wn-root/rescache/hooks/async"
//	"github.com/unkn0wn-root/rescache/sloghooks"
//
// )
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    FetchSharedEvery: 100, // sample: ~every 100th shared fetch
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	cache, _ := rescache.New[Hero](rescache.Options[Hero]{
//	    ID:    func(h Hero) string { return h.ID },
//	    Hooks: hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/rescache"
)

type Hooks struct {
	inner rescache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ rescache.Hooks = (*Hooks)(nil)

func New(inner rescache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) FetchShared(k string) { h.try(func() { h.inner.FetchShared(k) }) }
func (h *Hooks) PatchSkipped(k string) {
	h.try(func() { h.inner.PatchSkipped(k) })
}
func (h *Hooks) FetchDiscarded(k string, obs, cur uint64) {
	h.try(func() { h.inner.FetchDiscarded(k, obs, cur) })
}
func (h *Hooks) MutationFailed(a rescache.Action, k string, err error) {
	h.try(func() { h.inner.MutationFailed(a, k, err) })
}

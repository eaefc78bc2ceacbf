package sloghooks

import (
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/rescache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	FetchSharedEvery    uint64
	FetchDiscardedEvery uint64
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	sharedCtr    atomic.Uint64
	discardedCtr atomic.Uint64
}

var _ rescache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) FetchShared(key string) {
	if h.l == nil || !sample(h.opts.FetchSharedEvery, &h.sharedCtr) {
		return
	}
	h.l.Debug("rescache.fetch_shared", "key", key)
}

func (h *Hooks) FetchDiscarded(key string, observed, current uint64) {
	if h.l == nil || !sample(h.opts.FetchDiscardedEvery, &h.discardedCtr) {
		return
	}
	h.l.Info("rescache.fetch_discarded",
		"key", key,
		"observed", observed,
		"current", current)
}

func (h *Hooks) PatchSkipped(key string) {
	if h.l == nil {
		return
	}
	h.l.Debug("rescache.patch_skipped", "key", key)
}

func (h *Hooks) MutationFailed(action rescache.Action, key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("rescache.mutation_failed",
		"action", action.String(),
		"key", key,
		"err", err)
}

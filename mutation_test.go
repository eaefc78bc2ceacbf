package rescache

import (
	"context"
	"errors"
	"testing"
)

func TestMutateCreateAppendsAcknowledged(t *testing.T) {
	tr := &fakeTransport{
		createFn: func(_ context.Context, _ string, h hero) (hero, error) {
			// backend assigns its own id
			h.ID = "srv-1"
			return h, nil
		},
	}
	cc := newTestCache(t, tr, nil)
	cc.Set("heroes", []hero{{ID: "h1", Name: "A"}})

	var succeeded []hero
	result, err := cc.Mutate(context.Background(), ActionCreate, "heroes", hero{Name: "B"}, MutateOptions[hero]{
		OnSuccess: func(h hero) { succeeded = append(succeeded, h) },
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if result.ID != "srv-1" {
		t.Fatalf("expected acknowledged entity, got %+v", result)
	}
	want := []hero{{ID: "h1", Name: "A"}, {ID: "srv-1", Name: "B"}}
	if e := cc.Get("heroes"); !heroesEqual(e.Data, want) {
		t.Fatalf("create patch: got %v want %v", e.Data, want)
	}
	if len(succeeded) != 1 || succeeded[0].ID != "srv-1" {
		t.Fatalf("OnSuccess: got %v", succeeded)
	}
}

func TestMutateCreateAssignsClientID(t *testing.T) {
	var sent hero
	tr := &fakeTransport{
		createFn: func(_ context.Context, _ string, h hero) (hero, error) {
			sent = h
			return h, nil
		},
	}
	cc := newTestCache(t, tr, func(o *Options[hero]) {
		o.WithID = func(h hero, id string) hero { h.ID = id; return h }
		o.NewID = func() string { return "gen-1" }
	})
	cc.Set("heroes", nil)

	result, err := cc.Mutate(context.Background(), ActionCreate, "heroes", hero{Name: "B"}, MutateOptions[hero]{})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if sent.ID != "gen-1" || result.ID != "gen-1" {
		t.Fatalf("client id not assigned: sent=%+v result=%+v", sent, result)
	}

	// An entity that already carries an id keeps it.
	_, err = cc.Mutate(context.Background(), ActionCreate, "heroes", hero{ID: "h9", Name: "C"}, MutateOptions[hero]{})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if sent.ID != "h9" {
		t.Fatalf("existing id overwritten: %+v", sent)
	}
}

func TestMutateUpdateReplacesMatching(t *testing.T) {
	tr := &fakeTransport{
		updateFn: func(_ context.Context, _ string, h hero) (hero, error) { return h, nil },
	}
	cc := newTestCache(t, tr, nil)
	cc.Set("heroes", []hero{{ID: "h1", Name: "A"}, {ID: "h2", Name: "B"}})

	if _, err := cc.Mutate(context.Background(), ActionUpdate, "heroes", hero{ID: "h1", Name: "A2"}, MutateOptions[hero]{}); err != nil {
		t.Fatalf("Mutate: %v", err)
	}

	want := []hero{{ID: "h1", Name: "A2"}, {ID: "h2", Name: "B"}}
	if e := cc.Get("heroes"); !heroesEqual(e.Data, want) {
		t.Fatalf("update patch: got %v want %v", e.Data, want)
	}
}

func TestMutateDeleteRemovesMatching(t *testing.T) {
	var gotID string
	tr := &fakeTransport{
		deleteFn: func(_ context.Context, _ string, id string) error {
			gotID = id
			return nil
		},
	}
	cc := newTestCache(t, tr, nil)
	cc.Set("heroes", []hero{{ID: "h1", Name: "A"}, {ID: "h2", Name: "B"}})

	if _, err := cc.Mutate(context.Background(), ActionDelete, "heroes", hero{ID: "h1"}, MutateOptions[hero]{}); err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if gotID != "h1" {
		t.Fatalf("delete dispatched wrong id: %q", gotID)
	}
	if e := cc.Get("heroes"); !heroesEqual(e.Data, []hero{{ID: "h2", Name: "B"}}) {
		t.Fatalf("delete patch: got %v", e.Data)
	}
}

func TestMutateFailureLeavesCacheUntouched(t *testing.T) {
	hooks := &recHooks{}
	boom := errors.New("update rejected")
	tr := &fakeTransport{
		updateFn: func(context.Context, string, hero) (hero, error) { return hero{}, boom },
	}
	cc := newTestCache(t, tr, func(o *Options[hero]) { o.Hooks = hooks })

	x := []hero{{ID: "h1", Name: "A"}, {ID: "h2", Name: "B"}}
	cc.Set("heroes", x)
	before := cc.Get("heroes")

	var failures []error
	var succeeded bool
	_, err := cc.Mutate(context.Background(), ActionUpdate, "heroes", hero{ID: "h1", Name: "A2"}, MutateOptions[hero]{
		OnSuccess: func(hero) { succeeded = true },
		OnError:   func(e error) { failures = append(failures, e) },
	})
	if err == nil || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped mutation error, got %v", err)
	}
	var me *MutationError
	if !errors.As(err, &me) || me.Action != ActionUpdate || me.Key != "heroes" {
		t.Fatalf("expected *MutationError for update heroes, got %T: %v", err, err)
	}

	after := cc.Get("heroes")
	if !heroesEqual(after.Data, x) || after.Version != before.Version || after.Status != before.Status {
		t.Fatalf("failed mutation touched the cache: before=%+v after=%+v", before, after)
	}
	if succeeded {
		t.Fatalf("OnSuccess ran on failure")
	}
	if len(failures) != 1 || !errors.Is(failures[0], boom) {
		t.Fatalf("OnError: got %v", failures)
	}
	if hooks.failed.Load() != 1 {
		t.Fatalf("expected one MutationFailed hook, got %d", hooks.failed.Load())
	}
}

func TestMutateNoTransport(t *testing.T) {
	cc := newTestCache(t, nil, nil)

	var failure error
	_, err := cc.Mutate(context.Background(), ActionCreate, "heroes", hero{ID: "h1"}, MutateOptions[hero]{
		OnError: func(e error) { failure = e },
	})
	if !errors.Is(err, ErrNoTransport) || !errors.Is(failure, ErrNoTransport) {
		t.Fatalf("expected ErrNoTransport, got err=%v failure=%v", err, failure)
	}
}

func TestMutateUnknownAction(t *testing.T) {
	tr := &fakeTransport{}
	cc := newTestCache(t, tr, nil)

	if _, err := cc.Mutate(context.Background(), Action(99), "heroes", hero{ID: "h1"}, MutateOptions[hero]{}); err == nil {
		t.Fatalf("expected error for unknown action")
	}
}

// The patch lands before OnSuccess runs, so navigation-style side effects see
// the reconciled collection.
func TestMutatePatchAppliedBeforeOnSuccess(t *testing.T) {
	tr := &fakeTransport{
		createFn: func(_ context.Context, _ string, h hero) (hero, error) { return h, nil },
	}
	cc := newTestCache(t, tr, nil)
	cc.Set("heroes", []hero{{ID: "h1"}})

	var seen int
	_, err := cc.Mutate(context.Background(), ActionCreate, "heroes", hero{ID: "h2"}, MutateOptions[hero]{
		OnSuccess: func(hero) { seen = len(cc.Get("heroes").Data) },
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if seen != 2 {
		t.Fatalf("OnSuccess observed %d entities, want 2", seen)
	}
}

// Mutating a key that was never read succeeds against the backend but skips
// the patch: there is no collection to reconcile yet.
func TestMutateSkipsPatchOnColdKey(t *testing.T) {
	hooks := &recHooks{}
	tr := &fakeTransport{
		createFn: func(_ context.Context, _ string, h hero) (hero, error) { return h, nil },
	}
	cc := newTestCache(t, tr, func(o *Options[hero]) { o.Hooks = hooks })

	if _, err := cc.Mutate(context.Background(), ActionCreate, "heroes", hero{ID: "h1"}, MutateOptions[hero]{}); err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if e := cc.Get("heroes"); e.Data != nil {
		t.Fatalf("cold key should stay unpopulated, got %v", e.Data)
	}
	if hooks.skipped.Load() != 1 {
		t.Fatalf("expected PatchSkipped hook, got %d", hooks.skipped.Load())
	}
}

func TestMutateCustomPatch(t *testing.T) {
	tr := &fakeTransport{
		updateFn: func(_ context.Context, _ string, h hero) (hero, error) { return h, nil },
	}
	cc := newTestCache(t, tr, nil)
	cc.Set("heroes", []hero{{ID: "h1", Name: "A"}, {ID: "h2", Name: "B"}})

	// custom reconciliation: drop everything but the updated entity
	updated := hero{ID: "h1", Name: "A2"}
	_, err := cc.Mutate(context.Background(), ActionUpdate, "heroes", updated, MutateOptions[hero]{
		Patch: func([]hero) []hero { return []hero{updated} },
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if e := cc.Get("heroes"); !heroesEqual(e.Data, []hero{updated}) {
		t.Fatalf("custom patch ignored: %v", e.Data)
	}
}

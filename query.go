package rescache

import (
	"context"
)

// Query returns the collection for key, coalescing concurrent callers onto a
// single fetch: while one is in flight, further calls for the same key attach
// to it instead of issuing their own, and all callers receive the same slice.
//
// A cold entry moves to Loading; a populated one keeps serving its data while
// the refetch runs. On success the result is published through the version
// guard (see completeFetch); on failure the entry records the error, prior
// data stays, and a *FetchError is returned. There are no automatic retries —
// the caller may simply Query again.
//
// A nil fetch falls back to Transport.List for the key's resource.
func (c *cache[E]) Query(ctx context.Context, key string, fetch FetchFunc[E]) ([]E, error) {
	if fetch == nil {
		if c.transport == nil {
			return nil, ErrNoFetcher
		}
		t, res := c.transport, c.resource(key)
		fetch = func(ctx context.Context) ([]E, error) { return t.List(ctx, res) }
	}

	if !c.enabled {
		data, err := fetch(ctx)
		if err != nil {
			return nil, &FetchError{Key: key, Err: err}
		}
		return data, nil
	}

	// Detach the shared flight from this caller's cancellation: one caller
	// bailing out must not fail the fetch for everyone attached to it.
	// Context values (tracing, auth) are preserved.
	fctx := context.WithoutCancel(ctx)

	ch := c.flight.DoChan(key, func() (any, error) {
		observed := c.beginFetch(key)
		data, err := fetch(fctx)
		if err != nil {
			c.failFetch(key, err)
			return nil, err
		}
		c.completeFetch(key, data, observed)
		return data, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			c.hooks.FetchShared(key)
		}
		if res.Err != nil {
			return nil, &FetchError{Key: key, Err: res.Err}
		}
		data, _ := res.Val.([]E)
		return data, nil

	case <-ctx.Done():
		// The flight keeps running and will publish; only this caller leaves.
		return nil, ctx.Err()
	}
}

// Package rescache implements a client-side resource cache with mutation
// synchronization. Each resource key holds the last-known collection of
// entities; reads are served from the cache while a refetch is in flight
// (stale-while-revalidate), and successful mutations patch the collection in
// place instead of forcing a full refetch.
//
// Components:
//   - Cache[E]: per-key entries with Set/SetError/Patch and Subscribe for
//     change notification.
//   - Query: coalesces concurrent fetches per key (one Transport call for N
//     callers) and publishes the result with a version guard.
//   - Mutate: dispatches Create/Update/Delete to a Transport and reconciles
//     the cache with an idempotent by-id patch on success.
//
// Every data write (Set, Patch) bumps a per-key version. A fetch snapshots the
// version when it starts; its result is published only if the version is
// unchanged, so a mutation acknowledged while the fetch was in flight is never
// overwritten by the older server snapshot.
//
// Pattern:
//
//	cache, _ := rescache.New[Hero](rescache.Options[Hero]{
//	    ID:        func(h Hero) string { return h.ID },
//	    Transport: client, // e.g. transport/resthttp
//	})
//	heroes, err := cache.Query(ctx, "heroes", nil) // nil => Transport.List
//	_, err = cache.Mutate(ctx, rescache.ActionDelete, "heroes", hero, rescache.MutateOptions[Hero]{
//	    OnSuccess: func(Hero) { router.Navigate("/heroes") },
//	})
package rescache

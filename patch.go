package rescache

// PatchFunc transforms a collection in response to a successful mutation.
// Implementations must be pure — build and return a new slice, never mutate
// the input — and must keep entities unique by id.
type PatchFunc[E any] func(old []E) []E

// Upsert replaces the entity whose id matches e, or appends e when absent.
// Idempotent: applying it twice yields the same collection.
func Upsert[E any](id func(E) string, e E) PatchFunc[E] {
	return func(old []E) []E {
		eid := id(e)
		out := make([]E, 0, len(old)+1)
		replaced := false
		for _, cur := range old {
			if id(cur) == eid {
				out = append(out, e)
				replaced = true
				continue
			}
			out = append(out, cur)
		}
		if !replaced {
			out = append(out, e)
		}
		return out
	}
}

// Replace swaps the entity whose id matches e and leaves the collection
// unchanged when no entity matches. Use Upsert for replace-or-append.
func Replace[E any](id func(E) string, e E) PatchFunc[E] {
	return func(old []E) []E {
		eid := id(e)
		out := make([]E, len(old))
		for i, cur := range old {
			if id(cur) == eid {
				out[i] = e
				continue
			}
			out[i] = cur
		}
		return out
	}
}

// Remove drops every entity whose id equals entityID; all others are carried
// over unchanged. Idempotent.
func Remove[E any](id func(E) string, entityID string) PatchFunc[E] {
	return func(old []E) []E {
		out := make([]E, 0, len(old))
		for _, cur := range old {
			if id(cur) == entityID {
				continue
			}
			out = append(out, cur)
		}
		return out
	}
}

package rescache

import (
	"context"
	"fmt"
)

// Action selects the write dispatched by Mutate.
type Action uint8

const (
	ActionCreate Action = iota + 1
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	}
	return "unknown"
}

// Mutate performs one write against the Transport and reconciles the cache
// afterwards. Create and Update send the entity; Delete sends only its id.
//
// On success the acknowledged entity is patched into the key's collection
// (opts.Patch, or a by-id default derived from the action — the defaults are
// idempotent, so replaying the same acknowledgment cannot duplicate or corrupt
// the collection), then opts.OnSuccess runs and the entity is returned.
//
// On failure the cache is left exactly as it was, opts.OnError is invoked and
// a *MutationError is returned. No retries; concurrent mutations on the same
// entity are not coordinated (last acknowledgment wins).
func (c *cache[E]) Mutate(ctx context.Context, action Action, key string, entity E, opts MutateOptions[E]) (E, error) {
	var zero E
	if c.transport == nil {
		if opts.OnError != nil {
			opts.OnError(ErrNoTransport)
		}
		return zero, ErrNoTransport
	}

	res := c.resource(key)

	var (
		result E
		err    error
	)
	switch action {
	case ActionCreate:
		if c.withID != nil && c.id(entity) == "" {
			entity = c.withID(entity, c.newID())
		}
		result, err = c.transport.Create(ctx, res, entity)
	case ActionUpdate:
		result, err = c.transport.Update(ctx, res, entity)
	case ActionDelete:
		err = c.transport.Delete(ctx, res, c.id(entity))
		result = entity
	default:
		err = fmt.Errorf("rescache: unknown action %d", action)
	}

	if err != nil {
		merr := &MutationError{Action: action, Key: key, Err: err}
		c.hooks.MutationFailed(action, key, err)
		c.log.Debug("mutation failed (cache untouched)", Fields{"key": key, "action": action.String(), "err": err})
		if opts.OnError != nil {
			opts.OnError(merr)
		}
		return zero, merr
	}

	patch := opts.Patch
	if patch == nil {
		patch = c.defaultPatch(action, result)
	}
	c.Patch(key, patch)

	if opts.OnSuccess != nil {
		opts.OnSuccess(result)
	}
	return result, nil
}

// defaultPatch derives the by-id reconciliation for an acknowledged write.
// Update uses Upsert rather than strict Replace so an entity the server knows
// about but the collection missed (e.g. created elsewhere) still lands.
func (c *cache[E]) defaultPatch(action Action, result E) PatchFunc[E] {
	switch action {
	case ActionCreate, ActionUpdate:
		return Upsert(c.id, result)
	case ActionDelete:
		return Remove[E](c.id, c.id(result))
	}
	return nil
}

package rescache

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTransport is returned by Mutate when no Transport is configured.
	ErrNoTransport = errors.New("rescache: no transport configured")

	// ErrNoFetcher is returned by Query when both the fetch function and the
	// Transport are nil.
	ErrNoFetcher = errors.New("rescache: no fetch function and no transport")
)

// FetchError wraps a failed read. The entry for Key keeps its last-good data
// (if any) next to the recorded error.
type FetchError struct {
	Key string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("rescache: fetch %q failed: %v", e.Key, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// MutationError wraps a rejected write. The collection for Key was left
// exactly as it was before the attempt.
type MutationError struct {
	Action Action
	Key    string
	Err    error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("rescache: %s %q failed: %v", e.Action, e.Key, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

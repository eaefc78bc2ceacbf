package rescache

// Status describes the lifecycle of a cache entry.
type Status uint8

const (
	StatusIdle    Status = iota // created lazily, never fetched
	StatusLoading               // first fetch in flight, no data yet
	StatusSuccess               // last fetch or set succeeded
	StatusError                 // last operation failed; Data may still hold stale-but-valid state
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Entry is a point-in-time snapshot of one resource key.
//
// Data is nil until the first successful fetch or Set; afterwards it always
// holds the most recent known-good collection, even while a refetch is in
// flight or after a failed operation. Callers must treat Data as read-only;
// all writes go through Set/Patch, which replace the slice wholesale.
type Entry[E any] struct {
	Data   []E
	Status Status
	Err    error

	// Version counts data writes (Set, Patch) for this key. Fetches observe
	// it to detect collections that moved while they were in flight.
	Version uint64

	// Fetching reports an in-flight fetch. With Data present this is the
	// revalidating half of stale-while-revalidate; Status stays Success.
	Fetching bool
}

// entryState is the mutable per-key record behind Entry snapshots.
// Guarded by the cache mutex.
type entryState[E any] struct {
	data      []E
	status    Status
	err       error
	version   uint64
	fetching  bool
	populated bool // true after the first successful Set/fetch
}

func (e *entryState[E]) snapshot() Entry[E] {
	return Entry[E]{
		Data:     e.data,
		Status:   e.status,
		Err:      e.err,
		Version:  e.version,
		Fetching: e.fetching,
	}
}

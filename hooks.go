package rescache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking. The cache calls them on hot
// paths; wrap with hooks/async to offload expensive sinks.
type Hooks interface {
	// A caller attached to an already in-flight fetch for the key.
	FetchShared(key string)

	// A completed fetch was dropped because the entry version moved while it
	// was in flight (a mutation or Set landed first).
	FetchDiscarded(key string, observed, current uint64)

	// Patch was invoked against a key that has never been populated.
	PatchSkipped(key string)

	// The transport rejected a write; the cache was left untouched.
	MutationFailed(action Action, key string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) FetchShared(string)                    {}
func (NopHooks) FetchDiscarded(string, uint64, uint64) {}
func (NopHooks) PatchSkipped(string)                   {}
func (NopHooks) MutationFailed(Action, string, error)  {}

// Package codec defines the serialization contract used by rescache for
// transport payloads and persisted collection snapshots.
//
// A Codec[V] must round-trip: Decode(Encode(v)) yields a value equal to v for
// the caller's purposes. Snapshot persistence typically instantiates codecs
// over the collection type (e.g. JSON[[]Hero]{}), transports over the entity
// type.
package codec

// Codec encodes/decodes values V to []byte.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

package wire

import (
	"bytes"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	b := EncodeSnapshot(42, []byte(`[{"id":"h1"}]`))
	v, payload, err := DecodeSnapshot(b)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	if v != 42 {
		t.Fatalf("entry version: got %d want 42", v)
	}
	if !bytes.Equal(payload, []byte(`[{"id":"h1"}]`)) {
		t.Fatalf("payload mismatch: %q", payload)
	}
}

func TestSnapshotEmptyPayload(t *testing.T) {
	b := EncodeSnapshot(0, nil)
	v, payload, err := DecodeSnapshot(b)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	if v != 0 || len(payload) != 0 {
		t.Fatalf("got v=%d payload=%q", v, payload)
	}
}

// DecodeSnapshot must reject trailing bytes (strict framing).
func TestDecodeSnapshotRejectsTrailing(t *testing.T) {
	b := EncodeSnapshot(7, []byte("x"))
	b = append(b, 0xDE, 0xAD) // trailing junk
	if _, _, err := DecodeSnapshot(b); err == nil {
		t.Fatalf("DecodeSnapshot should reject trailing bytes")
	}
}

func TestDecodeSnapshotRejectsForeign(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("short"),
		[]byte("not-a-snapshot-frame-at-all"),
		append([]byte{'R', 'S', 'N', 'P', 99, kindSnapshot}, make([]byte, 12)...), // bad version
		append([]byte{'R', 'S', 'N', 'P', version, 99}, make([]byte, 12)...),      // bad kind
	}
	for i, b := range cases {
		if _, _, err := DecodeSnapshot(b); err == nil {
			t.Fatalf("case %d: DecodeSnapshot should reject %q", i, b)
		}
	}
}

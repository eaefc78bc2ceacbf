package local

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
	_, err = New(Config{MaxEntries: -1})
	require.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := New(Config{MaxEntries: 8})
	require.NoError(t, err)

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	okSet, err := s.Set(ctx, "k", []byte("v"), 1, 0)
	require.NoError(t, err)
	assert.True(t, okSet)

	b, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), b)

	require.NoError(t, s.Del(ctx, "k"))
	_, ok, _ = s.Get(ctx, "k")
	assert.False(t, ok)
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	s, err := New(Config{MaxEntries: 2})
	require.NoError(t, err)

	_, _ = s.Set(ctx, "a", []byte("1"), 1, 0)
	_, _ = s.Set(ctx, "b", []byte("2"), 1, 0)
	_, _, _ = s.Get(ctx, "a") // touch a so b is the LRU victim
	_, _ = s.Set(ctx, "c", []byte("3"), 1, 0)

	_, ok, _ := s.Get(ctx, "b")
	assert.False(t, ok, "b should have been evicted")
	_, ok, _ = s.Get(ctx, "a")
	assert.True(t, ok)
	_, ok, _ = s.Get(ctx, "c")
	assert.True(t, ok)
}

func TestTTLExpiry(t *testing.T) {
	ctx := context.Background()
	s, err := New(Config{MaxEntries: 8, TTL: 20 * time.Millisecond})
	require.NoError(t, err)

	_, _ = s.Set(ctx, "k", []byte("v"), 1, 0)
	_, ok, _ := s.Get(ctx, "k")
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)
	_, ok, _ = s.Get(ctx, "k")
	assert.False(t, ok, "entry should expire after the cache-wide TTL")
}

func TestClosePurges(t *testing.T) {
	ctx := context.Background()
	s, err := New(Config{MaxEntries: 8})
	require.NoError(t, err)

	_, _ = s.Set(ctx, "k", []byte("v"), 1, 0)
	require.NoError(t, s.Close(ctx))
	_, ok, _ := s.Get(ctx, "k")
	assert.False(t, ok)
}

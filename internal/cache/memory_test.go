package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedDecision struct {
	Status string `json:"status"`
	Score  int    `json:"score"`
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var miss cachedDecision
	found, err := store.Lookup(ctx, "fp-1", &miss)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Store(ctx, "fp-1", cachedDecision{Status: "PROCESSED", Score: 82}, time.Minute))

	var hit cachedDecision
	found, err = store.Lookup(ctx, "fp-1", &hit)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, cachedDecision{Status: "PROCESSED", Score: 82}, hit)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Store(ctx, "fp-1", cachedDecision{Status: "IGNORED"}, time.Minute))

	now = now.Add(2 * time.Minute)

	var dest cachedDecision
	found, err := store.Lookup(ctx, "fp-1", &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStoreInflightClaim(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	acquired, err := store.Begin(ctx, "fp-1")
	require.NoError(t, err)
	assert.True(t, acquired)

	// Second worker loses the claim and sees the marker on lookup.
	acquired, err = store.Begin(ctx, "fp-1")
	require.NoError(t, err)
	assert.False(t, acquired)

	var dest cachedDecision
	_, err = store.Lookup(ctx, "fp-1", &dest)
	assert.ErrorIs(t, err, ErrInProgress)

	// Storing the decision releases the claim.
	require.NoError(t, store.Store(ctx, "fp-1", cachedDecision{Status: "PROCESSED"}, 0))

	found, err := store.Lookup(ctx, "fp-1", &dest)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestMemoryStoreClaimExpires(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	now := time.Now()
	store.now = func() time.Time { return now }

	acquired, err := store.Begin(ctx, "fp-1")
	require.NoError(t, err)
	require.True(t, acquired)

	// A crashed worker never stores; the claim lapses.
	now = now.Add(markerTTL + time.Second)

	var dest cachedDecision
	found, err := store.Lookup(ctx, "fp-1", &dest)
	require.NoError(t, err)
	assert.False(t, found)

	acquired, err = store.Begin(ctx, "fp-1")
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestMemoryStoreInvalidate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Store(ctx, "fp-1", cachedDecision{Status: "PROCESSED"}, time.Minute))
	require.NoError(t, store.Invalidate(ctx))

	var dest cachedDecision
	found, err := store.Lookup(ctx, "fp-1", &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

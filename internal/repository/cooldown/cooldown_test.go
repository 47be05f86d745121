package cooldown

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_StampAndLookup(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, ok, err := s.LastAlert(ctx, "u1", "h1")
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.Date(2026, 5, 12, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.Stamp(ctx, "u1", "h1", at))

	got, ok, err := s.LastAlert(ctx, "u1", "h1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, at, got)
}

func TestMemoryStore_PairsAreIndependent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	at := time.Date(2026, 5, 12, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.Stamp(ctx, "u1", "h1", at))

	// Same hive, different user
	_, ok, err := s.LastAlert(ctx, "u2", "h1")
	require.NoError(t, err)
	assert.False(t, ok)

	// Same user, different hive
	_, ok, err = s.LastAlert(ctx, "u1", "h2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_RestampOverwrites(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first := time.Date(2026, 5, 12, 9, 0, 0, 0, time.UTC)
	second := first.Add(2 * time.Hour)
	require.NoError(t, s.Stamp(ctx, "u1", "h1", first))
	require.NoError(t, s.Stamp(ctx, "u1", "h1", second))

	got, ok, err := s.LastAlert(ctx, "u1", "h1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, second, got)
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	at := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Stamp(ctx, "u1", "h1", at)
		}()
		go func() {
			defer wg.Done()
			_, _, _ = s.LastAlert(ctx, "u1", "h1")
		}()
	}
	wg.Wait()
}

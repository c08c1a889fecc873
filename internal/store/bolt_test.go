package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Bolt {
	t.Helper()
	s, err := NewBolt(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMentionSeenRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seen, err := s.IsMentionSeen(ctx, "1944726729622462464")
	require.NoError(t, err)
	require.False(t, seen)

	require.NoError(t, s.MarkMentionSeen(ctx, "1944726729622462464"))

	seen, err = s.IsMentionSeen(ctx, "1944726729622462464")
	require.NoError(t, err)
	require.True(t, seen)

	// Survives reopening? Same handle is enough here; the persistence
	// itself is bbolt's contract.
	n, err := s.SeenMentionCount(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestMentionSeenEviction(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < maxSeenMentions+40; i++ {
		require.NoError(t, s.MarkMentionSeen(ctx, fmt.Sprintf("%d", 1000+i)))
	}

	n, err := s.SeenMentionCount(ctx)
	require.NoError(t, err)
	require.Equal(t, maxSeenMentions, n)

	// Oldest ids evicted, newest retained.
	seen, err := s.IsMentionSeen(ctx, "1000")
	require.NoError(t, err)
	require.False(t, seen, "oldest id should have been evicted")

	seen, err = s.IsMentionSeen(ctx, fmt.Sprintf("%d", 1000+maxSeenMentions+39))
	require.NoError(t, err)
	require.True(t, seen, "newest id must be retained")
}

func TestWatchRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddWatch(ctx, "So11111111111111111111111111111111111111112"))
	require.NoError(t, s.AddWatch(ctx, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"))
	require.Error(t, s.AddWatch(ctx, "  "))

	watches, err := s.ListWatches(ctx)
	require.NoError(t, err)
	require.Len(t, watches, 2)

	require.NoError(t, s.RemoveWatch(ctx, "So11111111111111111111111111111111111111112"))
	require.NoError(t, s.RemoveWatch(ctx, "never-added"))

	watches, err = s.ListWatches(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"}, watches)
}

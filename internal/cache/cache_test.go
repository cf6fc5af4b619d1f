package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/config"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRedisOptions(t *testing.T) {
	opts, err := buildRedisOptions(config.CacheConfig{RedisPassword: "pw", RedisDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6379", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, ioTimeout, opts.ReadTimeout)

	opts, err = buildRedisOptions(config.CacheConfig{RedisURL: "redis://:secret@cache.internal:6380/1"})
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, 1, opts.DB)

	_, err = buildRedisOptions(config.CacheConfig{RedisURL: "http://nope"})
	assert.Error(t, err)
}

func TestTTLOrDefault(t *testing.T) {
	assert.Equal(t, time.Minute, ttlOrDefault(0, time.Minute))
	assert.Equal(t, 30*time.Second, ttlOrDefault(30, time.Minute))
}

func TestDisabledCacheIsNoop(t *testing.T) {
	ctx := context.Background()
	client, err := Connect(ctx, config.CacheConfig{Enabled: false})
	require.NoError(t, err)
	require.Nil(t, client)

	c := NewLinkCache(client, 0)

	require.NoError(t, c.SetLinks(ctx, []domain.Link{{ID: "1", Name: "Actual"}}))
	links, ok, err := c.GetLinks(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, links)
	assert.NoError(t, c.Invalidate(ctx))
}

func TestMemorySelectionTracker(t *testing.T) {
	ctx := context.Background()
	tracker := NewSelectionTracker(nil, 0)

	key := SelectionKey("u-1", "actual")
	cur, err := tracker.Current(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, cur.Gen)
	assert.Empty(t, cur.LinkID)

	first, _ := tracker.Begin(ctx, key, "link-a")
	second, _ := tracker.Begin(ctx, key, "link-b")
	assert.Equal(t, Selection{Gen: 1, LinkID: "link-a"}, first)
	assert.Equal(t, Selection{Gen: 2, LinkID: "link-b"}, second)

	cur, _ = tracker.Current(ctx, key)
	assert.Equal(t, second, cur)

	other, _ := tracker.Current(ctx, SelectionKey("u-1", "budget"))
	assert.Zero(t, other.Gen)
}

func TestMemorySelectionTracker_SameLinkKeepsLink(t *testing.T) {
	ctx := context.Background()
	tracker := NewMemorySelectionTracker()

	first, _ := tracker.Begin(ctx, "k", "link-a")
	_, _ = tracker.Begin(ctx, "k", "link-a")

	cur, _ := tracker.Current(ctx, "k")
	assert.NotEqual(t, first.Gen, cur.Gen)
	assert.Equal(t, first.LinkID, cur.LinkID)
}

func TestMemorySelectionTracker_Concurrent(t *testing.T) {
	ctx := context.Background()
	tracker := NewMemorySelectionTracker()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = tracker.Begin(ctx, "k", "link-a")
		}()
	}
	wg.Wait()

	cur, _ := tracker.Current(ctx, "k")
	assert.Equal(t, int64(50), cur.Gen)
}

func TestSelectionKey(t *testing.T) {
	assert.Equal(t, SelectionKey("User@X", "actual"), SelectionKey("user@x", "actual"))
	assert.NotEqual(t, SelectionKey("u", "actual"), SelectionKey("u", "budget"))
	assert.Contains(t, SelectionKey("u", "actual"), selectionKeyPrefix+":")
}

func TestMemoryEpoch(t *testing.T) {
	ctx := context.Background()
	epoch := NewAuthEpoch(nil)

	n, err := epoch.Current(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, epoch.Bump(ctx))
	require.NoError(t, epoch.Bump(ctx))
	n, _ = epoch.Current(ctx)
	assert.Equal(t, int64(2), n)
}

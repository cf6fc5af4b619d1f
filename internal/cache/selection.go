package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	selectionKeyPrefix  = "pnl:selection"
	selectionGenField   = "gen"
	selectionLinkField  = "link"
	defaultSelectionTTL = time.Hour
)

// Selection is the latest selection recorded for a key.
type Selection struct {
	Gen    int64
	LinkID string
}

// SelectionTracker numbers a user's source selections. Begin starts a new
// generation for linkID; a result for linkID stays current until a different
// link is selected under the same key.
type SelectionTracker interface {
	Begin(ctx context.Context, key, linkID string) (Selection, error)
	Current(ctx context.Context, key string) (Selection, error)
}

// SelectionKey identifies one user's selection slot ("actual", "budget").
func SelectionKey(userID, slot string) string {
	hash := sha1.Sum([]byte(strings.ToLower(userID) + "|" + slot))
	return fmt.Sprintf("%s:%s", selectionKeyPrefix, hex.EncodeToString(hash[:]))
}

// NewSelectionTracker shares generations through redis so every API instance
// sees the latest selection. A nil client keeps them in process.
func NewSelectionTracker(client *redis.Client, ttlSeconds int) SelectionTracker {
	if client == nil {
		return NewMemorySelectionTracker()
	}
	return &redisSelectionTracker{
		client: client,
		ttl:    ttlOrDefault(ttlSeconds, defaultSelectionTTL),
	}
}

type redisSelectionTracker struct {
	client *redis.Client
	ttl    time.Duration
}

func (t *redisSelectionTracker) Begin(ctx context.Context, key, linkID string) (Selection, error) {
	var incr *redis.IntCmd
	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.HIncrBy(ctx, key, selectionGenField, 1)
		pipe.HSet(ctx, key, selectionLinkField, linkID)
		pipe.Expire(ctx, key, t.ttl)
		return nil
	})
	if err != nil {
		return Selection{}, fmt.Errorf("redis hincrby failed: %w", err)
	}
	return Selection{Gen: incr.Val(), LinkID: linkID}, nil
}

func (t *redisSelectionTracker) Current(ctx context.Context, key string) (Selection, error) {
	fields, err := t.client.HGetAll(ctx, key).Result()
	if err != nil {
		return Selection{}, fmt.Errorf("redis hgetall failed: %w", err)
	}
	if len(fields) == 0 {
		return Selection{}, nil
	}
	gen, err := strconv.ParseInt(fields[selectionGenField], 10, 64)
	if err != nil {
		return Selection{}, fmt.Errorf("selection %s: bad generation: %w", key, err)
	}
	return Selection{Gen: gen, LinkID: fields[selectionLinkField]}, nil
}

type memorySelectionTracker struct {
	mu   sync.Mutex
	sels map[string]Selection
}

func NewMemorySelectionTracker() SelectionTracker {
	return &memorySelectionTracker{sels: make(map[string]Selection)}
}

func (t *memorySelectionTracker) Begin(_ context.Context, key, linkID string) (Selection, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	sel := Selection{Gen: t.sels[key].Gen + 1, LinkID: linkID}
	t.sels[key] = sel
	return sel, nil
}

func (t *memorySelectionTracker) Current(_ context.Context, key string) (Selection, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sels[key], nil
}

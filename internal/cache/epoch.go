package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

const authEpochKey = "pnl:auth:epoch"

// Epoch is a counter shared by every API instance. Bumping it invalidates
// whatever an instance derived under an older value.
type Epoch interface {
	Current(ctx context.Context) (int64, error)
	Bump(ctx context.Context) error
}

// NewAuthEpoch shares the credential epoch through redis. A nil client keeps
// it in process.
func NewAuthEpoch(client *redis.Client) Epoch {
	if client == nil {
		return NewMemoryEpoch()
	}
	return &redisEpoch{client: client, key: authEpochKey}
}

type redisEpoch struct {
	client *redis.Client
	key    string
}

func (e *redisEpoch) Current(ctx context.Context) (int64, error) {
	n, err := e.client.Get(ctx, e.key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get failed: %w", err)
	}
	return n, nil
}

func (e *redisEpoch) Bump(ctx context.Context) error {
	if err := e.client.Incr(ctx, e.key).Err(); err != nil {
		return fmt.Errorf("redis incr failed: %w", err)
	}
	return nil
}

type memoryEpoch struct {
	n atomic.Int64
}

func NewMemoryEpoch() Epoch {
	return &memoryEpoch{}
}

func (e *memoryEpoch) Current(context.Context) (int64, error) {
	return e.n.Load(), nil
}

func (e *memoryEpoch) Bump(context.Context) error {
	e.n.Add(1)
	return nil
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	linksListKey    = "pnl:links:all"
	defaultLinksTTL = 5 * time.Minute
)

// LinkCache holds the registered link list between registry reads.
type LinkCache interface {
	GetLinks(ctx context.Context) ([]domain.Link, bool, error)
	SetLinks(ctx context.Context, links []domain.Link) error
	Invalidate(ctx context.Context) error
}

type redisLinkCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopLinkCache struct{}

// NewLinkCache returns a redis-backed cache, or a no-op one for a nil client.
func NewLinkCache(client *redis.Client, ttlSeconds int) LinkCache {
	if client == nil {
		return &noopLinkCache{}
	}
	return &redisLinkCache{client: client, ttl: ttlOrDefault(ttlSeconds, defaultLinksTTL)}
}

func NewNoopLinkCache() LinkCache {
	return &noopLinkCache{}
}

func (c *redisLinkCache) GetLinks(ctx context.Context) ([]domain.Link, bool, error) {
	payload, err := c.client.Get(ctx, linksListKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var links []domain.Link
	if err := json.Unmarshal(payload, &links); err != nil {
		return nil, false, fmt.Errorf("decode link cache: %w", err)
	}
	return links, true, nil
}

func (c *redisLinkCache) SetLinks(ctx context.Context, links []domain.Link) error {
	payload, err := json.Marshal(links)
	if err != nil {
		return fmt.Errorf("encode link cache: %w", err)
	}
	if err := c.client.Set(ctx, linksListKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisLinkCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, linksListKey).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func (n *noopLinkCache) GetLinks(context.Context) ([]domain.Link, bool, error) {
	return nil, false, nil
}

func (n *noopLinkCache) SetLinks(context.Context, []domain.Link) error {
	return nil
}

func (n *noopLinkCache) Invalidate(context.Context) error {
	return nil
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
)

const defaultListTTL = 30 * time.Second

// ListCache stores inventory list snapshots.
//
// Key layout:
//
//	sweets:list:gen        generation counter, INCR on every mutation
//	sweets:list:<gen>      JSON snapshot taken while <gen> was current
//
// A snapshot read from the store before a mutation is written under the old
// generation and is never served after the bump.
type ListCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewListCache(client *redis.Client, ttl time.Duration) *ListCache {
	if ttl <= 0 {
		ttl = defaultListTTL
	}
	return &ListCache{client: client, ttl: ttl}
}

func (c *ListCache) Lookup(ctx context.Context) ([]domain.Sweet, int64, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, 0, false, err
	}

	raw, err := c.client.Get(ctx, snapshotKey(gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, gen, false, fmt.Errorf("list cache get: %w", err)
	}

	var sweets []domain.Sweet
	if err := json.Unmarshal(raw, &sweets); err != nil {
		return nil, gen, false, fmt.Errorf("list cache decode: %w", err)
	}
	if sweets == nil {
		sweets = make([]domain.Sweet, 0)
	}
	return sweets, gen, true, nil
}

func (c *ListCache) Store(ctx context.Context, gen int64, sweets []domain.Sweet) error {
	b, err := json.Marshal(sweets)
	if err != nil {
		return fmt.Errorf("list cache encode: %w", err)
	}
	return c.client.Set(ctx, snapshotKey(gen), b, c.ttl).Err()
}

func (c *ListCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("list cache invalidate: %w", err)
	}
	return nil
}

func (c *ListCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("list cache generation: %w", err)
	}
	return gen, nil
}

const generationKey = "sweets:list:gen"

func snapshotKey(gen int64) string {
	return fmt.Sprintf("sweets:list:%d", gen)
}

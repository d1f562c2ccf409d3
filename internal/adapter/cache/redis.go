// Package cache keeps resolved short links in Redis so redirects can skip the alias lookup.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vadimbarashkov/shortlink-analytics/internal/entity"
)

const keyPrefix = "shortlink:"

// Connect creates a Redis client and checks it answers within five seconds.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	const op = "adapter.cache.Connect"

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%s: failed to ping redis: %w", op, err)
	}

	return client, nil
}

// LinkCache stores short links as JSON keyed by alias. Links are immutable, so
// entries never need invalidation and only expire after ttl.
type LinkCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLinkCache(client *redis.Client, ttl time.Duration) *LinkCache {
	return &LinkCache{
		client: client,
		ttl:    ttl,
	}
}

func key(alias string) string {
	return keyPrefix + alias
}

// Get returns the cached link of alias, or nil when it is not cached.
func (c *LinkCache) Get(ctx context.Context, alias string) (*entity.ShortLink, error) {
	const op = "adapter.cache.LinkCache.Get"

	data, err := c.client.Get(ctx, key(alias)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, fmt.Errorf("%s: failed to get key: %w", op, err)
	}

	var link entity.ShortLink

	if err := json.Unmarshal(data, &link); err != nil {
		return nil, fmt.Errorf("%s: failed to decode cached link: %w", op, err)
	}

	return &link, nil
}

func (c *LinkCache) Set(ctx context.Context, link *entity.ShortLink) error {
	const op = "adapter.cache.LinkCache.Set"

	data, err := json.Marshal(link)
	if err != nil {
		return fmt.Errorf("%s: failed to encode link: %w", op, err)
	}

	if err := c.client.Set(ctx, key(link.Alias), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("%s: failed to set key: %w", op, err)
	}

	return nil
}

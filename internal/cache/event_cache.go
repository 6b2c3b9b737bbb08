// Package cache keeps recently read events in Redis, keyed by slug.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-events/internal/models"
)

const (
	keyPrefix = "event:slug:"
	tombstone = "-"
)

type EventCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewEventCache(client *redis.Client, ttl time.Duration) *EventCache {
	return &EventCache{Client: client, TTL: ttl}
}

func key(slug string) string {
	return keyPrefix + slug
}

// Get reports a miss as (nil, false, nil). An evicted slug is a miss.
func (c *EventCache) Get(ctx context.Context, slug string) (*models.Event, bool, error) {
	raw, err := c.Client.Get(ctx, key(slug)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", slug, err)
	}
	if string(raw) == tombstone {
		return nil, false, nil
	}

	var event models.Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, false, fmt.Errorf("cache decode %s: %w", slug, err)
	}
	return &event, true, nil
}

// Fill caches a value read from the store. It never replaces an existing key,
// so a read that lost a race with a write cannot overwrite the newer value.
func (c *EventCache) Fill(ctx context.Context, event *models.Event) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", event.Slug, err)
	}
	if err := c.Client.SetNX(ctx, key(event.Slug), raw, c.TTL).Err(); err != nil {
		return fmt.Errorf("cache fill %s: %w", event.Slug, err)
	}
	return nil
}

// Put stores the value just written to the store.
func (c *EventCache) Put(ctx context.Context, event *models.Event) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", event.Slug, err)
	}
	if err := c.Client.Set(ctx, key(event.Slug), raw, c.TTL).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", event.Slug, err)
	}
	return nil
}

// Evict marks slugs as gone for one TTL. Fills for them are ignored until it expires.
func (c *EventCache) Evict(ctx context.Context, slugs ...string) error {
	if len(slugs) == 0 {
		return nil
	}
	_, err := c.Client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, s := range slugs {
			p.Set(ctx, key(s), tombstone, c.TTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache evict: %w", err)
	}
	return nil
}

func (c *EventCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *EventCache) Close() error {
	return c.Client.Close()
}

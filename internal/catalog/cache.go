package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	itemKeyPrefix = "catalog:item:"
	listKey       = "catalog:items"
)

// CachedLookup decorates a Lookup with a short-TTL Redis cache. Stock in a
// draft is a pick-time snapshot anyway, so serving a recently cached figure
// keeps the same semantics while sparing the upstream API on busy terminals.
// Cache failures degrade to the inner lookup, never to an error.
type CachedLookup struct {
	inner  Lookup
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedLookup wraps inner with a Redis cache using the given TTL.
func NewCachedLookup(inner Lookup, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedLookup {
	return &CachedLookup{inner: inner, client: client, ttl: ttl, logger: logger}
}

// Resolve returns the cached item when present, otherwise resolves upstream
// and stores the result. ErrItemNotFound is never cached.
func (c *CachedLookup) Resolve(ctx context.Context, itemID string) (Item, error) {
	key := itemKeyPrefix + itemID

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var item Item
		if err := json.Unmarshal(payload, &item); err == nil {
			return item, nil
		}
		c.logger.Warn("discarding corrupt cached catalog item", slog.String("item_id", itemID))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("catalog cache read failed", slog.Any("error", err))
	}

	item, err := c.inner.Resolve(ctx, itemID)
	if err != nil {
		return Item{}, err
	}
	c.store(ctx, key, item)
	return item, nil
}

// List returns the cached catalog when present, otherwise fetches upstream.
func (c *CachedLookup) List(ctx context.Context) ([]Item, error) {
	payload, err := c.client.Get(ctx, listKey).Bytes()
	if err == nil {
		var items []Item
		if err := json.Unmarshal(payload, &items); err == nil {
			return items, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("catalog cache read failed", slog.Any("error", err))
	}

	items, err := c.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, listKey, items)
	return items, nil
}

// Invalidate drops a cached item, typically after a committed sale changed
// its stock.
func (c *CachedLookup) Invalidate(ctx context.Context, itemIDs ...string) error {
	keys := make([]string, 0, len(itemIDs)+1)
	for _, id := range itemIDs {
		keys = append(keys, itemKeyPrefix+id)
	}
	keys = append(keys, listKey)
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("catalog: invalidate cache: %w", err)
	}
	return nil
}

func (c *CachedLookup) store(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("catalog cache write failed", slog.Any("error", err))
	}
}

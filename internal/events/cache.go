package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nova-events/backend/internal/models"
)

const (
	listCacheKey = "events:list"
	listCacheTTL = 60 * time.Second
)

// Cache is a Redis-backed cache for the public events list. All operations
// are best-effort: a cache failure never fails the request.
type Cache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCache creates an events list cache.
func NewCache(client *redis.Client, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{client: client, logger: logger}
}

// GetList returns the cached events list, or nil on a miss.
func (c *Cache) GetList(ctx context.Context) []models.Event {
	raw, err := c.client.Get(ctx, listCacheKey).Bytes()
	if err != nil {
		return nil
	}
	var list []models.Event
	if err := json.Unmarshal(raw, &list); err != nil {
		c.logger.Warn("corrupt events cache entry", zap.Error(err))
		return nil
	}
	return list
}

// SetList stores the events list with a short TTL.
func (c *Cache) SetList(ctx context.Context, list []models.Event) {
	raw, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, listCacheKey, raw, listCacheTTL).Err(); err != nil {
		c.logger.Warn("events cache set failed", zap.Error(err))
	}
}

// Invalidate drops the cached list after any event mutation.
func (c *Cache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, listCacheKey).Err(); err != nil {
		c.logger.Warn("events cache invalidation failed", zap.Error(err))
	}
}

// Package catalogcache caches catalog list reads in Redis.
//
// Only the list operations are cached; they back every candidate fetch and are
// the expensive reads. Lookups by id and search go straight to the inner catalog.
// Redis failures never fail a read: the cache logs and falls through.
package catalogcache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/catalog"
)

const (
	DefaultTTL    = 5 * time.Minute
	DefaultPrefix = "catalog:v1:"
)

type Cache struct {
	inner  catalog.Catalog
	rdb    redis.UniversalClient
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

var _ catalog.Catalog = (*Cache)(nil)

func New(inner catalog.Catalog, rdb redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		inner:  inner,
		rdb:    rdb,
		ttl:    ttl,
		prefix: DefaultPrefix,
		logger: logger.Named("catalog-cache"),
	}
}

func (c *Cache) ListCities(ctx context.Context) ([]domain.City, error) {
	return cached(ctx, c, "cities", c.inner.ListCities)
}

func (c *Cache) ListPlacesByCity(ctx context.Context, cityID domain.EntityID) ([]domain.Place, error) {
	return cached(ctx, c, "places:"+string(cityID), func(ctx context.Context) ([]domain.Place, error) {
		return c.inner.ListPlacesByCity(ctx, cityID)
	})
}

func (c *Cache) ListEventsAll(ctx context.Context) ([]domain.Event, error) {
	return cached(ctx, c, "events", c.inner.ListEventsAll)
}

func (c *Cache) ListRoutesAll(ctx context.Context) ([]domain.Route, error) {
	return cached(ctx, c, "routes", c.inner.ListRoutesAll)
}

func (c *Cache) GetEntitiesByIDs(ctx context.Context, kind domain.EntityKind, ids []domain.EntityID) ([]domain.Entity, error) {
	return c.inner.GetEntitiesByIDs(ctx, kind, ids)
}

func (c *Cache) Search(ctx context.Context, query string, limit int) ([]domain.Entity, error) {
	return c.inner.Search(ctx, query, limit)
}

// Invalidate drops every cached list, e.g. after the catalog was reseeded.
func (c *Cache) Invalidate(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func cached[T any](ctx context.Context, c *Cache, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	key = c.prefix + key

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var out []T
		uerr := json.Unmarshal(raw, &out)
		if uerr == nil {
			return out, nil
		}
		c.logger.Warn("Discarding undecodable cache entry", zap.String("key", key), zap.Error(uerr))
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("Catalog cache read failed", zap.String("key", key), zap.Error(err))
	}

	out, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if b, merr := json.Marshal(out); merr == nil {
		if serr := c.rdb.Set(ctx, key, b, c.ttl).Err(); serr != nil {
			c.logger.Warn("Catalog cache write failed", zap.String("key", key), zap.Error(serr))
		}
	}
	return out, nil
}

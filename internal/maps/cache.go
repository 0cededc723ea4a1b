package maps

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"tripmate/internal/logger"
	"tripmate/internal/metrics"
	"tripmate/internal/types"
)

// Cache stores resolved places by normalized query.
type Cache interface {
	Get(ctx context.Context, key string) (types.Location, bool)
	Set(ctx context.Context, key string, loc types.Location)
}

// RedisCache shares resolved places across API instances.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (types.Location, bool) {
	raw, err := c.rdb.Get(ctx, "geo:"+key).Bytes()
	if err != nil {
		return types.Location{}, false
	}
	var loc types.Location
	if err := json.Unmarshal(raw, &loc); err != nil {
		return types.Location{}, false
	}
	return loc, true
}

func (c *RedisCache) Set(ctx context.Context, key string, loc types.Location) {
	raw, err := json.Marshal(loc)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, "geo:"+key, raw, c.ttl)
}

// MemoryCache is the single-process fallback when Redis is not configured.
type MemoryCache struct {
	c *gocache.Cache
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{c: gocache.New(ttl, 2*ttl)}
}

func (m *MemoryCache) Get(_ context.Context, key string) (types.Location, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return types.Location{}, false
	}
	loc, ok := v.(types.Location)
	return loc, ok
}

func (m *MemoryCache) Set(_ context.Context, key string, loc types.Location) {
	m.c.Set(key, loc, gocache.DefaultExpiration)
}

type geocoder interface {
	Geocode(ctx context.Context, name string) (types.Location, error)
}

// CachedGeocoder consults the cache before the provider. Failures are never cached.
type CachedGeocoder struct {
	next    geocoder
	cache   Cache
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewCachedGeocoder(next geocoder, cache Cache, log *logger.Logger, m *metrics.Metrics) *CachedGeocoder {
	if log == nil {
		log = logger.Nop()
	}
	return &CachedGeocoder{next: next, cache: cache, log: log.With("geocode_cache"), metrics: m}
}

func (g *CachedGeocoder) Geocode(ctx context.Context, name string) (types.Location, error) {
	key := cacheKey(name)
	if loc, ok := g.cache.Get(ctx, key); ok {
		g.metrics.RecordGeocode("cached")
		return loc, nil
	}
	loc, err := g.next.Geocode(ctx, name)
	if err != nil {
		return types.Location{}, err
	}
	g.cache.Set(ctx, key, loc)
	g.log.Debug().Str("key", key).Str("resolved", loc.Name).Msg("geocode cached")
	return loc, nil
}

func cacheKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// Package cache implements the two-tier response cache used by the Riot API
// client: an optional shared Redis tier checked first, then a process-local
// map. The cache is a performance optimization only; any Redis failure
// degrades to a miss.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"league-dashboard/internal/config"
)

const keyPrefix = "riotcache:"

type entry struct {
	data      []byte
	expiresAt time.Time
}

type Cache struct {
	redis  *redis.Client
	logger zerolog.Logger

	mu    sync.RWMutex
	local map[string]entry

	now func() time.Time
}

func New(cfg *config.Config, logger zerolog.Logger) *Cache {
	c := &Cache{
		logger: logger,
		local:  make(map[string]entry),
		now:    time.Now,
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("invalid REDIS_URL, running with local cache only")
		} else {
			c.redis = redis.NewClient(opts)
			logger.Info().Msg("redis cache tier enabled")
		}
	}

	return c
}

// NewLocal returns a cache without a Redis tier. Tests construct one per case
// so entries never leak between cases.
func NewLocal(logger zerolog.Logger) *Cache {
	return &Cache{
		logger: logger,
		local:  make(map[string]entry),
		now:    time.Now,
	}
}

// SetClock overrides the cache's time source.
func (c *Cache) SetClock(now func() time.Time) {
	c.now = now
}

// Get checks Redis first, then the local map. Expired local entries are
// treated as absent; they are left in place and overwritten by the next Set.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c.redis != nil {
		val, err := c.redis.Get(ctx, keyPrefix+key).Bytes()
		if err == nil {
			return val, true
		}
		if err != redis.Nil {
			c.logger.Debug().Err(err).Msg("redis get failed, falling through to local cache")
		}
	}

	c.mu.RLock()
	e, ok := c.local[key]
	c.mu.RUnlock()
	if !ok || !e.expiresAt.After(c.now()) {
		return nil, false
	}
	return e.data, true
}

// Set writes both tiers. The Redis expiry unit is seconds, so the TTL is
// rounded up with a floor of one second.
func (c *Cache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	if c.redis != nil {
		redisTTL := time.Duration(redisSeconds(ttl)) * time.Second
		if err := c.redis.Set(ctx, keyPrefix+key, data, redisTTL).Err(); err != nil {
			c.logger.Debug().Err(err).Msg("redis set failed")
		}
	}

	c.mu.Lock()
	c.local[key] = entry{data: data, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

func redisSeconds(ttl time.Duration) int64 {
	secs := int64((ttl + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

func (c *Cache) Close() error {
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}

// Package cache provides the tenant-scoped generation cache backing the
// synchronous message path. Keys are namespaced by tenant, so one tenant's
// cached response can never be served to another.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// GenerationCache is an exact-match prompt/response cache in Redis. Any
// Redis failure degrades to a miss; the cache never fails a request.
type GenerationCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewGenerationCache(redisURL string, ttl time.Duration) (*GenerationCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &GenerationCache{
		redis: redis.NewClient(opt),
		ttl:   ttl,
	}, nil
}

func (c *GenerationCache) key(tenantID, model, prompt string) string {
	hash := sha256.Sum256([]byte(model + "\x00" + prompt))
	return fmt.Sprintf("gen:tenant:%s:%x", tenantID, hash)
}

func (c *GenerationCache) Get(ctx context.Context, tenantID, model, prompt string) (string, bool) {
	response, err := c.redis.Get(ctx, c.key(tenantID, model, prompt)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Msg("generation cache read failed (treated as miss)")
		}
		return "", false
	}
	return response, true
}

func (c *GenerationCache) Set(ctx context.Context, tenantID, model, prompt, response string) {
	if err := c.redis.Set(ctx, c.key(tenantID, model, prompt), response, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("generation cache write failed (non-fatal)")
	}
}

func (c *GenerationCache) Close() error {
	return c.redis.Close()
}

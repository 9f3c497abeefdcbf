package config

import (
	"strconv"
	"time"
)

type StorageConfig interface {
	GetDatabaseURL() string
	GetRedisURL() string
	GetGenerationCacheTTL() time.Duration
}

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetDatabaseURL() string {
	return GetEnv("DATABASE_URL", "")
}

// GetRedisURL returns the Redis connection URL for the generation cache.
// An empty value disables caching entirely.
func (Storage) GetRedisURL() string {
	return GetEnv("REDIS_URL", "")
}

func (Storage) GetGenerationCacheTTL() time.Duration {
	seconds, err := strconv.Atoi(GetEnv("GENERATION_CACHE_TTL_SECONDS", "3600"))
	if err != nil || seconds <= 0 {
		seconds = 3600
	}
	return time.Duration(seconds) * time.Second
}

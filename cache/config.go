package cache

import (
	"github.com/goliatone/go-cacheable/internal/cacheinfra"
)

// Config exposes store configuration options for consumers of the cache package.
type Config = cacheinfra.Config

// MemoryConfig configures the in-process sturdyc store.
type MemoryConfig = cacheinfra.MemoryConfig

// RedisConfig configures the Redis store.
type RedisConfig = cacheinfra.RedisConfig

// BoltConfig configures the bbolt file store.
type BoltConfig = cacheinfra.BoltConfig

// ConfigError reports an invalid configuration field.
type ConfigError = cacheinfra.ConfigError

// Store backends accepted by Config.Backend.
const (
	BackendMemory = cacheinfra.BackendMemory
	BackendRedis  = cacheinfra.BackendRedis
	BackendBolt   = cacheinfra.BackendBolt
)

// DefaultConfig returns a Config populated with sensible defaults:
// in-process store, one hour TTL, 100 entries.
func DefaultConfig() Config {
	return cacheinfra.DefaultConfig()
}

// NewStore validates cfg and opens the selected backing store.
func NewStore(cfg Config) (Store, error) {
	return cacheinfra.Open(cfg)
}

// NewCacheService constructs the default cache service implementation using the provided configuration.
func NewCacheService(cfg Config, opts ...Option) (CacheService, error) {
	store, err := NewStore(cfg)
	if err != nil {
		return nil, err
	}
	return NewService(store, opts...), nil
}

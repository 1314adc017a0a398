package cacheinfra

import (
	"time"
)

// Supported store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendBolt   = "bolt"
)

// Config holds the configuration for every store backend.
// Only the section matching Backend is read when a store is built.
type Config struct {
	// Backend selects the store implementation: memory, redis or bolt.
	Backend string `yaml:"backend"`

	// TTL is the store-wide default time-to-live, applied when Set is
	// called without an explicit TTL. Must be greater than 0.
	TTL time.Duration `yaml:"ttl"`

	Memory MemoryConfig `yaml:"memory"`
	Redis  RedisConfig  `yaml:"redis"`
	Bolt   BoltConfig   `yaml:"bolt"`
}

// MemoryConfig configures the in-process sturdyc store.
type MemoryConfig struct {
	// Capacity defines the maximum number of entries that the cache can store.
	// Must be greater than 0.
	Capacity int `yaml:"capacity"`

	// NumShards determines the number of cache shards for concurrent access.
	// Capacity is split evenly between shards, so it must not exceed Capacity.
	NumShards int `yaml:"num_shards"`

	// MaxTTL is the ceiling handed to sturdyc. Entries carry their own expiry
	// and are dropped earlier when their TTL is shorter.
	MaxTTL time.Duration `yaml:"max_ttl"`

	// EvictionPercentage specifies what percentage of entries to evict
	// when a shard reaches its capacity. Must be between 1-100.
	EvictionPercentage int `yaml:"eviction_percentage"`

	// EvictionInterval sets how often sturdyc sweeps for expired entries.
	// Zero value uses the sturdyc default.
	EvictionInterval time.Duration `yaml:"eviction_interval"`
}

// RedisConfig configures the Redis store.
type RedisConfig struct {
	// URL takes precedence over Addr/Password/DB when set (redis://...).
	URL      string `yaml:"url"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	// Prefix namespaces every key as "<prefix>:<key>". It also scopes Reset.
	Prefix string `yaml:"prefix"`

	// AllowFlush lets Reset run FLUSHDB when no Prefix is configured.
	AllowFlush bool `yaml:"allow_flush"`

	// QueryTimeout bounds every round trip. Zero uses DefaultQueryTimeout.
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

// BoltConfig configures the bbolt file store.
type BoltConfig struct {
	Path   string `yaml:"path"`
	Bucket string `yaml:"bucket"`

	// OpenTimeout bounds the wait for the file lock.
	OpenTimeout time.Duration `yaml:"open_timeout"`

	// SweepInterval enables a background purge of expired entries.
	// Zero disables it; expired entries are still dropped on read.
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// DefaultQueryTimeout is used by I/O backed stores when no timeout is set.
const DefaultQueryTimeout = 5 * time.Second

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Backend: BackendMemory,
		TTL:     time.Hour,
		Memory: MemoryConfig{
			Capacity:           100,
			NumShards:          4,
			MaxTTL:             24 * time.Hour,
			EvictionPercentage: 10,
			EvictionInterval:   0, // Use default
		},
		Redis: RedisConfig{
			Addr:         "localhost:6379",
			QueryTimeout: DefaultQueryTimeout,
		},
		Bolt: BoltConfig{
			Path:        "cache.bbolt",
			Bucket:      "cache",
			OpenTimeout: time.Second,
		},
	}
}

// Validate checks if the configuration values are valid.
// Returns an error if any configuration parameter is invalid.
func (c Config) Validate() error {
	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	switch c.Backend {
	case BackendMemory:
		return c.Memory.validate(c.TTL)
	case BackendRedis:
		return c.Redis.validate()
	case BackendBolt:
		return c.Bolt.validate()
	default:
		return &ConfigError{Field: "Backend", Message: "must be one of memory, redis, bolt"}
	}
}

func (c MemoryConfig) validate(ttl time.Duration) error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Memory.Capacity", Message: "must be greater than 0"}
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "Memory.NumShards", Message: "must be greater than 0"}
	}

	if c.NumShards > c.Capacity {
		return &ConfigError{Field: "Memory.NumShards", Message: "must not exceed Capacity"}
	}

	if c.MaxTTL < ttl {
		return &ConfigError{Field: "Memory.MaxTTL", Message: "must be greater than or equal to TTL"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "Memory.EvictionPercentage", Message: "must be between 1 and 100"}
	}

	if c.EvictionInterval < 0 {
		return &ConfigError{Field: "Memory.EvictionInterval", Message: "must be non-negative"}
	}

	return nil
}

func (c RedisConfig) validate() error {
	if c.URL == "" && c.Addr == "" {
		return &ConfigError{Field: "Redis.Addr", Message: "either URL or Addr is required"}
	}
	if c.QueryTimeout < 0 {
		return &ConfigError{Field: "Redis.QueryTimeout", Message: "must be non-negative"}
	}
	return nil
}

func (c BoltConfig) validate() error {
	if c.Path == "" {
		return &ConfigError{Field: "Bolt.Path", Message: "is required"}
	}
	if c.OpenTimeout < 0 {
		return &ConfigError{Field: "Bolt.OpenTimeout", Message: "must be non-negative"}
	}
	if c.SweepInterval < 0 {
		return &ConfigError{Field: "Bolt.SweepInterval", Message: "must be non-negative"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

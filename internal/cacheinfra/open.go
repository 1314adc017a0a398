package cacheinfra

import (
	"context"
	"time"
)

// Backend is the method set shared by every store in this package.
type Backend interface {
	Get(ctx context.Context, key string) (any, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Reset(ctx context.Context) error
	Close() error
}

var (
	_ Backend = (*SturdycStore)(nil)
	_ Backend = (*RedisStore)(nil)
	_ Backend = (*BoltStore)(nil)
)

// Open validates cfg and builds the selected backend.
func Open(cfg Config) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		store Backend
		err   error
	)
	switch cfg.Backend {
	case BackendRedis:
		store, err = OpenRedisStore(cfg.Redis, cfg.TTL)
	case BackendBolt:
		store, err = OpenBoltStore(cfg.Bolt, cfg.TTL)
	default:
		store, err = NewSturdycStore(cfg.Memory, cfg.TTL)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

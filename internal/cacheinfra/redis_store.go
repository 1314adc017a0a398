package cacheinfra

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

const scanBatch = 100

// RedisStore keeps msgpack encoded values in Redis using native key expiry.
type RedisStore struct {
	client     redis.UniversalClient
	cfg        RedisConfig
	ttl        time.Duration
	ownsClient bool
}

// NewRedisStore wraps an existing client. The caller owns the client
// lifecycle, Close does not close it.
func NewRedisStore(client redis.UniversalClient, cfg RedisConfig, ttl time.Duration) *RedisStore {
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = DefaultQueryTimeout
	}
	return &RedisStore{client: client, cfg: cfg, ttl: ttl}
}

// OpenRedisStore builds a client from cfg and owns it.
func OpenRedisStore(cfg RedisConfig, ttl time.Duration) (*RedisStore, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := &redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, errors.Wrap(err, "cache: parse redis url")
		}
		opts = parsed
	}

	store := NewRedisStore(redis.NewClient(opts), cfg, ttl)
	store.ownsClient = true
	return store, nil
}

func (s *RedisStore) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, s.cfg.QueryTimeout)
}

func (s *RedisStore) prefixKey(key string) string {
	if s.cfg.Prefix == "" {
		return key
	}
	return s.cfg.Prefix + ":" + key
}

// Get returns the raw payload as Encoded, or absent on redis.Nil.
func (s *RedisStore) Get(ctx context.Context, key string) (any, bool, error) {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()

	data, err := s.client.Get(qctx, s.prefixKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "cache: redis get %q", key)
	}
	return Encoded(data), true, nil
}

// Set encodes value and writes it with the given TTL.
func (s *RedisStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.ttl
	}
	data, err := encode(value)
	if err != nil {
		return err
	}

	qctx, cancel := s.queryCtx(ctx)
	defer cancel()

	if err := s.client.Set(qctx, s.prefixKey(key), data, ttl).Err(); err != nil {
		return errors.Wrapf(err, "cache: redis set %q", key)
	}
	return nil
}

// Delete removes key. DEL on a missing key is not an error.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()

	if err := s.client.Del(qctx, s.prefixKey(key)).Err(); err != nil {
		return errors.Wrapf(err, "cache: redis del %q", key)
	}
	return nil
}

// Reset deletes every key under the configured prefix. Without a prefix it
// flushes the database only when AllowFlush is set.
func (s *RedisStore) Reset(ctx context.Context) error {
	if s.cfg.Prefix == "" {
		if !s.cfg.AllowFlush {
			return ErrResetNotSupported
		}
		qctx, cancel := s.queryCtx(ctx)
		defer cancel()
		if err := s.client.FlushDB(qctx).Err(); err != nil {
			return errors.Wrap(err, "cache: redis flushdb")
		}
		return nil
	}

	iter := s.client.Scan(ctx, 0, s.cfg.Prefix+":*", scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := s.deleteKeys(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return errors.Wrap(err, "cache: redis scan")
	}
	return s.deleteKeys(ctx, batch)
}

func (s *RedisStore) deleteKeys(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	if err := s.client.Del(qctx, keys...).Err(); err != nil {
		return errors.Wrap(err, "cache: redis del batch")
	}
	return nil
}

// Ping checks connectivity to the server.
func (s *RedisStore) Ping(ctx context.Context) error {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	return s.client.Ping(qctx).Err()
}

// Close closes the client when the store created it.
func (s *RedisStore) Close() error {
	if !s.ownsClient {
		return nil
	}
	return s.client.Close()
}

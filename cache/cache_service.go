package cache

import (
	"context"
	"reflect"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// defaultBatchConcurrency bounds the fan-out of MGet and MSet.
const defaultBatchConcurrency = 8

// Interface assertion to ensure service implements CacheService
var _ CacheService = (*service)(nil)

// service implements CacheService over a Store.
type service struct {
	store       Store
	logger      *zap.Logger
	metrics     *Metrics
	concurrency int
}

// Option configures the service returned by NewService.
type Option func(*service)

// WithLogger sets the logger used for hit/miss/set/delete events and contained failures.
func WithLogger(logger *zap.Logger) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records every operation outcome on m.
func WithMetrics(m *Metrics) Option {
	return func(s *service) { s.metrics = m }
}

// WithBatchConcurrency bounds how many keys MGet and MSet process at once.
func WithBatchConcurrency(n int) Option {
	return func(s *service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewService wraps store with the containment policy.
func NewService(store Store, opts ...Option) CacheService {
	s := &service{
		store:       store,
		logger:      zap.NewNop(),
		concurrency: defaultBatchConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the cached value for key. Store failures are reported as a miss.
func (s *service) Get(ctx context.Context, key string) (any, bool) {
	value, found, err := s.store.Get(ctx, key)
	if err != nil {
		s.logger.Error("error getting cache key", zap.String("key", key), zap.Error(err))
		s.metrics.observe("get", "error")
		return nil, false
	}
	if !found {
		s.logger.Debug("cache miss", zap.String("key", key))
		s.metrics.observe("get", "miss")
		return nil, false
	}
	s.logger.Debug("cache hit", zap.String("key", key))
	s.metrics.observe("get", "hit")
	return value, true
}

// Set stores value under key. Store failures are logged and swallowed.
func (s *service) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if err := s.store.Set(ctx, key, value, ttl); err != nil {
		s.logger.Error("error setting cache key", zap.String("key", key), zap.Error(err))
		s.metrics.observe("set", "error")
		return
	}
	s.logger.Debug("cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	s.metrics.observe("set", "ok")
}

// Del removes key. Store failures are logged and swallowed.
func (s *service) Del(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Error("error deleting cache key", zap.String("key", key), zap.Error(err))
		s.metrics.observe("del", "error")
		return
	}
	s.logger.Debug("cache deleted", zap.String("key", key))
	s.metrics.observe("del", "ok")
}

// Reset clears the store. A store that cannot clear is reported as degraded.
func (s *service) Reset(ctx context.Context) {
	err := s.store.Reset(ctx)
	switch {
	case err == nil:
		s.logger.Debug("cache cleared")
		s.metrics.observe("reset", "ok")
	case errors.Is(err, ErrResetNotSupported):
		s.logger.Warn("cache reset not supported by store, entries expire by TTL only", zap.Error(err))
		s.metrics.observe("reset", "unsupported")
	default:
		s.logger.Error("error clearing cache", zap.Error(err))
		s.metrics.observe("reset", "error")
	}
}

// MGet looks every key up independently and returns results in input order.
func (s *service) MGet(ctx context.Context, keys ...string) []Lookup {
	results := make([]Lookup, len(keys))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, key := range keys {
		g.Go(func() error {
			value, found := s.Get(ctx, key)
			results[i] = Lookup{Value: value, Found: found}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// MSet stores every entry independently. There is no atomicity across keys.
func (s *service) MSet(ctx context.Context, entries []Entry) {
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, e := range entries {
		g.Go(func() error {
			s.Set(ctx, e.Key, e.Value, e.TTL)
			return nil
		})
	}
	_ = g.Wait()
}

// Has reports whether Get would find key.
func (s *service) Has(ctx context.Context, key string) bool {
	_, found := s.Get(ctx, key)
	return found
}

// GetOrSet returns the cached value for key or computes it with factory.
// factory runs exactly once on a miss; concurrent misses are not coalesced.
// A factory error is returned unmodified and nothing is written.
func (s *service) GetOrSet(ctx context.Context, key string, factory Factory, ttl time.Duration) (any, error) {
	if value, found := s.Get(ctx, key); found {
		return value, nil
	}

	value, err := factory(ctx)
	if err != nil {
		s.logger.Error("error in getOrSet factory", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	if IsDefined(value) {
		s.Set(ctx, key, value, ttl)
	}
	return value, nil
}

// Close releases the underlying store.
func (s *service) Close() error {
	return s.store.Close()
}

// IsDefined reports whether v carries a value worth caching.
// Untyped nil and nil pointers, maps, slices, channels, funcs and interfaces are not.
func IsDefined(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return !rv.IsNil()
	default:
		return true
	}
}

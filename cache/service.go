package cache

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/goliatone/go-cacheable/internal/cacheinfra"
)

// ErrResetNotSupported is returned by a Store whose medium cannot clear all entries.
var ErrResetNotSupported = cacheinfra.ErrResetNotSupported

// ErrInvalidResultType is returned when a cached value cannot be converted to the requested type.
var ErrInvalidResultType = errors.New("cache: invalid result type")

// Encoded is the msgpack payload returned by serializing stores.
type Encoded = cacheinfra.Encoded

// Store is the key-value contract every backing medium implements.
// Get reports a missing or expired key as (nil, false, nil), never as an error.
// Set with ttl <= 0 applies the store-wide default TTL.
type Store interface {
	Get(ctx context.Context, key string) (any, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Reset(ctx context.Context) error
	Close() error
}

// KeySerializer builds a cache key from a method name + arbitrary args.
// It is responsible for producing stable keys across calls.
type KeySerializer interface {
	SerializeKey(method string, args ...any) string
	SerializeValue(v any) string
}

// Factory computes a value on a GetOrSet miss.
type Factory func(ctx context.Context) (any, error)

// FetchFn is the typed counterpart of Factory used by the generic helpers.
type FetchFn[T any] func(ctx context.Context) (T, error)

// Lookup is one positional result of MGet.
type Lookup struct {
	Value any
	Found bool
}

// Entry is one item of an MSet batch. A zero TTL uses the store default.
type Entry struct {
	Key   string
	Value any
	TTL   time.Duration
}

// CacheService is the fault-contained façade over a Store.
// Store failures are logged and turned into misses or no-ops; the only
// error that reaches callers is a GetOrSet factory failure.
type CacheService interface {
	Get(ctx context.Context, key string) (any, bool)
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	Del(ctx context.Context, key string)
	Reset(ctx context.Context)
	MGet(ctx context.Context, keys ...string) []Lookup
	MSet(ctx context.Context, entries []Entry)
	Has(ctx context.Context, key string) bool
	GetOrSet(ctx context.Context, key string, factory Factory, ttl time.Duration) (any, error)
	Close() error
}

// GetOrSet is a type-safe wrapper around CacheService.GetOrSet.
func GetOrSet[T any](ctx context.Context, service CacheService, key string, fetchFn FetchFn[T], ttl time.Duration) (T, error) {
	result, err := service.GetOrSet(ctx, key, func(ctx context.Context) (any, error) {
		return fetchFn(ctx)
	}, ttl)
	if err != nil {
		var zero T
		return zero, err
	}
	return As[T](result)
}

// As converts a cached value to T. In-process stores hand back the stored
// value and a type assertion is enough; serializing stores hand back an
// Encoded payload which is decoded into T.
func As[T any](value any) (T, error) {
	var zero T
	if value == nil {
		return zero, nil
	}
	if payload, ok := value.(Encoded); ok {
		var out T
		if err := cacheinfra.Decode(payload, &out); err != nil {
			return zero, errors.Mark(err, ErrInvalidResultType)
		}
		return out, nil
	}
	typed, ok := value.(T)
	if !ok {
		return zero, errors.Wrapf(ErrInvalidResultType, "cannot convert %T to %T", value, zero)
	}
	return typed, nil
}

// Package cache provides the key-value cache service and key derivation used
// by cacheable operations.
//
// # Overview
//
// This package exports the pieces the cacheable package builds on:
//
//   - Store: the backing medium contract (memory, Redis, bbolt)
//   - CacheService: a fault-contained façade over a Store
//   - KeySerializer: string forms of arguments for cache keys
//   - Options and KeyDeriver: per-operation cache options and key derivation
//
// # Basic Usage
//
//	svc, err := cache.NewCacheService(cache.DefaultConfig(), cache.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer svc.Close()
//
//	svc.Set(ctx, "user:42", user, 10*time.Minute)
//	value, found := svc.Get(ctx, "user:42")
//
//	user, err := cache.GetOrSet(ctx, svc, "user:42", func(ctx context.Context) (User, error) {
//		return repo.GetByID(ctx, "42")
//	}, 10*time.Minute)
//
// # Containment
//
// The cache is an optimization. A store failure on Get, Has or MGet is logged
// and reported as a miss; a failure on Set, MSet, Del or Reset is logged and
// swallowed. GetOrSet is the one operation that returns an error: when the
// factory fails the error is returned unmodified and nothing is cached.
//
// GetOrSet does not coalesce concurrent misses for the same key. Two callers
// that miss at the same time both run their factory and both write.
//
// # Key Derivation
//
// DeriveKey produces keys in one of two forms:
//
//	Options{Key: "user:{0}"}, args ["42"]     -> "user:42"
//	class "UsersService", method "findAll"    -> "usersservice:findall"
//	class "UsersService", method "findOne", 7 -> "usersservice:findone:7"
//
// Placeholders with no matching argument stay in the key verbatim.
// Before either form, arguments pass through FilterArgs: an explicit
// Options.Params list wins, otherwise contexts, *http.Request,
// http.ResponseWriter and values exposing req/res/request/response fields
// are dropped.
//
// # Typed Values
//
// In-process stores return the stored value as is. Redis and bbolt stores
// return an Encoded msgpack payload. As[T] handles both.
package cache

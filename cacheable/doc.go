// Package cacheable makes operations cacheable by explicit registration.
//
// An operation is identified by a class and method name. Registering it with
// cache.Options records the intent; the Interceptor is the only consumer of
// that record.
//
//	reg := cacheable.NewRegistry()
//	icp := cacheable.NewInterceptor(svc, reg, cacheable.WithLogger(logger))
//
//	findOne := cacheable.Func1(icp, "UsersService", "findOne",
//		cache.Options{Key: "user:{0}", TTL: 10 * time.Minute},
//		repo.findOne,
//	)
//
//	user, err := findOne(ctx, "42") // cached under "user:42"
//
// For every call the interceptor derives the key, and on a hit returns the
// cached value without running the body. On a miss the body runs and a
// defined result is written back in the background. Call Wait to drain
// pending writes before shutdown.
//
// Invalidation is never automatic. Operations that mutate state delete the
// affected keys themselves, Key helps compute them:
//
//	key, _ := icp.Key(cacheable.Invocation{Class: "UsersService", Method: "findOne", Args: []any{id}})
//	svc.Del(ctx, key)
//
// Concurrent misses on the same key all run the body and all write the
// result; the last write wins.
package cacheable

package cacheable

import (
	"context"
	"sync"

	"github.com/goliatone/go-cacheable/cache"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"
)

// Handler runs the body of an intercepted operation.
type Handler func(ctx context.Context) (any, error)

// Invocation identifies one call of an operation.
// Args are the call arguments in declaration order.
type Invocation struct {
	Class  string
	Method string
	Args   []any
}

// Stats is a snapshot of interceptor counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Bypassed  int64
	Populated int64
}

// Interceptor implements the hit/miss protocol for registered operations.
type Interceptor struct {
	service  cache.CacheService
	registry *Registry
	deriver  *cache.KeyDeriver
	logger   *zap.Logger

	pending sync.WaitGroup

	hits      *xsync.Counter
	misses    *xsync.Counter
	bypassed  *xsync.Counter
	populated *xsync.Counter
}

// Option configures an Interceptor.
type Option func(*Interceptor)

// WithLogger sets the interceptor logger.
func WithLogger(logger *zap.Logger) Option {
	return func(i *Interceptor) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithKeySerializer replaces the serializer used for argument string forms.
func WithKeySerializer(serializer cache.KeySerializer) Option {
	return func(i *Interceptor) {
		i.deriver = cache.NewKeyDeriver(serializer)
	}
}

// NewInterceptor creates an interceptor over service. A nil registry gets a
// fresh empty one.
func NewInterceptor(service cache.CacheService, registry *Registry, opts ...Option) *Interceptor {
	if registry == nil {
		registry = NewRegistry()
	}
	i := &Interceptor{
		service:   service,
		registry:  registry,
		deriver:   cache.NewKeyDeriver(nil),
		logger:    zap.NewNop(),
		hits:      xsync.NewCounter(),
		misses:    xsync.NewCounter(),
		bypassed:  xsync.NewCounter(),
		populated: xsync.NewCounter(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Registry returns the registry consulted on every invocation.
func (i *Interceptor) Registry() *Registry {
	return i.registry
}

// Intercept runs next for inv, consulting the cache first when inv is
// registered. A hit returns the cached value and next never runs. On a miss
// next runs; a defined result is written back in the background and
// returned. Errors from next are returned as is and nothing is written.
func (i *Interceptor) Intercept(ctx context.Context, inv Invocation, next Handler) (any, error) {
	opts, ok := i.registry.Lookup(inv.Class, inv.Method)
	if !ok {
		i.bypassed.Inc()
		return next(ctx)
	}

	key := i.deriver.DeriveKey(inv.Class, inv.Method, inv.Args, opts)

	if value, found := i.service.Get(ctx, key); found {
		i.hits.Inc()
		return value, nil
	}
	i.misses.Inc()

	result, err := next(ctx)
	if err != nil {
		return nil, err
	}

	i.populate(ctx, key, result, opts)
	return result, nil
}

// populate writes result under key without blocking the caller. The write
// survives cancellation of ctx.
func (i *Interceptor) populate(ctx context.Context, key string, result any, opts cache.Options) {
	if !cache.IsDefined(result) {
		return
	}

	i.pending.Add(1)
	go func() {
		defer i.pending.Done()
		i.service.Set(context.WithoutCancel(ctx), key, result, opts.TTL)
		i.populated.Inc()
	}()
}

// Key returns the key inv would be cached under, and false when inv is not
// registered. Mutating operations use it to invalidate entries.
func (i *Interceptor) Key(inv Invocation) (string, bool) {
	opts, ok := i.registry.Lookup(inv.Class, inv.Method)
	if !ok {
		return "", false
	}
	return i.deriver.DeriveKey(inv.Class, inv.Method, inv.Args, opts), true
}

// Wait blocks until every background cache write has finished.
func (i *Interceptor) Wait() {
	i.pending.Wait()
}

// Stats returns the current counters.
func (i *Interceptor) Stats() Stats {
	return Stats{
		Hits:      i.hits.Value(),
		Misses:    i.misses.Value(),
		Bypassed:  i.bypassed.Value(),
		Populated: i.populated.Value(),
	}
}

package di

import (
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/goliatone/go-cacheable/cache"
	"github.com/goliatone/go-cacheable/cacheable"
	"github.com/goliatone/go-cacheable/internal/users"
)

// Container provides dependency injection for cache related components.
// It owns a single cache service, the registry of cacheable operations and
// the interceptor that serves them.
type Container struct {
	config        cache.Config
	logger        *zap.Logger
	metrics       *cache.Metrics
	cacheService  cache.CacheService
	keySerializer cache.KeySerializer
	registry      *cacheable.Registry
	interceptor   *cacheable.Interceptor
}

type options struct {
	logger     *zap.Logger
	registerer prometheus.Registerer
	namespace  string
	serializer cache.KeySerializer
}

// Option configures NewContainer.
type Option func(*options)

// WithLogger sets the logger shared by the cache service and interceptor.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics registers cache collectors on reg under namespace.
func WithMetrics(reg prometheus.Registerer, namespace string) Option {
	return func(o *options) {
		o.registerer = reg
		o.namespace = namespace
	}
}

// WithKeySerializer replaces the default key serializer.
func WithKeySerializer(serializer cache.KeySerializer) Option {
	return func(o *options) { o.serializer = serializer }
}

// NewContainer creates a new DI container with the provided cache configuration.
// The store is opened here and released by Close.
func NewContainer(config cache.Config, opts ...Option) (*Container, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.serializer == nil {
		o.serializer = cache.NewDefaultKeySerializer()
	}

	serviceOpts := []cache.Option{cache.WithLogger(o.logger.Named("cache"))}

	var metrics *cache.Metrics
	if o.registerer != nil {
		m, err := cache.NewMetrics(o.namespace, o.registerer)
		if err != nil {
			return nil, errors.Wrap(err, "register cache metrics")
		}
		metrics = m
		serviceOpts = append(serviceOpts, cache.WithMetrics(m))
	}

	cacheService, err := cache.NewCacheService(config, serviceOpts...)
	if err != nil {
		return nil, err
	}

	registry := cacheable.NewRegistry()
	interceptor := cacheable.NewInterceptor(cacheService, registry,
		cacheable.WithLogger(o.logger.Named("cacheable")),
		cacheable.WithKeySerializer(o.serializer),
	)

	return &Container{
		config:        config,
		logger:        o.logger,
		metrics:       metrics,
		cacheService:  cacheService,
		keySerializer: o.serializer,
		registry:      registry,
		interceptor:   interceptor,
	}, nil
}

// NewContainerWithDefaults creates a new DI container using default configuration.
func NewContainerWithDefaults(opts ...Option) (*Container, error) {
	return NewContainer(cache.DefaultConfig(), opts...)
}

// CacheService returns the singleton cache service instance.
func (c *Container) CacheService() cache.CacheService {
	return c.cacheService
}

// KeySerializer returns the singleton key serializer instance.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// Config returns a copy of the cache configuration used by this container.
func (c *Container) Config() cache.Config {
	return c.config
}

// Registry returns the registry of cacheable operations.
func (c *Container) Registry() *cacheable.Registry {
	return c.registry
}

// Interceptor returns the interceptor bound to the cache service.
func (c *Container) Interceptor() *cacheable.Interceptor {
	return c.interceptor
}

// Metrics returns the cache collectors, or nil when metrics are disabled.
func (c *Container) Metrics() *cache.Metrics {
	return c.metrics
}

// NewUsersService wires a users service on top of repo with cached reads.
func (c *Container) NewUsersService(repo users.Repository) *users.Service {
	return users.NewService(repo, c.cacheService, c.interceptor,
		users.WithLogger(c.logger.Named("users")),
	)
}

// Close drains pending cache writes and releases the store.
func (c *Container) Close() error {
	c.interceptor.Wait()
	return c.cacheService.Close()
}

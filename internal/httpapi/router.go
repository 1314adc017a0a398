package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/goliatone/go-cacheable/internal/users"
)

// UserService is the users surface the API exposes.
type UserService interface {
	FindAll(ctx context.Context) ([]*users.User, error)
	FindOne(ctx context.Context, id string) (*users.User, error)
	Create(ctx context.Context, req users.CreateUserRequest) (*users.User, error)
	Update(ctx context.Context, id string, req users.UpdateUserRequest) (*users.User, error)
	Remove(ctx context.Context, id string) error
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Router builds the HTTP handler tree.
type Router struct {
	users   UserService
	logger  *zap.Logger
	metrics http.Handler
	checks  map[string]HealthCheck
}

// Option configures the Router.
type Option func(*Router)

// WithLogger sets the request and error logger.
func WithLogger(logger *zap.Logger) Option {
	return func(rt *Router) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

// WithMetricsHandler mounts h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(rt *Router) { rt.metrics = h }
}

// WithHealthCheck adds a named check to /health.
func WithHealthCheck(name string, check HealthCheck) Option {
	return func(rt *Router) { rt.checks[name] = check }
}

// NewRouter creates a Router over the users service.
func NewRouter(svc UserService, opts ...Option) *Router {
	rt := &Router{
		users:  svc,
		logger: zap.NewNop(),
		checks: make(map[string]HealthCheck),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Setup configures all routes and middleware.
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(rt.requestLogger)

	router.Get("/health", rt.health)
	if rt.metrics != nil {
		router.Handle("/metrics", rt.metrics)
	}

	router.Route("/users", func(r chi.Router) {
		r.Get("/", rt.listUsers)
		r.Post("/", rt.createUser)
		r.Get("/{userID}", rt.getUser)
		r.Patch("/{userID}", rt.updateUser)
		r.Delete("/{userID}", rt.deleteUser)
	})

	return router
}

func (rt *Router) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		rt.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
		)
	})
}

func (rt *Router) health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	results := make(map[string]string, len(rt.checks))
	for name, check := range rt.checks {
		if err := check(r.Context()); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = err.Error()
			continue
		}
		results[name] = "ok"
	}

	body := map[string]any{"status": "ok", "checks": results}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	writeJSON(w, status, body)
}

package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-cacheable/cache"
	"github.com/goliatone/go-cacheable/internal/httpapi"
	"github.com/goliatone/go-cacheable/internal/users"
	"github.com/goliatone/go-cacheable/pkg/di"
)

const healthProbeKey = "health:probe"

func newServeCommand() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the users HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := openDB(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if migrate {
				if err := users.Migrate(ctx, db); err != nil {
					return errors.Wrap(err, "migrate users")
				}
			}

			containerOpts := []di.Option{di.WithLogger(logger)}
			var routerOpts []httpapi.Option

			if cfg.Metrics.Enabled {
				reg := prometheus.NewRegistry()
				reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
				containerOpts = append(containerOpts, di.WithMetrics(reg, cfg.Metrics.Namespace))
				routerOpts = append(routerOpts, httpapi.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
			}

			container, err := di.NewContainer(cfg.Cache, containerOpts...)
			if err != nil {
				return errors.Wrap(err, "build cache")
			}
			defer func() {
				if err := container.Close(); err != nil {
					logger.Warn("error closing cache", zap.Error(err))
				}
			}()

			svc := container.NewUsersService(users.NewRepository(db))

			routerOpts = append(routerOpts,
				httpapi.WithLogger(logger.Named("http")),
				httpapi.WithHealthCheck("database", db.PingContext),
				httpapi.WithHealthCheck("cache", cacheProbe(container.CacheService())),
			)
			handler := httpapi.NewRouter(svc, routerOpts...).Setup()

			server := &http.Server{
				Addr:         cfg.HTTP.Addr,
				Handler:      handler,
				ReadTimeout:  cfg.HTTP.ReadTimeout,
				WriteTimeout: cfg.HTTP.WriteTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("http server listening",
					zap.String("addr", cfg.HTTP.Addr),
					zap.String("cache_backend", cfg.Cache.Backend),
				)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return errors.Wrap(err, "http server")
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", true, "create the schema before serving")
	return cmd
}

// cacheProbe writes and reads back a short lived key. The service contains
// store failures, so a failed round trip shows up as a miss.
func cacheProbe(svc cache.CacheService) httpapi.HealthCheck {
	return func(ctx context.Context) error {
		svc.Set(ctx, healthProbeKey, time.Now().UnixNano(), 10*time.Second)
		if !svc.Has(ctx, healthProbeKey) {
			return errors.New("cache round trip failed")
		}
		return nil
	}
}

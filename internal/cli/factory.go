// Package cli wires configuration into a running gateway for the command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kamiazya/scopes"
	"github.com/kamiazya/scopes/internal/config"
	httpAdapter "github.com/kamiazya/scopes/pkg/adapters/http"
	redisAdapter "github.com/kamiazya/scopes/pkg/adapters/redis"
	"github.com/kamiazya/scopes/pkg/domain"
	"github.com/kamiazya/scopes/pkg/gateway"
	"github.com/kamiazya/scopes/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Runtime is a gateway built from configuration plus the pieces that serve it.
type Runtime struct {
	Gateway  *gateway.Gateway
	Registry *prometheus.Registry
	Streams  *httpAdapter.StreamManager
	Config   *config.Config

	logger  *slog.Logger
	closers []func() error
}

// NewRuntime initializes a gateway with the backend, metrics and hooks named by cfg.
func NewRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{
		Registry: prometheus.NewRegistry(),
		Config:   cfg,
		logger:   logger,
	}
	rt.Registry.MustRegister(collectors.NewGoCollector())

	metrics, err := observability.NewMetrics(rt.Registry)
	if err != nil {
		return nil, fmt.Errorf("registering metrics: %w", err)
	}

	hooks := []domain.LifecycleHooks{metrics.Hooks(), observability.AuditHooks(logger)}
	if cfg.HTTP.Events {
		rt.Streams = httpAdapter.NewStreamManager(logger)
		hooks = append(hooks, rt.Streams.Hooks())
	}

	opts := []scopes.Option{
		scopes.WithLogger(logger),
		scopes.WithTTL(cfg.Idempotency.TTL),
		scopes.WithMaxEntries(cfg.Idempotency.MaxEntries),
		scopes.WithHooks(hooks...),
		scopes.WithEvictionHook(metrics.RecordEvictions),
	}
	if cfg.Gateway.MaxArgumentBytes > 0 {
		opts = append(opts, scopes.WithInterceptors(gateway.ArgumentSizeLimit(cfg.Gateway.MaxArgumentBytes)))
	}
	if cfg.Gateway.ReadOnly {
		opts = append(opts, scopes.WithInterceptors(gateway.ReadOnly()))
	}

	if cfg.Idempotency.Backend == "redis" {
		// Keys outlive the replay window so the index stays authoritative.
		store := redisAdapter.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB,
			redisAdapter.WithPrefix(cfg.Redis.Prefix),
			redisAdapter.WithTTL(2*cfg.Idempotency.TTL),
		)
		if err := store.Client().Ping(ctx).Err(); err != nil {
			store.Close()
			return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Redis.Address, err)
		}
		rt.closers = append(rt.closers, store.Close)
		opts = append(opts, scopes.WithResultStore(store))
		if cfg.Redis.Lock {
			opts = append(opts, scopes.WithLocker(redisAdapter.NewLocker(store.Client(), cfg.Redis.Prefix)))
		}
		logger.Info("Using redis result store", "address", cfg.Redis.Address, "lock", cfg.Redis.Lock)
	}

	gw, err := scopes.New(opts...)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("error initializing gateway: %w", err)
	}
	rt.Gateway = gw
	return rt, nil
}

// HTTPHandler returns the HTTP surface for the runtime.
func (rt *Runtime) HTTPHandler() http.Handler {
	opts := []httpAdapter.Option{httpAdapter.WithLogger(rt.logger)}
	if rt.Config.HTTP.Metrics {
		opts = append(opts, httpAdapter.WithMetricsHandler(promhttp.HandlerFor(rt.Registry, promhttp.HandlerOpts{})))
	}
	if rt.Streams != nil {
		opts = append(opts, httpAdapter.WithStreams(rt.Streams))
	}
	return httpAdapter.NewHandler(rt.Gateway, opts...)
}

// RunSweeper sweeps on the configured interval until ctx is done. It returns nil at once when disabled.
func (rt *Runtime) RunSweeper(ctx context.Context) error {
	interval := rt.Config.Idempotency.SweepInterval
	if interval <= 0 {
		return nil
	}
	rt.logger.Debug("Starting idempotency sweeper", "interval", interval)
	return rt.Gateway.Store().RunSweeper(ctx, interval)
}

// Close releases backend connections.
func (rt *Runtime) Close() error {
	var first error
	for _, c := range rt.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	rt.closers = nil
	return first
}

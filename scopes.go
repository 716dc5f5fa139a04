package scopes

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kamiazya/scopes/internal/logging"
	"github.com/kamiazya/scopes/pkg/adapters/memory"
	"github.com/kamiazya/scopes/pkg/domain"
	"github.com/kamiazya/scopes/pkg/gateway"
	"github.com/kamiazya/scopes/pkg/idempotency"
	"github.com/kamiazya/scopes/pkg/ports"
)

type config struct {
	logger     *slog.Logger
	results    ports.ResultStore
	locker     ports.DistributedLocker
	clock      ports.Clock
	ttl        time.Duration
	maxEntries int
	commands   ports.CommandPort
	queries    ports.QueryPort
	hooks      []domain.LifecycleHooks
	onEvict    idempotency.EvictionHook
	tools      []gateway.Tool
	intercept  []gateway.Interceptor
}

// Option defines a functional option for configuring the gateway.
type Option func(*config)

// WithLogger sets a custom structured logger for the gateway and its store.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithResultStore injects the backend that remembers keyed results (default: in-memory).
func WithResultStore(store ports.ResultStore) Option {
	return func(c *config) {
		c.results = store
	}
}

// WithLocker serializes store access across processes sharing the result store.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(c *config) {
		c.locker = locker
	}
}

// WithClock replaces the time source of the idempotency store.
func WithClock(clock ports.Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithTTL sets how long a keyed result is replayed (default: 10m).
func WithTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.ttl = ttl
	}
}

// WithMaxEntries bounds the number of remembered results (default: 10000).
func WithMaxEntries(n int) Option {
	return func(c *config) {
		c.maxEntries = n
	}
}

// WithPorts injects the scopes application. Without it an in-memory backend is used.
func WithPorts(commands ports.CommandPort, queries ports.QueryPort) Option {
	return func(c *config) {
		c.commands = commands
		c.queries = queries
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks ...domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = append(c.hooks, hooks...)
	}
}

// WithEvictionHook is told about sweeps that removed results.
func WithEvictionHook(hook idempotency.EvictionHook) Option {
	return func(c *config) {
		c.onEvict = hook
	}
}

// WithTools registers extra tools next to the scopes catalog.
func WithTools(tools ...gateway.Tool) Option {
	return func(c *config) {
		c.tools = append(c.tools, tools...)
	}
}

// WithInterceptors adds interceptors that may block calls before they run.
func WithInterceptors(interceptors ...gateway.Interceptor) Option {
	return func(c *config) {
		c.intercept = append(c.intercept, interceptors...)
	}
}

// New builds a gateway exposing the scopes tools with idempotent replay.
func New(opts ...Option) (*gateway.Gateway, error) {
	c := &config{
		ttl:        idempotency.DefaultTTL,
		maxEntries: idempotency.DefaultMaxEntries,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.ttl <= 0 {
		return nil, fmt.Errorf("ttl must be positive, got %s", c.ttl)
	}
	if c.maxEntries < 1 {
		return nil, fmt.Errorf("max entries must be at least 1, got %d", c.maxEntries)
	}
	if (c.commands == nil) != (c.queries == nil) {
		return nil, fmt.Errorf("command and query ports must be provided together")
	}

	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	if c.results == nil {
		c.results = memory.NewResultStore()
	}
	if c.commands == nil {
		backend := memory.NewScopes()
		c.commands, c.queries = backend, backend
	}

	storeOpts := []idempotency.Option{
		idempotency.WithTTL(c.ttl),
		idempotency.WithMaxEntries(c.maxEntries),
		idempotency.WithLogger(c.logger),
	}
	if c.clock != nil {
		storeOpts = append(storeOpts, idempotency.WithClock(c.clock))
	}
	if c.locker != nil {
		storeOpts = append(storeOpts, idempotency.WithLocker(c.locker))
	}
	if c.onEvict != nil {
		storeOpts = append(storeOpts, idempotency.WithEvictionHook(c.onEvict))
	}
	store := idempotency.New(c.results, storeOpts...)

	gw := gateway.New(store,
		gateway.WithLogger(c.logger),
		gateway.WithHooks(c.hooks...),
		gateway.WithTools(gateway.ScopeTools(c.commands, c.queries)...),
		gateway.WithInterceptors(c.intercept...),
	)
	for _, tool := range c.tools {
		if err := gw.Register(tool); err != nil {
			return nil, err
		}
	}
	return gw, nil
}

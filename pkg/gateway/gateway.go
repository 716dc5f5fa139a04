package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kamiazya/scopes/internal/logging"
	"github.com/kamiazya/scopes/pkg/domain"
	"github.com/kamiazya/scopes/pkg/errmap"
	"github.com/kamiazya/scopes/pkg/idempotency"
)

// Gateway is the tool invocation entry point shared by every transport.
type Gateway struct {
	mu    sync.RWMutex
	tools map[string]Tool

	store  *idempotency.Store
	logger *slog.Logger
	hooks  []domain.LifecycleHooks
	now    func() time.Time

	intercept Interceptor
}

// Option configures the Gateway.
type Option func(*Gateway)

// WithLogger configures a logger for the Gateway.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithHooks adds lifecycle hooks. Hooks run in registration order.
func WithHooks(hooks ...domain.LifecycleHooks) Option {
	return func(g *Gateway) {
		g.hooks = append(g.hooks, hooks...)
	}
}

// WithInterceptors adds interceptors. They run in registration order after the tool lookup.
func WithInterceptors(interceptors ...Interceptor) Option {
	return func(g *Gateway) {
		if g.intercept != nil {
			interceptors = append([]Interceptor{g.intercept}, interceptors...)
		}
		g.intercept = MultiInterceptor(interceptors...)
	}
}

// WithTools registers tools at construction.
func WithTools(tools ...Tool) Option {
	return func(g *Gateway) {
		for _, t := range tools {
			g.tools[t.Name] = t
		}
	}
}

// New creates a gateway that remembers results in store.
func New(store *idempotency.Store, opts ...Option) *Gateway {
	g := &Gateway{
		tools:  make(map[string]Tool),
		store:  store,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Register adds a tool. Names must be unique.
func (g *Gateway) Register(tool Tool) error {
	if tool.Name == "" || tool.Handler == nil {
		return fmt.Errorf("tool %q: name and handler are required", tool.Name)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.tools[tool.Name]; exists {
		return fmt.Errorf("tool %q already registered", tool.Name)
	}
	g.tools[tool.Name] = tool
	return nil
}

// Tools returns the registered tools sorted by name.
func (g *Gateway) Tools() []Tool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Tool, 0, len(g.tools))
	for _, t := range g.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Tool returns the tool registered under name.
func (g *Gateway) Tool(name string) (Tool, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	t, ok := g.tools[name]
	return t, ok
}

// Store returns the idempotency store.
func (g *Gateway) Store() *idempotency.Store {
	return g.store
}

// Invoke runs one tool call.
// The returned error is non-nil only for faults: unstructured tool errors,
// idempotency backend failures, and cancellation.
func (g *Gateway) Invoke(ctx context.Context, req domain.ToolRequest) (domain.ToolResponse, error) {
	event := &domain.InvocationEvent{
		Timestamp: g.now(),
		RequestID: uuid.NewString(),
		ToolName:  req.ToolName,
		Keyed:     req.IdempotencyKey != "",
	}
	logger := g.logger.With("request_id", event.RequestID, "tool", req.ToolName)
	g.fire(ctx, event, true)

	env, err := g.invoke(ctx, logger, req, event)
	event.Duration = g.now().Sub(event.Timestamp)
	if err != nil {
		event.Outcome = domain.OutcomeFault
		event.Err = err
		g.fire(ctx, event, false)
		return domain.ToolResponse{}, err
	}

	event.Code = env.Code
	g.fire(ctx, event, false)
	return Respond(env), nil
}

func (g *Gateway) invoke(ctx context.Context, logger *slog.Logger, req domain.ToolRequest, event *domain.InvocationEvent) (domain.Envelope, error) {
	tool, ok := g.Tool(req.ToolName)
	if !ok {
		logger.Debug("Unknown tool")
		event.Outcome = domain.OutcomeError
		return errmap.ErrorResult("unknown tool: "+req.ToolName, domain.CodeMethodNotFound), nil
	}

	args := req.Arguments
	if args == nil {
		args = domain.Arguments{}
	}

	if g.intercept != nil {
		allowed, blocked, err := g.intercept(ctx, tool, domain.ToolRequest{ToolName: req.ToolName, Arguments: args, IdempotencyKey: req.IdempotencyKey})
		if err != nil {
			logger.Error("Interceptor failed", "err", err)
			return domain.Envelope{}, fmt.Errorf("interceptor: %w", err)
		}
		if !allowed {
			logger.Info("Call blocked by interceptor")
			event.Outcome = domain.OutcomeRejected
			return blocked, nil
		}
	}

	if req.IdempotencyKey != "" {
		cached, hit, err := g.store.Check(ctx, req.ToolName, args, req.IdempotencyKey)
		if err != nil {
			logger.Error("Idempotency check failed", "err", err)
			return domain.Envelope{}, fmt.Errorf("idempotency check: %w", err)
		}
		if hit {
			if !idempotency.ValidKey(req.IdempotencyKey) {
				event.Outcome = domain.OutcomeRejected
			} else {
				logger.Debug("Served cached result")
				event.Outcome = domain.OutcomeCacheHit
			}
			return cached, nil
		}
		logger.Debug("Cache miss")
	}

	env, err := g.execute(ctx, tool, args)
	if err != nil {
		logger.Error("Tool failed", "err", err)
		return domain.Envelope{}, err
	}
	if err := ctx.Err(); err != nil {
		logger.Warn("Invocation cancelled, result not stored", "err", err)
		return domain.Envelope{}, err
	}

	if env.IsError {
		event.Outcome = domain.OutcomeError
	} else {
		event.Outcome = domain.OutcomeSuccess
	}

	if req.IdempotencyKey != "" {
		if err := g.store.Save(ctx, req.ToolName, args, env, req.IdempotencyKey); err != nil {
			// The tool already ran; the caller still gets its result.
			logger.Error("Failed to store result", "err", err)
		} else {
			logger.Info("Stored result", "is_error", env.IsError)
		}
	}
	return env, nil
}

func (g *Gateway) execute(ctx context.Context, tool Tool, args domain.Arguments) (domain.Envelope, error) {
	payload, err := tool.Handler(ctx, args)
	if err == nil {
		return errmap.SuccessResult(payload), nil
	}

	if contractErr, ok := domain.AsContractError(err); ok {
		return errmap.MapContractError(contractErr), nil
	}
	return domain.Envelope{}, fmt.Errorf("tool %s: %w", tool.Name, err)
}

func (g *Gateway) fire(ctx context.Context, event *domain.InvocationEvent, start bool) {
	for _, h := range g.hooks {
		if start && h.OnInvoke != nil {
			h.OnInvoke(ctx, event)
		}
		if !start && h.OnComplete != nil {
			h.OnComplete(ctx, event)
		}
	}
}

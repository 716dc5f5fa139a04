package observability

import (
	"context"
	"log/slog"

	"github.com/kamiazya/scopes/pkg/domain"
)

// AuditHooks logs the start and outcome of every invocation.
func AuditHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnInvoke: func(ctx context.Context, e *domain.InvocationEvent) {
			logger.DebugContext(ctx, "tool_invoke",
				"request_id", e.RequestID,
				"tool", e.ToolName,
				"keyed", e.Keyed,
			)
		},
		OnComplete: func(ctx context.Context, e *domain.InvocationEvent) {
			attrs := []any{
				"request_id", e.RequestID,
				"tool", e.ToolName,
				"outcome", e.Outcome,
				"duration", e.Duration,
			}
			if e.Code != nil {
				attrs = append(attrs, "code", *e.Code)
			}
			if e.Err != nil {
				attrs = append(attrs, "err", e.Err)
				logger.WarnContext(ctx, "tool_complete", attrs...)
				return
			}
			logger.InfoContext(ctx, "tool_complete", attrs...)
		},
	}
}

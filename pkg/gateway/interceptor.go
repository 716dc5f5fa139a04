package gateway

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kamiazya/scopes/pkg/canonical"
	"github.com/kamiazya/scopes/pkg/domain"
	"github.com/kamiazya/scopes/pkg/errmap"
)

// Interceptor can block a call before the result store is consulted.
// It returns true if execution should proceed, or false with the envelope to answer.
// Blocked calls are never stored.
type Interceptor func(ctx context.Context, tool Tool, req domain.ToolRequest) (bool, domain.Envelope, error)

// MultiInterceptor chains multiple interceptors. The first block wins.
func MultiInterceptor(interceptors ...Interceptor) Interceptor {
	return func(ctx context.Context, tool Tool, req domain.ToolRequest) (bool, domain.Envelope, error) {
		for _, interceptor := range interceptors {
			allowed, env, err := interceptor(ctx, tool, req)
			if err != nil {
				return false, domain.Envelope{}, err
			}
			if !allowed {
				return false, env, nil
			}
		}
		return true, domain.Envelope{}, nil
	}
}

// ArgumentSizeLimit blocks calls whose canonical arguments are longer than maxBytes.
func ArgumentSizeLimit(maxBytes int) Interceptor {
	return func(_ context.Context, _ Tool, req domain.ToolRequest) (bool, domain.Envelope, error) {
		n := len(canonical.Canonicalize(req.Arguments))
		if n <= maxBytes {
			return true, domain.Envelope{}, nil
		}
		return false, errmap.MapContractError(domain.ValidationFailure{
			Field:      "arguments",
			Value:      strconv.Itoa(n),
			Constraint: fmt.Sprintf("at most %d bytes", maxBytes),
		}), nil
	}
}

// ReadOnly blocks command tools.
func ReadOnly() Interceptor {
	return func(_ context.Context, tool Tool, _ domain.ToolRequest) (bool, domain.Envelope, error) {
		if tool.Kind != KindCommand {
			return true, domain.Envelope{}, nil
		}
		return false, errmap.ErrorResult("tool "+tool.Name+" is disabled: gateway is read-only", domain.CodeBusinessConstraint), nil
	}
}

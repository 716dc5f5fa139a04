package gateway_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kamiazya/scopes/internal/testutils"
	"github.com/kamiazya/scopes/pkg/adapters/memory"
	"github.com/kamiazya/scopes/pkg/domain"
	"github.com/kamiazya/scopes/pkg/gateway"
	"github.com/kamiazya/scopes/pkg/idempotency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntercepted(t *testing.T, interceptors ...gateway.Interceptor) (*gateway.Gateway, *testutils.CountingPorts, *idempotency.Store) {
	t.Helper()
	backend := memory.NewScopes()
	counting := testutils.NewCountingPorts(backend, backend)
	store := idempotency.New(memory.NewResultStore())
	gw := gateway.New(store,
		gateway.WithTools(gateway.ScopeTools(counting, counting)...),
		gateway.WithInterceptors(interceptors...),
	)
	return gw, counting, store
}

func TestInterceptor_ArgumentSizeLimit(t *testing.T) {
	gw, counting, store := newIntercepted(t, gateway.ArgumentSizeLimit(64))
	ctx := context.Background()

	resp, err := gw.Invoke(ctx, domain.ToolRequest{
		ToolName:       "scopes.create",
		Arguments:      domain.Arguments{"title": domain.String(strings.Repeat("x", 100))},
		IdempotencyKey: key,
	})
	require.NoError(t, err)
	body := decodeError(t, resp)
	assert.Equal(t, domain.CodeInvalidParams, body.Code)
	assert.Equal(t, "InputError.ValidationFailure", body.Details["errorType"])
	assert.Zero(t, counting.Total())

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "blocked calls are not stored")

	resp, err = gw.Invoke(ctx, domain.ToolRequest{ToolName: "scopes.create", Arguments: domain.Arguments{"title": domain.String("ok")}})
	require.NoError(t, err)
	assert.False(t, resp.IsError)
}

func TestInterceptor_ReadOnly(t *testing.T) {
	gw, counting, _ := newIntercepted(t, gateway.ReadOnly())
	ctx := context.Background()

	resp, err := gw.Invoke(ctx, domain.ToolRequest{ToolName: "scopes.create", Arguments: domain.Arguments{"title": domain.String("A")}})
	require.NoError(t, err)
	assert.Equal(t, domain.CodeBusinessConstraint, decodeError(t, resp).Code)

	resp, err = gw.Invoke(ctx, domain.ToolRequest{ToolName: "scopes.roots"})
	require.NoError(t, err)
	assert.False(t, resp.IsError)
	assert.Equal(t, 1, counting.Calls("ListRootScopes"))
}

func TestInterceptor_ErrorIsFault(t *testing.T) {
	boom := errors.New("policy store down")
	failing := func(context.Context, gateway.Tool, domain.ToolRequest) (bool, domain.Envelope, error) {
		return false, domain.Envelope{}, boom
	}
	gw, _, _ := newIntercepted(t, gateway.ReadOnly(), failing)

	// ReadOnly lets queries through, so the failing interceptor runs.
	_, err := gw.Invoke(context.Background(), domain.ToolRequest{ToolName: "scopes.roots"})
	assert.ErrorIs(t, err, boom)
}

package gateway_test

import (
	"testing"

	"github.com/kamiazya/scopes/pkg/domain"
	"github.com/kamiazya/scopes/pkg/errmap"
	"github.com/kamiazya/scopes/pkg/gateway"
	"github.com/stretchr/testify/assert"
)

func TestRespond(t *testing.T) {
	t.Run("success content is the payload", func(t *testing.T) {
		resp := gateway.Respond(errmap.SuccessResult(`{"b":1, "a":2}`))
		assert.Equal(t, domain.ToolResponse{IsError: false, Content: `{"b":1, "a":2}`}, resp)
	})

	t.Run("error content is canonical", func(t *testing.T) {
		resp := gateway.Respond(errmap.MapContractError(domain.AliasNotFound{Alias: "quiet-river"}))
		assert.True(t, resp.IsError)
		assert.Equal(t,
			`{"code":-32001,"details":{"alias":"quiet-river","errorType":"BusinessError.AliasNotFound","retryable":false},"message":"alias 'quiet-river' not found"}`,
			resp.Content)
	})

	t.Run("errors without details", func(t *testing.T) {
		resp := gateway.Respond(errmap.ErrorResult("boom"))
		assert.Equal(t, `{"code":-32000,"details":{},"message":"boom"}`, resp.Content)
	})
}

package gateway

import (
	"github.com/kamiazya/scopes/pkg/canonical"
	"github.com/kamiazya/scopes/pkg/domain"
)

// Respond serializes an envelope for transports.
// Success content is the payload itself. Error content is the canonical JSON
// object {"code","details","message"}, so a replayed envelope is byte-identical.
func Respond(env domain.Envelope) domain.ToolResponse {
	if !env.IsError {
		return domain.ToolResponse{IsError: false, Content: env.Message}
	}

	code := domain.CodeServerError
	if c, ok := env.CodeValue(); ok {
		code = c
	}
	details := domain.Object{}
	for k, v := range env.Details {
		details[k] = v
	}

	body := domain.Object{
		"code":    domain.IntValue(int64(code)),
		"details": details,
		"message": domain.String(env.Message),
	}
	return domain.ToolResponse{IsError: true, Content: canonical.Encode(body)}
}

package gateway

import (
	"context"

	"github.com/kamiazya/scopes/pkg/domain"
)

// Kind tells whether a tool changes state.
type Kind string

const (
	KindCommand Kind = "command"
	KindQuery   Kind = "query"
)

// Parameter types understood by the transports.
const (
	TypeString  = "string"
	TypeBoolean = "boolean"
	TypeInteger = "integer"
)

// Param describes one tool argument.
type Param struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Default     any    `json:"default,omitempty"`
}

// Handler runs a tool and returns its serialized success payload.
// A domain.ContractError is a structured failure; any other error is a fault.
type Handler func(ctx context.Context, args domain.Arguments) (string, error)

// Tool is a named operation exposed by the gateway.
type Tool struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Kind        Kind    `json:"kind"`
	Params      []Param `json:"params"`
	Handler     Handler `json:"-"`
}

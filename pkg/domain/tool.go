package domain

import "time"

// ToolRequest is a single tool invocation as received from a transport.
// An empty IdempotencyKey means the caller did not supply one.
type ToolRequest struct {
	ToolName       string    `json:"toolName"`
	Arguments      Arguments `json:"arguments,omitempty"`
	IdempotencyKey string    `json:"idempotencyKey,omitempty"`
}

// ToolResponse is what transports send back. Content is the serialized Envelope.
type ToolResponse struct {
	IsError bool   `json:"isError"`
	Content string `json:"content"`
}

// StoredResult is an envelope remembered by the idempotency store.
type StoredResult struct {
	Result   Envelope
	StoredAt time.Time
}

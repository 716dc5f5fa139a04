package domain

import (
	"context"
	"time"
)

// Outcome classifies how an invocation finished.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeError    Outcome = "error"
	OutcomeCacheHit Outcome = "cache_hit"
	OutcomeRejected Outcome = "rejected"
	OutcomeFault    Outcome = "fault"
)

// InvocationEvent describes one tool invocation passing through the gateway.
type InvocationEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	RequestID string        `json:"request_id"`
	ToolName  string        `json:"tool_name"`
	Keyed     bool          `json:"keyed"`
	Outcome   Outcome       `json:"outcome,omitempty"`
	Code      *int          `json:"code,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Err       error         `json:"-"`
}

// LifecycleHooks defines callbacks for gateway observability.
// OnInvoke fires before the cache check, OnComplete once the outcome is known.
type LifecycleHooks struct {
	OnInvoke   func(context.Context, *InvocationEvent)
	OnComplete func(context.Context, *InvocationEvent)
}

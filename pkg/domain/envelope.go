package domain

// Stable machine codes carried by error envelopes.
// They live in the JSON-RPC server range so MCP clients can surface them unchanged.
const (
	CodeServerError           = -32000
	CodeNotFound              = -32001
	CodeDuplicate             = -32002
	CodeHierarchyViolation    = -32003
	CodeStateConflict         = -32004
	CodeBusinessConstraint    = -32005
	CodeAliasGeneration       = -32006
	CodeInfrastructure        = -32007
	CodeDataInconsistency     = -32008
	CodeInvalidIdempotencyKey = -32010
	CodeMethodNotFound        = -32601
	CodeInvalidParams         = -32602
)

// Envelope is the uniform result of a tool invocation.
// Build it with NewSuccessEnvelope or NewErrorEnvelope and treat it as read-only afterwards.
type Envelope struct {
	IsError bool
	Code    *int
	Message string
	Details map[string]Value
}

// NewSuccessEnvelope wraps an opaque serialized payload.
func NewSuccessEnvelope(content string) Envelope {
	return Envelope{Message: content}
}

// NewErrorEnvelope builds an error envelope with a stable code.
func NewErrorEnvelope(code int, message string, details map[string]Value) Envelope {
	return Envelope{
		IsError: true,
		Code:    &code,
		Message: message,
		Details: details,
	}
}

// CodeValue returns the envelope code, if any.
func (e Envelope) CodeValue() (int, bool) {
	if e.Code == nil {
		return 0, false
	}
	return *e.Code, true
}

// ErrorType returns the "errorType" detail, or "" if the envelope has none.
func (e Envelope) ErrorType() string {
	if s, ok := e.Details[DetailErrorType].(String); ok {
		return string(s)
	}
	return ""
}

// Detail keys shared by every error envelope.
const (
	DetailErrorType = "errorType"
	DetailRetryable = "retryable"
)

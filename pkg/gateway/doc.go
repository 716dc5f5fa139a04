/*
Package gateway routes tool invocations from a transport to the scopes ports.

Every call follows the same path: look up the tool, consult the idempotency store
when the caller supplied a key, run the tool, turn a structured failure into an error
envelope, remember the envelope, and serialize it. Transports (MCP, HTTP, CLI) only
convert their wire format to a domain.ToolRequest and back.

Structured failures (domain.ContractError) always become envelopes. Any other error is
a fault: it is logged, never stored, and returned to the transport as a Go error.
*/
package gateway

/*
Package domain contains the core models shared by every layer of the Scopes tool gateway.

It is kept free of I/O and persistence concerns so that transports, stores and the
business ports can all depend on it without depending on each other.

# Key Entities

  - Value: a closed, immutable JSON-like sum type (Null, Bool, Number, String, Array, Object).
  - Arguments: the argument map of a single tool invocation.
  - Envelope: the flat success/error wrapper returned by the gateway.
  - ContractError: the sealed taxonomy of structured failures reported by the command and query ports.
  - ToolRequest / ToolResponse: the upstream request and response shapes.
*/
package domain

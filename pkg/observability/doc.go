/*
Package observability provides monitoring for the scopes gateway.

It includes Prometheus metrics fed by gateway lifecycle hooks and idempotency
eviction callbacks, and structured audit logging of every invocation.
*/
package observability

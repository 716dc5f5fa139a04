/*
Package idempotency remembers tool results so that a retried call with the same
idempotency key gets the first result back instead of running again.

Deduplication is opt-in: calls without a key never touch the store. Entries expire
after a TTL and the store never holds more than a fixed number of entries; both bounds
are enforced by a lazy sweep that runs inside every Check and Save.

# Concurrency

Check and Save are serialized through one exclusive section (a mutex, plus an optional
distributed lock when several replicas share a ResultStore). GetOrCompute runs compute
outside that section, so two concurrent misses for the same key both run compute and
the later Save wins. Callers that need at-most-once execution must coordinate upstream.
*/
package idempotency

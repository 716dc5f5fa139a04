/*
Package ports defines the driven ports (interfaces) of the scopes gateway.

These interfaces decouple the gateway core from external implementations, allowing
the idempotency layer to run against different storage backends and the tool catalog
to run against any implementation of the scopes application layer.

# Key Interfaces

  - ResultStore: Persists envelopes remembered by the idempotency store (memory or Redis).
  - DistributedLocker: Extends the idempotency exclusive section across replicas.
  - CommandPort / QueryPort: The business logic reached by the scopes tools.
  - Clock: Time source, replaced by a fake in tests.
*/
package ports

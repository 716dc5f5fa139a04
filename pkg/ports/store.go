package ports

import (
	"context"
	"time"

	"github.com/kamiazya/scopes/pkg/domain"
)

// ResultStore defines the backend of the idempotency store.
// Implementations must be safe for concurrent use; the idempotency store still
// serializes its own access through an exclusive section.
type ResultStore interface {
	// Get retrieves the result stored under key.
	// Returns domain.ErrResultNotFound if nothing is stored.
	Get(ctx context.Context, key string) (domain.StoredResult, error)

	// Put inserts or overwrites the result stored under key.
	Put(ctx context.Context, key string, result domain.StoredResult) error

	// Delete removes the result stored under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Prune removes every result stored before cutoff, then the oldest results
	// until at most maxEntries remain. It reports how many were removed for each reason.
	Prune(ctx context.Context, cutoff time.Time, maxEntries int) (PruneStats, error)

	// Len returns the number of stored results.
	Len(ctx context.Context) (int, error)
}

// PruneStats counts the entries removed by one Prune call.
type PruneStats struct {
	Expired  int
	Capacity int
}

// Total returns the number of removed entries.
func (p PruneStats) Total() int {
	return p.Expired + p.Capacity
}

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kamiazya/scopes/pkg/domain"
	"github.com/kamiazya/scopes/pkg/ports"
)

// ResultStore implements ports.ResultStore in memory.
// Safe for concurrent use. Contents live as long as the process.
type ResultStore struct {
	data map[string]domain.StoredResult
	mu   sync.RWMutex
}

// NewResultStore creates a new in-memory result store.
func NewResultStore() *ResultStore {
	return &ResultStore{
		data: make(map[string]domain.StoredResult),
	}
}

// Get retrieves a stored result.
func (s *ResultStore) Get(ctx context.Context, key string) (domain.StoredResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.data[key]
	if !ok {
		return domain.StoredResult{}, domain.ErrResultNotFound
	}
	// Copy on read so callers can't mutate the stored envelope through shared maps
	return copyResult(result), nil
}

// Put inserts or overwrites a stored result.
func (s *ResultStore) Put(ctx context.Context, key string, result domain.StoredResult) error {
	copied := copyResult(result)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = copied
	return nil
}

// Delete removes a stored result.
func (s *ResultStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Prune removes expired results, then the oldest ones above maxEntries.
func (s *ResultStore) Prune(ctx context.Context, cutoff time.Time, maxEntries int) (ports.PruneStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats ports.PruneStats
	for key, result := range s.data {
		if result.StoredAt.Before(cutoff) {
			delete(s.data, key)
			stats.Expired++
		}
	}

	excess := len(s.data) - maxEntries
	if excess <= 0 {
		return stats, nil
	}

	keys := make([]string, 0, len(s.data))
	for key := range s.data {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := s.data[keys[i]].StoredAt, s.data[keys[j]].StoredAt
		if a.Equal(b) {
			return keys[i] < keys[j]
		}
		return a.Before(b)
	})
	for _, key := range keys[:excess] {
		delete(s.data, key)
		stats.Capacity++
	}
	return stats, nil
}

// Len returns the number of stored results.
func (s *ResultStore) Len(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data), nil
}

func copyResult(r domain.StoredResult) domain.StoredResult {
	env := r.Result
	if env.Code != nil {
		code := *env.Code
		env.Code = &code
	}
	if env.Details != nil {
		details := make(map[string]domain.Value, len(env.Details))
		for k, v := range env.Details {
			details[k] = v
		}
		env.Details = details
	}
	return domain.StoredResult{Result: env, StoredAt: r.StoredAt}
}

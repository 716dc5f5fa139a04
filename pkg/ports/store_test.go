package ports_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/kamiazya/scopes/pkg/domain"
	"github.com/kamiazya/scopes/pkg/ports"
	"github.com/stretchr/testify/assert"
)

// MockStore is a minimal ResultStore used to check the contract suite itself.
type MockStore struct {
	mu   sync.Mutex
	data map[string]domain.StoredResult
}

func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string]domain.StoredResult)}
}

func (m *MockStore) Get(ctx context.Context, key string) (domain.StoredResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.data[key]
	if !ok {
		return domain.StoredResult{}, domain.ErrResultNotFound
	}
	return r, nil
}

func (m *MockStore) Put(ctx context.Context, key string, result domain.StoredResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = result
	return nil
}

func (m *MockStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockStore) Prune(ctx context.Context, cutoff time.Time, maxEntries int) (ports.PruneStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var stats ports.PruneStats
	keys := make([]string, 0, len(m.data))
	for k, r := range m.data {
		if r.StoredAt.Before(cutoff) {
			delete(m.data, k)
			stats.Expired++
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return m.data[keys[i]].StoredAt.Before(m.data[keys[j]].StoredAt) })
	for len(m.data) > maxEntries {
		delete(m.data, keys[0])
		keys = keys[1:]
		stats.Capacity++
	}
	return stats, nil
}

func (m *MockStore) Len(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data), nil
}

func TestResultStore_Contract(t *testing.T) {
	ports.RunResultStoreContract(t, NewMockStore())
}

func TestPruneStats_Total(t *testing.T) {
	assert.Equal(t, 5, ports.PruneStats{Expired: 2, Capacity: 3}.Total())
}

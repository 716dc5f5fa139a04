package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kamiazya/scopes/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunResultStoreContract runs a suite of tests to verify that a ResultStore implementation
// adheres to the defined interface contract. The store must start empty.
func RunResultStoreContract(t *testing.T, store ResultStore) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	code := domain.CodeNotFound

	t.Run("Put and Get", func(t *testing.T) {
		result := domain.StoredResult{
			Result: domain.Envelope{
				IsError: true,
				Code:    &code,
				Message: "scope '01HX' not found",
				Details: map[string]domain.Value{
					"errorType": domain.String("BusinessError.NotFound"),
					"retryable": domain.Bool(false),
					"scopeId":   domain.String("01HX"),
					"parentId":  domain.Null{},
				},
			},
			StoredAt: base,
		}

		require.NoError(t, store.Put(ctx, "contract|put", result), "Put should not return error")

		loaded, err := store.Get(ctx, "contract|put")
		require.NoError(t, err, "Get should not return error")
		assert.True(t, loaded.Result.IsError)
		require.NotNil(t, loaded.Result.Code)
		assert.Equal(t, code, *loaded.Result.Code)
		assert.Equal(t, result.Result.Message, loaded.Result.Message)
		assert.Equal(t, result.Result.Details, loaded.Result.Details)
		assert.True(t, base.Equal(loaded.StoredAt), "StoredAt should survive the round trip")

		require.NoError(t, store.Delete(ctx, "contract|put"))
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, "contract|missing")
		assert.ErrorIs(t, err, domain.ErrResultNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "contract|over", domain.StoredResult{
			Result: domain.NewSuccessEnvelope(`{"v":1}`), StoredAt: base,
		}))
		require.NoError(t, store.Put(ctx, "contract|over", domain.StoredResult{
			Result: domain.NewSuccessEnvelope(`{"v":2}`), StoredAt: base.Add(time.Second),
		}))

		loaded, err := store.Get(ctx, "contract|over")
		require.NoError(t, err)
		assert.False(t, loaded.Result.IsError)
		assert.Nil(t, loaded.Result.Code)
		assert.Equal(t, `{"v":2}`, loaded.Result.Message)

		n, err := store.Len(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n, "overwrite must not add an entry")

		require.NoError(t, store.Delete(ctx, "contract|over"))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "contract|del", domain.StoredResult{
			Result: domain.NewSuccessEnvelope("ok"), StoredAt: base,
		}))
		require.NoError(t, store.Delete(ctx, "contract|del"), "Delete should not return error")

		_, err := store.Get(ctx, "contract|del")
		assert.ErrorIs(t, err, domain.ErrResultNotFound, "Get after Delete should return ErrResultNotFound")
		assert.NoError(t, store.Delete(ctx, "contract|del"), "Deleting twice is not an error")
	})

	t.Run("Prune", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			require.NoError(t, store.Put(ctx, fmt.Sprintf("contract|prune-%d", i), domain.StoredResult{
				Result:   domain.NewSuccessEnvelope("ok"),
				StoredAt: base.Add(time.Duration(i) * time.Minute),
			}))
		}

		// prune-0 is expired; prune-1 is the oldest survivor and goes for capacity.
		stats, err := store.Prune(ctx, base.Add(30*time.Second), 3)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Expired)
		assert.Equal(t, 1, stats.Capacity)

		n, err := store.Len(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		for _, gone := range []string{"contract|prune-0", "contract|prune-1"} {
			_, err := store.Get(ctx, gone)
			assert.ErrorIs(t, err, domain.ErrResultNotFound, gone)
		}
		for _, kept := range []string{"contract|prune-2", "contract|prune-3", "contract|prune-4"} {
			_, err := store.Get(ctx, kept)
			assert.NoError(t, err, kept)
			require.NoError(t, store.Delete(ctx, kept))
		}
	})
}

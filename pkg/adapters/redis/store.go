package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kamiazya/scopes/pkg/canonical"
	"github.com/kamiazya/scopes/pkg/domain"
	"github.com/kamiazya/scopes/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "scopes:idempotency:"

// ResultStore implements ports.ResultStore using Redis.
// Each result is a JSON string; a sorted set scored by storedAt (unix micros)
// indexes them for expiry and capacity eviction.
type ResultStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*ResultStore)

// WithTTL sets a Redis-side expiration on result keys, as a safety net for
// entries whose index record is lost. Zero disables it.
func WithTTL(ttl time.Duration) Option {
	return func(s *ResultStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *ResultStore) {
		s.prefix = prefix
	}
}

// New creates a new Redis result store with options.
func New(address, password string, db int, opts ...Option) *ResultStore {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis result store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *ResultStore {
	store := &ResultStore{
		client: client,
		prefix: DefaultPrefix,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Client returns the underlying client, so a Locker can share the connection.
func (s *ResultStore) Client() *backend.Client {
	return s.client
}

func (s *ResultStore) key(cacheKey string) string {
	return s.prefix + "result:" + cacheKey
}

func (s *ResultStore) indexKey() string {
	return s.prefix + "index"
}

type record struct {
	IsError  bool            `json:"isError"`
	Code     *int            `json:"code,omitempty"`
	Message  string          `json:"message"`
	Details  json.RawMessage `json:"details,omitempty"`
	StoredAt time.Time       `json:"storedAt"`
}

func encodeRecord(result domain.StoredResult) ([]byte, error) {
	rec := record{
		IsError:  result.Result.IsError,
		Code:     result.Result.Code,
		Message:  result.Result.Message,
		StoredAt: result.StoredAt,
	}
	if result.Result.Details != nil {
		// Canonical encoding keeps number literals and nested nulls intact.
		rec.Details = json.RawMessage(canonical.Encode(domain.Object(result.Result.Details)))
	}
	return json.Marshal(rec)
}

func decodeRecord(data string) (domain.StoredResult, error) {
	var rec record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return domain.StoredResult{}, err
	}

	env := domain.Envelope{IsError: rec.IsError, Code: rec.Code, Message: rec.Message}
	if len(rec.Details) > 0 {
		v, err := canonical.ParseValue(string(rec.Details))
		if err != nil {
			return domain.StoredResult{}, err
		}
		obj, ok := v.(domain.Object)
		if !ok {
			return domain.StoredResult{}, fmt.Errorf("details must be an object, got %s", domain.TypeName(v))
		}
		env.Details = obj
	}
	return domain.StoredResult{Result: env, StoredAt: rec.StoredAt}, nil
}

func score(t time.Time) float64 {
	return float64(t.UnixMicro())
}

// Get retrieves a stored result.
func (s *ResultStore) Get(ctx context.Context, cacheKey string) (domain.StoredResult, error) {
	val, err := s.client.Get(ctx, s.key(cacheKey)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.StoredResult{}, domain.ErrResultNotFound
		}
		return domain.StoredResult{}, fmt.Errorf("failed to get from redis: %w", err)
	}

	result, err := decodeRecord(val)
	if err != nil {
		return domain.StoredResult{}, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return result, nil
}

// Put persists the result and indexes it by storedAt.
func (s *ResultStore) Put(ctx context.Context, cacheKey string, result domain.StoredResult) error {
	data, err := encodeRecord(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(cacheKey), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score(result.StoredAt),
		Member: cacheKey,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Delete removes the result and its index entry.
func (s *ResultStore) Delete(ctx context.Context, cacheKey string) error {
	return s.remove(ctx, []string{cacheKey})
}

// Prune removes results stored before cutoff, then the oldest ones above maxEntries.
func (s *ResultStore) Prune(ctx context.Context, cutoff time.Time, maxEntries int) (ports.PruneStats, error) {
	var stats ports.PruneStats

	expired, err := s.client.ZRangeByScore(ctx, s.indexKey(), &backend.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(cutoff.UnixMicro(), 10),
	}).Result()
	if err != nil {
		return stats, fmt.Errorf("failed to scan expired results: %w", err)
	}
	if err := s.remove(ctx, expired); err != nil {
		return stats, err
	}
	stats.Expired = len(expired)

	count, err := s.client.ZCard(ctx, s.indexKey()).Result()
	if err != nil {
		return stats, fmt.Errorf("failed to count results: %w", err)
	}
	excess := count - int64(maxEntries)
	if excess <= 0 {
		return stats, nil
	}

	oldest, err := s.client.ZRange(ctx, s.indexKey(), 0, excess-1).Result()
	if err != nil {
		return stats, fmt.Errorf("failed to scan oldest results: %w", err)
	}
	if err := s.remove(ctx, oldest); err != nil {
		return stats, err
	}
	stats.Capacity = len(oldest)
	return stats, nil
}

// Len returns the number of indexed results.
func (s *ResultStore) Len(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, s.indexKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	return int(n), nil
}

// Close closes the redis client.
func (s *ResultStore) Close() error {
	return s.client.Close()
}

func (s *ResultStore) remove(ctx context.Context, cacheKeys []string) error {
	if len(cacheKeys) == 0 {
		return nil
	}

	keys := make([]string, len(cacheKeys))
	members := make([]any, len(cacheKeys))
	for i, k := range cacheKeys {
		keys[i] = s.key(k)
		members[i] = k
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, keys...)
	pipe.ZRem(ctx, s.indexKey(), members...)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

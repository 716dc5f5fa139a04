package idempotency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kamiazya/scopes/internal/logging"
	"github.com/kamiazya/scopes/pkg/canonical"
	"github.com/kamiazya/scopes/pkg/domain"
	"github.com/kamiazya/scopes/pkg/ports"
)

const (
	// DefaultTTL is how long a stored result is served.
	DefaultTTL = 10 * time.Minute
	// DefaultMaxEntries bounds the number of stored results.
	DefaultMaxEntries = 10000
	// DefaultLockName is the distributed lock key shared by replicas.
	DefaultLockName = "idempotency"

	lockTTL = 30 * time.Second
)

// EvictionHook observes entries removed by a sweep.
type EvictionHook func(ctx context.Context, stats ports.PruneStats)

// Store is the idempotency cache in front of a ResultStore.
type Store struct {
	backend ports.ResultStore

	mu       sync.Mutex              // Exclusive section for Check, Save and sweeps
	locker   ports.DistributedLocker // Optional, extends the section across replicas
	lockName string

	clock      ports.Clock
	ttl        time.Duration
	maxEntries int

	logger  *slog.Logger
	onEvict EvictionHook
}

// Option configures the Store.
type Option func(*Store)

// WithTTL sets how long results are served. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithMaxEntries bounds the number of stored results. Values below 1 are ignored.
func WithMaxEntries(n int) Option {
	return func(s *Store) {
		if n >= 1 {
			s.maxEntries = n
		}
	}
}

// WithClock replaces the time source.
func WithClock(clock ports.Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLocker enables distributed locking around every backend access.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *Store) {
		s.locker = locker
	}
}

// WithLockName sets the distributed lock key. Stores sharing a backend must share the name.
func WithLockName(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.lockName = name
		}
	}
}

// WithLogger configures a logger for the Store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithEvictionHook registers a callback for sweeps that removed entries.
func WithEvictionHook(hook EvictionHook) Option {
	return func(s *Store) {
		s.onEvict = hook
	}
}

// New creates an idempotency store over backend.
func New(backend ports.ResultStore, opts ...Option) *Store {
	s := &Store{
		backend:    backend,
		lockName:   DefaultLockName,
		clock:      ports.SystemClock,
		ttl:        DefaultTTL,
		maxEntries: DefaultMaxEntries,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the configured time to live.
func (s *Store) TTL() time.Duration { return s.ttl }

// MaxEntries returns the configured capacity.
func (s *Store) MaxEntries() int { return s.maxEntries }

// Check looks up a previous result for the call.
// Without a key it always misses. A malformed key is answered with the
// InvalidIdempotencyKey envelope as a hit, without touching the backend.
func (s *Store) Check(ctx context.Context, tool string, args domain.Arguments, key string) (domain.Envelope, bool, error) {
	if key == "" {
		return domain.Envelope{}, false, nil
	}
	if !ValidKey(key) {
		s.logger.Warn("Rejected idempotency key", "tool", tool, "key_length", len(key))
		return InvalidKeyEnvelope(key), true, nil
	}

	cacheKey := canonical.BuildCacheKey(tool, args, key)

	var (
		env domain.Envelope
		hit bool
	)
	err := s.withLock(ctx, func(ctx context.Context) error {
		now := s.clock.Now()
		if err := s.sweepLocked(ctx, now); err != nil {
			return err
		}

		stored, err := s.backend.Get(ctx, cacheKey)
		if errors.Is(err, domain.ErrResultNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load result: %w", err)
		}

		if now.Sub(stored.StoredAt) >= s.ttl {
			if err := s.backend.Delete(ctx, cacheKey); err != nil {
				return fmt.Errorf("failed to delete expired result: %w", err)
			}
			return nil
		}

		env, hit = stored.Result, true
		return nil
	})
	if err != nil {
		return domain.Envelope{}, false, err
	}
	return env, hit, nil
}

// Save remembers env as the result of the call. It is a no-op without a valid key.
func (s *Store) Save(ctx context.Context, tool string, args domain.Arguments, env domain.Envelope, key string) error {
	if key == "" || !ValidKey(key) {
		return nil
	}

	cacheKey := canonical.BuildCacheKey(tool, args, key)

	return s.withLock(ctx, func(ctx context.Context) error {
		now := s.clock.Now()
		if err := s.backend.Put(ctx, cacheKey, domain.StoredResult{Result: env, StoredAt: now}); err != nil {
			return fmt.Errorf("failed to store result: %w", err)
		}
		return s.sweepLocked(ctx, now)
	})
}

// GetOrCompute returns the stored result, or runs compute and stores what it returns.
// compute runs outside the exclusive section; see the package documentation.
// Nothing is stored when compute fails or ctx is done by the time it returns.
func (s *Store) GetOrCompute(
	ctx context.Context,
	tool string,
	args domain.Arguments,
	key string,
	compute func(context.Context) (domain.Envelope, error),
) (domain.Envelope, error) {
	if env, hit, err := s.Check(ctx, tool, args, key); err != nil || hit {
		return env, err
	}

	env, err := compute(ctx)
	if err != nil {
		return domain.Envelope{}, err
	}
	if err := ctx.Err(); err != nil {
		return env, err
	}
	if err := s.Save(ctx, tool, args, env, key); err != nil {
		return env, err
	}
	return env, nil
}

// Sweep runs the expiry and capacity sweep immediately.
func (s *Store) Sweep(ctx context.Context) error {
	return s.withLock(ctx, func(ctx context.Context) error {
		return s.sweepLocked(ctx, s.clock.Now())
	})
}

// Len returns the number of stored results.
func (s *Store) Len(ctx context.Context) (int, error) {
	return s.backend.Len(ctx)
}

// RunSweeper sweeps every interval until ctx is done.
// It returns immediately when interval is not positive.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("Background sweep failed", "err", err)
			}
		}
	}
}

// sweepLocked drops expired entries, then the oldest ones above capacity.
// The caller must hold the exclusive section.
func (s *Store) sweepLocked(ctx context.Context, now time.Time) error {
	stats, err := s.backend.Prune(ctx, now.Add(-s.ttl), s.maxEntries)
	if err != nil {
		return fmt.Errorf("failed to sweep results: %w", err)
	}
	if stats.Total() > 0 {
		s.logger.Debug("Swept idempotency store", "expired", stats.Expired, "capacity", stats.Capacity)
		if s.onEvict != nil {
			s.onEvict(ctx, stats)
		}
	}
	return nil
}

func (s *Store) withLock(ctx context.Context, fn func(context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, s.lockName, lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				s.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"lock", s.lockName,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/threadline/internal/domain"
	"github.com/aryan0dhankhar/threadline/internal/infrastructure/redis"
	"github.com/aryan0dhankhar/threadline/internal/observability/metrics"
	"github.com/aryan0dhankhar/threadline/internal/reliability/circuitbreaker"
)

const revokedKeyPrefix = "threadline:revoked:"

// RedisRevocationStore implements domain.RevocationStore with expiring Redis keys
type RedisRevocationStore struct {
	redis  *redis.Client
	logger *slog.Logger
}

// NewRedisRevocationStore creates a revocation store backed by redisClient
func NewRedisRevocationStore(redisClient *redis.Client, logger *slog.Logger) *RedisRevocationStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisRevocationStore{redis: redisClient, logger: logger}
}

// Revoke marks tokenID as revoked for ttl. A non-positive ttl is a no-op since the token is already dead.
func (r *RedisRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.redis.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	r.logger.Debug("token revoked", slog.String("jti", tokenID), slog.Duration("ttl", ttl))
	return nil
}

// IsRevoked reports whether tokenID was revoked and has not yet aged out
func (r *RedisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	ok, err := r.redis.Exists(ctx, revokedKeyPrefix+tokenID)
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return ok, nil
}

// GuardedRevocationStore fails fast through a circuit breaker when the wrapped store keeps erroring
type GuardedRevocationStore struct {
	store   domain.RevocationStore
	breaker *circuitbreaker.CircuitBreaker
}

// NewGuardedRevocationStore wraps store with breaker. Transitions are logged and exported as
// threadline_circuit_state{dependency=name}.
func NewGuardedRevocationStore(store domain.RevocationStore, breaker *circuitbreaker.CircuitBreaker, name string, logger *slog.Logger) *GuardedRevocationStore {
	if logger == nil {
		logger = slog.Default()
	}
	metrics.SetCircuitState(name, int(breaker.State()))
	breaker.OnStateChange(func(from, to circuitbreaker.State) {
		metrics.SetCircuitState(name, int(to))
		logger.Warn("circuit breaker state changed",
			slog.String("dependency", name),
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})
	return &GuardedRevocationStore{store: store, breaker: breaker}
}

func (g *GuardedRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	return g.breaker.Execute(func() error {
		return g.store.Revoke(ctx, tokenID, ttl)
	})
}

// IsRevoked returns circuitbreaker.ErrOpen while the breaker is open, so
// authentication fails closed instead of waiting on a dead dependency
func (g *GuardedRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var revoked bool
	err := g.breaker.Execute(func() error {
		var err error
		revoked, err = g.store.IsRevoked(ctx, tokenID)
		return err
	})
	return revoked, err
}

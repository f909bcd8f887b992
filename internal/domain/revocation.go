package domain

import (
	"context"
	"time"
)

// RevocationStore records logged-out token ids until the token would have expired anyway
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

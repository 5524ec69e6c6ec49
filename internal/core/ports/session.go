package ports

import (
	"context"
	"time"

	"github.com/psiborg/task-manager/internal/core/domain"
)

// TokenIssuer signs and verifies session tokens.
type TokenIssuer interface {
	Issue(subjectID, email string, role domain.Role) (string, time.Time, error)
	// Verify fails with domain.ErrInvalidCredential or domain.ErrExpiredCredential.
	Verify(token string) (*domain.Claims, error)
}

// RevocationStore records logged-out tokens until they would have expired anyway.
type RevocationStore interface {
	MarkRevoked(ctx context.Context, tokenKey string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenKey string) (bool, error)
}

// CacheStore is the key-value store behind the response cache.
// Get reports a miss with found == false and a nil error.
type CacheStore interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

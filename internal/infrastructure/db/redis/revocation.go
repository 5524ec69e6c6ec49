package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/psiborg/task-manager/internal/core/ports"
)

var _ ports.RevocationStore = (*RevocationList)(nil)

// RevocationList records logged-out tokens backed by Redis.
// Key format: blacklist:<token>
type RevocationList struct {
	client *redis.Client
}

func NewRevocationList(client *redis.Client) *RevocationList {
	return &RevocationList{client: client}
}

// IsRevoked reports whether token has been logged out and not yet expired.
func (r *RevocationList) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

// MarkRevoked records token until ttl elapses.
func (r *RevocationList) MarkRevoked(ctx context.Context, token string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *RevocationList) key(token string) string {
	return "blacklist:" + token
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/psiborg/task-manager/internal/core/domain"
	"github.com/psiborg/task-manager/internal/core/ports"
	"github.com/psiborg/task-manager/internal/pkg/metrics"
)

// SessionGuard admits or rejects a bearer token on every protected request.
type SessionGuard struct {
	tokens  ports.TokenIssuer
	revoked ports.RevocationStore
	log     zerolog.Logger
}

func NewSessionGuard(tokens ports.TokenIssuer, revoked ports.RevocationStore, log zerolog.Logger) *SessionGuard {
	return &SessionGuard{tokens: tokens, revoked: revoked, log: log}
}

// Authenticate resolves token into the caller's claims.
//
// The revocation list is consulted before the signature is checked: a
// logged-out token is still cryptographically valid and its claims must not
// be trusted.
func (g *SessionGuard) Authenticate(ctx context.Context, token string) (*domain.Claims, error) {
	if token == "" {
		metrics.SessionRejectionsTotal.WithLabelValues("missing").Inc()
		return nil, domain.ErrUnauthenticated
	}

	revoked, err := g.revoked.IsRevoked(ctx, token)
	if err != nil {
		metrics.SessionRejectionsTotal.WithLabelValues("store_error").Inc()
		g.log.Error().Err(err).Msg("revocation lookup failed")
		return nil, fmt.Errorf("authenticate: revocation lookup: %w", err)
	}
	if revoked {
		metrics.SessionRejectionsTotal.WithLabelValues("revoked").Inc()
		return nil, domain.ErrRevokedCredential
	}

	claims, err := g.tokens.Verify(token)
	if err != nil {
		reason := "invalid"
		if errors.Is(err, domain.ErrExpiredCredential) {
			reason = "expired"
		}
		metrics.SessionRejectionsTotal.WithLabelValues(reason).Inc()
		return nil, err
	}
	return claims, nil
}

// Authorize passes iff claims is present and its role is in allowed.
// An empty allowed set admits any authenticated caller.
func Authorize(claims *domain.Claims, allowed ...domain.Role) error {
	if claims == nil {
		return domain.ErrUnauthenticated
	}
	if len(allowed) == 0 {
		return nil
	}
	for _, r := range allowed {
		if claims.Role == r {
			return nil
		}
	}
	return domain.ErrForbidden
}

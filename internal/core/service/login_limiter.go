package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/ulule/limiter/v3"

	"github.com/psiborg/task-manager/internal/core/domain"
	"github.com/psiborg/task-manager/internal/core/ports"
)

// LoginPolicy configures the login limiter. Quotas overrides the default
// limit for accounts of a given role; roles in Exempt are never limited.
type LoginPolicy struct {
	Limit  int64
	Window time.Duration
	Quotas map[domain.Role]int64
	Exempt []domain.Role
}

// DefaultLoginPolicy allows three attempts per hour and exempts admins.
func DefaultLoginPolicy() LoginPolicy {
	return LoginPolicy{
		Limit:  3,
		Window: time.Hour,
		Exempt: []domain.Role{domain.RoleAdmin},
	}
}

// LoginAttempt is the claimed identity of a login request.
type LoginAttempt struct {
	Email  string
	Origin string
}

// LoginRateLimiter throttles login attempts per claimed email, or per origin
// when no email was submitted. Counters live in the limiter store.
type LoginRateLimiter struct {
	users    ports.UserRepository
	fallback *limiter.Limiter
	byRole   map[domain.Role]*limiter.Limiter
	exempt   map[domain.Role]struct{}
	log      zerolog.Logger
}

func NewLoginRateLimiter(store limiter.Store, users ports.UserRepository, policy LoginPolicy, log zerolog.Logger) *LoginRateLimiter {
	if policy.Limit <= 0 {
		policy.Limit = DefaultLoginPolicy().Limit
	}
	if policy.Window <= 0 {
		policy.Window = DefaultLoginPolicy().Window
	}

	l := &LoginRateLimiter{
		users:    users,
		fallback: limiter.New(store, limiter.Rate{Period: policy.Window, Limit: policy.Limit}),
		byRole:   make(map[domain.Role]*limiter.Limiter, len(policy.Quotas)),
		exempt:   make(map[domain.Role]struct{}, len(policy.Exempt)),
		log:      log,
	}
	for role, quota := range policy.Quotas {
		l.byRole[role] = limiter.New(store, limiter.Rate{Period: policy.Window, Limit: quota})
	}
	for _, role := range policy.Exempt {
		l.exempt[role] = struct{}{}
	}
	return l
}

// Admit counts one attempt and fails with domain.ErrRateLimited once the
// quota is exhausted. It returns the account behind the claimed email (nil
// when none exists) and the quota state (nil when the account is exempt).
func (l *LoginRateLimiter) Admit(ctx context.Context, at LoginAttempt) (*domain.User, *ports.QuotaState, error) {
	var account *domain.User
	if at.Email != "" {
		u, err := l.users.FindByEmail(ctx, at.Email)
		switch {
		case err == nil:
			account = u
		case !errors.Is(err, domain.ErrUserNotFound):
			l.log.Warn().Err(err).Msg("account lookup failed, applying default login quota")
		}
	}

	lim := l.fallback
	if account != nil {
		if _, ok := l.exempt[account.Role]; ok {
			return account, nil, nil
		}
		if byRole, ok := l.byRole[account.Role]; ok {
			lim = byRole
		}
	}

	key := at.Email
	if key == "" {
		key = at.Origin
	}

	lc, err := lim.Get(ctx, key)
	if err != nil {
		return nil, nil, fmt.Errorf("login limiter: %w", err)
	}
	quota := &ports.QuotaState{Limit: lc.Limit, Remaining: lc.Remaining, Reset: lc.Reset}
	if lc.Reached {
		l.log.Warn().Str("key", key).Int64("limit", lc.Limit).Msg("login quota exhausted")
		return nil, quota, domain.ErrRateLimited
	}
	return account, quota, nil
}

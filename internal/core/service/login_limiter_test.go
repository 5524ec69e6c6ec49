package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/psiborg/task-manager/internal/core/domain"
	"github.com/psiborg/task-manager/internal/core/ports/portstest"
)

func newTestLimiter(users *portstest.Users, policy LoginPolicy) *LoginRateLimiter {
	return NewLoginRateLimiter(memory.NewStore(), users, policy, zerolog.Nop())
}

func TestLoginRateLimiter_QuotaPerEmail(t *testing.T) {
	users := portstest.NewUsers()
	users.Add(domain.User{Username: "u", Email: "u@example.com", Role: domain.RoleUser})
	lim := newTestLimiter(users, DefaultLoginPolicy())
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		account, quota, err := lim.Admit(ctx, LoginAttempt{Email: "u@example.com", Origin: "10.0.0.1"})
		if err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
		if account == nil || account.Username != "u" {
			t.Fatalf("attempt %d: expected resolved account", i)
		}
		if quota.Remaining != int64(3-i) {
			t.Fatalf("attempt %d: expected %d remaining, got %d", i, 3-i, quota.Remaining)
		}
	}

	_, quota, err := lim.Admit(ctx, LoginAttempt{Email: "u@example.com", Origin: "10.0.0.1"})
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("attempt 4: expected ErrRateLimited, got %v", err)
	}
	if quota == nil || quota.Remaining != 0 {
		t.Fatalf("expected exhausted quota, got %+v", quota)
	}

	// Another identity from the same origin has its own counter.
	if _, _, err := lim.Admit(ctx, LoginAttempt{Email: "other@example.com", Origin: "10.0.0.1"}); err != nil {
		t.Fatalf("other email must not share the counter: %v", err)
	}
}

func TestLoginRateLimiter_AdminExempt(t *testing.T) {
	users := portstest.NewUsers()
	users.Add(domain.User{Username: "root", Email: "root@example.com", Role: domain.RoleAdmin})
	lim := newTestLimiter(users, DefaultLoginPolicy())

	for i := 1; i <= 20; i++ {
		account, quota, err := lim.Admit(context.Background(), LoginAttempt{Email: "root@example.com"})
		if err != nil {
			t.Fatalf("attempt %d: admin must never be limited, got %v", i, err)
		}
		if account == nil || account.Role != domain.RoleAdmin || quota != nil {
			t.Fatalf("attempt %d: unexpected result %+v %+v", i, account, quota)
		}
	}
}

func TestLoginRateLimiter_UnknownEmailUsesDefaultQuota(t *testing.T) {
	lim := newTestLimiter(portstest.NewUsers(), DefaultLoginPolicy())
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		account, _, err := lim.Admit(ctx, LoginAttempt{Email: "ghost@example.com"})
		if err != nil || account != nil {
			t.Fatalf("attempt %d: expected admitted unknown account, got %v %v", i, account, err)
		}
	}
	if _, _, err := lim.Admit(ctx, LoginAttempt{Email: "ghost@example.com"}); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestLoginRateLimiter_KeysByOriginWithoutEmail(t *testing.T) {
	lim := newTestLimiter(portstest.NewUsers(), DefaultLoginPolicy())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, _, err := lim.Admit(ctx, LoginAttempt{Origin: "192.0.2.7"}); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}
	if _, _, err := lim.Admit(ctx, LoginAttempt{Origin: "192.0.2.7"}); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited for origin, got %v", err)
	}
	if _, _, err := lim.Admit(ctx, LoginAttempt{Origin: "192.0.2.8"}); err != nil {
		t.Fatalf("different origin must have its own counter: %v", err)
	}
}

func TestLoginRateLimiter_LookupFailureAppliesDefaultQuota(t *testing.T) {
	users := portstest.NewUsers()
	users.Add(domain.User{Username: "root", Email: "root@example.com", Role: domain.RoleAdmin})
	users.Err = errors.New("mongo unavailable")
	lim := newTestLimiter(users, DefaultLoginPolicy())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, _, err := lim.Admit(ctx, LoginAttempt{Email: "root@example.com"}); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}
	if _, _, err := lim.Admit(ctx, LoginAttempt{Email: "root@example.com"}); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("unresolvable account gets the default quota, got %v", err)
	}
}

func TestLoginRateLimiter_PerRoleQuota(t *testing.T) {
	users := portstest.NewUsers()
	users.Add(domain.User{Username: "m", Email: "m@example.com", Role: domain.RoleManager})
	policy := DefaultLoginPolicy()
	policy.Quotas = map[domain.Role]int64{domain.RoleManager: 5}
	lim := newTestLimiter(users, policy)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		if _, _, err := lim.Admit(ctx, LoginAttempt{Email: "m@example.com"}); err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}
	if _, _, err := lim.Admit(ctx, LoginAttempt{Email: "m@example.com"}); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("attempt 6: expected ErrRateLimited, got %v", err)
	}
}

func TestLoginRateLimiter_WindowExpiry(t *testing.T) {
	policy := DefaultLoginPolicy()
	policy.Limit = 1
	policy.Window = 50 * time.Millisecond
	lim := newTestLimiter(portstest.NewUsers(), policy)
	ctx := context.Background()

	if _, _, err := lim.Admit(ctx, LoginAttempt{Email: "x@example.com"}); err != nil {
		t.Fatalf("first attempt: %v", err)
	}
	if _, _, err := lim.Admit(ctx, LoginAttempt{Email: "x@example.com"}); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("second attempt: expected ErrRateLimited, got %v", err)
	}
	time.Sleep(120 * time.Millisecond)
	if _, _, err := lim.Admit(ctx, LoginAttempt{Email: "x@example.com"}); err != nil {
		t.Fatalf("quota should refill after the window: %v", err)
	}
}

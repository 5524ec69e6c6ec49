package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/psiborg/task-manager/internal/core/domain"
	"github.com/psiborg/task-manager/internal/core/ports"
	"github.com/psiborg/task-manager/internal/pkg/metrics"
)

// LoginGate is consulted before any credential check on login.
type LoginGate interface {
	Admit(ctx context.Context, at LoginAttempt) (*domain.User, *ports.QuotaState, error)
}

// AuthService implements registration, login and logout.
type AuthService struct {
	users   ports.UserRepository
	tokens  ports.TokenIssuer
	revoked ports.RevocationStore
	gate    LoginGate
	log     zerolog.Logger
	now     func() time.Time
}

func NewAuthService(
	users ports.UserRepository,
	tokens ports.TokenIssuer,
	revoked ports.RevocationStore,
	gate LoginGate,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:   users,
		tokens:  tokens,
		revoked: revoked,
		gate:    gate,
		log:     log,
		now:     time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("user registered")
	return created, nil
}

// Login runs the rate limiter first, so an exhausted quota is rejected
// before any password hashing happens.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	account, quota, err := s.gate.Admit(ctx, LoginAttempt{Email: in.Email, Origin: in.Origin})
	if err != nil {
		if errors.Is(err, domain.ErrRateLimited) {
			metrics.LoginAttemptsTotal.WithLabelValues("rate_limited").Inc()
			return &ports.LoginResult{Quota: quota}, err
		}
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if account == nil {
		// The gate degrades to the default quota when its lookup fails, so
		// a missing account is confirmed here before it is reported.
		account, err = s.users.FindByEmail(ctx, in.Email)
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginAttemptsTotal.WithLabelValues("unknown_account").Inc()
			return &ports.LoginResult{Quota: quota}, domain.ErrAccountNotFound
		}
		if err != nil {
			metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("login: find account: %w", err)
		}
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(in.Password)) != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_password").Inc()
		return &ports.LoginResult{Quota: quota}, domain.ErrInvalidPassword
	}

	token, _, err := s.tokens.Issue(account.ID, account.Email, account.Role)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", account.ID).Msg("user logged in")
	return &ports.LoginResult{Token: token, User: account, Quota: quota}, nil
}

// Logout adds token to the revocation list for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrUnauthenticated
	}

	revoked, err := s.revoked.IsRevoked(ctx, token)
	if err != nil {
		return fmt.Errorf("logout: revocation lookup: %w", err)
	}
	if revoked {
		return domain.ErrAlreadyLoggedOut
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return err
	}

	ttl := revocationTTL(claims.ExpiresAt, s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoked.MarkRevoked(ctx, token, ttl); err != nil {
		return fmt.Errorf("logout: mark revoked: %w", err)
	}

	metrics.RevocationsTotal.Inc()
	s.log.Info().Str("user_id", claims.SubjectID).Dur("ttl", ttl).Msg("user logged out")
	return nil
}

// revocationTTL is the whole-second remaining validity of a token, never
// negative. A revocation entry must not outlive the token it guards.
func revocationTTL(expiresAt, now time.Time) time.Duration {
	ttl := expiresAt.Sub(now).Truncate(time.Second)
	if ttl < 0 {
		return 0
	}
	return ttl
}

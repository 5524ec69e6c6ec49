package ports

import (
	"context"

	"github.com/psiborg/task-manager/internal/core/domain"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     domain.Role
}

// LoginInput carries a login attempt. Origin is the caller's network address.
type LoginInput struct {
	Email    string
	Password string
	Origin   string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token string
	User  *domain.User
	Quota *QuotaState
}

// QuotaState describes the login quota after an attempt. Nil when the account is exempt.
type QuotaState struct {
	Limit     int64
	Remaining int64
	Reset     int64
}

// AuthService handles registration and the session lifecycle.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
}

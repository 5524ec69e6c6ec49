package ports

import (
	"context"

	"github.com/psiborg/task-manager/internal/core/domain"
)

// UserRepository defines persistence operations for accounts.
type UserRepository interface {
	// Create inserts a new account; a duplicate username or email yields domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindAll returns every account; FindByIDs only those whose ID is in ids.
	FindAll(ctx context.Context) ([]*domain.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
}

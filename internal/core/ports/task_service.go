package ports

import (
	"context"
	"time"

	"github.com/psiborg/task-manager/internal/core/domain"
)

// CreateTaskInput carries a new task. AssignedTo is the assignee's username.
type CreateTaskInput struct {
	Title      string
	AssignedTo string
	Priority   string
	Status     string
	DueDate    *time.Time
}

// UpdateTaskInput carries a partial update; zero values leave fields untouched.
type UpdateTaskInput struct {
	ID         string
	Title      string
	AssignedTo string
	Priority   string
	Status     string
	DueDate    *time.Time
}

// TaskQuery holds the optional list filters exactly as received.
type TaskQuery struct {
	Status   string
	Priority string
}

// TaskService defines task use cases on behalf of an authenticated caller.
type TaskService interface {
	Create(ctx context.Context, caller *domain.Claims, in CreateTaskInput) (*domain.TaskDetail, error)
	Update(ctx context.Context, caller *domain.Claims, in UpdateTaskInput) (*domain.TaskDetail, error)
	Delete(ctx context.Context, caller *domain.Claims, id string) error
	List(ctx context.Context, caller *domain.Claims, q TaskQuery) ([]*domain.TaskDetail, error)
}

// UserService exposes profile reads scoped by the caller's role.
type UserService interface {
	Profile(ctx context.Context, caller *domain.Claims) (*domain.User, error)
	VisibleProfiles(ctx context.Context, caller *domain.Claims) ([]*domain.User, error)
}

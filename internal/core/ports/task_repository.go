package ports

import (
	"context"

	"github.com/psiborg/task-manager/internal/core/domain"
)

// TaskFilter is the conjunctive predicate applied when listing tasks.
// Empty fields do not constrain the result.
type TaskFilter struct {
	CreatedBy  string
	AssignedTo string
	Status     domain.TaskStatus
	Priority   domain.Priority
}

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
	// FindDetail returns a single task with assignee and creator populated.
	FindDetail(ctx context.Context, id string) (*domain.TaskDetail, error)
	// List returns populated tasks matching filter ordered by due date
	// ascending, tasks without a due date last.
	List(ctx context.Context, filter TaskFilter) ([]*domain.TaskDetail, error)
	// AssigneesOf returns the distinct assignee IDs of tasks created by creatorID.
	AssigneesOf(ctx context.Context, creatorID string) ([]string, error)
}

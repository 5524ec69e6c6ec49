package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/psiborg/task-manager/internal/core/domain"
	"github.com/psiborg/task-manager/internal/core/ports"
	"github.com/psiborg/task-manager/internal/pkg/metrics"
)

type TaskService struct {
	tasks ports.TaskRepository
	users ports.UserRepository
	log   zerolog.Logger
	now   func() time.Time
}

func NewTaskService(tasks ports.TaskRepository, users ports.UserRepository, log zerolog.Logger) *TaskService {
	return &TaskService{tasks: tasks, users: users, log: log, now: time.Now}
}

// Create stores a new task created by caller and returns it populated.
func (s *TaskService) Create(ctx context.Context, caller *domain.Claims, in ports.CreateTaskInput) (*domain.TaskDetail, error) {
	if in.Title == "" || in.AssignedTo == "" {
		return nil, fmt.Errorf("%w: title and assignedTo are required", domain.ErrInvalidInput)
	}

	priority := domain.PriorityMedium
	if in.Priority != "" {
		priority = domain.Priority(in.Priority)
		if !priority.Valid() {
			return nil, fmt.Errorf("%w: unknown priority %q", domain.ErrInvalidInput, in.Priority)
		}
	}
	status := domain.StatusPending
	if in.Status != "" {
		status = domain.TaskStatus(in.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, in.Status)
		}
	}

	creator, err := s.validatedCaller(ctx, caller)
	if err != nil {
		return nil, err
	}
	assignee, err := s.assignee(ctx, in.AssignedTo)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	task := &domain.Task{
		Title:      in.Title,
		AssignedTo: assignee.ID,
		CreatedBy:  creator.ID,
		Priority:   priority,
		Status:     status,
		DueDate:    in.DueDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		s.log.Error().Err(err).Msg("failed to create task")
		return nil, err
	}

	metrics.TasksWrittenTotal.WithLabelValues("create").Inc()
	s.log.Info().Str("task_id", task.ID).Str("created_by", creator.ID).Str("assigned_to", assignee.ID).Msg("task created")
	return s.tasks.FindDetail(ctx, task.ID)
}

// Update applies the non-empty fields of in. Unknown priority or status
// values are ignored.
func (s *TaskService) Update(ctx context.Context, caller *domain.Claims, in ports.UpdateTaskInput) (*domain.TaskDetail, error) {
	if _, err := s.validatedCaller(ctx, caller); err != nil {
		return nil, err
	}

	task, err := s.tasks.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if in.Title != "" {
		task.Title = in.Title
	}
	if in.AssignedTo != "" {
		assignee, err := s.assignee(ctx, in.AssignedTo)
		if err != nil {
			return nil, err
		}
		task.AssignedTo = assignee.ID
	}
	if p := domain.Priority(in.Priority); p.Valid() {
		task.Priority = p
	}
	if st := domain.TaskStatus(in.Status); st.Valid() {
		task.Status = st
	}
	if in.DueDate != nil {
		task.DueDate = in.DueDate
	}
	task.UpdatedAt = s.now().UTC()

	if err := s.tasks.Update(ctx, task); err != nil {
		s.log.Error().Err(err).Str("task_id", task.ID).Msg("failed to update task")
		return nil, err
	}

	metrics.TasksWrittenTotal.WithLabelValues("update").Inc()
	s.log.Info().Str("task_id", task.ID).Str("updated_by", caller.SubjectID).Msg("task updated")
	return s.tasks.FindDetail(ctx, task.ID)
}

func (s *TaskService) Delete(ctx context.Context, caller *domain.Claims, id string) error {
	if _, err := s.validatedCaller(ctx, caller); err != nil {
		return err
	}
	if _, err := s.tasks.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}

	metrics.TasksWrittenTotal.WithLabelValues("delete").Inc()
	s.log.Info().Str("task_id", id).Str("deleted_by", caller.SubjectID).Msg("task deleted")
	return nil
}

// List returns the tasks visible to caller.
func (s *TaskService) List(ctx context.Context, caller *domain.Claims, q ports.TaskQuery) ([]*domain.TaskDetail, error) {
	if _, err := s.validatedCaller(ctx, caller); err != nil {
		return nil, err
	}
	filter, err := TaskVisibility(caller, q)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []*domain.TaskDetail{}
	}
	return tasks, nil
}

// validatedCaller loads the account behind caller; a token whose account
// was removed cannot act.
func (s *TaskService) validatedCaller(ctx context.Context, caller *domain.Claims) (*domain.User, error) {
	if caller == nil || caller.SubjectID == "" {
		return nil, domain.ErrUnauthenticated
	}
	u, err := s.users.FindByID(ctx, caller.SubjectID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCaller
		}
		return nil, err
	}
	return u, nil
}

// assignee resolves a username and enforces that admins never hold tasks.
func (s *TaskService) assignee(ctx context.Context, username string) (*domain.User, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, &domain.AssigneeError{Username: username}
		}
		return nil, err
	}
	if u.Role == domain.RoleAdmin {
		return nil, domain.ErrAssigneeIsAdmin
	}
	return u, nil
}

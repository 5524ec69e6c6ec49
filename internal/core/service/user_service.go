package service

import (
	"context"
	"fmt"

	"github.com/psiborg/task-manager/internal/core/domain"
	"github.com/psiborg/task-manager/internal/core/ports"
)

// profileScope loads the accounts a caller of some role may list.
type profileScope func(ctx context.Context, s *UserService, callerID string) ([]*domain.User, error)

var profileScopes = map[domain.Role]profileScope{
	domain.RoleAdmin: func(ctx context.Context, s *UserService, _ string) ([]*domain.User, error) {
		return s.users.FindAll(ctx)
	},
	domain.RoleManager: func(ctx context.Context, s *UserService, id string) ([]*domain.User, error) {
		ids, err := s.tasks.AssigneesOf(ctx, id)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []*domain.User{}, nil
		}
		return s.users.FindByIDs(ctx, ids)
	},
	domain.RoleUser: func(ctx context.Context, s *UserService, id string) ([]*domain.User, error) {
		return s.users.FindByIDs(ctx, []string{id})
	},
}

type UserService struct {
	users ports.UserRepository
	tasks ports.TaskRepository
}

func NewUserService(users ports.UserRepository, tasks ports.TaskRepository) *UserService {
	return &UserService{users: users, tasks: tasks}
}

// Profile returns the caller's own account.
func (s *UserService) Profile(ctx context.Context, caller *domain.Claims) (*domain.User, error) {
	if caller == nil || caller.SubjectID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.users.FindByID(ctx, caller.SubjectID)
}

// VisibleProfiles lists the accounts the caller's role allows it to see:
// everyone for admins, the assignees of their own tasks for managers and
// only themselves for users.
func (s *UserService) VisibleProfiles(ctx context.Context, caller *domain.Claims) ([]*domain.User, error) {
	if caller == nil || caller.SubjectID == "" {
		return nil, domain.ErrUnauthenticated
	}
	scope, ok := profileScopes[caller.Role]
	if !ok {
		return nil, domain.ErrForbidden
	}
	users, err := scope(ctx, s, caller.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

package handler

import (
	"fmt"
	"time"

	"github.com/psiborg/task-manager/internal/core/domain"
)

// --- Auth ---

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strongpassword"`
	Role     string `json:"role" validate:"omitempty,oneof=user manager admin"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userBrief struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type registerResponse struct {
	Message string    `json:"message"`
	User    userBrief `json:"user"`
}

type loginResponse struct {
	Message string    `json:"message"`
	User    userBrief `json:"user"`
	Token   string    `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Users ---

type profileResponse struct {
	Message string       `json:"message"`
	Data    *domain.User `json:"data"`
}

type profilesResponse struct {
	Message string         `json:"message"`
	Users   []*domain.User `json:"users"`
}

// --- Tasks ---

type createTaskRequest struct {
	Title      string `json:"title" validate:"required"`
	AssignedTo string `json:"assignedTo" validate:"required"`
	Priority   string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status     string `json:"status" validate:"omitempty,oneof=pending complete"`
	DueDate    string `json:"dueDate"`
}

// updateTaskRequest leaves priority and status unvalidated: unknown values
// are ignored rather than rejected.
type updateTaskRequest struct {
	ID         string `param:"id" json:"-" validate:"required,mongodb"`
	Title      string `json:"title"`
	AssignedTo string `json:"assignedTo"`
	Priority   string `json:"priority"`
	Status     string `json:"status"`
	DueDate    string `json:"dueDate"`
}

type taskIDParam struct {
	ID string `param:"id" validate:"required,mongodb"`
}

type listTasksRequest struct {
	Status   string `query:"status"`
	Priority string `query:"priority"`
}

type taskResponse struct {
	Message string             `json:"message"`
	Task    *domain.TaskDetail `json:"task"`
}

type taskListResponse struct {
	Message string               `json:"message"`
	Tasks   []*domain.TaskDetail `json:"tasks"`
}

var dueDateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// parseDueDate accepts an RFC 3339 timestamp or a bare date. An empty value
// yields nil.
func parseDueDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: invalid dueDate format", domain.ErrInvalidInput)
}

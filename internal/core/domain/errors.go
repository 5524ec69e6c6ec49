package domain

import (
	"errors"
	"fmt"
)

// Authentication failures (401).
var (
	ErrUnauthenticated   = errors.New("user unauthorized")
	ErrInvalidCredential = errors.New("invalid token")
	ErrExpiredCredential = errors.New("token expired")
	ErrRevokedCredential = errors.New("token is already expired or logged out")
)

// Authorization failures (403).
var (
	ErrForbidden       = errors.New("user is not permitted to perform this action")
	ErrAssigneeIsAdmin = errors.New("tasks cannot be assigned to admin users")
	ErrInvalidCaller   = errors.New("invalid user, operation not allowed")
)

// Lookup failures (404).
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrAssigneeNotFound = errors.New("assigned user not found")
)

// AssigneeError names the username a task could not be assigned to.
type AssigneeError struct {
	Username string
}

func (e *AssigneeError) Error() string {
	return fmt.Sprintf("assigned user '%s' not found", e.Username)
}

func (e *AssigneeError) Unwrap() error { return ErrAssigneeNotFound }

// Request/state failures (400).
var (
	ErrUserExists       = errors.New("user with this email or username already exists")
	ErrAccountNotFound  = errors.New("user does not exist")
	ErrInvalidPassword  = errors.New("invalid email or password")
	ErrAlreadyLoggedOut = errors.New("user already logged out")
	ErrInvalidInput     = errors.New("invalid input")
)

// ErrRateLimited is returned when a login quota is exhausted (429).
var ErrRateLimited = errors.New("too many login attempts, try again after 1 hour")

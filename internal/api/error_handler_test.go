package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/psiborg/task-manager/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"missing token", domain.ErrUnauthenticated, http.StatusUnauthorized, "User Unauthorized"},
		{"revoked", domain.ErrRevokedCredential, http.StatusUnauthorized, "Token is already expired."},
		{"expired", domain.ErrExpiredCredential, http.StatusUnauthorized, "Invalid or expired token"},
		{"wrapped invalid", fmt.Errorf("verify: %w", domain.ErrInvalidCredential), http.StatusUnauthorized, "Invalid or expired token"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "User is not permitted to perform this action"},
		{"admin assignee", domain.ErrAssigneeIsAdmin, http.StatusForbidden, "Tasks cannot be assigned to Admin users"},
		{"removed caller", domain.ErrInvalidCaller, http.StatusForbidden, "Invalid user. Operation not allowed."},
		{"unknown assignee", &domain.AssigneeError{Username: "ghost"}, http.StatusNotFound, "Assigned user 'ghost' not found"},
		{"task", domain.ErrTaskNotFound, http.StatusNotFound, "Task not found"},
		{"duplicate", domain.ErrUserExists, http.StatusBadRequest, "User with this email or username already exists"},
		{"no account", domain.ErrAccountNotFound, http.StatusBadRequest, "User does not exist."},
		{"bad password", domain.ErrInvalidPassword, http.StatusBadRequest, "Invalid email or password"},
		{"logged out", domain.ErrAlreadyLoggedOut, http.StatusBadRequest, "User already logged out"},
		{"invalid input", fmt.Errorf("%w: title and assignedTo are required", domain.ErrInvalidInput), http.StatusBadRequest, "title and assignedTo are required"},
		{"rate limited", domain.ErrRateLimited, http.StatusTooManyRequests, "Too many login attempts. Try again after 1 hour."},
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "No Token in Header"), http.StatusBadRequest, "No Token in Header"},
		{"route not found", echo.ErrNotFound, http.StatusNotFound, "Endpoint not found"},
		{"unexpected", errors.New("connection refused"), http.StatusInternalServerError, "Internal Server Error"},
	}

	handler := NewHTTPErrorHandler(zerolog.Nop())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			handler(tc.err, c)

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Message != tc.msg {
				t.Fatalf("expected %q, got %q", tc.msg, resp.Message)
			}
		})
	}
}

func TestHTTPErrorHandler_CommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.String(http.StatusOK, "done")

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrForbidden, c)

	if rec.Body.String() != "done" {
		t.Fatalf("committed response must not be rewritten: %q", rec.Body.String())
	}
}

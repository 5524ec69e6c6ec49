package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/psiborg/task-manager/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Message string `json:"message"`
}

// statusMessage pairs a sentinel with the status and client message it maps to.
type statusMessage struct {
	err  error
	code int
	msg  string
}

// Order matters: the first match wins.
var knownErrors = []statusMessage{
	{domain.ErrUnauthenticated, http.StatusUnauthorized, "User Unauthorized"},
	{domain.ErrRevokedCredential, http.StatusUnauthorized, "Token is already expired."},
	{domain.ErrExpiredCredential, http.StatusUnauthorized, "Invalid or expired token"},
	{domain.ErrInvalidCredential, http.StatusUnauthorized, "Invalid or expired token"},

	{domain.ErrForbidden, http.StatusForbidden, "User is not permitted to perform this action"},
	{domain.ErrAssigneeIsAdmin, http.StatusForbidden, "Tasks cannot be assigned to Admin users"},
	{domain.ErrInvalidCaller, http.StatusForbidden, "Invalid user. Operation not allowed."},

	{domain.ErrTaskNotFound, http.StatusNotFound, "Task not found"},
	{domain.ErrUserNotFound, http.StatusNotFound, "User not found"},

	{domain.ErrUserExists, http.StatusBadRequest, "User with this email or username already exists"},
	{domain.ErrAccountNotFound, http.StatusBadRequest, "User does not exist."},
	{domain.ErrInvalidPassword, http.StatusBadRequest, "Invalid email or password"},
	{domain.ErrAlreadyLoggedOut, http.StatusBadRequest, "User already logged out"},

	{domain.ErrRateLimited, http.StatusTooManyRequests, "Too many login attempts. Try again after 1 hour."},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"message": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code == http.StatusNotFound && errors.Is(he, echo.ErrNotFound) {
			return http.StatusNotFound, "Endpoint not found"
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var assignee *domain.AssigneeError
	if errors.As(err, &assignee) {
		return http.StatusNotFound, fmt.Sprintf("Assigned user '%s' not found", assignee.Username)
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		return http.StatusBadRequest, strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": ")
	}
	for _, k := range knownErrors {
		if errors.Is(err, k.err) {
			return k.code, k.msg
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, "Internal Server Error"
}

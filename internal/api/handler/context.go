package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/psiborg/task-manager/internal/api/middleware"
	"github.com/psiborg/task-manager/internal/core/domain"
)

// ctxClaims extracts the claims injected by the Session middleware. Their
// absence means the route was mounted without it, which callers treat as
// unauthenticated.
func ctxClaims(c echo.Context) (*domain.Claims, error) {
	claims := middleware.Claims(c)
	if claims == nil || claims.SubjectID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return claims, nil
}

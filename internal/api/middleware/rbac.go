package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/psiborg/task-manager/internal/core/domain"
	"github.com/psiborg/task-manager/internal/core/service"
)

// RBAC enforces role-based access control on top of Session.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := service.Authorize(Claims(c), allowedRoles...); err != nil {
				return err
			}
			return next(c)
		}
	}
}

package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/psiborg/task-manager/internal/core/domain"
)

const (
	claimsKey = "claims"
	tokenKey  = "token"
)

// Authenticator resolves a raw bearer token into claims.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Claims, error)
}

// Session admits requests carrying a valid, unrevoked bearer token and
// injects its claims into the context. Rejections are returned as domain
// errors for the central error handler to render.
func Session(guard Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))

			claims, err := guard.Authenticate(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(claimsKey, claims)
			c.Set(tokenKey, token)
			return next(c)
		}
	}
}

// BearerToken extracts the token from an Authorization header value. A
// missing or malformed header yields "".
func BearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Claims returns the claims injected by Session, or nil.
func Claims(c echo.Context) *domain.Claims {
	claims, _ := c.Get(claimsKey).(*domain.Claims)
	return claims
}

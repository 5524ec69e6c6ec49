package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/psiborg/task-manager/internal/core/ports"
	"github.com/psiborg/task-manager/internal/core/service"
)

type UserHandler struct {
	service ports.UserService
	cache   *service.ResponseCache
}

func NewUserHandler(svc ports.UserService, cache *service.ResponseCache) *UserHandler {
	return &UserHandler{service: svc, cache: cache}
}

// Profile returns the caller's own account.
//
// @Summary      Get own profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /psiborg/user/getUserProfile [get]
func (h *UserHandler) Profile(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	body, err := h.cache.ReadThrough(c.Request().Context(), service.ProfileCacheKey(claims), func(ctx context.Context) (any, error) {
		user, err := h.service.Profile(ctx, claims)
		if err != nil {
			return nil, err
		}
		return profileResponse{Message: "User profile retrieved successfully", Data: user}, nil
	})
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, body)
}

// Profiles lists the accounts the caller's role may see.
//
// @Summary      List profiles
// @Description  Admins see every account, managers the assignees of their tasks and users only themselves.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profilesResponse
// @Failure      401  {object}  messageResponse
// @Failure      403  {object}  messageResponse
// @Router       /psiborg/user/getAllProfiles [get]
func (h *UserHandler) Profiles(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	body, err := h.cache.ReadThrough(c.Request().Context(), service.ProfilesCacheKey(claims), func(ctx context.Context) (any, error) {
		users, err := h.service.VisibleProfiles(ctx, claims)
		if err != nil {
			return nil, err
		}
		return profilesResponse{Message: "Profiles fetched successfully", Users: users}, nil
	})
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, body)
}

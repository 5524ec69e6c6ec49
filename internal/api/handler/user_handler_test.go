package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/psiborg/task-manager/internal/core/domain"
	"github.com/psiborg/task-manager/internal/core/service"
)

type stubUserService struct {
	profileFn  func(ctx context.Context, caller *domain.Claims) (*domain.User, error)
	profilesFn func(ctx context.Context, caller *domain.Claims) ([]*domain.User, error)
}

func (s *stubUserService) Profile(ctx context.Context, caller *domain.Claims) (*domain.User, error) {
	return s.profileFn(ctx, caller)
}

func (s *stubUserService) VisibleProfiles(ctx context.Context, caller *domain.Claims) ([]*domain.User, error) {
	return s.profilesFn(ctx, caller)
}

func TestUserHandler_Profile(t *testing.T) {
	e := newEcho()
	cache, store := newCache()
	caller := &domain.Claims{SubjectID: "bbbbbbbbbbbbbbbbbbbbbbbb", Role: domain.RoleUser}
	h := NewUserHandler(&stubUserService{
		profileFn: func(ctx context.Context, c *domain.Claims) (*domain.User, error) {
			return &domain.User{ID: c.SubjectID, Username: "ursula", PasswordHash: "secret-hash"}, nil
		},
	}, cache)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	if err := authenticated(caller, h.Profile)(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	data, ok := resp["data"].(map[string]any)
	if !ok || data["username"] != "ursula" {
		t.Fatalf("unexpected payload: %s", rec.Body.String())
	}
	if _, leaked := data["password"]; leaked {
		t.Fatalf("password hash must not be returned")
	}
	if _, found, _ := store.Get(context.Background(), service.ProfileCacheKey(caller)); !found {
		t.Fatalf("profile must be cached")
	}
}

func TestUserHandler_Profiles_PerRoleKeys(t *testing.T) {
	e := newEcho()
	cache, store := newCache()
	h := NewUserHandler(&stubUserService{
		profilesFn: func(ctx context.Context, c *domain.Claims) ([]*domain.User, error) {
			return []*domain.User{{ID: c.SubjectID, Username: string(c.Role)}}, nil
		},
	}, cache)

	callers := []*domain.Claims{
		{SubjectID: "cccccccccccccccccccccccc", Role: domain.RoleManager},
		{SubjectID: "cccccccccccccccccccccccc", Role: domain.RoleAdmin},
	}
	for _, caller := range callers {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		if err := authenticated(caller, h.Profiles)(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
	}
	if len(store.Keys()) != 2 {
		t.Fatalf("each role must have its own entry, got %v", store.Keys())
	}
}

func TestUserHandler_Profile_NotFound(t *testing.T) {
	e := newEcho()
	cache, _ := newCache()
	h := NewUserHandler(&stubUserService{
		profileFn: func(ctx context.Context, c *domain.Claims) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}, cache)

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if err := authenticated(manager, h.Profile)(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

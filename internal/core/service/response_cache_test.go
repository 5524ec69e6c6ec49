package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/psiborg/task-manager/internal/core/domain"
	"github.com/psiborg/task-manager/internal/core/ports"
	"github.com/psiborg/task-manager/internal/core/ports/portstest"
)

type listPayload struct {
	Message string   `json:"message"`
	Items   []string `json:"items"`
}

func TestResponseCache_MissThenHit(t *testing.T) {
	store := portstest.NewCache()
	cache := NewResponseCache(store, 0, zerolog.Nop())
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (any, error) {
		calls++
		return listPayload{Message: "ok", Items: []string{"a"}}, nil
	}

	first, err := cache.ReadThrough(ctx, "tasks:k", load)
	if err != nil {
		t.Fatalf("miss: %v", err)
	}
	second, err := cache.ReadThrough(ctx, "tasks:k", load)
	if err != nil {
		t.Fatalf("hit: %v", err)
	}

	if calls != 1 {
		t.Fatalf("expected the loader to run once, ran %d times", calls)
	}
	if string(first) != string(second) || string(first) != `{"message":"ok","items":["a"]}` {
		t.Fatalf("unexpected payloads: %s / %s", first, second)
	}
	if ttl := store.TTL("tasks:k"); ttl != DefaultCacheTTL {
		t.Fatalf("expected ttl %s, got %s", DefaultCacheTTL, ttl)
	}
}

func TestResponseCache_ServesStaleWithinTTL(t *testing.T) {
	store := portstest.NewCache()
	cache := NewResponseCache(store, 0, zerolog.Nop())
	ctx := context.Background()

	status := "pending"
	load := func(context.Context) (any, error) { return map[string]string{"status": status}, nil }

	if _, err := cache.ReadThrough(ctx, "tasks:k", load); err != nil {
		t.Fatalf("ReadThrough: %v", err)
	}
	status = "complete"
	got, _ := cache.ReadThrough(ctx, "tasks:k", load)
	if string(got) != `{"status":"pending"}` {
		t.Fatalf("expected the cached (stale) payload, got %s", got)
	}
}

func TestResponseCache_StoreFailuresDegradeToMiss(t *testing.T) {
	store := portstest.NewCache()
	store.GetErr = errors.New("redis unreachable")
	store.SetErr = errors.New("redis unreachable")
	cache := NewResponseCache(store, 0, zerolog.Nop())

	calls := 0
	load := func(context.Context) (any, error) { calls++; return []int{1, 2}, nil }

	for i := 0; i < 2; i++ {
		got, err := cache.ReadThrough(context.Background(), "tasks:k", load)
		if err != nil {
			t.Fatalf("store failures must not fail the request: %v", err)
		}
		if string(got) != "[1,2]" {
			t.Fatalf("unexpected payload %s", got)
		}
	}
	if calls != 2 {
		t.Fatalf("expected every request to run the loader, got %d", calls)
	}
}

func TestResponseCache_LoadErrorNotCached(t *testing.T) {
	store := portstest.NewCache()
	cache := NewResponseCache(store, 0, zerolog.Nop())
	boom := errors.New("boom")

	if _, err := cache.ReadThrough(context.Background(), "tasks:k", func(context.Context) (any, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}
	if keys := store.Keys(); len(keys) != 0 {
		t.Fatalf("failed loads must not be cached: %v", keys)
	}
}

func TestTasksCacheKey_Format(t *testing.T) {
	caller := &domain.Claims{SubjectID: "64b7f0c2a1b2c3d4e5f60718", Role: domain.RoleManager}

	got := TasksCacheKey(caller, ports.TaskQuery{Status: "pending"})
	want := "tasks:64b7f0c2a1b2c3d4e5f60718:manager:status=pending:priority="
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := ProfileCacheKey(caller); got != "user:profile:64b7f0c2a1b2c3d4e5f60718" {
		t.Fatalf("unexpected profile key %q", got)
	}
	if got := ProfilesCacheKey(caller); got != "user:profiles:64b7f0c2a1b2c3d4e5f60718:manager" {
		t.Fatalf("unexpected profiles key %q", got)
	}
}

func TestTasksCacheKey_Injective(t *testing.T) {
	type input struct {
		id, role, status, priority string
	}
	inputs := []input{
		{"a", "user", "", ""},
		{"b", "user", "", ""},
		{"a", "manager", "", ""},
		{"a", "user", "pending", ""},
		{"a", "user", "", "pending"},
		{"a", "user", "pending", "high"},
		{"a", "user", "high", "pending"},
		// values that would collide under naive concatenation
		{"a", "user", "x:priority=y", ""},
		{"a", "user", "x", "y"},
		{"a:user", "user", "", ""},
		{"a", "user:user", "", ""},
		{"a", "user", "", ":"},
		{"a", "user", "%3A", ""},
		{"a", "user", ":", ""},
	}

	seen := make(map[string]input, len(inputs))
	for _, in := range inputs {
		key := TasksCacheKey(&domain.Claims{SubjectID: in.id, Role: domain.Role(in.role)},
			ports.TaskQuery{Status: in.status, Priority: in.priority})
		if prev, ok := seen[key]; ok {
			t.Fatalf("key %q produced by both %+v and %+v", key, prev, in)
		}
		seen[key] = in
	}

	// Same caller, same query: same key.
	c := &domain.Claims{SubjectID: "a", Role: domain.RoleUser}
	q := ports.TaskQuery{Status: "pending", Priority: "low"}
	if TasksCacheKey(c, q) != TasksCacheKey(c, q) {
		t.Fatalf("key must be deterministic")
	}
}

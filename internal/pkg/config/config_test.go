package config

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.Auth.TokenTTL != 7*24*time.Hour {
		t.Fatalf("expected 7 day token ttl, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Fatalf("expected 5 minute cache ttl, got %s", cfg.Cache.TTL)
	}
	if cfg.RateLimit.LoginLimit != 3 || cfg.RateLimit.LoginWindow != time.Hour {
		t.Fatalf("unexpected login limit %d/%s", cfg.RateLimit.LoginLimit, cfg.RateLimit.LoginWindow)
	}
	if len(cfg.RateLimit.ExemptRoles) != 1 || cfg.RateLimit.ExemptRoles[0] != "admin" {
		t.Fatalf("expected admin to be exempt, got %v", cfg.RateLimit.ExemptRoles)
	}
	if len(cfg.RateLimit.RoleQuotas) != 0 {
		t.Fatalf("expected no role quotas by default, got %v", cfg.RateLimit.RoleQuotas)
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development env by default")
	}
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")

	if _, err := Load(context.Background()); err == nil {
		t.Fatalf("expected error when JWT_SECRET is missing")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("LOGIN_LIMIT", "5")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.RateLimit.LoginLimit != 5 {
		t.Fatalf("expected login limit 5, got %d", cfg.RateLimit.LoginLimit)
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Fatalf("expected 30s cache ttl, got %s", cfg.Cache.TTL)
	}
	if cfg.Redis.DB != 2 {
		t.Fatalf("expected redis db 2, got %d", cfg.Redis.DB)
	}
}

func TestLoad_RoleQuotas(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("LOGIN_ROLE_QUOTAS", "manager:10,user:2")
	t.Setenv("REDIS_POOL_SIZE", "25")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	quotas := cfg.RateLimit.RoleQuotas
	if len(quotas) != 2 || quotas["manager"] != 10 || quotas["user"] != 2 {
		t.Fatalf("unexpected role quotas %v", quotas)
	}
	if cfg.Redis.PoolSize != 25 {
		t.Fatalf("expected redis pool size 25, got %d", cfg.Redis.PoolSize)
	}
}

func TestLoad_RoleQuotasMalformed(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("LOGIN_ROLE_QUOTAS", "manager:lots")

	if _, err := Load(context.Background()); err == nil {
		t.Fatalf("expected error for a non-numeric role quota")
	}
}

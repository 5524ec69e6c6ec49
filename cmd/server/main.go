// @title        Task Manager API
// @version      1.0
// @description  Role-gated task management with revocable JWT sessions.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/psiborg/task-manager/internal/api"
	"github.com/psiborg/task-manager/internal/api/handler"
	"github.com/psiborg/task-manager/internal/core/domain"
	"github.com/psiborg/task-manager/internal/core/service"
	"github.com/psiborg/task-manager/internal/infrastructure/db/mongo"
	"github.com/psiborg/task-manager/internal/infrastructure/db/redis"
	"github.com/psiborg/task-manager/internal/pkg/config"
	"github.com/psiborg/task-manager/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// logger.Init is one-shot and wants the configured level, so use a bare logger here.
		boot := zerolog.New(os.Stderr).With().Timestamp().Str("service", "task-manager").Logger()
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "task-manager",
	})

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongo")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("ensure indexes")
	}

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer func() { _ = rdb.Close() }()

	limiterStore, err := redis.NewLimiterStore(rdb, cfg.RateLimit.Prefix)
	if err != nil {
		log.Fatal().Err(err).Msg("limiter store")
	}

	// --- Core ---
	users := mongo.NewUserRepository(db)
	tasks := mongo.NewTaskRepository(db)
	revocations := redis.NewRevocationList(rdb)
	tokens := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	policy, err := loginPolicy(cfg.RateLimit)
	if err != nil {
		log.Fatal().Err(err).Msg("login policy")
	}
	gate := service.NewLoginRateLimiter(limiterStore, users, policy, logger.Component("login_limiter"))

	e := api.NewRouter(api.Deps{
		Auth:  service.NewAuthService(users, tokens, revocations, gate, logger.Component("auth")),
		Tasks: service.NewTaskService(tasks, users, logger.Component("tasks")),
		Users: service.NewUserService(users, tasks),
		Guard: service.NewSessionGuard(tokens, revocations, logger.Component("session")),
		Cache: service.NewResponseCache(redis.NewResponseStore(rdb), cfg.Cache.TTL, logger.Component("cache")),
		Checks: map[string]handler.DependencyCheck{
			"mongodb": handler.MongoCheck(db),
			"redis":   handler.RedisCheck(rdb),
		},
		Log: log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
	}
}

// loginPolicy maps the rate limit settings onto the limiter policy, rejecting
// unknown role names so a typo cannot silently disable an override.
func loginPolicy(cfg config.RateLimitConfig) (service.LoginPolicy, error) {
	policy := service.LoginPolicy{Limit: cfg.LoginLimit, Window: cfg.LoginWindow}

	for _, name := range cfg.ExemptRoles {
		role := domain.Role(strings.TrimSpace(name))
		if !role.Valid() {
			return policy, fmt.Errorf("LOGIN_EXEMPT_ROLES: unknown role %q", name)
		}
		policy.Exempt = append(policy.Exempt, role)
	}

	if len(cfg.RoleQuotas) > 0 {
		policy.Quotas = make(map[domain.Role]int64, len(cfg.RoleQuotas))
	}
	for name, quota := range cfg.RoleQuotas {
		role := domain.Role(strings.TrimSpace(name))
		if !role.Valid() {
			return policy, fmt.Errorf("LOGIN_ROLE_QUOTAS: unknown role %q", name)
		}
		if quota <= 0 {
			return policy, fmt.Errorf("LOGIN_ROLE_QUOTAS: quota for %s must be positive", role)
		}
		policy.Quotas[role] = quota
	}

	return policy, nil
}

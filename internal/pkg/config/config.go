package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth      AuthConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Mongo     MongoConfig
	Redis     RedisConfig
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,  default=168h"`
}

type CacheConfig struct {
	TTL time.Duration `env:"CACHE_TTL, default=5m"`
}

// RateLimitConfig drives the login limiter. Roles listed in ExemptRoles are
// never limited. RoleQuotas overrides LoginLimit per role, e.g. "manager:10,user:3".
type RateLimitConfig struct {
	LoginLimit  int64            `env:"LOGIN_LIMIT,        default=3"`
	LoginWindow time.Duration    `env:"LOGIN_WINDOW,       default=1h"`
	RoleQuotas  map[string]int64 `env:"LOGIN_ROLE_QUOTAS"`
	ExemptRoles []string         `env:"LOGIN_EXEMPT_ROLES, default=admin"`
	Prefix      string           `env:"LOGIN_LIMIT_PREFIX, default=login"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=task_manager"`
}

type RedisConfig struct {
	Addr         string `env:"REDIS_ADDR,           default=localhost:6379"`
	Password     string `env:"REDIS_PASSWORD"`
	DB           int    `env:"REDIS_DB,             default=0"`
	PoolSize     int    `env:"REDIS_POOL_SIZE"`
	MinIdleConns int    `env:"REDIS_MIN_IDLE_CONNS"`
}

// IsDevelopment reports whether the service runs with developer defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	return &cfg, nil
}

package config

import (
	"context"
	"fmt"
	"time"
	_ "time/tzdata" // Location must resolve on hosts without zoneinfo.

	"github.com/sethvargo/go-envconfig"

	"github.com/internhub/portal/internal/core/validation"
)

// Session backends.
const (
	SessionBackendCookie = "cookie"
	SessionBackendRedis  = "redis"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	Timezone string `env:"TIMEZONE,  default=Asia/Colombo"`
	// AssetsDir holds the built page bundle served under /assets.
	AssetsDir string `env:"ASSETS_DIR"`

	Backend  BackendConfig
	Session  SessionConfig
	Redis    RedisConfig
	Password PasswordConfig
}

type BackendConfig struct {
	URL     string        `env:"BACKEND_URL,     required"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT, default=15s"`
}

type SessionConfig struct {
	TTL          time.Duration `env:"SESSION_TTL,     default=1h"`
	Backend      string        `env:"SESSION_BACKEND, default=cookie"`
	CookieSecure bool          `env:"COOKIE_SECURE,   default=false"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,       default=0"`
	Timeout  time.Duration `env:"REDIS_TIMEOUT,  default=1s"`
}

type PasswordConfig struct {
	MinLength      int  `env:"PASSWORD_MIN_LENGTH,      default=8"`
	RequireUpper   bool `env:"PASSWORD_REQUIRE_UPPER,   default=true"`
	RequireLower   bool `env:"PASSWORD_REQUIRE_LOWER,   default=true"`
	RequireDigit   bool `env:"PASSWORD_REQUIRE_DIGIT,   default=true"`
	RequireSpecial bool `env:"PASSWORD_REQUIRE_SPECIAL, default=false"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Session.Backend {
	case SessionBackendCookie, SessionBackendRedis:
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.Session.Backend)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}
	return nil
}

// Location returns the timezone used for the shared clock and date rules.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Development reports whether the portal runs in a developer environment.
func (c *Config) Development() bool {
	return c.Env == "development"
}

// PasswordPolicy converts the password settings into a validation policy.
func (c *Config) PasswordPolicy() validation.PasswordPolicy {
	return validation.PasswordPolicy{
		MinLength:      c.Password.MinLength,
		RequireUpper:   c.Password.RequireUpper,
		RequireLower:   c.Password.RequireLower,
		RequireDigit:   c.Password.RequireDigit,
		RequireSpecial: c.Password.RequireSpecial,
	}
}

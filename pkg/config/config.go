package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// DevSecretKey is the fallback signing secret. It is refused in production.
const DevSecretKey = "dev-secret-change-me"

// Config holds the application configuration
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	ServerPort  int    `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`

	// Empty DatabaseURL selects the in-memory stores
	DatabaseURL       string        `env:"DATABASE_URL"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	RunMigrations     bool          `env:"RUN_MIGRATIONS" envDefault:"true"`

	// Empty RedisURL keeps token revocations in memory
	RedisURL             string        `env:"REDIS_URL"`
	RedisBreakerFailures int           `env:"REDIS_BREAKER_FAILURES" envDefault:"5"`
	RedisBreakerCooldown time.Duration `env:"REDIS_BREAKER_COOLDOWN" envDefault:"30s"`

	SecretKey      string        `env:"SECRET_KEY" envDefault:"dev-secret-change-me"`
	TokenIssuer    string        `env:"TOKEN_ISSUER" envDefault:"threadline"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"30m"`
	RememberMeTTL  time.Duration `env:"REMEMBER_ME_TTL" envDefault:"720h"`
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"10"`

	CORSAllowedOrigins  []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`
	ProtectCommentReads bool     `env:"PROTECT_COMMENT_READS" envDefault:"false"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads configuration from the environment, after loading .env if one exists
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.CORSAllowedOrigins = trimEmpty(cfg.CORSAllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether ENVIRONMENT names a production deployment
func (c *Config) IsProduction() bool {
	e := strings.ToLower(c.Environment)
	return e == "production" || e == "prod"
}

// Validate rejects settings the server cannot run safely with
func (c *Config) Validate() error {
	var errs []error

	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid SERVER_PORT: %d", c.ServerPort))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("SECRET_KEY must not be empty"))
	}
	if c.IsProduction() && c.SecretKey == DevSecretKey {
		errs = append(errs, errors.New("SECRET_KEY must be set in production"))
	}
	if c.AccessTokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("ACCESS_TOKEN_TTL must be positive, got %s", c.AccessTokenTTL))
	}
	if c.RememberMeTTL <= 0 {
		errs = append(errs, fmt.Errorf("REMEMBER_ME_TTL must be positive, got %s", c.RememberMeTTL))
	}
	if c.RedisURL != "" && c.RedisBreakerCooldown <= 0 {
		errs = append(errs, fmt.Errorf("REDIS_BREAKER_COOLDOWN must be positive, got %s", c.RedisBreakerCooldown))
	}

	return errors.Join(errs...)
}

func trimEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears keys for the test and restores them afterwards
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t, "ENVIRONMENT", "SERVER_PORT", "DATABASE_URL", "SECRET_KEY", "ACCESS_TOKEN_TTL",
		"REMEMBER_ME_TTL", "BCRYPT_COST", "RUN_MIGRATIONS", "PROTECT_COMMENT_READS", "CORS_ALLOWED_ORIGINS", "REDIS_BREAKER_FAILURES", "REDIS_BREAKER_COOLDOWN")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 720*time.Hour, cfg.RememberMeTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.True(t, cfg.RunMigrations)
	assert.False(t, cfg.ProtectCommentReads)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, DevSecretKey, cfg.SecretKey)
	assert.Equal(t, 5, cfg.RedisBreakerFailures)
	assert.Equal(t, 30*time.Second, cfg.RedisBreakerCooldown)
}

func TestLoadOverrides(t *testing.T) {
	unsetEnv(t, "ENVIRONMENT", "SECRET_KEY", "REMEMBER_ME_TTL")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("PROTECT_COMMENT_READS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.True(t, cfg.ProtectCommentReads)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Environment:    "production",
			ServerPort:     8080,
			SecretKey:      "s3cret",
			AccessTokenTTL: time.Minute,
			RememberMeTTL:  time.Hour,
		}
	}

	assert.NoError(t, base().Validate())

	cfg := base()
	cfg.SecretKey = DevSecretKey
	assert.ErrorContains(t, cfg.Validate(), "SECRET_KEY")

	cfg = base()
	cfg.AccessTokenTTL = 0
	assert.ErrorContains(t, cfg.Validate(), "ACCESS_TOKEN_TTL")

	cfg = base()
	cfg.RememberMeTTL = -time.Second
	assert.ErrorContains(t, cfg.Validate(), "REMEMBER_ME_TTL")

	cfg = base()
	cfg.RedisURL = "redis://localhost:6379/0"
	assert.ErrorContains(t, cfg.Validate(), "REDIS_BREAKER_COOLDOWN")

	cfg = base()
	cfg.Environment = "development"
	cfg.SecretKey = DevSecretKey
	assert.NoError(t, cfg.Validate())
}

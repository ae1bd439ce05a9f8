package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "100-M", cfg.Server.RateLimit)
	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, "6379", cfg.Redis.Port)
	assert.Equal(t, "shwepos", cfg.DB.Name)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "https://exp.host/--/api/v2/push/send", cfg.Expo.PushURL)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("TOKEN_TTL_HOURS", "2")
	t.Setenv("JWT_SECRET", "prod-secret")

	cfg := LoadConfig()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "prod-secret", cfg.Auth.JWTSecret)
}

func TestDSN(t *testing.T) {
	db := DBConfig{
		Host: "localhost", Port: "5432", User: "postgres",
		Password: "pw", Name: "shwepos", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=pw dbname=shwepos sslmode=disable",
		db.DSN())
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
http:
  addr: ":9090"
auth:
  jwt_access_ttl: 30m
limits:
  swipes_per_minute: 90
  messages_per_10sec: 4
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Auth.JWTAccessTTL != 30*time.Minute {
		t.Fatalf("unexpected access ttl: %s", cfg.Auth.JWTAccessTTL)
	}
	if cfg.Limits.SwipesPerMinute != 90 {
		t.Fatalf("unexpected swipes/min: %d", cfg.Limits.SwipesPerMinute)
	}
	if cfg.Limits.MessagesPer10Seconds != 4 {
		t.Fatalf("unexpected messages/10s: %d", cfg.Limits.MessagesPer10Seconds)
	}

	if cfg.Limits.SwipesPer10Seconds != 15 {
		t.Fatalf("swipes_per_10sec default should stay 15, got %d", cfg.Limits.SwipesPer10Seconds)
	}
	if cfg.Limits.MessagesPerMinute != 30 {
		t.Fatalf("messages_per_minute default should stay 30, got %d", cfg.Limits.MessagesPerMinute)
	}
	if cfg.Auth.JWTSecret != "change-me" {
		t.Fatalf("unexpected jwt secret default: %s", cfg.Auth.JWTSecret)
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected default http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected default redis addr: %s", cfg.Redis.Addr)
	}
	if cfg.S3.Bucket != "crewlyx-media" {
		t.Fatalf("unexpected default bucket: %s", cfg.S3.Bucket)
	}
	if cfg.Limits.SwipesPerMinute != 60 || cfg.Limits.SwipesPer10Seconds != 15 {
		t.Fatalf("unexpected swipe limit defaults: %d/%d", cfg.Limits.SwipesPerMinute, cfg.Limits.SwipesPer10Seconds)
	}
	if cfg.Auth.RefreshTTL != 720*time.Hour {
		t.Fatalf("unexpected refresh ttl default: %s", cfg.Auth.RefreshTTL)
	}
}

func TestEnvOverridesBeatYAML(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("SWIPES_PER_MINUTE", "5")
	t.Setenv("JWT_SECRET", "env-secret")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
http:
  addr: ":9090"
limits:
  swipes_per_minute: 90
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":7070" {
		t.Fatalf("env should override yaml addr, got %s", cfg.HTTP.Addr)
	}
	if cfg.Limits.SwipesPerMinute != 5 {
		t.Fatalf("env should override yaml swipes/min, got %d", cfg.Limits.SwipesPerMinute)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Fatalf("env should override jwt secret, got %s", cfg.Auth.JWTSecret)
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"POSTGRES_DSN",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"S3_ENDPOINT",
		"S3_ACCESS_KEY",
		"S3_SECRET_KEY",
		"S3_BUCKET",
		"S3_USE_SSL",
		"JWT_SECRET",
		"JWT_ACCESS_TTL",
		"REFRESH_TTL",
		"SWIPES_PER_MINUTE",
		"SWIPES_PER_10SEC",
		"MESSAGES_PER_MINUTE",
		"MESSAGES_PER_10SEC",
	} {
		t.Setenv(key, "")
	}
}

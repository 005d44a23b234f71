package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"SERVER_ADDR", "SERVER_PORT", "DB_HOST", "DB_PORT", "DB_USER",
		"DB_PASSWORD", "DB_NAME", "DB_SSLMODE", "SECRET_KEY",
		"ENCRYPT_TOKENS", "ACCESS_TOKEN_TTL", "JANITOR_INTERVAL",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("SECRET_KEY", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerAddr != "0.0.0.0" {
		t.Errorf("ServerAddr = %q, want %q", cfg.ServerAddr, "0.0.0.0")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.DBPort != 5432 {
		t.Errorf("DBPort = %d, want %d", cfg.DBPort, 5432)
	}
	if !cfg.EncryptTokens {
		t.Error("EncryptTokens should default to true")
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want %v", cfg.AccessTokenTTL, 15*time.Minute)
	}
	if cfg.JanitorInterval != 0 {
		t.Errorf("JanitorInterval = %v, want 0", cfg.JanitorInterval)
	}
}

func TestLoad_RequiredSecret(t *testing.T) {
	clearEnv(t)

	if _, err := Load(); err == nil {
		t.Error("Load should fail when SECRET_KEY is not set")
	}
}

func TestLoad_ShortSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("SECRET_KEY", "too-short")

	_, err := Load()
	if err == nil {
		t.Fatal("Load should fail for a secret shorter than 32 bytes")
	}
	if !strings.Contains(err.Error(), "32") {
		t.Errorf("error should name the minimum length, got %v", err)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SECRET_KEY", testSecret)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_HOST", "db.example.com")
	t.Setenv("ENCRYPT_TOKENS", "false")
	t.Setenv("JANITOR_INTERVAL", "1h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerPort != 9090 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 9090)
	}
	if cfg.DBHost != "db.example.com" {
		t.Errorf("DBHost = %q, want %q", cfg.DBHost, "db.example.com")
	}
	if cfg.EncryptTokens {
		t.Error("EncryptTokens should be false")
	}
	if cfg.JanitorInterval != time.Hour {
		t.Errorf("JanitorInterval = %v, want %v", cfg.JanitorInterval, time.Hour)
	}
}

package configs

import (
	"strings"
	"testing"
)

// clearEnv blanks every variable LoadConfig reads so tests start clean.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENVIRONMENT", "PORT", "APP_URL", "STATIC_DIR", "ALLOWED_ORIGINS",
		"JWT_SECRET", "GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_CALLBACK_URL",
		"TURNSTILE_SITE_KEY", "TURNSTILE_SECRET_KEY",
		"S3_BUCKET_NAME", "S3_ENDPOINT", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY", "S3_PUBLIC_BASE_URL",
		"DATABASE_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_DevelopmentDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if cfg.Environment != "development" || !cfg.IsDevelopment() {
		t.Errorf("environment: got %q", cfg.Environment)
	}
	if cfg.Port != 8080 {
		t.Errorf("port: got %d want 8080", cfg.Port)
	}
	if cfg.JWTSecret == "" {
		t.Error("development must fall back to a default JWT secret")
	}
	if cfg.DatabaseDSN == "" {
		t.Error("development must fall back to a default database DSN")
	}
	if cfg.GoogleConfigured() || cfg.CaptchaConfigured() || cfg.StorageConfigured() {
		t.Error("optional features must be off without their settings")
	}
}

func TestLoadConfig_ProductionRequiresSecrets(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected an error for missing production settings")
	}

	t.Setenv("JWT_SECRET", "prod-secret")
	t.Setenv("TURNSTILE_SITE_KEY", "site")
	t.Setenv("TURNSTILE_SECRET_KEY", "secret")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/mikuchat")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error with full production settings: %v", err)
	}
	if cfg.IsDevelopment() {
		t.Error("production config must not report development mode")
	}
	if !cfg.CaptchaConfigured() {
		t.Error("captcha must be configured")
	}
}

func TestLoadConfig_PortValidation(t *testing.T) {
	clearEnv(t)

	for _, port := range []string{"not-a-number", "80", "70000"} {
		t.Setenv("PORT", port)
		if _, err := LoadConfig(); err == nil {
			t.Errorf("PORT=%q should be rejected", port)
		}
	}
}

func TestLoadConfig_AllowedOrigins(t *testing.T) {
	clearEnv(t)
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com ,,")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("origins: got %v", cfg.AllowedOrigins)
	}
	for _, origin := range cfg.AllowedOrigins {
		if strings.TrimSpace(origin) != origin {
			t.Errorf("origin %q not trimmed", origin)
		}
	}
}

func TestLoadConfig_FeatureFlags(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
	t.Setenv("GOOGLE_CALLBACK_URL", "https://chat.example.com/api/auth/google/callback")
	t.Setenv("S3_BUCKET_NAME", "avatars")
	t.Setenv("S3_ENDPOINT", "https://s3.example.com")
	t.Setenv("S3_ACCESS_KEY_ID", "key")
	t.Setenv("S3_SECRET_ACCESS_KEY", "secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if !cfg.GoogleConfigured() {
		t.Error("google login must be configured")
	}
	if !cfg.StorageConfigured() {
		t.Error("avatar storage must be configured")
	}
}

package infra

import (
	"testing"
	"time"
)

func setProviderEnv(t *testing.T, provider string) {
	t.Helper()
	t.Setenv("IMAGE_PROVIDER", provider)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("CLIENT_ORIGIN", "")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "")
	t.Setenv("MAX_BODY_BYTES", "")
	t.Setenv("UPSTREAM_TIMEOUT_SECONDS", "")
}

func TestLoadConfigDefaults(t *testing.T) {
	setProviderEnv(t, "")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "5179" {
		t.Fatalf("Port = %q, want 5179", cfg.Port)
	}
	if cfg.ClientOrigin != "http://localhost:5173" {
		t.Fatalf("ClientOrigin = %q", cfg.ClientOrigin)
	}
	if cfg.ImageProvider != "openai" {
		t.Fatalf("ImageProvider = %q", cfg.ImageProvider)
	}
	if cfg.MaxBodyBytes != 1<<20 {
		t.Fatalf("MaxBodyBytes = %d", cfg.MaxBodyBytes)
	}
	if cfg.UpstreamTimeout != 120*time.Second {
		t.Fatalf("UpstreamTimeout = %s", cfg.UpstreamTimeout)
	}
	if cfg.RateLimitPerMin != 10 {
		t.Fatalf("RateLimitPerMin = %d", cfg.RateLimitPerMin)
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("AppEnv %q should default to development", cfg.AppEnv)
	}

	t.Setenv("APP_ENV", "production")
	cfg, err = LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.IsDevelopment() {
		t.Fatal("production config reported development")
	}
}

func TestLoadConfigRequiresOpenAIKey(t *testing.T) {
	setProviderEnv(t, "openai")

	if _, err := LoadConfig(); err == nil || err.Error() != "OPENAI_API_KEY is required" {
		t.Fatalf("LoadConfig error = %v", err)
	}
}

func TestLoadConfigGeminiProvider(t *testing.T) {
	setProviderEnv(t, "Gemini")

	if _, err := LoadConfig(); err == nil || err.Error() != "GEMINI_API_KEY is required" {
		t.Fatalf("LoadConfig error = %v", err)
	}

	t.Setenv("GEMINI_API_KEY", "g-test")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ImageProvider != "gemini" {
		t.Fatalf("ImageProvider = %q", cfg.ImageProvider)
	}
}

func TestLoadConfigRejectsUnknownProvider(t *testing.T) {
	setProviderEnv(t, "replicate")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for unsupported provider")
	}
}

func TestLoadConfigIgnoresMalformedInts(t *testing.T) {
	setProviderEnv(t, "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "lots")
	t.Setenv("PORT", "9000")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.RateLimitPerMin != 10 {
		t.Fatalf("RateLimitPerMin = %d, want fallback 10", cfg.RateLimitPerMin)
	}
	if cfg.Port != "9000" {
		t.Fatalf("Port = %q", cfg.Port)
	}
}

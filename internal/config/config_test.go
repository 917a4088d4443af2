package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_PORT", "JWT_SECRET", "JWT_EXPIRATION_HOURS", "DATABASE_URL", "DATABASE_PATH",
		"AI_PROVIDER", "GEMINI_API_KEY", "GEMINI_MODEL_NAME", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	if cfg.HTTPPort != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.HTTPPort)
	}
	if cfg.TokenExpiration != 7*24*time.Hour {
		t.Errorf("expected 7 day token expiration, got %s", cfg.TokenExpiration)
	}
	if cfg.AIProvider != "gemini" {
		t.Errorf("expected default provider gemini, got %s", cfg.AIProvider)
	}
	if cfg.DatabaseURL != "" || cfg.DatabasePath != "./data/langbot.db" {
		t.Errorf("expected sqlite default, got url=%q path=%q", cfg.DatabaseURL, cfg.DatabasePath)
	}
	if cfg.GeminiModelName != "gemini-2.0-flash-exp" {
		t.Errorf("unexpected gemini model %s", cfg.GeminiModelName)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Errorf("expected 2 default origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("JWT_EXPIRATION_HOURS", "2")
	t.Setenv("AI_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "  sk-test  ")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg := FromEnv()
	if cfg.HTTPPort != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.HTTPPort)
	}
	if cfg.TokenExpiration != 2*time.Hour {
		t.Errorf("expected 2h, got %s", cfg.TokenExpiration)
	}
	if cfg.AIProvider != "openai" {
		t.Errorf("expected lower-cased provider, got %s", cfg.AIProvider)
	}
	if cfg.OpenAIAPIKey != "sk-test" {
		t.Errorf("expected trimmed key, got %q", cfg.OpenAIAPIKey)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
}

func TestFromEnvInvalidExpiration(t *testing.T) {
	t.Setenv("JWT_EXPIRATION_HOURS", "soon")
	if got := FromEnv().TokenExpiration; got != 168*time.Hour {
		t.Errorf("expected fallback to 168h, got %s", got)
	}
}

package app

import (
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "s")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "8080" || cfg.DatabaseDriver != "postgres" || cfg.LLMTimeout != 90*time.Second {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.AccessTokenTTL != 24*time.Hour || cfg.LLMModel != "llama-3.3-70b-versatile" {
		t.Fatalf("defaults: ttl=%v model=%s", cfg.AccessTokenTTL, cfg.LLMModel)
	}
	if cfg.Gateway().Timeout != 90*time.Second || cfg.Database().Driver != "postgres" {
		t.Fatalf("derived options")
	}
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")
	if _, err := LoadConfig(); err == nil || !strings.Contains(err.Error(), "JWT_SECRET_KEY") {
		t.Fatalf("want JWT_SECRET_KEY error got=%v", err)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "s")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-api-key:abc")
	t.Setenv("CORS_ORIGINS", "https://a.dev,https://b.dev")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DatabaseDriver != "sqlite" || cfg.Provider().Provider != "ollama" || cfg.LLMTimeout != 5*time.Second {
		t.Fatalf("overrides: %+v", cfg)
	}
	if cfg.Otel().Headers["x-api-key"] != "abc" || len(cfg.CORSOrigins) != 2 {
		t.Fatalf("map/slice parsing: %v %v", cfg.OtelHeaders, cfg.CORSOrigins)
	}
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	base := Config{JWTSecretKey: "s", DatabaseDriver: "postgres", LLMProvider: "groq", GCSMode: "gcs", AccessTokenTTL: time.Hour}
	if err := base.Validate(); err != nil {
		t.Fatalf("base: %v", err)
	}
	bad := base
	bad.DatabaseDriver = "mysql"
	if bad.Validate() == nil {
		t.Fatalf("mysql accepted")
	}
	bad = base
	bad.LLMProvider = "anthropic"
	if bad.Validate() == nil {
		t.Fatalf("unknown provider accepted")
	}
}

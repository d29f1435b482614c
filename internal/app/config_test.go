package app

import (
	"testing"
	"time"

	"github.com/yungbote/supplesafe-backend/internal/pkg/logger"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "EXTRACTION_API_KEY", "OPENAI_API_KEY", "ACCESS_TOKEN_TTL", "MAX_LABEL_IMAGE_BYTES", "CORS_ALLOWED_ORIGINS", "INTERACTION_SELECTION"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig(logger.NewNop())
	if cfg.Port != "8080" || cfg.DB.Driver != "postgres" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.AccessTokenTTL != 24*time.Hour {
		t.Fatalf("unexpected ttl %v", cfg.AccessTokenTTL)
	}
	if cfg.MaxLabelImageBytes != 10<<20 {
		t.Fatalf("unexpected max image bytes %d", cfg.MaxLabelImageBytes)
	}
	if cfg.ExtractionAPIKey != "" || cfg.AllowedOrigins != nil {
		t.Fatalf("expected empty key and default origins")
	}
	if cfg.InteractionSelection != "random" {
		t.Fatalf("unexpected selection %q", cfg.InteractionSelection)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("EXTRACTION_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("ACCESS_TOKEN_TTL", "120")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("INTERACTION_SELECTION", "seeded")

	cfg := LoadConfig(logger.NewNop())
	if cfg.ExtractionAPIKey != "sk-test" {
		t.Fatalf("expected OPENAI_API_KEY fallback, got %q", cfg.ExtractionAPIKey)
	}
	if cfg.DB.Driver != "sqlite" || cfg.AccessTokenTTL != 2*time.Minute {
		t.Fatalf("unexpected overrides %+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.InteractionSelection != "seeded" {
		t.Fatalf("unexpected selection %q", cfg.InteractionSelection)
	}
}

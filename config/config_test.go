package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Matching.VectorDimension != 384 {
		t.Errorf("expected dimension 384, got %d", cfg.Matching.VectorDimension)
	}
	if cfg.Matching.SimilarityThreshold != 0.7 {
		t.Errorf("expected threshold 0.7, got %v", cfg.Matching.SimilarityThreshold)
	}
	if cfg.Matching.TopK != 50 {
		t.Errorf("expected top-k 50, got %d", cfg.Matching.TopK)
	}
	if cfg.Matching.MaxResults != 10 {
		t.Errorf("expected max results 10, got %d", cfg.Matching.MaxResults)
	}
	if cfg.CacheTTL() != time.Hour {
		t.Errorf("expected 1h cache ttl, got %v", cfg.CacheTTL())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file must not fail: %v", err)
	}
	if cfg.Qdrant.Collection != "agents" {
		t.Errorf("expected default collection, got %q", cfg.Qdrant.Collection)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[matching]
vector_dimension = 1536
similarity_threshold = 0.5
cache_ttl_seconds = 120

[qdrant]
host = "qdrant.internal"
port = 6333
collection = "agents-prod"

[openai]
model = "text-embedding-3-large"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Matching.VectorDimension != 1536 {
		t.Errorf("expected dimension 1536, got %d", cfg.Matching.VectorDimension)
	}
	if cfg.CacheTTL() != 2*time.Minute {
		t.Errorf("expected 2m ttl, got %v", cfg.CacheTTL())
	}
	if cfg.Qdrant.Host != "qdrant.internal" {
		t.Errorf("expected qdrant host override, got %q", cfg.Qdrant.Host)
	}
	if cfg.OpenAI.Model != "text-embedding-3-large" {
		t.Errorf("expected model override, got %q", cfg.OpenAI.Model)
	}
	// Untouched sections keep defaults.
	if cfg.Matching.TopK != 50 {
		t.Errorf("expected default top-k to survive partial file, got %d", cfg.Matching.TopK)
	}
	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Errorf("expected default redis url, got %q", cfg.Redis.URL)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[matching\nbroken"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected parse error for malformed TOML")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("QDRANT_API_KEY", "qk-123")
	t.Setenv("OPENAI_API_KEY", "sk-456")
	t.Setenv("REDIS_URL", "redis://cache.internal:6379/1")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Qdrant.APIKey != "qk-123" {
		t.Errorf("expected qdrant key from env, got %q", cfg.Qdrant.APIKey)
	}
	if cfg.OpenAI.APIKey != "sk-456" {
		t.Errorf("expected openai key from env, got %q", cfg.OpenAI.APIKey)
	}
	if cfg.Redis.URL != "redis://cache.internal:6379/1" {
		t.Errorf("expected redis url from env, got %q", cfg.Redis.URL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"zero dimension", func(c *Config) { c.Matching.VectorDimension = 0 }, ErrInvalidDimension},
		{"threshold above one", func(c *Config) { c.Matching.SimilarityThreshold = 1.2 }, ErrInvalidThreshold},
		{"negative threshold", func(c *Config) { c.Matching.SimilarityThreshold = -0.1 }, ErrInvalidThreshold},
		{"zero ttl", func(c *Config) { c.Matching.CacheTTLSeconds = 0 }, ErrInvalidTTL},
		{"zero top-k", func(c *Config) { c.Matching.TopK = 0 }, ErrInvalidTopK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

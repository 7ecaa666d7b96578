// Package config loads matching-service configuration from TOML files
// with environment-variable overrides for secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Validation errors.
var (
	ErrInvalidDimension = fmt.Errorf("config: vector dimension must be positive")
	ErrInvalidThreshold = fmt.Errorf("config: similarity threshold must be in [0, 1]")
	ErrInvalidTTL       = fmt.Errorf("config: cache ttl must be positive")
	ErrInvalidTopK      = fmt.Errorf("config: top-k must be positive")
)

// Config is the full service configuration.
type Config struct {
	Matching MatchingConfig `toml:"matching"`
	Qdrant   QdrantConfig   `toml:"qdrant"`
	Redis    RedisConfig    `toml:"redis"`
	NATS     NATSConfig     `toml:"nats"`
	OpenAI   OpenAIConfig   `toml:"openai"`
}

// MatchingConfig tunes the engine.
type MatchingConfig struct {
	// VectorDimension is the embedding dimension every indexed agent
	// must carry.
	VectorDimension int `toml:"vector_dimension"`

	// SimilarityThreshold filters vector-search candidates.
	SimilarityThreshold float64 `toml:"similarity_threshold"`

	// TopK is how many candidates a similarity search fetches.
	TopK int `toml:"top_k"`

	// MaxResults caps ranked output per query.
	MaxResults int `toml:"max_results"`

	// CacheTTLSeconds is how long compatibility results stay cached.
	CacheTTLSeconds int `toml:"cache_ttl_seconds"`
}

// QdrantConfig points at the vector store.
type QdrantConfig struct {
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	APIKey     string `toml:"api_key"`
	UseTLS     bool   `toml:"use_tls"`
	Collection string `toml:"collection"`
}

// RedisConfig points at the result cache.
type RedisConfig struct {
	// URL is a redis:// connection string.
	URL string `toml:"url"`
}

// NATSConfig points at a JetStream-backed cache alternative.
type NATSConfig struct {
	URL    string `toml:"url"`
	Bucket string `toml:"bucket"`
}

// OpenAIConfig configures the embedding provider.
type OpenAIConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Matching: MatchingConfig{
			VectorDimension:     384,
			SimilarityThreshold: 0.7,
			TopK:                50,
			MaxResults:          10,
			CacheTTLSeconds:     3600,
		},
		Qdrant: QdrantConfig{
			Host:       "localhost",
			Port:       6334,
			Collection: "agents",
		},
		Redis: RedisConfig{
			URL: "redis://localhost:6379/0",
		},
		NATS: NATSConfig{
			URL:    "nats://localhost:4222",
			Bucket: "match-results",
		},
		OpenAI: OpenAIConfig{
			Model: "text-embedding-3-small",
		},
	}
}

// Load reads a TOML file over the defaults and applies environment
// overrides. A missing file is not an error; defaults are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides secrets and endpoints from the environment.
// Environment always wins over the file so deployments never need
// credentials on disk.
func (c *Config) applyEnv() {
	if v := os.Getenv("QDRANT_API_KEY"); v != "" {
		c.Qdrant.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		c.NATS.URL = v
	}
}

// Validate checks the tunables that would otherwise fail deep inside
// the engine.
func (c *Config) Validate() error {
	if c.Matching.VectorDimension <= 0 {
		return ErrInvalidDimension
	}
	if c.Matching.SimilarityThreshold < 0 || c.Matching.SimilarityThreshold > 1 {
		return ErrInvalidThreshold
	}
	if c.Matching.CacheTTLSeconds <= 0 {
		return ErrInvalidTTL
	}
	if c.Matching.TopK <= 0 {
		return ErrInvalidTopK
	}
	return nil
}

// CacheTTL returns the configured result-cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Matching.CacheTTLSeconds) * time.Second
}

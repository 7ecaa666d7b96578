package embeddings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultModel     = "text-embedding-3-small"
	defaultDimension = 384

	defaultMaxRetries  = 3
	defaultInitBackoff = 1 * time.Second
	defaultMaxBackoff  = 30 * time.Second
	backoffFactor      = 2.0
)

// OpenAIProvider implements Provider using the official OpenAI SDK.
type OpenAIProvider struct {
	client    *openai.Client
	model     string
	dimension int
}

// OpenAIConfig holds configuration for the OpenAI embedding provider.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // Optional custom endpoint
	Model   string // Default: text-embedding-3-small

	// Dimension requests reduced-dimension output from models that
	// support it. Default: 384.
	Dimension int
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates an embedding provider using the official SDK.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api_key is required for openai embeddings")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = defaultDimension
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	client := openai.NewClient(opts...)

	return &OpenAIProvider{
		client:    &client,
		model:     cfg.Model,
		dimension: cfg.Dimension,
	}, nil
}

// Dimension implements the Provider interface.
func (p *OpenAIProvider) Dimension() int {
	return p.dimension
}

// Embed implements the Provider interface. Transient API failures are
// retried with exponential backoff.
func (p *OpenAIProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	params := openai.EmbeddingNewParams{
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model:      openai.EmbeddingModel(p.model),
		Dimensions: openai.Int(int64(p.dimension)),
	}

	backoff := defaultInitBackoff
	var lastErr error

	for attempt := 0; attempt <= defaultMaxRetries; attempt++ {
		resp, err := p.client.Embeddings.New(ctx, params)
		if err == nil {
			return p.convert(resp, len(texts))
		}
		lastErr = err

		if !isRetryableError(err) {
			return nil, fmt.Errorf("openai embedding request failed: %w", err)
		}
		if attempt == defaultMaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff = time.Duration(float64(backoff) * backoffFactor)
		if backoff > defaultMaxBackoff {
			backoff = defaultMaxBackoff
		}
	}

	return nil, fmt.Errorf("openai embedding request failed after %d retries: %w", defaultMaxRetries, lastErr)
}

func (p *OpenAIProvider) convert(resp *openai.CreateEmbeddingResponse, want int) ([][]float32, error) {
	if len(resp.Data) != want {
		return nil, fmt.Errorf("openai returned %d embeddings for %d inputs", len(resp.Data), want)
	}

	out := make([][]float32, len(resp.Data))
	for _, item := range resp.Data {
		vec := make([]float32, len(item.Embedding))
		for i, v := range item.Embedding {
			vec[i] = float32(v)
		}
		if len(vec) != p.dimension {
			return nil, fmt.Errorf("openai returned dimension %d, expected %d", len(vec), p.dimension)
		}
		out[item.Index] = vec
	}
	return out, nil
}

// isRetryableError reports whether an API error is worth retrying
// (rate limits and server-side failures).
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "429") ||
		strings.Contains(msg, "500") ||
		strings.Contains(msg, "502") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "timeout")
}

package embeddings

import (
	"context"
	"hash/fnv"
	"math"
)

// LocalProvider produces deterministic pseudo-embeddings without any
// network dependency. Vectors are derived from token hashes and L2
// normalized, so texts sharing words land near each other. Useful for
// demos and tests; not a substitute for a real embedding model.
type LocalProvider struct {
	dimension int
}

var _ Provider = (*LocalProvider)(nil)

// NewLocalProvider creates a provider emitting vectors of the given
// dimension.
func NewLocalProvider(dimension int) *LocalProvider {
	if dimension <= 0 {
		dimension = defaultDimension
	}
	return &LocalProvider{dimension: dimension}
}

// Dimension implements the Provider interface.
func (p *LocalProvider) Dimension() int {
	return p.dimension
}

// Embed implements the Provider interface.
func (p *LocalProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = p.embedOne(text)
	}
	return out, nil
}

func (p *LocalProvider) embedOne(text string) []float32 {
	vec := make([]float64, p.dimension)

	word := make([]byte, 0, 16)
	flush := func() {
		if len(word) == 0 {
			return
		}
		h := fnv.New64a()
		h.Write(word)
		sum := h.Sum64()
		// Two buckets per word keep collisions from zeroing overlap.
		vec[sum%uint64(p.dimension)] += 1.0
		vec[(sum>>32)%uint64(p.dimension)] += 0.5
		word = word[:0]
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			word = append(word, c)
		} else {
			flush()
		}
	}
	flush()

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	out := make([]float32, p.dimension)
	if norm == 0 {
		out[0] = 1
		return out
	}
	norm = math.Sqrt(norm)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out
}

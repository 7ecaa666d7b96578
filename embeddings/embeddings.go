// Package embeddings turns agent profiles into vectors for the
// similarity index.
package embeddings

import (
	"context"
	"fmt"
	"strings"
)

// ErrEmptyInput is returned when there is nothing to embed.
var ErrEmptyInput = fmt.Errorf("embeddings: no input texts")

// Provider produces fixed-dimension embeddings.
type Provider interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension is the width of every vector this provider returns.
	Dimension() int
}

// ProfileText builds the canonical text an agent profile is embedded
// from. The same profile always yields the same text, so re-indexing an
// unchanged agent produces an identical vector.
func ProfileText(displayName, bio string, skills []string) string {
	parts := make([]string, 0, 3)
	if name := strings.TrimSpace(displayName); name != "" {
		parts = append(parts, name)
	}
	if b := strings.TrimSpace(bio); b != "" {
		parts = append(parts, b)
	}
	if len(skills) > 0 {
		cleaned := make([]string, 0, len(skills))
		for _, s := range skills {
			if s = strings.TrimSpace(s); s != "" {
				cleaned = append(cleaned, strings.ToLower(s))
			}
		}
		if len(cleaned) > 0 {
			parts = append(parts, "Skills: "+strings.Join(cleaned, ", "))
		}
	}
	return strings.Join(parts, ". ")
}

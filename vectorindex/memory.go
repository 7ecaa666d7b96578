package vectorindex

import (
	"context"
	"math"
	"sort"
	"sync"
)

var _ Index = (*MemoryIndex)(nil)

// MemoryIndex is an in-memory implementation of Index.
// Suitable for testing and single-node deployments. Search is a linear
// scan with exact cosine similarity rather than an approximate structure,
// which is fine at the collection sizes it is meant for.
type MemoryIndex struct {
	mu     sync.RWMutex
	agents map[string]AgentVector
	dim    int
	closed bool
}

// MemoryConfig configures the in-memory index.
type MemoryConfig struct {
	// Dimension is the fixed embedding dimension for the collection.
	Dimension int
}

// NewMemoryIndex creates a new in-memory similarity index.
func NewMemoryIndex(cfg MemoryConfig) *MemoryIndex {
	return &MemoryIndex{
		agents: make(map[string]AgentVector),
		dim:    cfg.Dimension,
	}
}

// EnsureCollection is a no-op for the in-memory index: the collection
// exists from construction. It only reports closure.
func (m *MemoryIndex) EnsureCollection(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}
	return nil
}

// Upsert adds or replaces an agent's vector and payload.
func (m *MemoryIndex) Upsert(ctx context.Context, agent AgentVector) error {
	if err := ValidateAgent(agent, m.dim); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	// Copy slices so later caller mutation cannot reach the index.
	stored := agent.normalized()
	stored.Skills = append([]string(nil), agent.Skills...)
	stored.Embedding = append([]float32(nil), agent.Embedding...)
	m.agents[agent.AgentID] = stored

	return nil
}

// Delete removes an agent's vector. Absent agents are ignored.
func (m *MemoryIndex) Delete(ctx context.Context, agentID string) error {
	if agentID == "" {
		return ErrInvalidAgentID
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	delete(m.agents, agentID)
	return nil
}

// Search scans all active agents and returns candidates ordered by
// descending cosine similarity. Ties break on agent ID so the order is
// deterministic.
func (m *MemoryIndex) Search(ctx context.Context, embedding []float32, filter SearchFilter) ([]Candidate, error) {
	if err := ValidateEmbedding(embedding, m.dim); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	candidates := make([]Candidate, 0)
	for id, agent := range m.agents {
		if !agent.IsActive {
			continue
		}
		if filter.ExcludeAgentID != "" && id == filter.ExcludeAgentID {
			continue
		}
		if filter.MinReputation > 0 && agent.ReputationScore < filter.MinReputation {
			continue
		}

		score := cosineSimilarity(embedding, agent.Embedding)
		if filter.MinScore > 0 && score < filter.MinScore {
			continue
		}

		candidates = append(candidates, Candidate{
			AgentID:            agent.AgentID,
			DisplayName:        agent.DisplayName,
			Skills:             append([]string(nil), agent.Skills...),
			CommunicationStyle: agent.CommunicationStyle,
			FormalityLevel:     agent.FormalityLevel,
			RiskTolerance:      agent.RiskTolerance,
			ReputationScore:    agent.ReputationScore,
			VectorScore:        score,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].VectorScore != candidates[j].VectorScore {
			return candidates[i].VectorScore > candidates[j].VectorScore
		}
		return candidates[i].AgentID < candidates[j].AgentID
	})

	if filter.Limit > 0 && len(candidates) > filter.Limit {
		candidates = candidates[:filter.Limit]
	}

	return candidates, nil
}

// Close shuts down the index.
func (m *MemoryIndex) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.agents = nil
	return nil
}

// Len reports the number of indexed agents. Intended for tests and
// diagnostics.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.agents)
}

// cosineSimilarity computes cosine similarity between two equal-length
// vectors, accumulating in float64 for stability. A zero vector on either
// side scores zero.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

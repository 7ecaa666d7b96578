// Package vectorindex provides similarity-index storage and retrieval of
// agent embeddings for candidate discovery.
//
// Two implementations are provided: MemoryIndex for testing and
// single-process use, and QdrantIndex backed by a Qdrant collection for
// production deployments. Both index a fixed-dimension embedding per agent
// together with a payload of the non-vector profile fields used for
// filtering and scoring.
package vectorindex

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Common errors.
var (
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrInvalidAgentID    = errors.New("invalid agent ID")
	ErrClosed            = errors.New("index closed")
)

// Default communication attributes assumed when an indexed payload is
// missing one. Unknown values are not rejected anywhere; scoring treats
// them as neutral.
const (
	DefaultStyle     = "balanced"
	DefaultFormality = "professional"
	DefaultRisk      = "moderate"
)

// AgentVector is an agent's indexable profile: the embedding plus the
// fields needed to filter candidates and score compatibility. It is
// supplied by the caller; the index never fetches profile data itself.
type AgentVector struct {
	AgentID            string
	DisplayName        string
	Skills             []string
	Embedding          []float32
	CommunicationStyle string
	FormalityLevel     string
	RiskTolerance      string
	ReputationScore    float64
	IsActive           bool
}

// Candidate is a single similarity-search hit: the indexed payload plus
// the index-reported similarity score.
type Candidate struct {
	AgentID            string
	DisplayName        string
	Skills             []string
	CommunicationStyle string
	FormalityLevel     string
	RiskTolerance      string
	ReputationScore    float64
	VectorScore        float64
}

// SearchFilter restricts a similarity search. Inactive agents are always
// excluded regardless of the filter.
type SearchFilter struct {
	// ExcludeAgentID removes a specific agent (usually the requester).
	// Empty means no exclusion.
	ExcludeAgentID string

	// MinReputation requires candidates to have at least this reputation
	// score (0-100 scale). Zero means no filter.
	MinReputation float64

	// MinScore drops hits below this similarity score. Zero means no cut.
	MinScore float64

	// Limit caps the number of hits. Zero or negative means no cap.
	Limit int
}

// Index stores agent vectors and serves filtered nearest-neighbor queries.
// Implementations must be safe for concurrent use.
type Index interface {
	// EnsureCollection creates the backing collection if it does not
	// exist. Idempotent and safe to call repeatedly and concurrently.
	EnsureCollection(ctx context.Context) error

	// Upsert adds or replaces an agent's vector and payload.
	Upsert(ctx context.Context, agent AgentVector) error

	// Delete removes an agent's vector. Removing an absent agent is not
	// an error.
	Delete(ctx context.Context, agentID string) error

	// Search returns candidates ordered by descending similarity.
	Search(ctx context.Context, embedding []float32, filter SearchFilter) ([]Candidate, error)

	// Close releases the underlying client or storage.
	Close() error
}

// pointNamespace is the fixed UUIDv5 namespace for deriving point IDs.
var pointNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("agents.agent-nexus.dev"))

// PointID derives the similarity-index point identifier for an agent ID.
// The mapping is a UUIDv5: stable across processes and collision-resistant
// over arbitrary agent ID spaces, unlike a truncated integer hash.
func PointID(agentID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(agentID)).String()
}

// ValidateEmbedding checks an embedding against the collection dimension.
func ValidateEmbedding(embedding []float32, dimension int) error {
	if len(embedding) != dimension {
		return fmt.Errorf("%w: embedding dimension %d does not match collection dimension %d",
			ErrDimensionMismatch, len(embedding), dimension)
	}
	return nil
}

// ValidateAgent checks an AgentVector before it reaches an index call.
func ValidateAgent(agent AgentVector, dimension int) error {
	if agent.AgentID == "" {
		return ErrInvalidAgentID
	}
	return ValidateEmbedding(agent.Embedding, dimension)
}

// normalized returns a copy with empty communication attributes replaced
// by the package defaults, mirroring how payloads are read back.
func (v AgentVector) normalized() AgentVector {
	if v.CommunicationStyle == "" {
		v.CommunicationStyle = DefaultStyle
	}
	if v.FormalityLevel == "" {
		v.FormalityLevel = DefaultFormality
	}
	if v.RiskTolerance == "" {
		v.RiskTolerance = DefaultRisk
	}
	return v
}

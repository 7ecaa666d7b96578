package vectorindex

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/jagadeeswar-N-G/agent-nexus/logging"
)

var _ Index = (*QdrantIndex)(nil)

// Payload field names mirrored into the index for filtering and scoring.
const (
	payloadAgentID    = "agent_id"
	payloadName       = "display_name"
	payloadSkills     = "skills"
	payloadStyle      = "communication_style"
	payloadFormality  = "formality_level"
	payloadRisk       = "risk_tolerance"
	payloadReputation = "reputation_score"
	payloadActive     = "is_active"
)

// QdrantIndex implements Index on a Qdrant collection with cosine
// distance. Suitable for production deployments; the underlying gRPC
// client is safe for concurrent use.
type QdrantIndex struct {
	client     *qdrant.Client
	collection string
	dim        int
	logger     *logging.Logger
}

// QdrantConfig configures the Qdrant-backed index.
type QdrantConfig struct {
	// Host and Port locate the Qdrant gRPC endpoint. Default: localhost:6334.
	Host string
	Port int

	// APIKey authenticates against a secured deployment. Optional.
	APIKey string

	// UseTLS enables TLS on the client connection.
	UseTLS bool

	// Collection is the collection name. Required.
	Collection string

	// Dimension is the fixed embedding dimension. Required.
	Dimension int

	// Logger for index events. Defaults to a nop logger.
	Logger *logging.Logger
}

// NewQdrantIndex creates a Qdrant-backed similarity index.
func NewQdrantIndex(cfg QdrantConfig) (*QdrantIndex, error) {
	if cfg.Collection == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("vector dimension must be positive, got %d", cfg.Dimension)
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	return &QdrantIndex{
		client:     client,
		collection: cfg.Collection,
		dim:        cfg.Dimension,
		logger:     cfg.Logger.WithComponent("vectorindex"),
	}, nil
}

// EnsureCollection creates the collection with cosine distance if it does
// not already exist. Safe to call repeatedly and concurrently: a create
// racing another create surfaces an already-exists error from the server,
// which is swallowed after re-checking existence.
func (q *QdrantIndex) EnsureCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("check collection %q: %w", q.collection, err)
	}
	if exists {
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(q.dim),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		// Lost a create race: another caller made it first.
		if again, checkErr := q.client.CollectionExists(ctx, q.collection); checkErr == nil && again {
			return nil
		}
		return fmt.Errorf("create collection %q: %w", q.collection, err)
	}

	q.logger.Info("created collection", map[string]interface{}{
		"collection": q.collection,
		"dimension":  q.dim,
	})
	return nil
}

// Upsert adds or replaces an agent's vector and payload, keyed by the
// point ID derived from the agent ID.
func (q *QdrantIndex) Upsert(ctx context.Context, agent AgentVector) error {
	if err := ValidateAgent(agent, q.dim); err != nil {
		return err
	}

	agent = agent.normalized()
	skills := make([]interface{}, len(agent.Skills))
	for i, s := range agent.Skills {
		skills[i] = s
	}

	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(PointID(agent.AgentID)),
		Vectors: qdrant.NewVectors(agent.Embedding...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			payloadAgentID:    agent.AgentID,
			payloadName:       agent.DisplayName,
			payloadSkills:     skills,
			payloadStyle:      agent.CommunicationStyle,
			payloadFormality:  agent.FormalityLevel,
			payloadRisk:       agent.RiskTolerance,
			payloadReputation: agent.ReputationScore,
			payloadActive:     agent.IsActive,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Points:         []*qdrant.PointStruct{point},
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("upsert agent %q: %w", agent.AgentID, err)
	}

	q.logger.Debug("indexed agent", map[string]interface{}{"agent_id": agent.AgentID})
	return nil
}

// Delete removes an agent's point. Deleting an absent point is a no-op on
// the server side.
func (q *QdrantIndex) Delete(ctx context.Context, agentID string) error {
	if agentID == "" {
		return ErrInvalidAgentID
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collection,
		Points:         qdrant.NewPointsSelector(qdrant.NewID(PointID(agentID))),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("delete agent %q: %w", agentID, err)
	}

	q.logger.Debug("removed agent", map[string]interface{}{"agent_id": agentID})
	return nil
}

// Search runs a filtered nearest-neighbor query. Inactive agents are
// always excluded server-side; exclusion and reputation filters are pushed
// into the query filter. Skill filtering is left to the caller because
// array containment is awkward to express in the index filter language.
func (q *QdrantIndex) Search(ctx context.Context, embedding []float32, filter SearchFilter) ([]Candidate, error) {
	if err := ValidateEmbedding(embedding, q.dim); err != nil {
		return nil, err
	}

	must := []*qdrant.Condition{
		qdrant.NewMatchBool(payloadActive, true),
	}
	if filter.MinReputation > 0 {
		must = append(must, qdrant.NewRange(payloadReputation, &qdrant.Range{
			Gte: qdrant.PtrOf(filter.MinReputation),
		}))
	}

	var mustNot []*qdrant.Condition
	if filter.ExcludeAgentID != "" {
		mustNot = append(mustNot, qdrant.NewMatch(payloadAgentID, filter.ExcludeAgentID))
	}

	req := &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(embedding...),
		Filter:         &qdrant.Filter{Must: must, MustNot: mustNot},
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if filter.Limit > 0 {
		req.Limit = qdrant.PtrOf(uint64(filter.Limit))
	}
	if filter.MinScore > 0 {
		req.ScoreThreshold = qdrant.PtrOf(float32(filter.MinScore))
	}

	points, err := q.client.Query(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search collection %q: %w", q.collection, err)
	}

	candidates := make([]Candidate, 0, len(points))
	for _, p := range points {
		candidates = append(candidates, candidateFromPayload(p.GetPayload(), float64(p.GetScore())))
	}
	return candidates, nil
}

// Close releases the client connection.
func (q *QdrantIndex) Close() error {
	return q.client.Close()
}

// candidateFromPayload reconstructs a Candidate from an indexed payload,
// applying defaults for missing communication attributes.
func candidateFromPayload(payload map[string]*qdrant.Value, score float64) Candidate {
	c := Candidate{
		AgentID:            payloadString(payload, payloadAgentID, ""),
		DisplayName:        payloadString(payload, payloadName, ""),
		CommunicationStyle: payloadString(payload, payloadStyle, DefaultStyle),
		FormalityLevel:     payloadString(payload, payloadFormality, DefaultFormality),
		RiskTolerance:      payloadString(payload, payloadRisk, DefaultRisk),
		VectorScore:        score,
	}

	if v, ok := payload[payloadReputation]; ok {
		c.ReputationScore = v.GetDoubleValue()
	}
	if v, ok := payload[payloadSkills]; ok {
		if list := v.GetListValue(); list != nil {
			for _, item := range list.GetValues() {
				if s := item.GetStringValue(); s != "" {
					c.Skills = append(c.Skills, s)
				}
			}
		}
	}
	return c
}

func payloadString(payload map[string]*qdrant.Value, key, fallback string) string {
	if v, ok := payload[key]; ok {
		if s := v.GetStringValue(); s != "" {
			return s
		}
	}
	return fallback
}

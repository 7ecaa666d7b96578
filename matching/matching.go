package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jagadeeswar-N-G/agent-nexus/logging"
	"github.com/jagadeeswar-N-G/agent-nexus/matchcache"
	"github.com/jagadeeswar-N-G/agent-nexus/vectorindex"
)

// Common errors.
var (
	ErrNilIndex         = errors.New("nil similarity index")
	ErrInvalidDimension = errors.New("vector dimension must be positive")
	ErrInvalidThreshold = errors.New("similarity threshold must be in [0,1]")
)

// Defaults applied when Config fields are zero.
const (
	DefaultTopK       = 50
	DefaultMaxResults = 10
)

// Config is the engine's immutable configuration, validated once at
// construction.
type Config struct {
	// VectorDimension is the fixed embedding dimension. Required.
	VectorDimension int

	// SimilarityThreshold drops candidates whose vector similarity falls
	// below it. Zero disables the cut.
	SimilarityThreshold float64

	// TopK is how many candidates a similarity search fetches before
	// compatibility ranking. Default: 50.
	TopK int

	// MaxResults caps SearchAndRank output. Default: 10.
	MaxResults int
}

func (c *Config) validate() error {
	if c.VectorDimension <= 0 {
		return ErrInvalidDimension
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return ErrInvalidThreshold
	}
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
	if c.MaxResults <= 0 {
		c.MaxResults = DefaultMaxResults
	}
	return nil
}

// AgentAttrs carries the attributes of one agent needed for pairwise
// compatibility scoring. The engine never fetches profile data itself.
type AgentAttrs struct {
	AgentID            string
	Skills             []string
	CommunicationStyle string
	FormalityLevel     string
	RiskTolerance      string
}

// FindOptions restricts a candidate search.
type FindOptions struct {
	// ExcludeAgentID removes one agent (usually the requester) from the
	// results.
	ExcludeAgentID string

	// RequiredSkills, when non-empty, keeps only candidates possessing
	// every listed skill (case-insensitive). Applied as a post-filter
	// over index payloads.
	RequiredSkills []string

	// MinReputation requires candidates to have at least this reputation
	// score (0-100). Zero means no filter.
	MinReputation float64

	// TopK overrides the engine's configured candidate count when > 0.
	TopK int
}

// SearchOptions restricts an end-to-end search-and-rank call.
type SearchOptions struct {
	RequiredSkills []string
	MinReputation  float64

	// MaxResults overrides the engine's configured cap when > 0.
	MaxResults int
}

// Engine matches agents to compatible collaboration partners. It composes
// a similarity index for candidate retrieval, pure scoring functions for
// pairwise compatibility, and a result cache for memoization.
//
// All operations are independently invocable and safe for concurrent use:
// the engine holds no mutable state beyond the adapter handles.
type Engine struct {
	index  vectorindex.Index
	cache  matchcache.Cache
	cfg    Config
	logger *logging.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. Defaults to a nop logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		e.logger = l.WithComponent("matching")
	}
}

// New creates a matching engine. The index is required; a nil cache
// disables memoization (every compatibility call recomputes), which is
// functionally equivalent to a permanently unavailable cache.
func New(index vectorindex.Index, cache matchcache.Cache, cfg Config, opts ...Option) (*Engine, error) {
	if index == nil {
		return nil, ErrNilIndex
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		index:  index,
		cache:  cache,
		cfg:    cfg,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// EnsureCollection creates the backing index collection if needed.
// Idempotent; safe to call repeatedly and concurrently.
func (e *Engine) EnsureCollection(ctx context.Context) error {
	return e.index.EnsureCollection(ctx)
}

// IndexAgent validates and upserts an agent's vector, then invalidates
// all cached compatibility results referencing the agent. Invalidation is
// best-effort: its failure leaves stale entries to expire via TTL.
func (e *Engine) IndexAgent(ctx context.Context, agent vectorindex.AgentVector) error {
	if err := vectorindex.ValidateAgent(agent, e.cfg.VectorDimension); err != nil {
		return err
	}

	if err := e.index.Upsert(ctx, agent); err != nil {
		return fmt.Errorf("index agent %q: %w", agent.AgentID, err)
	}
	e.logger.Info("indexed agent", map[string]interface{}{"agent_id": agent.AgentID})

	e.invalidate(ctx, agent.AgentID)
	return nil
}

// RemoveAgent deletes an agent's vector and invalidates cached results
// referencing it.
func (e *Engine) RemoveAgent(ctx context.Context, agentID string) error {
	if agentID == "" {
		return vectorindex.ErrInvalidAgentID
	}

	if err := e.index.Delete(ctx, agentID); err != nil {
		return fmt.Errorf("remove agent %q: %w", agentID, err)
	}
	e.logger.Info("removed agent", map[string]interface{}{"agent_id": agentID})

	e.invalidate(ctx, agentID)
	return nil
}

// FindCandidates runs a filtered nearest-neighbor search and applies the
// required-skills post-filter. Results keep the index order: descending
// similarity with the index's tie-break.
func (e *Engine) FindCandidates(ctx context.Context, queryEmbedding []float32, opts FindOptions) ([]vectorindex.Candidate, error) {
	if err := vectorindex.ValidateEmbedding(queryEmbedding, e.cfg.VectorDimension); err != nil {
		return nil, err
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = e.cfg.TopK
	}

	hits, err := e.index.Search(ctx, queryEmbedding, vectorindex.SearchFilter{
		ExcludeAgentID: opts.ExcludeAgentID,
		MinReputation:  opts.MinReputation,
		MinScore:       e.cfg.SimilarityThreshold,
		Limit:          topK,
	})
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}

	required := normalizeSkillSet(opts.RequiredSkills)
	if len(required) == 0 {
		return hits, nil
	}

	candidates := hits[:0]
	for _, hit := range hits {
		if hasAllSkills(hit.Skills, required) {
			candidates = append(candidates, hit)
		}
	}
	return candidates, nil
}

// invalidate sweeps cached results for an agent, if a cache is configured.
func (e *Engine) invalidate(ctx context.Context, agentID string) {
	if e.cache == nil {
		return
	}
	e.cache.Invalidate(ctx, agentID)
}

// normalizeSkillSet lowercases and trims a skill list into a set.
func normalizeSkillSet(skills []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		set[s] = struct{}{}
	}
	return set
}

// hasAllSkills reports whether the candidate skills cover every required
// skill, case-insensitively.
func hasAllSkills(candidateSkills []string, required map[string]struct{}) bool {
	have := normalizeSkillSet(candidateSkills)
	for s := range required {
		if _, ok := have[s]; !ok {
			return false
		}
	}
	return true
}

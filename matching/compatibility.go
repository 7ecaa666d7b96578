package matching

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/jagadeeswar-N-G/agent-nexus/matchcache"
	"github.com/jagadeeswar-N-G/agent-nexus/scoring"
	"github.com/jagadeeswar-N-G/agent-nexus/vectorindex"
)

// CompatibilityResult is the immutable outcome of scoring one candidate
// against a requester. The JSON shape doubles as the cache serialization,
// so field tags must not change.
type CompatibilityResult struct {
	AgentID             string   `json:"agent_id"`
	Overall             float64  `json:"overall"`
	SkillMatch          float64  `json:"skill_match"`
	StyleMatch          float64  `json:"style_match"`
	GoalAlignment       float64  `json:"goal_alignment"`
	MatchingSkills      []string `json:"matching_skills"`
	ComplementarySkills []string `json:"complementary_skills"`
	Explanation         string   `json:"explanation"`
}

// ComputeCompatibility scores agent B as a collaboration partner for
// agent A. The vector score is the index-reported similarity between the
// two embeddings (clamped at zero) and stands in for goal alignment;
// reputation is agent B's 0-100 reputation score.
//
// Results are memoized under the unordered pair of agent IDs: a warm
// cache returns the stored result without recomputation or a second cache
// write, regardless of which side initiates the call. A cache outage only
// costs the recompute.
func (e *Engine) ComputeCompatibility(ctx context.Context, agentA, agentB AgentAttrs, vectorScore, reputationB float64) *CompatibilityResult {
	key := matchcache.PairKey(agentA.AgentID, agentB.AgentID)

	if e.cache != nil {
		if raw, ok := e.cache.Get(ctx, key); ok {
			var cached CompatibilityResult
			if err := json.Unmarshal(raw, &cached); err == nil {
				e.logger.Debug("compatibility cache hit", map[string]interface{}{"key": key})
				return &cached
			}
			e.logger.Warn("discarding undecodable cache entry", map[string]interface{}{"key": key})
		}
	}

	skillScore, matchingSkills, complementarySkills := scoring.SkillScore(agentA.Skills, agentB.Skills)
	styleScore := scoring.StyleScore(
		agentA.CommunicationStyle, agentA.FormalityLevel, agentA.RiskTolerance,
		agentB.CommunicationStyle, agentB.FormalityLevel, agentB.RiskTolerance,
	)
	repFactor := scoring.ReputationFactor(reputationB)

	goalAlignment := vectorScore
	if goalAlignment < 0 {
		goalAlignment = 0
	}

	overall := scoring.Overall(goalAlignment, skillScore, styleScore, repFactor)

	result := &CompatibilityResult{
		AgentID:             agentB.AgentID,
		Overall:             overall,
		SkillMatch:          scoring.Round4(skillScore),
		StyleMatch:          scoring.Round4(styleScore),
		GoalAlignment:       scoring.Round4(goalAlignment),
		MatchingSkills:      matchingSkills,
		ComplementarySkills: complementarySkills,
		Explanation: scoring.Explanation(
			overall, skillScore, styleScore, goalAlignment,
			matchingSkills, complementarySkills,
		),
	}

	if e.cache != nil {
		if raw, err := json.Marshal(result); err == nil {
			e.cache.Set(ctx, key, raw)
		}
	}
	return result
}

// SearchAndRank finds candidates for a query embedding, scores each
// against the requester, and returns the results sorted by descending
// overall compatibility, truncated to the result cap. The sort is stable,
// so ties keep the index-search order. No candidates yields an empty
// slice, never an error.
func (e *Engine) SearchAndRank(ctx context.Context, queryEmbedding []float32, requester AgentAttrs, opts SearchOptions) ([]*CompatibilityResult, error) {
	candidates, err := e.FindCandidates(ctx, queryEmbedding, FindOptions{
		ExcludeAgentID: requester.AgentID,
		RequiredSkills: opts.RequiredSkills,
		MinReputation:  opts.MinReputation,
	})
	if err != nil {
		return nil, err
	}

	results := make([]*CompatibilityResult, 0, len(candidates))
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results = append(results, e.ComputeCompatibility(ctx, requester, candidateAttrs(candidate), candidate.VectorScore, candidate.ReputationScore))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Overall > results[j].Overall
	})

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = e.cfg.MaxResults
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// candidateAttrs lifts a search hit into scoring attributes.
func candidateAttrs(c vectorindex.Candidate) AgentAttrs {
	return AgentAttrs{
		AgentID:            c.AgentID,
		Skills:             c.Skills,
		CommunicationStyle: c.CommunicationStyle,
		FormalityLevel:     c.FormalityLevel,
		RiskTolerance:      c.RiskTolerance,
	}
}

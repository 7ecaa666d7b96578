// Package scoring computes pairwise agent compatibility sub-scores and
// blends them into an overall score with a human-readable explanation.
//
// All functions are pure and deterministic: identical inputs produce
// byte-identical outputs, which the result cache depends on.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Weights for blending sub-scores into the overall compatibility score.
// They sum to 1.0, so any combination of valid sub-scores stays in [0,1].
const (
	WeightGoal       = 0.35
	WeightSkill      = 0.30
	WeightStyle      = 0.20
	WeightReputation = 0.15
)

// Weights for blending skill overlap against skill complementarity.
const (
	weightOverlap    = 0.6
	weightComplement = 0.4
)

// SkillScore computes the skill compatibility between two skill sets.
//
// Skills are normalized (trimmed, lowercased) before comparison. The score
// blends Jaccard overlap with a complement ratio: shared skills make
// collaboration feasible, while skills only one side has make the pairing
// valuable. Returns the score in [0,1], the sorted intersection, and the
// sorted symmetric difference. Both sets empty yields a zero score.
func SkillScore(skillsA, skillsB []string) (float64, []string, []string) {
	setA := normalizeSkills(skillsA)
	setB := normalizeSkills(skillsB)

	if len(setA) == 0 && len(setB) == 0 {
		return 0, []string{}, []string{}
	}

	matching := []string{}
	complementary := []string{}
	union := len(setB)
	for s := range setA {
		if _, ok := setB[s]; ok {
			matching = append(matching, s)
		} else {
			complementary = append(complementary, s)
			union++
		}
	}
	for s := range setB {
		if _, ok := setA[s]; !ok {
			complementary = append(complementary, s)
		}
	}
	sort.Strings(matching)
	sort.Strings(complementary)

	jaccard := float64(len(matching)) / float64(union)
	complementRatio := float64(len(complementary)) / float64(union)

	score := weightOverlap*jaccard + weightComplement*complementRatio
	return math.Min(score, 1.0), matching, complementary
}

// ReputationFactor converts a reputation score on the 0-100 scale to a
// [0,1] factor. Inputs outside the scale are clamped.
func ReputationFactor(reputation float64) float64 {
	return clamp01(reputation / 100.0)
}

// Overall blends the four sub-scores into the overall compatibility score,
// clamped to [0,1] and rounded to 4 decimal places.
func Overall(goalAlignment, skillScore, styleScore, reputationFactor float64) float64 {
	overall := WeightGoal*goalAlignment +
		WeightSkill*skillScore +
		WeightStyle*styleScore +
		WeightReputation*reputationFactor
	return Round4(clamp01(overall))
}

// Explanation generates a deterministic natural-language summary of a
// compatibility result. Consumers rely on exact substrings, so the wording
// must not change between releases.
func Explanation(overall, skillMatch, styleMatch, goalAlignment float64, matchingSkills, complementarySkills []string) string {
	var parts []string

	switch {
	case overall >= 0.8:
		parts = append(parts, "Excellent compatibility.")
	case overall >= 0.6:
		parts = append(parts, "Good compatibility.")
	case overall >= 0.4:
		parts = append(parts, "Moderate compatibility.")
	default:
		parts = append(parts, "Low compatibility.")
	}

	if len(matchingSkills) > 0 {
		parts = append(parts, fmt.Sprintf("Shared skills: %s.", strings.Join(truncate(matchingSkills, 5), ", ")))
	}
	if len(complementarySkills) > 0 {
		parts = append(parts, fmt.Sprintf("Complementary skills: %s.", strings.Join(truncate(complementarySkills, 5), ", ")))
	}

	if styleMatch >= 0.8 {
		parts = append(parts, "Communication styles align well.")
	} else if styleMatch < 0.5 {
		parts = append(parts, "Communication styles may clash.")
	}

	return strings.Join(parts, " ")
}

// Round4 rounds a score to 4 decimal places, the precision stored in
// results and cache entries.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func truncate(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// normalizeSkills trims and lowercases a skill list into a set,
// dropping entries that are empty after normalization.
func normalizeSkills(skills []string) map[string]struct{} {
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

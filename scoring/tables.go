package scoring

import "strings"

// neutralCompat is used for any attribute pair not present in a table.
// Unrecognized values are treated as unknown rather than rejected.
const neutralCompat = 0.5

// Weights for blending the three communication attributes.
const (
	weightStyleAttr     = 0.4
	weightFormalityAttr = 0.35
	weightRiskAttr      = 0.25
)

type attrPair struct {
	a, b string
}

// styleCompat scores communication style pairings. Values are symmetric
// but both directions are populated: lookups honor input order.
var styleCompat = map[attrPair]float64{
	{"concise", "concise"}:   0.9,
	{"concise", "balanced"}:  0.7,
	{"concise", "detailed"}:  0.4,
	{"balanced", "concise"}:  0.7,
	{"balanced", "balanced"}: 1.0,
	{"balanced", "detailed"}: 0.7,
	{"detailed", "concise"}:  0.4,
	{"detailed", "balanced"}: 0.7,
	{"detailed", "detailed"}: 0.9,
}

var formalityCompat = map[attrPair]float64{
	{"casual", "casual"}:             1.0,
	{"casual", "professional"}:       0.6,
	{"casual", "formal"}:             0.3,
	{"professional", "casual"}:       0.6,
	{"professional", "professional"}: 1.0,
	{"professional", "formal"}:       0.7,
	{"formal", "casual"}:             0.3,
	{"formal", "professional"}:       0.7,
	{"formal", "formal"}:             1.0,
}

var riskCompat = map[attrPair]float64{
	{"cautious", "cautious"}:     1.0,
	{"cautious", "moderate"}:     0.7,
	{"cautious", "aggressive"}:   0.3,
	{"moderate", "cautious"}:     0.7,
	{"moderate", "moderate"}:     1.0,
	{"moderate", "aggressive"}:   0.6,
	{"aggressive", "cautious"}:   0.3,
	{"aggressive", "moderate"}:   0.6,
	{"aggressive", "aggressive"}: 0.9,
}

// StyleScore computes communication compatibility between two agents from
// their communication style, formality level, and risk tolerance. Each
// attribute pair is looked up in a fixed table; unknown values score
// neutral (0.5).
func StyleScore(styleA, formalityA, riskA, styleB, formalityB, riskB string) float64 {
	style := lookupCompat(styleCompat, styleA, styleB)
	formality := lookupCompat(formalityCompat, formalityA, formalityB)
	risk := lookupCompat(riskCompat, riskA, riskB)
	return weightStyleAttr*style + weightFormalityAttr*formality + weightRiskAttr*risk
}

func lookupCompat(table map[attrPair]float64, a, b string) float64 {
	if v, ok := table[attrPair{strings.ToLower(a), strings.ToLower(b)}]; ok {
		return v
	}
	return neutralCompat
}

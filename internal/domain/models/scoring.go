package models

// ScoreCategory buckets the weighted score into a discrete label.
type ScoreCategory string

const (
	CategoryStrongBullish ScoreCategory = "Strong Bullish"
	CategoryBullish       ScoreCategory = "Bullish"
	CategorySideways      ScoreCategory = "Sideways"
	CategoryBearish       ScoreCategory = "Bearish"
	CategoryStrongBearish ScoreCategory = "Strong Bearish"
)

// WeightConfig maps rule name to a non-negative weight. Weights need not sum
// to one; the scoring engine normalizes. Every evaluated rule must have
// exactly one entry — nothing is silently defaulted.
type WeightConfig map[string]float64

// ScoreResult is the weighted, normalized combination of rule opinions.
type ScoreResult struct {
	Score         float64            `json:"score"` // [-1, +1]
	Category      ScoreCategory      `json:"category"`
	Confidence    float64            `json:"confidence"` // [0, 1], rule agreement
	Contributions map[string]float64 `json:"contributions,omitempty"`
}

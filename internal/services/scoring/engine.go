package scoring

import (
	"math"
	"sort"

	"ChainSight/internal/domain/models"
)

// Category cutoffs on the normalized score.
const (
	strongBullishMin = 0.5
	bullishMin       = 0.2
	bearishMax       = -0.2
	strongBearishMax = -0.5
)

// Engine turns per-rule values into a single normalized score. The score is
// the weight-normalized sum of rule values, so it is invariant under scaling
// every weight by the same positive factor and always lands in [-1, 1].
type Engine struct {
	weights models.WeightConfig
	order   []string
}

// NewEngine validates weights against the known rule names before anything
// is scored. Every rule needs a weight, no weight may target an unknown
// rule, and weights are non-negative with a positive sum. A bad config is
// rejected here, never papered over at scoring time.
func NewEngine(weights models.WeightConfig, ruleNames []string) (*Engine, error) {
	known := make(map[string]bool, len(ruleNames))
	for _, name := range ruleNames {
		known[name] = true
	}

	cfgErr := &models.InvalidWeightConfigurationError{}
	sum := 0.0
	for _, name := range ruleNames {
		w, ok := weights[name]
		if !ok {
			cfgErr.MissingRules = append(cfgErr.MissingRules, name)
			continue
		}
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			cfgErr.NegativeRule = name
		}
		sum += w
	}
	for name := range weights {
		if !known[name] {
			cfgErr.UnknownRules = append(cfgErr.UnknownRules, name)
		}
	}
	sort.Strings(cfgErr.UnknownRules)
	if len(cfgErr.MissingRules) > 0 || len(cfgErr.UnknownRules) > 0 || cfgErr.NegativeRule != "" {
		return nil, cfgErr
	}
	if sum <= 0 {
		return nil, &models.InvalidWeightConfigurationError{NegativeRule: "all weights zero"}
	}

	order := make([]string, len(ruleNames))
	copy(order, ruleNames)
	return &Engine{weights: weights, order: order}, nil
}

// Score folds the rule results into a ScoreResult. Only the rules that
// actually produced a value participate; their weights renormalize among
// themselves so a skipped rule does not drag the score toward zero.
func (e *Engine) Score(results []models.RuleResult) models.ScoreResult {
	var weighted, totalWeight float64
	contributions := make(map[string]float64, len(results))
	for _, res := range results {
		w := e.weights[res.Name]
		weighted += w * res.Value
		totalWeight += w
		contributions[res.Name] = w * res.Value
	}

	score := 0.0
	if totalWeight > 0 {
		score = weighted / totalWeight
	}
	score = clamp(score, -1, 1)

	return models.ScoreResult{
		Score:         score,
		Category:      Categorize(score),
		Confidence:    confidence(results),
		Contributions: contributions,
	}
}

// Categorize maps a normalized score to its label. Band edges are inclusive
// on the stronger side.
func Categorize(score float64) models.ScoreCategory {
	switch {
	case score >= strongBullishMin:
		return models.CategoryStrongBullish
	case score >= bullishMin:
		return models.CategoryBullish
	case score > bearishMax:
		return models.CategorySideways
	case score > strongBearishMax:
		return models.CategoryBearish
	default:
		return models.CategoryStrongBearish
	}
}

// confidence measures rule agreement: 1 when every rule points the same
// way, falling toward 0 as the values spread apart. Variance of values in
// [-1, 1] tops out at 1, so the complement is already a [0, 1] quantity.
func confidence(results []models.RuleResult) float64 {
	if len(results) == 0 {
		return 0
	}
	mean := 0.0
	for _, res := range results {
		mean += res.Value
	}
	mean /= float64(len(results))

	variance := 0.0
	for _, res := range results {
		d := res.Value - mean
		variance += d * d
	}
	variance /= float64(len(results))
	return clamp(1-variance, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

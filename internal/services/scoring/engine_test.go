package scoring

import (
	"errors"
	"math"
	"testing"

	"ChainSight/internal/domain/models"
)

var ruleNames = []string{"pcr", "oi_buildup", "max_oi", "support_resistance"}

func defaultWeights() models.WeightConfig {
	return models.WeightConfig{
		"pcr":                1.0,
		"oi_buildup":         1.0,
		"max_oi":             1.0,
		"support_resistance": 1.0,
	}
}

func results(values map[string]float64) []models.RuleResult {
	out := make([]models.RuleResult, 0, len(values))
	for _, name := range ruleNames {
		if v, ok := values[name]; ok {
			out = append(out, models.RuleResult{Name: name, Value: v})
		}
	}
	return out
}

func TestScoreBounds(t *testing.T) {
	engine, err := NewEngine(defaultWeights(), ruleNames)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	grids := []float64{-1, -0.5, 0, 0.5, 1}
	for _, a := range grids {
		for _, b := range grids {
			for _, c := range grids {
				res := engine.Score(results(map[string]float64{"pcr": a, "oi_buildup": b, "max_oi": c, "support_resistance": -a}))
				if res.Score < -1 || res.Score > 1 {
					t.Fatalf("score %v out of bounds", res.Score)
				}
				if res.Confidence < 0 || res.Confidence > 1 {
					t.Fatalf("confidence %v out of bounds", res.Confidence)
				}
			}
		}
	}
}

func TestScoreWeightScaleInvariance(t *testing.T) {
	weights := models.WeightConfig{"pcr": 2, "oi_buildup": 1, "max_oi": 0.5, "support_resistance": 1.5}
	scaled := models.WeightConfig{}
	for k, v := range weights {
		scaled[k] = v * 7
	}
	e1, err := NewEngine(weights, ruleNames)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	e2, err := NewEngine(scaled, ruleNames)
	if err != nil {
		t.Fatalf("new scaled engine: %v", err)
	}
	in := results(map[string]float64{"pcr": 0.35, "oi_buildup": 0.6, "max_oi": 0.8, "support_resistance": 0.5})
	if s1, s2 := e1.Score(in).Score, e2.Score(in).Score; math.Abs(s1-s2) > 1e-12 {
		t.Fatalf("scaled weights changed score: %v vs %v", s1, s2)
	}
}

func TestScoreBullishScenario(t *testing.T) {
	engine, err := NewEngine(defaultWeights(), ruleNames)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	// PCR 1.35, long build-up, spot holding above max put OI support.
	res := engine.Score(results(map[string]float64{
		"pcr":                0.35,
		"oi_buildup":         0.6,
		"max_oi":             0.7,
		"support_resistance": 0.5,
	}))
	if res.Category != models.CategoryStrongBullish {
		t.Fatalf("expected Strong Bullish, got %s (score %v)", res.Category, res.Score)
	}
	if res.Confidence <= 0.5 {
		t.Fatalf("agreeing rules should score high confidence, got %v", res.Confidence)
	}
}

func TestCategorizeEdges(t *testing.T) {
	cases := []struct {
		score float64
		want  models.ScoreCategory
	}{
		{0.5, models.CategoryStrongBullish},
		{0.49, models.CategoryBullish},
		{0.2, models.CategoryBullish},
		{0.19, models.CategorySideways},
		{-0.19, models.CategorySideways},
		{-0.2, models.CategoryBearish},
		{-0.49, models.CategoryBearish},
		{-0.5, models.CategoryStrongBearish},
	}
	for _, tc := range cases {
		if got := Categorize(tc.score); got != tc.want {
			t.Fatalf("score %v: expected %s, got %s", tc.score, tc.want, got)
		}
	}
}

func TestNewEngineRejectsMissingRule(t *testing.T) {
	weights := defaultWeights()
	delete(weights, "max_oi")
	_, err := NewEngine(weights, ruleNames)
	var cfgErr *models.InvalidWeightConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected InvalidWeightConfigurationError, got %v", err)
	}
	if len(cfgErr.MissingRules) != 1 || cfgErr.MissingRules[0] != "max_oi" {
		t.Fatalf("unexpected missing rules: %v", cfgErr.MissingRules)
	}
}

func TestNewEngineRejectsUnknownRule(t *testing.T) {
	weights := defaultWeights()
	weights["vix_regime"] = 1.0
	_, err := NewEngine(weights, ruleNames)
	var cfgErr *models.InvalidWeightConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected InvalidWeightConfigurationError, got %v", err)
	}
	if len(cfgErr.UnknownRules) != 1 || cfgErr.UnknownRules[0] != "vix_regime" {
		t.Fatalf("unexpected unknown rules: %v", cfgErr.UnknownRules)
	}
}

func TestNewEngineRejectsNegativeWeight(t *testing.T) {
	weights := defaultWeights()
	weights["pcr"] = -0.5
	if _, err := NewEngine(weights, ruleNames); err == nil {
		t.Fatalf("expected error for negative weight")
	}
}

func TestScoreSkippedRuleRenormalizes(t *testing.T) {
	engine, err := NewEngine(defaultWeights(), ruleNames)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	// Only two rules ran, both fully bullish. The score should still reach 1.
	res := engine.Score(results(map[string]float64{"pcr": 1, "oi_buildup": 1}))
	if math.Abs(res.Score-1) > 1e-12 {
		t.Fatalf("expected score 1 with renormalized weights, got %v", res.Score)
	}
}

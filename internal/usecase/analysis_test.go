package usecase

import (
	"testing"

	"ChainSight/internal/domain/models"
	"ChainSight/internal/services/safety"
)

func defaultWeights() models.WeightConfig {
	return models.WeightConfig{
		"pcr":                1.0,
		"oi_buildup":         1.0,
		"max_oi":             1.0,
		"support_resistance": 1.0,
	}
}

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(defaultWeights(), safety.DefaultThresholds(), nil)
	if err != nil {
		t.Fatalf("new analyzer: %v", err)
	}
	return a
}

func bullishFeatures() *models.FeatureSet {
	return &models.FeatureSet{
		Symbol:          "NIFTY",
		Spot:            models.Float64Ptr(22450),
		ATMStrike:       models.Float64Ptr(22450),
		PCR:             models.Float64Ptr(1.35),
		Support:         models.Float64Ptr(22400),
		Resistance:      models.Float64Ptr(23000),
		MaxCallOIStrike: models.Float64Ptr(23000),
		MaxPutOIStrike:  models.Float64Ptr(22400),
		IV:              models.Float64Ptr(18),
		OIBuildup:       models.BuildupLong,
		ExpiryType:      models.ExpiryMonthly,
		DaysToExpiry:    models.IntPtr(14),
	}
}

func TestAnalyzeBullishSetup(t *testing.T) {
	a := newTestAnalyzer(t)
	analysis, err := a.Analyze(bullishFeatures(), true)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.Bias != models.BiasBullish {
		t.Fatalf("expected bullish bias, got %s", analysis.Bias)
	}
	if analysis.Recommendation != models.RecommendCall {
		t.Fatalf("expected Call, got %s", analysis.Recommendation)
	}
	if analysis.Score <= 0 {
		t.Fatalf("expected positive score, got %v", analysis.Score)
	}
	if analysis.Explanation == nil || len(analysis.Explanation.Why) != 4 {
		t.Fatalf("explanation should carry one reason per rule")
	}
	if len(analysis.Warnings) == 0 {
		t.Fatalf("capital risk disclaimer should always be present")
	}
}

func TestAnalyzeBlockingOverridesRecommendation(t *testing.T) {
	a := newTestAnalyzer(t)
	fs := bullishFeatures()
	fs.ExpiryType = models.ExpiryWeekly
	fs.DaysToExpiry = models.IntPtr(1)

	analysis, err := a.Analyze(fs, true)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.Recommendation != models.RecommendNoTrade {
		t.Fatalf("blocking warning must force No-Trade, got %s", analysis.Recommendation)
	}
	if analysis.Bias != models.BiasNoTrade {
		t.Fatalf("blocking warning must force No-Trade bias, got %s", analysis.Bias)
	}
	if analysis.RiskLevel != models.RiskHigh {
		t.Fatalf("blocked setup must be high risk, got %s", analysis.RiskLevel)
	}
	// The score itself is untouched: only the verdict is overridden.
	if analysis.Score <= 0 {
		t.Fatalf("score should still reflect the bullish chain, got %v", analysis.Score)
	}
	if analysis.ScoreCategory != models.CategoryStrongBullish {
		t.Fatalf("category should be untouched, got %s", analysis.ScoreCategory)
	}
}

func TestAnalyzeWeeklyExpiryDowngradedWhenUnblocked(t *testing.T) {
	a := newTestAnalyzer(t)
	fs := bullishFeatures()
	fs.ExpiryType = models.ExpiryWeekly
	fs.DaysToExpiry = models.IntPtr(1)

	analysis, err := a.Analyze(fs, false)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.Recommendation != models.RecommendCall {
		t.Fatalf("unblocked weekly expiry should only warn, got %s", analysis.Recommendation)
	}
	found := false
	for _, w := range analysis.Warnings {
		if w.Code == models.WarnWeeklyExpiry && w.Severity == models.SeverityWarning {
			found = true
		}
	}
	if !found {
		t.Fatalf("weekly expiry warning missing or wrong severity: %+v", analysis.Warnings)
	}
}

func TestAnalyzeVeryLowIVBlocks(t *testing.T) {
	a := newTestAnalyzer(t)
	fs := bullishFeatures()
	fs.IV = models.Float64Ptr(8)

	analysis, err := a.Analyze(fs, true)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.Recommendation != models.RecommendNoTrade {
		t.Fatalf("very low IV must block, got %s", analysis.Recommendation)
	}
}

func TestAnalyzeSidewaysMeansNoTrade(t *testing.T) {
	a := newTestAnalyzer(t)
	fs := bullishFeatures()
	fs.PCR = models.Float64Ptr(1.0)
	fs.OIBuildup = models.BuildupMixed
	fs.Spot = models.Float64Ptr(22600)

	analysis, err := a.Analyze(fs, true)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.Bias != models.BiasSideways {
		t.Fatalf("expected sideways, got %s (score %v)", analysis.Bias, analysis.Score)
	}
	if analysis.Recommendation != models.RecommendNoTrade {
		t.Fatalf("sideways bias must not recommend a direction, got %s", analysis.Recommendation)
	}
}

func TestAnalyzeMissingFeatureFails(t *testing.T) {
	a := newTestAnalyzer(t)
	fs := bullishFeatures()
	fs.PCR = nil

	if _, err := a.Analyze(fs, true); err == nil {
		t.Fatalf("missing feature must fail the analysis")
	}
}

func TestNewAnalyzerRejectsBadConfig(t *testing.T) {
	weights := defaultWeights()
	delete(weights, "pcr")
	if _, err := NewAnalyzer(weights, safety.DefaultThresholds(), nil); err == nil {
		t.Fatalf("missing weight must fail construction")
	}

	th := safety.DefaultThresholds()
	th.LowIV = 5
	if _, err := NewAnalyzer(defaultWeights(), th, nil); err == nil {
		t.Fatalf("inverted IV thresholds must fail construction")
	}
}

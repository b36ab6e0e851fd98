package rules

import (
	"errors"
	"math"
	"testing"

	"ChainSight/internal/domain/models"
)

func fullFeatures() *models.FeatureSet {
	return &models.FeatureSet{
		Symbol:          "NIFTY",
		Spot:            models.Float64Ptr(22450),
		ATMStrike:       models.Float64Ptr(22450),
		PCR:             models.Float64Ptr(1.35),
		Support:         models.Float64Ptr(22400),
		Resistance:      models.Float64Ptr(22800),
		MaxCallOIStrike: models.Float64Ptr(22800),
		MaxPutOIStrike:  models.Float64Ptr(22400),
		IV:              models.Float64Ptr(18),
		OIBuildup:       models.BuildupLong,
		ExpiryType:      models.ExpiryMonthly,
		DaysToExpiry:    models.IntPtr(14),
	}
}

func TestEvaluatorAllRulesRun(t *testing.T) {
	ev := NewEvaluator(NewRegistry(), nil)
	results, err := ev.Evaluate(fullFeatures())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	want := []string{RulePCR, RuleOIBuildup, RuleMaxOI, RuleSupportResistance}
	for i, name := range want {
		if results[i].Name != name {
			t.Fatalf("result %d: expected %s, got %s", i, name, results[i].Name)
		}
		if results[i].Value < -1 || results[i].Value > 1 {
			t.Fatalf("rule %s: value %v out of bounds", name, results[i].Value)
		}
		if results[i].Explanation == "" {
			t.Fatalf("rule %s: empty explanation", name)
		}
	}
}

func TestEvaluatorMissingFeatureFails(t *testing.T) {
	fs := fullFeatures()
	fs.PCR = nil
	ev := NewEvaluator(NewRegistry(), nil)
	_, err := ev.Evaluate(fs)
	var missing *models.MissingFeatureError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFeatureError, got %v", err)
	}
	if missing.Rule != RulePCR || missing.Feature != "pcr" {
		t.Fatalf("unexpected error contents: %+v", missing)
	}
}

func TestEvaluatorTolerateMissing(t *testing.T) {
	fs := fullFeatures()
	fs.PCR = nil
	fs.Support = nil
	fs.Resistance = nil
	ev := NewEvaluator(NewRegistry(), nil, WithTolerateMissing())
	results, err := ev.Evaluate(fs)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results with two rules skipped, got %d", len(results))
	}
	for _, res := range results {
		if res.Name == RulePCR || res.Name == RuleSupportResistance {
			t.Fatalf("rule %s should have been skipped", res.Name)
		}
	}
}

func TestPCRMapping(t *testing.T) {
	rule := NewPCRRule()
	cases := []struct {
		ratio float64
		value float64
		tag   string
	}{
		{1.0, 0, TagPCRNeutral},
		{1.35, 0.35, TagPCRBullish},
		{0.9, -0.1, TagPCRNeutral},
		{2.5, 1, TagPCRExtremeBullish},
		{0.2, -1, TagPCRExtremeBearish},
		{0.5, -0.68, TagPCRBearish},
	}
	for _, tc := range cases {
		fs := fullFeatures()
		fs.PCR = models.Float64Ptr(tc.ratio)
		value, tag, _, err := rule.Evaluate(fs)
		if err != nil {
			t.Fatalf("pcr %.2f: %v", tc.ratio, err)
		}
		if math.Abs(value-tc.value) > 1e-9 {
			t.Fatalf("pcr %.2f: expected value %v, got %v", tc.ratio, tc.value, value)
		}
		if tag != tc.tag {
			t.Fatalf("pcr %.2f: expected tag %s, got %s", tc.ratio, tc.tag, tag)
		}
	}
}

func TestPCRContinuityAtBandEdges(t *testing.T) {
	rule := NewPCRRule()
	for _, edge := range []float64{0.8, 1.2} {
		fs := fullFeatures()
		fs.PCR = models.Float64Ptr(edge - 1e-9)
		below, _, _, _ := rule.Evaluate(fs)
		fs.PCR = models.Float64Ptr(edge + 1e-9)
		above, _, _, _ := rule.Evaluate(fs)
		if math.Abs(above-below) > 1e-6 {
			t.Fatalf("discontinuity at %.1f: %v vs %v", edge, below, above)
		}
	}
}

func TestOIBuildupValues(t *testing.T) {
	rule := NewOIBuildupRule()
	cases := []struct {
		buildup models.OIBuildup
		value   float64
		tag     string
	}{
		{models.BuildupLong, 0.6, TagOILongBuildup},
		{models.BuildupShort, -0.6, TagOIShortBuildup},
		{models.BuildupUnwinding, -0.2, TagOIUnwinding},
		{models.BuildupMixed, 0, TagOIMixed},
	}
	for _, tc := range cases {
		fs := fullFeatures()
		fs.OIBuildup = tc.buildup
		value, tag, _, err := rule.Evaluate(fs)
		if err != nil {
			t.Fatalf("%s: %v", tc.buildup, err)
		}
		if value != tc.value || tag != tc.tag {
			t.Fatalf("%s: got (%v, %s), want (%v, %s)", tc.buildup, value, tag, tc.value, tc.tag)
		}
	}

	fs := fullFeatures()
	fs.OIBuildup = "Sideways Buildup"
	if _, _, _, err := rule.Evaluate(fs); err == nil {
		t.Fatalf("expected error for unknown classification")
	}
}

func TestMaxOILean(t *testing.T) {
	rule := NewMaxOIRule()

	fs := fullFeatures()
	fs.Spot = models.Float64Ptr(22420)
	value, tag, _, err := rule.Evaluate(fs)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if value <= 0 || tag != TagMaxOISupport {
		t.Fatalf("spot near put wall: got (%v, %s)", value, tag)
	}

	fs.Spot = models.Float64Ptr(22780)
	value, tag, _, err = rule.Evaluate(fs)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if value >= 0 || tag != TagMaxOIResistance {
		t.Fatalf("spot near call wall: got (%v, %s)", value, tag)
	}

	fs.Spot = models.Float64Ptr(22600)
	value, tag, _, err = rule.Evaluate(fs)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if tag != TagMaxOIBalanced {
		t.Fatalf("spot mid-range: got (%v, %s)", value, tag)
	}
}

func TestSupportResistanceBands(t *testing.T) {
	rule := NewSupportResistanceRule()

	cases := []struct {
		name                      string
		spot, support, resistance float64
		value                     float64
		tag                       string
	}{
		{"pressing support", 22410, 22400, 22900, 0.3, TagSRNearSupport},
		{"support in far band", 22700, 22400, 23500, 0.2, TagSRNearSupport},
		{"pressing resistance", 22790, 22300, 22800, -0.3, TagSRNearResistance},
		{"resistance in far band", 22700, 22000, 23000, -0.2, TagSRNearResistance},
		{"both walls close", 22600, 22400, 22800, 0, TagSRRangeBound},
		{"mid range", 22600, 22000, 23200, 0, TagSRRangeBound},
	}
	for _, tc := range cases {
		fs := fullFeatures()
		fs.Spot = models.Float64Ptr(tc.spot)
		fs.Support = models.Float64Ptr(tc.support)
		fs.Resistance = models.Float64Ptr(tc.resistance)
		value, tag, _, err := rule.Evaluate(fs)
		if err != nil {
			t.Fatalf("%s: evaluate: %v", tc.name, err)
		}
		if math.Abs(value-tc.value) > 1e-12 || tag != tc.tag {
			t.Fatalf("%s: got (%v, %s), want (%v, %s)", tc.name, value, tag, tc.value, tc.tag)
		}
	}
}

func TestSupportResistanceOneSided(t *testing.T) {
	rule := NewSupportResistanceRule()

	// A chain can legitimately carry a put wall on one side only.
	fs := fullFeatures()
	fs.Spot = models.Float64Ptr(22410)
	fs.Resistance = nil
	value, tag, _, err := rule.Evaluate(fs)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if value != 0.3 || tag != TagSRNearSupport {
		t.Fatalf("support only: got (%v, %s)", value, tag)
	}

	fs.Support = nil
	_, _, _, err = rule.Evaluate(fs)
	var missing *models.MissingFeatureError
	if !errors.As(err, &missing) {
		t.Fatalf("no levels at all should fail, got %v", err)
	}
}

func TestNaiveBias(t *testing.T) {
	cases := []struct {
		values []float64
		want   models.MarketBias
	}{
		{[]float64{0.5, 0.3, 0.4, 0.2}, models.BiasBullish},
		{[]float64{-0.5, -0.3, -0.4, -0.2}, models.BiasBearish},
		{[]float64{0.5, -0.5, 0.1, -0.1}, models.BiasSideways},
		{nil, models.BiasSideways},
	}
	for _, tc := range cases {
		results := make([]models.RuleResult, 0, len(tc.values))
		for _, v := range tc.values {
			results = append(results, models.RuleResult{Value: v})
		}
		if got := NaiveBias(results); got != tc.want {
			t.Fatalf("values %v: got %s, want %s", tc.values, got, tc.want)
		}
	}
}

package explain

import (
	"reflect"
	"strings"
	"testing"

	"ChainSight/internal/domain/models"
	"ChainSight/internal/services/rules"
)

func registrySources() []TagSource {
	reg := rules.NewRegistry()
	sources := make([]TagSource, 0, len(reg.Rules()))
	for _, r := range reg.Rules() {
		sources = append(sources, r)
	}
	return sources
}

func TestNewExplainerCoversAllTags(t *testing.T) {
	if _, err := NewExplainer(registrySources()); err != nil {
		t.Fatalf("registry tags should all be covered: %v", err)
	}
}

func TestNewExplainerRejectsUnknownTag(t *testing.T) {
	src := fakeRule{name: "volume_spike", tags: []string{"volume_spike_up"}}
	if _, err := NewExplainer([]TagSource{src}); err == nil {
		t.Fatalf("expected error for unmapped tag")
	}
}

type fakeRule struct {
	name string
	tags []string
}

func (f fakeRule) Name() string   { return f.name }
func (f fakeRule) Tags() []string { return f.tags }

func sampleEvaluation() *models.Evaluation {
	return &models.Evaluation{
		Bias:           models.BiasBullish,
		Recommendation: models.RecommendCall,
		Confidence:     0.92,
		RiskLevel:      models.RiskLow,
		RuleResults: []models.RuleResult{
			{Name: "pcr", Value: 0.35, Tag: "pcr_bullish"},
			{Name: "oi_buildup", Value: 0.6, Tag: "oi_long_buildup"},
		},
	}
}

func TestExplainRendersAllSections(t *testing.T) {
	ex, err := NewExplainer(registrySources())
	if err != nil {
		t.Fatalf("new explainer: %v", err)
	}
	warnings := []models.Warning{{Severity: models.SeverityInfo, Code: models.WarnCapitalRisk, Message: "x"}}
	out := ex.Explain(sampleEvaluation(), warnings)

	if out.MarketBias != "Bullish" {
		t.Fatalf("unexpected bias %q", out.MarketBias)
	}
	if out.SuggestedAction == "" || out.RiskLevel == "" {
		t.Fatalf("action and risk sections must render")
	}
	if len(out.Why) != 2 {
		t.Fatalf("expected one reason per rule result, got %d", len(out.Why))
	}
	if !strings.HasSuffix(out.Why[0], "(signal +0.35)") || !strings.HasSuffix(out.Why[1], "(signal +0.60)") {
		t.Fatalf("reasons must carry the rule magnitude: %q", out.Why)
	}
	if len(out.WhatCanGoWrong) == 0 {
		t.Fatalf("pitfalls must render")
	}
	if len(out.Warnings) != 1 || out.Warnings[0].Code != models.WarnCapitalRisk {
		t.Fatalf("warnings must pass through untouched")
	}
}

func TestExplainIsDeterministic(t *testing.T) {
	ex, err := NewExplainer(registrySources())
	if err != nil {
		t.Fatalf("new explainer: %v", err)
	}
	eval := sampleEvaluation()
	a := ex.Explain(eval, nil)
	b := ex.Explain(eval, nil)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same evaluation rendered differently")
	}
}

func TestExplainNoTrade(t *testing.T) {
	ex, err := NewExplainer(registrySources())
	if err != nil {
		t.Fatalf("new explainer: %v", err)
	}
	eval := &models.Evaluation{
		Bias:           models.BiasNoTrade,
		Recommendation: models.RecommendNoTrade,
		RiskLevel:      models.RiskHigh,
	}
	out := ex.Explain(eval, nil)
	if out.SuggestedAction != actionTemplates[models.RecommendNoTrade] {
		t.Fatalf("unexpected action %q", out.SuggestedAction)
	}
	if len(out.Why) != 0 {
		t.Fatalf("no rule results means no reasons")
	}
}

func TestExplainLowConfidenceCaveat(t *testing.T) {
	ex, err := NewExplainer(registrySources())
	if err != nil {
		t.Fatalf("new explainer: %v", err)
	}

	eval := sampleEvaluation()
	eval.Confidence = 0.3
	out := ex.Explain(eval, nil)
	if out.WhatCanGoWrong[len(out.WhatCanGoWrong)-1] != lowConfidenceCaveat {
		t.Fatalf("confidence %v must append the low-confidence caveat", eval.Confidence)
	}

	eval.Confidence = 0.92
	out = ex.Explain(eval, nil)
	for _, p := range out.WhatCanGoWrong {
		if p == lowConfidenceCaveat {
			t.Fatalf("confident evaluation must not carry the caveat")
		}
	}
}

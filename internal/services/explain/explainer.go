// Package explain renders an evaluation into plain language a trader
// without an options background can act on. Rendering is pure and
// table-driven: the same evaluation always produces the same text.
package explain

import (
	"fmt"

	"ChainSight/internal/domain/models"
)

// TagSource exposes the tags a rule can emit. Satisfied by the rules
// registry; kept as an interface so this package stays import-light.
type TagSource interface {
	Name() string
	Tags() []string
}

// Explainer renders explanations from the fixed template tables.
type Explainer struct{}

// NewExplainer checks at construction that every tag any rule can emit has
// a why-template, and that every recommendation and risk level is covered.
// A missing template is a programming error surfaced at startup, not a
// blank line surfaced to a user.
func NewExplainer(rules []TagSource) (*Explainer, error) {
	for _, rule := range rules {
		for _, tag := range rule.Tags() {
			if _, ok := whyTemplates[tag]; !ok {
				return nil, fmt.Errorf("explain: rule %s emits tag %q with no template", rule.Name(), tag)
			}
		}
	}
	for _, rec := range []models.Recommendation{models.RecommendCall, models.RecommendPut, models.RecommendNoTrade} {
		if _, ok := actionTemplates[rec]; !ok {
			return nil, fmt.Errorf("explain: recommendation %q has no action template", rec)
		}
		if _, ok := pitfallTemplates[rec]; !ok {
			return nil, fmt.Errorf("explain: recommendation %q has no pitfall template", rec)
		}
	}
	for _, lvl := range []models.RiskLevel{models.RiskLow, models.RiskMedium, models.RiskHigh} {
		if _, ok := riskTemplates[lvl]; !ok {
			return nil, fmt.Errorf("explain: risk level %q has no template", lvl)
		}
	}
	return &Explainer{}, nil
}

// Explain renders the evaluation. Rule reasons appear in evaluation order;
// warnings are passed through untouched so severity stays visible.
func (e *Explainer) Explain(eval *models.Evaluation, warnings []models.Warning) models.Explanation {
	why := make([]string, 0, len(eval.RuleResults))
	for _, res := range eval.RuleResults {
		if tmpl, ok := whyTemplates[res.Tag]; ok {
			why = append(why, fmt.Sprintf("%s (signal %+.2f)", tmpl, res.Value))
		}
	}

	pitfalls := pitfallTemplates[eval.Recommendation]
	if eval.Confidence < lowConfidence {
		pitfalls = append(append([]string{}, pitfalls...), lowConfidenceCaveat)
	}

	return models.Explanation{
		MarketBias:      string(eval.Bias),
		SuggestedAction: actionTemplates[eval.Recommendation],
		Why:             why,
		RiskLevel:       riskTemplates[eval.RiskLevel],
		WhatCanGoWrong:  pitfalls,
		Warnings:        warnings,
	}
}

package models

// Explanation is the beginner-readable rendering of an analysis. It is pure
// presentation over the Evaluation/ScoreResult/SafetyReport triple — any
// discrepancy with those objects is a defect in the explainer, never a new
// decision.
type Explanation struct {
	MarketBias      string    `json:"market_bias"`
	SuggestedAction string    `json:"suggested_action"`
	Why             []string  `json:"why"`
	RiskLevel       string    `json:"risk_level_description"`
	WhatCanGoWrong  []string  `json:"what_can_go_wrong"`
	Warnings        []Warning `json:"warnings"`
}

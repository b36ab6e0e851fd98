package models

// MarketBias is the directional read of the chain.
type MarketBias string

const (
	BiasBullish  MarketBias = "Bullish"
	BiasBearish  MarketBias = "Bearish"
	BiasSideways MarketBias = "Sideways"
	BiasNoTrade  MarketBias = "No-Trade"
)

// Recommendation is the actionable trade suggestion derived from the bias.
type Recommendation string

const (
	RecommendCall    Recommendation = "Call"
	RecommendPut     Recommendation = "Put"
	RecommendNoTrade Recommendation = "No-Trade"
)

// RiskLevel grades how hostile current conditions are for a buyer.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// RuleResult is the directional opinion of one named rule.
// Value is in [-1, +1]: negative bearish, positive bullish, zero neutral.
// Tag is a machine-checkable rationale identifier; Explanation is free text.
type RuleResult struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	Tag         string  `json:"tag"`
	Explanation string  `json:"explanation"`
}

// Evaluation aggregates rule results with the derived trading verdict.
// Built once per analysis run and never mutated afterwards.
type Evaluation struct {
	Bias           MarketBias     `json:"bias"`
	Recommendation Recommendation `json:"recommendation"`
	Confidence     float64        `json:"confidence_score"` // [0, 1]
	RiskLevel      RiskLevel      `json:"risk_level"`
	RuleResults    []RuleResult   `json:"rule_results"`
}

// Analysis is the complete, serializable outcome of one pipeline run:
// evaluation, score, safety report and rendered explanation.
type Analysis struct {
	Bias           MarketBias     `json:"bias"`
	Score          float64        `json:"score"`
	ScoreCategory  ScoreCategory  `json:"score_category"`
	Recommendation Recommendation `json:"recommendation"`
	Confidence     float64        `json:"confidence_score"`
	RiskLevel      RiskLevel      `json:"risk_level"`
	Explanation    *Explanation   `json:"explanation"`
	Warnings       []Warning      `json:"warnings"`
	RuleResults    []RuleResult   `json:"rule_results,omitempty"`
}

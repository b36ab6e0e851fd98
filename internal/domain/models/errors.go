package models

import (
	"fmt"
	"strings"
)

// MissingFeatureError reports that a rule required a feature the FeatureSet
// does not carry. Fatal to the evaluation run unless the evaluator is
// explicitly configured to tolerate partial failure.
type MissingFeatureError struct {
	Rule    string
	Feature string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("rule %s: missing feature %q", e.Rule, e.Feature)
}

// InvalidWeightConfigurationError reports a mismatch between the configured
// weights and the evaluated rule set. Raised before any scoring happens.
type InvalidWeightConfigurationError struct {
	MissingRules []string // rules evaluated but absent from the weight config
	UnknownRules []string // weight entries that match no evaluated rule
	NegativeRule string   // rule with a negative weight, if any
}

func (e *InvalidWeightConfigurationError) Error() string {
	var parts []string
	if len(e.MissingRules) > 0 {
		parts = append(parts, fmt.Sprintf("missing weights for rules: %s", strings.Join(e.MissingRules, ", ")))
	}
	if len(e.UnknownRules) > 0 {
		parts = append(parts, fmt.Sprintf("weights for unknown rules: %s", strings.Join(e.UnknownRules, ", ")))
	}
	if e.NegativeRule != "" {
		parts = append(parts, fmt.Sprintf("negative weight for rule %s", e.NegativeRule))
	}
	if len(parts) == 0 {
		parts = append(parts, "invalid weight configuration")
	}
	return strings.Join(parts, "; ")
}

// InvalidThresholdError reports a nonsensical safety threshold at
// construction time.
type InvalidThresholdError struct {
	Name  string
	Value float64
}

func (e *InvalidThresholdError) Error() string {
	return fmt.Sprintf("invalid threshold %s: %v", e.Name, e.Value)
}

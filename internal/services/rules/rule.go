package rules

import (
	"ChainSight/internal/domain/models"
)

// Rule is one market-structure heuristic. Evaluate returns a directional
// value in [-1, 1] (positive bullish, negative bearish), the qualitative
// tags the value falls under, and a one-line explanation of what it saw.
// A rule that cannot run because an input is absent returns
// *models.MissingFeatureError; it never substitutes a neutral value.
type Rule interface {
	Name() string
	Tags() []string
	Evaluate(fs *models.FeatureSet) (float64, string, string, error)
}

// Rule names. The registry is closed: these four rules and no others.
const (
	RulePCR               = "pcr"
	RuleOIBuildup         = "oi_buildup"
	RuleMaxOI             = "max_oi"
	RuleSupportResistance = "support_resistance"
)

// Registry holds the fixed rule set in evaluation order.
type Registry struct {
	rules []Rule
}

// NewRegistry builds the closed rule set. Order is fixed so downstream
// results and explanations are deterministic.
func NewRegistry() *Registry {
	return &Registry{rules: []Rule{
		NewPCRRule(),
		NewOIBuildupRule(),
		NewMaxOIRule(),
		NewSupportResistanceRule(),
	}}
}

// Rules returns the rules in evaluation order.
func (r *Registry) Rules() []Rule {
	return r.rules
}

// Names returns the rule names in evaluation order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.rules))
	for _, rl := range r.rules {
		names = append(names, rl.Name())
	}
	return names
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

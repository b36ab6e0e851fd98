package rules

import (
	"ChainSight/internal/domain/models"
	"ChainSight/pkg/logger"
)

// Evaluator runs the closed rule set over a feature set and collects the
// per-rule results in registry order.
type Evaluator struct {
	registry *Registry
	log      *logger.Logger

	tolerateMissing bool
}

type Option func(*Evaluator)

// WithTolerateMissing lets evaluation skip rules whose inputs are absent
// instead of failing the whole run. Skipped rules contribute nothing to the
// result slice. Used by the backtester, where sparse historical snapshots
// are routine; the live path keeps the strict default.
func WithTolerateMissing() Option {
	return func(e *Evaluator) { e.tolerateMissing = true }
}

func NewEvaluator(registry *Registry, log *logger.Logger, opts ...Option) *Evaluator {
	e := &Evaluator{registry: registry, log: log}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs every rule against fs in registry order. The first
// non-missing error aborts the run. With tolerance enabled, missing-feature
// errors drop the rule; any other error still aborts.
func (e *Evaluator) Evaluate(fs *models.FeatureSet) ([]models.RuleResult, error) {
	results := make([]models.RuleResult, 0, len(e.registry.Rules()))
	for _, rule := range e.registry.Rules() {
		value, tag, expl, err := rule.Evaluate(fs)
		if err != nil {
			if _, missing := err.(*models.MissingFeatureError); missing && e.tolerateMissing {
				if e.log != nil {
					e.log.Debug("rule skipped, feature missing",
						logger.String("rule", rule.Name()),
						logger.Error(err))
				}
				continue
			}
			return nil, err
		}
		results = append(results, models.RuleResult{
			Name:        rule.Name(),
			Value:       value,
			Tag:         tag,
			Explanation: expl,
		})
	}
	return results, nil
}

// NaiveBias labels the unweighted rule consensus: the sign of the simple
// average of rule values. The scoring engine owns the real verdict; this is
// a sanity reference used to spot weight configurations that invert the raw
// consensus.
func NaiveBias(results []models.RuleResult) models.MarketBias {
	if len(results) == 0 {
		return models.BiasSideways
	}
	var sum float64
	for _, r := range results {
		sum += r.Value
	}
	avg := sum / float64(len(results))
	switch {
	case avg >= 0.2:
		return models.BiasBullish
	case avg <= -0.2:
		return models.BiasBearish
	default:
		return models.BiasSideways
	}
}

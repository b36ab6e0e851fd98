package rules

import (
	"fmt"

	"ChainSight/internal/domain/models"
)

// Tags emitted by the OI build-up rule.
const (
	TagOILongBuildup  = "oi_long_buildup"
	TagOIShortBuildup = "oi_short_buildup"
	TagOIUnwinding    = "oi_unwinding"
	TagOIMixed        = "oi_mixed"
)

// OIBuildupRule reads the session's open-interest build-up classification.
// Fresh longs confirm upside, fresh shorts confirm downside, unwinding and
// mixed sessions carry a weak or no directional signal.
type OIBuildupRule struct{}

func NewOIBuildupRule() *OIBuildupRule { return &OIBuildupRule{} }

func (r *OIBuildupRule) Name() string { return RuleOIBuildup }

func (r *OIBuildupRule) Tags() []string {
	return []string{TagOILongBuildup, TagOIShortBuildup, TagOIUnwinding, TagOIMixed}
}

func (r *OIBuildupRule) Evaluate(fs *models.FeatureSet) (float64, string, string, error) {
	switch fs.OIBuildup {
	case models.BuildupLong:
		return 0.6, TagOILongBuildup, "Fresh long build-up: price rising with open interest (bullish confirmation)", nil
	case models.BuildupShort:
		return -0.6, TagOIShortBuildup, "Fresh short build-up: price falling with rising open interest (bearish confirmation)", nil
	case models.BuildupUnwinding:
		return -0.2, TagOIUnwinding, "Positions unwinding: open interest falling, existing bets being closed", nil
	case models.BuildupMixed:
		return 0, TagOIMixed, "Mixed open-interest activity with no clear directional build-up", nil
	case "", models.BuildupUnknown:
		return 0, "", "", &models.MissingFeatureError{Rule: r.Name(), Feature: "oi_buildup"}
	default:
		return 0, "", "", fmt.Errorf("oi_buildup rule: unknown classification %q", fs.OIBuildup)
	}
}

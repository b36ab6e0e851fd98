package rules

import (
	"fmt"

	"ChainSight/internal/domain/models"
)

// Tags emitted by the max-OI rule.
const (
	TagMaxOISupport    = "max_oi_support"
	TagMaxOIResistance = "max_oi_resistance"
	TagMaxOIBalanced   = "max_oi_balanced"
)

// MaxOIRule compares spot against the strikes holding the largest call and
// put open interest. Heavy put OI below spot acts as a floor, heavy call OI
// above as a ceiling; the side spot sits closer to sets the lean.
type MaxOIRule struct{}

func NewMaxOIRule() *MaxOIRule { return &MaxOIRule{} }

func (r *MaxOIRule) Name() string { return RuleMaxOI }

func (r *MaxOIRule) Tags() []string {
	return []string{TagMaxOISupport, TagMaxOIResistance, TagMaxOIBalanced}
}

func (r *MaxOIRule) Evaluate(fs *models.FeatureSet) (float64, string, string, error) {
	if fs.Spot == nil {
		return 0, "", "", &models.MissingFeatureError{Rule: r.Name(), Feature: "spot"}
	}
	if fs.MaxPutOIStrike == nil {
		return 0, "", "", &models.MissingFeatureError{Rule: r.Name(), Feature: "max_put_oi_strike"}
	}
	if fs.MaxCallOIStrike == nil {
		return 0, "", "", &models.MissingFeatureError{Rule: r.Name(), Feature: "max_call_oi_strike"}
	}

	spot := *fs.Spot
	floor := *fs.MaxPutOIStrike
	ceiling := *fs.MaxCallOIStrike
	if spot <= 0 {
		return 0, "", "", &models.MissingFeatureError{Rule: r.Name(), Feature: "spot"}
	}

	distFloor := (spot - floor) / spot
	distCeiling := (ceiling - spot) / spot

	// Spot hugging the put wall with room to the call wall reads bullish,
	// and symmetrically. Both distances are signed: a wall already broken
	// (spot below the floor or above the ceiling) flips the lean hard.
	span := distFloor + distCeiling
	var value float64
	if span > 0 {
		// 1 when spot sits on the floor, -1 when on the ceiling.
		value = clamp(1-2*distFloor/span, -1, 1)
	}

	var tag, expl string
	switch {
	case value >= 0.25:
		tag = TagMaxOISupport
		expl = fmt.Sprintf("Spot %.0f trades near the max put OI strike %.0f (strong support below)", spot, floor)
	case value <= -0.25:
		tag = TagMaxOIResistance
		expl = fmt.Sprintf("Spot %.0f trades near the max call OI strike %.0f (strong resistance above)", spot, ceiling)
	default:
		tag = TagMaxOIBalanced
		expl = fmt.Sprintf("Spot %.0f sits between max put OI %.0f and max call OI %.0f", spot, floor, ceiling)
	}
	return value, tag, expl, nil
}

package rules

import (
	"fmt"
	"math"

	"ChainSight/internal/domain/models"
)

// Tags emitted by the support/resistance rule.
const (
	TagSRNearSupport    = "sr_near_support"
	TagSRNearResistance = "sr_near_resistance"
	TagSRRangeBound     = "sr_range_bound"
)

// Proximity bands as fractions of spot, with the tilt each band carries.
// A level inside the near band presses hard; inside the far band it still
// matters but less; beyond the far band it contributes nothing.
const (
	srNearPct   = 0.01
	srFarPct    = 0.02
	srNearValue = 0.3
	srFarValue  = 0.2
)

// SupportResistanceRule measures where spot sits relative to the extracted
// support and resistance walls. Bounces are more likely than breaks, so
// spot pressing a level leans toward the bounce direction, scaled by how
// close the level is.
type SupportResistanceRule struct{}

func NewSupportResistanceRule() *SupportResistanceRule { return &SupportResistanceRule{} }

func (r *SupportResistanceRule) Name() string { return RuleSupportResistance }

func (r *SupportResistanceRule) Tags() []string {
	return []string{TagSRNearSupport, TagSRNearResistance, TagSRRangeBound}
}

func (r *SupportResistanceRule) Evaluate(fs *models.FeatureSet) (float64, string, string, error) {
	if fs.Spot == nil || *fs.Spot <= 0 {
		return 0, "", "", &models.MissingFeatureError{Rule: r.Name(), Feature: "spot"}
	}
	if fs.Support == nil && fs.Resistance == nil {
		return 0, "", "", &models.MissingFeatureError{Rule: r.Name(), Feature: "support/resistance"}
	}
	spot := *fs.Spot

	// Signed distances: positive when the level sits on its proper side of
	// spot (support below, resistance above). Either level may be absent
	// when no OI wall exists on that side.
	supportDist, resistanceDist := math.MaxFloat64, math.MaxFloat64
	value := 0.0
	if fs.Support != nil {
		supportDist = (spot - *fs.Support) / spot
		value += proximityValue(supportDist)
	}
	if fs.Resistance != nil {
		resistanceDist = (*fs.Resistance - spot) / spot
		value -= proximityValue(resistanceDist)
	}

	// Both walls inside the far band pin spot in a range; neither side wins.
	if supportDist >= 0 && supportDist < srFarPct && resistanceDist >= 0 && resistanceDist < srFarPct {
		return 0, TagSRRangeBound,
			fmt.Sprintf("Support %.0f and resistance %.0f pin spot %.0f in a tight range", *fs.Support, *fs.Resistance, spot), nil
	}

	switch {
	case value > 0:
		return value, TagSRNearSupport,
			fmt.Sprintf("Spot %.0f sits %.1f%% above support at %.0f, bounce favored", spot, supportDist*100, *fs.Support), nil
	case value < 0:
		return value, TagSRNearResistance,
			fmt.Sprintf("Spot %.0f sits %.1f%% below resistance at %.0f, rejection favored", spot, resistanceDist*100, *fs.Resistance), nil
	default:
		return 0, TagSRRangeBound,
			fmt.Sprintf("Spot %.0f trades clear of the nearest OI walls", spot), nil
	}
}

// proximityValue grades how hard spot presses a level by distance band.
// Negative distances mean the level sits on the wrong side of spot and
// carry no weight.
func proximityValue(dist float64) float64 {
	switch {
	case dist < 0:
		return 0
	case dist < srNearPct:
		return srNearValue
	case dist < srFarPct:
		return srFarValue
	default:
		return 0
	}
}

package rules

import (
	"fmt"

	"ChainSight/internal/domain/models"
)

// PCR band edges. Between the neutral edges the signal scales smoothly
// through zero; beyond them it ramps toward the extremes.
const (
	pcrBearExtreme = 0.3
	pcrNeutralLow  = 0.8
	pcrNeutralHigh = 1.2
	pcrBullExtreme = 2.0
	pcrEdgeValue   = 0.2
)

// Tags emitted by the PCR rule.
const (
	TagPCRBullish        = "pcr_bullish"
	TagPCRBearish        = "pcr_bearish"
	TagPCRNeutral        = "pcr_neutral"
	TagPCRExtremeBullish = "pcr_extreme_bullish"
	TagPCRExtremeBearish = "pcr_extreme_bearish"
)

// PCRRule reads the put/call open-interest ratio. High PCR means heavy put
// writing, which option sellers treat as bullish support; low PCR the
// reverse. The mapping is piecewise linear and continuous across the band
// edges so a tick of PCR never jumps the score.
type PCRRule struct{}

func NewPCRRule() *PCRRule { return &PCRRule{} }

func (r *PCRRule) Name() string { return RulePCR }

func (r *PCRRule) Tags() []string {
	return []string{TagPCRBullish, TagPCRBearish, TagPCRNeutral, TagPCRExtremeBullish, TagPCRExtremeBearish}
}

func (r *PCRRule) Evaluate(fs *models.FeatureSet) (float64, string, string, error) {
	if fs.PCR == nil {
		return 0, "", "", &models.MissingFeatureError{Rule: r.Name(), Feature: "pcr"}
	}
	ratio := *fs.PCR
	if ratio < 0 {
		return 0, "", "", &models.MissingFeatureError{Rule: r.Name(), Feature: "pcr"}
	}

	var value float64
	var tag string
	switch {
	case ratio >= pcrNeutralHigh:
		value = pcrEdgeValue + (1-pcrEdgeValue)*clamp((ratio-pcrNeutralHigh)/(pcrBullExtreme-pcrNeutralHigh), 0, 1)
		tag = TagPCRBullish
		if ratio >= pcrBullExtreme {
			tag = TagPCRExtremeBullish
		}
	case ratio <= pcrNeutralLow:
		value = -(pcrEdgeValue + (1-pcrEdgeValue)*clamp((pcrNeutralLow-ratio)/(pcrNeutralLow-pcrBearExtreme), 0, 1))
		tag = TagPCRBearish
		if ratio <= pcrBearExtreme {
			tag = TagPCRExtremeBearish
		}
	default:
		value = ratio - 1.0
		tag = TagPCRNeutral
	}

	expl := fmt.Sprintf("Put/Call OI ratio is %.2f", ratio)
	switch tag {
	case TagPCRExtremeBullish:
		expl += ", extremely put-heavy (crowded bullish positioning)"
	case TagPCRBullish:
		expl += ", put writers dominate (bullish)"
	case TagPCRExtremeBearish:
		expl += ", extremely call-heavy (crowded bearish positioning)"
	case TagPCRBearish:
		expl += ", call writers dominate (bearish)"
	default:
		expl += ", balanced positioning (neutral)"
	}
	return clamp(value, -1, 1), tag, expl, nil
}
